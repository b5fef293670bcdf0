// Copyright 2014-2021 Aerospike, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pool provides a tiered, size-bucketed byte-slice pool so that
// hot paths which repeatedly need a scratch buffer of roughly-known size
// (diagnostic dumps walking thousands of partitions, for example) don't
// pay a fresh allocation every call.
package pool

import (
	"math/bits"
	"sync"
)

// TieredBufferPool hands out []byte buffers rounded up to the next power
// of two. Buffers whose rounded size falls in [min, max] are served from
// a per-size-tier sync.Pool; smaller or larger requests are allocated
// fresh (too small to be worth pooling, or too large to pool at all).
type TieredBufferPool struct {
	max    int
	minLog int
	tiers  []sync.Pool // tiers[i] holds buffers of size 1<<(minLog+i)
}

// NewTieredBufferPool creates a pool pooling buffers whose rounded size
// falls in [min, max]. Both must be positive; neither need be a power of
// two.
func NewTieredBufferPool(min, max int) *TieredBufferPool {
	minLog := roundedLog2(min)
	maxLog := roundedLog2(max)

	bp := &TieredBufferPool{
		max:    1 << maxLog,
		minLog: minLog,
		tiers:  make([]sync.Pool, maxLog-minLog+1),
	}

	for i := range bp.tiers {
		sz := 1 << (minLog + i)
		bp.tiers[i].New = func() interface{} {
			b := make([]byte, sz)
			return &b
		}
	}

	return bp
}

// Get returns a buffer with len(buf) >= sz.
func (bp *TieredBufferPool) Get(sz int) []byte {
	if sz > bp.max {
		return make([]byte, sz)
	}

	log := roundedLog2(sz)
	if log < bp.minLog {
		return make([]byte, 1<<log)
	}

	idx := log - bp.minLog
	bufp := bp.tiers[idx].Get().(*[]byte)
	return (*bufp)[:1<<log]
}

// Put returns a buffer previously obtained from Get back to its tier.
// Buffers that don't correspond to a pooled tier are simply dropped.
func (bp *TieredBufferPool) Put(buf []byte) {
	sz := cap(buf)
	if !powerOf2(sz) {
		return
	}
	log := fastLog2(uint64(sz))
	if log < bp.minLog || log > bp.minLog+len(bp.tiers)-1 {
		return
	}
	idx := log - bp.minLog
	full := buf[:sz]
	bp.tiers[idx].Put(&full)
}

// roundedLog2 returns the exponent of the smallest power of two >= n.
func roundedLog2(n int) int {
	log := fastLog2(uint64(n))
	if !powerOf2(n) {
		log++
	}
	return log
}

func powerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func fastLog2(n uint64) int {
	if n == 0 {
		return 0
	}
	return bits.Len64(n) - 1
}
