// Copyright 2014-2024 Aerospike, Inc.
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

package partcore

import (
	"encoding/base64"
	"strings"
	"sync"

	iatomic "github.com/replikv/partcore/internal/atomic"
)

// ClientReplicaMap is one replica rank's client-facing bitmap: which
// partitions this node owns at that rank, plus a base64 mirror kept in
// sync a 3-byte chunk at a time (§3.1, §4.5).
//
// Readers of the base64 mirror do not take writeLock (§9 "Bitmap reader
// lock-freedom"): each 3-byte chunk's 4-character encoding lives behind
// its own TypedVal, published as a single quartet so a concurrent reader
// never observes a torn write — only a whole quartet from before or
// after the flip. Each TypedVal read takes that quartet's own short read
// lock.
type ClientReplicaMap struct {
	bitmap    []byte
	quartets  []iatomic.TypedVal[[4]byte]
	writeLock sync.Mutex
}

func newClientReplicaMap(partitionCount int) *ClientReplicaMap {
	byteLen := (partitionCount + 7) / 8
	nChunks := (byteLen + 2) / 3
	m := &ClientReplicaMap{
		bitmap:   make([]byte, byteLen),
		quartets: make([]iatomic.TypedVal[[4]byte], nChunks),
	}
	for i := range m.quartets {
		m.reencodeChunk(i * 3)
	}
	return m
}

// newClientReplicaMaps implements §4.5 "Create": one map per replica
// rank, in [0, replicationFactor).
func newClientReplicaMaps(replicationFactor, partitionCount int) []*ClientReplicaMap {
	maps := make([]*ClientReplicaMap, replicationFactor)
	for r := range maps {
		maps[r] = newClientReplicaMap(partitionCount)
	}
	return maps
}

// clear implements §4.5 "Clear": same effect as Create, in place.
func (m *ClientReplicaMap) clear() {
	m.writeLock.Lock()
	defer m.writeLock.Unlock()
	for i := range m.bitmap {
		m.bitmap[i] = 0
	}
	for i := range m.quartets {
		m.reencodeChunk(i * 3)
	}
}

// reencodeChunk re-derives the base64 quartet covering byteI's aligned
// 3-byte chunk and publishes it as a single atomic value (§4.5 step 4,
// §9). Must be called with writeLock held.
func (m *ClientReplicaMap) reencodeChunk(byteI int) {
	chunkStart := (byteI / 3) * 3
	chunkSize := 3
	if chunkStart+chunkSize > len(m.bitmap) {
		chunkSize = len(m.bitmap) - chunkStart
	}
	var q [4]byte
	base64.StdEncoding.Encode(q[:], m.bitmap[chunkStart:chunkStart+chunkSize])
	m.quartets[chunkStart/3].Set(q)
}

// B64 renders the map's base64 mirror in full, without taking writeLock.
func (m *ClientReplicaMap) B64() string {
	var sb strings.Builder
	sb.Grow(len(m.quartets) * 4)
	for i := range m.quartets {
		q := m.quartets[i].Get()
		sb.Write(q[:])
	}
	return sb.String()
}

func (m *ClientReplicaMap) bitSet(pid int) bool {
	byteI := pid / 8
	mask := byte(0x80 >> uint(pid%8))
	return m.bitmap[byteI]&mask != 0
}

// updateClientMapsLocked implements §4.5's Update(ns, pid) body, minus
// the self_replica_rank computation (the caller already has it, since
// it's the same partition-state snapshot the balancer just mutated).
// Must be called with the owning partition's lock held.
func updateClientMapsLocked(maps []*ClientReplicaMap, pid int, desiredRank int) bool {
	byteI := pid / 8
	mask := byte(0x80 >> uint(pid%8))

	changed := false
	for r, m := range maps {
		owned := r == desiredRank
		isSet := m.bitmap[byteI]&mask != 0
		if owned == isSet {
			continue
		}
		m.writeLock.Lock()
		m.bitmap[byteI] ^= mask
		m.reencodeChunk(byteI)
		m.writeLock.Unlock()
		changed = true
	}
	return changed
}

// isQueryableLocked implements §4.5's "Is-queryable": a partition is
// queryable iff rank-0's bit is set.
func isQueryableLocked(maps []*ClientReplicaMap, pid int) bool {
	if len(maps) == 0 {
		return false
	}
	return maps[0].bitSet(pid)
}

// MutatePartition is the balancer-facing entry point (§6 "Balancer →
// core"). mutate replaces whatever partition fields changed; update is
// then applied to the client replica bitmap before the partition lock
// is released, fulfilling the "mutate, then must call bitmap update()
// while still holding the lock" contract as a single critical section
// instead of two calls sharing a lock a caller would have to hold open
// across a Go function boundary.
func (ns *Namespace) MutatePartition(pid int, mutate func(*PartitionState)) bool {
	self := ns.selfNodeID()
	rf := ns.ReplicationFactor()
	p := ns.Partition(pid)

	var changed bool
	ns.timedWithState(p, func(s *PartitionState) {
		mutate(s)
		rank := selfReplicaRankLocked(self, rf, s)
		changed = updateClientMapsLocked(ns.clientMaps, pid, rank)
	})
	return changed
}

// Update recomputes pid's client-map membership from current state
// without any other mutation. It is equivalent to MutatePartition with
// a no-op mutate, offered for callers (tests, re-sync after a crash
// recovery) that didn't just mutate anything themselves.
func (ns *Namespace) Update(pid int) bool {
	return ns.MutatePartition(pid, func(*PartitionState) {})
}

// IsQueryable reports whether pid is queryable on this node (rank 0
// owned).
func (ns *Namespace) IsQueryable(pid int) bool {
	self := ns.selfNodeID()
	rf := ns.ReplicationFactor()
	p := ns.Partition(pid)
	var ok bool
	p.withState(func(s *PartitionState) {
		rank := selfReplicaRankLocked(self, rf, s)
		ok = rank == 0
	})
	return ok
}

// ClientMapB64 returns the base64 mirror of replica rank's bitmap.
func (ns *Namespace) ClientMapB64(rank int) string {
	return ns.clientMaps[rank].B64()
}

// ClearClientMaps resets every replica rank's bitmap to all-zero (§4.5
// "Clear").
func (ns *Namespace) ClearClientMaps() {
	for _, m := range ns.clientMaps {
		m.clear()
	}
}
