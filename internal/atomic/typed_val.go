// Copyright 2014-2022 Aerospike, Inc.
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

package atomic

import "sync"

// TypedVal holds a single value of type T that can be replaced and read
// from multiple goroutines without ever observing a partially-written
// value. Unlike sync/atomic.Value, it accepts any T (including slices,
// maps and nil), at the cost of a short-held lock instead of a lock-free
// CPU instruction. The guarantee callers rely on is "never torn", not
// "wait-free".
type TypedVal[T any] struct {
	mu sync.RWMutex
	v  T
}

// Set replaces the stored value.
func (t *TypedVal[T]) Set(v T) {
	t.mu.Lock()
	t.v = v
	t.mu.Unlock()
}

// Get returns the currently stored value.
func (t *TypedVal[T]) Get() T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.v
}
