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

import (
	"sync"
	"time"
)

// Guard wraps a value of type T behind a single mutex, so that every field
// of T is read and mutated as one consistent unit. This is the generic form
// of "a struct with a bunch of fields and one lock guarding all of them":
// callers never reach for the payload directly, only through Do/Update, so
// it is not possible to read one field without the lock held.
type Guard[T any] struct {
	mu sync.Mutex
	v  *T
}

// NewGuard creates a Guard already holding v.
func NewGuard[T any](v *T) *Guard[T] {
	return &Guard[T]{v: v}
}

// Do runs f with the guarded pointer, holding the lock for the duration.
// The pointer is nil if the Guard was never initialized.
func (g *Guard[T]) Do(f func(*T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f(g.v)
}

// DoVal runs f with a copy of the guarded value, holding the lock for the
// duration. Panics if the Guard was never initialized; callers that may be
// uninitialized should use InitDoVal instead.
func (g *Guard[T]) DoVal(f func(T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f(*g.v)
}

// InitDo lazily initializes the guarded pointer via init (only if it is
// still nil) and then runs f with it, all under the lock.
func (g *Guard[T]) InitDo(init func() *T, f func(*T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.v == nil {
		g.v = init()
	}
	f(g.v)
}

// InitDoVal lazily initializes the guarded value via init (only if it is
// still nil) and then runs f with a copy of it, all under the lock.
func (g *Guard[T]) InitDoVal(init func() T, f func(T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.v == nil {
		val := init()
		g.v = &val
	}
	f(*g.v)
}

// Update gives f access to the guarded pointer slot itself, so it can
// replace the underlying value wholesale rather than mutate it in place.
func (g *Guard[T]) Update(f func(**T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f(&g.v)
}

// TryDo attempts to acquire the lock, retrying with a small backoff until
// deadline. It runs f and returns true if the lock was acquired in time,
// or returns false without running f if deadline elapsed first. Used by
// callers that need a bounded-wait acquisition instead of Do's unbounded
// blocking one.
func (g *Guard[T]) TryDo(deadline time.Time, f func(*T)) bool {
	const backoff = 200 * time.Microsecond
	for {
		if g.mu.TryLock() {
			func() {
				defer g.mu.Unlock()
				f(g.v)
			}()
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(backoff)
	}
}

// Freeze locks the guard, runs f, and deliberately never unlocks. It
// exists for process-shutdown code paths that intentionally leave state
// locked because the process is about to exit and no further access is
// expected.
func (g *Guard[T]) Freeze(f func(*T)) {
	g.mu.Lock()
	f(g.v)
}
