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

import "sync/atomic"

// PersistedRoot is an opaque on-disk root handle, owned and interpreted
// only by the storage engine. The core treats it as a byte blob it hands
// back and forth at warm-restart/shutdown time.
type PersistedRoot []byte

// RecordTree is the reference-counted ordered container of records that
// backs a partition. Its implementation (the storage engine) is out of
// scope for this core; Size is the only query this core itself needs.
type RecordTree interface {
	// Size returns the number of records currently held.
	Size() int
}

// TreeStore is the storage engine's side of the tree lifecycle contract
// (§3.3, §6 "Storage → core"). An embedder supplies one implementation
// per process.
type TreeStore interface {
	// CreateTree makes a new, empty tree (cold start).
	CreateTree() RecordTree
	// ResumeTree resumes a tree from a persisted root (warm restart).
	ResumeTree(root PersistedRoot) RecordTree
	// ShutdownTree hands a tree back to storage, returning its
	// persisted-root slot for the next warm restart.
	ShutdownTree(t RecordTree) PersistedRoot
}

// TreeHandle pins a RecordTree behind its own refcount, independent of
// any partition lock (invariant 8 / §5 "shared-resource policy"): trees
// are destroyed only once every reservation holding a refcount has
// released it.
type TreeHandle struct {
	tree     RecordTree
	refcount int64
}

func newTreeHandle(t RecordTree) *TreeHandle {
	return &TreeHandle{tree: t}
}

// reserve takes one refcount on the tree. The pinning protocol (§4.4)
// calls it with the owning partition's lock held; Reservation.Clone
// calls it without the lock, since refcounts are atomic.
func (h *TreeHandle) reserve() {
	atomic.AddInt64(&h.refcount, 1)
}

// release drops one refcount. No lock required; refcounts are atomic.
func (h *TreeHandle) release() {
	atomic.AddInt64(&h.refcount, -1)
}

// Refcount reports the current refcount, mostly useful for tests and
// diagnostics (P4).
func (h *TreeHandle) Refcount() int64 {
	return atomic.LoadInt64(&h.refcount)
}

// Size reports the number of records held, or 0 for a nil handle (used
// for an unconfigured sub-tree).
func (h *TreeHandle) Size() int {
	if h == nil || h.tree == nil {
		return 0
	}
	return h.tree.Size()
}

// memTree is a minimal in-memory RecordTree, useful as a TreeStore for
// tests and for embedders that don't need real persistence (e.g. a pure
// cache namespace). It is not meant as a production storage engine.
type memTree struct {
	size int64
}

// NewMemTree returns a RecordTree whose Size starts at n records. It
// exists so this package's own tests (and an embedder's) can exercise
// reservation/diagnostic paths without a real storage engine.
func NewMemTree(n int) RecordTree {
	return &memTree{size: int64(n)}
}

func (t *memTree) Size() int { return int(atomic.LoadInt64(&t.size)) }

// SetSize lets a test or a toy in-memory TreeStore mutate record count
// without re-creating the tree (so refcounted handles keep pointing at
// the same tree across writes).
func (t *memTree) SetSize(n int) { atomic.StoreInt64(&t.size, int64(n)) }

// memTreeStore is a TreeStore backed by memTree, good enough for tests
// and toy deployments; it doesn't actually persist anything, so
// ResumeTree always starts empty and ShutdownTree returns a nil root.
type memTreeStore struct{}

// NewMemTreeStore returns a TreeStore with no real persistence, backing
// every tree with an in-memory record counter.
func NewMemTreeStore() TreeStore { return memTreeStore{} }

func (memTreeStore) CreateTree() RecordTree                 { return &memTree{} }
func (memTreeStore) ResumeTree(PersistedRoot) RecordTree     { return &memTree{} }
func (memTreeStore) ShutdownTree(RecordTree) PersistedRoot   { return nil }
