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
	"time"

	iatomic "github.com/replikv/partcore/internal/atomic"
)

// PartitionState holds every mutable field of a Partition other than its
// tree refcounts (§3.1). It is only ever reached through a Partition's
// Guard, never directly — that is what makes the "one lock guards
// several related fields" contract (§4.1) hold structurally instead of
// by convention.
type PartitionState struct {
	// Replicas is the ordered replica list; index 0 is the final master.
	// Capacity is the namespace's configured replication factor; an
	// entry of 0 means "no node assigned at this rank".
	Replicas  []uint64
	NReplicas int

	// Origin is nonzero on a final master that is an eventual master
	// awaiting handover from the node named here.
	Origin uint64
	// Target is nonzero when this node is acting master on behalf of
	// the final master named here.
	Target uint64

	// Dupls holds nodes with duplicate-resolution versions to consult
	// before returning authoritative data.
	Dupls []uint64
	NDupl int

	PendingEmigrations  int
	PendingImmigrations int

	ClusterKey uint64

	Gen Generation

	NTombstones               int
	CurrentOutgoingLDTVersion uint64
}

// Partition is the central, per-shard entity (§3.1): a mutex-guarded
// state block plus the refcounted tree handles it owns. The partition
// lock is the sole coordinator of its mutable fields (§4.1) — every read
// of more than one field that must agree with another (role, origin,
// target, replicas, version) goes through guard.Do/Update, never a
// direct field access, because there is no direct field access to take.
type Partition struct {
	ID int

	guard *iatomic.Guard[PartitionState]

	vp    *TreeHandle
	subVp *TreeHandle // nil unless the owning namespace enables the sub-tree
}

// initPartition builds partition pid for ns. Cold start creates empty
// trees; warm restart resumes them from persisted roots if ns was
// configured with any (§3.3).
func initPartition(ns *Namespace, pid int) *Partition {
	p := &Partition{ID: pid}

	var primaryRoot, subRoot PersistedRoot
	if ns.warmRoots != nil {
		primaryRoot = ns.warmRoots[pid]
	}
	if ns.warmSubRoots != nil {
		subRoot = ns.warmSubRoots[pid]
	}

	var primary RecordTree
	if primaryRoot != nil {
		primary = ns.store.ResumeTree(primaryRoot)
	} else {
		primary = ns.store.CreateTree()
	}
	p.vp = newTreeHandle(primary)

	if ns.cfg.SubTreeEnabled {
		var sub RecordTree
		if subRoot != nil {
			sub = ns.store.ResumeTree(subRoot)
		} else {
			sub = ns.store.CreateTree()
		}
		p.subVp = newTreeHandle(sub)
	}

	var state PartitionState
	state.Replicas = make([]uint64, 0, ns.cfg.ConfiguredReplicationFactor)
	if ns.cfg.NewClusteringActive {
		state.Gen = NewModernGeneration()
	} else {
		state.Gen = NewLegacyGeneration()
	}
	p.guard = iatomic.NewGuard(&state)

	return p
}

// shutdownPartition hands the partition's trees back to storage with
// their persisted-root slots. Per §3.3 the partition lock is
// intentionally never released afterward: the process is terminating.
func shutdownPartition(ns *Namespace, p *Partition) (primaryRoot, subRoot PersistedRoot) {
	p.guard.Freeze(func(*PartitionState) {
		primaryRoot = ns.store.ShutdownTree(p.vp.tree)
		if p.subVp != nil {
			subRoot = ns.store.ShutdownTree(p.subVp.tree)
		}
	})
	return primaryRoot, subRoot
}

// withState runs f with a read/write view of the partition's state,
// holding the partition lock for the duration. Apart from
// withStateTimeout and shutdownPartition's final Freeze, it is the only
// way (inside or outside the package) to touch PartitionState.
func (p *Partition) withState(f func(*PartitionState)) {
	p.guard.Do(f)
}

// withStateTimeout is the deadline-bounded form of withState, used only
// by reserve_migrate_timeout (§5 "reserve_migrate_timeout uses a
// deadline-bounded acquisition; all other acquisitions are uncontended-
// or-blocking with no timeout"). Reports whether the lock was acquired
// before deadline.
func (p *Partition) withStateTimeout(deadline time.Time, f func(*PartitionState)) bool {
	return p.guard.TryDo(deadline, f)
}
