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
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Reservation pins a partition's trees and snapshots its state for the
// lifetime of one read, write, migration, or query (§3.1, §4.4). It
// owns exactly one refcount on each pinned tree; Release drops them.
//
// Per the design-note resolution of the "shallow reservation copy" open
// question (§9 option (a)), a Reservation is a movable-only handle:
// there is no implicit copy constructor. Clone explicitly increments
// refcounts for a second logical holder.
type Reservation struct {
	ns        *Namespace
	partition *Partition

	vp    *TreeHandle
	subVp *TreeHandle

	clusterKey         uint64
	rejectReplicaWrite bool

	dupls []uint64

	kind ReservationKind

	released int32
}

// pinLocked implements the §4.4 pinning protocol. Must be called with
// the partition lock held.
func pinLocked(ns *Namespace, p *Partition, s *PartitionState, kind ReservationKind) *Reservation {
	p.vp.reserve()
	var subVp *TreeHandle
	if ns.cfg.SubTreeEnabled && p.subVp != nil {
		p.subVp.reserve()
		subVp = p.subVp
	}

	dupls := make([]uint64, s.NDupl)
	copy(dupls, s.Dupls[:s.NDupl])
	if len(dupls) > 1 {
		off := ns.nextDuplOffset(len(dupls))
		if off != 0 {
			rotated := make([]uint64, len(dupls))
			for i := range dupls {
				rotated[i] = dupls[(i+off)%len(dupls)]
			}
			dupls = rotated
		}
	}

	return &Reservation{
		ns:                 ns,
		partition:          p,
		vp:                 p.vp,
		subVp:              subVp,
		clusterKey:         s.ClusterKey,
		rejectReplicaWrite: s.Gen.RejectReplicaWrite(),
		dupls:              dupls,
		kind:               kind,
	}
}

func (ns *Namespace) reserveRW(pid int, isRead bool, kind ReservationKind) (*Reservation, uint64, uint64, Error) {
	self := ns.selfNodeID()
	p := ns.Partition(pid)

	var res *Reservation
	var best, clusterKey uint64
	var notLocal bool

	ns.timedWithState(p, func(s *PartitionState) {
		best = bestNodeLocked(self, isRead, s)
		clusterKey = s.ClusterKey
		if best != self {
			notLocal = true
			return
		}
		res = pinLocked(ns, p, s, kind)
	})

	if notLocal {
		return nil, best, clusterKey, ErrNotLocal()
	}
	return res, best, clusterKey, nil
}

// ReserveRead reserves partition pid for a read, failing with ErrNotLocal
// if this node is not the best node to serve it (§4.4). cluster_key is
// reported unconditionally, even on failure.
func (ns *Namespace) ReserveRead(pid int) (res *Reservation, bestNode, clusterKey uint64, err Error) {
	return ns.reserveRW(pid, true, kindRead)
}

// ReserveWrite is ReserveRead's write counterpart.
func (ns *Namespace) ReserveWrite(pid int) (res *Reservation, bestNode, clusterKey uint64, err Error) {
	return ns.reserveRW(pid, false, kindWrite)
}

// ReserveMigrate reserves partition pid unconditionally: migrations
// operate on the local view regardless of role (§4.4).
func (ns *Namespace) ReserveMigrate(pid int) *Reservation {
	p := ns.Partition(pid)
	var res *Reservation
	ns.timedWithState(p, func(s *PartitionState) {
		res = pinLocked(ns, p, s, kindMigrate)
	})
	return res
}

// ReserveMigrateTimeout is ReserveMigrate with a deadline-bounded lock
// acquisition; it fails with ErrTimeout, taking no refcount, if the
// deadline elapses first (§4.4, §5).
func (ns *Namespace) ReserveMigrateTimeout(pid int, timeout time.Duration) (*Reservation, Error) {
	p := ns.Partition(pid)
	deadline := time.Now().Add(timeout)

	var res *Reservation
	ok := p.withStateTimeout(deadline, func(s *PartitionState) {
		res = pinLocked(ns, p, s, kindMigrateTimeout)
	})
	if !ok {
		return nil, ErrTimeout()
	}
	return res, nil
}

// ReserveQuery is §4.4's alias for ReserveWrite without reporting the
// best node or cluster key.
func (ns *Namespace) ReserveQuery(pid int) (*Reservation, Error) {
	res, _, _, err := ns.reserveRW(pid, false, kindQuery)
	return res, err
}

// ReserveXDRRead reserves partition pid for a cross-datacenter read,
// which may consume zombie replicas, so long as the partition holds any
// data at all (§4.4). Fails with ErrUnavailable on an empty partition.
func (ns *Namespace) ReserveXDRRead(pid int) (*Reservation, Error) {
	p := ns.Partition(pid)

	var res *Reservation
	var unavailable bool
	ns.timedWithState(p, func(s *PartitionState) {
		if !s.Gen.HasData() {
			unavailable = true
			return
		}
		res = pinLocked(ns, p, s, kindXDRRead)
	})

	if unavailable {
		return nil, ErrUnavailable()
	}
	return res, nil
}

// PrereserveQuery attempts ReserveQuery on every partition of ns,
// bounded to maxConcurrency concurrent attempts so a 4096-partition scan
// doesn't spawn thousands of goroutines at once. A partition that fails
// simply has no reservation (§4.4: "must never leave partial
// reservations on failure paths").
func (ns *Namespace) PrereserveQuery(ctx context.Context, maxConcurrency int64) (queryable []bool, reservations []*Reservation, nReserved int) {
	p := ns.PartitionCount()
	queryable = make([]bool, p)
	reservations = make([]*Reservation, p)

	sem := semaphore.NewWeighted(maxConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for pid := 0; pid < p; pid++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			defer sem.Release(1)

			res, err := ns.ReserveQuery(pid)
			if err != nil {
				return
			}
			mu.Lock()
			queryable[pid] = true
			reservations[pid] = res
			nReserved++
			mu.Unlock()
		}(pid)
	}
	wg.Wait()

	return queryable, reservations, nReserved
}

// Release drops the refcount this reservation holds on each pinned
// tree. Only the first call has an effect; any later call is a no-op,
// since a reservation is a single logical holder once made (§5).
func (r *Reservation) Release() {
	if !atomic.CompareAndSwapInt32(&r.released, 0, 1) {
		return
	}
	r.vp.release()
	if r.subVp != nil {
		r.subVp.release()
	}
}

// Clone returns a second Reservation aliasing the same partition and
// trees, incrementing their refcounts (§9 design-note option (a), P4).
// The clone must be released independently of the original.
func (r *Reservation) Clone() *Reservation {
	r.vp.reserve()
	if r.subVp != nil {
		r.subVp.reserve()
	}
	dupls := make([]uint64, len(r.dupls))
	copy(dupls, r.dupls)
	return &Reservation{
		ns:                 r.ns,
		partition:          r.partition,
		vp:                 r.vp,
		subVp:              r.subVp,
		clusterKey:         r.clusterKey,
		rejectReplicaWrite: r.rejectReplicaWrite,
		dupls:              dupls,
		kind:               r.kind,
	}
}

// Namespace returns the namespace this reservation was taken against.
func (r *Reservation) Namespace() *Namespace { return r.ns }

// PartitionID returns the reserved partition's id.
func (r *Reservation) PartitionID() int { return r.partition.ID }

// ClusterKey returns the cluster-configuration epoch at reservation
// time.
func (r *Reservation) ClusterKey() uint64 { return r.clusterKey }

// RejectReplicaWrite reports whether this replica should refuse
// incoming replication writes (§4.4 step 3; see the FIXME recorded on
// Generation.RejectReplicaWrite).
func (r *Reservation) RejectReplicaWrite() bool { return r.rejectReplicaWrite }

// NDupl returns the size of the duplicate-resolution set snapshotted
// into this reservation.
func (r *Reservation) NDupl() int { return len(r.dupls) }

// Dupls returns the duplicate-resolution node set snapshotted into this
// reservation, in consultation order.
func (r *Reservation) Dupls() []uint64 { return r.dupls }

// Kind reports which reservation operation produced this handle.
func (r *Reservation) Kind() ReservationKind { return r.kind }

// VPSize returns the record count of the pinned primary tree.
func (r *Reservation) VPSize() int { return r.vp.Size() }

// SubVPSize returns the record count of the pinned secondary tree, or 0
// if this reservation didn't pin one.
func (r *Reservation) SubVPSize() int { return r.subVp.Size() }
