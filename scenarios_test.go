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
	"testing"

	"github.com/replikv/partcore/types"
)

const self uint64 = 1
const n2 uint64 = 2
const n3 uint64 = 3

// Scenario 1: working master, no origin, no target, no duplicates.
func TestScenarioWorkingMaster(t *testing.T) {
	core := NewCore(self)
	ns := newTestNamespace(t, core, "test", 8, 3, true)

	setReplicas(ns, 7, []uint64{self, n2, n3}, 0, 0)

	res, bestNode, _, err := ns.ReserveWrite(7)
	if err != nil {
		t.Fatalf("ReserveWrite: %v", err)
	}
	if bestNode != self {
		t.Fatalf("bestNode = %d, want self", bestNode)
	}
	res.Release()

	if ns.ClientMapB64(0) == ns.ClientMapB64(1) {
		t.Fatalf("rank 0 and rank 1 bitmaps should differ")
	}
	if !ns.IsQueryable(7) {
		t.Fatalf("partition should be queryable at rank 0")
	}
}

// Scenario 2: eventual master, handover in progress.
func TestScenarioEventualMaster(t *testing.T) {
	core := NewCore(self)
	ns := newTestNamespace(t, core, "test", 4, 3, true)

	setReplicas(ns, 1, []uint64{self, n2}, n2, 0)

	_, bestNode, _, err := ns.ReserveWrite(1)
	if !err.Matches(types.NOT_LOCAL) {
		t.Fatalf("expected NotLocal, got %v", err)
	}
	if bestNode != n2 {
		t.Fatalf("bestNode = %d, want n2", bestNode)
	}
	if got := ns.ProxyeeRedirect(1); got != n2 {
		t.Fatalf("ProxyeeRedirect = %d, want n2", got)
	}
}

// Scenario 3: acting master on behalf of final.
func TestScenarioActingMaster(t *testing.T) {
	core := NewCore(self)
	ns := newTestNamespace(t, core, "test", 4, 3, true)

	setReplicas(ns, 2, []uint64{n2, self}, 0, n2)

	res, bestNode, _, err := ns.ReserveWrite(2)
	if err != nil {
		t.Fatalf("ReserveWrite: %v", err)
	}
	if bestNode != self {
		t.Fatalf("bestNode = %d, want self", bestNode)
	}
	res.Release()

	if !ns.IsQueryable(2) {
		t.Fatalf("acting master should be queryable at rank 0")
	}
}

// Scenario 4: prole serving a read.
func TestScenarioProleRead(t *testing.T) {
	core := NewCore(self)
	ns := newTestNamespace(t, core, "test", 4, 3, true)

	setReplicas(ns, 3, []uint64{n2, self, n3}, 0, 0)

	res, _, _, err := ns.ReserveRead(3)
	if err != nil {
		t.Fatalf("ReserveRead: %v", err)
	}
	res.Release()

	_, bestNode, _, werr := ns.ReserveWrite(3)
	if !werr.Matches(types.NOT_LOCAL) {
		t.Fatalf("expected NotLocal on write, got %v", werr)
	}
	if bestNode != n2 {
		t.Fatalf("bestNode = %d, want n2", bestNode)
	}

	rank := ns.SelfReplicaRank(3)
	if rank != 1 {
		t.Fatalf("SelfReplicaRank = %d, want 1", rank)
	}
}

// Scenario 5: non-replica.
func TestScenarioNonReplica(t *testing.T) {
	core := NewCore(self)
	ns := newTestNamespace(t, core, "test", 4, 3, true)

	setReplicas(ns, 0, []uint64{n2, n3}, 0, 0)

	_, _, _, err := ns.ReserveRead(0)
	if !err.Matches(types.NOT_LOCAL) {
		t.Fatalf("expected NotLocal, got %v", err)
	}
	if rank := ns.SelfReplicaRank(0); rank != -1 {
		t.Fatalf("SelfReplicaRank = %d, want -1", rank)
	}
	for r := 0; r < ns.Config().ConfiguredReplicationFactor; r++ {
		if ns.clientMaps[r].bitSet(0) {
			t.Fatalf("rank %d bit should be clear for a non-replica", r)
		}
	}
}

// Scenario 6: empty partition, XDR read.
func TestScenarioXDRReadEmptyThenPopulated(t *testing.T) {
	core := NewCore(self)
	ns := newTestNamespace(t, core, "test", 4, 1, true)

	if _, err := ns.ReserveXDRRead(0); !err.Matches(types.UNAVAILABLE) {
		t.Fatalf("expected Unavailable on empty partition, got %v", err)
	}

	ns.MutatePartition(0, func(s *PartitionState) {
		s.Gen = s.Gen.WithVersion(Version{1, 1}, Version{})
	})

	res, err := ns.ReserveXDRRead(0)
	if err != nil {
		t.Fatalf("ReserveXDRRead after version set: %v", err)
	}
	res.Release()
}
