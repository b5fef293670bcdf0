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

// findSelfInReplicas linearly scans replicas[0:nReplicas] for self, the
// way the source does (§4.2) — small, fixed replication factors make a
// map lookup not worth the allocation.
func findSelfInReplicas(self uint64, s *PartitionState) int {
	for i := 0; i < s.NReplicas; i++ {
		if s.Replicas[i] == self {
			return i
		}
	}
	return -1
}

// isWorkingMaster implements the §3.2 invariant 5 predicate: this node
// is the working master iff it is the final master with no handover in
// progress, or it is standing in as acting master for someone else.
func isWorkingMaster(rank int, s *PartitionState) bool {
	isFinalMaster := rank == 0
	return (isFinalMaster && s.Origin == 0) || s.Target != 0
}

// selfReplicaRankLocked is §4.2's self_replica_rank, callable only while
// the partition lock is already held — the form the balancer's combined
// mutate-then-update call needs (§6 "Balancer → core").
func selfReplicaRankLocked(self uint64, replicationFactor int, s *PartitionState) int {
	r := findSelfInReplicas(self, s)
	if isWorkingMaster(r, s) {
		return 0
	}
	if r > 0 && s.Origin == 0 && r < replicationFactor {
		return r
	}
	return -1
}

// FindSelfInReplicas returns this node's index in the partition's
// current replica list, or -1 if absent (§4.2).
func (p *Partition) FindSelfInReplicas(ns *Namespace) int {
	self := ns.selfNodeID()
	var rank int
	p.withState(func(s *PartitionState) {
		rank = findSelfInReplicas(self, s)
	})
	return rank
}

// SelfReplicaRank returns this node's usable replica rank for the
// partition, or -1 if it is not a usable replica (§4.2). It takes the
// partition lock itself; the balancer-facing equivalent that runs while
// the lock is already held is selfReplicaRankLocked.
//
// A prole rank is accepted only if it is below the namespace's current
// ReplicationFactor; the partition's own NReplicas is not consulted, so
// a replica list that still lags a reconfiguration is not detected here.
func (ns *Namespace) SelfReplicaRank(pid int) int {
	self := ns.selfNodeID()
	rf := ns.ReplicationFactor()
	p := ns.Partition(pid)
	var rank int
	p.withState(func(s *PartitionState) {
		rank = selfReplicaRankLocked(self, rf, s)
	})
	return rank
}
