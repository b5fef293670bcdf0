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

// bestNodeLocked implements §4.3's best_node table. Writes funnel to
// the working master; reads may be served by any sync prole; during
// handover, requests are redirected to the current acting master.
func bestNodeLocked(self uint64, isRead bool, s *PartitionState) uint64 {
	rank := findSelfInReplicas(self, s)
	isFinalMaster := rank == 0
	isProle := rank > 0
	isActingMaster := s.Target != 0
	isWorking := (isFinalMaster && s.Origin == 0) || isActingMaster

	switch {
	case isWorking:
		return self
	case isFinalMaster: // origin != 0, since isWorking already excluded origin == 0
		return s.Origin
	case isRead && isProle && s.Origin == 0:
		return self
	default:
		if s.NReplicas > 0 {
			return s.Replicas[0]
		}
		return 0
	}
}

// BestNode returns the node that should handle a read (isRead) or write
// request for partition pid (§4.3).
func (ns *Namespace) BestNode(pid int, isRead bool) uint64 {
	self := ns.selfNodeID()
	p := ns.Partition(pid)
	var node uint64
	p.withState(func(s *PartitionState) {
		node = bestNodeLocked(self, isRead, s)
	})
	return node
}

// ProxyeeRedirect tells a client routed to this node where the real
// working master is, when this node is only the final master awaiting
// handover (§4.3). Returns 0 if this node is not the final master, or
// if no handover is in progress.
func (ns *Namespace) ProxyeeRedirect(pid int) uint64 {
	self := ns.selfNodeID()
	p := ns.Partition(pid)
	var redirect uint64
	p.withState(func(s *PartitionState) {
		if s.NReplicas > 0 && s.Replicas[0] == self {
			redirect = s.Origin
		}
	})
	return redirect
}
