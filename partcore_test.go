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

import "testing"

// newTestNamespace builds a namespace backed by the in-memory tree
// store, for tests that don't care about real persistence.
func newTestNamespace(t *testing.T, core *Core, name string, partitionCount, replicationFactor int, modern bool) *Namespace {
	t.Helper()
	cfg := NamespaceConfig{
		Name:                        name,
		PartitionCount:              partitionCount,
		ConfiguredReplicationFactor: replicationFactor,
		NewClusteringActive:         modern,
	}
	ns, err := core.AddNamespace(NewMemTreeStore(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("AddNamespace(%s): %v", name, err)
	}
	return ns
}

// setReplicas mutates a partition's replica list through the balancer
// entry point and returns whether the client bitmap changed.
func setReplicas(ns *Namespace, pid int, replicas []uint64, origin, target uint64) bool {
	return ns.MutatePartition(pid, func(s *PartitionState) {
		s.Replicas = append(s.Replicas[:0], replicas...)
		s.NReplicas = len(replicas)
		s.Origin = origin
		s.Target = target
	})
}
