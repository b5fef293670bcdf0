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
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/replikv/partcore/types"
	"github.com/replikv/partcore/types/histogram"
	"github.com/replikv/partcore/types/rand"
	"golang.org/x/sync/singleflight"
)

// NamespaceConfig is read once at namespace construction (§6 "External
// interfaces"). It never changes afterward; reconfiguration that needs
// to change these values recreates the namespace.
type NamespaceConfig struct {
	Name string

	// PartitionCount is P, typically 4096.
	PartitionCount int

	// ConfiguredReplicationFactor is the cluster-wide target replica
	// count; always ≥ 1.
	ConfiguredReplicationFactor int

	// SubTreeEnabled toggles the legacy large-object secondary tree.
	SubTreeEnabled bool

	// NewClusteringActive selects the modern (true) or legacy (false)
	// regime for every partition in this namespace (§9).
	NewClusteringActive bool
}

func (cfg NamespaceConfig) validate() Error {
	if cfg.Name == "" {
		return newError(types.COMMON_ERROR, "namespace name must not be empty")
	}
	if cfg.PartitionCount <= 0 {
		return newError(types.COMMON_ERROR, fmt.Sprintf("namespace %q: partition count must be positive", cfg.Name))
	}
	if cfg.ConfiguredReplicationFactor < 1 {
		return newError(types.COMMON_ERROR, fmt.Sprintf("namespace %q: configured replication factor must be >= 1", cfg.Name))
	}
	return nil
}

// Namespace owns a fixed array of Partitions plus the client-facing
// state derived from them (§3.1).
type Namespace struct {
	cfg  NamespaceConfig
	core *Core
	store TreeStore

	warmRoots    []PersistedRoot
	warmSubRoots []PersistedRoot

	partitions []*Partition

	replicationFactor int64 // atomic; may lag cfg.ConfiguredReplicationFactor

	clientMaps []*ClientReplicaMap

	lockWaitHist *histogram.Histogram[int64]
	histMu       sync.Mutex

	duplMu   sync.Mutex
	duplRand *rand.Xor128Rand

	dumpGroup singleflight.Group
}

// newNamespace validates cfg, then creates P partitions (cold, or warm
// from warmRoots/warmSubRoots) and one client replica map per configured
// replica rank.
func newNamespace(core *Core, store TreeStore, cfg NamespaceConfig, warmRoots, warmSubRoots []PersistedRoot) (*Namespace, Error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ns := &Namespace{
		cfg:               cfg,
		core:              core,
		store:             store,
		warmRoots:         warmRoots,
		warmSubRoots:      warmSubRoots,
		replicationFactor: int64(cfg.ConfiguredReplicationFactor),
		lockWaitHist:      histogram.NewExponential[int64](2, 40),
		duplRand:          rand.NewXorRand(),
	}

	ns.partitions = make([]*Partition, cfg.PartitionCount)
	for pid := range ns.partitions {
		ns.partitions[pid] = initPartition(ns, pid)
	}

	ns.clientMaps = newClientReplicaMaps(cfg.ConfiguredReplicationFactor, cfg.PartitionCount)

	return ns, nil
}

// Config returns the namespace's immutable configuration.
func (ns *Namespace) Config() NamespaceConfig { return ns.cfg }

// PartitionCount returns P.
func (ns *Namespace) PartitionCount() int { return len(ns.partitions) }

// Partition returns partition pid. Panics if pid is out of range, same
// as a slice index would — pid is always caller-controlled and always
// in [0, P).
func (ns *Namespace) Partition(pid int) *Partition { return ns.partitions[pid] }

// ReplicationFactor returns the namespace's current replication factor,
// which may lag ConfiguredReplicationFactor during reconfiguration.
func (ns *Namespace) ReplicationFactor() int {
	return int(atomic.LoadInt64(&ns.replicationFactor))
}

// SetReplicationFactor lets the balancer advance the current replication
// factor toward the configured one as reconfiguration proceeds.
func (ns *Namespace) SetReplicationFactor(rf int) {
	atomic.StoreInt64(&ns.replicationFactor, int64(rf))
}

func (ns *Namespace) selfNodeID() uint64 { return ns.core.selfNodeID }

// nextDuplOffset returns a pseudo-random starting index into a dupls
// set of length n, so concurrent duplicate-resolution reservations don't
// all probe dupls[0] first.
func (ns *Namespace) nextDuplOffset(n int) int {
	if n <= 1 {
		return 0
	}
	ns.duplMu.Lock()
	off := ns.duplRand.UintN(n)
	ns.duplMu.Unlock()
	return off
}

func (ns *Namespace) recordLockWait(nanos int64) {
	ns.histMu.Lock()
	ns.lockWaitHist.Add(nanos)
	ns.histMu.Unlock()
}

// timedWithState runs f under p's lock like withState, additionally
// recording the wait-plus-hold latency into the namespace's lock-wait
// histogram. Used on the hot reservation and balancer-mutation paths
// (§5 "held for the minimum necessary window") so that window's actual
// latency distribution is observable.
func (ns *Namespace) timedWithState(p *Partition, f func(*PartitionState)) {
	start := time.Now()
	p.withState(f)
	ns.recordLockWait(time.Since(start).Nanoseconds())
}

// LockWaitHistogram returns a snapshot of the namespace's partition-lock
// wait-plus-hold latency histogram (as recorded by timedWithState), in
// nanoseconds. The snapshot is a deep
// copy so the caller can read it after releasing histMu without racing
// concurrent Add calls.
func (ns *Namespace) LockWaitHistogram() *histogram.Histogram[int64] {
	ns.histMu.Lock()
	defer ns.histMu.Unlock()
	return ns.lockWaitHist.Clone()
}

// P99LockWaitNanos reports the 99th-percentile partition-lock wait-plus-hold
// latency observed so far, for the admin-facing diagnostic dump.
func (ns *Namespace) P99LockWaitNanos() int64 {
	ns.histMu.Lock()
	defer ns.histMu.Unlock()
	return ns.lockWaitHist.Percentile(0.99)
}

// Core is the top-level entry point: one process-wide self node identity
// plus a directory of namespaces (§6 "Configuration & environment").
type Core struct {
	selfNodeID uint64
	registry   *namespaceRegistry
}

// NewCore creates a Core identifying this process as selfNodeID on the
// cluster fabric. Namespaces are added afterward with AddNamespace.
func NewCore(selfNodeID uint64) *Core {
	return &Core{
		selfNodeID: selfNodeID,
		registry:   newNamespaceRegistry(),
	}
}

// SelfNodeID returns this process's cluster node identifier.
func (c *Core) SelfNodeID() uint64 { return c.selfNodeID }

// AddNamespace constructs and registers a namespace. warmRoots/
// warmSubRoots may be nil for a cold start, or length-P slices of
// persisted roots for a warm restart (§3.3).
func (c *Core) AddNamespace(store TreeStore, cfg NamespaceConfig, warmRoots, warmSubRoots []PersistedRoot) (*Namespace, Error) {
	ns, err := newNamespace(c, store, cfg, warmRoots, warmSubRoots)
	if err != nil {
		return nil, err
	}
	c.registry.set(cfg.Name, ns)
	return ns, nil
}

// Namespace looks up a namespace previously added with AddNamespace.
func (c *Core) Namespace(name string) (*Namespace, bool) {
	return c.registry.get(name)
}

// Namespaces returns every registered namespace, in no particular
// order.
func (c *Core) Namespaces() []*Namespace {
	var out []*Namespace
	c.registry.iterate(func(_ string, ns *Namespace) bool {
		out = append(out, ns)
		return true
	})
	return out
}

// Shutdown locks every partition in every namespace and hands its trees
// back to storage. It never returns the partition locks: the process is
// terminating (§3.3).
func (c *Core) Shutdown() {
	c.registry.iterate(func(_ string, ns *Namespace) bool {
		for _, p := range ns.partitions {
			shutdownPartition(ns, p)
		}
		return true
	})
}
