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
	"encoding/base64"
	"sort"
	"strconv"
	"strings"

	"github.com/replikv/partcore/types/pool"
)

// scratchPool backs the hex/decimal scratch buffers the diagnostic
// dumps format node ids and record counts into, instead of letting
// strconv.Append* allocate a fresh slice per field on a 4096-partition
// walk.
var scratchPool = pool.NewTieredBufferPool(16, 256)

func appendHex(sb *strings.Builder, v uint64) {
	buf := scratchPool.Get(16)
	buf = strconv.AppendUint(buf[:0], v, 16)
	sb.Write(buf)
	scratchPool.Put(buf)
}

func appendInt(sb *strings.Builder, v int) {
	buf := scratchPool.Get(16)
	buf = strconv.AppendInt(buf[:0], int64(v), 10)
	sb.Write(buf)
	scratchPool.Put(buf)
}

// sortedNamespaces returns every registered namespace ordered by name,
// so repeated dumps are reproducible even though the underlying
// registry is a sync.Map with no iteration order of its own.
func (c *Core) sortedNamespaces() []*Namespace {
	out := c.Namespaces()
	sort.Slice(out, func(i, j int) bool { return out[i].cfg.Name < out[j].cfg.Name })
	return out
}

// mastersFragment computes this namespace's §4.6 "masters" record,
// deduping concurrent callers via singleflight — a burst of admin-UI
// polls on the same namespace computes the base64 mirror once.
func (ns *Namespace) mastersFragment() string {
	v, _, _ := ns.dumpGroup.Do("masters", func() (interface{}, error) {
		return ns.cfg.Name + ":" + ns.ClientMapB64(0), nil
	})
	return v.(string)
}

// prolesFragment computes the deprecated "proles" dump (§9: "A rewrite
// MAY omit both; if retained, keep them behind a namespace feature
// flag" — retained here, gated on no separate flag since the client
// replica map itself already only exists when the namespace was
// constructed).
func (ns *Namespace) prolesFragment() string {
	v, _, _ := ns.dumpGroup.Do("proles", func() (interface{}, error) {
		self := ns.selfNodeID()
		p := ns.PartitionCount()
		bitmap := make([]byte, (p+7)/8)
		for pid := 0; pid < p; pid++ {
			part := ns.Partition(pid)
			part.withState(func(s *PartitionState) {
				rank := findSelfInReplicas(self, s)
				if rank > 0 && s.Origin == 0 {
					bitmap[pid/8] |= 0x80 >> uint(pid%8)
				}
			})
		}
		return ns.cfg.Name + ":" + base64.StdEncoding.EncodeToString(bitmap), nil
	})
	return v.(string)
}

// allReplicasFragment computes §4.6's "all-replicas" record.
func (ns *Namespace) allReplicasFragment() string {
	v, _, _ := ns.dumpGroup.Do("all-replicas", func() (interface{}, error) {
		var sb strings.Builder
		sb.WriteString(ns.cfg.Name)
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(ns.ReplicationFactor()))
		for r := range ns.clientMaps {
			sb.WriteString(",")
			sb.WriteString(ns.ClientMapB64(r))
		}
		return sb.String(), nil
	})
	return v.(string)
}

// DumpMasters renders the §4.6 "masters" dump across every namespace:
// "<ns>:<base64 of rank-0 bitmap>", semicolon-joined, no trailing
// semicolon.
func (c *Core) DumpMasters() string {
	nss := c.sortedNamespaces()
	frags := make([]string, len(nss))
	for i, ns := range nss {
		frags[i] = ns.mastersFragment()
	}
	return strings.Join(frags, ";")
}

// DumpProles renders the deprecated §4.6 "proles" dump across every
// namespace.
func (c *Core) DumpProles() string {
	nss := c.sortedNamespaces()
	frags := make([]string, len(nss))
	for i, ns := range nss {
		frags[i] = ns.prolesFragment()
	}
	return strings.Join(frags, ";")
}

// DumpAllReplicas renders the §4.6 "all-replicas" dump across every
// namespace: "<ns>:<replication_factor>,<b64 rank 0>,<b64 rank 1>,...".
func (c *Core) DumpAllReplicas() string {
	nss := c.sortedNamespaces()
	frags := make([]string, len(nss))
	for i, ns := range nss {
		frags[i] = ns.allReplicasFragment()
	}
	return strings.Join(frags, ";")
}

const infoHeader = "ns:pid:state:replica:n_dupl:origin:target:emigrates:immigrates:" +
	"records:sub_records:tombstones:ldt_version:version:final_version"

// infoRecord renders one (ns, pid) record of the §4.6 per-partition
// info dump.
func (ns *Namespace) infoRecord(pid int) string {
	self := ns.selfNodeID()
	rf := ns.ReplicationFactor()
	p := ns.Partition(pid)

	var sb strings.Builder
	sb.WriteString(ns.cfg.Name)
	sb.WriteByte(':')
	appendInt(&sb, pid)
	sb.WriteByte(':')

	p.withState(func(s *PartitionState) {
		rank := selfReplicaRankLocked(self, rf, s)
		isReplica := rank >= 0

		sb.WriteByte(s.Gen.StateChar(isReplica, s.PendingImmigrations))
		sb.WriteByte(':')
		if isReplica {
			appendInt(&sb, rank)
		} else {
			appendInt(&sb, s.NReplicas)
		}
		sb.WriteByte(':')
		appendInt(&sb, s.NDupl)
		sb.WriteByte(':')
		appendHex(&sb, s.Origin)
		sb.WriteByte(':')
		appendHex(&sb, s.Target)
		sb.WriteByte(':')
		appendInt(&sb, s.PendingEmigrations)
		sb.WriteByte(':')
		appendInt(&sb, s.PendingImmigrations)
		sb.WriteByte(':')
		appendInt(&sb, p.vp.Size())
		sb.WriteByte(':')
		appendInt(&sb, p.subVp.Size())
		sb.WriteByte(':')
		appendInt(&sb, s.NTombstones)
		sb.WriteByte(':')
		appendHex(&sb, s.CurrentOutgoingLDTVersion)
		sb.WriteByte(':')
		sb.WriteString(s.Gen.Version().String())
		sb.WriteByte(':')
		sb.WriteString(s.Gen.FinalVersion().String())
	})

	return sb.String()
}

// DumpInfo renders the full §4.6 per-partition info dump: one header
// line, then one record per (ns, pid) across every namespace.
func (c *Core) DumpInfo() string {
	var sb strings.Builder
	sb.WriteString(infoHeader)
	for _, ns := range c.sortedNamespaces() {
		for pid := 0; pid < ns.PartitionCount(); pid++ {
			sb.WriteByte('\n')
			sb.WriteString(ns.infoRecord(pid))
		}
	}
	return sb.String()
}

// DumpLockWaitP99 renders the §5 partition-lock wait-plus-hold latency dump: one
// "<ns>:<p99 nanos>" fragment per namespace, semicolon-joined, so an
// operator can spot a namespace whose lock contention is creeping up.
func (c *Core) DumpLockWaitP99() string {
	nss := c.sortedNamespaces()
	frags := make([]string, len(nss))
	for i, ns := range nss {
		frags[i] = ns.cfg.Name + ":" + strconv.FormatInt(ns.P99LockWaitNanos(), 10)
	}
	return strings.Join(frags, ";")
}

// ReplicaBucket accumulates the §4.6 replica-stats aggregator's
// {objects, sub_objects, tombstones} triple for one role classification.
type ReplicaBucket struct {
	Objects    int64
	SubObjects int64
	Tombstones int64
}

// ReplicaStats buckets every partition this node holds by role:
// working master, prole, or non-replica.
type ReplicaStats struct {
	WorkingMaster ReplicaBucket
	Prole         ReplicaBucket
	NonReplica    ReplicaBucket
}

func (ns *Namespace) accumulateReplicaStats(into *ReplicaStats) {
	self := ns.selfNodeID()
	for pid := 0; pid < ns.PartitionCount(); pid++ {
		p := ns.Partition(pid)
		p.withState(func(s *PartitionState) {
			rank := findSelfInReplicas(self, s)
			working := isWorkingMaster(rank, s)

			objects := p.vp.Size() - s.NTombstones
			if objects < 0 {
				objects = 0
			}
			subObjects := p.subVp.Size()

			var bucket *ReplicaBucket
			switch {
			case working:
				bucket = &into.WorkingMaster
			case rank > 0:
				bucket = &into.Prole
			default:
				bucket = &into.NonReplica
			}
			bucket.Objects += int64(objects)
			bucket.SubObjects += int64(subObjects)
			bucket.Tombstones += int64(s.NTombstones)
		})
	}
}

// ReplicaStats walks every partition of every namespace and classifies
// it into the working-master / prole / non-replica buckets (§4.6).
func (c *Core) ReplicaStats() ReplicaStats {
	var stats ReplicaStats
	for _, ns := range c.Namespaces() {
		ns.accumulateReplicaStats(&stats)
	}
	return stats
}
