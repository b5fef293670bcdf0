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

import "fmt"

// Version is the opaque partition-version tuple used under the modern
// clustering regime (§3.1). It identifies a partition's data-generation
// lineage; this core never interprets its bits beyond the null check.
type Version [2]uint64

// IsNull reports whether this Version carries no data.
func (v Version) IsNull() bool { return v[0] == 0 && v[1] == 0 }

// String renders the version in hex, as the client-facing info dump
// requires (§4.6, §6).
func (v Version) String() string { return fmt.Sprintf("%016x%016x", v[0], v[1]) }

// LegacyState is the discrete partition state of the legacy clustering
// regime (§3.1).
type LegacyState byte

const (
	StateUndef LegacyState = iota
	StateSync
	StateDesync
	StateZombie
	StateAbsent
)

func (s LegacyState) char() byte {
	switch s {
	case StateSync:
		return 'S'
	case StateDesync:
		return 'D'
	case StateZombie:
		return 'Z'
	case StateAbsent:
		return 'A'
	default:
		return 'U'
	}
}

// VersionInfo is the legacy regime's version tuple, opaque in the same
// way Version is.
type VersionInfo [2]uint64

// IsNull reports whether this VersionInfo carries no data.
func (vi VersionInfo) IsNull() bool { return vi[0] == 0 && vi[1] == 0 }

func (vi VersionInfo) String() string { return fmt.Sprintf("%016x%016x", vi[0], vi[1]) }

// Generation is the tagged union resolving spec.md §9's "Legacy vs new
// clustering regimes" open question: rather than a process-wide global
// flag, each Namespace picks one regime at construction and every
// Partition in it carries a Generation value of that regime only.
type Generation struct {
	legacy bool

	// modern regime
	version      Version
	finalVersion Version

	// legacy regime
	state              LegacyState
	versionInfo        VersionInfo
	primaryVersionInfo VersionInfo
}

// NewModernGeneration returns a zero-valued Generation in the modern
// clustering regime (null version, no data).
func NewModernGeneration() Generation {
	return Generation{legacy: false}
}

// NewLegacyGeneration returns a zero-valued Generation in the legacy
// regime (state ABSENT, per §4.1's init contract).
func NewLegacyGeneration() Generation {
	return Generation{legacy: true, state: StateAbsent}
}

// IsLegacy reports which regime this Generation belongs to.
func (g Generation) IsLegacy() bool { return g.legacy }

// HasData reports whether the partition holds authoritative data under
// either regime: !version.is_null() (modern) or !version_info.is_null()
// (legacy). Used by reserve_xdr_read (§4.4).
func (g Generation) HasData() bool {
	if g.legacy {
		return !g.versionInfo.IsNull()
	}
	return !g.version.IsNull()
}

// RejectReplicaWrite computes the reservation field of the same name
// (§4.4 step 3): version.is_null() under the modern regime, or
// state == ABSENT under legacy.
//
// The source flags this computation "FIXME — is this correct?"; per
// spec.md §9 that is left as specified rather than silently fixed.
func (g Generation) RejectReplicaWrite() bool {
	if g.legacy {
		return g.state == StateAbsent
	}
	return g.version.IsNull()
}

// StateChar renders the one-character partition state used by the
// per-partition info dump (§4.6). isReplica and pendingImmigrations
// describe the owning partition from the caller's point of view, since
// the modern regime's letter depends on them.
func (g Generation) StateChar(isReplica bool, pendingImmigrations int) byte {
	if g.legacy {
		return g.state.char()
	}
	switch {
	case g.version.IsNull():
		return 'A'
	case isReplica && pendingImmigrations == 0:
		return 'S'
	case isReplica && pendingImmigrations > 0:
		return 'D'
	default:
		return 'Z'
	}
}

// Version returns the modern version tuple (zero value under legacy).
func (g Generation) Version() Version { return g.version }

// FinalVersion returns the modern final-version tuple (zero value under
// legacy).
func (g Generation) FinalVersion() Version { return g.finalVersion }

// VersionInfo returns the legacy version tuple (zero value under
// modern).
func (g Generation) VersionInfo() VersionInfo { return g.versionInfo }

// PrimaryVersionInfo returns the legacy primary-version tuple (zero
// value under modern).
func (g Generation) PrimaryVersionInfo() VersionInfo { return g.primaryVersionInfo }

// State returns the legacy discrete state (StateUndef under modern).
func (g Generation) State() LegacyState { return g.state }

// WithVersion returns a copy of g with its modern version fields
// replaced. Panics if g is a legacy Generation: the balancer must not
// cross regimes on a live namespace.
func (g Generation) WithVersion(version, finalVersion Version) Generation {
	if g.legacy {
		panic("partcore: WithVersion on a legacy Generation")
	}
	g.version = version
	g.finalVersion = finalVersion
	return g
}

// WithLegacyState returns a copy of g with its legacy fields replaced.
// Panics if g is a modern Generation.
func (g Generation) WithLegacyState(state LegacyState, vi, primary VersionInfo) Generation {
	if !g.legacy {
		panic("partcore: WithLegacyState on a modern Generation")
	}
	g.state = state
	g.versionInfo = vi
	g.primaryVersionInfo = primary
	return g
}
