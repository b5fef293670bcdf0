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

// Package types holds small value types shared across the partition core
// that don't belong to any one component: result codes, and (in sibling
// packages) the rand/histogram/pool utilities.
package types

import "fmt"

// ResultCode classifies why a reservation or diagnostic call failed.
// It is intentionally a small, closed set: this core only ever produces
// the handful of outcomes its reservation protocol can actually reach
// (see §7 of the spec it implements), not the full result-code space of
// a wire protocol.
type ResultCode int

const (
	// OK means no error; present so a ResultCode is safe to use as a
	// zero-valued success indicator in a struct that needs one.
	OK ResultCode = iota

	// NOT_LOCAL means a reserve_read/reserve_write/reserve_query was
	// routed to a node that is not the best node for that partition.
	NOT_LOCAL

	// UNAVAILABLE means reserve_xdr_read found the partition holding no
	// data (null version).
	UNAVAILABLE

	// TIMEOUT means a deadline-bounded reservation could not acquire the
	// partition lock before its deadline elapsed.
	TIMEOUT

	// INVARIANT_VIOLATION means an inconsistency was detected in
	// partition state that should be structurally impossible (e.g. this
	// node appearing twice in a replica list). Fatal.
	INVARIANT_VIOLATION

	// COMMON_ERROR is a catch-all for errors that don't fit the other
	// categories (malformed configuration, validation failures).
	COMMON_ERROR
)

var resultCodeNames = map[ResultCode]string{
	OK:                  "OK",
	NOT_LOCAL:           "NOT_LOCAL",
	UNAVAILABLE:         "UNAVAILABLE",
	TIMEOUT:             "TIMEOUT",
	INVARIANT_VIOLATION: "INVARIANT_VIOLATION",
	COMMON_ERROR:        "COMMON_ERROR",
}

// String implements fmt.Stringer.
func (rc ResultCode) String() string {
	if s, ok := resultCodeNames[rc]; ok {
		return s
	}
	return fmt.Sprintf("ResultCode(%d)", int(rc))
}

// ResultCodeToString mirrors the teacher's free function of the same
// name, kept so callers that prefer it over the Stringer don't need to
// change call sites when porting error-formatting code.
func ResultCodeToString(rc ResultCode) string {
	return rc.String()
}
