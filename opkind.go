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

// ReservationKind identifies which of the six reservation operations
// (§4.4) produced a Reservation. It is an opaque pointer type, the same
// trick the client's operation-type catalog uses, so kinds compare by
// identity and a caller cannot construct one out of thin air.
type ReservationKind *struct{ kind byte }

var (
	kindRead           ReservationKind = &struct{ kind byte }{1}
	kindWrite          ReservationKind = &struct{ kind byte }{2}
	kindMigrate        ReservationKind = &struct{ kind byte }{3}
	kindMigrateTimeout ReservationKind = &struct{ kind byte }{4}
	kindQuery          ReservationKind = &struct{ kind byte }{5}
	kindXDRRead        ReservationKind = &struct{ kind byte }{6}
)
