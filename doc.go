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

// Package partcore implements the partition table and reservation core
// of a sharded, replicated key-value store: per-partition role
// derivation, a reservation protocol that pins a partition's record
// trees for the duration of a read/write/migrate/query, a client-facing
// replica bitmap kept in sync by an external balancer, and compact
// diagnostic serializers.
//
// A process starts by constructing a Core with its own node identity,
// then adds one Namespace per configured namespace with Core.AddNamespace.
// Request handlers reserve partitions through the Namespace's
// Reserve* methods; the balancer mutates partition state and refreshes
// the client bitmap in one call via Namespace.MutatePartition.
package partcore
