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

import "sync"

// namespaceRegistry is a thread-safe directory of namespaces, keyed by
// name. It uses a sync.Map internally so Core.Namespace can be called
// from any number of goroutines without explicit locking, the same way
// the client's namespace-to-partition-map directory does.
type namespaceRegistry struct {
	m sync.Map
}

func newNamespaceRegistry() *namespaceRegistry {
	return &namespaceRegistry{}
}

func (r *namespaceRegistry) get(name string) (*Namespace, bool) {
	v, ok := r.m.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*Namespace), true
}

func (r *namespaceRegistry) set(name string, ns *Namespace) {
	r.m.Store(name, ns)
}

func (r *namespaceRegistry) delete(name string) {
	r.m.Delete(name)
}

func (r *namespaceRegistry) len() int {
	n := 0
	r.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (r *namespaceRegistry) iterate(f func(name string, ns *Namespace) bool) {
	r.m.Range(func(k, v any) bool {
		return f(k.(string), v.(*Namespace))
	})
}
