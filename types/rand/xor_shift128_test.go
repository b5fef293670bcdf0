// Copyright 2014-2022 Aerospike, Inc.
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

package rand

import "testing"

func TestXor128Rand_Uint64_NotConstant(t *testing.T) {
	r := NewXorRand()
	a := r.Uint64()
	b := r.Uint64()
	c := r.Uint64()
	if a == b && b == c {
		t.Fatalf("expected a changing sequence, got %d, %d, %d", a, b, c)
	}
}

func TestXor128Rand_Read_FillsSlice(t *testing.T) {
	r := NewXorRand()
	buf := make([]byte, 64)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("expected to fill %d bytes, got %d", len(buf), n)
	}
}
