// Copyright 2023 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package attr

import (
	"testing"
)

func TestGet(t *testing.T) {
	var set Set

	if !set.Empty() {
		t.Errorf("got non-empty zero value, want empty")
	}

	if got, ok := set.Get(1); ok {
		t.Errorf("got %v %v, want false", got, ok)
	}

	want := "banana"
	set.Set(1, want)
	if got, ok := set.Get(1); !ok || got != want {
		t.Errorf("got %v, want %q", got, want)
	}
	if !set.Has(1) {
		t.Errorf("Has(1) = false, want true")
	}
	if set.Has(2) {
		t.Errorf("Has(2) = true, want false")
	}

	set2 := set.Clone()
	if got, ok := set2.Get(1); !ok || got != want {
		t.Errorf("got %v, want %q", got, want)
	}
	if got, ok := set2.Get(2); ok {
		t.Errorf("got %v %v, want false", got, ok)
	}

	// Mutating the clone must not affect the original.
	set2.Set(2, 42)
	if set.Has(2) {
		t.Errorf("original set picked up clone's mutation")
	}
}

func TestSetHeterogeneousValues(t *testing.T) {
	var set Set
	set.Set(0, "a string")
	set.Set(1, 7)
	set.Set(2, []string{"x", "y"})

	if got, ok := set.Get(0); !ok || got != "a string" {
		t.Errorf("Get(0) = %v, %v, want %q, true", got, ok, "a string")
	}
	if got, ok := set.Get(1); !ok || got != 7 {
		t.Errorf("Get(1) = %v, %v, want 7, true", got, ok)
	}
	if got, ok := set.Get(2); !ok {
		t.Errorf("Get(2) ok = false, want true")
	} else if s, ok := got.([]string); !ok || len(s) != 2 {
		t.Errorf("Get(2) = %v, want []string of length 2", got)
	}
}

func TestSetOverwrite(t *testing.T) {
	var set Set
	set.Set(5, "first")
	set.Set(5, "second")

	if got, ok := set.Get(5); !ok || got != "second" {
		t.Errorf("Get(5) = %v, %v, want %q, true", got, ok, "second")
	}
}

func TestForEachAttrOrder(t *testing.T) {
	var set Set
	set.Set(9, "i")
	set.Set(3, "ii")
	set.Set(40, "iii")

	var keys []uint8
	set.ForEachAttr(func(key uint8, value any) {
		keys = append(keys, key)
	})

	want := []uint8{3, 9, 40}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("keys[%d] = %d, want %d", i, keys[i], k)
		}
	}
}

func TestSetKeyTooLargePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Set(64, ...) did not panic")
		}
	}()
	var set Set
	set.Set(64, "oops")
}
