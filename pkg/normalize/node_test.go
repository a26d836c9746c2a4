// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package normalize

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNumber_Canonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1"},
		{"1.0", "1"},
		{"-0", "0"},
		{"1e2", "100"},
		{"0.5", "0.5"},
		{"2.50", "2.5"},
		{"18446744073709551615", "18446744073709551615"},
		{"1e300", "1e+300"},
	}
	for _, tt := range tests {
		n, err := Number(tt.in)
		if err != nil {
			t.Fatalf("Number(%q) error = %v", tt.in, err)
		}
		if got := n.NumberText(); got != tt.want {
			t.Errorf("Number(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"abc", "1e400", ""} {
		if _, err := Number(bad); err == nil {
			t.Errorf("Number(%q) should fail", bad)
		}
	}
	if _, err := Float(math.NaN()); err == nil {
		t.Error("Float(NaN) should fail")
	}
}

func TestNode_MarshalJSON_SortedKeys(t *testing.T) {
	n := Map(map[string]*Node{
		"zeta":  Int(1),
		"alpha": List(String("<a&b>"), Bool(true), nil),
		"mid":   Map(nil),
	})
	got, err := n.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"alpha":["<a&b>",true,null],"mid":{},"zeta":1}`
	if string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func TestNode_UnmarshalJSON(t *testing.T) {
	var n Node
	if err := json.Unmarshal([]byte(`{"b":[1.0,"x"],"a":null}`), &n); err != nil {
		t.Fatal(err)
	}
	if n.String() != `{"a":null,"b":[1,"x"]}` {
		t.Errorf("round trip = %s", n.String())
	}
}

func TestNode_Equal(t *testing.T) {
	a := Map(map[string]*Node{"title": String("A"), "items": List(Int(1), Int(2))})
	b := Map(map[string]*Node{"items": List(Int(1), Int(2)), "title": String("A")})
	c := Map(map[string]*Node{"items": List(Int(2), Int(1)), "title": String("A")})

	if !a.Equal(b) {
		t.Error("maps with same entries should be equal regardless of construction order")
	}
	if a.Equal(c) {
		t.Error("list order must matter")
	}
	one, _ := Number("1.0")
	if !Int(1).Equal(one) {
		t.Error("1 and 1.0 should normalize to the same number")
	}
	if String("1").Equal(Int(1)) {
		t.Error("string and number must differ")
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	var raw interface{}
	if err := json.Unmarshal([]byte(`{"x":[1,2.5,{"y":null,"z":"s"}],"w":true,"e":[],"m":{}}`), &raw); err != nil {
		t.Fatal(err)
	}
	n, err := FromValue(raw)
	if err != nil {
		t.Fatal(err)
	}

	once := Canonicalize(n)
	twice := Canonicalize(once)
	if !once.Equal(twice) || once.String() != twice.String() {
		t.Errorf("Canonicalize is not idempotent:\n%s\n%s", once, twice)
	}
	if once == n {
		t.Error("Canonicalize must return a copy")
	}
}

func TestFromValue_YAMLKeys(t *testing.T) {
	n, err := FromValue(map[interface{}]interface{}{1: "one", "two": 2})
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := n.Get("1"); !ok || v.StringValue() != "one" {
		t.Errorf("integer key not converted: %s", n)
	}

	if _, err := FromValue(map[interface{}]interface{}{1: "a", "1": "b"}); err == nil {
		t.Error("colliding keys should fail")
	}
	if _, err := FromValue(struct{}{}); err == nil {
		t.Error("unsupported types should fail")
	}
}

func TestLeaves(t *testing.T) {
	n := Map(map[string]*Node{
		"title": String("A"),
		"items": List(Int(1), Int(2), Int(3)),
		"empty": List(),
	})
	if got := n.Leaves(); got != 5 {
		t.Errorf("Leaves() = %d, want 5", got)
	}
}
