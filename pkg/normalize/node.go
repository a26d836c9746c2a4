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

// Package normalize turns fetched artifacts into canonical document trees.
//
// Every supported format normalizes to the same Node model, so the differ
// never needs to know where a document came from. Maps are traversed in
// sorted key order and numbers are stored in a canonical decimal form:
// byte-identical or semantically equal inputs produce equal trees.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind is the type of a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Node is one value in a normalized document.
type Node struct {
	kind Kind
	b    bool
	num  string
	str  string
	list []*Node
	m    map[string]*Node
}

// Null returns a null node.
func Null() *Node { return &Node{kind: KindNull} }

// Bool returns a boolean node.
func Bool(v bool) *Node { return &Node{kind: KindBool, b: v} }

// String returns a string node.
func String(v string) *Node { return &Node{kind: KindString, str: v} }

// Int returns a number node for an integer.
func Int(v int64) *Node { return &Node{kind: KindNumber, num: strconv.FormatInt(v, 10)} }

// Float returns a number node. NaN and infinities are rejected.
func Float(v float64) (*Node, error) {
	s, err := canonicalFloat(v)
	if err != nil {
		return nil, err
	}
	return &Node{kind: KindNumber, num: s}, nil
}

// Number returns a number node from its decimal text.
func Number(text string) (*Node, error) {
	s, err := canonicalNumber(text)
	if err != nil {
		return nil, err
	}
	return &Node{kind: KindNumber, num: s}, nil
}

// List returns a list node. Nil elements become null nodes.
func List(items ...*Node) *Node {
	out := make([]*Node, len(items))
	for i, it := range items {
		if it == nil {
			it = Null()
		}
		out[i] = it
	}
	return &Node{kind: KindList, list: out}
}

// Map returns a map node. The map is copied; nil values become null nodes.
func Map(fields map[string]*Node) *Node {
	out := make(map[string]*Node, len(fields))
	for k, v := range fields {
		if v == nil {
			v = Null()
		}
		out[k] = v
	}
	return &Node{kind: KindMap, m: out}
}

// Kind returns the node type. A nil node is null.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

// IsScalar reports whether n is not a list or map.
func (n *Node) IsScalar() bool {
	k := n.Kind()
	return k != KindList && k != KindMap
}

// BoolValue returns the value of a bool node.
func (n *Node) BoolValue() bool { return n != nil && n.b }

// NumberText returns the canonical decimal text of a number node.
func (n *Node) NumberText() string {
	if n == nil {
		return ""
	}
	return n.num
}

// Float64 returns a number node's value as a float64.
func (n *Node) Float64() (float64, bool) {
	if n.Kind() != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.num, 64)
	return f, err == nil
}

// StringValue returns the value of a string node.
func (n *Node) StringValue() string {
	if n == nil {
		return ""
	}
	return n.str
}

// Len returns the number of list elements or map entries.
func (n *Node) Len() int {
	switch n.Kind() {
	case KindList:
		return len(n.list)
	case KindMap:
		return len(n.m)
	}
	return 0
}

// Index returns the i-th list element.
func (n *Node) Index(i int) *Node {
	if n.Kind() != KindList || i < 0 || i >= len(n.list) {
		return nil
	}
	return n.list[i]
}

// Items returns a copy of the list elements.
func (n *Node) Items() []*Node {
	if n.Kind() != KindList {
		return nil
	}
	out := make([]*Node, len(n.list))
	copy(out, n.list)
	return out
}

// Get returns the map value for key.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind() != KindMap {
		return nil, false
	}
	v, ok := n.m[key]
	return v, ok
}

// Keys returns map keys in sorted order.
func (n *Node) Keys() []string {
	if n.Kind() != KindMap {
		return nil
	}
	keys := make([]string, 0, len(n.m))
	for k := range n.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ScalarText renders a scalar as text, used for identity keys and paths.
func (n *Node) ScalarText() string {
	switch n.Kind() {
	case KindBool:
		return strconv.FormatBool(n.b)
	case KindNumber:
		return n.num
	case KindString:
		return n.str
	case KindNull:
		return "null"
	}
	return ""
}

// Equal reports deep structural equality.
func (n *Node) Equal(o *Node) bool {
	if n.Kind() != o.Kind() {
		return false
	}
	switch n.Kind() {
	case KindNull:
		return true
	case KindBool:
		return n.b == o.b
	case KindNumber:
		return n.num == o.num
	case KindString:
		return n.str == o.str
	case KindList:
		if len(n.list) != len(o.list) {
			return false
		}
		for i := range n.list {
			if !n.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(n.m) != len(o.m) {
			return false
		}
		for k, v := range n.m {
			ov, ok := o.m[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// Leaves counts scalar values, including empty lists and maps.
func (n *Node) Leaves() int {
	switch n.Kind() {
	case KindList:
		if len(n.list) == 0 {
			return 1
		}
		total := 0
		for _, c := range n.list {
			total += c.Leaves()
		}
		return total
	case KindMap:
		if len(n.m) == 0 {
			return 1
		}
		total := 0
		for _, c := range n.m {
			total += c.Leaves()
		}
		return total
	}
	return 1
}

// Interface converts the node to plain Go values: nil, bool, json.Number,
// string, []interface{} and map[string]interface{}.
func (n *Node) Interface() interface{} {
	switch n.Kind() {
	case KindBool:
		return n.b
	case KindNumber:
		return json.Number(n.num)
	case KindString:
		return n.str
	case KindList:
		out := make([]interface{}, len(n.list))
		for i, c := range n.list {
			out[i] = c.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]interface{}, len(n.m))
		for k, c := range n.m {
			out[k] = c.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON encodes the node with sorted keys and no extra whitespace.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	switch n.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(n.b))
	case KindNumber:
		buf.WriteString(n.num)
	case KindString:
		return writeJSONString(buf, n.str)
	case KindList:
		buf.WriteByte('[')
		for i, c := range n.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := c.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, k := range n.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := n.m[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encoder appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON decodes any JSON value into the node.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	parsed, err := FromValue(v)
	if err != nil {
		return err
	}
	*n = *parsed
	return nil
}

// String renders the node as compact JSON.
func (n *Node) String() string {
	b, err := n.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", n.Kind())
	}
	return string(b)
}

// FromValue converts decoded JSON or YAML values into a node tree.
func FromValue(v interface{}) (*Node, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case *Node:
		return Canonicalize(t), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String())
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case int32:
		return Int(int64(t)), nil
	case uint64:
		return &Node{kind: KindNumber, num: strconv.FormatUint(t, 10)}, nil
	case uint:
		return &Node{kind: KindNumber, num: strconv.FormatUint(uint64(t), 10)}, nil
	case time.Time:
		return String(t.UTC().Format(time.RFC3339Nano)), nil
	case []byte:
		return String(string(t)), nil
	case []interface{}:
		items := make([]*Node, len(t))
		for i, e := range t {
			c, err := FromValue(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = c
		}
		return &Node{kind: KindList, list: items}, nil
	case map[string]interface{}:
		fields := make(map[string]*Node, len(t))
		for k, e := range t {
			c, err := FromValue(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			fields[k] = c
		}
		return &Node{kind: KindMap, m: fields}, nil
	case map[interface{}]interface{}:
		fields := make(map[string]*Node, len(t))
		for k, e := range t {
			key := fmt.Sprint(k)
			if _, dup := fields[key]; dup {
				return nil, fmt.Errorf("duplicate key %q after string conversion", key)
			}
			c, err := FromValue(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			fields[key] = c
		}
		return &Node{kind: KindMap, m: fields}, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

// Canonicalize returns a deep copy of n in canonical form. It is
// idempotent: Canonicalize(Canonicalize(n)) equals Canonicalize(n).
func Canonicalize(n *Node) *Node {
	switch n.Kind() {
	case KindNull:
		return Null()
	case KindBool:
		return Bool(n.b)
	case KindNumber:
		s, err := canonicalNumber(n.num)
		if err != nil {
			s = n.num
		}
		return &Node{kind: KindNumber, num: s}
	case KindString:
		return String(n.str)
	case KindList:
		items := make([]*Node, len(n.list))
		for i, c := range n.list {
			items[i] = Canonicalize(c)
		}
		return &Node{kind: KindList, list: items}
	case KindMap:
		fields := make(map[string]*Node, len(n.m))
		for k, c := range n.m {
			fields[k] = Canonicalize(c)
		}
		return &Node{kind: KindMap, m: fields}
	}
	return Null()
}

// Integers within this magnitude print without exponent or fraction.
const maxExactInt = 1 << 53

func canonicalNumber(text string) (string, error) {
	text = strings.TrimSpace(text)
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	if u, err := strconv.ParseUint(text, 10, 64); err == nil {
		return strconv.FormatUint(u, 10), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return "", fmt.Errorf("invalid number %q", text)
	}
	return canonicalFloat(f)
}

func canonicalFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite number %v", f)
	}
	if f == math.Trunc(f) && math.Abs(f) <= maxExactInt {
		return strconv.FormatInt(int64(f), 10), nil
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}
