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

// Package diff computes structural discrepancies between a reference
// document and a candidate document.
package diff

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/normalize"
)

// Kind classifies a discrepancy.
type Kind string

const (
	// Added marks a value present in the candidate but not the reference.
	Added Kind = "added"

	// Removed marks a value present in the reference but not the candidate.
	Removed Kind = "removed"

	// Changed marks a scalar whose value differs between the documents.
	Changed Kind = "changed"
)

// Kinds lists every discrepancy kind in a stable order.
var Kinds = []Kind{Added, Removed, Changed}

// RootPath is the path reported for a discrepancy at the document root.
const RootPath = "$"

// Discrepancy is a single structural difference.
type Discrepancy struct {
	// Kind is added, removed or changed.
	Kind Kind `json:"kind"`

	// Path locates the value, e.g. "items[2]" or "a.b".
	Path string `json:"path"`

	// Old is the reference value; nil for Added.
	Old *normalize.Node `json:"old,omitempty"`

	// New is the candidate value; nil for Removed.
	New *normalize.Node `json:"new,omitempty"`
}

// discrepancyJSON keeps an explicit null Old or New distinct from an
// absent one.
type discrepancyJSON struct {
	Kind Kind            `json:"kind"`
	Path string          `json:"path"`
	Old  json.RawMessage `json:"old,omitempty"`
	New  json.RawMessage `json:"new,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d Discrepancy) MarshalJSON() ([]byte, error) {
	out := discrepancyJSON{Kind: d.Kind, Path: d.Path}
	var err error
	if d.Old != nil {
		if out.Old, err = d.Old.MarshalJSON(); err != nil {
			return nil, err
		}
	}
	if d.New != nil {
		if out.New, err = d.New.MarshalJSON(); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. A present null decodes to a
// null node rather than a nil pointer.
func (d *Discrepancy) UnmarshalJSON(data []byte) error {
	var in discrepancyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*d = Discrepancy{Kind: in.Kind, Path: in.Path}
	if len(in.Old) > 0 {
		d.Old = &normalize.Node{}
		if err := d.Old.UnmarshalJSON(in.Old); err != nil {
			return err
		}
	}
	if len(in.New) > 0 {
		d.New = &normalize.Node{}
		if err := d.New.UnmarshalJSON(in.New); err != nil {
			return err
		}
	}
	return nil
}

// Options tunes list matching.
type Options struct {
	// KeyFields are map fields, tried in order, that identify list
	// elements. A field is used for a list pair only when every element
	// of both lists is a map carrying a unique scalar value for it;
	// otherwise elements are matched by position.
	KeyFields []string
}

// Compute returns every discrepancy between reference and candidate,
// ordered by a sorted-key traversal. Equal documents yield an empty,
// non-nil slice. A whole missing or extra subtree is reported once at its
// root. When the two values at a path have different kinds, a Removed and
// an Added are reported at the same path.
func Compute(reference, candidate *normalize.Node, opts Options) []Discrepancy {
	d := &differ{opts: opts, out: []Discrepancy{}}
	d.node("", reference, candidate)
	return d.out
}

type differ struct {
	opts Options
	out  []Discrepancy
}

func (d *differ) node(path string, ref, cand *normalize.Node) {
	if ref.Kind() != cand.Kind() {
		d.emit(Discrepancy{Kind: Removed, Path: path, Old: ref})
		d.emit(Discrepancy{Kind: Added, Path: path, New: cand})
		return
	}

	switch ref.Kind() {
	case normalize.KindMap:
		d.maps(path, ref, cand)
	case normalize.KindList:
		if field, ok := d.identityField(ref, cand); ok {
			d.keyedLists(path, field, ref, cand)
		} else {
			d.lists(path, ref, cand)
		}
	default:
		if !ref.Equal(cand) {
			d.emit(Discrepancy{Kind: Changed, Path: path, Old: ref, New: cand})
		}
	}
}

func (d *differ) emit(disc Discrepancy) {
	if disc.Path == "" {
		disc.Path = RootPath
	}
	d.out = append(d.out, disc)
}

func (d *differ) maps(path string, ref, cand *normalize.Node) {
	refKeys, candKeys := ref.Keys(), cand.Keys()

	// Merge the two sorted key lists.
	i, j := 0, 0
	for i < len(refKeys) || j < len(candKeys) {
		switch {
		case j >= len(candKeys) || (i < len(refKeys) && refKeys[i] < candKeys[j]):
			old, _ := ref.Get(refKeys[i])
			d.emit(Discrepancy{Kind: Removed, Path: keyPath(path, refKeys[i]), Old: old})
			i++
		case i >= len(refKeys) || candKeys[j] < refKeys[i]:
			nv, _ := cand.Get(candKeys[j])
			d.emit(Discrepancy{Kind: Added, Path: keyPath(path, candKeys[j]), New: nv})
			j++
		default:
			old, _ := ref.Get(refKeys[i])
			nv, _ := cand.Get(candKeys[j])
			d.node(keyPath(path, refKeys[i]), old, nv)
			i++
			j++
		}
	}
}

func (d *differ) lists(path string, ref, cand *normalize.Node) {
	n := ref.Len()
	if cand.Len() > n {
		n = cand.Len()
	}
	for i := 0; i < n; i++ {
		p := indexPath(path, i)
		switch {
		case i >= cand.Len():
			d.emit(Discrepancy{Kind: Removed, Path: p, Old: ref.Index(i)})
		case i >= ref.Len():
			d.emit(Discrepancy{Kind: Added, Path: p, New: cand.Index(i)})
		default:
			d.node(p, ref.Index(i), cand.Index(i))
		}
	}
}

// keyedLists matches elements by identity: reference elements in reference
// order first, then candidate-only elements in candidate order.
func (d *differ) keyedLists(path, field string, ref, cand *normalize.Node) {
	candByKey := make(map[string]*normalize.Node, cand.Len())
	for _, e := range cand.Items() {
		candByKey[identity(e, field)] = e
	}
	seen := make(map[string]bool, ref.Len())

	for _, e := range ref.Items() {
		id := identity(e, field)
		seen[id] = true
		p := keyedPath(path, field, e)
		if other, ok := candByKey[id]; ok {
			d.node(p, e, other)
		} else {
			d.emit(Discrepancy{Kind: Removed, Path: p, Old: e})
		}
	}
	for _, e := range cand.Items() {
		if !seen[identity(e, field)] {
			d.emit(Discrepancy{Kind: Added, Path: keyedPath(path, field, e), New: e})
		}
	}
}

func (d *differ) identityField(ref, cand *normalize.Node) (string, bool) {
	if ref.Len() == 0 && cand.Len() == 0 {
		return "", false
	}
	for _, f := range d.opts.KeyFields {
		if uniquelyKeyed(ref, f) && uniquelyKeyed(cand, f) {
			return f, true
		}
	}
	return "", false
}

func uniquelyKeyed(list *normalize.Node, field string) bool {
	seen := make(map[string]bool, list.Len())
	for _, e := range list.Items() {
		if e.Kind() != normalize.KindMap {
			return false
		}
		v, ok := e.Get(field)
		if !ok || !v.IsScalar() || v.Kind() == normalize.KindNull {
			return false
		}
		id := identity(e, field)
		if seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

func identity(e *normalize.Node, field string) string {
	v, _ := e.Get(field)
	return v.Kind().String() + ":" + v.ScalarText()
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func keyPath(parent, key string) string {
	if identifier.MatchString(key) {
		if parent == "" {
			return key
		}
		return parent + "." + key
	}
	return parent + "[" + strconv.Quote(key) + "]"
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

func keyedPath(parent, field string, e *normalize.Node) string {
	v, _ := e.Get(field)
	text := v.ScalarText()
	if v.Kind() == normalize.KindString {
		text = strconv.Quote(text)
	}
	return parent + "[" + field + "=" + text + "]"
}

// Count tallies discrepancies by kind.
func Count(discrepancies []Discrepancy) map[Kind]int {
	out := make(map[Kind]int, len(Kinds))
	for _, k := range Kinds {
		out[k] = 0
	}
	for _, d := range discrepancies {
		out[d.Kind]++
	}
	return out
}
