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
	"fmt"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/artifact"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
)

// Document is a normalized artifact.
type Document struct {
	// Source is the artifact locator.
	Source string `json:"source"`

	// ContentType is the artifact content type.
	ContentType string `json:"contentType"`

	// Format names the normalizer that produced Root.
	Format string `json:"format"`

	// Digests are the artifact digests, keyed by algorithm.
	Digests map[string]string `json:"digests"`

	// Root is the canonical document tree.
	Root *Node `json:"root"`
}

// Normalizer converts one family of content types into a node tree.
// Implementations must be deterministic and must not retain the artifact.
type Normalizer interface {
	// Format is a short name recorded on the document, e.g. "json".
	Format() string

	// Accepts reports whether the normalizer handles a.
	Accepts(a *artifact.Artifact) bool

	// Normalize parses a. Errors are reported as parse failures.
	Normalize(a *artifact.Artifact) (*Node, error)
}

// Registry selects a normalizer for each artifact. Normalizers are tried
// in registration order; the first that accepts the artifact wins.
type Registry struct {
	normalizers []Normalizer
}

// NewRegistry creates a registry with the given normalizers.
func NewRegistry(normalizers ...Normalizer) *Registry {
	return &Registry{normalizers: append([]Normalizer(nil), normalizers...)}
}

// DefaultRegistry returns a registry for every built-in format.
func DefaultRegistry() *Registry {
	r := NewRegistry(
		JSONNormalizer{},
		YAMLNormalizer{},
		BookmarksNormalizer{},
		HTMLNormalizer{},
		CSVNormalizer{},
		TextNormalizer{},
	)
	r.Register(&ZipNormalizer{Registry: r})
	return r
}

// Register appends n to the registry.
func (r *Registry) Register(n Normalizer) {
	r.normalizers = append(r.normalizers, n)
}

// Formats lists registered format names in priority order.
func (r *Registry) Formats() []string {
	out := make([]string, len(r.normalizers))
	for i, n := range r.normalizers {
		out[i] = n.Format()
	}
	return out
}

// Lookup returns the normalizer that would handle a.
func (r *Registry) Lookup(a *artifact.Artifact) (Normalizer, bool) {
	for _, n := range r.normalizers {
		if n.Accepts(a) {
			return n, true
		}
	}
	return nil, false
}

// Normalize converts a into a canonical document.
func (r *Registry) Normalize(a *artifact.Artifact) (*Document, error) {
	n, ok := r.Lookup(a)
	if !ok {
		return nil, faults.Parse(a.Locator(), fmt.Sprintf("unsupported content type %q", a.ContentType()), nil)
	}

	root, err := n.Normalize(a)
	if err != nil {
		if fe, ok := faults.As(err); ok {
			return nil, fe
		}
		return nil, faults.Parse(a.Locator(), fmt.Sprintf("invalid %s content", n.Format()), err)
	}

	return &Document{
		Source:      a.Locator(),
		ContentType: a.ContentType(),
		Format:      n.Format(),
		Digests:     a.Digests(),
		Root:        Canonicalize(root),
	}, nil
}
