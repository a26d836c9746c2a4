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

// Package artifact retrieves the reference and candidate content that a
// proof is computed over. An Artifact is immutable once fetched: its bytes
// are copied on construction and on every read.
package artifact

import (
	"bytes"
	"io"
	"sort"
	"time"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/hashing"
)

// Digest algorithm names, as used for in-toto resource descriptors.
const (
	DigestSHA256  = hashing.SHA256
	DigestBlake2b = hashing.Blake2b
)

// Artifact is an opaque content blob plus its content type and digests.
type Artifact struct {
	locator     string
	contentType string
	content     []byte
	digests     map[string]string
	fetchedAt   time.Time
}

// New creates an artifact from content, computing a sha256 digest and any
// extra digests requested. Unknown algorithm names are ignored.
func New(locator, contentType string, content []byte, extraDigests ...string) *Artifact {
	buf := make([]byte, len(content))
	copy(buf, content)

	digests := make(map[string]string, 1+len(extraDigests))
	for _, alg := range append([]string{DigestSHA256}, extraDigests...) {
		if d, err := hashing.Sum(alg, buf); err == nil {
			digests[d.Algorithm()] = d.Hex()
		}
	}

	return &Artifact{
		locator:     locator,
		contentType: contentType,
		content:     buf,
		digests:     digests,
		fetchedAt:   time.Now().UTC(),
	}
}

// Locator returns the URL or path the artifact was fetched from.
func (a *Artifact) Locator() string { return a.locator }

// ContentType returns the media type used to pick a normalizer.
func (a *Artifact) ContentType() string { return a.contentType }

// Size returns the content length in bytes.
func (a *Artifact) Size() int { return len(a.content) }

// FetchedAt returns when the artifact was constructed.
func (a *Artifact) FetchedAt() time.Time { return a.fetchedAt }

// Bytes returns a copy of the content.
func (a *Artifact) Bytes() []byte {
	out := make([]byte, len(a.content))
	copy(out, a.content)
	return out
}

// Reader returns a reader over the content.
func (a *Artifact) Reader() io.Reader {
	return bytes.NewReader(a.content)
}

// Digest returns the hex digest for alg, or "" if it was not computed.
func (a *Artifact) Digest(alg string) string {
	return a.digests[alg]
}

// Digests returns a copy of all computed digests.
func (a *Artifact) Digests() map[string]string {
	out := make(map[string]string, len(a.digests))
	for k, v := range a.digests {
		out[k] = v
	}
	return out
}

// DigestAlgorithms returns the computed algorithm names in sorted order.
func (a *Artifact) DigestAlgorithms() []string {
	algs := make([]string, 0, len(a.digests))
	for k := range a.digests {
		algs = append(algs, k)
	}
	sort.Strings(algs)
	return algs
}

// WithContent derives a new artifact from a, replacing its content and
// content type. Used after decryption; a itself is left untouched.
func (a *Artifact) WithContent(contentType string, content []byte) *Artifact {
	extra := make([]string, 0, len(a.digests))
	for alg := range a.digests {
		if alg != DigestSHA256 {
			extra = append(extra, alg)
		}
	}
	return New(a.locator, contentType, content, extra...)
}
