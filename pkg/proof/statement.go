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

package proof

import (
	"fmt"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/normalize"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verdict"
	intoto "github.com/in-toto/attestation/go/v1"
	"google.golang.org/protobuf/encoding/protojson"
)

const (
	// StatementType is the in-toto statement type.
	StatementType = "https://in-toto.io/Statement/v1"

	// PredicateType identifies a sealed verdict predicate.
	PredicateType = "https://github.com/coderRaj07/POC-BrowserDAO/sealed-verdict/v1"
)

// Subject is an in-toto resource descriptor for a compared artifact.
type Subject struct {
	Name   string            `json:"name"`
	Digest map[string]string `json:"digest"`
}

// Source describes one side of the comparison.
type Source struct {
	Locator     string            `json:"locator"`
	ContentType string            `json:"contentType"`
	Format      string            `json:"format"`
	Digests     map[string]string `json:"digests"`
}

// Predicate is the signed body of a sealed proof.
type Predicate struct {
	Reference Source          `json:"reference"`
	Candidate Source          `json:"candidate"`
	Verdict   verdict.Verdict `json:"verdict"`
}

// Statement is an in-toto v1 statement whose subjects are the reference
// and candidate artifacts and whose predicate carries the verdict.
type Statement struct {
	Type          string    `json:"_type"`
	Subject       []Subject `json:"subject"`
	PredicateType string    `json:"predicateType"`
	Predicate     Predicate `json:"predicate"`
}

// NewStatement builds the statement for a verdict over two documents.
func NewStatement(reference, candidate *normalize.Document, v verdict.Verdict) *Statement {
	return &Statement{
		Type: StatementType,
		Subject: []Subject{
			{Name: candidate.Source, Digest: copyDigests(candidate.Digests)},
			{Name: reference.Source, Digest: copyDigests(reference.Digests)},
		},
		PredicateType: PredicateType,
		Predicate: Predicate{
			Reference: sourceOf(reference),
			Candidate: sourceOf(candidate),
			Verdict:   v,
		},
	}
}

// Canonical returns the canonical JSON encoding that is signed.
func (s *Statement) Canonical() ([]byte, error) {
	return CanonicalJSON(s)
}

// Validate checks the statement against the in-toto attestation schema.
func (s *Statement) Validate() error {
	payload, err := s.Canonical()
	if err != nil {
		return err
	}
	return validatePayload(payload)
}

func validatePayload(payload []byte) error {
	var st intoto.Statement
	if err := protojson.Unmarshal(payload, &st); err != nil {
		return fmt.Errorf("payload is not an in-toto statement: %w", err)
	}
	if err := st.Validate(); err != nil {
		return fmt.Errorf("invalid in-toto statement: %w", err)
	}
	if st.GetPredicateType() != PredicateType {
		return fmt.Errorf("predicate type mismatch, expected %s, got %s", PredicateType, st.GetPredicateType())
	}
	return nil
}

func sourceOf(d *normalize.Document) Source {
	return Source{
		Locator:     d.Source,
		ContentType: d.ContentType,
		Format:      d.Format,
		Digests:     copyDigests(d.Digests),
	}
}

func copyDigests(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
