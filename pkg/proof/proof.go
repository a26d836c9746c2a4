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

// Package proof seals verdicts into signed, self-describing proof documents.
//
// A verdict is embedded as the predicate of an in-toto v1 statement, encoded
// with CanonicalJSON and wrapped in a DSSE envelope. The signature therefore
// covers PAE(payloadType, canonical statement) and can be reproduced by any
// implementation that follows the same encoding.
package proof

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/dsse"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verdict"
	"github.com/google/uuid"
)

// MediaType identifies the sealed proof document format.
const MediaType = "application/vnd.browserdao.sealed-proof.v1+json"

// SignedProof is a verdict plus the signature attesting to it. It is
// created once by Seal and never modified.
type SignedProof struct {
	ID             string
	SealedAt       time.Time
	Scheme         string
	SignerIdentity string
	PublicKey      []byte
	Statement      *Statement
	Verdict        verdict.Verdict
	Payload        []byte
	Signature      []byte
	Envelope       *dsse.Envelope
}

// Seal validates the statement, signs its canonical encoding and returns
// the sealed proof. Every failure is a SigningError.
func Seal(stmt *Statement, signer signing.Signer, clock verdict.Clock) (*SignedProof, error) {
	if signer == nil {
		return nil, faults.Signing("no signer configured", nil)
	}
	if clock == nil {
		clock = verdict.SystemClock
	}

	payload, err := stmt.Canonical()
	if err != nil {
		return nil, faults.Signing("failed to encode statement", err)
	}
	if err := validatePayload(payload); err != nil {
		return nil, faults.Signing("refusing to sign invalid statement", err)
	}

	env, err := dsse.Sign(signer, dsse.InTotoPayloadType, payload)
	if err != nil {
		return nil, err
	}
	sig, err := env.DecodeSignature()
	if err != nil {
		return nil, faults.Signing("failed to read back signature", err)
	}

	var publicKey []byte
	if pk, ok := signer.(signing.PublicKeySigner); ok {
		if publicKey, err = signing.PublicKeyPEM(pk.Public()); err != nil {
			return nil, faults.Signing("failed to export public key", err)
		}
	}

	return &SignedProof{
		ID:             uuid.NewString(),
		SealedAt:       clock().UTC(),
		Scheme:         signer.Scheme(),
		SignerIdentity: signer.Identity(),
		PublicKey:      publicKey,
		Statement:      stmt,
		Verdict:        stmt.Predicate.Verdict,
		Payload:        payload,
		Signature:      sig,
		Envelope:       env,
	}, nil
}

// Document is the on-disk form of a sealed proof. Verdict is a readable
// copy; the authoritative verdict is the signed envelope payload.
type Document struct {
	MediaType      string          `json:"mediaType"`
	ProofID        string          `json:"proofId"`
	SealedAt       time.Time       `json:"sealedAt"`
	Scheme         string          `json:"scheme"`
	SignerIdentity string          `json:"signerIdentity"`
	PublicKey      string          `json:"publicKey,omitempty"`
	Verdict        verdict.Verdict `json:"verdict"`
	Envelope       *dsse.Envelope  `json:"envelope"`
}

// Document returns the on-disk form of p.
func (p *SignedProof) Document() Document {
	return Document{
		MediaType:      MediaType,
		ProofID:        p.ID,
		SealedAt:       p.SealedAt,
		Scheme:         p.Scheme,
		SignerIdentity: p.SignerIdentity,
		PublicKey:      string(p.PublicKey),
		Verdict:        p.Verdict,
		Envelope:       p.Envelope,
	}
}

// MarshalJSON encodes p as an indented sealed proof document.
func (p *SignedProof) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(p.Document(), "", "  ")
}

// Parse decodes a sealed proof document. The signature is not checked;
// use the verify package for that. Parse fails if the readable verdict copy
// differs from the signed one.
func Parse(data []byte) (*SignedProof, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode proof document: %w", err)
	}
	if doc.MediaType != MediaType {
		return nil, fmt.Errorf("unsupported proof media type %q", doc.MediaType)
	}
	if doc.Envelope == nil || doc.Envelope.RawEnvelope() == nil {
		return nil, fmt.Errorf("proof document has no envelope")
	}

	p, err := fromEnvelope(doc.Envelope)
	if err != nil {
		return nil, err
	}

	copyJSON, err := CanonicalJSON(doc.Verdict)
	if err != nil {
		return nil, err
	}
	signedJSON, err := CanonicalJSON(p.Verdict)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(copyJSON, signedJSON) {
		return nil, fmt.Errorf("verdict does not match the signed payload")
	}

	p.ID = doc.ProofID
	p.SealedAt = doc.SealedAt
	p.Scheme = doc.Scheme
	p.SignerIdentity = doc.SignerIdentity
	if doc.PublicKey != "" {
		p.PublicKey = []byte(doc.PublicKey)
	}
	return p, nil
}

func fromEnvelope(env *dsse.Envelope) (*SignedProof, error) {
	if err := env.ValidateSignatureCount(); err != nil {
		return nil, err
	}
	if err := env.ValidatePayloadType(dsse.InTotoPayloadType); err != nil {
		return nil, err
	}
	payload, err := env.DecodePayload()
	if err != nil {
		return nil, err
	}
	sig, err := env.DecodeSignature()
	if err != nil {
		return nil, err
	}

	if err := validatePayload(payload); err != nil {
		return nil, err
	}
	var stmt Statement
	if err := json.Unmarshal(payload, &stmt); err != nil {
		return nil, fmt.Errorf("failed to decode statement: %w", err)
	}

	return &SignedProof{
		SignerIdentity: env.KeyID(),
		Statement:      &stmt,
		Verdict:        stmt.Predicate.Verdict,
		Payload:        payload,
		Signature:      sig,
		Envelope:       env,
	}, nil
}
