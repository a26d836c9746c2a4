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

// Package dsse provides utilities for working with Dead Simple Signing Envelope (DSSE) format.
//
// This package wraps the go-securesystemslib/dsse library. Signatures are
// always computed over the pre-authentication encoding PAE(payloadType, payload),
// never over the raw payload.
package dsse

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
	dsse_lib "github.com/secure-systems-lab/go-securesystemslib/dsse"
	protodsse "github.com/sigstore/protobuf-specs/gen/pb-go/dsse"
	"github.com/sigstore/sigstore-go/pkg/bundle"
)

// InTotoPayloadType is the payload type of in-toto statements.
const InTotoPayloadType = "application/vnd.in-toto+json"

// Envelope wraps a DSSE envelope with utility methods.
//
// It marshals to the standard DSSE JSON form
// {"payload", "payloadType", "signatures": [{"keyid", "sig"}]}.
type Envelope struct {
	raw *dsse_lib.Envelope
}

// NewEnvelope creates a new DSSE envelope wrapper from a raw envelope.
func NewEnvelope(raw *dsse_lib.Envelope) *Envelope {
	return &Envelope{raw: raw}
}

// Sign computes PAE(payloadType, payload), signs it, and returns an envelope
// with a single signature whose keyid is the signer identity.
func Sign(signer signing.Signer, payloadType string, payload []byte) (*Envelope, error) {
	if signer == nil {
		return nil, faults.Signing("no signer configured", nil)
	}

	sig, err := signer.Sign(dsse_lib.PAE(payloadType, payload))
	if err != nil {
		if _, ok := faults.As(err); ok {
			return nil, err
		}
		return nil, faults.Signing("failed to sign DSSE envelope", err)
	}

	env := CreateEnvelope(payloadType, payload, sig)
	env.raw.Signatures[0].KeyID = signer.Identity()
	return env, nil
}

// CreateEnvelope creates a new DSSE envelope with a single signature.
// The payload and signature are base64-encoded as required by DSSE.
func CreateEnvelope(payloadType string, payload []byte, signature []byte) *Envelope {
	envelope := &dsse_lib.Envelope{
		Payload:     base64.StdEncoding.EncodeToString(payload),
		PayloadType: payloadType,
		Signatures: []dsse_lib.Signature{
			{Sig: base64.StdEncoding.EncodeToString(signature)},
		},
	}
	return &Envelope{raw: envelope}
}

// Verify checks the single signature of the envelope against PAE and
// returns the decoded payload.
func (e *Envelope) Verify(verifier signing.Verifier, expectedType string) ([]byte, error) {
	if err := e.ValidateSignatureCount(); err != nil {
		return nil, err
	}
	if err := e.ValidatePayloadType(expectedType); err != nil {
		return nil, err
	}

	payload, err := e.DecodePayload()
	if err != nil {
		return nil, err
	}
	sig, err := e.DecodeSignature()
	if err != nil {
		return nil, err
	}

	if err := verifier.Verify(dsse_lib.PAE(e.raw.PayloadType, payload), sig); err != nil {
		return nil, fmt.Errorf("DSSE signature verification failed: %w", err)
	}
	return payload, nil
}

// ExtractFromBundle extracts a DSSE envelope from a Sigstore bundle.
func ExtractFromBundle(bndl *bundle.Bundle) (*Envelope, error) {
	envelope, err := bndl.Envelope()
	if err != nil {
		return nil, fmt.Errorf("failed to extract envelope from bundle: %w", err)
	}

	dsseEnvelope := envelope.RawEnvelope()
	if dsseEnvelope == nil {
		return nil, fmt.Errorf("bundle does not contain a DSSE envelope")
	}

	return &Envelope{raw: dsseEnvelope}, nil
}

// ValidateSignatureCount checks that exactly one signature is present.
func (e *Envelope) ValidateSignatureCount() error {
	if len(e.raw.Signatures) == 0 {
		return fmt.Errorf("no signatures found in envelope")
	}
	if len(e.raw.Signatures) > 1 {
		return fmt.Errorf("multiple signatures not supported")
	}
	return nil
}

// ValidatePayloadType checks that the DSSE payload matches the expected type.
func (e *Envelope) ValidatePayloadType(expectedType string) error {
	if e.raw.PayloadType != expectedType {
		return fmt.Errorf("expected DSSE payload %s, but got %s",
			expectedType, e.raw.PayloadType)
	}
	return nil
}

// DecodePayload decodes the base64-encoded DSSE payload.
func (e *Envelope) DecodePayload() ([]byte, error) {
	if e.raw.Payload == "" {
		return nil, fmt.Errorf("envelope payload is empty")
	}

	payloadBytes, err := base64.StdEncoding.DecodeString(e.raw.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	return payloadBytes, nil
}

// DecodeSignature decodes the first base64-encoded signature.
// Call ValidateSignatureCount first to ensure exactly one signature exists.
func (e *Envelope) DecodeSignature() ([]byte, error) {
	if len(e.raw.Signatures) == 0 {
		return nil, fmt.Errorf("no signatures found in envelope")
	}

	sig := e.raw.Signatures[0].Sig
	if sig == "" {
		return nil, fmt.Errorf("signature is empty")
	}

	sigBytes, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}

	return sigBytes, nil
}

// KeyID returns the keyid of the first signature, or "".
func (e *Envelope) KeyID() string {
	if len(e.raw.Signatures) == 0 {
		return ""
	}
	return e.raw.Signatures[0].KeyID
}

// PayloadType returns the DSSE payload type.
func (e *Envelope) PayloadType() string {
	return e.raw.PayloadType
}

// RawEnvelope returns the underlying DSSE envelope.
func (e *Envelope) RawEnvelope() *dsse_lib.Envelope {
	return e.raw
}

// MarshalJSON encodes the envelope in the standard DSSE JSON form.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.raw)
}

// UnmarshalJSON decodes a standard DSSE JSON envelope.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw dsse_lib.Envelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.raw = &raw
	return nil
}

// ToProtobuf converts the envelope to Sigstore protobuf format, decoding
// payload and signatures from base64 to raw bytes.
func (e *Envelope) ToProtobuf() (*protodsse.Envelope, error) {
	payloadBytes, err := base64.StdEncoding.DecodeString(e.raw.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	signatures := make([]*protodsse.Signature, len(e.raw.Signatures))
	for i, sig := range e.raw.Signatures {
		sigBytes, err := base64.StdEncoding.DecodeString(sig.Sig)
		if err != nil {
			return nil, fmt.Errorf("failed to decode signature %d: %w", i, err)
		}
		signatures[i] = &protodsse.Signature{
			Sig:   sigBytes,
			Keyid: sig.KeyID,
		}
	}

	return &protodsse.Envelope{
		Payload:     payloadBytes,
		PayloadType: e.raw.PayloadType,
		Signatures:  signatures,
	}, nil
}
