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

package signing

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	sigstoresig "github.com/sigstore/sigstore/pkg/signature"
)

// Ensure PublicKeyVerifier implements Verifier at compile time.
var _ Verifier = (*PublicKeyVerifier)(nil)

// PublicKeyVerifier verifies signatures produced by a CryptoSigner.
type PublicKeyVerifier struct {
	publicKey crypto.PublicKey
	verifier  sigstoresig.Verifier
	identity  string
}

// NewPublicKeyVerifier creates a verifier for the given public key.
func NewPublicKeyVerifier(pubKey crypto.PublicKey) (*PublicKeyVerifier, error) {
	verifier, err := CreateSignatureVerifier(pubKey)
	if err != nil {
		return nil, faults.Signing("unsupported verification key", err)
	}

	identity, err := Fingerprint(pubKey)
	if err != nil {
		return nil, faults.Signing("failed to compute key fingerprint", err)
	}

	return &PublicKeyVerifier{
		publicKey: pubKey,
		verifier:  verifier,
		identity:  identity,
	}, nil
}

// Verify checks sig over data.
func (v *PublicKeyVerifier) Verify(data, sig []byte) error {
	if err := v.verifier.VerifySignature(bytes.NewReader(sig), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%s signature verification failed: %w", KeyType(v.publicKey), err)
	}
	return nil
}

// Identity returns the hex SHA256 fingerprint of the PEM public key.
func (v *PublicKeyVerifier) Identity() string {
	return v.identity
}

// PublicKey returns the verification key.
func (v *PublicKeyVerifier) PublicKey() crypto.PublicKey {
	return v.publicKey
}

// CreateSignatureVerifier creates a sigstore signature.Verifier from a crypto.PublicKey.
// The hash function is resolved from the algorithm registry, so it always matches
// the one CryptoSigner used.
func CreateSignatureVerifier(pubKey crypto.PublicKey) (sigstoresig.Verifier, error) {
	algDetails, err := AlgorithmFor(pubKey)
	if err != nil {
		return nil, err
	}

	switch k := pubKey.(type) {
	case *ecdsa.PublicKey:
		return sigstoresig.LoadECDSAVerifier(k, algDetails.GetHashType())
	case *rsa.PublicKey:
		return sigstoresig.LoadRSAPKCS1v15Verifier(k, algDetails.GetHashType())
	case ed25519.PublicKey:
		return sigstoresig.LoadED25519phVerifier(k)
	default:
		return nil, fmt.Errorf("unsupported public key type: %T", pubKey)
	}
}
