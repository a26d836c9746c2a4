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

// Package signing defines the signing capability used to seal verdicts and
// the crypto.Signer based implementation shared by PEM keys and PKCS#11 tokens.
//
// Concrete key sources live in subpackages:
//   - key: PEM encoded private keys (ECDSA, RSA, Ed25519)
//   - pgp: OpenPGP detached signatures
//   - pkcs11: hardware tokens addressed by RFC 7512 URIs
package signing

import (
	"crypto"
	"crypto/rand"
	"fmt"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	sigstoresig "github.com/sigstore/sigstore/pkg/signature"
)

// Signing schemes recorded in every sealed proof.
const (
	SchemeKey    = "key"
	SchemePGP    = "pgp"
	SchemePKCS11 = "pkcs11"
)

// Schemes lists the supported signing schemes.
var Schemes = []string{SchemeKey, SchemePGP, SchemePKCS11}

// Signer produces a signature over canonical bytes.
//
// Implementations perform no I/O besides computing the signature.
type Signer interface {
	// Sign returns the signature over data.
	Sign(data []byte) ([]byte, error)

	// Identity returns a stable identifier of the signing key.
	Identity() string

	// Scheme returns the signing scheme name.
	Scheme() string
}

// Verifier checks signatures produced by the matching Signer.
type Verifier interface {
	// Verify returns nil if sig is a valid signature over data.
	Verify(data, sig []byte) error

	// Identity returns the identifier of the verification key.
	Identity() string
}

// PublicKeySigner is a Signer whose verification key can be exported.
type PublicKeySigner interface {
	Signer
	Public() crypto.PublicKey
}

// Ensure CryptoSigner implements PublicKeySigner at compile time.
var _ PublicKeySigner = (*CryptoSigner)(nil)

// CryptoSigner signs with any crypto.Signer: in-memory keys loaded from PEM
// files and keys held by a PKCS#11 token alike.
//
// The digest algorithm follows the sigstore algorithm registry for the key:
// ECDSA uses the hash matching the curve, RSA uses PKCS#1 v1.5 with SHA256 and
// Ed25519 uses the pre-hashed Ed25519ph variant.
type CryptoSigner struct {
	signer     crypto.Signer
	scheme     string
	algDetails sigstoresig.AlgorithmDetails
	identity   string
}

// NewCryptoSigner wraps a crypto.Signer for the given scheme.
func NewCryptoSigner(signer crypto.Signer, scheme string) (*CryptoSigner, error) {
	if signer == nil {
		return nil, faults.Signing("no signing key provided", nil)
	}

	pubKey := signer.Public()
	algDetails, err := AlgorithmFor(pubKey)
	if err != nil {
		return nil, faults.Signing("unsupported signing key", err)
	}

	identity, err := Fingerprint(pubKey)
	if err != nil {
		return nil, faults.Signing("failed to compute key fingerprint", err)
	}

	return &CryptoSigner{
		signer:     signer,
		scheme:     scheme,
		algDetails: algDetails,
		identity:   identity,
	}, nil
}

// Sign hashes data with the key's digest algorithm and signs the digest.
func (s *CryptoSigner) Sign(data []byte) ([]byte, error) {
	hashFunc := s.algDetails.GetHashType()
	digest := ComputeDigest(data, hashFunc)

	sig, err := s.signer.Sign(rand.Reader, digest, hashFunc)
	if err != nil {
		return nil, faults.Signing(fmt.Sprintf("%s signing failed", KeyType(s.signer.Public())), err)
	}
	return sig, nil
}

// Identity returns the hex SHA256 fingerprint of the PEM public key.
func (s *CryptoSigner) Identity() string {
	return s.identity
}

// Scheme returns the signing scheme name.
func (s *CryptoSigner) Scheme() string {
	return s.scheme
}

// Public returns the public half of the signing key.
func (s *CryptoSigner) Public() crypto.PublicKey {
	return s.signer.Public()
}

// Algorithm returns the sigstore algorithm identifier of the key.
func (s *CryptoSigner) Algorithm() string {
	return s.algDetails.GetSignatureAlgorithm().String()
}
