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

// Package key provides signing with PEM encoded private keys.
package key

import (
	"fmt"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// SignerConfig holds configuration for creating a PEM key signer.
type SignerConfig struct {
	// PrivateKeyPath is the path to the private key file (PEM format).
	PrivateKeyPath string

	// Password decrypts an encrypted private key. Empty for plain keys.
	Password string
}

// NewSigner loads the private key referenced by cfg.
func NewSigner(cfg SignerConfig) (*signing.CryptoSigner, error) {
	if cfg.PrivateKeyPath == "" {
		return nil, faults.Signing("private key path is required", nil)
	}

	privateKey, err := signing.LoadPrivateKeyFromPEM(cfg.PrivateKeyPath, cfg.Password)
	if err != nil {
		return nil, faults.Signing(fmt.Sprintf("failed to load private key %s", cfg.PrivateKeyPath), err)
	}

	return signing.NewCryptoSigner(privateKey, signing.SchemeKey)
}

// NewSignerFromPEM creates a signer from in-memory PEM bytes.
func NewSignerFromPEM(pemBytes []byte, password string) (*signing.CryptoSigner, error) {
	privateKey, err := signing.ParsePrivateKey(pemBytes, password)
	if err != nil {
		return nil, faults.Signing("failed to load private key", err)
	}
	return signing.NewCryptoSigner(privateKey, signing.SchemeKey)
}

// NewVerifier loads the public key at publicKeyPath.
func NewVerifier(publicKeyPath string) (*signing.PublicKeyVerifier, error) {
	if publicKeyPath == "" {
		return nil, faults.Signing("public key path is required", nil)
	}

	publicKey, err := signing.LoadPublicKeyFromPEM(publicKeyPath)
	if err != nil {
		return nil, faults.Signing(fmt.Sprintf("failed to load public key %s", publicKeyPath), err)
	}
	return signing.NewPublicKeyVerifier(publicKey)
}

// NewVerifierFromPEM creates a verifier from a PEM encoded public key.
func NewVerifierFromPEM(pemBytes []byte) (*signing.PublicKeyVerifier, error) {
	publicKey, err := cryptoutils.UnmarshalPEMToPublicKey(pemBytes)
	if err != nil {
		return nil, faults.Signing("failed to parse public key", err)
	}
	return signing.NewPublicKeyVerifier(publicKey)
}
