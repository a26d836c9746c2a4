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

package config

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// KeyConfig handles cryptographic key file configuration.
//
// This provides a unified way to load PEM keys for signing and
// verification, failing early with a descriptive error.
type KeyConfig struct {
	// Path is the file path to the key (PEM format).
	Path string

	// Password decrypts an encrypted private key.
	Password string
}

// LoadPrivateKey loads a private key from the configured path.
//
// Supports PKCS8, EC, PKCS1 and sigstore encrypted private keys. A
// password given for an unencrypted key is rejected so a misconfigured
// deployment does not silently sign with the wrong key.
func (c *KeyConfig) LoadPrivateKey() (crypto.Signer, error) {
	pemBytes, err := c.read("private")
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}
	encrypted := strings.Contains(block.Type, "ENCRYPTED")
	if c.Password != "" && !encrypted {
		return nil, fmt.Errorf("password provided but key is not encrypted")
	}
	if c.Password == "" && encrypted {
		return nil, fmt.Errorf("key is encrypted but no password was provided")
	}

	signer, err := signing.ParsePrivateKey(pemBytes, c.Password)
	if err != nil {
		return nil, err
	}
	pub, err := ExtractPublicKey(signer)
	if err != nil {
		return nil, err
	}
	if _, err := validatePublicKey(pub); err != nil {
		return nil, err
	}
	return signer, nil
}

// LoadPublicKey loads a public key from the configured path.
//
// Supports PKIX and PKCS1 public key formats.
// Validates that the key type is supported (ECDSA, RSA, Ed25519).
func (c *KeyConfig) LoadPublicKey() (crypto.PublicKey, error) {
	pemBytes, err := c.read("public")
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	key, err := cryptoutils.UnmarshalPEMToPublicKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key (unsupported format): %w", err)
	}
	return validatePublicKey(key)
}

func (c *KeyConfig) read(kind string) ([]byte, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("key path is required")
	}
	pemBytes, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s key file: %w", kind, err)
	}
	return pemBytes, nil
}

// ExtractPublicKey returns the public half of a private key.
func ExtractPublicKey(privateKey interface{}) (crypto.PublicKey, error) {
	switch k := privateKey.(type) {
	case *ecdsa.PrivateKey:
		return &k.PublicKey, nil
	case *rsa.PrivateKey:
		return &k.PublicKey, nil
	case ed25519.PrivateKey:
		return k.Public(), nil
	case crypto.Signer:
		return k.Public(), nil
	default:
		return nil, fmt.Errorf("unsupported private key type: %T", privateKey)
	}
}

// ComputePublicKeyHash returns the signer identity of a public key: the
// hex SHA-256 of its PEM encoding.
func ComputePublicKeyHash(pubKey crypto.PublicKey) (string, error) {
	return signing.Fingerprint(pubKey)
}

// ComputePublicKeyHashFromFile loads a public key and hashes it.
func ComputePublicKeyHashFromFile(path string) (string, error) {
	cfg := KeyConfig{Path: path}
	pub, err := cfg.LoadPublicKey()
	if err != nil {
		return "", err
	}
	return ComputePublicKeyHash(pub)
}

// validatePublicKey checks if the public key type is supported.
//
// Validates ECDSA curves (P-256, P-384, P-521), RSA keys, and Ed25519 keys.
func validatePublicKey(key interface{}) (crypto.PublicKey, error) {
	switch k := key.(type) {
	case *ecdsa.PublicKey:
		curveName := k.Curve.Params().Name
		if curveName != "P-256" && curveName != "P-384" && curveName != "P-521" {
			return nil, fmt.Errorf("unsupported elliptic curve: %s (supported: P-256, P-384, P-521)", curveName)
		}
		return k, nil
	case *rsa.PublicKey:
		return k, nil
	case ed25519.PublicKey:
		return k, nil
	default:
		return nil, fmt.Errorf("unsupported public key type: %T", key)
	}
}
