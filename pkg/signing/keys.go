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
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	protocommon "github.com/sigstore/protobuf-specs/gen/pb-go/common/v1"
	"github.com/sigstore/sigstore/pkg/cryptoutils"
	sigstoresig "github.com/sigstore/sigstore/pkg/signature"
)

// GetPublicKeyDetails determines the PublicKeyDetails enum for a given public key.
// This function supports ECDSA (P-256, P-384, P-521), RSA (2048, 3072, 4096 bits), and Ed25519 keys.
func GetPublicKeyDetails(pubKey crypto.PublicKey) (protocommon.PublicKeyDetails, error) {
	switch k := pubKey.(type) {
	case *ecdsa.PublicKey:
		switch k.Curve {
		case elliptic.P256():
			return protocommon.PublicKeyDetails_PKIX_ECDSA_P256_SHA_256, nil
		case elliptic.P384():
			return protocommon.PublicKeyDetails_PKIX_ECDSA_P384_SHA_384, nil
		case elliptic.P521():
			return protocommon.PublicKeyDetails_PKIX_ECDSA_P521_SHA_512, nil
		default:
			return 0, fmt.Errorf("unsupported ECDSA curve: %s", k.Curve.Params().Name)
		}
	case *rsa.PublicKey:
		bitSize := k.N.BitLen()
		switch {
		case bitSize < 2048:
			return 0, fmt.Errorf("RSA key too small: %d bits", bitSize)
		case bitSize <= 2048:
			return protocommon.PublicKeyDetails_PKIX_RSA_PKCS1V15_2048_SHA256, nil
		case bitSize <= 3072:
			return protocommon.PublicKeyDetails_PKIX_RSA_PKCS1V15_3072_SHA256, nil
		default:
			return protocommon.PublicKeyDetails_PKIX_RSA_PKCS1V15_4096_SHA256, nil
		}
	case ed25519.PublicKey:
		return protocommon.PublicKeyDetails_PKIX_ED25519_PH, nil
	default:
		return 0, fmt.Errorf("unsupported key type: %T", pubKey)
	}
}

// KeyType returns the top-level algorithm family of a public key.
func KeyType(pubKey crypto.PublicKey) string {
	switch pubKey.(type) {
	case *ecdsa.PublicKey:
		return "ECDSA"
	case *rsa.PublicKey:
		return "RSA"
	case ed25519.PublicKey:
		return "ED25519"
	default:
		return ""
	}
}

// AlgorithmFor resolves the sigstore algorithm details (signature scheme and
// pre-hash function) used for a public key.
func AlgorithmFor(pubKey crypto.PublicKey) (sigstoresig.AlgorithmDetails, error) {
	algID, err := GetPublicKeyDetails(pubKey)
	if err != nil {
		return sigstoresig.AlgorithmDetails{}, err
	}
	algDetails, err := sigstoresig.GetAlgorithmDetails(algID)
	if err != nil {
		return sigstoresig.AlgorithmDetails{}, fmt.Errorf("failed to get algorithm details: %w", err)
	}
	return algDetails, nil
}

// Fingerprint computes the identity of a public key: the hex-encoded SHA256
// of its PEM encoding. It matches the key hint carried in Sigstore bundles.
func Fingerprint(pubKey crypto.PublicKey) (string, error) {
	pubKeyPEM, err := cryptoutils.MarshalPublicKeyToPEM(pubKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key to PEM: %w", err)
	}
	sum := sha256.Sum256(pubKeyPEM)
	return hex.EncodeToString(sum[:]), nil
}

// PublicKeyPEM returns the public key in PEM format.
func PublicKeyPEM(pubKey crypto.PublicKey) ([]byte, error) {
	return cryptoutils.MarshalPublicKeyToPEM(pubKey)
}

// ParsePrivateKey parses a PEM private key (PKCS8, EC, RSA, or encrypted).
// An empty password means the key is not encrypted.
func ParsePrivateKey(pemBytes []byte, password string) (crypto.Signer, error) {
	var passFunc cryptoutils.PassFunc
	if password != "" {
		passFunc = cryptoutils.StaticPasswordFunc([]byte(password))
	}

	privKey, err := cryptoutils.UnmarshalPEMToPrivateKey(pemBytes, passFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	signer, ok := privKey.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("private key does not implement crypto.Signer")
	}
	return signer, nil
}

// LoadPrivateKeyFromPEM loads a private key from a PEM file.
func LoadPrivateKeyFromPEM(keyPath string, password string) (crypto.Signer, error) {
	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return ParsePrivateKey(pemBytes, password)
}

// LoadPublicKeyFromPEM loads a PKIX public key from a PEM file.
func LoadPublicKeyFromPEM(keyPath string) (crypto.PublicKey, error) {
	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	pub, err := cryptoutils.UnmarshalPEMToPublicKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pub, nil
}

// ComputeDigest computes a hash digest of the input data using the specified hash function.
// If hashFunc is crypto.Hash(0) (e.g., for pure Ed25519), returns the original data unchanged.
func ComputeDigest(data []byte, hashFunc crypto.Hash) []byte {
	if hashFunc == crypto.Hash(0) {
		return data
	}
	hasher := hashFunc.New()
	hasher.Write(data)
	return hasher.Sum(nil)
}
