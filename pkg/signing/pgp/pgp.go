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

// Package pgp signs sealed proofs with OpenPGP detached signatures.
//
// Signatures are ASCII armored so a proof can also be checked with
// standard OpenPGP tooling.
package pgp

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
)

var (
	_ signing.Signer   = (*Signer)(nil)
	_ signing.Verifier = (*Verifier)(nil)
)

// Signer produces armored detached signatures with an OpenPGP private key.
type Signer struct {
	entity *openpgp.Entity
}

// NewSigner loads the first private key of an armored key ring file and
// unlocks it with passphrase when the key is encrypted.
func NewSigner(keyPath, passphrase string) (*Signer, error) {
	keyring, err := readKeyRing(keyPath)
	if err != nil {
		return nil, err
	}

	for _, entity := range keyring {
		if entity.PrivateKey == nil {
			continue
		}
		if err := unlock(entity, []byte(passphrase)); err != nil {
			return nil, err
		}
		return NewSignerFromEntity(entity)
	}
	return nil, faults.Signing(fmt.Sprintf("no private key found in %s", keyPath), nil)
}

// NewSignerFromEntity wraps an already unlocked entity.
func NewSignerFromEntity(entity *openpgp.Entity) (*Signer, error) {
	if entity == nil || entity.PrivateKey == nil {
		return nil, faults.Signing("OpenPGP entity has no private key", nil)
	}
	if entity.PrivateKey.Encrypted {
		return nil, faults.Signing("OpenPGP private key is still encrypted", nil)
	}
	return &Signer{entity: entity}, nil
}

// Sign returns an armored detached signature over data.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&out, s.entity, bytes.NewReader(data), nil); err != nil {
		return nil, faults.Signing("OpenPGP signing failed", err)
	}
	return out.Bytes(), nil
}

// Identity returns the hex fingerprint of the primary key.
func (s *Signer) Identity() string {
	return fingerprint(s.entity)
}

// Scheme returns signing.SchemePGP.
func (s *Signer) Scheme() string {
	return signing.SchemePGP
}

// Verifier checks armored detached signatures against a public key ring.
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifier loads an armored public key ring file.
func NewVerifier(keyPath string) (*Verifier, error) {
	keyring, err := readKeyRing(keyPath)
	if err != nil {
		return nil, err
	}
	return NewVerifierFromKeyRing(keyring)
}

// NewVerifierFromKeyRing creates a verifier for an in-memory key ring.
func NewVerifierFromKeyRing(keyring openpgp.EntityList) (*Verifier, error) {
	if len(keyring) == 0 {
		return nil, faults.Signing("OpenPGP key ring is empty", nil)
	}
	return &Verifier{keyring: keyring}, nil
}

// Verify checks that sig is a valid detached signature over data by a key
// in the ring.
func (v *Verifier) Verify(data, sig []byte) error {
	signer, err := openpgp.CheckArmoredDetachedSignature(v.keyring, bytes.NewReader(data), bytes.NewReader(sig), nil)
	if err != nil {
		return fmt.Errorf("OpenPGP signature verification failed: %w", err)
	}
	if signer == nil {
		return fmt.Errorf("OpenPGP signature verification failed: unknown signer")
	}
	return nil
}

// Identity returns the fingerprint of the first key in the ring.
func (v *Verifier) Identity() string {
	return fingerprint(v.keyring[0])
}

func readKeyRing(keyPath string) (openpgp.EntityList, error) {
	f, err := os.Open(keyPath)
	if err != nil {
		return nil, faults.Signing(fmt.Sprintf("failed to open key file %s", keyPath), err)
	}
	defer f.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		return nil, faults.Signing(fmt.Sprintf("failed to read armored key ring %s", keyPath), err)
	}
	return keyring, nil
}

func unlock(entity *openpgp.Entity, passphrase []byte) error {
	if entity.PrivateKey.Encrypted {
		if len(passphrase) == 0 {
			return faults.Signing("OpenPGP private key is encrypted and no passphrase was given", nil)
		}
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return faults.Signing("failed to decrypt OpenPGP private key", err)
		}
	}
	for _, sub := range entity.Subkeys {
		if sub.PrivateKey != nil && sub.PrivateKey.Encrypted {
			if err := sub.PrivateKey.Decrypt(passphrase); err != nil {
				return faults.Signing("failed to decrypt OpenPGP subkey", err)
			}
		}
	}
	return nil
}

func fingerprint(entity *openpgp.Entity) string {
	return hex.EncodeToString(entity.PrimaryKey.Fingerprint)
}
