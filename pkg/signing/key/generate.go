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

package key

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// KeyPairFiles names the files written by WriteKeyPair.
type KeyPairFiles struct {
	PrivateKeyPath string
	PublicKeyPath  string
}

// GenerateKeyPair creates a new ECDSA P-256 key pair. The private key is
// encrypted with password when it is non-empty.
func GenerateKeyPair(password string) (privatePEM, publicPEM []byte, err error) {
	if password != "" {
		return cryptoutils.GeneratePEMEncodedECDSAKeyPair(elliptic.P256(), cryptoutils.StaticPasswordFunc([]byte(password)))
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	if privatePEM, err = cryptoutils.MarshalPrivateKeyToPEM(priv); err != nil {
		return nil, nil, err
	}
	if publicPEM, err = cryptoutils.MarshalPublicKeyToPEM(priv.Public()); err != nil {
		return nil, nil, err
	}
	return privatePEM, publicPEM, nil
}

// WriteKeyPair generates a key pair and writes <prefix>.key and <prefix>.pub
// into dir. Existing files are never overwritten.
func WriteKeyPair(dir, prefix, password string) (KeyPairFiles, error) {
	files := KeyPairFiles{
		PrivateKeyPath: filepath.Join(dir, prefix+".key"),
		PublicKeyPath:  filepath.Join(dir, prefix+".pub"),
	}
	for _, p := range []string{files.PrivateKeyPath, files.PublicKeyPath} {
		if _, err := os.Stat(p); err == nil {
			return KeyPairFiles{}, fmt.Errorf("refusing to overwrite %s", p)
		} else if !errors.Is(err, os.ErrNotExist) {
			return KeyPairFiles{}, err
		}
	}

	privatePEM, publicPEM, err := GenerateKeyPair(password)
	if err != nil {
		return KeyPairFiles{}, fmt.Errorf("failed to generate key pair: %w", err)
	}

	if err := os.WriteFile(files.PrivateKeyPath, privatePEM, 0o600); err != nil {
		return KeyPairFiles{}, fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(files.PublicKeyPath, publicPEM, 0o644); err != nil {
		return KeyPairFiles{}, fmt.Errorf("failed to write public key: %w", err)
	}
	return files, nil
}
