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

// Package pkcs11 signs sealed proofs with keys held by a PKCS#11 token.
//
// Keys are addressed by RFC 7512 URIs and accessed through crypto11, so
// the private key never leaves the token.
package pkcs11

import (
	"crypto"
	"fmt"
	"os"

	"github.com/ThalesIgnite/crypto11"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
)

// PINEnv is consulted when the URI carries no PIN.
const PINEnv = "PKCS11_PIN"

// SignerConfig holds configuration for creating a PKCS#11 signer.
type SignerConfig struct {
	// URI identifies the token and key.
	URI string

	// ModuleDirs are searched for the module named by module-name.
	ModuleDirs []string

	// PIN is used when the URI has neither pin-value nor pin-source.
	PIN string
}

// Signer signs with a token-resident key. Close releases the session.
type Signer struct {
	*signing.CryptoSigner
	ctx *crypto11.Context
	uri *URI
}

// NewSigner opens the token named by cfg.URI and locates the key pair.
func NewSigner(cfg SignerConfig) (*Signer, error) {
	uri, err := ParseURI(cfg.URI)
	if err != nil {
		return nil, faults.Signing("invalid PKCS#11 URI", err)
	}

	ctx, err := openContext(uri, cfg)
	if err != nil {
		return nil, err
	}

	key, err := findSigner(ctx, uri)
	if err != nil {
		ctx.Close()
		return nil, faults.Signing(fmt.Sprintf("no usable key for %s", uri), err)
	}

	cs, err := signing.NewCryptoSigner(key, signing.SchemePKCS11)
	if err != nil {
		ctx.Close()
		return nil, err
	}
	return &Signer{CryptoSigner: cs, ctx: ctx, uri: uri}, nil
}

// URI returns the parsed key URI.
func (s *Signer) URI() *URI {
	return s.uri
}

// Close closes the PKCS#11 context.
func (s *Signer) Close() error {
	if s.ctx == nil {
		return nil
	}
	err := s.ctx.Close()
	s.ctx = nil
	return err
}

func openContext(uri *URI, cfg SignerConfig) (*crypto11.Context, error) {
	modulePath, err := uri.Module(cfg.ModuleDirs)
	if err != nil {
		return nil, faults.Signing("failed to find PKCS#11 module", err)
	}

	fallback := cfg.PIN
	if fallback == "" {
		fallback = os.Getenv(PINEnv)
	}
	pin, err := uri.PIN(fallback)
	if err != nil {
		return nil, faults.Signing("failed to resolve PKCS#11 PIN", err)
	}

	c11 := &crypto11.Config{
		Path: modulePath,
		Pin:  pin,
	}
	switch slot, hasSlot := uri.SlotID(); {
	case uri.Token() != "":
		c11.TokenLabel = uri.Token()
	case hasSlot:
		c11.SlotNumber = &slot
	default:
		return nil, faults.Signing("PKCS#11 URI must name a token or slot-id", nil)
	}

	ctx, err := crypto11.Configure(c11)
	if err != nil {
		return nil, faults.Signing("failed to configure PKCS#11 context", err)
	}
	return ctx, nil
}

// findSigner looks the key up by id, then by label. With neither given the
// token must hold exactly one key pair.
func findSigner(ctx *crypto11.Context, uri *URI) (crypto.Signer, error) {
	id, label := uri.ID(), uri.Object()
	if id != nil || label != "" {
		var labelBytes []byte
		if label != "" {
			labelBytes = []byte(label)
		}
		key, err := ctx.FindKeyPair(id, labelBytes)
		if err != nil {
			return nil, err
		}
		if key == nil {
			return nil, fmt.Errorf("key pair not found")
		}
		return key, nil
	}

	keys, err := ctx.FindAllKeyPairs()
	if err != nil {
		return nil, err
	}
	switch len(keys) {
	case 0:
		return nil, fmt.Errorf("token holds no key pairs")
	case 1:
		return keys[0], nil
	default:
		return nil, fmt.Errorf("token holds %d key pairs; set id or object in the URI", len(keys))
	}
}
