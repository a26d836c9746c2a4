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

package artifact

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
)

var errWrongPassphrase = errors.New("passphrase rejected")

// DecryptingFetcher wraps a Fetcher and transparently decrypts OpenPGP
// symmetrically encrypted content. Plain content passes through unchanged.
type DecryptingFetcher struct {
	inner      Fetcher
	passphrase []byte
}

// NewDecryptingFetcher returns a fetcher that decrypts with passphrase.
func NewDecryptingFetcher(inner Fetcher, passphrase string) *DecryptingFetcher {
	return &DecryptingFetcher{inner: inner, passphrase: []byte(passphrase)}
}

// Fetch fetches locator and decrypts the result when it is an OpenPGP message.
func (d *DecryptingFetcher) Fetch(ctx context.Context, locator string) (*Artifact, error) {
	a, err := d.inner.Fetch(ctx, locator)
	if err != nil {
		return nil, err
	}
	if !IsPGPMessage(a.content) {
		return a, nil
	}

	plain, err := DecryptSymmetric(a.content, d.passphrase)
	if err != nil {
		return nil, faults.Fetch(locator, "cannot decrypt content", err)
	}
	return a.WithContent(DetectContentType(stripPGPExt(locator), "", plain), plain), nil
}

// DecryptSymmetric decrypts an armored or binary OpenPGP message encrypted
// with a passphrase.
func DecryptSymmetric(data, passphrase []byte) ([]byte, error) {
	var r io.Reader = bytes.NewReader(data)
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("-----BEGIN PGP MESSAGE-----")) {
		block, err := armor.Decode(bytes.NewReader(bytes.TrimSpace(data)))
		if err != nil {
			return nil, err
		}
		r = block.Body
	}

	attempted := false
	prompt := func(_ []openpgp.Key, symmetric bool) ([]byte, error) {
		if !symmetric || attempted {
			return nil, errWrongPassphrase
		}
		attempted = true
		return passphrase, nil
	}

	md, err := openpgp.ReadMessage(r, openpgp.EntityList{}, prompt, nil)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(md.UnverifiedBody)
}

func stripPGPExt(locator string) string {
	switch strings.ToLower(path.Ext(locator)) {
	case ".gpg", ".pgp", ".asc":
		return locator[:len(locator)-4]
	}
	return locator
}
