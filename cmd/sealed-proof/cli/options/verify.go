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

package options

import (
	"github.com/spf13/cobra"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/verify"
)

// VerifyOptions holds the trust material for checking a persisted proof.
type VerifyOptions struct {
	PublicKeyPath string // --public-key
	KeyRingPath   string // --keyring
	Identity      string // --identity
}

var _ Interface = (*VerifyOptions)(nil)

// AddFlags adds verification flags to cmd.
func (o *VerifyOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.PublicKeyPath, "public-key", "", "PEM public key trusted for key and pkcs11 proofs.")
	cmd.Flags().StringVar(&o.KeyRingPath, "keyring", "", "Armored OpenPGP keyring trusted for pgp proofs.")
	cmd.Flags().StringVar(&o.Identity, "identity", "", "Expected signer identity (public key fingerprint).")
}

// ToStandardOptions converts the flags into verifier options.
func (o *VerifyOptions) ToStandardOptions(proofPath string) verify.Options {
	return verify.Options{
		ProofPath:        proofPath,
		PublicKeyPath:    o.PublicKeyPath,
		KeyRingPath:      o.KeyRingPath,
		ExpectedIdentity: o.Identity,
	}
}

// KeygenOptions controls key pair generation.
type KeygenOptions struct {
	Dir    string // --dir
	Prefix string // --prefix
}

var _ Interface = (*KeygenOptions)(nil)

// AddFlags adds key generation flags to cmd.
func (o *KeygenOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Dir, "dir", ".", "Directory receiving the key pair.")
	_ = cmd.MarkFlagDirname("dir")
	cmd.Flags().StringVar(&o.Prefix, "prefix", "signing", "File name prefix: writes PREFIX.key and PREFIX.pub.")
}
