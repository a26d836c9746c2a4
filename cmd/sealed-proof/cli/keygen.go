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

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coderRaj07/POC-BrowserDAO/cmd/sealed-proof/cli/options"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/config"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing/key"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/utils"
)

// Keygen creates the keygen command.
func Keygen() *cobra.Command {
	o := &options.KeygenOptions{}

	cmd := &cobra.Command{
		Use:   "keygen [OPTIONS]",
		Short: "Generate an ECDSA P-256 signing key pair.",
		Long: `Generate an ECDSA P-256 signing key pair.

    Writes PREFIX.key (PKCS#8 PEM) and PREFIX.pub into --dir. When
    SEALED_PROOF_SIGNING_PASSWORD is set the private key is encrypted with
    it. Existing files are never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := utils.ValidateFolderExists("key directory", o.Dir); err != nil {
				return err
			}
			cfg := config.Default()
			if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
				return err
			}

			files, err := key.WriteKeyPair(o.Dir, o.Prefix, cfg.Signing.Password)
			if err != nil {
				return err
			}
			identity, err := config.ComputePublicKeyHashFromFile(files.PublicKeyPath)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "private key: %s\n", files.PrivateKeyPath)
			fmt.Fprintf(w, "public key:  %s\n", files.PublicKeyPath)
			fmt.Fprintf(w, "identity:    %s\n", identity)
			return nil
		},
	}

	o.AddFlags(cmd)
	return cmd
}
