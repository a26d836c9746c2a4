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
	"context"

	"github.com/spf13/cobra"

	"github.com/coderRaj07/POC-BrowserDAO/cmd/sealed-proof/cli/options"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verify"
)

// Verify creates the verify command.
func Verify() *cobra.Command {
	o := &options.VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [OPTIONS] PROOF_PATH",
		Short: "Verify a sealed proof file.",
		Long: `Verify a sealed proof file.

    Checks the signature over the embedded statement, that the readable
    verdict matches the signed one and that the verdict is internally
    consistent (score, label, counts). Both the DSSE proof document and the
    Sigstore bundle format are accepted.

    Pass --public-key for key and pkcs11 proofs or --keyring for pgp proofs.
    Without trust material the public key embedded in the proof is used,
    which only proves integrity, not who signed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := o.ToStandardOptions(args[0])
			opts.Logger = ro.NewLogger()

			verifier, err := verify.NewProofVerifier(opts)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			res, err := verifier.Verify(ctx)
			if err != nil {
				return err
			}
			printVerified(cmd.OutOrStdout(), res, ro.Color())
			return nil
		},
	}

	o.AddFlags(cmd)
	return cmd
}
