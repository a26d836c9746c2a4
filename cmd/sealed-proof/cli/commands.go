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

// Package cli implements the sealed-proof command tree.
package cli

import (
	"github.com/spf13/cobra"
	cobracompletefig "github.com/withfig/autocomplete-tools/integrations/cobra"
	"sigs.k8s.io/release-utils/version"

	"github.com/coderRaj07/POC-BrowserDAO/cmd/sealed-proof/cli/options"
)

var (
	ro = &options.RootOptions{}
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sealed-proof",
		Short: "Seal verifiable proofs that a data artifact matches its source.",
		Long: `Seal verifiable proofs that a data artifact matches its source.

    Each run fetches a reference artifact and a candidate artifact, normalizes
    both into a canonical tree, scores their discrepancies against a policy
    and writes one signed, self-describing proof file into a sealed output
    directory. A run either persists a proof or fails with the stage that
    failed and a non-zero exit code.`,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	ro.AddFlags(cmd)

	// Add sub-commands.
	cmd.AddCommand(Run())
	cmd.AddCommand(Batch())
	cmd.AddCommand(Verify())
	cmd.AddCommand(Keygen())
	cmd.AddCommand(version.WithFont("starwars"))
	cmd.AddCommand(cobracompletefig.CreateCompletionSpecCommand())
	return cmd
}
