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
	"github.com/coderRaj07/POC-BrowserDAO/pkg/pipeline"
)

// Run creates the run command: one evaluation from a configuration file.
func Run() *cobra.Command {
	o := &options.RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [OPTIONS]",
		Short: "Evaluate one candidate and seal the proof.",
		Long: `Evaluate one candidate and seal the proof.

    The reference (source.url) and candidate (source.candidate_path) are
    fetched, compared and scored. The signed proof is written to the output
    directory. Settings come from --config, then SEALED_PROOF_* environment
    variables, then flags.

    A failing verdict is sealed like a passing one unless policy.on_reject
    is suppress, in which case nothing is written and the command exits with
    the VerdictRejected code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.Config(cmd)
			if err != nil {
				return err
			}
			logger := ro.LoggerFor(cmd, cfg.Logging)

			p, err := pipeline.FromConfig(cfg, logger)
			if err != nil {
				return err
			}
			defer p.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			out, err := p.Run(ctx, pipeline.Request{
				Reference: cfg.Source.URL,
				Candidate: cfg.Source.CandidatePath,
			})
			printOutcome(cmd.OutOrStdout(), out, ro.Color())
			return err
		},
	}

	o.AddFlags(cmd)
	return cmd
}

// Batch creates the batch command: several candidates against one
// reference, evaluated in parallel.
func Batch() *cobra.Command {
	o := &options.BatchOptions{}

	cmd := &cobra.Command{
		Use:   "batch [OPTIONS] CANDIDATE...",
		Short: "Evaluate several candidates against one reference.",
		Long: `Evaluate several candidates against one reference.

    Every CANDIDATE is evaluated independently against source.url and sealed
    into its own proof file. One failure never stops the others. The command
    exits with the code of the first failed run, in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The first candidate satisfies validation; each run gets its own.
			if o.CandidatePath == "" {
				o.CandidatePath = args[0]
			}
			cfg, err := o.Config(cmd)
			if err != nil {
				return err
			}
			logger := ro.LoggerFor(cmd, cfg.Logging)

			p, err := pipeline.FromConfig(cfg, logger)
			if err != nil {
				return err
			}
			defer p.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			reqs := make([]pipeline.Request, len(args))
			for i, cand := range args {
				reqs[i] = pipeline.Request{Reference: cfg.Source.URL, Candidate: cand}
			}
			res := p.RunBatch(ctx, reqs, o.Workers)

			w := cmd.OutOrStdout()
			for _, out := range res.Outcomes {
				printOutcome(w, out, ro.Color())
			}
			printBatchTotals(w, res, ro.Color())

			if failed := res.Failed(); len(failed) > 0 {
				return failed[0].Err
			}
			return nil
		},
	}

	o.AddFlags(cmd)
	return cmd
}
