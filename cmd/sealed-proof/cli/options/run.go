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
	"os"

	"github.com/spf13/cobra"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/config"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/sealed"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verdict"
)

// RunOptions holds the flags of a single evaluation. Each flag overrides
// the configuration file and the environment.
type RunOptions struct {
	ConfigPath     string  // --config
	SourceURL      string  // --source-url
	CandidatePath  string  // --candidate
	Threshold      float64 // --threshold
	SigningKeyPath string  // --signing-key
	Scheme         string  // --scheme
	OutputDir      string  // --output-dir
	Format         string  // --format
	OnReject       string  // --on-reject
	HistoryPath    string  // --history
}

var _ Interface = (*RunOptions)(nil)

// AddFlags adds the evaluation flags to cmd.
func (o *RunOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.ConfigPath, "config", "c", "", "Configuration file (.yaml, .yml or .toml).")
	_ = cmd.MarkFlagFilename("config", "yaml", "yml", "toml")

	cmd.Flags().StringVar(&o.SourceURL, "source-url", "", "Reference artifact: http(s) URL, file:// URL or path.")
	cmd.Flags().StringVar(&o.CandidatePath, "candidate", "", "Candidate artifact locator.")
	cmd.Flags().Float64Var(&o.Threshold, "threshold", verdict.DefaultThreshold, "Minimum passing score in [0, 1].")
	cmd.Flags().StringVar(&o.SigningKeyPath, "signing-key", "", "Private key used to seal the proof.")
	cmd.Flags().StringVar(&o.Scheme, "scheme", "", "Signing scheme: key, pgp or pkcs11.")
	_ = cmd.RegisterFlagCompletionFunc("scheme", cobra.FixedCompletions(signing.Schemes, cobra.ShellCompDirectiveNoFileComp))
	cmd.Flags().StringVar(&o.OutputDir, "output-dir", "", "Sealed output directory.")
	_ = cmd.MarkFlagDirname("output-dir")
	cmd.Flags().StringVar(&o.Format, "format", "", "Proof file format: dsse or sigstore-bundle.")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(sealed.Formats, cobra.ShellCompDirectiveNoFileComp))
	cmd.Flags().StringVar(&o.OnReject, "on-reject", "", "What to do with a failing verdict: persist or suppress.")
	cmd.Flags().StringVar(&o.HistoryPath, "history", "", "SQLite database enabling the uniqueness metric.")
}

// Config reads the configuration file (if any), applies environment
// overrides and then every flag set on cmd, and validates the result.
func (o *RunOptions) Config(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = config.Read(o.ConfigPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.ApplyOptions(config.Options{
		SourceURL:      o.SourceURL,
		CandidatePath:  o.CandidatePath,
		SigningKeyPath: o.SigningKeyPath,
		OutputDir:      o.OutputDir,
	})
	// A threshold of 0 is meaningful, so only an explicit flag applies.
	if cmd.Flags().Changed("threshold") {
		cfg.Policy.Threshold = o.Threshold
	}
	if o.Scheme != "" {
		cfg.Signing.Scheme = o.Scheme
	}
	if o.Format != "" {
		cfg.Output.Format = o.Format
	}
	if o.OnReject != "" {
		cfg.Policy.OnReject = verdict.RejectAction(o.OnReject)
	}
	if o.HistoryPath != "" {
		cfg.History.Path = o.HistoryPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BatchOptions evaluates several candidates against one reference.
type BatchOptions struct {
	RunOptions
	Workers int // --workers
}

var _ Interface = (*BatchOptions)(nil)

// AddFlags adds the evaluation flags and --workers to cmd.
func (o *BatchOptions) AddFlags(cmd *cobra.Command) {
	o.RunOptions.AddFlags(cmd)
	cmd.Flags().IntVarP(&o.Workers, "workers", "w", 0, "Parallel evaluations (default: number of CPUs).")
}
