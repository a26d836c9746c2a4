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

// Package config loads and validates sealed-proof configuration.
//
// Configuration is read from a YAML or TOML file, chosen by extension, and
// then overridden from SEALED_PROOF_* environment variables. Load always
// validates, so a *Config returned without error is ready to use.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/hashing"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/sealed"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verdict"
)

// Config is the complete configuration of a sealing run.
type Config struct {
	Source  SourceConfig   `yaml:"source" toml:"source"`
	Signing SigningConfig  `yaml:"signing" toml:"signing"`
	Policy  verdict.Policy `yaml:"policy" toml:"policy"`
	Fetch   FetchConfig    `yaml:"fetch" toml:"fetch"`
	Output  OutputConfig   `yaml:"output" toml:"output"`
	History HistoryConfig  `yaml:"history" toml:"history"`
	Logging LoggingConfig  `yaml:"logging" toml:"logging"`
}

// SourceConfig names the reference and candidate artifacts.
type SourceConfig struct {
	// URL locates the reference artifact (http(s), file:// or a path).
	URL string `yaml:"url" toml:"url"`

	// CandidatePath locates the candidate artifact.
	CandidatePath string `yaml:"candidate_path" toml:"candidate_path"`

	// KeyFields identify list elements during the diff, e.g. ["id", "url"].
	KeyFields []string `yaml:"key_fields" toml:"key_fields"`

	// Digests lists extra digest algorithms recorded for both artifacts.
	Digests []string `yaml:"digests" toml:"digests"`

	// DecryptPassphrase decrypts OpenPGP encrypted artifacts.
	DecryptPassphrase string `yaml:"decrypt_passphrase" toml:"decrypt_passphrase"`
}

// SigningConfig selects the signing scheme and its key material.
type SigningConfig struct {
	// Scheme is key, pgp or pkcs11.
	Scheme string `yaml:"scheme" toml:"scheme"`

	// KeyPath is a PEM private key (key) or an armored secret key (pgp).
	KeyPath string `yaml:"key_path" toml:"key_path"`

	// Password decrypts KeyPath.
	Password string `yaml:"password" toml:"password"`

	// PKCS11URI is an RFC 7512 URI selecting the token key (pkcs11).
	PKCS11URI string `yaml:"pkcs11_uri" toml:"pkcs11_uri"`

	// ModuleDirs are searched for PKCS#11 modules named by module-name.
	ModuleDirs []string `yaml:"module_dirs" toml:"module_dirs"`
}

// FetchConfig bounds network access.
type FetchConfig struct {
	Timeout       Duration `yaml:"timeout" toml:"timeout"`
	MaxConcurrent int      `yaml:"max_concurrent" toml:"max_concurrent"`
	RatePerSecond float64  `yaml:"rate_per_second" toml:"rate_per_second"`
	Burst         int      `yaml:"burst" toml:"burst"`
	MaxBytes      int64    `yaml:"max_bytes" toml:"max_bytes"`
	UserAgent     string   `yaml:"user_agent" toml:"user_agent"`
}

// OutputConfig configures the sealed output directory.
type OutputConfig struct {
	Dir         string   `yaml:"dir" toml:"dir"`
	Format      string   `yaml:"format" toml:"format"`
	Create      bool     `yaml:"create" toml:"create"`
	MaxAttempts int      `yaml:"max_attempts" toml:"max_attempts"`
	Backoff     Duration `yaml:"backoff" toml:"backoff"`
}

// HistoryConfig enables uniqueness tracking. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	Color  bool   `yaml:"color" toml:"color"`
}

// Duration is a time.Duration written as a Go duration string, e.g. "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Options is the plain option set of a single evaluation.
type Options struct {
	SourceURL      string  `json:"source_url"`
	CandidatePath  string  `json:"candidate_path"`
	Threshold      float64 `json:"threshold"`
	SigningKeyPath string  `json:"signing_key_path"`
	OutputDir      string  `json:"output_dir"`
}

// Default returns a configuration with every optional field set.
func Default() *Config {
	return &Config{
		Signing: SigningConfig{Scheme: signing.SchemeKey},
		Policy:  verdict.DefaultPolicy(),
		Fetch: FetchConfig{
			Timeout:       Duration{30 * time.Second},
			MaxConcurrent: 4,
			Burst:         1,
			UserAgent:     "sealed-proof",
		},
		Output: OutputConfig{
			Format:      sealed.FormatDSSE,
			MaxAttempts: sealed.DefaultMaxAttempts,
			Backoff:     Duration{sealed.DefaultBackoff},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// FromOptions builds a default configuration from plain options.
func FromOptions(o Options) *Config {
	c := Default()
	c.ApplyOptions(o)
	return c
}

// ApplyOptions overrides c with every non-zero field of o.
func (c *Config) ApplyOptions(o Options) {
	if o.SourceURL != "" {
		c.Source.URL = o.SourceURL
	}
	if o.CandidatePath != "" {
		c.Source.CandidatePath = o.CandidatePath
	}
	if o.Threshold != 0 {
		c.Policy.Threshold = o.Threshold
	}
	if o.SigningKeyPath != "" {
		c.Signing.KeyPath = o.SigningKeyPath
	}
	if o.OutputDir != "" {
		c.Output.Dir = o.OutputDir
	}
}

// Options projects c onto the plain option set.
func (c *Config) Options() Options {
	return Options{
		SourceURL:      c.Source.URL,
		CandidatePath:  c.Source.CandidatePath,
		Threshold:      c.Policy.Threshold,
		SigningKeyPath: c.Signing.KeyPath,
		OutputDir:      c.Output.Dir,
	}
}

// Validate reports the first missing or malformed field as a ConfigError.
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return faults.Config("source.url is required", nil)
	}
	if c.Source.CandidatePath == "" {
		return faults.Config("source.candidate_path is required", nil)
	}
	for _, alg := range c.Source.Digests {
		if !hashing.Supported(alg) {
			return faults.Config(fmt.Sprintf("source.digests: unsupported algorithm %q (supported: %s)",
				alg, strings.Join(hashing.Names(), ", ")), nil)
		}
	}

	if err := c.Signing.Validate(); err != nil {
		return err
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}

	if c.Fetch.Timeout.Duration < 0 || c.Fetch.MaxConcurrent < 0 || c.Fetch.RatePerSecond < 0 ||
		c.Fetch.Burst < 0 || c.Fetch.MaxBytes < 0 {
		return faults.Config("fetch settings must not be negative", nil)
	}

	if c.Output.Dir == "" {
		return faults.Config("output.dir is required", nil)
	}
	switch c.Output.Format {
	case "", sealed.FormatDSSE, sealed.FormatBundle:
	default:
		return faults.Config(fmt.Sprintf("output.format must be one of %s, got %q",
			strings.Join(sealed.Formats, ", "), c.Output.Format), nil)
	}
	if err := sealed.CheckFormat(c.Output.Format, c.Signing.Scheme); err != nil {
		return err
	}
	if c.Output.MaxAttempts < 0 || c.Output.Backoff.Duration < 0 {
		return faults.Config("output retry settings must not be negative", nil)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return faults.Config(fmt.Sprintf("logging.format must be text or json, got %q", c.Logging.Format), nil)
	}
	return nil
}

// Validate checks the scheme and that its key material is named.
func (s SigningConfig) Validate() error {
	switch s.Scheme {
	case signing.SchemeKey, signing.SchemePGP:
		if s.KeyPath == "" {
			return faults.Config(fmt.Sprintf("signing.key_path is required for the %s scheme", s.Scheme), nil)
		}
	case signing.SchemePKCS11:
		if s.PKCS11URI == "" {
			return faults.Config("signing.pkcs11_uri is required for the pkcs11 scheme", nil)
		}
	default:
		return faults.Config(fmt.Sprintf("signing.scheme must be one of %s, got %q",
			strings.Join(signing.Schemes, ", "), s.Scheme), nil)
	}
	return nil
}

// KeyConfig returns the PEM key settings of the key scheme.
func (s SigningConfig) KeyConfig() KeyConfig {
	return KeyConfig{Path: s.KeyPath, Password: s.Password}
}
