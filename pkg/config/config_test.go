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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/diff"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/sealed"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
source:
  url: https://example.com/reference.json
  candidate_path: /data/candidate.json
  key_fields: [id, url]
  digests: [blake2b]
signing:
  scheme: key
  key_path: /keys/sealer.key
policy:
  weights:
    removed: 2
  normalization_factor: 20
  threshold: 0.85
  on_reject: suppress
fetch:
  timeout: 5s
  max_concurrent: 2
  rate_per_second: 1.5
output:
  dir: /sealed
  format: sigstore-bundle
  backoff: 250ms
history:
  path: /var/lib/sealed/history.db
logging:
  level: debug
  format: json
`

const tomlConfig = `
[source]
url = "https://example.com/reference.json"
candidate_path = "/data/candidate.json"
key_fields = ["id", "url"]
digests = ["blake2b"]

[signing]
scheme = "key"
key_path = "/keys/sealer.key"

[policy]
normalization_factor = 20.0
threshold = 0.85
on_reject = "suppress"

[policy.weights]
removed = 2.0

[fetch]
timeout = "5s"
max_concurrent = 2
rate_per_second = 1.5

[output]
dir = "/sealed"
format = "sigstore-bundle"
backoff = "250ms"

[history]
path = "/var/lib/sealed/history.db"

[logging]
level = "debug"
format = "json"
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestRead_Formats(t *testing.T) {
	for name, content := range map[string]string{
		"config.yaml": yamlConfig,
		"config.yml":  yamlConfig,
		"config.toml": tomlConfig,
	} {
		t.Run(name, func(t *testing.T) {
			c, err := Read(writeConfig(t, name, content))
			require.NoError(t, err)
			require.NoError(t, c.Validate())

			assert.Equal(t, "https://example.com/reference.json", c.Source.URL)
			assert.Equal(t, []string{"id", "url"}, c.Source.KeyFields)
			assert.Equal(t, []string{"blake2b"}, c.Source.Digests)
			assert.Equal(t, signing.SchemeKey, c.Signing.Scheme)

			assert.InDelta(t, 2.0, c.Policy.Weight(diff.Removed), 1e-9)
			assert.InDelta(t, verdict.DefaultWeight, c.Policy.Weight(diff.Added), 1e-9, "unset weights keep the default")
			assert.InDelta(t, 20.0, c.Policy.NormalizationFactor, 1e-9)
			assert.InDelta(t, 0.85, c.Policy.Threshold, 1e-9)
			assert.Equal(t, verdict.RejectSuppress, c.Policy.OnReject)

			assert.Equal(t, 5*time.Second, c.Fetch.Timeout.Duration)
			assert.Equal(t, 2, c.Fetch.MaxConcurrent)
			assert.InDelta(t, 1.5, c.Fetch.RatePerSecond, 1e-9)
			assert.Equal(t, "sealed-proof", c.Fetch.UserAgent, "defaults survive decoding")

			assert.Equal(t, sealed.FormatBundle, c.Output.Format)
			assert.Equal(t, 250*time.Millisecond, c.Output.Backoff.Duration)
			assert.Equal(t, sealed.DefaultMaxAttempts, c.Output.MaxAttempts)
			assert.Equal(t, "/var/lib/sealed/history.db", c.History.Path)
			assert.Equal(t, "json", c.Logging.Format)
		})
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "unknown extension", file: "config.json", content: "{}"},
		{name: "unknown yaml field", file: "c.yaml", content: "source:\n  urll: x\n"},
		{name: "unknown toml field", file: "c.toml", content: "[source]\nurll = \"x\"\n"},
		{name: "malformed yaml", file: "c.yaml", content: "source: [\n"},
		{name: "bad duration", file: "c.yaml", content: "fetch:\n  timeout: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(writeConfig(t, tt.file, tt.content))
			assert.True(t, faults.IsKind(err, faults.KindConfig), "got %v", err)
		})
	}

	_, err := Read(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, faults.IsKind(err, faults.KindConfig))
}

func TestRead_EmptyYAMLKeepsDefaults(t *testing.T) {
	c, err := Read(writeConfig(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SEALED_PROOF_SOURCE_URL":       "https://origin.example/ref.html",
		"SEALED_PROOF_SIGNING_PASSWORD": "s3cret",
		"SEALED_PROOF_THRESHOLD":        "0.5",
		"SEALED_PROOF_ON_REJECT":        "SUPPRESS",
		"SEALED_PROOF_OUTPUT_DIR":       "/out",
		"SIGNATURE":                     "legacy-passphrase",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := Default()
	require.NoError(t, c.ApplyEnv(lookup))
	assert.Equal(t, "https://origin.example/ref.html", c.Source.URL)
	assert.Equal(t, "s3cret", c.Signing.Password)
	assert.InDelta(t, 0.5, c.Policy.Threshold, 1e-9)
	assert.Equal(t, verdict.RejectSuppress, c.Policy.OnReject)
	assert.Equal(t, "/out", c.Output.Dir)
	assert.Equal(t, "legacy-passphrase", c.Source.DecryptPassphrase)

	env["SEALED_PROOF_DECRYPT_PASSPHRASE"] = "preferred"
	require.NoError(t, c.ApplyEnv(lookup))
	assert.Equal(t, "preferred", c.Source.DecryptPassphrase)

	env["SEALED_PROOF_THRESHOLD"] = "high"
	assert.True(t, faults.IsKind(c.ApplyEnv(lookup), faults.KindConfig))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", yamlConfig)
	t.Setenv("SEALED_PROOF_OUTPUT_DIR", "/elsewhere")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", c.Output.Dir)
}

func TestLoad_Validates(t *testing.T) {
	_, err := Load(writeConfig(t, "config.yaml", "source:\n  url: https://example.com\n"))
	assert.True(t, faults.IsKind(err, faults.KindConfig))
}

func validConfig() *Config {
	return FromOptions(Options{
		SourceURL:      "https://example.com/ref.json",
		CandidatePath:  "/data/cand.json",
		Threshold:      0.85,
		SigningKeyPath: "/keys/sealer.key",
		OutputDir:      "/sealed",
	})
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing source", func(c *Config) { c.Source.URL = "" }},
		{"missing candidate", func(c *Config) { c.Source.CandidatePath = "" }},
		{"unknown digest", func(c *Config) { c.Source.Digests = []string{"md5"} }},
		{"unknown scheme", func(c *Config) { c.Signing.Scheme = "hmac" }},
		{"key scheme without key", func(c *Config) { c.Signing.KeyPath = "" }},
		{"pgp scheme without key", func(c *Config) { c.Signing.Scheme = signing.SchemePGP; c.Signing.KeyPath = "" }},
		{"pkcs11 without uri", func(c *Config) { c.Signing.Scheme = signing.SchemePKCS11 }},
		{"threshold above 1", func(c *Config) { c.Policy.Threshold = 1.5 }},
		{"negative weight", func(c *Config) { c.Policy.Weights[diff.Added] = -1 }},
		{"zero factor", func(c *Config) { c.Policy.NormalizationFactor = 0 }},
		{"bad on_reject", func(c *Config) { c.Policy.OnReject = "drop" }},
		{"negative concurrency", func(c *Config) { c.Fetch.MaxConcurrent = -1 }},
		{"missing output", func(c *Config) { c.Output.Dir = "" }},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }},
		{"pgp into bundle", func(c *Config) { c.Signing.Scheme = signing.SchemePGP; c.Output.Format = sealed.FormatBundle }},
		{"negative attempts", func(c *Config) { c.Output.MaxAttempts = -1 }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			assert.True(t, faults.IsKind(err, faults.KindConfig), "got %v", err)
		})
	}

	pkcs := validConfig()
	pkcs.Signing = SigningConfig{Scheme: signing.SchemePKCS11, PKCS11URI: "pkcs11:token=sealer"}
	assert.NoError(t, pkcs.Validate())

	pgpDSSE := validConfig()
	pgpDSSE.Signing.Scheme = signing.SchemePGP
	pgpDSSE.Output.Format = sealed.FormatDSSE
	assert.NoError(t, pgpDSSE.Validate())
}

func TestOptions_RoundTrip(t *testing.T) {
	o := Options{
		SourceURL:      "https://example.com/ref.json",
		CandidatePath:  "/data/cand.json",
		Threshold:      0.7,
		SigningKeyPath: "/keys/k.pem",
		OutputDir:      "/sealed",
	}
	c := FromOptions(o)
	assert.Equal(t, o, c.Options())
	assert.Equal(t, verdict.DefaultNormalizationFactor, c.Policy.NormalizationFactor)

	c.ApplyOptions(Options{OutputDir: "/other"})
	assert.Equal(t, "/other", c.Output.Dir)
	assert.Equal(t, o.SourceURL, c.Source.URL, "zero fields do not override")
}

func TestSigningConfig_KeyConfig(t *testing.T) {
	s := SigningConfig{Scheme: signing.SchemeKey, KeyPath: "/k", Password: "p"}
	assert.Equal(t, KeyConfig{Path: "/k", Password: "p"}, s.KeyConfig())
}

func TestApplyEnv_NothingSet(t *testing.T) {
	c := Default()
	require.NoError(t, c.ApplyEnv(noEnv))
	assert.Equal(t, Default(), c)
}
