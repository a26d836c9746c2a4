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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verdict"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SEALED_PROOF_"

// LegacyPassphraseEnv is consulted for the decryption passphrase when
// SEALED_PROOF_DECRYPT_PASSPHRASE is unset.
const LegacyPassphraseEnv = "SIGNATURE"

// Load reads path over Default(), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	c, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Read decodes path over Default() without environment overrides or
// validation. Unknown fields are rejected.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Config(fmt.Sprintf("cannot read config file %s", path), err)
	}

	c := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return nil, faults.Config(fmt.Sprintf("invalid YAML in %s", path), err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			return nil, faults.Config(fmt.Sprintf("invalid TOML in %s", path), err)
		}
	default:
		return nil, faults.Config(fmt.Sprintf("unsupported config file extension %q (use .yaml, .yml or .toml)", ext), nil)
	}
	return c, nil
}

// ApplyEnv overrides c from SEALED_PROOF_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	str("SOURCE_URL", &c.Source.URL)
	str("CANDIDATE_PATH", &c.Source.CandidatePath)
	str("SIGNING_SCHEME", &c.Signing.Scheme)
	str("SIGNING_KEY_PATH", &c.Signing.KeyPath)
	str("SIGNING_PASSWORD", &c.Signing.Password)
	str("PKCS11_URI", &c.Signing.PKCS11URI)
	str("OUTPUT_DIR", &c.Output.Dir)
	str("OUTPUT_FORMAT", &c.Output.Format)
	str("HISTORY_PATH", &c.History.Path)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)

	if v, ok := lookup(EnvPrefix + "DECRYPT_PASSPHRASE"); ok && v != "" {
		c.Source.DecryptPassphrase = v
	} else if v, ok := lookup(LegacyPassphraseEnv); ok && v != "" {
		c.Source.DecryptPassphrase = v
	}

	if v, ok := lookup(EnvPrefix + "THRESHOLD"); ok && v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return faults.Config(fmt.Sprintf("%sTHRESHOLD: invalid number %q", EnvPrefix, v), err)
		}
		c.Policy.Threshold = t
	}
	if v, ok := lookup(EnvPrefix + "ON_REJECT"); ok && v != "" {
		c.Policy.OnReject = verdict.RejectAction(strings.ToLower(v))
	}
	return nil
}
