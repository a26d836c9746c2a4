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

package pipeline

import (
	"errors"
	"io"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/artifact"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/config"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/diff"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/history"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/logging"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/normalize"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/sealed"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing/pgp"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing/pkcs11"
)

// FromConfig builds a pipeline from a validated configuration. The caller
// must Close the pipeline to release the history database and any token
// session.
func FromConfig(cfg *config.Config, logger logging.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logging.EnsureLogger(logger)

	signer, closer, err := NewSigner(cfg.Signing)
	if err != nil {
		return nil, err
	}
	var closers []io.Closer
	if closer != nil {
		closers = append(closers, closer)
	}

	out, err := sealed.Open(cfg.Output.Dir, sealed.Options{
		Format:      cfg.Output.Format,
		MaxAttempts: cfg.Output.MaxAttempts,
		Backoff:     cfg.Output.Backoff.Duration,
		Create:      cfg.Output.Create,
		Logger:      logger,
	})
	if err != nil {
		closeAll(closers)
		return nil, err
	}

	var store *history.Store
	if cfg.History.Path != "" {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			closeAll(closers)
			return nil, faults.Config("failed to open history database", err)
		}
		closers = append(closers, store)
	}

	p, err := New(Options{
		Fetcher:  NewFetcher(cfg.Fetch, cfg.Source),
		Registry: normalize.DefaultRegistry(),
		Diff:     diff.Options{KeyFields: cfg.Source.KeyFields},
		Policy:   cfg.Policy,
		Signer:   signer,
		Output:   out,
		History:  store,
		Logger:   logger,
	})
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	p.closers = closers
	return p, nil
}

// Close releases resources opened by FromConfig.
func (p *Pipeline) Close() error {
	err := closeAll(p.closers)
	p.closers = nil
	return err
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewFetcher routes file locators to a FileFetcher and http(s) locators to
// a rate limited HTTPFetcher. Encrypted artifacts are decrypted when a
// passphrase is configured.
func NewFetcher(fc config.FetchConfig, sc config.SourceConfig) artifact.Fetcher {
	var f artifact.Fetcher = &artifact.Router{
		File: &artifact.FileFetcher{MaxBytes: fc.MaxBytes, Digests: sc.Digests},
		HTTP: artifact.NewHTTPFetcher(artifact.HTTPOptions{
			Timeout:       fc.Timeout.Duration,
			MaxConcurrent: fc.MaxConcurrent,
			RatePerSecond: fc.RatePerSecond,
			Burst:         fc.Burst,
			MaxBytes:      fc.MaxBytes,
			UserAgent:     fc.UserAgent,
			Digests:       sc.Digests,
		}),
	}
	if sc.DecryptPassphrase != "" {
		f = artifact.NewDecryptingFetcher(f, sc.DecryptPassphrase)
	}
	return f
}

// NewSigner loads the signer of the configured scheme. The closer is
// non-nil for schemes holding a session open.
func NewSigner(sc config.SigningConfig) (signing.Signer, io.Closer, error) {
	if err := sc.Validate(); err != nil {
		return nil, nil, err
	}
	switch sc.Scheme {
	case signing.SchemePGP:
		s, err := pgp.NewSigner(sc.KeyPath, sc.Password)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case signing.SchemePKCS11:
		s, err := pkcs11.NewSigner(pkcs11.SignerConfig{
			URI:        sc.PKCS11URI,
			ModuleDirs: sc.ModuleDirs,
			PIN:        sc.Password,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		kc := sc.KeyConfig()
		priv, err := kc.LoadPrivateKey()
		if err != nil {
			return nil, nil, faults.Signing("failed to load signing key", err)
		}
		s, err := signing.NewCryptoSigner(priv, signing.SchemeKey)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
}
