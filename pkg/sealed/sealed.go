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

// Package sealed persists signed proofs into the sealed output directory.
//
// It is the only package that writes persistent output. Every proof becomes
// exactly one file, written to a temporary name, synced and renamed so a
// partial file is never visible under its final name.
package sealed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/logging"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/proof"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
)

// Output formats.
const (
	FormatDSSE   = "dsse"
	FormatBundle = "sigstore-bundle"
)

const (
	// DefaultMaxAttempts bounds write retries.
	DefaultMaxAttempts = 3

	// DefaultBackoff is multiplied by the attempt number between retries.
	DefaultBackoff = 100 * time.Millisecond

	filePrefix = "proof-"
	fileSuffix = ".json"
)

// Formats lists the supported output formats.
var Formats = []string{FormatDSSE, FormatBundle}

// Swapped in tests to inject filesystem failures.
var (
	renameFile = os.Rename
	syncDir    = fsyncDir
)

// Options configures a sealed directory handle.
type Options struct {
	// Format selects the file format. Defaults to FormatDSSE.
	Format string

	// MaxAttempts bounds write attempts. Defaults to DefaultMaxAttempts.
	MaxAttempts int

	// Backoff is the linear backoff step. Defaults to DefaultBackoff.
	Backoff time.Duration

	// Create makes Open create a missing directory.
	Create bool

	Logger logging.Logger
}

// Dir is a validated handle on the sealed output directory.
type Dir struct {
	path        string
	format      string
	maxAttempts int
	backoff     time.Duration
	logger      logging.Logger
}

// Open validates dir once: it must exist (or be creatable with
// Options.Create), be a directory and accept a probe file.
func Open(dir string, opts Options) (*Dir, error) {
	if dir == "" {
		return nil, faults.Config("output directory is required", nil)
	}
	format := opts.Format
	if format == "" {
		format = FormatDSSE
	}
	if format != FormatDSSE && format != FormatBundle {
		return nil, faults.Config(fmt.Sprintf("unsupported output format %q (supported: %s)", format, strings.Join(Formats, ", ")), nil)
	}

	if opts.Create {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, faults.Write(dir, "failed to create output directory", err)
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, faults.Write(dir, "output directory is not accessible", err)
	}
	if !info.IsDir() {
		return nil, faults.Write(dir, "output path is not a directory", nil)
	}
	if err := probe(dir); err != nil {
		return nil, faults.Write(dir, "output directory is not writable", err)
	}

	d := &Dir{
		path:        dir,
		format:      format,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		logger:      logging.EnsureLogger(opts.Logger),
	}
	if d.maxAttempts <= 0 {
		d.maxAttempts = DefaultMaxAttempts
	}
	if d.backoff <= 0 {
		d.backoff = DefaultBackoff
	}
	return d, nil
}

func probe(dir string) error {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	closeErr := f.Close()
	removeErr := os.Remove(name)
	if closeErr != nil {
		return closeErr
	}
	return removeErr
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Format returns the output format.
func (d *Dir) Format() string {
	return d.format
}

// FileName returns the final file name of a proof.
func FileName(p *proof.SignedProof) string {
	return filePrefix + p.ID + fileSuffix
}

// Write persists p and returns the final path. Filesystem failures are
// retried up to the configured attempts with linear backoff; the wait
// honours ctx.
func (d *Dir) Write(ctx context.Context, p *proof.SignedProof) (string, error) {
	if p == nil || p.ID == "" {
		return "", faults.Write(d.path, "refusing to write a proof without an identifier", nil)
	}
	if err := CheckFormat(d.format, p.Scheme); err != nil {
		return "", err
	}

	data, err := d.encode(p)
	if err != nil {
		return "", faults.Write(d.path, "failed to encode proof", err)
	}

	final := filepath.Join(d.path, FileName(p))
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		lastErr = writeFileAtomicDurable(final, data, 0o644)
		if lastErr == nil {
			d.logger.Debug("sealed proof %s written to %s (attempt %d)", p.ID, final, attempt)
			return final, nil
		}
		if errors.Is(lastErr, os.ErrExist) {
			break
		}
		if attempt == d.maxAttempts {
			break
		}

		wait := time.Duration(attempt) * d.backoff
		d.logger.Warn("write attempt %d/%d for %s failed: %v; retrying in %s", attempt, d.maxAttempts, final, lastErr, wait)
		select {
		case <-ctx.Done():
			return "", faults.Write(final, "write cancelled", ctx.Err())
		case <-time.After(wait):
		}
	}
	return "", faults.Write(final, fmt.Sprintf("failed to write proof after %d attempt(s)", d.maxAttempts), lastErr)
}

// CheckFormat reports whether proofs signed under scheme can be verified
// once stored in format. Bundles only carry a public key hint, so OpenPGP
// signatures have to use the DSSE document format.
func CheckFormat(format, scheme string) error {
	if format == FormatBundle && scheme == signing.SchemePGP {
		return faults.Config(fmt.Sprintf("output format %s cannot carry %s signatures; use %s",
			FormatBundle, signing.SchemePGP, FormatDSSE), nil)
	}
	return nil
}

func (d *Dir) encode(p *proof.SignedProof) ([]byte, error) {
	if d.format == FormatBundle {
		bndl, err := p.Bundle()
		if err != nil {
			return nil, err
		}
		return bndl.MarshalJSON()
	}
	return p.MarshalJSON()
}

// List returns the proof files in the directory, sorted by name.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, faults.Write(d.path, "failed to list output directory", err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasPrefix(e.Name(), filePrefix) && strings.HasSuffix(e.Name(), fileSuffix) {
			out = append(out, filepath.Join(d.path, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// ReadFile loads a persisted proof in either format. The proof identifier
// of a bundle is recovered from its file name.
func ReadFile(path string) (*proof.SignedProof, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Verify(path, "failed to read proof file", err)
	}

	var header struct {
		MediaType string `json:"mediaType"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, faults.Verify(path, "proof file is not JSON", err)
	}

	var p *proof.SignedProof
	if header.MediaType == proof.BundleMediaType {
		p, err = proof.ParseBundle(data)
		if err == nil {
			p.ID = strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), filePrefix), fileSuffix)
		}
	} else {
		p, err = proof.Parse(data)
	}
	if err != nil {
		return nil, faults.Verify(path, "malformed proof file", err)
	}
	return p, nil
}

// writeFileAtomicDurable writes data to a temporary file in the target
// directory, syncs it, renames it into place and syncs the directory. An
// existing file is never replaced.
func writeFileAtomicDurable(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("%s: %w", path, os.ErrExist)
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := renameFile(tmpName, path); err != nil {
		return err
	}
	committed = true
	if err := syncDir(dir); err != nil {
		// The rename may not survive a crash; take the file back so a
		// failed write leaves nothing under the final name.
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return errors.Join(err, rmErr)
		}
		return err
	}
	return nil
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
