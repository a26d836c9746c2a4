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

package normalize

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/artifact"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
)

// CSVNormalizer handles CSV files with a header row. Each data row becomes
// a map from column name to cell text. Blank column names become
// "column_<n>"; repeated names get a "_<n>" suffix. Rows must all have the
// header's width.
type CSVNormalizer struct{}

func (CSVNormalizer) Format() string { return "csv" }

func (CSVNormalizer) Accepts(a *artifact.Artifact) bool {
	return a.ContentType() == artifact.TypeCSV
}

func (CSVNormalizer) Normalize(a *artifact.Artifact) (*Node, error) {
	r := csv.NewReader(bytes.NewReader(trimBOM(a.Bytes())))
	r.FieldsPerRecord = 0

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return List(), nil
	}
	if err != nil {
		return nil, err
	}
	columns := columnNames(header)

	rows := []*Node{}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		fields := make(map[string]*Node, len(rec))
		for i, cell := range rec {
			fields[columns[i]] = String(cell)
		}
		rows = append(rows, Map(fields))
	}
	return List(rows...), nil
}

func columnNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n)
		} else {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}

// Archive limits.
const (
	// DefaultMaxMemberBytes bounds the uncompressed size of one archive member.
	DefaultMaxMemberBytes int64 = 64 << 20

	// DefaultMaxArchiveBytes bounds the uncompressed size of everything read
	// from one archive, nested archives included.
	DefaultMaxArchiveBytes int64 = 256 << 20

	// DefaultMaxArchiveDepth bounds archive nesting; the outer archive is level 1.
	DefaultMaxArchiveDepth = 4
)

var errTooLarge = errors.New("size limit exceeded")

// ZipNormalizer handles zip archives. The archive becomes a map from member
// name to the member's normalized tree, using Registry for each member.
// Members no normalizer accepts are recorded by digest ("sha256:<hex>").
// Directory entries and macOS resource forks are skipped. Nested archives
// are expanded in place, within MaxDepth levels and MaxTotalBytes overall.
type ZipNormalizer struct {
	Registry *Registry

	// MaxMemberBytes caps each member; zero means DefaultMaxMemberBytes.
	MaxMemberBytes int64

	// MaxTotalBytes caps all members together; zero means DefaultMaxArchiveBytes.
	MaxTotalBytes int64

	// MaxDepth caps nesting; zero means DefaultMaxArchiveDepth.
	MaxDepth int
}

func (*ZipNormalizer) Format() string { return "zip" }

func (*ZipNormalizer) Accepts(a *artifact.Artifact) bool {
	return a.ContentType() == artifact.TypeZip
}

func (z *ZipNormalizer) Normalize(a *artifact.Artifact) (*Node, error) {
	w := &zipWalk{
		registry:    z.Registry,
		memberLimit: z.MaxMemberBytes,
		totalLimit:  z.MaxTotalBytes,
		maxDepth:    z.MaxDepth,
	}
	if w.memberLimit <= 0 {
		w.memberLimit = DefaultMaxMemberBytes
	}
	if w.totalLimit <= 0 {
		w.totalLimit = DefaultMaxArchiveBytes
	}
	if w.maxDepth <= 0 {
		w.maxDepth = DefaultMaxArchiveDepth
	}
	w.budget = w.totalLimit
	return w.archive(a, 1)
}

// zipWalk carries the limits of one top-level archive through its nested
// archives.
type zipWalk struct {
	registry    *Registry
	memberLimit int64
	totalLimit  int64
	maxDepth    int
	budget      int64
}

func (w *zipWalk) archive(a *artifact.Artifact, depth int) (*Node, error) {
	if depth > w.maxDepth {
		return nil, faults.Parse(a.Locator(), fmt.Sprintf("archives nested deeper than %d levels", w.maxDepth), nil)
	}

	content := a.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	members := make(map[string]*Node, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		if _, dup := members[f.Name]; dup {
			return nil, fmt.Errorf("duplicate member %q", f.Name)
		}
		locator := a.Locator() + "!/" + f.Name

		limit := min(w.memberLimit, w.budget)
		data, err := readMember(f, limit)
		if errors.Is(err, errTooLarge) {
			if limit < w.memberLimit {
				return nil, faults.Parse(locator, fmt.Sprintf("archive expands beyond %d bytes", w.totalLimit), nil)
			}
			return nil, faults.Parse(locator, fmt.Sprintf("member exceeds %d bytes", w.memberLimit), nil)
		}
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", f.Name, err)
		}
		w.budget -= int64(len(data))

		node, err := w.member(locator, f.Name, data, depth)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", f.Name, err)
		}
		members[f.Name] = node
	}
	return Map(members), nil
}

func (w *zipWalk) member(locator, name string, data []byte, depth int) (*Node, error) {
	ma := artifact.New(locator, artifact.DetectContentType(name, "", data), data)
	if ma.ContentType() == artifact.TypeZip {
		return w.archive(ma, depth+1)
	}
	if w.registry != nil {
		if n, ok := w.registry.Lookup(ma); ok {
			return n.Normalize(ma)
		}
	}
	sum := sha256.Sum256(data)
	return String("sha256:" + hex.EncodeToString(sum[:])), nil
}

func readMember(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}
