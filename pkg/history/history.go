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

// Package history remembers the entries of previously sealed candidates so
// later candidates can be scored for uniqueness.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/normalize"
)

const schema = `
CREATE TABLE IF NOT EXISTS sealed_entries (
    fingerprint TEXT PRIMARY KEY,
    source      TEXT NOT NULL,
    proof_id    TEXT NOT NULL,
    first_seen  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sealed_entries_proof ON sealed_entries(proof_id);
`

// Store is an SQLite-backed set of entry fingerprints.
type Store struct {
	db     *sql.DB
	closer bool
}

// Open opens (creating if needed) the database at path. Use ":memory:"
// for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// In-memory databases are per connection; one connection also keeps
	// writers serialized.
	db.SetMaxOpenConns(1)

	s, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.closer = true
	return s, nil
}

// NewStore creates the schema on db and returns a store using it. The
// caller keeps ownership of db.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if s.closer {
		return s.db.Close()
	}
	return nil
}

// Result summarizes a uniqueness check.
type Result struct {
	// Total is the number of distinct entries in the candidate.
	Total int
	// Unique is how many of them were never recorded before.
	Unique int
}

// Known reports whether the candidate had any entries to score.
func (r Result) Known() bool { return r.Total > 0 }

// Score is Unique/Total, or 1 for a candidate without entries.
func (r Result) Score() float64 {
	if r.Total == 0 {
		return 1
	}
	return float64(r.Unique) / float64(r.Total)
}

// Uniqueness compares the candidate's entries against the history.
func (s *Store) Uniqueness(ctx context.Context, doc *normalize.Node) (Result, error) {
	prints := distinctFingerprints(doc)
	res := Result{Total: len(prints)}
	for _, fp := range prints {
		var n int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM sealed_entries WHERE fingerprint = ?`, fp,
		).Scan(&n)
		if err != nil {
			return Result{}, fmt.Errorf("query history: %w", err)
		}
		if n == 0 {
			res.Unique++
		}
	}
	return res, nil
}

// Record adds the candidate's entries to the history. Entries already
// present keep their original source and proof. It returns the number of
// newly added entries.
func (s *Store) Record(ctx context.Context, source, proofID string, doc *normalize.Node) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin history tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC().Format(time.RFC3339)
	added := 0
	for _, fp := range distinctFingerprints(doc) {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO sealed_entries (fingerprint, source, proof_id, first_seen)
			 VALUES (?, ?, ?, ?)`,
			fp, source, proofID, now,
		)
		if err != nil {
			return 0, fmt.Errorf("record entry: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit history: %w", err)
	}
	return added, nil
}

// Count returns the number of recorded entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sealed_entries`).Scan(&n)
	return n, err
}

// Entries splits a document into the units uniqueness is measured on: the
// elements of a top-level list, or for a top-level map, the elements of
// each list value and every other value as is.
func Entries(doc *normalize.Node) []*normalize.Node {
	switch doc.Kind() {
	case normalize.KindList:
		return doc.Items()
	case normalize.KindMap:
		var out []*normalize.Node
		for _, k := range doc.Keys() {
			v, _ := doc.Get(k)
			if v.Kind() == normalize.KindList {
				out = append(out, v.Items()...)
			} else {
				out = append(out, v)
			}
		}
		return out
	case normalize.KindNull:
		return nil
	}
	return []*normalize.Node{doc}
}

func distinctFingerprints(doc *normalize.Node) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range Entries(doc) {
		fp := Fingerprint(e)
		if !seen[fp] {
			seen[fp] = true
			out = append(out, fp)
		}
	}
	return out
}

// Fingerprint hashes n ignoring the order of list elements at every level.
func Fingerprint(n *normalize.Node) string {
	sum := sha256.Sum256([]byte(unordered(n)))
	return hex.EncodeToString(sum[:])
}

func unordered(n *normalize.Node) string {
	var b strings.Builder
	writeUnordered(&b, n)
	return b.String()
}

func writeUnordered(b *strings.Builder, n *normalize.Node) {
	switch n.Kind() {
	case normalize.KindList:
		parts := make([]string, n.Len())
		for i, item := range n.Items() {
			parts[i] = unordered(item)
		}
		sort.Strings(parts)
		b.WriteByte('[')
		b.WriteString(strings.Join(parts, ","))
		b.WriteByte(']')
	case normalize.KindMap:
		b.WriteByte('{')
		for i, k := range n.Keys() {
			if i > 0 {
				b.WriteByte(',')
			}
			v, _ := n.Get(k)
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			writeUnordered(b, v)
		}
		b.WriteByte('}')
	default:
		b.WriteString(n.String())
	}
}
