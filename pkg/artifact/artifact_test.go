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

package artifact

import (
	"bytes"
	"testing"
)

func TestNew_CopiesContent(t *testing.T) {
	src := []byte(`{"title":"A"}`)
	a := New("ref.json", TypeJSON, src)
	src[0] = 'X'

	if got := a.Bytes(); got[0] != '{' {
		t.Errorf("artifact content changed after caller mutated source: %q", got)
	}
	b := a.Bytes()
	b[0] = 'Y'
	if got := a.Bytes(); got[0] != '{' {
		t.Errorf("artifact content changed after caller mutated Bytes(): %q", got)
	}
}

func TestNew_Digests(t *testing.T) {
	a := New("x", TypeText, []byte("hello"), DigestBlake2b, "md4")

	const wantSHA = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := a.Digest(DigestSHA256); got != wantSHA {
		t.Errorf("sha256 = %s, want %s", got, wantSHA)
	}
	if got := a.Digest(DigestBlake2b); len(got) != 128 {
		t.Errorf("blake2b digest length = %d, want 128 hex chars", len(got))
	}
	if got := a.Digest("md4"); got != "" {
		t.Errorf("unknown algorithm should be ignored, got %q", got)
	}
	if algs := a.DigestAlgorithms(); len(algs) != 2 || algs[0] != DigestBlake2b || algs[1] != DigestSHA256 {
		t.Errorf("DigestAlgorithms() = %v", algs)
	}
}

func TestWithContent_KeepsOriginal(t *testing.T) {
	a := New("data.json.gpg", TypePGP, []byte("cipher"), DigestBlake2b)
	b := a.WithContent(TypeJSON, []byte(`[]`))

	if !bytes.Equal(a.Bytes(), []byte("cipher")) || a.ContentType() != TypePGP {
		t.Error("WithContent() mutated the receiver")
	}
	if b.ContentType() != TypeJSON || b.Locator() != a.Locator() {
		t.Errorf("unexpected derived artifact: %s %s", b.ContentType(), b.Locator())
	}
	if b.Digest(DigestBlake2b) == "" {
		t.Error("derived artifact should keep the extra digest algorithms")
	}
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		locator  string
		declared string
		content  string
		want     string
	}{
		{"declared json", "https://x/api", "application/json; charset=utf-8", "", TypeJSON},
		{"declared alias", "https://x/api", "text/x-yaml", "", TypeYAML},
		{"generic declared falls back to extension", "https://x/data.csv?x=1", "text/plain", "a,b", TypeCSV},
		{"yml extension", "conf.yml", "", "a: 1", TypeYAML},
		{"zip magic", "blob", "", "PK\x03\x04rest", TypeZip},
		{"json sniff", "blob", "", "  \n{\"a\":1}", TypeJSON},
		{"html sniff", "blob", "", "<!DOCTYPE html><p>x</p>", TypeHTML},
		{"armored pgp", "blob", "", "-----BEGIN PGP MESSAGE-----\n", TypePGP},
		{"plain text", "blob", "", "just words", TypeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectContentType(tt.locator, tt.declared, []byte(tt.content)); got != tt.want {
				t.Errorf("DetectContentType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsBookmarkFile(t *testing.T) {
	if !IsBookmarkFile([]byte("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n<TITLE>Bookmarks</TITLE>")) {
		t.Error("expected Netscape bookmark export to be detected")
	}
	if IsBookmarkFile([]byte("<!DOCTYPE html><html></html>")) {
		t.Error("plain HTML detected as bookmarks")
	}
}

func TestIsPGPMessage_Binary(t *testing.T) {
	// New-format packet header, tag 3 (symmetric-key encrypted session key).
	if !IsPGPMessage([]byte{0xc3, 0x0d}) {
		t.Error("new-format SKESK packet not detected")
	}
	// Old-format packet header, tag 1.
	if !IsPGPMessage([]byte{0x84, 0x0c}) {
		t.Error("old-format PKESK packet not detected")
	}
	if IsPGPMessage([]byte("{}")) {
		t.Error("JSON detected as PGP")
	}
}
