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

package faults

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  Config("missing field", nil),
			want: "ConfigError: missing field",
		},
		{
			name: "with path",
			err:  Fetch("https://example.com", "unexpected status 404", nil),
			want: "FetchError: unexpected status 404 (path: https://example.com)",
		},
		{
			name: "with path and cause",
			err:  Write("/sealed/p.json", "rename failed", io.ErrShortWrite),
			want: "WriteError: rename failed (path: /sealed/p.json): short write",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsKind_ThroughWrapping(t *testing.T) {
	base := Parse("doc.json", "invalid JSON", io.ErrUnexpectedEOF)
	wrapped := fmt.Errorf("normalize candidate: %w", base)

	if !IsKind(wrapped, KindParse) {
		t.Error("IsKind() should find ParseError through fmt.Errorf wrapping")
	}
	if IsKind(wrapped, KindFetch) {
		t.Error("IsKind() should not report FetchError")
	}
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Error("errors.Is() should reach the cause")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("KindOf() should be KindUnknown for plain errors")
	}
}

func TestRetryable(t *testing.T) {
	for _, k := range []Kind{KindFetch, KindParse, KindSigning, KindConfig, KindVerify, KindRejected} {
		if New(k, "x", nil).Retryable() {
			t.Errorf("%s should not be retryable", k)
		}
	}
	if !New(KindWrite, "x", nil).Retryable() {
		t.Error("WriteError should be retryable")
	}
}

func TestExitCodes_Distinct(t *testing.T) {
	seen := map[int]Kind{}
	for _, k := range []Kind{KindFetch, KindParse, KindSigning, KindWrite, KindConfig, KindVerify, KindRejected} {
		code := k.ExitCode()
		if code == 0 {
			t.Errorf("%s maps to exit code 0", k)
		}
		if prev, dup := seen[code]; dup {
			t.Errorf("%s and %s share exit code %d", k, prev, code)
		}
		seen[code] = k
	}
}

func TestWithStage(t *testing.T) {
	orig := Signing("key unavailable", nil)
	staged := orig.WithStage("sign")
	if orig.Stage != "" {
		t.Error("WithStage() must not mutate the receiver")
	}
	if staged.Stage != "sign" || !strings.Contains(staged.Error(), "key unavailable") {
		t.Errorf("unexpected staged error: %+v", staged)
	}
}
