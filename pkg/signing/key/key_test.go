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

package key

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
)

func TestWriteKeyPair_SignVerify(t *testing.T) {
	for _, password := range []string{"", "s3cret"} {
		name := "plain"
		if password != "" {
			name = "encrypted"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			files, err := WriteKeyPair(dir, "sealer", password)
			if err != nil {
				t.Fatalf("WriteKeyPair() error = %v", err)
			}

			signer, err := NewSigner(SignerConfig{PrivateKeyPath: files.PrivateKeyPath, Password: password})
			if err != nil {
				t.Fatalf("NewSigner() error = %v", err)
			}
			if signer.Scheme() != signing.SchemeKey {
				t.Errorf("Scheme() = %q, want %q", signer.Scheme(), signing.SchemeKey)
			}

			verifier, err := NewVerifier(files.PublicKeyPath)
			if err != nil {
				t.Fatalf("NewVerifier() error = %v", err)
			}
			if verifier.Identity() != signer.Identity() {
				t.Errorf("identity mismatch: %s vs %s", signer.Identity(), verifier.Identity())
			}

			data := []byte(`{"score":0.9}`)
			sig, err := signer.Sign(data)
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}
			if err := verifier.Verify(data, sig); err != nil {
				t.Errorf("Verify() error = %v", err)
			}
		})
	}
}

func TestWriteKeyPair_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sealer.pub"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteKeyPair(dir, "sealer", ""); err == nil {
		t.Error("expected error when key files already exist")
	}
}

func TestNewSigner_Errors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.pem")
	if err := os.WriteFile(garbage, []byte("not a key"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  SignerConfig
	}{
		{"empty path", SignerConfig{}},
		{"missing file", SignerConfig{PrivateKeyPath: filepath.Join(dir, "missing.pem")}},
		{"not PEM", SignerConfig{PrivateKeyPath: garbage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSigner(tt.cfg)
			if !faults.IsKind(err, faults.KindSigning) {
				t.Errorf("NewSigner() error = %v, want SigningError", err)
			}
		})
	}

	if _, err := NewVerifier(""); !faults.IsKind(err, faults.KindSigning) {
		t.Errorf("NewVerifier(\"\") error = %v, want SigningError", err)
	}
}

func TestSignerFromPEM(t *testing.T) {
	privatePEM, publicPEM, err := GenerateKeyPair("")
	if err != nil {
		t.Fatalf("GenerateKeyPair() error = %v", err)
	}
	signer, err := NewSignerFromPEM(privatePEM, "")
	if err != nil {
		t.Fatalf("NewSignerFromPEM() error = %v", err)
	}
	verifier, err := NewVerifierFromPEM(publicPEM)
	if err != nil {
		t.Fatalf("NewVerifierFromPEM() error = %v", err)
	}

	sig, err := signer.Sign([]byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if err := verifier.Verify([]byte("payload"), sig); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
	if err := verifier.Verify([]byte("payloaD"), sig); err == nil {
		t.Error("Verify() accepted a modified payload")
	}
}
