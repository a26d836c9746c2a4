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

package verify

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/diff"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/logging"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/normalize"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/proof"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/sealed"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing/key"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing/pgp"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verdict"
)

var evaluatedAt = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func document(source, title string) *normalize.Document {
	sum := sha256.Sum256([]byte(title))
	return &normalize.Document{
		Source:      source,
		ContentType: "application/json",
		Format:      "json",
		Digests:     map[string]string{"sha256": hex.EncodeToString(sum[:])},
		Root: normalize.Map(map[string]*normalize.Node{
			"title": normalize.String(title),
			"items": normalize.List(normalize.Int(1), normalize.Int(2)),
		}),
	}
}

func statement() *proof.Statement {
	return statementFor("B")
}

// statementFor compares the reference titled "A" with a candidate titled title.
func statementFor(title string) *proof.Statement {
	ref := document("https://example.com/ref.json", "A")
	cand := document("/data/candidate.json", title)
	policy := verdict.DefaultPolicy()
	policy.Threshold = 0.85
	v := verdict.Evaluate(diff.Compute(ref.Root, cand.Root, diff.Options{}), policy, verdict.FixedClock(evaluatedAt))
	return proof.NewStatement(ref, cand, v)
}

type keyPair struct {
	signer  signing.Signer
	pubPath string
}

func newKeyPair(t *testing.T, dir, prefix string) keyPair {
	t.Helper()
	files, err := key.WriteKeyPair(dir, prefix, "")
	if err != nil {
		t.Fatalf("WriteKeyPair() error = %v", err)
	}
	signer, err := key.NewSigner(key.SignerConfig{PrivateKeyPath: files.PrivateKeyPath})
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}
	return keyPair{signer: signer, pubPath: files.PublicKeyPath}
}

// persist seals a statement with signer and writes it in format.
func persist(t *testing.T, signer signing.Signer, format string) string {
	t.Helper()
	p, err := proof.Seal(statement(), signer, verdict.FixedClock(evaluatedAt))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	dir, err := sealed.Open(filepath.Join(t.TempDir(), "sealed"), sealed.Options{Format: format, Create: true, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	path, err := dir.Write(context.Background(), p)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return path
}

func verifyFile(t *testing.T, opts Options) (Result, error) {
	t.Helper()
	opts.Logger = logging.Discard()
	v, err := NewProofVerifier(opts)
	if err != nil {
		t.Fatalf("NewProofVerifier() error = %v", err)
	}
	return v.Verify(context.Background())
}

func TestVerify_KeyScheme(t *testing.T) {
	dir := t.TempDir()
	kp := newKeyPair(t, dir, "sealer")
	other := newKeyPair(t, dir, "other")

	for _, format := range sealed.Formats {
		t.Run(format, func(t *testing.T) {
			path := persist(t, kp.signer, format)

			tests := []struct {
				name    string
				opts    Options
				wantErr bool
			}{
				{name: "trusted key", opts: Options{ProofPath: path, PublicKeyPath: kp.pubPath}},
				{name: "expected identity", opts: Options{ProofPath: path, PublicKeyPath: kp.pubPath, ExpectedIdentity: kp.signer.Identity()}},
				{name: "wrong key", opts: Options{ProofPath: path, PublicKeyPath: other.pubPath}, wantErr: true},
				{name: "wrong identity", opts: Options{ProofPath: path, PublicKeyPath: kp.pubPath, ExpectedIdentity: other.signer.Identity()}, wantErr: true},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					res, err := verifyFile(t, tt.opts)
					if (err != nil) != tt.wantErr {
						t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
					}
					if res.Verified == tt.wantErr {
						t.Errorf("Verified = %v, want %v", res.Verified, !tt.wantErr)
					}
					if tt.wantErr && !faults.IsKind(err, faults.KindVerify) {
						t.Errorf("expected VerifyError, got %v", err)
					}
					if res.Proof == nil {
						t.Error("Result.Proof should be set once the file parses")
					}
				})
			}
		})
	}
}

func TestVerify_EmbeddedKey(t *testing.T) {
	kp := newKeyPair(t, t.TempDir(), "sealer")
	path := persist(t, kp.signer, sealed.FormatDSSE)

	res, err := verifyFile(t, Options{ProofPath: path})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !res.Verified || res.Proof.SignerIdentity != kp.signer.Identity() {
		t.Errorf("unexpected result: %+v", res)
	}

	// Bundles carry only a key hint, so a key must be supplied.
	bundlePath := persist(t, kp.signer, sealed.FormatBundle)
	if _, err := verifyFile(t, Options{ProofPath: bundlePath}); !faults.IsKind(err, faults.KindVerify) {
		t.Errorf("expected VerifyError without a key, got %v", err)
	}
}

func TestVerify_TamperedFile(t *testing.T) {
	kp := newKeyPair(t, t.TempDir(), "sealer")

	tests := []struct {
		name   string
		mutate func(doc map[string]interface{})
	}{
		{
			name: "readable verdict edited",
			mutate: func(doc map[string]interface{}) {
				doc["verdict"].(map[string]interface{})["passed"] = false
			},
		},
		{
			name: "signature replaced",
			mutate: func(doc map[string]interface{}) {
				env := doc["envelope"].(map[string]interface{})
				sigs := env["signatures"].([]interface{})
				sigs[0].(map[string]interface{})["sig"] = "MEUCIQDtampered"
			},
		},
		{
			name: "payload replaced",
			mutate: func(doc map[string]interface{}) {
				p, err := proof.Seal(statementFor("C"), newKeyPair(t, t.TempDir(), "intruder").signer, nil)
				if err != nil {
					t.Fatal(err)
				}
				env := doc["envelope"].(map[string]interface{})
				if env["payload"] == p.Envelope.RawEnvelope().Payload {
					t.Fatal("replacement payload must differ from the sealed one")
				}
				env["payload"] = p.Envelope.RawEnvelope().Payload
			},
		},
		{
			name: "single payload bit flipped",
			mutate: func(doc map[string]interface{}) {
				env := doc["envelope"].(map[string]interface{})
				env["payload"] = flipBit(t, env["payload"].(string), 40)
			},
		},
		{
			name: "single signature bit flipped",
			mutate: func(doc map[string]interface{}) {
				env := doc["envelope"].(map[string]interface{})
				sig := env["signatures"].([]interface{})[0].(map[string]interface{})
				sig["sig"] = flipBit(t, sig["sig"].(string), 8)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := persist(t, kp.signer, sealed.FormatDSSE)
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var doc map[string]interface{}
			if err := json.Unmarshal(data, &doc); err != nil {
				t.Fatal(err)
			}
			tt.mutate(doc)
			data, err = json.Marshal(doc)
			if err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				t.Fatal(err)
			}

			res, err := verifyFile(t, Options{ProofPath: path, PublicKeyPath: kp.pubPath})
			if !faults.IsKind(err, faults.KindVerify) {
				t.Fatalf("expected VerifyError, got %v", err)
			}
			if res.Verified {
				t.Error("tampered proof must not verify")
			}
		})
	}
}

// flipBit inverts the lowest bit of byte i of a base64 value.
func flipBit(t *testing.T, b64 string, i int) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatal(err)
	}
	if i >= len(raw) {
		t.Fatalf("value has only %d bytes", len(raw))
	}
	raw[i] ^= 0x01
	return base64.StdEncoding.EncodeToString(raw)
}

func writeKeyRing(t *testing.T, path string, entity *openpgp.Entity) {
	t.Helper()
	var out bytes.Buffer
	w, err := armor.Encode(&out, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, out.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestVerify_PGPScheme(t *testing.T) {
	entity, err := openpgp.NewEntity("Sealer", "test", "sealer@example.com", nil)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := pgp.NewSignerFromEntity(entity)
	if err != nil {
		t.Fatal(err)
	}
	ring := filepath.Join(t.TempDir(), "public.asc")
	writeKeyRing(t, ring, entity)

	path := persist(t, signer, sealed.FormatDSSE)

	res, err := verifyFile(t, Options{ProofPath: path, KeyRingPath: ring, ExpectedIdentity: signer.Identity()})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !res.Verified || res.Proof.Scheme != signing.SchemePGP {
		t.Errorf("unexpected result: %+v", res)
	}

	if _, err := verifyFile(t, Options{ProofPath: path}); !faults.IsKind(err, faults.KindVerify) {
		t.Errorf("expected VerifyError without a key ring, got %v", err)
	}
}

func TestNewProofVerifier_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		opts Options
	}{
		{name: "no proof path", opts: Options{}},
		{name: "missing proof", opts: Options{ProofPath: filepath.Join(dir, "missing.json")}},
		{name: "proof is a directory", opts: Options{ProofPath: dir}},
		{name: "missing public key", opts: Options{ProofPath: dir + "/x", PublicKeyPath: filepath.Join(dir, "missing.pub")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProofVerifier(tt.opts); !faults.IsKind(err, faults.KindConfig) {
				t.Errorf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestVerdict(t *testing.T) {
	base := statement().Predicate.Verdict
	if err := Verdict(base); err != nil {
		t.Fatalf("Verdict() on a genuine verdict: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(v *verdict.Verdict)
	}{
		{name: "inflated score", mutate: func(v *verdict.Verdict) { v.Score = 1 }},
		{name: "flipped passed", mutate: func(v *verdict.Verdict) { v.Passed = !v.Passed }},
		{name: "wrong label", mutate: func(v *verdict.Verdict) { v.Label = verdict.LabelLow }},
		{name: "dropped discrepancy", mutate: func(v *verdict.Verdict) { v.Discrepancies = nil }},
		{name: "wrong counts", mutate: func(v *verdict.Verdict) { v.Counts = map[diff.Kind]int{} }},
		{name: "invalid policy", mutate: func(v *verdict.Verdict) { v.Policy.NormalizationFactor = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := base
			v.Counts = diff.Count(base.Discrepancies)
			tt.mutate(&v)
			if err := Verdict(v); !faults.IsKind(err, faults.KindVerify) {
				t.Errorf("expected VerifyError, got %v", err)
			}
		})
	}
}
