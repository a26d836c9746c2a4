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

// Package verify independently checks persisted sealed proofs.
//
// A proof verifies when its DSSE signature is valid under a trusted key,
// the signed statement is well formed and the recorded verdict is
// consistent with its own discrepancies and policy.
package verify

import (
	"bytes"
	"context"
	"fmt"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/dsse"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/logging"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/proof"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/sealed"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing/key"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing/pgp"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/utils"
)

// Result is the outcome of verifying one proof file.
type Result struct {
	Verified bool   // Verified indicates whether the verification succeeded.
	Message  string // Message contains a human-readable description of the result.

	// Proof is the decoded proof, set whenever the file could be parsed.
	Proof *proof.SignedProof
}

// Options configures a ProofVerifier.
type Options struct {
	// ProofPath is the persisted proof file.
	ProofPath string

	// PublicKeyPath is a trusted PEM public key for key and pkcs11 proofs.
	// When empty the key embedded in the proof is used, which only
	// establishes integrity, not who signed.
	PublicKeyPath string

	// KeyRingPath is an armored OpenPGP public key ring for pgp proofs.
	KeyRingPath string

	// ExpectedIdentity, when set, must equal the identity of the key that
	// verified the signature.
	ExpectedIdentity string

	Logger logging.Logger
}

// ProofVerifier verifies a single persisted proof.
type ProofVerifier struct {
	opts   Options
	logger logging.Logger
}

// NewProofVerifier validates that every configured path exists.
func NewProofVerifier(opts Options) (*ProofVerifier, error) {
	if err := utils.ValidateFileExists("proof", opts.ProofPath); err != nil {
		return nil, err
	}
	if err := utils.ValidateOptionalFile("public key", opts.PublicKeyPath); err != nil {
		return nil, err
	}
	if err := utils.ValidateOptionalFile("PGP keyring", opts.KeyRingPath); err != nil {
		return nil, err
	}
	return &ProofVerifier{opts: opts, logger: logging.EnsureLogger(opts.Logger)}, nil
}

// Verify reads the proof file and runs every check. A failed check is
// returned as a VerifyError together with a Result describing it.
func (v *ProofVerifier) Verify(_ context.Context) (Result, error) {
	path := v.opts.ProofPath
	v.logger.Debug("verifying sealed proof %s", path)

	p, err := sealed.ReadFile(path)
	if err != nil {
		return Result{Message: err.Error()}, err
	}

	sv, err := v.verifierFor(p)
	if err != nil {
		return Result{Message: err.Error(), Proof: p}, err
	}

	if err := Proof(p, sv); err != nil {
		err = withPath(err, path)
		return Result{Message: err.Error(), Proof: p}, err
	}

	if v.opts.ExpectedIdentity != "" && sv.Identity() != v.opts.ExpectedIdentity {
		err := faults.Verify(path, fmt.Sprintf("proof was signed by %s, expected %s", sv.Identity(), v.opts.ExpectedIdentity), nil)
		return Result{Message: err.Error(), Proof: p}, err
	}

	v.logger.Info("sealed proof %s verified (scheme %s, signer %s)", p.ID, p.Scheme, sv.Identity())
	return Result{
		Verified: true,
		Message:  "Verification succeeded",
		Proof:    p,
	}, nil
}

// verifierFor picks the signature verifier matching the proof's scheme.
func (v *ProofVerifier) verifierFor(p *proof.SignedProof) (signing.Verifier, error) {
	path := v.opts.ProofPath

	switch p.Scheme {
	case signing.SchemePGP:
		if v.opts.KeyRingPath == "" {
			return nil, faults.Verify(path, "an OpenPGP key ring is required to verify pgp proofs", nil)
		}
		kv, err := pgp.NewVerifier(v.opts.KeyRingPath)
		if err != nil {
			return nil, faults.Verify(path, "failed to load OpenPGP key ring", err)
		}
		return kv, nil

	case signing.SchemeKey, signing.SchemePKCS11:
		var (
			kv  *signing.PublicKeyVerifier
			err error
		)
		switch {
		case v.opts.PublicKeyPath != "":
			kv, err = key.NewVerifier(v.opts.PublicKeyPath)
		case len(p.PublicKey) > 0:
			v.logger.Warn("no trusted public key supplied; checking %s against its embedded key", path)
			kv, err = key.NewVerifierFromPEM(p.PublicKey)
		default:
			return nil, faults.Verify(path, "proof carries no public key and none was supplied", nil)
		}
		if err != nil {
			return nil, faults.Verify(path, "failed to load public key", err)
		}
		if p.SignerIdentity != "" && p.SignerIdentity != kv.Identity() {
			v.logger.Warn("key mismatch: proof records signer %s but the verifying key is %s; proceeding with verification",
				p.SignerIdentity, kv.Identity())
		}
		return kv, nil

	default:
		return nil, faults.Verify(path, fmt.Sprintf("unsupported signing scheme %q", p.Scheme), nil)
	}
}

// Proof checks the DSSE signature of p with sv, then re-validates the
// signed statement and the verdict it carries.
func Proof(p *proof.SignedProof, sv signing.Verifier) error {
	if p == nil || p.Envelope == nil {
		return faults.Verify("", "proof has no envelope", nil)
	}
	if sv == nil {
		return faults.Verify("", "no verifier configured", nil)
	}

	payload, err := p.Envelope.Verify(sv, dsse.InTotoPayloadType)
	if err != nil {
		return faults.Verify("", "signature is invalid", err)
	}
	if p.Statement == nil {
		return faults.Verify("", "proof has no statement", nil)
	}
	if err := p.Statement.Validate(); err != nil {
		return faults.Verify("", "signed statement is invalid", err)
	}
	if !bytes.Equal(payload, p.Payload) {
		return faults.Verify("", "statement does not match the signed payload", nil)
	}
	recorded, err := proof.CanonicalJSON(p.Verdict)
	if err != nil {
		return faults.Verify("", "failed to encode recorded verdict", err)
	}
	signed, err := proof.CanonicalJSON(p.Statement.Predicate.Verdict)
	if err != nil {
		return faults.Verify("", "failed to encode signed verdict", err)
	}
	if !bytes.Equal(recorded, signed) {
		return faults.Verify("", "recorded verdict does not match the signed verdict", nil)
	}
	return Verdict(p.Verdict)
}

func withPath(err error, path string) error {
	if fe, ok := faults.As(err); ok && fe.Path == "" {
		c := *fe
		c.Path = path
		return &c
	}
	return err
}
