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

package proof

import (
	"fmt"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/dsse"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
	protobundle "github.com/sigstore/protobuf-specs/gen/pb-go/bundle/v1"
	protocommon "github.com/sigstore/protobuf-specs/gen/pb-go/common/v1"
	"github.com/sigstore/sigstore-go/pkg/bundle"
	"google.golang.org/protobuf/encoding/protojson"
)

// BundleMediaType is the Sigstore bundle version produced by Bundle.
const BundleMediaType = "application/vnd.dev.sigstore.bundle.v0.3+json"

// Bundle wraps the proof's DSSE envelope in a Sigstore bundle with a public
// key hint, so it can be checked by Sigstore tooling given the public key.
func (p *SignedProof) Bundle() (*bundle.Bundle, error) {
	protoEnvelope, err := p.Envelope.ToProtobuf()
	if err != nil {
		return nil, fmt.Errorf("failed to convert envelope to protobuf: %w", err)
	}

	protoBundle := &protobundle.Bundle{
		MediaType: BundleMediaType,
		VerificationMaterial: &protobundle.VerificationMaterial{
			Content: &protobundle.VerificationMaterial_PublicKey{
				PublicKey: &protocommon.PublicKeyIdentifier{
					Hint: p.SignerIdentity,
				},
			},
		},
		Content: &protobundle.Bundle_DsseEnvelope{
			DsseEnvelope: protoEnvelope,
		},
	}

	bndl, err := bundle.NewBundle(protoBundle)
	if err != nil {
		return nil, fmt.Errorf("failed to create bundle: %w", err)
	}
	return bndl, nil
}

// ParseBundle decodes a Sigstore bundle JSON document produced by Bundle.
// Bundles carry no scheme, so public key verification is assumed.
func ParseBundle(data []byte) (*SignedProof, error) {
	protoBundle := &protobundle.Bundle{}
	opts := protojson.UnmarshalOptions{DiscardUnknown: true}
	if err := opts.Unmarshal(data, protoBundle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bundle: %w", err)
	}

	bndl, err := bundle.NewBundle(protoBundle)
	if err != nil {
		return nil, fmt.Errorf("failed to create bundle: %w", err)
	}

	env, err := dsse.ExtractFromBundle(bndl)
	if err != nil {
		return nil, err
	}

	p, err := fromEnvelope(env)
	if err != nil {
		return nil, err
	}
	p.Scheme = signing.SchemeKey
	if pk := protoBundle.GetVerificationMaterial().GetPublicKey(); pk != nil && pk.GetHint() != "" {
		p.SignerIdentity = pk.GetHint()
	}
	p.SealedAt = p.Verdict.EvaluatedAt
	return p, nil
}
