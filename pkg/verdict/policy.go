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

package verdict

import (
	"fmt"
	"math"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/diff"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
)

// Defaults applied by DefaultPolicy and to unset policy fields.
const (
	DefaultWeight              = 1.0
	DefaultNormalizationFactor = 10.0
	DefaultThreshold           = 0.8
)

// RejectAction decides what happens to a verdict that did not pass.
type RejectAction string

const (
	// RejectPersist signs and persists failing verdicts like passing ones.
	RejectPersist RejectAction = "persist"

	// RejectSuppress stops the run before signing; nothing is written.
	RejectSuppress RejectAction = "suppress"
)

// Policy parameterizes scoring.
type Policy struct {
	// Weights is the cost of one discrepancy of each kind. Missing kinds
	// cost DefaultWeight.
	Weights map[diff.Kind]float64 `json:"weights" yaml:"weights" toml:"weights"`

	// NormalizationFactor is the total weight that drives the score to 0.
	NormalizationFactor float64 `json:"normalizationFactor" yaml:"normalization_factor" toml:"normalization_factor"`

	// Threshold is the minimum passing score, in [0, 1].
	Threshold float64 `json:"threshold" yaml:"threshold" toml:"threshold"`

	// OnReject is persist or suppress.
	OnReject RejectAction `json:"onReject" yaml:"on_reject" toml:"on_reject"`
}

// DefaultPolicy returns unit weights, a factor of 10 and a 0.8 threshold.
func DefaultPolicy() Policy {
	return Policy{
		Weights: map[diff.Kind]float64{
			diff.Added:   DefaultWeight,
			diff.Removed: DefaultWeight,
			diff.Changed: DefaultWeight,
		},
		NormalizationFactor: DefaultNormalizationFactor,
		Threshold:           DefaultThreshold,
		OnReject:            RejectPersist,
	}
}

// Weight returns the configured weight for kind.
func (p Policy) Weight(kind diff.Kind) float64 {
	if w, ok := p.Weights[kind]; ok {
		return w
	}
	return DefaultWeight
}

// Resolved returns a copy with every kind weighted explicitly and an
// unset reject action filled in, so the recorded policy is unambiguous.
func (p Policy) Resolved() Policy {
	out := p
	out.Weights = make(map[diff.Kind]float64, len(diff.Kinds))
	for _, k := range diff.Kinds {
		out.Weights[k] = p.Weight(k)
	}
	if out.OnReject == "" {
		out.OnReject = RejectPersist
	}
	return out
}

// Validate checks weights are finite and non-negative, the factor is
// positive and the threshold is in [0, 1].
func (p Policy) Validate() error {
	for k, w := range p.Weights {
		switch k {
		case diff.Added, diff.Removed, diff.Changed:
		default:
			return faults.Config(fmt.Sprintf("unknown discrepancy kind %q in weights", k), nil)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return faults.Config(fmt.Sprintf("weight for %s must be a finite value >= 0, got %v", k, w), nil)
		}
	}
	if !(p.NormalizationFactor > 0) || math.IsInf(p.NormalizationFactor, 0) {
		return faults.Config(fmt.Sprintf("normalization factor must be > 0, got %v", p.NormalizationFactor), nil)
	}
	if !(p.Threshold >= 0 && p.Threshold <= 1) {
		return faults.Config(fmt.Sprintf("threshold must be in [0, 1], got %v", p.Threshold), nil)
	}
	switch p.OnReject {
	case "", RejectPersist, RejectSuppress:
	default:
		return faults.Config(fmt.Sprintf("on_reject must be %q or %q, got %q", RejectPersist, RejectSuppress, p.OnReject), nil)
	}
	return nil
}
