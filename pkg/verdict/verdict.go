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

// Package verdict scores a set of discrepancies against a policy.
//
// The score is 1 minus the weighted discrepancy total divided by the
// policy's normalization factor, clamped to [0, 1]. Evaluation is a pure
// function of its inputs except for the recorded timestamp, which comes
// from an injected clock.
package verdict

import (
	"time"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/diff"
)

// Label is a coarse quality band for a score.
type Label string

const (
	LabelHigh     Label = "High"
	LabelModerate Label = "Moderate"
	LabelLow      Label = "Low"
)

// LabelFor bands a score: High at 0.8 and above, Moderate at 0.2 and
// above, Low otherwise.
func LabelFor(score float64) Label {
	switch {
	case score >= 0.8:
		return LabelHigh
	case score >= 0.2:
		return LabelModerate
	default:
		return LabelLow
	}
}

// Clock supplies the evaluation time.
type Clock func() time.Time

// SystemClock returns the current time.
func SystemClock() time.Time { return time.Now() }

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// Verdict is the outcome of an evaluation.
type Verdict struct {
	Score         float64            `json:"score"`
	Passed        bool               `json:"passed"`
	Label         Label              `json:"label"`
	Discrepancies []diff.Discrepancy `json:"discrepancies"`
	Counts        map[diff.Kind]int  `json:"counts"`
	Policy        Policy             `json:"policy"`

	// Metrics are informative side measurements, e.g. uniqueness. They
	// never influence Score or Passed.
	Metrics map[string]float64 `json:"metrics,omitempty"`

	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// Evaluate scores discrepancies under policy. A nil clock uses the system
// clock. The discrepancy slice is copied.
func Evaluate(discrepancies []diff.Discrepancy, policy Policy, clock Clock) Verdict {
	if clock == nil {
		clock = SystemClock
	}
	policy = policy.Resolved()
	score := Score(discrepancies, policy)

	discs := make([]diff.Discrepancy, len(discrepancies))
	copy(discs, discrepancies)

	return Verdict{
		Score:         score,
		Passed:        score >= policy.Threshold,
		Label:         LabelFor(score),
		Discrepancies: discs,
		Counts:        diff.Count(discs),
		Policy:        policy,
		EvaluatedAt:   clock().UTC(),
	}
}

// Score computes clamp01(1 - sum(weight) / factor). A non-positive factor
// falls back to DefaultNormalizationFactor.
func Score(discrepancies []diff.Discrepancy, policy Policy) float64 {
	factor := policy.NormalizationFactor
	if !(factor > 0) {
		factor = DefaultNormalizationFactor
	}
	total := 0.0
	for _, d := range discrepancies {
		total += policy.Weight(d.Kind)
	}
	return clamp01(1 - total/factor)
}

func clamp01(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// WithMetrics returns a copy of v with metrics merged in. Score and
// Passed are unchanged.
func (v Verdict) WithMetrics(metrics map[string]float64) Verdict {
	out := v
	out.Metrics = make(map[string]float64, len(v.Metrics)+len(metrics))
	for k, m := range v.Metrics {
		out.Metrics[k] = m
	}
	for k, m := range metrics {
		out.Metrics[k] = m
	}
	return out
}

// Rejected reports whether the verdict failed and the policy suppresses
// failing verdicts.
func (v Verdict) Rejected() bool {
	return !v.Passed && v.Policy.OnReject == RejectSuppress
}
