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
	"fmt"
	"math"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/diff"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verdict"
)

const scoreTolerance = 1e-9

// Verdict re-evaluates v from its own discrepancies and policy and
// reports any field that disagrees with the recomputation.
func Verdict(v verdict.Verdict) error {
	if err := v.Policy.Validate(); err != nil {
		return faults.Verify("", "recorded policy is invalid", err)
	}

	score := verdict.Score(v.Discrepancies, v.Policy)
	if math.Abs(score-v.Score) > scoreTolerance {
		return faults.Verify("", fmt.Sprintf("recorded score %v does not match recomputed score %v", v.Score, score), nil)
	}
	if passed := v.Score >= v.Policy.Threshold; passed != v.Passed {
		return faults.Verify("", fmt.Sprintf("recorded passed=%t contradicts score %v and threshold %v", v.Passed, v.Score, v.Policy.Threshold), nil)
	}
	if label := verdict.LabelFor(v.Score); label != v.Label {
		return faults.Verify("", fmt.Sprintf("recorded label %q does not match %q", v.Label, label), nil)
	}

	counts := diff.Count(v.Discrepancies)
	for _, k := range diff.Kinds {
		if counts[k] != v.Counts[k] {
			return faults.Verify("", fmt.Sprintf("recorded %s count %d does not match %d discrepancies", k, v.Counts[k], counts[k]), nil)
		}
	}
	return nil
}
