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

package pipeline

// State is a position in the run state machine:
//
//	Idle → Fetched → Normalized → Diffed → Evaluated → Signed → Persisted
//
// Any stage may instead move the run to Failed.
type State int

const (
	Idle State = iota
	Fetched
	Normalized
	Diffed
	Evaluated
	Signed
	Persisted
	Failed
)

// Stage names, as recorded on failures, log fields and spans.
const (
	StageFetch     = "fetch"
	StageNormalize = "normalize"
	StageDiff      = "diff"
	StageEvaluate  = "evaluate"
	StageSign      = "sign"
	StagePersist   = "persist"
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Fetched:
		return "Fetched"
	case Normalized:
		return "Normalized"
	case Diffed:
		return "Diffed"
	case Evaluated:
		return "Evaluated"
	case Signed:
		return "Signed"
	case Persisted:
		return "Persisted"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Persisted || s == Failed
}

// next maps each working state to the state its stage produces.
var next = map[State]State{
	Idle:       Fetched,
	Fetched:    Normalized,
	Normalized: Diffed,
	Diffed:     Evaluated,
	Evaluated:  Signed,
	Signed:     Persisted,
}

// stageOf names the stage that leaves s.
var stageOf = map[State]string{
	Idle:       StageFetch,
	Fetched:    StageNormalize,
	Normalized: StageDiff,
	Diffed:     StageEvaluate,
	Evaluated:  StageSign,
	Signed:     StagePersist,
}
