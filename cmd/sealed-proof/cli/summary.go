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

package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/pipeline"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verify"
)

func paint(enabled bool, attr color.Attribute, s string) string {
	c := color.New(attr)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

func printOutcome(w io.Writer, out *pipeline.Outcome, colored bool) {
	if out == nil {
		return
	}
	name := out.Request.Candidate

	if v := out.Verdict; v != nil {
		status := paint(colored, color.FgGreen, "PASSED")
		if !v.Passed {
			status = paint(colored, color.FgRed, "FAILED")
		}
		fmt.Fprintf(w, "%s %s score=%.4f threshold=%.4f label=%s discrepancies=%d\n",
			status, name, v.Score, v.Policy.Threshold, v.Label, len(v.Discrepancies))
		names := make([]string, 0, len(v.Metrics))
		for k := range v.Metrics {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Fprintf(w, "    %s=%.4f\n", k, v.Metrics[k])
		}
	}

	if out.Succeeded() {
		fmt.Fprintf(w, "%s %s -> %s\n", paint(colored, color.FgCyan, "SEALED"), name, out.Path)
		return
	}
	fmt.Fprintf(w, "%s %s at stage %s: %v\n", paint(colored, color.FgRed, "ERROR"), name, out.Stage, out.Err)
}

func printBatchTotals(w io.Writer, res pipeline.BatchResult, colored bool) {
	ok := res.Succeeded()
	attr := color.FgGreen
	if ok < len(res.Outcomes) {
		attr = color.FgYellow
	}
	fmt.Fprintln(w, paint(colored, attr, fmt.Sprintf("%d of %d proofs sealed", ok, len(res.Outcomes))))
}

func printVerified(w io.Writer, res verify.Result, colored bool) {
	fmt.Fprintf(w, "%s %s\n", paint(colored, color.FgGreen, "VERIFIED"), res.Message)
	if p := res.Proof; p != nil {
		v := p.Verdict
		fmt.Fprintf(w, "    proof=%s scheme=%s signer=%s\n", p.ID, p.Scheme, p.SignerIdentity)
		fmt.Fprintf(w, "    score=%.4f passed=%t label=%s sealed=%s\n",
			v.Score, v.Passed, v.Label, p.SealedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
}
