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

import (
	"context"
	"runtime"
	"sync"
)

// BatchResult holds the outcomes of a batch in request order.
type BatchResult struct {
	Outcomes []*Outcome
}

// Succeeded counts persisted proofs.
func (b BatchResult) Succeeded() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// Failed returns the outcomes that did not persist a proof.
func (b BatchResult) Failed() []*Outcome {
	var failed []*Outcome
	for _, o := range b.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// RunBatch runs reqs on a worker pool limited to workers goroutines
// (NumCPU when workers <= 0). Runs are independent: one failure never
// stops the others. Cancelling ctx fails the runs that have not fetched
// yet.
func (p *Pipeline) RunBatch(ctx context.Context, reqs []Request, workers int) BatchResult {
	outcomes := make([]*Outcome, len(reqs))
	if len(reqs) == 0 {
		return BatchResult{Outcomes: outcomes}
	}

	workerCount := workers
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if workerCount > len(reqs) {
		workerCount = len(reqs)
	}

	type job struct {
		index int
		req   Request
	}

	jobs := make(chan job)

	var wg sync.WaitGroup
	wg.Add(workerCount)

	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				// The error is already carried by the outcome.
				out, _ := p.Run(ctx, j.req)
				outcomes[j.index] = out
			}
		}()
	}

	for i, req := range reqs {
		jobs <- job{index: i, req: req}
	}
	close(jobs)
	wg.Wait()

	p.logger.Info("batch finished: %d of %d proofs persisted", BatchResult{Outcomes: outcomes}.Succeeded(), len(reqs))
	return BatchResult{Outcomes: outcomes}
}
