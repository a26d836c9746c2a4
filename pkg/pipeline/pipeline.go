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

// Package pipeline runs one evaluation from fetch to a persisted proof.
//
// Each stage consumes only the previous stage's output. Any error moves
// the run to Failed(stage, reason); nothing partial is ever signed or
// written.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/artifact"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/diff"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/history"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/logging"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/normalize"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/proof"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/quality"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/sealed"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/signing"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/tracing"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verdict"
	"github.com/google/uuid"
)

// Options wires a Pipeline. Fetcher, Signer and Output are required.
type Options struct {
	Fetcher  artifact.Fetcher
	Registry *normalize.Registry
	Diff     diff.Options
	Policy   verdict.Policy
	Signer   signing.Signer
	Output   *sealed.Dir

	// History enables the uniqueness metric. Optional.
	History *history.Store

	// Clock stamps verdicts and proofs. Defaults to the system clock.
	Clock verdict.Clock

	Logger logging.Logger
}

// Pipeline evaluates requests. It holds no per-run state and is safe for
// concurrent use when its collaborators are.
type Pipeline struct {
	fetcher  artifact.Fetcher
	registry *normalize.Registry
	diffOpts diff.Options
	policy   verdict.Policy
	signer   signing.Signer
	output   *sealed.Dir
	history  *history.Store
	clock    verdict.Clock
	logger   logging.Logger
	closers  []io.Closer
}

// New validates opts and returns a pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Fetcher == nil {
		return nil, faults.Config("pipeline requires a fetcher", nil)
	}
	if opts.Signer == nil {
		return nil, faults.Config("pipeline requires a signer", nil)
	}
	if opts.Output == nil {
		return nil, faults.Config("pipeline requires an output directory", nil)
	}
	if err := sealed.CheckFormat(opts.Output.Format(), opts.Signer.Scheme()); err != nil {
		return nil, err
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		fetcher:  opts.Fetcher,
		registry: opts.Registry,
		diffOpts: opts.Diff,
		policy:   opts.Policy.Resolved(),
		signer:   opts.Signer,
		output:   opts.Output,
		history:  opts.History,
		clock:    opts.Clock,
		logger:   logging.EnsureLogger(opts.Logger),
	}
	if p.registry == nil {
		p.registry = normalize.DefaultRegistry()
	}
	if p.clock == nil {
		p.clock = verdict.SystemClock
	}
	return p, nil
}

// Request names the two artifacts of one evaluation.
type Request struct {
	// ID correlates log lines; a UUID is generated when empty.
	ID string

	// Reference is the ground truth locator.
	Reference string

	// Candidate is the claimed artifact locator.
	Candidate string
}

// Outcome describes a finished run.
type Outcome struct {
	Request Request

	// State is Persisted or Failed.
	State State

	// Transitions lists every state the run passed through, in order.
	Transitions []State

	// Stage and Err describe a failure.
	Stage string
	Err   error

	// Verdict is set once the run reached Evaluated.
	Verdict *verdict.Verdict

	// Proof is set once the run reached Signed.
	Proof *proof.SignedProof

	// Path is the persisted proof file.
	Path string

	Duration time.Duration
}

// Succeeded reports whether the proof was persisted.
func (o *Outcome) Succeeded() bool {
	return o.State == Persisted
}

// run carries one request's intermediate values between stages.
type run struct {
	p      *Pipeline
	req    Request
	logger logging.Logger

	refArtifact, candArtifact *artifact.Artifact
	ref, cand                 *normalize.Document
	discrepancies             []diff.Discrepancy
	verdict                   verdict.Verdict
	evaluated                 bool
	proof                     *proof.SignedProof
	path                      string
}

// Run drives req through every stage. The returned error, when non-nil,
// is a *faults.Error carrying the failed stage; the outcome is always
// returned.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	start := time.Now()
	r := &run{
		p:      p,
		req:    req,
		logger: p.logger.WithField("request", req.ID),
	}
	out := &Outcome{Request: req, State: Idle, Transitions: []State{Idle}}

	for !out.State.Terminal() {
		stage := stageOf[out.State]
		attrs := map[string]interface{}{
			"request":   req.ID,
			"reference": req.Reference,
			"candidate": req.Candidate,
		}
		err := tracing.Run(ctx, "pipeline."+stage, attrs, func(ctx context.Context) error {
			return r.step(ctx, stage)
		})
		if err != nil {
			fe := staged(stage, err)
			out.State = Failed
			out.Transitions = append(out.Transitions, Failed)
			out.Stage = stage
			out.Err = fe
			r.fill(out)
			out.Duration = time.Since(start)
			r.logger.WithField("stage", stage).Error("run failed: %v", fe)
			return out, fe
		}
		out.State = next[out.State]
		out.Transitions = append(out.Transitions, out.State)
		r.logger.WithField("stage", stage).Debug("entered %s", out.State)
	}

	r.fill(out)
	out.Duration = time.Since(start)
	r.logger.Info("sealed proof %s persisted to %s (score %.4f, passed %t)",
		r.proof.ID, r.path, r.verdict.Score, r.verdict.Passed)
	return out, nil
}

// fill copies whatever the run produced into out. A rejected verdict is
// reported even though the run failed.
func (r *run) fill(out *Outcome) {
	if r.evaluated {
		v := r.verdict
		out.Verdict = &v
	}
	out.Proof = r.proof
	out.Path = r.path
}

func (r *run) step(ctx context.Context, stage string) error {
	switch stage {
	case StageFetch:
		return r.fetch(ctx)
	case StageNormalize:
		return r.normalize()
	case StageDiff:
		r.discrepancies = diff.Compute(r.ref.Root, r.cand.Root, r.p.diffOpts)
		r.logger.WithField("stage", stage).Debug("%d discrepancies", len(r.discrepancies))
		return nil
	case StageEvaluate:
		return r.evaluate(ctx)
	case StageSign:
		return r.sign()
	case StagePersist:
		return r.persist(ctx)
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
}

func (r *run) fetch(ctx context.Context) error {
	log := r.logger.WithField("stage", StageFetch)
	if err := ctx.Err(); err != nil {
		return faults.Fetch(r.req.Reference, "fetch cancelled", err)
	}

	ref, err := r.p.fetcher.Fetch(ctx, r.req.Reference)
	if err != nil {
		return err
	}
	cand, err := r.p.fetcher.Fetch(ctx, r.req.Candidate)
	if err != nil {
		return err
	}
	r.refArtifact, r.candArtifact = ref, cand
	log.Debug("fetched reference (%d bytes, %s) and candidate (%d bytes, %s)",
		ref.Size(), ref.ContentType(), cand.Size(), cand.ContentType())
	return nil
}

func (r *run) normalize() error {
	ref, err := r.p.registry.Normalize(r.refArtifact)
	if err != nil {
		return err
	}
	cand, err := r.p.registry.Normalize(r.candArtifact)
	if err != nil {
		return err
	}
	r.ref, r.cand = ref, cand
	r.logger.WithField("stage", StageNormalize).Debug("normalized reference as %s and candidate as %s", ref.Format, cand.Format)
	return nil
}

// evaluate scores the discrepancies and records informative metrics.
// Metric failures are logged and never fail the run.
func (r *run) evaluate(ctx context.Context) error {
	log := r.logger.WithField("stage", StageEvaluate)

	v := verdict.Evaluate(r.discrepancies, r.p.policy, r.p.clock)

	metrics := quality.Assess(r.cand.Root).Metrics()
	if r.p.history != nil {
		res, err := r.p.history.Uniqueness(ctx, r.cand.Root)
		switch {
		case err != nil:
			log.Warn("uniqueness unavailable: %v", err)
		case res.Known():
			if metrics == nil {
				metrics = map[string]float64{}
			}
			metrics[quality.MetricUniqueness] = res.Score()
		}
	}
	if len(metrics) > 0 {
		v = v.WithMetrics(metrics)
	}
	r.verdict = v
	r.evaluated = true

	log.Info("score %.4f (%s), passed %t, %d discrepancies", v.Score, v.Label, v.Passed, len(v.Discrepancies))
	if v.Rejected() {
		return faults.New(faults.KindRejected,
			fmt.Sprintf("verdict rejected: score %.4f is below threshold %.4f", v.Score, v.Policy.Threshold), nil)
	}
	return nil
}

func (r *run) sign() error {
	p, err := proof.Seal(proof.NewStatement(r.ref, r.cand, r.verdict), r.p.signer, r.p.clock)
	if err != nil {
		return err
	}
	r.proof = p
	r.logger.WithField("stage", StageSign).Debug("sealed proof %s with %s signer %s", p.ID, p.Scheme, p.SignerIdentity)
	return nil
}

func (r *run) persist(ctx context.Context) error {
	path, err := r.p.output.Write(ctx, r.proof)
	if err != nil {
		return err
	}
	r.path = path

	if r.p.history != nil {
		added, err := r.p.history.Record(ctx, r.cand.Source, r.proof.ID, r.cand.Root)
		if err != nil {
			r.logger.WithField("stage", StagePersist).Warn("failed to record candidate history: %v", err)
		} else {
			r.logger.WithField("stage", StagePersist).Debug("recorded %d new history entries", added)
		}
	}
	return nil
}

// staged attributes err to stage. Errors outside the taxonomy take the
// kind of the stage that produced them.
func staged(stage string, err error) *faults.Error {
	if fe, ok := faults.As(err); ok {
		return fe.WithStage(stage)
	}
	kind := faults.KindUnknown
	switch stage {
	case StageFetch:
		kind = faults.KindFetch
	case StageNormalize:
		kind = faults.KindParse
	case StageSign:
		kind = faults.KindSigning
	case StagePersist:
		kind = faults.KindWrite
	}
	return faults.New(kind, err.Error(), err).WithStage(stage)
}
