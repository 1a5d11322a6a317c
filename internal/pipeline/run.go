// Package pipeline wires the reflow stages together and runs them, either
// synchronously or behind a worker pool with job tracking.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzidan/docreflow/internal/classify"
	"github.com/tamzidan/docreflow/internal/detect"
	"github.com/tamzidan/docreflow/internal/document"
	"github.com/tamzidan/docreflow/internal/docxfile"
	"github.com/tamzidan/docreflow/internal/groups"
	"github.com/tamzidan/docreflow/internal/layout"
	"github.com/tamzidan/docreflow/internal/reflow"
	"github.com/tamzidan/docreflow/internal/render"
	"github.com/tamzidan/docreflow/internal/report"
	"github.com/tamzidan/docreflow/internal/rules"
)

// RunOptions tune a single run.
type RunOptions struct {
	// SkipRender disables the render round trip; detection and repair are
	// skipped and the report says so.
	SkipRender bool
	// Spacing enables the blank-line normalization passes after repair.
	Spacing bool
}

// Result is the outcome of a run: the (possibly rewritten) container bytes
// and the report.
type Result struct {
	Output []byte
	Report *report.Report
}

// Runner executes the full reflow pipeline over one document.
type Runner struct {
	rules      rules.Rules
	classifier *classify.Classifier
	patterns   []groups.Pattern
	estimator  *layout.Estimator
	detector   *detect.Detector
	engine     *reflow.Engine
	normalizer *reflow.Normalizer
	renderer   render.Renderer
	extractor  render.Extractor
	log        *slog.Logger
}

// NewRunner assembles the stages for a validated rule catalog. renderer may
// be nil when every run will skip rendering.
func NewRunner(r rules.Rules, renderer render.Renderer, extractor render.Extractor, log *slog.Logger) *Runner {
	classifier := classify.New(r)
	estimator := layout.NewEstimator(r.Geometry)
	return &Runner{
		rules:      r,
		classifier: classifier,
		patterns:   groups.FromRules(r),
		estimator:  estimator,
		detector:   detect.New(r),
		engine:     reflow.NewEngine(estimator, r),
		normalizer: reflow.NewNormalizer(classifier, r),
		renderer:   renderer,
		extractor:  extractor,
		log:        log,
	}
}

// Run executes the pipeline. onPhase, when non-nil, is called as each stage
// begins. A parse failure is fatal; a render or extraction failure only
// cancels detection and repair, and the report records why.
func (r *Runner) Run(ctx context.Context, input []byte, opts RunOptions, onPhase func(string)) (*Result, error) {
	phase := func(name string) {
		if onPhase != nil {
			onPhase(name)
		}
	}

	phase("parsing")
	file, err := docxfile.OpenBytes(input)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	doc := file.Document()

	phase("classifying")
	r.classifier.Apply(doc.Units())
	gs := groups.Extract(doc.Units(), r.patterns)
	r.log.Info("classified document", "units", doc.Len(), "groups", len(gs))

	rep := &report.Report{
		GeneratedAt: time.Now().UTC(),
		Units:       doc.Len(),
		TagCounts:   tagCounts(doc),
	}

	pages, renderErr := r.renderGroundTruth(ctx, input, opts, phase)
	if renderErr != nil || pages == nil {
		rep.RenderSkipped = true
		if renderErr != nil {
			rep.RenderError = renderErr.Error()
			r.log.Warn("render unavailable, skipping detection", "error", renderErr)
		}
		rep.Status = "detect_skipped"
		fillGroupResults(rep, gs, nil)
		out, err := file.Bytes()
		if err != nil {
			return nil, err
		}
		return &Result{Output: out, Report: rep}, nil
	}

	phase("detecting")
	r.detector.Inspect(gs, pages)

	phase("reflowing")
	attempts := make(map[*groups.Group]int, len(gs))
	resolved := make(map[*groups.Group]bool, len(gs))
	unresolvedCount := 0
	for _, g := range gs {
		if !g.Split {
			resolved[g] = true
			continue
		}
		rep.SplitCount++
		n, err := r.engine.Fix(doc, g)
		attempts[g] = n
		rep.Breaks += n
		if err != nil {
			resolved[g] = false
			unresolvedCount++
			r.log.Warn("group did not converge", "pattern", g.Pattern, "attempts", n, "error", err)
			continue
		}
		resolved[g] = true
		r.log.Info("group repaired", "pattern", g.Pattern, "attempts", n)
	}

	if opts.Spacing {
		r.normalizer.Apply(doc)
	}

	out, err := file.Bytes()
	if err != nil {
		return nil, err
	}

	rep.Status = "completed"
	if unresolvedCount > 0 {
		rep.Status = "completed_with_unresolved"
	}
	fillGroupResults(rep, gs, func(g *groups.Group) (int, bool) {
		return attempts[g], resolved[g]
	})
	return &Result{Output: out, Report: rep}, nil
}

// renderGroundTruth converts the original document to its rendered artifact
// and extracts per-page text, retrying transient renderer failures. A nil
// page slice with nil error means rendering was skipped by request.
func (r *Runner) renderGroundTruth(ctx context.Context, input []byte, opts RunOptions, phase func(string)) ([]render.RenderedPage, error) {
	if opts.SkipRender {
		return nil, nil
	}
	if r.renderer == nil || r.extractor == nil {
		return nil, fmt.Errorf("no renderer configured")
	}

	phase("rendering")
	var artifact []byte
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		artifact, lastErr = r.renderer.Convert(ctx, input)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		r.log.Warn("retryable render error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("render document: %w", lastErr)
	}

	pages, err := r.extractor.ExtractPages(artifact)
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}
	return pages, nil
}

func tagCounts(doc *document.Document) map[string]int {
	counts := make(map[string]int)
	for _, u := range doc.Units() {
		counts[string(u.Tag)]++
	}
	return counts
}

// fillGroupResults appends one result per group. outcome is nil when the
// repair stage never ran; then groups keep their detected pages but carry no
// attempt counts and split groups stay unresolved.
func fillGroupResults(rep *report.Report, gs []*groups.Group, outcome func(*groups.Group) (attempts int, resolved bool)) {
	for _, g := range gs {
		gr := report.GroupResult{
			Pattern: g.Pattern,
			Units:   len(g.Members),
			Pages:   g.Pages,
			Split:   g.Split,
		}
		if outcome != nil {
			gr.Attempts, gr.Resolved = outcome(g)
		} else {
			gr.Resolved = !g.Split
		}
		rep.Groups = append(rep.Groups, gr)
	}
}
