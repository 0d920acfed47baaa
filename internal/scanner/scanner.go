// Package scanner runs the audit pipeline: list candidates, load each one,
// evaluate it, and collect findings in a stable order.
package scanner

import (
	"context"
	"sort"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"go-extension-audit/internal/audit"
	"go-extension-audit/internal/browsers"
)

// Source lists and loads extension versions
type Source interface {
	Candidates(selected []string) ([]browsers.Candidate, error)
	Load(c browsers.Candidate) (*browsers.Extension, audit.SkipReason, error)
}

// Scanner evaluates every extension version a Source yields
type Scanner struct {
	source   Source
	browsers []string
	workers  int
	logger   hclog.Logger
}

// Result is the outcome of one run
type Result struct {
	// Findings are sorted by browser, profile, extension id and version
	Findings []audit.Finding
	Outcomes []audit.Outcome
}

// Skipped counts outcomes without a Finding
func (r Result) Skipped() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

// New creates a Scanner. workers < 1 is treated as 1.
func New(source Source, selected []string, workers int, logger hclog.Logger) *Scanner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Scanner{source: source, browsers: selected, workers: workers, logger: logger}
}

// Run scans every candidate. Per-extension problems become skipped outcomes;
// only listing failures and context cancellation are returned as errors.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	candidates, err := s.source.Candidates(s.browsers)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("found extension versions", "count", len(candidates), "workers", s.workers)

	outcomes := make([]audit.Outcome, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, c := range candidates {
		if gctx.Err() != nil {
			break
		}
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.evaluate(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.OK() {
			result.Findings = append(result.Findings, *o.Finding)
			continue
		}
		s.logger.Debug("skipped extension version", "dir", o.Dir, "reason", o.Skip, "error", o.Err)
	}
	sort.SliceStable(result.Findings, func(i, j int) bool {
		return result.Findings[i].Less(result.Findings[j])
	})
	return result, nil
}

func (s *Scanner) evaluate(c browsers.Candidate) audit.Outcome {
	ext, skip, err := s.source.Load(c)
	if err != nil || skip != audit.SkipNone {
		return audit.Skipped(c.Dir, skip, err)
	}
	f := audit.Evaluate(ext.Source, ext.Manifest, ext.Files)
	s.logger.Debug("evaluated extension", "browser", f.Browser, "profile", f.Profile,
		"id", f.ExtensionID, "version", f.Version, "flagged", len(f.FlaggedPermissions), "hits", len(f.Hits))
	return audit.Found(c.Dir, f)
}
