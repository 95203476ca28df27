// Package collect drives the collection pipeline: it expands the
// venue/year matrix, gathers paper metadata, enriches papers with
// citation counts, and produces citation-ranked results.
package collect

import (
	"context"
	"log"
	"sort"

	"github.com/ASSERT-KTH/most-cited-se-papers/internal/paper"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/venue"
)

// Target is one (venue, year) unit of work.
type Target struct {
	Venue venue.Venue `json:"venue"`
	Year  int         `json:"year"`
}

// MetadataSource lists the papers published in a venue during a year.
// Implemented by crossref.Fetcher.
type MetadataSource interface {
	Papers(ctx context.Context, v venue.Venue, year int) ([]paper.Paper, error)
}

// CitationSource resolves a paper's citation count. Implemented by
// s2.Fetcher.
type CitationSource interface {
	CitationCount(ctx context.Context, p paper.Paper) (paper.CitationCount, error)
}

// TargetResult is the ranking for one collection target.
type TargetResult struct {
	Target  Target        `json:"target"`
	Ranking []paper.Paper `json:"ranking"`
	Failed  bool          `json:"failed,omitempty"`
}

// Result is the outcome of one collection run.
type Result struct {
	Targets []TargetResult `json:"targets"`
	Ranking []paper.Paper  `json:"ranking"`
}

// Orchestrator runs the pipeline for a configured venue list and year
// range. It owns the in-memory merged paper mapping for the duration of
// one run; durability lives entirely in the cache behind the fetchers.
type Orchestrator struct {
	venues    []venue.Venue
	yearStart int
	yearEnd   int
	metadata  MetadataSource
	citations CitationSource
	logf      func(format string, args ...any)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogf sets the diagnostic logger.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(o *Orchestrator) {
		o.logf = logf
	}
}

// New creates an orchestrator for the given venues and inclusive year
// range.
func New(venues []venue.Venue, yearStart, yearEnd int, metadata MetadataSource, citations CitationSource, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		venues:    venues,
		yearStart: yearStart,
		yearEnd:   yearEnd,
		metadata:  metadata,
		citations: citations,
		logf:      log.Printf,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Targets expands the venue list and year range into the full target
// matrix, in venue-major order within each year to keep report
// numbering stable across runs.
func (o *Orchestrator) Targets() []Target {
	var targets []Target
	for year := o.yearStart; year <= o.yearEnd; year++ {
		for _, v := range o.venues {
			targets = append(targets, Target{Venue: v, Year: year})
		}
	}
	return targets
}

// Run executes the full pipeline. A failed metadata fetch contributes
// an empty target; a failed citation fetch leaves that paper's count
// unknown. Neither aborts the run: retries already happened inside the
// rate-limited client.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	targets := o.Targets()

	merged := make(map[string]paper.Paper)
	memberIDs := make([][]string, len(targets))
	failed := make([]bool, len(targets))

	for i, target := range targets {
		papers, err := o.metadata.Papers(ctx, target.Venue, target.Year)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logf("collect: %s %d: metadata fetch failed, contributing no papers: %v",
				target.Venue.Code, target.Year, err)
			failed[i] = true
			continue
		}

		ids := make([]string, 0, len(papers))
		for _, p := range papers {
			if existing, ok := merged[p.ID]; ok {
				merged[p.ID] = paper.Merge(existing, p)
			} else {
				merged[p.ID] = p
			}
			ids = append(ids, p.ID)
		}
		memberIDs[i] = ids
	}

	// Enrich in sorted ID order so the citation channel sees a
	// reproducible request sequence.
	for _, id := range sortedIDs(merged) {
		p := merged[id]
		count, err := o.citations.CitationCount(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logf("collect: %s: citation fetch failed, treating as unknown: %v", id, err)
			count = paper.Unknown()
		}
		p.Citations = count
		merged[id] = p
	}

	result := &Result{Targets: make([]TargetResult, len(targets))}
	for i, target := range targets {
		members := make([]paper.Paper, 0, len(memberIDs[i]))
		seen := make(map[string]bool, len(memberIDs[i]))
		for _, id := range memberIDs[i] {
			if seen[id] {
				continue
			}
			seen[id] = true
			members = append(members, merged[id])
		}
		result.Targets[i] = TargetResult{
			Target:  target,
			Ranking: paper.Rank(members),
			Failed:  failed[i],
		}
	}

	all := make([]paper.Paper, 0, len(merged))
	for _, id := range sortedIDs(merged) {
		all = append(all, merged[id])
	}
	result.Ranking = paper.Rank(all)

	return result, nil
}

func sortedIDs(papers map[string]paper.Paper) []string {
	ids := make([]string, 0, len(papers))
	for id := range papers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
