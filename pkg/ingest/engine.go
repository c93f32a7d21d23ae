// Package ingest fans speech fetching out over all registered sources and
// upserts the union into the catalog store. One broken source never blocks
// the others.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/stumpworks/stumpcast/pkg/models"
	"github.com/stumpworks/stumpcast/pkg/sources"
	"github.com/stumpworks/stumpcast/pkg/store"
)

// DefaultPopulateThreshold is the catalog size above which PopulateArchive
// skips work.
const DefaultPopulateThreshold = 10

// defaultFetchConcurrency bounds the source fan-out. Ordering of arrival is
// not observable; results are keyed by source.
const defaultFetchConcurrency = 4

// SourceError records a per-source failure without failing the run.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Result summarizes a PopulateArchive run.
type Result struct {
	Existing int           `json:"existing"`
	Inserted int           `json:"inserted"`
	Total    int           `json:"total"`
	Errors   []SourceError `json:"errors,omitempty"`
}

// Engine drives ingestion over a source registry.
type Engine struct {
	registry  *sources.Registry
	store     *store.Store
	threshold int
	fetchLim  int
}

// NewEngine creates an ingestion engine with the default populate threshold.
func NewEngine(registry *sources.Registry, st *store.Store) *Engine {
	return &Engine{
		registry:  registry,
		store:     st,
		threshold: DefaultPopulateThreshold,
		fetchLim:  50,
	}
}

// SetThreshold overrides the populate-skip threshold (tests).
func (e *Engine) SetThreshold(n int) { e.threshold = n }

// PopulateArchive ingests from all sources unless the store already holds
// more than the threshold. Safe to run repeatedly: re-ingesting the same
// source set inserts nothing new.
func (e *Engine) PopulateArchive(ctx context.Context) (Result, error) {
	existing, err := e.store.CountSpeeches(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("count speeches: %w", err)
	}
	if existing > e.threshold {
		slog.Info("Archive already populated, skipping ingestion", "existing", existing)
		return Result{Existing: existing, Total: existing}, nil
	}

	verified := e.VerifyAll(ctx)
	for name, res := range verified {
		if !res.Available {
			slog.Warn("Source unavailable", "source", name, "error", res.Error)
		}
	}

	records, srcErrors := e.FetchAll(ctx)

	inserted, err := e.store.UpsertSpeeches(ctx, records)
	if err != nil {
		return Result{}, fmt.Errorf("upsert speeches: %w", err)
	}

	total, err := e.store.CountSpeeches(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("count speeches: %w", err)
	}

	slog.Info("Archive ingestion complete",
		"existing", existing, "inserted", inserted, "total", total,
		"source_errors", len(srcErrors))

	return Result{
		Existing: existing,
		Inserted: inserted,
		Total:    total,
		Errors:   srcErrors,
	}, nil
}

// VerifyAll probes every source concurrently.
func (e *Engine) VerifyAll(ctx context.Context) map[string]sources.VerifyResult {
	srcs := e.registry.All()
	results := make(map[string]sources.VerifyResult, len(srcs))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultFetchConcurrency)
	for _, src := range srcs {
		g.Go(func() error {
			res := src.Verify(ctx)
			mu.Lock()
			results[src.Name()] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// FetchAll collects normalized records from every source with bounded
// concurrency. Failures are isolated per source and reported alongside the
// successful union.
func (e *Engine) FetchAll(ctx context.Context) ([]models.Speech, []SourceError) {
	srcs := e.registry.All()

	type fetchOutcome struct {
		name    string
		records []models.Speech
		err     error
	}
	outcomes := make([]fetchOutcome, len(srcs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultFetchConcurrency)
	for i, src := range srcs {
		g.Go(func() error {
			records, err := src.Fetch(ctx, sources.FetchOptions{Limit: e.fetchLim})
			outcomes[i] = fetchOutcome{name: src.Name(), records: records, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var all []models.Speech
	var errs []SourceError
	for _, out := range outcomes {
		if out.err != nil {
			errs = append(errs, SourceError{Source: out.name, Error: out.err.Error()})
			continue
		}
		all = append(all, out.records...)
	}
	return all, errs
}
