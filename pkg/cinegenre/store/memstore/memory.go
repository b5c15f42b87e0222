package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/cinegenre/pkg/cinegenre/dataset"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/selection"
	"github.com/cognicore/cinegenre/pkg/cinegenre/store"
	"github.com/cognicore/cinegenre/pkg/cinegenre/train"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu          sync.RWMutex
	corpora     map[string][]dataset.Row
	runs        map[string]store.Run
	comparisons []store.Comparison
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		corpora: make(map[string][]dataset.Row),
		runs:    make(map[string]store.Run),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// ReplaceCorpus stores rows as the complete corpus of variant.
func (s *Store) ReplaceCorpus(ctx context.Context, variant string, rows []dataset.Row) error {
	if variant == "" {
		return fmt.Errorf("%w: empty variant", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.corpora[variant] = copyRows(rows)
	return nil
}

// Corpus returns the stored rows of variant.
func (s *Store) Corpus(ctx context.Context, variant string) ([]dataset.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.corpora[variant]
	if len(rows) == 0 {
		return nil, fmt.Errorf("corpus %q: %w", variant, internalerr.ErrNotFound)
	}
	return copyRows(rows), nil
}

// SaveRun stores a run keyed by ID.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run without id", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[r.ID]; ok {
		return fmt.Errorf("%w: duplicate run %s", internalerr.ErrInvalidInput, r.ID)
	}
	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRun(r), nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]store.Run, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyRun(s.runs[id]))
	}
	return out, nil
}

// SaveComparison appends a comparison.
func (s *Store) SaveComparison(ctx context.Context, c store.Comparison) error {
	if c.ID == "" {
		return fmt.Errorf("%w: comparison without id", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c.Rows = append([]selection.Row(nil), c.Rows...)
	s.comparisons = append(s.comparisons, c)
	return nil
}

// LatestComparison returns the comparison with the greatest ID.
func (s *Store) LatestComparison(ctx context.Context) (store.Comparison, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.comparisons) == 0 {
		return store.Comparison{}, fmt.Errorf("comparison: %w", internalerr.ErrNotFound)
	}

	latest := s.comparisons[0]
	for _, c := range s.comparisons[1:] {
		if c.ID > latest.ID {
			latest = c
		}
	}
	latest.Rows = append([]selection.Row(nil), latest.Rows...)
	return latest, nil
}

func copyRows(rows []dataset.Row) []dataset.Row {
	out := make([]dataset.Row, len(rows))
	for i, row := range rows {
		row.AllLabels = append([]string(nil), row.AllLabels...)
		out[i] = row
	}
	return out
}

func copyRun(r store.Run) store.Run {
	r.Classes = append([]string(nil), r.Classes...)
	r.Removed = append([]string(nil), r.Removed...)
	results := make([]train.Result, len(r.Results))
	for i, res := range r.Results {
		if res.FlexibleAccuracy != nil {
			v := *res.FlexibleAccuracy
			res.FlexibleAccuracy = &v
		}
		results[i] = res
	}
	r.Results = results
	return r
}
