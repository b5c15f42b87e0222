package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/cinegenre/pkg/cinegenre/dataset"
	"github.com/cognicore/cinegenre/pkg/cinegenre/selection"
	"github.com/cognicore/cinegenre/pkg/cinegenre/train"
)

// Store persists assembled corpora and the audit trail of training runs
type Store interface {
	Close() error

	// Corpora
	ReplaceCorpus(ctx context.Context, variant string, rows []dataset.Row) error
	Corpus(ctx context.Context, variant string) ([]dataset.Row, error)

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Comparisons
	SaveComparison(ctx context.Context, c Comparison) error
	LatestComparison(ctx context.Context) (Comparison, error)
}

// Run records the evaluation of one dataset variant
type Run struct {
	ID        string
	Variant   string
	StartedAt time.Time
	Rows      int
	Classes   []string
	Removed   []string
	Best      string
	Results   []train.Result
}

// Comparison records the outcome of one champion selection
type Comparison struct {
	ID             string
	CreatedAt      time.Time
	BaseRunID      string
	AugmentedRunID string
	Champion       string
	Rows           []selection.Row
}

// NewRun converts an evaluated variant into a run record with a fresh ID.
func NewRun(run *train.Run, startedAt time.Time) Run {
	return Run{
		ID:        NewID(),
		Variant:   run.Variant,
		StartedAt: startedAt.UTC(),
		Rows:      run.Rows,
		Classes:   append([]string(nil), run.Classes...),
		Removed:   append([]string(nil), run.Removed...),
		Best:      run.Best,
		Results:   run.Ordered(),
	}
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a lexically sortable unique identifier.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Now(), idEntropy).String()
}
