package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/cognicore/cinegenre/pkg/cinegenre/dataset"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/selection"
	"github.com/cognicore/cinegenre/pkg/cinegenre/store"
	"github.com/cognicore/cinegenre/pkg/cinegenre/train"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS corpus_rows (
	variant TEXT NOT NULL,
	position INTEGER NOT NULL,
	text TEXT NOT NULL,
	raw_label TEXT NOT NULL,
	grp TEXT NOT NULL,
	all_labels TEXT,
	source TEXT,
	PRIMARY KEY(variant, position)
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	variant TEXT NOT NULL,
	started_at TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	classes TEXT,
	removed TEXT,
	best TEXT
);

CREATE TABLE IF NOT EXISTS run_results (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	model TEXT NOT NULL,
	accuracy REAL NOT NULL,
	precision_score REAL NOT NULL,
	recall_score REAL NOT NULL,
	f1 REAL NOT NULL,
	roc_auc REAL NOT NULL,
	validation_f1 REAL NOT NULL,
	flexible_accuracy REAL,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS comparisons (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	base_run TEXT,
	augmented_run TEXT,
	champion TEXT
);

CREATE TABLE IF NOT EXISTS comparison_rows (
	comparison_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	algorithm TEXT NOT NULL,
	std_acc_before REAL NOT NULL,
	std_acc_after REAL NOT NULL,
	flex_acc_after REAL NOT NULL,
	flex_source TEXT NOT NULL,
	PRIMARY KEY(comparison_id, position),
	FOREIGN KEY(comparison_id) REFERENCES comparisons(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// ReplaceCorpus stores rows as the complete corpus of variant.
func (s *sqliteStore) ReplaceCorpus(ctx context.Context, variant string, rows []dataset.Row) error {
	if variant == "" {
		return fmt.Errorf("%w: empty variant", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM corpus_rows WHERE variant=?`, variant); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO corpus_rows (variant, position, text, raw_label, grp, all_labels, source)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range rows {
		labels, err := json.Marshal(row.AllLabels)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, variant, i, row.Text, row.RawLabel, row.Group, string(labels), row.Source); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Corpus returns the stored rows of variant in assembly order.
func (s *sqliteStore) Corpus(ctx context.Context, variant string) ([]dataset.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT text, raw_label, grp, all_labels, source
FROM corpus_rows
WHERE variant = ?
ORDER BY position`, variant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dataset.Row
	for rows.Next() {
		var (
			row    dataset.Row
			labels sql.NullString
			source sql.NullString
		)
		if err := rows.Scan(&row.Text, &row.RawLabel, &row.Group, &labels, &source); err != nil {
			return nil, err
		}
		if err := decodeStrings(labels, &row.AllLabels); err != nil {
			return nil, err
		}
		row.Source = source.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("corpus %q: %w", variant, internalerr.ErrNotFound)
	}
	return out, nil
}

// SaveRun inserts a run and its results.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run without id", internalerr.ErrInvalidInput)
	}

	classes, err := json.Marshal(r.Classes)
	if err != nil {
		return err
	}
	removed, err := json.Marshal(r.Removed)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, variant, started_at, row_count, classes, removed, best)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Variant, r.StartedAt.UTC().Format(time.RFC3339Nano), r.Rows, string(classes), string(removed), r.Best)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_results (run_id, position, model, accuracy, precision_score, recall_score, f1, roc_auc, validation_f1, flexible_accuracy)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, res := range r.Results {
		var flex sql.NullFloat64
		if res.FlexibleAccuracy != nil {
			flex = sql.NullFloat64{Float64: *res.FlexibleAccuracy, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, r.ID, i, res.Model, res.Accuracy, res.Precision, res.Recall,
			res.F1, res.ROCAUC, res.ValidationF1, flex); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, variant, started_at, row_count, classes, removed, best
FROM runs WHERE id = ?`, id)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Run{}, err
	}

	if r.Results, err = s.loadResults(ctx, r.ID); err != nil {
		return store.Run{}, err
	}
	return r, nil
}

// ListRuns returns runs newest first. A non-positive limit returns all.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, variant, started_at, row_count, classes, removed, best
FROM runs
ORDER BY id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range runs {
		if runs[i].Results, err = s.loadResults(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		r       store.Run
		started string
		classes sql.NullString
		removed sql.NullString
		best    sql.NullString
	)
	if err := sc.Scan(&r.ID, &r.Variant, &started, &r.Rows, &classes, &removed, &best); err != nil {
		return store.Run{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return store.Run{}, fmt.Errorf("run %s: started_at: %w", r.ID, err)
	}
	r.StartedAt = t
	r.Best = best.String

	if err := decodeStrings(classes, &r.Classes); err != nil {
		return store.Run{}, err
	}
	if err := decodeStrings(removed, &r.Removed); err != nil {
		return store.Run{}, err
	}
	return r, nil
}

func (s *sqliteStore) loadResults(ctx context.Context, runID string) ([]train.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT model, accuracy, precision_score, recall_score, f1, roc_auc, validation_f1, flexible_accuracy
FROM run_results
WHERE run_id = ?
ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []train.Result
	for rows.Next() {
		var (
			res  train.Result
			flex sql.NullFloat64
		)
		if err := rows.Scan(&res.Model, &res.Accuracy, &res.Precision, &res.Recall,
			&res.F1, &res.ROCAUC, &res.ValidationF1, &flex); err != nil {
			return nil, err
		}
		if flex.Valid {
			v := flex.Float64
			res.FlexibleAccuracy = &v
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// SaveComparison inserts a comparison and its rows.
func (s *sqliteStore) SaveComparison(ctx context.Context, c store.Comparison) error {
	if c.ID == "" {
		return fmt.Errorf("%w: comparison without id", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO comparisons (id, created_at, base_run, augmented_run, champion)
VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.CreatedAt.UTC().Format(time.RFC3339Nano), c.BaseRunID, c.AugmentedRunID, c.Champion)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO comparison_rows (comparison_id, position, algorithm, std_acc_before, std_acc_after, flex_acc_after, flex_source)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range c.Rows {
		if _, err := stmt.ExecContext(ctx, c.ID, i, row.Algorithm, row.StdAccBefore, row.StdAccAfter,
			row.FlexAccAfter, row.FlexSource); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LatestComparison returns the most recently saved comparison.
func (s *sqliteStore) LatestComparison(ctx context.Context) (store.Comparison, error) {
	var (
		c        store.Comparison
		created  string
		base     sql.NullString
		aug      sql.NullString
		champion sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, created_at, base_run, augmented_run, champion
FROM comparisons
ORDER BY id DESC
LIMIT 1`).Scan(&c.ID, &created, &base, &aug, &champion)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Comparison{}, fmt.Errorf("comparison: %w", internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Comparison{}, err
	}

	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return store.Comparison{}, fmt.Errorf("comparison %s: created_at: %w", c.ID, err)
	}
	c.BaseRunID, c.AugmentedRunID, c.Champion = base.String, aug.String, champion.String

	rows, err := s.db.QueryContext(ctx, `
SELECT algorithm, std_acc_before, std_acc_after, flex_acc_after, flex_source
FROM comparison_rows
WHERE comparison_id = ?
ORDER BY position`, c.ID)
	if err != nil {
		return store.Comparison{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var row selection.Row
		if err := rows.Scan(&row.Algorithm, &row.StdAccBefore, &row.StdAccAfter, &row.FlexAccAfter, &row.FlexSource); err != nil {
			return store.Comparison{}, err
		}
		c.Rows = append(c.Rows, row)
	}
	return c, rows.Err()
}

func decodeStrings(raw sql.NullString, dst *[]string) error {
	if !raw.Valid || raw.String == "" || raw.String == "null" {
		*dst = nil
		return nil
	}
	return json.Unmarshal([]byte(raw.String), dst)
}
