// Package source reads raw film records from CSV and JSONL files.
package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/cognicore/cinegenre/pkg/cinegenre/dataset"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
)

// Header names accepted for the plot and genre columns, matched after
// trimming and lowercasing.
var (
	PlotColumns  = []string{"plot", "ozet", "text", "overview", "summary"}
	GenreColumns = []string{"genre", "genres", "tur", "label", "all_genres"}
)

// Load reads the file at path, choosing the format by extension. A missing
// file is reported as ErrSourceMissing.
func Load(ctx context.Context, path string) (dataset.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dataset.Source{}, fmt.Errorf("%w: %s", internalerr.ErrSourceMissing, path)
		}
		return dataset.Source{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	src := dataset.Source{Name: Name(path)}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		src.Records, err = ReadJSONL(ctx, f)
	default:
		src.Records, err = ReadCSV(ctx, f)
	}
	if err != nil {
		return dataset.Source{}, fmt.Errorf("%s: %w", path, err)
	}

	zerolog.Ctx(ctx).Info().Str("source", src.Name).Int("records", len(src.Records)).Msg("source loaded")
	return src, nil
}

// LoadOptional reads every path, skipping missing files with a warning.
func LoadOptional(ctx context.Context, paths []string) ([]dataset.Source, error) {
	var out []dataset.Source
	for _, p := range paths {
		src, err := Load(ctx, p)
		if errors.Is(err, internalerr.ErrSourceMissing) {
			zerolog.Ctx(ctx).Warn().Str("path", p).Msg("supplementary source missing, skipping")
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

// Name derives a source name from its file name.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadCSV reads records from a CSV stream with a header row. Rows with a
// wrong field count or an empty plot or genre are skipped.
func ReadCSV(ctx context.Context, r io.Reader) ([]dataset.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", internalerr.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", internalerr.ErrInvalidInput, err)
	}

	plotCol, genreCol := column(header, PlotColumns), column(header, GenreColumns)
	if plotCol < 0 || genreCol < 0 {
		return nil, fmt.Errorf("%w: missing plot or genre column in %v", internalerr.ErrInvalidInput, header)
	}

	var (
		records []dataset.Record
		skipped int
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(row) != len(header) {
			skipped++
			continue
		}
		rec := dataset.Record{
			Plot:   strings.TrimSpace(row[plotCol]),
			Genres: strings.TrimSpace(row[genreCol]),
		}
		if rec.Plot == "" || rec.Genres == "" {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		zerolog.Ctx(ctx).Debug().Int("skipped", skipped).Msg("csv rows skipped")
	}
	return records, nil
}

func column(header, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

type jsonRecord struct {
	Plot   string `json:"plot"`
	Genres string `json:"genres"`
	Genre  string `json:"genre"`
}

// ReadJSONL reads one JSON object per line. Malformed lines are skipped.
func ReadJSONL(ctx context.Context, r io.Reader) ([]dataset.Record, error) {
	log := zerolog.Ctx(ctx)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []dataset.Record
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var jr jsonRecord
		if err := json.Unmarshal([]byte(text), &jr); err != nil {
			log.Warn().Int("line", line).Err(err).Msg("skipping malformed json")
			continue
		}
		genres := jr.Genres
		if genres == "" {
			genres = jr.Genre
		}
		rec := dataset.Record{Plot: strings.TrimSpace(jr.Plot), Genres: strings.TrimSpace(genres)}
		if rec.Plot == "" || rec.Genres == "" {
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
