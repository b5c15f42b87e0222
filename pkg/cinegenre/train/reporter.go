package train

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/cognicore/cinegenre/pkg/cinegenre/metrics"
)

// Evaluation is the per-model material handed to a Reporter
type Evaluation struct {
	Variant   string
	Model     string
	Labels    []string
	Confusion [][]int
	ROC       map[string][]metrics.ROCPoint // per class, empty without scores
	Report    string
}

// Reporter receives the side outputs of each evaluated model
type Reporter interface {
	Report(ctx context.Context, ev Evaluation) error
}

// FileReporter writes cm_<model>.csv, roc_<model>.json and
// report_<model>.txt under Dir/<variant>.
type FileReporter struct {
	Dir string
}

// NewFileReporter creates a reporter rooted at dir.
func NewFileReporter(dir string) *FileReporter {
	return &FileReporter{Dir: dir}
}

func (r *FileReporter) Report(ctx context.Context, ev Evaluation) error {
	dir := filepath.Join(r.Dir, ev.Variant)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	slug := Slug(ev.Model)
	if err := writeConfusion(filepath.Join(dir, "cm_"+slug+".csv"), ev.Labels, ev.Confusion); err != nil {
		return err
	}

	if len(ev.ROC) > 0 {
		data, err := json.MarshalIndent(ev.ROC, "", "  ")
		if err != nil {
			return fmt.Errorf("encode roc curves: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "roc_"+slug+".json"), data, 0o644); err != nil {
			return fmt.Errorf("write roc curves: %w", err)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "report_"+slug+".txt"), []byte(ev.Report), 0o644); err != nil {
		return fmt.Errorf("write classification report: %w", err)
	}
	return nil
}

func writeConfusion(path string, labels []string, m [][]int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create confusion matrix: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"true\\predicted"}, labels...)
	if err := w.Write(header); err != nil {
		return err
	}
	for i, row := range m {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, labels[i])
		for _, v := range row {
			rec = append(rec, strconv.Itoa(v))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// Slug turns a model name into a file name fragment.
func Slug(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}
