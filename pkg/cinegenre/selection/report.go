package selection

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
)

// ReportFile is the comparison report name inside the model directory.
const ReportFile = "final_report.csv"

var reportHeader = []string{"Algorithm", "Std-Acc-Before", "Std-Acc-After", "Flexible-Acc-After"}

// WriteReport writes rows as raw fractions to a CSV file at path.
func WriteReport(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Algorithm,
			strconv.FormatFloat(r.StdAccBefore, 'g', -1, 64),
			strconv.FormatFloat(r.StdAccAfter, 'g', -1, 64),
			strconv.FormatFloat(r.FlexAccAfter, 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

// FormatTable renders rows with every score as a percentage.
func FormatTable(rows []Row) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(reportHeader, "\t"))
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Algorithm, Percent(r.StdAccBefore), Percent(r.StdAccAfter), Percent(r.FlexAccAfter))
	}
	tw.Flush()
	return b.String()
}

// Percent formats a fraction as a percentage with two decimals.
func Percent(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}
