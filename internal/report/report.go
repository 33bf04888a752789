package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Report collects inventory rows during a run and writes them once, as a
// CSV file, when the run finishes.
type Report struct {
	columns []string
	rows    [][]string
}

// New creates a report with the given column header.
func New(columns ...string) *Report {
	return &Report{columns: columns}
}

// AddRow appends one row in run order.
func (r *Report) AddRow(values ...string) {
	r.rows = append(r.rows, values)
}

// Len returns the number of data rows.
func (r *Report) Len() int { return len(r.rows) }

// WriteCSV writes the header and all rows to path.
func (r *Report) WriteCSV(path string) error {
	clean := filepath.Clean(path)
	// #nosec G304 -- report path comes from run configuration
	f, err := os.Create(clean)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", clean, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(r.columns); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range r.rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush report %s: %w", clean, err)
	}
	return nil
}
