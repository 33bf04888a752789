package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/loykin/repobatch/internal/util"
)

// Row is one CSV-driven target. Repo is required; Owner and Topics are
// optional columns. A row with no topics is a valid no-op target.
type Row struct {
	Repo   string
	Owner  string
	Topics []string
}

// HasMutation reports whether the row carries anything to apply.
func (r Row) HasMutation() bool {
	return len(r.Topics) > 0
}

// Load parses the CSV file at path. The file must have a header containing
// a Repo column; Owner and Topics are picked up when present. Topics are
// semicolon-separated within the cell. Any parse error, missing required
// column, or empty file aborts the run before the first API call.
func Load(path string) ([]Row, error) {
	clean := filepath.Clean(strings.TrimSpace(path))
	if clean == "" || clean == "." {
		return nil, fmt.Errorf("csv: path not provided")
	}
	// #nosec G304 -- csv path is provided intentionally by the user
	f, err := os.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("csv: failed to open %s: %w", clean, err)
	}
	defer func() { _ = f.Close() }()
	rows, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("csv %s: %w", clean, err)
	}
	return rows, nil
}

func parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[util.TrimAndLower(name)] = i
	}
	repoIdx, ok := cols["repo"]
	if !ok {
		return nil, fmt.Errorf("required column Repo is missing")
	}
	ownerIdx, hasOwner := cols["owner"]
	topicsIdx, hasTopics := cols["topics"]

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", len(rows)+2, err)
		}
		repo := strings.TrimSpace(record[repoIdx])
		if repo == "" {
			return nil, fmt.Errorf("row %d: Repo is empty", len(rows)+2)
		}
		row := Row{Repo: repo}
		if hasOwner && ownerIdx < len(record) {
			row.Owner = strings.TrimSpace(record[ownerIdx])
		}
		if hasTopics && topicsIdx < len(record) {
			row.Topics = util.SplitList(record[topicsIdx], ";")
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file has no data rows")
	}
	return rows, nil
}
