package csvsource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	return path
}

func TestLoad_FullColumns(t *testing.T) {
	path := writeCSV(t, "Repo,Owner,Topics\nrepo-one,acme,go;cli\nrepo-two,acme,\nrepo-three,,backend\n")
	rows, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Repo != "repo-one" || rows[0].Owner != "acme" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if len(rows[0].Topics) != 2 || rows[0].Topics[0] != "go" || rows[0].Topics[1] != "cli" {
		t.Fatalf("expected semicolon-split topics, got %v", rows[0].Topics)
	}
	if rows[1].HasMutation() {
		t.Fatalf("row without topics must be a no-op target")
	}
	if rows[2].Owner != "" || !rows[2].HasMutation() {
		t.Fatalf("unexpected third row: %+v", rows[2])
	}
}

func TestLoad_RepoOnlyHeader(t *testing.T) {
	path := writeCSV(t, "repo\nalpha\nbeta\n")
	rows, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[0].Repo != "alpha" || rows[1].Repo != "beta" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestLoad_MissingRepoColumn(t *testing.T) {
	path := writeCSV(t, "Name,Topics\nrepo,go\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "Repo") {
		t.Fatalf("expected missing Repo column error, got %v", err)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeCSV(t, "")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestLoad_HeaderOnly(t *testing.T) {
	path := writeCSV(t, "Repo,Topics\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for file with no data rows")
	}
}

func TestLoad_EmptyRepoCellAborts(t *testing.T) {
	path := writeCSV(t, "Repo,Topics\ngood,go\n,python\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty Repo cell")
	}
}

func TestLoad_MalformedRowAborts(t *testing.T) {
	path := writeCSV(t, "Repo,Topics\ngood,go\nbad,\"unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed row")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
