package outcome

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/loykin/repobatch/internal/common"
)

// Logger accumulates outcome records in memory and flushes them once, at the
// end of the run, to a daily-stamped log file. A crash mid-run loses the flat
// log; the optional run-history store covers that gap when enabled.
type Logger struct {
	dir     string
	prefix  string
	masker  *common.Masker
	records []Record
}

// NewLogger creates an outcome logger writing under dir with the given file
// prefix. The masker scrubs record text before it reaches disk.
func NewLogger(dir, prefix string) *Logger {
	return &Logger{
		dir:    dir,
		prefix: prefix,
		masker: common.GetGlobalMasker(),
	}
}

// Append adds one record. Records are kept in insertion order.
func (l *Logger) Append(rec Record) {
	l.records = append(l.records, rec)
}

// Records returns the accumulated records in insertion order.
func (l *Logger) Records() []Record {
	return l.records
}

// Summary reports whether every accumulated record succeeded.
func (l *Logger) Summary() bool {
	for _, rec := range l.records {
		if !rec.Succeeded() {
			return false
		}
	}
	return true
}

// Path returns the daily-stamped file this run will flush to.
func (l *Logger) Path() string {
	name := fmt.Sprintf("%s_%s.log", l.prefix, time.Now().Format("2006-01-02"))
	return filepath.Join(l.dir, name)
}

// Flush writes every accumulated record to the log file in one pass. The file
// is opened in append mode so repeated runs on the same day share a file.
func (l *Logger) Flush() error {
	path := l.Path()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	// #nosec G304 -- log path is derived from run configuration
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open outcome log %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for _, rec := range l.records {
		b.WriteString(l.format(rec))
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write outcome log %s: %w", path, err)
	}
	return nil
}

// format renders one record as a human-readable block. Not meant for machine
// parsing.
func (l *Logger) format(rec Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s org=%s target=%s outcome=%s",
		rec.Time.Format(time.RFC3339), rec.Org, rec.Target, rec.Status)
	if rec.StatusCode != 0 {
		fmt.Fprintf(&b, " status_code=%d", rec.StatusCode)
	}
	if rec.Message != "" {
		fmt.Fprintf(&b, " message=%q", l.masker.MaskString(rec.Message))
	}
	if rec.Err != "" {
		fmt.Fprintf(&b, " error=%q", l.masker.MaskString(rec.Err))
	}
	b.WriteString("\n")
	return b.String()
}
