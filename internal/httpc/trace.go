package httpc

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/loykin/repobatch/internal/common"
)

// Trace appends request/response details to a debug log file when verbose
// mode is enabled. Writes are best-effort: a failed write never fails the
// API call, and only the first write error is kept to be surfaced once at
// the end of the run. Everything passes through the masker first so the
// Authorization header and token-shaped values never reach disk.
type Trace struct {
	path   string
	masker *common.Masker

	mu  sync.Mutex
	f   *os.File
	err error
}

// NewTrace creates a trace appending to the given path.
func NewTrace(path string) *Trace {
	return &Trace{
		path:   path,
		masker: common.GetGlobalMasker(),
	}
}

// Request appends one request block. Bodies are only recorded for mutating
// verbs; GET and DELETE carry none worth tracing.
func (t *Trace) Request(method, url string, body []byte) {
	line := fmt.Sprintf("%s >> %s %s\n", time.Now().Format(time.RFC3339), method, url)
	if len(body) > 0 && method != "GET" && method != "DELETE" {
		line += fmt.Sprintf("%s >> body: %s\n", time.Now().Format(time.RFC3339), t.masker.MaskString(string(body)))
	}
	t.write(line)
}

// Response appends one response block.
func (t *Trace) Response(status int, body []byte) {
	line := fmt.Sprintf("%s << status: %d\n", time.Now().Format(time.RFC3339), status)
	if len(body) > 0 {
		line += fmt.Sprintf("%s << body: %s\n", time.Now().Format(time.RFC3339), t.masker.MaskString(string(body)))
	}
	t.write(line)
}

// Error appends a transport-level error.
func (t *Trace) Error(err error) {
	if err == nil {
		return
	}
	t.write(fmt.Sprintf("%s !! %s\n", time.Now().Format(time.RFC3339), t.masker.MaskString(err.Error())))
}

func (t *Trace) write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	if t.f == nil {
		if dir := filepath.Dir(t.path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				t.err = err
				return
			}
		}
		// #nosec G304 -- trace path comes from run configuration
		f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			t.err = err
			return
		}
		t.f = f
	}
	if _, err := t.f.WriteString(s); err != nil {
		t.err = err
	}
}

// Err returns the first write error, if any, for one-time reporting at the
// end of the run.
func (t *Trace) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Close closes the underlying file.
func (t *Trace) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.f == nil {
		return nil
	}
	f := t.f
	t.f = nil
	return f.Close()
}
