package ado

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/loykin/repobatch/internal/httpc"
	"github.com/loykin/repobatch/internal/outcome"
	"github.com/loykin/repobatch/internal/rest"
	"github.com/tidwall/gjson"
)

func TestSetReportBuildStatus_PreservesStringType(t *testing.T) {
	raw := []byte(`{"a":1,"repository":{"properties":{"reportBuildStatus":"false","other":"x"}},"c":3}`)
	out, changed, err := SetReportBuildStatus(raw, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatalf("expected a change")
	}
	got := gjson.GetBytes(out, reportBuildStatusPath)
	if got.Type != gjson.String || got.Str != "true" {
		t.Fatalf("expected string \"true\", got %s (%v)", got.Raw, got.Type)
	}
	if gjson.GetBytes(out, "a").Int() != 1 || gjson.GetBytes(out, "c").Int() != 3 {
		t.Fatalf("unrelated fields were disturbed: %s", out)
	}
	if gjson.GetBytes(out, "repository.properties.other").String() != "x" {
		t.Fatalf("sibling property was disturbed: %s", out)
	}
}

func TestSetReportBuildStatus_PreservesBoolType(t *testing.T) {
	raw := []byte(`{"repository":{"properties":{"reportBuildStatus":false}}}`)
	out, changed, err := SetReportBuildStatus(raw, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatalf("expected a change")
	}
	got := gjson.GetBytes(out, reportBuildStatusPath)
	if !got.IsBool() || !got.Bool() {
		t.Fatalf("expected bool true, got %s", got.Raw)
	}
}

func TestSetReportBuildStatus_NoChangeWhenAlreadySet(t *testing.T) {
	for _, raw := range []string{
		`{"repository":{"properties":{"reportBuildStatus":"true"}}}`,
		`{"repository":{"properties":{"reportBuildStatus":true}}}`,
	} {
		out, changed, err := SetReportBuildStatus([]byte(raw), true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if changed {
			t.Fatalf("expected no change for %s", raw)
		}
		if string(out) != raw {
			t.Fatalf("document was modified without a change: %s", out)
		}
	}
}

func TestSetReportBuildStatus_AddsFieldWhenMissing(t *testing.T) {
	raw := []byte(`{"repository":{"properties":{}}}`)
	out, changed, err := SetReportBuildStatus(raw, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatalf("expected a change when the field is missing")
	}
	if !gjson.GetBytes(out, reportBuildStatusPath).Bool() {
		t.Fatalf("expected field added as true, got %s", out)
	}
}

func newTestADOClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	rc := rest.New(&httpc.Httpc{Timeout: 5 * time.Second}, "Basic dGVzdA==", nil)
	return NewClient(rc, srv.URL, "myorg", "6.0")
}

func TestReportStatusOp_Apply(t *testing.T) {
	var gotPut []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/_apis/build/definitions/7"):
			if r.Method == http.MethodPut {
				gotPut, _ = io.ReadAll(r.Body)
				w.WriteHeader(200)
				_, _ = w.Write([]byte(`{"id":7}`))
				return
			}
			w.WriteHeader(200)
			_, _ = w.Write([]byte(`{"id":7,"repository":{"properties":{"reportBuildStatus":"false"}}}`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()

	op := &ReportStatusOp{Client: newTestADOClient(t, srv), Enable: true}
	target := DefinitionTarget{Project: Project{Name: "proj"}, Definition: &Definition{ID: 7, Name: "build"}}
	rec := op.Apply(context.Background(), target)

	if rec.Status != outcome.StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", rec.Status, rec.Err)
	}
	if !strings.Contains(string(gotPut), `"reportBuildStatus":"true"`) {
		t.Fatalf("expected PUT with updated field, got %s", gotPut)
	}
}

func TestReportStatusOp_NoDefinitionsIsNoOp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	op := &ReportStatusOp{Client: newTestADOClient(t, srv), Enable: true}
	rec := op.Apply(context.Background(), DefinitionTarget{Project: Project{Name: "empty-proj"}})
	if rec.Status != outcome.StatusNoOp {
		t.Fatalf("expected no-op for project without definitions, got %s", rec.Status)
	}
	if rec.Target != "empty-proj" {
		t.Fatalf("expected target named after the project, got %s", rec.Target)
	}
}

func TestReportStatusOp_FailureIsIsolated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(503)
		_, _ = w.Write([]byte(`{"message":"unavailable"}`))
	}))
	defer srv.Close()

	op := &ReportStatusOp{Client: newTestADOClient(t, srv), Enable: true}
	target := DefinitionTarget{Project: Project{Name: "proj"}, Definition: &Definition{ID: 1, Name: "b"}}
	rec := op.Apply(context.Background(), target)

	if rec.Status != outcome.StatusFailure {
		t.Fatalf("expected failure, got %s", rec.Status)
	}
	if rec.StatusCode != 503 {
		t.Fatalf("expected status 503 in record, got %d", rec.StatusCode)
	}
}
