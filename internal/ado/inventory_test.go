package ado

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/loykin/repobatch/internal/outcome"
	"github.com/loykin/repobatch/internal/report"
)

func TestInventoryOp_Apply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/commits") {
			_, _ = w.Write([]byte(`{"value":[{"committer":{"date":"2024-05-01T10:00:00Z"}}]}`))
			return
		}
		w.WriteHeader(404)
	}))
	defer srv.Close()

	rep := report.New(InventoryColumns...)
	op := &InventoryOp{Client: newTestADOClient(t, srv), Report: rep}
	target := RepoTarget{
		Project:    Project{Name: "alpha"},
		Repository: Repository{ID: "r1", Name: "svc", Size: 2048},
	}
	rec := op.Apply(context.Background(), target)
	if rec.Status != outcome.StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", rec.Status, rec.Err)
	}
	if rep.Len() != 1 {
		t.Fatalf("expected 1 report row, got %d", rep.Len())
	}
}

func TestInventoryOp_NoCommits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"value":[]}`))
	}))
	defer srv.Close()

	rep := report.New(InventoryColumns...)
	op := &InventoryOp{Client: newTestADOClient(t, srv), Report: rep}
	target := RepoTarget{Project: Project{Name: "alpha"}, Repository: Repository{ID: "r1", Name: "bare"}}
	rec := op.Apply(context.Background(), target)
	if rec.Status != outcome.StatusSuccess {
		t.Fatalf("expected success, got %s", rec.Status)
	}
	if rep.Len() != 1 {
		t.Fatalf("expected 1 report row, got %d", rep.Len())
	}
}
