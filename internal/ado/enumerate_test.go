package ado

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEnumerateDefinitions_FlattensAndKeepsEmptyProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/myorg/_apis/projects"):
			_, _ = w.Write([]byte(`{"value":[{"id":"p1","name":"alpha"},{"id":"p2","name":"beta"}]}`))
		case strings.Contains(r.URL.Path, "/alpha/_apis/build/definitions"):
			_, _ = w.Write([]byte(`{"value":[{"id":1,"name":"ci"},{"id":2,"name":"release"}]}`))
		case strings.Contains(r.URL.Path, "/beta/_apis/build/definitions"):
			_, _ = w.Write([]byte(`{"value":[]}`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()

	targets, err := newTestADOClient(t, srv).EnumerateDefinitions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(targets))
	}
	if targets[0].Name() != "alpha/ci" || targets[1].Name() != "alpha/release" {
		t.Fatalf("unexpected ordering: %s, %s", targets[0].Name(), targets[1].Name())
	}
	if targets[2].Definition != nil || targets[2].Name() != "beta" {
		t.Fatalf("expected definition-less target for empty project, got %+v", targets[2])
	}
}

func TestEnumerateDefinitions_ProjectListFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(401)
		_, _ = w.Write([]byte(`{"message":"unauthorized"}`))
	}))
	defer srv.Close()

	if _, err := newTestADOClient(t, srv).EnumerateDefinitions(context.Background()); err == nil {
		t.Fatalf("expected enumeration to fail")
	}
}

func TestEnumerateRepositories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/myorg/_apis/projects"):
			_, _ = w.Write([]byte(`{"value":[{"id":"p1","name":"alpha"}]}`))
		case strings.Contains(r.URL.Path, "/alpha/_apis/git/repositories"):
			_, _ = w.Write([]byte(`{"value":[{"id":"r1","name":"svc","defaultBranch":"refs/heads/main","size":1024}]}`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()

	targets, err := newTestADOClient(t, srv).EnumerateRepositories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(targets))
	}
	tgt := targets[0]
	if tgt.Name() != "alpha/svc" {
		t.Fatalf("unexpected target name: %s", tgt.Name())
	}
	if tgt.Repository.DefaultBranch != "refs/heads/main" || tgt.Repository.Size != 1024 {
		t.Fatalf("repository fields not parsed: %+v", tgt.Repository)
	}
}
