package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/loykin/repobatch/internal/csvsource"
	"github.com/loykin/repobatch/internal/outcome"
	"github.com/tidwall/gjson"
)

func TestFindSecurityConfiguration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orgs/acme/code-security/configurations" {
			w.WriteHeader(404)
			return
		}
		_, _ = w.Write([]byte(`[{"id":11,"name":"default"},{"id":42,"name":"strict"}]`))
	}))
	defer srv.Close()

	c := newTestGithubClient(t, srv)
	id, err := c.FindSecurityConfiguration(context.Background(), "strict")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}

	if _, err := c.FindSecurityConfiguration(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for unknown configuration name")
	}
}

func TestSecurityConfigOp_AttachesChunk(t *testing.T) {
	var attachBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/repos/acme/"):
			repo := strings.TrimPrefix(r.URL.Path, "/repos/acme/")
			id := map[string]int64{"one": 101, "two": 102}[repo]
			if id == 0 {
				w.WriteHeader(404)
				return
			}
			_, _ = fmt.Fprintf(w, `{"id":%d,"name":%q}`, id, repo)
		case r.URL.Path == "/orgs/acme/code-security/configurations/42/attach":
			attachBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(200)
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()

	op := &SecurityConfigOp{Client: newTestGithubClient(t, srv), ConfigID: 42}
	chunk := []csvsource.Row{{Repo: "one"}, {Repo: "two"}}
	rec := op.Apply(context.Background(), chunk)

	if rec.Status != outcome.StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", rec.Status, rec.Err)
	}
	if rec.Target != "one,two" {
		t.Fatalf("expected chunk named by its repos, got %s", rec.Target)
	}
	body := gjson.ParseBytes(attachBody)
	if body.Get("scope").String() != "selected" {
		t.Fatalf("expected selected scope, got %s", attachBody)
	}
	ids := body.Get("selected_repository_ids").Array()
	if len(ids) != 2 || ids[0].Int() != 101 || ids[1].Int() != 102 {
		t.Fatalf("expected both repo ids in attach payload, got %s", attachBody)
	}
}

func TestSecurityConfigOp_ResolutionFailureFailsChunk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/attach") {
			t.Error("attach must not be called when a repo fails to resolve")
		}
		w.WriteHeader(404)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer srv.Close()

	op := &SecurityConfigOp{Client: newTestGithubClient(t, srv), ConfigID: 42}
	rec := op.Apply(context.Background(), []csvsource.Row{{Repo: "ghost"}})
	if rec.Status != outcome.StatusFailure {
		t.Fatalf("expected failure, got %s", rec.Status)
	}
	if !strings.Contains(rec.Message, "ghost") {
		t.Fatalf("expected failing repo named in message, got %q", rec.Message)
	}
}

func TestChunkName(t *testing.T) {
	got := chunkName([]csvsource.Row{{Repo: "a"}, {Repo: "b"}, {Repo: "c"}})
	if got != "a,b,c" {
		t.Fatalf("unexpected chunk name: %s", got)
	}
}
