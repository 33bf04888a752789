package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/loykin/repobatch/internal/httpc"
)

func newTestClient(timeout time.Duration, headers map[string]string) *Client {
	h := &httpc.Httpc{Timeout: timeout}
	return New(h, "Basic dGVzdDp0ZXN0", headers)
}

func TestCall_SendsAuthAndContentHeaders(t *testing.T) {
	var gotAuth, gotContentType, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(5*time.Second, map[string]string{"Accept": "application/vnd.github+json"})
	resp, err := c.Call(context.Background(), http.MethodPost, srv.URL, map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotAuth != "Basic dGVzdDp0ZXN0" {
		t.Fatalf("expected auth header forwarded, got %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected json content type, got %q", gotContentType)
	}
	if gotAccept != "application/vnd.github+json" {
		t.Fatalf("expected accept header forwarded, got %q", gotAccept)
	}
	if !resp.JSON().Get("ok").Bool() {
		t.Fatalf("expected parsed body, got %s", resp.Body)
	}
}

func TestCall_Non2xxReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(404)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer srv.Close()

	c := newTestClient(5*time.Second, nil)
	resp, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected error for 404")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Status != 404 {
		t.Fatalf("expected status 404, got %d", apiErr.Status)
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected response alongside APIError")
	}
	if StatusOf(err) != 404 {
		t.Fatalf("expected StatusOf to report 404, got %d", StatusOf(err))
	}
}

func TestCall_TimeoutMapsToErrTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := newTestClient(50*time.Millisecond, nil)
	_, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !IsTimeout(err) {
		t.Fatalf("expected IsTimeout true")
	}
}

func TestCall_ConnectionRefusedMapsToErrNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
	}))
	srv.Close()

	c := newTestClient(2*time.Second, nil)
	_, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected network error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestCall_UnsupportedMethod(t *testing.T) {
	c := newTestClient(time.Second, nil)
	if _, err := c.Call(context.Background(), "TRACE", "http://localhost", nil); err == nil {
		t.Fatalf("expected error for unsupported method")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  short  ", 10); got != "short" {
		t.Fatalf("expected trimmed string, got %q", got)
	}
	long := truncate("abcdefghij", 4)
	if long != "abcd..." {
		t.Fatalf("expected truncated string, got %q", long)
	}
}
