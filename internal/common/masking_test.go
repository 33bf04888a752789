package common

import (
	"strings"
	"testing"
)

func TestMaskString_Patterns(t *testing.T) {
	m := NewMasker()
	cases := []struct {
		name  string
		input string
		leak  string
	}{
		{"bearer token", "Authorization: Bearer ghp_abc123DEF", "ghp_abc123DEF"},
		{"basic auth", "header Basic dXNlcjpwYXNz", "dXNlcjpwYXNz"},
		{"pat json", `{"pat":"secretpat123"}`, "secretpat123"},
		{"token json", `{"access_token":"tok-456"}`, "tok-456"},
		{"password", `password=hunter2`, "hunter2"},
		{"client secret", `{"client_secret":"cs-789"}`, "cs-789"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := m.MaskString(tc.input)
			if strings.Contains(out, tc.leak) {
				t.Fatalf("value leaked: %q -> %q", tc.input, out)
			}
			if !strings.Contains(out, maskedValue) {
				t.Fatalf("expected masked placeholder in %q", out)
			}
		})
	}
}

func TestMaskString_LeavesPlainTextAlone(t *testing.T) {
	m := NewMasker()
	in := "updated 3 pipeline files in project alpha"
	if out := m.MaskString(in); out != in {
		t.Fatalf("plain text was modified: %q", out)
	}
}

func TestMaskValue_SensitiveKeys(t *testing.T) {
	m := NewMasker()
	if got := m.MaskValue("pat", "rawvalue"); got != maskedValue {
		t.Fatalf("expected key-based masking, got %v", got)
	}
	if got := m.MaskValue("password", "rawvalue"); got != maskedValue {
		t.Fatalf("expected key-based masking, got %v", got)
	}
	if got := m.MaskValue("target", "proj/repo"); got != "proj/repo" {
		t.Fatalf("expected non-sensitive value untouched, got %v", got)
	}
}

func TestMasker_Disabled(t *testing.T) {
	m := NewMasker()
	m.SetEnabled(false)
	in := "Bearer visible-token"
	if out := m.MaskString(in); out != in {
		t.Fatalf("disabled masker must not modify input, got %q", out)
	}
	if m.IsEnabled() {
		t.Fatalf("expected IsEnabled false")
	}
}
