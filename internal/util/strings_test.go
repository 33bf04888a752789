package util

import "testing"

func TestTrimAndLower(t *testing.T) {
	if got := TrimAndLower("  SqLite  "); got != "sqlite" {
		t.Fatalf("expected sqlite, got %q", got)
	}
}

func TestTrimEmptyCheck(t *testing.T) {
	if v, ok := TrimEmptyCheck("  x  "); !ok || v != "x" {
		t.Fatalf("expected (x,true), got (%q,%t)", v, ok)
	}
	if _, ok := TrimEmptyCheck("   "); ok {
		t.Fatalf("expected false for blank input")
	}
}

func TestTrimWithDefault(t *testing.T) {
	if got := TrimWithDefault("  ", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := TrimWithDefault(" set ", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" go ; cli ;; backend ", ";")
	if len(got) != 3 || got[0] != "go" || got[1] != "cli" || got[2] != "backend" {
		t.Fatalf("unexpected result: %v", got)
	}
	if SplitList("   ", ";") != nil {
		t.Fatalf("expected nil for blank input")
	}
}
