package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        Info,
		"DEBUG":   Debug,
		"warning": Warn,
		"error":   Error,
		"bogus":   Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONLogger_WritesFieldsAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatJSON, App: "caregiver-assistant", Out: &buf})

	l.Debug("hidden", nil)
	l.With(map[string]any{"session": "s-1"}).Warn("tool failed", map[string]any{
		"tool": "addMedicine",
		"err":  errors.New("patient not found"),
		"":     "dropped",
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if entry["level"] != "warn" || entry["message"] != "tool failed" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["app"] != "caregiver-assistant" || entry["session"] != "s-1" {
		t.Fatalf("missing base fields: %v", entry)
	}
	if entry["err"] != "patient not found" {
		t.Fatalf("expected error rendered as string, got %v", entry["err"])
	}
	if _, ok := entry[""]; ok {
		t.Fatalf("empty key should be dropped: %v", entry)
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := OrNop(nil)
	l.With(map[string]any{"a": 1}).Error("x", nil)
}
