package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", LevelDebug, false},
		{"", LevelInfo, false},
		{"info", LevelInfo, false},
		{"warning", LevelWarning, false},
		{"WARN", LevelWarning, false},
		{"error", LevelError, false},
		{"fatal", LevelFatal, false},
		{"verbose", LevelInfo, true},
	}

	for _, tc := range testCases {
		got, err := ParseLevel(tc.in)
		if got != tc.want || (err != nil) != tc.wantErr {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, err=%v)", tc.in, got, err, tc.want, tc.wantErr)
		}
	}
}

func TestSetupWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(Options{Level: "info", SampleRate: 1, Output: &buf}); err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}
	t.Cleanup(func() { _ = Setup(Options{}) })

	Debug("hidden")
	Info("scored profile", "band", "High")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["msg"] != "scored profile" || rec["band"] != "High" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestCountersIgnoreSampling(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(Options{SampleRate: 1000000, Output: &buf}); err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}
	t.Cleanup(func() { _ = Setup(Options{}) })

	before := TotalWarnings.Load()
	validations := ValidationFailures.Load()
	for i := 0; i < 10; i++ {
		WarnValidation()
	}
	WarnHttp4xx(404)

	if got := TotalWarnings.Load() - before; got != 11 {
		t.Errorf("TotalWarnings grew by %d, want 11", got)
	}
	if got := ValidationFailures.Load() - validations; got != 10 {
		t.Errorf("ValidationFailures grew by %d, want 10", got)
	}
}

func TestSetLevel(t *testing.T) {
	old := GetLevel()
	t.Cleanup(func() { SetLevel(old) })

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("GetLevel() = %v, want ERROR", GetLevel())
	}
}
