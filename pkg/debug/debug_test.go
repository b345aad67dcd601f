package debug

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]bool
	}{
		{"empty", "", map[string]bool{}},
		{"single", "embedding", map[string]bool{"embedding": true}},
		{"multiple", "embedding,faq", map[string]bool{"embedding": true, "faq": true}},
		{"all", "all", map[string]bool{"all": true}},
		{"with spaces", " embedding , faq ", map[string]bool{"embedding": true, "faq": true}},
		{"uppercase normalized", "EMBEDDING,Faq", map[string]bool{"embedding": true, "faq": true}},
		{"empty segments", "embedding,,faq", map[string]bool{"embedding": true, "faq": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCategories(tt.input)
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %v, want %v", k, got[k], v)
				}
			}
			if len(got) != len(tt.want) {
				t.Errorf("len(got) = %d, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("embedding,agent")

	if !Enabled("embedding") {
		t.Error("embedding should be enabled")
	}
	if !Enabled("agent") {
		t.Error("agent should be enabled")
	}
	if Enabled("calendar") {
		t.Error("calendar should not be enabled")
	}
}

func TestEnabled_All(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("all")

	for _, c := range []string{"embedding", "faq", "anything"} {
		if !Enabled(c) {
			t.Errorf("%s should be enabled via 'all'", c)
		}
	}
}

func TestCategories_Sorted(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("faq,agent,embedding")

	got := Categories()
	want := []string{"agent", "embedding", "faq"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"TRACE", LevelTrace},
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, "json")
	logger.Info("hello", "k", "v")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "hello" || entry["k"] != "v" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewLogger_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn, "text")
	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info line should be filtered at WARN: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn line missing: %s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q, want %q", got, "short")
	}
	if got := Truncate("this is a long string", 10); got != "this is a ..." {
		t.Errorf("Truncate long = %q, want %q", got, "this is a ...")
	}
}

func TestLog_DisabledCategory(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("")

	// Should not panic or produce output.
	Log("embedding", "test message", "key", "value")
	Trace("embedding", "trace message", "key", "value")
}
