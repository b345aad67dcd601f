// Package debug provides category-based debug logging for clinicdesk.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): controlled via CLINICDESK_DEBUG env or config
//   - Levels (HOW MUCH detail): controlled via CLINICDESK_LOG_LEVEL env or config
//
// Usage:
//
//	debug.Log("embedding", "request", "url", url, "inputs", len(texts))
//	if debug.Enabled("faq") { /* expensive formatting */ }
//
// Categories: embedding, faq, agent, calendar, transport, config, all.
// Levels: ERROR, WARN, INFO, DEBUG, TRACE.
package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// LevelTrace is below slog.LevelDebug for maximum verbosity.
// At TRACE, full request/response bodies of the embedding and chat
// backends are logged.
const LevelTrace = slog.LevelDebug - 4

// categories holds the set of enabled debug categories.
// Read-only after Init().
var categories map[string]bool

func init() {
	categories = parseCategories(os.Getenv("CLINICDESK_DEBUG"))
}

// Init configures the debug system and installs the default slog logger.
// Environment overrides config for both categories and level. format is
// "text" (default) or "json".
func Init(configCategories, configLevel, format string) {
	cats := os.Getenv("CLINICDESK_DEBUG")
	if cats == "" {
		cats = configCategories
	}
	categories = parseCategories(cats)

	level := os.Getenv("CLINICDESK_LOG_LEVEL")
	if level == "" {
		level = configLevel
	}

	slog.SetDefault(NewLogger(os.Stderr, ParseLevel(level), format))
}

// NewLogger builds a slog.Logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug message for the given category.
// If the category is not enabled, this is a no-op.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a trace-level message for the given category.
// Only visible when CLINICDESK_LOG_LEVEL=TRACE.
func Trace(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// TraceIsEnabled reports whether TRACE level is active for the given category.
func TraceIsEnabled(category string) bool {
	if !Enabled(category) {
		return false
	}
	return slog.Default().Enabled(context.Background(), LevelTrace)
}

// Raw writes plain text to stderr without any slog formatting.
// Only emitted when category is enabled AND level is TRACE.
func Raw(category string, text string) {
	if !TraceIsEnabled(category) {
		return
	}
	fmt.Fprintln(os.Stderr, text)
}

// ParseLevel converts a level string to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the sorted list of enabled categories.
func Categories() []string {
	result := make([]string, 0, len(categories))
	for k := range categories {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Truncate returns s truncated to maxLen bytes, with "..." appended if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	if s == "" {
		return m
	}
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
