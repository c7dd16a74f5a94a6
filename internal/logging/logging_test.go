package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("HANDNAV_DEBUG", "")
	t.Setenv("HANDNAV_LOG_LEVEL", "")
	t.Setenv("HANDNAV_LOG_FILE", "")

	cfg := ConfigFromEnv()
	if cfg.Level != LevelInfo {
		t.Errorf("expected default level Info, got %s", cfg.Level)
	}
	if cfg.File != DefaultLogFile {
		t.Errorf("expected default log file %s, got %s", DefaultLogFile, cfg.File)
	}

	t.Setenv("HANDNAV_LOG_LEVEL", "warn")
	cfg = ConfigFromEnv()
	if cfg.Level != LevelWarn {
		t.Errorf("expected level Warn, got %s", cfg.Level)
	}

	// HANDNAV_DEBUG wins over the explicit level
	t.Setenv("HANDNAV_DEBUG", "1")
	cfg = ConfigFromEnv()
	if cfg.Level != LevelDebug {
		t.Errorf("expected level Debug when HANDNAV_DEBUG=1, got %s", cfg.Level)
	}

	t.Setenv("HANDNAV_LOG_FILE", "-")
	cfg = ConfigFromEnv()
	if cfg.File != "" {
		t.Errorf("expected file logging disabled, got %q", cfg.File)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"unknown", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		got := ParseLevel(tt.input)
		if got != tt.expected {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: LevelWarn, Console: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("visible warn", Target("split"))
	_ = logger.Close()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below Warn should be filtered, got %q", out)
	}
	if !strings.Contains(out, "visible warn") || !strings.Contains(out, "split") {
		t.Errorf("expected warn line with target field, got %q", out)
	}

	buf.Reset()
	logger.SetLevel(LevelDebug)
	if !logger.IsDebugEnabled() {
		t.Error("SetLevel(Debug) should enable debug")
	}
	logger.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("expected debug output after SetLevel, got %q", buf.String())
	}
}

func TestWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: LevelInfo, Console: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.WithPrefix("resolver").Info("tier matched")
	if !strings.Contains(buf.String(), "resolver") {
		t.Errorf("expected prefix in output, got %q", buf.String())
	}
	if logger.WithPrefix("x").Metrics() != logger.Metrics() {
		t.Error("prefixed loggers should share metrics")
	}
}

func TestFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "handnav.log")
	logger, err := New(Config{
		Level:      LevelDebug,
		File:       path,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
		Console:    &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("debug is console only")
	logger.Info("classified", Tier("nav"), Confidence(72))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		lines = append(lines, entry)
	}

	if len(lines) != 1 {
		t.Fatalf("expected 1 file entry (info and above), got %d", len(lines))
	}
	if lines[0]["message"] != "classified" {
		t.Errorf("message = %v, want classified", lines[0]["message"])
	}
	if lines[0]["tier"] != "nav" {
		t.Errorf("tier = %v, want nav", lines[0]["tier"])
	}
	if lines[0]["confidence"] != float64(72) {
		t.Errorf("confidence = %v, want 72", lines[0]["confidence"])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	l.SetLevel(LevelDebug)
	if l.IsDebugEnabled() {
		t.Error("nil logger should report debug disabled")
	}
	if l.WithPrefix("p") != nil {
		t.Error("WithPrefix on nil should return nil")
	}
	if l.Zap() == nil {
		t.Error("Zap on nil should return a nop logger")
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil returned %v", err)
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.RecordPrompt()
	m.RecordPrompt()
	m.RecordPrompt()

	m.RecordTier("local", time.Millisecond, true)
	m.RecordTier("local", time.Millisecond, true)
	m.RecordTier("fallback", 300*time.Millisecond, false)

	m.RecordLLMRequest(250*time.Millisecond, nil)
	m.RecordLLMRequest(50*time.Millisecond, errors.New("boom"))

	m.RecordMethod("tools/list")
	m.RecordMethod("tools/call")
	m.RecordMethod("tools/call")

	summary := m.Summary()

	if summary.PromptsTotal != 3 {
		t.Errorf("expected 3 prompts, got %d", summary.PromptsTotal)
	}
	if summary.CommandsTotal != 2 {
		t.Errorf("expected 2 commands, got %d", summary.CommandsTotal)
	}
	if summary.Tiers["local"].Hits != 2 {
		t.Errorf("expected 2 local hits, got %d", summary.Tiers["local"].Hits)
	}
	if summary.LLMRequestsTotal != 2 || summary.LLMErrorsTotal != 1 {
		t.Errorf("llm requests/errors = %d/%d, want 2/1", summary.LLMRequestsTotal, summary.LLMErrorsTotal)
	}
	if summary.LLMTimeTotal != 300*time.Millisecond {
		t.Errorf("llm time = %v, want 300ms", summary.LLMTimeTotal)
	}
	if summary.ProtocolRequests != 3 || summary.Methods["tools/call"] != 2 {
		t.Errorf("protocol counts wrong: %+v", summary.Methods)
	}

	snap := m.GetSnapshot()
	if snap["prompts_total"] != 3 {
		t.Errorf("snapshot prompts_total = %v", snap["prompts_total"])
	}

	var nilMetrics *Metrics
	nilMetrics.RecordPrompt()
	nilMetrics.RecordTier("local", 0, true)
}

func TestFields(t *testing.T) {
	f := F("key", "value")
	if f.Key != "key" || f.Value != "value" {
		t.Error("F() should create field correctly")
	}

	if Tier("local").Key != "tier" {
		t.Error("Tier should have correct key")
	}
	if Target("ruka-hand").Value != "ruka-hand" {
		t.Error("Target should have correct value")
	}
	if Duration(100*time.Millisecond).Value != int64(100) {
		t.Error("Duration should convert to milliseconds")
	}

	q := Query(strings.Repeat("x", 300))
	if len(q.Value.(string)) > 200 {
		t.Error("Query should be truncated")
	}
	if !strings.HasSuffix(q.Value.(string), "...") {
		t.Error("truncated Query should end with ...")
	}

	if Error(nil).Value != nil {
		t.Error("Error(nil) should have nil value")
	}
	if Error(os.ErrNotExist).Value != "file does not exist" {
		t.Errorf("Error should extract error string, got %v", Error(os.ErrNotExist).Value)
	}
}

func TestGlobalLogger(t *testing.T) {
	if Global() != nil {
		t.Error("Global should be nil before Init")
	}

	var buf bytes.Buffer
	logger, err := Init(Config{Level: LevelDebug, Console: &buf})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer func() { _ = Close() }()

	if Global() != logger {
		t.Error("Global should return initialized logger")
	}

	Debug("debug via package")
	Info("info via package")
	Warn("warn via package")
	LogError("error via package")

	if !strings.Contains(buf.String(), "error via package") {
		t.Errorf("expected package-level output, got %q", buf.String())
	}

	_ = Close()
	if Global() != nil {
		t.Error("Global should be nil after Close")
	}
}
