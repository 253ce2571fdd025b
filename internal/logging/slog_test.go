package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(slog.LevelInfo, FormatJSON, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown", Alias("work"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out, `"alias":"work"`) {
		t.Errorf("JSON output missing alias attribute: %s", out)
	}

	buf.Reset()
	logger, err = New(slog.LevelDebug, FormatText, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Errorf("text output = %q", buf.String())
	}

	if _, err := New(slog.LevelInfo, "xml", &buf); err == nil {
		t.Error("New() with unknown format should fail")
	}
}

func TestWithHelpers(t *testing.T) {
	logger := slog.Default()
	if WithComponent(logger, "webhook") == nil {
		t.Error("WithComponent returned nil")
	}
	if WithOperation(logger, "events.list") == nil {
		t.Error("WithOperation returned nil")
	}
	if WithTool(logger, "search_gmail") == nil {
		t.Error("WithTool returned nil")
	}
}

func TestAttrs(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{"operation", Operation("events.list"), KeyOperation, "events.list"},
		{"service", Service("gmail"), KeyService, "gmail"},
		{"alias", Alias("work"), KeyAlias, "work"},
		{"tool", Tool("create_event"), KeyTool, "create_event"},
		{"session", Session("abc"), KeySession, "abc"},
		{"round", Round(3), KeyRound, "3"},
		{"status", Status(StatusSuccess), KeyStatus, StatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if tt.attr.Value.String() != tt.wantVal {
				t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.wantVal)
			}
		})
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("test error"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "test error" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "test error")
	}

	// nil yields an empty group that slog omits
	attr = Err(nil)
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty string (empty group)", attr.Key)
	}
}

func TestAnonymize(t *testing.T) {
	got := Anonymize("whatsapp:+15551234567")
	if len(got) != 21 || !strings.HasPrefix(got, "user:") {
		t.Errorf("Anonymize() = %q, want user: prefix and 16 hex chars", got)
	}
	if got != Anonymize("whatsapp:+15551234567") {
		t.Error("Anonymize should be deterministic")
	}
	if got == Anonymize("whatsapp:+15557654321") {
		t.Error("different ids should produce different hashes")
	}
	if Anonymize("") != "" {
		t.Error("Anonymize(\"\") should be empty")
	}

	attr := Sender("whatsapp:+15551234567")
	if attr.Key != KeySender || attr.Value.String() != got {
		t.Errorf("Sender() = %v", attr)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "<empty>"},
		{"abc123", "[token:6 chars]"},
		{"a_very_long_token_string", "[token:24 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := SanitizeToken(tt.token); got != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate() = %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("Truncate() = %q", got)
	}
}
