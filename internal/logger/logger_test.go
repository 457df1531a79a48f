package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		log     func(l *Logger)
		level   string
		message string
		errText string
		fields  map[string]string
		want    bool // should log
	}{
		{
			name:    "info message",
			log:     func(l *Logger) { l.Info("test message", Fields{"key": "value"}) },
			level:   "INFO",
			message: "test message",
			fields:  map[string]string{"key": "value"},
			want:    true,
		},
		{
			name: "debug below threshold",
			log:  func(l *Logger) { l.Debug("debug message", nil) },
			want: false,
		},
		{
			name:    "warn with err",
			log:     func(l *Logger) { l.Warn("retrying", Fields{"kind": "summary"}, errors.New("timeout")) },
			level:   "WARN",
			message: "retrying",
			errText: "timeout",
			fields:  map[string]string{"kind": "summary"},
			want:    true,
		},
		{
			name:    "error with err",
			log:     func(l *Logger) { l.Error("error occurred", nil, errors.New("test error")) },
			level:   "ERROR",
			message: "error occurred",
			errText: "test error",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(New(LevelInfo, &buf))

			if !tt.want {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}
				return
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["message"] != tt.message {
				t.Errorf("message = %v, want %s", entry["message"], tt.message)
			}
			if _, ok := entry["timestamp"]; !ok {
				t.Error("missing timestamp")
			}
			if tt.errText != "" && entry["error"] != tt.errText {
				t.Errorf("error = %v, want %s", entry["error"], tt.errText)
			}
			for k, v := range tt.fields {
				if entry[k] != v {
					t.Errorf("field %s = %v, want %s", k, entry[k], v)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" INFO ", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"verbose", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	child := New(LevelDebug, &buf).With(Fields{"component": "realtime"})
	child.Debug("cache hit", Fields{"kind": "roster"})

	out := buf.String()
	if !strings.Contains(out, `"component":"realtime"`) || !strings.Contains(out, `"kind":"roster"`) {
		t.Errorf("output missing fields: %s", out)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Info("ignored", nil)
	l.Error("ignored", nil, errors.New("x"))
	if l.With(Fields{"a": 1}) != nil {
		t.Error("With on nil logger should return nil")
	}
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	SetDefault(New(LevelWarn, &buf))

	Info("dropped", nil)
	Warn("kept", nil, nil)

	if strings.Contains(buf.String(), "dropped") {
		t.Error("info message logged below WARN threshold")
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Error("warn message not logged")
	}
}
