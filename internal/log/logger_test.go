package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentMonitor, Format: "json", Output: &buf})

	NewStructuredLogger(logger).LogMutation(context.Background(), OpCreate, "budget", 7, 0)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "Record created" {
		t.Errorf("msg = %v, want Record created", entry["msg"])
	}
	if entry[FieldResource] != "budget" {
		t.Errorf("resource = %v, want budget", entry[FieldResource])
	}
	if _, ok := entry[FieldBudgetID]; ok {
		t.Error("zero budget id should be omitted")
	}
}

func TestStructuredLogger_LogError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentHTTP, Output: &buf})

	NewStructuredLogger(logger).LogError(context.Background(), "Delete failed", errors.New("boom"), ComponentStorage, OpDelete, nil)

	out := buf.String()
	for _, want := range []string{"level=ERROR", "error=boom", "operation=delete"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestFromContext_Default(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != "unknown" {
		t.Errorf("FromContext() without logger should return the unknown default, got %+v", l)
	}
}

func TestMiddlewareChain(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf})

	var got *Logger
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
		got.InfoContext(r.Context(), "handled")
	})

	tests := []struct {
		name          string
		requestID     string
		wantComponent string
		wantID        bool
	}{
		{"with request id", "req-1", ComponentDashboard, true},
		{"without request id", "", ComponentDashboard, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			h := Middleware(base)(
				RequestIDMiddleware(func(*http.Request) string { return tt.requestID })(
					ComponentMiddleware(ComponentDashboard)(final)))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ui/budget/table", nil))

			if got == nil || got.Component() != tt.wantComponent {
				t.Fatalf("request logger component = %v, want %s", got, tt.wantComponent)
			}
			out := buf.String()
			if n := strings.Count(out, "component="); n != 1 {
				t.Errorf("record has %d component keys, want 1: %s", n, out)
			}
			if !strings.Contains(out, "component="+tt.wantComponent) {
				t.Errorf("record %q missing component=%s", out, tt.wantComponent)
			}
			if has := strings.Contains(out, FieldRequestID+"="); has != tt.wantID {
				t.Errorf("record %q: request id present = %v, want %v", out, has, tt.wantID)
			}
		})
	}

	if base.Component() != ComponentHTTP {
		t.Errorf("base logger component changed to %q", base.Component())
	}
}
