package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	otellog "go.opentelemetry.io/otel/log"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSetupRoutesOtelLoggers(t *testing.T) {
	out := &syncBuffer{}
	shutdown := Setup(out, slog.LevelInfo)
	defer shutdown(context.Background())

	logger := otelslog.NewLogger("github.com/koscakluka/ema-desk/core/assistant")
	logger.WarnContext(context.Background(), "failed to speak sentence", "error", "device busy")
	logger.DebugContext(context.Background(), "completion usage", "total_tokens", 12)

	got := out.String()
	for _, want := range []string{"level=WARN", "failed to speak sentence", "error=\"device busy\"", "scope=github.com/koscakluka/ema-desk/core/assistant"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in log output:\n%s", want, got)
		}
	}
	if strings.Contains(got, "completion usage") {
		t.Fatalf("expected debug record to be filtered at info level:\n%s", got)
	}
}

func TestSetupVerbose(t *testing.T) {
	out := &syncBuffer{}
	shutdown := Setup(out, slog.LevelDebug)
	defer shutdown(context.Background())

	otelslog.NewLogger("test").DebugContext(context.Background(), "completion usage")
	slog.Info("from the default logger")

	got := out.String()
	if !strings.Contains(got, "completion usage") || !strings.Contains(got, "from the default logger") {
		t.Fatalf("expected both records in log output:\n%s", got)
	}
}

func TestSeverityToLevel(t *testing.T) {
	tests := []struct {
		severity otellog.Severity
		want     slog.Level
	}{
		{severity: otellog.SeverityDebug, want: slog.LevelDebug},
		{severity: otellog.SeverityInfo, want: slog.LevelInfo},
		{severity: otellog.SeverityWarn, want: slog.LevelWarn},
		{severity: otellog.SeverityError, want: slog.LevelError},
	}

	for _, tt := range tests {
		if got := severityToLevel(tt.severity); got != tt.want {
			t.Fatalf("severityToLevel(%v) = %v, want %v", tt.severity, got, tt.want)
		}
	}
}
