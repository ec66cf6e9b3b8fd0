// Package logging routes the otelslog loggers of the core packages, and the
// default slog logger, to one text handler.
package logging

import (
	"context"
	"io"
	"log/slog"

	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Setup installs a text handler writing to w at level as both the slog
// default and the global otel LoggerProvider. The returned function flushes
// and shuts the provider down.
func Setup(w io.Writer, level slog.Leveler) func(context.Context) error {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewSimpleProcessor(&slogExporter{handler: handler})),
	)
	global.SetLoggerProvider(provider)
	return provider.Shutdown
}

// slogExporter writes otel log records through an slog.Handler.
type slogExporter struct {
	handler slog.Handler
}

func (e *slogExporter) Export(ctx context.Context, records []sdklog.Record) error {
	for _, record := range records {
		level := severityToLevel(record.Severity())
		if !e.handler.Enabled(ctx, level) {
			continue
		}

		out := slog.NewRecord(record.Timestamp(), level, record.Body().AsString(), 0)
		if scope := record.InstrumentationScope().Name; scope != "" {
			out.AddAttrs(slog.String("scope", scope))
		}
		record.WalkAttributes(func(kv otellog.KeyValue) bool {
			out.AddAttrs(slog.String(kv.Key, kv.Value.String()))
			return true
		})
		if err := e.handler.Handle(ctx, out); err != nil {
			return err
		}
	}
	return nil
}

func (e *slogExporter) Shutdown(context.Context) error   { return nil }
func (e *slogExporter) ForceFlush(context.Context) error { return nil }

// severityToLevel inverts the otelslog mapping, which puts slog.LevelInfo at
// SeverityInfo and keeps the distance between levels.
func severityToLevel(severity otellog.Severity) slog.Level {
	return slog.Level(int(severity) - int(otellog.SeverityInfo))
}
