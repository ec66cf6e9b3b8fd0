package assistant

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/ema-desk/core/assistant"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	segmentEventsCounter = mustInt64Counter("assistant.segment_events",
		metric.WithDescription("Segment events dispatched, by kind."),
		metric.WithUnit("{event}"),
	)
	turnsCounter = mustInt64Counter("assistant.turns",
		metric.WithDescription("Assistant turns, by outcome."),
		metric.WithUnit("{turn}"),
	)
)

func mustInt64Counter(name string, opts ...metric.Int64CounterOption) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, opts...)
	if err != nil {
		panic(err)
	}
	return counter
}
