package application

import (
	"context"

	"github.com/draftea/trading-system/shared/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// MetricsObserver counts purchase outcomes on the telemetry it was built with
type MetricsObserver struct {
	tel *telemetry.Telemetry
}

// NewMetricsObserver creates a new MetricsObserver
func NewMetricsObserver(tel *telemetry.Telemetry) *MetricsObserver {
	return &MetricsObserver{tel: tel}
}

// Observe records started, succeeded and failed purchases plus every transition
func (o *MetricsObserver) Observe(ctx context.Context, t *Transition) {
	if o.tel == nil {
		return
	}

	o.tel.Counter(ctx, "purchase_transitions_total", "Purchase saga transitions", 1,
		attribute.String("topic", t.Topic.String()),
		attribute.String("outcome", string(t.Outcome)),
	)

	switch t.Outcome {
	case OutcomeStarted:
		o.tel.Counter(ctx, "purchase_started_total", "Purchases accepted", 1)
	case OutcomeCompleted:
		o.tel.Counter(ctx, "purchase_succeeded_total", "Purchases completed", 1)
		if t.Instance != nil {
			o.tel.Histogram(ctx, "purchase_duration_seconds", "Time from request to completion",
				t.Instance.LastUpdated.Sub(t.Instance.Received).Seconds(),
			)
		}
	case OutcomeFaulted:
		o.tel.Counter(ctx, "purchase_failed_total", "Purchases faulted", 1,
			attribute.String("from", t.From.String()),
		)
	case OutcomeResent:
		o.tel.Counter(ctx, "purchase_commands_resent_total", "Pending commands released again", int64(len(t.Commands)),
			attribute.String("state", t.From.String()),
		)
	}
}

// ObserverFunc adapts a function to OutcomeObserver
type ObserverFunc func(ctx context.Context, t *Transition)

func (f ObserverFunc) Observe(ctx context.Context, t *Transition) {
	f(ctx, t)
}
