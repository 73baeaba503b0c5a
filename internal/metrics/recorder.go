package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/chris-regnier/tabset/internal/tabs"
	"github.com/chris-regnier/tabset/internal/telemetry"
)

// Recorder turns switcher transitions into collector events and OTel
// measurements. It implements tabs.Observer.
type Recorder struct {
	collector *Collector
	source    string
	logger    *slog.Logger

	activations metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewRecorder creates a recorder that tags events with source ("tui",
// "web", "cli"). Instruments come from the global meter provider, which is
// a no-op until telemetry.Init installs one.
func NewRecorder(collector *Collector, source string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{collector: collector, source: source, logger: logger}

	meter := telemetry.Meter()
	var err error
	r.activations, err = meter.Int64Counter("tabset.activations",
		metric.WithDescription("Number of tab group activations"),
	)
	if err != nil {
		logger.Warn("creating activation counter", "err", err)
	}
	r.duration, err = meter.Float64Histogram("tabset.activation.duration",
		metric.WithDescription("Time spent applying an activation"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		logger.Warn("creating activation histogram", "err", err)
	}
	return r
}

// OnTransition records t.
func (r *Recorder) OnTransition(t tabs.Transition) {
	event := ActivationEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		From:      t.From,
		Group:     t.To,
		Matched:   t.Matched,
		Panels:    t.PanelsShown,
		Controls:  t.ControlsActive,
		Focus:     t.Focus,
		Duration:  t.Duration,
		Source:    r.source,
	}
	if r.collector != nil {
		r.collector.Record(event)
	}

	attrs := metric.WithAttributes(
		attribute.String("tabset.group", t.To),
		attribute.Bool("tabset.matched", t.Matched),
		attribute.String("tabset.source", r.source),
	)
	ctx := context.Background()
	if r.activations != nil {
		r.activations.Add(ctx, 1, attrs)
	}
	if r.duration != nil {
		r.duration.Record(ctx, float64(t.Duration)/float64(time.Millisecond), attrs)
	}
}
