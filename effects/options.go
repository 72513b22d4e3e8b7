package effects

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/on-the-ground/effect_ive_records/effects"

type Option func(*Interpreter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(it *Interpreter) {
		it.logger = logger
	}
}

// WithMetrics registers the interpreter counters with reg.
// It panics when the counters are already registered with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(it *Interpreter) {
		it.metrics = newMetrics(reg)
	}
}

// WithTracer sets the tracer of the remote call spans. The default is the
// tracer of the global otel provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(it *Interpreter) {
		it.tracer = tracer
	}
}

// WithClock sets the time source of the logged commit spans.
func WithClock(now func() time.Time) Option {
	return func(it *Interpreter) {
		it.now = now
	}
}

func defaultInterpreter() Interpreter {
	return Interpreter{
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
}
