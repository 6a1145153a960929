// Package observability wires up OpenTelemetry tracing and metrics for
// the core: a span per Graph Builder pass and per CF Solver query, plus
// Prometheus-style counters/histograms, grounded on the teacher's
// startBuildSpan/recordBuildMetrics wiring in graph/builder.go.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Providers bundles the constructed tracer and meter providers plus
// instruments registered under the metric names the builder and solver
// use, so callers (cmd/cf) can set them as global and shut them down on
// exit. The builder and solver record through their own package-level
// instruments from the global meter, not through these fields.
type Providers struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider

	BuildDuration  metric.Float64Histogram
	NodesVisited   metric.Int64Counter
	BuildsStarted  metric.Int64Counter
}

// Option configures Setup.
type Option func(*setupOptions)

type setupOptions struct {
	stdoutTrace bool
}

// WithStdoutTracing enables a stdout span exporter, useful when no OTel
// collector is configured (local/dev visibility), matching the teacher's
// exporters/stdout/stdouttrace usage.
func WithStdoutTracing() Option {
	return func(o *setupOptions) { o.stdoutTrace = true }
}

// Setup constructs tracer and meter providers with a Prometheus exporter
// registered, and the instruments held in Providers. It
// sets both providers as the otel globals so package-level tracer/meter
// lookups elsewhere (internal/builder, internal/solver) pick them up.
func Setup(ctx context.Context, opts ...Option) (*Providers, error) {
	options := setupOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("observability: prometheus exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(promExporter))
	otel.SetMeterProvider(meterProvider)

	var traceOpts []trace.TracerProviderOption
	if options.stdoutTrace {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("observability: stdout trace exporter: %w", err)
		}
		traceOpts = append(traceOpts, trace.WithBatcher(exporter))
	}
	tracerProvider := trace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(tracerProvider)

	meter := meterProvider.Meter("github.com/contextfp/cf")

	buildDuration, err := meter.Float64Histogram(
		"cf_builder_duration_seconds",
		metric.WithDescription("Graph Builder wall-clock duration"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: build duration histogram: %w", err)
	}

	nodesVisited, err := meter.Int64Counter(
		"cf_solver_nodes_visited_total",
		metric.WithDescription("Total nodes visited across all CF Solver queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: nodes visited counter: %w", err)
	}

	buildsStarted, err := meter.Int64Counter(
		"cf_builder_builds_total",
		metric.WithDescription("Total Graph Builder invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: builds started counter: %w", err)
	}

	return &Providers{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		BuildDuration:  buildDuration,
		NodesVisited:   nodesVisited,
		BuildsStarted:  buildsStarted,
	}, nil
}

// Shutdown flushes and stops both providers. Errors from either are
// joined so callers see both failures, matching the common "best-effort
// shutdown, report everything" idiom for multi-resource teardown.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if err := p.TracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
	}
	if err := p.MeterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("observability: shutdown errors: %v", errs)
}
