package builder

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/contextfp/cf/internal/semantic"
)

var (
	tracer = otel.Tracer("github.com/contextfp/cf/internal/builder")
	meter  = otel.Meter("github.com/contextfp/cf/internal/builder")

	// These are resolved against whichever MeterProvider is global at
	// instrument-creation time; go.opentelemetry.io/otel's global meter
	// forwards instruments created before observability.Setup runs to the
	// real provider once it is registered, the same way the package-level
	// tracer above does.
	buildDuration, _ = meter.Float64Histogram(
		"cf_builder_duration_seconds",
		metric.WithDescription("Graph Builder wall-clock duration"),
	)
	buildsStarted, _ = meter.Int64Counter(
		"cf_builder_builds_total",
		metric.WithDescription("Total Graph Builder invocations"),
	)
)

// Build translates data into a Context Graph and Type Registry via the
// three-pass construction spec §4.1 describes. It returns a non-nil error
// only for conditions upstream of this call (none currently originate
// here — semantic.Parse is where JSON parse failures surface); every
// other problem with the input accumulates into Result.Diagnostics.
func (b *Builder) Build(ctx context.Context, data *semantic.SemanticData) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Builder.Build", trace.WithAttributes(
		attribute.String("project_root", data.ProjectRoot),
		attribute.Int("documents", len(data.Documents)),
	))
	defer span.End()

	buildsStarted.Add(ctx, 1)

	state := newBuildState(data.ProjectRoot)
	state.result.Graph = state.graph
	state.result.Registry = state.registry

	slog.Debug("graph build starting", "project_root", data.ProjectRoot, "documents", len(data.Documents))

	b.pass1(ctx, state, data)
	b.pass2(ctx, state, data)
	b.pass25(ctx, state)
	b.pass3(ctx, state)

	state.graph.Freeze()

	elapsed := time.Since(state.startTime)
	state.result.Stats.DurationMicro = elapsed.Microseconds()
	state.result.Incomplete = len(state.result.Diagnostics) > 0 && state.result.Stats.NodesCreated == 0

	buildDuration.Record(ctx, elapsed.Seconds())

	slog.Debug("graph build finished",
		"nodes", state.result.Stats.NodesCreated,
		"edges", state.result.Stats.EdgesCreated,
		"types", state.result.Stats.TypesRegistered,
		"unresolved_calls", state.result.Stats.UnresolvedCalls,
		"diagnostics", len(state.result.Diagnostics),
	)

	span.SetAttributes(
		attribute.Int("nodes_created", state.result.Stats.NodesCreated),
		attribute.Int("edges_created", state.result.Stats.EdgesCreated),
		attribute.Int("diagnostics", len(state.result.Diagnostics)),
	)

	return state.result, nil
}
