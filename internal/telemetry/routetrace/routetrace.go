// Package routetrace traces the negotiated-congestion outer loop (C6's
// RouteNets): one span per outer iteration, one child span per net routed
// within that iteration, tagged with the net name, sink count, and conflict
// count — the OTel analogue of the one-line-per-iteration progress table
// §6 describes. Adapted from the teacher's internal/telemetry/lookuptrace,
// which wraps individual DHT RPCs the same way this wraps individual net
// routes; there is no gRPC metadata propagation here since RouteNets is an
// in-process batch computation, not a distributed call.
package routetrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "fpgaroute/routetrace"

var tracer = otel.Tracer(tracerName)

// StartIteration opens a span for one pass of the outer negotiated-
// congestion loop (§4.6's routeNets step 1-6).
func StartIteration(ctx context.Context, iter int, nodeCost float64) (context.Context, trace.Span) {
	return tracer.Start(ctx, "route.iteration", trace.WithAttributes(
		attribute.Int("route.iter", iter),
		attribute.Float64("route.node_cost", nodeCost),
	))
}

// StartNet opens a span for routing (or re-routing) a single net within an
// iteration (§4.6's routeIteration, per net).
func StartNet(ctx context.Context, netName string, numSinks int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "route.net", trace.WithAttributes(
		attribute.String("route.net", netName),
		attribute.Int("route.sinks", numSinks),
	))
}

// EndIteration annotates the iteration span with the outcome §6's progress
// table reports: how many nets are still conflicting and how many wires
// are in the shared conflict set.
func EndIteration(span trace.Span, routedNets, conflictingNets, conflictingWires int) {
	span.SetAttributes(
		attribute.Int("route.routed_nets", routedNets),
		attribute.Int("route.conflicting_nets", conflictingNets),
		attribute.Int("route.conflicting_wires", conflictingWires),
	)
}
