package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "docsmith"

// StartGenerationSpan starts a span for one document generation.
func StartGenerationSpan(ctx context.Context, agentID string, docType string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "generation",
		trace.WithAttributes(
			attribute.String("agent.id", agentID),
			attribute.String("document.type", docType),
		),
	)
}

// StartProviderSpan starts a span for one provider capability call.
func StartProviderSpan(ctx context.Context, providerName, capability string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "provider."+capability,
		trace.WithAttributes(
			attribute.String("provider.name", providerName),
		),
	)
}
