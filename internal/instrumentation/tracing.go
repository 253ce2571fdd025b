package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for every jarvis span.
const TracerName = "github.com/abdulehsan/Jarvis"

// Span attribute keys.
const (
	SpanAttrTool      = "jarvis.tool"
	SpanAttrAlias     = "jarvis.alias"
	SpanAttrSurface   = "jarvis.surface"
	SpanAttrOutcome   = "jarvis.outcome"
	SpanAttrRounds    = "jarvis.rounds"
	SpanAttrService   = "google.service"
	SpanAttrOperation = "google.operation"
	SpanAttrProvider  = "llm.provider"
	SpanAttrModel     = "llm.model"
)

// SpanAttributeBuilder collects span attributes, skipping empty values.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{attrs: make([]attribute.KeyValue, 0, 4)}
}

func (b *SpanAttributeBuilder) add(key, value string) *SpanAttributeBuilder {
	if value != "" {
		b.attrs = append(b.attrs, attribute.String(key, value))
	}
	return b
}

func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	return b.add(SpanAttrTool, tool)
}

func (b *SpanAttributeBuilder) WithService(service string) *SpanAttributeBuilder {
	return b.add(SpanAttrService, service)
}

func (b *SpanAttributeBuilder) WithAlias(alias string) *SpanAttributeBuilder {
	return b.add(SpanAttrAlias, alias)
}

func (b *SpanAttributeBuilder) WithSurface(surface string) *SpanAttributeBuilder {
	return b.add(SpanAttrSurface, surface)
}

func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

func start(ctx context.Context, name string, kind trace.SpanKind, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(kind),
	)
}

// StartToolSpan starts the span of one tool call, named "tool.<name>".
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return start(ctx, "tool."+toolName, trace.SpanKindInternal,
		append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...))
}

// StartGoogleAPISpan starts a client span for one Google API request, named
// "google.<service>.<operation>".
func StartGoogleAPISpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return start(ctx, "google."+service+"."+operation, trace.SpanKindClient, []attribute.KeyValue{
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	})
}

// StartTurnSpan starts the root span of one agent turn. Finish it with
// EndTurnSpan.
func StartTurnSpan(ctx context.Context, surface string) (context.Context, trace.Span) {
	return start(ctx, "agent.turn", trace.SpanKindServer,
		NewSpanAttributeBuilder().WithSurface(surface).Build())
}

// EndTurnSpan records how the turn ended and ends the span.
func EndTurnSpan(span trace.Span, outcome string, rounds int, err error) {
	span.SetAttributes(
		attribute.String(SpanAttrOutcome, outcome),
		attribute.Int(SpanAttrRounds, rounds),
	)
	if err != nil {
		SetSpanError(span, err)
	} else {
		SetSpanSuccess(span)
	}
	span.End()
}

func StartLLMSpan(ctx context.Context, provider, model string) (context.Context, trace.Span) {
	return start(ctx, "llm."+provider, trace.SpanKindClient, []attribute.KeyValue{
		attribute.String(SpanAttrProvider, provider),
		attribute.String(SpanAttrModel, model),
	})
}

// SetSpanError records err on the span. A nil err is ignored.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace id of the span in ctx, or "".
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}
