// Package otelobs bridges observability.Provider onto OpenTelemetry tracing.
// Spans go to an OTel TracerProvider; logs and metrics are forwarded to a
// delegate Provider (usually slogobs) and log lines are also attached to the
// active OTel span as events.
package otelobs

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/leofalp/cascade/providers/observability"
)

// InstrumentationName identifies cascade spans in exported traces.
const InstrumentationName = "github.com/leofalp/cascade"

// Observer implements observability.Provider with OpenTelemetry spans.
type Observer struct {
	tracer   trace.Tracer
	delegate observability.Provider
}

var _ observability.Provider = (*Observer)(nil)

// New creates an Observer. A nil tp uses the global TracerProvider; a nil
// delegate drops logs and metrics.
func New(tp trace.TracerProvider, delegate observability.Provider) *Observer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Observer{
		tracer:   tp.Tracer(InstrumentationName),
		delegate: delegate,
	}
}

func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	ctx, span := o.tracer.Start(ctx, name, trace.WithAttributes(convert(attrs)...))
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() {
	s.span.End()
}

func (s *otelSpan) SetAttributes(attrs ...observability.Attribute) {
	s.span.SetAttributes(convert(attrs)...)
}

func (s *otelSpan) SetStatus(code observability.StatusCode, description string) {
	switch code {
	case observability.StatusOK:
		s.span.SetStatus(codes.Ok, "")
	case observability.StatusError:
		s.span.SetStatus(codes.Error, description)
	default:
		s.span.SetStatus(codes.Unset, "")
	}
}

func (s *otelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
}

func (s *otelSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(convert(attrs)...))
}

// --- METRICS ---

func (o *Observer) Counter(name string) observability.Counter {
	if o.delegate == nil {
		return nopCounter{}
	}
	return o.delegate.Counter(name)
}

func (o *Observer) Histogram(name string) observability.Histogram {
	if o.delegate == nil {
		return nopHistogram{}
	}
	return o.delegate.Histogram(name)
}

type nopCounter struct{}

func (nopCounter) Add(context.Context, int64, ...observability.Attribute) {}

type nopHistogram struct{}

func (nopHistogram) Record(context.Context, float64, ...observability.Attribute) {}

// --- LOGGING ---

func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	if o.delegate != nil {
		o.delegate.Trace(ctx, msg, attrs...)
	}
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.annotate(ctx, msg, attrs)
	if o.delegate != nil {
		o.delegate.Debug(ctx, msg, attrs...)
	}
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.annotate(ctx, msg, attrs)
	if o.delegate != nil {
		o.delegate.Info(ctx, msg, attrs...)
	}
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.annotate(ctx, msg, attrs)
	if o.delegate != nil {
		o.delegate.Warn(ctx, msg, attrs...)
	}
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.annotate(ctx, msg, attrs)
	if o.delegate != nil {
		o.delegate.Error(ctx, msg, attrs...)
	}
}

// annotate adds msg as an event on the span active in ctx. Trace-level
// messages are skipped since they fire per stream fragment.
func (o *Observer) annotate(ctx context.Context, msg string, attrs []observability.Attribute) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(msg, trace.WithAttributes(convert(attrs)...))
}

func convert(attrs []observability.Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			out = append(out, attribute.String(a.Key, v))
		case int:
			out = append(out, attribute.Int(a.Key, v))
		case int64:
			out = append(out, attribute.Int64(a.Key, v))
		case float64:
			out = append(out, attribute.Float64(a.Key, v))
		case bool:
			out = append(out, attribute.Bool(a.Key, v))
		case time.Duration:
			out = append(out, attribute.Int64(a.Key+".ms", v.Milliseconds()))
		case []string:
			out = append(out, attribute.StringSlice(a.Key, v))
		default:
			out = append(out, attribute.String(a.Key, fmt.Sprint(v)))
		}
	}
	return out
}
