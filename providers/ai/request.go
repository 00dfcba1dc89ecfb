package ai

import (
	"context"
	"errors"

	"github.com/leofalp/cascade/internal/utils"
	"github.com/leofalp/cascade/providers/observability"
)

// RequestInfo identifies one vendor exchange for spans, logs and metrics.
type RequestInfo struct {
	Provider string
	Model    string
	Endpoint string
	Stream   bool
	Messages int
	Tools    int
}

func (info RequestInfo) attributes() []observability.Attribute {
	return []observability.Attribute{
		observability.String(observability.AttrLLMProvider, info.Provider),
		observability.String(observability.AttrLLMModel, info.Model),
		observability.String(observability.AttrLLMEndpoint, info.Endpoint),
		observability.Bool(observability.AttrLLMStream, info.Stream),
		observability.Int(observability.AttrRequestMessagesCount, info.Messages),
		observability.Int(observability.AttrRequestToolsCount, info.Tools),
	}
}

// StartRequest opens an llm.request span for info and returns the derived
// context plus a finish func. finish must be called exactly once with the
// usage of the exchange (nil when unknown) and its error.
func StartRequest(ctx context.Context, info RequestInfo) (context.Context, func(usage *Usage, err error)) {
	ctx, span := observability.StartSpan(ctx, observability.SpanLLMRequest, info.attributes()...)
	observer := observability.ObserverFromContext(ctx)
	timer := utils.NewTimer()
	providerAttr := observability.String(observability.AttrLLMProvider, info.Provider)

	if observer != nil {
		observer.Trace(ctx, "sending request", info.attributes()...)
	}

	return ctx, func(usage *Usage, err error) {
		elapsed := timer.Stop()
		span.SetAttributes(observability.Duration(observability.AttrDuration, elapsed))

		if usage != nil {
			span.AddEvent(observability.EventTokensReceived,
				observability.Int(observability.AttrLLMTokensPrompt, usage.InputTokens),
				observability.Int(observability.AttrLLMTokensCompletion, usage.OutputTokens),
				observability.Int(observability.AttrLLMTokensTotal, usage.Total()),
			)
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, err.Error())
		} else {
			span.SetStatus(observability.StatusOK, "")
		}
		span.End()

		if observer == nil {
			return
		}

		observer.Counter(observability.MetricRequestCount).Add(ctx, 1, providerAttr)
		observer.Histogram(observability.MetricRequestDuration).Record(ctx, float64(elapsed.Milliseconds()), providerAttr)
		if usage != nil {
			observer.Counter(observability.MetricTokensPrompt).Add(ctx, int64(usage.InputTokens), providerAttr)
			observer.Counter(observability.MetricTokensCompletion).Add(ctx, int64(usage.OutputTokens), providerAttr)
		}

		if err != nil {
			attrs := []observability.Attribute{providerAttr, observability.Error(err)}
			var aiErr *Error
			if errors.As(err, &aiErr) {
				attrs = append(attrs, observability.String(observability.AttrErrorKind, string(aiErr.Kind)))
			}
			observer.Error(ctx, "request failed", attrs...)
			return
		}

		attrs := []observability.Attribute{providerAttr, observability.Duration(observability.AttrDuration, elapsed)}
		if usage != nil {
			attrs = append(attrs, observability.String("usage", usage.Format()))
		}
		observer.Debug(ctx, "request finished", attrs...)
	}
}
