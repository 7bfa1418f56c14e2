// Package telemetry emits OpenTelemetry spans for provisioning runs: one
// root span per run with one child span per completed step.
package telemetry

import (
	"context"
	"time"

	"github.com/devrig-sh/devrig/pkg/svc/orchestrator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	runSpanName  = "devrig.run"
	stepSpanName = "devrig.step"
)

// Tracer translates orchestration events into spans. It relies on the
// orchestrator's observer contract: events arrive inline on a single
// goroutine, so no locking guards the span maps.
type Tracer struct {
	tracer trace.Tracer

	runSpans map[string]trace.Span
	runCtxs  map[string]context.Context
}

var _ orchestrator.Observer = (*Tracer)(nil)

// NewTracer returns an observer that creates spans with the given tracer.
func NewTracer(tracer trace.Tracer) *Tracer {
	return &Tracer{
		tracer:   tracer,
		runSpans: make(map[string]trace.Span),
		runCtxs:  make(map[string]context.Context),
	}
}

// RunStarted opens the root span for a run.
func (t *Tracer) RunStarted(run orchestrator.RunInfo) {
	ctx, span := t.tracer.Start(context.Background(), runSpanName,
		trace.WithTimestamp(run.StartedAt),
		trace.WithAttributes(
			attribute.String("devrig.run_id", run.RunID),
			attribute.String("devrig.tool", run.Tool),
			attribute.String("devrig.platform", string(run.Platform)),
		),
	)

	t.runSpans[run.RunID] = span
	t.runCtxs[run.RunID] = ctx
}

// StepCompleted records one finished step as a child span. Steps complete
// atomically from the observer's view, so the span opens retroactively at
// now minus the step duration and ends immediately.
func (t *Tracer) StepCompleted(run orchestrator.RunInfo, step orchestrator.Step) {
	parentCtx, ok := t.runCtxs[run.RunID]
	if !ok {
		return
	}

	end := time.Now()

	attrs := []attribute.KeyValue{
		attribute.String("devrig.step", string(step.Name)),
		attribute.String("devrig.status", string(step.Status)),
	}

	if step.Reason != "" {
		attrs = append(attrs, attribute.String("devrig.reason", step.Reason))
	}

	if step.Attempts > 0 {
		attrs = append(attrs, attribute.Int("devrig.attempts", step.Attempts))
	}

	_, span := t.tracer.Start(parentCtx, stepSpanName,
		trace.WithTimestamp(end.Add(-step.Duration)),
		trace.WithAttributes(attrs...),
	)

	if step.Status == orchestrator.Failed {
		span.SetStatus(codes.Error, step.Reason)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End(trace.WithTimestamp(end))
}

// RunCompleted ends the root span with the terminal result.
func (t *Tracer) RunCompleted(report orchestrator.Report) {
	span, ok := t.runSpans[report.RunID]
	if !ok {
		return
	}

	delete(t.runSpans, report.RunID)
	delete(t.runCtxs, report.RunID)

	span.SetAttributes(attribute.String("devrig.result", string(report.Result)))

	if report.Result == orchestrator.Fatal {
		message := ""
		if report.Err != nil {
			message = report.Err.Error()
		}

		span.SetStatus(codes.Error, message)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End(trace.WithTimestamp(report.StartedAt.Add(report.Duration)))
}
