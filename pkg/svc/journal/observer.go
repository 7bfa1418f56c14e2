package journal

import (
	"context"

	"github.com/devrig-sh/devrig/pkg/svc/orchestrator"
	"github.com/sirupsen/logrus"
)

// Writer bridges orchestration events to the journal. Write failures are
// logged at debug level and swallowed: history must never break
// provisioning.
type Writer struct {
	journal *Journal
}

var _ orchestrator.Observer = (*Writer)(nil)

// NewWriter returns an observer that records each completed run.
func NewWriter(journal *Journal) *Writer {
	return &Writer{journal: journal}
}

// RunStarted is a no-op; only completed runs are journaled.
func (w *Writer) RunStarted(orchestrator.RunInfo) {}

// StepCompleted is a no-op; step detail stays in the rendered report.
func (w *Writer) StepCompleted(orchestrator.RunInfo, orchestrator.Step) {}

// RunCompleted appends the finished run to the journal.
func (w *Writer) RunCompleted(report orchestrator.Report) {
	entry := Entry{
		RunID:     report.RunID,
		Tool:      report.Tool,
		Platform:  string(report.Platform),
		Result:    string(report.Result),
		Steps:     len(report.Steps),
		StartedAt: report.StartedAt,
		Duration:  report.Duration,
	}

	err := w.journal.Append(context.Background(), entry)
	if err != nil {
		logrus.WithError(err).Debug("failed to record run in journal")
	}
}
