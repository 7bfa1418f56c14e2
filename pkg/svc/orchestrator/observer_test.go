package orchestrator_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/devrig-sh/devrig/pkg/svc/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) RunStarted(run orchestrator.RunInfo) {
	r.events = append(r.events, "started:"+run.Tool)
}

func (r *recordingObserver) StepCompleted(run orchestrator.RunInfo, step orchestrator.Step) {
	r.events = append(r.events, fmt.Sprintf("step:%s:%s:%s", run.Tool, step.Name, step.Status))
}

func (r *recordingObserver) RunCompleted(report orchestrator.Report) {
	r.events = append(r.events, fmt.Sprintf("completed:%s:%s", report.Tool, report.Result))
}

type panickyObserver struct{}

func (panickyObserver) RunStarted(orchestrator.RunInfo) {
	panic("observer exploded")
}

func (panickyObserver) StepCompleted(orchestrator.RunInfo, orchestrator.Step) {
	panic("observer exploded")
}

func (panickyObserver) RunCompleted(orchestrator.Report) {
	panic("observer exploded")
}

func TestObservers_ReceiveLifecycleEvents(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{}

	svc := &fakeTool{}
	engine := orchestrator.New(newFakeCatalog(svc.descriptor("svc")), observer)

	_, err := engine.Provision(context.Background(), "svc")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"started:svc",
		"step:svc:install:Succeeded",
		"step:svc:start:Succeeded",
		"step:svc:readiness:Succeeded",
		"completed:svc:Success",
	}, observer.events)
}

func TestObservers_PanicsDoNotAffectResults(t *testing.T) {
	t.Parallel()

	svc := &fakeTool{}
	engine := orchestrator.New(newFakeCatalog(svc.descriptor("svc")), panickyObserver{})

	reports, err := engine.Provision(context.Background(), "svc")
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.Equal(t, orchestrator.Success, reports[0].Result)
}
