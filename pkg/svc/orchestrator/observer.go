package orchestrator

import "github.com/sirupsen/logrus"

// Observer receives provisioning lifecycle events. Renderers, the run
// journal, and the tracing layer all attach this way.
//
// Observers must not block for long; they run inline between state
// transitions. A panicking observer is recovered and logged, never allowed
// to change an orchestration result.
type Observer interface {
	// RunStarted fires once per descriptor before any step runs.
	RunStarted(run RunInfo)

	// StepCompleted fires after each recorded state transition.
	StepCompleted(run RunInfo, step Step)

	// RunCompleted fires once per descriptor with the finished report.
	RunCompleted(report Report)
}

func (o *Orchestrator) publishRunStarted(run RunInfo) {
	for _, observer := range o.observers {
		notifySafely(func() { observer.RunStarted(run) })
	}
}

func (o *Orchestrator) publishStepCompleted(run RunInfo, step Step) {
	for _, observer := range o.observers {
		notifySafely(func() { observer.StepCompleted(run, step) })
	}
}

func (o *Orchestrator) publishRunCompleted(report Report) {
	for _, observer := range o.observers {
		notifySafely(func() { observer.RunCompleted(report) })
	}
}

func notifySafely(publish func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logrus.Debugf("observer panicked: %v", recovered)
		}
	}()

	publish()
}
