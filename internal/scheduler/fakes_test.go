package scheduler

import (
	"context"
	"time"

	"github.com/aleister1102/feedwatch/internal/config"
)

type fakeDetector struct {
	name    string
	kind    config.SubjectKind
	err     error
	calls   int
	onCheck func()
}

func (f *fakeDetector) Name() string             { return f.name }
func (f *fakeDetector) Kind() config.SubjectKind { return f.kind }

func (f *fakeDetector) Check(context.Context) error {
	f.calls++
	if f.onCheck != nil {
		f.onCheck()
	}
	return f.err
}

type observedCheck struct {
	subject string
	err     error
}

type fakeObserver struct {
	checks []observedCheck
	cycles int
	failed int
}

func (o *fakeObserver) ObserveCheck(subject string, _ config.SubjectKind, _ time.Time, err error) {
	o.checks = append(o.checks, observedCheck{subject: subject, err: err})
}

func (o *fakeObserver) ObserveCycle(_, _ time.Time, _, failed int) error {
	o.cycles++
	o.failed = failed
	return nil
}
