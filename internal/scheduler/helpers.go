package scheduler

import (
	"errors"

	"github.com/google/uuid"
)

const (
	CycleStatusStarted               = "STARTED"
	CycleStatusCompleted             = "COMPLETED"
	CycleStatusCompletedWithFailures = "COMPLETED_WITH_FAILURES"
	CycleStatusInterrupted           = "INTERRUPTED"
)

// ErrAlreadyRunning is returned by Start on a scheduler that is running.
var ErrAlreadyRunning = errors.New("scheduler is already running")

func newCycleID() string {
	return uuid.NewString()
}
