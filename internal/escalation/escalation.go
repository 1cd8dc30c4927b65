package escalation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/giantswarm/zksupervisor/internal/activity"
)

// Defaults used when the corresponding Policy field is zero.
const (
	DefaultRounds   = 3
	DefaultWaitUnit = 100 * time.Millisecond
)

// Outcome is the verdict of KillAndConfirm.
type Outcome int

const (
	// Killed means the original pid is no longer listed.
	Killed Outcome = iota
	// StillRunning means every round finished with the pid still listed.
	StillRunning
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Killed:
		return "killed"
	case StillRunning:
		return "still-running"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Terminator performs the individual kill attempts. Both methods return the
// exit code of the command they ran; a non-zero code is not an error.
type Terminator interface {
	// Graceful asks the server to stop, typically "<control script> stop".
	Graceful(ctx context.Context) (int, error)
	// Force kills pid unconditionally, typically "kill -9 <pid>".
	Force(ctx context.Context, pid string) (int, error)
}

// LocateFunc re-reads the process table. It has the shape of
// locator.Locator.FindPID.
type LocateFunc func(ctx context.Context) (pid string, found bool, err error)

// Result describes one KillAndConfirm run.
type Result struct {
	Outcome  Outcome
	PID      string
	Attempts int
}

// Policy configures the escalation loop.
type Policy struct {
	Rounds     int
	WaitUnit   time.Duration
	Terminator Terminator
	Log        activity.Log
}

// KillAndConfirm tries to terminate pid. Round i runs Graceful when i is 0
// and Force otherwise, sleeps i*WaitUnit, and then locates the server again.
// A missing or different pid ends the loop with Killed. If every round ends
// with pid still listed the outcome is StillRunning, which is reported to the
// activity log but is not an error.
//
// Errors from the terminator or the locator abort the loop. Cancelling ctx
// during a wait or a kill attempt is logged and its error returned.
func (p *Policy) KillAndConfirm(ctx context.Context, pid string, locate LocateFunc) (Result, error) {
	if p.Terminator == nil {
		panic("zksupervisor: escalation terminator must not be nil")
	}
	if locate == nil {
		panic("zksupervisor: escalation locate func must not be nil")
	}

	rounds := p.Rounds
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	unit := p.WaitUnit
	if unit <= 0 {
		unit = DefaultWaitUnit
	}
	log := p.Log
	if log == nil {
		log = activity.Discard
	}

	res := Result{Outcome: StillRunning, PID: pid}
	for i := range rounds {
		res.Attempts = i + 1

		var code int
		var err error
		if i == 0 {
			code, err = p.Terminator.Graceful(ctx)
		} else {
			code, err = p.Terminator.Force(ctx, pid)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				log.Add(activity.Error, "Process interrupted while running: kill -9 "+pid)
				return res, fmt.Errorf("kill attempt %d: %w: %w", res.Attempts, ctxErr, err)
			}
			return res, fmt.Errorf("kill attempt %d: %w", res.Attempts, err)
		}
		log.Add(activity.Info, "Kill attempted result: "+strconv.Itoa(code))

		if err := sleep(ctx, time.Duration(i)*unit); err != nil {
			log.Add(activity.Error, "Process interrupted while running: kill -9 "+pid)
			return res, err
		}

		current, found, err := locate(ctx)
		if err != nil {
			return res, fmt.Errorf("confirm kill: %w", err)
		}
		if !found || current != pid {
			res.Outcome = Killed
			return res, nil
		}
	}

	log.Add(activity.Error, "Could not kill zookeeper process: "+pid)
	return res, nil
}

// sleep waits for d or until ctx is done. A zero d still observes an
// already-cancelled ctx.
func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
