package supervisor

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the supervisor's fixed settings. Everything that may change
// between operations (ports, roles, paths) comes from the store and the
// state provider instead.
type Config struct {
	// ListCommand and ListArgs run the JVM process listing (jps).
	ListCommand string
	ListArgs    []string
	// ProcessMarker is the main class name identifying the server in the
	// listing.
	ProcessMarker string
	// JavaBinary runs the transaction log purge.
	JavaBinary string

	// KillRounds is the number of kill attempts before giving up.
	KillRounds int
	// KillWaitUnit is multiplied by the round index to get the wait before
	// re-checking the process table.
	KillWaitUnit time.Duration

	// PollInterval is how often WaitRunning re-runs the listing.
	PollInterval time.Duration
}

// Validate checks all Config invariants and returns an error describing
// every violation found.
func (c Config) Validate() error {
	var errs []error

	if c.ListCommand == "" {
		errs = append(errs, errors.New("list command must not be empty"))
	}
	if c.ProcessMarker == "" {
		errs = append(errs, errors.New("process marker must not be empty"))
	}
	if c.JavaBinary == "" {
		errs = append(errs, errors.New("java binary must not be empty"))
	}
	if c.KillRounds <= 0 {
		errs = append(errs, fmt.Errorf("kill rounds must be greater than 0, got %d", c.KillRounds))
	}
	if c.KillWaitUnit <= 0 {
		errs = append(errs, fmt.Errorf("kill wait unit must be greater than 0, got %s", c.KillWaitUnit))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be greater than 0, got %s", c.PollInterval))
	}

	return errors.Join(errs...)
}
