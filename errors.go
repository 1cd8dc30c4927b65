package zksupervisor

import (
	"github.com/giantswarm/zksupervisor/internal/process"
	"github.com/giantswarm/zksupervisor/internal/sentinel"
	"github.com/giantswarm/zksupervisor/internal/state"
)

// Sentinel errors for error inspection with errors.Is.
const (
	// ErrClosed is returned by every Supervisor operation after Close.
	ErrClosed = sentinel.Error("supervisor is closed")

	// ErrInvalidServerSpec is returned by ParseServerList for malformed
	// entries.
	ErrInvalidServerSpec = state.ErrInvalidServerSpec

	// ErrTimeoutNotPositive is returned by WaitRunning for a non-positive
	// timeout.
	ErrTimeoutNotPositive = process.ErrTimeoutNotPositive
)
