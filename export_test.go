package zksupervisor

import "time"

// ConfigSnapshot holds a copy of the option fields for test assertions.
type ConfigSnapshot struct {
	ListCommand   string
	ListArgs      []string
	ProcessMarker string
	JavaBinary    string
	KillRounds    int
	KillWaitUnit  time.Duration
	PollInterval  time.Duration
	StopTimeout   time.Duration
	HasActivity   bool
	HasMetrics    bool
	HasMonitor    bool
	HasLogger     bool
}

// ApplyOptionsForTesting applies opts to the defaults and returns a snapshot
// of the result.
func ApplyOptionsForTesting(opts ...Option) ConfigSnapshot {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return ConfigSnapshot{
		ListCommand:   o.ListCommand,
		ListArgs:      o.ListArgs,
		ProcessMarker: o.ProcessMarker,
		JavaBinary:    o.JavaBinary,
		KillRounds:    o.KillRounds,
		KillWaitUnit:  o.KillWaitUnit,
		PollInterval:  o.PollInterval,
		StopTimeout:   o.StopTimeout,
		HasActivity:   o.ActivityLog != nil,
		HasMetrics:    o.Metrics != nil,
		HasMonitor:    o.Monitor != nil,
		HasLogger:     o.Logger != nil,
	}
}
