package zksupervisor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/zksupervisor/internal/activity"
	"github.com/giantswarm/zksupervisor/internal/supervisor"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("zksupervisor: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("zksupervisor: %s must not be empty", name))
	}
}

// requireNonNil panics if isNil is true with a descriptive message.
func requireNonNil(name string, isNil bool) {
	if isNil {
		panic(fmt.Sprintf("zksupervisor: %s must not be nil", name))
	}
}

// options collects the settings applied by Option functions.
type options struct {
	supervisor.Config

	StopTimeout time.Duration
	ActivityLog activity.Log
	Metrics     supervisor.Metrics
	Monitor     supervisor.Monitor
	Logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		Config: supervisor.Config{
			ListCommand:   DefaultListCommand,
			ProcessMarker: DefaultProcessMarker,
			JavaBinary:    DefaultJavaBinary,
			KillRounds:    DefaultKillRounds,
			KillWaitUnit:  DefaultKillWaitUnit,
			PollInterval:  DefaultPollInterval,
		},
		StopTimeout: DefaultStopTimeout,
	}
}

// Option configures a Supervisor during construction via New.
//
// Several With* functions panic on invalid input. Option values are
// typically constants, so an invalid value is a programmer error.
type Option func(*options)

// WithListCommand sets the JVM process listing command and its arguments.
//
// Default: "jps".
//
// Panics if name is empty.
func WithListCommand(name string, args ...string) Option {
	requireNonEmpty("list command", name)
	return func(o *options) {
		o.ListCommand = name
		o.ListArgs = append([]string(nil), args...)
	}
}

// WithProcessMarker sets the main class name that identifies the server in
// the listing.
//
// Default: "QuorumPeerMain".
//
// Panics if marker is empty.
func WithProcessMarker(marker string) Option {
	requireNonEmpty("process marker", marker)
	return func(o *options) {
		o.ProcessMarker = marker
	}
}

// WithJavaBinary sets the java executable used to run the purge tool.
// Panics if path is empty.
func WithJavaBinary(path string) Option {
	requireNonEmpty("java binary", path)
	return func(o *options) {
		o.JavaBinary = path
	}
}

// WithKillRounds sets the number of kill attempts KillInstance makes before
// reporting the server as still running.
//
// Default: 3.
//
// Panics if n <= 0.
func WithKillRounds(n int) Option {
	requirePositive("kill rounds", n)
	return func(o *options) {
		o.KillRounds = n
	}
}

// WithKillWaitUnit sets the wait unit of the kill loop. Round i waits
// i*d before re-checking the process table.
//
// Default: 100ms.
//
// Panics if d <= 0.
func WithKillWaitUnit(d time.Duration) Option {
	requirePositive("kill wait unit", d)
	return func(o *options) {
		o.KillWaitUnit = d
	}
}

// WithPollInterval sets how often WaitRunning re-runs the listing.
// Panics if d <= 0.
func WithPollInterval(d time.Duration) Option {
	requirePositive("poll interval", d)
	return func(o *options) {
		o.PollInterval = d
	}
}

// WithStopTimeout bounds how long Close waits for a running purge task.
// Ignored when WithMonitor is used. Panics if d <= 0.
func WithStopTimeout(d time.Duration) Option {
	requirePositive("stop timeout", d)
	return func(o *options) {
		o.StopTimeout = d
	}
}

// WithActivityLog sets the sink for operator-facing events such as "Process
// started via: ..." and kill results. By default they are discarded.
// Panics if l is nil.
func WithActivityLog(l ActivityLog) Option {
	requireNonNil("activity log", l == nil)
	return func(o *options) {
		o.ActivityLog = l
	}
}

// WithMetrics sets the recorder for operation outcomes.
// Panics if m is nil.
func WithMetrics(m Metrics) Option {
	requireNonNil("metrics", m == nil)
	return func(o *options) {
		o.Metrics = m
	}
}

// WithMonitor replaces the built-in child process monitor. The caller owns
// the monitor; Close does not close it. Panics if m is nil.
func WithMonitor(m Monitor) Option {
	requireNonNil("monitor", m == nil)
	return func(o *options) {
		o.Monitor = m
	}
}

// WithLogger sets the diagnostic logger for this Supervisor, overriding the
// package-level logger set by SetLogger. Panics if l is nil.
func WithLogger(l *slog.Logger) Option {
	requireNonNil("logger", l == nil)
	return func(o *options) {
		o.Logger = l
	}
}
