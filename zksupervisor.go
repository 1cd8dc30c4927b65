package zksupervisor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/giantswarm/zksupervisor/internal/activity"
	"github.com/giantswarm/zksupervisor/internal/configstore"
	"github.com/giantswarm/zksupervisor/internal/process"
	"github.com/giantswarm/zksupervisor/internal/state"
	"github.com/giantswarm/zksupervisor/internal/supervisor"
)

// Types shared with the internal packages.
type (
	// KillResult describes the outcome of KillInstance.
	KillResult = supervisor.KillResult
	// Status is a point-in-time view of the local instance.
	Status = supervisor.Status
	// Metrics records operation outcomes.
	Metrics = supervisor.Metrics
	// Monitor launches and tracks child processes.
	Monitor = supervisor.Monitor

	// Store supplies ports, file contents and extra zoo.cfg properties.
	Store = configstore.Store
	// StoreValues is an in-memory Store; zero fields use the defaults.
	StoreValues = configstore.Values

	// Provider supplies this host's role, the ensemble and the paths.
	Provider = state.Provider
	// StaticProvider is a Provider over fixed values.
	StaticProvider = state.StaticProvider
	// ServerSpec identifies one ensemble member.
	ServerSpec = state.ServerSpec
	// ServerList is the ordered set of ensemble members.
	ServerList = state.ServerList
	// Paths is the resolved set of installation locations.
	Paths = state.Paths
	// Locations are the inputs to ResolvePaths.
	Locations = state.Locations

	// ActivityLog receives operator-facing events.
	ActivityLog = activity.Log
	// ActivityBuffer is an in-memory ActivityLog.
	ActivityBuffer = activity.Buffer
	// Severity classifies activity log entries.
	Severity = activity.Severity
)

// Activity severities.
const (
	SeverityInfo  = activity.Info
	SeverityError = activity.Error
)

// ParseServerList parses "S:1:host1,O:2:host2" style server lists.
func ParseServerList(s string) (ServerList, error) {
	return state.ParseServerList(s)
}

// ResolvePaths locates the server jar and class path in an installation and
// fills in default directories.
func ResolvePaths(loc Locations) (Paths, error) {
	return state.ResolvePaths(loc)
}

// LoadStoreFile reads a YAML Store from path.
func LoadStoreFile(path string) (StoreValues, error) {
	return configstore.LoadFile(path)
}

// Supervisor manages the local ZooKeeper server.
//
// Operations are not serialized; callers must not run lifecycle operations
// concurrently for the same host.
type Supervisor interface {
	// Start writes the configuration files and launches the control script
	// with "start". It is a no-op when the installation paths are incomplete.
	Start(ctx context.Context) error

	// KillInstance stops the server: the control script with "stop" first,
	// then kill -9, re-checking the process listing after each attempt.
	// KillResult.Confirmed is false when the server was still listed after
	// the last attempt; that is not an error.
	KillInstance(ctx context.Context) (KillResult, error)

	// CleanupInstance launches the transaction log purge tool without
	// waiting for it. It is a no-op when the installation paths are
	// incomplete.
	CleanupInstance(ctx context.Context) error

	// Restart runs KillInstance and then Start.
	Restart(ctx context.Context) (KillResult, error)

	// Status reports whether the server is listed.
	Status(ctx context.Context) (Status, error)

	// WaitRunning blocks until the server is listed or timeout elapses and
	// returns its pid.
	WaitRunning(ctx context.Context, timeout time.Duration) (string, error)

	// RunCleanupLoop runs CleanupInstance every period until ctx is done.
	RunCleanupLoop(ctx context.Context, period time.Duration) error

	// Close stops a running purge task and releases resources. The server
	// itself keeps running. Subsequent calls return ErrClosed.
	Close() error
}

var _ Supervisor = (*supervisorWrapper)(nil)

// supervisorWrapper guards the internal supervisor with a closed flag and
// owns the built-in monitor.
type supervisorWrapper struct {
	sup     *supervisor.Supervisor
	monitor *process.Monitor // nil when the caller supplied one
	closed  atomic.Bool
}

// New creates a Supervisor reading configuration from store and roles and
// paths from provider.
func New(store Store, provider Provider, opts ...Option) (Supervisor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.Logger
	if logger == nil {
		logger = supervisor.Logger()
	}

	w := &supervisorWrapper{}
	monitor := o.Monitor
	if monitor == nil {
		w.monitor = process.NewMonitor(o.ActivityLog, logger, o.StopTimeout)
		monitor = w.monitor
	}

	sup, err := supervisor.New(supervisor.Params{
		Config:  o.Config,
		Store:   store,
		State:   provider,
		Monitor: monitor,
		Log:     o.ActivityLog,
		Metrics: o.Metrics,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	w.sup = sup
	return w, nil
}

func (w *supervisorWrapper) Start(ctx context.Context) error {
	if w.closed.Load() {
		return ErrClosed
	}
	return w.sup.Start(ctx)
}

func (w *supervisorWrapper) KillInstance(ctx context.Context) (KillResult, error) {
	if w.closed.Load() {
		return KillResult{}, ErrClosed
	}
	return w.sup.KillInstance(ctx)
}

func (w *supervisorWrapper) CleanupInstance(ctx context.Context) error {
	if w.closed.Load() {
		return ErrClosed
	}
	return w.sup.CleanupInstance(ctx)
}

func (w *supervisorWrapper) Restart(ctx context.Context) (KillResult, error) {
	if w.closed.Load() {
		return KillResult{}, ErrClosed
	}
	return w.sup.Restart(ctx)
}

func (w *supervisorWrapper) Status(ctx context.Context) (Status, error) {
	if w.closed.Load() {
		return Status{}, ErrClosed
	}
	return w.sup.Status(ctx)
}

func (w *supervisorWrapper) WaitRunning(ctx context.Context, timeout time.Duration) (string, error) {
	if w.closed.Load() {
		return "", ErrClosed
	}
	return w.sup.WaitRunning(ctx, timeout)
}

func (w *supervisorWrapper) RunCleanupLoop(ctx context.Context, period time.Duration) error {
	if w.closed.Load() {
		return ErrClosed
	}
	requirePositive("cleanup period", period)
	w.sup.RunCleanupLoop(ctx, period)
	return nil
}

func (w *supervisorWrapper) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if w.monitor != nil {
		w.monitor.Close()
	}
	return nil
}
