package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/giantswarm/zksupervisor/internal/activity"
	"github.com/giantswarm/zksupervisor/internal/configstore"
	"github.com/giantswarm/zksupervisor/internal/escalation"
	"github.com/giantswarm/zksupervisor/internal/locator"
	"github.com/giantswarm/zksupervisor/internal/materialize"
	"github.com/giantswarm/zksupervisor/internal/netutil"
	"github.com/giantswarm/zksupervisor/internal/process"
	"github.com/giantswarm/zksupervisor/internal/state"
)

// purgeMainClass is the ZooKeeper entry point that deletes old snapshots and
// transaction logs.
const purgeMainClass = "org.apache.zookeeper.server.PurgeTxnLog"

// cleanupCompleted is logged when the purge task exits successfully.
const cleanupCompleted = "Cleanup task completed"

// Operation names used for metrics.
const (
	OpStart   = "start"
	OpKill    = "kill"
	OpCleanup = "cleanup"
	OpRestart = "restart"
)

// Operation results used for metrics.
const (
	ResultOK          = "ok"
	ResultNoop        = "noop"
	ResultError       = "error"
	ResultUnconfirmed = "unconfirmed"
)

// Monitor launches and tracks child processes. *process.Monitor satisfies it.
type Monitor interface {
	Launch(pt process.ProcessType, cmd *exec.Cmd, spec process.Spec) error
	Destroy(pt process.ProcessType) error
}

// Metrics records operation outcomes. A nil Metrics in Params records
// nothing.
type Metrics interface {
	ObserveOperation(operation, result string)
	ObserveKill(attempts int, confirmed bool)
}

type nopMetrics struct{}

func (nopMetrics) ObserveOperation(string, string) {}
func (nopMetrics) ObserveKill(int, bool)           {}

// Params holds the collaborators of a Supervisor. Store, State and Monitor
// are required.
type Params struct {
	Config  Config
	Store   configstore.Store
	State   state.Provider
	Monitor Monitor
	// Log receives operator-facing events. Nil discards them.
	Log     activity.Log
	Metrics Metrics
	// Terminator overrides the control script and kill -9 attempts used by
	// KillInstance.
	Terminator escalation.Terminator
	// Logger defaults to the package-level Logger().
	Logger *slog.Logger
	// Now stamps generated config files. Nil uses time.Now.
	Now func() time.Time
}

// KillResult describes the outcome of KillInstance.
type KillResult struct {
	// PID is the pid found before killing, empty if none was found.
	PID string
	// Running reports whether an instance was found before the kill.
	Running bool
	// Confirmed reports whether the instance is known to be gone afterwards.
	Confirmed bool
	// Attempts is the number of kill attempts made.
	Attempts int
}

// Status is a point-in-time view of the local instance.
type Status struct {
	Running bool
	PID     string
	// Server is this host's ensemble entry, nil in standalone mode.
	Server *state.ServerSpec
	// PathsValid reports whether every required path exists.
	PathsValid bool
	// ClientPort is the configured client port and ClientPortOpen whether
	// it accepts connections on the loopback interface.
	ClientPort     int
	ClientPortOpen bool
}

// Supervisor runs the lifecycle operations. Operations are not serialized
// against each other; callers that need mutual exclusion across processes
// use hostlock.
type Supervisor struct {
	cfg        Config
	store      configstore.Store
	state      state.Provider
	monitor    Monitor
	log        activity.Log
	metrics    Metrics
	terminator escalation.Terminator
	logger     *slog.Logger
	locator    *locator.Locator
	mat        *materialize.Materializer
}

// New validates p and returns a Supervisor.
func New(p Params) (*Supervisor, error) {
	var errs []error
	if err := p.Config.Validate(); err != nil {
		errs = append(errs, err)
	}
	if p.Store == nil {
		errs = append(errs, errors.New("config store must not be nil"))
	}
	if p.State == nil {
		errs = append(errs, errors.New("state provider must not be nil"))
	}
	if p.Monitor == nil {
		errs = append(errs, errors.New("monitor must not be nil"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid supervisor params: %w", err)
	}

	log := p.Log
	if log == nil {
		log = activity.Discard
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	lg := p.Logger
	if lg == nil {
		lg = Logger()
	}

	return &Supervisor{
		cfg:        p.Config,
		store:      p.Store,
		state:      p.State,
		monitor:    p.Monitor,
		log:        log,
		metrics:    metrics,
		terminator: p.Terminator,
		logger:     lg,
		locator: &locator.Locator{
			Command: p.Config.ListCommand,
			Args:    p.Config.ListArgs,
			Marker:  p.Config.ProcessMarker,
		},
		mat: &materialize.Materializer{Log: log, Now: p.Now},
	}, nil
}

// Start materializes the configuration and launches the control script. It
// does nothing when the configured paths are incomplete. Start does not wait
// for the server to come up; see WaitRunning.
func (s *Supervisor) Start(ctx context.Context) error {
	paths := s.state.Paths()
	if !paths.Valid() {
		s.logger.Debug("paths not valid; skipping start")
		s.metrics.ObserveOperation(OpStart, ResultNoop)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := configstore.InstanceConfig(s.store)
	if err := s.mat.Materialize(cfg, s.state.Us(), s.state.Servers(), paths); err != nil {
		s.metrics.ObserveOperation(OpStart, ResultError)
		return fmt.Errorf("start: %w", err)
	}

	cmd := exec.Command(paths.ControlScript, "start") //nolint:gosec // path from operator config
	cmd.Dir = paths.InstallDirectory
	err := s.monitor.Launch(process.ZooKeeper, cmd, process.Spec{
		Mode:    process.ModeLeaveRunning,
		Streams: process.StreamsBoth,
	})
	if err != nil {
		s.metrics.ObserveOperation(OpStart, ResultError)
		return fmt.Errorf("start: %w", err)
	}

	s.log.Add(activity.Info, "Process started via: "+paths.ControlScript)
	s.metrics.ObserveOperation(OpStart, ResultOK)
	return nil
}

// KillInstance stops the running server, escalating to kill -9, and reports
// whether it is confirmed gone. Failing to confirm is reported in the result
// and the activity log, not as an error.
func (s *Supervisor) KillInstance(ctx context.Context) (KillResult, error) {
	s.log.Add(activity.Info, "Attempting to start/restart ZooKeeper")

	if err := s.monitor.Destroy(process.ZooKeeper); err != nil {
		s.logger.Warn("destroy tracked control script", "error", err)
	}

	pid, found, err := s.locator.FindPID(ctx)
	if err != nil {
		s.metrics.ObserveOperation(OpKill, ResultError)
		return KillResult{}, fmt.Errorf("kill: locate instance: %w", err)
	}
	if !found {
		s.log.Add(activity.Info, "jps didn't find instance - assuming ZK is not running")
		s.metrics.ObserveOperation(OpKill, ResultNoop)
		return KillResult{Confirmed: true}, nil
	}

	policy := escalation.Policy{
		Rounds:     s.cfg.KillRounds,
		WaitUnit:   s.cfg.KillWaitUnit,
		Terminator: s.terminatorFor(s.state.Paths()),
		Log:        s.log,
	}
	res, err := policy.KillAndConfirm(ctx, pid, s.locator.FindPID)
	result := KillResult{
		PID:       pid,
		Running:   true,
		Confirmed: err == nil && res.Outcome == escalation.Killed,
		Attempts:  res.Attempts,
	}
	if err != nil {
		s.metrics.ObserveOperation(OpKill, ResultError)
		return result, fmt.Errorf("kill: %w", err)
	}

	s.metrics.ObserveKill(result.Attempts, result.Confirmed)
	if result.Confirmed {
		s.metrics.ObserveOperation(OpKill, ResultOK)
	} else {
		s.metrics.ObserveOperation(OpKill, ResultUnconfirmed)
	}
	s.logger.Debug("kill finished", "pid", pid, "outcome", res.Outcome.String(), "attempts", res.Attempts)
	return result, nil
}

func (s *Supervisor) terminatorFor(paths state.Paths) escalation.Terminator {
	if s.terminator != nil {
		return s.terminator
	}
	return execTerminator{paths: paths}
}

// CleanupInstance launches the transaction log purge, keeping the newest
// CleanupMaxFiles snapshots. It does not wait for the purge to finish and
// does nothing when the configured paths are incomplete.
func (s *Supervisor) CleanupInstance(ctx context.Context) error {
	paths := s.state.Paths()
	if !paths.Valid() {
		s.logger.Debug("paths not valid; skipping cleanup")
		s.metrics.ObserveOperation(OpCleanup, ResultNoop)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := s.purgeCommand(paths, s.store.Int(configstore.CleanupMaxFiles))
	err := s.monitor.Launch(process.Cleanup, cmd, process.Spec{
		SuccessMarker: cleanupCompleted,
		Mode:          process.ModeDestroyOnInterrupt,
		Streams:       process.StreamsBoth,
	})
	if err != nil {
		s.metrics.ObserveOperation(OpCleanup, ResultError)
		return fmt.Errorf("cleanup: %w", err)
	}
	s.metrics.ObserveOperation(OpCleanup, ResultOK)
	return nil
}

func (s *Supervisor) purgeCommand(paths state.Paths, maxFiles int) *exec.Cmd {
	cmd := exec.Command(s.cfg.JavaBinary, //nolint:gosec // paths from operator config
		"-cp", paths.PurgeClassPath(),
		purgeMainClass,
		paths.LogDirectory,
		paths.DataDirectory,
		"-n", strconv.Itoa(maxFiles),
	)
	cmd.Dir = paths.InstallDirectory
	return cmd
}

// Restart kills the running instance and starts it again. The start is
// attempted even if the kill could not be confirmed.
func (s *Supervisor) Restart(ctx context.Context) (KillResult, error) {
	res, err := s.KillInstance(ctx)
	if err != nil {
		s.metrics.ObserveOperation(OpRestart, ResultError)
		return res, fmt.Errorf("restart: %w", err)
	}
	if err := s.Start(ctx); err != nil {
		s.metrics.ObserveOperation(OpRestart, ResultError)
		return res, fmt.Errorf("restart: %w", err)
	}
	s.metrics.ObserveOperation(OpRestart, ResultOK)
	return res, nil
}

// Status reports whether the server is listed and this host's role.
func (s *Supervisor) Status(ctx context.Context) (Status, error) {
	pid, found, err := s.locator.FindPID(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("status: %w", err)
	}
	port := s.store.Int(configstore.ClientPort)
	return Status{
		Running:        found,
		PID:            pid,
		Server:         s.state.Us(),
		PathsValid:     s.state.Paths().Valid(),
		ClientPort:     port,
		ClientPortOpen: netutil.Listening(ctx, netutil.LoopbackAddr(port), netutil.DefaultProbeTimeout, s.logger),
	}, nil
}

// WaitRunning polls the process listing until the server appears or timeout
// elapses, and returns its pid.
func (s *Supervisor) WaitRunning(ctx context.Context, timeout time.Duration) (string, error) {
	var pid string
	err := process.WaitReady(ctx, process.WaitReadyConfig{
		Interval: s.cfg.PollInterval,
		Timeout:  timeout,
		Name:     string(process.ZooKeeper),
		Logger:   s.logger,
	}, func(ctx context.Context, _ int) (bool, error) {
		p, found, err := s.locator.FindPID(ctx)
		if err != nil {
			return false, err
		}
		pid = p
		return found, nil
	})
	if err != nil {
		return "", err
	}
	return pid, nil
}

// RunCleanupLoop calls CleanupInstance every period until ctx is done.
// Failures are logged and the loop continues.
func (s *Supervisor) RunCleanupLoop(ctx context.Context, period time.Duration) {
	if period <= 0 {
		panic("zksupervisor: cleanup period must be positive")
	}
	wait.UntilWithContext(ctx, func(ctx context.Context) {
		if err := s.CleanupInstance(ctx); err != nil {
			s.logger.Warn("scheduled cleanup failed", "error", err)
		}
	}, period)
}
