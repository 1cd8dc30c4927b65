package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/giantswarm/zksupervisor"
	"github.com/giantswarm/zksupervisor/internal/activity"
	"github.com/giantswarm/zksupervisor/internal/configstore"
	"github.com/giantswarm/zksupervisor/internal/hostlock"
	"github.com/giantswarm/zksupervisor/internal/process"
)

// env holds the persistent flags and the config they resolve to.
type env struct {
	configPath  string
	configMap   string
	kubeconfig  string
	lockFile    string
	activityDB  string
	logLevel    string
	lockTimeout time.Duration

	kubeClient func(kubeconfig string) (kubernetes.Interface, error)

	cfg    fileConfig
	logger *slog.Logger
}

// load reads the config file and sets up logging. It runs before every
// subcommand.
func (e *env) load(cmd *cobra.Command) error {
	lvl, err := parseLevel(e.logLevel)
	if err != nil {
		return err
	}
	e.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
	zksupervisor.SetLogger(e.logger)

	required := cmd.Flags().Changed("config")
	cfg, err := loadFileConfig(e.configPath, required)
	if err != nil {
		return err
	}
	if e.lockFile != "" {
		cfg.LockFile = e.lockFile
	}
	if e.activityDB != "" {
		cfg.ActivityDB = e.activityDB
	}
	e.cfg = cfg
	return nil
}

// store returns the ZooKeeper settings, from the ConfigMap when --configmap
// is set and from the config file otherwise.
func (e *env) store(ctx context.Context) (zksupervisor.Store, error) {
	if e.configMap == "" {
		return e.cfg.ZooKeeper, nil
	}
	ns, name, ok := strings.Cut(e.configMap, "/")
	if !ok || ns == "" || name == "" {
		return nil, fmt.Errorf("invalid --configmap %q: want namespace/name", e.configMap)
	}
	client, err := e.kubeClient(e.kubeconfig)
	if err != nil {
		return nil, err
	}
	vals, err := configstore.LoadConfigMap(ctx, client, ns, name)
	if err != nil {
		return nil, err
	}
	return vals, nil
}

func newKubeClient(kubeconfig string) (kubernetes.Interface, error) {
	var (
		restCfg *rest.Config
		err     error
	)
	if kubeconfig == "" {
		restCfg, err = rest.InClusterConfig()
	}
	if kubeconfig != "" || errors.Is(err, rest.ErrNotInCluster) {
		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		rules.ExplicitPath = kubeconfig
		restCfg, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig: %w", err)
	}
	client, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create kubernetes client: %w", err)
	}
	return client, nil
}

// session is an opened supervisor plus the resources it depends on.
type session struct {
	sup      zksupervisor.Supervisor
	monitor  *process.Monitor
	activity *activity.SQLiteLog
	lock     *hostlock.Lock
}

type openOptions struct {
	lock    bool
	metrics zksupervisor.Metrics
}

// open builds a Supervisor from the loaded config. With opts.lock the host
// lock is held until Close.
func (e *env) open(ctx context.Context, opts openOptions) (_ *session, err error) {
	s := &session{}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if opts.lock {
		lockCtx, cancel := context.WithTimeout(ctx, e.lockTimeout)
		s.lock, err = hostlock.Acquire(lockCtx, e.cfg.LockFile, e.logger)
		cancel()
		if err != nil {
			return nil, err
		}
	}

	sinks := []activity.Log{activity.SlogLog{Logger: e.logger}}
	if e.cfg.ActivityDB != "" {
		s.activity, err = activity.OpenSQLite(ctx, e.cfg.ActivityDB, e.logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s.activity)
	}
	log := activity.Multi(sinks...)

	store, err := e.store(ctx)
	if err != nil {
		return nil, err
	}
	provider, err := e.cfg.provider()
	if err != nil {
		return nil, err
	}

	s.monitor = process.NewMonitor(log, e.logger, zksupervisor.DefaultStopTimeout)
	supOpts := []zksupervisor.Option{
		zksupervisor.WithActivityLog(log),
		zksupervisor.WithMonitor(s.monitor),
		zksupervisor.WithLogger(e.logger),
		zksupervisor.WithListCommand(e.cfg.ListCommand, e.cfg.ListArgs...),
		zksupervisor.WithProcessMarker(e.cfg.ProcessMarker),
		zksupervisor.WithJavaBinary(e.cfg.JavaBinary),
	}
	if opts.metrics != nil {
		supOpts = append(supOpts, zksupervisor.WithMetrics(opts.metrics))
	}
	s.sup, err = zksupervisor.New(store, provider, supOpts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// waitFor blocks until ch closes or ctx is done. A nil ch returns at once.
func waitFor(ctx context.Context, ch <-chan struct{}) error {
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases everything open acquired, in reverse order.
func (s *session) Close() {
	if s.sup != nil {
		_ = s.sup.Close()
	}
	if s.monitor != nil {
		s.monitor.Close()
	}
	if s.activity != nil {
		_ = s.activity.Close()
	}
	s.lock.Release()
}
