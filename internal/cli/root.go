package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// NewRootCmd returns the zksupervisor command tree.
func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *env) {
	e := &env{kubeClient: newKubeClient}

	root := &cobra.Command{
		Use:   "zksupervisor",
		Short: "Supervise the local ZooKeeper server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&e.configPath, "config", "c", defaultConfigPath, "Path to the supervisor config file")
	flags.StringVar(&e.configMap, "configmap", "", "Read ZooKeeper settings from this ConfigMap (namespace/name)")
	flags.StringVar(&e.kubeconfig, "kubeconfig", "", "Kubeconfig used with --configmap; empty tries in-cluster config first")
	flags.StringVar(&e.lockFile, "lock-file", "", "Host lock file (overrides the config file)")
	flags.StringVar(&e.activityDB, "activity-db", "", "Activity database (overrides the config file)")
	flags.StringVar(&e.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.DurationVar(&e.lockTimeout, "lock-timeout", 30*time.Second, "How long to wait for the host lock")

	root.AddCommand(newStartCmd(e))
	root.AddCommand(newStopCmd(e))
	root.AddCommand(newRestartCmd(e))
	root.AddCommand(newCleanupCmd(e))
	root.AddCommand(newStatusCmd(e))
	root.AddCommand(newRunCmd(e))
	root.AddCommand(newActivityCmd(e))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, e
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}
