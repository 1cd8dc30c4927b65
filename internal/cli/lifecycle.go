package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/zksupervisor"
	"github.com/giantswarm/zksupervisor/internal/process"
)

const defaultWaitTimeout = 60 * time.Second

func newStartCmd(e *env) *cobra.Command {
	var (
		wait    bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Write the ZooKeeper configuration and start the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := e.open(ctx, openOptions{lock: true})
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.sup.Start(ctx); err != nil {
				return err
			}
			return finishStart(ctx, cmd.OutOrStdout(), s, wait, timeout)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait until the server is listed as running")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultWaitTimeout, "Upper bound for the control script and --wait")
	return cmd
}

// finishStart waits for the control script to return so its output reaches
// the activity log, then optionally for the server to appear.
func finishStart(ctx context.Context, out io.Writer, s *session, wait bool, timeout time.Duration) error {
	scriptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := waitFor(scriptCtx, s.monitor.Done(process.ZooKeeper)); err != nil {
		return fmt.Errorf("wait for control script: %w", err)
	}

	if !wait {
		fmt.Fprintln(out, "start requested")
		return nil
	}
	pid, err := s.sup.WaitRunning(ctx, timeout)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "zookeeper running (pid %s)\n", pid)
	return nil
}

func newStopCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the server, escalating to kill -9",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := e.open(ctx, openOptions{lock: true})
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.sup.KillInstance(ctx)
			if err != nil {
				return err
			}
			return reportKill(cmd.OutOrStdout(), res)
		},
	}
}

func reportKill(out io.Writer, res zksupervisor.KillResult) error {
	switch {
	case res.PID == "":
		fmt.Fprintln(out, "zookeeper not running")
	case res.Confirmed:
		fmt.Fprintf(out, "zookeeper stopped (pid %s, %d attempts)\n", res.PID, res.Attempts)
	default:
		return fmt.Errorf("zookeeper process %s still running after %d attempts", res.PID, res.Attempts)
	}
	return nil
}

func newRestartCmd(e *env) *cobra.Command {
	var (
		wait    bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Stop the server and start it again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := e.open(ctx, openOptions{lock: true})
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.sup.Restart(ctx)
			if err != nil {
				return err
			}
			if res.Running && !res.Confirmed {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: previous process %s was still listed\n", res.PID)
			}
			return finishStart(ctx, cmd.OutOrStdout(), s, wait, timeout)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait until the server is listed as running")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultWaitTimeout, "Upper bound for the control script and --wait")
	return cmd
}

func newCleanupCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Purge old snapshots and transaction logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := e.open(ctx, openOptions{lock: true})
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.sup.CleanupInstance(ctx); err != nil {
				return err
			}
			// The purge tool dies with this process, so wait for it.
			if err := waitFor(ctx, s.monitor.Done(process.Cleanup)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cleanup finished")
			return nil
		},
	}
}
