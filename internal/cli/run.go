package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/zksupervisor/internal/metrics"
)

const (
	defaultCleanupInterval = 12 * time.Hour
	shutdownTimeout        = 5 * time.Second
)

func newRunCmd(e *env) *cobra.Command {
	var (
		startFirst      bool
		cleanupInterval time.Duration
		metricsAddr     string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Stay in the foreground, purging old data periodically and serving metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cleanupInterval <= 0 {
				return fmt.Errorf("--cleanup-interval must be positive, got %s", cleanupInterval)
			}
			ctx := cmd.Context()
			collector := metrics.New(true)
			s, err := e.open(ctx, openOptions{lock: true, metrics: collector})
			if err != nil {
				return err
			}
			defer s.Close()

			if startFirst {
				if err := s.sup.Start(ctx); err != nil {
					return err
				}
			}

			g, gctx := errgroup.WithContext(ctx)
			if metricsAddr != "" {
				ln, err := net.Listen("tcp", metricsAddr)
				if err != nil {
					return fmt.Errorf("listen %s: %w", metricsAddr, err)
				}
				e.logger.Info("serving metrics", "addr", ln.Addr().String())
				srv := &http.Server{Handler: collector.Handler(), ReadHeaderTimeout: 5 * time.Second}
				g.Go(func() error {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("metrics server: %w", err)
					}
					return nil
				})
				g.Go(func() error {
					<-gctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				})
			}
			g.Go(func() error {
				return s.sup.RunCleanupLoop(gctx, cleanupInterval)
			})

			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&startFirst, "start", false, "Start the server before entering the loop")
	cmd.Flags().DurationVar(&cleanupInterval, "cleanup-interval", defaultCleanupInterval, "Interval between purge runs")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address; empty disables")
	return cmd
}
