package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/zksupervisor/internal/activity"
)

func newActivityCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Print the most recent activity log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.ActivityDB == "" {
				return errors.New("no activity database configured (set activityDB or --activity-db)")
			}
			ctx := cmd.Context()
			db, err := activity.OpenSQLite(ctx, e.cfg.ActivityDB, e.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.Recent(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, en := range entries {
				fmt.Fprintf(out, "%s %-5s %s\n", en.Time.Format(time.RFC3339), en.Severity, en.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "lines", "n", 20, "Number of entries to print")
	return cmd
}
