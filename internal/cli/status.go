package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the server is running and this host's role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := e.open(ctx, openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.sup.Status(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if st.Running {
				fmt.Fprintf(out, "state:  running (pid %s)\n", st.PID)
			} else {
				fmt.Fprintln(out, "state:  stopped")
			}
			switch {
			case st.Server == nil:
				fmt.Fprintln(out, "role:   standalone")
			default:
				fmt.Fprintf(out, "role:   %s (id %d)\n", st.Server.Type, st.Server.ID)
			}
			fmt.Fprintf(out, "paths:  %s\n", validity(st.PathsValid))
			if st.ClientPortOpen {
				fmt.Fprintf(out, "client: listening on port %d\n", st.ClientPort)
			} else {
				fmt.Fprintf(out, "client: port %d closed\n", st.ClientPort)
			}
			return nil
		},
	}
}

func validity(ok bool) string {
	if ok {
		return "valid"
	}
	return "incomplete"
}
