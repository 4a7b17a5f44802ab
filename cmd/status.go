package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ceald/senhas/internal/clock"
	"github.com/ceald/senhas/internal/gate"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether registration is open right now",
	Long: `Evaluate the configured window once and print the answer and when it
will next be checked. Useful to verify window settings before opening the
kiosk.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	c, err := loadedConfig()
	if err != nil {
		return err
	}

	provider, shutdownTracing, err := setupTracing(c)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	clk := clock.Real()
	policy, err := gate.NewPolicy(c.WindowSpec(), newClient(c, provider), clk)
	if err != nil {
		return fmt.Errorf("building window policy: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	monitor := gate.NewMonitor(policy, clk)
	status := monitor.Start(ctx)
	monitor.Stop()

	out := cmd.OutOrStdout()
	state := "closed"
	if status.Open {
		state = "open"
	}
	_, _ = fmt.Fprintf(out, "window:  %s (%s)\n", state, status.Policy)
	_, _ = fmt.Fprintf(out, "checked: %s\n", status.CheckedAt.Format(time.RFC3339))
	if next := policy.NextCheck(status.CheckedAt); !next.IsZero() {
		_, _ = fmt.Fprintf(out, "next:    %s\n", next.Format(time.RFC3339))
	}
	if status.Err != nil {
		_, _ = fmt.Fprintf(out, "error:   %v\n", status.Err)
	}
	return nil
}
