package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/printforge/planner/app"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show plan store version and local sync state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			upd, err := svc.CheckForUpdates(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "plan version: %d\n", upd.Version)
			fmt.Fprintf(out, "state: %s\n", svc.Versions().State())
			if upd.Updated {
				fmt.Fprintf(out, "cache refreshed: %d cycles loaded\n", upd.CyclesLoaded)
			}
			return nil
		})
	},
}
