package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/printforge/planner/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /metrics and keep the plan cache fresh until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			go svc.WatchUpdates(ctx)
			return svc.RunPromServer(ctx)
		})
	},
}
