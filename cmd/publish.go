package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/printforge/planner/app"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Run a planning pass and commit the plan to the canonical store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			if _, err := svc.CheckForUpdates(ctx); err != nil {
				return fmt.Errorf("sync before publish: %w", err)
			}
			res, err := svc.PlanProduction(time.Now())
			if err != nil {
				return err
			}
			pub := svc.PublishPlan(ctx, res.PhaseB.Cycles)
			switch {
			case pub.Success:
				fmt.Fprintf(cmd.OutOrStdout(), "published plan version %d: %d created, %d deleted\n",
					pub.PlanVersion, pub.CyclesCreated, pub.CyclesDeleted)
				return nil
			case pub.Deferred:
				fmt.Fprintf(cmd.OutOrStdout(), "publish deferred: %v\n", pub.Err)
				return nil
			default:
				return pub.Err
			}
		})
	},
}
