package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/printforge/planner/app"
)

var (
	preloadDate  string
	preloadForce bool
)

var preloadCmd = &cobra.Command{
	Use:   "preload",
	Short: "Print the plate preload summary for tonight",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			date := time.Now()
			if preloadDate != "" {
				var err error
				if date, err = time.ParseInLocation("2006-01-02", preloadDate, time.Local); err != nil {
					return fmt.Errorf("invalid date %q: %w", preloadDate, err)
				}
			}
			res, err := svc.PlanProduction(date)
			if err != nil {
				return err
			}
			summary, err := svc.PreloadPlan(date, res.PhaseB.Cycles, preloadForce)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "preload for %s (%s strategy): %d needed, %d allocated, %d deferred\n",
				summary.Date.Format("2006-01-02"), summary.Strategy,
				summary.TotalNeeded, summary.TotalAllocated, summary.TotalDeferred)
			if summary.IsGloballyConstrained {
				fmt.Fprintln(out, "global plate pool is constrained")
			}
			for _, p := range summary.Printers {
				fmt.Fprintf(out, "  %s: load %d plates (%d wanted, %d deferred)\n",
					p.PrinterID, p.Allocated, p.Needed, p.Deferred)
			}
			return nil
		})
	},
}

func init() {
	preloadCmd.Flags().StringVar(&preloadDate, "date", "", "plan date (YYYY-MM-DD, default today)")
	preloadCmd.Flags().BoolVar(&preloadForce, "force", false, "recompute even if a cached decision exists")
}
