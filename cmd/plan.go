package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/printforge/planner/app"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run a planning pass and print the resulting cycle set",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			res, err := svc.PlanProduction(time.Now())
			if err != nil {
				return err
			}
			printPlan(cmd, res)
			return nil
		})
	},
}

func printPlan(cmd *cobra.Command, res *app.PlanResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "printers needed: %d\n", res.PhaseA.TotalPrintersNeeded)
	for _, a := range res.PhaseA.Allocations {
		fmt.Fprintf(out, "project %s: %d cycles, due %s, risk %s, margin %.1fh\n",
			a.ProjectID, a.RequiredCycles, a.DueDate.Format("2006-01-02"), a.Risk, a.MarginHours)
	}
	fmt.Fprintf(out, "cycles planned: %d (mean utilization %.0f%%)\n",
		len(res.PhaseB.Cycles), res.PhaseB.MeanUtilization*100)
	for _, c := range res.PhaseB.Cycles {
		fmt.Fprintf(out, "  %s  %s -> %s  printer=%s project=%s color=%s\n",
			c.ID[:8], c.Start.Format("Mon 15:04"), c.End.Format("Mon 15:04"), c.PrinterID, c.ProjectID, c.Color)
	}
	for _, sk := range res.PhaseB.SkippedNights {
		fmt.Fprintf(out, "skipped: cycle=%s printer=%s reason=%s\n", sk.Cycle.ID[:8], sk.Cycle.PrinterID, sk.Reason)
	}
	for _, w := range append(res.PhaseA.Warnings, res.PhaseB.Warnings...) {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}
