// Package cmd implements the planner CLI.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/printforge/planner/app"
	"github.com/printforge/planner/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Print-farm production planning engine",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.AddCommand(planCmd, publishCmd, preloadCmd, statusCmd, serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// withService loads config, builds the service and hands it to fn together
// with a signal-aware context.
func withService(fn func(ctx context.Context, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "service close: %v\n", cerr)
		}
	}()
	return fn(ctx, svc)
}
