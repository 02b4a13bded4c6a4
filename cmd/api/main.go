package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"taskTimeline/internal/app"
	"taskTimeline/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "timeline-api",
		Short:         "HTTP API задач и представлений календаря, диаграммы и доски",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := app.New(cfg)
			if err := a.Init(ctx); err != nil {
				a.Shutdown()
				return err
			}
			return a.Run(ctx)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "путь к config.yml")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
