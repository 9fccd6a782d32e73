package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/applyr/applyr/internal/app"
	"github.com/applyr/applyr/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{Use: "applyr", Short: "Job application tracker backend"}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to optional .env file")
	cmd.AddCommand(newServeCommand(&envFile))
	cmd.AddCommand(newSweepCommand(&envFile))
	return cmd
}

func newServeCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
}

// sweep runs a single expired refresh token cleanup pass and exits. Useful
// as a cron job when the long-running sweeper is not wanted.
func newSweepCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired refresh tokens once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			ctx := context.Background()
			defer func() { _ = a.Observability.Shutdown(ctx) }()
			deleted, err := a.Auth.SweepExpiredRefreshTokens(ctx)
			if err != nil {
				return err
			}
			a.Logger.Info("sweep complete", "deleted", deleted)
			return nil
		},
	}
}
