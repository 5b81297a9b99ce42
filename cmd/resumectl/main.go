// Command resumectl runs operator tasks against the resume database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/CalumRakk/resume-project/config"
	"github.com/CalumRakk/resume-project/pkg/database"
	"github.com/CalumRakk/resume-project/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resumectl",
	Short: "Operator tooling for the resume API",
	Long: `resumectl manages the resume API database: schema migrations, users,
the template catalog and refresh token revocations.

It reads the same environment (or .env file) as the API server.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(tokensCmd)
}

// connect loads the configuration and opens a small pool. Callers close it.
func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(logger.Options{Level: cfg.LogLevel})

	pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return cfg, pool, nil
}
