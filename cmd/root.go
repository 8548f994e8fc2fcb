// Package cmd holds the eventcheckin command tree.
package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"eventcheckin/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "eventcheckin",
	Short:         "Event registration and door check-in service",
	Long:          `eventcheckin serves the registration, ticket and check-in API and ships the tooling to migrate, seed and mint development tokens.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection string (env DATABASE_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")

	_ = viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("database-url"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, tokenCmd)
}

// SetVersion sets the version string reported by --version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		return err
	}
	return nil
}

// bootstrap loads configuration and a logger shared by every subcommand.
func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, config.NewLogger(cfg.Environment, cfg.LogLevel), nil
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
