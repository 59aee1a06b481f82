package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yukikurage/todolist-api/internal/config"
	"github.com/yukikurage/todolist-api/internal/database"
	"github.com/yukikurage/todolist-api/internal/logging"
	"gorm.io/gorm"
)

var Version = "dev"

// openDatabase is a seam for tests.
var openDatabase = func(cfg *config.Config) (*gorm.DB, error) {
	return database.Connect(cfg)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "todoctl",
		Short:         "Administration tool for the to-do list API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(teamsCmd())

	return rootCmd
}

// connect loads the configuration and opens the database.
func connect() (*config.Config, *gorm.DB, logging.Logger, error) {
	cfg := config.Load()
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, db, logging.New(cfg.LogLevel), nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, _, err := connect()
			if err != nil {
				return err
			}

			if err := database.MigrateDatabase(cmd.Context(), db, cfg.DBDriver); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}
