// Command admin runs maintenance tasks against the portal database.
package main

import (
	"context"
	"innovation-portal/internal/config"
	"innovation-portal/internal/db"
	"innovation-portal/internal/logger"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Innovation portal administration",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadConfig()
		logger.Setup(config.AppConfig.LogLevel, config.AppConfig.IsProduction())
	},
}

func init() {
	rootCmd.AddCommand(assignRoleCmd, revokeRoleCmd, transitionsCmd, seedCmd)
}

// connect opens the database for commands that need it.
func connect(ctx context.Context) error {
	if err := db.ConnectDb(); err != nil {
		return err
	}
	return db.Ping(ctx, db.AppDb)
}

func main() {
	defer db.CloseDb()
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("admin command failed")
		db.CloseDb()
		os.Exit(1)
	}
}
