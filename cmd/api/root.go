package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"todo-api/internal/config"
	"todo-api/internal/database"
	"todo-api/internal/logger"
)

// commandContext はサブコマンド間で共有するフラグです。
type commandContext struct {
	configFile string
	envFile    string
}

// load は設定を読み込み、ロガーを初期化します。
func (c *commandContext) load(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: c.configFile,
		EnvFile:    c.envFile,
		Flags:      flags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Setup(cfg.Server.LogLevel)
	return cfg, nil
}

// openStore は設定を読み込んでデータベースを開き、スキーマを最新にします。
func (c *commandContext) openStore(ctx context.Context, flags *pflag.FlagSet) (*config.Config, *sql.DB, database.Dialect, error) {
	cfg, err := c.load(flags)
	if err != nil {
		return nil, nil, "", err
	}
	db, dialect, err := database.OpenAndMigrate(ctx, cfg.Database)
	if err != nil {
		return nil, nil, "", err
	}
	return cfg, db, dialect, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "todo-api",
		Short:         "Todo list HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.envFile, "env-file", "", "Path to a .env file (default .env)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newDumpCommand(ctx))

	return rootCmd
}
