package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-BayLedger/internal/config"
	"github.com/m04kA/SMC-BayLedger/pkg/logger"
)

// RootOptions глобальные флаги всех команд
type RootOptions struct {
	ConfigPath string
	EnvFile    string
}

// NewRootCommand создает корневую команду bayledger
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "bayledger",
		Short: "BayLedger - offline-first booking ledger for simulator bays",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env необязателен: переменные могут прийти из окружения
			if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", opts.EnvFile, err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config.toml", "path to TOML configuration")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to .env file with overrides")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))

	return cmd
}

// bootstrap загружает конфигурацию и создает логгер
func bootstrap(opts *RootOptions) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Info("Configuration loaded from %s", opts.ConfigPath)
	return cfg, log, nil
}
