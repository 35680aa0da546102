package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"workorder-system/pkg/config"
	"workorder-system/pkg/database/postgresql"
	applogger "workorder-system/pkg/logger"
	"workorder-system/seeders"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var dsn string

	rootCmd := &cobra.Command{
		Use:           "seed",
		Short:         "Миграции и наполнение справочников для разработки",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "строка подключения к PostgreSQL (по умолчанию DATABASE_URL)")

	// connect открывает пул и отдаёт его команде.
	connect := func(cmd *cobra.Command, run func(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error) error {
		cfg := config.New()
		logger := applogger.NewLogger(cfg.Log)
		defer func() { _ = logger.Sync() }()

		if dsn == "" {
			dsn = cfg.Postgres.DSN
		}
		pool, err := postgresql.ConnectDB(cmd.Context(), dsn, logger)
		if err != nil {
			logger.Error("Не удалось подключиться к БД", zap.Error(err))
			return err
		}
		defer pool.Close()

		if err := run(cmd.Context(), pool, logger); err != nil {
			logger.Error("Команда завершилась с ошибкой", zap.String("command", cmd.Name()), zap.Error(err))
			return err
		}
		logger.Info("✅ Готово", zap.String("command", cmd.Name()))
		return nil
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции схемы справочников",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return connect(cmd, postgresql.Migrate)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "directories",
		Short: "Наполнить площадки, подразделения, оборудование, аномалии и планы ТО",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return connect(cmd, seeders.SeedDirectories)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Миграции, затем наполнение справочников",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return connect(cmd, func(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
				if err := postgresql.Migrate(ctx, pool, logger); err != nil {
					return err
				}
				return seeders.SeedDirectories(ctx, pool, logger)
			})
		},
	})

	return rootCmd
}
