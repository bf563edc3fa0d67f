package main

import (
	"context"
	"credit-engine/internal/config"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/infrastructure/database/postgres"
	"credit-engine/internal/infrastructure/logging"
	"credit-engine/internal/ingest"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "credit-engine-ingest",
		Short:   "Import legacy customer and loan workbooks into the credit engine database",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yml")

	rootCmd.AddCommand(importCmd("customers", "Import customer_data.xlsx", &configPath, (*ingest.Importer).ImportCustomers))
	rootCmd.AddCommand(importCmd("loans", "Import loan_data.xlsx", &configPath, (*ingest.Importer).ImportLoans))
	return rootCmd
}

func importCmd(use, short string, configPath *string, run func(*ingest.Importer, context.Context, io.Reader) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [file.xlsx]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			importer, logger, cleanup, err := newImporter(ctx, *configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("cannot open %s: %w", args[0], err)
			}
			defer f.Close()

			n, err := run(importer, ctx, f)
			if err != nil {
				return err
			}
			logger.InfoContext(ctx, "Import finished", slog.String("kind", use), slog.String("file", args[0]), slog.Int("rows", n))
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s imported\n", n, use)
			return nil
		},
	}
}

func newImporter(ctx context.Context, configPath string) (*ingest.Importer, *slog.Logger, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.NewLogger(cfg.Logger)

	if cfg.Database.RunMigrations {
		if err := postgres.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath, logger); err != nil {
			return nil, nil, nil, err
		}
	}

	pool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	policy := customer.DefaultLimitPolicy
	if cfg.Credit.LimitMultiplier > 0 {
		policy.Multiplier = cfg.Credit.LimitMultiplier
	}
	if cfg.Credit.BucketSize > 0 {
		policy.BucketSize = cfg.Credit.BucketSize
	}

	importer := ingest.NewImporter(
		postgres.NewCustomerRepository(pool, logger),
		postgres.NewLoanRepository(pool, logger),
		policy,
		logger,
	)
	return importer, logger, pool.Close, nil
}
