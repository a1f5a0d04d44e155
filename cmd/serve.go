package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"kalimati/internal/dataset"
	"kalimati/internal/repository/prices"
	"kalimati/internal/scheduler"
	"kalimati/internal/storage"
	"kalimati/internal/usecases"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Fetch, merge and import prices on the configured schedule",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logger.With("package", "cmd")
		ctx := cmd.Context()

		loc, err := marketLocation()
		if err != nil {
			return err
		}

		// Initialize database connection
		postgresConnection := storage.MustNewPostgresConnection(logger, cnf.Database.ConnString(), cnf.Logger.ParsedGORMLevel)
		defer postgresConnection.MustClose()

		postgresConnection.MustMigration()

		// Initialize usecases
		pricesRepository := prices.NewRepository(postgresConnection.DB)
		fetchUC := newFetchUseCase()
		importUC := usecases.NewImportPricesUseCase(logger, dataset.NewFileStore(), pricesRepository)

		// Initialize scheduler
		sched := scheduler.New(ctx, logger, loc)
		sched.Add(cnf.Schedule.Spec, "daily_prices", func(ctx context.Context) error {
			if _, err := fetchUC.Fetch(ctx, today(loc)); err != nil {
				return err
			}

			report, err := runMerge(ctx, configuredMergeRequest(), cnf.Merger.Report)
			if err != nil {
				return err
			}

			if _, err = importUC.Import(ctx, report.Output); err != nil {
				return fmt.Errorf("import prices: %w", err)
			}
			return nil
		})

		log.Info("starting scheduler", "spec", cnf.Schedule.Spec, "timezone", loc.String())
		return sched.Start()
	},
}
