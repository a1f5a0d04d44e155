package cmd

import (
	"github.com/spf13/cobra"

	"kalimati/internal/dataset"
	"kalimati/internal/repository/prices"
	"kalimati/internal/storage"
	"kalimati/internal/usecases"
)

var importCmd = &cobra.Command{
	Use:   "import [cleaned.csv]",
	Short: "Load a cleaned CSV into the prices database",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cnf.Merger.Output
		if len(args) == 1 {
			path = args[0]
		}

		postgresConnection := storage.MustNewPostgresConnection(logger, cnf.Database.ConnString(), cnf.Logger.ParsedGORMLevel)
		defer postgresConnection.MustClose()

		postgresConnection.MustMigration()

		pricesRepository := prices.NewRepository(postgresConnection.DB)
		importUC := usecases.NewImportPricesUseCase(logger, dataset.NewFileStore(), pricesRepository)

		_, err := importUC.Import(cmd.Context(), path)
		return err
	},
}
