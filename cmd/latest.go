package cmd

import (
	"github.com/spf13/cobra"

	"kalimati/internal/dataset"
	"kalimati/internal/repository/prices"
	"kalimati/internal/storage"
	"kalimati/internal/usecases"
)

var latestCmd = &cobra.Command{
	Use:   "latest <commodity>",
	Short: "Print the most recent stored prices of a commodity as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postgresConnection := storage.MustNewPostgresConnection(logger, cnf.Database.ConnString(), cnf.Logger.ParsedGORMLevel)
		defer postgresConnection.MustClose()

		pricesRepository := prices.NewRepository(postgresConnection.DB)
		records, err := usecases.NewLatestPricesUseCase(logger, pricesRepository).Latest(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return dataset.EncodeCleaned(cmd.OutOrStdout(), records)
	},
}
