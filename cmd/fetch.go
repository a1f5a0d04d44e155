package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"kalimati/internal/dataset"
	"kalimati/internal/interaction/kalimati"
	"kalimati/internal/pipeline"
	"kalimati/internal/usecases"
)

var fetchDate string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Append today's published market prices to the raw source file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		loc, err := marketLocation()
		if err != nil {
			return err
		}

		date := today(loc)
		if fetchDate != "" {
			if date, err = time.ParseInLocation(pipeline.DateLayout, fetchDate, loc); err != nil {
				return fmt.Errorf("--date: %w", err)
			}
		}

		_, err = newFetchUseCase().Fetch(cmd.Context(), date)
		return err
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDate, "date", "", "date recorded for the fetched prices, YYYY-MM-DD (default today)")
}

func newFetchUseCase() *usecases.FetchPricesUseCase {
	marketClient := &http.Client{Timeout: time.Minute}
	marketInteractor := kalimati.NewInteraction(logger, marketClient, cnf.Market.URL)

	return usecases.NewFetchPricesUseCase(logger, marketInteractor, dataset.NewFileStore(), cnf.Market.RawOutput)
}

func marketLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(cnf.Market.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load market timezone: %w", err)
	}
	return loc, nil
}

func today(loc *time.Location) time.Time {
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}
