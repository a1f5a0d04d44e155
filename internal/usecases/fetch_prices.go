package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kalimati/internal/interaction/kalimati"
)

type MarketInteraction interface {
	GetDailyPrices(ctx context.Context, date time.Time) ([]kalimati.DailyPrice, error)
}

type RawAppender interface {
	AppendRaw(path string, rows [][]string) error
}

type FetchPricesUseCase struct {
	logger      *slog.Logger
	interaction MarketInteraction
	appender    RawAppender
	output      string
}

func NewFetchPricesUseCase(logger *slog.Logger, interaction MarketInteraction, appender RawAppender, output string) *FetchPricesUseCase {
	return &FetchPricesUseCase{logger: logger.With("component", "fetch_prices"), interaction: interaction, appender: appender, output: output}
}

// Fetch appends the day's published prices to the raw source file as headerless rows.
func (that *FetchPricesUseCase) Fetch(ctx context.Context, date time.Time) (int, error) {
	log := that.logger.With("method", "Fetch", "date", date.Format("2006-01-02"))

	prices, err := that.interaction.GetDailyPrices(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("get daily prices: %w", err)
	}

	if len(prices) == 0 {
		log.Info("no prices published")
		return 0, nil
	}

	rows := make([][]string, len(prices))
	for i, price := range prices {
		rows[i] = price.Row()
	}

	if err = that.appender.AppendRaw(that.output, rows); err != nil {
		return 0, fmt.Errorf("append raw prices: %w", err)
	}

	log.Info("daily prices stored", "rows", len(rows), "output", that.output)
	return len(rows), nil
}
