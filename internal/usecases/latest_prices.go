package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"kalimati/internal/model"
	"kalimati/internal/pipeline"
)

type LatestPricesRepository interface {
	GetLatestPrices(ctx context.Context, commodity string) ([]*model.CommodityPrice, error)
}

type LatestPricesUseCase struct {
	logger     *slog.Logger
	repository LatestPricesRepository
}

func NewLatestPricesUseCase(logger *slog.Logger, repository LatestPricesRepository) *LatestPricesUseCase {
	return &LatestPricesUseCase{logger: logger.With("component", "latest_prices"), repository: repository}
}

// Latest returns the stored prices of a commodity on its most recent date, one record per unit.
func (that *LatestPricesUseCase) Latest(ctx context.Context, commodity string) ([]pipeline.Record, error) {
	log := that.logger.With("method", "Latest", "commodity", commodity)

	prices, err := that.repository.GetLatestPrices(ctx, commodity)
	if err != nil {
		return nil, fmt.Errorf("get latest prices: %w", err)
	}

	if len(prices) == 0 {
		log.Warn("no prices stored for commodity")
		return nil, nil
	}

	records := make([]pipeline.Record, 0, len(prices))
	for _, price := range prices {
		records = append(records, pipeline.Record{
			Commodity: price.Commodity,
			Date:      price.Date,
			Unit:      price.Unit,
			Minimum:   price.Minimum,
			Maximum:   price.Maximum,
			Average:   price.Average,
		})
	}

	log.Debug("latest prices found", "date", records[0].Date.Format(pipeline.DateLayout), "units", len(records))
	return records, nil
}
