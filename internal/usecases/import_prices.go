package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"kalimati/internal/model"
	"kalimati/internal/pipeline"
)

const ImportBatchSize = 1000

type CleanedReader interface {
	ReadCleaned(path string) ([]pipeline.Record, error)
}

type ImportRepository interface {
	SavePrices(ctx context.Context, prices []*model.CommodityPrice) error
}

type ImportPricesUseCase struct {
	logger     *slog.Logger
	reader     CleanedReader
	repository ImportRepository
}

func NewImportPricesUseCase(logger *slog.Logger, reader CleanedReader, repository ImportRepository) *ImportPricesUseCase {
	return &ImportPricesUseCase{logger: logger.With("component", "import_prices"), reader: reader, repository: repository}
}

// Import loads a cleaned dataset into the database. Records sharing commodity, date and
// unit collapse to the last one, matching how the upsert resolves them across batches.
func (that *ImportPricesUseCase) Import(ctx context.Context, path string) (int, error) {
	log := that.logger.With("method", "Import", "path", path)

	records, err := that.reader.ReadCleaned(path)
	if err != nil {
		return 0, fmt.Errorf("read cleaned dataset: %w", err)
	}

	prices := toModels(records)
	if collapsed := len(records) - len(prices); collapsed > 0 {
		log.Warn("records with the same commodity, date and unit collapsed", "collapsed", collapsed)
	}

	for start := 0; start < len(prices); start += ImportBatchSize {
		end := min(start+ImportBatchSize, len(prices))

		if err = that.repository.SavePrices(ctx, prices[start:end]); err != nil {
			return start, fmt.Errorf("save prices batch %d-%d: %w", start, end, err)
		}
	}

	log.Info("prices imported", "records", len(records), "saved", len(prices))
	return len(prices), nil
}

type priceKey struct {
	commodity string
	date      string
	unit      string
}

func toModels(records []pipeline.Record) []*model.CommodityPrice {
	index := make(map[priceKey]int, len(records))
	prices := make([]*model.CommodityPrice, 0, len(records))

	for _, record := range records {
		price := &model.CommodityPrice{
			Commodity: record.Commodity,
			Date:      record.Date,
			Unit:      record.Unit,
			Minimum:   record.Minimum,
			Maximum:   record.Maximum,
			Average:   record.Average,
		}

		key := priceKey{commodity: record.Commodity, date: record.Date.Format(pipeline.DateLayout), unit: record.Unit}
		if i, ok := index[key]; ok {
			prices[i] = price
			continue
		}

		index[key] = len(prices)
		prices = append(prices, price)
	}

	return prices
}
