package kalimati

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type Interaction struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

// NewInteraction creates a new instance of Interaction with the market price page.
func NewInteraction(logger *slog.Logger, client *http.Client, baseURL string) *Interaction {
	return &Interaction{
		logger:  logger.With("component", "kalimati"),
		client:  client,
		baseURL: baseURL,
	}
}

// GetDailyPrices returns the price table published for the given day.
func (that *Interaction) GetDailyPrices(ctx context.Context, date time.Time) ([]DailyPrice, error) {
	log := that.logger.With("method", "GetDailyPrices", "date", date.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, that.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := that.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	prices, err := ParseDailyPrices(string(body), date)
	if err != nil {
		return nil, err
	}

	log.Info("daily prices fetched", "rows", len(prices))
	return prices, nil
}
