package prices_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"kalimati/internal/model"
	"kalimati/internal/repository/prices"
	"kalimati/testing/suite"
)

func Test_Repository_SavePrices(t *testing.T) {
	ctx, st := suite.New(t, suite.WithPostgres())
	repository := prices.NewRepository(st.GetDB())

	september1 := suite.GetDateTime(t, "2023-09-01")
	september2 := suite.GetDateTime(t, "2023-09-02")

	// Given: Prices for two days
	require.NoError(t, repository.SavePrices(ctx, []*model.CommodityPrice{
		{Commodity: "Potato Red", Date: september1, Unit: "Kg", Minimum: 20, Maximum: 25, Average: 22},
		{Commodity: "Potato Red", Date: september2, Unit: "Kg", Minimum: 21, Maximum: 26, Average: 23},
		{Commodity: "Ginger", Date: september2, Unit: "Kg", Minimum: 150, Maximum: 180, Average: 165},
	}))

	// When: The latest day is saved again with new prices
	require.NoError(t, repository.SavePrices(ctx, []*model.CommodityPrice{
		{Commodity: "Potato Red", Date: september2, Unit: "Kg", Minimum: 22, Maximum: 27, Average: 24},
	}))

	// Then: The price is updated in place
	count, err := repository.CountPrices(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	latest, err := repository.GetLatestPrices(ctx, "Potato Red")
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.Equal(t, "2023-09-02", latest[0].Date.Format("2006-01-02"))
	require.Equal(t, 24.0, latest[0].Average)

	// And: Saving nothing is a no-op
	require.NoError(t, repository.SavePrices(ctx, nil))
}
