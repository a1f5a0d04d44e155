package usecases_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kalimati/internal/dataset"
	"kalimati/internal/interaction/kalimati"
	"kalimati/internal/pipeline"
	"kalimati/internal/usecases"
	"kalimati/testing/suite"
)

type marketInteractionMock struct {
	mock.Mock
}

func (m *marketInteractionMock) GetDailyPrices(ctx context.Context, date time.Time) ([]kalimati.DailyPrice, error) {
	args := m.Called(ctx, date)
	prices, _ := args.Get(0).([]kalimati.DailyPrice)
	return prices, args.Error(1)
}

func Test_FetchPricesUseCase_Fetch(t *testing.T) {
	ctx, st := suite.New(t)
	store := dataset.NewFileStore()

	t.Run("should append the published prices as a raw source that merges cleanly", func(t *testing.T) {
		dir := st.TempDir()
		raw := filepath.Join(dir, "raw.csv")
		date := suite.GetDateTime(t, "2024-06-14")

		// Given: The market publishes two prices
		interaction := &marketInteractionMock{}
		interaction.On("GetDailyPrices", ctx, date).Return([]kalimati.DailyPrice{
			{Commodity: "Tomato Big(Nepali)", Date: date, Unit: "Kg", Minimum: "Rs 60", Maximum: "Rs 70", Average: "Rs 65"},
			{Commodity: "Banana", Date: date, Unit: "Per Dozen", Minimum: "रू १२०", Maximum: "रू १४०", Average: "रू १३०"},
		}, nil).Once()

		// When: We fetch them
		count, err := usecases.NewFetchPricesUseCase(st.Logger, interaction, store, raw).Fetch(ctx, date)
		require.NoError(t, err)
		require.Equal(t, 2, count)

		// Then: Merging the raw file yields cleaned records
		output := filepath.Join(dir, "cleaned.csv")
		_, err = usecases.NewMergePricesUseCase(st.Logger, store, store).Merge(ctx, usecases.MergeRequest{
			Sources: []pipeline.SourceSpec{{Path: raw}},
			Output:  output,
		})
		require.NoError(t, err)

		require.Equal(t, strings.Join([]string{
			"Commodity,Date,Unit,Minimum,Maximum,Average",
			"Tomato Big(Nepali),2024-06-14,Kg,60.0,70.0,65.0",
			"Banana,2024-06-14,Per dozen,120.0,140.0,130.0",
			"",
		}, "\n"), suite.ReadFile(t, output))
		interaction.AssertExpectations(t)
	})

	t.Run("should not touch the raw file when nothing is published", func(t *testing.T) {
		raw := filepath.Join(st.TempDir(), "raw.csv")
		date := suite.GetDateTime(t, "2024-06-15")

		interaction := &marketInteractionMock{}
		interaction.On("GetDailyPrices", ctx, date).Return(nil, nil).Once()

		count, err := usecases.NewFetchPricesUseCase(st.Logger, interaction, store, raw).Fetch(ctx, date)
		require.NoError(t, err)
		require.Zero(t, count)

		_, err = store.ReadSource(raw)
		require.ErrorIs(t, err, dataset.ErrSourceNotFound)
	})

	t.Run("should surface a failed download", func(t *testing.T) {
		date := suite.GetDateTime(t, "2024-06-16")

		interaction := &marketInteractionMock{}
		interaction.On("GetDailyPrices", ctx, date).Return(nil, fmt.Errorf("bad status code: 503")).Once()

		_, err := usecases.NewFetchPricesUseCase(st.Logger, interaction, store, filepath.Join(st.TempDir(), "raw.csv")).Fetch(ctx, date)
		require.ErrorContains(t, err, "bad status code: 503")
	})
}
