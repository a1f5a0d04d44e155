package usecases_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"kalimati/internal/dataset"
	"kalimati/internal/pipeline"
	"kalimati/internal/usecases"
	"kalimati/testing/suite"
)

type datasetWriterMock struct {
	mock.Mock
}

func (m *datasetWriterMock) WriteCleaned(path string, records []pipeline.Record) error {
	return m.Called(path, records).Error(0)
}

const sourceAHeader = "SN,Commodity,Date,Unit,Minimum,Maximum,Average"

func sourceA(path string) pipeline.SourceSpec {
	return pipeline.SourceSpec{Path: path, HasHeader: true, DropColumns: []string{"SN"}}
}

func sourceB(path string) pipeline.SourceSpec {
	return pipeline.SourceSpec{Path: path}
}

func Test_MergePricesUseCase_Merge(t *testing.T) {
	ctx, st := suite.New(t)
	store := dataset.NewFileStore()
	uc := usecases.NewMergePricesUseCase(st.Logger, store, store)

	t.Run("should merge two sources and keep one row per exact duplicate", func(t *testing.T) {
		dir := st.TempDir()

		// Given: The same record in both sources, with and without a serial column
		a := suite.WriteFile(t, dir, "a.csv",
			sourceAHeader,
			"1,Potato Red,2023-09-01,KG,Rs20,Rs25,Rs22",
			"2,Ginger,2023-09-01,KG,Rs150,Rs180,Rs165",
		)
		b := suite.WriteFile(t, dir, "b.csv",
			"Potato Red,2023-09-01,KG,Rs20,Rs25,Rs22",
			"Banana,2023-09-02,Per Dozen,Rs120,Rs140,Rs130",
			"Cauli Local,not-a-date,KG,Rs40,Rs50,Rs45",
			`Carrot(Local),2023-09-02,KG,"Rs$,abc",Rs50,Rs45`,
		)
		output := filepath.Join(dir, "cleaned.csv")

		// When: We merge them
		report, err := uc.Merge(ctx, usecases.MergeRequest{Sources: []pipeline.SourceSpec{sourceA(a), sourceB(b)}, Output: output})
		require.NoError(t, err)

		// Then: The output holds each surviving record once, normalized and in source order
		require.Equal(t, strings.Join([]string{
			"Commodity,Date,Unit,Minimum,Maximum,Average",
			"Potato Red,2023-09-01,Kg,20.0,25.0,22.0",
			"Ginger,2023-09-01,Kg,150.0,180.0,165.0",
			"Banana,2023-09-02,Per dozen,120.0,140.0,130.0",
			"",
		}, "\n"), suite.ReadFile(t, output))

		// And: The report accounts for every dropped row
		require.NotEmpty(t, report.RunID)
		require.Equal(t, []usecases.SourceReport{{Path: a, Rows: 2}, {Path: b, Rows: 4}}, report.Sources)
		require.Equal(t, 6, report.InputRows)
		require.Equal(t, 3, report.RetainedRows)
		require.Equal(t, 3, report.DroppedRows)
		require.Equal(t, map[string]int{"duplicate": 1, "invalid_date": 1, "invalid_price": 1}, report.DroppedBy)
		require.Equal(t, []string{"Kg", "Per dozen", "Per piece"}, report.Vocabulary)
	})

	t.Run("should produce byte identical output when run twice", func(t *testing.T) {
		dir := st.TempDir()
		a := suite.WriteFile(t, dir, "a.csv",
			sourceAHeader,
			"1,Potato Red,2023-09-01,KG,Rs20,Rs25,Rs22",
			"2,Potato Red,2023-09-01,KG,Rs20,Rs25,Rs22",
			"3,Lemon,2023-09-01,1 Pc,Rs8,Rs10,Rs9",
		)
		b := suite.WriteFile(t, dir, "b.csv", "Lime,2023-09-01,Each,Rs5,Rs6,Rs5.5")

		first := filepath.Join(dir, "first.csv")
		second := filepath.Join(dir, "second.csv")

		_, err := uc.Merge(ctx, usecases.MergeRequest{Sources: []pipeline.SourceSpec{sourceA(a), sourceB(b)}, Output: first})
		require.NoError(t, err)
		_, err = uc.Merge(ctx, usecases.MergeRequest{Sources: []pipeline.SourceSpec{sourceA(a), sourceB(b)}, Output: second})
		require.NoError(t, err)

		require.Equal(t, suite.ReadFile(t, first), suite.ReadFile(t, second))
	})

	t.Run("should keep a stray quote inside a field as text", func(t *testing.T) {
		dir := st.TempDir()

		// Given: A source row whose commodity carries an unescaped quote, followed by a valid row
		b := suite.WriteFile(t, dir, "b.csv",
			`Cabbage 12" Green,2023-09-01,KG,Rs20,Rs25,Rs22`,
			"Potato Red,2023-09-01,KG,Rs20,Rs25,Rs22",
		)
		output := filepath.Join(dir, "cleaned.csv")

		// When: We merge it
		report, err := uc.Merge(ctx, usecases.MergeRequest{Sources: []pipeline.SourceSpec{sourceB(b)}, Output: output})

		// Then: Both rows survive and the quote is written escaped
		require.NoError(t, err)
		require.Equal(t, 2, report.RetainedRows)
		require.Equal(t, strings.Join([]string{
			"Commodity,Date,Unit,Minimum,Maximum,Average",
			`"Cabbage 12"" Green",2023-09-01,Kg,20.0,25.0,22.0`,
			"Potato Red,2023-09-01,Kg,20.0,25.0,22.0",
			"",
		}, "\n"), suite.ReadFile(t, output))
	})

	t.Run("should equal the cleaned first source when the second is empty", func(t *testing.T) {
		dir := st.TempDir()
		a := suite.WriteFile(t, dir, "a.csv",
			sourceAHeader,
			"1,Potato Red,2023-09-01,KG,Rs20,Rs25,Rs22",
		)
		b := suite.WriteFile(t, dir, "b.csv")

		alone := filepath.Join(dir, "alone.csv")
		merged := filepath.Join(dir, "merged.csv")

		_, err := uc.Merge(ctx, usecases.MergeRequest{Sources: []pipeline.SourceSpec{sourceA(a)}, Output: alone})
		require.NoError(t, err)
		_, err = uc.Merge(ctx, usecases.MergeRequest{Sources: []pipeline.SourceSpec{sourceA(a), sourceB(b)}, Output: merged})
		require.NoError(t, err)

		require.Equal(t, suite.ReadFile(t, alone), suite.ReadFile(t, merged))
	})

	t.Run("should abort when a source is missing", func(t *testing.T) {
		dir := st.TempDir()
		a := suite.WriteFile(t, dir, "a.csv", sourceAHeader)
		output := filepath.Join(dir, "cleaned.csv")

		_, err := uc.Merge(ctx, usecases.MergeRequest{Sources: []pipeline.SourceSpec{sourceA(a), sourceB(filepath.Join(dir, "missing.csv"))}, Output: output})
		require.ErrorIs(t, err, dataset.ErrSourceNotFound)

		_, statErr := os.Stat(output)
		require.True(t, errors.Is(statErr, os.ErrNotExist), "output must not be created")
	})

	t.Run("should abort when a source does not fit the schema", func(t *testing.T) {
		dir := st.TempDir()
		a := suite.WriteFile(t, dir, "a.csv", sourceAHeader, "1,Potato Red,2023-09-01,KG,Rs20,Rs25,Rs22")
		b := suite.WriteFile(t, dir, "b.csv", "Potato Red,2023-09-01,KG")

		_, err := uc.Merge(ctx, usecases.MergeRequest{Sources: []pipeline.SourceSpec{sourceA(a), sourceB(b)}, Output: filepath.Join(dir, "cleaned.csv")})
		require.ErrorIs(t, err, pipeline.ErrSchemaMismatch)
	})

	t.Run("should abort on unknown units with the fail policy", func(t *testing.T) {
		dir := st.TempDir()
		b := suite.WriteFile(t, dir, "b.csv", "Mint,2023-09-01,Bundle,Rs10,Rs15,Rs12")

		_, err := uc.Merge(ctx, usecases.MergeRequest{Sources: []pipeline.SourceSpec{sourceB(b)}, Output: filepath.Join(dir, "cleaned.csv"), UnknownUnits: pipeline.UnknownUnitFail})
		require.ErrorIs(t, err, pipeline.ErrUnknownUnit)
	})

	t.Run("should report units kept outside the vocabulary", func(t *testing.T) {
		dir := st.TempDir()
		b := suite.WriteFile(t, dir, "b.csv",
			"Mint,2023-09-01,Bundle,Rs10,Rs15,Rs12",
			"Coriander Green,2023-09-01,Bundle,Rs20,Rs25,Rs22",
		)

		report, err := uc.Merge(ctx, usecases.MergeRequest{Sources: []pipeline.SourceSpec{sourceB(b)}, Output: filepath.Join(dir, "cleaned.csv")})
		require.NoError(t, err)
		require.Equal(t, map[string]int{"Bundle": 2}, report.PassedThrough)
		require.Equal(t, "keep", report.UnknownUnits)

		// And: The report can be stored as YAML
		reportPath := filepath.Join(dir, "report.yml")
		require.NoError(t, report.WriteYAML(reportPath))

		var stored map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(suite.ReadFile(t, reportPath)), &stored))
		require.Equal(t, report.RunID, stored["run_id"])
		require.Equal(t, 2, stored["retained_rows"])
	})

	t.Run("should fail without sources", func(t *testing.T) {
		_, err := uc.Merge(ctx, usecases.MergeRequest{Output: filepath.Join(st.TempDir(), "cleaned.csv")})
		require.ErrorIs(t, err, usecases.ErrNoSources)
	})

	t.Run("should surface an unwritable output", func(t *testing.T) {
		dir := st.TempDir()
		b := suite.WriteFile(t, dir, "b.csv", "Potato Red,2023-09-01,KG,Rs20,Rs25,Rs22")

		writer := &datasetWriterMock{}
		writer.On("WriteCleaned", "/read-only/cleaned.csv", mock.Anything).Return(os.ErrPermission).Once()

		failing := usecases.NewMergePricesUseCase(st.Logger, store, writer)

		_, err := failing.Merge(ctx, usecases.MergeRequest{Sources: []pipeline.SourceSpec{sourceB(b)}, Output: "/read-only/cleaned.csv"})
		require.ErrorIs(t, err, os.ErrPermission)
		writer.AssertExpectations(t)
	})
}
