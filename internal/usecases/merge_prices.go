package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"kalimati/internal/pipeline"
)

const ParallelLoadLimit = 4

var ErrNoSources = errors.New("no sources to merge")

type SourceReader interface {
	ReadSource(path string) ([][]string, error)
}

type DatasetWriter interface {
	WriteCleaned(path string, records []pipeline.Record) error
}

type MergeRequest struct {
	Sources      []pipeline.SourceSpec
	Output       string
	UnknownUnits pipeline.UnknownUnitPolicy
	// Units extends the built-in unit table.
	Units map[string]string
}

type SourceReport struct {
	Path string `yaml:"path"`
	Rows int    `yaml:"rows"`
}

// MergeReport summarizes a merge run. Dropped rows are only visible here as counts.
type MergeReport struct {
	RunID         string         `yaml:"run_id"`
	Output        string         `yaml:"output"`
	StartedAt     time.Time      `yaml:"started_at"`
	FinishedAt    time.Time      `yaml:"finished_at"`
	Sources       []SourceReport `yaml:"sources"`
	InputRows     int            `yaml:"input_rows"`
	RetainedRows  int            `yaml:"retained_rows"`
	DroppedRows   int            `yaml:"dropped_rows"`
	DroppedBy     map[string]int `yaml:"dropped_by"`
	UnknownUnits  string         `yaml:"unknown_units"`
	PassedThrough map[string]int `yaml:"passed_through_units,omitempty"`
	Vocabulary    []string       `yaml:"vocabulary"`
}

// WriteYAML stores the report next to the dataset for later inspection.
func (r *MergeReport) WriteYAML(path string) error {
	content, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err = os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	return nil
}

type MergePricesUseCase struct {
	logger *slog.Logger
	reader SourceReader
	writer DatasetWriter
}

func NewMergePricesUseCase(logger *slog.Logger, reader SourceReader, writer DatasetWriter) *MergePricesUseCase {
	return &MergePricesUseCase{logger: logger.With("component", "merge_prices"), reader: reader, writer: writer}
}

// Merge reconciles every source to the canonical schema, cleans the concatenated rows and
// writes the result. Any I/O or schema failure aborts the run before the output is touched.
func (that *MergePricesUseCase) Merge(ctx context.Context, req MergeRequest) (*MergeReport, error) {
	report := &MergeReport{RunID: uuid.NewString(), Output: req.Output, StartedAt: time.Now().UTC()}
	log := that.logger.With("method", "Merge", "run_id", report.RunID)

	if len(req.Sources) == 0 {
		return nil, ErrNoSources
	}

	policy := req.UnknownUnits
	if policy == "" {
		policy = pipeline.UnknownUnitKeep
	}

	loaded, total, err := that.loadSources(ctx, req.Sources)
	if err != nil {
		return nil, err
	}

	merged := make([]pipeline.RawRow, 0, total)
	for i, rows := range loaded {
		merged = append(merged, rows...)
		report.Sources = append(report.Sources, SourceReport{Path: req.Sources[i].Path, Rows: len(rows)})
		log.Info("source loaded", "path", req.Sources[i].Path, "rows", len(rows))
	}

	units := pipeline.NewUnitNormalizer(req.Units, policy)
	cleaner := pipeline.NewCleaner(units, pipeline.WithDropHook(func(row pipeline.RawRow, reason pipeline.DropReason, err error) {
		log.Debug("row dropped", "reason", reason, "row", row[:], "error", err)
	}))

	records, stats, err := cleaner.Clean(merged)
	if err != nil {
		return nil, fmt.Errorf("clean rows: %w", err)
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	if err = that.writer.WriteCleaned(req.Output, records); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	report.FinishedAt = time.Now().UTC()
	report.InputRows = stats.Input
	report.RetainedRows = stats.Retained
	report.DroppedRows = stats.DroppedTotal()
	report.UnknownUnits = string(policy)
	report.Vocabulary = units.Vocabulary()
	report.DroppedBy = make(map[string]int, len(stats.Dropped))
	for reason, n := range stats.Dropped {
		report.DroppedBy[string(reason)] = n
	}
	if len(stats.PassedThrough) > 0 {
		report.PassedThrough = stats.PassedThrough
	}

	log.Info("merge finished",
		"output", req.Output,
		"sources", len(req.Sources),
		"input_rows", report.InputRows,
		"retained_rows", report.RetainedRows,
		"dropped_rows", report.DroppedRows,
		"dropped_by", report.DroppedBy,
	)

	if len(report.PassedThrough) > 0 {
		passed := make([]string, 0, len(report.PassedThrough))
		for unit := range report.PassedThrough {
			passed = append(passed, unit)
		}
		sort.Strings(passed)
		log.Warn("units outside the vocabulary were kept", "units", passed)
	}

	return report, nil
}

// loadSources reads and reconciles sources concurrently. Results keep the source order.
func (that *MergePricesUseCase) loadSources(ctx context.Context, sources []pipeline.SourceSpec) ([][]pipeline.RawRow, int, error) {
	loaded := make([][]pipeline.RawRow, len(sources))
	total := atomic.NewInt64(0)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(ParallelLoadLimit)

	for i, source := range sources {
		i, source := i, source
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			rows, err := that.reader.ReadSource(source.Path)
			if err != nil {
				return fmt.Errorf("load source: %w", err)
			}

			reconciled, err := pipeline.Reconcile(source, rows)
			if err != nil {
				return fmt.Errorf("reconcile source: %w", err)
			}

			loaded[i] = reconciled
			total.Add(int64(len(reconciled)))
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, 0, err
	}

	return loaded, int(total.Load()), nil
}
