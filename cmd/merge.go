package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"kalimati/internal/dataset"
	"kalimati/internal/pipeline"
	"kalimati/internal/usecases"
)

var mergeFlags struct {
	sources      []string
	output       string
	unknownUnits string
	report       string
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge raw price exports into one cleaned CSV",
	Example: `  kalimati merge
  kalimati merge --source "data/a.csv?header&drop=SN" --source data/b.csv --output data/cleaned.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		req, err := mergeRequestFromFlags()
		if err != nil {
			return err
		}

		_, err = runMerge(cmd.Context(), req, reportPath())
		return err
	},
}

func init() {
	mergeCmd.Flags().StringArrayVar(&mergeFlags.sources, "source", nil, `source in merge order, "path[?header][&replace-header][&drop=SN]"; replaces configured sources`)
	mergeCmd.Flags().StringVar(&mergeFlags.output, "output", "", "cleaned CSV path (default from config)")
	mergeCmd.Flags().StringVar(&mergeFlags.unknownUnits, "unknown-units", "", "policy for unmapped units: keep, drop or fail (default from config)")
	mergeCmd.Flags().StringVar(&mergeFlags.report, "report", "", "write a YAML run report to this path (default from config)")
}

func mergeRequestFromFlags() (usecases.MergeRequest, error) {
	req := configuredMergeRequest()

	if len(mergeFlags.sources) > 0 {
		req.Sources = make([]pipeline.SourceSpec, 0, len(mergeFlags.sources))
		for _, value := range mergeFlags.sources {
			spec, err := parseSourceFlag(value)
			if err != nil {
				return usecases.MergeRequest{}, err
			}
			req.Sources = append(req.Sources, spec)
		}
	}

	if mergeFlags.output != "" {
		req.Output = mergeFlags.output
	}

	if mergeFlags.unknownUnits != "" {
		policy, err := pipeline.ParseUnknownUnitPolicy(mergeFlags.unknownUnits)
		if err != nil {
			return usecases.MergeRequest{}, fmt.Errorf("--unknown-units: %w", err)
		}
		req.UnknownUnits = policy
	}

	return req, nil
}

func configuredMergeRequest() usecases.MergeRequest {
	return usecases.MergeRequest{
		Sources:      cnf.Merger.SourceSpecs(),
		Output:       cnf.Merger.Output,
		UnknownUnits: cnf.Merger.ParsedUnknownUnits,
		Units:        cnf.Merger.Units,
	}
}

func reportPath() string {
	if mergeFlags.report != "" {
		return mergeFlags.report
	}
	return cnf.Merger.Report
}

// parseSourceFlag reads "path?header&replace-header&drop=SN,ID".
func parseSourceFlag(value string) (pipeline.SourceSpec, error) {
	path, rawQuery, _ := strings.Cut(value, "?")
	if path == "" {
		return pipeline.SourceSpec{}, fmt.Errorf("--source %q: empty path", value)
	}

	options, err := url.ParseQuery(rawQuery)
	if err != nil {
		return pipeline.SourceSpec{}, fmt.Errorf("--source %q: %w", value, err)
	}

	spec := pipeline.SourceSpec{Path: path}
	for key, values := range options {
		switch key {
		case "header":
			spec.HasHeader = true
		case "replace-header":
			spec.ReplaceHeader = true
		case "drop":
			for _, v := range values {
				spec.DropColumns = append(spec.DropColumns, strings.Split(v, ",")...)
			}
		default:
			return pipeline.SourceSpec{}, fmt.Errorf("--source %q: unknown option %q", value, key)
		}
	}

	return spec, nil
}

func runMerge(ctx context.Context, req usecases.MergeRequest, report string) (*usecases.MergeReport, error) {
	store := dataset.NewFileStore()
	mergeUC := usecases.NewMergePricesUseCase(logger, store, store)

	result, err := mergeUC.Merge(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("merge prices: %w", err)
	}

	if report != "" {
		if err = result.WriteYAML(report); err != nil {
			return nil, err
		}
	}

	return result, nil
}
