package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/colprof/internal/analysis"
)

var (
	profOutputPath string
	profDelimiter  string
	profDecimal    string
	profThousands  string
	profSampleRows int
	profMaxRows    int
	profSheetName  string
	profSheetIndex int
	profSets       []string
)

var profileCmd = &cobra.Command{
	Use:   "profile <files...>",
	Short: "Profile the columns of CSV/TSV/XLSX files",
	Long: `Profile every column of one or more tabular files. Files matching the same
glob are profiled independently; use --output with a single input.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if profOutputPath != "" && len(files) > 1 {
			return fmt.Errorf("--output accepts a single input, got %d files", len(files))
		}
		opt, err := tableOptions(cmd)
		if err != nil {
			return err
		}
		for i, path := range files {
			if len(files) > 1 {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Processing %s...\n", i+1, len(files), filepath.Base(path))
			}
			rep, err := profileTable(cmd.Context(), path, opt)
			if err != nil {
				return err
			}
			if err := emit(cmd, rep, profOutputPath); err != nil {
				return err
			}
		}
		return nil
	},
}

func tableOptions(cmd *cobra.Command) (analysis.Options, error) {
	opt := analysis.DefaultOptions()
	opt.Logger = log
	opt.Postprocessor = postprocessor()
	if cfg != nil {
		opt.Workers = cfg.Workers
		opt.BatchRows = cfg.BatchRows
		opt.MaxRows = cfg.MaxRows
		opt.SampleRows = cfg.SampleRows
		opt.TopK = cfg.TopK
		opt.HistogramBins = cfg.HistogramBins
		opt.QuantileGroups = cfg.QuantileGroups
	}
	if cmd.Flags().Changed("sample-rows") {
		opt.SampleRows = profSampleRows
	}
	if cmd.Flags().Changed("max-rows") {
		opt.MaxRows = profMaxRows
	}
	var err error
	if opt.Delimiter, err = parseDelimiter(profDelimiter); err != nil {
		return opt, err
	}
	if opt.DecimalSeparator, err = parseDecimal(profDecimal); err != nil {
		return opt, err
	}
	if opt.ThousandsSeparator, err = parseThousands(profThousands); err != nil {
		return opt, err
	}
	if opt.Profiler, err = optionTree("structured", profSets); err != nil {
		return opt, err
	}
	return opt, nil
}

func profileTable(ctx context.Context, path string, opt analysis.Options) (*analysis.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return analysis.AnalyzeXLSX(ctx, path, opt, profSheetName, profSheetIndex)
	}
	return analysis.AnalyzeCSV(ctx, path, opt)
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&profOutputPath, "output", "o", "", "optional path to write the profile")
	profileCmd.Flags().StringVar(&profDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'pipe'")
	profileCmd.Flags().StringVar(&profDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	profileCmd.Flags().StringVar(&profThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	profileCmd.Flags().IntVar(&profSampleRows, "sample-rows", 5, "number of sample rows to include")
	profileCmd.Flags().IntVar(&profMaxRows, "max-rows", 100000, "maximum rows to process (0 = unlimited)")
	profileCmd.Flags().StringVar(&profSheetName, "sheet-name", "", "XLSX: sheet name to profile")
	profileCmd.Flags().IntVar(&profSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	profileCmd.Flags().StringArrayVar(&profSets, "set", nil, "option override key=value, e.g. int.histogram_and_quantiles.is_enabled=false (repeatable)")
}
