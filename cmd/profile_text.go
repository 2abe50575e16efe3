package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/colprof/internal/analysis"
)

var (
	ptOutputPath    string
	ptField         string
	ptMaxRows       int
	ptCaseSensitive bool
	ptStopWords     []string
	ptSets          []string
)

var profileTextCmd = &cobra.Command{
	Use:   "profile-text <files...>",
	Short: "Profile free text: vocabulary, word counts and entity labels",
	Long: `Profile .txt, .md and .docx files one line (paragraph) at a time. Profiles
of all inputs are merged into a single report.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		opt, err := textOptions(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		var merged *analysis.TextReport
		for i, path := range files {
			if len(files) > 1 {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Processing %s...\n", i+1, len(files), filepath.Base(path))
			}
			rep, err := analysis.AnalyzeText(ctx, path, opt)
			if err != nil {
				return err
			}
			if merged == nil {
				merged = rep
				continue
			}
			if merged, err = merged.Merge(rep); err != nil {
				return fmt.Errorf("merge %s: %w", filepath.Base(path), err)
			}
		}
		return emit(cmd, merged, ptOutputPath)
	},
}

func textOptions(cmd *cobra.Command) (analysis.TextOptions, error) {
	opt := analysis.DefaultTextOptions()
	opt.Logger = log
	opt.Postprocessor = postprocessor()
	if cfg != nil {
		opt.Workers = cfg.Workers
		opt.BatchRows = cfg.BatchRows
		opt.MaxRows = cfg.MaxRows
		opt.TopK = cfg.TopK
		opt.CaseSensitive = cfg.CaseSensitive
		opt.StopWords = cfg.StopWords
	}
	opt.Field = ptField
	if cmd.Flags().Changed("max-rows") {
		opt.MaxRows = ptMaxRows
	}
	if cmd.Flags().Changed("case-sensitive") {
		opt.CaseSensitive = ptCaseSensitive
	}
	if cmd.Flags().Changed("stop-words") {
		opt.StopWords = ptStopWords
	}
	var err error
	if opt.Profiler, err = optionTree("unstructured", ptSets); err != nil {
		return opt, err
	}
	return opt, nil
}

func init() {
	rootCmd.AddCommand(profileTextCmd)
	profileTextCmd.Flags().StringVarP(&ptOutputPath, "output", "o", "", "optional path to write the profile")
	profileTextCmd.Flags().StringVar(&ptField, "field", "text", "profile name; reports merge only when names match")
	profileTextCmd.Flags().IntVar(&ptMaxRows, "max-rows", 100000, "maximum lines to process per file (0 = unlimited)")
	profileTextCmd.Flags().BoolVar(&ptCaseSensitive, "case-sensitive", true, "keep word case when counting")
	profileTextCmd.Flags().StringSliceVar(&ptStopWords, "stop-words", nil, "comma-separated stop words replacing the default list")
	profileTextCmd.Flags().StringArrayVar(&ptSets, "set", nil, "option override key=value, e.g. data_labeler.is_enabled=false (repeatable)")
}
