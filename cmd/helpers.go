package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/colprof/internal/analysis"
	"github.com/KaramelBytes/colprof/internal/labeler"
	"github.com/KaramelBytes/colprof/internal/options"
	"github.com/KaramelBytes/colprof/internal/utils"
)

// optionTree builds the named option tree ("structured" or "unstructured")
// with config overrides applied first, then repeated --set key=value flags.
func optionTree(tree string, sets []string) (*options.Group, error) {
	var g *options.Group
	switch tree {
	case "structured":
		g = options.NewStructuredOptions()
	case "unstructured":
		g = options.NewUnstructuredOptions()
	default:
		return nil, fmt.Errorf("unknown option tree: %s (use structured|unstructured)", tree)
	}
	if cfg != nil {
		if err := cfg.ApplyOptions(g, tree); err != nil {
			return nil, fmt.Errorf("config options: %w", err)
		}
	}
	overrides, err := parseSets(sets)
	if err != nil {
		return nil, err
	}
	if err := g.Set(overrides); err != nil {
		return nil, err
	}
	g.SetLogger(log)
	return g, nil
}

// postprocessor builds the label postprocessor from the labeler config keys.
func postprocessor() labeler.CharPostprocessor {
	post := labeler.CharPostprocessor{}
	if cfg != nil {
		post.UseWordLevelArgmax = cfg.LabelerWordArgmax
		post.WordLevelMinPercent = cfg.LabelerMinWordPercent
	}
	return post
}

// parseSets reads key=value pairs; values stay strings and are coerced by
// the option leaves.
func parseSets(sets []string) (map[string]any, error) {
	out := make(map[string]any, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q (use key=value)", s)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

func parseDecimal(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	case "":
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", s)
	}
}

func parseThousands(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ",":
		return ',', nil
	case ".":
		return '.', nil
	case "space", " ":
		return ' ', nil
	case "":
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", s)
	}
}

// emit renders rep and writes it to outPath, or to the command output when
// outPath is empty.
func emit(cmd *cobra.Command, rep analysis.Snapshotter, outPath string) error {
	format := analysis.FormatMarkdown
	if cfg != nil && cfg.OutputFormat != "" {
		format = cfg.OutputFormat
	}
	b, err := analysis.Render(rep, format)
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := utils.SafeWriteFile(outPath, b); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote profile to %s\n", outPath)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}

// expandInputs resolves globs and literal paths, dropping duplicates.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	return files, nil
}
