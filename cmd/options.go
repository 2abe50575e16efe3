package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	optTree string
	optSets []string
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Inspect and validate profiler option trees",
}

var optionsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective option tree as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := optionTree(optTree, optSets)
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(g.Properties())
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var optionsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective option tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := optionTree(optTree, optSets)
		if err != nil {
			return err
		}
		errs, warns := g.Check()
		out := cmd.OutOrStdout()
		for _, w := range warns {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		for _, e := range errs {
			fmt.Fprintf(out, "✗ %s\n", e)
		}
		if len(errs) > 0 {
			return fmt.Errorf("%d option error(s)", len(errs))
		}
		fmt.Fprintf(out, "✓ %s options are valid\n", optTree)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.AddCommand(optionsShowCmd)
	optionsCmd.AddCommand(optionsValidateCmd)
	optionsCmd.PersistentFlags().StringVar(&optTree, "tree", "structured", "option tree: structured|unstructured")
	optionsCmd.PersistentFlags().StringArrayVar(&optSets, "set", nil, "option override key=value (repeatable)")
}
