package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/colprof/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set colprof configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		for _, k := range cfgpkg.Keys {
			v, _ := cfg.Get(k)
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
		if len(cfg.StopWords) > 0 {
			fmt.Fprintf(out, "stop_words: %d words\n", len(cfg.StopWords))
		}
		for _, tree := range []string{"structured", "unstructured"} {
			overrides := cfg.OptionOverrides(tree)
			for _, k := range cfg.OptionKeys(tree) {
				fmt.Fprintf(out, "options[%s].%s: %v\n", tree, k, overrides[k])
			}
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Reload so flag overrides are not persisted.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := c.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
