package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/colprof/internal/options"
	"github.com/KaramelBytes/colprof/internal/utils"
)

// DirName is the per-user state directory under $HOME.
const DirName = ".colprof"

// Global configuration structure.
type Global struct {
	Workers        int    `mapstructure:"workers" yaml:"workers"`
	BatchRows      int    `mapstructure:"batch_rows" yaml:"batch_rows"`
	MaxRows        int    `mapstructure:"max_rows" yaml:"max_rows"`
	SampleRows     int    `mapstructure:"sample_rows" yaml:"sample_rows"`
	TopK           int    `mapstructure:"top_k_categories" yaml:"top_k_categories"`
	HistogramBins  int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	QuantileGroups int    `mapstructure:"quantile_groups" yaml:"quantile_groups"`
	OutputFormat   string `mapstructure:"output_format" yaml:"output_format"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`

	// Text profiling
	CaseSensitive         bool     `mapstructure:"case_sensitive" yaml:"case_sensitive"`
	StopWords             []string `mapstructure:"stop_words" yaml:"stop_words,omitempty"`
	LabelerWordArgmax     bool     `mapstructure:"labeler_word_argmax" yaml:"labeler_word_argmax"`
	LabelerMinWordPercent float64  `mapstructure:"labeler_min_word_percent" yaml:"labeler_min_word_percent"`

	// Options holds dotted option overrides, e.g. "int.histogram_and_quantiles.is_enabled: false".
	// Keys under "structured" and "unstructured" apply to that tree only.
	Options map[string]any `mapstructure:"options" yaml:"options,omitempty"`
}

// Keys lists the settable scalar keys in display order.
var Keys = []string{
	"workers", "batch_rows", "max_rows", "sample_rows", "top_k_categories",
	"histogram_bins", "quantile_groups", "output_format", "log_level",
	"case_sensitive", "labeler_word_argmax", "labeler_min_word_percent",
}

func path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := utils.HomeDir(DirName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.colprof/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	p, err := path(cfgFile)
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(p, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("COLPROF")
	v.AutomaticEnv()

	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("batch_rows", 5000)
	v.SetDefault("max_rows", 100000)
	v.SetDefault("sample_rows", 5)
	v.SetDefault("top_k_categories", 5)
	v.SetDefault("histogram_bins", 10)
	v.SetDefault("quantile_groups", 4)
	v.SetDefault("output_format", "md")
	v.SetDefault("log_level", "warning")
	v.SetDefault("case_sensitive", true)
	v.SetDefault("labeler_word_argmax", false)
	v.SetDefault("labeler_min_word_percent", 0.75)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := utils.HomeDir(DirName)
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set assigns one scalar key from its string form.
func (c *Global) Set(key, val string) error {
	var err error
	switch key {
	case "workers":
		c.Workers, err = cast.ToIntE(val)
	case "batch_rows":
		c.BatchRows, err = cast.ToIntE(val)
	case "max_rows":
		c.MaxRows, err = cast.ToIntE(val)
	case "sample_rows":
		c.SampleRows, err = cast.ToIntE(val)
	case "top_k_categories":
		c.TopK, err = cast.ToIntE(val)
	case "histogram_bins":
		c.HistogramBins, err = cast.ToIntE(val)
	case "quantile_groups":
		c.QuantileGroups, err = cast.ToIntE(val)
	case "output_format":
		switch val {
		case "md", "json", "yaml":
			c.OutputFormat = val
		default:
			return fmt.Errorf("invalid output_format: %s (use md|json|yaml)", val)
		}
	case "log_level":
		if _, err := logrus.ParseLevel(val); err != nil {
			return fmt.Errorf("invalid log_level: %w", err)
		}
		c.LogLevel = val
	case "case_sensitive":
		c.CaseSensitive, err = cast.ToBoolE(val)
	case "labeler_word_argmax":
		c.LabelerWordArgmax, err = cast.ToBoolE(val)
	case "labeler_min_word_percent":
		c.LabelerMinWordPercent, err = cast.ToFloat64E(val)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

// Get returns the string form of one scalar key.
func (c *Global) Get(key string) (string, bool) {
	var v any
	switch key {
	case "workers":
		v = c.Workers
	case "batch_rows":
		v = c.BatchRows
	case "max_rows":
		v = c.MaxRows
	case "sample_rows":
		v = c.SampleRows
	case "top_k_categories":
		v = c.TopK
	case "histogram_bins":
		v = c.HistogramBins
	case "quantile_groups":
		v = c.QuantileGroups
	case "output_format":
		v = c.OutputFormat
	case "log_level":
		v = c.LogLevel
	case "case_sensitive":
		v = c.CaseSensitive
	case "labeler_word_argmax":
		v = c.LabelerWordArgmax
	case "labeler_min_word_percent":
		v = c.LabelerMinWordPercent
	default:
		return "", false
	}
	return cast.ToString(v), true
}

// OptionOverrides returns the option overrides for one tree ("structured" or
// "unstructured") as dotted keys. Top-level keys apply to both trees, keys
// nested under the tree name apply to that tree only and win on conflict.
func (c *Global) OptionOverrides(tree string) map[string]any {
	scoped, shared := c.splitOverrides(tree)
	for k, v := range scoped {
		shared[k] = v
	}
	return shared
}

func (c *Global) splitOverrides(tree string) (scoped, shared map[string]any) {
	flat := map[string]any{}
	flatten("", c.Options, flat)
	scoped, shared = map[string]any{}, map[string]any{}
	for k, v := range flat {
		head, rest, _ := strings.Cut(k, ".")
		switch head {
		case tree:
			if rest != "" {
				scoped[rest] = v
			}
		case "structured", "unstructured":
		default:
			shared[k] = v
		}
	}
	return scoped, shared
}

// ApplyOptions sets the configured overrides on g, the option tree named
// tree. Keys scoped to the tree must resolve in it. Unscoped keys are set
// only where g has the option; a key neither tree has is an error.
func (c *Global) ApplyOptions(g *options.Group, tree string) error {
	scoped, shared := c.splitOverrides(tree)
	keys := make([]string, 0, len(shared))
	for k := range shared {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		one := map[string]any{k: shared[k]}
		err := g.Clone().Set(one)
		var unknown *options.UnknownOptionError
		if errors.As(err, &unknown) {
			if other := otherTree(tree); other != nil && other.Clone().Set(one) == nil {
				continue
			}
			return err
		}
		if err != nil {
			return err
		}
		if err := g.Set(one); err != nil {
			return err
		}
	}
	return g.Set(scoped)
}

func otherTree(tree string) *options.Group {
	switch tree {
	case "structured":
		return options.NewUnstructuredOptions()
	case "unstructured":
		return options.NewStructuredOptions()
	}
	return nil
}

// flatten joins nested maps into dotted keys; viper splits dotted yaml keys
// into nested maps on read.
func flatten(prefix string, m map[string]any, out map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, err := cast.ToStringMapE(v); err == nil && len(sub) > 0 {
			flatten(key, sub, out)
			continue
		}
		out[key] = v
	}
}

// OptionKeys returns the override keys of OptionOverrides(tree), sorted.
func (c *Global) OptionKeys(tree string) []string {
	m := c.OptionOverrides(tree)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
