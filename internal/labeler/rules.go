package labeler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// RulesFile is the file LoadRules reads from a labeler directory.
const RulesFile = "rules.yaml"

type ruleSpec struct {
	Label   string `yaml:"label"`
	Pattern string `yaml:"pattern"`
}

// LoadRules reads dir/rules.yaml, a list of {label, pattern} entries in
// priority order. A missing file yields DefaultRules.
func LoadRules(dir string) ([]Rule, error) {
	b, err := os.ReadFile(filepath.Join(dir, RulesFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultRules(), nil
		}
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var specs []ruleSpec
	if err := yaml.Unmarshal(b, &specs); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	rules := make([]Rule, 0, len(specs))
	for i, s := range specs {
		if s.Label == "" || s.Label == Background {
			return nil, fmt.Errorf("rule %d: invalid label %q", i, s.Label)
		}
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, s.Label, err)
		}
		rules = append(rules, Rule{Label: s.Label, Pattern: re})
	}
	return rules, nil
}
