package labeler

import (
	"context"
	"regexp"
)

// Rule labels every character covered by a match of Pattern.
type Rule struct {
	Label   string
	Pattern *regexp.Regexp
}

// DefaultRules covers common structured entities, most specific first.
func DefaultRules() []Rule {
	return []Rule{
		{Label: "EMAIL_ADDRESS", Pattern: regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)},
		{Label: "URL", Pattern: regexp.MustCompile(`https?://\S+`)},
		{Label: "IPV4", Pattern: regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
		{Label: "SSN", Pattern: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
		{Label: "PHONE_NUMBER", Pattern: regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`)},
		{Label: "DATETIME", Pattern: regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2})?)?\b`)},
		{Label: "QUANTITY", Pattern: regexp.MustCompile(`\d+(?:\.\d+)?`)},
	}
}

// PatternClassifier labels characters with the first rule whose match
// covers them. Uncovered characters are Background (index 0).
type PatternClassifier struct {
	rules  []Rule
	labels map[int]string
}

// NewPatternClassifier builds a classifier from rules; nil means DefaultRules.
func NewPatternClassifier(rules []Rule) *PatternClassifier {
	if rules == nil {
		rules = DefaultRules()
	}
	labels := map[int]string{0: Background}
	for i, r := range rules {
		labels[i+1] = r.Label
	}
	return &PatternClassifier{rules: rules, labels: labels}
}

func (c *PatternClassifier) ReverseLabelMapping() map[int]string {
	out := make(map[int]string, len(c.labels))
	for k, v := range c.labels {
		out[k] = v
	}
	return out
}

func (c *PatternClassifier) Predict(ctx context.Context, rows []string) ([][]int, error) {
	out := make([][]int, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = c.predictRow(row)
	}
	return out, nil
}

func (c *PatternClassifier) predictRow(row string) []int {
	// runeAt maps byte offsets to rune positions.
	runeAt := make([]int, len(row)+1)
	for b := range runeAt {
		runeAt[b] = -1
	}
	n := 0
	for b := range row {
		runeAt[b] = n
		n++
	}
	runeAt[len(row)] = n
	for b := len(row) - 1; b >= 0; b-- {
		if runeAt[b] < 0 {
			runeAt[b] = runeAt[b+1]
		}
	}

	pred := make([]int, n)
	for ri, rule := range c.rules {
		for _, loc := range rule.Pattern.FindAllStringIndex(row, -1) {
			for p := runeAt[loc[0]]; p < runeAt[loc[1]]; p++ {
				if pred[p] == 0 {
					pred[p] = ri + 1
				}
			}
		}
	}
	return pred
}
