package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/colprof/internal/profiles"
)

// Output formats understood by Render.
const (
	FormatMarkdown = "md"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Snapshotter is implemented by reports that can be rendered.
type Snapshotter interface {
	Snapshot() map[string]any
	Markdown() string
}

// Render encodes a report in the given format.
func Render(r Snapshotter, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatMarkdown, "markdown":
		return []byte(r.Markdown()), nil
	case FormatJSON:
		b, err := json.MarshalIndent(r.Snapshot(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return append(b, '\n'), nil
	case FormatYAML, "yml":
		b, err := yaml.Marshal(r.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use md|json|yaml)", format)
	}
}

// Snapshot returns the report as nested maps, columns in file order.
func (r *Report) Snapshot() map[string]any {
	cols := make([]map[string]any, len(r.Columns))
	for i, c := range r.Columns {
		cols[i] = c.Profile()
	}
	return map[string]any{
		"run_id":    r.RunID,
		"file":      r.Name,
		"rows":      r.Rows,
		"processed": r.Processed,
		"columns":   cols,
		"warnings":  r.Warnings,
	}
}

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	}
	if r.Rows > 0 {
		if r.Processed > 0 && r.Processed < r.Rows {
			b.WriteString(fmt.Sprintf("Rows: ~%d (processed %d)\n", r.Rows, r.Processed))
		} else {
			b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
		}
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Columns)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Columns {
		total := c.SampleSize + c.NullCount
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.NullCount) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.DataType(), c.SampleSize, missPct))
		stats := c.Statistics()
		switch c.DataType() {
		case "int", "float":
			if mn, ok := num(stats, "min"); ok {
				mx, _ := num(stats, "max")
				b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g", mn, mx))
			}
			if mean, ok := num(stats, "mean"); ok {
				b.WriteString(fmt.Sprintf(", mean %.4g", mean))
			}
			if sd, ok := num(stats, "stddev"); ok {
				b.WriteString(fmt.Sprintf(", std %.4g", sd))
			}
		case "datetime":
			if c.DateTime != nil {
				if lo, hi, ok := c.DateTime.Range(); ok {
					b.WriteString(fmt.Sprintf(" — %s..%s (%s)", safeVal(lo), safeVal(hi), strings.Join(c.DateTime.Formats(), ", ")))
				}
				break
			}
			fallthrough
		case "text":
			if mn, ok := num(stats, "min"); ok {
				mx, _ := num(stats, "max")
				b.WriteString(fmt.Sprintf(" — length %.0f..%.0f", mn, mx))
			}
			if v, ok := stats["vocab"].([]string); ok {
				b.WriteString(fmt.Sprintf("; vocab %d chars", len(v)))
			}
		}
		if c.Categorical() {
			k := r.TopK
			if k <= 0 {
				k = 5
			}
			tops := c.Category.TopCategories(k)
			if len(tops) > 0 {
				b.WriteString("; top: ")
				writeTops(&b, tops)
				unique := len(c.Category.Categories())
				if unique > len(tops) {
					b.WriteString(fmt.Sprintf("; unique=%d", unique))
				}
			}
			if g, ok := c.Category.GiniImpurity(); ok {
				b.WriteString(fmt.Sprintf("; gini %.3f", g))
			}
		}
		b.WriteString("\n")
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n")
		b.WriteString("| ")
		for i := range r.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Columns {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	writeNotes(&b, r.Warnings)
	return b.String()
}

func writeTops(b *strings.Builder, tops []profiles.CategoryCount) {
	for i, kv := range tops {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
	}
}

func writeNotes(b *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString("\n[NOTES]\n")
	for _, w := range warnings {
		b.WriteString("- ")
		b.WriteString(w)
		b.WriteString("\n")
	}
}

func num(stats map[string]any, key string) (float64, bool) {
	v, ok := stats[key].(float64)
	return v, ok
}
