package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/colprof/internal/options"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("COLPROF_BATCH_ROWS", "250")
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BatchRows != 250 {
		t.Fatalf("env override: batch_rows=%d", c.BatchRows)
	}
	if c.MaxRows != 100000 || c.OutputFormat != "md" || !c.CaseSensitive || c.LabelerMinWordPercent != 0.75 {
		t.Fatalf("defaults: %+v", c)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	for k, v := range map[string]string{"workers": "3", "output_format": "json", "case_sensitive": "false", "labeler_min_word_percent": "0.5"} {
		if err := c.Set(k, v); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	c.Options = map[string]any{"int.max.is_enabled": false}
	if err := Save(c, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Workers != 3 || got.OutputFormat != "json" || got.CaseSensitive || got.LabelerMinWordPercent != 0.5 {
		t.Fatalf("round trip: %+v", got)
	}
	if v, ok := got.OptionOverrides("structured")["int.max.is_enabled"]; !ok || v != false {
		t.Fatalf("options: %v", got.OptionOverrides("structured"))
	}
	if s, _ := got.Get("workers"); s != "3" {
		t.Fatalf("Get workers: %s", s)
	}
}

func TestSetRejectsBadValues(t *testing.T) {
	c := &Global{}
	for k, v := range map[string]string{"workers": "many", "output_format": "xml", "log_level": "loud", "nope": "1"} {
		if err := c.Set(k, v); err == nil {
			t.Fatalf("Set(%s, %s) should fail", k, v)
		}
	}
}

func TestOptionOverridesPerTree(t *testing.T) {
	c := &Global{Options: map[string]any{
		"data_labeler": map[string]any{"is_enabled": false},
		"structured":   map[string]any{"category": map[string]any{"is_enabled": false}},
		"unstructured": map[string]any{"data_labeler": map[string]any{"is_enabled": true}},
	}}
	s := c.OptionOverrides("structured")
	if s["data_labeler.is_enabled"] != false || s["category.is_enabled"] != false || len(s) != 2 {
		t.Fatalf("structured: %v", s)
	}
	u := c.OptionOverrides("unstructured")
	if u["data_labeler.is_enabled"] != true || len(u) != 1 {
		t.Fatalf("unstructured: %v", u)
	}
	if keys := c.OptionKeys("structured"); keys[0] != "category.is_enabled" {
		t.Fatalf("keys: %v", keys)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("workers: [\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyOptionsSkipsKeysOfTheOtherTree(t *testing.T) {
	c := &Global{Options: map[string]any{
		"int":  map[string]any{"min": map[string]any{"is_enabled": false}},
		"text": map[string]any{"words": map[string]any{"is_enabled": false}},
	}}

	u := options.NewUnstructuredOptions()
	if err := c.ApplyOptions(u, "unstructured"); err != nil {
		t.Fatalf("unstructured: %v", err)
	}
	if v, _ := u.Lookup("text.words.is_enabled"); v != false {
		t.Fatalf("text.words should be disabled, got %v", v)
	}

	s := options.NewStructuredOptions()
	if err := c.ApplyOptions(s, "structured"); err != nil {
		t.Fatalf("structured: %v", err)
	}
	if v, _ := s.Lookup("int.min.is_enabled"); v != false {
		t.Fatalf("int.min should be disabled, got %v", v)
	}
}

func TestApplyOptionsRejectsUnknownKeys(t *testing.T) {
	shared := &Global{Options: map[string]any{"bogus": map[string]any{"is_enabled": false}}}
	if err := shared.ApplyOptions(options.NewStructuredOptions(), "structured"); err == nil {
		t.Fatalf("expected error for a key neither tree has")
	}

	scoped := &Global{Options: map[string]any{
		"unstructured": map[string]any{"int": map[string]any{"is_enabled": false}},
	}}
	err := scoped.ApplyOptions(options.NewUnstructuredOptions(), "unstructured")
	var unknown *options.UnknownOptionError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected unknown option error, got %v", err)
	}
}

func TestApplyOptionsScopedKeysWin(t *testing.T) {
	c := &Global{Options: map[string]any{
		"data_labeler": map[string]any{"is_enabled": false},
		"unstructured": map[string]any{"data_labeler": map[string]any{"is_enabled": true}},
	}}
	u := options.NewUnstructuredOptions()
	if err := c.ApplyOptions(u, "unstructured"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !u.Sub("data_labeler").Enabled() {
		t.Fatalf("scoped override should win")
	}
}
