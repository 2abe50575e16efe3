package analysis

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/colprof/internal/labeler"
	"github.com/KaramelBytes/colprof/internal/options"
	"github.com/KaramelBytes/colprof/internal/parser"
	"github.com/KaramelBytes/colprof/internal/profiles"
)

// TextOptions controls analysis of free text, one row per line.
type TextOptions struct {
	// Field names the text profile; reports merge only when fields match.
	Field     string
	MaxRows   int
	BatchRows int
	Workers   int
	// CaseSensitive keeps word case when tallying.
	CaseSensitive bool
	// StopWords replaces the default list when non-nil.
	StopWords []string
	// Profiler holds UnstructuredOptions; nil means defaults.
	Profiler *options.Group
	// Classifier and Postprocessor default to the pattern labeler.
	Classifier    labeler.Classifier
	Postprocessor labeler.Postprocessor
	TopK          int
	Logger        logrus.FieldLogger
}

// DefaultTextOptions returns reasonable defaults for text analysis.
func DefaultTextOptions() TextOptions {
	d := DefaultOptions()
	return TextOptions{
		Field:         "text",
		MaxRows:       d.MaxRows,
		BatchRows:     1000,
		Workers:       d.Workers,
		CaseSensitive: true,
		TopK:          10,
	}
}

// TextReport is the profile of one or more text files.
type TextReport struct {
	RunID     string
	Name      string
	Lines     int
	Processed int
	Text      *profiles.TextProfiler
	Entities  *profiles.EntityProfile
	Warnings  []string
	TopK      int
}

type textChunk struct {
	text     *profiles.TextProfiler
	entities *profiles.EntityProfile
}

// AnalyzeText profiles a document; .md and .docx files are reduced to
// their prose first.
func AnalyzeText(ctx context.Context, path string, opt TextOptions) (*TextReport, error) {
	text, err := parser.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("open text: %w", err)
	}
	return AnalyzeTextReader(ctx, filepath.Base(path), strings.NewReader(text), opt)
}

// AnalyzeTextReader profiles the non-blank lines of in. Lines are cut into
// chunks, profiled concurrently and merged back in order.
func AnalyzeTextReader(ctx context.Context, name string, in io.Reader, opt TextOptions) (*TextReport, error) {
	log := opt.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	unstructured := opt.Profiler
	if unstructured == nil {
		unstructured = options.NewUnstructuredOptions()
	}
	unstructured.SetLogger(log)
	if _, err := unstructured.Validate(true); err != nil {
		return nil, fmt.Errorf("invalid profiler options: %w", err)
	}
	opt.Profiler = unstructured
	if opt.Field == "" {
		opt.Field = "text"
	}
	labelLimit := math.MaxInt
	if unstructured.Sub("data_labeler").Enabled() {
		if err := resolveLabeler(unstructured, &opt.Classifier, &opt.Postprocessor); err != nil {
			return nil, err
		}
		labelLimit = labelSampleLimit(unstructured)
	}
	batchRows := opt.BatchRows
	if batchRows <= 0 {
		batchRows = 1000
	}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = 1
	}

	rep := &TextReport{RunID: uuid.NewString(), Name: name, TopK: opt.TopK}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	var chunks []*textChunk
	var batch []string
	flush := func() {
		if len(batch) == 0 {
			return
		}
		rows, idx, offset := batch, len(chunks), rep.Processed-len(batch)
		slot := &textChunk{}
		chunks = append(chunks, slot)
		batch = nil
		g.Go(func() error {
			start := time.Now()
			labelled := labelledRows(offset, len(rows), labelLimit)
			if err := profileTextChunk(gctx, slot, rows, labelled, opt); err != nil {
				return fmt.Errorf("chunk %d: %w", idx, err)
			}
			log.WithFields(logrus.Fields{"chunk": idx, "rows": len(rows), "elapsed": time.Since(start)}).Debug("profiled text chunk")
			return nil
		})
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for gctx.Err() == nil && sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rep.Lines++
		if rep.Processed >= maxRows {
			continue
		}
		rep.Processed++
		batch = append(batch, line)
		if len(batch) >= batchRows {
			flush()
		}
	}
	if err := sc.Err(); err != nil {
		_ = g.Wait()
		return nil, fmt.Errorf("read text: %w", err)
	}
	flush()
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acc := &textChunk{}
	if err := newTextChunk(acc, opt); err != nil {
		return nil, err
	}
	for _, ch := range chunks {
		if err := acc.merge(ch); err != nil {
			return nil, err
		}
	}
	rep.Text, rep.Entities = acc.text, acc.entities
	if rep.Processed < rep.Lines {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d lines due to MaxRows", rep.Processed, rep.Lines))
	}
	if rep.Entities != nil && labelLimit < rep.Processed {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("entity labels cover the first %d lines (max_sample_size)", labelLimit))
	}
	return rep, nil
}

// resolveLabeler fills in the pattern labeler for whichever collaborator is
// unset, loading rules from data_labeler.data_labeler_dirpath when given.
func resolveLabeler(tree *options.Group, cls *labeler.Classifier, post *labeler.Postprocessor) error {
	if *cls == nil {
		rules := labeler.DefaultRules()
		if v, err := tree.Lookup("data_labeler.data_labeler_dirpath"); err == nil {
			if dir, ok := v.(string); ok && dir != "" {
				loaded, err := labeler.LoadRules(dir)
				if err != nil {
					return fmt.Errorf("load labeler: %w", err)
				}
				rules = loaded
			}
		}
		*cls = labeler.NewPatternClassifier(rules)
	}
	if *post == nil {
		*post = labeler.CharPostprocessor{}
	}
	return nil
}

// labelSampleLimit reads data_labeler.max_sample_size; unset means no limit.
func labelSampleLimit(tree *options.Group) int {
	if v, err := tree.Lookup("data_labeler.max_sample_size"); err == nil {
		if n, ok := v.(int); ok && n > 0 {
			return n
		}
	}
	return math.MaxInt
}

// labelledRows is how many of n rows starting at offset fall under limit.
func labelledRows(offset, n, limit int) int {
	if offset >= limit {
		return 0
	}
	return min(n, limit-offset)
}

func newTextChunk(ch *textChunk, opt TextOptions) error {
	if text := opt.Profiler.Sub("text"); text != nil && text.Enabled() {
		var textOpts []profiles.TextOption
		textOpts = append(textOpts, profiles.WithCaseSensitive(opt.CaseSensitive))
		if opt.StopWords != nil {
			textOpts = append(textOpts, profiles.WithStopWords(opt.StopWords))
		}
		p, err := profiles.NewTextProfiler(opt.Field, text, textOpts...)
		if err != nil {
			return err
		}
		ch.text = p
	}
	if opt.Classifier != nil && opt.Profiler.Sub("data_labeler").Enabled() {
		ch.entities = profiles.NewEntityProfile(opt.Classifier, opt.Postprocessor)
	}
	return nil
}

func profileTextChunk(ctx context.Context, ch *textChunk, rows []string, labelled int, opt TextOptions) error {
	if err := newTextChunk(ch, opt); err != nil {
		return err
	}
	if ch.text != nil {
		ch.text.Update(rows)
	}
	if ch.entities != nil {
		if err := ch.entities.Update(ctx, rows[:labelled]); err != nil {
			return err
		}
	}
	return nil
}

func (ch *textChunk) merge(o *textChunk) error {
	if ch.text != nil && o.text != nil {
		m, err := ch.text.Merge(o.text)
		if err != nil {
			return err
		}
		ch.text = m
	}
	if ch.entities != nil && o.entities != nil {
		m, err := ch.entities.Merge(o.entities)
		if err != nil {
			return err
		}
		ch.entities = m
	}
	return nil
}

// Merge combines two text reports, e.g. from several files.
func (r *TextReport) Merge(o *TextReport) (*TextReport, error) {
	out := &TextReport{
		RunID:     r.RunID,
		Name:      r.Name + ", " + o.Name,
		Lines:     r.Lines + o.Lines,
		Processed: r.Processed + o.Processed,
		Warnings:  append(append([]string(nil), r.Warnings...), o.Warnings...),
		TopK:      r.TopK,
	}
	acc := &textChunk{text: r.Text, entities: r.Entities}
	if err := acc.merge(&textChunk{text: o.Text, entities: o.Entities}); err != nil {
		return nil, err
	}
	out.Text, out.Entities = acc.text, acc.entities
	return out, nil
}

// Snapshot returns the report as nested maps.
func (r *TextReport) Snapshot() map[string]any {
	out := map[string]any{
		"run_id":      r.RunID,
		"file":        r.Name,
		"lines":       r.Lines,
		"processed":   r.Processed,
		"text":        nil,
		"data_labels": nil,
		"warnings":    r.Warnings,
	}
	if r.Text != nil {
		snap := r.Text.Profile()
		snap["sample_size"] = r.Text.SampleSize
		snap["case_sensitive"] = r.Text.CaseSensitive()
		out["text"] = snap
	}
	if r.Entities != nil {
		snap := r.Entities.Profile()
		snap["char_sample_size"] = r.Entities.CharSampleSize
		snap["word_sample_size"] = r.Entities.WordSampleSize
		out["data_labels"] = snap
	}
	return out
}

// Markdown renders a compact text report.
func (r *TextReport) Markdown() string {
	var b strings.Builder
	b.WriteString("[TEXT SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	}
	if r.Processed < r.Lines {
		b.WriteString(fmt.Sprintf("Lines: ~%d (processed %d)\n", r.Lines, r.Processed))
	} else {
		b.WriteString(fmt.Sprintf("Lines: %d\n", r.Lines))
	}
	if r.Text != nil {
		k := r.TopK
		if k <= 0 {
			k = 10
		}
		words := r.Text.WordCounts()
		b.WriteString(fmt.Sprintf("\n[VOCABULARY]\n- characters: %d\n- distinct words: %d\n", len(r.Text.Vocab()), len(words)))
		if len(words) > k {
			words = words[:k]
		}
		if len(words) > 0 {
			b.WriteString("- top words: ")
			for i, w := range words {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(w.Word), w.Count))
			}
			b.WriteString("\n")
		}
	}
	if r.Entities != nil {
		b.WriteString("\n[ENTITIES]\n")
		for _, g := range []string{profiles.TrueCharLevel, profiles.PostprocessCharLevel, profiles.WordLevel} {
			pct, _ := r.Entities.Percentages(g)
			counts, _ := r.Entities.Counts(g)
			b.WriteString(fmt.Sprintf("- %s:", g))
			for _, label := range sortedKeys(counts) {
				b.WriteString(fmt.Sprintf(" %s=%d (%.1f%%)", label, counts[label], pct[label]*100))
			}
			b.WriteString("\n")
		}
	}
	writeNotes(&b, r.Warnings)
	return b.String()
}
