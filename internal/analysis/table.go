package analysis

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Report is the profile of a tabular dataset.
type Report struct {
	RunID     string
	Name      string
	Rows      int
	Processed int
	Columns   []*ColumnProfile
	Samples   [][]string
	Warnings  []string
	// TopK is how many categories Markdown lists per column.
	TopK int
}

// AnalyzeCSV profiles a CSV file.
func AnalyzeCSV(ctx context.Context, path string, opt Options) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return AnalyzeReader(ctx, filepath.Base(path), f, opt)
}

// recordReader yields one record per call and io.EOF at the end.
type recordReader interface {
	Read() ([]string, error)
}

// AnalyzeReader profiles CSV data from in.
func AnalyzeReader(ctx context.Context, name string, in io.Reader, opt Options) (*Report, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}
	return analyzeRecords(ctx, name, r, opt)
}

// analyzeRecords cuts rows into chunks of opt.BatchRows, profiles them
// concurrently and merges the results back in file order.
func analyzeRecords(ctx context.Context, name string, r recordReader, opt Options) (*Report, error) {
	log := opt.logger()
	structured := opt.structured()
	structured.SetLogger(log)
	if _, err := structured.Validate(true); err != nil {
		return nil, fmt.Errorf("invalid profiler options: %w", err)
	}
	opt.Profiler = structured
	labelLimit := math.MaxInt
	if structured.Sub("data_labeler").Enabled() {
		if err := resolveLabeler(structured, &opt.Classifier, &opt.Postprocessor); err != nil {
			return nil, err
		}
		labelLimit = labelSampleLimit(structured)
	}

	rep := &Report{RunID: uuid.NewString(), Name: name, TopK: opt.TopK}
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return rep, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	if ncol == 0 {
		return rep, nil
	}
	names := make([]string, ncol)
	for i, h := range header {
		names[i] = safeName(h)
	}

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opt.workers())
	var chunks []*[]*ColumnProfile
	batch := make([][]string, 0, opt.batchRows())
	flush := func() {
		if len(batch) == 0 {
			return
		}
		rows, idx, offset := batch, len(chunks), rep.Processed-len(batch)
		slot := new([]*ColumnProfile)
		chunks = append(chunks, slot)
		batch = make([][]string, 0, opt.batchRows())
		g.Go(func() error {
			start := time.Now()
			cols, err := profileChunk(gctx, names, rows, labelledRows(offset, len(rows), labelLimit), opt)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", idx, err)
			}
			*slot = cols
			log.WithFields(logrus.Fields{"chunk": idx, "rows": len(rows), "elapsed": time.Since(start)}).Debug("profiled chunk")
			return nil
		})
	}

	for gctx.Err() == nil {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			_ = g.Wait()
			return nil, fmt.Errorf("read row %d: %w", rep.Rows+1, err)
		}
		rep.Rows++
		if rep.Processed >= maxRows {
			continue
		}
		rep.Processed++
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		if len(rep.Samples) < sampleRows {
			rep.Samples = append(rep.Samples, append([]string(nil), rec[:ncol]...))
		}
		batch = append(batch, rec)
		if len(batch) >= opt.batchRows() {
			flush()
		}
	}
	flush()
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cols, err := foldChunks(ctx, names, chunks, opt)
	if err != nil {
		return nil, err
	}
	rep.Columns = cols
	if rep.Processed < rep.Rows {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", rep.Processed, rep.Rows))
	}
	if labelLimit < rep.Processed && len(cols) > 0 && cols[0].Labels != nil {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("entity labels cover the first %d rows (max_sample_size)", labelLimit))
	}
	log.WithFields(logrus.Fields{"run_id": rep.RunID, "rows": rep.Processed, "chunks": len(chunks)}).Debug("profiled dataset")
	return rep, nil
}

// profileChunk profiles rows column by column; the first labelled rows
// also go through the entity labeler.
func profileChunk(ctx context.Context, names []string, rows [][]string, labelled int, opt Options) ([]*ColumnProfile, error) {
	cols := make([]*ColumnProfile, len(names))
	cells := make([]string, len(rows))
	for j, name := range names {
		c, err := NewColumnProfile(name, opt)
		if err != nil {
			return nil, err
		}
		for i, rec := range rows {
			cells[i] = rec[j]
		}
		c.Update(cells)
		if err := c.UpdateLabels(ctx, cells[:labelled]); err != nil {
			return nil, fmt.Errorf("label column %s: %w", name, err)
		}
		cols[j] = c
	}
	return cols, nil
}

// foldChunks merges chunk results left to right so category order follows the file.
func foldChunks(ctx context.Context, names []string, chunks []*[]*ColumnProfile, opt Options) ([]*ColumnProfile, error) {
	if len(chunks) == 0 {
		return profileChunk(ctx, names, nil, 0, opt)
	}
	acc := *chunks[0]
	for _, ch := range chunks[1:] {
		next := make([]*ColumnProfile, len(acc))
		for j, c := range acc {
			m, err := c.Merge((*ch)[j])
			if err != nil {
				return nil, fmt.Errorf("merge column %s: %w", c.Name, err)
			}
			next[j] = m
		}
		acc = next
	}
	return acc, nil
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}

func parseNumeric(s string, nf numberFormat) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec, thou := nf.dec, nf.thou
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	// Remove thousands separators (common: ',', '.', space) if they differ from decimal
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// isInteger reports whether v is a plain base-10 integer once thousands
// separators are removed.
func isInteger(v string, nf numberFormat) bool {
	if nf.thou != 0 {
		v = strings.ReplaceAll(v, string(nf.thou), "")
	}
	_, err := strconv.ParseInt(v, 10, 64)
	return err == nil
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
