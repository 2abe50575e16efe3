package analysis

import (
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/colprof/internal/labeler"
	"github.com/KaramelBytes/colprof/internal/options"
)

// Options controls analysis behavior for tabular data.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// BatchRows is the number of rows profiled per chunk.
	BatchRows int
	// Workers bounds how many chunks are profiled at once.
	Workers int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
	// TopK is how many categories the Markdown report lists.
	TopK           int
	HistogramBins  int
	QuantileGroups int
	// Profiler holds StructuredOptions; nil means defaults.
	Profiler *options.Group
	// Classifier and Postprocessor label cell text when data_labeler is
	// enabled; both default to the pattern labeler.
	Classifier    labeler.Classifier
	Postprocessor labeler.Postprocessor
	Logger        logrus.FieldLogger
}

// DefaultOptions returns reasonable defaults for dataset analysis.
func DefaultOptions() Options {
	return Options{
		MaxRows:        100000,
		BatchRows:      5000,
		Workers:        runtime.NumCPU(),
		SampleRows:     5,
		TopK:           5,
		HistogramBins:  10,
		QuantileGroups: 4,
	}
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

func (o Options) structured() *options.Group {
	if o.Profiler == nil {
		return options.NewStructuredOptions()
	}
	return o.Profiler
}

func (o Options) batchRows() int {
	if o.BatchRows <= 0 {
		return 5000
	}
	return o.BatchRows
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return 1
	}
	return o.Workers
}
