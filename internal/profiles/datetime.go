package profiles

import "time"

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

// ParseDateTime parses s with the first matching layout and returns it.
func ParseDateTime(s string) (time.Time, string, bool) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, l, true
		}
	}
	return time.Time{}, "", false
}

// DateTimeColumn tracks the range and layouts of the date values of a column.
type DateTimeColumn struct {
	Name string
	// SampleSize counts values that parsed as dates.
	SampleSize int
	Times      Times

	min, max       time.Time
	minRaw, maxRaw string
	formats        map[string]int
	formatOrder    []string
}

// NewDateTimeColumn creates an empty profile.
func NewDateTimeColumn(name string) *DateTimeColumn {
	return &DateTimeColumn{Name: name, Times: Times{}, formats: map[string]int{}}
}

func (d *DateTimeColumn) Type() string { return "datetime" }

// Update folds a batch of values; values no layout accepts are skipped.
// Empty batches are a no-op.
func (d *DateTimeColumn) Update(batch []string) *DateTimeColumn {
	if len(batch) == 0 {
		return d
	}
	start := now()
	for _, v := range batch {
		t, layout, ok := ParseDateTime(v)
		if !ok {
			continue
		}
		d.observe(t, v, t, v)
		d.addFormat(layout, 1)
		d.SampleSize++
	}
	d.Times.track("datetime", start)
	return d
}

// observe widens the range; on equal instants the earlier value is kept.
func (d *DateTimeColumn) observe(lo time.Time, loRaw string, hi time.Time, hiRaw string) {
	if d.SampleSize == 0 || lo.Before(d.min) {
		d.min, d.minRaw = lo, loRaw
	}
	if d.SampleSize == 0 || hi.After(d.max) {
		d.max, d.maxRaw = hi, hiRaw
	}
}

func (d *DateTimeColumn) addFormat(layout string, n int) {
	if _, ok := d.formats[layout]; !ok {
		d.formatOrder = append(d.formatOrder, layout)
	}
	d.formats[layout] += n
}

// Merge returns a new profile over both inputs' values.
func (d *DateTimeColumn) Merge(other *DateTimeColumn) (*DateTimeColumn, error) {
	if other == nil {
		return nil, &TypeMismatchError{Left: "DateTimeColumn", Right: "nil"}
	}
	if err := checkNames("Column", d.Name, other.Name); err != nil {
		return nil, err
	}
	out := NewDateTimeColumn(d.Name)
	for _, src := range []*DateTimeColumn{d, other} {
		if src.SampleSize == 0 {
			continue
		}
		out.observe(src.min, src.minRaw, src.max, src.maxRaw)
		for _, l := range src.formatOrder {
			out.addFormat(l, src.formats[l])
		}
		out.SampleSize += src.SampleSize
	}
	out.Times = mergeTimes(d.Times, other.Times)
	return out, nil
}

// Range returns the earliest and latest values as written, or false
// before any date was seen.
func (d *DateTimeColumn) Range() (minRaw, maxRaw string, ok bool) {
	if d.SampleSize == 0 {
		return "", "", false
	}
	return d.minRaw, d.maxRaw, true
}

// Formats lists the matched layouts in first-seen order.
func (d *DateTimeColumn) Formats() []string {
	return append([]string(nil), d.formatOrder...)
}

// Profile renders the current snapshot.
func (d *DateTimeColumn) Profile() map[string]any {
	stats := map[string]any{"min": nil, "max": nil, "date_formats": d.Formats()}
	if lo, hi, ok := d.Range(); ok {
		stats["min"], stats["max"] = lo, hi
	}
	return map[string]any{
		"statistics": stats,
		"times":      d.Times.snapshot(),
	}
}
