package labeler

import "unicode"

// CharPostprocessor resolves label indices to names. With UseWordLevelArgmax
// every whitespace-delimited word takes its most frequent entity label,
// provided that label covers at least WordLevelMinPercent of the word's
// characters; otherwise the word becomes Background.
type CharPostprocessor struct {
	UseWordLevelArgmax  bool
	WordLevelMinPercent float64
}

func (p CharPostprocessor) Process(rows []string, preds [][]int, labels map[int]string) ([][]string, error) {
	if err := CheckShape(rows, preds); err != nil {
		return nil, err
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		names := make([]string, len(preds[i]))
		for j, idx := range preds[i] {
			name, ok := labels[idx]
			if !ok {
				return nil, &UnknownLabelError{Index: idx}
			}
			names[j] = name
		}
		if p.UseWordLevelArgmax {
			p.smooth([]rune(row), names)
		}
		out[i] = names
	}
	return out, nil
}

func (p CharPostprocessor) smooth(runes []rune, names []string) {
	for _, w := range Words(runes) {
		label, count := Majority(names[w[0]:w[1]], true)
		width := w[1] - w[0]
		if label == "" || float64(count)/float64(width) < p.WordLevelMinPercent {
			label = Background
		}
		for k := w[0]; k < w[1]; k++ {
			names[k] = label
		}
	}
}

// Words returns the [start, end) rune spans of whitespace-delimited tokens.
func Words(runes []rune) [][2]int {
	var spans [][2]int
	start := -1
	for i, r := range runes {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, [2]int{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(runes)})
	}
	return spans
}

// Majority returns the most frequent label, ties going to the label seen
// first. With skipBackground, Background characters do not vote and ""
// is returned when nothing else is present.
func Majority(names []string, skipBackground bool) (string, int) {
	counts := map[string]int{}
	var order []string
	for _, n := range names {
		if skipBackground && n == Background {
			continue
		}
		if _, ok := counts[n]; !ok {
			order = append(order, n)
		}
		counts[n]++
	}
	best, bestN := "", 0
	for _, n := range order {
		if counts[n] > bestN {
			best, bestN = n, counts[n]
		}
	}
	return best, bestN
}
