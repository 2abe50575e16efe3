package profiles

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// wordPattern matches runs of letters, digits and underscores.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// DefaultStopWords returns a fresh copy of the English stop-word list.
func DefaultStopWords() map[string]struct{} {
	words := []string{
		"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you",
		"you're", "you've", "you'll", "you'd", "your", "yours", "yourself",
		"yourselves", "he", "him", "his", "himself", "she", "she's", "her",
		"hers", "herself", "it", "it's", "its", "itself", "they", "them",
		"their", "theirs", "themselves", "what", "which", "who", "whom",
		"this", "that", "that'll", "these", "those", "am", "is", "are",
		"was", "were", "be", "been", "being", "have", "has", "had",
		"having", "do", "does", "did", "doing", "a", "an", "the", "and",
		"but", "if", "or", "because", "as", "until", "while", "of", "at",
		"by", "for", "with", "about", "against", "between", "into",
		"through", "during", "before", "after", "above", "below", "to",
		"from", "up", "down", "in", "out", "on", "off", "over", "under",
		"again", "further", "then", "once", "here", "there", "when",
		"where", "why", "how", "all", "any", "both", "each", "few", "more",
		"most", "other", "some", "such", "no", "nor", "not", "only", "own",
		"same", "so", "than", "too", "very", "s", "t", "can", "will",
		"just", "don", "don't", "should", "should've", "now", "d", "ll",
		"m", "o", "re", "ve", "y", "ain", "aren", "aren't", "couldn",
		"couldn't", "didn", "didn't", "doesn", "doesn't", "hadn", "hadn't",
		"hasn", "hasn't", "haven", "haven't", "isn", "isn't", "ma",
		"mightn", "mightn't", "mustn", "mustn't", "needn", "needn't",
		"shan", "shan't", "shouldn", "shouldn't", "wasn", "wasn't",
		"weren", "weren't", "won", "won't", "wouldn", "wouldn't",
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// WordCount is one entry of a word frequency table.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// TextOption configures a TextProfiler.
type TextOption func(*TextProfiler)

// WithCaseSensitive controls whether words are tallied as written or lower-cased.
func WithCaseSensitive(on bool) TextOption {
	return func(p *TextProfiler) { p.caseSensitive = on }
}

// WithStopWords replaces the default stop-word list. Entries are matched
// against the lower-cased word.
func WithStopWords(words []string) TextOption {
	return func(p *TextProfiler) {
		p.stopWords = make(map[string]struct{}, len(words))
		for _, w := range words {
			p.stopWords[strings.ToLower(w)] = struct{}{}
		}
	}
}

// TextProfiler accumulates the character vocabulary and word frequencies
// of free text.
type TextProfiler struct {
	Name       string
	SampleSize int
	Times      Times

	vocab         map[rune]struct{}
	wordCount     map[string]int
	wordOrder     []string
	caseSensitive bool
	stopWords     map[string]struct{}
	calcs         Registry[*TextProfiler, []string]
}

func textProfilerCalculations() []Calculation[*TextProfiler, []string] {
	return []Calculation[*TextProfiler, []string]{
		{Name: "vocab", Timing: "vocab", Fn: (*TextProfiler).updateVocab},
		{Name: "words", Timing: "words", Fn: (*TextProfiler).updateWords},
	}
}

// NewTextProfiler creates an empty text profiler. opts may be nil.
// Profilers are case-sensitive unless configured otherwise.
func NewTextProfiler(name string, opts PropertyChecker, options ...TextOption) (*TextProfiler, error) {
	calcs, err := NewRegistry(textProfilerCalculations(), opts)
	if err != nil {
		return nil, err
	}
	p := newTextProfiler(name, calcs)
	p.caseSensitive = true
	p.stopWords = DefaultStopWords()
	for _, o := range options {
		o(p)
	}
	return p, nil
}

func newTextProfiler(name string, calcs Registry[*TextProfiler, []string]) *TextProfiler {
	return &TextProfiler{
		Name:      name,
		Times:     Times{},
		vocab:     map[rune]struct{}{},
		wordCount: map[string]int{},
		calcs:     calcs,
	}
}

func (p *TextProfiler) Type() string { return "unstructured_text" }

// CaseSensitive reports whether words are tallied without case folding.
func (p *TextProfiler) CaseSensitive() bool { return p.caseSensitive }

// Update folds a batch of text rows into the profile. Empty batches are a no-op.
func (p *TextProfiler) Update(rows []string) *TextProfiler {
	if len(rows) == 0 {
		return p
	}
	p.calcs.Perform(p, rows, p.Times)
	p.SampleSize += len(rows)
	return p
}

func (p *TextProfiler) updateVocab(rows []string) {
	for _, row := range rows {
		for _, r := range row {
			p.vocab[r] = struct{}{}
		}
	}
}

func (p *TextProfiler) updateWords(rows []string) {
	lower := cases.Lower(language.Und)
	for _, row := range rows {
		for _, w := range wordPattern.FindAllString(row, -1) {
			folded := lower.String(w)
			if p.isStopWord(folded) {
				continue
			}
			if p.caseSensitive {
				p.addWord(w, 1)
			} else {
				p.addWord(folded, 1)
			}
		}
	}
}

func (p *TextProfiler) isStopWord(lowered string) bool {
	_, ok := p.stopWords[lowered]
	return ok
}

func (p *TextProfiler) addWord(w string, n int) {
	if _, ok := p.wordCount[w]; !ok {
		p.wordOrder = append(p.wordOrder, w)
	}
	p.wordCount[w] += n
}

// Merge returns a new profiler over both inputs' text. The result is
// case-sensitive only when both inputs are; otherwise words from the
// case-sensitive side are lower-cased into the merged table.
func (p *TextProfiler) Merge(other *TextProfiler) (*TextProfiler, error) {
	if other == nil {
		return nil, &TypeMismatchError{Left: "TextProfiler", Right: "nil"}
	}
	if err := checkNames("Text", p.Name, other.Name); err != nil {
		return nil, err
	}
	out := newTextProfiler(p.Name, p.calcs.Intersect(other.calcs))
	out.caseSensitive = p.caseSensitive && other.caseSensitive
	out.stopWords = make(map[string]struct{}, len(p.stopWords))
	for w := range p.stopWords {
		out.stopWords[w] = struct{}{}
	}
	for w := range other.stopWords {
		out.stopWords[w] = struct{}{}
	}
	out.Times = mergeTimes(p.Times, other.Times)
	out.SampleSize = p.SampleSize + other.SampleSize

	if out.calcs.Has("vocab") {
		for r := range p.vocab {
			out.vocab[r] = struct{}{}
		}
		for r := range other.vocab {
			out.vocab[r] = struct{}{}
		}
	}
	if out.calcs.Has("words") {
		// The base table comes from the case-insensitive side when there is one.
		base, additive := other, p
		if !p.caseSensitive {
			base, additive = p, other
		}
		// Both sides are filtered against the unioned stop words.
		lower := cases.Lower(language.Und)
		for _, src := range []*TextProfiler{base, additive} {
			for _, w := range src.wordOrder {
				folded := lower.String(w)
				if out.isStopWord(folded) {
					continue
				}
				if out.caseSensitive {
					out.addWord(w, src.wordCount[w])
				} else {
					out.addWord(folded, src.wordCount[w])
				}
			}
		}
	}
	return out, nil
}

// Vocab returns the distinct characters seen, sorted.
func (p *TextProfiler) Vocab() []string { return sortedRunes(p.vocab) }

// Words lists distinct words in first-seen order.
func (p *TextProfiler) Words() []string { return append([]string(nil), p.wordOrder...) }

// WordCounts returns the word frequency table, most frequent first with
// ties in first-seen order.
func (p *TextProfiler) WordCounts() []WordCount {
	out := make([]WordCount, 0, len(p.wordOrder))
	for _, w := range p.wordOrder {
		out = append(out, WordCount{Word: w, Count: p.wordCount[w]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func (p *TextProfiler) orderedWordCounts() OrderedCounts {
	words := p.WordCounts()
	out := make(OrderedCounts, len(words))
	for i, w := range words {
		out[i] = CategoryCount{Value: w.Word, Count: w.Count}
	}
	return out
}

// Count returns the tally for one word.
func (p *TextProfiler) Count(word string) int { return p.wordCount[word] }

// Calculations lists the enabled calculation names.
func (p *TextProfiler) Calculations() []string { return p.calcs.Names() }

// Profile renders the current snapshot.
func (p *TextProfiler) Profile() map[string]any {
	return map[string]any{
		"vocab":      p.Vocab(),
		"words":      p.Words(),
		"word_count": p.orderedWordCounts(),
		"times":      p.Times.snapshot(),
	}
}
