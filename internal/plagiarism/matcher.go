package plagiarism

import (
	"strings"
	"unicode/utf8"
)

// Segment is a pair of context windows, one from each document, around a
// shared n-gram.
type Segment struct {
	Original   string `json:"original"`
	Comparison string `json:"comparison"`
	Ngram      string `json:"ngram"`
}

// FindMatches returns up to MaxSegments context pairs for n-grams common to
// both documents, in the order the n-grams first occur in original.
//
// Only the first MaxSegments common n-grams are considered. A candidate that
// cannot be located in either source text is dropped without being replaced,
// so fewer samples may come back than there are common n-grams.
func (e *Engine) FindMatches(original, comparison string) []Segment {
	n := e.opts.MatchNgramSize

	originalTokens := e.filteredTokens(original)
	comparisonTokens := e.filteredTokens(comparison)

	originalSet := NewNgramSet(CreateNgrams(originalTokens, n))
	comparisonSet := NewNgramSet(CreateNgrams(comparisonTokens, n))

	common := originalSet.Intersect(comparisonSet)
	if len(common) > e.opts.MaxSegments {
		common = common[:e.opts.MaxSegments]
	}

	segments := make([]Segment, 0, len(common))
	if len(common) == 0 {
		return segments
	}

	originalSource, comparisonSource := original, comparison
	if e.opts.MatchMode == MatchNormalized {
		originalSource = strings.Join(originalTokens, " ")
		comparisonSource = strings.Join(comparisonTokens, " ")
	}

	originalText := newSearchText(originalSource)
	comparisonText := newSearchText(comparisonSource)

	for _, ngram := range common {
		originalContext, ok := originalText.context(ngram, e.opts.ContextLength)
		if !ok {
			continue
		}
		comparisonContext, ok := comparisonText.context(ngram, e.opts.ContextLength)
		if !ok {
			continue
		}
		segments = append(segments, Segment{
			Original:   originalContext,
			Comparison: comparisonContext,
			Ngram:      ngram,
		})
	}

	return segments
}

// searchText supports case-insensitive lookups with offsets counted in runes.
type searchText struct {
	runes []rune
	lower string
}

func newSearchText(text string) *searchText {
	return &searchText{
		runes: []rune(text),
		lower: lowerRunes(text),
	}
}

// context finds the first case-insensitive occurrence of search and returns
// it with up to contextLength/2 runes of surrounding text on each side.
func (s *searchText) context(search string, contextLength int) (string, bool) {
	needle := lowerRunes(search)
	byteIndex := strings.Index(s.lower, needle)
	if byteIndex == -1 {
		return "", false
	}

	// lowerRunes maps rune to rune, so rune offsets carry over to s.runes
	index := utf8.RuneCountInString(s.lower[:byteIndex])
	length := utf8.RuneCountInString(needle)
	half := contextLength / 2

	start := max(0, index-half)
	end := min(len(s.runes), index+length+half)

	return string(s.runes[start:end]), true
}
