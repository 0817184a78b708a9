package plagiarism

import "strings"

// CreateNgrams returns every contiguous window of n tokens, joined by a
// single space, in document order. Duplicates are kept.
func CreateNgrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return []string{}
	}

	ngrams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		ngrams = append(ngrams, strings.Join(tokens[i:i+n], " "))
	}

	return ngrams
}

// NgramSet is a hash set of canonical n-gram strings that remembers the
// order in which members were first added.
type NgramSet struct {
	index map[string]struct{}
	items []string
}

// NewNgramSet builds a set from ngrams, collapsing duplicates.
func NewNgramSet(ngrams []string) *NgramSet {
	s := &NgramSet{
		index: make(map[string]struct{}, len(ngrams)),
		items: make([]string, 0, len(ngrams)),
	}
	for _, ngram := range ngrams {
		s.Add(ngram)
	}
	return s
}

// Add inserts ngram and reports whether it was not already present.
func (s *NgramSet) Add(ngram string) bool {
	if _, exists := s.index[ngram]; exists {
		return false
	}
	s.index[ngram] = struct{}{}
	s.items = append(s.items, ngram)
	return true
}

func (s *NgramSet) Contains(ngram string) bool {
	_, ok := s.index[ngram]
	return ok
}

func (s *NgramSet) Len() int {
	return len(s.items)
}

// Items returns the members in insertion order.
func (s *NgramSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Intersect returns the members of s that are also in other, in the
// insertion order of s.
func (s *NgramSet) Intersect(other *NgramSet) []string {
	common := make([]string, 0)
	for _, ngram := range s.items {
		if other.Contains(ngram) {
			common = append(common, ngram)
		}
	}
	return common
}
