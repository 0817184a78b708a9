package plagiarism

import "strings"

// defaultStopwords are common English function words: articles, pronouns,
// prepositions, conjunctions and auxiliary verbs. Remote engines share this
// list; larger lists belong in a STOPWORDS_FILE.
var defaultStopwords = []string{
	"a", "an", "the", "and", "or", "but", "is", "are", "was", "were",
	"be", "been", "being", "in", "on", "at", "to", "for", "with", "by",
	"about", "against", "between", "into", "through", "during", "before",
	"after", "above", "below", "from", "up", "down", "of", "off", "over",
	"under", "again", "further", "then", "once", "here", "there", "when",
	"where", "why", "how", "all", "any", "both", "each", "few", "more",
	"most", "other", "some", "such", "no", "nor", "not", "only", "own",
	"same", "so", "than", "too", "very", "i", "me", "my", "myself", "we",
	"our", "ours", "ourselves", "you", "your", "yours", "yourself",
	"yourselves", "he", "him", "his", "himself", "she", "her", "hers",
	"herself", "it", "its", "itself", "they", "them", "their", "theirs",
	"themselves", "what", "which", "who", "whom", "this", "that", "these",
	"those", "am", "have", "has", "had", "having", "do", "does", "did",
	"doing", "would", "should", "could", "ought", "will", "shall", "can",
	"may", "might", "must", "as", "if", "because", "until", "while",
}

// Stopwords is an immutable, case-insensitive set of words excluded from
// n-gram construction.
type Stopwords struct {
	words map[string]struct{}
}

var builtinStopwords = NewStopwords(defaultStopwords...)

// DefaultStopwords returns the built-in English stop-word set.
func DefaultStopwords() Stopwords {
	return builtinStopwords
}

// NewStopwords builds a set from words. Entries are lower-cased and
// surrounding whitespace is trimmed; blank entries are ignored.
func NewStopwords(words ...string) Stopwords {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = lowerRunes(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return Stopwords{words: set}
}

func (s Stopwords) Contains(word string) bool {
	_, ok := s.words[lowerRunes(word)]
	return ok
}

func (s Stopwords) Len() int {
	return len(s.words)
}

// RemoveStopwords returns the tokens not in set, preserving order.
func RemoveStopwords(tokens []string, set Stopwords) []string {
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if set.Contains(token) {
			continue
		}
		kept = append(kept, token)
	}
	return kept
}
