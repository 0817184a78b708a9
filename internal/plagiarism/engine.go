package plagiarism

import (
	"fmt"
	"strings"
)

// MatchMode selects the text that context windows are cut from.
type MatchMode string

const (
	// MatchLiteral searches the caller's original text. N-grams that span a
	// removed stop word or stripped punctuation are not found verbatim and
	// are skipped.
	MatchLiteral MatchMode = "literal"
	// MatchNormalized searches the stop-word-filtered token text the
	// n-grams were built from, so every common n-gram is located.
	MatchNormalized MatchMode = "normalized"
)

func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchLiteral:
		return MatchLiteral, nil
	case MatchNormalized:
		return MatchNormalized, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", s)
	}
}

// Options configures an Engine.
type Options struct {
	ScoreNgramSize int
	MatchNgramSize int
	MaxSegments    int
	// ContextLength is the total number of characters of context kept
	// around a match, split evenly before and after it.
	ContextLength int
	Stopwords     Stopwords
	Thresholds    Thresholds
	MatchMode     MatchMode
}

func DefaultOptions() Options {
	return Options{
		ScoreNgramSize: 3,
		MatchNgramSize: 4,
		MaxSegments:    5,
		ContextLength:  100,
		Stopwords:      DefaultStopwords(),
		Thresholds:     DefaultThresholds(),
		MatchMode:      MatchLiteral,
	}
}

func (o Options) Validate() error {
	if o.ScoreNgramSize <= 0 {
		return fmt.Errorf("score n-gram size must be greater than 0, got %d", o.ScoreNgramSize)
	}
	if o.MatchNgramSize <= 0 {
		return fmt.Errorf("match n-gram size must be greater than 0, got %d", o.MatchNgramSize)
	}
	if o.MaxSegments < 0 {
		return fmt.Errorf("max segments must not be negative, got %d", o.MaxSegments)
	}
	if o.ContextLength < 0 {
		return fmt.Errorf("context length must not be negative, got %d", o.ContextLength)
	}
	if _, err := ParseMatchMode(string(o.MatchMode)); err != nil {
		return err
	}
	return o.Thresholds.Validate()
}

// Result bundles everything a single comparison produces.
type Result struct {
	SimilarityScore  float64   `json:"similarityScore"`
	MatchingSegments []Segment `json:"matchingSegments"`
	Level            Level     `json:"level"`
	Description      string    `json:"description"`
}

// Engine compares documents. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	opts Options
}

// New returns an Engine configured with opts.
func New(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine options: %w", err)
	}
	if opts.MatchMode == "" {
		opts.MatchMode = MatchLiteral
	}
	return &Engine{opts: opts}, nil
}

// NewDefault returns an Engine with DefaultOptions.
func NewDefault() *Engine {
	return &Engine{opts: DefaultOptions()}
}

func (e *Engine) Options() Options {
	return e.opts
}

// Preprocess runs text through the tokenizer, the stop-word filter and the
// n-gram builder.
func (e *Engine) Preprocess(text string, n int) []string {
	return CreateNgrams(e.filteredTokens(text), n)
}

func (e *Engine) filteredTokens(text string) []string {
	return RemoveStopwords(Tokenize(text), e.opts.Stopwords)
}

// Score returns the Jaccard similarity of the two documents' n-gram sets.
func (e *Engine) Score(original, comparison string) float64 {
	n := e.opts.ScoreNgramSize
	return Jaccard(
		NewNgramSet(e.Preprocess(original, n)),
		NewNgramSet(e.Preprocess(comparison, n)),
	)
}

func (e *Engine) Classify(score float64) Classification {
	return e.opts.Thresholds.Classify(score)
}

// Compare scores, samples and classifies a pair of documents.
func (e *Engine) Compare(original, comparison string) Result {
	score := e.Score(original, comparison)
	class := e.Classify(score)

	return Result{
		SimilarityScore:  score,
		MatchingSegments: e.FindMatches(original, comparison),
		Level:            class.Level,
		Description:      class.Description,
	}
}
