package plagiarism

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"punctuation and spacing", "Hello, World!  foo_bar", []string{"hello", "world", "foo_bar"}},
		{"empty", "", []string{}},
		{"whitespace only", " \t\n  ", []string{}},
		{"punctuation only", "!!! ... ---", []string{}},
		{"apostrophes are stripped", "Don't STOP", []string{"dont", "stop"}},
		{"dash joins words", "well—known", []string{"wellknown"}},
		{"digits kept", "Version 2.0 released", []string{"version", "20", "released"}},
		{"unicode letters", "Café NAÏVE", []string{"café", "naïve"}},
		{"mixed whitespace", "one\ttwo\nthree\r\nfour", []string{"one", "two", "three", "four"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestTokenizeNeverEmitsEmptyTokens(t *testing.T) {
	for _, input := range []string{"a , b", "  ;;  x  ", "?!", "__ -- __"} {
		for _, token := range Tokenize(input) {
			assert.NotEmpty(t, token, "input %q", input)
		}
	}
}

func TestRemoveStopwords(t *testing.T) {
	tokens := []string{"the", "quick", "brown", "fox", "jumps", "over", "the", "lazy", "dog"}

	got := RemoveStopwords(tokens, DefaultStopwords())

	assert.Equal(t, []string{"quick", "brown", "fox", "jumps", "lazy", "dog"}, got)
}

func TestRemoveStopwordsEmpty(t *testing.T) {
	assert.Empty(t, RemoveStopwords(nil, DefaultStopwords()))
	assert.Empty(t, RemoveStopwords([]string{"and", "of", "the"}, DefaultStopwords()))
}

func TestNewStopwords(t *testing.T) {
	set := NewStopwords("  Lorem ", "IPSUM", "", "   ")

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("lorem"))
	assert.True(t, set.Contains("Ipsum"))
	assert.False(t, set.Contains("dolor"))

	assert.Equal(t, []string{"dolor"}, RemoveStopwords([]string{"lorem", "dolor", "ipsum"}, set))
}

func TestDefaultStopwords(t *testing.T) {
	set := DefaultStopwords()

	assert.Equal(t, len(defaultStopwords), set.Len())
	assert.Equal(t, 128, set.Len())
	for _, w := range []string{"a", "the", "over", "themselves", "would", "because", "while", "nor"} {
		assert.True(t, set.Contains(w), w)
	}
	for _, w := range []string{"quick", "plagiarism", "fox", "also", "just", "every", "upon", "us", "whether"} {
		assert.False(t, set.Contains(w), w)
	}
}

func TestDefaultStopwordsKeepContentWords(t *testing.T) {
	engine := NewDefault()

	// "also" is content here: the sentences differ
	score := engine.Score("Students also submit essays online", "Students submit essays online")
	assert.InDelta(t, 0.25, score, 1e-12)
	assert.Equal(t, LevelLow, engine.Classify(score).Level)
}
