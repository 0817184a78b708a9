package plagiarism

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateNgrams(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		n      int
		want   []string
	}{
		{"bigrams", []string{"a", "b", "c", "d"}, 2, []string{"a b", "b c", "c d"}},
		{"too few tokens", []string{"a"}, 3, []string{}},
		{"exact length", []string{"a", "b", "c"}, 3, []string{"a b c"}},
		{"zero size", []string{"a", "b"}, 0, []string{}},
		{"negative size", []string{"a", "b"}, -1, []string{}},
		{"keeps duplicates", []string{"x", "y", "x", "y"}, 2, []string{"x y", "y x", "x y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CreateNgrams(tt.tokens, tt.n))
		})
	}
}

func TestCreateNgramsCount(t *testing.T) {
	tokens := []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7"}
	for n := 1; n <= 9; n++ {
		assert.Len(t, CreateNgrams(tokens, n), max(0, len(tokens)-n+1), "n=%d", n)
	}
}

func TestNgramSet(t *testing.T) {
	set := NewNgramSet([]string{"b c", "a b", "b c", "c d"})

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"b c", "a b", "c d"}, set.Items())
	assert.True(t, set.Contains("a b"))
	assert.False(t, set.Contains("d e"))

	assert.False(t, set.Add("a b"))
	assert.True(t, set.Add("d e"))
	assert.Equal(t, 4, set.Len())
}

func TestNgramSetIntersectKeepsReceiverOrder(t *testing.T) {
	a := NewNgramSet([]string{"one", "two", "three", "four"})
	b := NewNgramSet([]string{"four", "nine", "two"})

	assert.Equal(t, []string{"two", "four"}, a.Intersect(b))
	assert.Equal(t, []string{"four", "two"}, b.Intersect(a))
	assert.Empty(t, a.Intersect(NewNgramSet(nil)))
}
