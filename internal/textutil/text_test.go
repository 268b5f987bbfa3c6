package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Avatar", "avatar"},
		{"avatar", "avatar"},
		{" Avatar ", "avatar"},
		{"\tAVATAR\n", "avatar"},
		{"", ""},
		{"   ", ""},
		{"Amélie", "amélie"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FoldTitle(tt.in))
		})
	}
}

func TestFoldTitle_ComposedAndDecomposedMatch(t *testing.T) {
	composed := "Am\u00e9lie"
	decomposed := "Ame\u0301lie"
	assert.Equal(t, FoldTitle(composed), FoldTitle(decomposed))
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("First one. Second one! Third? trailing words")
	assert.Equal(t, []string{"First one.", "Second one!", "Third?", "trailing words"}, got)
	assert.Empty(t, SplitSentences("   "))
}

func TestFirstSentences(t *testing.T) {
	text := "One. Two. Three. Four."
	assert.Equal(t, "One. Two.", FirstSentences(text, 2))
	assert.Equal(t, text, FirstSentences(text, 10))
	assert.Equal(t, text, FirstSentences("  "+text+"  ", 0))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "déj...", Truncate("déjà vu", 3))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
}
