// Package textutil holds the small text helpers shared by the corpus,
// resolver and live provider packages.
package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// FoldTitle returns the lookup key for a title: trimmed, NFC-normalised and
// case folded without regard to locale, so "Avatar", " avatar " and "AVATAR"
// share a key.
func FoldTitle(title string) string {
	s := strings.TrimSpace(title)
	if s == "" {
		return ""
	}
	// A Caser keeps state; build one per call so FoldTitle is goroutine safe.
	return cases.Fold().String(norm.NFC.String(s))
}

// SplitSentences splits text on terminal punctuation. Trailing text without
// punctuation is kept as a final sentence.
func SplitSentences(text string) []string {
	locs := sentenceRe.FindAllStringIndex(text, -1)
	var out []string
	end := 0
	for _, loc := range locs {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			out = append(out, s)
		}
		end = loc[1]
	}
	if tail := strings.TrimSpace(text[end:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

// FirstSentences keeps at most n leading sentences of text.
// n <= 0 returns the trimmed text unchanged.
func FirstSentences(text string, n int) string {
	if n <= 0 {
		return strings.TrimSpace(text)
	}
	sentences := SplitSentences(text)
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	return strings.Join(sentences, " ")
}

// Truncate shortens s to at most n runes and marks the cut with "...".
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
