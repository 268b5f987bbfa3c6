// Package resolver maps a user-typed title to something rankable: a corpus
// row in local mode, or a source text plus candidate texts in live mode.
package resolver

import (
	"strings"

	"movierec/internal/corpus"
	"movierec/internal/domain"
	"movierec/internal/textutil"
)

// Exact returns the row whose title equals title after trimming and case
// folding. Duplicate titles resolve to the lowest row. An empty title is a
// miss like any other. The error names the title as typed, minus surrounding
// spaces.
func Exact(c *corpus.Corpus, title string) (int, error) {
	key := textutil.FoldTitle(title)
	if key == "" {
		return -1, &domain.NotFoundError{Title: title}
	}
	idx, ok := c.IndexOf(key)
	if !ok {
		return -1, &domain.NotFoundError{Title: strings.TrimSpace(title)}
	}
	return idx, nil
}
