package domain

import "context"

// Document is a single movie row of a loaded corpus.
// ID is the row index and is only stable within one corpus load.
type Document struct {
	ID              int
	Title           string
	Description     string
	NormalizedTitle string
}

// Candidate is a title and text fetched on demand in live mode.
type Candidate struct {
	Title       string
	Description string
}

// Recommendation is one ranked result returned to the caller.
type Recommendation struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// TextSearch is the encyclopedia provider used by live mode.
// Summary returns ErrPageNotFound or ErrAmbiguous when the title does not
// resolve to a single page.
type TextSearch interface {
	Summary(ctx context.Context, title string, sentences int) (string, error)
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}
