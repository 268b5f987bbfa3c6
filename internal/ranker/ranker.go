// Package ranker scores candidate documents against a query vector by cosine
// similarity and returns the best matches.
package ranker

import (
	"fmt"
	"sort"

	"movierec/internal/corpus"
	"movierec/internal/domain"
	"movierec/internal/embedding/tfidf"
)

// Input is what Rank scores: either Precomputed or AdHoc.
type Input interface {
	candidates() ([]scored, error)
}

// Precomputed ranks every other row of an already fitted corpus against Row.
// Model.Rows must be aligned with Corpus.
type Precomputed struct {
	Corpus *corpus.Corpus
	Model  *tfidf.Model
	Row    int
}

// AdHoc fits a throwaway space over the query text and the candidates, then
// ranks the candidates against the query row. The query is never a candidate.
type AdHoc struct {
	QueryText  string
	Candidates []domain.Candidate
	Config     tfidf.Config
}

type scored struct {
	title       string
	description string
	score       float64
}

// Rank returns at most topN candidates ordered by descending score. Equal
// scores keep candidate order. Fewer than topN results is not an error.
func Rank(in Input, topN int) ([]domain.Recommendation, error) {
	all, err := in.candidates()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })
	if topN < 0 {
		topN = 0
	}
	if topN > len(all) {
		topN = len(all)
	}
	out := make([]domain.Recommendation, topN)
	for i := 0; i < topN; i++ {
		out[i] = domain.Recommendation{
			Title:       all[i].title,
			Description: all[i].description,
			Score:       all[i].score,
		}
	}
	return out, nil
}

func (p Precomputed) candidates() ([]scored, error) {
	if p.Corpus == nil || p.Model == nil {
		return nil, fmt.Errorf("%w: missing corpus or model", domain.ErrModelMismatch)
	}
	n := p.Corpus.Len()
	if len(p.Model.Rows) != n {
		return nil, fmt.Errorf("%w: %d model rows for %d documents", domain.ErrModelMismatch, len(p.Model.Rows), n)
	}
	if p.Row < 0 || p.Row >= n {
		return nil, fmt.Errorf("query row %d out of range [0,%d)", p.Row, n)
	}
	query := p.Model.Rows[p.Row]
	out := make([]scored, 0, n-1)
	for i, row := range p.Model.Rows {
		if i == p.Row {
			continue
		}
		doc := p.Corpus.Doc(i)
		out = append(out, scored{
			title:       doc.Title,
			description: doc.Description,
			score:       tfidf.Cosine(query, row),
		})
	}
	return out, nil
}

func (a AdHoc) candidates() ([]scored, error) {
	texts := make([]string, 0, len(a.Candidates)+1)
	texts = append(texts, a.QueryText)
	for _, c := range a.Candidates {
		texts = append(texts, c.Description)
	}
	model, err := tfidf.Fit(texts, a.Config)
	if err != nil {
		return nil, err
	}
	query := model.Rows[0]
	out := make([]scored, len(a.Candidates))
	for i, c := range a.Candidates {
		out[i] = scored{
			title:       c.Title,
			description: c.Description,
			score:       tfidf.Cosine(query, model.Rows[i+1]),
		}
	}
	return out, nil
}
