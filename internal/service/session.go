package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"movierec/internal/corpus"
	"movierec/internal/domain"
)

// Snapshot pairs a corpus with the model fitted on it.
type Snapshot struct {
	Corpus *corpus.Corpus
	Model  ModelHandle
}

// Session holds the current snapshot for concurrent callers. Readers always
// see a corpus together with its own model; Reload replaces both at once.
type Session struct {
	rec     *Recommender
	current atomic.Pointer[Snapshot]
}

// NewSession builds the model for c and returns a ready session.
func NewSession(ctx context.Context, rec *Recommender, c *corpus.Corpus) (*Session, error) {
	s := &Session{rec: rec}
	if err := s.Reload(ctx, c); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload ensures a model for c and swaps it in. On failure the previous
// snapshot stays active.
func (s *Session) Reload(ctx context.Context, c *corpus.Corpus) error {
	h, err := s.rec.EnsureModel(ctx, c)
	if err != nil {
		return err
	}
	s.current.Store(&Snapshot{Corpus: c, Model: h})
	return nil
}

// Snapshot returns the active snapshot, or nil before the first Reload.
func (s *Session) Snapshot() *Snapshot { return s.current.Load() }

// Recommender returns the underlying recommender.
func (s *Session) Recommender() *Recommender { return s.rec }

// Recommend ranks against the active snapshot.
func (s *Session) Recommend(ctx context.Context, title string, topN int) ([]domain.Recommendation, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: session has no model", domain.ErrModelMismatch)
	}
	return s.rec.Recommend(ctx, title, snap.Corpus, snap.Model, topN)
}

// RecommendLive delegates to the recommender's live mode.
func (s *Session) RecommendLive(ctx context.Context, title string, topN int) ([]domain.Recommendation, error) {
	return s.rec.RecommendLive(ctx, title, topN)
}
