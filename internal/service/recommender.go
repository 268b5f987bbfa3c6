package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"movierec/internal/corpus"
	"movierec/internal/domain"
	"movierec/internal/embedding/tfidf"
	"movierec/internal/modelcache"
	"movierec/internal/ranker"
	"movierec/internal/resolver"
)

// Top-N bounds used by every presentation surface.
const (
	DefaultTopN = 5
	MinTopN     = 1
	MaxTopN     = 10
)

// ModelHandle is a fitted model bound to the corpus fingerprint it was built
// from. The zero value holds no model.
type ModelHandle struct {
	model *tfidf.Model
}

// NewModelHandle wraps a fitted model.
func NewModelHandle(m *tfidf.Model) ModelHandle { return ModelHandle{model: m} }

// Model returns the underlying model, or nil for the zero handle.
func (h ModelHandle) Model() *tfidf.Model { return h.model }

// Fingerprint is the corpus fingerprint the model was fitted on.
func (h ModelHandle) Fingerprint() string {
	if h.model == nil {
		return ""
	}
	return h.model.Fingerprint
}

// Terms is the vocabulary size.
func (h ModelHandle) Terms() int {
	if h.model == nil {
		return 0
	}
	return h.model.Dimension()
}

// Recommender is the entry point callers use to get ranked recommendations.
type Recommender struct {
	cache *modelcache.Manager
	live  *resolver.Live
	cfg   tfidf.Config
	log   *slog.Logger
}

// NewRecommender wires a recommender. live may be nil when live mode is off.
func NewRecommender(cache *modelcache.Manager, live *resolver.Live, cfg tfidf.Config, log *slog.Logger) *Recommender {
	if log == nil {
		log = slog.Default()
	}
	return &Recommender{cache: cache, live: live, cfg: cfg.WithDefaults(), log: log}
}

// LiveEnabled reports whether RecommendLive can be used.
func (r *Recommender) LiveEnabled() bool { return r.live != nil }

// EnsureModel loads the model for c from the cache or fits and stores a new
// one. Repeated calls for the same corpus reuse the cached fit.
func (r *Recommender) EnsureModel(ctx context.Context, c *corpus.Corpus) (ModelHandle, error) {
	if c == nil {
		return ModelHandle{}, fmt.Errorf("%w: no corpus", domain.ErrModelBuild)
	}
	m, err := r.cache.Ensure(ctx, c)
	if err != nil {
		return ModelHandle{}, err
	}
	return NewModelHandle(m), nil
}

// Rebuild fits a fresh model for c regardless of the cache and stores it.
func (r *Recommender) Rebuild(ctx context.Context, c *corpus.Corpus) (ModelHandle, error) {
	if c == nil {
		return ModelHandle{}, fmt.Errorf("%w: no corpus", domain.ErrModelBuild)
	}
	m, err := r.cache.Build(c)
	if err != nil {
		return ModelHandle{}, err
	}
	if err := r.cache.Save(ctx, m); err != nil {
		r.log.Warn("model cache write failed", "error", err)
	}
	return NewModelHandle(m), nil
}

// Recommend returns up to topN titles similar to title from the local corpus.
// A title absent from the corpus is a *domain.NotFoundError, never an empty
// result.
func (r *Recommender) Recommend(ctx context.Context, title string, c *corpus.Corpus, h ModelHandle, topN int) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c == nil || h.model == nil {
		return nil, fmt.Errorf("%w: missing corpus or model", domain.ErrModelMismatch)
	}
	if h.Fingerprint() != c.Fingerprint() {
		return nil, fmt.Errorf("%w: model built for another corpus", domain.ErrModelMismatch)
	}
	row, err := resolver.Exact(c, title)
	if err != nil {
		return nil, err
	}
	recs, err := ranker.Rank(ranker.Precomputed{Corpus: c, Model: h.model, Row: row}, topN)
	if err != nil {
		return nil, err
	}
	r.log.Debug("recommended", "query", title, "row", row, "results", len(recs))
	return recs, nil
}

// RecommendLive resolves title through the live provider and ranks the
// fetched candidates against its summary.
func (r *Recommender) RecommendLive(ctx context.Context, title string, topN int) ([]domain.Recommendation, error) {
	if r.live == nil {
		return nil, &domain.LookupError{Query: title, Reason: "live mode is not configured"}
	}
	res, err := r.live.Resolve(ctx, title)
	if err != nil {
		return nil, err
	}
	return ranker.Rank(ranker.AdHoc{QueryText: res.Source, Candidates: res.Candidates, Config: r.cfg}, topN)
}

// ClampTopN bounds n to [MinTopN, MaxTopN].
func ClampTopN(n int) int {
	if n < MinTopN {
		return MinTopN
	}
	if n > MaxTopN {
		return MaxTopN
	}
	return n
}

// ParseTopN reads a user-typed count. Unparseable text means DefaultTopN;
// the result is always clamped.
func ParseTopN(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return DefaultTopN
	}
	return ClampTopN(n)
}
