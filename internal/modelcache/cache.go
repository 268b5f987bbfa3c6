// Package modelcache persists fitted TF-IDF models so a corpus is vectorised
// once and reused across runs.
//
// Slots are keyed by corpus fingerprint, and a loaded model is checked against
// the fingerprint and row count of the corpus asking for it. A model built
// for different data is treated as a miss and rebuilt rather than reused.
package modelcache

import (
	"context"
	"fmt"
	"log/slog"

	"movierec/internal/corpus"
	"movierec/internal/domain"
	"movierec/internal/embedding/tfidf"
)

const slotPrefix = "tfidf-"

// Manager loads, saves and builds models on top of a Medium.
type Manager struct {
	medium  Medium
	cfg     tfidf.Config
	log     *slog.Logger
	onBuild func(*tfidf.Model)
}

// Option configures a Manager.
type Option func(*Manager)

// WithBuildHook registers fn to run after every fresh fit.
func WithBuildHook(fn func(*tfidf.Model)) Option {
	return func(m *Manager) { m.onBuild = fn }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager returns a Manager. A nil medium disables persistence.
func NewManager(medium Medium, cfg tfidf.Config, opts ...Option) *Manager {
	m := &Manager{medium: medium, cfg: cfg.WithDefaults(), log: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SlotFor returns the slot name used for a corpus fingerprint.
func SlotFor(fingerprint string) string { return slotPrefix + fingerprint }

// Load returns the cached model for fingerprint. Any failure is logged and
// reported as a miss.
func (m *Manager) Load(ctx context.Context, fingerprint string) (*tfidf.Model, bool) {
	if m.medium == nil {
		return nil, false
	}
	slot := SlotFor(fingerprint)
	data, ok, err := m.medium.Read(ctx, slot)
	if err != nil {
		m.log.Warn("model cache read failed", "slot", slot, "error", fmt.Errorf("%w: %v", domain.ErrCache, err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	model := &tfidf.Model{}
	if err := model.UnmarshalBinary(data); err != nil {
		m.log.Warn("model cache entry unreadable", "slot", slot, "error", fmt.Errorf("%w: %v", domain.ErrCache, err))
		return nil, false
	}
	if model.Fingerprint != fingerprint {
		m.log.Warn("model cache entry built for other corpus", "slot", slot, "model_fingerprint", model.Fingerprint)
		return nil, false
	}
	if model.Config != m.cfg {
		m.log.Info("model cache entry uses other vectorizer settings", "slot", slot)
		return nil, false
	}
	return model, true
}

// Save persists model under its fingerprint.
func (m *Manager) Save(ctx context.Context, model *tfidf.Model) error {
	if m.medium == nil {
		return nil
	}
	data, err := model.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCache, err)
	}
	if err := m.medium.Write(ctx, SlotFor(model.Fingerprint), data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCache, err)
	}
	return nil
}

// Ensure returns a model for c, loading it from the medium when a matching
// entry exists and otherwise fitting and persisting a new one. Cache failures
// never fail Ensure; only fitting errors do.
func (m *Manager) Ensure(ctx context.Context, c *corpus.Corpus) (*tfidf.Model, error) {
	fp := c.Fingerprint()
	if model, ok := m.Load(ctx, fp); ok {
		if len(model.Rows) == c.Len() {
			m.log.Debug("model cache hit", "rows", c.Len(), "terms", model.Dimension())
			return model, nil
		}
		m.log.Warn("model cache entry has wrong row count", "rows", len(model.Rows), "corpus_rows", c.Len())
	}

	m.log.Info("building TF-IDF model", "rows", c.Len())
	model, err := m.Build(c)
	if err != nil {
		return nil, err
	}
	if err := m.Save(ctx, model); err != nil {
		m.log.Warn("model cache write failed", "error", err)
	}
	return model, nil
}

// Build fits a fresh model for c without touching the medium.
func (m *Manager) Build(c *corpus.Corpus) (*tfidf.Model, error) {
	model, err := tfidf.Fit(c.Descriptions(), m.cfg)
	if err != nil {
		return nil, err
	}
	model.Fingerprint = c.Fingerprint()
	if m.onBuild != nil {
		m.onBuild(model)
	}
	return model, nil
}
