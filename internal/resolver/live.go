package resolver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"

	"movierec/internal/domain"
	"movierec/internal/textutil"
)

// Live mode defaults.
const (
	DefaultMaxCandidates    = 20
	DefaultSummarySentences = 3
)

// FetchStats counts what happened to each searched candidate.
type FetchStats struct {
	Searched    int
	Fetched     int
	Failed      int
	SkippedSelf int
}

// LiveResult is the source text and the candidates to rank against it.
type LiveResult struct {
	Source     string
	Candidates []domain.Candidate
	Stats      FetchStats
}

// Live resolves titles through a text-search provider.
type Live struct {
	provider      domain.TextSearch
	maxCandidates int
	sentences     int
	log           *slog.Logger
}

// NewLive returns a live resolver. Non-positive limits take the defaults.
func NewLive(provider domain.TextSearch, maxCandidates, sentences int, log *slog.Logger) *Live {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	if sentences <= 0 {
		sentences = DefaultSummarySentences
	}
	if log == nil {
		log = slog.Default()
	}
	return &Live{provider: provider, maxCandidates: maxCandidates, sentences: sentences, log: log}
}

// Resolve fetches the summary for title and for up to maxCandidates related
// titles. Candidate failures are counted and skipped; a failed source fetch or
// an empty candidate list is a *domain.LookupError.
func (l *Live) Resolve(ctx context.Context, title string) (LiveResult, error) {
	key := textutil.FoldTitle(title)
	if key == "" {
		return LiveResult{}, &domain.LookupError{Query: title, Reason: "empty title"}
	}

	source, err := l.provider.Summary(ctx, title, l.sentences)
	if err != nil {
		return LiveResult{}, &domain.LookupError{Query: title, Reason: "source summary", Err: err}
	}

	titles, err := l.provider.Search(ctx, title, l.maxCandidates)
	if err != nil {
		return LiveResult{}, &domain.LookupError{Query: title, Reason: "candidate search", Err: err}
	}
	titles = lo.Uniq(lo.Filter(titles, func(t string, _ int) bool { return textutil.FoldTitle(t) != "" }))
	if len(titles) > l.maxCandidates {
		titles = titles[:l.maxCandidates]
	}

	res := LiveResult{Source: source}
	res.Stats.Searched = len(titles)
	for _, candidate := range titles {
		if textutil.FoldTitle(candidate) == key {
			res.Stats.SkippedSelf++
			continue
		}
		text, err := l.provider.Summary(ctx, candidate, l.sentences)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return LiveResult{}, &domain.LookupError{Query: title, Reason: "candidate summary", Err: err}
			}
			res.Stats.Failed++
			l.log.Debug("candidate summary skipped", "candidate", candidate, "error", err)
			continue
		}
		res.Stats.Fetched++
		res.Candidates = append(res.Candidates, domain.Candidate{Title: candidate, Description: text})
	}

	l.log.Info("live lookup",
		"query", title,
		"searched", res.Stats.Searched,
		"fetched", res.Stats.Fetched,
		"failed", res.Stats.Failed,
		"skipped_self", res.Stats.SkippedSelf,
	)
	if len(res.Candidates) == 0 {
		return res, &domain.LookupError{Query: title, Reason: "no usable candidates"}
	}
	return res, nil
}
