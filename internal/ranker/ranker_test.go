package ranker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierec/internal/corpus"
	"movierec/internal/domain"
	"movierec/internal/embedding/tfidf"
)

func fitted(t *testing.T, docs []domain.Document) (*corpus.Corpus, *tfidf.Model) {
	t.Helper()
	c := corpus.New(docs)
	m, err := tfidf.Fit(c.Descriptions(), tfidf.DefaultConfig())
	require.NoError(t, err)
	return c, m
}

func titles(recs []domain.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestRank_Scenario(t *testing.T) {
	c, m := fitted(t, []domain.Document{
		{Title: "Alpha", Description: "a space movie about stars"},
		{Title: "Beta", Description: "a space movie about stars and planets"},
		{Title: "Gamma", Description: "a cooking documentary"},
	})

	recs, err := Rank(Precomputed{Corpus: c, Model: m, Row: 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta", "Gamma"}, titles(recs))
	assert.Greater(t, recs[0].Score, recs[1].Score)
	assert.Equal(t, 0.0, recs[1].Score)
	assert.Equal(t, "a space movie about stars and planets", recs[0].Description)
}

func TestRank_ExcludesSelfAndSorts(t *testing.T) {
	docs := []domain.Document{
		{Title: "Q", Description: "heist crew vault robbery"},
		{Title: "Z1", Description: "romance in paris"},
		{Title: "A", Description: "heist crew vault"},
		{Title: "Z2", Description: ""},
		{Title: "B", Description: "heist crew"},
		{Title: "Q-again", Description: "heist crew vault robbery"},
		{Title: "Z3", Description: "romance in rome"},
	}
	c, m := fitted(t, docs)

	recs, err := Rank(Precomputed{Corpus: c, Model: m, Row: 0}, 10)
	require.NoError(t, err)
	require.Len(t, recs, len(docs)-1)
	assert.NotContains(t, titles(recs), "Q")
	assert.Equal(t, "Q-again", recs[0].Title)
	assert.InDelta(t, 1.0, recs[0].Score, 1e-9)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score)
	}
	// Zero-score ties keep row order.
	assert.Equal(t, []string{"Z1", "Z2", "Z3"}, titles(recs[3:]))
}

func TestRank_TopN(t *testing.T) {
	c, m := fitted(t, []domain.Document{
		{Title: "A", Description: "space"},
		{Title: "B", Description: "space stars"},
		{Title: "C", Description: "stars"},
	})
	for k, want := range map[int]int{0: 0, 1: 1, 2: 2, 5: 2, 10: 2, -1: 0} {
		recs, err := Rank(Precomputed{Corpus: c, Model: m, Row: 0}, k)
		require.NoError(t, err)
		assert.Len(t, recs, want, "top %d", k)
	}
}

func TestRank_SingleDocumentCorpus(t *testing.T) {
	c, m := fitted(t, []domain.Document{{Title: "Only", Description: "lonely"}})
	recs, err := Rank(Precomputed{Corpus: c, Model: m, Row: 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRank_Mismatch(t *testing.T) {
	c, _ := fitted(t, []domain.Document{{Title: "A", Description: "x y"}, {Title: "B", Description: "y z"}})
	_, other := fitted(t, []domain.Document{{Title: "A", Description: "x y"}})

	_, err := Rank(Precomputed{Corpus: c, Model: other, Row: 0}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModelMismatch))

	_, err = Rank(Precomputed{Corpus: c, Row: 0}, 1)
	assert.True(t, errors.Is(err, domain.ErrModelMismatch))
}

func TestRank_RowOutOfRange(t *testing.T) {
	c, m := fitted(t, []domain.Document{{Title: "A", Description: "x"}})
	_, err := Rank(Precomputed{Corpus: c, Model: m, Row: 3}, 1)
	require.Error(t, err)
}

func TestRank_AdHoc(t *testing.T) {
	in := AdHoc{
		QueryText: "Inception is a science fiction heist film about dreams.",
		Candidates: []domain.Candidate{
			{Title: "Cooking", Description: "Cooking is the art of preparing food."},
			{Title: "Heat", Description: "Heat is a crime film about a heist crew."},
			{Title: "Dream", Description: "A dream is a series of images during sleep; dreams and film."},
			{Title: "Blank", Description: ""},
		},
		Config: tfidf.DefaultConfig(),
	}
	recs, err := Rank(in, 10)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.ElementsMatch(t, []string{"Heat", "Dream"}, titles(recs[:2]))
	assert.Equal(t, []string{"Cooking", "Blank"}, titles(recs[2:]))
	assert.Equal(t, 0.0, recs[3].Score)

	top, err := Rank(in, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestRank_AdHocNoCandidates(t *testing.T) {
	recs, err := Rank(AdHoc{QueryText: "anything"}, 5)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
