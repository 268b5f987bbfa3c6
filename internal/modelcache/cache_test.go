package modelcache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierec/internal/corpus"
	"movierec/internal/domain"
	"movierec/internal/embedding/tfidf"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCorpus() *corpus.Corpus {
	return corpus.New([]domain.Document{
		{Title: "Alpha", Description: "a space movie about stars"},
		{Title: "Beta", Description: "a space movie about stars and planets"},
		{Title: "Gamma", Description: "a cooking documentary"},
	})
}

// failingMedium fails every read and write.
type failingMedium struct{}

func (failingMedium) Read(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func (failingMedium) Write(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func (failingMedium) Close() error { return nil }

func newCountingManager(medium Medium, builds *int) *Manager {
	return NewManager(medium, tfidf.DefaultConfig(),
		WithLogger(discardLogger()),
		WithBuildHook(func(*tfidf.Model) { *builds++ }),
	)
}

func TestEnsure_BuildsOnceThenLoads(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	c := testCorpus()

	builds := 0
	first, err := newCountingManager(medium, &builds).Ensure(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 1, builds)

	_, ok, err := medium.Read(ctx, SlotFor(c.Fingerprint()))
	require.NoError(t, err)
	assert.True(t, ok, "model persisted after build")

	// A new manager simulates a new process sharing the medium.
	second, err := newCountingManager(medium, &builds).Ensure(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 1, builds, "second ensure must not rebuild")
	assert.Equal(t, first.Terms, second.Terms)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, c.Fingerprint(), second.Fingerprint)
}

func TestEnsure_DifferentCorpusRebuilds(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	builds := 0
	mgr := newCountingManager(medium, &builds)

	_, err := mgr.Ensure(ctx, testCorpus())
	require.NoError(t, err)

	other := corpus.New([]domain.Document{{Title: "Delta", Description: "a heist thriller"}})
	model, err := mgr.Ensure(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 2, builds)
	assert.Len(t, model.Rows, 1)
}

func TestLoad_RejectsEntryForOtherCorpus(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	builds := 0
	mgr := newCountingManager(medium, &builds)
	c := testCorpus()

	stale, err := tfidf.Fit([]string{"unrelated text"}, tfidf.DefaultConfig())
	require.NoError(t, err)
	stale.Fingerprint = "someone-else"
	data, err := stale.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, medium.Write(ctx, SlotFor(c.Fingerprint()), data))

	_, ok := mgr.Load(ctx, c.Fingerprint())
	assert.False(t, ok)

	model, err := mgr.Ensure(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 1, builds)
	assert.Len(t, model.Rows, c.Len())
}

func TestLoad_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	c := testCorpus()
	require.NoError(t, medium.Write(ctx, SlotFor(c.Fingerprint()), []byte("garbage")))

	builds := 0
	model, err := newCountingManager(medium, &builds).Ensure(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 1, builds)
	assert.Len(t, model.Rows, 3)
}

func TestLoad_ConfigChangeIsMiss(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	c := testCorpus()
	builds := 0
	_, err := newCountingManager(medium, &builds).Ensure(ctx, c)
	require.NoError(t, err)

	other := NewManager(medium, tfidf.Config{MaxFeatures: 2}, WithLogger(discardLogger()))
	_, ok := other.Load(ctx, c.Fingerprint())
	assert.False(t, ok)
}

func TestEnsure_CacheFailureFallsThrough(t *testing.T) {
	builds := 0
	model, err := newCountingManager(failingMedium{}, &builds).Ensure(context.Background(), testCorpus())
	require.NoError(t, err)
	assert.Equal(t, 1, builds)
	assert.Len(t, model.Rows, 3)
}

func TestSave_WrapsErrCache(t *testing.T) {
	mgr := NewManager(failingMedium{}, tfidf.DefaultConfig(), WithLogger(discardLogger()))
	model, err := mgr.Build(testCorpus())
	require.NoError(t, err)
	err = mgr.Save(context.Background(), model)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCache))
}

func TestEnsure_NilMedium(t *testing.T) {
	builds := 0
	mgr := newCountingManager(nil, &builds)
	_, err := mgr.Ensure(context.Background(), testCorpus())
	require.NoError(t, err)
	_, err = mgr.Ensure(context.Background(), testCorpus())
	require.NoError(t, err)
	assert.Equal(t, 2, builds)
}

func TestEnsure_EmptyCorpus(t *testing.T) {
	_, err := NewManager(NewMemoryMedium(), tfidf.DefaultConfig(), WithLogger(discardLogger())).
		Ensure(context.Background(), corpus.New(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModelBuild))
}

func TestMedia_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fileMedium, err := NewFileMedium(filepath.Join(dir, "files"))
	require.NoError(t, err)
	sqliteMedium, err := NewSQLiteMedium(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	badgerMedium, err := NewBadgerMedium("")
	require.NoError(t, err)

	media := map[string]Medium{
		"memory": NewMemoryMedium(),
		"file":   fileMedium,
		"sqlite": sqliteMedium,
		"badger": badgerMedium,
	}
	for name, medium := range media {
		t.Run(name, func(t *testing.T) {
			defer func() { assert.NoError(t, medium.Close()) }()

			_, ok, err := medium.Read(ctx, "tfidf-missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, medium.Write(ctx, "tfidf-abc", []byte("one")))
			require.NoError(t, medium.Write(ctx, "tfidf-abc", []byte("two")))
			data, ok, err := medium.Read(ctx, "tfidf-abc")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("two"), data)
		})
	}
}

func TestEnsure_WithSQLiteMedium(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "models.db")
	c := testCorpus()
	builds := 0

	medium, err := NewSQLiteMedium(path)
	require.NoError(t, err)
	_, err = newCountingManager(medium, &builds).Ensure(ctx, c)
	require.NoError(t, err)
	require.NoError(t, medium.Close())

	reopened, err := NewSQLiteMedium(path)
	require.NoError(t, err)
	defer reopened.Close()
	_, err = newCountingManager(reopened, &builds).Ensure(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 1, builds)
}
