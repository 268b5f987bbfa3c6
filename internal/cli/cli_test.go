package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierec/internal/config"
	"movierec/internal/domain"
)

const moviesCSV = `id,title,overview
1,Alpha,a space movie about stars
2,Beta,a space movie about stars and planets
3,Gamma,a cooking documentary
4,Delta,"stars, planets and a long voyage"
`

func writeFixture(t *testing.T, cacheYAML string) (cfgPath, dataPath string) {
	t.Helper()
	dir := t.TempDir()
	dataPath = filepath.Join(dir, "movies.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(moviesCSV), 0o644))
	cfgPath = filepath.Join(dir, "config.yaml")
	body := cacheYAML + "log:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	return cfgPath, dataPath
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRecommendCmd_Table(t *testing.T) {
	cfg, data := writeFixture(t, "cache:\n  type: memory\n")

	out, _, err := run(t, "--config", cfg, "--data", data, "recommend", "-n", "02", "alpha")
	require.NoError(t, err)
	assert.Contains(t, out, "Top 2 recommendations for alpha")
	assert.Contains(t, out, "Beta")
	assert.NotContains(t, out, "Gamma")
}

func TestRecommendCmd_JSON(t *testing.T) {
	cfg, data := writeFixture(t, "cache:\n  type: none\n")

	out, _, err := run(t, "-c", cfg, "--data", data, "recommend", "--json", "-n", "abc", "Alpha")
	require.NoError(t, err)
	var recs []domain.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 3, "unparseable -n falls back to 5, capped by corpus size")
	assert.Equal(t, "Beta", recs[0].Title)
	assert.Equal(t, "Gamma", recs[2].Title)
	assert.Equal(t, 0.0, recs[2].Score)
}

func TestRecommendCmd_NotFound(t *testing.T) {
	cfg, data := writeFixture(t, "cache:\n  type: memory\n")

	_, _, err := run(t, "-c", cfg, "--data", data, "recommend", "Avatar", "2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "Movie 'Avatar 2' not found", describeError(err))
}

func TestRecommendCmd_Sample(t *testing.T) {
	cfg, data := writeFixture(t, "cache:\n  type: memory\n")

	out, _, err := run(t, "-c", cfg, "--data", data, "recommend", "--sample")
	require.NoError(t, err)
	assert.Contains(t, out, "Dataset sample (4 of 4 rows)")
	assert.Contains(t, out, "Delta")
}

func TestRecommendCmd_MissingTitle(t *testing.T) {
	_, _, err := run(t, "recommend")
	require.Error(t, err)
}

func TestRecommendCmd_BadDataset(t *testing.T) {
	cfg, _ := writeFixture(t, "cache:\n  type: memory\n")
	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("name,plot\nx,y\n"), 0o644))

	_, _, err := run(t, "-c", cfg, "--data", bad, "recommend", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataFormat))
	assert.True(t, strings.HasPrefix(describeError(err), "The dataset is not in the expected format"))
}

func TestRecommendCmd_MissingExplicitDataset(t *testing.T) {
	cfg, _ := writeFixture(t, "cache:\n  type: memory\n")
	missing := filepath.Join(t.TempDir(), "absent.csv")

	_, _, err := run(t, "-c", cfg, "--data", missing, "recommend", "Alpha")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "could not load dataset from "+missing)
}

func TestWriteRecommendations_Truncation(t *testing.T) {
	long := strings.Repeat("stars ", 200)
	recs := []domain.Recommendation{{Title: "Beta", Score: 0.5, Description: long}}

	var cut bytes.Buffer
	require.NoError(t, writeRecommendations(&cut, "Alpha", recs, false, 20))
	assert.Contains(t, cut.String(), "...")
	assert.NotContains(t, cut.String(), long)

	var whole bytes.Buffer
	require.NoError(t, writeRecommendations(&whole, "Alpha", recs, false, config.NoTruncation))
	assert.Contains(t, whole.String(), strings.TrimSpace(long))
	assert.NotContains(t, whole.String(), "...")
}

func TestBuildCmd_PersistsModel(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "models")
	cfg, data := writeFixture(t, "cache:\n  type: file\n  dir: "+cacheDir+"\n")

	out, _, err := run(t, "-c", cfg, "--data", data, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "Fitted 4 documents")

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	out, _, err = run(t, "-c", cfg, "--data", data, "recommend", "Delta")
	require.NoError(t, err)
	assert.Contains(t, out, "Beta")
}

func TestLiveCmd_RequiresTitle(t *testing.T) {
	_, _, err := run(t, "live")
	require.Error(t, err)
}

func TestDescribeError(t *testing.T) {
	lookup := &domain.LookupError{Query: "x", Reason: "no usable candidates"}
	assert.True(t, strings.HasPrefix(describeError(lookup), "Live lookup failed"))
	assert.Equal(t, "boom", describeError(errors.New("boom")))
}
