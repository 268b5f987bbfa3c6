// Package tfidf fits a TF-IDF vector space over a list of texts and produces
// one L2-normalised sparse row per text.
package tfidf

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"movierec/internal/domain"
)

// Stopword policies.
const (
	StopwordsEnglish = "english"
	StopwordsNone    = "none"
)

// DefaultMaxFeatures caps the vocabulary when the config leaves it unset.
const DefaultMaxFeatures = 20000

// tokenPattern matches runs of letters and digits. Apostrophes split a token,
// so "they're" yields "they" and "re" and both meet the stopword filter.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Config controls tokenisation and vocabulary size.
type Config struct {
	MaxFeatures int    `yaml:"max_features" split_words:"true" validate:"gte=0"`
	Stopwords   string `yaml:"stopwords" split_words:"true" validate:"omitempty,oneof=english none"`
	MinTokenLen int    `yaml:"min_token_len" split_words:"true" validate:"gte=0"`
}

// DefaultConfig mirrors an English stopword list with a 20k term cap.
func DefaultConfig() Config {
	return Config{MaxFeatures: DefaultMaxFeatures, Stopwords: StopwordsEnglish, MinTokenLen: 2}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.MaxFeatures == 0 {
		c.MaxFeatures = d.MaxFeatures
	}
	if c.Stopwords == "" {
		c.Stopwords = d.Stopwords
	}
	if c.MinTokenLen == 0 {
		c.MinTokenLen = d.MinTokenLen
	}
	return c
}

// Model is a fitted vector space. It is never mutated after Fit or decode,
// so it is safe for concurrent readers.
type Model struct {
	Config Config
	// Terms holds the vocabulary in index order.
	Terms []string
	IDF   []float64
	// Rows holds one weighted row per fitted text, aligned by index.
	Rows []SparseVector
	// Fingerprint identifies the corpus the model was fitted on, when known.
	Fingerprint string

	vocab     map[string]int
	stopwords map[string]struct{}
}

// Fit builds the vocabulary, IDF weights and row matrix for texts.
// Empty texts produce all-zero rows. Fit fails with domain.ErrModelBuild when
// texts is empty.
func Fit(texts []string, cfg Config) (*Model, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: empty corpus", domain.ErrModelBuild)
	}
	cfg = cfg.WithDefaults()
	m := &Model{Config: cfg, stopwords: stopwordsFor(cfg.Stopwords)}

	docs := make([][]string, len(texts))
	counts := make(map[string]int)
	df := make(map[string]int)
	for i, text := range texts {
		tokens := m.tokenize(text)
		docs[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			counts[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := selectTerms(counts, cfg.MaxFeatures)
	m.Terms = terms
	m.IDF = make([]float64, len(terms))
	m.vocab = make(map[string]int, len(terms))
	n := float64(len(texts))
	for i, term := range terms {
		m.vocab[term] = i
		// Smoothed IDF
		m.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	m.Rows = make([]SparseVector, len(docs))
	for i, tokens := range docs {
		m.Rows[i] = m.weigh(tokens)
	}
	return m, nil
}

// Dimension returns the vocabulary size.
func (m *Model) Dimension() int { return len(m.Terms) }

// Index returns the column of term.
func (m *Model) Index(term string) (int, bool) {
	i, ok := m.vocab[term]
	return i, ok
}

// Transform projects text into the fitted space. Unknown terms are ignored.
func (m *Model) Transform(text string) SparseVector {
	return m.weigh(m.tokenize(text))
}

// selectTerms keeps the maxFeatures most frequent terms (ties by term) and
// returns them sorted so column order does not depend on map iteration.
func selectTerms(counts map[string]int, maxFeatures int) []string {
	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	if maxFeatures > 0 && len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			ci, cj := counts[terms[i]], counts[terms[j]]
			if ci != cj {
				return ci > cj
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)
	return terms
}

func (m *Model) weigh(tokens []string) SparseVector {
	tf := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := m.vocab[tok]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return SparseVector{}
	}
	v := SparseVector{
		Indices: make([]int, 0, len(tf)),
		Values:  make([]float64, 0, len(tf)),
	}
	for idx := range tf {
		v.Indices = append(v.Indices, idx)
	}
	sort.Ints(v.Indices)
	for _, idx := range v.Indices {
		v.Values = append(v.Values, float64(tf[idx])*m.IDF[idx])
	}
	v.normalize()
	return v
}

func (m *Model) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if utf8.RuneCountInString(t) < m.Config.MinTokenLen {
			continue
		}
		if _, isStop := m.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// reindex restores the lookup tables that are not serialised.
func (m *Model) reindex() {
	m.vocab = make(map[string]int, len(m.Terms))
	for i, t := range m.Terms {
		m.vocab[t] = i
	}
	m.stopwords = stopwordsFor(m.Config.Stopwords)
}
