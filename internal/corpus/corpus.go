package corpus

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"movierec/internal/domain"
	"movierec/internal/textutil"
)

// RawTable is what a corpus loader hands to Normalize: a header row and the
// data rows in source order.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Columns names the source columns holding the title and description.
type Columns struct {
	Title       string
	Description string
}

// DefaultColumns matches the TMDB 5000 movies export.
func DefaultColumns() Columns {
	return Columns{Title: "title", Description: "overview"}
}

// Corpus is the immutable, ordered document table for one load.
type Corpus struct {
	docs        []domain.Document
	byTitle     map[string]int
	fingerprint string
}

// Normalize turns raw rows into a Corpus. Every row is kept, in order; row i
// becomes document i. Missing cells become empty strings. A table without the
// title or description column fails with domain.ErrDataFormat.
func Normalize(table RawTable, cols Columns) (*Corpus, error) {
	if cols.Title == "" || cols.Description == "" {
		def := DefaultColumns()
		if cols.Title == "" {
			cols.Title = def.Title
		}
		if cols.Description == "" {
			cols.Description = def.Description
		}
	}
	titleIdx := columnIndex(table.Header, cols.Title)
	if titleIdx < 0 {
		return nil, fmt.Errorf("%w: missing %q column", domain.ErrDataFormat, cols.Title)
	}
	descIdx := columnIndex(table.Header, cols.Description)
	if descIdx < 0 {
		return nil, fmt.Errorf("%w: missing %q column", domain.ErrDataFormat, cols.Description)
	}

	docs := make([]domain.Document, len(table.Rows))
	for i, row := range table.Rows {
		title := strings.TrimSpace(cell(row, titleIdx))
		docs[i] = domain.Document{
			ID:              i,
			Title:           title,
			Description:     strings.TrimSpace(cell(row, descIdx)),
			NormalizedTitle: textutil.FoldTitle(title),
		}
	}
	return New(docs), nil
}

// New builds a corpus from documents that are already normalised. IDs are
// reassigned to row positions and NormalizedTitle is always derived from Title.
func New(docs []domain.Document) *Corpus {
	c := &Corpus{
		docs:    make([]domain.Document, len(docs)),
		byTitle: make(map[string]int, len(docs)),
	}
	copy(c.docs, docs)
	for i := range c.docs {
		c.docs[i].ID = i
		c.docs[i].NormalizedTitle = textutil.FoldTitle(c.docs[i].Title)
		key := c.docs[i].NormalizedTitle
		if key == "" {
			continue
		}
		if _, seen := c.byTitle[key]; !seen {
			c.byTitle[key] = i
		}
	}
	c.fingerprint = fingerprint(c.docs)
	return c
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.docs) }

// Doc returns document i.
func (c *Corpus) Doc(i int) domain.Document { return c.docs[i] }

// Docs returns a copy of all documents in row order.
func (c *Corpus) Docs() []domain.Document {
	out := make([]domain.Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Descriptions returns the description field of every row, aligned by index.
func (c *Corpus) Descriptions() []string {
	out := make([]string, len(c.docs))
	for i, d := range c.docs {
		out[i] = d.Description
	}
	return out
}

// IndexOf returns the lowest row whose normalised title equals key.
func (c *Corpus) IndexOf(key string) (int, bool) {
	i, ok := c.byTitle[key]
	return i, ok
}

// Fingerprint identifies the corpus content. Two corpora with the same rows in
// the same order share a fingerprint.
func (c *Corpus) Fingerprint() string { return c.fingerprint }

func fingerprint(docs []domain.Document) string {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(docs)))
	h.Write(buf[:])
	for _, d := range docs {
		writeField(h, d.Title)
		writeField(h, d.Description)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField length-prefixes s so field boundaries cannot collide.
func writeField(h hash.Hash, s string) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(s)))
	h.Write(buf[:])
	h.Write([]byte(s))
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
