package tfidf

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
)

const (
	codecMagic   = "MRTF"
	codecVersion = uint16(1)
)

// ErrCodec is returned when serialised model bytes cannot be decoded.
var ErrCodec = errors.New("tfidf: invalid model encoding")

// wireModel is the gob payload; kept apart from Model so the
// BinaryMarshaler methods below do not recurse through gob.
type wireModel struct {
	Config      Config
	Terms       []string
	IDF         []float64
	Rows        []SparseVector
	Fingerprint string
}

// MarshalBinary encodes the model as a magic/version header followed by gob.
func (m *Model) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(codecMagic)
	if err := binary.Write(&buf, binary.BigEndian, codecVersion); err != nil {
		return nil, err
	}
	w := wireModel{
		Config:      m.Config,
		Terms:       m.Terms,
		IDF:         m.IDF,
		Rows:        m.Rows,
		Fingerprint: m.Fingerprint,
	}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes bytes produced by MarshalBinary.
func (m *Model) UnmarshalBinary(data []byte) error {
	if len(data) < len(codecMagic)+2 || string(data[:len(codecMagic)]) != codecMagic {
		return fmt.Errorf("%w: bad header", ErrCodec)
	}
	version := binary.BigEndian.Uint16(data[len(codecMagic):])
	if version != codecVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCodec, version)
	}
	var w wireModel
	if err := gob.NewDecoder(bytes.NewReader(data[len(codecMagic)+2:])).Decode(&w); err != nil {
		return fmt.Errorf("%w: %v", ErrCodec, err)
	}
	if len(w.IDF) != len(w.Terms) {
		return fmt.Errorf("%w: %d idf weights for %d terms", ErrCodec, len(w.IDF), len(w.Terms))
	}
	for i, row := range w.Rows {
		if len(row.Indices) != len(row.Values) {
			return fmt.Errorf("%w: row %d has mismatched indices and values", ErrCodec, i)
		}
		for _, idx := range row.Indices {
			if idx < 0 || idx >= len(w.Terms) {
				return fmt.Errorf("%w: row %d references column %d", ErrCodec, i, idx)
			}
		}
	}
	*m = Model{
		Config:      w.Config,
		Terms:       w.Terms,
		IDF:         w.IDF,
		Rows:        w.Rows,
		Fingerprint: w.Fingerprint,
	}
	m.reindex()
	return nil
}
