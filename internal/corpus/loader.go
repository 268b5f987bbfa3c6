package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"movierec/internal/domain"
)

// LoadCSV reads a CSV file with a header row.
func LoadCSV(path string) (RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawTable{}, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()
	table, err := ReadCSV(f)
	if err != nil {
		return RawTable{}, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return table, nil
}

// ReadCSV parses CSV with a header row. Rows may be ragged.
func ReadCSV(r io.Reader) (RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return RawTable{}, fmt.Errorf("%w: empty file, no header row", domain.ErrDataFormat)
	}
	if err != nil {
		return RawTable{}, fmt.Errorf("%w: %v", domain.ErrDataFormat, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return RawTable{}, fmt.Errorf("%w: %v", domain.ErrDataFormat, err)
		}
		rows = append(rows, rec)
	}
	return RawTable{Header: header, Rows: rows}, nil
}

// ResolvePath returns the first candidate that exists on disk, or the last
// candidate when none does so the caller reports a sensible path.
func ResolvePath(candidates ...string) string {
	var last string
	for _, p := range candidates {
		if p == "" {
			continue
		}
		last = p
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return last
}
