package app

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"culture_hotspots/internal/domain"
)

// rowReader streams header-keyed rows out of a CSV body.
type rowReader struct {
	r      *csv.Reader
	header []string
}

func newRowReader(r io.Reader) (*rowReader, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty source")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	// rows must match the header width; mismatches surface as per-row errors
	cr.FieldsPerRecord = len(header)
	return &rowReader{r: cr, header: header}, nil
}

// Next returns io.EOF at the end of input. A *csv.ParseError affects only the
// current row and reading may continue.
func (rr *rowReader) Next() (domain.RawRow, error) {
	rec, err := rr.r.Read()
	if err != nil {
		return nil, err
	}
	row := make(domain.RawRow, len(rr.header))
	for i, col := range rr.header {
		if i < len(rec) {
			row[col] = rec[i]
		}
	}
	return row, nil
}

// isRowError reports whether err is confined to a single CSV record.
func isRowError(err error) bool {
	var pe *csv.ParseError
	return errors.As(err, &pe)
}
