package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoHeader is returned by NewRowReader for an empty file.
var ErrNoHeader = errors.New("CSV must include a header row")

// Row is one data row keyed by lower-cased header name. Line is the 1-based
// line number in the source file (the header is line 1).
type Row struct {
	Line   int
	Fields map[string]string
}

// RowReader decodes comma-separated text lazily, one row per Next call.
// It is single-pass: once exhausted it keeps returning io.EOF.
type RowReader struct {
	r       *csv.Reader
	headers []string
}

// NewRowReader reads the header row from src and returns a reader positioned
// at the first data row.
func NewRowReader(src io.Reader) (*RowReader, error) {
	r := csv.NewReader(src)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv headers: %w", err)
	}

	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return &RowReader{r: r, headers: headers}, nil
}

// Headers returns the normalised header names.
func (rr *RowReader) Headers() []string {
	return rr.headers
}

// Next returns the next data row or io.EOF. Blank lines are skipped by the
// underlying decoder; missing trailing cells map to "". A malformed row
// yields an error wrapping *csv.ParseError and the reader stays usable.
func (rr *RowReader) Next() (Row, error) {
	record, err := rr.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		return Row{}, fmt.Errorf("reading csv row: %w", err)
	}

	line, _ := rr.r.FieldPos(0)

	fields := make(map[string]string, len(rr.headers))
	for i, h := range rr.headers {
		if i < len(record) {
			fields[h] = record[i]
		} else {
			fields[h] = ""
		}
	}
	return Row{Line: line, Fields: fields}, nil
}
