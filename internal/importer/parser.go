package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Structural errors abort the whole run before any line is processed.
var (
	// ErrEmptyFile indicates the uploaded file carries no content.
	ErrEmptyFile = errors.New("importer: file is empty")
	// ErrFileTooLarge indicates the file exceeds the per-kind size ceiling.
	ErrFileTooLarge = errors.New("importer: file exceeds size limit")
	// ErrUnreadableHeader indicates the first line could not be parsed.
	ErrUnreadableHeader = errors.New("importer: header cannot be read")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader yields data records from a delimited file, one line at a time.
// Re-invoking NewReader over the same bytes restarts the sequence.
type Reader struct {
	cr      *csv.Reader
	cols    map[string]int
	line    int
	pending *Record
}

// NewReader detects the field delimiter, strips an optional header row and
// positions the reader on the first data line. The delimiter is ';' when the
// first line contains one, ',' otherwise.
func NewReader(content []byte, layout Layout) (*Reader, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyFile
	}

	firstLine := content
	if idx := bytes.IndexByte(content, '\n'); idx >= 0 {
		firstLine = content[:idx]
	}
	delimiter := byte(',')
	if bytes.IndexByte(firstLine, ';') >= 0 {
		delimiter = ';'
	}

	cr := csv.NewReader(bytes.NewReader(content))
	cr.Comma = rune(delimiter)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableHeader, err)
	}

	r := &Reader{cr: cr, cols: positionalColumns(layout)}
	if isHeaderRow(first, layout) {
		r.cols = headerColumns(first)
		return r, nil
	}
	r.line = 1
	rec := Record{Line: 1, fields: first, cols: r.cols}
	r.pending = &rec
	return r, nil
}

// Next returns the next data record. A malformed line is returned with a
// non-nil error and a valid line number so the caller can record it and keep
// going. io.EOF signals the end of the file.
func (r *Reader) Next() (Record, error) {
	if r.pending != nil {
		rec := *r.pending
		r.pending = nil
		if rec.blank() {
			r.line--
			return r.Next()
		}
		return rec, nil
	}

	fields, err := r.cr.Read()
	if errors.Is(err, io.EOF) {
		return Record{}, io.EOF
	}
	r.line++
	if err != nil {
		return Record{Line: r.line, cols: r.cols}, fmt.Errorf("malformed line: %v", err)
	}
	rec := Record{Line: r.line, fields: fields, cols: r.cols}
	if rec.blank() {
		r.line--
		return r.Next()
	}
	return rec, nil
}

func isHeaderRow(fields []string, layout Layout) bool {
	if len(fields) == 0 || len(layout.Columns) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(fields[0]), layout.Columns[0])
}

func positionalColumns(layout Layout) map[string]int {
	cols := make(map[string]int, len(layout.Columns))
	for i, name := range layout.Columns {
		cols[strings.ToLower(name)] = i
	}
	return cols
}

func headerColumns(fields []string) map[string]int {
	cols := make(map[string]int, len(fields))
	for i, name := range fields {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}
