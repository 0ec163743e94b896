package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ukaji3/attendance-mailer/pkg/attendance/models"
)

// utf8BOM is stripped from the first header cell of CSV exports.
const utf8BOM = "\ufeff"

// Records iterates the data rows of a source lazily.
//
//	recs, err := parser.Open("attendance.xlsx", "")
//	if err != nil { ... }
//	defer recs.Close()
//	for recs.Next() {
//		rec := recs.Record()
//	}
//	if err := recs.Err(); err != nil { ... }
type Records struct {
	reader  rowReader
	header  []string
	row     int
	current models.StudentRecord
	err     error
}

// Open opens a spreadsheet and reads its header row. Sheet selects the
// worksheet of an xlsx workbook; empty means the active sheet.
func Open(path, sheet string) (*Records, error) {
	reader, err := openReader(path, sheet)
	if err != nil {
		return nil, err
	}

	first, err := reader.next()
	if err == io.EOF {
		reader.close()
		return nil, fmt.Errorf("%w: %s: no header row", ErrInvalidFormat, path)
	}
	if err != nil {
		reader.close()
		return nil, err
	}

	header := make([]string, len(first))
	for i, label := range first {
		if i == 0 {
			label = strings.TrimPrefix(label, utf8BOM)
		}
		header[i] = strings.TrimSpace(label)
	}

	return &Records{reader: reader, header: header, row: 1}, nil
}

// Header returns the column labels in source order.
func (r *Records) Header() []string {
	return r.header
}

// Next advances to the next non-blank data row.
func (r *Records) Next() bool {
	if r.err != nil {
		return false
	}
	for {
		cells, err := r.reader.next()
		if errors.Is(err, io.EOF) {
			return false
		}
		r.row++
		if err != nil {
			r.err = fmt.Errorf("row %d: %w", r.row, err)
			return false
		}
		if isBlankRow(cells) {
			continue
		}
		r.current = toRecord(r.header, cells, r.row)
		return true
	}
}

// Record returns the row read by the last call to Next.
func (r *Records) Record() models.StudentRecord {
	return r.current
}

// Err returns the first read error, if any.
func (r *Records) Err() error {
	return r.err
}

// Close releases the underlying file.
func (r *Records) Close() error {
	return r.reader.close()
}

// toRecord maps cells onto header labels. Missing trailing cells become ""
// and cells beyond the header are dropped.
func toRecord(header, cells []string, row int) models.StudentRecord {
	fields := make(map[string]string, len(header))
	for i, label := range header {
		if label == "" {
			continue
		}
		value := ""
		if i < len(cells) {
			value = strings.TrimSpace(cells[i])
		}
		fields[label] = value
	}
	return models.StudentRecord{Row: row, Fields: fields}
}

// isBlankRow reports whether every cell of a row is empty.
func isBlankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
