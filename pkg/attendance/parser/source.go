// Package parser provides spreadsheet loading for attendance sources.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrFileNotFound indicates the source file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the source could not be parsed as a spreadsheet.
var ErrInvalidFormat = errors.New("invalid spreadsheet format")

// rowReader yields raw rows until io.EOF.
type rowReader interface {
	next() ([]string, error)
	close() error
}

// openReader picks a reader by file extension.
func openReader(path, sheet string) (rowReader, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return openCSV(path)
	default:
		return openXLSX(path, sheet)
	}
}

type xlsxReader struct {
	file *excelize.File
	rows *excelize.Rows
}

func openXLSX(path, sheet string) (*xlsxReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s: sheet %q does not exist", ErrInvalidFormat, path, sheet)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}
	return &xlsxReader{file: f, rows: rows}, nil
}

func (r *xlsxReader) next() ([]string, error) {
	if !r.rows.Next() {
		if err := r.rows.Error(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return nil, io.EOF
	}
	cols, err := r.rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return cols, nil
}

func (r *xlsxReader) close() error {
	rowsErr := r.rows.Close()
	if err := r.file.Close(); err != nil {
		return err
	}
	return rowsErr
}

type csvReader struct {
	file   *os.File
	reader *csv.Reader
}

func openCSV(path string) (*csvReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	return &csvReader{file: file, reader: reader}, nil
}

func (r *csvReader) next() ([]string, error) {
	rec, err := r.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return rec, nil
}

func (r *csvReader) close() error {
	return r.file.Close()
}
