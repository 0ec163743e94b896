// Package models defines data structures for attendance reporting.
package models

import (
	"errors"
	"fmt"
)

// Identity column labels every source must carry.
const (
	FieldCollege    = "College"
	FieldRollNumber = "Roll Number"
	FieldName       = "Name"
	FieldEmail      = "Email"
	FieldBranch     = "Branch"
)

// IdentityFields lists the identity columns in display order.
var IdentityFields = []string{FieldCollege, FieldRollNumber, FieldName, FieldEmail, FieldBranch}

// ErrMissingField indicates a record has no column with the requested label.
var ErrMissingField = errors.New("missing field")

// FieldError reports which column was absent from a record.
type FieldError struct {
	Field string
	Row   int
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("row %d: %v %q", e.Row, ErrMissingField, e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

// StudentRecord represents one data row keyed by header label.
type StudentRecord struct {
	// Row is the 1-based spreadsheet row the record was read from.
	Row int
	// Fields maps header label to cell value. Short rows are padded with "".
	Fields map[string]string
}

// Get returns the value of a column, or a *FieldError when the header
// did not contain it.
func (r StudentRecord) Get(field string) (string, error) {
	v, ok := r.Fields[field]
	if !ok {
		return "", &FieldError{Field: field, Row: r.Row}
	}
	return v, nil
}

// Lookup returns the value of a column and "" when absent.
func (r StudentRecord) Lookup(field string) string {
	return r.Fields[field]
}

// Identity collects the identity columns of a record.
func (r StudentRecord) Identity() (Identity, error) {
	var id Identity
	targets := []*string{&id.College, &id.RollNumber, &id.Name, &id.Email, &id.Branch}
	for i, field := range IdentityFields {
		v, err := r.Get(field)
		if err != nil {
			return Identity{}, err
		}
		*targets[i] = v
	}
	return id, nil
}

// Identity holds the fields that identify a student.
type Identity struct {
	College    string
	RollNumber string
	Name       string
	Email      string
	Branch     string
}
