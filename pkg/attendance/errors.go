package attendance

import (
	"errors"
	"fmt"

	"github.com/ukaji3/attendance-mailer/pkg/attendance/parser"
)

// ErrMissingCredentials indicates the sender address or secret is unset.
var ErrMissingCredentials = errors.New("email configuration not found: set " + EnvSenderAddress + " and " + EnvSenderSecret)

// ErrFileNotFound indicates the source file does not exist.
var ErrFileNotFound = parser.ErrFileNotFound

// ErrInvalidFormat indicates the source is not a readable spreadsheet.
var ErrInvalidFormat = parser.ErrInvalidFormat

// RowError represents a row that stopped the run.
type RowError struct {
	Row   int
	Stage string // e.g. "render"
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Stage, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// NewRowError creates a new RowError.
func NewRowError(row int, stage string, err error) *RowError {
	return &RowError{
		Row:   row,
		Stage: stage,
		Err:   err,
	}
}
