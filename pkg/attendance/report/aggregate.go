package report

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/attendance-mailer/pkg/attendance/models"
)

// ErrMalformedSession indicates a session cell is not a whole, non-negative
// number of minutes.
var ErrMalformedSession = errors.New("malformed session value")

// SessionValueError reports the offending session cell.
type SessionValueError struct {
	Row   int
	Field string
	Value string
}

func (e *SessionValueError) Error() string {
	return fmt.Sprintf("row %d: %v in %q: %q", e.Row, ErrMalformedSession, e.Field, e.Value)
}

func (e *SessionValueError) Unwrap() error {
	return ErrMalformedSession
}

// MaxSessionMinutes bounds a single session cell so that the sum over a
// schema cannot overflow a 64-bit int.
const MaxSessionMinutes = math.MaxInt32

// ParseMinutes coerces a cell to minutes. Blank cells are zero; integral
// decimals such as "60.0" are accepted since spreadsheets often store
// numbers that way. Signs, exponents and hex forms are rejected.
func ParseMinutes(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, true
	}
	whole, frac, _ := strings.Cut(value, ".")
	if !isDigits(whole) || strings.Trim(frac, "0") != "" {
		return 0, false
	}
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || n > MaxSessionMinutes {
		return 0, false
	}
	return int(n), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Sessions reads every session of the schema in order. A column missing
// from the record counts as zero minutes.
func Sessions(rec models.StudentRecord, schema models.SessionSchema) ([]models.SessionDuration, error) {
	fields := schema.Fields()
	out := make([]models.SessionDuration, 0, len(fields))
	for _, field := range fields {
		raw := rec.Lookup(field.Label)
		minutes, ok := ParseMinutes(raw)
		if !ok {
			return nil, &SessionValueError{Row: rec.Row, Field: field.Label, Value: raw}
		}
		out = append(out, models.SessionDuration{
			Label:   field.Label,
			Minutes: minutes,
			Display: FormatDuration(minutes),
		})
	}
	return out, nil
}

// TotalMinutes sums all session durations of a record.
func TotalMinutes(rec models.StudentRecord, schema models.SessionSchema) (int, error) {
	sessions, err := Sessions(rec, schema)
	if err != nil {
		return 0, err
	}
	return sum(sessions), nil
}

// Total returns the formatted aggregate attendance of a record.
func Total(rec models.StudentRecord, schema models.SessionSchema) (string, error) {
	total, err := TotalMinutes(rec, schema)
	if err != nil {
		return "", err
	}
	return FormatTotal(total), nil
}

func sum(sessions []models.SessionDuration) int {
	total := 0
	for _, s := range sessions {
		total += s.Minutes
	}
	return total
}
