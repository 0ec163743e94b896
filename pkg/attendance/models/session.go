package models

import (
	"fmt"
	"strings"
)

// DefaultSessionCount is the number of tracked sessions in a course.
const DefaultSessionCount = 21

// DefaultSessionLabel is the column naming pattern for sessions.
const DefaultSessionLabel = "Session %d"

// SessionField describes one session column.
type SessionField struct {
	// Ordinal is the 1-based session number.
	Ordinal int
	// Label is the exact header label of the column.
	Label string
}

// SessionSchema describes the ordered set of session columns.
type SessionSchema struct {
	// Count is the number of sessions.
	Count int
	// LabelFormat is a fmt pattern with a single %d verb for the ordinal.
	LabelFormat string
}

// DefaultSessionSchema returns the 21-session "Session N" schema.
func DefaultSessionSchema() SessionSchema {
	return SessionSchema{Count: DefaultSessionCount, LabelFormat: DefaultSessionLabel}
}

// Validate checks that the schema can produce labels.
func (s SessionSchema) Validate() error {
	if s.Count < 1 {
		return fmt.Errorf("session count must be at least 1, got %d", s.Count)
	}
	if strings.Count(s.LabelFormat, "%d") != 1 {
		return fmt.Errorf("session label %q must contain exactly one %%d", s.LabelFormat)
	}
	return nil
}

// Fields returns the session descriptors in order 1..Count.
func (s SessionSchema) Fields() []SessionField {
	fields := make([]SessionField, 0, s.Count)
	for i := 1; i <= s.Count; i++ {
		fields = append(fields, SessionField{
			Ordinal: i,
			Label:   fmt.Sprintf(s.LabelFormat, i),
		})
	}
	return fields
}
