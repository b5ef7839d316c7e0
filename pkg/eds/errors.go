package eds

import (
	"errors"
	"fmt"
)

// Import errors.
var (
	ErrSourceNotFound   = errors.New("source not found")
	ErrMalformedSection = errors.New("malformed section")
	ErrInvalidNodeID    = errors.New("invalid node id")
	ErrInvalidDocType   = errors.New("invalid document type")
)

// SectionError reports a problem tied to a location in the source file.
type SectionError struct {
	// Section is the header text without brackets.
	Section string

	// Key is the offending key, empty when the header itself is at fault.
	Key string

	// Line is the 1-based line of the key or header, 0 when unknown.
	Line int

	// Err is the underlying error.
	Err error
}

func (e *SectionError) Error() string {
	loc := "[" + e.Section + "]"
	if e.Key != "" {
		loc += " " + e.Key
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("line %d: %s", e.Line, loc)
	}
	return loc + ": " + e.Err.Error()
}

func (e *SectionError) Unwrap() error { return e.Err }

// malformed builds a SectionError wrapping ErrMalformedSection.
func malformed(section, key string, line int, format string, args ...any) *SectionError {
	return &SectionError{
		Section: section,
		Key:     key,
		Line:    line,
		Err:     fmt.Errorf("%w: %s", ErrMalformedSection, fmt.Sprintf(format, args...)),
	}
}
