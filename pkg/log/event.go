package log

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single import diagnostic.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ImportID correlates all events of one import run (UUID).
	ImportID string `cbor:"2,keyasint"`

	// Source names the imported file or stream.
	Source string `cbor:"3,keyasint,omitempty"`

	// Level is the severity.
	Level Level `cbor:"4,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"5,keyasint"`

	// Section is the section header the event refers to, if any.
	Section string `cbor:"6,keyasint,omitempty"`

	// Key is the key within Section, if any.
	Key string `cbor:"7,keyasint,omitempty"`

	// Line is the 1-based source line, 0 when unknown.
	Line int `cbor:"8,keyasint,omitempty"`

	// Message is a human-readable description.
	Message string `cbor:"9,keyasint"`

	// Summary is set on CategorySummary events.
	Summary *ImportSummary `cbor:"10,keyasint,omitempty"`
}

// Level indicates event severity.
type Level uint8

const (
	// LevelDebug is for events that only matter when tracing the importer.
	LevelDebug Level = 0
	// LevelInfo is for normal milestones.
	LevelInfo Level = 1
	// LevelWarning marks content that was tolerated but is likely wrong.
	LevelWarning Level = 2
	// LevelError marks the failure that aborted an import.
	LevelError Level = 3
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name, ignoring case. "warn" is accepted.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryVocabulary indicates a key outside the known vocabulary.
	CategoryVocabulary Category = 0
	// CategoryValue indicates a value that could not be decoded.
	CategoryValue Category = 1
	// CategoryStructure indicates an inconsistency between sections.
	CategoryStructure Category = 2
	// CategorySummary indicates the end of an import.
	CategorySummary Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryVocabulary:
		return "VOCABULARY"
	case CategoryValue:
		return "VALUE"
	case CategoryStructure:
		return "STRUCTURE"
	case CategorySummary:
		return "SUMMARY"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a category name, ignoring case.
func ParseCategory(s string) (Category, error) {
	for c := CategoryVocabulary; c <= CategorySummary; c++ {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// ImportSummary describes a completed import.
type ImportSummary struct {
	// Entries is the number of top-level entries.
	Entries int `cbor:"1,keyasint"`

	// Variables is the number of leaf variables, including container members.
	Variables int `cbor:"2,keyasint"`

	// Dummies is the number of declared dummy entries.
	Dummies int `cbor:"3,keyasint,omitempty"`

	// Warnings is the number of warning events emitted during the import.
	Warnings int `cbor:"4,keyasint,omitempty"`

	// NodeID is the node relative values were resolved against.
	NodeID uint8 `cbor:"5,keyasint,omitempty"`

	// Duration is the time spent building the dictionary.
	// Stored as nanoseconds.
	Duration time.Duration `cbor:"6,keyasint"`
}

// Location formats the section, key and line of the event for display.
func (e Event) Location() string {
	var b strings.Builder
	if e.Section != "" {
		b.WriteString("[" + e.Section + "]")
	}
	if e.Key != "" {
		b.WriteString(e.Key)
	}
	if e.Line > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "line %d", e.Line)
	}
	return b.String()
}
