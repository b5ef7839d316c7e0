// Package inspect provides object dictionary inspection and value
// manipulation utilities.
//
// The inspect package offers a unified interface for:
//   - Parsing path expressions (e.g., "0x1018/1" or "Identity object/Vendor-ID")
//   - Resolving names to indices and sub-indices
//   - Reading and writing configured values
//   - Formatting output for display
package inspect

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Path errors.
var (
	ErrEmptyPath     = errors.New("empty path")
	ErrInvalidPath   = errors.New("invalid path format")
	ErrInvalidNumber = errors.New("invalid numeric value in path")
)

// Path represents a parsed object dictionary address.
// Format: index[/sub], index as number or entry name, sub as number or
// sub-object name.
type Path struct {
	// Index is the object index. Zero when IndexName is set.
	Index uint16

	// IndexName is the entry name when the index was given by name.
	IndexName string

	// SubIndex is the sub-index when HasSub is set and SubName is empty.
	SubIndex uint8

	// SubName is the sub-object name when the sub-index was given by name.
	SubName string

	// HasSub indicates the path addresses a sub-object rather than a whole
	// entry.
	HasSub bool

	// Raw stores the original input string.
	Raw string
}

// subHeader matches the EDS section spelling of a sub-object address.
var subHeader = regexp.MustCompile(`(?i)^(?:0x)?([0-9a-f]{4})sub(?:index)?\s*([0-9a-f]{1,2})$`)

// bareIndex matches an index written as four hex digits without prefix.
var bareIndex = regexp.MustCompile(`^[0-9A-Fa-f]{4}$`)

// ParsePath parses a path string into a Path struct.
//
// Supported formats:
//   - "0x1018", "1018" - entry by index (four digits are hex)
//   - "1018/1", "0x1018/0x01" - sub-object by index
//   - "1018sub1", "1018SubIndex1" - sub-object in EDS header spelling (hex)
//   - "Identity object", "Identity object/Vendor-ID" - by name
//
// Sub-indices are decimal unless prefixed with 0x.
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}

	// Check for invalid patterns
	if strings.HasPrefix(input, "/") || strings.HasSuffix(input, "/") || strings.Contains(input, "//") {
		return nil, ErrInvalidPath
	}

	p := &Path{Raw: input}

	if m := subHeader.FindStringSubmatch(input); m != nil {
		idx, _ := strconv.ParseUint(m[1], 16, 16)
		sub, err := strconv.ParseUint(m[2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("sub-index: %w: %s", ErrInvalidNumber, m[2])
		}
		p.Index, p.SubIndex, p.HasSub = uint16(idx), uint8(sub), true
		return p, nil
	}

	parts := strings.Split(input, "/")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: at most index/sub expected", ErrInvalidPath)
	}

	// Parse index
	idx, ok, err := parseIndex(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	if ok {
		p.Index = idx
	} else {
		p.IndexName = strings.TrimSpace(parts[0])
	}

	if len(parts) == 1 {
		return p, nil
	}

	// Parse sub-index
	p.HasSub = true
	subPart := strings.TrimSpace(parts[1])
	if sub, err := parseUint8(subPart); err == nil {
		p.SubIndex = sub
	} else if isNumeric(subPart) {
		return nil, fmt.Errorf("sub-index: %w: %s", ErrInvalidNumber, subPart)
	} else {
		p.SubName = subPart
	}
	return p, nil
}

// String returns the path as a string.
func (p *Path) String() string {
	var sb strings.Builder

	if p.IndexName != "" {
		sb.WriteString(p.IndexName)
	} else {
		fmt.Fprintf(&sb, "0x%04X", p.Index)
	}

	if !p.HasSub {
		return sb.String()
	}

	sb.WriteString("/")
	if p.SubName != "" {
		sb.WriteString(p.SubName)
	} else {
		sb.WriteString(strconv.Itoa(int(p.SubIndex)))
	}
	return sb.String()
}

// parseIndex parses a numeric index. ok is false when s is not numeric and
// should be resolved as a name.
func parseIndex(s string) (idx uint16, ok bool, err error) {
	if bareIndex.MatchString(s) {
		v, _ := strconv.ParseUint(s, 16, 16)
		return uint16(v), true, nil
	}
	if hasHexPrefix(s) {
		v, err := parseUint16(s)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %s", ErrInvalidNumber, s)
		}
		return v, true, nil
	}
	return 0, false, nil
}

func hasHexPrefix(s string) bool {
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

// isNumeric reports whether s looks like a number rather than a name.
func isNumeric(s string) bool {
	if hasHexPrefix(s) {
		return true
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

// parseUint8 parses a uint8 from decimal or hex string.
func parseUint8(s string) (uint8, error) {
	var v uint64
	var err error

	if hasHexPrefix(s) {
		v, err = strconv.ParseUint(s[2:], 16, 8)
	} else {
		v, err = strconv.ParseUint(s, 10, 8)
	}
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}

// parseUint16 parses a uint16 from decimal or hex string.
func parseUint16(s string) (uint16, error) {
	var v uint64
	var err error

	if hasHexPrefix(s) {
		v, err = strconv.ParseUint(s[2:], 16, 16)
	} else {
		v, err = strconv.ParseUint(s, 10, 16)
	}
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
