package eds

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// SectionKind classifies a section header.
type SectionKind uint8

const (
	// KindNamed is a section with a textual header such as [DeviceInfo].
	KindNamed SectionKind = iota
	// KindObject is a top-level object, e.g. [1018].
	KindObject
	// KindSub is a sub-object, e.g. [1018sub1].
	KindSub
	// KindNames lists explicit names of compact sub-objects, e.g. [3004Name].
	KindNames
	// KindValues lists defaults of compact sub-objects, e.g. [3004Value].
	KindValues
	// KindObjectLinks lists objects linked to an object, e.g. [3004ObjectLinks].
	KindObjectLinks
)

// String returns the kind name.
func (k SectionKind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindObject:
		return "object"
	case KindSub:
		return "sub"
	case KindNames:
		return "names"
	case KindValues:
		return "values"
	case KindObjectLinks:
		return "objectlinks"
	default:
		return "unknown"
	}
}

// Pair is one key=value line of a section.
type Pair struct {
	Key   string
	Value string
	Line  int
}

// Section is one [header] block of an EDS/DCF file.
type Section struct {
	// Header is the header text as first written, without brackets.
	Header string

	// Line is the line of the first occurrence of the header.
	Line int

	Kind     SectionKind
	Index    uint16
	SubIndex uint8

	// Body holds every raw line of the section after the header, including
	// comments and blank lines, with line endings removed.
	Body []string

	pairs  []Pair
	lookup map[string]int
}

func newSection(header string, line int) *Section {
	return &Section{Header: header, Line: line, lookup: make(map[string]int)}
}

// set records a key. A repeated key replaces the earlier value.
func (s *Section) set(p Pair) {
	k := normalizeKey(p.Key)
	if i, ok := s.lookup[k]; ok {
		s.pairs[i] = p
		return
	}
	s.lookup[k] = len(s.pairs)
	s.pairs = append(s.pairs, p)
}

// Get returns the value of a key, matched case-insensitively.
func (s *Section) Get(key string) (string, bool) {
	p, ok := s.Pair(key)
	return p.Value, ok
}

// Pair returns the full pair for a key, matched case-insensitively.
func (s *Section) Pair(key string) (Pair, bool) {
	i, ok := s.lookup[normalizeKey(key)]
	if !ok {
		return Pair{}, false
	}
	return s.pairs[i], true
}

// Has reports whether the key is present.
func (s *Section) Has(key string) bool {
	_, ok := s.lookup[normalizeKey(key)]
	return ok
}

// Pairs returns the pairs in first-appearance order.
func (s *Section) Pairs() []Pair {
	out := make([]Pair, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// Is reports whether this is the named section name (case-insensitive).
func (s *Section) Is(name string) bool {
	return s.Kind == KindNamed && strings.EqualFold(s.Header, name)
}

// File is a tokenized EDS/DCF document.
type File struct {
	sections []*Section
	byID     map[string]*Section
}

// Sections returns all sections in first-appearance order.
func (f *File) Sections() []*Section {
	out := make([]*Section, len(f.sections))
	copy(out, f.sections)
	return out
}

// Named returns the named section, or nil.
func (f *File) Named(name string) *Section {
	return f.byID[namedID(name)]
}

// Object returns the top-level section of an index, or nil.
func (f *File) Object(index uint16) *Section {
	return f.byID[addrID(KindObject, index, 0)]
}

// Aux returns the Name, Value or ObjectLinks section of an index, or nil.
func (f *File) Aux(kind SectionKind, index uint16) *Section {
	return f.byID[addrID(kind, index, 0)]
}

// Subs returns the sub-object sections of an index ordered by sub-index.
func (f *File) Subs(index uint16) []*Section {
	var out []*Section
	for _, s := range f.sections {
		if s.Kind == KindSub && s.Index == index {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubIndex < out[j].SubIndex })
	return out
}

func namedID(name string) string {
	return "n:" + strings.ToLower(name)
}

func addrID(kind SectionKind, index uint16, sub uint8) string {
	return fmt.Sprintf("%d:%04X:%02X", kind, index, sub)
}

// objectHeader matches object, sub-object and auxiliary headers:
//
//	1018  1018sub1  1018Sub1  1018SubIndex1  1018sub 1  3004Name  3004Value
var objectHeader = regexp.MustCompile(`(?i)^([0-9a-f]{4})(?:sub(?:index)?\s*([0-9a-f]{1,2})|(name|value|objectlinks))?$`)

// looksLikeObject matches headers that start with an index and must
// therefore parse as one.
var looksLikeObject = regexp.MustCompile(`^[0-9A-Fa-f]{4}`)

// parseHeader classifies a header.
func parseHeader(header string, line int) (*Section, error) {
	s := newSection(header, line)
	if !looksLikeObject.MatchString(header) {
		s.Kind = KindNamed
		return s, nil
	}

	m := objectHeader.FindStringSubmatch(header)
	if m == nil {
		return nil, malformed(header, "", line, "cannot parse header %q as index or sub-index", header)
	}
	index, err := strconv.ParseUint(m[1], 16, 16)
	if err != nil {
		return nil, malformed(header, "", line, "invalid index %q", m[1])
	}
	s.Index = uint16(index)

	switch {
	case m[2] != "":
		sub, err := strconv.ParseUint(m[2], 16, 8)
		if err != nil {
			return nil, malformed(header, "", line, "invalid sub-index %q", m[2])
		}
		s.Kind = KindSub
		s.SubIndex = uint8(sub)
	case m[3] != "":
		switch strings.ToLower(m[3]) {
		case "name":
			s.Kind = KindNames
		case "value":
			s.Kind = KindValues
		default:
			s.Kind = KindObjectLinks
		}
	default:
		s.Kind = KindObject
	}
	return s, nil
}

func (s *Section) id() string {
	if s.Kind == KindNamed {
		return namedID(s.Header)
	}
	return addrID(s.Kind, s.Index, s.SubIndex)
}

// stripComment removes an inline ';' comment.
func stripComment(v string) string {
	if i := strings.IndexByte(v, ';'); i >= 0 {
		return v[:i]
	}
	return v
}

// Tokenize splits an EDS/DCF document into sections. Repeated headers are
// merged into the first occurrence; within a section the last value of a
// repeated key wins.
func Tokenize(r io.Reader) (*File, error) {
	f := &File{byID: make(map[string]*Section)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cur *Section
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := strings.TrimRight(scanner.Text(), "\r")
		if lineNum == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "[") {
			end := strings.IndexByte(line, ']')
			if end < 0 {
				return nil, malformed(line, "", lineNum, "unterminated section header")
			}
			header := strings.TrimSpace(line[1:end])
			if header == "" {
				return nil, malformed(header, "", lineNum, "empty section header")
			}
			s, err := parseHeader(header, lineNum)
			if err != nil {
				return nil, err
			}
			if existing, ok := f.byID[s.id()]; ok {
				cur = existing
				continue
			}
			f.byID[s.id()] = s
			f.sections = append(f.sections, s)
			cur = s
			continue
		}

		if cur == nil {
			if line == "" || line[0] == ';' || line[0] == '#' {
				continue
			}
			return nil, &SectionError{Line: lineNum, Err: fmt.Errorf("%w: content before first section", ErrMalformedSection)}
		}

		cur.Body = append(cur.Body, raw)

		if cur.Is(SectionComments) {
			// Comment text is kept verbatim: no ';' stripping, no trimming.
			if i := strings.IndexByte(raw, '='); i > 0 {
				cur.set(Pair{Key: strings.TrimSpace(raw[:i]), Value: raw[i+1:], Line: lineNum})
			}
			continue
		}

		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}
		i := strings.IndexByte(line, '=')
		if i <= 0 {
			return nil, malformed(cur.Header, "", lineNum, "expected key=value, got %q", line)
		}
		cur.set(Pair{
			Key:   strings.TrimSpace(line[:i]),
			Value: strings.TrimSpace(stripComment(line[i+1:])),
			Line:  lineNum,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return f, nil
}
