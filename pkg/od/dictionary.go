package od

import (
	"errors"
	"fmt"
)

// Dictionary errors.
var (
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrUnknownIndex  = errors.New("unknown index")
	ErrUnknownName   = errors.New("unknown name")
	ErrIndexMismatch = errors.New("index mismatch")
)

// Entry is a top-level object dictionary entry: *Variable, *Record or *Array.
type Entry interface {
	Index() uint16
	Name() string
	ObjectType() ObjectType

	entry()
}

// Compile-time interface checks.
var (
	_ Entry = (*Variable)(nil)
	_ Entry = (*Record)(nil)
	_ Entry = (*Array)(nil)
)

// ObjectDictionary is the typed model of an EDS or DCF file.
type ObjectDictionary struct {
	// NodeID is the node the relative defaults were resolved against, 0 if none.
	NodeID uint8

	DeviceInfo    DeviceInfo
	FileInfo      FileInfo
	Commissioning Commissioning

	// Comments is the free-text [Comments] block, trimmed of blank lines.
	Comments string

	entries map[uint16]Entry
	names   map[string]uint16
	order   []uint16
}

// New creates an empty dictionary.
func New() *ObjectDictionary {
	return &ObjectDictionary{
		entries: make(map[uint16]Entry),
		names:   make(map[string]uint16),
	}
}

// Add registers an entry under its index and its name.
func (d *ObjectDictionary) Add(e Entry) error {
	if _, ok := d.entries[e.Index()]; ok {
		return fmt.Errorf("%w: index 0x%04X", ErrDuplicateKey, e.Index())
	}
	if idx, ok := d.names[e.Name()]; ok {
		return fmt.Errorf("%w: name %q (0x%04X and 0x%04X)", ErrDuplicateKey, e.Name(), idx, e.Index())
	}
	d.entries[e.Index()] = e
	d.names[e.Name()] = e.Index()
	d.order = append(d.order, e.Index())
	return nil
}

// Get returns the entry at an index.
func (d *ObjectDictionary) Get(index uint16) (Entry, error) {
	e, ok := d.entries[index]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%04X", ErrUnknownIndex, index)
	}
	return e, nil
}

// Find returns the entry with the given name.
func (d *ObjectDictionary) Find(name string) (Entry, error) {
	idx, ok := d.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return d.entries[idx], nil
}

// Has reports whether an entry exists at index.
func (d *ObjectDictionary) Has(index uint16) bool {
	_, ok := d.entries[index]
	return ok
}

// HasName reports whether an entry with the name exists.
func (d *ObjectDictionary) HasName(name string) bool {
	_, ok := d.names[name]
	return ok
}

// Indices returns the entry indices in registration order.
func (d *ObjectDictionary) Indices() []uint16 {
	out := make([]uint16, len(d.order))
	copy(out, d.order)
	return out
}

// Entries returns the entries in registration order.
func (d *ObjectDictionary) Entries() []Entry {
	out := make([]Entry, 0, len(d.order))
	for _, idx := range d.order {
		out = append(out, d.entries[idx])
	}
	return out
}

// Len returns the number of top-level entries.
func (d *ObjectDictionary) Len() int { return len(d.order) }

// Variable returns the Variable at (index, sub). Standalone variables are
// only addressable with sub 0.
func (d *ObjectDictionary) Variable(index uint16, sub uint8) (*Variable, error) {
	e, err := d.Get(index)
	if err != nil {
		return nil, err
	}
	switch e := e.(type) {
	case *Variable:
		if sub != 0 {
			return nil, fmt.Errorf("%w: 0x%04X sub %d", ErrUnknownIndex, index, sub)
		}
		return e, nil
	case *Record:
		return e.Sub(sub)
	case *Array:
		return e.Sub(sub)
	}
	return nil, fmt.Errorf("%w: 0x%04X", ErrUnknownIndex, index)
}

// Variables returns every Variable in the dictionary, ordered by entry
// registration and then by sub-index.
func (d *ObjectDictionary) Variables() []*Variable {
	var out []*Variable
	for _, e := range d.Entries() {
		switch e := e.(type) {
		case *Variable:
			out = append(out, e)
		case *Record:
			out = append(out, e.Variables()...)
		case *Array:
			out = append(out, e.Variables()...)
		}
	}
	return out
}

// IsDummyIndex reports whether index is one of the reserved dummy slots.
func IsDummyIndex(index uint16) bool {
	return index >= 0x0001 && index <= 0x0007
}

// DummyName returns the conventional name of the dummy at index.
func DummyName(index uint16) string {
	return fmt.Sprintf("Dummy%04X", index)
}
