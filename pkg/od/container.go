package od

import (
	"fmt"
	"sort"
)

// members is the sub-entry storage shared by Record and Array.
type members struct {
	index  uint16
	name   string
	subs   map[uint8]*Variable
	names  map[string]*Variable
	sorted []uint8
}

func newMembers(index uint16, name string) members {
	return members{
		index: index,
		name:  name,
		subs:  make(map[uint8]*Variable),
		names: make(map[string]*Variable),
	}
}

func (m *members) add(v *Variable) error {
	if v.Index() != m.index {
		return fmt.Errorf("%w: sub-entry 0x%04X added to 0x%04X", ErrIndexMismatch, v.Index(), m.index)
	}
	if _, ok := m.subs[v.SubIndex()]; ok {
		return fmt.Errorf("%w: 0x%04X sub %d", ErrDuplicateKey, m.index, v.SubIndex())
	}
	if _, ok := m.names[v.Name()]; ok {
		return fmt.Errorf("%w: 0x%04X name %q", ErrDuplicateKey, m.index, v.Name())
	}
	m.subs[v.SubIndex()] = v
	m.names[v.Name()] = v

	i := sort.Search(len(m.sorted), func(i int) bool { return m.sorted[i] >= v.SubIndex() })
	m.sorted = append(m.sorted, 0)
	copy(m.sorted[i+1:], m.sorted[i:])
	m.sorted[i] = v.SubIndex()
	return nil
}

// Sub returns the member at a sub-index.
func (m *members) Sub(sub uint8) (*Variable, error) {
	v, ok := m.subs[sub]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%04X sub %d", ErrUnknownIndex, m.index, sub)
	}
	return v, nil
}

// Find returns the member with the given name.
func (m *members) Find(name string) (*Variable, error) {
	v, ok := m.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%04X %q", ErrUnknownName, m.index, name)
	}
	return v, nil
}

// Has reports whether a sub-index exists.
func (m *members) Has(sub uint8) bool {
	_, ok := m.subs[sub]
	return ok
}

// HasName reports whether a member with the name exists.
func (m *members) HasName(name string) bool {
	_, ok := m.names[name]
	return ok
}

// SubIndices returns the member sub-indices in ascending order.
func (m *members) SubIndices() []uint8 {
	out := make([]uint8, len(m.sorted))
	copy(out, m.sorted)
	return out
}

// Variables returns the members ordered by sub-index.
func (m *members) Variables() []*Variable {
	out := make([]*Variable, 0, len(m.sorted))
	for _, sub := range m.sorted {
		out = append(out, m.subs[sub])
	}
	return out
}

// Len returns the number of members.
func (m *members) Len() int { return len(m.sorted) }

// Index returns the object index.
func (m *members) Index() uint16 { return m.index }

// Name returns the parameter name.
func (m *members) Name() string { return m.name }

// Record is a collection of heterogeneous Variables sharing one index.
type Record struct {
	members
}

// NewRecord creates an empty Record.
func NewRecord(index uint16, name string) *Record {
	return &Record{members: newMembers(index, name)}
}

func (*Record) entry() {}

// ObjectType returns ObjectRecord.
func (*Record) ObjectType() ObjectType { return ObjectRecord }

// Add inserts a member. Sub-index and name must be unique within the record.
func (r *Record) Add(v *Variable) error { return r.members.add(v) }

// Array is a collection of Variables sharing one index and, apart from the
// sub-index 0 count entry, one data type.
type Array struct {
	members
	compact uint8
}

// NewArray creates an empty Array.
func NewArray(index uint16, name string) *Array {
	return &Array{members: newMembers(index, name)}
}

func (*Array) entry() {}

// ObjectType returns ObjectArray.
func (*Array) ObjectType() ObjectType { return ObjectArray }

// Add inserts a member. Sub-index and name must be unique within the array.
func (a *Array) Add(v *Variable) error { return a.members.add(v) }

// MarkCompact records that the array was declared with CompactSubObj=n.
func (a *Array) MarkCompact(n uint8) { a.compact = n }

// Compact returns the CompactSubObj count, 0 for explicitly declared arrays.
func (a *Array) Compact() uint8 { return a.compact }

// Element returns the array element with integer key i, which is its
// sub-index.
func (a *Array) Element(i int) (*Variable, error) {
	if i < 0 || i > 0xFF {
		return nil, fmt.Errorf("%w: 0x%04X element %d", ErrUnknownIndex, a.index, i)
	}
	return a.Sub(uint8(i))
}

// Template returns a representative element Variable: the lowest non-zero
// sub-index, or sub-index 0 when the array has no other members.
func (a *Array) Template() (*Variable, bool) {
	for _, sub := range a.sorted {
		if sub != 0 {
			return a.subs[sub], true
		}
	}
	if v, ok := a.subs[0]; ok {
		return v, true
	}
	return nil, false
}
