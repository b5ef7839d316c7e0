package inspect

import (
	"strings"

	"github.com/canopen-tools/edsod/pkg/od"
)

// ResolveIndexName resolves an entry name to its index. An exact match wins;
// otherwise the name is matched case-insensitively and must be unambiguous.
func ResolveIndexName(dict *od.ObjectDictionary, name string) (uint16, bool) {
	if e, err := dict.Find(name); err == nil {
		return e.Index(), true
	}
	var (
		found uint16
		n     int
	)
	for _, e := range dict.Entries() {
		if strings.EqualFold(e.Name(), name) {
			found = e.Index()
			n++
		}
	}
	return found, n == 1
}

// ResolveSubName resolves a sub-object name to its sub-index within an
// entry (case-insensitive, exact match preferred).
func ResolveSubName(entry od.Entry, name string) (uint8, bool) {
	subs := subVariables(entry)
	for _, v := range subs {
		if v.Name() == name {
			return v.SubIndex(), true
		}
	}
	var (
		found uint8
		n     int
	)
	for _, v := range subs {
		if strings.EqualFold(v.Name(), name) {
			found = v.SubIndex()
			n++
		}
	}
	return found, n == 1
}

// GetIndexName returns the name of the entry at index, or "" if none.
func GetIndexName(dict *od.ObjectDictionary, index uint16) string {
	e, err := dict.Get(index)
	if err != nil {
		return ""
	}
	return e.Name()
}

// GetSubName returns the name of the sub-object at (index, sub), or "".
func GetSubName(dict *od.ObjectDictionary, index uint16, sub uint8) string {
	v, err := dict.Variable(index, sub)
	if err != nil {
		return ""
	}
	return v.Name()
}

// subVariables returns the members of a Record or Array, nil for a
// Variable.
func subVariables(entry od.Entry) []*od.Variable {
	switch e := entry.(type) {
	case *od.Record:
		return e.Variables()
	case *od.Array:
		return e.Variables()
	}
	return nil
}
