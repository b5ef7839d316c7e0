package od

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidAccess is returned for access type strings outside the EDS set.
var ErrInvalidAccess = errors.New("invalid access type")

// ErrInvalidObjectType is returned for unknown object type codes.
var ErrInvalidObjectType = errors.New("invalid object type")

// AccessType is the access right of a Variable as written in EDS files.
type AccessType string

const (
	AccessRO    AccessType = "ro"
	AccessWO    AccessType = "wo"
	AccessRW    AccessType = "rw"
	AccessRWR   AccessType = "rwr" // read-write, TPDO mappable
	AccessRWW   AccessType = "rww" // read-write, RPDO mappable
	AccessConst AccessType = "const"
)

// ParseAccess parses an AccessType, ignoring case.
func ParseAccess(s string) (AccessType, error) {
	a := AccessType(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case AccessRO, AccessWO, AccessRW, AccessRWR, AccessRWW, AccessConst:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAccess, s)
}

// CanRead returns true if the variable may be read over the bus.
func (a AccessType) CanRead() bool { return a != AccessWO }

// CanWrite returns true if the variable may be written over the bus.
func (a AccessType) CanWrite() bool {
	switch a {
	case AccessWO, AccessRW, AccessRWR, AccessRWW:
		return true
	}
	return false
}

// String returns the EDS spelling.
func (a AccessType) String() string { return string(a) }

// ObjectType is the CiA 306 object code of an entry.
type ObjectType uint8

const (
	ObjectNull      ObjectType = 0x0
	ObjectDomain    ObjectType = 0x2
	ObjectDefType   ObjectType = 0x5
	ObjectDefStruct ObjectType = 0x6
	ObjectVar       ObjectType = 0x7
	ObjectArray     ObjectType = 0x8
	ObjectRecord    ObjectType = 0x9
)

var objectTypeNames = map[ObjectType]string{
	ObjectNull:      "NULL",
	ObjectDomain:    "DOMAIN",
	ObjectDefType:   "DEFTYPE",
	ObjectDefStruct: "DEFSTRUCT",
	ObjectVar:       "VAR",
	ObjectArray:     "ARRAY",
	ObjectRecord:    "RECORD",
}

// ParseObjectType accepts numeric codes ("0x7", "7") and names ("VAR").
func ParseObjectType(s string) (ObjectType, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	for ot, name := range objectTypeNames {
		if name == upper {
			return ot, nil
		}
	}
	var (
		n   uint64
		err error
	)
	if len(s) > 2 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		n, err = strconv.ParseUint(s[2:], 16, 8)
	} else {
		n, err = strconv.ParseUint(s, 10, 8)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidObjectType, s)
	}
	ot := ObjectType(n)
	if _, ok := objectTypeNames[ot]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidObjectType, s)
	}
	return ot, nil
}

// String returns the object type name.
func (o ObjectType) String() string {
	if name, ok := objectTypeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("0x%X", uint8(o))
}

// IsVariable reports whether entries of this type are leaf Variables.
func (o ObjectType) IsVariable() bool {
	switch o {
	case ObjectNull, ObjectDomain, ObjectDefType, ObjectVar:
		return true
	}
	return false
}
