package datatype

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnsupportedType is returned for data type codes outside the standard table.
var ErrUnsupportedType = errors.New("unsupported data type")

// Code is a CANopen data type code (the DataType key of an EDS object).
type Code uint16

// Standard data type codes.
const (
	Boolean        Code = 0x01
	Integer8       Code = 0x02
	Integer16      Code = 0x03
	Integer32      Code = 0x04
	Unsigned8      Code = 0x05
	Unsigned16     Code = 0x06
	Unsigned32     Code = 0x07
	Real32         Code = 0x08
	VisibleString  Code = 0x09
	OctetString    Code = 0x0A
	UnicodeString  Code = 0x0B
	TimeOfDay      Code = 0x0C
	TimeDifference Code = 0x0D
	Domain         Code = 0x0F
	Integer24      Code = 0x10
	Real64         Code = 0x11
	Integer40      Code = 0x12
	Integer48      Code = 0x13
	Integer56      Code = 0x14
	Integer64      Code = 0x15
	Unsigned24     Code = 0x16
	Unsigned40     Code = 0x18
	Unsigned48     Code = 0x19
	Unsigned56     Code = 0x1A
	Unsigned64     Code = 0x1B
)

// Class groups data types by how their values are represented.
type Class uint8

const (
	ClassUnsigned Class = iota
	ClassSigned
	ClassFloat
	ClassString
	ClassOctets
	ClassDomain
	ClassTime
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassUnsigned:
		return "unsigned"
	case ClassSigned:
		return "signed"
	case ClassFloat:
		return "float"
	case ClassString:
		return "string"
	case ClassOctets:
		return "octets"
	case ClassDomain:
		return "domain"
	case ClassTime:
		return "time"
	default:
		return "unknown"
	}
}

// Info describes a registered data type.
type Info struct {
	Code  Code
	Name  string
	Bits  int
	Class Class
}

// IsInteger reports whether values of the type are signed or unsigned integers.
func (i Info) IsInteger() bool {
	return i.Class == ClassSigned || i.Class == ClassUnsigned
}

// IsNumeric reports whether values of the type decode to numbers.
func (i Info) IsNumeric() bool {
	return i.IsInteger() || i.Class == ClassFloat || i.Class == ClassTime
}

// Bounded reports whether the type has a natural numeric range.
func (i Info) Bounded() bool {
	return i.IsInteger()
}

var registry = map[Code]Info{
	Boolean:        {Boolean, "BOOLEAN", 1, ClassUnsigned},
	Integer8:       {Integer8, "INTEGER8", 8, ClassSigned},
	Integer16:      {Integer16, "INTEGER16", 16, ClassSigned},
	Integer24:      {Integer24, "INTEGER24", 24, ClassSigned},
	Integer32:      {Integer32, "INTEGER32", 32, ClassSigned},
	Integer40:      {Integer40, "INTEGER40", 40, ClassSigned},
	Integer48:      {Integer48, "INTEGER48", 48, ClassSigned},
	Integer56:      {Integer56, "INTEGER56", 56, ClassSigned},
	Integer64:      {Integer64, "INTEGER64", 64, ClassSigned},
	Unsigned8:      {Unsigned8, "UNSIGNED8", 8, ClassUnsigned},
	Unsigned16:     {Unsigned16, "UNSIGNED16", 16, ClassUnsigned},
	Unsigned24:     {Unsigned24, "UNSIGNED24", 24, ClassUnsigned},
	Unsigned32:     {Unsigned32, "UNSIGNED32", 32, ClassUnsigned},
	Unsigned40:     {Unsigned40, "UNSIGNED40", 40, ClassUnsigned},
	Unsigned48:     {Unsigned48, "UNSIGNED48", 48, ClassUnsigned},
	Unsigned56:     {Unsigned56, "UNSIGNED56", 56, ClassUnsigned},
	Unsigned64:     {Unsigned64, "UNSIGNED64", 64, ClassUnsigned},
	Real32:         {Real32, "REAL32", 32, ClassFloat},
	Real64:         {Real64, "REAL64", 64, ClassFloat},
	VisibleString:  {VisibleString, "VISIBLE_STRING", 0, ClassString},
	UnicodeString:  {UnicodeString, "UNICODE_STRING", 0, ClassString},
	OctetString:    {OctetString, "OCTET_STRING", 0, ClassOctets},
	Domain:         {Domain, "DOMAIN", 0, ClassDomain},
	TimeOfDay:      {TimeOfDay, "TIME_OF_DAY", 48, ClassTime},
	TimeDifference: {TimeDifference, "TIME_DIFFERENCE", 48, ClassTime},
}

var byName = func() map[string]Code {
	m := make(map[string]Code, len(registry))
	for code, info := range registry {
		m[info.Name] = code
	}
	return m
}()

// Lookup returns the registry entry for a code.
func Lookup(code Code) (Info, error) {
	info, ok := registry[code]
	if !ok {
		return Info{}, fmt.Errorf("%w: 0x%04X", ErrUnsupportedType, uint16(code))
	}
	return info, nil
}

// Parse resolves a textual data type reference. Numeric codes ("0x0007", "7")
// and standard names ("UNSIGNED32", any case) are accepted.
func Parse(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnsupportedType)
	}
	if code, ok := byName[strings.ToUpper(s)]; ok {
		return code, nil
	}
	var (
		n   uint64
		err error
	)
	if digits, ok := hexDigits(s); ok {
		n, err = strconv.ParseUint(digits, 16, 16)
	} else {
		n, err = strconv.ParseUint(s, 10, 16)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
	}
	code := Code(n)
	if _, err := Lookup(code); err != nil {
		return 0, err
	}
	return code, nil
}

// String returns the standard type name, or the hex code when unregistered.
func (c Code) String() string {
	if info, ok := registry[c]; ok {
		return info.Name
	}
	return fmt.Sprintf("0x%04X", uint16(c))
}

// Bits returns the bit width of the type, 0 for variable-length types.
func (c Code) Bits() int {
	return registry[c].Bits
}

// Range returns the natural range of an integer type. Signed types return
// int64 bounds, unsigned types uint64 bounds. ok is false for unbounded types.
func Range(code Code) (lo, hi any, ok bool) {
	info, err := Lookup(code)
	if err != nil || !info.Bounded() {
		return nil, nil, false
	}
	if info.Class == ClassSigned {
		if info.Bits == 64 {
			return int64(math.MinInt64), int64(math.MaxInt64), true
		}
		top := int64(1)<<(info.Bits-1) - 1
		return -top - 1, top, true
	}
	if info.Bits == 64 {
		return uint64(0), uint64(math.MaxUint64), true
	}
	return uint64(0), uint64(1)<<info.Bits - 1, true
}

// InRange reports whether v lies within the natural range of the type.
// Unbounded types and values of another representation are always in range.
func InRange(code Code, v any) bool {
	lo, hi, ok := Range(code)
	if !ok {
		return true
	}
	switch n := v.(type) {
	case int64:
		l, lok := lo.(int64)
		h, hok := hi.(int64)
		return !lok || !hok || (n >= l && n <= h)
	case uint64:
		h, hok := hi.(uint64)
		return !hok || n <= h
	}
	return true
}

// Basic returns the data type used by the dummy placeholder at a dummy
// index (0x0001-0x0007). Dummy N maps to data type code N.
func Basic(index uint16) (Code, bool) {
	if index < 0x0001 || index > 0x0007 {
		return 0, false
	}
	return Code(index), true
}
