package od

import (
	"errors"
	"fmt"

	"github.com/canopen-tools/edsod/pkg/datatype"
)

// Variable errors.
var (
	ErrValueType       = errors.New("invalid value type for variable")
	ErrValueOutOfRange = errors.New("value out of range")
)

// VariableInfo describes a Variable as declared in the source file.
type VariableInfo struct {
	// Index is the 16-bit object index.
	Index uint16

	// SubIndex is 0 for standalone variables.
	SubIndex uint8

	// Name is the ParameterName, kept verbatim.
	Name string

	// ObjectType is VAR, DOMAIN or DEFTYPE. Zero means VAR.
	ObjectType ObjectType

	// DataType is the registry code of the value.
	DataType datatype.Code

	// Access defines the bus access rights.
	Access AccessType

	// DefaultRaw is the DefaultValue text exactly as stored in the file.
	DefaultRaw string

	// Default is the decoded default value, node-adjusted when Relative.
	Default any

	// Relative is true when DefaultRaw is expressed as $NODEID offset.
	Relative bool

	// LowLimitRaw and HighLimitRaw hold explicit limit text, empty when the
	// file declares none.
	LowLimitRaw  string
	HighLimitRaw string

	// Min and Max are the decoded bounds, nil when the type is unbounded.
	Min any
	Max any

	// PDOMapping is true when the variable may be mapped into a PDO.
	PDOMapping bool

	// StorageLocation is the optional storage hint (e.g. "RAM", "PERSIST_COMM").
	StorageLocation string
}

// Variable is a leaf object dictionary entry.
type Variable struct {
	info     VariableInfo
	value    any
	valueRaw string
	hasValue bool
}

// NewVariable creates a Variable from its declaration.
func NewVariable(info VariableInfo) *Variable {
	if info.ObjectType == ObjectNull {
		info.ObjectType = ObjectVar
	}
	return &Variable{info: info}
}

func (*Variable) entry() {}

// Info returns a copy of the declaration.
func (v *Variable) Info() VariableInfo { return v.info }

// Index returns the object index.
func (v *Variable) Index() uint16 { return v.info.Index }

// SubIndex returns the sub-index.
func (v *Variable) SubIndex() uint8 { return v.info.SubIndex }

// Name returns the parameter name.
func (v *Variable) Name() string { return v.info.Name }

// ObjectType returns the object code.
func (v *Variable) ObjectType() ObjectType { return v.info.ObjectType }

// DataType returns the data type code.
func (v *Variable) DataType() datatype.Code { return v.info.DataType }

// Access returns the access type.
func (v *Variable) Access() AccessType { return v.info.Access }

// DefaultRaw returns the literal default text.
func (v *Variable) DefaultRaw() string { return v.info.DefaultRaw }

// Default returns the decoded default value.
func (v *Variable) Default() any { return v.info.Default }

// Relative reports whether the default is node-relative.
func (v *Variable) Relative() bool { return v.info.Relative }

// Min returns the lower bound, nil when unbounded.
func (v *Variable) Min() any { return v.info.Min }

// Max returns the upper bound, nil when unbounded.
func (v *Variable) Max() any { return v.info.Max }

// PDOMapping reports whether the variable is PDO mappable.
func (v *Variable) PDOMapping() bool { return v.info.PDOMapping }

// BitLength returns the width of the data type in bits, 0 for
// variable-length types.
func (v *Variable) BitLength() int { return v.info.DataType.Bits() }

// Value returns the current configured value, or nil if none is set.
func (v *Variable) Value() any { return v.value }

// ValueRaw returns the configured value text. It is the ParameterValue of a
// DCF when loaded from one, or the canonical format of a value set with
// SetValue.
func (v *Variable) ValueRaw() string { return v.valueRaw }

// HasValue reports whether a configured value is present.
func (v *Variable) HasValue() bool { return v.hasValue }

// SetValue sets the configured value. Numeric values are normalized to the
// representation of the data type and checked against Min and Max.
func (v *Variable) SetValue(value any) error {
	if value == nil {
		v.ClearValue()
		return nil
	}
	value = datatype.Normalize(v.info.DataType, value)
	if err := v.check(value); err != nil {
		return err
	}
	v.value = value
	v.valueRaw = datatype.Format(v.info.DataType, value)
	v.hasValue = true
	return nil
}

// SetValueRaw stores an already decoded value together with its source text.
// No range check is applied.
func (v *Variable) SetValueRaw(raw string, value any) {
	v.value = value
	v.valueRaw = raw
	v.hasValue = raw != "" || value != nil
}

// ClearValue removes the configured value.
func (v *Variable) ClearValue() {
	v.value = nil
	v.valueRaw = ""
	v.hasValue = false
}

func (v *Variable) check(value any) error {
	info, err := datatype.Lookup(v.info.DataType)
	if err != nil {
		return err
	}

	switch info.Class {
	case datatype.ClassSigned:
		n, ok := value.(int64)
		if !ok {
			return fmt.Errorf("%w: %T for %s", ErrValueType, value, info.Name)
		}
		if lo, ok := v.info.Min.(int64); ok && n < lo {
			return fmt.Errorf("%w: %d < %d", ErrValueOutOfRange, n, lo)
		}
		if hi, ok := v.info.Max.(int64); ok && n > hi {
			return fmt.Errorf("%w: %d > %d", ErrValueOutOfRange, n, hi)
		}
	case datatype.ClassUnsigned, datatype.ClassTime:
		n, ok := value.(uint64)
		if !ok {
			return fmt.Errorf("%w: %T for %s", ErrValueType, value, info.Name)
		}
		if lo, ok := v.info.Min.(uint64); ok && n < lo {
			return fmt.Errorf("%w: %d < %d", ErrValueOutOfRange, n, lo)
		}
		if hi, ok := v.info.Max.(uint64); ok && n > hi {
			return fmt.Errorf("%w: %d > %d", ErrValueOutOfRange, n, hi)
		}
	case datatype.ClassFloat:
		f, ok := value.(float64)
		if !ok {
			return fmt.Errorf("%w: %T for %s", ErrValueType, value, info.Name)
		}
		if lo, ok := v.info.Min.(float64); ok && f < lo {
			return fmt.Errorf("%w: %g < %g", ErrValueOutOfRange, f, lo)
		}
		if hi, ok := v.info.Max.(float64); ok && f > hi {
			return fmt.Errorf("%w: %g > %g", ErrValueOutOfRange, f, hi)
		}
	case datatype.ClassString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: %T for %s", ErrValueType, value, info.Name)
		}
	case datatype.ClassOctets, datatype.ClassDomain:
		if _, ok := value.([]byte); !ok {
			return fmt.Errorf("%w: %T for %s", ErrValueType, value, info.Name)
		}
	}
	return nil
}
