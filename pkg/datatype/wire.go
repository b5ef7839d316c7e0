package datatype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf16"
)

// ErrWireLength is returned when encoded data does not match the width of
// a fixed-size type.
var ErrWireLength = errors.New("wire length mismatch")

// Size returns the encoded size in bytes of a fixed-width type, 0 for
// variable-length types.
func Size(code Code) int {
	return (code.Bits() + 7) / 8
}

// Marshal encodes a value in CANopen byte order (little-endian) at the
// width of the type. Integers are truncated to the type width; callers
// check ranges before encoding.
func Marshal(code Code, v any) ([]byte, error) {
	info, err := Lookup(code)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: nil %s", ErrInvalidLiteral, info.Name)
	}

	switch info.Class {
	case ClassString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrInvalidLiteral, v, info.Name)
		}
		if code == UnicodeString {
			units := utf16.Encode([]rune(s))
			b := make([]byte, 2*len(units))
			for i, u := range units {
				binary.LittleEndian.PutUint16(b[2*i:], u)
			}
			return b, nil
		}
		return []byte(s), nil

	case ClassOctets, ClassDomain:
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrInvalidLiteral, v, info.Name)
		}
		return append([]byte(nil), b...), nil

	case ClassFloat:
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrInvalidLiteral, v, info.Name)
		}
		if info.Bits == 32 {
			return binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(f))), nil
		}
		return binary.LittleEndian.AppendUint64(nil, math.Float64bits(f)), nil

	case ClassSigned:
		n, ok := toInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrInvalidLiteral, v, info.Name)
		}
		return putUint(uint64(n), Size(code)), nil

	default:
		n, ok := toUint(v)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrInvalidLiteral, v, info.Name)
		}
		return putUint(n, Size(code)), nil
	}
}

// Unmarshal decodes CANopen wire bytes into the value representation used
// by Decode.
func Unmarshal(code Code, b []byte) (any, error) {
	info, err := Lookup(code)
	if err != nil {
		return nil, err
	}

	switch info.Class {
	case ClassString:
		if code == UnicodeString {
			if len(b)%2 != 0 {
				return nil, fmt.Errorf("%w: %s has odd length %d", ErrWireLength, info.Name, len(b))
			}
			units := make([]uint16, len(b)/2)
			for i := range units {
				units[i] = binary.LittleEndian.Uint16(b[2*i:])
			}
			return string(utf16.Decode(units)), nil
		}
		return string(b), nil
	case ClassOctets, ClassDomain:
		return append([]byte(nil), b...), nil
	}

	if size := Size(code); len(b) != size {
		return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrWireLength, info.Name, size, len(b))
	}

	switch info.Class {
	case ClassFloat:
		if info.Bits == 32 {
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
	case ClassSigned:
		u := getUint(b)
		if bits := uint(8 * len(b)); bits < 64 && u&(1<<(bits-1)) != 0 {
			u |= ^uint64(0) << bits
		}
		return int64(u), nil
	default:
		u := getUint(b)
		if code == Boolean {
			u &= 1
		}
		return u, nil
	}
}

func putUint(n uint64, size int) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = byte(n >> (8 * i))
	}
	return b
}

func getUint(b []byte) uint64 {
	var n uint64
	for i := len(b) - 1; i >= 0; i-- {
		n = n<<8 | uint64(b[i])
	}
	return n
}
