package datatype

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value errors.
var (
	ErrInvalidLiteral = errors.New("invalid literal")
	ErrValueRange     = errors.New("value out of range for type")
)

// Decode converts the literal text of a default value, limit or configured
// value into a typed value. Empty text decodes to nil.
func Decode(code Code, raw string) (any, error) {
	info, err := Lookup(code)
	if err != nil {
		return nil, err
	}

	switch info.Class {
	case ClassString:
		if raw == "" {
			return nil, nil
		}
		return raw, nil
	case ClassOctets, ClassDomain:
		s := strings.Join(strings.Fields(raw), "")
		if s == "" {
			return nil, nil
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidLiteral, info.Name, raw)
		}
		return b, nil
	}

	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}

	switch info.Class {
	case ClassSigned:
		return decodeSigned(info, s)
	case ClassFloat:
		neg, body, _ := splitSign(s)
		if digits, ok := hexDigits(body); ok {
			u, err := strconv.ParseUint(digits, 16, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s %q", ErrInvalidLiteral, info.Name, raw)
			}
			if neg {
				return -float64(u), nil
			}
			return float64(u), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidLiteral, info.Name, raw)
		}
		if info.Bits == 32 && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return nil, fmt.Errorf("%w: %s %q", ErrValueRange, info.Name, raw)
		}
		return f, nil
	default:
		if info.Code == Boolean {
			switch strings.ToLower(s) {
			case "true":
				return uint64(1), nil
			case "false":
				return uint64(0), nil
			}
		}
		return decodeUnsigned(info, s)
	}
}

func decodeSigned(info Info, s string) (any, error) {
	neg, body, signed := splitSign(s)
	lo, hi, _ := Range(info.Code)

	if digits, ok := hexDigits(body); ok {
		u, err := strconv.ParseUint(digits, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidLiteral, info.Name, s)
		}
		if !signed {
			if info.Bits < 64 {
				if u > uint64(1)<<info.Bits-1 {
					return nil, fmt.Errorf("%w: %s %q", ErrValueRange, info.Name, s)
				}
				// Two's complement at the type width.
				if u >= uint64(1)<<(info.Bits-1) {
					return int64(u) - int64(1)<<info.Bits, nil
				}
			}
			return int64(u), nil
		}
		// A signed hex literal is a magnitude.
		v, ok := signedMagnitude(neg, u)
		if !ok || v < lo.(int64) || v > hi.(int64) {
			return nil, fmt.Errorf("%w: %s %q", ErrValueRange, info.Name, s)
		}
		return v, nil
	}

	u, err := strconv.ParseUint(body, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidLiteral, info.Name, s)
	}
	v, ok := signedMagnitude(neg, u)
	if !ok || v < lo.(int64) || v > hi.(int64) {
		return nil, fmt.Errorf("%w: %s %q", ErrValueRange, info.Name, s)
	}
	return v, nil
}

// signedMagnitude applies a sign to an unsigned magnitude, reporting
// whether the result fits an int64.
func signedMagnitude(neg bool, u uint64) (int64, bool) {
	if neg {
		if u > uint64(math.MaxInt64)+1 {
			return 0, false
		}
		return int64(-u), true
	}
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

func decodeUnsigned(info Info, s string) (any, error) {
	neg, body, _ := splitSign(s)
	var (
		u   uint64
		err error
	)
	if digits, ok := hexDigits(body); ok {
		u, err = strconv.ParseUint(digits, 16, 64)
	} else {
		u, err = strconv.ParseUint(body, 10, 64)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidLiteral, info.Name, s)
	}
	if neg && u != 0 {
		return nil, fmt.Errorf("%w: %s %q", ErrValueRange, info.Name, s)
	}
	if info.Bounded() {
		_, hi, _ := Range(info.Code)
		if u > hi.(uint64) {
			return nil, fmt.Errorf("%w: %s %q", ErrValueRange, info.Name, s)
		}
	}
	return u, nil
}

// splitSign strips one leading '+' or '-'. signed reports whether a sign
// was present.
func splitSign(s string) (neg bool, body string, signed bool) {
	if len(s) > 1 && (s[0] == '-' || s[0] == '+') {
		return s[0] == '-', s[1:], true
	}
	return false, s, false
}

// hexDigits strips a 0x/0X prefix.
func hexDigits(s string) (string, bool) {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:], true
	}
	return "", false
}

// Format returns the canonical literal for a decoded value. Unsigned integers
// are written as hex, signed integers as decimal. nil formats as "".
func Format(code Code, v any) string {
	if v == nil {
		return ""
	}
	info, err := Lookup(code)
	if err != nil {
		return fmt.Sprint(v)
	}

	switch info.Class {
	case ClassOctets, ClassDomain:
		if b, ok := v.([]byte); ok {
			return strings.ToUpper(hex.EncodeToString(b))
		}
	case ClassFloat:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	case ClassSigned:
		if i, ok := toInt(v); ok {
			return strconv.FormatInt(i, 10)
		}
	case ClassUnsigned, ClassTime:
		if u, ok := toUint(v); ok {
			return fmt.Sprintf("0x%02X", u)
		}
	}
	return fmt.Sprint(v)
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	}
	return 0, false
}

func toUint(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case int64:
		if n >= 0 {
			return uint64(n), true
		}
	case int:
		if n >= 0 {
			return uint64(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

// Normalize converts a Go numeric value into the representation Decode
// produces for the type (int64, uint64 or float64). Other values are
// returned unchanged.
func Normalize(code Code, v any) any {
	info, err := Lookup(code)
	if err != nil || v == nil {
		return v
	}
	switch info.Class {
	case ClassSigned:
		if i, ok := toInt(v); ok {
			return i
		}
	case ClassUnsigned, ClassTime:
		if u, ok := toUint(v); ok {
			return u
		}
	case ClassFloat:
		if f, ok := toFloat(v); ok {
			return f
		}
	}
	return v
}
