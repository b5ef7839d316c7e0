package datatype

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		code Code
		raw  string
		want any
	}{
		{"empty", Unsigned8, "", nil},
		{"unsigned decimal", Unsigned16, "1000", uint64(1000)},
		{"unsigned hex", Unsigned32, "0x00000200", uint64(512)},
		{"unsigned hex upper prefix", Unsigned8, "0XFF", uint64(255)},
		{"boolean", Boolean, "1", uint64(1)},
		{"boolean word", Boolean, "false", uint64(0)},
		{"signed decimal", Integer8, "-10", int64(-10)},
		{"signed positive", Integer32, "127", int64(127)},
		{"signed hex two's complement", Integer8, "0x80", int64(-128)},
		{"signed hex int32 min", Integer32, "0x80000000", int64(-2147483648)},
		{"signed hex positive", Integer16, "0x7FFF", int64(32767)},
		{"signed 64 hex", Integer64, "0xFFFFFFFFFFFFFFF6", int64(-10)},
		{"signed negative hex", Integer8, "-0x10", int64(-16)},
		{"signed negative hex min", Integer8, "-0x80", int64(-128)},
		{"signed plus decimal", Integer16, "+10", int64(10)},
		{"signed plus hex", Integer32, "+0x7F", int64(127)},
		{"signed int64 min magnitude", Integer64, "-0x8000000000000000", int64(-9223372036854775808)},
		{"unsigned plus", Unsigned8, "+2", uint64(2)},
		{"unsigned plus hex", Unsigned16, "+0x10", uint64(16)},
		{"unsigned negative zero", Unsigned8, "-0", uint64(0)},
		{"real", Real32, "1.5", 1.5},
		{"real negative hex", Real64, "-0x10", -16.0},
		{"real hex", Real64, "0x10", 16.0},
		{"string", VisibleString, "Valve % open", "Valve % open"},
		{"octets", OctetString, "01 02 0A", []byte{0x01, 0x02, 0x0A}},
		{"time", TimeOfDay, "0x10", uint64(16)},
		{"whitespace", Unsigned8, "  7 ", uint64(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.code, tt.raw)
			if err != nil {
				t.Fatalf("Decode(%s, %q) error = %v", tt.code, tt.raw, err)
			}
			if b, ok := tt.want.([]byte); ok {
				if !bytes.Equal(got.([]byte), b) {
					t.Errorf("Decode = %x, want %x", got, b)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Decode(%s, %q) = %#v, want %#v", tt.code, tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		code Code
		raw  string
		want error
	}{
		{"unsigned garbage", Unsigned8, "abc", ErrInvalidLiteral},
		{"unsigned overflow", Unsigned8, "256", ErrValueRange},
		{"unsigned hex overflow", Unsigned16, "0x10000", ErrValueRange},
		{"signed underflow", Integer8, "-129", ErrValueRange},
		{"signed hex overflow", Integer8, "0x100", ErrValueRange},
		{"negative unsigned", Unsigned32, "-1", ErrValueRange},
		{"negative unsigned hex", Unsigned8, "-0x01", ErrValueRange},
		{"signed hex magnitude underflow", Integer8, "-0x81", ErrValueRange},
		{"signed hex magnitude overflow", Integer8, "+0x80", ErrValueRange},
		{"signed int64 underflow", Integer64, "-0x8000000000000001", ErrValueRange},
		{"double sign", Integer8, "--1", ErrInvalidLiteral},
		{"sign only", Integer8, "-", ErrInvalidLiteral},
		{"bare hex prefix", Unsigned8, "0x", ErrInvalidLiteral},
		{"bad octets", OctetString, "zz", ErrInvalidLiteral},
		{"bad real", Real32, "1.2.3", ErrInvalidLiteral},
		{"unsupported type", Code(0x42), "1", ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.code, tt.raw)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode(%s, %q) error = %v, want %v", tt.code, tt.raw, err, tt.want)
			}
		})
	}
}

func TestDecodeLeadingZeroIsDecimal(t *testing.T) {
	got, err := Decode(Unsigned8, "010")
	if err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	if got != uint64(10) {
		t.Errorf("Decode(\"010\") = %v, want 10", got)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		code Code
		v    any
		want string
	}{
		{"nil", Unsigned8, nil, ""},
		{"unsigned", Unsigned32, uint64(0x200), "0x200"},
		{"unsigned small", Unsigned8, uint64(5), "0x05"},
		{"unsigned from int", Unsigned16, 7, "0x07"},
		{"signed", Integer16, int64(-5), "-5"},
		{"signed from int", Integer32, 12, "12"},
		{"real", Real32, 1.25, "1.25"},
		{"string", VisibleString, "abc", "abc"},
		{"octets", OctetString, []byte{0xde, 0xad}, "DEAD"},
		{"boolean", Boolean, true, "0x01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.code, tt.v); got != tt.want {
				t.Errorf("Format(%s, %v) = %q, want %q", tt.code, tt.v, got, tt.want)
			}
		})
	}
}

func TestFormatDecodeAgree(t *testing.T) {
	values := map[Code]any{
		Unsigned8:  uint64(200),
		Unsigned64: uint64(1 << 40),
		Integer8:   int64(-100),
		Integer64:  int64(-1 << 40),
		Real64:     0.125,
	}
	for code, v := range values {
		got, err := Decode(code, Format(code, v))
		if err != nil {
			t.Fatalf("%s: Decode(Format) error = %v", code, err)
		}
		if got != v {
			t.Errorf("%s: Decode(Format(%v)) = %v", code, v, got)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(Integer16, 5); got != int64(5) {
		t.Errorf("Normalize(INTEGER16, 5) = %#v", got)
	}
	if got := Normalize(Unsigned16, uint16(5)); got != uint64(5) {
		t.Errorf("Normalize(UNSIGNED16, 5) = %#v", got)
	}
	if got := Normalize(Real32, float32(0.5)); got != 0.5 {
		t.Errorf("Normalize(REAL32, 0.5) = %#v", got)
	}
	if got := Normalize(VisibleString, "x"); got != "x" {
		t.Errorf("Normalize(VISIBLE_STRING, x) = %#v", got)
	}
}
