package datatype

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestMarshal(t *testing.T) {
	tests := []struct {
		name string
		code Code
		v    any
		want []byte
	}{
		{"boolean", Boolean, uint64(1), []byte{0x01}},
		{"unsigned8", Unsigned8, uint64(0xAB), []byte{0xAB}},
		{"unsigned16", Unsigned16, uint64(0x1234), []byte{0x34, 0x12}},
		{"unsigned24", Unsigned24, uint64(0x010203), []byte{0x03, 0x02, 0x01}},
		{"unsigned32 cob-id", Unsigned32, uint64(0x202), []byte{0x02, 0x02, 0x00, 0x00}},
		{"integer8 negative", Integer8, int64(-10), []byte{0xF6}},
		{"integer16 negative", Integer16, int64(-2), []byte{0xFE, 0xFF}},
		{"integer24 negative", Integer24, int64(-1), []byte{0xFF, 0xFF, 0xFF}},
		{"real32", Real32, 1.0, []byte{0x00, 0x00, 0x80, 0x3F}},
		{"time of day", TimeOfDay, uint64(1), []byte{0x01, 0, 0, 0, 0, 0}},
		{"visible string", VisibleString, "abc", []byte("abc")},
		{"unicode string", UnicodeString, "hé", []byte{'h', 0x00, 0xE9, 0x00}},
		{"octets", OctetString, []byte{0x01, 0x02}, []byte{0x01, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.code, tt.v)
			if err != nil {
				t.Fatalf("Marshal(%s, %v) error = %v", tt.code, tt.v, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Marshal(%s, %v) = % X, want % X", tt.code, tt.v, got, tt.want)
			}
		})
	}
}

func TestUnmarshalRoundTrip(t *testing.T) {
	tests := []struct {
		code Code
		v    any
	}{
		{Boolean, uint64(0)},
		{Unsigned8, uint64(255)},
		{Unsigned40, uint64(0x0102030405)},
		{Unsigned64, uint64(0xFFFFFFFFFFFFFFFF)},
		{Integer8, int64(-128)},
		{Integer32, int64(-2147483648)},
		{Integer48, int64(-5)},
		{Integer56, int64(1) << 40},
		{Integer64, int64(-10)},
		{Real32, 0.5},
		{Real64, -1234.5678},
		{VisibleString, "Valve % open"},
		{UnicodeString, "Grüße"},
		{Domain, []byte{0xDE, 0xAD}},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			b, err := Marshal(tt.code, tt.v)
			if err != nil {
				t.Fatalf("Marshal error = %v", err)
			}
			if size := Size(tt.code); size != 0 && len(b) != size {
				t.Errorf("len = %d, want %d", len(b), size)
			}
			got, err := Unmarshal(tt.code, b)
			if err != nil {
				t.Fatalf("Unmarshal error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.v) {
				t.Errorf("round trip = %#v, want %#v", got, tt.v)
			}
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	if _, err := Unmarshal(Unsigned16, []byte{0x01}); !errors.Is(err, ErrWireLength) {
		t.Errorf("short UNSIGNED16: error = %v, want ErrWireLength", err)
	}
	if _, err := Unmarshal(UnicodeString, []byte{0x01, 0x02, 0x03}); !errors.Is(err, ErrWireLength) {
		t.Errorf("odd UNICODE_STRING: error = %v, want ErrWireLength", err)
	}
	if _, err := Unmarshal(Code(0x40), []byte{0x01}); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("unknown type: error = %v, want ErrUnsupportedType", err)
	}
}

func TestMarshalErrors(t *testing.T) {
	if _, err := Marshal(Unsigned8, "seven"); !errors.Is(err, ErrInvalidLiteral) {
		t.Errorf("string for UNSIGNED8: error = %v, want ErrInvalidLiteral", err)
	}
	if _, err := Marshal(VisibleString, nil); !errors.Is(err, ErrInvalidLiteral) {
		t.Errorf("nil value: error = %v, want ErrInvalidLiteral", err)
	}
}

func TestSize(t *testing.T) {
	for code, want := range map[Code]int{
		Boolean: 1, Unsigned8: 1, Integer24: 3, Real64: 8, TimeDifference: 6, VisibleString: 0, Domain: 0,
	} {
		if got := Size(code); got != want {
			t.Errorf("Size(%s) = %d, want %d", code, got, want)
		}
	}
}
