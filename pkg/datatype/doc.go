// Package datatype implements the CANopen standard data type registry.
//
// Every object dictionary variable carries a data type code from the CiA 301
// type table. The registry maps each code to its name, bit width and value
// class, and for the integer types to the natural numeric range:
//
//	Code  Name            Bits  Range
//	0x01  BOOLEAN         1     [0, 1]
//	0x02  INTEGER8        8     [-128, 127]
//	0x05  UNSIGNED8       8     [0, 255]
//	0x07  UNSIGNED32      32    [0, 4294967295]
//	0x08  REAL32          32    -
//	0x09  VISIBLE_STRING  0     -
//
// # Value Decoding
//
// Decode turns the literal text found in EDS files into a typed value:
//   - signed integers decode to int64 (hex literals are two's complement
//     at the type width, so 0x80 for INTEGER8 is -128)
//   - unsigned integers and BOOLEAN decode to uint64
//   - REAL32/REAL64 decode to float64
//   - VISIBLE_STRING and UNICODE_STRING pass through as string
//   - OCTET_STRING and DOMAIN decode hex digits into []byte
//
// Format is the inverse and produces the canonical text for a value.
package datatype
