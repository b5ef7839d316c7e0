package inspect

import (
	"strings"
	"testing"

	"github.com/canopen-tools/edsod/pkg/datatype"
	"github.com/canopen-tools/edsod/pkg/od"
)

func TestFormatValue(t *testing.T) {
	f := &Formatter{}

	tests := []struct {
		name     string
		value    any
		code     datatype.Code
		expected string
	}{
		{
			name:     "unsigned small",
			value:    uint64(4),
			code:     datatype.Unsigned8,
			expected: "0x4",
		},
		{
			name:     "unsigned with decimal",
			value:    uint64(0x202),
			code:     datatype.Unsigned32,
			expected: "0x202 (514)",
		},
		{
			name:     "signed negative",
			value:    int64(-10),
			code:     datatype.Integer8,
			expected: "-10",
		},
		{
			name:     "boolean true",
			value:    uint64(1),
			code:     datatype.Boolean,
			expected: "true",
		},
		{
			name:     "boolean false",
			value:    uint64(0),
			code:     datatype.Boolean,
			expected: "false",
		},
		{
			name:     "real",
			value:    1.5,
			code:     datatype.Real32,
			expected: "1.5",
		},
		{
			name:     "string",
			value:    "Valve % open",
			code:     datatype.VisibleString,
			expected: "\"Valve % open\"",
		},
		{
			name:     "octets",
			value:    []byte{0xde, 0xad},
			code:     datatype.OctetString,
			expected: "0xdead",
		},
		{
			name:     "nil",
			value:    nil,
			code:     datatype.Domain,
			expected: "null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.FormatValue(tt.value, tt.code)
			if got != tt.expected {
				t.Errorf("FormatValue(%v, %s) = %q, want %q", tt.value, tt.code, got, tt.expected)
			}
		})
	}
}

func TestFormatAccess(t *testing.T) {
	tests := []struct {
		access od.AccessType
		want   string
	}{
		{od.AccessRO, "read-only"},
		{od.AccessWO, "write-only"},
		{od.AccessRW, "read-write"},
		{od.AccessRWR, "read-write (tpdo)"},
		{od.AccessRWW, "read-write (rpdo)"},
		{od.AccessConst, "constant"},
		{od.AccessType("xx"), "access(xx)"},
	}

	for _, tt := range tests {
		if got := FormatAccess(tt.access); got != tt.want {
			t.Errorf("FormatAccess(%q) = %q, want %q", tt.access, got, tt.want)
		}
	}
}

func TestFormatRange(t *testing.T) {
	v := od.NewVariable(od.VariableInfo{
		Index: 0x2000, Name: "x", DataType: datatype.Integer8, Min: int64(-5), Max: int64(5),
	})
	if got := FormatRange(v); got != "[-5, 5]" {
		t.Errorf("FormatRange() = %q, want %q", got, "[-5, 5]")
	}

	s := od.NewVariable(od.VariableInfo{Index: 0x2001, Name: "s", DataType: datatype.VisibleString})
	if got := FormatRange(s); got != "" {
		t.Errorf("FormatRange(string) = %q, want empty", got)
	}
}

func TestFormatterIndent(t *testing.T) {
	f := &Formatter{IndentWidth: 4}
	if got := f.Indent(2, "x"); got != "        x" {
		t.Errorf("Indent(2) = %q", got)
	}

	f = &Formatter{}
	if got := f.Indent(1, "x"); got != "  x" {
		t.Errorf("Indent with default width = %q", got)
	}
}

func TestFormatVariableTable(t *testing.T) {
	rows := []VariableRow{
		{SubIndex: 0, Name: "Number of entries", Value: "0x4", Type: "UNSIGNED8", Access: "read-only"},
		{SubIndex: 1, Name: "Vendor-ID", Value: "0x27A (634)", Type: "UNSIGNED32", Access: "read-only", Range: "[0x00, 0xFFFFFFFF]"},
	}

	f := NewFormatter()
	got := f.FormatVariableTable(rows)
	if !strings.Contains(got, "  [0] Number of entries: 0x4 (UNSIGNED8, read-only)\n") {
		t.Errorf("missing sub 0 row:\n%s", got)
	}
	if !strings.Contains(got, "  [1] Vendor-ID: 0x27A (634) (UNSIGNED32, read-only) [0x00, 0xFFFFFFFF]\n") {
		t.Errorf("missing sub 1 row:\n%s", got)
	}

	f = &Formatter{}
	got = f.FormatVariableTable(rows[:1])
	if got != "  Number of entries: 0x4\n" {
		t.Errorf("plain table = %q", got)
	}

	if got := f.FormatVariableTable(nil); got != "  (no sub-objects)" {
		t.Errorf("empty table = %q", got)
	}
}

func TestFormatterRows(t *testing.T) {
	insp := NewInspector(createTestDictionary(t))
	info, err := insp.InspectEntry(0x1018)
	if err != nil {
		t.Fatal(err)
	}

	rows := NewFormatter().Rows(info)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].Name != "Vendor-ID" || rows[1].Value != "0x10 (16)" || rows[1].Access != "read-only" {
		t.Errorf("row 1 = %+v", rows[1])
	}
}
