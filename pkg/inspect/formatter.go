package inspect

import (
	"fmt"
	"strings"

	"github.com/canopen-tools/edsod/pkg/datatype"
	"github.com/canopen-tools/edsod/pkg/od"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowMetadata includes type, access and range information
	ShowMetadata bool

	// ShowIDs includes index and sub-index numbers alongside names
	ShowIDs bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowMetadata: true,
		ShowIDs:      true,
		IndentWidth:  2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatValue formats a value of the given data type for display.
// Unsigned integers are shown in hex, with the decimal value added when it
// differs from the hex digits.
func (f *Formatter) FormatValue(value any, code datatype.Code) string {
	if value == nil {
		return "null"
	}

	switch v := value.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"

	case string:
		return fmt.Sprintf("%q", v)

	case int64:
		return fmt.Sprintf("%d", v)

	case uint64:
		if code == datatype.Boolean {
			return f.FormatValue(v != 0, code)
		}
		return formatUnsigned(v)

	case float64:
		return fmt.Sprintf("%g", v)

	case []byte:
		return fmt.Sprintf("0x%x", v)

	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatUnsigned(v uint64) string {
	if v < 10 {
		return fmt.Sprintf("0x%X", v)
	}
	return fmt.Sprintf("0x%X (%d)", v, v)
}

// FormatAccess formats an access type for display.
func FormatAccess(access od.AccessType) string {
	switch access {
	case od.AccessRO:
		return "read-only"
	case od.AccessWO:
		return "write-only"
	case od.AccessRW:
		return "read-write"
	case od.AccessRWR:
		return "read-write (tpdo)"
	case od.AccessRWW:
		return "read-write (rpdo)"
	case od.AccessConst:
		return "constant"
	default:
		return fmt.Sprintf("access(%s)", string(access))
	}
}

// FormatDataType formats a data type for display.
func FormatDataType(code datatype.Code) string {
	return code.String()
}

// FormatRange formats the legal value range of a Variable, "" when the
// type has none.
func FormatRange(v *od.Variable) string {
	if v.Min() == nil && v.Max() == nil {
		return ""
	}
	return fmt.Sprintf("[%s, %s]", datatype.Format(v.DataType(), v.Min()), datatype.Format(v.DataType(), v.Max()))
}

// VariableRow represents a formatted Variable for display.
type VariableRow struct {
	SubIndex uint8
	Name     string
	Value    string
	Type     string
	Access   string
	Range    string
}

// FormatVariableTable formats a list of Variables as a table.
func (f *Formatter) FormatVariableTable(rows []VariableRow) string {
	if len(rows) == 0 {
		return "  (no sub-objects)"
	}

	var sb strings.Builder
	for _, row := range rows {
		if f.ShowIDs {
			sb.WriteString(fmt.Sprintf("  [%d] %s: %s", row.SubIndex, row.Name, row.Value))
		} else {
			sb.WriteString(fmt.Sprintf("  %s: %s", row.Name, row.Value))
		}
		if f.ShowMetadata && row.Type != "" {
			sb.WriteString(fmt.Sprintf(" (%s, %s)", row.Type, row.Access))
			if row.Range != "" {
				sb.WriteString(" " + row.Range)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
