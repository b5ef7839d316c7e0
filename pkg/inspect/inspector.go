package inspect

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/canopen-tools/edsod/pkg/datatype"
	"github.com/canopen-tools/edsod/pkg/od"
)

// Inspector errors.
var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrSubNotFound   = errors.New("sub-object not found")
	ErrNotVariable   = errors.New("path does not address a variable")
	ErrNotWritable   = errors.New("variable is not writable")
)

// Inspector provides inspection and mutation capabilities for an object
// dictionary.
type Inspector struct {
	dict *od.ObjectDictionary
}

// NewInspector creates a new Inspector for the given dictionary.
func NewInspector(dict *od.ObjectDictionary) *Inspector {
	return &Inspector{dict: dict}
}

// Dictionary returns the underlying object dictionary.
func (i *Inspector) Dictionary() *od.ObjectDictionary {
	return i.dict
}

// DictionaryTree represents the complete dictionary structure for display.
type DictionaryTree struct {
	NodeID        uint8
	VendorName    string
	VendorNumber  uint32
	ProductName   string
	ProductNumber uint32
	Entries       []EntryInfo
}

// EntryInfo represents a top-level entry for display.
type EntryInfo struct {
	Index      uint16
	Name       string
	ObjectType od.ObjectType
	Variables  []VariableInfo
}

// VariableInfo represents a Variable for display.
type VariableInfo struct {
	Index      uint16
	SubIndex   uint8
	Name       string
	DataType   datatype.Code
	Access     od.AccessType
	Default    any
	Value      any
	Configured bool
	Relative   bool
	Min        any
	Max        any
	Range      string
}

// InspectDictionary returns a complete tree of the dictionary, entries
// ascending by index.
func (i *Inspector) InspectDictionary() *DictionaryTree {
	tree := &DictionaryTree{
		NodeID:        i.dict.NodeID,
		VendorName:    i.dict.DeviceInfo.VendorName,
		VendorNumber:  i.dict.DeviceInfo.VendorNumber,
		ProductName:   i.dict.DeviceInfo.ProductName,
		ProductNumber: i.dict.DeviceInfo.ProductNumber,
	}

	for _, e := range sortedEntries(i.dict) {
		tree.Entries = append(tree.Entries, inspectEntryInternal(e))
	}

	return tree
}

// InspectEntry returns information about a single entry.
func (i *Inspector) InspectEntry(index uint16) (*EntryInfo, error) {
	e, err := i.dict.Get(index)
	if err != nil {
		return nil, fmt.Errorf("%w: 0x%04X", ErrEntryNotFound, index)
	}

	info := inspectEntryInternal(e)
	return &info, nil
}

// inspectEntryInternal extracts entry info without error handling.
func inspectEntryInternal(e od.Entry) EntryInfo {
	info := EntryInfo{
		Index:      e.Index(),
		Name:       e.Name(),
		ObjectType: e.ObjectType(),
	}
	if v, ok := e.(*od.Variable); ok {
		info.Variables = []VariableInfo{inspectVariable(v)}
		return info
	}
	for _, v := range subVariables(e) {
		info.Variables = append(info.Variables, inspectVariable(v))
	}
	return info
}

func inspectVariable(v *od.Variable) VariableInfo {
	return VariableInfo{
		Index:      v.Index(),
		SubIndex:   v.SubIndex(),
		Name:       v.Name(),
		DataType:   v.DataType(),
		Access:     v.Access(),
		Default:    v.Default(),
		Value:      v.Value(),
		Configured: v.HasValue(),
		Relative:   v.Relative(),
		Min:        v.Min(),
		Max:        v.Max(),
		Range:      FormatRange(v),
	}
}

// Resolve returns the entry or sub-object Variable addressed by path.
func (i *Inspector) Resolve(path *Path) (od.Entry, error) {
	index := path.Index
	if path.IndexName != "" {
		idx, ok := ResolveIndexName(i.dict, path.IndexName)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, path.IndexName)
		}
		index = idx
	}

	e, err := i.dict.Get(index)
	if err != nil {
		return nil, fmt.Errorf("%w: 0x%04X", ErrEntryNotFound, index)
	}
	if !path.HasSub {
		return e, nil
	}

	sub := path.SubIndex
	if path.SubName != "" {
		s, ok := ResolveSubName(e, path.SubName)
		if !ok {
			return nil, fmt.Errorf("%w: 0x%04X %q", ErrSubNotFound, index, path.SubName)
		}
		sub = s
	}

	v, err := i.dict.Variable(index, sub)
	if err != nil {
		return nil, fmt.Errorf("%w: 0x%04X sub %d", ErrSubNotFound, index, sub)
	}
	return v, nil
}

// ResolveVariable resolves path to a Variable. A path naming a Record or
// Array without a sub-index does not address a Variable.
func (i *Inspector) ResolveVariable(path *Path) (*od.Variable, error) {
	e, err := i.Resolve(path)
	if err != nil {
		return nil, err
	}
	v, ok := e.(*od.Variable)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotVariable, path, e.ObjectType())
	}
	return v, nil
}

// ReadValue reads the effective value of a Variable: the configured value
// when present, else the default.
func (i *Inspector) ReadValue(path *Path) (any, *od.Variable, error) {
	v, err := i.ResolveVariable(path)
	if err != nil {
		return nil, nil, err
	}
	if v.HasValue() {
		return v.Value(), v, nil
	}
	return v.Default(), v, nil
}

// WriteValue sets the configured value of a Variable. Values are checked
// against the data type and the legal range.
func (i *Inspector) WriteValue(path *Path, value any) error {
	v, err := i.ResolveVariable(path)
	if err != nil {
		return err
	}
	if !v.Access().CanWrite() {
		return fmt.Errorf("%w: %s is %s", ErrNotWritable, v.Name(), v.Access())
	}
	return v.SetValue(value)
}

// WriteValueText decodes text as a literal of the Variable's data type and
// sets it as the configured value.
func (i *Inspector) WriteValueText(path *Path, text string) error {
	v, err := i.ResolveVariable(path)
	if err != nil {
		return err
	}
	value, err := datatype.Decode(v.DataType(), text)
	if err != nil {
		return err
	}
	return i.WriteValue(path, value)
}

// ClearValue removes the configured value of a Variable.
func (i *Inspector) ClearValue(path *Path) error {
	v, err := i.ResolveVariable(path)
	if err != nil {
		return err
	}
	v.ClearValue()
	return nil
}

// FormatDictionaryTree formats the dictionary tree for display.
func (i *Inspector) FormatDictionaryTree(tree *DictionaryTree, formatter *Formatter) string {
	if formatter == nil {
		formatter = NewFormatter()
	}

	var sb strings.Builder

	// Header
	fmt.Fprintf(&sb, "Device: %s %s\n", tree.VendorName, tree.ProductName)
	fmt.Fprintf(&sb, "Vendor: 0x%08X  Product: 0x%08X", tree.VendorNumber, tree.ProductNumber)
	if tree.NodeID != 0 {
		fmt.Fprintf(&sb, "  Node: %d", tree.NodeID)
	}
	sb.WriteString("\n---\n")

	for _, e := range tree.Entries {
		sb.WriteString(i.formatEntry(&e, formatter, 0))
	}

	return sb.String()
}

// FormatEntry formats an entry for display.
func (i *Inspector) FormatEntry(entry *EntryInfo, formatter *Formatter) string {
	if formatter == nil {
		formatter = NewFormatter()
	}
	return i.formatEntry(entry, formatter, 0)
}

func (i *Inspector) formatEntry(e *EntryInfo, f *Formatter, depth int) string {
	if e.ObjectType.IsVariable() && len(e.Variables) == 1 {
		line := f.formatVariableInfo(&e.Variables[0])
		if f.ShowIDs {
			line = fmt.Sprintf("[0x%04X] %s", e.Index, line)
		}
		return f.Indent(depth, line) + "\n"
	}

	var sb strings.Builder
	header := fmt.Sprintf("%s (%s)", e.Name, e.ObjectType)
	if f.ShowIDs {
		header = fmt.Sprintf("[0x%04X] %s", e.Index, header)
	}
	sb.WriteString(f.Indent(depth, header) + "\n")

	for _, v := range e.Variables {
		line := f.formatVariableInfo(&v)
		if f.ShowIDs {
			line = fmt.Sprintf("[%d] %s", v.SubIndex, line)
		}
		sb.WriteString(f.Indent(depth+1, line) + "\n")
	}

	return sb.String()
}

func (f *Formatter) formatVariableInfo(v *VariableInfo) string {
	value := v.Default
	if v.Configured {
		value = v.Value
	}
	s := fmt.Sprintf("%s = %s", v.Name, f.FormatValue(value, v.DataType))
	if v.Configured {
		s += fmt.Sprintf(" (default %s)", f.FormatValue(v.Default, v.DataType))
	}
	if v.Relative {
		s += " +$NODEID"
	}
	if f.ShowMetadata {
		s += fmt.Sprintf(" (%s, %s)", FormatDataType(v.DataType), FormatAccess(v.Access))
		if v.Range != "" {
			s += " " + v.Range
		}
	}
	return s
}

// Rows returns the Variables of an entry as table rows.
func (f *Formatter) Rows(e *EntryInfo) []VariableRow {
	rows := make([]VariableRow, 0, len(e.Variables))
	for _, v := range e.Variables {
		value := v.Default
		if v.Configured {
			value = v.Value
		}
		rows = append(rows, VariableRow{
			SubIndex: v.SubIndex,
			Name:     v.Name,
			Value:    f.FormatValue(value, v.DataType),
			Type:     FormatDataType(v.DataType),
			Access:   FormatAccess(v.Access),
			Range:    v.Range,
		})
	}
	return rows
}

// sortedEntries returns the dictionary entries ascending by index.
func sortedEntries(dict *od.ObjectDictionary) []od.Entry {
	entries := dict.Entries()
	sort.Slice(entries, func(a, b int) bool { return entries[a].Index() < entries[b].Index() })
	return entries
}
