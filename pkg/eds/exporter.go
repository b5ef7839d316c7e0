package eds

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/canopen-tools/edsod/pkg/datatype"
	"github.com/canopen-tools/edsod/pkg/od"
)

// DocType selects the exported document flavour.
type DocType string

const (
	// DocEDS is an Electronic Data Sheet: defaults only.
	DocEDS DocType = "eds"
	// DocDCF is a Device Configuration File: defaults plus configured
	// values and commissioning data.
	DocDCF DocType = "dcf"
)

// ParseDocType parses "eds" or "dcf", ignoring case.
func ParseDocType(s string) (DocType, error) {
	switch DocType(strings.ToLower(strings.TrimSpace(s))) {
	case DocEDS:
		return DocEDS, nil
	case DocDCF:
		return DocDCF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDocType, s)
}

// ExportFile writes dict to path, creating or truncating the file.
func ExportFile(path string, dict *od.ObjectDictionary, doc DocType) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()
	return Export(f, dict, doc)
}

// Export writes dict as an EDS or DCF document. Arrays are written with one
// section per sub-object. In DCF mode every Variable with a configured
// value gets a ParameterValue key; Variables without one are written
// without it.
func Export(w io.Writer, dict *od.ObjectDictionary, doc DocType) error {
	if doc != DocEDS && doc != DocDCF {
		return fmt.Errorf("%w: %q", ErrInvalidDocType, doc)
	}
	e := &exporter{w: bufio.NewWriter(w), doc: doc}

	e.fileInfo(dict.FileInfo)
	e.deviceInfo(dict.DeviceInfo)
	e.dummyUsage(dict)
	e.comments(dict.Comments)
	if doc == DocDCF {
		e.commissioning(dict)
	}

	entries := objectEntries(dict)
	e.objectLists(entries)
	for _, entry := range entries {
		e.entry(entry)
	}

	if e.err != nil {
		return fmt.Errorf("failed to write data: %w", e.err)
	}
	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	return nil
}

type exporter struct {
	w        *bufio.Writer
	doc      DocType
	sections int
	err      error
}

func (e *exporter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *exporter) section(header string) {
	if e.sections > 0 {
		e.printf("\n")
	}
	e.sections++
	e.printf("[%s]\n", header)
}

func (e *exporter) kv(key, value string) {
	e.printf("%s=%s\n", key, value)
}

func (e *exporter) kvOpt(key, value string) {
	if value != "" {
		e.kv(key, value)
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (e *exporter) fileInfo(f od.FileInfo) {
	if f.IsZero() {
		return
	}
	e.section(SectionFileInfo)
	e.kvOpt(KeyFileName, f.FileName)
	e.kvOpt(KeyFileVersion, f.FileVersion)
	e.kvOpt(KeyFileRevision, f.FileRevision)
	e.kvOpt(KeyEDSVersion, f.EDSVersion)
	e.kvOpt(KeyDescription, f.Description)
	e.kvOpt(KeyCreationTime, f.CreationTime)
	e.kvOpt(KeyCreationDate, f.CreationDate)
	e.kvOpt(KeyCreatedBy, f.CreatedBy)
	e.kvOpt(KeyModificationTime, f.ModificationTime)
	e.kvOpt(KeyModificationDate, f.ModificationDate)
	e.kvOpt(KeyModifiedBy, f.ModifiedBy)
}

func (e *exporter) deviceInfo(d od.DeviceInfo) {
	e.section(SectionDeviceInfo)
	e.kv(KeyVendorName, d.VendorName)
	e.kv(KeyVendorNumber, fmt.Sprintf("0x%X", d.VendorNumber))
	e.kv(KeyProductName, d.ProductName)
	e.kv(KeyProductNumber, fmt.Sprintf("0x%X", d.ProductNumber))
	e.kv(KeyRevisionNumber, fmt.Sprintf("0x%X", d.RevisionNumber))
	e.kv(KeyOrderCode, d.OrderCode)

	rates := append([]uint32(nil), od.StandardBaudRates...)
	for _, r := range d.BaudRates {
		if !containsRate(rates, r) {
			rates = append(rates, r)
		}
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i] < rates[j] })
	for _, r := range rates {
		e.kv(fmt.Sprintf("BaudRate_%d", r), flag(d.SupportsBaudRate(r)))
	}

	e.kv(KeySimpleBootUpMaster, flag(d.SimpleBootUpMaster))
	e.kv(KeySimpleBootUpSlave, flag(d.SimpleBootUpSlave))
	e.kv(KeyGranularity, fmt.Sprint(d.Granularity))
	e.kv(KeyDynamicChannelsSupported, fmt.Sprint(d.DynamicChannelsSupported))
	e.kv(KeyGroupMessaging, flag(d.GroupMessaging))
	e.kv(KeyNrOfRXPDO, fmt.Sprint(d.NrOfRXPDO))
	e.kv(KeyNrOfTXPDO, fmt.Sprint(d.NrOfTXPDO))
	e.kv(KeyLSSSupported, flag(d.LSSSupported))
}

func containsRate(rates []uint32, r uint32) bool {
	for _, x := range rates {
		if x == r {
			return true
		}
	}
	return false
}

// isDummy reports whether an entry is a placeholder declared through
// [DummyUsage] rather than an object section.
func isDummy(entry od.Entry) bool {
	v, ok := entry.(*od.Variable)
	return ok && od.IsDummyIndex(v.Index()) &&
		v.Name() == od.DummyName(v.Index()) &&
		v.Access() == od.AccessConst &&
		v.DataType() == datatype.Code(v.Index())
}

func (e *exporter) dummyUsage(dict *od.ObjectDictionary) {
	e.section(SectionDummyUsage)
	for idx := uint16(0x0001); idx <= 0x0007; idx++ {
		entry, err := dict.Get(idx)
		e.kv(od.DummyName(idx), flag(err == nil && isDummy(entry)))
	}
}

func (e *exporter) comments(text string) {
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	e.section(SectionComments)
	e.kv(KeyLines, fmt.Sprint(len(lines)))
	for i, line := range lines {
		e.kv(fmt.Sprintf("Line%d", i+1), line)
	}
}

func (e *exporter) commissioning(dict *od.ObjectDictionary) {
	c := dict.Commissioning
	if c.NodeID == 0 {
		c.NodeID = dict.NodeID
	}
	e.section(SectionDeviceComissioning)
	e.kv(KeyNodeID, fmt.Sprint(c.NodeID))
	e.kv(KeyNodeName, c.NodeName)
	e.kv(KeyBaudrate, fmt.Sprint(c.Baudrate))
	e.kv(KeyNetNumber, fmt.Sprint(c.NetNumber))
	e.kv(KeyNetworkName, c.NetworkName)
	e.kv(KeyCANopenManager, flag(c.CANopenManager))
	e.kv(KeyLSSSerialNumber, fmt.Sprint(c.LSSSerialNumber))
}

// objectEntries returns the entries written as object sections, ascending
// by index.
func objectEntries(dict *od.ObjectDictionary) []od.Entry {
	var out []od.Entry
	for _, entry := range dict.Entries() {
		if !isDummy(entry) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

func (e *exporter) objectLists(entries []od.Entry) {
	var mandatory, optional, manufacturer []uint16
	for _, entry := range entries {
		idx := entry.Index()
		switch {
		case idx == 0x1000 || idx == 0x1001 || idx == 0x1018:
			mandatory = append(mandatory, idx)
		case idx >= 0x2000 && idx <= 0x5FFF:
			manufacturer = append(manufacturer, idx)
		default:
			optional = append(optional, idx)
		}
	}
	for _, l := range []struct {
		header  string
		indices []uint16
	}{
		{SectionMandatoryObjects, mandatory},
		{SectionOptionalObjects, optional},
		{SectionManufacturerObjects, manufacturer},
	} {
		e.section(l.header)
		e.kv(KeySupportedObjects, fmt.Sprint(len(l.indices)))
		for i, idx := range l.indices {
			e.kv(fmt.Sprint(i+1), fmt.Sprintf("0x%04X", idx))
		}
	}
}

func (e *exporter) entry(entry od.Entry) {
	switch x := entry.(type) {
	case *od.Variable:
		e.variable(fmt.Sprintf("%04X", x.Index()), x)
	case *od.Record:
		e.container(x.Index(), x.Name(), od.ObjectRecord, x.Variables())
	case *od.Array:
		e.container(x.Index(), x.Name(), od.ObjectArray, x.Variables())
	}
}

func (e *exporter) container(index uint16, name string, ot od.ObjectType, subs []*od.Variable) {
	e.section(fmt.Sprintf("%04X", index))
	e.kv(KeyParameterName, name)
	e.kv(KeyObjectType, fmt.Sprintf("0x%X", uint8(ot)))
	e.kv(KeySubNumber, fmt.Sprintf("0x%X", len(subs)))
	for _, v := range subs {
		e.variable(fmt.Sprintf("%04Xsub%X", index, v.SubIndex()), v)
	}
}

func (e *exporter) variable(header string, v *od.Variable) {
	info := v.Info()
	e.section(header)
	e.kv(KeyParameterName, info.Name)
	e.kv(KeyObjectType, fmt.Sprintf("0x%X", uint8(info.ObjectType)))
	e.kv(KeyDataType, fmt.Sprintf("0x%04X", uint16(info.DataType)))
	e.kv(KeyAccessType, info.Access.String())

	def := info.DefaultRaw
	if def == "" && info.Default != nil {
		def = datatype.Format(info.DataType, info.Default)
	}
	e.kvOpt(KeyDefaultValue, def)

	lo, hi, _ := datatype.Range(info.DataType)
	e.kvOpt(KeyLowLimit, limitText(info.DataType, info.LowLimitRaw, info.Min, lo))
	e.kvOpt(KeyHighLimit, limitText(info.DataType, info.HighLimitRaw, info.Max, hi))

	e.kv(KeyPDOMapping, flag(info.PDOMapping))
	e.kvOpt(KeyStorageLocation, info.StorageLocation)

	if e.doc == DocDCF && v.HasValue() {
		e.kv(KeyParameterValue, v.ValueRaw())
	}
}

// limitText returns the text of an explicit limit, or "" when the bound is
// the natural range of the type.
func limitText(code datatype.Code, raw string, bound, natural any) string {
	if raw != "" {
		return raw
	}
	if bound == nil || bound == natural {
		return ""
	}
	return datatype.Format(code, bound)
}
