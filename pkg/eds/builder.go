package eds

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/canopen-tools/edsod/pkg/datatype"
	"github.com/canopen-tools/edsod/pkg/log"
	"github.com/canopen-tools/edsod/pkg/od"
)

// maxNodeID is the highest CANopen node-ID.
const maxNodeID = 127

// Node-relative value forms: "$NODEID+0x200", "0x200+$NODEID", "$NODEID".
var (
	nodeIDPrefix = regexp.MustCompile(`(?i)^\$NODEID\s*\+\s*(\S.*)$`)
	nodeIDSuffix = regexp.MustCompile(`(?i)^(.*\S)\s*\+\s*\$NODEID$`)
	nodeIDOnly   = regexp.MustCompile(`(?i)^\$NODEID$`)
)

// builder turns a tokenized File into an object dictionary.
type builder struct {
	file     *File
	nodeID   uint8
	naming   NamingStrategy
	logger   log.Logger
	importID string
	source   string

	dict     *od.ObjectDictionary
	dummies  int
	warnings int
}

// member carries the overrides applied when a Variable is built from a
// section it does not own, i.e. a compact sub-object built from its parent.
type member struct {
	name       string
	defaultRaw string
	hasDefault bool
}

func (b *builder) build() (*od.ObjectDictionary, error) {
	start := time.Now()
	b.dict = od.New()

	if err := b.buildFileInfo(); err != nil {
		return nil, err
	}
	if err := b.buildDeviceInfo(); err != nil {
		return nil, err
	}
	if err := b.buildCommissioning(); err != nil {
		return nil, err
	}
	b.buildComments()

	if b.nodeID == 0 {
		b.nodeID = b.dict.Commissioning.NodeID
	}
	b.dict.NodeID = b.nodeID

	if err := b.buildDummies(); err != nil {
		return nil, err
	}

	for _, s := range b.file.sections {
		switch s.Kind {
		case KindObject:
			if od.IsDummyIndex(s.Index) && b.dict.Has(s.Index) {
				b.report(log.LevelDebug, log.CategoryStructure, s, "", s.Line,
					"object section ignored, index declared in [%s]", SectionDummyUsage)
				continue
			}
			e, err := b.buildObject(s)
			if err != nil {
				return nil, err
			}
			if err := b.dict.Add(e); err != nil {
				return nil, &SectionError{Section: s.Header, Line: s.Line, Err: err}
			}
		case KindSub:
			if b.file.Object(s.Index) == nil {
				return nil, malformed(s.Header, "", s.Line, "sub-object without object [%04X]", s.Index)
			}
		case KindNames, KindValues:
			parent := b.file.Object(s.Index)
			if parent == nil {
				return nil, malformed(s.Header, "", s.Line, "%s section without object [%04X]", s.Kind, s.Index)
			}
			if !parent.Has(KeyCompactSubObj) {
				b.report(log.LevelWarning, log.CategoryStructure, s, "", s.Line,
					"%s section ignored, object is not compact", s.Kind)
			}
		case KindObjectLinks:
			b.report(log.LevelDebug, log.CategoryStructure, s, "", s.Line, "object links ignored")
		case KindNamed:
			b.checkNamed(s)
		}
	}

	b.logger.Log(log.Event{
		Timestamp: time.Now(),
		ImportID:  b.importID,
		Source:    b.source,
		Level:     log.LevelInfo,
		Category:  log.CategorySummary,
		Message:   "import complete",
		Summary: &log.ImportSummary{
			Entries:   b.dict.Len(),
			Variables: len(b.dict.Variables()),
			Dummies:   b.dummies,
			Warnings:  b.warnings,
			NodeID:    b.nodeID,
			Duration:  time.Since(start),
		},
	})
	return b.dict, nil
}

func (b *builder) report(level log.Level, cat log.Category, s *Section, key string, line int, format string, args ...any) {
	if level >= log.LevelWarning {
		b.warnings++
	}
	e := log.Event{
		Timestamp: time.Now(),
		ImportID:  b.importID,
		Source:    b.source,
		Level:     level,
		Category:  cat,
		Key:       key,
		Line:      line,
		Message:   fmt.Sprintf(format, args...),
	}
	if s != nil {
		e.Section = s.Header
	}
	b.logger.Log(e)
}

// checkNamed reports keys outside the vocabulary of a named section.
func (b *builder) checkNamed(s *Section) {
	switch {
	case s.Is(SectionDeviceInfo), s.Is(SectionFileInfo), s.Is(SectionDeviceComissioning):
		for _, p := range s.pairs {
			if !knownSectionKey(s.Header, p.Key) {
				b.report(log.LevelWarning, log.CategoryVocabulary, s, p.Key, p.Line, "unknown key")
			}
		}
	case s.Is(SectionComments), s.Is(SectionDummyUsage),
		s.Is(SectionMandatoryObjects), s.Is(SectionOptionalObjects), s.Is(SectionManufacturerObjects):
	default:
		b.report(log.LevelDebug, log.CategoryVocabulary, s, "", s.Line, "section ignored")
	}
}

func (b *builder) buildFileInfo() error {
	s := b.file.Named(SectionFileInfo)
	if s == nil {
		return nil
	}
	get := func(key string) string {
		v, _ := s.Get(key)
		return v
	}
	b.dict.FileInfo = od.FileInfo{
		FileName:         get(KeyFileName),
		FileVersion:      get(KeyFileVersion),
		FileRevision:     get(KeyFileRevision),
		EDSVersion:       get(KeyEDSVersion),
		Description:      get(KeyDescription),
		CreationTime:     get(KeyCreationTime),
		CreationDate:     get(KeyCreationDate),
		CreatedBy:        get(KeyCreatedBy),
		ModificationTime: get(KeyModificationTime),
		ModificationDate: get(KeyModificationDate),
		ModifiedBy:       get(KeyModifiedBy),
	}
	return nil
}

func (b *builder) buildDeviceInfo() error {
	s := b.file.Named(SectionDeviceInfo)
	if s == nil {
		return nil
	}
	p := fieldParser{s: s}
	d := &b.dict.DeviceInfo

	d.VendorName, _ = s.Get(KeyVendorName)
	d.ProductName, _ = s.Get(KeyProductName)
	d.OrderCode, _ = s.Get(KeyOrderCode)
	d.VendorNumber = uint32(p.number(KeyVendorNumber, 32))
	d.ProductNumber = uint32(p.number(KeyProductNumber, 32))
	d.RevisionNumber = uint32(p.number(KeyRevisionNumber, 32))
	d.SimpleBootUpMaster = p.flag(KeySimpleBootUpMaster)
	d.SimpleBootUpSlave = p.flag(KeySimpleBootUpSlave)
	d.Granularity = uint8(p.number(KeyGranularity, 8))
	d.DynamicChannelsSupported = uint8(p.number(KeyDynamicChannelsSupported, 8))
	d.GroupMessaging = p.flag(KeyGroupMessaging)
	d.NrOfRXPDO = uint16(p.number(KeyNrOfRXPDO, 16))
	d.NrOfTXPDO = uint16(p.number(KeyNrOfTXPDO, 16))
	d.LSSSupported = p.flag(KeyLSSSupported)

	for _, pair := range s.pairs {
		k := normalizeKey(pair.Key)
		if !strings.HasPrefix(k, baudRatePrefix) {
			continue
		}
		kbps, err := strconv.ParseUint(k[len(baudRatePrefix):], 10, 32)
		if err != nil {
			return malformed(s.Header, pair.Key, pair.Line, "invalid baud rate key")
		}
		if p.flag(pair.Key) {
			d.BaudRates = append(d.BaudRates, uint32(kbps))
		}
	}
	sort.Slice(d.BaudRates, func(i, j int) bool { return d.BaudRates[i] < d.BaudRates[j] })
	return p.err
}

func (b *builder) buildCommissioning() error {
	s := b.file.Named(SectionDeviceComissioning)
	if s == nil {
		return nil
	}
	p := fieldParser{s: s}
	c := &b.dict.Commissioning

	node := p.number(KeyNodeID, 8)
	if p.err == nil && node > maxNodeID {
		pair, _ := s.Pair(KeyNodeID)
		return &SectionError{Section: s.Header, Key: pair.Key, Line: pair.Line,
			Err: fmt.Errorf("%w: %d", ErrInvalidNodeID, node)}
	}
	c.NodeID = uint8(node)
	c.NodeName, _ = s.Get(KeyNodeName)
	c.Baudrate = uint32(p.number(KeyBaudrate, 32))
	c.NetNumber = uint32(p.number(KeyNetNumber, 32))
	c.NetworkName, _ = s.Get(KeyNetworkName)
	c.CANopenManager = p.flag(KeyCANopenManager)
	c.LSSSerialNumber = uint32(p.number(KeyLSSSerialNumber, 32))
	return p.err
}

func (b *builder) buildComments() {
	s := b.file.Named(SectionComments)
	if s == nil {
		return
	}

	var lines []string
	if raw, ok := s.Get(KeyLines); ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 {
			pair, _ := s.Pair(KeyLines)
			b.report(log.LevelWarning, log.CategoryValue, s, pair.Key, pair.Line, "invalid line count %q, using section body", raw)
			lines = s.Body
		} else {
			for i := 1; i <= n; i++ {
				line, _ := s.Get(fmt.Sprintf("Line%d", i))
				lines = append(lines, line)
			}
		}
	} else {
		lines = s.Body
	}
	b.dict.Comments = trimBlankLines(lines)
}

// trimBlankLines joins lines with "\n" after dropping leading and trailing
// blank lines.
func trimBlankLines(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

func (b *builder) buildDummies() error {
	s := b.file.Named(SectionDummyUsage)
	if s == nil {
		return nil
	}
	p := fieldParser{s: s}

	enabled := make(map[uint16]bool)
	for _, pair := range s.pairs {
		k := normalizeKey(pair.Key)
		if !strings.HasPrefix(k, "dummy") {
			b.report(log.LevelWarning, log.CategoryVocabulary, s, pair.Key, pair.Line, "unknown key")
			continue
		}
		idx, err := strconv.ParseUint(k[len("dummy"):], 16, 16)
		if err != nil || !od.IsDummyIndex(uint16(idx)) {
			return malformed(s.Header, pair.Key, pair.Line, "invalid dummy key")
		}
		enabled[uint16(idx)] = p.flag(pair.Key)
	}
	if p.err != nil {
		return p.err
	}

	for idx := uint16(0x0001); idx <= 0x0007; idx++ {
		if !enabled[idx] {
			continue
		}
		code, _ := datatype.Basic(idx)
		lo, hi, _ := datatype.Range(code)
		v := od.NewVariable(od.VariableInfo{
			Index:    idx,
			Name:     od.DummyName(idx),
			DataType: code,
			Access:   od.AccessConst,
			Min:      lo,
			Max:      hi,
		})
		if err := b.dict.Add(v); err != nil {
			return &SectionError{Section: s.Header, Err: err}
		}
		b.dummies++
	}
	return nil
}

// objectType returns the declared ObjectType of a section, VAR when absent.
func objectType(s *Section) (od.ObjectType, error) {
	pair, ok := s.Pair(KeyObjectType)
	if !ok || pair.Value == "" {
		return od.ObjectVar, nil
	}
	ot, err := od.ParseObjectType(pair.Value)
	if err != nil {
		return 0, &SectionError{Section: s.Header, Key: pair.Key, Line: pair.Line,
			Err: fmt.Errorf("%w: %w", ErrMalformedSection, err)}
	}
	return ot, nil
}

func (b *builder) buildObject(s *Section) (od.Entry, error) {
	name, ok := s.Get(KeyParameterName)
	if !ok || name == "" {
		return nil, malformed(s.Header, KeyParameterName, s.Line, "missing ParameterName")
	}
	ot, err := objectType(s)
	if err != nil {
		return nil, err
	}
	p := fieldParser{s: s}
	compact := p.number(KeyCompactSubObj, 8)
	if p.err != nil {
		return nil, p.err
	}
	subs := b.file.Subs(s.Index)

	switch ot {
	case od.ObjectArray, od.ObjectRecord, od.ObjectDefStruct:
	default:
		if len(subs) > 0 {
			return nil, malformed(subs[0].Header, "", subs[0].Line, "sub-object of %s object [%04X]", ot, s.Index)
		}
		if compact > 0 {
			b.report(log.LevelWarning, log.CategoryStructure, s, KeyCompactSubObj, s.Line,
				"CompactSubObj ignored on %s object", ot)
		}
		return b.buildVariable(s, s.Index, 0, nil)
	}

	if compact > 0 {
		if len(subs) > 0 {
			b.report(log.LevelWarning, log.CategoryStructure, s, KeyCompactSubObj, s.Line,
				"%d sub-object sections ignored on compact object", len(subs))
		}
		return b.buildCompact(s, name, uint8(compact))
	}

	var add func(*od.Variable) error
	var entry od.Entry
	if ot == od.ObjectArray {
		a := od.NewArray(s.Index, name)
		add, entry = a.Add, a
	} else {
		r := od.NewRecord(s.Index, name)
		add, entry = r.Add, r
	}

	b.checkKeys(s)
	for _, sub := range subs {
		v, err := b.buildVariable(sub, s.Index, sub.SubIndex, nil)
		if err != nil {
			return nil, err
		}
		if err := add(v); err != nil {
			return nil, &SectionError{Section: sub.Header, Line: sub.Line, Err: err}
		}
	}

	if raw, ok := s.Get(KeySubNumber); ok {
		if n, err := parseUint(raw, 8); err != nil || int(n) != len(subs) {
			b.report(log.LevelWarning, log.CategoryStructure, s, KeySubNumber, s.Line,
				"SubNumber %q does not match %d sub-object sections", raw, len(subs))
		}
	}
	return entry, nil
}

// buildCompact expands a CompactSubObj declaration into an Array.
func (b *builder) buildCompact(s *Section, name string, compact uint8) (od.Entry, error) {
	p := fieldParser{s: s}
	n := uint64(compact)
	for _, key := range []string{KeyNumberOfEntries, KeyNrOfEntries} {
		if s.Has(key) {
			n = p.number(key, 8)
			break
		}
	}
	if p.err != nil {
		return nil, p.err
	}

	names, err := auxEntries(b.file.Aux(KindNames, s.Index))
	if err != nil {
		return nil, err
	}
	values, err := auxEntries(b.file.Aux(KindValues, s.Index))
	if err != nil {
		return nil, err
	}

	b.checkKeys(s)
	arr := od.NewArray(s.Index, name)
	arr.MarkCompact(uint8(n))
	for sub := 1; sub <= int(n); sub++ {
		m := &member{name: b.naming(name, uint8(sub))}
		if explicit, ok := names[uint8(sub)]; ok && explicit != "" {
			m.name = explicit
		}
		if raw, ok := values[uint8(sub)]; ok {
			m.defaultRaw, m.hasDefault = raw, true
		}
		v, err := b.buildVariable(s, s.Index, uint8(sub), m)
		if err != nil {
			return nil, err
		}
		if err := arr.Add(v); err != nil {
			return nil, &SectionError{Section: s.Header, Line: s.Line, Err: err}
		}
	}
	return arr, nil
}

// auxEntries reads the numbered keys of a [xxxxName] or [xxxxValue] section.
func auxEntries(s *Section) (map[uint8]string, error) {
	out := make(map[uint8]string)
	if s == nil {
		return out, nil
	}
	for _, p := range s.pairs {
		if strings.EqualFold(p.Key, KeyNrOfEntries) || strings.EqualFold(p.Key, KeyNumberOfEntries) {
			continue
		}
		sub, err := parseUint(p.Key, 8)
		if err != nil {
			return nil, malformed(s.Header, p.Key, p.Line, "expected a sub-index key")
		}
		out[uint8(sub)] = p.Value
	}
	return out, nil
}

// checkKeys reports keys outside the object vocabulary.
func (b *builder) checkKeys(s *Section) {
	for _, p := range s.pairs {
		if !knownObjectKey(p.Key) {
			b.report(log.LevelWarning, log.CategoryVocabulary, s, p.Key, p.Line, "unknown key")
		}
	}
}

// buildVariable builds a Variable from a section. m is non-nil for compact
// sub-objects, which share the parent section.
func (b *builder) buildVariable(s *Section, index uint16, sub uint8, m *member) (*od.Variable, error) {
	info := od.VariableInfo{Index: index, SubIndex: sub}

	if m != nil {
		info.Name = m.name
	} else {
		name, ok := s.Get(KeyParameterName)
		if !ok || name == "" {
			return nil, malformed(s.Header, KeyParameterName, s.Line, "missing ParameterName")
		}
		info.Name = name
		b.checkKeys(s)
	}

	ot, err := objectType(s)
	if err != nil {
		return nil, err
	}
	if m != nil || !ot.IsVariable() {
		ot = od.ObjectVar
	}
	info.ObjectType = ot

	if pair, ok := s.Pair(KeyDataType); ok && pair.Value != "" {
		code, err := datatype.Parse(pair.Value)
		if err != nil {
			return nil, &SectionError{Section: s.Header, Key: pair.Key, Line: pair.Line, Err: err}
		}
		info.DataType = code
	} else if ot == od.ObjectDomain {
		info.DataType = datatype.Domain
	} else {
		return nil, malformed(s.Header, KeyDataType, s.Line, "missing DataType")
	}

	info.Access = od.AccessRW
	if pair, ok := s.Pair(KeyAccessType); ok && pair.Value != "" {
		access, err := od.ParseAccess(pair.Value)
		if err != nil {
			return nil, &SectionError{Section: s.Header, Key: pair.Key, Line: pair.Line,
				Err: fmt.Errorf("%w: %w", ErrMalformedSection, err)}
		}
		info.Access = access
	}

	if pair, ok := s.Pair(KeyPDOMapping); ok {
		mapped, err := parseBool(pair.Value)
		if err != nil {
			b.report(log.LevelWarning, log.CategoryValue, s, pair.Key, pair.Line, "invalid PDOMapping %q", pair.Value)
		}
		info.PDOMapping = mapped
	}
	info.StorageLocation, _ = s.Get(KeyStorageLocation)

	defPair, hasDefault := s.Pair(KeyDefaultValue)
	if m != nil && m.hasDefault {
		defPair.Value, hasDefault = m.defaultRaw, true
	}
	if hasDefault {
		info.DefaultRaw = defPair.Value
		v, rel, err := b.decode(info.DataType, defPair.Value)
		if err != nil {
			b.report(log.LevelWarning, log.CategoryValue, s, KeyDefaultValue, defPair.Line, "default value: %v", err)
		} else {
			info.Default = v
			if rel && !datatype.InRange(info.DataType, v) {
				b.report(log.LevelWarning, log.CategoryValue, s, KeyDefaultValue, defPair.Line,
					"default value %s with node-ID %d is out of range for %s",
					datatype.Format(info.DataType, v), b.nodeID, info.DataType)
			}
		}
		info.Relative = rel
	}

	if err := b.limits(s, &info); err != nil {
		return nil, err
	}

	v := od.NewVariable(info)
	if pair, ok := s.Pair(KeyParameterValue); ok && m == nil {
		value, _, err := b.decode(info.DataType, pair.Value)
		if err != nil {
			b.report(log.LevelWarning, log.CategoryValue, s, pair.Key, pair.Line, "parameter value: %v", err)
			value = nil
		}
		v.SetValueRaw(pair.Value, value)
	}
	return v, nil
}

// limits decodes LowLimit and HighLimit, falling back to the natural range
// of the data type.
func (b *builder) limits(s *Section, info *od.VariableInfo) error {
	lo, hi, _ := datatype.Range(info.DataType)

	for _, l := range []struct {
		key string
		raw *string
		val *any
		def any
	}{
		{KeyLowLimit, &info.LowLimitRaw, &info.Min, lo},
		{KeyHighLimit, &info.HighLimitRaw, &info.Max, hi},
	} {
		*l.val = l.def
		pair, ok := s.Pair(l.key)
		if !ok || pair.Value == "" {
			continue
		}
		v, _, err := b.decode(info.DataType, pair.Value)
		if err != nil {
			return &SectionError{Section: s.Header, Key: pair.Key, Line: pair.Line,
				Err: fmt.Errorf("%w: %w", ErrMalformedSection, err)}
		}
		*l.raw = pair.Value
		*l.val = v
	}
	return nil
}

// decode decodes a value literal of the given type, resolving node-relative
// forms against the builder's node-ID.
func (b *builder) decode(code datatype.Code, raw string) (value any, relative bool, err error) {
	info, err := datatype.Lookup(code)
	if err != nil {
		return nil, false, err
	}
	if !info.IsNumeric() {
		v, err := datatype.Decode(code, raw)
		return v, false, err
	}

	offset, relative := splitNodeID(strings.TrimSpace(raw))
	if !relative {
		v, err := datatype.Decode(code, raw)
		return v, false, err
	}

	v, err := datatype.Decode(code, offset)
	if err != nil {
		return nil, true, err
	}
	if b.nodeID != 0 {
		v = addNodeID(v, b.nodeID)
	}
	return v, true, nil
}

// splitNodeID returns the offset of a node-relative literal.
func splitNodeID(raw string) (string, bool) {
	if nodeIDOnly.MatchString(raw) {
		return "0", true
	}
	if m := nodeIDPrefix.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := nodeIDSuffix.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return raw, false
}

func addNodeID(v any, node uint8) any {
	switch n := v.(type) {
	case int64:
		return n + int64(node)
	case uint64:
		return n + uint64(node)
	case float64:
		return n + float64(node)
	}
	return v
}

// fieldParser decodes typed fields of a named section, keeping the first
// error.
type fieldParser struct {
	s   *Section
	err error
}

func (p *fieldParser) number(key string, bits int) uint64 {
	pair, ok := p.s.Pair(key)
	if !ok || pair.Value == "" || p.err != nil {
		return 0
	}
	n, err := parseUint(pair.Value, bits)
	if err != nil {
		p.err = malformed(p.s.Header, pair.Key, pair.Line, "invalid number %q", pair.Value)
		return 0
	}
	return n
}

func (p *fieldParser) flag(key string) bool {
	pair, ok := p.s.Pair(key)
	if !ok || pair.Value == "" || p.err != nil {
		return false
	}
	v, err := parseBool(pair.Value)
	if err != nil {
		p.err = malformed(p.s.Header, pair.Key, pair.Line, "invalid flag %q", pair.Value)
		return false
	}
	return v
}

// parseUint parses a decimal or 0x-prefixed hex number with an optional
// leading '+'.
func parseUint(s string, bits int) (uint64, error) {
	s = strings.TrimSpace(s)
	if len(s) > 1 && s[0] == '+' {
		s = s[1:]
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return strconv.ParseUint(s[2:], 16, bits)
	}
	return strconv.ParseUint(s, 10, bits)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no", "":
		return false, nil
	}
	n, err := parseUint(s, 8)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return n != 0, nil
}
