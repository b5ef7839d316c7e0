// Package eds reads and writes CANopen Electronic Data Sheets (EDS) and
// Device Configuration Files (DCF).
//
// # Import
//
// Import is a two-stage pipeline. Tokenize splits the quasi-INI text into
// sections and key/value pairs; the builder then resolves every object
// section into an od.Variable, od.Record or od.Array:
//
//	dict, err := eds.ImportFile("device.eds", 2)
//	if errors.Is(err, eds.ErrSourceNotFound) { ... }
//
//	imp := &eds.Importer{NodeID: 2, Naming: eds.NameSpace, Logger: recorder}
//	dict, err = imp.ImportString(text)
//
// Keys are matched case-insensitively. Inline ';' comments are removed from
// values except in [Comments]. ParameterName values are opaque text; a '%'
// is just a character.
//
// # Compact Sub-Objects
//
// An ARRAY declared with CompactSubObj is expanded into one Variable per
// sub-index 1..N, where N is NumberOfEntries (or NrOfEntries) when present
// and the CompactSubObj value otherwise. Names come from the [xxxxName]
// section when it lists the sub-index and from the importer's
// NamingStrategy otherwise; defaults can be overridden per sub-index with
// [xxxxValue].
//
// # Node-Relative Values
//
// Defaults, limits and parameter values written as $NODEID+offset (or
// offset+$NODEID) are flagged Relative and resolved to offset+NodeID when a
// node-ID is known. The raw text is always kept for export.
//
// # Errors
//
// Import is all-or-nothing. Malformed headers and required keys fail with
// a *SectionError wrapping ErrMalformedSection; unknown data types wrap
// datatype.ErrUnsupportedType; duplicate indices or names wrap
// od.ErrDuplicateKey. Recoverable oddities (unknown keys, undecodable
// defaults) are reported to the importer's log.Logger instead.
//
// # Export
//
// Export writes the canonical layout: FileInfo, DeviceInfo, DummyUsage,
// Comments, the object lists and then every object ascending by index.
// Arrays are always written expanded. DocDCF adds ParameterValue keys and a
// [DeviceComissioning] section.
package eds
