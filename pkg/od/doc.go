// Package od implements the CANopen Object Dictionary data model.
//
// # Dictionary Structure
//
// An ObjectDictionary is an ordered collection of top-level entries, each
// addressable by its 16-bit index and by its name:
//
//	ObjectDictionary
//	├── 0x1000 Device type              (Variable)
//	├── 0x1003 Pre-defined error field  (Array)
//	│   ├── sub1 Pre-defined error field_1
//	│   └── sub2 Pre-defined error field_2
//	├── 0x1018 Identity object          (Record)
//	│   ├── sub0 Number of entries
//	│   └── sub1 Vendor-ID
//	└── ...
//
// Entries are one of three variants:
//   - Variable: a leaf with data type, access type, default and limits
//   - Record: heterogeneous Variables sharing one index
//   - Array: homogeneous Variables sharing one index
//
// # Addressing
//
// Variables are addressed by the tuple (Index, SubIndex). Standalone
// Variables use SubIndex 0. Both the dictionary and its containers support
// lookup by number and by name; misses return ErrUnknownIndex or
// ErrUnknownName.
//
// # Dummy Entries
//
// Indices 0x0001-0x0007 are reserved for dummy placeholders used in PDO
// mapping. They are only present when declared by the source file.
//
// # Concurrency
//
// A dictionary is built once and then treated as read-only, so it may be
// shared between goroutines without locking. The current-value slot of a
// Variable (SetValue) is not synchronized; callers updating it from several
// goroutines must provide their own locking.
package od
