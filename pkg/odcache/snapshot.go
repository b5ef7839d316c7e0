package odcache

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/canopen-tools/edsod/pkg/datatype"
	"github.com/canopen-tools/edsod/pkg/od"
)

// SnapshotVersion is the current version of the snapshot format.
const SnapshotVersion = 1

// Snapshot errors.
var (
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
	ErrSnapshotCorrupt = errors.New("corrupt snapshot")
)

// Snapshot is the serializable form of an object dictionary.
// CBOR encoding uses integer keys for compactness.
type Snapshot struct {
	// Version is the snapshot format version.
	Version int `cbor:"1,keyasint" yaml:"version"`

	// CompiledAt is when the snapshot was taken.
	CompiledAt time.Time `cbor:"2,keyasint" yaml:"compiledAt"`

	// Source names the file the dictionary was imported from.
	Source string `cbor:"3,keyasint,omitempty" yaml:"source,omitempty"`

	// Digest is the cache key of the source, hex encoded.
	Digest string `cbor:"4,keyasint,omitempty" yaml:"digest,omitempty"`

	NodeID        uint8            `cbor:"5,keyasint,omitempty" yaml:"nodeId,omitempty"`
	DeviceInfo    od.DeviceInfo    `cbor:"6,keyasint" yaml:"deviceInfo"`
	FileInfo      od.FileInfo      `cbor:"7,keyasint" yaml:"fileInfo,omitempty"`
	Commissioning od.Commissioning `cbor:"8,keyasint" yaml:"commissioning,omitempty"`
	Comments      string           `cbor:"9,keyasint,omitempty" yaml:"comments,omitempty"`

	// Entries are in dictionary insertion order.
	Entries []EntrySnapshot `cbor:"10,keyasint" yaml:"entries"`
}

// EntrySnapshot is a top-level entry. Standalone Variables carry exactly one
// element in Variables.
type EntrySnapshot struct {
	Index      uint16        `cbor:"1,keyasint" yaml:"index"`
	Name       string        `cbor:"2,keyasint" yaml:"name"`
	ObjectType od.ObjectType `cbor:"3,keyasint" yaml:"objectType"`

	// Compact is the CompactSubObj count of an Array.
	Compact uint8 `cbor:"4,keyasint,omitempty" yaml:"compact,omitempty"`

	Variables []VariableSnapshot `cbor:"5,keyasint" yaml:"variables"`
}

// VariableSnapshot is a single Variable, declaration plus configured value.
type VariableSnapshot struct {
	SubIndex        uint8         `cbor:"1,keyasint" yaml:"subIndex"`
	Name            string        `cbor:"2,keyasint" yaml:"name"`
	ObjectType      od.ObjectType `cbor:"3,keyasint,omitempty" yaml:"objectType,omitempty"`
	DataType        datatype.Code `cbor:"4,keyasint" yaml:"dataType"`
	Access          od.AccessType `cbor:"5,keyasint" yaml:"access"`
	DefaultRaw      string        `cbor:"6,keyasint,omitempty" yaml:"defaultRaw,omitempty"`
	Default         any           `cbor:"7,keyasint,omitempty" yaml:"default,omitempty"`
	Relative        bool          `cbor:"8,keyasint,omitempty" yaml:"relative,omitempty"`
	LowLimitRaw     string        `cbor:"9,keyasint,omitempty" yaml:"lowLimit,omitempty"`
	HighLimitRaw    string        `cbor:"10,keyasint,omitempty" yaml:"highLimit,omitempty"`
	Min             any           `cbor:"11,keyasint,omitempty" yaml:"min,omitempty"`
	Max             any           `cbor:"12,keyasint,omitempty" yaml:"max,omitempty"`
	PDOMapping      bool          `cbor:"13,keyasint,omitempty" yaml:"pdoMapping,omitempty"`
	StorageLocation string        `cbor:"14,keyasint,omitempty" yaml:"storageLocation,omitempty"`
	HasValue        bool          `cbor:"15,keyasint,omitempty" yaml:"hasValue,omitempty"`
	ValueRaw        string        `cbor:"16,keyasint,omitempty" yaml:"valueRaw,omitempty"`
	Value           any           `cbor:"17,keyasint,omitempty" yaml:"value,omitempty"`
}

var (
	snapEncMode cbor.EncMode
	snapDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	snapEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	snapDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR decoder mode: %v", err))
	}
}

// Take captures a dictionary as a snapshot.
func Take(dict *od.ObjectDictionary) *Snapshot {
	s := &Snapshot{
		Version:       SnapshotVersion,
		CompiledAt:    time.Now(),
		NodeID:        dict.NodeID,
		DeviceInfo:    dict.DeviceInfo,
		FileInfo:      dict.FileInfo,
		Commissioning: dict.Commissioning,
		Comments:      dict.Comments,
	}

	for _, e := range dict.Entries() {
		es := EntrySnapshot{
			Index:      e.Index(),
			Name:       e.Name(),
			ObjectType: e.ObjectType(),
		}
		switch e := e.(type) {
		case *od.Variable:
			es.Variables = []VariableSnapshot{takeVariable(e)}
		case *od.Record:
			for _, v := range e.Variables() {
				es.Variables = append(es.Variables, takeVariable(v))
			}
		case *od.Array:
			es.Compact = e.Compact()
			for _, v := range e.Variables() {
				es.Variables = append(es.Variables, takeVariable(v))
			}
		}
		s.Entries = append(s.Entries, es)
	}
	return s
}

func takeVariable(v *od.Variable) VariableSnapshot {
	info := v.Info()
	return VariableSnapshot{
		SubIndex:        info.SubIndex,
		Name:            info.Name,
		ObjectType:      info.ObjectType,
		DataType:        info.DataType,
		Access:          info.Access,
		DefaultRaw:      info.DefaultRaw,
		Default:         info.Default,
		Relative:        info.Relative,
		LowLimitRaw:     info.LowLimitRaw,
		HighLimitRaw:    info.HighLimitRaw,
		Min:             info.Min,
		Max:             info.Max,
		PDOMapping:      info.PDOMapping,
		StorageLocation: info.StorageLocation,
		HasValue:        v.HasValue(),
		ValueRaw:        v.ValueRaw(),
		Value:           v.Value(),
	}
}

// Dictionary rebuilds the object dictionary from a snapshot.
func (s *Snapshot) Dictionary() (*od.ObjectDictionary, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, s.Version)
	}

	dict := od.New()
	dict.NodeID = s.NodeID
	dict.DeviceInfo = s.DeviceInfo
	dict.FileInfo = s.FileInfo
	dict.Commissioning = s.Commissioning
	dict.Comments = s.Comments

	for _, es := range s.Entries {
		entry, err := es.entry()
		if err != nil {
			return nil, err
		}
		if err := dict.Add(entry); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
		}
	}
	return dict, nil
}

func (es *EntrySnapshot) entry() (od.Entry, error) {
	if es.ObjectType.IsVariable() {
		if len(es.Variables) != 1 {
			return nil, fmt.Errorf("%w: variable 0x%04X has %d members", ErrSnapshotCorrupt, es.Index, len(es.Variables))
		}
		return es.Variables[0].variable(es.Index), nil
	}

	var add func(*od.Variable) error
	var entry od.Entry
	switch es.ObjectType {
	case od.ObjectArray:
		a := od.NewArray(es.Index, es.Name)
		a.MarkCompact(es.Compact)
		add, entry = a.Add, a
	case od.ObjectRecord:
		r := od.NewRecord(es.Index, es.Name)
		add, entry = r.Add, r
	default:
		return nil, fmt.Errorf("%w: 0x%04X has object type %s", ErrSnapshotCorrupt, es.Index, es.ObjectType)
	}

	for i := range es.Variables {
		if err := add(es.Variables[i].variable(es.Index)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
		}
	}
	return entry, nil
}

// variable restores a Variable. CBOR has no distinct signed and unsigned
// integer kinds for positive numbers, so values are normalized back to the
// representation of the data type.
func (vs *VariableSnapshot) variable(index uint16) *od.Variable {
	v := od.NewVariable(od.VariableInfo{
		Index:           index,
		SubIndex:        vs.SubIndex,
		Name:            vs.Name,
		ObjectType:      vs.ObjectType,
		DataType:        vs.DataType,
		Access:          vs.Access,
		DefaultRaw:      vs.DefaultRaw,
		Default:         restore(vs.DataType, vs.Default),
		Relative:        vs.Relative,
		LowLimitRaw:     vs.LowLimitRaw,
		HighLimitRaw:    vs.HighLimitRaw,
		Min:             restore(vs.DataType, vs.Min),
		Max:             restore(vs.DataType, vs.Max),
		PDOMapping:      vs.PDOMapping,
		StorageLocation: vs.StorageLocation,
	})
	if vs.HasValue {
		v.SetValueRaw(vs.ValueRaw, restore(vs.DataType, vs.Value))
	}
	return v
}

func restore(code datatype.Code, v any) any {
	if v == nil {
		return nil
	}
	info, err := datatype.Lookup(code)
	if err == nil && info.Class == datatype.ClassString {
		if b, ok := v.([]byte); ok {
			return string(b)
		}
	}
	return datatype.Normalize(code, v)
}

// Encode serializes a snapshot to CBOR.
func Encode(s *Snapshot) ([]byte, error) {
	return snapEncMode.Marshal(s)
}

// Decode parses a CBOR snapshot.
func Decode(data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	if err := snapDecMode.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, s.Version)
	}
	return s, nil
}
