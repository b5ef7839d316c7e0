package eds

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopen-tools/edsod/pkg/datatype"
	"github.com/canopen-tools/edsod/pkg/log"
	"github.com/canopen-tools/edsod/pkg/od"
)

const samplePath = "testdata/sample.eds"

func loadSample(t *testing.T, nodeID uint8) *od.ObjectDictionary {
	t.Helper()
	dict, err := ImportFile(samplePath, nodeID)
	require.NoError(t, err)
	return dict
}

func findVariable(t *testing.T, dict *od.ObjectDictionary, name string) *od.Variable {
	t.Helper()
	e, err := dict.Find(name)
	require.NoError(t, err)
	v, ok := e.(*od.Variable)
	require.Truef(t, ok, "%q is %T, want *od.Variable", name, e)
	return v
}

func TestImportSampleEntries(t *testing.T) {
	dict := loadSample(t, 2)

	assert.Equal(t, 18, dict.Len())
	assert.Equal(t, uint8(2), dict.NodeID)

	_, err := dict.Get(0x1018)
	require.NoError(t, err)
	_, err = dict.Get(0x2FFF)
	assert.ErrorIs(t, err, od.ErrUnknownIndex)
	_, err = dict.Find("Nonexistent")
	assert.ErrorIs(t, err, od.ErrUnknownName)
}

func TestImportVariable(t *testing.T) {
	dict := loadSample(t, 2)

	v := findVariable(t, dict, "Producer heartbeat time")
	assert.Equal(t, uint16(0x1017), v.Index())
	assert.Equal(t, uint8(0), v.SubIndex())
	assert.Equal(t, datatype.Unsigned16, v.DataType())
	assert.Equal(t, od.AccessRW, v.Access())
	assert.Equal(t, uint64(0), v.Default())
	assert.False(t, v.Relative())
	assert.False(t, v.PDOMapping())
	assert.False(t, v.HasValue())

	same, err := dict.Variable(0x1017, 0)
	require.NoError(t, err)
	assert.Same(t, v, same)

	_, err = dict.Variable(0x1017, 1)
	assert.ErrorIs(t, err, od.ErrUnknownIndex)
}

func TestImportRelativeDefault(t *testing.T) {
	dict := loadSample(t, 2)

	e, err := dict.Get(0x1400)
	require.NoError(t, err)
	rec, ok := e.(*od.Record)
	require.True(t, ok)

	cob, err := rec.Find("COB-ID use by RPDO 1")
	require.NoError(t, err)
	assert.True(t, cob.Relative())
	assert.Equal(t, uint64(0x200+2), cob.Default())
	assert.Equal(t, "$NODEID+0x200", cob.DefaultRaw())

	tt, err := rec.Sub(2)
	require.NoError(t, err)
	assert.Equal(t, "Transmission type RPDO 1", tt.Name())
	assert.Equal(t, uint64(255), tt.Default())
	assert.Equal(t, "255", tt.DefaultRaw())
}

func TestImportRelativeWithoutNodeID(t *testing.T) {
	dict := loadSample(t, 0)

	v, err := dict.Variable(0x1400, 1)
	require.NoError(t, err)
	assert.True(t, v.Relative())
	assert.Equal(t, uint64(0x200), v.Default())
	assert.Equal(t, uint8(0), dict.NodeID)
}

func TestImportRecord(t *testing.T) {
	dict := loadSample(t, 2)

	e, err := dict.Get(0x1018)
	require.NoError(t, err)
	rec, ok := e.(*od.Record)
	require.True(t, ok)

	assert.Equal(t, "Identity object", rec.Name())
	assert.Equal(t, od.ObjectRecord, rec.ObjectType())
	assert.Equal(t, 5, rec.Len())
	assert.Equal(t, []uint8{0, 1, 2, 3, 4}, rec.SubIndices())

	vendor, err := rec.Find("Vendor-ID")
	require.NoError(t, err)
	assert.Equal(t, uint8(1), vendor.SubIndex())
	assert.Equal(t, datatype.Unsigned32, vendor.DataType())
	assert.Equal(t, od.AccessRO, vendor.Access())
	assert.Equal(t, uint64(0x27A), vendor.Default())

	serial, err := rec.Sub(4)
	require.NoError(t, err)
	assert.Nil(t, serial.Default())
	assert.Equal(t, "", serial.DefaultRaw())
}

func TestImportSubIndexSpellings(t *testing.T) {
	dict := loadSample(t, 2)

	e, err := dict.Get(0x3010)
	require.NoError(t, err)
	rec := e.(*od.Record)

	sub0, err := rec.Sub(0)
	require.NoError(t, err)
	assert.Equal(t, "Temperature", sub0.Name())

	offset, err := rec.Find("Temperature offset")
	require.NoError(t, err)
	assert.Equal(t, uint8(1), offset.SubIndex())
	assert.Equal(t, datatype.Integer16, offset.DataType())
	assert.Equal(t, int64(-5), offset.Default())
}

func TestImportCompactArray(t *testing.T) {
	dict := loadSample(t, 2)

	e, err := dict.Get(0x1003)
	require.NoError(t, err)
	arr, ok := e.(*od.Array)
	require.True(t, ok)

	assert.Equal(t, "Pre-defined error field", arr.Name())
	assert.Equal(t, uint8(8), arr.Compact())
	assert.Equal(t, 8, arr.Len())
	assert.False(t, arr.Has(0))

	field, err := arr.Element(5)
	require.NoError(t, err)
	assert.Equal(t, "Pre-defined error field_5", field.Name())
	assert.Equal(t, uint8(5), field.SubIndex())
	assert.Equal(t, datatype.Unsigned32, field.DataType())
	assert.Equal(t, od.AccessRO, field.Access())
	assert.Equal(t, od.ObjectVar, field.ObjectType())
	assert.Equal(t, uint64(0), field.Default())

	byName, err := arr.Find("Pre-defined error field_5")
	require.NoError(t, err)
	assert.Same(t, field, byName)

	_, err = arr.Element(9)
	assert.ErrorIs(t, err, od.ErrUnknownIndex)
}

func TestImportCompactNamesAndValues(t *testing.T) {
	dict := loadSample(t, 2)

	e, err := dict.Find("Sensor Status")
	require.NoError(t, err)
	arr := e.(*od.Array)
	require.Equal(t, 3, arr.Len())

	for i := 1; i <= 3; i++ {
		v, err := arr.Element(i)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("Sensor Status %d", i), v.Name())
		assert.Equal(t, uint64(i), v.Default())
		assert.True(t, v.PDOMapping())
	}
}

func TestImportCompactNumberOfEntries(t *testing.T) {
	dict := loadSample(t, 2)

	e, err := dict.Find("Valve 1 % Open")
	require.NoError(t, err)
	arr := e.(*od.Array)
	assert.Equal(t, 5, arr.Len())

	last, err := arr.Element(5)
	require.NoError(t, err)
	assert.Equal(t, "Valve 1 % Open_5", last.Name())
	assert.Equal(t, od.AccessRW, last.Access())
}

func TestImportPercentInName(t *testing.T) {
	dict := loadSample(t, 2)
	v := findVariable(t, dict, "Valve % open")
	assert.Equal(t, uint16(0x3003), v.Index())
}

func TestImportLimits(t *testing.T) {
	dict := loadSample(t, 2)

	tests := []struct {
		name     string
		min, max any
	}{
		{"INT8 value with range", int64(0), int64(127)},
		{"UINT8 value with range", uint64(2), uint64(10)},
		{"INT32 value with range", int64(-2147483648), int64(0)},
		{"INT64 value with range", int64(-10), int64(10)},
		{"INT8 value without range", int64(-128), int64(127)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := findVariable(t, dict, tt.name)
			assert.Equal(t, tt.min, v.Min())
			assert.Equal(t, tt.max, v.Max())
		})
	}

	v := findVariable(t, dict, "INT8 value without range")
	assert.Equal(t, int64(-10), v.Default(), "0xF6 is the two's complement of -10")
}

func TestImportStringAndDomain(t *testing.T) {
	dict := loadSample(t, 2)

	s := findVariable(t, dict, "Manufacturer string")
	assert.Equal(t, datatype.VisibleString, s.DataType())
	assert.Equal(t, "hello world", s.Default())

	fw := findVariable(t, dict, "Firmware image")
	assert.Equal(t, od.ObjectDomain, fw.ObjectType())
	assert.Equal(t, datatype.Domain, fw.DataType())
	assert.Equal(t, od.AccessWO, fw.Access())
	assert.Nil(t, fw.Default())
}

func TestImportDummies(t *testing.T) {
	dict := loadSample(t, 2)

	v := findVariable(t, dict, "Dummy0003")
	assert.Equal(t, uint16(0x0003), v.Index())
	assert.Equal(t, datatype.Integer16, v.DataType())
	assert.Equal(t, od.AccessConst, v.Access())
	assert.Equal(t, 16, v.BitLength())
	assert.Equal(t, int64(-32768), v.Min())
	assert.Equal(t, int64(32767), v.Max())

	_, err := dict.Find("Dummy0001")
	assert.ErrorIs(t, err, od.ErrUnknownName)
	_, err = dict.Get(0x0001)
	assert.ErrorIs(t, err, od.ErrUnknownIndex)
}

func TestImportComments(t *testing.T) {
	dict := loadSample(t, 2)
	assert.Equal(t, "|-------------|\n| Don't panic |\n|-------------|", dict.Comments)
}

func TestImportDeviceAndFileInfo(t *testing.T) {
	dict := loadSample(t, 2)

	d := dict.DeviceInfo
	assert.Equal(t, "Example Automation", d.VendorName)
	assert.Equal(t, uint32(0x27A), d.VendorNumber)
	assert.Equal(t, uint32(0x1234), d.ProductNumber)
	assert.Equal(t, uint32(0x00010002), d.RevisionNumber)
	assert.Equal(t, []uint32{125, 250, 500, 1000}, d.BaudRates)
	assert.True(t, d.SupportsBaudRate(250))
	assert.False(t, d.SupportsBaudRate(800))
	assert.True(t, d.SimpleBootUpSlave)
	assert.False(t, d.SimpleBootUpMaster)
	assert.Equal(t, uint8(8), d.Granularity)
	assert.Equal(t, uint16(4), d.NrOfRXPDO)
	assert.Equal(t, uint16(4), d.NrOfTXPDO)
	assert.True(t, d.LSSSupported)

	f := dict.FileInfo
	assert.Equal(t, "sample.eds", f.FileName)
	assert.Equal(t, "4.0", f.EDSVersion)
	assert.Equal(t, "03-14-2024", f.CreationDate)
	assert.True(t, dict.Commissioning.IsZero())
}

func TestImportSampleIsClean(t *testing.T) {
	rec := log.NewRecorder()
	imp := &Importer{NodeID: 2, Logger: rec}
	_, err := imp.ImportFile(samplePath)
	require.NoError(t, err)

	assert.Equal(t, 0, rec.Count(log.LevelWarning))
	assert.Equal(t, 0, rec.Count(log.LevelError))

	events := rec.Events()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, log.CategorySummary, last.Category)
	assert.Equal(t, samplePath, last.Source)
	require.NotNil(t, last.Summary)
	assert.Equal(t, 18, last.Summary.Entries)
	assert.Equal(t, 1, last.Summary.Dummies)
	assert.Equal(t, uint8(2), last.Summary.NodeID)
	assert.NotEmpty(t, last.ImportID)
}

func TestImportFileNotFound(t *testing.T) {
	_, err := ImportFile(filepath.Join(t.TempDir(), "missing.eds"), 0)
	require.ErrorIs(t, err, ErrSourceNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestImportInvalidNodeID(t *testing.T) {
	imp := &Importer{NodeID: 128}
	_, err := imp.ImportFile(samplePath)
	assert.ErrorIs(t, err, ErrInvalidNodeID)
}

func TestImportIsDeterministic(t *testing.T) {
	a := loadSample(t, 5)
	b := loadSample(t, 5)
	require.Equal(t, a.Indices(), b.Indices())
	for i, va := range a.Variables() {
		vb := b.Variables()[i]
		assert.Equal(t, va.Info(), vb.Info())
	}
}
