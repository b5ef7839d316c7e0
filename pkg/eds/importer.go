package eds

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/canopen-tools/edsod/pkg/log"
	"github.com/canopen-tools/edsod/pkg/od"
)

// Importer reads EDS and DCF files into object dictionaries.
// The zero value is ready to use.
type Importer struct {
	// NodeID resolves node-relative values ($NODEID). 0 means not supplied,
	// in which case a DCF's [DeviceComissioning] NodeID is used if present.
	NodeID uint8

	// Naming names compact sub-objects without an explicit name.
	// Nil selects NameUnderscoreHex.
	Naming NamingStrategy

	// Logger receives import diagnostics. Nil discards them.
	Logger log.Logger

	// Source names the input in diagnostics. ImportFile defaults it to the
	// file path.
	Source string
}

// ImportFile imports a file from the filesystem.
func (i *Importer) ImportFile(path string) (*od.ObjectDictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}
	defer f.Close()

	imp := *i
	if imp.Source == "" {
		imp.Source = path
	}
	return imp.Import(f)
}

// Import imports from a reader. Parsing is all-or-nothing: on error no
// dictionary is returned.
func (i *Importer) Import(r io.Reader) (*od.ObjectDictionary, error) {
	logger := i.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	naming := i.Naming
	if naming == nil {
		naming = NameUnderscoreHex
	}
	importID := uuid.NewString()

	if i.NodeID > maxNodeID {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNodeID, i.NodeID)
	}

	file, err := Tokenize(r)
	if err != nil {
		i.fail(logger, importID, err)
		return nil, err
	}

	b := &builder{
		file:     file,
		nodeID:   i.NodeID,
		naming:   naming,
		logger:   logger,
		importID: importID,
		source:   i.Source,
	}
	dict, err := b.build()
	if err != nil {
		i.fail(logger, importID, err)
		return nil, err
	}
	return dict, nil
}

// ImportBytes imports from a byte slice.
func (i *Importer) ImportBytes(data []byte) (*od.ObjectDictionary, error) {
	return i.Import(bytes.NewReader(data))
}

// ImportString imports from a string.
func (i *Importer) ImportString(s string) (*od.ObjectDictionary, error) {
	return i.Import(strings.NewReader(s))
}

// fail reports the error that aborted an import.
func (i *Importer) fail(logger log.Logger, importID string, err error) {
	e := log.Event{
		Timestamp: time.Now(),
		ImportID:  importID,
		Source:    i.Source,
		Level:     log.LevelError,
		Category:  log.CategoryStructure,
		Message:   err.Error(),
	}
	var se *SectionError
	if errors.As(err, &se) {
		e.Section, e.Key, e.Line = se.Section, se.Key, se.Line
	}
	logger.Log(e)
}

// ImportFile imports a file using the default importer settings.
func ImportFile(path string, nodeID uint8) (*od.ObjectDictionary, error) {
	imp := &Importer{NodeID: nodeID}
	return imp.ImportFile(path)
}

// Import imports from a reader using the default importer settings.
func Import(r io.Reader, nodeID uint8) (*od.ObjectDictionary, error) {
	imp := &Importer{NodeID: nodeID}
	return imp.Import(r)
}
