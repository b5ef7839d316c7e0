package inspect

import (
	"context"
	"errors"
	"fmt"

	"github.com/canopen-tools/edsod/pkg/datatype"
	"github.com/canopen-tools/edsod/pkg/od"
)

// ErrNotReadable is returned when uploading a write-only Variable.
var ErrNotReadable = errors.New("variable is not readable")

// SDOClient transfers raw object data to and from a remote node.
// This is implemented by the caller's CANopen stack.
type SDOClient interface {
	NodeID() uint8
	Upload(ctx context.Context, index uint16, sub uint8) ([]byte, error)
	Download(ctx context.Context, index uint16, sub uint8, data []byte) error
}

// RemoteInspector reads and writes the objects of a remote node, using a
// dictionary to address objects and to encode values.
type RemoteInspector struct {
	client SDOClient
	local  *Inspector
}

// NewRemoteInspector creates a new remote inspector for the given client
// and the dictionary describing the remote node.
func NewRemoteInspector(client SDOClient, dict *od.ObjectDictionary) *RemoteInspector {
	return &RemoteInspector{
		client: client,
		local:  NewInspector(dict),
	}
}

// NodeID returns the remote node's ID.
func (r *RemoteInspector) NodeID() uint8 {
	return r.client.NodeID()
}

// ReadValue uploads a single Variable from the remote node.
func (r *RemoteInspector) ReadValue(ctx context.Context, path *Path) (any, error) {
	if path == nil {
		return nil, errors.New("path is nil")
	}
	v, err := r.local.ResolveVariable(path)
	if err != nil {
		return nil, err
	}
	return r.upload(ctx, v)
}

func (r *RemoteInspector) upload(ctx context.Context, v *od.Variable) (any, error) {
	if !v.Access().CanRead() {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotReadable, v.Name(), v.Access())
	}
	data, err := r.client.Upload(ctx, v.Index(), v.SubIndex())
	if err != nil {
		return nil, fmt.Errorf("upload 0x%04X sub %d: %w", v.Index(), v.SubIndex(), err)
	}
	return datatype.Unmarshal(v.DataType(), data)
}

// ReadEntry uploads every readable Variable of an entry, keyed by
// sub-index.
func (r *RemoteInspector) ReadEntry(ctx context.Context, index uint16) (map[uint8]any, error) {
	e, err := r.local.Dictionary().Get(index)
	if err != nil {
		return nil, fmt.Errorf("%w: 0x%04X", ErrEntryNotFound, index)
	}

	vars := subVariables(e)
	if v, ok := e.(*od.Variable); ok {
		vars = []*od.Variable{v}
	}

	out := make(map[uint8]any, len(vars))
	for _, v := range vars {
		if !v.Access().CanRead() {
			continue
		}
		value, err := r.upload(ctx, v)
		if err != nil {
			return nil, err
		}
		out[v.SubIndex()] = value
	}
	return out, nil
}

// WriteValue downloads a single Variable to the remote node. The value is
// checked against the data type and legal range first; the local
// dictionary is not modified.
func (r *RemoteInspector) WriteValue(ctx context.Context, path *Path, value any) error {
	if path == nil {
		return errors.New("path is nil")
	}
	v, err := r.local.ResolveVariable(path)
	if err != nil {
		return err
	}
	if !v.Access().CanWrite() {
		return fmt.Errorf("%w: %s is %s", ErrNotWritable, v.Name(), v.Access())
	}

	probe := od.NewVariable(v.Info())
	if err := probe.SetValue(value); err != nil {
		return err
	}
	data, err := datatype.Marshal(v.DataType(), probe.Value())
	if err != nil {
		return err
	}

	if err := r.client.Download(ctx, v.Index(), v.SubIndex(), data); err != nil {
		return fmt.Errorf("download 0x%04X sub %d: %w", v.Index(), v.SubIndex(), err)
	}
	return nil
}
