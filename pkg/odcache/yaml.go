package odcache

import (
	"io"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes a snapshot as a YAML document.
func WriteYAML(w io.Writer, s *Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// ReadYAML reads a snapshot written by WriteYAML.
func ReadYAML(r io.Reader) (*Snapshot, error) {
	s := &Snapshot{}
	if err := yaml.NewDecoder(r).Decode(s); err != nil {
		return nil, err
	}
	return s, nil
}
