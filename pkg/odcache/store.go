package odcache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/canopen-tools/edsod/pkg/eds"
	"github.com/canopen-tools/edsod/pkg/od"
)

// snapshotExt is the file extension of cached snapshots.
const snapshotExt = ".odc"

// ErrInvalidKey is returned for keys that are not a hex digest.
var ErrInvalidKey = errors.New("invalid cache key")

// Key returns the cache key for a source compiled for a node: the hex
// BLAKE2b-256 digest of the node ID, the tags and the source bytes. Tags name
// importer settings that change the result, such as the naming strategy.
func Key(source []byte, nodeID uint8, tags ...string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte{nodeID})
	for _, t := range tags {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}

// Store manages compiled snapshots in a directory.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) (string, error) {
	if len(key) != 2*blake2b.Size256 {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if _, err := hex.DecodeString(key); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+snapshotExt), nil
}

// Save persists a snapshot under key.
func (s *Store) Save(key string, snap *Snapshot) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	snap.Version = SnapshotVersion
	snap.Digest = key
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	// Write to a temporary file first so readers never see a partial snapshot.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads the snapshot stored under key.
// Returns nil, nil if no snapshot exists.
func (s *Store) Load(key string) (*Snapshot, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Remove deletes the snapshot stored under key. Removing a missing key is
// not an error.
func (s *Store) Remove(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Keys lists the stored keys in ascending order.
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirEntries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, snapshotExt))
	}
	sort.Strings(keys)
	return keys, nil
}

// Compile imports the file at path with imp and stores the result. When a
// snapshot for the same content, node ID and tags already exists, it is
// returned without importing. The returned bool reports a cache hit.
func (s *Store) Compile(imp *eds.Importer, path string, tags ...string) (*od.ObjectDictionary, bool, error) {
	if imp == nil {
		imp = &eds.Importer{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", eds.ErrSourceNotFound, err)
	}
	key := Key(data, imp.NodeID, tags...)

	if snap, err := s.Load(key); err == nil && snap != nil {
		dict, err := snap.Dictionary()
		if err == nil {
			return dict, true, nil
		}
	}

	local := *imp
	if local.Source == "" {
		local.Source = path
	}
	dict, err := local.ImportBytes(data)
	if err != nil {
		return nil, false, err
	}

	snap := Take(dict)
	snap.Source = local.Source
	if err := s.Save(key, snap); err != nil {
		return nil, false, err
	}
	return dict, false, nil
}
