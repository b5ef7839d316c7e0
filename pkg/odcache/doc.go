// Package odcache stores compiled object dictionaries.
//
// A compiled dictionary is a CBOR snapshot of everything the importer
// produced, including node-adjusted defaults and configured values. Snapshots
// are kept in a directory, one file per source, keyed by a BLAKE2b digest of
// the source text and the node ID it was compiled for. Loading a snapshot
// skips tokenizing and building entirely.
package odcache
