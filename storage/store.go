// Package storage implements the persisted state layout of spec.md §6:
// an atomic-batch key-value store namespaced by
// crdt/<name>/add|remove/<conflict_key>, trie/<prefix> and fid/<id>.
// spec.md treats persistence as an external collaborator/interface; this
// package supplies the concrete adapters (in-memory and goleveldb-backed)
// a runnable node needs, grounded on the tosdb package (itself a fork of
// go-ethereum's ethdb): a narrow KeyValueStore-shaped interface
// plus a Batch type for atomic multi-put/multi-delete, rather than a
// bespoke abstraction.
package storage

import "errors"

// ErrNotFound is returned by Get for an absent key.
var ErrNotFound = errors.New("storage: key not found")

// Store is the persistence interface every component depends on.
// Implementations must make Batch.Write atomic across all namespaces
// (spec.md §6, §9's "cascade atomicity": "a fid transfer may touch many
// messages; implementers must perform it as one atomic batch... so that
// the trie root never reflects a partial cascade").
type Store interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	NewBatch() Batch
	NewIterator(prefix []byte) Iterator
	Close() error
}

// Batch accumulates writes for one atomic commit via Write.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Write() error
	Reset()
	Len() int
}

// Iterator walks keys sharing a common prefix in ascending byte order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}
