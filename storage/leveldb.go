package storage

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is a goleveldb-backed Store, the on-disk backing for a durable
// Hub node. Grounded on the tosdb/leveldb package, which wraps this
// exact driver the same way.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if absent) a goleveldb database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

func (l *LevelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *LevelDB) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

func (l *LevelDB) NewBatch() Batch {
	return &levelBatch{db: l.db, batch: new(leveldb.Batch)}
}

func (l *LevelDB) NewIterator(prefix []byte) Iterator {
	return &levelIterator{it: l.db.NewIterator(util.BytesPrefix(prefix), nil)}
}

type levelBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *levelBatch) Put(key, value []byte) { b.batch.Put(key, value) }
func (b *levelBatch) Delete(key []byte)     { b.batch.Delete(key) }
func (b *levelBatch) Len() int              { return b.batch.Len() }
func (b *levelBatch) Reset()                { b.batch.Reset() }

func (b *levelBatch) Write() error {
	return b.db.Write(b.batch, &opt.WriteOptions{Sync: true})
}

type levelIterator struct {
	it iterator.Iterator
}

func (i *levelIterator) Next() bool     { return i.it.Next() }
func (i *levelIterator) Key() []byte    { return i.it.Key() }
func (i *levelIterator) Value() []byte  { return i.it.Value() }
func (i *levelIterator) Release()       { i.it.Release() }
func (i *levelIterator) Error() error   { return i.it.Error() }
