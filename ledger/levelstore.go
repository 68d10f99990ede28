package ledger

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelOptions tunes the persistent store.
type LevelOptions struct {
	CacheSize              int
	OpenFilesCacheCapacity int
}

var writeOpt = opt.WriteOptions{}
var readOpt = opt.ReadOptions{}

// LevelStore persists the ledger in a level db.
type LevelStore struct {
	db *leveldb.DB
}

var _ Store = &LevelStore{}

// OpenLevelStore opens the db at path, creating it when missing.
func OpenLevelStore(path string, opts LevelOptions) (*LevelStore, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open ledger store")
	}
	return openLevelStore(stg, opts)
}

// NewMemLevelStore creates a level db backed by memory.
func NewMemLevelStore() (*LevelStore, error) {
	return openLevelStore(storage.NewMemStorage(), LevelOptions{})
}

func openLevelStore(stg storage.Storage, opts LevelOptions) (*LevelStore, error) {
	cacheSize := opts.CacheSize
	if cacheSize < 16 {
		cacheSize = 16
	}
	openFiles := opts.OpenFilesCacheCapacity
	if openFiles < 16 {
		openFiles = 16
	}
	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFiles,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open level db")
	}
	return &LevelStore{db: db}, nil
}

func (s *LevelStore) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(key, &readOpt)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return value, err
}

func (s *LevelStore) Has(key []byte) (bool, error) {
	return s.db.Has(key, &readOpt)
}

func (s *LevelStore) Put(key, value []byte) error {
	return s.db.Put(key, value, &writeOpt)
}

func (s *LevelStore) Delete(key []byte) error {
	return s.db.Delete(key, &writeOpt)
}

func (s *LevelStore) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	it := s.db.NewIterator(util.BytesPrefix(prefix), &readOpt)
	defer it.Release()
	for it.Next() {
		if !fn(clone(it.Key()), clone(it.Value())) {
			break
		}
	}
	return pkgerrors.Wrap(it.Error(), "iterate ledger store")
}

func (s *LevelStore) NewBatch() Batch {
	return &levelBatch{db: s.db, batch: &leveldb.Batch{}}
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}

type levelBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *levelBatch) Put(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *levelBatch) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *levelBatch) Len() int {
	return b.batch.Len()
}

func (b *levelBatch) Write() error {
	return b.db.Write(b.batch, &writeOpt)
}
