package ledger

import (
	"strings"
	"sync"

	"github.com/tidwall/btree"
)

// MemStore keeps the ledger in an ordered in-memory map.
type MemStore struct {
	mu   sync.RWMutex
	tree *btree.Map[string, []byte]
}

var _ Store = &MemStore{}

func NewMemStore() *MemStore {
	return &MemStore{
		tree: btree.NewMap[string, []byte](0),
	}
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

func (s *MemStore) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.tree.Get(string(key))
	if !ok {
		return nil, ErrNotFound
	}
	return clone(value), nil
}

func (s *MemStore) Has(key []byte) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tree.Get(string(key))
	return ok, nil
}

func (s *MemStore) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Set(string(key), clone(value))
	return nil
}

func (s *MemStore) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Delete(string(key))
	return nil
}

func (s *MemStore) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	// Copy marks the tree shared, so it needs the write lock
	s.mu.Lock()
	snapshot := s.tree.Copy()
	s.mu.Unlock()

	p := string(prefix)
	snapshot.Ascend(p, func(key string, value []byte) bool {
		if !strings.HasPrefix(key, p) {
			return false
		}
		return fn([]byte(key), clone(value))
	})
	return nil
}

func (s *MemStore) NewBatch() Batch {
	return &memBatch{store: s}
}

func (s *MemStore) Close() error {
	return nil
}

type memOp struct {
	key    string
	value  []byte
	delete bool
}

type memBatch struct {
	store *MemStore
	ops   []memOp
}

func (b *memBatch) Put(key, value []byte) error {
	b.ops = append(b.ops, memOp{key: string(key), value: clone(value)})
	return nil
}

func (b *memBatch) Delete(key []byte) error {
	b.ops = append(b.ops, memOp{key: string(key), delete: true})
	return nil
}

func (b *memBatch) Len() int {
	return len(b.ops)
}

func (b *memBatch) Write() error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	for _, op := range b.ops {
		if op.delete {
			b.store.tree.Delete(op.key)
		} else {
			b.store.tree.Set(op.key, op.value)
		}
	}
	return nil
}
