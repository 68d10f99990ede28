package ledger

import (
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
	cmap "github.com/orcaman/concurrent-map"
)

// lockTable hands out one mutex per account. Transactions touching
// disjoint accounts run in parallel.
type lockTable struct {
	locks cmap.ConcurrentMap
}

func newLockTable() *lockTable {
	return &lockTable{locks: cmap.New()}
}

func (t *lockTable) get(key string) *sync.Mutex {
	t.locks.SetIfAbsent(key, &sync.Mutex{})
	lock, _ := t.locks.Get(key)
	return lock.(*sync.Mutex)
}

// acquire locks every key in sorted order and returns the release func.
func (t *lockTable) acquire(keys []solana.PublicKey) func() {
	unique := map[string]struct{}{}
	for _, key := range keys {
		unique[key.String()] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for key := range unique {
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for _, key := range sorted {
		lock := t.get(key)
		lock.Lock()
		held = append(held, lock)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
