package ledger

import (
	pkgerrors "github.com/pkg/errors"
)

// ErrNotFound is returned by Store.Get for missing keys.
var ErrNotFound = pkgerrors.New("not found")

func IsNotFound(err error) bool {
	return pkgerrors.Cause(err) == ErrNotFound
}

// Store is the key/value backend of the ledger.
type Store interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	// Iterate visits keys with the given prefix in order until fn returns false.
	Iterate(prefix []byte, fn func(key, value []byte) bool) error
	NewBatch() Batch
	Close() error
}

// Batch collects writes that are applied atomically by Write.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Len() int
	Write() error
}

// Key prefixes.
const (
	accountPrefix   = 'a'
	signaturePrefix = 's'
)

func accountKey(key [32]byte) []byte {
	return append([]byte{accountPrefix}, key[:]...)
}

func signatureKey(sig [64]byte) []byte {
	return append([]byte{signaturePrefix}, sig[:]...)
}
