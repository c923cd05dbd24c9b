package trie

import (
	"sync"

	"github.com/ethereum/go-trie/common"
)

// Database is the persistence contract the trie relies on: a flat,
// hash-keyed store of node encodings. The trie package owns all batching,
// dirty-node tracking, and generational eviction itself (via its pending
// cache, passing_keys and gen_keys bookkeeping), so the contract here stays
// to the five operations actually issued against the store — nothing here
// duplicates that bookkeeping on the database side.
type Database interface {
	Get(hash common.Hash) ([]byte, error)
	Insert(hash common.Hash, value []byte) error
	Remove(hash common.Hash) error
	InsertBatch(hashes []common.Hash, values [][]byte) error
	RemoveBatch(hashes []common.Hash) error
}

// ErrNotFound is returned by Get when no value is stored under hash.
var ErrNotFound = dbNotFoundError{}

type dbNotFoundError struct{}

func (dbNotFoundError) Error() string { return "trie: node not found" }

// MemoryDB is an in-memory Database, used by tests and as the scratch store
// a proof is verified against.
type MemoryDB struct {
	mu   sync.RWMutex
	data map[common.Hash][]byte
}

// NewMemoryDB returns an empty MemoryDB.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{data: make(map[common.Hash][]byte)}
}

func (m *MemoryDB) Get(hash common.Hash) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[hash]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryDB) Insert(hash common.Hash, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[hash] = cp
	return nil
}

func (m *MemoryDB) Remove(hash common.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, hash)
	return nil
}

func (m *MemoryDB) InsertBatch(hashes []common.Hash, values [][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, h := range hashes {
		cp := make([]byte, len(values[i]))
		copy(cp, values[i])
		m.data[h] = cp
	}
	return nil
}

func (m *MemoryDB) RemoveBatch(hashes []common.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range hashes {
		delete(m.data, h)
	}
	return nil
}

// Len reports how many entries the store currently holds. Used by tests
// asserting stale-key cleanup after bulk removal.
func (m *MemoryDB) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
