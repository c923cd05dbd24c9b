package trie

import (
	"errors"
	"testing"

	"github.com/ethereum/go-trie/common"
)

func TestMemoryDBGetMissing(t *testing.T) {
	db := NewMemoryDB()
	_, err := db.Get(common.HexToHash("01"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryDBInsertBatchAndRemoveBatch(t *testing.T) {
	db := NewMemoryDB()
	hashes := []common.Hash{common.HexToHash("01"), common.HexToHash("02")}
	values := [][]byte{[]byte("a"), []byte("b")}
	if err := db.InsertBatch(hashes, values); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if db.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", db.Len())
	}
	if err := db.RemoveBatch(hashes); err != nil {
		t.Fatalf("RemoveBatch: %v", err)
	}
	if db.Len() != 0 {
		t.Fatalf("Len() after RemoveBatch = %d, want 0", db.Len())
	}
}

func TestMemoryDBGetReturnsACopy(t *testing.T) {
	db := NewMemoryDB()
	h := common.HexToHash("01")
	if err := db.Insert(h, []byte("value")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := db.Get(h)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got[0] = 'X'
	got2, err := db.Get(h)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got2) != "value" {
		t.Fatalf("mutating a Get result affected the store: got %q", got2)
	}
}

func TestClearTrieFromDBRemovesEverything(t *testing.T) {
	db := NewMemoryDB()
	tr := New(db)
	mustInsert(t, tr, "dog", "puppy")
	mustInsert(t, tr, "doge", "coin")
	mustInsert(t, tr, "horse", "stallion")
	root, err := tr.RootHash()
	if err != nil {
		t.Fatalf("RootHash: %v", err)
	}
	if db.Len() == 0 {
		t.Fatalf("expected committed trie to leave entries in the database")
	}

	if err := ClearTrieFromDB(db, root); err != nil {
		t.Fatalf("ClearTrieFromDB: %v", err)
	}
	if db.Len() != 0 {
		t.Fatalf("Len() after ClearTrieFromDB = %d, want 0", db.Len())
	}
}
