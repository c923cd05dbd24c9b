package trie

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-trie/common"
	"github.com/ethereum/go-trie/crypto"
)

// TestCorruptedNodeTraversedDistinction exercises the one behavioral wrinkle
// of MissingTrieNodeError that is easy to get backwards: Get loses nothing
// (it reports how far it got), while GetProof's internal path-walk loses the
// cursor the moment it needs to hydrate a node that isn't there.
func TestCorruptedNodeTraversedDistinction(t *testing.T) {
	db := NewMemoryDB()
	tr := New(db)
	longValue := string(bytes.Repeat([]byte("v"), 40))

	mustInsert(t, tr, "test1-key", longValue)
	mustInsert(t, tr, "test2-key", longValue)
	if _, err := tr.RootHash(); err != nil {
		t.Fatalf("RootHash: %v", err)
	}

	proof, err := tr.GetProof([]byte("test2-key"))
	if err != nil {
		t.Fatalf("GetProof before corruption: %v", err)
	}
	if len(proof) == 0 {
		t.Fatalf("expected a non-empty proof for test2-key")
	}
	leafEncoding := proof[len(proof)-1]
	leafHash := crypto.Keccak256Hash(leafEncoding)
	if err := db.Remove(leafHash); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	_, err = tr.Get([]byte("test2-key"))
	missing, ok := asMissing(err)
	if !ok {
		t.Fatalf("Get on corrupted trie error = %v, want *MissingTrieNodeError", err)
	}
	if missing.Traversed == nil {
		t.Fatalf("Get's MissingTrieNodeError.Traversed = nil, want a recorded path")
	}

	_, err = tr.GetProof([]byte("test2-key"))
	missing, ok = asMissing(err)
	if !ok {
		t.Fatalf("GetProof on corrupted trie error = %v, want *MissingTrieNodeError", err)
	}
	if missing.Traversed != nil {
		t.Fatalf("GetProof's MissingTrieNodeError.Traversed = %v, want nil", *missing.Traversed)
	}
}

func TestDeleteOnCorruptedTrieRecordsTraversedPath(t *testing.T) {
	db := NewMemoryDB()
	tr := New(db)
	longValue := string(bytes.Repeat([]byte("v"), 40))
	mustInsert(t, tr, "test1-key", longValue)
	mustInsert(t, tr, "test2-key", longValue)
	if _, err := tr.RootHash(); err != nil {
		t.Fatalf("RootHash: %v", err)
	}

	proof, err := tr.GetProof([]byte("test2-key"))
	if err != nil {
		t.Fatalf("GetProof before corruption: %v", err)
	}
	leafHash := crypto.Keccak256Hash(proof[len(proof)-1])
	if err := db.Remove(leafHash); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	err = tr.Remove([]byte("test2-key"))
	missing, ok := asMissing(err)
	if !ok {
		t.Fatalf("Remove on corrupted trie error = %v, want *MissingTrieNodeError", err)
	}
	if missing.Traversed == nil {
		t.Fatalf("Remove's MissingTrieNodeError.Traversed = nil, want a recorded path")
	}
}

// TestDegenerateHashMissLosesCursor exercises degenerate's own Hash case
// directly: collapsing an extension over an unresolvable child also reports
// Traversed = nil, the same as get_path_at, since by the time degenerate
// runs the original path index into the whole trie is long gone.
func TestDegenerateHashMissLosesCursor(t *testing.T) {
	tr := New(NewMemoryDB())
	ext := newExtension(NibblesFromHex([]byte{1, 2, 3}), newHash(common.HexToHash("01")))

	_, err := tr.degenerate(ext)
	missing, ok := asMissing(err)
	if !ok {
		t.Fatalf("degenerate error = %v, want *MissingTrieNodeError", err)
	}
	if missing.Traversed != nil {
		t.Fatalf("degenerate's Traversed = %v, want nil", *missing.Traversed)
	}
}
