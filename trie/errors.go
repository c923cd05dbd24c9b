package trie

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-trie/common"
)

// ErrInvalidStateRoot is returned by From when the requested root node is
// not present in the database.
var ErrInvalidStateRoot = errors.New("trie: invalid state root")

// ErrInvalidData marks a structurally impossible node encoding: a list of
// arity other than 2 or 17, or a bare byte string whose length is neither
// 0 nor 32.
var ErrInvalidData = errors.New("trie: invalid node data")

// ErrInvalidProof is returned by VerifyProof when the supplied proof does
// not establish the claimed key/value (or its absence) under root_hash.
var ErrInvalidProof = errors.New("trie: invalid proof")

// DBError wraps an error surfaced by the underlying Database.
type DBError struct {
	Err error
}

func (e *DBError) Error() string { return fmt.Sprintf("trie: db error: %v", e.Err) }
func (e *DBError) Unwrap() error { return e.Err }

func dbErr(err error) error {
	if err == nil {
		return nil
	}
	return &DBError{Err: err}
}

// MissingTrieNodeError reports that a Hash reference did not resolve in the
// database. Traversed records the nibble path walked up to the failure, or
// is nil when the failure occurred inside degenerate, get_path_at or the
// iterator, none of which reports the cursor when it hydrates a Hash node.
type MissingTrieNodeError struct {
	NodeHash  common.Hash
	Traversed *Nibbles
	RootHash  common.Hash
	ErrKey    []byte
}

func (e *MissingTrieNodeError) Error() string {
	if e.ErrKey != nil {
		return fmt.Sprintf("trie: missing trie node %x (key %x)", e.NodeHash, e.ErrKey)
	}
	return fmt.Sprintf("trie: missing trie node %x", e.NodeHash)
}

// withKey returns a copy of the error annotated with the user-supplied key,
// as done at every public entry point before the error leaves the trie.
func (e *MissingTrieNodeError) withKey(key []byte) *MissingTrieNodeError {
	cp := *e
	cp.ErrKey = key
	return &cp
}

// asMissing extracts a *MissingTrieNodeError from err, if any.
func asMissing(err error) (*MissingTrieNodeError, bool) {
	var m *MissingTrieNodeError
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}
