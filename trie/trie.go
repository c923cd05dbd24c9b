// Package trie implements a Modified Merkle Patricia Trie: a
// cryptographically authenticated key/value store whose root hash commits
// to the full contents, every read and write mirrored against nibble paths
// derived from the keys.
package trie

import (
	"fmt"

	"github.com/ethereum/go-trie/common"
	"github.com/ethereum/go-trie/crypto"
	"github.com/ethereum/go-trie/trielog"
)

// nullRootHash is the root hash of a trie with no entries: keccak256 of the
// RLP encoding of Empty (the single byte 0x80).
var nullRootHash = crypto.Keccak256Hash([]byte{0x80})

// NullRootHash returns the root hash of an empty trie.
func NullRootHash() common.Hash { return nullRootHash }

// Trie is a single-writer Modified Merkle Patricia Trie. A Trie value is not
// safe for concurrent use; callers that need that must serialize access
// themselves, the same way the underlying Database may need its own locking
// (see MemoryDB).
type Trie struct {
	db       Database
	root     node
	rootHash common.Hash

	// cache holds node encodings written since the last commit, keyed by
	// the hash they will be stored under once flushed.
	cache map[common.Hash][]byte

	// passingKeys collects every hash a write path has hydrated from the
	// database this generation; genKeys collects every hash this
	// generation produced. At commit, passingKeys minus genKeys is the
	// set of now-stale nodes to remove from the database.
	passingKeys map[common.Hash]struct{}
	genKeys     map[common.Hash]struct{}

	log *trielog.Logger
}

// New creates an empty trie backed by db.
func New(db Database) *Trie {
	return &Trie{
		db:          db,
		root:        nil,
		rootHash:    nullRootHash,
		cache:       make(map[common.Hash][]byte),
		passingKeys: make(map[common.Hash]struct{}),
		genKeys:     make(map[common.Hash]struct{}),
		log:         trielog.Default().Module("trie"),
	}
}

// From reopens a previously committed trie at rootHash. It only validates
// that rootHash resolves in db; the root itself is decoded lazily, the same
// way every other Hash reference in the tree is.
func From(db Database, rootHash common.Hash) (*Trie, error) {
	if rootHash == nullRootHash {
		return New(db), nil
	}
	if _, err := db.Get(rootHash); err != nil {
		return nil, ErrInvalidStateRoot
	}
	t := New(db)
	t.root = newHash(rootHash)
	t.rootHash = rootHash
	return t, nil
}

// RootHash commits every pending write and returns the resulting root hash.
func (t *Trie) RootHash() (common.Hash, error) {
	h, _, err := t.commit(false)
	return h, err
}

// RootHashWithChangedNodes commits every pending write and additionally
// returns the set of node encodings produced by this generation, keyed by
// hash, for callers that want to mirror the write set elsewhere (a cache, a
// change feed) without re-reading it back from the database.
func (t *Trie) RootHashWithChangedNodes() (common.Hash, map[common.Hash][]byte, error) {
	return t.commit(true)
}

// Get looks up key, returning (nil, nil) if it is absent.
func (t *Trie) Get(key []byte) ([]byte, error) {
	path := NibblesFromRaw(key, true)
	v, err := t.getAt(t.root, path, 0)
	if err != nil {
		return nil, t.reportMissing("Get", key, err)
	}
	return v, nil
}

// Contains reports whether key is present.
func (t *Trie) Contains(key []byte) (bool, error) {
	v, err := t.Get(key)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

// Insert sets key to value. Inserting an empty value is equivalent to
// removing the key: an empty byte string can never round-trip through Get
// as a present value versus an absent one, so there is no distinct state to
// preserve.
func (t *Trie) Insert(key, value []byte) error {
	if len(value) == 0 {
		return t.Remove(key)
	}
	path := NibblesFromRaw(key, true)
	newRoot, err := t.insertAt(t.root, path, 0, value)
	if err != nil {
		return t.reportMissing("Insert", key, err)
	}
	t.root = newRoot
	return nil
}

// Remove deletes key, if present. Removing an absent key is a no-op.
func (t *Trie) Remove(key []byte) error {
	path := NibblesFromRaw(key, true)
	newRoot, _, err := t.deleteAt(t.root, path, 0)
	if err != nil {
		return t.reportMissing("Remove", key, err)
	}
	t.root = newRoot
	return nil
}

// recoverFromDB resolves hash to its node form, checking the pending write
// cache before falling back to the database.
func (t *Trie) recoverFromDB(hash common.Hash) (node, error) {
	if data, ok := t.cache[hash]; ok {
		return decodeNode(data)
	}
	data, err := t.db.Get(hash)
	if err != nil {
		return nil, err
	}
	return decodeNode(data)
}

func missingNode(hash common.Hash, rootHash common.Hash, traversed *Nibbles) error {
	return &MissingTrieNodeError{NodeHash: hash, Traversed: traversed, RootHash: rootHash}
}

// reportMissing logs a MissingTrieNodeError at the public entry point it
// surfaced at and returns it annotated with key, ready to hand back to the
// caller.
func (t *Trie) reportMissing(op string, key []byte, err error) error {
	m, ok := asMissing(err)
	if !ok {
		return err
	}
	annotated := m.withKey(key)
	t.log.MissingNode(op, key, annotated.NodeHash, annotated.RootHash)
	return annotated
}

func tracePrefix(path Nibbles, pathIndex int) *Nibbles {
	p := path.Slice(0, pathIndex)
	return &p
}

// getAt walks n for the path starting at pathIndex, returning the value
// stored there, if any.
func (t *Trie) getAt(n node, path Nibbles, pathIndex int) ([]byte, error) {
	switch nd := n.(type) {
	case nil:
		return nil, nil

	case leafNode:
		partial := path.Offset(pathIndex)
		if nibblesEqual(partial, nd.Key) {
			return nd.Value, nil
		}
		return nil, nil

	case *extensionNode:
		partial := path.Offset(pathIndex)
		matchIndex := partial.CommonPrefix(nd.Prefix)
		if matchIndex == nd.Prefix.Len() {
			return t.getAt(nd.Child, path, pathIndex+matchIndex)
		}
		return nil, nil

	case *branchNode:
		partial := path.Offset(pathIndex)
		if partial.IsEmpty() || partial.At(0) == terminator {
			return nd.Value, nil
		}
		return t.getAt(nd.Children[partial.At(0)], path, pathIndex+1)

	case hashNode:
		hydrated, err := t.recoverFromDB(common.Hash(nd))
		if err != nil {
			return nil, missingNode(common.Hash(nd), t.rootHash, tracePrefix(path, pathIndex))
		}
		return t.getAt(hydrated, path, pathIndex)

	default:
		panic("trie: getAt: unknown node type")
	}
}

// insertAt returns the node tree that results from installing value at path
// below n, cloning any branch/extension it has to modify rather than
// mutating it in place.
func (t *Trie) insertAt(n node, path Nibbles, pathIndex int, value []byte) (node, error) {
	switch nd := n.(type) {
	case nil:
		return newLeaf(path.Offset(pathIndex), value), nil

	case leafNode:
		oldPartial := nd.Key
		partial := path.Offset(pathIndex)
		matchIndex := partial.CommonPrefix(oldPartial)

		if matchIndex == oldPartial.Len() {
			return newLeaf(nd.Key, value), nil
		}

		branch := &branchNode{}
		if oldIdx := oldPartial.At(matchIndex); oldIdx == terminator {
			branch.Value = nd.Value
		} else {
			branch.Children[oldIdx] = newLeaf(oldPartial.Offset(matchIndex+1), nd.Value)
		}
		if newIdx := partial.At(matchIndex); newIdx == terminator {
			branch.Value = value
		} else {
			branch.Children[newIdx] = newLeaf(partial.Offset(matchIndex+1), value)
		}

		if matchIndex == 0 {
			return branch, nil
		}
		return newExtension(partial.Slice(0, matchIndex), branch), nil

	case *extensionNode:
		prefix := nd.Prefix
		partial := path.Offset(pathIndex)
		matchIndex := partial.CommonPrefix(prefix)

		switch {
		case matchIndex == 0:
			branch := &branchNode{}
			if prefix.Len() == 1 {
				branch.Children[prefix.At(0)] = nd.Child
			} else {
				branch.Children[prefix.At(0)] = newExtension(prefix.Offset(1), nd.Child)
			}
			return t.insertAt(branch, path, pathIndex, value)

		case matchIndex == prefix.Len():
			newChild, err := t.insertAt(nd.Child, path, pathIndex+matchIndex, value)
			if err != nil {
				return nil, err
			}
			return newExtension(prefix, newChild), nil

		default:
			subExt := newExtension(prefix.Offset(matchIndex), nd.Child)
			newSub, err := t.insertAt(subExt, path, pathIndex+matchIndex, value)
			if err != nil {
				return nil, err
			}
			cp := nd.copy()
			cp.Prefix = prefix.Slice(0, matchIndex)
			cp.Child = newSub
			return cp, nil
		}

	case *branchNode:
		partial := path.Offset(pathIndex)
		if partial.IsEmpty() || partial.At(0) == terminator {
			cp := nd.copy()
			cp.Value = value
			return cp, nil
		}
		idx := partial.At(0)
		newChild, err := t.insertAt(nd.Children[idx], path, pathIndex+1, value)
		if err != nil {
			return nil, err
		}
		cp := nd.copy()
		cp.Children[idx] = newChild
		return cp, nil

	case hashNode:
		hash := common.Hash(nd)
		t.passingKeys[hash] = struct{}{}
		hydrated, err := t.recoverFromDB(hash)
		if err != nil {
			return nil, missingNode(hash, t.rootHash, tracePrefix(path, pathIndex))
		}
		return t.insertAt(hydrated, path, pathIndex, value)

	default:
		panic("trie: insertAt: unknown node type")
	}
}

// deleteAt returns the node tree with path removed below n, and whether
// anything was actually deleted (an absent key is a no-op, and the original
// node is returned unchanged).
func (t *Trie) deleteAt(n node, path Nibbles, pathIndex int) (node, bool, error) {
	switch nd := n.(type) {
	case nil:
		return nil, false, nil

	case leafNode:
		partial := path.Offset(pathIndex)
		if nibblesEqual(partial, nd.Key) {
			return nil, true, nil
		}
		return nd, false, nil

	case *extensionNode:
		prefix := nd.Prefix
		partial := path.Offset(pathIndex)
		matchIndex := partial.CommonPrefix(prefix)
		if matchIndex < prefix.Len() {
			return nd, false, nil
		}
		newChild, deleted, err := t.deleteAt(nd.Child, path, pathIndex+matchIndex)
		if err != nil {
			return nil, false, err
		}
		if !deleted {
			return nd, false, nil
		}
		deg, err := t.degenerate(newExtension(prefix, newChild))
		if err != nil {
			return nil, false, err
		}
		return deg, true, nil

	case *branchNode:
		partial := path.Offset(pathIndex)
		if partial.IsEmpty() || partial.At(0) == terminator {
			if nd.Value == nil {
				return nd, false, nil
			}
			cp := nd.copy()
			cp.Value = nil
			deg, err := t.degenerate(cp)
			if err != nil {
				return nil, false, err
			}
			return deg, true, nil
		}
		idx := partial.At(0)
		newChild, deleted, err := t.deleteAt(nd.Children[idx], path, pathIndex+1)
		if err != nil {
			return nil, false, err
		}
		if !deleted {
			return nd, false, nil
		}
		cp := nd.copy()
		cp.Children[idx] = newChild
		deg, err := t.degenerate(cp)
		if err != nil {
			return nil, false, err
		}
		return deg, true, nil

	case hashNode:
		hash := common.Hash(nd)
		t.passingKeys[hash] = struct{}{}
		hydrated, err := t.recoverFromDB(hash)
		if err != nil {
			return nil, false, missingNode(hash, t.rootHash, tracePrefix(path, pathIndex))
		}
		return t.deleteAt(hydrated, path, pathIndex)

	default:
		panic("trie: deleteAt: unknown node type")
	}
}

// degenerate restores canonical form after a deletion: a branch left with a
// single child collapses into an extension, a branch left with only a
// value collapses into a leaf, and two extensions (or an extension sitting
// directly atop a leaf) merge into one node.
func (t *Trie) degenerate(n node) (node, error) {
	switch nd := n.(type) {
	case *branchNode:
		count, only := countUsedChildren(nd)
		switch {
		case count == 0 && nd.Value != nil:
			return newLeaf(NibblesFromRaw(nil, true), nd.Value), nil
		case count == 0:
			return nil, nil
		case count == 1 && nd.Value == nil:
			ext := newExtension(NibblesFromHex([]byte{byte(only)}), nd.Children[only])
			return t.degenerate(ext)
		default:
			return nd, nil
		}

	case *extensionNode:
		switch child := nd.Child.(type) {
		case *extensionNode:
			return newExtension(nd.Prefix.Join(child.Prefix), child.Child), nil
		case leafNode:
			return newLeaf(nd.Prefix.Join(child.Key), child.Value), nil
		case hashNode:
			hash := common.Hash(child)
			t.passingKeys[hash] = struct{}{}
			hydrated, err := t.recoverFromDB(hash)
			if err != nil {
				return nil, missingNode(hash, t.rootHash, nil)
			}
			return t.degenerate(newExtension(nd.Prefix, hydrated))
		default:
			return nd, nil
		}

	default:
		return n, nil
	}
}

func countUsedChildren(b *branchNode) (count int, only int) {
	for i, c := range b.Children {
		if c != nil {
			count++
			only = i
		}
	}
	return count, only
}

func nibblesEqual(a, b Nibbles) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			return false
		}
	}
	return true
}

// commit flushes every write accumulated since the last commit to the
// database and recomputes the root hash. When captureChanged is set, it
// also returns a snapshot of the node encodings produced this generation.
func (t *Trie) commit(captureChanged bool) (common.Hash, map[common.Hash][]byte, error) {
	wr := t.writeNode(t.root)

	var rootHash common.Hash
	if wr.isHash {
		rootHash = wr.hash
	} else {
		rootHash = crypto.Keccak256Hash(wr.inline)
		t.cache[rootHash] = wr.inline
		t.genKeys[rootHash] = struct{}{}
	}

	var changed map[common.Hash][]byte
	if captureChanged {
		changed = make(map[common.Hash][]byte, len(t.cache))
		for h, v := range t.cache {
			changed[h] = v
		}
	}

	hashes := make([]common.Hash, 0, len(t.cache))
	values := make([][]byte, 0, len(t.cache))
	for h, v := range t.cache {
		hashes = append(hashes, h)
		values = append(values, v)
	}
	if len(hashes) > 0 {
		if err := t.db.InsertBatch(hashes, values); err != nil {
			return common.Hash{}, nil, dbErr(err)
		}
	}

	var removed []common.Hash
	for h := range t.passingKeys {
		if _, kept := t.genKeys[h]; !kept {
			removed = append(removed, h)
		}
	}
	if len(removed) > 0 {
		if err := t.db.RemoveBatch(removed); err != nil {
			return common.Hash{}, nil, dbErr(err)
		}
	}

	t.rootHash = rootHash
	t.cache = make(map[common.Hash][]byte)
	t.genKeys = make(map[common.Hash]struct{})
	t.passingKeys = make(map[common.Hash]struct{})

	if rootHash == nullRootHash {
		t.root = nil
		return rootHash, changed, nil
	}

	root, err := t.recoverFromDB(rootHash)
	if err != nil {
		panic(fmt.Sprintf("trie: committed root %x vanished from the database", rootHash[:]))
	}
	t.root = root
	return rootHash, changed, nil
}

// ClearTrieFromDB removes every node reachable from rootHash out of db. It
// is the caller's responsibility to know that no other root still
// references any part of this tree.
func ClearTrieFromDB(db Database, rootHash common.Hash) error {
	if rootHash == nullRootHash {
		return nil
	}
	data, err := db.Get(rootHash)
	if err != nil {
		return dbErr(err)
	}
	n, err := decodeNode(data)
	if err != nil {
		return err
	}
	if err := clearNode(db, n); err != nil {
		return err
	}
	return dbErr(db.Remove(rootHash))
}

func clearNode(db Database, n node) error {
	switch nd := n.(type) {
	case *extensionNode:
		return clearChildRef(db, nd.Child)
	case *branchNode:
		for _, c := range nd.Children {
			if err := clearChildRef(db, c); err != nil {
				return err
			}
		}
		return nil
	case hashNode:
		return clearChildRef(db, nd)
	default:
		return nil
	}
}

func clearChildRef(db Database, n node) error {
	hn, ok := n.(hashNode)
	if !ok {
		return clearNode(db, n)
	}
	h := common.Hash(hn)
	data, err := db.Get(h)
	if err != nil {
		return dbErr(err)
	}
	child, err := decodeNode(data)
	if err != nil {
		return err
	}
	if err := clearNode(db, child); err != nil {
		return err
	}
	return dbErr(db.Remove(h))
}
