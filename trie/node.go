package trie

import "github.com/ethereum/go-trie/common"

// node is any of the five shapes the trie is built from. Empty is
// represented by the untyped nil interface value: a branch's children array
// is "initialized to Empty in all slots" simply by being a zero-valued
// [16]node array.
type node interface{}

// leafNode is a terminal node: key is the remaining suffix of the full key
// from this point down, and always carries the terminator.
type leafNode struct {
	Key   Nibbles
	Value []byte
}

// extensionNode compresses a shared prefix above a single child. Prefix is
// always non-empty and, once the trie is in canonical form, Child is never
// Empty and never itself an extensionNode.
type extensionNode struct {
	Prefix Nibbles
	Child  node
}

// branchNode fans out on the next nibble. At least two of
// {Children ∪ {Value}} are populated in any node that survives degenerate.
type branchNode struct {
	Children [16]node
	Value    []byte // nil means "no value terminates here"
}

// hashNode is a lazy placeholder: the real node's canonical encoding lives
// in the database under this 32-byte key.
type hashNode common.Hash

func newLeaf(key Nibbles, value []byte) node {
	return leafNode{Key: key, Value: value}
}

func newExtension(prefix Nibbles, child node) node {
	return &extensionNode{Prefix: prefix, Child: child}
}

func newBranch(children [16]node, value []byte) node {
	return &branchNode{Children: children, Value: value}
}

func newHash(h common.Hash) node {
	return hashNode(h)
}

// insert assigns child to the given nibble slot (0 <= nibble < 16).
func (b *branchNode) insert(nibble byte, child node) {
	b.Children[nibble] = child
}

// copy returns a shallow clone so that a write path can mutate a field of
// the branch it is about to replace without disturbing any other live
// reference to the original (copy-on-write descent).
func (b *branchNode) copy() *branchNode {
	cp := *b
	return &cp
}

// copy returns a shallow clone of the extension node for the same reason.
func (e *extensionNode) copy() *extensionNode {
	cp := *e
	return &cp
}

func isEmpty(n node) bool { return n == nil }
