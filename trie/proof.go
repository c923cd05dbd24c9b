package trie

import (
	"github.com/ethereum/go-trie/common"
	"github.com/ethereum/go-trie/crypto"
)

// GetProof returns the raw encoding of the root node (none for an empty
// trie) followed by the encodings of every node that had to be resolved
// from the database while walking to key, in root-first order. Together
// with the trie's root hash, this lets a verifier reconstruct enough of the
// tree to confirm key's value (or its absence) without holding the rest of
// the trie.
func (t *Trie) GetProof(key []byte) ([][]byte, error) {
	path := NibblesFromRaw(key, true)
	var proof [][]byte
	if t.root != nil {
		if _, isHash := t.root.(hashNode); !isHash {
			proof = append(proof, t.encodeRaw(t.root))
		}
	}
	if err := t.getPathAt(t.root, path, 0, &proof); err != nil {
		return nil, t.reportMissing("GetProof", key, err)
	}
	return proof, nil
}

// getPathAt walks n for the path starting at pathIndex, appending the raw
// encoding of every Hash node it has to hydrate along the way. Unlike
// getAt, a miss here loses the cursor: the caller cannot tell how far the
// walk had gotten, so Traversed is left nil.
func (t *Trie) getPathAt(n node, path Nibbles, pathIndex int, proof *[][]byte) error {
	switch nd := n.(type) {
	case nil, leafNode:
		return nil

	case *extensionNode:
		partial := path.Offset(pathIndex)
		matchIndex := partial.CommonPrefix(nd.Prefix)
		if matchIndex == nd.Prefix.Len() {
			return t.getPathAt(nd.Child, path, pathIndex+matchIndex, proof)
		}
		return nil

	case *branchNode:
		partial := path.Offset(pathIndex)
		if partial.IsEmpty() || partial.At(0) == terminator {
			return nil
		}
		return t.getPathAt(nd.Children[partial.At(0)], path, pathIndex+1, proof)

	case hashNode:
		hash := common.Hash(nd)
		hydrated, err := t.recoverFromDB(hash)
		if err != nil {
			return missingNode(hash, t.rootHash, nil)
		}
		*proof = append(*proof, t.encodeRaw(hydrated))
		return t.getPathAt(hydrated, path, pathIndex, proof)

	default:
		panic("trie: getPathAt: unknown node type")
	}
}

// VerifyProof checks that proof, combined with root, establishes key's
// value (or its absence) and returns that value. The proof nodes are loaded
// into a scratch in-memory store rather than trusted directly, so a forged
// or incomplete proof is caught by the normal MissingTrieNode path instead
// of being taken on faith.
func VerifyProof(root common.Hash, key []byte, proof [][]byte) ([]byte, error) {
	scratch := NewMemoryDB()
	for _, raw := range proof {
		h := crypto.Keccak256Hash(raw)
		if len(raw) < hashedLength && h != root {
			continue
		}
		if err := scratch.Insert(h, raw); err != nil {
			return nil, ErrInvalidProof
		}
	}

	tr, err := From(scratch, root)
	if err != nil {
		return nil, ErrInvalidProof
	}
	value, err := tr.Get(key)
	if err != nil {
		return nil, ErrInvalidProof
	}
	return value, nil
}
