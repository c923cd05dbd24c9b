package trie

import (
	"github.com/ethereum/go-trie/common"
	"github.com/ethereum/go-trie/crypto"
	"github.com/ethereum/go-trie/rlp"
)

const hashedLength = 32

// writeResult is the outcome of write_node: either the node was large
// enough to be hashed and cached, or it is small enough to be inlined
// directly into its parent's encoding.
type writeResult struct {
	hash   common.Hash
	inline []byte
	isHash bool
}

// writeNode resolves n to either a Hash reference or an inline byte string,
// per the hash-or-inline rule. A Hash node is returned verbatim (no work,
// no double-counting); otherwise n is encoded, and encodings of 32 bytes or
// more are hashed, cached, and recorded in gen_keys.
func (t *Trie) writeNode(n node) writeResult {
	if hn, ok := n.(hashNode); ok {
		return writeResult{hash: common.Hash(hn), isHash: true}
	}

	data := t.encodeRaw(n)
	if len(data) < hashedLength {
		return writeResult{inline: data}
	}

	h := crypto.Keccak256Hash(data)
	t.cache[h] = data
	t.genKeys[h] = struct{}{}
	return writeResult{hash: h, isHash: true}
}

// childRef encodes a write result the way it is embedded in a parent's RLP
// list: a 32-byte hash as an RLP string, or an inline encoding spliced in
// directly (it is already a complete RLP item).
func childRef(wr writeResult) []byte {
	if wr.isHash {
		return rlp.EncodeString(wr.hash[:])
	}
	return wr.inline
}

// encodeRaw produces the canonical byte string for a single node, inlining
// any child whose own encoding is shorter than 32 bytes.
func (t *Trie) encodeRaw(n node) []byte {
	switch nd := n.(type) {
	case nil:
		return []byte{0x80}

	case leafNode:
		var payload []byte
		payload = append(payload, rlp.EncodeString(nd.Key.EncodeCompact())...)
		payload = append(payload, rlp.EncodeString(nd.Value)...)
		return rlp.WrapList(payload)

	case *extensionNode:
		var payload []byte
		payload = append(payload, rlp.EncodeString(nd.Prefix.EncodeCompact())...)
		payload = append(payload, childRef(t.writeNode(nd.Child))...)
		return rlp.WrapList(payload)

	case *branchNode:
		var payload []byte
		for i := 0; i < 16; i++ {
			payload = append(payload, childRef(t.writeNode(nd.Children[i]))...)
		}
		if nd.Value != nil {
			payload = append(payload, rlp.EncodeString(nd.Value)...)
		} else {
			payload = append(payload, 0x80)
		}
		return rlp.WrapList(payload)

	case hashNode:
		panic("trie: encodeRaw called directly on a hash node")

	default:
		panic("trie: encodeRaw: unknown node type")
	}
}

// decodeNode parses one RLP-encoded node, recursing into embedded list
// items for inlined children rather than treating them as opaque strings.
func decodeNode(data []byte) (node, error) {
	s := rlp.NewStreamFromBytes(data)
	return decodeNodeFromStream(s)
}

func decodeNodeFromStream(s *rlp.Stream) (node, error) {
	kind, size, err := s.Kind()
	if err != nil {
		return nil, err
	}

	if kind != rlp.List {
		payload, err := s.Bytes()
		if err != nil {
			return nil, err
		}
		switch {
		case len(payload) == hashedLength:
			return newHash(common.BytesToHash(payload)), nil
		case len(payload) == 0:
			return nil, nil
		default:
			return nil, ErrInvalidData
		}
	}

	if _, err := s.List(); err != nil {
		return nil, err
	}

	items, err := decodeListItems(s, size)
	if err != nil {
		return nil, err
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}

	switch len(items) {
	case 17:
		var children [16]node
		for i := 0; i < 16; i++ {
			c, err := decodeNode(items[i])
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		v, err := decodeValueItem(items[16])
		if err != nil {
			return nil, err
		}
		var value []byte
		if len(v) > 0 {
			value = v
		}
		return newBranch(children, value), nil

	case 2:
		keyBytes, err := decodeValueItem(items[0])
		if err != nil {
			return nil, err
		}
		key := NibblesFromCompact(keyBytes)
		if key.IsLeaf() {
			value, err := decodeValueItem(items[1])
			if err != nil {
				return nil, err
			}
			return newLeaf(key, value), nil
		}
		child, err := decodeNode(items[1])
		if err != nil {
			return nil, err
		}
		return newExtension(key, child), nil

	default:
		return nil, ErrInvalidData
	}
}

// decodeListItems reads size bytes' worth of list items out of s, returning
// each item's own raw RLP encoding (so nested node items can be re-parsed
// recursively by decodeNode).
func decodeListItems(s *rlp.Stream, size uint64) ([][]byte, error) {
	var items [][]byte
	for !s.AtListEnd() {
		item, err := captureItem(s)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// captureItem reads the next RLP item (of any kind) and returns its full
// encoding, including header, as a standalone byte slice so it can be
// re-decoded in isolation.
func captureItem(s *rlp.Stream) ([]byte, error) {
	return s.CaptureItem()
}

// decodeValueItem reads a plain byte-string value (a leaf/branch value,
// never itself a node) from a pre-captured item's encoding.
func decodeValueItem(raw []byte) ([]byte, error) {
	s := rlp.NewStreamFromBytes(raw)
	return s.Bytes()
}
