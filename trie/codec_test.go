package trie

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-trie/crypto"
)

func TestEncodeDecodeLeafRoundTrip(t *testing.T) {
	tr := New(NewMemoryDB())
	leaf := leafNode{Key: NibblesFromRaw([]byte("cat"), true), Value: []byte("meow")}

	encoded := tr.encodeRaw(leaf)
	decoded, err := decodeNode(encoded)
	if err != nil {
		t.Fatalf("decodeNode: %v", err)
	}
	got, ok := decoded.(leafNode)
	if !ok {
		t.Fatalf("decoded node is %T, want leafNode", decoded)
	}
	if !nibblesEqual(got.Key, leaf.Key) || !bytes.Equal(got.Value, leaf.Value) {
		t.Fatalf("decoded leaf = %+v, want %+v", got, leaf)
	}
}

func TestEncodeDecodeBranchRoundTrip(t *testing.T) {
	tr := New(NewMemoryDB())
	branch := &branchNode{Value: []byte("root-value")}
	branch.Children[3] = leafNode{Key: NibblesFromRaw([]byte("x"), true), Value: []byte("short")}

	encoded := tr.encodeRaw(branch)
	decoded, err := decodeNode(encoded)
	if err != nil {
		t.Fatalf("decodeNode: %v", err)
	}
	got, ok := decoded.(*branchNode)
	if !ok {
		t.Fatalf("decoded node is %T, want *branchNode", decoded)
	}
	if !bytes.Equal(got.Value, branch.Value) {
		t.Fatalf("decoded branch value = %q, want %q", got.Value, branch.Value)
	}
	child, ok := got.Children[3].(leafNode)
	if !ok {
		t.Fatalf("decoded branch child 3 is %T, want leafNode", got.Children[3])
	}
	if string(child.Value) != "short" {
		t.Fatalf("decoded child value = %q, want short", child.Value)
	}
}

func TestEncodeDecodeBranchWithNoValueRoundTrip(t *testing.T) {
	tr := New(NewMemoryDB())
	branch := &branchNode{}
	branch.Children[3] = leafNode{Key: NibblesFromRaw([]byte("x"), true), Value: []byte("short")}

	encoded := tr.encodeRaw(branch)
	decoded, err := decodeNode(encoded)
	if err != nil {
		t.Fatalf("decodeNode: %v", err)
	}
	got, ok := decoded.(*branchNode)
	if !ok {
		t.Fatalf("decoded node is %T, want *branchNode", decoded)
	}
	if got.Value != nil {
		t.Fatalf("decoded branch value = %#v, want nil", got.Value)
	}
}

func TestEncodeDecodeExtensionWithHashedChildRoundTrip(t *testing.T) {
	tr := New(NewMemoryDB())
	bigValue := bytes.Repeat([]byte("v"), 64)
	child := &branchNode{Value: bigValue}
	ext := newExtension(NibblesFromHex([]byte{1, 2, 3}), child)

	encoded := tr.encodeRaw(ext)
	decoded, err := decodeNode(encoded)
	if err != nil {
		t.Fatalf("decodeNode: %v", err)
	}
	got, ok := decoded.(*extensionNode)
	if !ok {
		t.Fatalf("decoded node is %T, want *extensionNode", decoded)
	}
	if _, ok := got.Child.(hashNode); !ok {
		t.Fatalf("decoded extension child is %T, want hashNode (child was large enough to be hashed)", got.Child)
	}
	if len(tr.cache) != 1 {
		t.Fatalf("encodeRaw left %d cache entries, want 1 (the hashed child)", len(tr.cache))
	}
}

func TestEncodeEmptyNode(t *testing.T) {
	tr := New(NewMemoryDB())
	encoded := tr.encodeRaw(nil)
	if !bytes.Equal(encoded, []byte{0x80}) {
		t.Fatalf("encodeRaw(Empty) = %x, want 80", encoded)
	}
	decoded, err := decodeNode(encoded)
	if err != nil {
		t.Fatalf("decodeNode: %v", err)
	}
	if decoded != nil {
		t.Fatalf("decodeNode(80) = %v, want nil (Empty)", decoded)
	}
}

func TestNullRootHashMatchesEmptyEncoding(t *testing.T) {
	if NullRootHash() != crypto.Keccak256Hash([]byte{0x80}) {
		t.Fatalf("NullRootHash mismatch")
	}
}
