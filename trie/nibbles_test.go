package trie

import "testing"

func TestNibblesFromRaw(t *testing.T) {
	n := NibblesFromRaw([]byte{0xab, 0xcd}, false)
	want := []byte{0xa, 0xb, 0xc, 0xd}
	if n.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", n.Len(), len(want))
	}
	for i, w := range want {
		if n.At(i) != w {
			t.Errorf("At(%d) = %d, want %d", i, n.At(i), w)
		}
	}
	if n.IsLeaf() {
		t.Errorf("non-leaf nibbles reported IsLeaf")
	}
}

func TestNibblesFromRawLeaf(t *testing.T) {
	n := NibblesFromRaw([]byte{0xab}, true)
	if !n.IsLeaf() {
		t.Fatalf("expected leaf nibbles to report IsLeaf")
	}
	if n.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (2 nibbles + terminator)", n.Len())
	}
	if n.At(2) != terminator {
		t.Fatalf("At(2) = %d, want terminator", n.At(2))
	}
}

func TestCompactRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		nibble []byte
		leaf   bool
	}{
		{"even-path", []byte{1, 2, 3, 4}, false},
		{"odd-path", []byte{1, 2, 3}, false},
		{"even-leaf", []byte{1, 2, 3, 4}, true},
		{"odd-leaf", []byte{1, 2, 3}, true},
		{"empty-leaf", nil, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n := NibblesFromHex(c.nibble)
			if c.leaf {
				n.Push(terminator)
			}
			compact := n.EncodeCompact()
			got := NibblesFromCompact(compact)
			if !nibblesEqual(got, n) {
				t.Fatalf("round trip mismatch: got %v, want %v", got.data, n.data)
			}
		})
	}
}

func TestCommonPrefix(t *testing.T) {
	a := NibblesFromHex([]byte{1, 2, 3, 4})
	b := NibblesFromHex([]byte{1, 2, 9, 9})
	if got := a.CommonPrefix(b); got != 2 {
		t.Fatalf("CommonPrefix = %d, want 2", got)
	}
}

func TestJoinPreservesTerminator(t *testing.T) {
	a := NibblesFromHex([]byte{1, 2})
	b := NibblesFromRaw([]byte{0x34}, true)
	joined := a.Join(b)
	if !joined.IsLeaf() {
		t.Fatalf("joined nibbles lost the terminator")
	}
}
