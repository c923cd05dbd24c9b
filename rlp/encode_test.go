package rlp

import (
	"bytes"
	"math/big"
	"testing"
)

func TestEncodeString(t *testing.T) {
	cases := []struct {
		in   []byte
		want []byte
	}{
		{nil, []byte{0x80}},
		{[]byte{0x00}, []byte{0x00}},
		{[]byte{0x7f}, []byte{0x7f}},
		{[]byte("dog"), []byte{0x83, 'd', 'o', 'g'}},
	}
	for _, c := range cases {
		got := EncodeString(c.in)
		if !bytes.Equal(got, c.want) {
			t.Errorf("EncodeString(%x) = %x, want %x", c.in, got, c.want)
		}
	}
}

func TestEncodeToBytesUint(t *testing.T) {
	got, err := EncodeToBytes(uint64(1024))
	if err != nil {
		t.Fatalf("EncodeToBytes: %v", err)
	}
	want := []byte{0x82, 0x04, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeToBytes(1024) = %x, want %x", got, want)
	}
}

func TestEncodeBigInt(t *testing.T) {
	got, err := EncodeToBytes(*big.NewInt(0))
	if err != nil {
		t.Fatalf("EncodeToBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x80}) {
		t.Fatalf("EncodeToBytes(big.Int(0)) = %x, want 80", got)
	}
}

func TestWrapListLongPayload(t *testing.T) {
	payload := bytes.Repeat([]byte{0x01}, 60)
	wrapped := WrapList(payload)
	if wrapped[0] != 0xf8 {
		t.Fatalf("WrapList header byte = %x, want f8 for a 60-byte payload", wrapped[0])
	}
}
