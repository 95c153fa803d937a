package engraver

import (
	"bytes"
	"testing"
)

func TestHashOneNonceDeterministic(t *testing.T) {
	t.Parallel()

	a := make([]byte, NonceSize)
	b := make([]byte, NonceSize)

	hashOneNonce(a, 0x1122334455667788, 1)
	hashOneNonce(b, 0x1122334455667788, 1)

	if !bytes.Equal(a, b) {
		t.Fatal("hashOneNonce is not deterministic for identical (id, nonce)")
	}
}

func TestHashOneNonceDistinguishesInputs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		id, nonce1 uint64
		nonce2     uint64
	}{
		{"different nonce, same id", 0, 0, 1},
		{"different id, same nonce", 0, 0, 0},
	}

	base := make([]byte, NonceSize)
	hashOneNonce(base, 0, 0)

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			other := make([]byte, NonceSize)
			id2 := c.id
			if c.name == "different id, same nonce" {
				id2 = 1
			}
			hashOneNonce(other, id2, c.nonce2)
			if bytes.Equal(base, other) {
				t.Fatalf("distinct (id, nonce) inputs produced identical nonce regions")
			}
		})
	}
}

// TestPoC2SwapCrossCheck exercises the representative vector from
// spec §8: scoop 0's second half after the swap equals scoop
// NumScoops-1's second half before it, and vice versa.
func TestPoC2SwapCrossCheck(t *testing.T) {
	t.Parallel()

	region := make([]byte, NonceSize)
	for i := range region {
		region[i] = byte(i)
	}
	before := make([]byte, NonceSize)
	copy(before, region)

	poc2Swap(region)

	lowScoop, highScoop := 0, NumScoops-1
	halfOf := func(buf []byte, scoop int) []byte {
		return buf[scoop*ScoopSize+ScoopSize/2 : scoop*ScoopSize+ScoopSize]
	}

	if !bytes.Equal(halfOf(region, lowScoop), halfOf(before, highScoop)) {
		t.Fatal("scoop 0's second half after the swap should equal scoop NumScoops-1's second half before it")
	}
	if !bytes.Equal(halfOf(region, highScoop), halfOf(before, lowScoop)) {
		t.Fatal("scoop NumScoops-1's second half after the swap should equal scoop 0's second half before it")
	}
}

func TestPoC2SwapInvolution(t *testing.T) {
	t.Parallel()

	region := make([]byte, NonceSize)
	for i := range region {
		region[i] = byte(i)
	}
	original := make([]byte, NonceSize)
	copy(original, region)

	poc2Swap(region)
	if bytes.Equal(region, original) {
		t.Fatal("poc2Swap did not change a distinctly-valued region")
	}

	poc2Swap(region)
	if !bytes.Equal(region, original) {
		t.Fatal("poc2Swap applied twice must be the identity")
	}
}

func TestFillBufferMatchesSingleNonce(t *testing.T) {
	t.Parallel()

	const numericID = 42
	const count = 3

	buf := make([]byte, count*NonceSize)
	h := newHasher(numericID, 2, nil)
	h.fillBuffer(buf, 10, count)

	for i := uint64(0); i < count; i++ {
		want := make([]byte, NonceSize)
		hashOneNonce(want, numericID, 10+i)
		got := buf[i*NonceSize : (i+1)*NonceSize]
		if !bytes.Equal(want, got) {
			t.Fatalf("nonce %d in batch diverged from the single-nonce reference", i)
		}
	}
}

func TestFillBufferThreadCountInvariant(t *testing.T) {
	t.Parallel()

	const numericID = 7
	const count = 9

	single := make([]byte, count*NonceSize)
	newHasher(numericID, 1, nil).fillBuffer(single, 0, count)

	parallel := make([]byte, count*NonceSize)
	newHasher(numericID, 4, nil).fillBuffer(parallel, 0, count)

	if !bytes.Equal(single, parallel) {
		t.Fatal("worker count must not affect the hashed bytes")
	}
}
