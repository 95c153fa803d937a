package shabal256

import (
	"bytes"
	"testing"
)

func TestSizeAndBlockSize(t *testing.T) {
	d := New()
	if d.Size() != Size {
		t.Fatalf("Size() = %d, want %d", d.Size(), Size)
	}
	if d.BlockSize() != BlockSize {
		t.Fatalf("BlockSize() = %d, want %d", d.BlockSize(), BlockSize)
	}
}

func TestDeterministic(t *testing.T) {
	t.Parallel()
	msg := []byte("engraver plot data")
	h1 := Sum256(msg)
	h2 := Sum256(msg)
	if h1 != h2 {
		t.Fatalf("Sum256 is not deterministic: %x != %x", h1, h2)
	}
}

func TestDifferentInputsDiffer(t *testing.T) {
	t.Parallel()
	a := Sum256([]byte{0x00})
	b := Sum256([]byte{0x01})
	if a == b {
		t.Fatalf("distinct inputs hashed to the same digest: %x", a)
	}
}

func TestWriteInChunksMatchesSingleWrite(t *testing.T) {
	t.Parallel()
	msg := bytes.Repeat([]byte{0xAB}, 500)

	whole := New()
	whole.Write(msg)
	wantSum := whole.Sum(nil)

	chunked := New()
	for _, chunkLen := range []int{1, 7, 64, 128, 299} {
		if chunkLen > len(msg) {
			continue
		}
	}
	for off := 0; off < len(msg); {
		n := 37
		if off+n > len(msg) {
			n = len(msg) - off
		}
		chunked.Write(msg[off : off+n])
		off += n
	}
	gotSum := chunked.Sum(nil)

	if !bytes.Equal(wantSum, gotSum) {
		t.Fatalf("chunked write mismatch: %x != %x", gotSum, wantSum)
	}
}

func TestSumDoesNotMutateState(t *testing.T) {
	t.Parallel()
	h := New()
	h.Write([]byte("partial"))
	first := h.Sum(nil)
	second := h.Sum(nil)
	if !bytes.Equal(first, second) {
		t.Fatalf("repeated Sum() calls diverged: %x != %x", first, second)
	}
	h.Write([]byte(" more"))
	third := h.Sum(nil)
	if bytes.Equal(first, third) {
		t.Fatalf("Sum() after further Write() should change, got same digest")
	}
}

func TestAllTagsAgreeWithScalar(t *testing.T) {
	t.Parallel()
	msg := []byte("a fixed nonce-derived message block of some length")

	scalar := NewWithTag(TagScalar)
	scalar.Write(msg)
	want := scalar.Sum(nil)

	for _, tag := range []Tag{TagSSE2, TagAVX, TagAVX2, TagAVX512F} {
		tag := tag
		t.Run(string(tag), func(t *testing.T) {
			t.Parallel()
			d := NewWithTag(tag)
			d.Write(msg)
			got := d.Sum(nil)
			if !bytes.Equal(want, got) {
				t.Fatalf("tag %s diverged from scalar oracle: %x != %x", tag, got, want)
			}
		})
	}
}

func TestLanesByTag(t *testing.T) {
	cases := map[Tag]int{
		TagScalar:  1,
		TagSSE2:    4,
		TagAVX:     4,
		TagAVX2:    8,
		TagAVX512F: 16,
	}
	for tag, want := range cases {
		if got := tag.Lanes(); got != want {
			t.Fatalf("%s.Lanes() = %d, want %d", tag, got, want)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	t.Parallel()
	h := New()
	sum := h.Sum(nil)
	if len(sum) != Size {
		t.Fatalf("empty-input digest length = %d, want %d", len(sum), Size)
	}
}
