// Package shabal256 implements the Shabal256 hash function used to
// derive PoC2 plot data, as a standard hash.Hash. The zero value
// returned by New is ready to accept Write()s.
package shabal256

import (
	"encoding/binary"
	"hash"
)

// BlockSize is the number of bytes absorbed per internal permutation.
const BlockSize = 64

// Size is the length in bytes of a Shabal256 digest.
const Size = 32

type digest struct {
	a [12]uint32
	b [16]uint32
	c [16]uint32

	x  [BlockSize]byte
	nx int

	ctr uint64

	blockFn blockFunc
}

var _ hash.Hash = (*digest)(nil)

// New returns a Shabal256 hasher using the block function selected by
// the most recent call to UseTag (AVX512F/AVX2/AVX/SSE2/scalar,
// auto-detected at package init time via DetectTag).
func New() hash.Hash {
	d := &digest{blockFn: defaultBlock()}
	d.Reset()
	return d
}

// NewWithTag returns a Shabal256 hasher pinned to a specific SIMD
// dispatch tag, independent of the package-wide default. Used by the
// tests that compare every tag against the forced-scalar path; the
// nonce hasher itself uses New.
func NewWithTag(tag Tag) hash.Hash {
	fn, ok := blockByTag[tag]
	if !ok {
		fn = genericBlock
	}
	d := &digest{blockFn: fn}
	d.Reset()
	return d
}

func (d *digest) Reset() {
	fn := d.blockFn
	if fn == nil {
		fn = defaultBlock()
	}
	*d = digest{blockFn: fn}

	// Seed A with the digest width in bits, then diffuse the all-zero
	// state through five blank permutations before any real data is
	// absorbed, per Shabal's initialization procedure.
	d.a[0] = Size * 8
	var zero [16]uint32
	for i := 0; i < 5; i++ {
		d.processBlock(&zero)
	}
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Write(p []byte) (n int, err error) {
	n = len(p)
	if d.nx > 0 {
		c := copy(d.x[d.nx:], p)
		d.nx += c
		if d.nx == BlockSize {
			d.blockBytes(d.x[:])
			d.nx = 0
		}
		p = p[c:]
	}
	for len(p) >= BlockSize {
		d.blockBytes(p[:BlockSize])
		p = p[BlockSize:]
	}
	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}
	return
}

func (d *digest) Sum(in []byte) []byte {
	d0 := *d
	h := d0.checkSum()
	return append(in, h[:]...)
}

func (d *digest) checkSum() [Size]byte {
	var tmp [BlockSize]byte
	tmp[0] = 0x80
	d.Write(tmp[:BlockSize-d.nx])

	// Three closing blank rounds further diffuse state before squeezing.
	var zero [16]uint32
	for i := 0; i < 3; i++ {
		d.processBlock(&zero)
	}

	var out [Size]byte
	for i := 0; i < Size/4; i++ {
		binary.LittleEndian.PutUint32(out[i*4:], d.c[8+i])
	}
	return out
}

func (d *digest) blockBytes(p []byte) {
	var m [16]uint32
	for i := range m {
		m[i] = binary.LittleEndian.Uint32(p[i*4:])
	}
	d.processBlock(&m)
}

// processBlock runs one Input step: absorb m into B, permute, subtract
// m from C, then swap the B/C roles for the next block.
func (d *digest) processBlock(m *[16]uint32) {
	d.ctr++
	d.blockFn(&d.a, &d.b, &d.c, m, uint32(d.ctr), uint32(d.ctr>>32))
	d.b, d.c = d.c, d.b
}

// Sum256 returns the Shabal256 digest of data in one call.
func Sum256(data []byte) [Size]byte {
	d := New()
	d.Write(data)
	var out [Size]byte
	copy(out[:], d.Sum(nil))
	return out
}
