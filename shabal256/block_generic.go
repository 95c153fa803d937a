package shabal256

import "math/bits"

// blockFunc performs one Shabal compression step on the A/B/C state,
// absorbing message words m. Implementations must treat a, b, c as
// read-write and must not retain m past the call.
type blockFunc func(a *[12]uint32, b, c *[16]uint32, m *[16]uint32, wlow, whigh uint32)

// cst holds Shabal's sixteen round constants, the fractional hex
// digits of pi (the same constant table used by Blowfish's P-array),
// as specified for the nonlinear mixing step.
var cst = [16]uint32{
	0x243F6A88, 0x85A308D3, 0x13198A2E, 0x03707344,
	0xA4093822, 0x299F31D0, 0x082EFA98, 0xEC4E6C89,
	0x452821E6, 0x38D01377, 0xBE5466CF, 0x34E90C6C,
	0xC0AC29B7, 0xC97C50DD, 0x3F84D5B5, 0xB5470917,
}

// genericBlock is the pure-Go correctness oracle: every SIMD dispatch
// tag resolves here until a hand-written vector kernel replaces it
// (vector kernels are an out-of-scope external concern per spec.md §1).
func genericBlock(a *[12]uint32, b, c *[16]uint32, m *[16]uint32, wlow, whigh uint32) {
	for i := range m {
		b[i] += m[i]
	}

	a[0] ^= wlow
	a[1] ^= whigh

	for pass := 0; pass < 3; pass++ {
		for j := 0; j < 16; j++ {
			ai := j % 12
			a[ai] = bits.RotateLeft32(a[ai], 15) * 5
			a[ai] ^= cst[j]
			a[ai] += (bits.RotateLeft32(b[(j+9)%16], 8) ^ b[(j+13)%16]) - c[(j+6)%16]
			bv := bits.RotateLeft32(b[j], 17)
			b[j] = bv ^ ^a[ai]
		}
	}

	for i := 0; i < 12; i++ {
		a[i] += c[(i+9)%16]
	}

	for i := range m {
		c[i] -= m[i]
	}
}
