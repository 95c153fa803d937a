package shabal256

import (
	"sync/atomic"

	"github.com/klauspost/cpuid/v2"
)

// Tag names a SIMD instruction set tier, matching the set spec.md uses
// to pick SIMD_LANES for the nonce hasher.
type Tag string

// Recognized tags, weakest to strongest.
const (
	TagScalar  Tag = "scalar"
	TagSSE2    Tag = "SSE2"
	TagAVX     Tag = "AVX"
	TagAVX2    Tag = "AVX2"
	TagAVX512F Tag = "AVX512F"
)

// Lanes returns how many nonces a batch using this tag hashes in
// lockstep, per spec.md §4.1's SIMD_LANES ∈ {1,4,8,16}.
func (t Tag) Lanes() int {
	switch t {
	case TagAVX512F:
		return 16
	case TagAVX2:
		return 8
	case TagAVX, TagSSE2:
		return 4
	default:
		return 1
	}
}

// blockByTag maps each tag to its block function. Every non-scalar
// entry currently resolves to the generic Go implementation: the
// hand-written vector kernels are named out of scope in spec.md §1 as
// "SIMD feature detection" and platform-specific assembly, left for a
// future change that adds the corresponding .s files behind build
// tags without touching this dispatch surface.
var blockByTag = map[Tag]blockFunc{
	TagScalar:  genericBlock,
	TagSSE2:    genericBlock,
	TagAVX:     genericBlock,
	TagAVX2:    genericBlock,
	TagAVX512F: genericBlock,
}

// currentBlock holds the package-wide default block function, selected
// once at init from the detected CPU tag and overridable via UseTag. It
// is read by New() and written by UseTag from whatever goroutines call
// them, including the hasher's worker pool, so it is stored behind an
// atomic pointer rather than a bare package variable.
var currentBlock atomic.Pointer[blockFunc]

func init() {
	fn := blockByTag[DetectTag()]
	currentBlock.Store(&fn)
}

// defaultBlock returns the block function New() wires into a fresh
// digest.
func defaultBlock() blockFunc {
	return *currentBlock.Load()
}

// DetectTag probes klauspost/cpuid for the best available instruction
// set, mirroring the cascading feature probe in
// original_source/src/plotter.rs's detect_simd.
func DetectTag() Tag {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return TagAVX512F
	case cpuid.CPU.Supports(cpuid.AVX2):
		return TagAVX2
	case cpuid.CPU.Supports(cpuid.AVX):
		return TagAVX
	case cpuid.CPU.Supports(cpuid.SSE2):
		return TagSSE2
	default:
		return TagScalar
	}
}

// UseTag changes which block function New() wires into freshly created
// digests. Digests already created are unaffected. Safe to call
// concurrently with New().
func UseTag(tag Tag) {
	if fn, ok := blockByTag[tag]; ok {
		currentBlock.Store(&fn)
	}
}
