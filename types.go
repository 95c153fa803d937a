// Package engraver generates PoC2 plot files: given an account id and a
// contiguous nonce range, it derives NONCE_SIZE bytes per nonce with a
// Shabal256 seed chain, transposes the result into scoop-major layout, and
// streams it to disk under a bounded-memory, double-buffered pipeline with
// crash-resume.
package engraver

// Core layout constants, fixed by the PoC2 plot file format.
const (
	ScoopSize = 64
	NumScoops = 4096
	NonceSize = ScoopSize * NumScoops // 262144
	HashSize  = 32                    // Shabal256 digest width
	HashCap   = 4096
)

// Task describes one plotting run. Orchestrator.Run may rewrite Nonces
// while resolving and validating it (fill-disk mode, direct I/O
// rounding) and treats it as immutable afterwards; the orchestrator
// derives everything else (buffer size,
// resume progress, file layout) from it.
type Task struct {
	NumericID  uint64
	StartNonce uint64
	Nonces     uint64 // N; 0 means "fill the disk"
	OutputPath string

	MemBudgetBytes uint64
	CPUThreads     int
	GPUEnabled     bool
	GPUMemBytes    uint64
	ZeroCopyBuffers bool

	DirectIO bool
	AsyncIO  bool // true => two buffers, false => one
	Benchmark bool
	Quiet    bool
}

// NumBuffer returns how many buffers the pool manages for this task: two
// under async I/O, one otherwise.
func (t *Task) NumBuffer() int {
	if t.AsyncIO {
		return 2
	}
	return 1
}

// Buffer is a contiguous, nonce-major region of host memory holding a
// fixed number of whole nonces. It moves between the hasher and the
// writer by channel handoff; at any instant exactly one side may touch
// its contents.
type Buffer struct {
	Data []byte

	// ChunkIndex is the monotonically increasing sequence number the
	// scheduler assigns when it dispatches this buffer; the writer
	// asserts these arrive in order.
	ChunkIndex uint64

	// NonceOffset is the plot-relative nonce index (relative to
	// Task.StartNonce) of the first nonce held in Data.
	NonceOffset uint64

	// Count is the number of whole nonces present in Data. It can be
	// shorter than the buffer's full capacity for the final chunk.
	Count uint64
}

// NoncesPerBuf returns how many whole nonces fit in a buffer of this size.
func NoncesPerBuf(bufferSize uint64) uint64 {
	return bufferSize / NonceSize
}
