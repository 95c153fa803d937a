package engraver

import (
	"encoding/binary"
	"log"
	"runtime"
	"sync"

	"github.com/tzdybal/engraver/shabal256"
)

// hasher drives the seed-chain derivation of spec §4.1 across a worker
// pool. The detected dispatch tag's lane count only shapes how work is
// split between workers; each nonce is hashed on its own, not in
// lockstep with other lanes.
type hasher struct {
	numericID uint64
	threads   int
	tag       shabal256.Tag
	platform  Platform
	coreIDs   []int
}

func newHasher(numericID uint64, threads int, platform Platform) *hasher {
	if threads < 1 {
		threads = 1
	}
	h := &hasher{
		numericID: numericID,
		threads:   threads,
		tag:       shabal256.DetectTag(),
		platform:  platform,
	}
	if platform != nil {
		h.coreIDs = platform.CoreIDs()
	}
	return h
}

// fillBuffer hashes every nonce in [nonceOffset, nonceOffset+count) into
// dst, laid out nonce-major (count*NonceSize bytes). The call blocks
// until the whole range is hashed; work is spread across up to h.threads
// goroutines claiming disjoint sub-ranges.
func (h *hasher) fillBuffer(dst []byte, nonceOffset uint64, count uint64) {
	lanes := uint64(h.tag.Lanes())

	workers := h.threads
	if uint64(workers) > count {
		workers = int(count)
	}
	if workers < 1 {
		workers = 1
	}

	// Split count into `workers` groups. When each worker gets at least
	// one lane group, every sub-range other than the last is a whole
	// number of lane groups; otherwise groups are count/workers nonces
	// (at least one) with no lane alignment. The last worker takes the
	// remainder.
	groupSize := (count / uint64(workers) / lanes) * lanes
	if groupSize == 0 {
		groupSize = count / uint64(workers)
	}
	if groupSize == 0 {
		groupSize = 1
	}

	var wg sync.WaitGroup
	start := uint64(0)
	for w := 0; w < workers && start < count; w++ {
		n := groupSize
		if w == workers-1 || start+n > count {
			n = count - start
		}
		wg.Add(1)
		go func(workerID int, off, n uint64) {
			defer wg.Done()
			h.pinWorker(workerID)
			lo := off * NonceSize
			hi := (off + n) * NonceSize
			h.fillRange(dst[lo:hi], nonceOffset+off, n)
		}(w, start, n)
		start += n
	}
	wg.Wait()
}

// pinWorker attempts best-effort core affinity for the OS thread running
// the calling goroutine (the goroutine is not locked to that thread);
// failure is logged here and never fatal.
func (h *hasher) pinWorker(workerID int) {
	if h.platform == nil || len(h.coreIDs) == 0 {
		return
	}
	core := h.coreIDs[workerID%len(h.coreIDs)]
	if err := h.platform.SetAffinity(core); err != nil {
		log.Printf("engraver: core affinity unavailable: %v", err)
	}
}

// fillRange hashes n contiguous nonces starting at nonceOffset into dst
// (n*NonceSize bytes). Each nonce is independent, so a plain loop over
// the scalar path is correct regardless of the detected lane width;
// h.tag.Lanes() only sizes how fillBuffer splits work across goroutines.
// Nonces are hashed one at a time; Shabal256 states of several nonces
// are not interleaved.
func (h *hasher) fillRange(dst []byte, nonceOffset uint64, n uint64) {
	for i := uint64(0); i < n; i++ {
		region := dst[i*NonceSize : (i+1)*NonceSize]
		hashOneNonce(region, h.numericID, nonceOffset+i)
	}
}

// hashOneNonce implements the per-nonce algorithm from spec §4.1:
// high-to-low seed-chain fill with a sliding HASH_CAP window, a final
// whole-region digest XORed back in, and the PoC2 upper-half swap.
func hashOneNonce(region []byte, numericID, nonce uint64) {
	if len(region) != NonceSize {
		panic("engraver: hasher given a mis-sized nonce region")
	}

	// The fill below runs high-to-low and its sliding window reads bytes
	// below the slot it's writing, i.e. slots that are still ahead of it
	// in the pass. Those must read as zero, the canonical starting
	// state; region comes from a pool buffer recycled across chunks, so
	// without this it would carry a previous chunk's trailing bytes.
	clear(region)

	var seed [16]byte
	binary.BigEndian.PutUint64(seed[0:8], numericID)
	binary.BigEndian.PutUint64(seed[8:16], nonce)

	d := shabal256.New()

	totalHashes := NumScoops * 2
	for i := totalHashes - 1; i >= 0; i-- {
		windowEnd := (i + 1) * HashSize
		windowStart := windowEnd - HashCap
		if windowStart < 0 {
			windowStart = 0
		}

		d.Reset()
		if windowEnd > 0 {
			d.Write(region[windowStart:windowEnd])
		}
		d.Write(seed[:])

		digest := d.Sum(nil)
		copy(region[i*HashSize:(i+1)*HashSize], digest)
	}

	d.Reset()
	d.Write(region)
	d.Write(seed[:])
	final := d.Sum(nil)

	for j := range region {
		region[j] ^= final[j%HashSize]
	}

	poc2Swap(region)
}

// poc2Swap exchanges the second 32-byte half of scoop s with the second
// half of scoop NumScoops-1-s for every s in the upper half, per the
// PoC2 layout spec §4.1 step 4.
func poc2Swap(region []byte) {
	var tmp [ScoopSize / 2]byte
	for s := NumScoops / 2; s < NumScoops; s++ {
		mirror := NumScoops - 1 - s
		a := region[s*ScoopSize+ScoopSize/2 : s*ScoopSize+ScoopSize]
		b := region[mirror*ScoopSize+ScoopSize/2 : mirror*ScoopSize+ScoopSize]
		copy(tmp[:], a)
		copy(a, b)
		copy(b, tmp[:])
	}
}

// defaultThreadCount falls back to the number of logical CPUs when a
// task leaves cpu_threads unset.
func defaultThreadCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// autoDetectSIMDTag reports the dispatch tag the shabal256 package
// selected at init time, for the startup banner.
func autoDetectSIMDTag() shabal256.Tag {
	return shabal256.DetectTag()
}
