package engraver

// sizerInput collects the Sizer's inputs (spec §4.5): the user's memory
// budget, free host memory, device sector size, GPU reservation, and
// the async-I/O buffer count.
type sizerInput struct {
	MemBudget   uint64 // 0 means "unlimited"
	FreeMemory  uint64
	SectorSize  uint64
	GPUEnabled  bool
	GPUMemNeeded uint64
	ZeroCopyBuffers bool
	NumBuffer   int
	Nonces      uint64
}

// resolveBufferSize runs the eight sizing rules of spec §4.5, in the
// stated order; the order is load-bearing; reordering any step changes
// the alignment guarantee the result depends on. Returns the final
// per-buffer size in bytes.
func resolveBufferSize(in sizerInput) (bufferSize uint64, err error) {
	memBudget := in.MemBudget

	gpuMemNeeded := in.GPUMemNeeded
	if in.GPUEnabled && !in.ZeroCopyBuffers {
		// Without zero-copy buffers, lanes share a host-side staging
		// region, so only half the nominal GPU working set needs its
		// own host reservation.
		gpuMemNeeded /= 2
	}

	noncesPerSector := uint64(1)
	if in.SectorSize > ScoopSize {
		noncesPerSector = in.SectorSize / ScoopSize
	}

	// 1. Insufficient host memory for GPU plotting is fatal.
	if in.GPUEnabled && memBudget > 0 {
		required := gpuMemNeeded + noncesPerSector*NonceSize
		if memBudget < required {
			return 0, newTaskError(KindHostMemInsufficient, map[string]interface{}{
				"mem_budget": memBudget,
				"required":   required,
			}, "insufficient host memory for GPU plotting: have %d, need %d", memBudget, required)
		}
	}

	// 2. Reserve GPU memory out of the budget.
	if in.GPUEnabled && memBudget > 0 {
		memBudget -= gpuMemNeeded
	}

	// 3. Unlimited budget defaults to exactly what the whole range needs.
	if memBudget == 0 {
		memBudget = in.Nonces * NonceSize
	}

	// 4. Never plan for more than the task could possibly use.
	if cap := in.Nonces*NonceSize + gpuMemNeeded; memBudget > cap {
		memBudget = cap
	}

	// 5. GPU lanes require >=16-nonce groups for coalesced access.
	laneNonces := noncesPerSector
	if in.GPUEnabled && laneNonces < 16 {
		laneNonces = 16
	}

	// 6. Leave ~2.3% RAM headroom.
	if in.FreeMemory > gpuMemNeeded {
		headroomBudget := (in.FreeMemory - gpuMemNeeded) * 1000 / 1024
		if memBudget > headroomBudget {
			memBudget = headroomBudget
		}
	} else {
		memBudget = 0
	}

	// 7. Round down to a whole number of lane-aligned units, then lift
	// back up to at least one unit.
	numBuffer := uint64(in.NumBuffer)
	if numBuffer == 0 {
		numBuffer = 1
	}
	unit := numBuffer * NonceSize * laneNonces
	memBudget = (memBudget / unit) * unit
	if memBudget < unit {
		memBudget = unit
	}

	// 8. Split evenly across buffers.
	bufferSize = memBudget / numBuffer

	return bufferSize, nil
}
