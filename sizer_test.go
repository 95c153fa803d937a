package engraver

import "testing"

func TestResolveBufferSizeAlignment(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   sizerInput
	}{
		{"unlimited budget, N=1", sizerInput{MemBudget: 0, FreeMemory: 1 << 30, SectorSize: 4096, NumBuffer: 1, Nonces: 1}},
		{"small budget, single buffer", sizerInput{MemBudget: 1 << 20, FreeMemory: 1 << 30, SectorSize: 4096, NumBuffer: 1, Nonces: 1000}},
		{"async io, two buffers", sizerInput{MemBudget: 8 << 20, FreeMemory: 1 << 30, SectorSize: 4096, NumBuffer: 2, Nonces: 1000}},
		{"gpu enabled", sizerInput{MemBudget: 64 << 20, FreeMemory: 1 << 30, SectorSize: 4096, NumBuffer: 1, Nonces: 1000, GPUEnabled: true, GPUMemNeeded: 4 << 20}},
		{"gpu enabled with zcb", sizerInput{MemBudget: 64 << 20, FreeMemory: 1 << 30, SectorSize: 4096, NumBuffer: 1, Nonces: 1000, GPUEnabled: true, GPUMemNeeded: 4 << 20, ZeroCopyBuffers: true}},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			bufferSize, err := resolveBufferSize(c.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			noncesPerSector := uint64(1)
			if c.in.SectorSize > ScoopSize {
				noncesPerSector = c.in.SectorSize / ScoopSize
			}
			laneNonces := noncesPerSector
			if c.in.GPUEnabled && laneNonces < 16 {
				laneNonces = 16
			}
			unit := NonceSize * laneNonces

			if bufferSize%unit != 0 {
				t.Fatalf("buffer size %d is not a multiple of NONCE_SIZE*lane_nonces (%d)", bufferSize, unit)
			}
			if bufferSize < unit {
				t.Fatalf("buffer size %d is smaller than one lane-aligned unit %d", bufferSize, unit)
			}
		})
	}
}

func TestResolveBufferSizeGPUInsufficientMemoryIsFatal(t *testing.T) {
	t.Parallel()

	_, err := resolveBufferSize(sizerInput{
		MemBudget:    1 << 20, // 1 MiB, far below what GPU + one sector needs
		FreeMemory:   1 << 30,
		SectorSize:   4096,
		NumBuffer:    1,
		Nonces:       1000,
		GPUEnabled:   true,
		GPUMemNeeded: 64 << 20,
	})
	if err == nil {
		t.Fatal("expected a HostMemInsufficient error")
	}
	te, ok := AsTaskError(err)
	if !ok || te.Kind() != KindHostMemInsufficient {
		t.Fatalf("expected KindHostMemInsufficient, got %v", err)
	}
}

func TestResolveBufferSizeZeroCopyDoublesGPUReservation(t *testing.T) {
	t.Parallel()

	base := sizerInput{
		MemBudget:    256 << 20,
		FreeMemory:   4 << 30,
		SectorSize:   4096,
		NumBuffer:    1,
		Nonces:       10000,
		GPUEnabled:   true,
		GPUMemNeeded: 32 << 20,
	}

	withoutZCB := base
	withoutZCB.ZeroCopyBuffers = false
	sizeWithoutZCB, err := resolveBufferSize(withoutZCB)
	if err != nil {
		t.Fatal(err)
	}

	withZCB := base
	withZCB.ZeroCopyBuffers = true
	sizeWithZCB, err := resolveBufferSize(withZCB)
	if err != nil {
		t.Fatal(err)
	}

	// zcb reserves the full (unhalved) GPU working set, leaving less
	// budget for the plot buffer itself.
	if sizeWithZCB > sizeWithoutZCB {
		t.Fatalf("zero-copy-buffers should reserve more GPU memory, leaving a smaller or equal plot buffer: got %d (zcb) > %d (no zcb)", sizeWithZCB, sizeWithoutZCB)
	}
}
