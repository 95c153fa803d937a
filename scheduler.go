package engraver

// scheduler partitions the remaining nonce range into buffer-sized
// chunks and dispatches each to the hasher's worker pool before handing
// the filled buffer to the writer, per spec §4.4.
type scheduler struct {
	task   *Task
	pool   *bufferPool
	hasher *hasher

	noncesPerBuf uint64
}

func newScheduler(task *Task, pool *bufferPool, h *hasher, bufferSize uint64) *scheduler {
	return &scheduler{
		task:         task,
		pool:         pool,
		hasher:       h,
		noncesPerBuf: NoncesPerBuf(bufferSize),
	}
}

// run dispatches chunks covering [progress, N) in order, then closes the
// full queue so the writer can exit on drain. It returns once every
// chunk has been handed off (not once they've been written).
func (s *scheduler) run(progress uint64) {
	total := s.task.Nonces
	chunkIndex := uint64(0)

	for progress < total {
		count := s.noncesPerBuf
		if remaining := total - progress; count > remaining {
			count = remaining
		}

		buf := s.pool.acquireEmpty()
		// progress is plot-relative; the hasher needs the absolute nonce.
		s.hasher.fillBuffer(buf.Data[:count*NonceSize], s.task.StartNonce+progress, count)

		buf.ChunkIndex = chunkIndex
		buf.NonceOffset = progress
		buf.Count = count

		s.pool.publishFull(buf)

		progress += count
		chunkIndex++
	}

	s.pool.closeFull()
}
