package engraver

import (
	"os"
)

// transposeWriter consumes filled, nonce-major buffers from the pool in
// strict chunk order, gathers each scoop column, and issues one
// positioned write per scoop per buffer, per spec §4.2.
type transposeWriter struct {
	file      *os.File
	totalN    uint64
	pool      *bufferPool
	resume    *resumeKeeper
	benchmark bool
	sink      ProgressSink

	nextChunkIndex uint64
	progress       uint64
}

func newTransposeWriter(file *os.File, totalN uint64, pool *bufferPool, resume *resumeKeeper, benchmark bool, startProgress uint64, sink ProgressSink) *transposeWriter {
	if sink == nil {
		sink = nopProgressSink{}
	}
	return &transposeWriter{
		file:      file,
		totalN:    totalN,
		pool:      pool,
		resume:    resume,
		benchmark: benchmark,
		progress:  startProgress,
		sink:      sink,
	}
}

// run drains the full queue until the scheduler closes it, writing each
// buffer's scoops to disk (unless benchmark mode is on) and advancing
// the resume sidecar after each buffer is fully acknowledged. It returns
// the first fatal write error encountered, if any.
//
// Once an error occurs, run keeps draining and releasing buffers instead
// of returning immediately: the scheduler dispatches chunks on its own
// goroutine and blocks on pool.acquireEmpty() whenever the pool is
// empty, so abandoning the drain here would starve it of buffers and
// hang Orchestrator.Run forever instead of surfacing the error.
func (w *transposeWriter) run() error {
	var firstErr error

	for {
		buf, ok := w.pool.takeFull()
		if !ok {
			return firstErr
		}

		if firstErr != nil {
			w.pool.release(buf)
			continue
		}

		if buf.ChunkIndex != w.nextChunkIndex {
			firstErr = newTaskError(KindIoFailed, map[string]interface{}{
				"expected_chunk": w.nextChunkIndex,
				"got_chunk":      buf.ChunkIndex,
			}, "writer received chunk %d out of order, expected %d", buf.ChunkIndex, w.nextChunkIndex)
			w.pool.release(buf)
			continue
		}
		w.nextChunkIndex++

		if !w.benchmark {
			if err := w.writeBuffer(buf); err != nil {
				firstErr = err
				w.pool.release(buf)
				continue
			}
		}

		w.progress += buf.Count
		w.sink.Add(buf.Count * NonceSize)

		if !w.benchmark {
			if err := w.resume.write(w.progress); err != nil {
				firstErr = err
				w.pool.release(buf)
				continue
			}
		}

		w.pool.release(buf)
	}
}

// writeBuffer gathers and writes every scoop column of buf in ascending
// scoop order, maximizing sequential locality on the device.
func (w *transposeWriter) writeBuffer(buf *Buffer) error {
	k := buf.Count
	row := make([]byte, ScoopSize*k)

	for s := uint64(0); s < NumScoops; s++ {
		for i := uint64(0); i < k; i++ {
			src := buf.Data[i*NonceSize+s*ScoopSize : i*NonceSize+s*ScoopSize+ScoopSize]
			copy(row[i*ScoopSize:(i+1)*ScoopSize], src)
		}

		offset := int64(s*w.totalN*ScoopSize + buf.NonceOffset*ScoopSize)
		if _, err := w.file.WriteAt(row, offset); err != nil {
			return newTaskError(KindIoFailed, map[string]interface{}{
				"scoop":  s,
				"offset": offset,
			}, "positioned write failed at scoop %d offset %d: %w", s, offset, err)
		}
	}

	return nil
}
