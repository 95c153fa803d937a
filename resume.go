package engraver

import (
	"encoding/binary"
	"io"
	"os"

	"golang.org/x/xerrors"
)

// resumeKeeper reads and writes the 8-byte little-endian sidecar that
// records how many nonces, starting from Task.StartNonce, have already
// been committed to the plot file, per spec §4.6.
type resumeKeeper struct {
	path string
}

func newResumeKeeper(plotPath string) *resumeKeeper {
	return &resumeKeeper{path: plotPath + ".resume"}
}

// read returns the stored nonce count, or 0 with exists=false if no
// sidecar is present (a fresh run). A truncated or corrupt sidecar is
// reported as an error rather than silently treated as zero progress.
func (r *resumeKeeper) read() (count uint64, exists bool, err error) {
	f, err := os.Open(r.path)
	if os.IsNotExist(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, newTaskError(KindIoFailed, map[string]interface{}{"path": r.path}, "opening resume sidecar %s: %w", r.path, err)
	}
	defer f.Close()

	var buf [8]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		return 0, false, newTaskError(KindIoFailed, map[string]interface{}{"path": r.path}, "reading resume sidecar %s: %w", r.path, err)
	}

	return binary.LittleEndian.Uint64(buf[:]), true, nil
}

// write atomically replaces the sidecar with count: it writes to a
// temporary file in the same directory and renames it over the target,
// so a process killed mid-write leaves either the old or the new value
// intact, never a torn one. An interrupted write is tolerable: the
// worst outcome is re-hashing one buffer's worth of nonces next run.
func (r *resumeKeeper) write(count uint64) error {
	tmp := r.path + ".tmp"

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], count)

	if err := os.WriteFile(tmp, buf[:], 0o644); err != nil {
		return newTaskError(KindIoFailed, map[string]interface{}{"path": tmp}, "writing resume sidecar %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return newTaskError(KindIoFailed, map[string]interface{}{"path": r.path}, "renaming resume sidecar into place %s: %w", r.path, err)
	}
	return nil
}

// remove deletes the sidecar once a plot is fully completed.
func (r *resumeKeeper) remove() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return xerrors.Errorf("removing completed resume sidecar %s: %w", r.path, err)
	}
	return nil
}
