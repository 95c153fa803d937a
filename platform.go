package engraver

import "os"

// Platform is the external contract for the platform calls named in
// spec §6: free disk space, sector size, best-effort preallocation, and
// best-effort CPU affinity. Implementations are always best-effort —
// callers must tolerate a failure or a conservative fallback value
// rather than propagate a fatal error, except where noted.
type Platform interface {
	// FreeDiskSpace returns the number of free bytes on the filesystem
	// backing path.
	FreeDiskSpace(path string) (uint64, error)

	// SectorSize returns the device sector size backing path, or a
	// conservative default (4096) if it cannot be determined.
	SectorSize(path string) uint64

	// Preallocate extends file to size bytes using the fastest
	// mechanism available, falling back to a sparse extension
	// (Truncate) if fast allocation isn't supported.
	Preallocate(file *os.File, size uint64) error

	// SetAffinity pins the calling OS thread to coreID, best effort. A
	// non-nil error is logged by the caller and never fatal.
	SetAffinity(coreID int) error

	// CoreIDs returns the set of core ids available for pinning, used
	// to wrap worker ids around via modulo when cpu_threads exceeds
	// the core count. An empty slice disables pinning.
	CoreIDs() []int
}
