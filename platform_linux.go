//go:build linux
// +build linux

package engraver

import (
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sys/unix"
)

// linuxPlatform implements Platform against golang.org/x/sys/unix.
// Every method is best-effort: a failure is surfaced to the caller, who
// is expected to fall back rather than abort, except FreeDiskSpace
// which feeds a precondition check the orchestrator does treat as
// fatal.
type linuxPlatform struct{}

// NewPlatform returns the Platform implementation for the running GOOS.
func NewPlatform() Platform { return linuxPlatform{} }

// statfsDir stats the filesystem backing path's parent directory rather
// than path itself: path is frequently the plot file being created and
// may not exist yet on a fresh run, but its containing directory always
// does by the time the orchestrator queries free space.
func statfsDir(path string) (unix.Statfs_t, error) {
	var st unix.Statfs_t
	err := unix.Statfs(filepath.Dir(path), &st)
	return st, err
}

func (linuxPlatform) FreeDiskSpace(path string) (uint64, error) {
	st, err := statfsDir(path)
	if err != nil {
		return 0, newTaskError(KindPathMissing, map[string]interface{}{"path": path}, "statfs %s: %w", path, err)
	}
	return uint64(st.Bavail) * uint64(st.Bsize), nil
}

func (linuxPlatform) SectorSize(path string) uint64 {
	st, err := statfsDir(path)
	if err != nil || st.Bsize <= 0 {
		return 4096
	}
	return uint64(st.Bsize)
}

func (linuxPlatform) Preallocate(file *os.File, size uint64) error {
	if err := unix.Fallocate(int(file.Fd()), 0, 0, int64(size)); err == nil {
		return nil
	}
	// Fast allocation isn't supported on this filesystem (e.g. tmpfs,
	// some network mounts); fall back to a sparse extension.
	return file.Truncate(int64(size))
}

func (linuxPlatform) SetAffinity(coreID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(coreID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return newTaskError(KindAffinityUnavailable, map[string]interface{}{"core": coreID}, "sched_setaffinity core %d: %w", coreID, err)
	}
	return nil
}

func (linuxPlatform) CoreIDs() []int {
	n := runtime.NumCPU()
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}
