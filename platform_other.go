//go:build !linux
// +build !linux

package engraver

import "os"

// fallbackPlatform is used on every non-Linux GOOS: sector size is
// assumed conservative (4096, per spec §9), preallocation is always
// sparse, and affinity pinning is a silent no-op.
type fallbackPlatform struct{}

// NewPlatform returns the Platform implementation for the running GOOS.
func NewPlatform() Platform { return fallbackPlatform{} }

func (fallbackPlatform) FreeDiskSpace(path string) (uint64, error) {
	// No portable free-space query in the standard library; callers
	// that need a hard precondition on a non-Linux GOOS should supply
	// mem_budget/nonces explicitly rather than rely on disk-fill mode.
	return 0, newTaskError(KindPathMissing, map[string]interface{}{"path": path}, "free disk space query not supported on this platform for %s", path)
}

func (fallbackPlatform) SectorSize(path string) uint64 {
	return 4096
}

func (fallbackPlatform) Preallocate(file *os.File, size uint64) error {
	return file.Truncate(int64(size))
}

func (fallbackPlatform) SetAffinity(coreID int) error {
	return newTaskError(KindAffinityUnavailable, map[string]interface{}{"core": coreID}, "cpu affinity pinning not supported on this platform")
}

func (fallbackPlatform) CoreIDs() []int {
	return nil
}
