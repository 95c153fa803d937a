//go:build !linux
// +build !linux

package engraver

// freeHostMemory has no portable implementation outside Linux; callers
// fall back to treating the user-declared mem_budget as authoritative.
func freeHostMemory() (uint64, error) {
	return 0, newTaskError(KindHostMemInsufficient, nil, "free host memory query not supported on this platform")
}
