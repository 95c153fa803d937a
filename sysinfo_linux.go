//go:build linux
// +build linux

package engraver

import "golang.org/x/sys/unix"

// freeHostMemory reports available host RAM, feeding the sizer's RAM
// headroom rule (spec §4.5 step 6).
func freeHostMemory() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, newTaskError(KindHostMemInsufficient, nil, "sysinfo: %w", err)
	}
	return uint64(info.Freeram) * uint64(info.Unit), nil
}
