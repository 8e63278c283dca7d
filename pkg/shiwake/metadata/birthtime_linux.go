//go:build linux

package metadata

import (
	"time"

	"golang.org/x/sys/unix"
)

// birthtime returns the file creation time via statx. Not all filesystems
// record a birth time; ok is false when the kernel does not report one.
func birthtime(path string) (time.Time, bool) {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &stx); err != nil {
		return time.Time{}, false
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, false
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), true
}
