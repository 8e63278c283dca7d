//go:build darwin

package metadata

import (
	"os"
	"syscall"
	"time"
)

// birthtime returns the file creation time from the stat birthtime field.
func birthtime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec), true
}
