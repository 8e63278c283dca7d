//go:build !linux && !darwin

package metadata

import "time"

// birthtime is unavailable on this platform; created_date stays absent.
func birthtime(_ string) (time.Time, bool) {
	return time.Time{}, false
}
