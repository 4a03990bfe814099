//go:build !linux

package layers

import (
	"os"
	"time"
)

// statTimes has no portable source for ctime/atime off Linux; callers treat
// zero values as "unavailable".
func statTimes(_ os.FileInfo) (ctime, atime time.Time) {
	return time.Time{}, time.Time{}
}
