package layers

import (
	"os"
	"syscall"
	"time"
)

// statTimes extracts change and access times from the underlying Stat_t.
func statTimes(stat os.FileInfo) (ctime, atime time.Time) {
	sys, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, time.Time{}
	}
	return time.Unix(int64(sys.Ctim.Sec), int64(sys.Ctim.Nsec)),
		time.Unix(int64(sys.Atim.Sec), int64(sys.Atim.Nsec))
}
