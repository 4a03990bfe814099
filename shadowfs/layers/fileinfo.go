package layers

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileInfo is an immutable metadata snapshot of one filesystem entry, taken at
// scan time. Instances are shared by reference across every layer index and
// are superseded wholesale by the next scan; nothing ever patches one in place.
type FileInfo struct {
	Name       string      // basename of the entry
	Path       string      // path relative to its source root
	RealPath   string      // absolute path on the underlying filesystem
	Extension  string      // suffix including the leading dot, or empty
	Size       int64       // size in bytes as reported by lstat
	Mode       os.FileMode // raw mode bits from lstat
	ModTime    time.Time
	ChangeTime time.Time // inode change time, zero when the platform can't provide it
	AccessTime time.Time // last access time, zero when the platform can't provide it

	// Derived once at construction from Mode, never recomputed.
	file    bool
	dir     bool
	symlink bool
}

// Snapshot is the flat file set produced by one scan. The same Snapshot value
// is handed to every layer during a rebuild; layers must treat it as read-only
// so that all of them observe an identical view.
type Snapshot []*FileInfo

// NewFileInfo lstats realPath and builds a snapshot entry for it. Stat
// failures are propagated to the caller; skipping broken entries is the scan
// loop's responsibility, not this constructor's.
func NewFileInfo(realPath, sourceRoot string) (*FileInfo, error) {
	stat, err := os.Lstat(realPath)
	if err != nil {
		return nil, err
	}
	return NewFileInfoFromStat(realPath, sourceRoot, stat), nil
}

// NewFileInfoFromStat builds a snapshot entry from an already obtained lstat
// result, avoiding a second stat call during directory scans.
func NewFileInfoFromStat(realPath, sourceRoot string, stat os.FileInfo) *FileInfo {
	abs, err := filepath.Abs(realPath)
	if err != nil {
		abs = realPath
	}

	rel, err := filepath.Rel(sourceRoot, abs)
	if err != nil {
		// Cross-device or otherwise unrelatable roots degrade to the
		// absolute path rather than failing the entry.
		rel = abs
	}

	name := stat.Name()
	mode := stat.Mode()

	fi := &FileInfo{
		Name:      name,
		Path:      rel,
		RealPath:  abs,
		Extension: extensionOf(name),
		Size:      stat.Size(),
		Mode:      mode,
		ModTime:   stat.ModTime(),
		file:      mode.IsRegular(),
		dir:       mode.IsDir(),
		symlink:   mode&os.ModeSymlink != 0,
	}
	fi.ChangeTime, fi.AccessTime = statTimes(stat)
	return fi
}

// IsFile reports whether the entry was a regular file at scan time.
func (fi *FileInfo) IsFile() bool { return fi.file }

// IsDir reports whether the entry was a directory at scan time.
func (fi *FileInfo) IsDir() bool { return fi.dir }

// IsSymlink reports whether the entry was a symbolic link at scan time.
func (fi *FileInfo) IsSymlink() bool { return fi.symlink }

// extensionOf returns the suffix after the last dot of a basename, including
// the dot. Names without a dot and hidden files whose only dot is the leading
// one (".bashrc") have no extension.
func extensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return ""
	}
	return name[idx:]
}
