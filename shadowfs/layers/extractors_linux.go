package layers

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// XattrExtractor reads tags from an extended attribute on the file itself,
// comma-separated (e.g. user.shadowfs.tags = "work,important"). Files
// without the attribute, or on filesystems without xattr support, yield no
// tags.
func XattrExtractor(attr string) TagExtractor {
	return func(fi *FileInfo) ([]string, error) {
		size, err := unix.Getxattr(fi.RealPath, attr, nil)
		if err != nil {
			if err == unix.ENODATA || err == unix.ENOTSUP || err == unix.ENOENT {
				return nil, nil
			}
			return nil, fmt.Errorf("reading xattr %s: %w", attr, err)
		}
		if size == 0 {
			return nil, nil
		}

		buf := make([]byte, size)
		n, err := unix.Getxattr(fi.RealPath, attr, buf)
		if err != nil {
			return nil, fmt.Errorf("reading xattr %s: %w", attr, err)
		}
		return strings.Split(string(buf[:n]), ","), nil
	}
}
