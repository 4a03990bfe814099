//go:build !linux

package layers

// XattrExtractor is a no-op where extended attributes are unavailable; every
// file yields no tags.
func XattrExtractor(attr string) TagExtractor {
	return func(*FileInfo) ([]string, error) {
		return nil, nil
	}
}
