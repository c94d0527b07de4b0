package record

import (
	"crypto/sha1"
	"fmt"
	"strconv"
)

// FieldChecksum computes the duplicate-detection checksum of a field:
// the first 8 hex digits of the SHA-1 of the media-preserving plain text,
// read as an unsigned 32-bit value.
//
// Compatibility anchor: FieldChecksum("AnkiDroid") == 3533307532.
func FieldChecksum(data string) int64 {
	digest := sha1.Sum([]byte(StripHTMLMedia(data)))
	hex := fmt.Sprintf("%040x", digest)
	n, err := strconv.ParseUint(hex[:8], 16, 64)
	if err != nil {
		return 0
	}
	return int64(n)
}
