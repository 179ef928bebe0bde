// Package checksum computes git blob digests, the version markers the
// contents API reports for committed files.
package checksum

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// BlobSHA returns the hex-encoded git blob SHA-1 of data, i.e. the digest of
// "blob <len>\x00" followed by the content. This matches the sha field the
// GitHub contents API returns for a file, so local providers and tests can
// produce the same marker.
func BlobSHA(data []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(data))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
