// Package imagehash turns decoded pixel data into content fingerprints used
// as the duplicate key. The hash construction is perceptual: re-encoded or
// lightly recompressed copies of the same picture collapse to the same
// fingerprint, while file names, paths and metadata play no part.
package imagehash

import (
	"fmt"
	"image"
	"io"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"

	// imaging registers jpeg, png, gif, bmp and tiff decoders; webp only
	// ships as a separate decoder.
	_ "golang.org/x/image/webp"

	"imagededup/types"
)

// FingerprintProvider computes a fingerprint from decoded pixel data.
// Implementations must be deterministic: identical input always yields the
// same fingerprint.
type FingerprintProvider interface {
	Fingerprint(img image.Image) (types.Fingerprint, error)
}

// PerceptionHasher fingerprints images with a 64-bit DCT perceptual hash.
type PerceptionHasher struct{}

// NewPerceptionHasher returns the default fingerprint provider.
func NewPerceptionHasher() PerceptionHasher {
	return PerceptionHasher{}
}

// Fingerprint computes the perceptual hash of img.
func (PerceptionHasher) Fingerprint(img image.Image) (types.Fingerprint, error) {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0, fmt.Errorf("perception hash: %w", err)
	}
	return types.Fingerprint(hash.GetHash()), nil
}

// Decode reads image data from r, honoring EXIF orientation so that a
// rotated-on-write copy still fingerprints like its original.
func Decode(r io.Reader) (image.Image, error) {
	return imaging.Decode(r, imaging.AutoOrientation(true))
}
