// Package poster renders a small JPEG still from one of the proxy TIFFs, so
// a result directory can be previewed without decoding DNGs or the video.
package poster

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// Width matches the proxy video's scale filter.
const Width = 480

// Write decodes the TIFF at src, scales it to Width keeping the aspect
// ratio, and writes a JPEG to dst.
func Write(src, dst string) error {
	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	thumb := imaging.Resize(img, Width, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, dst, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("save %s: %w", dst, err)
	}
	return nil
}
