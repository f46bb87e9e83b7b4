package tools

import "path/filepath"

// Fixed proxy parameters. The frame pattern must match what mlv_dump writes
// (prefix "frame_" plus a six-digit index) and what dcraw -T derives from it.
const (
	FramePrefix       = "frame_"
	ProxyFramePattern = FramePrefix + "%06d.tiff"
	ProxyFrameRate    = "23.976"
	ProxyScale        = "scale=480:-1"
	ProxyCodec        = "libx264"
	ProxyCRF          = "23"
)

// ExtractArgs builds the mlv_dump invocation that writes one DNG per frame
// into tempDir. tempDir must end with a path separator; mlv_dump appends the
// frame index and extension to the -o prefix verbatim.
func ExtractArgs(container, tempDir string) []string {
	return []string{"--dng", container, "-o", tempDir + FramePrefix}
}

// ConvertArgs builds the dcraw invocation for one DNG: camera white balance,
// sRGB output, AHD interpolation, 8-bit TIFF written next to the input.
func ConvertArgs(dngFile string) []string {
	return []string{"-w", "-o", "1", "-q", "3", "-T", dngFile}
}

// EncodeArgs builds the ffmpeg invocation that turns the TIFF sequence in
// the working directory into outputName. Paths are relative, so ffmpeg must
// run with the temporary directory as its working directory.
func EncodeArgs(outputName string) []string {
	return []string{
		"-f", "image2",
		"-framerate", ProxyFrameRate,
		"-i", ProxyFramePattern,
		"-vf", ProxyScale,
		"-c", ProxyCodec,
		"-crf", ProxyCRF,
		filepath.Base(outputName),
	}
}

// ProxyName returns the proxy video file name for a container file.
func ProxyName(container string) string {
	return filepath.Base(container) + ".mp4"
}
