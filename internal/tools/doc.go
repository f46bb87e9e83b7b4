// Package tools runs the bundled external programs RawFlow depends on:
// mlv_dump (frame extraction), dcraw (DNG to TIFF) and ffmpeg (proxy
// encoding).
//
// Executables are resolved inside a fixed tool directory, never on PATH, so
// the versions shipped next to rawflow are always the ones used. Argument
// lists are built in builder.go and must stay byte-for-byte compatible with
// those tool versions. Every run reports its exit status and stderr in a
// Result; a launch failure or nonzero exit becomes a *ToolError.
package tools
