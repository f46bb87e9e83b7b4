// Package naming derives the per-source directory names RawFlow writes to
// and tracks which source claimed which result directory during a run.
//
// Layout for a source "<dir>/clip.MLV":
//
//	result:  <outputDir-or-dir>/clip.MLV.RawFlow/
//	staging: <outputDir-or-dir>/clip.MLV.RawFlow.partial/
//
// The result directory only ever appears by renaming a fully built staging
// directory, so its presence means the source was completely processed.
package naming
