// Package pcp produces pmlogger archive units by driving the external
// synthetic-pcp-generator and compressor programs.
package pcp

import (
	"os"
	"path"
	"path/filepath"
)

// Suffixes of the three files in a pmlogger archive unit.
const (
	SamplesSuffix = ".0"
	IndexSuffix   = ".index"
	MetaSuffix    = ".meta"
)

// Unit is a named pmlogger archive: samples, index and metadata files
// sharing one base name. Samples and metadata are stored compressed.
type Unit struct {
	Base string
	// CompressedSuffix is appended to samples and metadata once compressed.
	CompressedSuffix string
}

func NewUnit(base, compressedSuffix string) Unit {
	return Unit{Base: base, CompressedSuffix: compressedSuffix}
}

// RawFiles are the names the generator must create.
func (u Unit) RawFiles() []string {
	return []string{u.Base + SamplesSuffix, u.Base + IndexSuffix, u.Base + MetaSuffix}
}

// CompressTargets are the raw files that get compressed.
func (u Unit) CompressTargets() []string {
	return []string{u.Base + SamplesSuffix, u.Base + MetaSuffix}
}

// FinalFiles are the names present once the unit is compressed.
func (u Unit) FinalFiles() []string {
	return []string{
		u.Base + SamplesSuffix + u.CompressedSuffix,
		u.Base + IndexSuffix,
		u.Base + MetaSuffix + u.CompressedSuffix,
	}
}

// RelPaths joins FinalFiles onto a slash-separated directory prefix.
func (u Unit) RelPaths(dir string) []string {
	final := u.FinalFiles()
	paths := make([]string, 0, len(final))
	for _, name := range final {
		paths = append(paths, path.Join(dir, name))
	}
	return paths
}

func (u Unit) allVariants() []string {
	return append(u.RawFiles(), u.Base+SamplesSuffix+u.CompressedSuffix, u.Base+MetaSuffix+u.CompressedSuffix)
}

// Missing returns the names from files that do not exist in dir.
func Missing(dir string, files []string) []string {
	var missing []string
	for _, name := range files {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}
