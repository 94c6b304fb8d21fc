package util

import (
	"fmt"
	"path/filepath"
	"strings"
)

var archiveSuffixes = []string{".tar.gz", ".tar.zst", ".tgz", ".tar", ".gz"}

// ArchiveBase strips the directory and any known archive extension.
func ArchiveBase(path string) string {
	base := filepath.Base(path)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(base, suffix) && len(base) > len(suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

// DefaultOutputName names the output archive after the input and pattern.
func DefaultOutputName(inputPath, pattern string) string {
	return fmt.Sprintf("synthetic_%s_%s", pattern, ArchiveBase(inputPath))
}

// UnitName is the base name of the time-series unit generated for pattern.
func UnitName(pattern string) string {
	return "synthetic_pcp_" + pattern
}

// SanitizeName makes name safe to use as a single path element.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
