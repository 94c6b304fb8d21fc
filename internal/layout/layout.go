// Package layout locates the well-known directories inside an extracted
// bundle. Candidates are tried in order; the first that exists wins.
package layout

import (
	"os"
	"path/filepath"

	"github.com/rowjay/insights-synth/internal/errs"
)

// TimeSeriesRel is the pmlogger directory relative to a bundle's data root.
// Manifest entries refer to time-series files by this prefix.
const TimeSeriesRel = "var/log/pcp/pmlogger"

var (
	TimeSeriesCandidates = []string{"data/" + TimeSeriesRel, TimeSeriesRel}
	ManifestCandidates   = []string{"meta_data", "metadata"}
)

// Layout holds absolute paths inside one bundle. CommandsDir may not exist
// yet; it is created when provenance is injected.
type Layout struct {
	Root          string
	TimeSeriesDir string
	ManifestDir   string
	CommandsDir   string
}

// FirstExisting returns root/candidate for the first candidate that is an
// existing directory.
func FirstExisting(root string, candidates ...string) (string, error) {
	for _, c := range candidates {
		p := filepath.Join(root, filepath.FromSlash(c))
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, nil
		}
	}
	return "", errs.Structure("resolve "+filepath.Base(root), "no directory at any of %v", candidates)
}

func ResolveTimeSeriesDir(root string) (string, error) {
	dir, err := FirstExisting(root, TimeSeriesCandidates...)
	if err != nil {
		return "", errs.Structure("time-series directory", "%w", err)
	}
	return dir, nil
}

func ResolveManifestDir(root string) (string, error) {
	dir, err := FirstExisting(root, ManifestCandidates...)
	if err != nil {
		return "", errs.Structure("manifest directory", "%w", err)
	}
	return dir, nil
}

// CommandsDir joins the command-output directory onto root without checking it.
func CommandsDir(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// Resolve resolves the time-series and manifest directories and fills in the
// command-output directory.
func Resolve(root, commandsRel string) (Layout, error) {
	ts, err := ResolveTimeSeriesDir(root)
	if err != nil {
		return Layout{}, err
	}
	md, err := ResolveManifestDir(root)
	if err != nil {
		return Layout{}, err
	}
	return Layout{
		Root:          root,
		TimeSeriesDir: ts,
		ManifestDir:   md,
		CommandsDir:   CommandsDir(root, commandsRel),
	}, nil
}
