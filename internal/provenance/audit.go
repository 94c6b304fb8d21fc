package provenance

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rowjay/insights-synth/internal/catalog"
	"github.com/rowjay/insights-synth/internal/layout"
)

// Finding records which pieces of cloud evidence a bundle already carries.
type Finding struct {
	CommandOutput bool
	ManifestEntry bool
}

// Present reports whether both the command output and its manifest entry exist.
func (f Finding) Present() bool { return f.CommandOutput && f.ManifestEntry }

// Audit inspects root without modifying it. Filesystem errors count as
// missing evidence.
func Audit(root string) Finding {
	tmpl, err := catalog.ProvenanceTemplates()
	if err != nil {
		return Finding{}
	}
	return audit(root, tmpl)
}

// HasProvenance is Audit(root).Present().
func HasProvenance(root string) bool {
	return Audit(root).Present()
}

func audit(root string, tmpl *catalog.Provenance) Finding {
	var f Finding

	entries, err := os.ReadDir(layout.CommandsDir(root, tmpl.CommandsDir))
	if err == nil {
		for _, e := range entries {
			name := e.Name()
			if strings.Contains(name, tmpl.Audit.Probe) && strings.Contains(name, tmpl.Audit.Tool) {
				f.CommandOutput = true
				break
			}
		}
	}

	manifestDir, err := layout.ResolveManifestDir(root)
	if err == nil {
		if _, err := os.Stat(filepath.Join(manifestDir, tmpl.Audit.ManifestFile)); err == nil {
			f.ManifestEntry = true
		}
	}
	return f
}
