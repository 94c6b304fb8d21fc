package provenance

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rowjay/insights-synth/internal/catalog"
	"github.com/rowjay/insights-synth/internal/layout"
	"github.com/rowjay/insights-synth/internal/manifest"
)

// Report lists what Inject wrote, by file name. Skipped holds names that
// already existed and were left untouched.
type Report struct {
	Commands  []string
	Documents []string
	Skipped   []string
}

// Inject writes the cloud provenance catalog into the bundle at root: the
// instance identity document and the cloud command outputs into the
// command-output directory, and one manifest document per template.
func Inject(root string) (Report, error) {
	tmpl, err := catalog.ProvenanceTemplates()
	if err != nil {
		return Report{}, err
	}
	return inject(root, tmpl)
}

func inject(root string, tmpl *catalog.Provenance) (Report, error) {
	var report Report

	manifestDir, err := layout.ResolveManifestDir(root)
	if err != nil {
		return report, err
	}
	commandsDir := layout.CommandsDir(root, tmpl.CommandsDir)
	if err := os.MkdirAll(commandsDir, 0o755); err != nil {
		return report, fmt.Errorf("create command output dir: %w", err)
	}

	files := append([]catalog.File{tmpl.InstanceIdentity}, tmpl.Commands...)
	for _, f := range files {
		written, err := writeNew(filepath.Join(commandsDir, f.Name), []byte(f.Content))
		if err != nil {
			return report, fmt.Errorf("write command output %s: %w", f.Name, err)
		}
		if written {
			report.Commands = append(report.Commands, f.Name)
		} else {
			report.Skipped = append(report.Skipped, f.Name)
		}
	}

	for _, d := range tmpl.Documents {
		written, err := manifest.WriteDocument(manifestDir, d.File, d.Document)
		if err != nil {
			return report, err
		}
		if written {
			report.Documents = append(report.Documents, d.File)
		} else {
			report.Skipped = append(report.Skipped, d.File)
		}
	}
	return report, nil
}

func writeNew(path string, content []byte) (bool, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := file.Write(content); err != nil {
		_ = file.Close()
		return false, err
	}
	return true, file.Close()
}
