// Package catalog exposes the static data tables bundled with the binary:
// the load profiles the generator understands and the cloud provenance
// templates written into bundles. Tables are parsed once and must be
// treated as read-only by callers.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rowjay/insights-synth/internal/manifest"
)

//go:embed profiles.yaml
var profilesYAML []byte

//go:embed provenance.yaml
var provenanceYAML []byte

// Profile is a named synthetic utilization scenario.
type Profile struct {
	Name               string  `yaml:"name"`
	Description        string  `yaml:"description"`
	CPUUsagePercent    float64 `yaml:"cpu_usage_percent"`
	MemoryUsagePercent float64 `yaml:"memory_usage_percent"`
	Detection          string  `yaml:"detection"`
	Recommendation     string  `yaml:"recommendation"`
}

type File struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
}

type DocumentTemplate struct {
	File              string `yaml:"file"`
	manifest.Document `yaml:",inline"`
}

// Audit names the evidence that marks a bundle as already provenanced.
type Audit struct {
	Probe        string `yaml:"probe"`
	Tool         string `yaml:"tool"`
	ManifestFile string `yaml:"manifest_file"`
}

type Provenance struct {
	CommandsDir      string             `yaml:"commands_dir"`
	Audit            Audit              `yaml:"audit"`
	InstanceIdentity File               `yaml:"instance_identity"`
	Commands         []File             `yaml:"commands"`
	Documents        []DocumentTemplate `yaml:"documents"`
}

var loadProfiles = sync.OnceValues(func() ([]Profile, error) {
	var doc struct {
		Profiles []Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(profilesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse profile catalog: %w", err)
	}
	if len(doc.Profiles) == 0 {
		return nil, fmt.Errorf("profile catalog is empty")
	}
	return doc.Profiles, nil
})

var loadProvenance = sync.OnceValues(func() (*Provenance, error) {
	var p Provenance
	if err := yaml.Unmarshal(provenanceYAML, &p); err != nil {
		return nil, fmt.Errorf("parse provenance catalog: %w", err)
	}
	if p.CommandsDir == "" || p.InstanceIdentity.Name == "" || p.Audit.ManifestFile == "" {
		return nil, fmt.Errorf("provenance catalog is incomplete")
	}
	return &p, nil
})

// Profiles returns the profile table in catalog order.
func Profiles() ([]Profile, error) {
	profiles, err := loadProfiles()
	if err != nil {
		return nil, err
	}
	return append([]Profile(nil), profiles...), nil
}

// LookupProfile returns the named profile or an error listing the valid names.
func LookupProfile(name string) (Profile, error) {
	profiles, err := loadProfiles()
	if err != nil {
		return Profile{}, err
	}
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("unknown pattern %q (supported: %s)", name, strings.Join(ProfileNames(), ", "))
}

func ProfileNames() []string {
	profiles, err := loadProfiles()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return names
}

// ProvenanceTemplates returns the provenance table. The returned value is
// shared; do not modify it.
func ProvenanceTemplates() (*Provenance, error) {
	return loadProvenance()
}

// DocumentFiles lists the manifest file names the templates produce, sorted.
func (p *Provenance) DocumentFiles() []string {
	files := make([]string, 0, len(p.Documents))
	for _, d := range p.Documents {
		files = append(files, d.File)
	}
	sort.Strings(files)
	return files
}
