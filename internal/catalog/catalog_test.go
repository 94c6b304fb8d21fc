package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilesInCatalogOrder(t *testing.T) {
	assert.Equal(t, []string{"idle", "optimized", "under_pressure", "undersized"}, ProfileNames())

	p, err := LookupProfile("undersized")
	require.NoError(t, err)
	assert.Equal(t, "UNDERSIZED", p.Detection)
	assert.InDelta(t, 96.9, p.MemoryUsagePercent, 0.001)
}

func TestLookupProfileUnknown(t *testing.T) {
	_, err := LookupProfile("turbo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idle, optimized, under_pressure, undersized")
}

func TestProfilesReturnsCopy(t *testing.T) {
	a, err := Profiles()
	require.NoError(t, err)
	a[0].Name = "mutated"

	b, err := Profiles()
	require.NoError(t, err)
	assert.Equal(t, "idle", b[0].Name)
}

func TestProvenanceTemplates(t *testing.T) {
	p, err := ProvenanceTemplates()
	require.NoError(t, err)

	assert.Equal(t, "data/insights_commands", p.CommandsDir)
	assert.Contains(t, p.InstanceIdentity.Name, p.Audit.Probe)
	assert.Contains(t, p.InstanceIdentity.Name, p.Audit.Tool)
	assert.Contains(t, p.InstanceIdentity.Content, `"instanceType" : "t3.small"`)
	require.Len(t, p.Commands, 1)
	assert.Equal(t, "aws\nec2", p.Commands[0].Content)

	require.Len(t, p.Documents, 4)
	assert.Contains(t, p.DocumentFiles(), p.Audit.ManifestFile)
	for _, d := range p.Documents {
		assert.Equal(t, d.File, d.Name+".json")
		assert.Nil(t, d.Results.Object.RC)
		assert.Nil(t, d.Results.Object.Args)
		assert.NotEmpty(t, d.Results.Object.Cmd)
	}
	first := p.Documents[0]
	assert.Equal(t, "insights_commands/"+p.InstanceIdentity.Name, first.Results.Object.RelativePath)
}
