package provenance

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowjay/insights-synth/internal/catalog"
	"github.com/rowjay/insights-synth/internal/errs"
	"github.com/rowjay/insights-synth/internal/manifest"
)

func newBundle(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "2024-01-01T00-00-00")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data", "var", "log", "pcp", "pmlogger"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "meta_data"), 0o755))
	return root
}

func templates(t *testing.T) *catalog.Provenance {
	t.Helper()
	tmpl, err := catalog.ProvenanceTemplates()
	require.NoError(t, err)
	return tmpl
}

func TestAuditEmptyBundle(t *testing.T) {
	root := newBundle(t)
	f := Audit(root)
	assert.False(t, f.CommandOutput)
	assert.False(t, f.ManifestEntry)
	assert.False(t, HasProvenance(root))
}

func TestAuditNeedsBothPieces(t *testing.T) {
	root := newBundle(t)
	tmpl := templates(t)

	commands := filepath.Join(root, "data", "insights_commands")
	require.NoError(t, os.MkdirAll(commands, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(commands, "curl_x_instance-identity.document_y"), []byte("{}"), 0o644))
	f := Audit(root)
	assert.True(t, f.CommandOutput)
	assert.False(t, f.Present())

	require.NoError(t, os.WriteFile(filepath.Join(root, "meta_data", tmpl.Audit.ManifestFile), []byte("{}"), 0o644))
	assert.True(t, HasProvenance(root))
}

func TestAuditIgnoresOtherTools(t *testing.T) {
	root := newBundle(t)
	commands := filepath.Join(root, "data", "insights_commands")
	require.NoError(t, os.MkdirAll(commands, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(commands, "wget_instance-identity.document"), nil, 0o644))

	assert.False(t, Audit(root).CommandOutput)
}

func TestAuditMissingRoot(t *testing.T) {
	assert.False(t, HasProvenance(filepath.Join(t.TempDir(), "nope")))
}

func TestInjectThenAudit(t *testing.T) {
	root := newBundle(t)
	tmpl := templates(t)

	report, err := Inject(root)
	require.NoError(t, err)
	assert.Len(t, report.Commands, 1+len(tmpl.Commands))
	assert.Len(t, report.Documents, 4)
	assert.Empty(t, report.Skipped)
	assert.True(t, HasProvenance(root))

	doc, err := os.ReadFile(filepath.Join(root, "data", "insights_commands", tmpl.InstanceIdentity.Name))
	require.NoError(t, err)
	assert.Equal(t, tmpl.InstanceIdentity.Content, string(doc))

	cloud, err := os.ReadFile(filepath.Join(root, "data", "insights_commands", "cloud-init_query_-f_cloud_name_platform"))
	require.NoError(t, err)
	assert.Equal(t, "aws\nec2", string(cloud))

	for _, name := range tmpl.DocumentFiles() {
		assert.FileExists(t, filepath.Join(root, "meta_data", name))
	}
}

func TestInjectKeepsExistingArtifacts(t *testing.T) {
	root := newBundle(t)
	tmpl := templates(t)
	existing := filepath.Join(root, "meta_data", tmpl.Audit.ManifestFile)
	require.NoError(t, os.WriteFile(existing, []byte(`{"name":"original"}`), 0o644))

	report, err := Inject(root)
	require.NoError(t, err)
	assert.Equal(t, []string{tmpl.Audit.ManifestFile}, report.Skipped)
	assert.Len(t, report.Documents, 3)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"original"}`, string(data))
}

func TestInjectRequiresManifestDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "bundle")
	require.NoError(t, os.MkdirAll(root, 0o755))

	_, err := Inject(root)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindStructure))
	assert.NoDirExists(t, filepath.Join(root, "data", "insights_commands"))
}

func TestInjectedDocumentsParse(t *testing.T) {
	root := newBundle(t)
	tmpl := templates(t)
	_, err := Inject(root)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "meta_data", tmpl.Audit.ManifestFile))
	require.NoError(t, err)
	var doc manifest.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "insights.specs.Specs.aws_instance_id_doc", doc.Name)
	assert.Equal(t, "insights.core.spec_factory.CommandOutputProvider", doc.Results.Type)
	assert.Equal(t, "insights_commands/"+tmpl.InstanceIdentity.Name, doc.Results.Object.RelativePath)
	assert.False(t, doc.Results.Object.SaveAs)
	assert.Nil(t, doc.Results.Object.RC)
	assert.Empty(t, doc.Errors)
}
