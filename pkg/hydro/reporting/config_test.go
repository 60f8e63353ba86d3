package reporting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

func writeReportConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigScalarAndMapProjects(t *testing.T) {
	path := writeReportConfig(t, `
office: SWT
report:
  district: Tulsa District
projects:
  - KEYS
  - location_id: PENS
    href: https://example.com/pens
    office: SWL
columns:
  - title: Elev
    tsid: "{project}.Elev.Inst.1Hour.0.Ccp-Rev"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Projects, 2)
	assert.Equal(t, "KEYS", cfg.Projects[0].LocationID)
	assert.Empty(t, cfg.Projects[0].Href)
	assert.Equal(t, "PENS", cfg.Projects[1].LocationID)
	assert.Equal(t, "https://example.com/pens", cfg.Projects[1].Href)
	assert.Equal(t, "SWL", cfg.Projects[1].Office)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeReportConfig(t, `
office: SWT
projects:
  - KEYS
columns:
  - tsid: "{project}.Elev.Inst.1Hour.0.Ccp-Rev"
  - title: Stor
    level: "{project}.Stor.Inst.0.Top of Flood"
    unit: ac-ft
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "SWT", cfg.Report.District)
	assert.Equal(t, "Daily Report", cfg.Report.Name)
	assert.Equal(t, DefaultMissing, cfg.Missing)
	assert.Equal(t, DefaultUndefined, cfg.Undefined)

	assert.Equal(t, "Col1", cfg.Columns[0].Title)
	assert.Equal(t, "Col1", cfg.Columns[0].Key)
	assert.Equal(t, DefaultUnit, cfg.Columns[0].Unit)
	assert.Equal(t, "SWT", cfg.Columns[0].Office)
	assert.Equal(t, DefaultMissing, cfg.Columns[0].Missing)

	assert.Equal(t, "Stor", cfg.Columns[1].Title)
	assert.Equal(t, "Stor", cfg.Columns[1].Key)
	assert.Equal(t, "ac-ft", cfg.Columns[1].Unit)
}

func TestLoadConfigRejectsColumnWithoutSource(t *testing.T) {
	path := writeReportConfig(t, `
office: SWT
projects: [KEYS]
columns:
  - title: Elev
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))
}

func TestLoadConfigRejectsColumnWithBothSources(t *testing.T) {
	path := writeReportConfig(t, `
office: SWT
projects: [KEYS]
columns:
  - title: Elev
    tsid: "{project}.Elev.Inst.1Hour.0.Ccp-Rev"
    level: "{project}.Elev.Inst.0.Top of Flood"
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))
}

func TestLoadConfigRejectsEmptyProjects(t *testing.T) {
	path := writeReportConfig(t, `
office: SWT
projects: []
columns:
  - tsid: "{project}.Elev.Inst.1Hour.0.Ccp-Rev"
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))
}

func TestLoadConfigHeaderLeafMismatchIsNotFatal(t *testing.T) {
	path := writeReportConfig(t, `
office: SWT
projects: [KEYS]
columns:
  - title: Elev
    tsid: "{project}.Elev.Inst.1Hour.0.Ccp-Rev"
  - title: Flow
    tsid: "{project}.Flow.Inst.1Hour.0.Ccp-Rev"
header:
  rows:
    - - text: Lake Levels
        colspan: 3
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Header)
	assert.Equal(t, "Project", cfg.Header.Project.Text)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))
}

func TestExpandTemplate(t *testing.T) {
	assert.Equal(t, "KEYS.Elev.Inst.1Hour.0.Ccp-Rev",
		expandTemplate("{project}.Elev.Inst.1Hour.0.Ccp-Rev", "KEYS"))
	assert.Equal(t, "no placeholder", expandTemplate("no placeholder", "KEYS"))
}
