package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

func writeTempConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeTempConfig(t, "loader.yaml", `
interval: 3600
projects:
  keystone:
    dir: keystone
    file: keystone.csv
    timeseries:
      Keystone.Flow-Out.Ave.1Hour.1Hour.Comp:
        columns: gate1_flow + gate2_flow
        units: cfs
        precision: 1
      Keystone.Elev.Inst.1Hour.0.Comp:
        columns: pool_elev
        units: ft
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3600, cfg.Interval)
	require.Contains(t, cfg.Projects, "keystone")

	project := cfg.Projects["keystone"]
	assert.Equal(t, "keystone.csv", project.File)
	require.Len(t, project.TimeSeries, 2)

	flow := project.TimeSeries["Keystone.Flow-Out.Ave.1Hour.1Hour.Comp"]
	assert.Equal(t, "gate1_flow + gate2_flow", flow.Columns)
	assert.Equal(t, 1, flow.DecimalPlaces())

	elev := project.TimeSeries["Keystone.Elev.Inst.1Hour.0.Comp"]
	assert.Equal(t, 2, elev.DecimalPlaces(), "precision defaults to 2")
}

func TestLoad_JSONCompatibility(t *testing.T) {
	path := writeTempConfig(t, "loader.json", `{
  "interval": 900,
  "projects": {
    "hulah": {
      "file": "hulah.csv",
      "timeseries": {
        "Hulah.Stage.Inst.15Minutes.0.Raw": {"columns": "stage", "units": "ft"}
      }
    }
  }
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 900, cfg.Interval)
	assert.Equal(t, "stage", cfg.Projects["hulah"].TimeSeries["Hulah.Stage.Inst.15Minutes.0.Raw"].Columns)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))
}

func validConfig() *GlobalConfig {
	return &GlobalConfig{
		Interval: 3600,
		Projects: map[string]ProjectConfig{
			"keystone": {
				File: "keystone.csv",
				TimeSeries: map[string]ColumnSpec{
					"Keystone.Flow-Out.Ave.1Hour.1Hour.Comp": {Columns: "gate1 + gate2", Units: "cfs"},
				},
			},
			"hulah": {
				File: "hulah.csv",
				TimeSeries: map[string]ColumnSpec{
					"Hulah.Stage.Inst.1Hour.0.Raw": {Columns: "stage", Units: "ft"},
				},
			},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate("all"))
	assert.NoError(t, validConfig().Validate(""))
	assert.NoError(t, validConfig().Validate("keystone"))
}

func TestValidate_NoProjects(t *testing.T) {
	cfg := &GlobalConfig{}
	err := cfg.Validate("all")
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))
}

func TestValidate_UnknownProject(t *testing.T) {
	err := validConfig().Validate("oologah")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oologah")
}

func TestValidate_ProjectWithoutSeries(t *testing.T) {
	cfg := validConfig()
	cfg.Projects["empty"] = ProjectConfig{File: "empty.csv"}
	err := cfg.Validate("all")
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))
}

func TestValidate_MissingColumnsExpression(t *testing.T) {
	cfg := validConfig()
	project := cfg.Projects["keystone"]
	project.TimeSeries["Keystone.Elev.Inst.1Hour.0.Comp"] = ColumnSpec{Units: "ft"}
	cfg.Projects["keystone"] = project

	err := cfg.Validate("keystone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Keystone.Elev.Inst.1Hour.0.Comp")
}

func TestValidate_BadExpressionSyntax(t *testing.T) {
	cfg := validConfig()
	project := cfg.Projects["keystone"]
	project.TimeSeries["Keystone.Flow-Out.Ave.1Hour.1Hour.Comp"] = ColumnSpec{Columns: "gate1 +", Units: "cfs"}
	cfg.Projects["keystone"] = project

	err := cfg.Validate("keystone")
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))
}

func TestSelectProjects_SortedForAll(t *testing.T) {
	keys, err := validConfig().SelectProjects("all")
	require.NoError(t, err)
	assert.Equal(t, []string{"hulah", "keystone"}, keys)
}
