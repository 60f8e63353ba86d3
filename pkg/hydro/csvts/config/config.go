// Package config holds the csv2ts loader configuration: the sampling
// interval and, per project, the data file and the output time-series
// definitions with their column expressions.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

const moduleName = "csvts.config"

// ColumnSpec defines one output time-series derived from the CSV columns.
type ColumnSpec struct {
	// Columns is the arithmetic expression over input column names that
	// produces this series' value for a row. Required.
	Columns string `yaml:"columns" json:"columns"`
	// Units is the unit label attached to stored values.
	Units string `yaml:"units" json:"units"`
	// Precision is the number of decimal places values are rounded to.
	// nil means the default of 2.
	Precision *int `yaml:"precision" json:"precision"`
}

// DecimalPlaces returns the configured precision, defaulting to 2.
func (c ColumnSpec) DecimalPlaces() int {
	if c.Precision == nil {
		return 2
	}
	return *c.Precision
}

// ProjectConfig describes one project's data file and its output series.
type ProjectConfig struct {
	// Dir is an optional sub-path under the data root where the file lives.
	Dir string `yaml:"dir" json:"dir"`
	// File is the CSV file name. Overridable per invocation.
	File string `yaml:"file" json:"file"`
	// TimeSeries maps an output series name to its definition.
	TimeSeries map[string]ColumnSpec `yaml:"timeseries" json:"timeseries"`
}

// GlobalConfig is the root csv2ts configuration.
type GlobalConfig struct {
	// Interval is the sampling interval in seconds. When absent it is
	// inferred from the data per project.
	Interval int `yaml:"interval" json:"interval"`
	// Projects maps a project key to its configuration.
	Projects map[string]ProjectConfig `yaml:"projects" json:"projects"`
}

// Load reads a loader configuration from a YAML or JSON file.
// JSON is accepted because YAML 1.2 is a superset; legacy configurations were
// written as JSON.
func Load(path string) (*GlobalConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, exception.New(exception.KindConfig, moduleName, "failed to read config file "+path, err)
	}
	var cfg GlobalConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, exception.New(exception.KindConfig, moduleName, "failed to parse config file "+path, err)
	}
	return &cfg, nil
}

// ProjectKeys returns the configured project keys.
func (g *GlobalConfig) ProjectKeys() []string {
	keys := make([]string, 0, len(g.Projects))
	for k := range g.Projects {
		keys = append(keys, k)
	}
	return keys
}
