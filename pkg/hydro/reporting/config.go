// Package reporting builds a latest-value status report for a set of
// projects and renders it as an HTML table. Columns name a time series or a
// location level via templates with a {project} placeholder, so one column
// definition covers every project row.
package reporting

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const moduleName = "reporting"

// Placeholder text defaults.
const (
	DefaultMissing   = "----"
	DefaultUndefined = "--NA--"
	DefaultUnit      = "EN"
)

// ReportSpec names the report itself.
type ReportSpec struct {
	District  string `yaml:"district"`
	Name      string `yaml:"name"`
	LogoLeft  string `yaml:"logo_left"`
	LogoRight string `yaml:"logo_right"`
}

// ProjectSpec is one report row.
type ProjectSpec struct {
	LocationID string `yaml:"location_id"`
	Href       string `yaml:"href"`
	Office     string `yaml:"office"`
}

// UnmarshalYAML accepts either a bare location ID string or a mapping.
func (p *ProjectSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.LocationID = value.Value
		return nil
	}
	type plain ProjectSpec
	return value.Decode((*plain)(p))
}

// ColumnSpec is one report column. Exactly one of TSID or Level must be set.
type ColumnSpec struct {
	Title     string `yaml:"title"`
	Key       string `yaml:"key"`
	TSID      string `yaml:"tsid"`
	Level     string `yaml:"level"`
	Unit      string `yaml:"unit"`
	Precision *int   `yaml:"precision"`
	Office    string `yaml:"office"`
	Href      string `yaml:"href"`
	Missing   string `yaml:"missing"`
	Undefined string `yaml:"undefined"`
}

// HeaderCellSpec is one cell of the custom table header.
type HeaderCellSpec struct {
	Text    string `yaml:"text"`
	Colspan int    `yaml:"colspan"`
	Rowspan int    `yaml:"rowspan"`
	Align   string `yaml:"align"`
	Classes string `yaml:"classes"`
}

// TableHeaderSpec describes a multi-row header. The final row's cells must
// spread over exactly one data column each, counting colspans.
type TableHeaderSpec struct {
	Project HeaderCellSpec     `yaml:"project"`
	Rows    [][]HeaderCellSpec `yaml:"rows"`
}

// Config is the root report configuration.
type Config struct {
	Office      string           `yaml:"office"`
	APIRoot     string           `yaml:"cda_api_root"`
	Report      ReportSpec       `yaml:"report"`
	Projects    []ProjectSpec    `yaml:"projects"`
	Columns     []ColumnSpec     `yaml:"columns"`
	Header      *TableHeaderSpec `yaml:"header"`
	Begin       string           `yaml:"begin"`
	End         string           `yaml:"end"`
	DefaultUnit string           `yaml:"default_unit"`
	Missing     string           `yaml:"missing"`
	Undefined   string           `yaml:"undefined"`
	TimeZone    string           `yaml:"time_zone"`
}

// LoadConfig reads a report configuration, fills defaults and validates it.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, exception.New(exception.KindConfig, moduleName, "failed to read report config "+path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, exception.New(exception.KindConfig, moduleName, "failed to parse report config "+path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Office == "" {
		c.Office = os.Getenv("CDA_OFFICE")
	}
	if c.Report.District == "" {
		c.Report.District = c.Office
	}
	if c.Report.Name == "" {
		c.Report.Name = "Daily Report"
	}
	if c.DefaultUnit == "" {
		c.DefaultUnit = DefaultUnit
	}
	if c.Missing == "" {
		c.Missing = DefaultMissing
	}
	if c.Undefined == "" {
		c.Undefined = DefaultUndefined
	}
	for i := range c.Columns {
		col := &c.Columns[i]
		if col.Title == "" {
			col.Title = fmt.Sprintf("Col%d", i+1)
		}
		if col.Key == "" {
			col.Key = col.Title
		}
		if col.Unit == "" {
			col.Unit = c.DefaultUnit
		}
		if col.Office == "" {
			col.Office = c.Office
		}
		if col.Missing == "" {
			col.Missing = c.Missing
		}
		if col.Undefined == "" {
			col.Undefined = c.Undefined
		}
	}
	if c.Header != nil {
		if c.Header.Project.Text == "" {
			c.Header.Project.Text = "Project"
		}
	}
}

func (c *Config) validate() error {
	if len(c.Projects) == 0 {
		return exception.Newf(exception.KindConfig, moduleName, "report config defines no projects")
	}
	for _, col := range c.Columns {
		if col.TSID == "" && col.Level == "" {
			return exception.Newf(exception.KindConfig, moduleName,
				"column %q must have a tsid or a level", col.Title)
		}
		if col.TSID != "" && col.Level != "" {
			return exception.Newf(exception.KindConfig, moduleName,
				"column %q has both a tsid and a level", col.Title)
		}
	}
	if c.Header != nil && len(c.Header.Rows) > 0 {
		last := c.Header.Rows[len(c.Header.Rows)-1]
		leaves := 0
		for _, cell := range last {
			span := cell.Colspan
			if span < 1 {
				span = 1
			}
			leaves += span
		}
		if leaves != len(c.Columns) {
			logger.Warnf("header leaf-count (%d) does not match the number of data columns (%d)",
				leaves, len(c.Columns))
		}
	}
	return nil
}

// expandTemplate substitutes the {project} placeholder.
func expandTemplate(tmpl, project string) string {
	return strings.ReplaceAll(tmpl, "{project}", project)
}
