package config

import (
	"fmt"
	"sort"

	"github.com/tigerroll/hydrocli/pkg/hydro/csvts/expr"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

// Validate checks the structural requirements of the configuration and
// compiles every column expression so syntax errors surface before any file
// is read. selector is a project key, or "all" (or empty) for every project.
// A missing interval is only a warning; it is inferred from the data later.
func (g *GlobalConfig) Validate(selector string) error {
	if len(g.Projects) == 0 {
		return exception.Newf(exception.KindConfig, moduleName, "configuration defines no projects")
	}

	keys, err := g.SelectProjects(selector)
	if err != nil {
		return err
	}

	if g.Interval <= 0 {
		logger.Warnf("no interval configured; it will be inferred from each project's data")
	}

	for _, key := range keys {
		project := g.Projects[key]
		if len(project.TimeSeries) == 0 {
			return exception.Newf(exception.KindConfig, moduleName,
				"project %q defines no timeseries", key)
		}
		for name, spec := range project.TimeSeries {
			if spec.Columns == "" {
				return exception.Newf(exception.KindConfig, moduleName,
					"project %q series %q has no columns expression", key, name)
			}
			if _, err := expr.Compile(spec.Columns); err != nil {
				return exception.New(exception.KindConfig, moduleName,
					fmt.Sprintf("project %q series %q has an invalid columns expression", key, name), err)
			}
		}
	}
	return nil
}

// SelectProjects resolves a project selector to a sorted list of project
// keys. "all" and "" select every project; anything else must name a
// configured project.
func (g *GlobalConfig) SelectProjects(selector string) ([]string, error) {
	if selector == "" || selector == "all" {
		keys := g.ProjectKeys()
		sort.Strings(keys)
		return keys, nil
	}
	if _, ok := g.Projects[selector]; !ok {
		return nil, exception.Newf(exception.KindConfig, moduleName,
			"project %q is not defined in the configuration", selector)
	}
	return []string{selector}, nil
}
