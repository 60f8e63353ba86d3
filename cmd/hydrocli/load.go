package main

import (
	"context"
	"flag"
	"strings"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	"github.com/tigerroll/hydrocli/pkg/hydro/commands/load"
	"github.com/tigerroll/hydrocli/pkg/hydro/config"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

// runLoad copies office metadata from a source instance into the configured
// (target) instance. Any per-object copy failure makes the command exit
// non-zero after all objects were attempted.
func runLoad(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	cf := registerCommonFlags(fs)
	sourceRoot := fs.String("source-api-root", "", "API root of the instance to copy from")
	sourceKey := fs.String("source-api-key", "", "API key for the source instance (usually not needed)")
	sourceOffice := fs.String("source-office", "", "office to copy from (default: target office)")
	what := fs.String("what", "all", "comma-separated: locations, location-groups, timeseries, all")
	like := fs.String("like", "", "regex filter on location IDs")
	kinds := fs.String("kinds", "", "comma-separated location kinds to copy (e.g. PROJECT,STREAM_GAGE)")
	tsLike := fs.String("ts-like", "", "regex filter on time-series identifiers")
	dryRun := fs.Bool("dry-run", false, "log would-be stores instead of performing them")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sourceRoot == "" {
		return exception.Newf(exception.KindConfig, "cmd", "load requires -source-api-root")
	}

	cfg, err := loadConfig(cf)
	if err != nil {
		return err
	}
	srcOffice := *sourceOffice
	if srcOffice == "" {
		srcOffice = cfg.Session.Office
	}

	endpoints := load.Endpoints{
		SourceAPIRoot: *sourceRoot,
		SourceOffice:  srcOffice,
		TargetAPIRoot: cfg.Session.APIRoot,
		TargetOffice:  cfg.Session.Office,
	}
	if err := endpoints.Validate(); err != nil {
		return err
	}

	source, err := client.NewSession(config.SessionConfig{
		APIRoot: *sourceRoot,
		APIKey:  *sourceKey,
		Office:  srcOffice,
	})
	if err != nil {
		return err
	}

	selected := map[string]bool{}
	for _, w := range strings.Split(*what, ",") {
		selected[strings.TrimSpace(strings.ToLower(w))] = true
	}
	all := selected["all"]

	var kindLikes []string
	if *kinds != "" {
		for _, k := range strings.Split(*kinds, ",") {
			kindLikes = append(kindLikes, strings.TrimSpace(k))
		}
	}

	return runApp(ctx, cfg, func(ctx context.Context, deps appDeps) error {
		runner := load.NewRunner(source, deps.Session)

		var categories []copyCategory
		if all || selected["locations"] {
			categories = append(categories, copyCategory{"locations", func() (load.Result, error) {
				return runner.CopyLocations(ctx, *like, kindLikes, *dryRun)
			}})
		}
		if all || selected["location-groups"] {
			categories = append(categories, copyCategory{"location groups", func() (load.Result, error) {
				return runner.CopyLocationGroups(ctx, *dryRun)
			}})
		}
		if all || selected["timeseries"] {
			categories = append(categories, copyCategory{"timeseries identifiers", func() (load.Result, error) {
				return runner.CopyTimeSeriesIdentifiers(ctx, *tsLike, *dryRun)
			}})
		}

		failed := runCopyCategories(categories)
		if failed > 0 {
			logger.Errorf("load finished with %d copy failures", failed)
			return exception.Newf(exception.KindClient, "cmd", "%d objects failed to copy", failed)
		}
		return nil
	})
}

// copyCategory names one class of objects a load run copies.
type copyCategory struct {
	name string
	run  func() (load.Result, error)
}

// runCopyCategories attempts every category and returns the total failure
// count. A category that errors without per-object counts still counts once;
// no failure stops the remaining categories.
func runCopyCategories(categories []copyCategory) int {
	failed := 0
	for _, c := range categories {
		res, err := c.run()
		failed += res.Errors
		if err != nil {
			logger.Errorf("%s copy finished with errors: %v", c.name, err)
			if res.Errors == 0 {
				failed++
			}
		}
	}
	return failed
}
