package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	csvtsconfig "github.com/tigerroll/hydrocli/pkg/hydro/csvts/config"
	"github.com/tigerroll/hydrocli/pkg/hydro/csvts/ingest"
	"github.com/tigerroll/hydrocli/pkg/hydro/csvts/loader"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

const beginLayout = "2006-01-02T15:04"

// resolveBegin interprets the -begin flag in the -timezone zone, matching
// how naive timestamps in the data files are read. An empty begin means now.
func resolveBegin(begin, timezone string) (time.Time, error) {
	loc, err := ingest.ResolveLocation(timezone)
	if err != nil {
		return time.Time{}, exception.New(exception.KindConfig, "cmd",
			fmt.Sprintf("unknown -timezone %q", timezone), err)
	}
	if begin == "" {
		return time.Now().In(loc).Truncate(time.Minute), nil
	}
	t, err := time.ParseInLocation(beginLayout, begin, loc)
	if err != nil {
		return time.Time{}, exception.Newf(exception.KindConfig, "cmd",
			"invalid -begin %q, expected %s", begin, beginLayout)
	}
	return t, nil
}

func runCsv2ts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("csv2ts", flag.ExitOnError)
	cf := registerCommonFlags(fs)
	mappingPath := fs.String("mapping", "", "path to the project/series mapping file (YAML or JSON)")
	dataPath := fs.String("data-path", ".", "root directory data files are resolved under")
	dataFile := fs.String("data-file", "", "override every project's configured file name")
	project := fs.String("project", "all", "project key to process, or 'all'")
	begin := fs.String("begin", "", "upper bound of the ingest window (YYYY-MM-DDTHH:MM, default now)")
	lookback := fs.Duration("lookback", 0, "trailing window before begin (default from lookback_days)")
	timezone := fs.String("timezone", "GMT", "time zone naive CSV timestamps are read in")
	storeRule := fs.String("store-rule", client.StoreRuleReplaceAll, "store rule forwarded to the data service")
	dryRun := fs.Bool("dry-run", false, "log would-be payloads instead of storing them")
	exportDir := fs.String("export-parquet", "", "also write built series to Parquet files under this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mappingPath == "" {
		return exception.Newf(exception.KindConfig, "cmd", "csv2ts requires -mapping")
	}

	cfg, err := loadConfig(cf)
	if err != nil {
		return err
	}
	mapping, err := csvtsconfig.Load(*mappingPath)
	if err != nil {
		return err
	}

	beginTime, err := resolveBegin(*begin, *timezone)
	if err != nil {
		return err
	}
	window := *lookback
	if window <= 0 {
		window = time.Duration(cfg.LookbackDays) * 24 * time.Hour
	}

	return runApp(ctx, cfg, func(ctx context.Context, deps appDeps) error {
		l := loader.New(mapping, deps.Session, deps.Recorder, deps.History)
		summary, err := l.Run(ctx, loader.Params{
			DataPath:  *dataPath,
			DataFile:  *dataFile,
			Begin:     beginTime,
			Lookback:  window,
			Timezone:  *timezone,
			Project:   *project,
			StoreRule: *storeRule,
			DryRun:    *dryRun,
			ExportDir: *exportDir,
		})
		if err != nil {
			return err
		}
		if summary.ProjectsProcessed == 0 {
			return exception.Newf(exception.KindIngest, "cmd",
				"no project produced any series (all %d skipped)", summary.ProjectsSkipped)
		}
		return nil
	})
}
