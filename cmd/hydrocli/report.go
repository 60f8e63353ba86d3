package main

import (
	"context"
	"flag"
	"time"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	"github.com/tigerroll/hydrocli/pkg/hydro/config"
	"github.com/tigerroll/hydrocli/pkg/hydro/reporting"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

func runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	cf := registerCommonFlags(fs)
	reportPath := fs.String("report", "", "path to the report definition file (YAML)")
	out := fs.String("out", "report.html", "output HTML path")
	begin := fs.String("begin", "", "window lower bound (YYYY-MM-DDTHH:MM, UTC)")
	end := fs.String("end", "", "window upper bound (YYYY-MM-DDTHH:MM, UTC, default now)")
	lookback := fs.Duration("lookback", 24*time.Hour, "window span when -begin is not given")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *reportPath == "" {
		return exception.Newf(exception.KindConfig, "cmd", "report requires -report")
	}

	cfg, err := loadConfig(cf)
	if err != nil {
		return err
	}
	rcfg, err := reporting.LoadConfig(*reportPath)
	if err != nil {
		return err
	}

	endTime := time.Now().UTC().Truncate(time.Minute)
	if *end != "" {
		endTime, err = time.Parse(beginLayout, *end)
		if err != nil {
			return exception.Newf(exception.KindConfig, "cmd",
				"invalid -end %q, expected %s", *end, beginLayout)
		}
	}
	beginTime := endTime.Add(-*lookback)
	if *begin != "" {
		beginTime, err = time.Parse(beginLayout, *begin)
		if err != nil {
			return exception.Newf(exception.KindConfig, "cmd",
				"invalid -begin %q, expected %s", *begin, beginLayout)
		}
	}

	return runApp(ctx, cfg, func(ctx context.Context, deps appDeps) error {
		session := deps.Session
		// The report definition may pin its own API root.
		if rcfg.APIRoot != "" && rcfg.APIRoot != cfg.Session.APIRoot {
			session, err = client.NewSession(config.SessionConfig{
				APIRoot: rcfg.APIRoot,
				Office:  rcfg.Office,
			})
			if err != nil {
				return err
			}
		}

		table, err := reporting.BuildTable(ctx, rcfg, reporting.SessionSource{Session: session}, beginTime, endTime)
		if err != nil {
			return err
		}
		return reporting.WriteFile(*out, table)
	})
}
