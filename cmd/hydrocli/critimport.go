package main

import (
	"context"
	"flag"

	"github.com/tigerroll/hydrocli/pkg/hydro/commands/critimport"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

func runCritimport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("critimport", flag.ExitOnError)
	cf := registerCommonFlags(fs)
	in := fs.String("in", "", "crit file to import")
	dryRun := fs.Bool("dry-run", false, "log the would-be group assignments instead of storing them")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return exception.Newf(exception.KindConfig, "cmd", "critimport requires -in")
	}

	cfg, err := loadConfig(cf)
	if err != nil {
		return err
	}
	return runApp(ctx, cfg, func(ctx context.Context, deps appDeps) error {
		n, err := critimport.NewRunner(deps.Session).Import(ctx, *in, *dryRun)
		if err != nil {
			return err
		}
		logger.Infof("imported %d sensor bindings from %s", n, *in)
		return nil
	})
}
