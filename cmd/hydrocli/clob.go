package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tigerroll/hydrocli/pkg/hydro/commands/clob"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

func runClob(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: hydrocli clob <upload|update|download|delete|list> [flags]")
		return exception.Newf(exception.KindConfig, "cmd", "clob requires an action")
	}
	action, rest := args[0], args[1:]

	switch action {
	case "upload", "update":
		fs := flag.NewFlagSet("clob "+action, flag.ExitOnError)
		cf := registerCommonFlags(fs)
		in := fs.String("in", "", "text file to upload")
		id := fs.String("id", "", "clob ID")
		desc := fs.String("description", "", "clob description")
		overwrite := fs.Bool("overwrite", false, "replace an existing clob with the same ID")
		dryRun := fs.Bool("dry-run", false, "log the would-be payload instead of storing it")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *in == "" || *id == "" {
			return exception.Newf(exception.KindConfig, "cmd", "clob %s requires -in and -id", action)
		}
		cfg, err := loadConfig(cf)
		if err != nil {
			return err
		}
		return runApp(ctx, cfg, func(ctx context.Context, deps appDeps) error {
			params := clob.UploadParams{
				InputFile:   *in,
				ClobID:      *id,
				Description: *desc,
				Overwrite:   *overwrite,
				DryRun:      *dryRun,
			}
			r := clob.NewRunner(deps.Session)
			if action == "update" {
				return r.Update(ctx, params)
			}
			return r.Upload(ctx, params)
		})

	case "download":
		fs := flag.NewFlagSet("clob download", flag.ExitOnError)
		cf := registerCommonFlags(fs)
		id := fs.String("id", "", "clob ID to download")
		out := fs.String("out", "", "destination path (default derived from the ID)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id == "" {
			return exception.Newf(exception.KindConfig, "cmd", "clob download requires -id")
		}
		cfg, err := loadConfig(cf)
		if err != nil {
			return err
		}
		return runApp(ctx, cfg, func(ctx context.Context, deps appDeps) error {
			_, err := clob.NewRunner(deps.Session).Download(ctx, *id, *out)
			return err
		})

	case "delete":
		fs := flag.NewFlagSet("clob delete", flag.ExitOnError)
		cf := registerCommonFlags(fs)
		id := fs.String("id", "", "clob ID to delete")
		dryRun := fs.Bool("dry-run", false, "log the would-be deletion instead of performing it")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id == "" {
			return exception.Newf(exception.KindConfig, "cmd", "clob delete requires -id")
		}
		cfg, err := loadConfig(cf)
		if err != nil {
			return err
		}
		return runApp(ctx, cfg, func(ctx context.Context, deps appDeps) error {
			return clob.NewRunner(deps.Session).Delete(ctx, *id, *dryRun)
		})

	case "list":
		fs := flag.NewFlagSet("clob list", flag.ExitOnError)
		cf := registerCommonFlags(fs)
		like := fs.String("like", "", "regex filter on clob IDs")
		limit := fs.Int("limit", 0, "maximum number of clobs to list (0 for all)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		cfg, err := loadConfig(cf)
		if err != nil {
			return err
		}
		return runApp(ctx, cfg, func(ctx context.Context, deps appDeps) error {
			_, err := clob.NewRunner(deps.Session).List(ctx, *like, *limit)
			return err
		})

	default:
		return exception.Newf(exception.KindConfig, "cmd", "unknown clob action %q", action)
	}
}
