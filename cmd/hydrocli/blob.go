package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tigerroll/hydrocli/pkg/hydro/commands/blob"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

func runBlob(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: hydrocli blob <upload|download|list> [flags]")
		return exception.Newf(exception.KindConfig, "cmd", "blob requires an action")
	}
	action, rest := args[0], args[1:]

	switch action {
	case "upload":
		fs := flag.NewFlagSet("blob upload", flag.ExitOnError)
		cf := registerCommonFlags(fs)
		in := fs.String("in", "", "file to upload")
		id := fs.String("id", "", "blob ID (defaults to the upper-cased file name)")
		desc := fs.String("description", "", "blob description")
		mediaType := fs.String("media-type", "", "MIME type (default guessed from the file name)")
		overwrite := fs.Bool("overwrite", false, "replace an existing blob with the same ID")
		dryRun := fs.Bool("dry-run", false, "log the would-be payload instead of storing it")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *in == "" {
			return exception.Newf(exception.KindConfig, "cmd", "blob upload requires -in")
		}
		cfg, err := loadConfig(cf)
		if err != nil {
			return err
		}
		return runApp(ctx, cfg, func(ctx context.Context, deps appDeps) error {
			return blob.NewRunner(deps.Session).Upload(ctx, blob.UploadParams{
				InputFile:   *in,
				BlobID:      *id,
				Description: *desc,
				MediaType:   *mediaType,
				Overwrite:   *overwrite,
				DryRun:      *dryRun,
			})
		})

	case "download":
		fs := flag.NewFlagSet("blob download", flag.ExitOnError)
		cf := registerCommonFlags(fs)
		id := fs.String("id", "", "blob ID to download")
		out := fs.String("out", "", "destination path (extension derived from the media type when absent)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id == "" {
			return exception.Newf(exception.KindConfig, "cmd", "blob download requires -id")
		}
		cfg, err := loadConfig(cf)
		if err != nil {
			return err
		}
		return runApp(ctx, cfg, func(ctx context.Context, deps appDeps) error {
			_, err := blob.NewRunner(deps.Session).Download(ctx, *id, *out)
			return err
		})

	case "list":
		fs := flag.NewFlagSet("blob list", flag.ExitOnError)
		cf := registerCommonFlags(fs)
		like := fs.String("like", "", "regex filter on blob IDs")
		limit := fs.Int("limit", 0, "maximum number of blobs to list (0 for all)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		cfg, err := loadConfig(cf)
		if err != nil {
			return err
		}
		return runApp(ctx, cfg, func(ctx context.Context, deps appDeps) error {
			_, err := blob.NewRunner(deps.Session).List(ctx, *like, *limit)
			return err
		})

	default:
		return exception.Newf(exception.KindConfig, "cmd", "unknown blob action %q", action)
	}
}
