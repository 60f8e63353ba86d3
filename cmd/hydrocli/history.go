package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	cf := registerCommonFlags(fs)
	limit := fs.Int("limit", 20, "maximum number of runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(cf)
	if err != nil {
		return err
	}
	return runApp(ctx, cfg, func(ctx context.Context, deps appDeps) error {
		if !deps.History.Enabled() {
			return exception.Newf(exception.KindConfig, "cmd",
				"run history is not enabled (set state.enabled and state.connections)")
		}
		runs, err := deps.History.RecentRuns(ctx, *limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN ID\tCOMMAND\tPROJECT\tSTATUS\tSTARTED\tSTORED\tFAILED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
				r.ID, r.Command, r.Project, r.Status,
				r.StartedAt.Format("2006-01-02 15:04:05"), r.SeriesStored, r.SeriesFailed)
		}
		return w.Flush()
	})
}
