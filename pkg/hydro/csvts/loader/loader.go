// Package loader orchestrates csv2ts runs: it walks the selected projects,
// ingests each data file, builds the configured interval series and sends
// them to the data service. One failing project or series never stops the
// others; failures are logged, counted and summarized.
package loader

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	csvtsconfig "github.com/tigerroll/hydrocli/pkg/hydro/csvts/config"
	"github.com/tigerroll/hydrocli/pkg/hydro/csvts/export"
	"github.com/tigerroll/hydrocli/pkg/hydro/csvts/ingest"
	"github.com/tigerroll/hydrocli/pkg/hydro/csvts/interval"
	"github.com/tigerroll/hydrocli/pkg/hydro/csvts/series"
	"github.com/tigerroll/hydrocli/pkg/hydro/history"
	"github.com/tigerroll/hydrocli/pkg/hydro/metrics"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const commandName = "csv2ts"

// SeriesStore is the slice of the data-service client the loader needs.
type SeriesStore interface {
	StoreTimeSeries(ctx context.Context, ts client.TimeSeries, storeRule string) error
	Office() string
}

// Params are the per-invocation knobs of a csv2ts run.
type Params struct {
	// DataPath is the root directory data files are resolved under.
	DataPath string
	// DataFile overrides every project's configured file name when set.
	DataFile string
	// Begin is the upper bound of the ingest window.
	Begin time.Time
	// Lookback is the trailing span before Begin within which rows count.
	Lookback time.Duration
	// Timezone names the zone naive timestamps are read in.
	Timezone string
	// Project selects one project key, or "all".
	Project string
	// StoreRule is forwarded to the data service on every store.
	StoreRule string
	// DryRun logs would-be payloads instead of calling the service.
	DryRun bool
	// ExportDir, when set, also writes each project's built series to a
	// Parquet file under this directory.
	ExportDir string
}

// Summary reports what a run did.
type Summary struct {
	ProjectsProcessed int
	ProjectsSkipped   int
	SeriesStored      int
	SeriesFailed      int
}

// Loader runs the csv2ts pipeline.
type Loader struct {
	cfg      *csvtsconfig.GlobalConfig
	store    SeriesStore
	recorder metrics.Recorder
	runs     *history.Store
}

// New creates a Loader. recorder and runs may be the no-op implementations.
func New(cfg *csvtsconfig.GlobalConfig, store SeriesStore, recorder metrics.Recorder, runs *history.Store) *Loader {
	return &Loader{cfg: cfg, store: store, recorder: recorder, runs: runs}
}

// Run executes the pipeline for the selected projects. It returns an error
// only for configuration problems; data and submission failures are logged,
// reflected in the Summary and recorded per series.
func (l *Loader) Run(ctx context.Context, params Params) (Summary, error) {
	var summary Summary

	if err := l.cfg.Validate(params.Project); err != nil {
		return summary, err
	}
	projects, err := l.cfg.SelectProjects(params.Project)
	if err != nil {
		return summary, err
	}

	start := time.Now()
	l.recorder.RecordRunStart(ctx, commandName)
	runID, err := l.runs.StartRun(ctx, commandName, params.Project, params.DryRun)
	if err != nil {
		logger.Warnf("run history unavailable: %v", err)
	}
	logger.Infof("run %s: %d project(s), begin %s, lookback %s",
		runID, len(projects), params.Begin.Format(time.RFC3339), params.Lookback)

	var runErrs *multierror.Error
	for _, key := range projects {
		if err := l.runProject(ctx, runID, key, params, &summary); err != nil {
			logger.Errorf("project %s failed: %v", key, err)
			runErrs = multierror.Append(runErrs, err)
			summary.ProjectsSkipped++
			continue
		}
		summary.ProjectsProcessed++
	}

	status := history.RunStatusCompleted
	if summary.SeriesFailed > 0 || runErrs.ErrorOrNil() != nil {
		status = history.RunStatusFailed
	}
	l.recorder.RecordRunEnd(ctx, commandName, status, time.Since(start))
	if err := l.runs.FinishRun(ctx, runID, status, summary.SeriesStored, summary.SeriesFailed); err != nil {
		logger.Warnf("run history unavailable: %v", err)
	}

	logger.Infof("run %s finished: %d project(s) processed, %d skipped, %d series stored, %d failed",
		runID, summary.ProjectsProcessed, summary.ProjectsSkipped, summary.SeriesStored, summary.SeriesFailed)
	return summary, nil
}

func (l *Loader) runProject(ctx context.Context, runID, key string, params Params, summary *Summary) error {
	project := l.cfg.Projects[key]
	path := l.dataFilePath(project, params)
	logger.Infof("project %s: ingesting %s", key, path)

	parsed, err := ingest.Parse(path, params.Begin, params.Lookback, params.Timezone)
	if err != nil {
		return err
	}
	l.recorder.RecordRowsIngested(ctx, key, len(parsed.Rows))
	if parsed.Empty() {
		return exception.Newf(exception.KindIngest, commandName,
			"no rows in %s within the selected window; check --lookback, --begin and --timezone", path)
	}

	resolved, err := interval.Resolve(l.cfg.Interval, parsed.SortedEpochs())
	if err != nil {
		return err
	}

	built, err := series.Build(parsed, resolved, project.TimeSeries)
	if err != nil {
		return err
	}

	if params.ExportDir != "" {
		if _, err := export.WriteSeries(params.ExportDir, key, built); err != nil {
			logger.Errorf("project %s: parquet export failed: %v", key, err)
		}
	}

	for _, ts := range built {
		l.dispatch(ctx, runID, key, ts, params, summary)
	}
	return nil
}

// dispatch stores or previews one built series. Submission failures are
// contained here so the remaining series still go out.
func (l *Loader) dispatch(ctx context.Context, runID, project string, ts client.TimeSeries, params Params, summary *Summary) {
	ts.OfficeID = l.store.Office()
	missing := 0
	for _, v := range ts.Values {
		if v.Value == nil {
			missing++
		}
	}
	l.recorder.RecordTicksBuilt(ctx, project, ts.Name, len(ts.Values), missing)

	sub := history.SeriesSubmission{
		RunID:        runID,
		SeriesName:   ts.Name,
		Units:        ts.Units,
		StoreRule:    params.StoreRule,
		TickCount:    len(ts.Values),
		MissingCount: missing,
	}

	if params.DryRun {
		payload, err := json.Marshal(ts)
		if err != nil {
			payload = []byte("<unmarshalable>")
		}
		logger.Infof("[dry-run] would store %s with rule %s: %s", ts.Name, params.StoreRule, payload)
		sub.Status = history.SubmissionDryRun
	} else if err := l.store.StoreTimeSeries(ctx, ts, params.StoreRule); err != nil {
		logger.Errorf("failed to store %s: %v", ts.Name, err)
		l.recorder.RecordSeriesFailed(ctx, project, ts.Name)
		summary.SeriesFailed++
		sub.Status = history.SubmissionFailed
		sub.Detail = exception.ExtractMessage(err)
	} else {
		logger.Infof("stored %s (%d values)", ts.Name, len(ts.Values))
		l.recorder.RecordSeriesStored(ctx, project, ts.Name)
		summary.SeriesStored++
		sub.Status = history.SubmissionStored
	}

	if err := l.runs.RecordSubmission(ctx, sub); err != nil {
		logger.Warnf("run history unavailable: %v", err)
	}
}

// dataFilePath resolves the file for a project: an explicit --data-file
// override wins, otherwise the configured dir and file join under the data
// root.
func (l *Loader) dataFilePath(project csvtsconfig.ProjectConfig, params Params) string {
	name := project.File
	if params.DataFile != "" {
		name = params.DataFile
	}
	return filepath.Join(params.DataPath, project.Dir, name)
}
