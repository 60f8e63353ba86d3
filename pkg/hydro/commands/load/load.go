// Package load implements the load subcommand: copying locations, location
// groups and time-series identifiers from one data-service instance to
// another, typically production into a local test stack.
package load

import (
	"context"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const moduleName = "commands.load"

// Endpoints name the source and target instances of a copy.
type Endpoints struct {
	SourceAPIRoot string
	SourceOffice  string
	TargetAPIRoot string
	TargetOffice  string
}

// Validate rejects copies that would read from and write to the same system.
// The same root with different offices is allowed but flagged, since it is
// usually a typo.
func (e Endpoints) Validate() error {
	sourceRoot := normalizeRoot(e.SourceAPIRoot)
	targetRoot := normalizeRoot(e.TargetAPIRoot)
	sourceOffice := strings.ToUpper(strings.TrimSpace(e.SourceOffice))
	targetOffice := strings.ToUpper(strings.TrimSpace(e.TargetOffice))

	sameRoot := sourceRoot != "" && sourceRoot == targetRoot
	sameOffice := sourceOffice != "" && sourceOffice == targetOffice

	if sameRoot && sameOffice {
		return exception.Newf(exception.KindConfig, moduleName,
			"circular reference: source and target endpoints are identical (URL and office); change one of them")
	}
	if sameRoot {
		logger.Warnf("source and target use the same API root with different offices; double-check intent")
	}
	logger.Infof("source: %s (office=%s)", sourceRoot, sourceOffice)
	logger.Infof("target: %s (office=%s)", targetRoot, targetOffice)
	return nil
}

// normalizeRoot lowercases the scheme and host and strips a trailing slash
// so textual variants of the same root compare equal.
func normalizeRoot(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.TrimRight(strings.ToLower(raw), "/")
	}
	path := strings.TrimRight(u.Path, "/")
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + path
}

// Runner copies metadata between two sessions.
type Runner struct {
	source *client.Session
	target *client.Session
}

// NewRunner creates a load Runner over validated endpoints.
func NewRunner(source, target *client.Session) *Runner {
	return &Runner{source: source, target: target}
}

// Result counts what a copy did.
type Result struct {
	Fetched int
	Stored  int
	Errors  int
}

// CopyLocations copies locations matching like and the given kind filters.
// Individual store failures are counted and the copy continues; the combined
// error is returned so the caller can exit non-zero when anything failed.
func (r *Runner) CopyLocations(ctx context.Context, like string, kindLikes []string, dryRun bool) (Result, error) {
	var result Result
	if len(kindLikes) == 0 {
		kindLikes = []string{""}
	}

	var names []string
	seen := map[string]bool{}
	for _, kind := range kindLikes {
		entries, err := r.source.GetLocationsCatalog(ctx, r.source.Office(), like, kind)
		if err != nil {
			return result, err
		}
		for _, entry := range entries {
			if !seen[entry.Name] {
				seen[entry.Name] = true
				names = append(names, entry.Name)
			}
		}
	}
	if len(names) == 0 {
		logger.Infof("no locations matched on the source")
		return result, nil
	}

	locations, err := r.source.GetLocations(ctx, r.source.Office(), names)
	if err != nil {
		return result, err
	}
	result.Fetched = len(locations)
	logger.Infof("fetched %d location(s) from source", len(locations))

	var errs *multierror.Error
	for _, loc := range locations {
		if dryRun {
			logger.Infof("[dry-run] would store location %s to %s (%s)",
				loc.Name(), r.target.APIRoot(), r.target.Office())
			continue
		}
		if err := r.target.StoreLocation(ctx, loc, false); err != nil {
			logger.Errorf("failed to store location %s: %v", loc.Name(), err)
			errs = multierror.Append(errs, err)
			result.Errors++
			continue
		}
		result.Stored++
	}
	return result, errs.ErrorOrNil()
}

// CopyLocationGroups copies every location group from source to target.
func (r *Runner) CopyLocationGroups(ctx context.Context, dryRun bool) (Result, error) {
	var result Result
	groups, err := r.source.GetLocationGroups(ctx, r.source.Office())
	if err != nil {
		return result, err
	}
	result.Fetched = len(groups)
	logger.Infof("fetched %d location group(s) from source", len(groups))

	var errs *multierror.Error
	for _, group := range groups {
		id, _ := group["id"].(string)
		if dryRun {
			logger.Infof("[dry-run] would store location group %s to %s", id, r.target.APIRoot())
			continue
		}
		if err := r.target.StoreLocationGroup(ctx, group, false); err != nil {
			logger.Errorf("failed to store location group %s: %v", id, err)
			errs = multierror.Append(errs, err)
			result.Errors++
			continue
		}
		result.Stored++
	}
	return result, errs.ErrorOrNil()
}

// CopyTimeSeriesIdentifiers copies identifier descriptors matching idRegex.
// Only identifiers whose location already exists in the target catalog are
// copied, keeping orphaned descriptors out of the target.
func (r *Runner) CopyTimeSeriesIdentifiers(ctx context.Context, idRegex string, dryRun bool) (Result, error) {
	var result Result
	ids, err := r.source.GetTimeSeriesIdentifiers(ctx, r.source.Office(), idRegex)
	if err != nil {
		return result, err
	}

	entries, err := r.target.GetLocationsCatalog(ctx, r.target.Office(), "", "")
	if err != nil {
		return result, err
	}
	known := make(map[string]bool, len(entries))
	for _, entry := range entries {
		known[entry.Name] = true
	}

	var kept []client.TimeSeriesIdentifier
	for _, id := range ids {
		if known[id.LocationID()] {
			kept = append(kept, id)
		}
	}
	result.Fetched = len(kept)
	logger.Infof("found %d timeseries identifier(s) to copy", len(kept))

	var errs *multierror.Error
	for _, id := range kept {
		if dryRun {
			logger.Infof("[dry-run] would store timeseries identifier %s to %s",
				id.TimeSeriesID, r.target.APIRoot())
			continue
		}
		if err := r.target.StoreTimeSeriesIdentifier(ctx, id, false); err != nil {
			logger.Errorf("failed to store timeseries identifier %s: %v", id.TimeSeriesID, err)
			errs = multierror.Append(errs, err)
			result.Errors++
			continue
		}
		result.Stored++
	}
	return result, errs.ErrorOrNil()
}
