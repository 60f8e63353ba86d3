// Package critimport reads a SHEF crit file and loads its sensor-to-series
// mappings into the data service's SHEF acquisition time-series group. Each
// crit line binds a SHEF sensor key to a time-series identifier:
//
//	KEYS.HG.Z=Keystone.Stage.Inst.15Minutes.0.Raw;units=ft
//
// Everything after the first semicolon is carried along in the alias so the
// acquisition process keeps its per-sensor options.
package critimport

import (
	"bufio"
	"context"
	"os"
	"sort"
	"strings"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const moduleName = "commands.critimport"

// Group identifiers the SHEF acquisition process reads from.
const (
	GroupID    = "SHEF Data Acquisition"
	CategoryID = "Data Acquisition"
)

// Entry is one parsed crit line.
type Entry struct {
	// Alias is the SHEF sensor key plus any options after the series ID.
	Alias string
	// TimeSeriesID is the destination series for that sensor.
	TimeSeriesID string
}

// ParseFile reads a crit file. Blank lines and lines starting with '#' or
// '//' are skipped. A repeated time-series ID keeps the last binding, the
// same way repeated rows behave elsewhere in this tool.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, exception.New(exception.KindIngest, moduleName, "failed to open crit file "+path, err)
	}
	defer f.Close()

	byTSID := make(map[string]Entry)
	var order []string

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		entry, ok := parseLine(line)
		if !ok {
			logger.Warnf("%s line %d: not a crit entry, skipped: %q", path, lineNo, line)
			continue
		}
		if _, seen := byTSID[entry.TimeSeriesID]; !seen {
			order = append(order, entry.TimeSeriesID)
		}
		byTSID[entry.TimeSeriesID] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, exception.New(exception.KindIngest, moduleName, "failed to read crit file "+path, err)
	}

	entries := make([]Entry, 0, len(byTSID))
	for _, tsid := range order {
		entries = append(entries, byTSID[tsid])
	}
	return entries, nil
}

// parseLine splits "SENSOR=Timeseries.ID;opts" into an Entry. The alias is
// the sensor key, with the options re-attached after a colon when present.
func parseLine(line string) (Entry, bool) {
	eq := strings.Index(line, "=")
	if eq <= 0 {
		return Entry{}, false
	}
	sensor := strings.TrimSpace(line[:eq])
	rest := strings.TrimSpace(line[eq+1:])
	if sensor == "" || rest == "" {
		return Entry{}, false
	}

	tsid := rest
	options := ""
	if semi := strings.Index(rest, ";"); semi >= 0 {
		tsid = strings.TrimSpace(rest[:semi])
		options = strings.TrimSpace(rest[semi+1:])
	}
	if tsid == "" {
		return Entry{}, false
	}

	alias := sensor
	if options != "" {
		alias = sensor + ":" + options
	}
	return Entry{Alias: alias, TimeSeriesID: tsid}, true
}

// Runner stores parsed crit entries as a time-series group.
type Runner struct {
	session *client.Session
}

// NewRunner creates a crit import Runner.
func NewRunner(session *client.Session) *Runner {
	return &Runner{session: session}
}

// Import parses path and replaces the SHEF acquisition group's assignments
// with its entries. In dry-run mode the assignments are logged instead.
func (r *Runner) Import(ctx context.Context, path string, dryRun bool) (int, error) {
	entries, err := ParseFile(path)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, exception.Newf(exception.KindIngest, moduleName, "crit file %s contains no entries", path)
	}
	logger.Infof("parsed %d crit entr(ies) from %s", len(entries), path)

	office := r.session.Office()
	assigned := make([]client.GroupAssignment, 0, len(entries))
	for _, entry := range entries {
		assigned = append(assigned, client.GroupAssignment{
			OfficeID:     office,
			TimeSeriesID: entry.TimeSeriesID,
			Alias:        entry.Alias,
		})
	}
	sort.Slice(assigned, func(i, j int) bool { return assigned[i].TimeSeriesID < assigned[j].TimeSeriesID })

	group := client.TimeSeriesGroup{
		OfficeID:         office,
		ID:               GroupID,
		Description:      "SHEF sensor bindings imported from " + path,
		CategoryID:       CategoryID,
		CategoryOfficeID: office,
		AssignedSeries:   assigned,
	}

	if dryRun {
		for _, a := range assigned {
			logger.Infof("[dry-run] would assign %s -> %s", a.Alias, a.TimeSeriesID)
		}
		return len(assigned), nil
	}

	if err := r.session.StoreTimeSeriesGroup(ctx, group, false); err != nil {
		return 0, err
	}
	logger.Infof("stored group %s with %d assignment(s)", GroupID, len(assigned))
	return len(assigned), nil
}
