// Package ingest reads a delimited data file into timestamp-keyed rows.
// The first line is the header; every following line is keyed by the epoch
// second of its first column. Rows outside the lookback window are dropped
// and a later row with the same timestamp replaces an earlier one.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const moduleName = "csvts.ingest"

// ParsedFile is the result of ingesting one data file.
type ParsedFile struct {
	// Header holds the column names from the first line, in file order.
	Header []string
	// Rows maps an epoch second to the raw row observed at that time.
	Rows map[int64][]string
}

// Empty reports whether no rows survived the window filter.
func (p *ParsedFile) Empty() bool {
	return len(p.Rows) == 0
}

// HeaderIndex maps lower-cased, trimmed column names to their positional
// index, the form the expression evaluator consumes.
func (p *ParsedFile) HeaderIndex() map[string]int {
	m := make(map[string]int, len(p.Header))
	for i, col := range p.Header {
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

// SortedEpochs returns the retained epoch seconds in ascending order.
func (p *ParsedFile) SortedEpochs() []int64 {
	epochs := make([]int64, 0, len(p.Rows))
	for e := range p.Rows {
		epochs = append(epochs, e)
	}
	sort.Slice(epochs, func(i, j int) bool { return epochs[i] < epochs[j] })
	return epochs
}

// timestampLayouts are tried in order against the first cell of each row.
// Layouts without a zone designator are interpreted in the configured zone.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

// Parse reads filePath and returns its header plus the rows whose timestamp
// t satisfies begin - lookback <= t <= begin. Naive timestamps are read in
// timezoneName ("GMT" and "" mean UTC). Rows with an unparseable timestamp
// are skipped with a warning, matching the tolerance for partial files.
func Parse(filePath string, begin time.Time, lookback time.Duration, timezoneName string) (*ParsedFile, error) {
	loc, err := ResolveLocation(timezoneName)
	if err != nil {
		return nil, exception.New(exception.KindIngest, moduleName,
			fmt.Sprintf("unknown timezone %q", timezoneName), err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, exception.New(exception.KindIngest, moduleName, "failed to open data file "+filePath, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, exception.New(exception.KindIngest, moduleName, "failed to read data file "+filePath, err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, exception.Newf(exception.KindIngest, moduleName, "data file %s has no header row", filePath)
	}

	boundary := begin.Add(-lookback)
	logger.Debugf("ingest window: %s .. %s", boundary.Format(time.RFC3339), begin.Format(time.RFC3339))

	parsed := &ParsedFile{
		Header: records[0],
		Rows:   make(map[int64][]string),
	}
	for lineNo, row := range records[1:] {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		ts, ok := parseTimestamp(row[0], loc)
		if !ok {
			logger.Warnf("%s line %d: unparseable timestamp %q, row skipped", filePath, lineNo+2, row[0])
			continue
		}
		if ts.Before(boundary) || ts.After(begin) {
			continue
		}
		// Last write wins on duplicate timestamps.
		parsed.Rows[ts.Unix()] = row
	}

	logger.Debugf("ingested %d rows from %s", len(parsed.Rows), filePath)
	return parsed, nil
}

// ResolveLocation maps a timezone name to a time.Location. "GMT" is accepted
// as a synonym for UTC even on hosts without a GMT zone file. The command
// layer uses the same resolution for flag values like -begin.
func ResolveLocation(name string) (*time.Location, error) {
	switch name {
	case "", "GMT", "UTC":
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func parseTimestamp(cell string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
