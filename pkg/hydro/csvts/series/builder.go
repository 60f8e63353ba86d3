// Package series builds fixed-cadence time series from ingested rows. Each
// configured output series walks a uniform grid from the first to the last
// retained timestamp; ticks with a source row evaluate the column expression
// and the rest emit nulls flagged as missing.
package series

import (
	"sort"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	"github.com/tigerroll/hydrocli/pkg/hydro/csvts/config"
	"github.com/tigerroll/hydrocli/pkg/hydro/csvts/expr"
	"github.com/tigerroll/hydrocli/pkg/hydro/csvts/ingest"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const moduleName = "csvts.series"

// Quality codes attached to each output value.
const (
	QualityGood    = 3
	QualityMissing = 5
)

// Build produces one time series per entry in specs. intervalSeconds must be
// positive and parsed must contain at least one row; violating either is a
// builder error because the caller resolved both beforehand.
func Build(parsed *ingest.ParsedFile, intervalSeconds int64, specs map[string]config.ColumnSpec) ([]client.TimeSeries, error) {
	if intervalSeconds <= 0 {
		return nil, exception.Newf(exception.KindBuilder, moduleName,
			"interval must be positive, got %d", intervalSeconds)
	}
	if parsed == nil || len(parsed.Header) == 0 || parsed.Empty() {
		return nil, exception.Newf(exception.KindBuilder, moduleName,
			"no rows to build from; check the --lookback period, --begin time and --timezone")
	}

	epochs := parsed.SortedEpochs()
	startEpoch := epochs[0]
	endEpoch := epochs[len(epochs)-1]
	headerIndex := parsed.HeaderIndex()

	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	built := make([]client.TimeSeries, 0, len(names))
	for _, name := range names {
		spec := specs[name]
		e, err := expr.Compile(spec.Columns)
		if err != nil {
			return nil, exception.New(exception.KindBuilder, moduleName,
				"series "+name+" has an invalid columns expression", err)
		}

		places := spec.DecimalPlaces()
		var values []client.TimeSeriesValue
		valid := 0
		for epoch := startEpoch; epoch <= endEpoch; epoch += intervalSeconds {
			value := e.Evaluate(parsed.Rows[epoch], headerIndex)
			quality := QualityMissing
			if value != nil {
				rounded := expr.RoundHalfEven(*value, places)
				value = &rounded
				quality = QualityGood
				valid++
			}
			values = append(values, client.TimeSeriesValue{
				EpochMillis: epoch * 1000,
				Value:       value,
				Quality:     quality,
			})
		}

		logger.Infof("built timeseries %s with %d/%d valid points", name, valid, len(values))
		built = append(built, client.TimeSeries{
			Name:   name,
			Units:  spec.Units,
			Values: values,
		})
	}
	return built, nil
}
