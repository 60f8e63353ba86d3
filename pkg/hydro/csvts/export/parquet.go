// Package export writes built time series to local Parquet files, one row
// per grid tick, for offline inspection of exactly what a run produced.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const moduleName = "csvts.export"

// seriesRecord is the Parquet row schema for one tick of one series.
type seriesRecord struct {
	Project    string   `parquet:"name=project,type=BYTE_ARRAY,convertedtype=UTF8"`
	SeriesName string   `parquet:"name=series_name,type=BYTE_ARRAY,convertedtype=UTF8"`
	Units      string   `parquet:"name=units,type=BYTE_ARRAY,convertedtype=UTF8"`
	Time       int64    `parquet:"name=time,type=INT64,convertedtype=TIMESTAMP_MILLIS"`
	Value      *float64 `parquet:"name=value,type=DOUBLE"`
	Quality    int32    `parquet:"name=quality,type=INT32"`
}

// WriteSeries writes every tick of the given series to a Parquet file under
// dir, named after the project. Snappy compression matches what downstream
// column stores expect.
func WriteSeries(dir, project string, series []client.TimeSeries) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", exception.New(exception.KindBuilder, moduleName, "failed to create export directory "+dir, err)
	}
	path := filepath.Join(dir, sanitizeFileName(project)+".parquet")

	f, err := os.Create(path)
	if err != nil {
		return "", exception.New(exception.KindBuilder, moduleName, "failed to create export file "+path, err)
	}
	defer f.Close()

	pw, err := writer.NewParquetWriterFromWriter(f, new(seriesRecord), 4)
	if err != nil {
		return "", exception.New(exception.KindBuilder, moduleName, "failed to create parquet writer", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	rows := 0
	for _, ts := range series {
		for _, v := range ts.Values {
			rec := seriesRecord{
				Project:    project,
				SeriesName: ts.Name,
				Units:      ts.Units,
				Time:       v.EpochMillis,
				Value:      v.Value,
				Quality:    int32(v.Quality),
			}
			if err := pw.Write(rec); err != nil {
				return "", exception.New(exception.KindBuilder, moduleName,
					fmt.Sprintf("failed to write parquet row for series %s", ts.Name), err)
			}
			rows++
		}
	}
	if err := pw.WriteStop(); err != nil {
		return "", exception.New(exception.KindBuilder, moduleName, "failed to finalize parquet file "+path, err)
	}

	logger.Infof("exported %d rows for project %s to %s", rows, project, path)
	return path, nil
}

// sanitizeFileName keeps project keys usable as file names.
func sanitizeFileName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")
	return replacer.Replace(name)
}
