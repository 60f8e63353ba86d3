// Package interval resolves the sampling interval of an ingested file.
// Configuration wins outright; otherwise the interval is inferred from the
// gaps between the first few distinct timestamps.
package interval

import (
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const moduleName = "csvts.interval"

// maxSampledGaps bounds inference cost on large files.
const maxSampledGaps = 10

// Resolve returns the interval in seconds for a project run. configured
// takes precedence when positive. Inference needs at least two distinct
// timestamps; with fewer the project has no usable data and the caller
// should skip it rather than abort the run.
func Resolve(configured int, sortedEpochs []int64) (int64, error) {
	if configured > 0 {
		return int64(configured), nil
	}
	inferred, err := infer(sortedEpochs)
	if err != nil {
		return 0, err
	}
	logger.Warnf("interval not configured, inferred %d seconds from the data", inferred)
	return inferred, nil
}

// infer picks the most frequent gap among the first maxSampledGaps
// consecutive differences, breaking frequency ties toward the smallest gap
// so the result is deterministic for a given timestamp set.
func infer(sortedEpochs []int64) (int64, error) {
	if len(sortedEpochs) < 2 {
		return 0, exception.Newf(exception.KindInterval, moduleName,
			"cannot infer an interval from %d distinct timestamps", len(sortedEpochs))
	}

	counts := make(map[int64]int)
	sampled := 0
	for i := 1; i < len(sortedEpochs) && sampled < maxSampledGaps; i++ {
		gap := sortedEpochs[i] - sortedEpochs[i-1]
		if gap <= 0 {
			continue
		}
		counts[gap]++
		sampled++
	}
	if len(counts) == 0 {
		return 0, exception.Newf(exception.KindInterval, moduleName,
			"timestamps yield no positive gaps, cannot infer an interval")
	}

	var best int64
	bestCount := 0
	for gap, count := range counts {
		if count > bestCount || (count == bestCount && gap < best) {
			best = gap
			bestCount = count
		}
	}
	return best, nil
}
