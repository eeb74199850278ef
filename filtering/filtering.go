// Package filtering provides confidence-based masking of pose tracks, gap
// interpolation along the time axis, and the operation-logging wrapper.
//
// Transformations never mutate their input; they return a new dataset with
// the operation appended to its log. Whether metadata is carried onto the
// result is controlled by an explicit Config value threaded through each
// call, not by process-wide state.
package filtering

import (
	"math"

	"github.com/movetrack/posekit/dataset"
	"github.com/movetrack/posekit/internal/monitoring"
)

// Config controls transformation behavior common to the package.
type Config struct {
	// KeepAttrs carries metadata (fps, time unit, source, UUID, log) from
	// the input dataset onto the result.
	KeepAttrs bool
}

// DefaultConfig matches the library default of preserving metadata.
func DefaultConfig() Config {
	return Config{KeepAttrs: true}
}

// ByConfidence returns a copy of ds in which every (time, individual,
// keypoint) sample whose confidence is below threshold has its position set
// to NaN across the space axis, and its confidence set to NaN. Samples whose
// confidence is already NaN are left untouched.
//
// Per-keypoint filtered counts against the total frame count are reported
// through monitoring.Logf, and the operation is appended to the result's log.
func ByConfidence(ds *dataset.Dataset, threshold float64, cfg Config) (*dataset.Dataset, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	out := ds.Copy(cfg.KeepAttrs)
	conf := out.Confidence
	pos := out.Position

	shape := conf.Shape() // time, individuals, keypoints
	nTime, nInd, nKp := shape[0], shape[1], shape[2]
	nSpace := pos.Shape()[3]
	cdata := conf.Data()
	pdata := pos.Data()

	perKeypoint := make([]int, nKp)
	for t := 0; t < nTime; t++ {
		for i := 0; i < nInd; i++ {
			for k := 0; k < nKp; k++ {
				ci := (t*nInd+i)*nKp + k
				if !(cdata[ci] < threshold) { // NaN compares false
					continue
				}
				cdata[ci] = math.NaN()
				pi := ci * nSpace
				for s := 0; s < nSpace; s++ {
					pdata[pi+s] = math.NaN()
				}
				perKeypoint[k]++
			}
		}
	}

	monitoring.Logf("datapoints filtered at confidence < %v:", threshold)
	samples := nTime * nInd
	for k, name := range out.Keypoints() {
		pct := 0.0
		if samples > 0 {
			pct = 100 * float64(perKeypoint[k]) / float64(samples)
		}
		monitoring.Logf("  %s: %d/%d (%.2f%%)", name, perKeypoint[k], samples, pct)
	}

	out.LogOperation("filter_by_confidence", map[string]any{
		"threshold":  threshold,
		"keep_attrs": cfg.KeepAttrs,
	})
	return out, nil
}

// nanRun describes a maximal run of NaN samples in a lane, [start, end).
type nanRun struct {
	start, end int
}

// nanRuns finds maximal NaN runs in vals at the given flat offsets.
func nanRuns(vals []float64, offsets []int) []nanRun {
	var runs []nanRun
	i := 0
	for i < len(offsets) {
		if !math.IsNaN(vals[offsets[i]]) {
			i++
			continue
		}
		j := i
		for j < len(offsets) && math.IsNaN(vals[offsets[j]]) {
			j++
		}
		runs = append(runs, nanRun{start: i, end: j})
		i = j
	}
	return runs
}
