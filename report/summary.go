// Package report derives per-keypoint speed statistics from pose datasets
// and renders them as charts and plots.
package report

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/movetrack/posekit/dataset"
	"github.com/movetrack/posekit/move"
	"github.com/movetrack/posekit/vector"
)

// SpeedSummary captures the distribution of speed (velocity magnitude) for
// one individual/keypoint pair. Units follow the dataset's time unit: per
// second when the frame rate is known, per frame otherwise.
type SpeedSummary struct {
	Individual string
	Keypoint   string
	Mean       float64
	Std        float64
	Median     float64
	P85        float64
	P95        float64
	N          int // valid (non-NaN) samples
}

// Summarize computes a SpeedSummary for every individual/keypoint pair of
// ds. Velocity is obtained through the accessor (computed and cached on
// first use); NaN samples are skipped. The first frame's zero velocity is a
// boundary artifact of the differencing edge policy and is excluded.
func Summarize(ds *dataset.Dataset) ([]SpeedSummary, error) {
	vel, err := move.New(ds).Velocity()
	if err != nil {
		return nil, err
	}
	speed, err := vector.Norm(vel)
	if err != nil {
		return nil, err
	}

	nTime, err := speed.DimLen(dataset.DimTime)
	if err != nil {
		return nil, err
	}
	individuals := ds.Individuals()
	keypoints := ds.Keypoints()

	var out []SpeedSummary
	samples := make([]float64, 0, nTime)
	for i, ind := range individuals {
		for k, kp := range keypoints {
			samples = samples[:0]
			for t := 1; t < nTime; t++ { // frame 0 is the zero-fill edge
				v := speed.At(t, i, k)
				if !math.IsNaN(v) {
					samples = append(samples, v)
				}
			}
			s := SpeedSummary{Individual: ind, Keypoint: kp, N: len(samples)}
			if len(samples) > 0 {
				sort.Float64s(samples)
				s.Mean = stat.Mean(samples, nil)
				s.Std = stat.StdDev(samples, nil)
				s.Median = stat.Quantile(0.5, stat.Empirical, samples, nil)
				s.P85 = stat.Quantile(0.85, stat.Empirical, samples, nil)
				s.P95 = stat.Quantile(0.95, stat.Empirical, samples, nil)
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// speedSeries returns the per-frame speed series for one individual and
// keypoint, NaNs included, alongside the time coordinates.
func speedSeries(ds *dataset.Dataset, individual, keypoint string) ([]float64, []float64, error) {
	vel, err := move.New(ds).Velocity()
	if err != nil {
		return nil, nil, err
	}
	speed, err := vector.Norm(vel)
	if err != nil {
		return nil, nil, err
	}
	i, err := speed.CoordIndex(dataset.DimIndividuals, individual)
	if err != nil {
		return nil, nil, err
	}
	k, err := speed.CoordIndex(dataset.DimKeypoints, keypoint)
	if err != nil {
		return nil, nil, err
	}
	nTime, _ := speed.DimLen(dataset.DimTime)
	if len(ds.Time) != nTime {
		return nil, nil, fmt.Errorf("time coordinate has %d values for %d frames", len(ds.Time), nTime)
	}
	vals := make([]float64, nTime)
	for t := 0; t < nTime; t++ {
		vals[t] = speed.At(t, i, k)
	}
	return ds.Time, vals, nil
}
