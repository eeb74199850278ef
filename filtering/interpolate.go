package filtering

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/movetrack/posekit/dataset"
)

// Method selects the interpolation policy for gap filling.
type Method string

const (
	// Linear joins the valid samples around a gap with straight segments.
	Linear Method = "linear"
	// Nearest repeats the closest valid sample on either side of the gap.
	Nearest Method = "nearest"
	// Akima fits an Akima spline through the valid samples.
	Akima Method = "akima"
	// PCHIP fits a monotonicity-preserving cubic through the valid samples.
	PCHIP Method = "pchip"
)

// InterpOptions configures InterpolateOverTime.
type InterpOptions struct {
	// Method is the interpolation policy; empty means Linear.
	Method Method
	// MaxGap bounds interpolation: gaps of more than MaxGap consecutive
	// missing samples are left unfilled. 0 means no bound.
	MaxGap int
	// Limit caps how many samples are filled from the start of each gap.
	// 0 means fill the whole gap.
	Limit int
}

// newPredictor maps a method to its gonum predictor and the minimum number
// of valid samples it needs.
func newPredictor(m Method) (interp.FittablePredictor, int, error) {
	switch m {
	case "", Linear:
		return &interp.PiecewiseLinear{}, 2, nil
	case Nearest:
		return &interp.PiecewiseConstant{}, 2, nil
	case Akima:
		return &interp.AkimaSpline{}, 3, nil
	case PCHIP:
		return &interp.FritschButland{}, 2, nil
	}
	return nil, 0, fmt.Errorf("unknown interpolation method %q", m)
}

// InterpolateOverTime returns a copy of ds with NaN gaps along the time axis
// filled independently for every (individual, keypoint, space-component)
// series of every time-indexed data variable. Only gaps strictly between the
// first and last valid sample of a series are filled; there is no
// extrapolation, so the NaN count never increases. The operation is appended
// to the result's log.
func InterpolateOverTime(ds *dataset.Dataset, o InterpOptions, cfg Config) (*dataset.Dataset, error) {
	if _, _, err := newPredictor(o.Method); err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	out := ds.Copy(cfg.KeepAttrs)
	times := ds.Time

	names := append([]string{dataset.VarPosition, dataset.VarConfidence}, out.VarNames()...)
	for _, name := range names {
		a, ok := out.Var(name)
		if !ok || !a.HasDim(dataset.DimTime) {
			continue
		}
		if err := interpolateArray(a, times, o); err != nil {
			return nil, fmt.Errorf("interpolating %s: %w", name, err)
		}
	}

	out.LogOperation("interpolate_over_time", map[string]any{
		"method":  string(methodOrDefault(o.Method)),
		"max_gap": o.MaxGap,
		"limit":   o.Limit,
	})
	return out, nil
}

func methodOrDefault(m Method) Method {
	if m == "" {
		return Linear
	}
	return m
}

// interpolateArray fills interior NaN gaps along the time dimension of a,
// lane by lane. times supplies the x coordinate of each frame.
func interpolateArray(a *dataset.Array, times []float64, o InterpOptions) error {
	nTime, err := a.DimLen(dataset.DimTime)
	if err != nil {
		return err
	}
	if len(times) != nTime {
		return fmt.Errorf("time coordinate has %d values for %d frames", len(times), nTime)
	}

	vals := a.Data()
	xs := make([]float64, 0, nTime)
	ys := make([]float64, 0, nTime)

	var fitErr error
	laneErr := a.EachLane(dataset.DimTime, func(_ int, offsets []int) {
		if fitErr != nil {
			return
		}
		runs := nanRuns(vals, offsets)
		if len(runs) == 0 {
			return
		}

		xs = xs[:0]
		ys = ys[:0]
		for i, off := range offsets {
			if !math.IsNaN(vals[off]) {
				xs = append(xs, times[i])
				ys = append(ys, vals[off])
			}
		}
		p, minValid, err := newPredictor(o.Method)
		if err != nil {
			fitErr = err
			return
		}
		if len(xs) < minValid {
			return
		}
		if err := p.Fit(xs, ys); err != nil {
			fitErr = err
			return
		}

		lo := firstValidIndex(vals, offsets)
		hi := lastValidIndex(vals, offsets)
		for _, r := range runs {
			if r.start <= lo || r.end > hi {
				continue // leading or trailing gap: no extrapolation
			}
			gap := r.end - r.start
			if o.MaxGap > 0 && gap > o.MaxGap {
				continue
			}
			fill := gap
			if o.Limit > 0 && o.Limit < fill {
				fill = o.Limit
			}
			for j := r.start; j < r.start+fill; j++ {
				vals[offsets[j]] = p.Predict(times[j])
			}
		}
	})
	if laneErr != nil {
		return laneErr
	}
	return fitErr
}

// firstValidIndex returns the index of the first valid (non-NaN) sample.
func firstValidIndex(vals []float64, offsets []int) int {
	for i, off := range offsets {
		if !math.IsNaN(vals[off]) {
			return i
		}
	}
	return len(offsets)
}

// lastValidIndex returns one past the index of the last valid sample.
func lastValidIndex(vals []float64, offsets []int) int {
	for i := len(offsets) - 1; i >= 0; i-- {
		if !math.IsNaN(vals[offsets[i]]) {
			return i + 1
		}
	}
	return 0
}
