// Package vector provides operations over the spatial axis of pose arrays:
// norms, unit vectors, Cartesian/polar conversion, and signed angles.
package vector

import (
	"fmt"
	"math"

	"github.com/movetrack/posekit/dataset"
)

// requireSpace checks that a carries the given spatial dimension with the
// expected coordinate labels.
func requireSpace(a *dataset.Array, dim string, labels ...string) error {
	if !a.HasDim(dim) {
		return fmt.Errorf("input must contain %q as a dimension", dim)
	}
	got := a.Coords(dim)
	if len(got) < len(labels) {
		return fmt.Errorf("dimension %q must carry labels %v, got %v", dim, labels, got)
	}
	for i, want := range labels {
		if got[i] != want {
			return fmt.Errorf("dimension %q must carry labels %v, got %v", dim, labels, got)
		}
	}
	return nil
}

// Norm computes the Euclidean norm along the space axis. The result drops
// the space dimension but preserves all others. For polar input (space_pol)
// the norm is the radial coordinate rho.
func Norm(a *dataset.Array) (*dataset.Array, error) {
	if a.HasDim(dataset.DimSpace) {
		if err := requireSpace(a, dataset.DimSpace, "x", "y"); err != nil {
			return nil, err
		}
		out, err := a.SelectIndex(dataset.DimSpace, 0)
		if err != nil {
			return nil, err
		}
		vals := a.Data()
		outVals := out.Data()
		err = a.EachLane(dataset.DimSpace, func(lane int, offsets []int) {
			ss := 0.0
			for _, off := range offsets {
				ss += vals[off] * vals[off]
			}
			outVals[lane] = math.Sqrt(ss)
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	if a.HasDim(dataset.DimSpacePolar) {
		if err := requireSpace(a, dataset.DimSpacePolar, "rho", "phi"); err != nil {
			return nil, err
		}
		return a.SelectLabel(dataset.DimSpacePolar, "rho")
	}
	return nil, errMissingSpatialDim()
}

// Unit scales the vectors along the space axis to norm 1. The null vector has
// no direction; its components become NaN.
func Unit(a *dataset.Array) (*dataset.Array, error) {
	if a.HasDim(dataset.DimSpace) {
		if err := requireSpace(a, dataset.DimSpace, "x", "y"); err != nil {
			return nil, err
		}
		out := a.Clone()
		vals := out.Data()
		err := out.EachLane(dataset.DimSpace, func(_ int, offsets []int) {
			ss := 0.0
			for _, off := range offsets {
				ss += vals[off] * vals[off]
			}
			n := math.Sqrt(ss)
			for _, off := range offsets {
				vals[off] /= n // 0/0 yields NaN for the null vector
			}
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	if a.HasDim(dataset.DimSpacePolar) {
		if err := requireSpace(a, dataset.DimSpacePolar, "rho", "phi"); err != nil {
			return nil, err
		}
		out := a.Clone()
		vals := out.Data()
		err := out.EachLane(dataset.DimSpacePolar, func(_ int, offsets []int) {
			rho := vals[offsets[0]]
			if rho == 0 || math.IsNaN(rho) {
				for _, off := range offsets {
					vals[off] = math.NaN()
				}
				return
			}
			vals[offsets[0]] = 1
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, errMissingSpatialDim()
}

// Cart2Pol transforms 2-D Cartesian coordinates to polar. The space
// dimension is replaced by space_pol with coordinates rho (magnitude) and
// phi (angle in radians, in [-pi, pi]).
func Cart2Pol(a *dataset.Array) (*dataset.Array, error) {
	if err := requireSpace(a, dataset.DimSpace, "x", "y"); err != nil {
		return nil, err
	}
	if n, _ := a.DimLen(dataset.DimSpace); n != 2 {
		return nil, fmt.Errorf("cart2pol requires 2 spatial dimensions, got %d", n)
	}
	out := a.Clone()
	vals := out.Data()
	err := out.EachLane(dataset.DimSpace, func(_ int, offsets []int) {
		x, y := vals[offsets[0]], vals[offsets[1]]
		vals[offsets[0]] = math.Hypot(x, y)
		vals[offsets[1]] = math.Atan2(y, x)
	})
	if err != nil {
		return nil, err
	}
	if err := out.RenameDim(dataset.DimSpace, dataset.DimSpacePolar); err != nil {
		return nil, err
	}
	if err := out.SetCoords(dataset.DimSpacePolar, []string{"rho", "phi"}); err != nil {
		return nil, err
	}
	return out, nil
}

// Pol2Cart transforms polar coordinates back to 2-D Cartesian. The space_pol
// dimension is replaced by space with coordinates x and y.
func Pol2Cart(a *dataset.Array) (*dataset.Array, error) {
	if err := requireSpace(a, dataset.DimSpacePolar, "rho", "phi"); err != nil {
		return nil, err
	}
	out := a.Clone()
	vals := out.Data()
	err := out.EachLane(dataset.DimSpacePolar, func(_ int, offsets []int) {
		rho, phi := vals[offsets[0]], vals[offsets[1]]
		vals[offsets[0]] = rho * math.Cos(phi)
		vals[offsets[1]] = rho * math.Sin(phi)
	})
	if err != nil {
		return nil, err
	}
	if err := out.RenameDim(dataset.DimSpacePolar, dataset.DimSpace); err != nil {
		return nil, err
	}
	if err := out.SetCoords(dataset.DimSpace, []string{"x", "y"}); err != nil {
		return nil, err
	}
	return out, nil
}

// SignedAngle2D computes the signed angle, in radians, rotating ref onto
// test at every sample. Both arrays must have identical dimensions with a
// 2-D space axis; the result drops the space dimension. Positive angles are
// counterclockwise in a right-handed x,y frame.
func SignedAngle2D(test, ref *dataset.Array) (*dataset.Array, error) {
	if err := requireSpace(test, dataset.DimSpace, "x", "y"); err != nil {
		return nil, err
	}
	if !test.SameShape(ref) {
		return nil, fmt.Errorf("test and reference arrays must have identical dimensions")
	}
	out, err := test.SelectIndex(dataset.DimSpace, 0)
	if err != nil {
		return nil, err
	}
	tv := test.Data()
	rv := ref.Data()
	outVals := out.Data()
	err = test.EachLane(dataset.DimSpace, func(lane int, offsets []int) {
		tx, ty := tv[offsets[0]], tv[offsets[1]]
		rx, ry := rv[offsets[0]], rv[offsets[1]]
		outVals[lane] = math.Atan2(ty*rx-tx*ry, tx*rx+ty*ry)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SignedAngle2DFixed computes the signed angle of every sample of test
// against a single fixed reference vector.
func SignedAngle2DFixed(test *dataset.Array, ref [2]float64) (*dataset.Array, error) {
	if err := requireSpace(test, dataset.DimSpace, "x", "y"); err != nil {
		return nil, err
	}
	if ref[0] == 0 && ref[1] == 0 {
		return nil, fmt.Errorf("reference vector must be non-null")
	}
	out, err := test.SelectIndex(dataset.DimSpace, 0)
	if err != nil {
		return nil, err
	}
	tv := test.Data()
	outVals := out.Data()
	err = test.EachLane(dataset.DimSpace, func(lane int, offsets []int) {
		tx, ty := tv[offsets[0]], tv[offsets[1]]
		outVals[lane] = math.Atan2(ty*ref[0]-tx*ref[1], tx*ref[0]+ty*ref[1])
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func errMissingSpatialDim() error {
	return fmt.Errorf("input must contain either %q or %q as a dimension",
		dataset.DimSpace, dataset.DimSpacePolar)
}
