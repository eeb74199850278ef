// Package kinematics computes derived kinematic quantities (displacement,
// velocity, acceleration) from a position array by finite differencing along
// the time axis.
//
// All functions require time as the leading axis and return an array of the
// same shape as the input. The first frame of any differenced quantity has no
// predecessor; it is defined as the zero vector rather than a missing value,
// so differencing never introduces NaNs of its own. NaNs already present in
// the input propagate through the arithmetic untouched.
package kinematics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/movetrack/posekit/dataset"
)

// timeStep returns the spacing between consecutive frames: 1/fps when the
// frame rate is known, otherwise one unit step (frame).
func timeStep(fps float64) float64 {
	if fps > 0 {
		return 1 / fps
	}
	return 1
}

// requireLeadingTime checks that time is the leading axis of a.
func requireLeadingTime(a *dataset.Array) error {
	dims := a.Dims()
	if len(dims) == 0 || dims[0] != dataset.DimTime {
		return fmt.Errorf("input must have %q as its leading dimension, got %v", dataset.DimTime, dims)
	}
	return nil
}

// diffTime writes the first-order difference of a along the leading time axis
// into a new array of the same shape. Frame 0 is all zeros.
func diffTime(a *dataset.Array) (*dataset.Array, error) {
	if err := requireLeadingTime(a); err != nil {
		return nil, err
	}
	out := a.Clone()
	nTime := a.Shape()[0]
	block := a.Size() / nTime
	src := a.Data()
	dst := out.Data()
	for i := 0; i < block; i++ {
		dst[i] = 0
	}
	for t := 1; t < nTime; t++ {
		lo := t * block
		floats.SubTo(dst[lo:lo+block], src[lo:lo+block], src[lo-block:lo])
	}
	return out, nil
}

// Displacement computes the displacement array: the vector from the position
// at frame t-1 to the position at frame t, per individual, keypoint, and
// space component. Frame 0 is the zero vector.
func Displacement(position *dataset.Array) (*dataset.Array, error) {
	return diffTime(position)
}

// Velocity computes the first time-derivative of position: displacement
// divided by the time step. With a known frame rate the result is expressed
// per second; otherwise it is per frame. Frame 0 is the zero vector.
func Velocity(position *dataset.Array, fps float64) (*dataset.Array, error) {
	out, err := diffTime(position)
	if err != nil {
		return nil, err
	}
	floats.Scale(1/timeStep(fps), out.Data())
	return out, nil
}

// Acceleration computes the second time-derivative of position: the first
// difference of velocity divided by the time step. Frames 0 and, for motion
// starting at rest under the zero-fill edge policy, frame 1 carry boundary
// artifacts that callers should treat as undefined.
func Acceleration(position *dataset.Array, fps float64) (*dataset.Array, error) {
	vel, err := Velocity(position, fps)
	if err != nil {
		return nil, err
	}
	out, err := diffTime(vel)
	if err != nil {
		return nil, err
	}
	floats.Scale(1/timeStep(fps), out.Data())
	return out, nil
}

// TimeDerivative computes the order-th time-derivative of a by repeated
// first differencing, dividing by the time step at each pass. Order must be
// a positive integer.
func TimeDerivative(a *dataset.Array, order int, fps float64) (*dataset.Array, error) {
	if order <= 0 {
		return nil, fmt.Errorf("order must be a positive integer, got %d", order)
	}
	out := a
	var err error
	for i := 0; i < order; i++ {
		out, err = diffTime(out)
		if err != nil {
			return nil, err
		}
		floats.Scale(1/timeStep(fps), out.Data())
	}
	return out, nil
}
