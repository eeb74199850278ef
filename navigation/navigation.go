// Package navigation extracts variables useful for the study of spatial
// navigation from pose datasets.
package navigation

import (
	"fmt"
	"math"
	"sort"

	"github.com/movetrack/posekit/dataset"
)

// HeadDirectionVector computes the 2-D head direction vector from two
// keypoints on either side of the head. The vector is perpendicular to the
// line connecting the left and right keypoints, pointing forwards (rostral).
//
// Without a front keypoint, coordinates are assumed to be in the image frame
// (origin top-left, y increasing downwards). Pass front (e.g. a snout or
// nose keypoint) to disambiguate the forward direction in other frames: if
// the median dot product between the candidate vector and the midpoint-to-
// front vector is negative, the candidate is flipped.
//
// position must have dimensions (time, individuals, keypoints, space) with a
// 2-D space axis. The result has dimensions (time, individuals, space).
func HeadDirectionVector(position *dataset.Array, left, right, front string) (*dataset.Array, error) {
	for _, d := range []string{dataset.DimTime, dataset.DimIndividuals, dataset.DimKeypoints, dataset.DimSpace} {
		if !position.HasDim(d) {
			return nil, fmt.Errorf("input must contain %q as a dimension", d)
		}
	}
	if n, _ := position.DimLen(dataset.DimSpace); n != 2 {
		return nil, fmt.Errorf("input must have 2 (and only 2) spatial dimensions, got %d", n)
	}
	if left == right {
		return nil, fmt.Errorf("the left and right keypoints may not be identical")
	}

	headLeft, err := position.SelectLabel(dataset.DimKeypoints, left)
	if err != nil {
		return nil, fmt.Errorf("selecting head keypoints: %w", err)
	}
	headRight, err := position.SelectLabel(dataset.DimKeypoints, right)
	if err != nil {
		return nil, fmt.Errorf("selecting head keypoints: %w", err)
	}

	// Cross product of (left-right, 0) with the plane normal (0, 0, -1):
	// for d = left - right the perpendicular is (-dy, dx).
	head := headLeft.Clone()
	hv := head.Data()
	lv := headLeft.Data()
	rv := headRight.Data()
	err = head.EachLane(dataset.DimSpace, func(_ int, offsets []int) {
		dx := lv[offsets[0]] - rv[offsets[0]]
		dy := lv[offsets[1]] - rv[offsets[1]]
		hv[offsets[0]] = -dy
		hv[offsets[1]] = dx
	})
	if err != nil {
		return nil, err
	}

	if front == "" {
		return head, nil
	}

	headFront, err := position.SelectLabel(dataset.DimKeypoints, front)
	if err != nil {
		return nil, fmt.Errorf("selecting head keypoints: %w", err)
	}

	// Check the candidate vector against the midpoint-to-front vector for
	// the first individual; a negative median dot product means the
	// perpendicular was taken on the wrong side.
	fv := headFront.Data()
	nInd, _ := head.DimLen(dataset.DimIndividuals)
	var dots []float64
	err = head.EachLane(dataset.DimSpace, func(lane int, offsets []int) {
		if lane%nInd != 0 { // first individual only
			return
		}
		mx := (lv[offsets[0]] + rv[offsets[0]]) / 2
		my := (lv[offsets[1]] + rv[offsets[1]]) / 2
		ax, ay := unit2(hv[offsets[0]], hv[offsets[1]])
		bx, by := unit2(fv[offsets[0]]-mx, fv[offsets[1]]-my)
		d := ax*bx + ay*by
		if !math.IsNaN(d) {
			dots = append(dots, d)
		}
	})
	if err != nil {
		return nil, err
	}
	if median(dots) < 0 {
		for i := range hv {
			hv[i] = -hv[i]
		}
	}
	return head, nil
}

// unit2 normalizes a 2-D vector; the null vector maps to NaN components.
func unit2(x, y float64) (float64, float64) {
	n := math.Hypot(x, y)
	return x / n, y / n
}

// median returns the median of vals, or 0 when empty.
func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
