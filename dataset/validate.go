package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/movetrack/posekit/internal/monitoring"
)

// ErrInvalidDataset marks any schema validation failure. The first violated
// constraint is preserved in the error text; match with errors.Is.
var ErrInvalidDataset = errors.New("dataset does not contain valid poses")

// SourceSoftware values produced by the supported loaders.
var RecognizedSoftware = []string{"SLEAP", "DeepLabCut", "LightningPose"}

// positionDims and confidenceDims are the exact axis orders the schema
// requires.
var (
	positionDims   = []string{DimTime, DimIndividuals, DimKeypoints, DimSpace}
	confidenceDims = []string{DimTime, DimIndividuals, DimKeypoints}
)

// Validate checks the dataset against the pose schema: required dimensions
// and data variables, axis order and shape agreement, coordinate label
// counts and uniqueness, and metadata values. It is free of side effects on
// the dataset; any violation is reported as a single error wrapping
// ErrInvalidDataset, with the first failed constraint as its cause.
func (ds *Dataset) Validate() error {
	if err := ds.checkSchema(); err != nil {
		monitoring.Logf("pose dataset validation failed: %v", err)
		return fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	return nil
}

func (ds *Dataset) checkSchema() error {
	// Presence of required variables and dimensions is reported before any
	// per-array checks, listing every missing name.
	var missingVars []string
	if ds.Position == nil {
		missingVars = append(missingVars, VarPosition)
	}
	if ds.Confidence == nil {
		missingVars = append(missingVars, VarConfidence)
	}

	present := make(map[string]bool)
	for _, a := range []*Array{ds.Position, ds.Confidence} {
		if a == nil {
			continue
		}
		for _, d := range a.Dims() {
			present[d] = true
		}
	}
	var missingDims []string
	for _, d := range positionDims {
		if !present[d] {
			missingDims = append(missingDims, d)
		}
	}
	if len(missingDims) > 0 {
		sort.Strings(missingDims)
		return fmt.Errorf("missing required dimensions: %s", strings.Join(missingDims, ", "))
	}
	if len(missingVars) > 0 {
		return fmt.Errorf("missing required data variables: %s", strings.Join(missingVars, ", "))
	}

	if err := requireDimOrder(ds.Position, VarPosition, positionDims); err != nil {
		return err
	}
	if err := requireDimOrder(ds.Confidence, VarConfidence, confidenceDims); err != nil {
		return err
	}
	for i, d := range confidenceDims {
		pn := ds.Position.Shape()[i]
		cn := ds.Confidence.Shape()[i]
		if pn != cn {
			return fmt.Errorf("position and confidence disagree on %q length: %d vs %d", d, pn, cn)
		}
	}

	for _, d := range []string{DimIndividuals, DimKeypoints} {
		if err := checkLabels(ds.Position, d); err != nil {
			return err
		}
	}
	if err := checkSpaceLabels(ds.Position); err != nil {
		return err
	}

	if ds.FPS != 0 && (ds.FPS < 0 || math.IsNaN(ds.FPS) || math.IsInf(ds.FPS, 0)) {
		return fmt.Errorf("fps must be a positive number, got %v", ds.FPS)
	}
	if ds.SourceSoftware != "" {
		ok := false
		for _, s := range RecognizedSoftware {
			if ds.SourceSoftware == s {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("unrecognized source software %q (expected one of %s)",
				ds.SourceSoftware, strings.Join(RecognizedSoftware, ", "))
		}
	}
	return nil
}

// requireDimOrder checks that the array's axes are exactly want, in order.
func requireDimOrder(a *Array, name string, want []string) error {
	got := a.Dims()
	if len(got) != len(want) {
		return fmt.Errorf("%s must have %d axes (%s), got %d", name, len(want), strings.Join(want, ", "), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%s axis %d must be %q, got %q", name, i, want[i], got[i])
		}
	}
	return nil
}

// checkLabels checks that dim carries a full set of unique coordinate labels.
func checkLabels(a *Array, dim string) error {
	n, err := a.DimLen(dim)
	if err != nil {
		return err
	}
	labels := a.Coords(dim)
	if len(labels) != n {
		return fmt.Errorf("dimension %q has length %d but %d labels", dim, n, len(labels))
	}
	seen := make(map[string]bool, n)
	for _, l := range labels {
		if seen[l] {
			return fmt.Errorf("dimension %q has duplicate label %q", dim, l)
		}
		seen[l] = true
	}
	return nil
}

// checkSpaceLabels checks the space axis is labeled x,y or x,y,z.
func checkSpaceLabels(a *Array) error {
	labels := a.Coords(DimSpace)
	switch {
	case len(labels) == 2 && labels[0] == "x" && labels[1] == "y":
		return nil
	case len(labels) == 3 && labels[0] == "x" && labels[1] == "y" && labels[2] == "z":
		return nil
	}
	return fmt.Errorf("space labels must be [x y] or [x y z], got %v", labels)
}

// NewPositionArray builds a labeled position array from individual, keypoint
// and space labels plus row-major data (nil for zeros).
func NewPositionArray(nTime int, individuals, keypoints, space []string, data []float64) (*Array, error) {
	a, err := NewArray(positionDims, []int{nTime, len(individuals), len(keypoints), len(space)}, data)
	if err != nil {
		return nil, err
	}
	if err := a.SetCoords(DimIndividuals, individuals); err != nil {
		return nil, err
	}
	if err := a.SetCoords(DimKeypoints, keypoints); err != nil {
		return nil, err
	}
	if err := a.SetCoords(DimSpace, space); err != nil {
		return nil, err
	}
	return a, nil
}

// NewConfidenceArray builds a labeled confidence array from individual and
// keypoint labels plus row-major data (nil for zeros).
func NewConfidenceArray(nTime int, individuals, keypoints []string, data []float64) (*Array, error) {
	a, err := NewArray(confidenceDims, []int{nTime, len(individuals), len(keypoints)}, data)
	if err != nil {
		return nil, err
	}
	if err := a.SetCoords(DimIndividuals, individuals); err != nil {
		return nil, err
	}
	if err := a.SetCoords(DimKeypoints, keypoints); err != nil {
		return nil, err
	}
	return a, nil
}
