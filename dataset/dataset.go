// Package dataset defines the labeled pose dataset, its schema validation,
// and the operation log used for provenance.
package dataset

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Data variable names every pose dataset carries.
const (
	VarPosition   = "position"
	VarConfidence = "confidence"
)

// Time units for the time coordinate.
const (
	TimeUnitFrames  = "frames"
	TimeUnitSeconds = "seconds"
)

// Meta holds the optional metadata attached to a dataset at construction.
type Meta struct {
	FPS            float64 // frames per second; 0 means unknown
	SourceSoftware string  // loader that produced the data, e.g. "SLEAP"
	SourceFile     string  // path the data was loaded from
}

// LogEntry records one transformation applied to a dataset.
type LogEntry struct {
	Operation string
	Params    map[string]any
	Time      time.Time
}

// Dataset is a labeled pose dataset: a 4-D position array
// (time x individuals x keypoints x space), a 3-D confidence array
// (time x individuals x keypoints), metadata, and any derived data variables
// materialized by the accessor layer.
//
// A Dataset is owned by a single caller; no internal locking is provided.
type Dataset struct {
	Position   *Array
	Confidence *Array

	// Time holds the coordinate values along the time dimension: seconds
	// when FPS is known, frame numbers otherwise.
	Time []float64

	FPS            float64
	TimeUnit       string
	SourceSoftware string
	SourceFile     string

	// UUID identifies the dataset in operation logs and stores.
	UUID string

	// Log records every logged transformation, oldest first.
	Log []LogEntry

	vars map[string]*Array
}

// New assembles a dataset from position and confidence arrays and metadata.
// Time coordinates are derived from the position array's time axis: i/FPS
// seconds when meta.FPS > 0, plain frame numbers otherwise. New does not
// validate the schema; call Validate for that.
func New(position, confidence *Array, meta Meta) (*Dataset, error) {
	if position == nil {
		return nil, fmt.Errorf("position array is required")
	}
	nTime, err := position.DimLen(DimTime)
	if err != nil {
		return nil, fmt.Errorf("position array: %w", err)
	}

	ds := &Dataset{
		Position:       position,
		Confidence:     confidence,
		FPS:            meta.FPS,
		SourceSoftware: meta.SourceSoftware,
		SourceFile:     meta.SourceFile,
		UUID:           uuid.NewString(),
		vars:           make(map[string]*Array),
	}
	ds.Time = make([]float64, nTime)
	if meta.FPS > 0 {
		ds.TimeUnit = TimeUnitSeconds
		for i := range ds.Time {
			ds.Time[i] = float64(i) / meta.FPS
		}
	} else {
		ds.TimeUnit = TimeUnitFrames
		for i := range ds.Time {
			ds.Time[i] = float64(i)
		}
	}
	return ds, nil
}

// Individuals returns the individual labels from the position array.
func (ds *Dataset) Individuals() []string { return ds.Position.Coords(DimIndividuals) }

// Keypoints returns the keypoint labels from the position array.
func (ds *Dataset) Keypoints() []string { return ds.Position.Coords(DimKeypoints) }

// Var returns a data variable by name. The names "position" and "confidence"
// resolve to the core arrays; any other name resolves to a derived variable
// previously stored with SetVar.
func (ds *Dataset) Var(name string) (*Array, bool) {
	switch name {
	case VarPosition:
		return ds.Position, ds.Position != nil
	case VarConfidence:
		return ds.Confidence, ds.Confidence != nil
	}
	a, ok := ds.vars[name]
	return a, ok
}

// SetVar stores a derived data variable under name. Storing under the core
// names replaces the corresponding array.
func (ds *Dataset) SetVar(name string, a *Array) {
	switch name {
	case VarPosition:
		ds.Position = a
	case VarConfidence:
		ds.Confidence = a
	default:
		if ds.vars == nil {
			ds.vars = make(map[string]*Array)
		}
		ds.vars[name] = a
	}
}

// VarNames returns the names of the materialized derived variables.
func (ds *Dataset) VarNames() []string {
	names := make([]string, 0, len(ds.vars))
	for n := range ds.vars {
		names = append(names, n)
	}
	return names
}

// LogOperation appends an entry to the dataset's operation log. The params
// map is copied; callers are responsible for passing representable values
// (numbers, strings, bools, small slices).
func (ds *Dataset) LogOperation(operation string, params map[string]any) {
	cp := make(map[string]any, len(params))
	for k, v := range params {
		cp[k] = v
	}
	ds.Log = append(ds.Log, LogEntry{
		Operation: operation,
		Params:    cp,
		Time:      time.Now(),
	})
}

// Copy returns a new dataset with deep-copied arrays and derived variables.
// When keepAttrs is true the metadata, time coordinates, UUID, and operation
// log are carried over; otherwise the copy starts with fresh frame-numbered
// time coordinates, a new UUID, and an empty log.
func (ds *Dataset) Copy(keepAttrs bool) *Dataset {
	out := &Dataset{
		vars: make(map[string]*Array, len(ds.vars)),
	}
	if ds.Position != nil {
		out.Position = ds.Position.Clone()
	}
	if ds.Confidence != nil {
		out.Confidence = ds.Confidence.Clone()
	}
	for name, a := range ds.vars {
		out.vars[name] = a.Clone()
	}
	if keepAttrs {
		out.Time = append([]float64(nil), ds.Time...)
		out.FPS = ds.FPS
		out.TimeUnit = ds.TimeUnit
		out.SourceSoftware = ds.SourceSoftware
		out.SourceFile = ds.SourceFile
		out.UUID = ds.UUID
		out.Log = append([]LogEntry(nil), ds.Log...)
		return out
	}
	out.UUID = uuid.NewString()
	out.TimeUnit = TimeUnitFrames
	out.Time = make([]float64, len(ds.Time))
	for i := range out.Time {
		out.Time[i] = float64(i)
	}
	return out
}
