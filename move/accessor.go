// Package move provides the kinematic accessor for pose datasets: lazy,
// validated computation of derived quantities, cached as data variables on
// the dataset.
package move

import (
	"errors"
	"fmt"

	"github.com/movetrack/posekit/dataset"
	"github.com/movetrack/posekit/kinematics"
)

// ErrUnknownProperty is returned when a requested property is neither a
// derivable kinematic quantity nor a variable already present on the dataset.
var ErrUnknownProperty = errors.New("unknown property")

// Derived property names the accessor can compute.
const (
	Displacement = "displacement"
	Velocity     = "velocity"
	Acceleration = "acceleration"
)

// properties is the closed dispatch table from property name to computation.
// Package-level so tests can verify that a cached property is served without
// recomputation.
var properties = map[string]func(ds *dataset.Dataset) (*dataset.Array, error){
	Displacement: func(ds *dataset.Dataset) (*dataset.Array, error) {
		return kinematics.Displacement(ds.Position)
	},
	Velocity: func(ds *dataset.Dataset) (*dataset.Array, error) {
		return kinematics.Velocity(ds.Position, ds.FPS)
	},
	Acceleration: func(ds *dataset.Dataset) (*dataset.Array, error) {
		return kinematics.Acceleration(ds.Position, ds.FPS)
	},
}

// Properties lists the derivable kinematic property names.
func Properties() []string {
	return []string{Displacement, Velocity, Acceleration}
}

// Accessor binds kinematic property access to one dataset.
type Accessor struct {
	ds *dataset.Dataset
}

// New returns an accessor for ds.
func New(ds *dataset.Dataset) *Accessor {
	return &Accessor{ds: ds}
}

// Dataset returns the underlying dataset.
func (a *Accessor) Dataset() *dataset.Dataset { return a.ds }

// Property returns the named data variable, computing and caching it on
// first access.
//
// A variable already present on the dataset is returned directly, with no
// validation or recomputation; once computed, a derived quantity is never
// invalidated, so mutating position afterwards leaves the cached value stale.
// A derivable name triggers schema validation (failing the whole access with
// a wrapped dataset.ErrInvalidDataset) followed by computation, and the
// result is stored on the dataset under the property's name. Any other name
// fails with ErrUnknownProperty.
func (a *Accessor) Property(name string) (*dataset.Array, error) {
	if v, ok := a.ds.Var(name); ok {
		return v, nil
	}
	compute, ok := properties[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	if err := a.ds.Validate(); err != nil {
		return nil, err
	}
	out, err := compute(a.ds)
	if err != nil {
		return nil, err
	}
	a.ds.SetVar(name, out)
	return out, nil
}

// Displacement returns the cached or computed displacement array.
func (a *Accessor) Displacement() (*dataset.Array, error) { return a.Property(Displacement) }

// Velocity returns the cached or computed velocity array.
func (a *Accessor) Velocity() (*dataset.Array, error) { return a.Property(Velocity) }

// Acceleration returns the cached or computed acceleration array.
func (a *Accessor) Acceleration() (*dataset.Array, error) { return a.Property(Acceleration) }
