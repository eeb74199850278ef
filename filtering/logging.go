package filtering

import (
	"fmt"

	"github.com/movetrack/posekit/dataset"
)

// Transform is any transformation from one dataset to another.
type Transform func(ds *dataset.Dataset) (*dataset.Dataset, error)

// Logged wraps fn so that every successful call appends an entry named name,
// recording params, to the returned dataset's operation log. Parameter values
// must be representable in the log: numbers, strings, bools, or flat slices
// of those; the wrapper rejects anything else before calling fn.
func Logged(name string, params map[string]any, fn Transform) Transform {
	return func(ds *dataset.Dataset) (*dataset.Dataset, error) {
		for k, v := range params {
			if !representable(v) {
				return nil, fmt.Errorf("operation %q: parameter %q has unloggable type %T", name, k, v)
			}
		}
		out, err := fn(ds)
		if err != nil {
			return nil, err
		}
		out.LogOperation(name, params)
		return out, nil
	}
}

// representable reports whether v can be stored in an operation log entry.
func representable(v any) bool {
	switch t := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	case []string, []int, []float64, []bool:
		return true
	case []any:
		for _, e := range t {
			switch e.(type) {
			case []any:
				return false
			}
			if !representable(e) {
				return false
			}
		}
		return true
	}
	return false
}
