package filtering

import (
	"errors"
	"math"
	"testing"

	"github.com/movetrack/posekit/dataset"
	"github.com/movetrack/posekit/internal/monitoring"
)

var errFailed = errors.New("transform failed")

func muteLogs(t *testing.T) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(prev) })
}

// confDataset builds a one-individual, two-keypoint dataset with the given
// per-frame confidence values for each keypoint and smoothly moving
// positions.
func confDataset(t *testing.T, conf0, conf1 []float64) *dataset.Dataset {
	t.Helper()
	if len(conf0) != len(conf1) {
		t.Fatal("confidence series must have equal length")
	}
	nTime := len(conf0)
	individuals := []string{"mouse_a"}
	keypoints := []string{"snout", "tail_base"}

	posData := make([]float64, nTime*1*2*2)
	for f := 0; f < nTime; f++ {
		for k := 0; k < 2; k++ {
			posData[(f*2+k)*2] = float64(f)            // x
			posData[(f*2+k)*2+1] = float64(10*k + f*2) // y
		}
	}
	pos, err := dataset.NewPositionArray(nTime, individuals, keypoints, []string{"x", "y"}, posData)
	if err != nil {
		t.Fatalf("NewPositionArray: %v", err)
	}

	confData := make([]float64, nTime*2)
	for f := 0; f < nTime; f++ {
		confData[f*2] = conf0[f]
		confData[f*2+1] = conf1[f]
	}
	conf, err := dataset.NewConfidenceArray(nTime, individuals, keypoints, confData)
	if err != nil {
		t.Fatalf("NewConfidenceArray: %v", err)
	}

	ds, err := dataset.New(pos, conf, dataset.Meta{FPS: 30})
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return ds
}

func TestByConfidenceNaNCount(t *testing.T) {
	muteLogs(t)
	// snout drops below 0.6 in 3 frames, tail_base in 1.
	ds := confDataset(t,
		[]float64{0.9, 0.5, 0.5, 0.9, 0.2, 0.9},
		[]float64{0.9, 0.9, 0.9, 0.3, 0.9, 0.9},
	)

	out, err := ByConfidence(ds, 0.6, DefaultConfig())
	if err != nil {
		t.Fatalf("ByConfidence: %v", err)
	}

	// 4 below-threshold triples: 4 confidence NaNs, 4*2 position NaNs.
	if got := out.Confidence.CountNaN(); got != 4 {
		t.Errorf("confidence NaN count = %d, want 4", got)
	}
	if got := out.Position.CountNaN(); got != 8 {
		t.Errorf("position NaN count = %d, want 8", got)
	}

	// The input dataset is untouched.
	if got := ds.Position.CountNaN(); got != 0 {
		t.Errorf("input position NaN count = %d, want 0", got)
	}

	// Exactly the below-threshold samples are masked.
	if !math.IsNaN(out.Position.At(1, 0, 0, 0)) || !math.IsNaN(out.Position.At(1, 0, 0, 1)) {
		t.Error("below-threshold snout frame 1 not masked across space")
	}
	if math.IsNaN(out.Position.At(0, 0, 0, 0)) {
		t.Error("above-threshold sample was masked")
	}

	// Operation appended to the log with its parameters.
	if len(out.Log) != 1 || out.Log[0].Operation != "filter_by_confidence" {
		t.Fatalf("log = %+v, want one filter_by_confidence entry", out.Log)
	}
	if got := out.Log[0].Params["threshold"]; got != 0.6 {
		t.Errorf("logged threshold = %v, want 0.6", got)
	}
}

func TestByConfidenceLeavesNaNConfidenceAlone(t *testing.T) {
	muteLogs(t)
	ds := confDataset(t,
		[]float64{0.9, math.NaN(), 0.9},
		[]float64{0.9, 0.9, 0.9},
	)
	out, err := ByConfidence(ds, 0.6, DefaultConfig())
	if err != nil {
		t.Fatalf("ByConfidence: %v", err)
	}
	// The NaN-confidence sample compares false against the threshold, so
	// its position must survive.
	if math.IsNaN(out.Position.At(1, 0, 0, 0)) {
		t.Error("position masked for NaN confidence")
	}
}

func TestByConfidenceKeepAttrs(t *testing.T) {
	muteLogs(t)
	ds := confDataset(t, []float64{0.9, 0.9}, []float64{0.9, 0.9})

	kept, err := ByConfidence(ds, 0.5, Config{KeepAttrs: true})
	if err != nil {
		t.Fatalf("ByConfidence: %v", err)
	}
	if kept.FPS != 30 || kept.UUID != ds.UUID {
		t.Error("KeepAttrs=true did not carry metadata")
	}

	dropped, err := ByConfidence(ds, 0.5, Config{KeepAttrs: false})
	if err != nil {
		t.Fatalf("ByConfidence: %v", err)
	}
	if dropped.FPS != 0 || dropped.UUID == ds.UUID {
		t.Error("KeepAttrs=false carried metadata")
	}
	// The operation log entry itself is still appended to the fresh log.
	if len(dropped.Log) != 1 {
		t.Errorf("dropped.Log has %d entries, want 1", len(dropped.Log))
	}
}

func TestByConfidenceInvalidDataset(t *testing.T) {
	muteLogs(t)
	ds := confDataset(t, []float64{0.9}, []float64{0.9})
	ds.Confidence = nil
	if _, err := ByConfidence(ds, 0.6, DefaultConfig()); err == nil {
		t.Error("ByConfidence on invalid dataset succeeded, want error")
	}
}

func TestLoggedWrapperRecordsNameAndParams(t *testing.T) {
	muteLogs(t)
	ds := confDataset(t, []float64{0.9, 0.9}, []float64{0.9, 0.9})

	centre := func(in *dataset.Dataset) (*dataset.Dataset, error) {
		out := in.Copy(true)
		return out, nil
	}
	wrapped := Logged("centre_tracks", map[string]any{
		"origin": "first_frame",
		"scale":  2.5,
	}, centre)

	out, err := wrapped(ds)
	if err != nil {
		t.Fatalf("wrapped transform: %v", err)
	}
	if len(out.Log) != 1 {
		t.Fatalf("log has %d entries, want 1", len(out.Log))
	}
	e := out.Log[0]
	if e.Operation != "centre_tracks" {
		t.Errorf("Operation = %q, want centre_tracks", e.Operation)
	}
	if e.Params["origin"] != "first_frame" || e.Params["scale"] != 2.5 {
		t.Errorf("Params = %v", e.Params)
	}
}

func TestLoggedWrapperRejectsUnloggableParams(t *testing.T) {
	muteLogs(t)
	ds := confDataset(t, []float64{0.9}, []float64{0.9})

	called := false
	wrapped := Logged("bad", map[string]any{
		"callback": func() {},
	}, func(in *dataset.Dataset) (*dataset.Dataset, error) {
		called = true
		return in, nil
	})

	if _, err := wrapped(ds); err == nil {
		t.Error("wrapper accepted an unloggable parameter")
	}
	if called {
		t.Error("wrapped function ran despite unloggable parameter")
	}
}

func TestLoggedWrapperSkipsLogOnError(t *testing.T) {
	muteLogs(t)
	ds := confDataset(t, []float64{0.9}, []float64{0.9})

	wrapped := Logged("failing", nil, func(*dataset.Dataset) (*dataset.Dataset, error) {
		return nil, errFailed
	})
	if _, err := wrapped(ds); err == nil {
		t.Error("wrapped error was swallowed")
	}
	if len(ds.Log) != 0 {
		t.Error("failed transform was logged")
	}
}
