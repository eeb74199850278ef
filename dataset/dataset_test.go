package dataset

import (
	"testing"
)

func testDataset(t *testing.T, fps float64) *Dataset {
	t.Helper()
	individuals := []string{"mouse_a", "mouse_b"}
	keypoints := []string{"snout", "tail_base"}
	space := []string{"x", "y"}

	pos, err := NewPositionArray(5, individuals, keypoints, space, nil)
	if err != nil {
		t.Fatalf("NewPositionArray: %v", err)
	}
	conf, err := NewConfidenceArray(5, individuals, keypoints, nil)
	if err != nil {
		t.Fatalf("NewConfidenceArray: %v", err)
	}
	ds, err := New(pos, conf, Meta{FPS: fps, SourceSoftware: "SLEAP"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ds
}

func TestNewTimeCoordinates(t *testing.T) {
	ds := testDataset(t, 50)
	if ds.TimeUnit != TimeUnitSeconds {
		t.Errorf("TimeUnit = %q, want %q", ds.TimeUnit, TimeUnitSeconds)
	}
	if got, want := ds.Time[1], 1.0/50; got != want {
		t.Errorf("Time[1] = %v, want %v", got, want)
	}

	ds = testDataset(t, 0)
	if ds.TimeUnit != TimeUnitFrames {
		t.Errorf("TimeUnit = %q, want %q", ds.TimeUnit, TimeUnitFrames)
	}
	if got := ds.Time[3]; got != 3 {
		t.Errorf("Time[3] = %v, want 3", got)
	}
}

func TestNewAssignsUUID(t *testing.T) {
	a := testDataset(t, 30)
	b := testDataset(t, 30)
	if a.UUID == "" {
		t.Fatal("dataset UUID is empty")
	}
	if a.UUID == b.UUID {
		t.Errorf("two datasets share UUID %q", a.UUID)
	}
}

func TestVarResolvesCoreAndDerived(t *testing.T) {
	ds := testDataset(t, 30)
	if v, ok := ds.Var(VarPosition); !ok || v != ds.Position {
		t.Error("Var(position) did not return the position array")
	}
	if _, ok := ds.Var("velocity"); ok {
		t.Error("Var(velocity) found before being stored")
	}

	derived := ds.Position.Clone()
	ds.SetVar("velocity", derived)
	if v, ok := ds.Var("velocity"); !ok || v != derived {
		t.Error("Var(velocity) did not return the stored array")
	}
	if got := ds.VarNames(); len(got) != 1 || got[0] != "velocity" {
		t.Errorf("VarNames() = %v, want [velocity]", got)
	}
}

func TestLogOperationCopiesParams(t *testing.T) {
	ds := testDataset(t, 30)
	params := map[string]any{"threshold": 0.6}
	ds.LogOperation("filter_by_confidence", params)
	params["threshold"] = 0.9

	if len(ds.Log) != 1 {
		t.Fatalf("len(Log) = %d, want 1", len(ds.Log))
	}
	e := ds.Log[0]
	if e.Operation != "filter_by_confidence" {
		t.Errorf("Operation = %q", e.Operation)
	}
	if got := e.Params["threshold"]; got != 0.6 {
		t.Errorf("logged threshold = %v, want 0.6 (params must be copied)", got)
	}
	if e.Time.IsZero() {
		t.Error("log entry has zero timestamp")
	}
}

func TestCopyKeepAttrs(t *testing.T) {
	ds := testDataset(t, 30)
	ds.LogOperation("noop", nil)

	kept := ds.Copy(true)
	if kept.UUID != ds.UUID || kept.FPS != ds.FPS || len(kept.Log) != 1 {
		t.Error("Copy(true) did not carry metadata")
	}
	kept.Position.Set(5, 0, 0, 0, 0)
	if ds.Position.At(0, 0, 0, 0) == 5 {
		t.Error("Copy(true) shares position storage with the original")
	}

	dropped := ds.Copy(false)
	if dropped.UUID == ds.UUID {
		t.Error("Copy(false) kept the UUID")
	}
	if dropped.FPS != 0 || dropped.SourceSoftware != "" || len(dropped.Log) != 0 {
		t.Error("Copy(false) carried metadata")
	}
	if dropped.TimeUnit != TimeUnitFrames || dropped.Time[1] != 1 {
		t.Errorf("Copy(false) time coords = %v %v", dropped.TimeUnit, dropped.Time)
	}
}
