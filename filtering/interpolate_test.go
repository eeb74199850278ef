package filtering

import (
	"math"
	"testing"

	"github.com/movetrack/posekit/dataset"
)

// gapDataset builds a one-individual, one-keypoint dataset whose x series is
// the frame number and whose y series is twice the frame number, with NaN
// holes at the given frames (in both position components and confidence).
func gapDataset(t *testing.T, nTime int, holes ...int) *dataset.Dataset {
	t.Helper()
	individuals := []string{"mouse_a"}
	keypoints := []string{"snout"}

	posData := make([]float64, nTime*2)
	confData := make([]float64, nTime)
	for f := 0; f < nTime; f++ {
		posData[f*2] = float64(f)
		posData[f*2+1] = float64(2 * f)
		confData[f] = 0.9
	}
	for _, h := range holes {
		posData[h*2] = math.NaN()
		posData[h*2+1] = math.NaN()
		confData[h] = math.NaN()
	}

	pos, err := dataset.NewPositionArray(nTime, individuals, keypoints, []string{"x", "y"}, posData)
	if err != nil {
		t.Fatalf("NewPositionArray: %v", err)
	}
	conf, err := dataset.NewConfidenceArray(nTime, individuals, keypoints, confData)
	if err != nil {
		t.Fatalf("NewConfidenceArray: %v", err)
	}
	ds, err := dataset.New(pos, conf, dataset.Meta{FPS: 10})
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return ds
}

func TestInterpolateFillsInteriorGapExactly(t *testing.T) {
	ds := gapDataset(t, 10, 3, 4)

	out, err := InterpolateOverTime(ds, InterpOptions{}, DefaultConfig())
	if err != nil {
		t.Fatalf("InterpolateOverTime: %v", err)
	}

	if got := out.Position.CountNaN(); got != 0 {
		t.Errorf("position NaN count after interpolation = %d, want 0", got)
	}
	// Linear motion interpolates back to the exact series.
	for _, f := range []int{3, 4} {
		if got := out.Position.At(f, 0, 0, 0); math.Abs(got-float64(f)) > 1e-9 {
			t.Errorf("interpolated x[%d] = %v, want %d", f, got, f)
		}
		if got := out.Position.At(f, 0, 0, 1); math.Abs(got-float64(2*f)) > 1e-9 {
			t.Errorf("interpolated y[%d] = %v, want %d", f, got, 2*f)
		}
	}

	if len(out.Log) != 1 || out.Log[0].Operation != "interpolate_over_time" {
		t.Fatalf("log = %+v, want one interpolate_over_time entry", out.Log)
	}
	if got := out.Log[0].Params["method"]; got != "linear" {
		t.Errorf("logged method = %v, want linear", got)
	}
}

func TestInterpolateMonotonicNaNReduction(t *testing.T) {
	// Interior gap plus a leading gap that cannot be filled.
	ds := gapDataset(t, 12, 0, 5, 6, 7)
	before := ds.Position.CountNaN()

	out, err := InterpolateOverTime(ds, InterpOptions{}, DefaultConfig())
	if err != nil {
		t.Fatalf("InterpolateOverTime: %v", err)
	}
	after := out.Position.CountNaN()

	if after > before {
		t.Errorf("NaN count increased: %d -> %d", before, after)
	}
	// The finite interior gap guarantees a strict reduction.
	if after >= before {
		t.Errorf("NaN count not strictly reduced: %d -> %d", before, after)
	}
	// Leading gap has no left neighbor: left unfilled, no extrapolation.
	if !math.IsNaN(out.Position.At(0, 0, 0, 0)) {
		t.Error("leading gap was extrapolated")
	}
}

func TestInterpolateMaxGapBound(t *testing.T) {
	// One 1-frame gap and one 3-frame gap.
	ds := gapDataset(t, 12, 2, 6, 7, 8)

	out, err := InterpolateOverTime(ds, InterpOptions{MaxGap: 2}, DefaultConfig())
	if err != nil {
		t.Fatalf("InterpolateOverTime: %v", err)
	}

	if math.IsNaN(out.Position.At(2, 0, 0, 0)) {
		t.Error("1-frame gap not filled under MaxGap=2")
	}
	for _, f := range []int{6, 7, 8} {
		if !math.IsNaN(out.Position.At(f, 0, 0, 0)) {
			t.Errorf("frame %d of a 3-frame gap filled despite MaxGap=2", f)
		}
	}
}

func TestInterpolateLimitFillsGapPrefix(t *testing.T) {
	ds := gapDataset(t, 12, 4, 5, 6)

	out, err := InterpolateOverTime(ds, InterpOptions{Limit: 2}, DefaultConfig())
	if err != nil {
		t.Fatalf("InterpolateOverTime: %v", err)
	}
	if math.IsNaN(out.Position.At(4, 0, 0, 0)) || math.IsNaN(out.Position.At(5, 0, 0, 0)) {
		t.Error("first two samples of the gap not filled under Limit=2")
	}
	if !math.IsNaN(out.Position.At(6, 0, 0, 0)) {
		t.Error("third sample of the gap filled despite Limit=2")
	}
}

func TestInterpolateNearestMethod(t *testing.T) {
	ds := gapDataset(t, 8, 3)

	out, err := InterpolateOverTime(ds, InterpOptions{Method: Nearest}, DefaultConfig())
	if err != nil {
		t.Fatalf("InterpolateOverTime: %v", err)
	}
	got := out.Position.At(3, 0, 0, 0)
	// The piecewise-constant policy snaps to a neighboring valid sample.
	if got != 2 && got != 4 {
		t.Errorf("nearest-filled x[3] = %v, want a neighboring sample (2 or 4)", got)
	}
}

func TestInterpolateUnknownMethod(t *testing.T) {
	ds := gapDataset(t, 8, 3)
	if _, err := InterpolateOverTime(ds, InterpOptions{Method: "cubic_hermite"}, DefaultConfig()); err == nil {
		t.Error("unknown method accepted")
	}
}

func TestInterpolateAfterFilterPipeline(t *testing.T) {
	muteLogs(t)
	ds := confDataset(t,
		[]float64{0.9, 0.2, 0.9, 0.9, 0.2, 0.9},
		[]float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9},
	)

	filtered, err := ByConfidence(ds, 0.6, DefaultConfig())
	if err != nil {
		t.Fatalf("ByConfidence: %v", err)
	}
	interpolated, err := InterpolateOverTime(filtered, InterpOptions{}, DefaultConfig())
	if err != nil {
		t.Fatalf("InterpolateOverTime: %v", err)
	}

	if got, want := interpolated.Position.CountNaN(), 0; got != want {
		t.Errorf("position NaN count = %d, want %d", got, want)
	}
	// Both operations are visible in the provenance log, in order.
	if len(interpolated.Log) != 2 ||
		interpolated.Log[0].Operation != "filter_by_confidence" ||
		interpolated.Log[1].Operation != "interpolate_over_time" {
		t.Errorf("log = %+v", interpolated.Log)
	}
}
