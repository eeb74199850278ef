package report

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/movetrack/posekit/dataset"
)

// PlotTrajectory saves an x/y trajectory plot of one keypoint of one
// individual to path (format chosen by extension, e.g. .png or .svg).
// Frames with a NaN component are skipped.
func PlotTrajectory(path string, ds *dataset.Dataset, individual, keypoint string) error {
	pos := ds.Position
	if pos == nil {
		return fmt.Errorf("dataset has no position array")
	}
	i, err := pos.CoordIndex(dataset.DimIndividuals, individual)
	if err != nil {
		return err
	}
	k, err := pos.CoordIndex(dataset.DimKeypoints, keypoint)
	if err != nil {
		return err
	}
	nTime, err := pos.DimLen(dataset.DimTime)
	if err != nil {
		return err
	}

	pts := make(plotter.XYs, 0, nTime)
	for t := 0; t < nTime; t++ {
		x := pos.At(t, i, k, 0)
		y := pos.At(t, i, k, 1)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	if len(pts) == 0 {
		return fmt.Errorf("no valid samples for %s/%s", individual, keypoint)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Trajectory: %s / %s", individual, keypoint)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("failed to build trajectory plot: %w", err)
	}
	points.Radius = vg.Points(1.5)
	p.Add(line, points)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save trajectory plot: %w", err)
	}
	return nil
}
