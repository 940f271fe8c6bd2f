// Package render draws synthesized peak fields: a contour PNG via
// gonum/plot for reports, and an HTML heatmap via go-echarts for quick
// in-browser inspection. The numeric core stays rendering-free; this
// package is its only consumer that touches pixels.
package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/spectra-data/peakmap/internal/field"
	"github.com/spectra-data/peakmap/internal/peaks"
)

// ContourOptions tunes the PNG output.
type ContourOptions struct {
	Title  string
	Levels int
}

// gridXYZ adapts a field.Grid to gonum/plot's GridXYZ. The meshes are
// rectilinear, so the coordinate of a column (row) can be read off the
// first row (column).
type gridXYZ struct {
	g *field.Grid
}

func (g gridXYZ) Dims() (c, r int) {
	rows, cols := g.g.Z.Dims()
	return cols, rows
}

func (g gridXYZ) Z(c, r int) float64 { return g.g.Z.At(r, c) }
func (g gridXYZ) X(c int) float64    { return g.g.X.At(0, c) }
func (g gridXYZ) Y(r int) float64    { return g.g.Y.At(r, 0) }

// ContourPNG renders the intensity grid as filled contours with peak labels
// placed at the optimiser-adjusted coordinates. xpos and ypos hold the
// adjusted x-axis and y-axis label positions, one per peak; pass the raw
// peak coordinates to skip adjustment. Labels sit on the top (x) and right
// (y) plot edges, the convention for 2D correlation spectra.
func ContourPNG(g *field.Grid, pks []peaks.Peak, xpos, ypos []float64, o ContourOptions, path string) error {
	if len(xpos) != len(pks) || len(ypos) != len(pks) {
		return fmt.Errorf("label positions (%d, %d) do not match peak count %d", len(xpos), len(ypos), len(pks))
	}
	if o.Levels < 1 {
		o.Levels = 12
	}

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	grid := gridXYZ{g}
	c := plotter.NewContour(grid, contourLevels(g, o.Levels), palette.Heat(o.Levels, 255))
	p.Add(c)

	rows, cols := g.Z.Dims()
	yTop := g.Y.At(rows-1, 0)
	xRight := g.X.At(0, cols-1)

	xl := plotter.XYLabels{}
	for i, pk := range pks {
		xl.XYs = append(xl.XYs,
			plotter.XY{X: xpos[i], Y: yTop},
			plotter.XY{X: xRight, Y: ypos[i]},
		)
		xl.Labels = append(xl.Labels, pk.XLabel, pk.YLabel)
	}
	labels, err := plotter.NewLabels(xl)
	if err != nil {
		return fmt.Errorf("build labels: %w", err)
	}
	p.Add(labels)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save contour plot: %w", err)
	}
	return nil
}

// contourLevels spreads n levels evenly across the intensity range,
// excluding the extremes so the lowest contour is visible.
func contourLevels(g *field.Grid, n int) []float64 {
	zMin, zMax := g.Z.At(0, 0), g.Z.At(0, 0)
	rows, cols := g.Z.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := g.Z.At(r, c)
			if v < zMin {
				zMin = v
			}
			if v > zMax {
				zMax = v
			}
		}
	}
	if zMax == zMin {
		return []float64{zMin}
	}

	levels := make([]float64, n)
	step := (zMax - zMin) / float64(n+1)
	for i := range levels {
		levels[i] = zMin + float64(i+1)*step
	}
	return levels
}
