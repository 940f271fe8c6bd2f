package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/spectra-data/peakmap/internal/field"
)

// viridis is the color ramp used for intensity visual maps.
var viridis = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// HeatmapHTML renders the intensity grid as a standalone go-echarts heatmap
// page. Axis categories carry the real grid coordinates so hover tooltips
// are meaningful.
func HeatmapHTML(g *field.Grid, title string, w io.Writer) error {
	rows, cols := g.Z.Dims()

	xCats := make([]string, cols)
	for c := 0; c < cols; c++ {
		xCats[c] = fmt.Sprintf("%.2f", g.X.At(0, c))
	}
	yCats := make([]string, rows)
	for r := 0; r < rows; r++ {
		yCats[r] = fmt.Sprintf("%.2f", g.Y.At(r, 0))
	}

	data := make([]opts.HeatMapData, 0, rows*cols)
	zMin, zMax := g.Z.At(0, 0), g.Z.At(0, 0)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := g.Z.At(r, c)
			if v < zMin {
				zMin = v
			}
			if v > zMax {
				zMax = v
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c, r, v}})
		}
	}
	if zMax == zMin {
		zMax = zMin + 1
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("grid=%dx%d", rows, cols)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xCats, Name: "x"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: yCats, Name: "y"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(zMin),
			Max:        float32(zMax),
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	hm.AddSeries("intensity", data)

	if err := hm.Render(w); err != nil {
		return fmt.Errorf("failed to render heatmap: %w", err)
	}
	return nil
}
