package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spectra-data/peakmap/internal/field"
	"github.com/spectra-data/peakmap/internal/peaks"
)

func testGrid(t *testing.T) (*field.Grid, []peaks.Peak) {
	t.Helper()
	pks := []peaks.Peak{
		peaks.New(0, 0, "C1", "H1"),
		peaks.New(5, 5, "C2", "H2"),
	}
	o := field.DefaultOptions()
	o.GridSize = 20
	g, err := field.Synthesize(pks, o)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	return g, pks
}

func TestContourPNG(t *testing.T) {
	g, pks := testGrid(t)
	path := filepath.Join(t.TempDir(), "contour.png")

	xpos := []float64{0, 5}
	ypos := []float64{0, 5}
	if err := ContourPNG(g, pks, xpos, ypos, ContourOptions{Title: "test"}, path); err != nil {
		t.Fatalf("ContourPNG: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("contour PNG is empty")
	}
}

func TestContourPNGLabelCountMismatch(t *testing.T) {
	g, pks := testGrid(t)
	path := filepath.Join(t.TempDir(), "contour.png")

	err := ContourPNG(g, pks, []float64{0}, []float64{0, 5}, ContourOptions{}, path)
	if err == nil {
		t.Fatal("expected error for mismatched label positions")
	}
	if _, statErr := os.Stat(path); statErr == nil {
		t.Error("no output file should exist on error")
	}
}

func TestHeatmapHTML(t *testing.T) {
	g, _ := testGrid(t)

	var buf bytes.Buffer
	if err := HeatmapHTML(g, "test heatmap", &buf); err != nil {
		t.Fatalf("HeatmapHTML: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "echarts") {
		t.Error("output does not look like an echarts page")
	}
	if !strings.Contains(out, "test heatmap") {
		t.Error("output missing the page title")
	}
}
