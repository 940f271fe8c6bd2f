// Package main provides the peakmap command: it loads a set of 2D
// correlation peaks, synthesizes the broadened intensity field, optimises
// the axis label positions so they do not overlap, and writes contour PNG
// and/or heatmap HTML output.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spectra-data/peakmap/internal/config"
	"github.com/spectra-data/peakmap/internal/field"
	"github.com/spectra-data/peakmap/internal/labels"
	"github.com/spectra-data/peakmap/internal/peakdb"
	"github.com/spectra-data/peakmap/internal/peaks"
	"github.com/spectra-data/peakmap/internal/render"
	"github.com/spectra-data/peakmap/internal/version"
)

// Config holds the parsed command line.
type Config struct {
	PeaksFile  string
	ConfigFile string
	DBPath     string
	SetID      string
	SaveName   string
	ListSets    bool
	Dedupe      bool
	ShowVersion bool

	OutPNG    string
	OutHTML   string
	LabelsOut string
	Title     string

	GridSize    int
	Kernel      string
	XBroadening float64
	YBroadening float64
}

// peakJSON is the on-disk peak format accepted by -peaks.
type peakJSON struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Strength *float64 `json:"strength,omitempty"`
	XLabel   string   `json:"x_label"`
	YLabel   string   `json:"y_label"`
	Color    string   `json:"color,omitempty"`
}

// labelsJSON is the adjusted-position output written by -labels-out.
type labelsJSON struct {
	XPositions []float64 `json:"x_positions"`
	YPositions []float64 `json:"y_positions"`
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.PeaksFile, "peaks", "", "JSON file with the peak list")
	flag.StringVar(&cfg.ConfigFile, "config", "", "plot config JSON file")
	flag.StringVar(&cfg.DBPath, "db", "", "SQLite peak store path")
	flag.StringVar(&cfg.SetID, "set", "", "peak set ID to load from the store")
	flag.StringVar(&cfg.SaveName, "save", "", "save the loaded peaks to the store under this name")
	flag.BoolVar(&cfg.ListSets, "list", false, "list stored peak sets and exit")
	flag.BoolVar(&cfg.Dedupe, "dedupe", false, "drop near-duplicate peaks before plotting")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")
	flag.StringVar(&cfg.OutPNG, "out", "", "contour PNG output path")
	flag.StringVar(&cfg.OutHTML, "html", "", "heatmap HTML output path")
	flag.StringVar(&cfg.LabelsOut, "labels-out", "", "write adjusted label positions to this JSON file")
	flag.StringVar(&cfg.Title, "title", "Correlation peaks", "plot title")
	flag.IntVar(&cfg.GridSize, "grid-size", 0, "override grid size")
	flag.StringVar(&cfg.Kernel, "kernel", "", "override broadening kernel (gaussian or lorentzian)")
	flag.Float64Var(&cfg.XBroadening, "x-broadening", 0, "override x broadening")
	flag.Float64Var(&cfg.YBroadening, "y-broadening", 0, "override y broadening")
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("peakmap %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if cfg.ListSets {
		if cfg.DBPath == "" {
			log.Fatal("-list requires -db")
		}
		if err := listSets(cfg.DBPath); err != nil {
			log.Fatalf("Failed to list peak sets: %v", err)
		}
		return
	}

	plotCfg := config.EmptyPlotConfig()
	if cfg.ConfigFile != "" {
		loaded, err := config.LoadPlotConfig(cfg.ConfigFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		plotCfg = loaded
	}

	pks, err := loadPeaks(cfg)
	if err != nil {
		log.Fatalf("Failed to load peaks: %v", err)
	}
	if len(pks) == 0 {
		log.Fatal("No peaks loaded")
	}

	if cfg.Dedupe {
		before := len(pks)
		pks = peaks.Dedupe(pks, peaks.DefaultTolerances())
		log.Printf("Dedupe: %d -> %d peaks", before, len(pks))
	}

	if cfg.SaveName != "" {
		if cfg.DBPath == "" {
			log.Fatal("-save requires -db")
		}
		store, err := peakdb.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open peak store: %v", err)
		}
		id, err := store.SaveSet(cfg.SaveName, pks)
		store.Close()
		if err != nil {
			log.Fatalf("Failed to save peak set: %v", err)
		}
		log.Printf("Saved peak set %q as %s", cfg.SaveName, id)
	}

	fieldOpts := field.Options{
		GridSize:    plotCfg.GetGridSize(),
		Kernel:      field.Kernel(plotCfg.GetKernel()),
		XBroadening: plotCfg.GetXBroadening(),
		YBroadening: plotCfg.GetYBroadening(),
	}
	if cfg.GridSize > 0 {
		fieldOpts.GridSize = cfg.GridSize
	}
	if cfg.Kernel != "" {
		fieldOpts.Kernel = field.Kernel(cfg.Kernel)
	}
	if cfg.XBroadening > 0 {
		fieldOpts.XBroadening = cfg.XBroadening
	}
	if cfg.YBroadening > 0 {
		fieldOpts.YBroadening = cfg.YBroadening
	}

	grid, err := field.Synthesize(pks, fieldOpts)
	if err != nil {
		log.Fatalf("Failed to synthesize field: %v", err)
	}

	optOpts := labels.OptimiseOptions{
		MaxIters:  plotCfg.GetMaxIters(),
		C:         plotCfg.GetRepulsionConstant(),
		K:         plotCfg.GetSpringConstant(),
		Tolerance: plotCfg.GetTolerance(),
		Seed:      plotCfg.GetSeed(),
	}

	xpos := make([]float64, len(pks))
	ypos := make([]float64, len(pks))
	for i, p := range pks {
		xpos[i] = p.X
		ypos[i] = p.Y
	}
	xpos = labels.Optimise(xpos, optOpts)
	ypos = labels.Optimise(ypos, optOpts)

	if cfg.LabelsOut != "" {
		data, err := json.MarshalIndent(labelsJSON{XPositions: xpos, YPositions: ypos}, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal label positions: %v", err)
		}
		if err := os.WriteFile(cfg.LabelsOut, data, 0644); err != nil {
			log.Fatalf("Failed to write label positions: %v", err)
		}
		log.Printf("Wrote adjusted label positions to %s", cfg.LabelsOut)
	}

	if cfg.OutPNG != "" {
		o := render.ContourOptions{Title: cfg.Title, Levels: plotCfg.GetContourLevels()}
		if err := render.ContourPNG(grid, pks, xpos, ypos, o, cfg.OutPNG); err != nil {
			log.Fatalf("Failed to render contour: %v", err)
		}
		log.Printf("Wrote contour plot to %s", cfg.OutPNG)
	}

	if cfg.OutHTML != "" {
		f, err := os.Create(cfg.OutHTML)
		if err != nil {
			log.Fatalf("Failed to create HTML output: %v", err)
		}
		err = render.HeatmapHTML(grid, cfg.Title, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Fatalf("Failed to render heatmap: %v", err)
		}
		log.Printf("Wrote heatmap to %s", cfg.OutHTML)
	}

	if cfg.OutPNG == "" && cfg.OutHTML == "" && cfg.LabelsOut == "" && cfg.SaveName == "" {
		log.Print("Nothing to do: pass -out, -html, -labels-out or -save")
	}
}

func loadPeaks(cfg Config) ([]peaks.Peak, error) {
	switch {
	case cfg.PeaksFile != "":
		return loadPeaksJSON(cfg.PeaksFile)
	case cfg.SetID != "":
		if cfg.DBPath == "" {
			return nil, fmt.Errorf("-set requires -db")
		}
		store, err := peakdb.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadSet(cfg.SetID)
	default:
		return nil, fmt.Errorf("no peak source: pass -peaks or -db/-set")
	}
}

func loadPeaksJSON(path string) ([]peaks.Peak, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []peakJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse peaks JSON: %w", err)
	}

	pks := make([]peaks.Peak, 0, len(raw))
	for i, r := range raw {
		if r.XLabel == "" || r.YLabel == "" {
			return nil, fmt.Errorf("peak %d: x_label and y_label must be non-empty", i)
		}
		p := peaks.New(r.X, r.Y, r.XLabel, r.YLabel)
		if r.Strength != nil {
			p.CorrelationStrength = *r.Strength
		}
		if r.Color != "" {
			p.Color = r.Color
		}
		pks = append(pks, p)
	}
	return pks, nil
}

func listSets(dbPath string) error {
	store, err := peakdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sets, err := store.ListSets()
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		fmt.Println("no peak sets stored")
		return nil
	}
	for _, s := range sets {
		fmt.Printf("%s  %-20s  %4d peaks  %s\n", s.ID, s.Name, s.PeakCount, s.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
