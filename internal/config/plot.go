// Package config loads plot and optimiser tuning from JSON. Fields are
// pointers so a partial config file only overrides what it names; the Get*
// accessors supply defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PlotConfig represents the root configuration for field synthesis and
// label placement. The same JSON schema is accepted at startup and for
// per-invocation overrides.
type PlotConfig struct {
	// Field synthesis params
	GridSize    *int     `json:"grid_size,omitempty"`
	Kernel      *string  `json:"kernel,omitempty"` // "gaussian" or "lorentzian"
	XBroadening *float64 `json:"x_broadening,omitempty"`
	YBroadening *float64 `json:"y_broadening,omitempty"`

	// Label optimiser params
	RepulsionConstant *float64 `json:"repulsion_constant,omitempty"`
	SpringConstant    *float64 `json:"spring_constant,omitempty"`
	MaxIters          *int     `json:"max_iters,omitempty"`
	Tolerance         *float64 `json:"tolerance,omitempty"`
	Seed              *uint64  `json:"seed,omitempty"`

	// Rendering params
	ContourLevels *int `json:"contour_levels,omitempty"`
}

// EmptyPlotConfig returns a PlotConfig with all fields set to nil.
// Use LoadPlotConfig to load actual values from a file.
func EmptyPlotConfig() *PlotConfig {
	return &PlotConfig{}
}

// LoadPlotConfig loads a PlotConfig from a JSON file. The file must have a
// .json extension and stay under the max file size. Fields omitted from the
// JSON retain their defaults, so partial configs are safe.
func LoadPlotConfig(path string) (*PlotConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPlotConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *PlotConfig) Validate() error {
	if c.GridSize != nil && *c.GridSize < 2 {
		return fmt.Errorf("grid_size must be at least 2, got %d", *c.GridSize)
	}
	if c.Kernel != nil {
		switch *c.Kernel {
		case "gaussian", "lorentzian":
		default:
			return fmt.Errorf("unknown broadening kernel: %q", *c.Kernel)
		}
	}
	if c.XBroadening != nil && *c.XBroadening <= 0 {
		return fmt.Errorf("x_broadening must be positive, got %f", *c.XBroadening)
	}
	if c.YBroadening != nil && *c.YBroadening <= 0 {
		return fmt.Errorf("y_broadening must be positive, got %f", *c.YBroadening)
	}
	if c.RepulsionConstant != nil && *c.RepulsionConstant <= 0 {
		return fmt.Errorf("repulsion_constant must be positive, got %f", *c.RepulsionConstant)
	}
	if c.SpringConstant != nil && *c.SpringConstant <= 0 {
		return fmt.Errorf("spring_constant must be positive, got %f", *c.SpringConstant)
	}
	if c.MaxIters != nil && *c.MaxIters < 0 {
		return fmt.Errorf("max_iters must be non-negative, got %d", *c.MaxIters)
	}
	if c.Tolerance != nil && *c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %f", *c.Tolerance)
	}
	if c.ContourLevels != nil && *c.ContourLevels < 1 {
		return fmt.Errorf("contour_levels must be at least 1, got %d", *c.ContourLevels)
	}
	return nil
}

// GetGridSize returns the grid_size value or the default.
func (c *PlotConfig) GetGridSize() int {
	if c.GridSize == nil {
		return 100
	}
	return *c.GridSize
}

// GetKernel returns the kernel value or the default.
func (c *PlotConfig) GetKernel() string {
	if c.Kernel == nil {
		return "gaussian"
	}
	return *c.Kernel
}

// GetXBroadening returns the x_broadening value or the default.
func (c *PlotConfig) GetXBroadening() float64 {
	if c.XBroadening == nil {
		return 1.0
	}
	return *c.XBroadening
}

// GetYBroadening returns the y_broadening value or the default.
func (c *PlotConfig) GetYBroadening() float64 {
	if c.YBroadening == nil {
		return 1.0
	}
	return *c.YBroadening
}

// GetRepulsionConstant returns the repulsion_constant value or the default.
func (c *PlotConfig) GetRepulsionConstant() float64 {
	if c.RepulsionConstant == nil {
		return 0.01
	}
	return *c.RepulsionConstant
}

// GetSpringConstant returns the spring_constant value or the default.
func (c *PlotConfig) GetSpringConstant() float64 {
	if c.SpringConstant == nil {
		return 0.00001
	}
	return *c.SpringConstant
}

// GetMaxIters returns the max_iters value or the default.
func (c *PlotConfig) GetMaxIters() int {
	if c.MaxIters == nil {
		return 10000
	}
	return *c.MaxIters
}

// GetTolerance returns the tolerance value or the default.
func (c *PlotConfig) GetTolerance() float64 {
	if c.Tolerance == nil {
		return 1e-3
	}
	return *c.Tolerance
}

// GetSeed returns the seed value or the default.
func (c *PlotConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return 0
	}
	return *c.Seed
}

// GetContourLevels returns the contour_levels value or the default.
func (c *PlotConfig) GetContourLevels() int {
	if c.ContourLevels == nil {
		return 12
	}
	return *c.ContourLevels
}
