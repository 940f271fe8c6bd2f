// Package field synthesizes the 2D intensity grid that correlation peaks
// are drawn on. Each peak contributes a broadened kernel weighted by its
// correlation strength; the result is a sampled scalar field handed to a
// rendering layer as-is.
package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/spectra-data/peakmap/internal/peaks"
)

// Kernel names a broadening function.
type Kernel string

const (
	KernelGaussian   Kernel = "gaussian"
	KernelLorentzian Kernel = "lorentzian"
)

// Limits is an explicit axis range, overriding the bounds derived from the
// peak positions.
type Limits struct {
	Min float64
	Max float64
}

// Options configures Synthesize. The zero value is not useful; start from
// DefaultOptions and override.
type Options struct {
	GridSize    int
	Kernel      Kernel
	XBroadening float64
	YBroadening float64
	XLimits     *Limits
	YLimits     *Limits
}

// DefaultOptions returns a 100x100 gaussian grid with unit broadening on
// both axes and bounds derived from the peaks.
func DefaultOptions() Options {
	return Options{
		GridSize:    100,
		Kernel:      KernelGaussian,
		XBroadening: 1.0,
		YBroadening: 1.0,
	}
}

// Grid is a sampled scalar field: two coordinate meshes and one intensity
// mesh, all GridSize x GridSize. X varies along columns and Y along rows.
// Ownership passes entirely to the caller; nothing here retains it.
type Grid struct {
	X *mat.Dense
	Y *mat.Dense
	Z *mat.Dense
}

// kernelFunc evaluates a broadening function at (x, y) for a peak centred at
// (x0, y0) with half-widths (wx, wy).
type kernelFunc func(x, x0, y, y0, wx, wy float64) float64

// gaussian is exp(-((x-x0)^2/(2 wx^2) + (y-y0)^2/(2 wy^2))); wx, wy are the
// standard deviations.
func gaussian(x, x0, y, y0, wx, wy float64) float64 {
	dx := x - x0
	dy := y - y0
	return math.Exp(-(dx*dx/(2*wx*wx) + dy*dy/(2*wy*wy)))
}

// lorentzian currently shares the gaussian form. Upstream documents the HWHM
// form 1/(1 + ((x-x0)/wx)^2 + ((y-y0)/wy)^2) but has always evaluated the
// gaussian here, and rendered output has been baselined against that.
// TODO: switch to the documented form once downstream contour baselines are
// regenerated.
func lorentzian(x, x0, y, y0, wx, wy float64) float64 {
	return gaussian(x, x0, y, y0, wx, wy)
}

func kernelFor(k Kernel) (kernelFunc, error) {
	switch k {
	case KernelGaussian:
		return gaussian, nil
	case KernelLorentzian:
		return lorentzian, nil
	default:
		return nil, fmt.Errorf("unknown broadening kernel: %q", string(k))
	}
}

// Synthesize samples the combined broadened intensity of the given peaks on
// an evenly spaced GridSize x GridSize mesh. Bounds come from the peak
// coordinate extremes unless explicit limits are given, padded by five
// broadening half-widths per side so kernel tails stay visible. Pure
// function of its inputs: no partial grid is returned on error.
func Synthesize(pks []peaks.Peak, o Options) (*Grid, error) {
	kern, err := kernelFor(o.Kernel)
	if err != nil {
		return nil, err
	}
	if o.GridSize < 2 {
		return nil, fmt.Errorf("grid size must be at least 2, got %d", o.GridSize)
	}
	if len(pks) == 0 && (o.XLimits == nil || o.YLimits == nil) {
		return nil, fmt.Errorf("no peaks and no explicit limits: cannot derive grid bounds")
	}

	xMin, xMax := bounds(pks, o.XLimits, func(p peaks.Peak) float64 { return p.X })
	yMin, yMax := bounds(pks, o.YLimits, func(p peaks.Peak) float64 { return p.Y })

	xMin -= 5 * o.XBroadening
	xMax += 5 * o.XBroadening
	yMin -= 5 * o.YBroadening
	yMax += 5 * o.YBroadening

	n := o.GridSize
	xs := linspace(xMin, xMax, n)
	ys := linspace(yMin, yMax, n)

	g := &Grid{
		X: mat.NewDense(n, n, nil),
		Y: mat.NewDense(n, n, nil),
		Z: mat.NewDense(n, n, nil),
	}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			g.X.Set(r, c, xs[c])
			g.Y.Set(r, c, ys[r])
		}
	}

	for _, p := range pks {
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				v := p.CorrelationStrength * kern(xs[c], p.X, ys[r], p.Y, o.XBroadening, o.YBroadening)
				g.Z.Set(r, c, g.Z.At(r, c)+v)
			}
		}
	}
	return g, nil
}

func bounds(pks []peaks.Peak, lim *Limits, coord func(peaks.Peak) float64) (float64, float64) {
	if lim != nil {
		return lim.Min, lim.Max
	}
	min, max := coord(pks[0]), coord(pks[0])
	for _, p := range pks[1:] {
		v := coord(p)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func linspace(min, max float64, n int) []float64 {
	out := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	// guard against accumulated rounding on the last sample
	out[n-1] = max
	return out
}
