package labels

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// OptimiseOptions tunes the label placement optimisation. Zero values are
// not useful; start from DefaultOptimiseOptions.
type OptimiseOptions struct {
	// MaxIters caps the number of descent iterations.
	MaxIters int
	// C is the repulsion constant between labels.
	C float64
	// K is the spring constant pulling a label to its original position.
	K float64
	// Tolerance is the convergence threshold: iteration stops once the
	// projected gradient or the per-step energy decrease falls below it.
	Tolerance float64
	// Seed feeds the tie-break noise source for coincident positions.
	Seed uint64
}

// DefaultOptimiseOptions returns the standard tuning: 10000 iterations,
// C=0.01, K=1e-5, tolerance 1e-3.
func DefaultOptimiseOptions() OptimiseOptions {
	return OptimiseOptions{
		MaxIters:  10000,
		C:         0.01,
		K:         0.00001,
		Tolerance: 1e-3,
	}
}

// Optimise spreads the given 1D label positions apart so they no longer
// crowd each other, keeping each as close as possible to its input value.
// The first and last position (in sorted order) are held fixed, and every
// result stays within [min(input), max(input)].
//
// Internally the positions are sorted, normalised to [0, 1] by the input
// min and range (so C and K are scale-invariant across plot coordinate
// ranges), and descended along the force-field gradient under projection:
// after each trial step interior coordinates are clamped to [0, 1] and the
// two endpoints reset to their original normalised values, which enforces
// the constraint set exactly. A backtracking line search only accepts
// energy-decreasing steps, so the energy of the iterate sequence is
// non-increasing. On hitting MaxIters the best iterate so far is returned;
// non-convergence is not an error.
//
// The result has the same length and ordering as the input. Inputs must be
// finite real numbers; fewer than three positions (or all positions equal)
// are returned unchanged.
func Optimise(positions []float64, o OptimiseOptions) []float64 {
	out := make([]float64, len(positions))
	copy(out, positions)
	if len(positions) < 3 {
		return out
	}

	n := len(positions)

	// Sort, remembering the permutation so the result can be returned in
	// input order.
	sorted := make([]float64, n)
	copy(sorted, positions)
	perm := make([]int, n)
	floats.Argsort(sorted, perm)

	minPos := sorted[0]
	rng := sorted[n-1] - minPos
	if rng == 0 {
		// All labels coincide; normalisation is undefined and no spread
		// target exists.
		return out
	}

	// Normalise into [0, 1] using the original min and range.
	x := make([]float64, n)
	orig := make([]float64, n)
	for i, p := range sorted {
		x[i] = (p - minPos) / rng
		orig[i] = x[i]
	}

	ff := NewForceField(o.C, o.K, o.Seed)
	descend(x, orig, ff, o)

	// Rescale and restore input order.
	for i, xi := range x {
		out[perm[i]] = xi*rng + minPos
	}
	return out
}

// descend runs projected gradient descent with backtracking line search on
// the force-field energy, mutating x in place. x and orig are normalised,
// sorted coordinates; x[0] and x[len-1] stay pinned to orig.
func descend(x, orig []float64, ff *ForceField, o OptimiseOptions) {
	n := len(x)
	energy := ff.Energy(x, orig)
	step := 1e-2
	cand := make([]float64, n)

	for iter := 0; iter < o.MaxIters; iter++ {
		grad := ff.TotalForces(x, orig)
		// Pinned endpoints never move.
		grad[0] = 0
		grad[n-1] = 0

		gInf := floats.Norm(grad, math.Inf(1))
		if gInf < o.Tolerance {
			return
		}

		// Cap per-step displacement at a tenth of the normalised range.
		// Crowded labels produce enormous gradients; an uncapped step would
		// fling several labels onto the same clamped bound, where the
		// coincidence cutoff drops their pair energy and the line search
		// would accept the collapse as a decrease.
		t0 := step
		if maxT := 0.1 / gInf; maxT < t0 {
			t0 = maxT
		}

		accepted := false
		for t := t0; t > 1e-14; t /= 2 {
			project(cand, x, grad, t, orig)
			if e := ff.Energy(cand, orig); e < energy {
				decrease := energy - e
				copy(x, cand)
				energy = e
				// Let the step grow back so progress is not permanently
				// throttled by one bad iteration.
				step = 2 * t
				accepted = true
				if decrease < o.Tolerance*math.Max(1, math.Abs(energy)) {
					return
				}
				break
			}
		}
		if !accepted {
			// No decreasing step exists at any reachable length; the
			// current iterate is the best available.
			return
		}
	}
}

// project writes x - t*grad into dst, clamped to the unit interval, with the
// endpoint equality constraints re-applied.
func project(dst, x, grad []float64, t float64, orig []float64) {
	n := len(x)
	for i := range x {
		v := x[i] - t*grad[i]
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		dst[i] = v
	}
	dst[0] = orig[0]
	dst[n-1] = orig[n-1]
}
