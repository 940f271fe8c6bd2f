// Package labels places one-dimensional annotation labels so they do not
// overlap, while staying as close as possible to their data-derived
// positions. A physics-style force field defines what a good placement is;
// Optimise drives a constrained descent over its energy.
package labels

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Epsilon is the gap below which two label positions count as coincident.
// Coincident pairs contribute no energy and get a randomized tie-break force
// instead of an undefined gradient.
const Epsilon = 1e-8

// ForceField computes pairwise repulsion between label positions plus a
// Hookean restoring force pulling each label back to its original position.
// C is the repulsion constant, K the spring constant; both must be positive
// for the optimisation to be meaningful (caller responsibility, not
// enforced). The tie-break noise source is injected via the seed so runs are
// reproducible.
type ForceField struct {
	C float64
	K float64

	noise distuv.Normal
}

// NewForceField returns a force field with the given constants and a seeded
// tie-break noise source.
func NewForceField(c, k float64, seed uint64) *ForceField {
	return &ForceField{
		C: c,
		K: k,
		noise: distuv.Normal{
			Mu:    0,
			Sigma: 1,
			Src:   rand.NewSource(seed),
		},
	}
}

// Matrix returns the n x n force matrix for the given label positions.
// Off-diagonal entry (i, j) is the repulsive force label i feels from label
// j: C * d / |d|^4 along the displacement d = pos[i] - pos[j], an
// inverse-cube repulsion consistent with the 1/d^2 pair potential in Energy.
// When |d| <= Epsilon the entry is a draw from the tie-break distribution
// scaled by C/0.05^2, so coincident labels still feel a separating push.
// Diagonal entry i is the restoring force -2K * (pos[i] - orig[i]).
func (f *ForceField) Matrix(pos, orig []float64) *mat.Dense {
	n := len(pos)
	fm := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				fm.Set(i, i, -2*f.K*(pos[i]-orig[i]))
				continue
			}
			d := pos[i] - pos[j]
			ad := d
			if ad < 0 {
				ad = -ad
			}
			if ad > Epsilon {
				fm.Set(i, j, f.C*d/(ad*ad*ad*ad))
			} else {
				fm.Set(i, j, f.noise.Rand()*f.C/(0.05*0.05))
			}
		}
	}
	return fm
}

// TotalForces returns the negated row sums of Matrix: the gradient vector
// handed to the optimiser. Each component points uphill in energy, so a
// descent step moves against it.
func (f *ForceField) TotalForces(pos, orig []float64) []float64 {
	fm := f.Matrix(pos, orig)
	n := len(pos)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = -floats.Sum(fm.RawRowView(i))
	}
	return out
}

// Energy is the scalar potential the optimiser minimises: C/d^2 summed over
// all unordered pairs further than Epsilon apart, plus the spring energy
// 0.5 * K * sum((pos - orig)^2). Non-negative for positive C and K.
func (f *ForceField) Energy(pos, orig []float64) float64 {
	var coulomb float64
	for i := 0; i < len(pos); i++ {
		for j := i + 1; j < len(pos); j++ {
			d := pos[i] - pos[j]
			if d < 0 {
				d = -d
			}
			if d > Epsilon {
				coulomb += f.C / (d * d)
			}
		}
	}
	dist := floats.Distance(pos, orig, 2)
	return coulomb + 0.5*f.K*dist*dist
}
