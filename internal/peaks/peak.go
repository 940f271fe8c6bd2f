// Package peaks defines the correlation-peak record shared by the field
// synthesizer, the label optimiser, and the persistence layer. A Peak is a
// value type: constructed once per detected correlation and treated as
// immutable afterwards.
package peaks

import (
	"fmt"
	"math"
	"sort"
)

// Peak holds one correlation peak in a 2D spectrum: its position, the
// correlation strength (sign carries feature type upstream; magnitude is
// used as plotting intensity here), the axis labels, and a rendering color.
// IdxX/IdxY are optional indices into an external label list; -1 means unset.
type Peak struct {
	X                   float64
	Y                   float64
	CorrelationStrength float64
	XLabel              string
	YLabel              string
	Color               string
	IdxX                int
	IdxY                int
}

// New returns a Peak with default strength 1, default color "C0" and unset
// label indices. XLabel and YLabel must be non-empty; this is a documented
// precondition of the wider pipeline, not enforced here.
func New(x, y float64, xlabel, ylabel string) Peak {
	return Peak{
		X:                   x,
		Y:                   y,
		CorrelationStrength: 1,
		XLabel:              xlabel,
		YLabel:              ylabel,
		Color:               "C0",
		IdxX:                -1,
		IdxY:                -1,
	}
}

func (p Peak) String() string {
	return fmt.Sprintf("Peak(%g, %g, %g, %s, %s, %s)",
		p.X, p.Y, p.CorrelationStrength, p.XLabel, p.YLabel, p.Color)
}

// Tolerances controls the proximity comparison in EquivalentTo. The zero
// value is not useful; use DefaultTolerances as a starting point.
type Tolerances struct {
	X              float64
	Y              float64
	Strength       float64
	IgnoreStrength bool
}

// DefaultTolerances returns the standard matching tolerances: 0.005 on each
// coordinate axis and 0.1 on correlation strength.
func DefaultTolerances() Tolerances {
	return Tolerances{X: 0.005, Y: 0.005, Strength: 0.1}
}

// EquivalentTo reports whether two peaks are close enough to be treated as
// the same correlation. This is a symmetric proximity relation, not an
// equality: it is not transitive in general, and is meant for deduplication
// and cross-set matching rather than storage identity.
func (p Peak) EquivalentTo(other Peak, tol Tolerances) bool {
	if math.Abs(p.X-other.X) >= tol.X {
		return false
	}
	if math.Abs(p.Y-other.Y) >= tol.Y {
		return false
	}
	if tol.IgnoreStrength {
		return true
	}
	return math.Abs(p.CorrelationStrength-other.CorrelationStrength) < tol.Strength
}

// Dedupe returns the peaks with near-duplicates removed. Each incoming peak
// is compared against the peaks already retained; the first occurrence wins.
// Input order is preserved for the survivors.
func Dedupe(pks []Peak, tol Tolerances) []Peak {
	out := make([]Peak, 0, len(pks))
	for _, p := range pks {
		dup := false
		for _, kept := range out {
			if p.EquivalentTo(kept, tol) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// MatchPair is one cross-set correspondence found by Match.
type MatchPair struct {
	A int
	B int
}

// Match pairs up equivalent peaks across two sets. Each peak in b is matched
// to at most one peak in a (first equivalent, scanning a in order). Unmatched
// peaks simply do not appear in the result.
func Match(a, b []Peak, tol Tolerances) []MatchPair {
	used := make([]bool, len(a))
	var pairs []MatchPair
	for j, pb := range b {
		for i, pa := range a {
			if used[i] {
				continue
			}
			if pa.EquivalentTo(pb, tol) {
				used[i] = true
				pairs = append(pairs, MatchPair{A: i, B: j})
				break
			}
		}
	}
	return pairs
}

// SortByPosition sorts peaks in place by X, then Y. Downstream consumers
// (storage, golden-file rendering tests) rely on this for deterministic
// ordering.
func SortByPosition(pks []Peak) {
	sort.Slice(pks, func(i, j int) bool {
		if pks[i].X != pks[j].X {
			return pks[i].X < pks[j].X
		}
		return pks[i].Y < pks[j].Y
	})
}
