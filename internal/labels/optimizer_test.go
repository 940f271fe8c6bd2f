package labels

import (
	"math"
	"sort"
	"testing"
)

func TestOptimiseFewerThanThreeUnchanged(t *testing.T) {
	o := DefaultOptimiseOptions()

	for _, in := range [][]float64{{}, {3.5}, {1.0, 2.0}} {
		got := Optimise(in, o)
		if len(got) != len(in) {
			t.Fatalf("Optimise(%v) returned %d positions, want %d", in, len(got), len(in))
		}
		for i := range in {
			if got[i] != in[i] {
				t.Errorf("Optimise(%v)[%d] = %v, want unchanged", in, i, got[i])
			}
		}
	}
}

func TestOptimiseAllEqualUnchanged(t *testing.T) {
	in := []float64{2.0, 2.0, 2.0, 2.0}
	got := Optimise(in, DefaultOptimiseOptions())
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("got[%d] = %v, want 2.0", i, got[i])
		}
	}
}

func TestOptimiseEndpointsPinned(t *testing.T) {
	in := []float64{0.0, 0.1, 0.15, 0.2, 1.0}
	got := Optimise(in, DefaultOptimiseOptions())

	if got[0] != 0.0 {
		t.Errorf("lowest position moved: %v, want 0.0", got[0])
	}
	if got[4] != 1.0 {
		t.Errorf("highest position moved: %v, want 1.0", got[4])
	}
}

func TestOptimiseStaysWithinBounds(t *testing.T) {
	in := []float64{-4.0, -3.99, -3.98, 2.0, 2.01, 6.0}
	got := Optimise(in, DefaultOptimiseOptions())

	for i, v := range got {
		if v < -4.0-1e-9 || v > 6.0+1e-9 {
			t.Errorf("got[%d] = %v, outside [min, max] of input", i, v)
		}
	}
}

func TestOptimiseMiddleRepelledFromNeighbor(t *testing.T) {
	// First and last are pinned, so only the middle label can move; the
	// near-neighbor at 0.0 should push it towards the interior.
	in := []float64{0.0, 0.01, 1.0}
	got := Optimise(in, DefaultOptimiseOptions())

	if got[1] <= 0.01 {
		t.Errorf("middle position = %v, want > 0.01", got[1])
	}
	if got[0] != 0.0 || got[2] != 1.0 {
		t.Errorf("endpoints moved: %v", got)
	}
}

func TestOptimisePreservesInputOrder(t *testing.T) {
	// The optimiser sorts internally; results must come back in the
	// caller's ordering.
	in := []float64{5.0, 1.0, 3.0, 3.01, 2.99}
	got := Optimise(in, DefaultOptimiseOptions())

	if len(got) != len(in) {
		t.Fatalf("got %d positions, want %d", len(got), len(in))
	}
	// Relative ordering of distinct input values survives.
	for i := range in {
		for j := range in {
			if in[i] < in[j] && got[i] > got[j] {
				t.Errorf("order flipped: in[%d]=%v < in[%d]=%v but got %v > %v",
					i, in[i], j, in[j], got[i], got[j])
			}
		}
	}
	// The extreme values are pinned wherever they sit in the input.
	if got[1] != 1.0 {
		t.Errorf("got[1] = %v, want pinned minimum 1.0", got[1])
	}
	if got[0] != 5.0 {
		t.Errorf("got[0] = %v, want pinned maximum 5.0", got[0])
	}
}

func TestOptimiseDeterministicWithSeed(t *testing.T) {
	in := []float64{0.0, 0.2, 0.21, 0.6, 1.0}
	o := DefaultOptimiseOptions()
	o.Seed = 7

	a := Optimise(in, o)
	b := Optimise(in, o)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("run mismatch at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestOptimiseSpreadsCrowdedLabels(t *testing.T) {
	in := []float64{0.0, 0.48, 0.49, 0.50, 0.51, 1.0}
	got := Optimise(in, DefaultOptimiseOptions())

	minGap := func(xs []float64) float64 {
		s := append([]float64(nil), xs...)
		sort.Float64s(s)
		min := math.Inf(1)
		for i := 1; i < len(s); i++ {
			if g := s[i] - s[i-1]; g < min {
				min = g
			}
		}
		return min
	}

	if before, after := minGap(in), minGap(got); after <= before {
		t.Errorf("minimum gap %v did not improve on %v", after, before)
	}
}

func TestOptimiseEnergyDescent(t *testing.T) {
	// With a fixed seed the descent path is deterministic and a smaller
	// iteration cap yields a prefix of the same path, so energy as a
	// function of the cap must be non-increasing.
	in := []float64{0.0, 0.05, 0.06, 0.5, 0.95, 1.0}
	o := DefaultOptimiseOptions()
	o.Seed = 3

	normalise := func(xs []float64) ([]float64, []float64) {
		s := append([]float64(nil), xs...)
		sort.Float64s(s)
		min, max := s[0], s[len(s)-1]
		norm := make([]float64, len(s))
		for i, v := range s {
			norm[i] = (v - min) / (max - min)
		}
		origSorted := append([]float64(nil), in...)
		sort.Float64s(origSorted)
		orig := make([]float64, len(origSorted))
		for i, v := range origSorted {
			orig[i] = (v - min) / (max - min)
		}
		return norm, orig
	}

	ff := NewForceField(o.C, o.K, o.Seed)
	prev := math.Inf(1)
	for _, iters := range []int{0, 1, 2, 5, 10, 50, 200, 1000} {
		o.MaxIters = iters
		got := Optimise(in, o)
		norm, orig := normalise(got)
		e := ff.Energy(norm, orig)
		if e > prev+1e-12 {
			t.Errorf("energy increased at cap %d: %v > %v", iters, e, prev)
		}
		prev = e
	}
}

func TestOptimiseCoincidentPositionsDoNotPanic(t *testing.T) {
	in := []float64{0.0, 0.5, 0.5, 1.0}
	o := DefaultOptimiseOptions()
	o.Seed = 11

	got := Optimise(in, o)
	if len(got) != 4 {
		t.Fatalf("got %d positions, want 4", len(got))
	}
	for i, v := range got {
		if math.IsNaN(v) || v < -1e-9 || v > 1+1e-9 {
			t.Errorf("got[%d] = %v, want finite value in [0, 1]", i, v)
		}
	}
}
