package interp

import (
	"github.com/scientificLibs/PDFxTMD/pdf"
)

// indexBelow returns i with xs[i] <= v < xs[i+1]. A value equal to the last
// knot resolves to the last cell so that i+1 is always a valid index.
// xs must be strictly increasing with len(xs) >= 2 and v inside [xs[0], xs[n-1]].
func indexBelow(xs []float64, v float64) int {
	n := len(xs)
	// Guess under the assumption of uniform spacing.
	guess := int(float64(n-1) * (v - xs[0]) / (xs[n-1] - xs[0]))
	if guess >= 0 && guess < n-1 && xs[guess] <= v && v < xs[guess+1] {
		return guess
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if v >= xs[mid] {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// cell is a located query: the lower knot index and the fractional position
// inside the bracketing interval, per axis, in interpolation space.
type cell struct {
	idx [3]int
	t   [3]float64
}

func locate(g *pdf.Grid, pt []float64, arity int) (cell, error) {
	var c cell
	if g.Arity() != arity {
		return c, pdf.Errorf(pdf.KindNotSupport, "interpolator works on %d axes, grid has %d", arity, g.Arity())
	}
	if len(pt) != arity {
		return c, pdf.Errorf(pdf.KindInvalidInput, "need %d coordinates, got %d", arity, len(pt))
	}
	space := g.Space()
	for i, v := range pt {
		if !g.InRange(i, v) {
			lo, hi := g.Bounds(i)
			return c, pdf.Errorf(pdf.KindOutOfRange, "axis %s: %g outside [%g, %g]", g.Axis(i).Name, v, lo, hi)
		}
		xs := g.Coords(i)
		u := pdf.ToSpace(v, space)
		j := indexBelow(xs, u)
		c.idx[i] = j
		c.t[i] = (u - xs[j]) / (xs[j+1] - xs[j])
	}
	return c, nil
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func table(g *pdf.Grid, f pdf.Flavor) ([]float64, error) {
	t, ok := g.Table(f)
	if !ok {
		return nil, pdf.Errorf(pdf.KindInvalidInput, "flavor %v not in grid", f)
	}
	return t, nil
}

func checkOut(g *pdf.Grid, out []float64) error {
	if len(out) != g.NumFlavors() {
		return pdf.Errorf(pdf.KindInvalidInput, "output holds %d values, grid has %d flavors", len(out), g.NumFlavors())
	}
	return nil
}
