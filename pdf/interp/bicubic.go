package interp

import (
	"github.com/scientificLibs/PDFxTMD/pdf"
)

// Bicubic interpolates a two-axis grid with cubic Hermite polynomials along
// both axes. A knot derivative is the mean of the one-sided differences to
// its neighbors, or the single one-sided difference at the end of an axis.
// Queries in the first or last mu2 cell fall back to bilinear interpolation,
// so no value outside the grid is ever read.
type Bicubic struct{}

var _ pdf.Interpolator = Bicubic{}

func (Bicubic) Method() pdf.Method { return pdf.Bicubic }

func (Bicubic) Interpolate(g *pdf.Grid, f pdf.Flavor, pt []float64) (float64, error) {
	tab, err := table(g, f)
	if err != nil {
		return 0, err
	}
	c, err := locate(g, pt, 2)
	if err != nil {
		return 0, err
	}
	return bicubicAt(g, tab, &c), nil
}

func (Bicubic) InterpolateAll(g *pdf.Grid, pt []float64, out []float64) error {
	if err := checkOut(g, out); err != nil {
		return err
	}
	c, err := locate(g, pt, 2)
	if err != nil {
		return err
	}
	for i := range out {
		out[i] = bicubicAt(g, g.TableAt(i), &c)
	}
	return nil
}

// stencil returns the clipped [lo, hi] knot range around cell i of an n-knot axis.
func stencil(i, n int) (lo, hi int) {
	lo, hi = i-1, i+2
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

func bicubicAt(g *pdf.Grid, tab []float64, c *cell) float64 {
	xs, qs := g.Coords(0), g.Coords(1)
	ix, iq := c.idx[0], c.idx[1]
	if iq == 0 || iq+1 == len(qs)-1 {
		return bilinearAt(g, tab, c)
	}
	xlo, xhi := stencil(ix, len(xs))
	qlo, qhi := stencil(iq, len(qs))
	s := g.Stride(0)

	var rows, col [4]float64
	for j := xlo; j <= xhi; j++ {
		o := j * s
		for k := qlo; k <= qhi; k++ {
			col[k-qlo] = tab[o+k]
		}
		rows[j-xlo] = hermite(qs, qlo, col[:qhi-qlo+1], iq, c.t[1])
	}
	return hermite(xs, xlo, rows[:xhi-xlo+1], ix, c.t[0])
}

// hermite evaluates the cubic Hermite polynomial on cell i of xs at fraction
// t, where ys[k] holds the value at knot lo+k.
func hermite(xs []float64, lo int, ys []float64, i int, t float64) float64 {
	f0, f1 := ys[i-lo], ys[i+1-lo]
	h := xs[i+1] - xs[i]
	m0 := knotSlope(xs, lo, ys, i)
	m1 := knotSlope(xs, lo, ys, i+1)
	t2 := t * t
	t3 := t2 * t
	return (2*t3-3*t2+1)*f0 + (t3-2*t2+t)*h*m0 + (-2*t3+3*t2)*f1 + (t3-t2)*h*m1
}

func knotSlope(xs []float64, lo int, ys []float64, j int) float64 {
	hasPrev, hasNext := j > lo, j < lo+len(ys)-1
	var left, right float64
	if hasPrev {
		left = (ys[j-lo] - ys[j-1-lo]) / (xs[j] - xs[j-1])
	}
	if hasNext {
		right = (ys[j+1-lo] - ys[j-lo]) / (xs[j+1] - xs[j])
	}
	switch {
	case hasPrev && hasNext:
		return 0.5 * (left + right)
	case hasPrev:
		return left
	default:
		return right
	}
}
