package interp

import (
	"github.com/scientificLibs/PDFxTMD/pdf"
)

// Trilinear interpolates a three-axis grid from the eight corners of the
// bracketing cell.
type Trilinear struct{}

var _ pdf.Interpolator = Trilinear{}

func (Trilinear) Method() pdf.Method { return pdf.Trilinear }

func (Trilinear) Interpolate(g *pdf.Grid, f pdf.Flavor, pt []float64) (float64, error) {
	tab, err := table(g, f)
	if err != nil {
		return 0, err
	}
	c, err := locate(g, pt, 3)
	if err != nil {
		return 0, err
	}
	return trilinearAt(g, tab, &c), nil
}

func (Trilinear) InterpolateAll(g *pdf.Grid, pt []float64, out []float64) error {
	if err := checkOut(g, out); err != nil {
		return err
	}
	c, err := locate(g, pt, 3)
	if err != nil {
		return err
	}
	for i := range out {
		out[i] = trilinearAt(g, g.TableAt(i), &c)
	}
	return nil
}

func trilinearAt(g *pdf.Grid, tab []float64, c *cell) float64 {
	o := g.Offset(c.idx[0], c.idx[1], c.idx[2])
	s0, s1 := g.Stride(0), g.Stride(1)

	// Collapse the last axis, then the middle, then the first.
	c00 := lerp(tab[o], tab[o+1], c.t[2])
	c01 := lerp(tab[o+s1], tab[o+s1+1], c.t[2])
	c10 := lerp(tab[o+s0], tab[o+s0+1], c.t[2])
	c11 := lerp(tab[o+s0+s1], tab[o+s0+s1+1], c.t[2])

	c0 := lerp(c00, c01, c.t[1])
	c1 := lerp(c10, c11, c.t[1])
	return lerp(c0, c1, c.t[0])
}
