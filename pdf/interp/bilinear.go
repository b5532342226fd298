package interp

import (
	"github.com/scientificLibs/PDFxTMD/pdf"
)

// Bilinear interpolates a two-axis grid from the four corners of the
// bracketing cell.
type Bilinear struct{}

var _ pdf.Interpolator = Bilinear{}

func (Bilinear) Method() pdf.Method { return pdf.Bilinear }

func (Bilinear) Interpolate(g *pdf.Grid, f pdf.Flavor, pt []float64) (float64, error) {
	tab, err := table(g, f)
	if err != nil {
		return 0, err
	}
	c, err := locate(g, pt, 2)
	if err != nil {
		return 0, err
	}
	return bilinearAt(g, tab, &c), nil
}

func (Bilinear) InterpolateAll(g *pdf.Grid, pt []float64, out []float64) error {
	if err := checkOut(g, out); err != nil {
		return err
	}
	c, err := locate(g, pt, 2)
	if err != nil {
		return err
	}
	for i := range out {
		out[i] = bilinearAt(g, g.TableAt(i), &c)
	}
	return nil
}

func bilinearAt(g *pdf.Grid, tab []float64, c *cell) float64 {
	o := g.Offset(c.idx[0], c.idx[1])
	s := g.Stride(0)
	lo := lerp(tab[o], tab[o+s], c.t[0])
	hi := lerp(tab[o+1], tab[o+s+1], c.t[0])
	return lerp(lo, hi, c.t[1])
}
