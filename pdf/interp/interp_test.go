package interp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scientificLibs/PDFxTMD/internal/testutil"
	"github.com/scientificLibs/PDFxTMD/pdf"
)

func TestIndexBelow(t *testing.T) {
	uniform := []float64{0, 1, 2, 3, 4}
	skewed := []float64{-5, -1, 0, 0.1, 10}
	tests := []struct {
		name string
		xs   []float64
		v    float64
		want int
	}{
		{"first knot", uniform, 0, 0},
		{"interior", uniform, 2.5, 2},
		{"on knot", uniform, 3, 3},
		{"last knot", uniform, 4, 3},
		{"skewed low", skewed, -4.9, 0},
		{"skewed mid", skewed, 0.05, 2},
		{"skewed high", skewed, 9.99, 3},
		{"skewed last", skewed, 10, 3},
		{"two knots", []float64{1, 2}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, indexBelow(tt.xs, tt.v))
		})
	}
}

var (
	xKnots   = []float64{1e-4, 1e-3, 1e-2, 0.1, 0.5, 1}
	mu2Knots = []float64{1, 4, 16, 64, 256}
	kt2Knots = []float64{0.25, 1, 4, 9}
)

func collinearGrid(t *testing.T, fn func(lx, lq float64) float64) *pdf.Grid {
	axes := []pdf.Axis{{Name: "x", Knots: xKnots}, {Name: "mu2", Knots: mu2Knots}}
	vals := testutil.Fill(axes, func(pt []float64) float64 { return fn(math.Log(pt[0]), math.Log(pt[1])) })
	other := testutil.Fill(axes, func(pt []float64) float64 { return 2 * fn(math.Log(pt[0]), math.Log(pt[1])) })
	return testutil.MustGrid(t, pdf.Metadata{Set: "interp"}, axes, map[pdf.Flavor][]float64{pdf.Gluon: vals, pdf.Up: other})
}

func bilinearFn(lx, lq float64) float64 { return 2 + 3*lx - lq + 0.5*lx*lq }

func TestInterpolators_ReproduceKnots(t *testing.T) {
	g := collinearGrid(t, func(lx, lq float64) float64 { return math.Sin(lx) * math.Cos(lq) })
	for _, ip := range []pdf.Interpolator{Bilinear{}, Bicubic{}} {
		t.Run(ip.Method().String(), func(t *testing.T) {
			for i, x := range xKnots {
				for j, q := range mu2Knots {
					want, _ := g.Value(pdf.Gluon, i, j)
					got, err := ip.Interpolate(g, pdf.Gluon, []float64{x, q})
					require.NoError(t, err)
					assert.InDelta(t, want, got, 1e-12, "x=%v mu2=%v", x, q)
				}
			}
		})
	}
}

func TestBilinear_ExactForBilinearData(t *testing.T) {
	g := collinearGrid(t, bilinearFn)
	for _, pt := range [][]float64{{3e-4, 2}, {0.05, 100}, {0.7, 250}, {1, 1}} {
		got, err := Bilinear{}.Interpolate(g, pdf.Gluon, pt)
		require.NoError(t, err)
		testutil.AssertFloat64Equal(t, "bilinear", bilinearFn(math.Log(pt[0]), math.Log(pt[1])), got, 1e-12)
	}
}

func TestBilinear_MidpointIsAverageOfCorners(t *testing.T) {
	g := testutil.ScenarioGrid(t)
	// geometric midpoints in both axes
	got, err := Bilinear{}.Interpolate(g, pdf.Gluon, []float64{math.Sqrt(0.01 * 0.1), 10})
	require.NoError(t, err)
	assert.InDelta(t, (1.0+2+3+4)/4, got, 1e-12)
}

func TestBicubic_ExactForLinearData(t *testing.T) {
	lin := func(lx, lq float64) float64 { return 1.5 - 0.25*lx + 2*lq }
	g := collinearGrid(t, lin)
	for _, pt := range [][]float64{{2e-4, 1.5}, {0.03, 30}, {0.8, 200}} {
		got, err := Bicubic{}.Interpolate(g, pdf.Gluon, pt)
		require.NoError(t, err)
		testutil.AssertFloat64Equal(t, "bicubic", lin(math.Log(pt[0]), math.Log(pt[1])), got, 1e-12)
	}
}

func TestBicubic_TwoKnotAxisIsLinear(t *testing.T) {
	g := testutil.ScenarioGrid(t)
	for _, pt := range [][]float64{{0.05, 1}, {0.1, 10}, {0.03, 50}} {
		b, err := Bicubic{}.Interpolate(g, pdf.Gluon, pt)
		require.NoError(t, err)
		// x has three knots but the scenario data is linear in log x
		l, err := Bilinear{}.Interpolate(g, pdf.Gluon, pt)
		require.NoError(t, err)
		assert.InDelta(t, l, b, 1e-12)
	}
}

func TestBicubic_ExactForQuadraticInInteriorCell(t *testing.T) {
	// uniform in log space so central differences are exact for a quadratic
	xs := []float64{math.Exp(-4), math.Exp(-3), math.Exp(-2), math.Exp(-1), 1}
	qs := []float64{math.Exp(0), math.Exp(1), math.Exp(2), math.Exp(3)}
	axes := []pdf.Axis{{Name: "x", Knots: xs}, {Name: "mu2", Knots: qs}}
	quad := func(lx, lq float64) float64 { return lx*lx + 0.5*lq*lq - lx*lq }
	vals := testutil.Fill(axes, func(pt []float64) float64 { return quad(math.Log(pt[0]), math.Log(pt[1])) })
	g := testutil.MustGrid(t, pdf.Metadata{}, axes, map[pdf.Flavor][]float64{pdf.Gluon: vals})

	pt := []float64{math.Exp(-2.6), math.Exp(1.3)}
	b, err := Bicubic{}.Interpolate(g, pdf.Gluon, pt)
	require.NoError(t, err)
	assert.InDelta(t, quad(-2.6, 1.3), b, 1e-12)

	l, err := Bilinear{}.Interpolate(g, pdf.Gluon, pt)
	require.NoError(t, err)
	assert.Greater(t, math.Abs(l-quad(-2.6, 1.3)), 1e-3, "bilinear cannot follow the curvature")
}

func TestBicubic_EdgeMu2CellsAreBilinear(t *testing.T) {
	g := collinearGrid(t, func(lx, lq float64) float64 { return lx*lx + lq*lq*lq })
	for _, pt := range [][]float64{{0.03, 2}, {0.03, 150}, {2e-4, 1}, {0.7, 256}} {
		b, err := Bicubic{}.Interpolate(g, pdf.Gluon, pt)
		require.NoError(t, err)
		l, err := Bilinear{}.Interpolate(g, pdf.Gluon, pt)
		require.NoError(t, err)
		assert.InDelta(t, l, b, 1e-12, "x=%v mu2=%v", pt[0], pt[1])
	}

	// interior mu2 cells keep the cubic
	pt := []float64{0.03, 30}
	b, err := Bicubic{}.Interpolate(g, pdf.Gluon, pt)
	require.NoError(t, err)
	l, err := Bilinear{}.Interpolate(g, pdf.Gluon, pt)
	require.NoError(t, err)
	assert.Greater(t, math.Abs(b-l), 1e-3)
}

func TestKnotSlope_MeanOfOneSidedDifferences(t *testing.T) {
	xs := []float64{0, 1, 3}
	ys := []float64{0, 1, 5}
	assert.InDelta(t, 1.5, knotSlope(xs, 0, ys, 1), 1e-15)
	assert.InDelta(t, 1.0, knotSlope(xs, 0, ys, 0), 1e-15)
	assert.InDelta(t, 2.0, knotSlope(xs, 0, ys, 2), 1e-15)
	// clipped stencil starting at knot 1
	assert.InDelta(t, 2.0, knotSlope(xs, 1, ys[1:], 1), 1e-15)
}

func tmdGrid(t *testing.T, fn func(lx, lk, lq float64) float64) *pdf.Grid {
	axes := []pdf.Axis{{Name: "x", Knots: xKnots}, {Name: "kt2", Knots: kt2Knots}, {Name: "mu2", Knots: mu2Knots}}
	vals := testutil.Fill(axes, func(pt []float64) float64 {
		return fn(math.Log(pt[0]), math.Log(pt[1]), math.Log(pt[2]))
	})
	return testutil.MustGrid(t, pdf.Metadata{}, axes, map[pdf.Flavor][]float64{pdf.Gluon: vals, pdf.DBar: vals})
}

func TestTrilinear_ExactForTrilinearData(t *testing.T) {
	fn := func(lx, lk, lq float64) float64 { return 1 + lx - 2*lk + 0.5*lq + 0.1*lx*lk*lq }
	g := tmdGrid(t, fn)
	for _, pt := range [][]float64{{1e-4, 0.25, 1}, {0.02, 2, 40}, {1, 9, 256}, {0.3, 0.5, 5}} {
		got, err := Trilinear{}.Interpolate(g, pdf.Gluon, pt)
		require.NoError(t, err)
		testutil.AssertFloat64Equal(t, "trilinear", fn(math.Log(pt[0]), math.Log(pt[1]), math.Log(pt[2])), got, 1e-12)
	}
}

func TestInterpolateAll_MatchesInterpolate(t *testing.T) {
	g := collinearGrid(t, bilinearFn)
	pt := []float64{0.02, 10}
	for _, ip := range []pdf.Interpolator{Bilinear{}, Bicubic{}} {
		out := make([]float64, g.NumFlavors())
		require.NoError(t, ip.InterpolateAll(g, pt, out))
		for i, f := range g.Flavors() {
			v, err := ip.Interpolate(g, f, pt)
			require.NoError(t, err)
			assert.Equal(t, v, out[i])
		}
		assert.ErrorIs(t, ip.InterpolateAll(g, pt, make([]float64, 5)), pdf.ErrInvalidInput)
	}
}

func TestInterpolators_Errors(t *testing.T) {
	g2 := testutil.ScenarioGrid(t)
	g3 := tmdGrid(t, func(lx, lk, lq float64) float64 { return 1 })

	_, err := Bilinear{}.Interpolate(g2, pdf.Gluon, []float64{2, 10})
	assert.ErrorIs(t, err, pdf.ErrOutOfRange)
	_, err = Bicubic{}.Interpolate(g2, pdf.Gluon, []float64{0.1, 0.5})
	assert.ErrorIs(t, err, pdf.ErrOutOfRange)
	_, err = Bilinear{}.Interpolate(g2, pdf.Up, []float64{0.1, 10})
	assert.ErrorIs(t, err, pdf.ErrInvalidInput)
	_, err = Bilinear{}.Interpolate(g3, pdf.Gluon, []float64{0.1, 1, 10})
	assert.ErrorIs(t, err, pdf.ErrNotSupport)
	_, err = Trilinear{}.Interpolate(g2, pdf.Gluon, []float64{0.1, 10})
	assert.ErrorIs(t, err, pdf.ErrNotSupport)
}

func TestNew(t *testing.T) {
	ip, err := New(pdf.MethodDefault, 2)
	require.NoError(t, err)
	assert.Equal(t, pdf.Bilinear, ip.Method())

	ip, err = New(pdf.MethodDefault, 3)
	require.NoError(t, err)
	assert.Equal(t, pdf.Trilinear, ip.Method())

	_, err = New(pdf.Bicubic, 3)
	assert.ErrorIs(t, err, pdf.ErrNotSupport)
	_, err = New(pdf.Trilinear, 2)
	assert.ErrorIs(t, err, pdf.ErrNotSupport)
}
