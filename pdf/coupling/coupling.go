// Package coupling evaluates the strong coupling from the knots stored in a
// set's info file.
package coupling

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/scientificLibs/PDFxTMD/pdf"
	"github.com/scientificLibs/PDFxTMD/pdf/info"
)

// AlphaS returns αs at a squared scale.
type AlphaS interface {
	AlphaSQ2(q2 float64) (float64, error)
}

// subgrid is a run of knots between flavor thresholds, fitted in log q2.
type subgrid struct {
	lo  float64
	fit interp.PiecewiseCubic
}

// Interpolated is a cubic Hermite interpolation of αs in log q2. Repeated q
// knots mark flavor thresholds and split the knots into independent subgrids.
// Below the first knot αs follows a power law fitted to the first two distinct
// knots; above the last knot it is frozen.
type Interpolated struct {
	q2s, as []float64
	grids   []subgrid
	loGrad  float64
}

var _ AlphaS = (*Interpolated)(nil)

// NewInterpolated builds αs from AlphaS_Qs and AlphaS_Vals of in.
func NewInterpolated(in *info.Info) (*Interpolated, error) {
	return New(in.AlphaSQs, in.AlphaSVals)
}

// New builds αs from scale knots qs (not squared) and values.
func New(qs, vals []float64) (*Interpolated, error) {
	if len(qs) == 0 {
		return nil, pdf.Errorf(pdf.KindInvalidInfoFile, "no AlphaS_Qs knots")
	}
	if len(qs) != len(vals) {
		return nil, pdf.Errorf(pdf.KindInvalidInfoFile, "AlphaS_Qs has %d entries, AlphaS_Vals %d", len(qs), len(vals))
	}
	a := &Interpolated{q2s: make([]float64, len(qs)), as: append([]float64(nil), vals...)}
	for i, q := range qs {
		if !(q > 0) || math.IsInf(q, 0) {
			return nil, pdf.Errorf(pdf.KindInvalidInfoFile, "AlphaS_Qs[%d] = %v", i, q)
		}
		a.q2s[i] = q * q
		if i > 0 && a.q2s[i] < a.q2s[i-1] {
			return nil, pdf.Errorf(pdf.KindInvalidInfoFile, "AlphaS_Qs not increasing at %d", i)
		}
	}

	start := 0
	for i := 1; i <= len(a.q2s); i++ {
		if i < len(a.q2s) && a.q2s[i] != a.q2s[i-1] {
			continue
		}
		if i-start < 2 {
			return nil, pdf.Errorf(pdf.KindInvalidInfoFile, "αs subgrid at q = %v has a single knot", math.Sqrt(a.q2s[start]))
		}
		a.grids = append(a.grids, newSubgrid(a.q2s[start:i], a.as[start:i]))
		start = i
	}

	// first distinct knot above q2min
	next := 1
	for next < len(a.q2s) && a.q2s[next] == a.q2s[0] {
		next++
	}
	if next < len(a.q2s) {
		a.loGrad = math.Log10(a.as[next]/a.as[0]) / math.Log10(a.q2s[next]/a.q2s[0])
	}
	return a, nil
}

func newSubgrid(q2s, as []float64) subgrid {
	n := len(q2s)
	ls := make([]float64, n)
	for i, q2 := range q2s {
		ls[i] = math.Log(q2)
	}
	ds := make([]float64, n)
	for i := range ds {
		switch i {
		case 0:
			ds[i] = (as[1] - as[0]) / (ls[1] - ls[0])
		case n - 1:
			ds[i] = (as[n-1] - as[n-2]) / (ls[n-1] - ls[n-2])
		default:
			ds[i] = 0.5 * ((as[i+1]-as[i])/(ls[i+1]-ls[i]) + (as[i]-as[i-1])/(ls[i]-ls[i-1]))
		}
	}
	sg := subgrid{lo: q2s[0]}
	sg.fit.FitWithDerivatives(ls, as, ds)
	return sg
}

// Q2Range returns the first and last squared knots.
func (a *Interpolated) Q2Range() (lo, hi float64) { return a.q2s[0], a.q2s[len(a.q2s)-1] }

// AlphaSQ2 returns αs at q2.
func (a *Interpolated) AlphaSQ2(q2 float64) (float64, error) {
	if !(q2 > 0) || math.IsInf(q2, 0) {
		return 0, pdf.Errorf(pdf.KindInvalidInput, "q2 = %v", q2)
	}
	lo, hi := a.Q2Range()
	switch {
	case q2 < lo:
		return a.as[0] * math.Pow(q2/lo, a.loGrad), nil
	case q2 >= hi:
		return a.as[len(a.as)-1], nil
	}
	// the last subgrid starting at or below q2
	i := sort.Search(len(a.grids), func(i int) bool { return a.grids[i].lo > q2 }) - 1
	return a.grids[i].fit.Predict(math.Log(q2)), nil
}

// AlphaSQ returns αs at the unsquared scale q.
func (a *Interpolated) AlphaSQ(q float64) (float64, error) { return a.AlphaSQ2(q * q) }
