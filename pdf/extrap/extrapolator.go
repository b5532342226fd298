package extrap

import (
	"math"

	"github.com/scientificLibs/PDFxTMD/pdf"
)

const (
	// Anchors above this value are continued in log(f) so the result stays positive.
	logThreshold = 1e-3
	// Below this |f(q2min)| the anomalous dimension is pinned to 1.
	anomFloor = 1e-5
	anomMin   = -2.5
	anomStep  = 1.01
)

// Extrapolator applies a BoundaryPolicy to queries outside the grid. Out of
// range axes are resolved in axis order; nearest clamps and moves on to the
// next axis, zero and error end the resolution, continuation anchors on
// the edge knots (which may themselves need resolving on the other axes).
// A mu2 below the grid under continuation is always resolved first, so its
// power law is fed by anchors that are already continued in x.
type Extrapolator struct {
	policy pdf.BoundaryPolicy
	arity  int
}

var _ pdf.Extrapolator = (*Extrapolator)(nil)

// New validates p for a grid of the given arity. Continuation needs a mu2
// scaling law that only exists for collinear grids, so it is rejected on
// three-axis grids with KindPolicy.
func New(arity int, p pdf.BoundaryPolicy) (*Extrapolator, error) {
	if arity != 2 && arity != 3 {
		return nil, pdf.Errorf(pdf.KindNotSupport, "extrapolation on %d axes", arity)
	}
	if p.Arity() != arity {
		return nil, pdf.Errorf(pdf.KindPolicy, "boundary policy covers %d axes, grid has %d", p.Arity(), arity)
	}
	if arity == 3 && p.Uses(pdf.PolicyContinuation) {
		return nil, pdf.Errorf(pdf.KindPolicy, "continuation is not supported on 3-axis grids (%v)", p)
	}
	return &Extrapolator{policy: p, arity: arity}, nil
}

func (e *Extrapolator) Policy() pdf.BoundaryPolicy { return e.policy }

// Extrapolate resolves pt for flavor f. Coordinates already inside the grid
// are passed to ip unchanged.
func (e *Extrapolator) Extrapolate(g *pdf.Grid, ip pdf.Interpolator, f pdf.Flavor, pt []float64) (float64, error) {
	if g.Arity() != e.arity || len(pt) != e.arity {
		return 0, pdf.Errorf(pdf.KindInvalidInput, "extrapolator bound to %d axes, got grid %d and point %d", e.arity, g.Arity(), len(pt))
	}
	var buf [3]float64
	q := buf[:len(pt)]
	copy(q, pt)
	return e.resolve(g, ip, f, q, 0)
}

// ExtrapolateAll resolves pt for every grid flavor.
func (e *Extrapolator) ExtrapolateAll(g *pdf.Grid, ip pdf.Interpolator, pt []float64, out []float64) error {
	flavors := g.Flavors()
	if len(out) != len(flavors) {
		return pdf.Errorf(pdf.KindInvalidInput, "output holds %d values, grid has %d flavors", len(out), len(flavors))
	}
	for i, f := range flavors {
		v, err := e.Extrapolate(g, ip, f, pt)
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

// resolve handles every axis whose bit is not set in done. pt is owned by
// the caller's frame and may be modified.
func (e *Extrapolator) resolve(g *pdf.Grid, ip pdf.Interpolator, f pdf.Flavor, pt []float64, done uint) (float64, error) {
	mu2 := pdf.AxisMu2(e.arity)
	for i := range pt {
		if done&(1<<i) != 0 {
			continue
		}
		lo, hi := g.Bounds(i)
		var d pdf.Direction
		switch {
		case pt[i] < lo:
			d = pdf.Low
		case pt[i] > hi:
			d = pdf.High
		default:
			continue
		}
		switch p := e.policy.At(i, d); p {
		case pdf.PolicyZero:
			return 0, nil
		case pdf.PolicyError:
			return 0, pdf.Errorf(pdf.KindOutOfRange, "%s = %g outside [%g, %g]", g.Axis(i).Name, pt[i], lo, hi)
		case pdf.PolicyNearest:
			if d == pdf.Low {
				pt[i] = lo
			} else {
				pt[i] = hi
			}
		case pdf.PolicyContinuation:
			if e.anomalousPending(g, pt, done) {
				return e.anomalous(g, ip, f, pt, mu2, done)
			}
			return e.continueLinear(g, ip, f, pt, i, d, done)
		default:
			return 0, pdf.Errorf(pdf.KindPolicy, "policy %v", p)
		}
	}
	return ip.Interpolate(g, f, pt)
}

// anomalousPending reports whether mu2 is still unresolved below the grid
// under continuation.
func (e *Extrapolator) anomalousPending(g *pdf.Grid, pt []float64, done uint) bool {
	mu2 := pdf.AxisMu2(e.arity)
	if done&(1<<mu2) != 0 {
		return false
	}
	lo, _ := g.Bounds(mu2)
	return pt[mu2] < lo && e.policy.At(mu2, pdf.Low) == pdf.PolicyContinuation
}

// at evaluates with axis i pinned to v, resolving the axes not yet done.
func (e *Extrapolator) at(g *pdf.Grid, ip pdf.Interpolator, f pdf.Flavor, pt []float64, i int, v float64, done uint) (float64, error) {
	var buf [3]float64
	q := buf[:len(pt)]
	copy(q, pt)
	q[i] = v
	return e.resolve(g, ip, f, q, done|1<<i)
}

// continueLinear extends the edge cell's gradient along axis i in
// interpolation space. When both anchors are clearly positive the gradient of
// log(f) is extended instead.
func (e *Extrapolator) continueLinear(g *pdf.Grid, ip pdf.Interpolator, f pdf.Flavor, pt []float64, i int, d pdf.Direction, done uint) (float64, error) {
	n := g.NumKnots(i)
	k0, k1 := 0, 1
	if d == pdf.High {
		k0, k1 = n-1, n-2
	}
	f0, err := e.at(g, ip, f, pt, i, g.Knot(i, k0), done)
	if err != nil {
		return 0, err
	}
	f1, err := e.at(g, ip, f, pt, i, g.Knot(i, k1), done)
	if err != nil {
		return 0, err
	}
	u0, u1 := g.Coord(i, k0), g.Coord(i, k1)
	u := pdf.ToSpace(pt[i], g.Space())
	if f0 > logThreshold && f1 > logThreshold {
		l0, l1 := math.Log(f0), math.Log(f1)
		return math.Exp(l0 + (l0-l1)/(u0-u1)*(u-u0)), nil
	}
	return f0 + (f0-f1)/(u0-u1)*(u-u0), nil
}

// anomalous continues below the lowest mu2 knot with a power law whose
// exponent is the local anomalous dimension at the edge:
// f(q2min) * r^(anom*r + 1 - r), r = mu2/q2min.
func (e *Extrapolator) anomalous(g *pdf.Grid, ip pdf.Interpolator, f pdf.Flavor, pt []float64, i int, done uint) (float64, error) {
	q2min, q2max := g.Bounds(i)
	fq, err := e.at(g, ip, f, pt, i, q2min, done)
	if err != nil {
		return 0, err
	}
	anom := 1.0
	if math.Abs(fq) >= anomFloor {
		step := math.Min(anomStep*q2min, q2max)
		fstep, err := e.at(g, ip, f, pt, i, step, done)
		if err != nil {
			return 0, err
		}
		anom = math.Max(anomMin, (fstep-fq)/fq/(step/q2min-1))
	}
	r := pt[i] / q2min
	return fq * math.Pow(r, anom*r+1-r), nil
}
