package pdf

import (
	"math"
)

// Options select the numeric method and boundary behavior bound to an Evaluator.
// Zero values pick the defaults for the kind (see DefaultOptions).
type Options struct {
	Method Method
	Policy BoundaryPolicy
}

// DefaultOptions returns the kind defaults. Collinear grids interpolate
// bilinearly and continue past every edge except x above the last knot,
// which is an error. TMD grids interpolate trilinearly and reject every
// out-of-range query.
func DefaultOptions(arity int) Options {
	if arity == 3 {
		return Options{Method: Trilinear, Policy: NewBoundaryPolicy(3, PolicyError)}
	}
	return Options{
		Method: Bilinear,
		Policy: NewBoundaryPolicy(2, PolicyContinuation).With(AxisX, High, PolicyError),
	}
}

func (o Options) resolve(arity int) Options {
	def := DefaultOptions(arity)
	if o.Method == MethodDefault {
		o.Method = def.Method
	}
	if o.Policy.IsZero() {
		o.Policy = def.Policy
	}
	return o
}

// Evaluator binds one immutable Grid to one Interpolator and one Extrapolator.
// Evaluation is a pure function of (flavor, coordinates); an Evaluator is safe
// for concurrent use without locking.
type Evaluator[K Kind] struct {
	grid  *Grid
	ip    Interpolator
	ex    Extrapolator
	arity int
}

// NewEvaluator binds g with opts. The grid arity must match K.
func NewEvaluator[K Kind](g *Grid, opts Options) (*Evaluator[K], error) {
	var k K
	arity := k.Arity()
	if g == nil {
		return nil, Errorf(KindInitialization, "%s evaluator: nil grid", k.Name())
	}
	if g.Arity() != arity {
		return nil, Errorf(KindInitialization, "%s evaluator needs %d axes, grid %q has %d", k.Name(), arity, g.meta.Set, g.Arity())
	}
	if NewInterpolatorFunc == nil || NewExtrapolatorFunc == nil {
		return nil, Errorf(KindInitialization, "no interpolator/extrapolator registered; import pdf/interp and pdf/extrap")
	}
	opts = opts.resolve(arity)
	if opts.Policy.Arity() != arity {
		return nil, Errorf(KindPolicy, "boundary policy covers %d axes, grid has %d", opts.Policy.Arity(), arity)
	}
	ip, err := NewInterpolatorFunc(opts.Method, arity)
	if err != nil {
		return nil, err
	}
	ex, err := NewExtrapolatorFunc(arity, opts.Policy)
	if err != nil {
		return nil, err
	}
	return &Evaluator[K]{grid: g, ip: ip, ex: ex, arity: arity}, nil
}

// Grid returns the bound grid.
func (e *Evaluator[K]) Grid() *Grid { return e.grid }

func (e *Evaluator[K]) Method() Method         { return e.ip.Method() }
func (e *Evaluator[K]) Policy() BoundaryPolicy { return e.ex.Policy() }

func (e *Evaluator[K]) checkPoint(pt []float64) error {
	if len(pt) != e.arity {
		return Errorf(KindInvalidInput, "need %d coordinates, got %d", e.arity, len(pt))
	}
	names := AxisNames(e.arity)
	for i, v := range pt {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Errorf(KindInvalidInput, "%s = %v is not finite", names[i], v)
		}
		if e.grid.meta.Space == LogSpace && v <= 0 {
			return Errorf(KindInvalidInput, "%s = %v must be positive", names[i], v)
		}
	}
	return nil
}

func (e *Evaluator[K]) inRange(pt []float64) bool {
	for i, v := range pt {
		if !e.grid.InRange(i, v) {
			return false
		}
	}
	return true
}

func (e *Evaluator[K]) weight(pt []float64) float64 {
	if e.grid.meta.Weight == WeightKt2 && e.arity == 3 {
		return 1 / pt[AxisKt2]
	}
	return 1
}

// Eval returns the value for flavor f at pt, interpolating inside the grid and
// applying the boundary policy outside it.
func (e *Evaluator[K]) Eval(f Flavor, pt ...float64) (float64, error) {
	if err := e.checkPoint(pt); err != nil {
		return 0, err
	}
	if !e.grid.HasFlavor(f) {
		return 0, Errorf(KindInvalidInput, "flavor %v not in set %q", f, e.grid.meta.Set)
	}
	var v float64
	var err error
	if e.inRange(pt) {
		v, err = e.ip.Interpolate(e.grid, f, pt)
	} else {
		v, err = e.ex.Extrapolate(e.grid, e.ip, f, pt)
	}
	if err != nil {
		return 0, err
	}
	return v * e.weight(pt), nil
}

// EvalInto writes values for every grid flavor, in Grid().Flavors() order, into out.
func (e *Evaluator[K]) EvalInto(pt []float64, out []float64) error {
	if err := e.checkPoint(pt); err != nil {
		return err
	}
	if len(out) != e.grid.NumFlavors() {
		return Errorf(KindInvalidInput, "output holds %d values, grid has %d flavors", len(out), e.grid.NumFlavors())
	}
	var err error
	if e.inRange(pt) {
		err = e.ip.InterpolateAll(e.grid, pt, out)
	} else {
		err = e.ex.ExtrapolateAll(e.grid, e.ip, pt, out)
	}
	if err != nil {
		return err
	}
	if w := e.weight(pt); w != 1 {
		for i := range out {
			out[i] *= w
		}
	}
	return nil
}

// EvalAll is the allocating form of EvalInto.
func (e *Evaluator[K]) EvalAll(pt ...float64) ([]float64, error) {
	out := make([]float64, e.grid.NumFlavors())
	if err := e.EvalInto(pt, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Standard evaluates the 13 QCD partons in StandardFlavors order. Partons the
// grid does not carry are reported as 0.
func (e *Evaluator[K]) Standard(pt ...float64) ([13]float64, error) {
	var res [13]float64
	all, err := e.EvalAll(pt...)
	if err != nil {
		return res, err
	}
	for i, f := range e.grid.flavors {
		for j, s := range StandardFlavors {
			if f == s {
				res[j] = all[i]
			}
		}
	}
	return res, nil
}

// CPDF is the collinear facade: values of x·f(x, mu2).
type CPDF struct {
	*Evaluator[Collinear]
}

// XFxMu2 evaluates flavor f at (x, mu2).
func (p CPDF) XFxMu2(f Flavor, x, mu2 float64) (float64, error) {
	return p.Eval(f, x, mu2)
}

// XFxQ evaluates flavor f at (x, q*q).
func (p CPDF) XFxQ(f Flavor, x, q float64) (float64, error) {
	return p.Eval(f, x, q*q)
}

// TMDPDF is the TMD facade.
type TMDPDF struct {
	*Evaluator[TMD]
}

// TMD evaluates flavor f at (x, kt2, mu2).
func (p TMDPDF) TMD(f Flavor, x, kt2, mu2 float64) (float64, error) {
	return p.Eval(f, x, kt2, mu2)
}
