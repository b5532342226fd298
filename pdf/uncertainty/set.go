// Package uncertainty combines the members of an error set into central
// values, uncertainties and correlations.
//
// A Set loads its members through a factory, so repeated queries share the
// cached evaluators. The core error members are combined by the Strategy
// named in the set's ErrorType; trailing parameter-variation members are
// combined as envelopes and added in quadrature.
package uncertainty

import (
	"context"
	"math"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/scientificLibs/PDFxTMD/pdf"
	"github.com/scientificLibs/PDFxTMD/pdf/factory"
	"github.com/scientificLibs/PDFxTMD/pdf/info"
)

// CL1Sigma is the one-sigma confidence level in percent.
const CL1Sigma = 68.26894921370859

type setOptions struct {
	percentile bool
	limit      int
	strategy   Strategy
}

// SetOption configures a Set.
type SetOption func(*setOptions)

// WithPercentile uses ReplicasPercentile instead of ReplicasStdDev for replica sets.
func WithPercentile() SetOption { return func(o *setOptions) { o.percentile = true } }

// WithConcurrency bounds the number of members loaded at once.
func WithConcurrency(n int) SetOption { return func(o *setOptions) { o.limit = n } }

// WithStrategy overrides the strategy chosen from ErrorType.
func WithStrategy(s Strategy) SetOption { return func(o *setOptions) { o.strategy = s } }

// StrategyFor returns the strategy for a core error type.
func StrategyFor(core string, percentile bool) (Strategy, error) {
	switch core {
	case "hessian":
		return Hessian{}, nil
	case "symmhessian":
		return SymmHessian{}, nil
	case "replicas":
		if percentile {
			return ReplicasPercentile{}, nil
		}
		return ReplicasStdDev{}, nil
	}
	return nil, pdf.Errorf(pdf.KindNotSupport, "error type %q", core)
}

// Set is one error set served by a factory.
type Set[K pdf.Kind] struct {
	factory  *factory.Factory[K]
	name     string
	info     *info.Info
	errInfo  ErrInfo
	strategy Strategy
	limit    int
}

// NewSet reads set's metadata through f and picks its strategy.
func NewSet[K pdf.Kind](f *factory.Factory[K], name string, opts ...SetOption) (*Set[K], error) {
	in, err := f.Info(name)
	if err != nil {
		return nil, err
	}
	o := setOptions{limit: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	ei := ParseErrInfo(in.ErrorType, in.NumMembers)
	if ei.NCore < 0 {
		return nil, pdf.Errorf(pdf.KindInvalidInfoFile, "%s: ErrorType %q needs %d members, set has %d", name, in.ErrorType, ei.NPar()+1, in.NumMembers)
	}
	s := o.strategy
	if s == nil {
		if s, err = StrategyFor(ei.Core, o.percentile); err != nil {
			return nil, err
		}
	}
	logrus.Debugf("set %s: %s strategy, %d core and %d parameter members", name, s.Name(), ei.NCore, ei.NPar())
	return &Set[K]{factory: f, name: name, info: in, errInfo: ei, strategy: s, limit: o.limit}, nil
}

func (s *Set[K]) Name() string       { return s.name }
func (s *Set[K]) Info() *info.Info   { return s.info }
func (s *Set[K]) ErrInfo() ErrInfo   { return s.errInfo }
func (s *Set[K]) Strategy() Strategy { return s.strategy }
func (s *Set[K]) Size() int          { return s.info.NumMembers }

// Member returns the evaluator of one member.
func (s *Set[K]) Member(ctx context.Context, member int) (*pdf.Evaluator[K], error) {
	return s.factory.Get(ctx, s.name, member)
}

// Members loads every member concurrently.
func (s *Set[K]) Members(ctx context.Context) ([]*pdf.Evaluator[K], error) {
	evs := make([]*pdf.Evaluator[K], s.Size())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i := range evs {
		g.Go(func() error {
			ev, err := s.Member(gctx, i)
			evs[i] = ev
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return evs, nil
}

// Values evaluates flavor f at pt in every member, indexed by member.
func (s *Set[K]) Values(ctx context.Context, f pdf.Flavor, pt ...float64) ([]float64, error) {
	evs, err := s.Members(ctx)
	if err != nil {
		return nil, err
	}
	vs := make([]float64, len(evs))
	for i, ev := range evs {
		if vs[i], err = ev.Eval(f, pt...); err != nil {
			return nil, err
		}
	}
	return vs, nil
}

// Uncertainty evaluates f at pt in every member and combines the values.
// cl is the requested confidence level in percent; a negative cl keeps the
// set's own level.
func (s *Set[K]) Uncertainty(ctx context.Context, f pdf.Flavor, cl float64, pt ...float64) (Result, error) {
	vs, err := s.Values(ctx, f, pt...)
	if err != nil {
		return Result{}, err
	}
	return s.UncertaintyOf(vs, cl)
}

// setCL is the set's own confidence level as a fraction.
func (s *Set[K]) setCL() float64 {
	if s.errInfo.Core == "replicas" {
		return CL1Sigma / 100
	}
	return s.info.ConfLevel() / 100
}

// UncertaintyOf combines one value per member.
func (s *Set[K]) UncertaintyOf(values []float64, cl float64) (Result, error) {
	if len(values) != s.Size() {
		return Result{}, pdf.Errorf(pdf.KindInvalidInput, "%s has %d members, got %d values", s.name, s.Size(), len(values))
	}
	setCL := s.setCL()
	reqCL := setCL
	if cl >= 0 {
		reqCL = cl / 100
	}
	if reqCL < 0 || reqCL > 1 || math.IsNaN(reqCL) {
		return Result{}, pdf.Errorf(pdf.KindInvalidInput, "confidence level %v%% outside [0, 100]", cl)
	}

	ncore := s.errInfo.NCore
	r := s.strategy.Uncertainty(values, ncore, reqCL)
	r.Scale = 1
	if s.strategy.Scaled() && reqCL != setCL {
		chi2 := distuv.ChiSquared{K: 1}
		r.Scale = math.Sqrt(chi2.Quantile(reqCL) / chi2.Quantile(setCL))
		r.ErrPlus *= r.Scale
		r.ErrMinus *= r.Scale
		r.ErrSymm *= r.Scale
	}
	r.ErrPlusPDF, r.ErrMinusPDF, r.ErrSymmPDF = r.ErrPlus, r.ErrMinus, r.ErrSymm
	r.Parts = append(r.Parts, [2]float64{r.ErrPlus, r.ErrMinus})
	if len(s.errInfo.Quad) == 0 {
		return r, nil
	}

	var plus2, minus2 float64
	index := ncore
	for _, env := range s.errInfo.Quad {
		lo, hi := r.Central, r.Central
		for _, p := range env {
			for i := 0; i < p.Size; i++ {
				index++
				lo, hi = math.Min(lo, values[index]), math.Max(hi, values[index])
				if p.Symmetric() {
					mirror := 2*r.Central - values[index]
					lo, hi = math.Min(lo, mirror), math.Max(hi, mirror)
				}
			}
		}
		r.Parts = append(r.Parts, [2]float64{hi - r.Central, r.Central - lo})
		plus2 += sqr(hi - r.Central)
		minus2 += sqr(r.Central - lo)
	}
	r.ErrPlusPar, r.ErrMinusPar = math.Sqrt(plus2), math.Sqrt(minus2)
	r.ErrSymmPar = 0.5 * (r.ErrPlusPar + r.ErrMinusPar)
	r.ErrPlus = math.Hypot(r.ErrPlusPDF, r.ErrPlusPar)
	r.ErrMinus = math.Hypot(r.ErrMinusPDF, r.ErrMinusPar)
	r.ErrSymm = 0.5 * (r.ErrPlus + r.ErrMinus)
	return r, nil
}

// Correlation returns the correlation between flavor fa at pa and flavor fb at pb.
func (s *Set[K]) Correlation(ctx context.Context, fa pdf.Flavor, pa []float64, fb pdf.Flavor, pb []float64) (float64, error) {
	a, err := s.Values(ctx, fa, pa...)
	if err != nil {
		return 0, err
	}
	b, err := s.Values(ctx, fb, pb...)
	if err != nil {
		return 0, err
	}
	return s.CorrelationOf(a, b)
}

// CorrelationOf correlates two per-member value lists over the core members.
func (s *Set[K]) CorrelationOf(a, b []float64) (float64, error) {
	if len(a) != s.Size() || len(b) != s.Size() {
		return 0, pdf.Errorf(pdf.KindInvalidInput, "%s has %d members, got %d and %d values", s.name, s.Size(), len(a), len(b))
	}
	return s.strategy.Correlation(a, b, s.errInfo.NCore), nil
}
