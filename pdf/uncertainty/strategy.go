package uncertainty

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Result holds an uncertainty estimate. The unsuffixed errors combine the
// core PDF errors with parameter variations in quadrature.
type Result struct {
	Central  float64
	ErrPlus  float64
	ErrMinus float64
	ErrSymm  float64
	// Scale is the factor applied to reach the requested confidence level.
	Scale float64

	ErrPlusPDF, ErrMinusPDF, ErrSymmPDF float64
	ErrPlusPar, ErrMinusPar, ErrSymmPar float64
	// Parts holds (+, -) pairs: the core errors first, then one per quadrature term.
	Parts [][2]float64
}

// Strategy computes core errors from member values. values[0] is the central
// member; values[1..ncore] are the core error members.
type Strategy interface {
	Name() string
	Uncertainty(values []float64, ncore int, cl float64) Result
	Correlation(a, b []float64, ncore int) float64
	// Scaled reports whether results are rescaled from the set's confidence level.
	Scaled() bool
}

func sqr(x float64) float64 { return x * x }

// Hessian is the asymmetric eigenvector-pair strategy (arXiv:1106.5788 eqs. 2.1, 2.2, 2.6).
type Hessian struct{}

func (Hessian) Name() string { return "hessian" }
func (Hessian) Scaled() bool { return true }

func (Hessian) Uncertainty(v []float64, ncore int, _ float64) Result {
	var plus, minus, symm float64
	for i := 1; i <= ncore/2; i++ {
		up, down := v[2*i-1]-v[0], v[2*i]-v[0]
		plus += sqr(math.Max(math.Max(up, down), 0))
		minus += sqr(math.Max(math.Max(-up, -down), 0))
		symm += sqr(v[2*i-1] - v[2*i])
	}
	return Result{Central: v[0], ErrPlus: math.Sqrt(plus), ErrMinus: math.Sqrt(minus), ErrSymm: 0.5 * math.Sqrt(symm)}
}

func (h Hessian) Correlation(a, b []float64, ncore int) float64 {
	ea, eb := h.Uncertainty(a, ncore, -1), h.Uncertainty(b, ncore, -1)
	cor := 0.0
	for i := 1; i <= ncore/2; i++ {
		cor += (a[2*i-1] - a[2*i]) * (b[2*i-1] - b[2*i])
	}
	if ea.ErrSymm == 0 || eb.ErrSymm == 0 {
		return 0
	}
	return cor / (4 * ea.ErrSymm * eb.ErrSymm)
}

// SymmHessian adds member deviations from the central member in quadrature.
type SymmHessian struct{}

func (SymmHessian) Name() string { return "symmhessian" }
func (SymmHessian) Scaled() bool { return true }

func (SymmHessian) Uncertainty(v []float64, ncore int, _ float64) Result {
	s := 0.0
	for i := 1; i <= ncore; i++ {
		s += sqr(v[i] - v[0])
	}
	s = math.Sqrt(s)
	return Result{Central: v[0], ErrPlus: s, ErrMinus: s, ErrSymm: s}
}

func (h SymmHessian) Correlation(a, b []float64, ncore int) float64 {
	ea, eb := h.Uncertainty(a, ncore, -1), h.Uncertainty(b, ncore, -1)
	cor := 0.0
	for i := 1; i <= ncore; i++ {
		cor += (a[i] - ea.Central) * (b[i] - eb.Central)
	}
	if ea.ErrSymm == 0 || eb.ErrSymm == 0 {
		return 0
	}
	return cor / (ea.ErrSymm * eb.ErrSymm)
}

// ReplicasStdDev uses the replica mean and unbiased standard deviation
// (arXiv:1106.5788 eqs. 2.3, 2.4).
type ReplicasStdDev struct{}

func (ReplicasStdDev) Name() string { return "replicas" }
func (ReplicasStdDev) Scaled() bool { return true }

func (ReplicasStdDev) Uncertainty(v []float64, ncore int, _ float64) Result {
	mean, sd := stat.MeanStdDev(v[1:ncore+1], nil)
	if ncore < 2 || math.IsNaN(sd) {
		sd = 0
	}
	return Result{Central: mean, ErrPlus: sd, ErrMinus: sd, ErrSymm: sd}
}

func (r ReplicasStdDev) Correlation(a, b []float64, ncore int) float64 {
	return replicaCorrelation(r, a, b, ncore)
}

// ReplicasPercentile takes the median as central value and the quantiles at
// the requested confidence level as bounds. It is never rescaled.
type ReplicasPercentile struct{}

func (ReplicasPercentile) Name() string { return "replicas-percentile" }
func (ReplicasPercentile) Scaled() bool { return false }

func (ReplicasPercentile) Uncertainty(v []float64, ncore int, cl float64) Result {
	sorted := append([]float64(nil), v[1:ncore+1]...)
	sort.Float64s(sorted)
	if cl < 0 {
		cl = CL1Sigma / 100
	}
	central := stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	hi := stat.Quantile(0.5*(1+cl), stat.LinInterp, sorted, nil)
	lo := stat.Quantile(0.5*(1-cl), stat.LinInterp, sorted, nil)
	r := Result{Central: central, ErrPlus: hi - central, ErrMinus: central - lo}
	r.ErrSymm = 0.5 * (r.ErrPlus + r.ErrMinus)
	return r
}

func (r ReplicasPercentile) Correlation(a, b []float64, ncore int) float64 {
	return replicaCorrelation(r, a, b, ncore)
}

// replicaCorrelation is eq. 2.7 of arXiv:1106.5788 with the n/(n-1) bias correction.
func replicaCorrelation(s Strategy, a, b []float64, ncore int) float64 {
	ea, eb := s.Uncertainty(a, ncore, -1), s.Uncertainty(b, ncore, -1)
	cor := 0.0
	for i := 1; i <= ncore; i++ {
		cor += a[i] * b[i]
	}
	if ea.ErrSymm == 0 || eb.ErrSymm == 0 {
		return 0
	}
	n := float64(ncore)
	cor = (cor/n - ea.Central*eb.Central) / (ea.ErrSymm * eb.ErrSymm)
	return cor * n / (n - 1)
}
