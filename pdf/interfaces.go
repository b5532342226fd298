package pdf

// Interpolator computes values strictly inside a grid's knot range.
// Implementations are stateless and safe for concurrent use.
type Interpolator interface {
	Method() Method
	// Interpolate fails with KindOutOfRange if any coordinate lies outside the grid.
	Interpolate(g *Grid, f Flavor, pt []float64) (float64, error)
	// InterpolateAll writes one value per g.Flavors() entry into out.
	InterpolateAll(g *Grid, pt []float64, out []float64) error
}

// Extrapolator resolves queries that leave the grid on at least one axis.
type Extrapolator interface {
	Policy() BoundaryPolicy
	Extrapolate(g *Grid, ip Interpolator, f Flavor, pt []float64) (float64, error)
	ExtrapolateAll(g *Grid, ip Interpolator, pt []float64, out []float64) error
}

// NewInterpolatorFunc builds an Interpolator for a method and grid arity.
// Set by pdf/interp's init(); nil until that package is imported.
var NewInterpolatorFunc func(m Method, arity int) (Interpolator, error)

// NewExtrapolatorFunc builds an Extrapolator for a boundary table.
// Set by pdf/extrap's init(); nil until that package is imported.
var NewExtrapolatorFunc func(arity int, p BoundaryPolicy) (Extrapolator, error)
