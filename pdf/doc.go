// Package pdf provides the grid model and generic evaluator for parton
// distribution functions (PDFs) and transverse-momentum-dependent
// distributions (TMDs).
//
// # Reading Guide
//
// Start with these files:
//   - grid.go: the immutable Grid (axes, knots, one flat table per flavor)
//   - policy.go: per-(axis, direction) boundary policies
//   - evaluator.go: Evaluator[K], which routes in-range queries to an
//     Interpolator and the rest to an Extrapolator
//   - errors.go: the closed ErrorKind taxonomy every package reports through
//
// # Architecture
//
// The pdf package defines the interfaces and value types; implementations
// live in sub-packages:
//   - pdf/interp/: bilinear, bicubic and trilinear interpolation
//   - pdf/extrap/: zero, error, nearest and continuation extrapolation
//   - pdf/info/: the per-set metadata document
//   - pdf/reader/: lhagrid1 and all-flavor data file readers
//   - pdf/factory/: per-(set, member) evaluator cache with single-flight loading
//   - pdf/uncertainty/: error-set combination (Hessian, replicas)
//   - pdf/coupling/: αs interpolated from the info file
//
// pdf/interp and pdf/extrap register their constructors via init() functions
// that set NewInterpolatorFunc and NewExtrapolatorFunc. pdf/factory imports
// both, so any program using a Factory gets them.
//
// # Key Interfaces
//
//   - Kind: Collinear (x, mu2) or TMD (x, kt2, mu2); fixes arity at the type level
//   - Interpolator: value of one flavor, or all flavors, at an in-range point
//   - Extrapolator: applies a BoundaryPolicy to out-of-range points
package pdf
