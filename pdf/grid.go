package pdf

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Space selects the coordinate transform applied before interpolation.
type Space int

const (
	LogSpace Space = iota
	LinearSpace
)

func (s Space) String() string {
	if s == LinearSpace {
		return "linear"
	}
	return "log"
}

// Weight describes how table values relate to the distribution they encode.
type Weight int

const (
	// WeightNone: tables hold the returned value directly (x·f for LHAPDF grids).
	WeightNone Weight = iota
	// WeightKt2: tables hold kt2·f and the evaluator divides by kt2 on output.
	WeightKt2
)

// Metadata is the descriptive part of a grid. It is copied into the Grid and
// never mutated afterwards.
type Metadata struct {
	Set            string
	Member         int
	Format         string
	Space          Space
	Weight         Weight
	AllowNonFinite bool
}

// Axis is one named, strictly increasing coordinate axis.
type Axis struct {
	Name  string
	Knots []float64
}

// Grid is an immutable tabulated dataset: ordered axes plus one flat value
// table per flavor. Tables are row-major with the first axis slowest.
type Grid struct {
	meta    Metadata
	axes    []Axis
	coords  [][]float64 // knots transformed into interpolation space
	strides []int
	flavors []Flavor
	index   map[Flavor]int
	tables  [][]float64
}

// NewGrid validates and freezes a grid. Declared flavors must all have a
// table; tables for undeclared flavors are rejected so the two stay in sync.
func NewGrid(meta Metadata, axes []Axis, flavors []Flavor, tables map[Flavor][]float64) (*Grid, error) {
	if len(axes) < 2 || len(axes) > 3 {
		return nil, Errorf(KindInitialization, "grid must have 2 or 3 axes, got %d", len(axes))
	}
	if len(flavors) == 0 {
		return nil, Errorf(KindInvalidFormat, "grid declares no flavors")
	}
	g := &Grid{
		meta:    meta,
		axes:    make([]Axis, len(axes)),
		coords:  make([][]float64, len(axes)),
		strides: make([]int, len(axes)),
		flavors: make([]Flavor, 0, len(flavors)),
		index:   make(map[Flavor]int, len(flavors)),
	}
	for i, a := range axes {
		if err := validateAxis(a, meta.Space); err != nil {
			return nil, err
		}
		knots := append([]float64(nil), a.Knots...)
		g.axes[i] = Axis{Name: a.Name, Knots: knots}
		g.coords[i] = toSpace(knots, meta.Space)
	}
	size := 1
	for i := len(axes) - 1; i >= 0; i-- {
		g.strides[i] = size
		size *= len(axes[i].Knots)
	}

	var problems []string
	for _, f := range flavors {
		f = f.Canonical()
		if _, dup := g.index[f]; dup {
			return nil, Errorf(KindInvalidFormat, "flavor %v declared twice", f)
		}
		t, ok := tables[f]
		if !ok && f == Gluon {
			t, ok = tables[GNS]
		}
		if !ok {
			problems = append(problems, fmt.Sprintf("declared flavor %v has no values", f))
			continue
		}
		if len(t) != size {
			return nil, Errorf(KindInitialization, "flavor %v: table has %d values, axes need %d", f, len(t), size)
		}
		if !meta.AllowNonFinite {
			for i, v := range t {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					problems = append(problems, fmt.Sprintf("flavor %v: non-finite value at index %d", f, i))
					break
				}
			}
		}
		g.index[f] = len(g.tables)
		g.flavors = append(g.flavors, f)
		g.tables = append(g.tables, append([]float64(nil), t...))
	}
	for f := range tables {
		if _, ok := g.index[f.Canonical()]; !ok && !containsFlavor(flavors, f) {
			problems = append(problems, fmt.Sprintf("values for undeclared flavor %v", f))
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, Errorf(KindInvalidFormat, "%s", strings.Join(problems, "; "))
	}
	return g, nil
}

func containsFlavor(fs []Flavor, f Flavor) bool {
	for _, x := range fs {
		if x.Canonical() == f.Canonical() {
			return true
		}
	}
	return false
}

func validateAxis(a Axis, space Space) error {
	if len(a.Knots) < 2 {
		return Errorf(KindInvalidFormat, "axis %s: need at least 2 knots, got %d", a.Name, len(a.Knots))
	}
	for i, k := range a.Knots {
		if math.IsNaN(k) || math.IsInf(k, 0) {
			return Errorf(KindInvalidFormat, "axis %s: non-finite knot at %d", a.Name, i)
		}
		if space == LogSpace && k <= 0 {
			return Errorf(KindInvalidFormat, "axis %s: knot %g at %d must be positive for log interpolation", a.Name, k, i)
		}
		if i > 0 && k <= a.Knots[i-1] {
			return Errorf(KindInvalidFormat, "axis %s: knots not strictly increasing at %d (%g after %g)", a.Name, i, k, a.Knots[i-1])
		}
	}
	return nil
}

func toSpace(knots []float64, space Space) []float64 {
	out := make([]float64, len(knots))
	for i, k := range knots {
		out[i] = ToSpace(k, space)
	}
	return out
}

// ToSpace maps a coordinate into interpolation space.
func ToSpace(v float64, space Space) float64 {
	if space == LogSpace {
		return math.Log(v)
	}
	return v
}

// FromSpace is the inverse of ToSpace.
func FromSpace(v float64, space Space) float64 {
	if space == LogSpace {
		return math.Exp(v)
	}
	return v
}

func (g *Grid) Metadata() Metadata { return g.meta }
func (g *Grid) Arity() int         { return len(g.axes) }
func (g *Grid) Space() Space       { return g.meta.Space }

// Axis returns a copy of axis i.
func (g *Grid) Axis(i int) Axis {
	a := g.axes[i]
	return Axis{Name: a.Name, Knots: append([]float64(nil), a.Knots...)}
}

// NumKnots returns the knot count of axis i.
func (g *Grid) NumKnots(i int) int { return len(g.axes[i].Knots) }

// Knot returns knot j of axis i.
func (g *Grid) Knot(i, j int) float64 { return g.axes[i].Knots[j] }

// Coord returns knot j of axis i in interpolation space.
func (g *Grid) Coord(i, j int) float64 { return g.coords[i][j] }

// Coords exposes the interpolation-space knots of axis i. Callers must not modify it.
func (g *Grid) Coords(i int) []float64 { return g.coords[i] }

// Bounds returns the first and last knot of axis i.
func (g *Grid) Bounds(i int) (lo, hi float64) {
	k := g.axes[i].Knots
	return k[0], k[len(k)-1]
}

// InRange reports whether v lies within the closed knot range of axis i.
func (g *Grid) InRange(i int, v float64) bool {
	lo, hi := g.Bounds(i)
	return v >= lo && v <= hi
}

// Flavors returns the grid's flavors in table order.
func (g *Grid) Flavors() []Flavor { return append([]Flavor(nil), g.flavors...) }

// NumFlavors returns the number of flavor tables.
func (g *Grid) NumFlavors() int { return len(g.flavors) }

// HasFlavor reports whether f (or its gluon alias) has a table.
func (g *Grid) HasFlavor(f Flavor) bool {
	_, ok := g.index[f.Canonical()]
	return ok
}

// Table returns the read-only flat table for f.
func (g *Grid) Table(f Flavor) ([]float64, bool) {
	i, ok := g.index[f.Canonical()]
	if !ok {
		return nil, false
	}
	return g.tables[i], true
}

// TableAt returns the table at position i of Flavors().
func (g *Grid) TableAt(i int) []float64 { return g.tables[i] }

// Offset converts per-axis knot indices into a flat table offset.
func (g *Grid) Offset(idx ...int) int {
	off := 0
	for i, j := range idx {
		off += j * g.strides[i]
	}
	return off
}

// Stride returns the flat-index stride of axis i.
func (g *Grid) Stride(i int) int { return g.strides[i] }

// Value returns the stored value for f at the given knot indices.
func (g *Grid) Value(f Flavor, idx ...int) (float64, error) {
	t, ok := g.Table(f)
	if !ok {
		return 0, Errorf(KindInvalidInput, "flavor %v not in grid", f)
	}
	if len(idx) != len(g.axes) {
		return 0, Errorf(KindInvalidInput, "need %d indices, got %d", len(g.axes), len(idx))
	}
	for i, j := range idx {
		if j < 0 || j >= len(g.axes[i].Knots) {
			return 0, Errorf(KindOutOfRange, "axis %s: index %d outside [0, %d)", g.axes[i].Name, j, len(g.axes[i].Knots))
		}
	}
	return t[g.Offset(idx...)], nil
}
