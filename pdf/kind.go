package pdf

// Kind tags a grid family at the type level so that an Evaluator[Collinear]
// can never be handed a three-axis query.
type Kind interface {
	Arity() int
	Name() string
}

// Collinear is the tag for PDF grids over (x, mu2).
type Collinear struct{}

func (Collinear) Arity() int   { return 2 }
func (Collinear) Name() string { return "collinear" }

// TMD is the tag for TMD grids over (x, kt2, mu2).
type TMD struct{}

func (TMD) Arity() int   { return 3 }
func (TMD) Name() string { return "tmd" }

// Axis positions shared by both kinds. Mu2 is always the last axis.
const (
	AxisX = 0
	// AxisKt2 only exists on TMD grids.
	AxisKt2 = 1
)

// AxisMu2 returns the index of the mu2 axis for a grid of the given arity.
func AxisMu2(arity int) int { return arity - 1 }

// AxisNames returns the conventional axis names for an arity.
func AxisNames(arity int) []string {
	if arity == 3 {
		return []string{"x", "kt2", "mu2"}
	}
	return []string{"x", "mu2"}
}
