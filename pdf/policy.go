package pdf

import (
	"fmt"
	"strings"
)

// Policy is the behavior applied when a query leaves the grid on one side of one axis.
type Policy int

const (
	PolicyZero Policy = iota
	PolicyError
	PolicyNearest
	PolicyContinuation
)

var policyNames = [...]string{"zero", "error", "nearest", "continuation"}

func (p Policy) String() string {
	if p >= 0 && int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts the canonical names plus the aliases used in info files
// ("Err", "Clamp", "NearestPoint", "Continuation").
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zero":
		return PolicyZero, nil
	case "error", "err":
		return PolicyError, nil
	case "nearest", "nearestpoint", "clamp":
		return PolicyNearest, nil
	case "continuation":
		return PolicyContinuation, nil
	}
	return 0, Errorf(KindPolicy, "unknown extrapolation policy %q", s)
}

// Direction is the side of an axis a query left through.
type Direction int

const (
	Low Direction = iota
	High
)

func (d Direction) String() string {
	if d == High {
		return "high"
	}
	return "low"
}

// BoundaryPolicy maps every (axis, direction) pair to a Policy. It is a value
// type; With returns a modified copy.
type BoundaryPolicy struct {
	arity int
	table [3][2]Policy
}

// NewBoundaryPolicy returns a table with every edge set to def.
func NewBoundaryPolicy(arity int, def Policy) BoundaryPolicy {
	b := BoundaryPolicy{arity: arity}
	for i := 0; i < arity; i++ {
		b.table[i] = [2]Policy{def, def}
	}
	return b
}

// With returns a copy with one edge replaced. An axis the table does not
// have leaves it unchanged.
func (b BoundaryPolicy) With(axis int, d Direction, p Policy) BoundaryPolicy {
	if axis < 0 || axis >= b.arity || (d != Low && d != High) {
		return b
	}
	b.table[axis][d] = p
	return b
}

// Arity is zero for an unset table.
func (b BoundaryPolicy) Arity() int { return b.arity }

func (b BoundaryPolicy) IsZero() bool { return b.arity == 0 }

// At returns the policy for an edge.
func (b BoundaryPolicy) At(axis int, d Direction) Policy { return b.table[axis][d] }

// Uses reports whether any edge is set to p.
func (b BoundaryPolicy) Uses(p Policy) bool {
	for i := 0; i < b.arity; i++ {
		if b.table[i][Low] == p || b.table[i][High] == p {
			return true
		}
	}
	return false
}

func (b BoundaryPolicy) String() string {
	names := AxisNames(b.arity)
	parts := make([]string, 0, b.arity)
	for i := 0; i < b.arity; i++ {
		parts = append(parts, fmt.Sprintf("%s[%v,%v]", names[i], b.table[i][Low], b.table[i][High]))
	}
	return strings.Join(parts, " ")
}
