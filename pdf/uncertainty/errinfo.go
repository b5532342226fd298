package uncertainty

import (
	"strings"
)

// Part is one named parameter variation inside a quadrature term. Pair
// variations take two members, names starting with '#' or '$' take one;
// '$' marks a variation to be symmetrised around the central value.
type Part struct {
	Name string
	Size int
}

// Symmetric reports whether a single-member variation is mirrored.
func (p Part) Symmetric() bool { return strings.HasPrefix(p.Name, "$") }

// ErrInfo is the decoded ErrorType of a set: a core error type with its
// member count, followed by quadrature terms of envelope parts.
//
//	hessian+as*mc  -> core "hessian", one quadrature term with envelope {as, mc}
type ErrInfo struct {
	Core  string
	NCore int
	Quad  [][]Part
}

// ParseErrInfo splits errorType and assigns members. numMembers includes the
// central member 0.
func ParseErrInfo(errorType string, numMembers int) ErrInfo {
	quads := strings.Split(strings.ToLower(strings.TrimSpace(errorType)), "+")
	ei := ErrInfo{Core: quads[0]}
	npar := 0
	for _, q := range quads[1:] {
		var env []Part
		for _, name := range strings.Split(q, "*") {
			size := 2
			if strings.HasPrefix(name, "#") || strings.HasPrefix(name, "$") {
				size = 1
			}
			env = append(env, Part{Name: name, Size: size})
			npar += size
		}
		ei.Quad = append(ei.Quad, env)
	}
	ei.NCore = numMembers - 1 - npar
	return ei
}

// NPar is the number of parameter-variation members after the core members.
func (ei ErrInfo) NPar() int {
	n := 0
	for _, env := range ei.Quad {
		for _, p := range env {
			n += p.Size
		}
	}
	return n
}
