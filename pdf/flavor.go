package pdf

import (
	"fmt"
	"strconv"
	"strings"
)

// Flavor is a PDG parton identifier.
type Flavor int

const (
	TBar    Flavor = -6
	BBar    Flavor = -5
	CBar    Flavor = -4
	SBar    Flavor = -3
	UBar    Flavor = -2
	DBar    Flavor = -1
	GNS     Flavor = 0 // gluon alias used by LHAPDF lookups
	Down    Flavor = 1
	Up      Flavor = 2
	Strange Flavor = 3
	Charm   Flavor = 4
	Bottom  Flavor = 5
	Top     Flavor = 6
	Gluon   Flavor = 21
	Photon  Flavor = 22
	Z0      Flavor = 100
	WPlus   Flavor = 101
	WMinus  Flavor = 102
	Higgs   Flavor = 103
)

// StandardFlavors is the fixed order used by bulk evaluation of the 13 QCD partons.
var StandardFlavors = [13]Flavor{TBar, BBar, CBar, SBar, UBar, DBar, Gluon, Down, Up, Strange, Charm, Bottom, Top}

var flavorNames = map[Flavor]string{
	TBar: "tbar", BBar: "bbar", CBar: "cbar", SBar: "sbar", UBar: "ubar", DBar: "dbar",
	Down: "d", Up: "u", Strange: "s", Charm: "c", Bottom: "b", Top: "t",
	Gluon: "g", Photon: "photon", Z0: "z0", WPlus: "wplus", WMinus: "wminus", Higgs: "higgs",
}

var flavorByName = func() map[string]Flavor {
	m := make(map[string]Flavor, len(flavorNames)+2)
	for f, n := range flavorNames {
		m[n] = f
	}
	m["gluon"] = Gluon
	m["gamma"] = Photon
	return m
}()

func (f Flavor) String() string {
	if n, ok := flavorNames[f]; ok {
		return n
	}
	return strconv.Itoa(int(f))
}

// Canonical maps the gluon alias 0 to 21.
func (f Flavor) Canonical() Flavor {
	if f == GNS {
		return Gluon
	}
	return f
}

// ParseFlavor accepts a flavor name ("g", "ubar", "photon") or a PDG integer.
func ParseFlavor(s string) (Flavor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if f, ok := flavorByName[s]; ok {
		return f, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, Errorf(KindInvalidInput, "unknown flavor %q", s)
	}
	return Flavor(n).Canonical(), nil
}

// ParseFlavors converts info-file PDG ids into flavors, rejecting duplicates.
func ParseFlavors(ids []int) ([]Flavor, error) {
	out := make([]Flavor, 0, len(ids))
	seen := make(map[Flavor]bool, len(ids))
	for _, id := range ids {
		f := Flavor(id).Canonical()
		if seen[f] {
			return nil, fmt.Errorf("duplicate flavor %d", id)
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}
