// Package testutil provides shared test infrastructure for the pdf packages:
// tolerance assertions, small in-memory grids and on-disk set fixtures.
package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scientificLibs/PDFxTMD/pdf"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// ScenarioX and ScenarioMu2 are the knots of ScenarioGrid.
var (
	ScenarioX   = []float64{0.01, 0.1, 1.0}
	ScenarioMu2 = []float64{1.0, 100.0}
)

// ScenarioGrid is a 3x2 gluon grid with values
//
//	x=0.01: 1 2
//	x=0.1:  3 4
//	x=1:    5 6
func ScenarioGrid(t testing.TB) *pdf.Grid {
	t.Helper()
	return MustGrid(t, pdf.Metadata{Set: "scenario"},
		[]pdf.Axis{{Name: "x", Knots: ScenarioX}, {Name: "mu2", Knots: ScenarioMu2}},
		map[pdf.Flavor][]float64{pdf.Gluon: {1, 2, 3, 4, 5, 6}})
}

// MustGrid builds a grid whose flavors are the keys of tables, failing t on error.
func MustGrid(t testing.TB, meta pdf.Metadata, axes []pdf.Axis, tables map[pdf.Flavor][]float64) *pdf.Grid {
	t.Helper()
	var flavors []pdf.Flavor
	for _, f := range append(pdf.StandardFlavors[:], pdf.Photon, pdf.Z0, pdf.WPlus, pdf.WMinus, pdf.Higgs) {
		if _, ok := tables[f]; ok {
			flavors = append(flavors, f)
		}
	}
	g, err := pdf.NewGrid(meta, axes, flavors, tables)
	if err != nil {
		t.Fatalf("building grid: %v", err)
	}
	return g
}

// Fill tabulates fn over the cartesian product of axes, last axis fastest.
func Fill(axes []pdf.Axis, fn func(pt []float64) float64) []float64 {
	size := 1
	for _, a := range axes {
		size *= len(a.Knots)
	}
	out := make([]float64, size)
	pt := make([]float64, len(axes))
	for off := range out {
		rem := off
		for i := len(axes) - 1; i >= 0; i-- {
			n := len(axes[i].Knots)
			pt[i] = axes[i].Knots[rem%n]
			rem /= n
		}
		out[off] = fn(pt)
	}
	return out
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// WriteSet lays out a set under root: root/set/set.info and one
// root/set/set_NNNN.dat per member, numbered from 0.
func WriteSet(t *testing.T, root, set, info string, members ...string) string {
	t.Helper()
	dir := filepath.Join(root, set)
	WriteFile(t, dir, set+".info", info)
	for i, m := range members {
		WriteFile(t, dir, fmt.Sprintf("%s_%04d.dat", set, i), m)
	}
	return dir
}

// LHAGrid renders a single-block lhagrid1 member. qs are unsquared scales;
// fn receives (pid, x, q2).
func LHAGrid(xs, qs []float64, pids []int, fn func(pid int, x, q2 float64) float64) string {
	var b strings.Builder
	b.WriteString("PdfType: central\nFormat: lhagrid1\n---\n")
	writeBlock(&b, xs, qs, pids, fn)
	return b.String()
}

// LHAGridBlocks renders a multi-block lhagrid1 member, one block per qs
// entry. fn also receives the block index.
func LHAGridBlocks(xs []float64, qs [][]float64, pids []int, fn func(block, pid int, x, q2 float64) float64) string {
	var b strings.Builder
	b.WriteString("PdfType: central\nFormat: lhagrid1\n---\n")
	for i, q := range qs {
		writeBlock(&b, xs, q, pids, func(pid int, x, q2 float64) float64 { return fn(i, pid, x, q2) })
	}
	return b.String()
}

func writeBlock(b *strings.Builder, xs, qs []float64, pids []int, fn func(pid int, x, q2 float64) float64) {
	b.WriteString(joinFloats(xs) + "\n")
	b.WriteString(joinFloats(qs) + "\n")
	ids := make([]string, len(pids))
	for i, p := range pids {
		ids[i] = fmt.Sprint(p)
	}
	b.WriteString(strings.Join(ids, " ") + "\n")
	for _, x := range xs {
		for _, q := range qs {
			vals := make([]float64, len(pids))
			for i, p := range pids {
				vals[i] = fn(p, x, q*q)
			}
			b.WriteString(joinFloats(vals) + "\n")
		}
	}
	b.WriteString("---\n")
}

func joinFloats(vs []float64) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = fmt.Sprintf("%.17g", v)
	}
	return strings.Join(s, " ")
}

// CollinearInfo returns a minimal lhagrid1 info document.
func CollinearInfo(members int, errorType string, flavors ...int) string {
	return fmt.Sprintf(`SetDesc: test set
Format: lhagrid1
NumMembers: %d
ErrorType: %s
Flavors: %s
OrderQCD: 1
XMin: 0.01
XMax: 1
QMin: 1
QMax: 10
`, members, errorType, flowInts(flavors))
}

func flowInts(vs []int) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(s, ", ") + "]"
}
