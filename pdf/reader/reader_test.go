package reader

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scientificLibs/PDFxTMD/internal/testutil"
	"github.com/scientificLibs/PDFxTMD/pdf"
	"github.com/scientificLibs/PDFxTMD/pdf/info"
)

func collinearInfo(flavors ...int) *info.Info {
	return &info.Info{Name: "test", Format: info.FormatLHAGrid, NumMembers: 1, Flavors: flavors}
}

func linearValue(pid int, x, q2 float64) float64 { return float64(pid)*x + q2 }

func TestLHAGrid_SingleBlock(t *testing.T) {
	xs, qs := []float64{0.01, 0.1, 1}, []float64{1, 10}
	data := testutil.LHAGrid(xs, qs, []int{21, 2}, linearValue)

	g, err := LHAGrid{}.Read(strings.NewReader(data), collinearInfo(21, 2), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, g.Arity())
	if diff := cmp.Diff([]float64{1, 100}, g.Axis(1).Knots); diff != "" {
		t.Errorf("mu2 knots (-want +got):\n%s", diff)
	}
	assert.Equal(t, []pdf.Flavor{pdf.Gluon, pdf.Up}, g.Flavors())
	for i, x := range xs {
		for j, q := range qs {
			v, err := g.Value(pdf.Up, i, j)
			require.NoError(t, err)
			assert.Equal(t, linearValue(2, x, q*q), v)
		}
	}
	assert.Equal(t, info.FormatLHAGrid, g.Metadata().Format)
}

func TestLHAGrid_GluonAliasColumn(t *testing.T) {
	data := testutil.LHAGrid([]float64{0.1, 1}, []float64{1, 2}, []int{0, 1}, linearValue)
	g, err := LHAGrid{}.Read(strings.NewReader(data), collinearInfo(21, 1), 0)
	require.NoError(t, err)
	v, err := g.Value(pdf.Gluon, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestLHAGrid_MergesSubgridsKeepingUpperAtThreshold(t *testing.T) {
	xs := []float64{0.01, 0.1, 1}
	data := testutil.LHAGridBlocks(xs, [][]float64{{1, 2, 3}, {3, 5, 10}}, []int{21},
		func(block, pid int, x, q2 float64) float64 { return float64(100*block) + q2 })

	g, err := LHAGrid{}.Read(strings.NewReader(data), collinearInfo(21), 0)
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{1, 4, 9, 25, 100}, g.Axis(1).Knots); diff != "" {
		t.Errorf("merged mu2 knots (-want +got):\n%s", diff)
	}
	want := []float64{1, 4, 109, 125, 200}
	for j, w := range want {
		v, err := g.Value(pdf.Gluon, 1, j)
		require.NoError(t, err)
		assert.Equal(t, w, v, "knot %d", j)
	}
}

func TestLHAGrid_DropsUndeclaredColumns(t *testing.T) {
	data := testutil.LHAGrid([]float64{0.1, 1}, []float64{1, 2}, []int{21, 2, 3}, linearValue)
	g, err := LHAGrid{}.Read(strings.NewReader(data), collinearInfo(21, 2), 0)
	require.NoError(t, err)
	assert.False(t, g.HasFlavor(pdf.Strange))
	assert.Equal(t, 2, g.NumFlavors())
}

func TestLHAGrid_FortranExponents(t *testing.T) {
	data := "---\n1.0D-02 1.0d+00\n1 2\n21\n1.5D0\n2\n3\n4E0\n---\n"
	g, err := LHAGrid{}.Read(strings.NewReader(data), collinearInfo(21), 0)
	require.NoError(t, err)
	assert.Equal(t, 0.01, g.Knot(0, 0))
	v, _ := g.Value(pdf.Gluon, 0, 0)
	assert.Equal(t, 1.5, v)
}

func TestLHAGrid_Rejects(t *testing.T) {
	good := func(pids ...int) string {
		return testutil.LHAGrid([]float64{0.1, 1}, []float64{1, 2}, pids, linearValue)
	}
	tests := []struct {
		name    string
		data    string
		flavors []int
		kind    pdf.ErrorKind
	}{
		{"no blocks", "PdfType: central\n", []int{21}, pdf.KindInvalidFormat},
		{"missing row", "---\n0.1 1\n1 2\n21\n1\n2\n3\n---\n", []int{21}, pdf.KindInvalidFormat},
		{"extra row", "---\n0.1 1\n1 2\n21\n1\n2\n3\n4\n5\n---\n", []int{21}, pdf.KindInvalidFormat},
		{"short row", "---\n0.1 1\n1 2\n21 1\n1 1\n2\n3 3\n4 4\n---\n", []int{21, 1}, pdf.KindInvalidFormat},
		{"bad number", "---\n0.1 1\n1 2\n21\n1\nabc\n3\n4\n---\n", []int{21}, pdf.KindInvalidFormat},
		{"single knot", "---\n0.1\n1 2\n21\n1\n2\n---\n", []int{21}, pdf.KindInvalidFormat},
		{"repeated pid", "---\n0.1 1\n1 2\n21 21\n1 1\n2 2\n3 3\n4 4\n---\n", []int{21}, pdf.KindInvalidFormat},
		{"decreasing knots", "---\n1 0.1\n1 2\n21\n1\n2\n3\n4\n---\n", []int{21}, pdf.KindInvalidFormat},
		{"declared flavor missing", good(21), []int{21, 1}, pdf.KindInvalidFormat},
		{"different x knots", good(21) + "0.2 1\n2 3\n21\n1\n2\n3\n4\n---\n", []int{21}, pdf.KindNotSupport},
		{"different pids", good(21) + "0.1 1\n2 3\n1\n1\n2\n3\n4\n---\n", []int{21}, pdf.KindInvalidFormat},
		{"overlapping subgrids", good(21) + "0.1 1\n1.5 3\n21\n1\n2\n3\n4\n---\n", []int{21}, pdf.KindInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LHAGrid{}.Read(strings.NewReader(tt.data), collinearInfo(tt.flavors...), 0)
			require.Error(t, err)
			assert.Equal(t, tt.kind, pdf.KindOf(err), err.Error())
		})
	}
}

func TestLHAGrid_TMD(t *testing.T) {
	in := &info.Info{Name: "tmd", Format: info.FormatTMDLHAGrid, NumMembers: 1, Flavors: []int{21}}
	// x, kt, Q knots; rows x slowest, Q fastest
	var b strings.Builder
	b.WriteString("---\n0.1 1\n1 2\n3 4\n21\n")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&b, "%d\n", i)
	}
	b.WriteString("---\n")

	g, err := LHAGrid{TMD: true}.Read(strings.NewReader(b.String()), in, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Arity())
	assert.Equal(t, []float64{1, 4}, g.Axis(1).Knots)
	assert.Equal(t, []float64{9, 16}, g.Axis(2).Knots)
	v, _ := g.Value(pdf.Gluon, 1, 0, 1)
	assert.Equal(t, 6.0, v)

	two := b.String() + "0.1 1\n1 2\n4 5\n21\n1\n2\n3\n4\n5\n6\n7\n8\n---\n"
	_, err = LHAGrid{TMD: true}.Read(strings.NewReader(two), in, 0)
	assert.ErrorIs(t, err, pdf.ErrNotSupport)
}

func TestLHAGrid_WrongFormat(t *testing.T) {
	in := collinearInfo(21)
	in.Format = info.FormatAllFlavor
	_, err := LHAGrid{}.Read(strings.NewReader("---\n"), in, 0)
	assert.ErrorIs(t, err, pdf.ErrInvalidInfoFile)
}

// allFlavorRows renders every (x, kt2, mu) point in reverse order; column c
// of a point holds kt2 * (c+1) * x.
func allFlavorRows(xs, kt2s, mus []float64, ncols int) string {
	var b strings.Builder
	b.WriteString("PB TMD test grid\ncolumns: log x, log kt2, log mu, flavors\n\n\n")
	for i := len(xs) - 1; i >= 0; i-- {
		for j := len(kt2s) - 1; j >= 0; j-- {
			for k := len(mus) - 1; k >= 0; k-- {
				fmt.Fprintf(&b, "%.17g %.17g %.17g", math.Log(xs[i]), math.Log(kt2s[j]), math.Log(mus[k]))
				for c := 0; c < ncols; c++ {
					fmt.Fprintf(&b, " %.17g", kt2s[j]*float64(c+1)*xs[i])
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func tmdInfo(scheme string) *info.Info {
	return &info.Info{
		Name: "pb", Format: info.FormatAllFlavor, TMDScheme: scheme, NumMembers: 1,
		Flavors: []int{-6, -5, -4, -3, -2, -1, 21, 1, 2, 3, 4, 5, 6},
	}
}

func TestAllFlavor_Read(t *testing.T) {
	xs, kt2s, mus := []float64{0.01, 0.1}, []float64{1, 4, 9}, []float64{2, 3}
	data := allFlavorRows(xs, kt2s, mus, 14)

	g, err := AllFlavor{}.Read(strings.NewReader(data), tmdInfo(SchemePB), 0)
	require.NoError(t, err)
	assert.Equal(t, pdf.WeightKt2, g.Metadata().Weight)
	assert.Equal(t, 13, g.NumFlavors(), "photon column is not declared")
	testutil.AssertFloat64Equal(t, "kt2 knot", 9, g.Knot(1, 2), 1e-12)
	testutil.AssertFloat64Equal(t, "mu2 knot", 4, g.Knot(2, 0), 1e-12)

	// gluon is column 7
	v, err := g.Value(pdf.Gluon, 1, 2, 0)
	require.NoError(t, err)
	testutil.AssertFloat64Equal(t, "gluon", 9*7*0.1, v, 1e-12)
	v, err = g.Value(pdf.TBar, 0, 1, 1)
	require.NoError(t, err)
	testutil.AssertFloat64Equal(t, "tbar", 4*1*0.01, v, 1e-12)
}

func TestAllFlavor_ElectroweakScheme(t *testing.T) {
	in := tmdInfo(SchemePBEW)
	in.Flavors = append(in.Flavors, 22, 100, 101, 102, 103)
	data := allFlavorRows([]float64{0.01, 0.1}, []float64{1, 4}, []float64{2, 3}, 18)

	g, err := AllFlavor{}.Read(strings.NewReader(data), in, 0)
	require.NoError(t, err)
	assert.True(t, g.HasFlavor(pdf.Higgs))
	v, _ := g.Value(pdf.Higgs, 0, 0, 0)
	testutil.AssertFloat64Equal(t, "higgs", 18*0.01, v, 1e-12)
}

func TestAllFlavor_Rejects(t *testing.T) {
	full := allFlavorRows([]float64{0.01, 0.1}, []float64{1, 4}, []float64{2, 3}, 14)
	lines := strings.Split(strings.TrimSuffix(full, "\n"), "\n")
	dup := append(append([]string(nil), lines[:len(lines)-1]...), lines[len(lines)-2])
	tests := []struct {
		name string
		data string
		kind pdf.ErrorKind
	}{
		{"header only", strings.Join(lines[:4], "\n") + "\n", pdf.KindInvalidFormat},
		{"truncated header", "one\ntwo\n", pdf.KindInvalidFormat},
		{"ragged", full + "1 2 3\n", pdf.KindInvalidFormat},
		{"missing point", strings.Join(lines[:len(lines)-1], "\n") + "\n", pdf.KindInvalidFormat},
		{"repeated point", strings.Join(dup, "\n") + "\n", pdf.KindInvalidFormat},
		{"bad token", full + strings.Repeat("x ", 17) + "\n", pdf.KindInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AllFlavor{}.Read(strings.NewReader(tt.data), tmdInfo(SchemePB), 0)
			require.Error(t, err)
			assert.Equal(t, tt.kind, pdf.KindOf(err), err.Error())
		})
	}

	_, err := AllFlavor{}.Read(strings.NewReader(full), tmdInfo("TMDlib"), 0)
	assert.ErrorIs(t, err, pdf.ErrNotSupport)
}

func TestColumns(t *testing.T) {
	qcd, err := Columns(SchemePB)
	require.NoError(t, err)
	assert.Len(t, qcd, 14)
	assert.Equal(t, pdf.Gluon, qcd[6])

	ew, err := Columns(SchemePBEW)
	require.NoError(t, err)
	assert.Len(t, ew, 18)
	assert.Equal(t, qcd, ew[:14])
}

func TestForInfo(t *testing.T) {
	tests := []struct {
		name string
		in   *info.Info
		want Reader
	}{
		{"collinear default", &info.Info{}, LHAGrid{}},
		{"lhagrid format", &info.Info{Format: info.FormatLHAGrid}, LHAGrid{}},
		{"tmd lhagrid", &info.Info{Format: info.FormatTMDLHAGrid}, LHAGrid{TMD: true}},
		{"all flavor", &info.Info{Format: info.FormatAllFlavor}, AllFlavor{}},
		{"tmd scheme default", &info.Info{TMDScheme: SchemePB}, AllFlavor{}},
		{"reader key wins", &info.Info{Format: info.FormatAllFlavor, Reader: "TDefaultLHAPDF_TMDReader"}, LHAGrid{TMD: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ForInfo(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ForInfo(&info.Info{Reader: "Parquet"})
	assert.ErrorIs(t, err, pdf.ErrNotSupport)
	_, err = ForInfo(&info.Info{Format: "lhagrid2"})
	assert.ErrorIs(t, err, pdf.ErrNotSupport)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "set_0000.dat", testutil.LHAGrid([]float64{0.1, 1}, []float64{1, 2}, []int{21}, linearValue))

	g, err := ReadFile(LHAGrid{}, path, collinearInfo(21), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, g.NumFlavors())

	_, err = ReadFile(LHAGrid{}, filepath.Join(dir, "set_0001.dat"), collinearInfo(21), 1)
	assert.ErrorIs(t, err, pdf.ErrFileLoad)

	bad := testutil.WriteFile(t, dir, "bad.dat", "---\n0.1 1\n1 2\n21\n1\n---\n")
	_, err = ReadFile(LHAGrid{}, bad, collinearInfo(21), 0)
	assert.ErrorIs(t, err, pdf.ErrInvalidFormat)
	assert.Contains(t, err.Error(), bad)
}
