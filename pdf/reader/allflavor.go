package reader

import (
	"bufio"
	"io"
	"math"
	"sort"

	"github.com/batchatco/go-thrower"

	"github.com/scientificLibs/PDFxTMD/pdf"
	"github.com/scientificLibs/PDFxTMD/pdf/info"
)

// TMD schemes understood by AllFlavor.
const (
	SchemePB   = "PB TMD"
	SchemePBEW = "PB TMD-EW"
)

// DefaultHeaderLines is the number of free-text lines before the data rows.
const DefaultHeaderLines = 4

var (
	qcdColumns = []pdf.Flavor{
		pdf.TBar, pdf.BBar, pdf.CBar, pdf.SBar, pdf.UBar, pdf.DBar, pdf.Gluon,
		pdf.Down, pdf.Up, pdf.Strange, pdf.Charm, pdf.Bottom, pdf.Top, pdf.Photon,
	}
	ewColumns = []pdf.Flavor{pdf.Z0, pdf.WPlus, pdf.WMinus, pdf.Higgs}
)

// Columns returns the flavor column order of a TMD scheme.
func Columns(scheme string) ([]pdf.Flavor, error) {
	switch scheme {
	case "", SchemePB:
		return qcdColumns, nil
	case SchemePBEW:
		return append(append([]pdf.Flavor(nil), qcdColumns...), ewColumns...), nil
	}
	return nil, pdf.Errorf(pdf.KindNotSupport, "TMD scheme %q", scheme)
}

// AllFlavor reads dense TMD files. After HeaderLines of free text every
// record is log(x) log(kt2) log(mu) followed by one value per scheme column.
// Records may come in any order but every (x, kt2, mu2) combination must
// appear exactly once. Values are stored as kt2·f.
type AllFlavor struct {
	HeaderLines int
}

var _ Reader = AllFlavor{}

func (AllFlavor) Name() string { return "allflavor" }

func (a AllFlavor) Read(r io.Reader, in *info.Info, member int) (g *pdf.Grid, err error) {
	defer thrower.RecoverError(&err)
	if in.Format != "" && in.Format != info.FormatAllFlavor {
		return nil, pdf.Errorf(pdf.KindInvalidInfoFile, "%s: format %q cannot be read as %s", in.Name, in.Format, info.FormatAllFlavor)
	}
	cols, err := Columns(in.TMDScheme)
	if err != nil {
		return nil, err
	}
	header := a.HeaderLines
	if header == 0 {
		header = DefaultHeaderLines
	}
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	skipLines(br, header)

	width := 3 + len(cols)
	var records []float64
	ws := newWordScanner(br)
	for {
		v, ok := ws.next()
		if !ok {
			break
		}
		records = append(records, v)
	}
	if len(records) == 0 {
		return nil, pdf.Errorf(pdf.KindInvalidFormat, "%s member %d: no data rows", in.Name, member)
	}
	if len(records)%width != 0 {
		return nil, pdf.Errorf(pdf.KindInvalidFormat, "%s member %d: %d numbers do not form rows of %d", in.Name, member, len(records), width)
	}
	n := len(records) / width

	lx, lkt, lmu := distinct(records, width, 0), distinct(records, width, 1), distinct(records, width, 2)
	ix, ikt, imu := positions(lx), positions(lkt), positions(lmu)
	nx, nkt, nmu := len(lx), len(lkt), len(lmu)
	if n != nx*nkt*nmu {
		return nil, pdf.Errorf(pdf.KindInvalidFormat, "%s member %d: %d rows for a %dx%dx%d grid", in.Name, member, n, nx, nkt, nmu)
	}

	tables := make(map[pdf.Flavor][]float64, len(cols))
	for _, f := range cols {
		tables[f] = make([]float64, n)
	}
	filled := make([]bool, n)
	for row := 0; row < n; row++ {
		rec := records[row*width : (row+1)*width]
		p := (ix[rec[0]]*nkt+ikt[rec[1]])*nmu + imu[rec[2]]
		if filled[p] {
			return nil, pdf.Errorf(pdf.KindInvalidFormat, "%s member %d: row %d repeats a grid point", in.Name, member, row+1)
		}
		filled[p] = true
		for c, f := range cols {
			tables[f][p] = rec[3+c]
		}
	}

	axes := []pdf.Axis{
		{Name: "x", Knots: mapExp(lx, 1)},
		{Name: "kt2", Knots: mapExp(lkt, 1)},
		{Name: "mu2", Knots: mapExp(lmu, 2)},
	}
	checkBounds(in, "x", in.XMin, in.XMax, axes[0], false)
	checkBounds(in, "kt2", in.KtMin, in.KtMax, axes[1], true)
	checkBounds(in, "mu2", in.QMin, in.QMax, axes[2], true)
	meta := pdf.Metadata{Set: in.Name, Member: member, Format: info.FormatAllFlavor, Weight: pdf.WeightKt2}
	return pdf.NewGrid(meta, axes, in.FlavorList(), selectTables(in, tables))
}

// distinct returns the sorted distinct values of column c.
func distinct(records []float64, width, c int) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for i := c; i < len(records); i += width {
		if v := records[i]; !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func positions(vs []float64) map[float64]int {
	m := make(map[float64]int, len(vs))
	for i, v := range vs {
		m[v] = i
	}
	return m
}

// mapExp converts log knots back: exp(scale*v).
func mapExp(vs []float64, scale float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = math.Exp(scale * v)
	}
	return out
}
