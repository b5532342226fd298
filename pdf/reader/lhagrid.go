package reader

import (
	"io"
	"slices"

	"github.com/batchatco/go-thrower"

	"github.com/scientificLibs/PDFxTMD/pdf"
	"github.com/scientificLibs/PDFxTMD/pdf/info"
)

const blockSeparator = "---"

// LHAGrid reads the LHAPDF lhagrid1 block format: a YAML header, then blocks
// separated by "---". A block holds an x knot line, for TMD grids a kt knot
// line, a Q knot line, a flavor id line, and one row per grid point with one
// column per flavor (last axis fastest). kt and Q knots are squared.
//
// Collinear files may hold several Q subgrids. They are merged into one mu2
// axis; where adjacent subgrids share their boundary knot the upper
// subgrid's values are kept. TMD files must hold a single block.
type LHAGrid struct {
	TMD bool
}

var _ Reader = LHAGrid{}

func (l LHAGrid) Name() string {
	if l.TMD {
		return "lhagrid-tmd"
	}
	return "lhagrid"
}

type block struct {
	first int // line number of the first data line
	xs    []float64
	kt2s  []float64
	mu2s  []float64
	pids  []int
	rows  []float64 // npoints * len(pids), row-major
	nrows int
	state int
}

func (b *block) empty() bool { return b.state == 0 }

func (b *block) points() int {
	n := len(b.xs) * len(b.mu2s)
	if b.kt2s != nil {
		n *= len(b.kt2s)
	}
	return n
}

func (l LHAGrid) Read(r io.Reader, in *info.Info, member int) (g *pdf.Grid, err error) {
	defer thrower.RecoverError(&err)
	if in.Format != "" && in.Format != info.FormatLHAGrid && in.Format != info.FormatTMDLHAGrid {
		return nil, pdf.Errorf(pdf.KindInvalidInfoFile, "%s: format %q cannot be read as lhagrid", in.Name, in.Format)
	}
	blocks := l.scan(newLineScanner(r))
	if len(blocks) == 0 {
		return nil, pdf.Errorf(pdf.KindInvalidFormat, "%s member %d: no data blocks", in.Name, member)
	}
	if l.TMD {
		if len(blocks) > 1 {
			return nil, pdf.Errorf(pdf.KindNotSupport, "%s: %d subgrids in a TMD grid, only one is supported", in.Name, len(blocks))
		}
		return l.buildTMD(blocks[0], in, member)
	}
	return l.buildCollinear(blocks, in, member)
}

func (l LHAGrid) scan(s *lineScanner) []*block {
	var blocks []*block
	var cur *block
	finish := func() {
		if cur == nil || cur.empty() {
			return
		}
		if cur.state < l.headerLines() || cur.nrows != cur.points() {
			thrower.Throw(pdf.Errorf(pdf.KindInvalidFormat,
				"block %d starting at line %d: %d value rows, expected %d", len(blocks)+1, cur.first, cur.nrows, cur.points()))
		}
		blocks = append(blocks, cur)
	}
	for s.next() {
		if s.text == "" || s.text[0] == '#' {
			continue
		}
		if s.text == blockSeparator {
			finish()
			cur = &block{}
			continue
		}
		if cur == nil {
			// YAML header before the first separator.
			continue
		}
		l.line(s, cur)
	}
	finish()
	return blocks
}

func (l LHAGrid) headerLines() int {
	if l.TMD {
		return 4
	}
	return 3
}

func (l LHAGrid) line(s *lineScanner, b *block) {
	if b.state == 0 {
		b.first = s.line
	}
	state := b.state
	if !l.TMD && state >= 1 {
		// Collinear blocks have no kt line.
		state++
	}
	switch state {
	case 0:
		b.xs = knots(s)
	case 1:
		b.kt2s = squares(knots(s))
	case 2:
		b.mu2s = squares(knots(s))
	case 3:
		b.pids = s.ints()
		if len(b.pids) == 0 {
			s.fail("no flavor ids")
		}
		seen := make(map[int]bool, len(b.pids))
		for _, p := range b.pids {
			if seen[p] {
				s.fail("flavor id %d listed twice", p)
			}
			seen[p] = true
		}
		b.rows = make([]float64, 0, b.points()*len(b.pids))
	default:
		if b.nrows >= b.points() {
			s.fail("more value rows than the %d grid points", b.points())
		}
		n := len(b.rows)
		b.rows = b.rows[:n+len(b.pids)]
		s.floatsInto(b.rows[n:])
		b.nrows++
	}
	b.state++
}

func knots(s *lineScanner) []float64 {
	k := s.floats()
	if len(k) < 2 {
		s.fail("knot line needs at least 2 values, got %d", len(k))
	}
	return k
}

func squares(vs []float64) []float64 {
	for i, v := range vs {
		vs[i] = v * v
	}
	return vs
}

func (l LHAGrid) buildCollinear(blocks []*block, in *info.Info, member int) (*pdf.Grid, error) {
	base := blocks[0]
	// src[k] = (block, column) that owns merged mu2 knot k.
	type source struct{ b, j int }
	var mu2 []float64
	var src []source
	for bi, b := range blocks {
		if !slices.Equal(b.xs, base.xs) {
			return nil, pdf.Errorf(pdf.KindNotSupport, "%s: subgrid %d has different x knots", in.Name, bi+1)
		}
		if !slices.Equal(b.pids, base.pids) {
			return nil, pdf.Errorf(pdf.KindInvalidFormat, "%s: subgrid %d has different flavor ids", in.Name, bi+1)
		}
		for j, q := range b.mu2s {
			if n := len(mu2); n > 0 {
				switch {
				case j == 0 && q == mu2[n-1]:
					mu2, src = mu2[:n-1], src[:n-1]
				case q <= mu2[n-1]:
					return nil, pdf.Errorf(pdf.KindInvalidFormat, "%s: subgrid %d Q knots overlap or decrease", in.Name, bi+1)
				}
			}
			mu2 = append(mu2, q)
			src = append(src, source{bi, j})
		}
	}
	nx, nq, nf := len(base.xs), len(mu2), len(base.pids)
	tables := make(map[pdf.Flavor][]float64, nf)
	for c, pid := range base.pids {
		t := make([]float64, nx*nq)
		for i := 0; i < nx; i++ {
			for k, s := range src {
				b := blocks[s.b]
				t[i*nq+k] = b.rows[(i*len(b.mu2s)+s.j)*nf+c]
			}
		}
		tables[pdf.Flavor(pid)] = t
	}
	axes := []pdf.Axis{{Name: "x", Knots: base.xs}, {Name: "mu2", Knots: mu2}}
	checkBounds(in, "x", in.XMin, in.XMax, axes[0], false)
	checkBounds(in, "mu2", in.QMin, in.QMax, axes[1], true)
	meta := pdf.Metadata{Set: in.Name, Member: member, Format: info.FormatLHAGrid}
	return pdf.NewGrid(meta, axes, in.FlavorList(), selectTables(in, tables))
}

func (l LHAGrid) buildTMD(b *block, in *info.Info, member int) (*pdf.Grid, error) {
	nf := len(b.pids)
	np := b.points()
	tables := make(map[pdf.Flavor][]float64, nf)
	for c, pid := range b.pids {
		t := make([]float64, np)
		for p := 0; p < np; p++ {
			t[p] = b.rows[p*nf+c]
		}
		tables[pdf.Flavor(pid)] = t
	}
	axes := []pdf.Axis{{Name: "x", Knots: b.xs}, {Name: "kt2", Knots: b.kt2s}, {Name: "mu2", Knots: b.mu2s}}
	checkBounds(in, "x", in.XMin, in.XMax, axes[0], false)
	checkBounds(in, "kt2", in.KtMin, in.KtMax, axes[1], true)
	checkBounds(in, "mu2", in.QMin, in.QMax, axes[2], true)
	meta := pdf.Metadata{Set: in.Name, Member: member, Format: in.Format}
	return pdf.NewGrid(meta, axes, in.FlavorList(), selectTables(in, tables))
}
