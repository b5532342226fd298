// Package reader turns member data files into immutable pdf.Grid values.
//
// Two layouts are supported. LHAGrid reads the LHAPDF block format, where each
// row carries one value per flavor column and values are demultiplexed into
// per-flavor tables. AllFlavor reads dense TMD files, where every row is a
// full grid point with all flavors of the set's scheme. Both produce the same
// flavor-major Grid.
package reader

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/scientificLibs/PDFxTMD/pdf"
	"github.com/scientificLibs/PDFxTMD/pdf/info"
)

// Reader builds a Grid from one member data stream.
type Reader interface {
	Name() string
	Read(r io.Reader, in *info.Info, member int) (*pdf.Grid, error)
}

// ReadFile opens path and reads it with rd.
func ReadFile(rd Reader, path string, in *info.Info, member int) (*pdf.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pdf.Errorf(pdf.KindFileLoad, "opening grid file: %w", err)
	}
	defer f.Close()
	g, err := rd.Read(bufio.NewReaderSize(f, 1<<16), in, member)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logrus.Debugf("read %s member %d with %s: %d flavors", in.Name, member, rd.Name(), g.NumFlavors())
	return g, nil
}

// Names accepted in the info file's Reader key, mapped to constructors.
var readerNames = map[string]func(arity int) Reader{
	"lhagrid":                  func(a int) Reader { return LHAGrid{TMD: a == 3} },
	"defaultlhapdffilereader":  func(a int) Reader { return LHAGrid{} },
	"cdefaultlhapdffilereader": func(a int) Reader { return LHAGrid{} },
	"tdefaultlhapdf_tmdreader": func(a int) Reader { return LHAGrid{TMD: true} },
	"allflavor":                func(a int) Reader { return AllFlavor{} },
	"tdefaultallflavorreader":  func(a int) Reader { return AllFlavor{} },
}

// ForInfo picks the reader for a set: the Reader key wins, then Format, then
// the kind default (LHAGrid for collinear, AllFlavor for TMD).
func ForInfo(in *info.Info) (Reader, error) {
	arity := in.Arity()
	if in.Reader != "" {
		mk, ok := readerNames[strings.ToLower(in.Reader)]
		if !ok {
			return nil, pdf.Errorf(pdf.KindNotSupport, "reader %q", in.Reader)
		}
		return mk(arity), nil
	}
	switch in.Format {
	case info.FormatLHAGrid, info.FormatTMDLHAGrid:
		return LHAGrid{TMD: arity == 3}, nil
	case info.FormatAllFlavor:
		return AllFlavor{}, nil
	case "":
		if arity == 3 {
			return AllFlavor{}, nil
		}
		return LHAGrid{}, nil
	}
	return nil, pdf.Errorf(pdf.KindNotSupport, "grid format %q", in.Format)
}

// checkBounds warns when the info file's declared range disagrees with the knots.
func checkBounds(in *info.Info, name string, lo, hi *float64, axis pdf.Axis, square bool) {
	if lo == nil || hi == nil {
		return
	}
	l, h := *lo, *hi
	if square {
		l, h = l*l, h*h
	}
	k := axis.Knots
	if !approxEqual(l, k[0]) || !approxEqual(h, k[len(k)-1]) {
		logrus.Warnf("%s: info declares %s range [%g, %g], grid knots span [%g, %g]",
			in.Name, name, l, h, k[0], k[len(k)-1])
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(math.Abs(a), math.Abs(b))
}

// selectTables keeps the tables of declared flavors, warning about the rest.
func selectTables(in *info.Info, tables map[pdf.Flavor][]float64) map[pdf.Flavor][]float64 {
	declared := make(map[pdf.Flavor]bool)
	for _, f := range in.FlavorList() {
		declared[f] = true
	}
	out := make(map[pdf.Flavor][]float64, len(declared))
	var extra []string
	for f, t := range tables {
		if declared[f.Canonical()] {
			out[f.Canonical()] = t
		} else {
			extra = append(extra, f.String())
		}
	}
	if len(extra) > 0 {
		logrus.Debugf("%s: ignoring columns for undeclared flavors %v", in.Name, extra)
	}
	return out
}
