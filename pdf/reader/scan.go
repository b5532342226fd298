package reader

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/batchatco/go-thrower"

	"github.com/scientificLibs/PDFxTMD/pdf"
)

const maxLine = 1 << 22

// lineScanner yields trimmed lines and throws on I/O and parse failures. Every
// exported Read recovers the thrown error with thrower.RecoverError.
type lineScanner struct {
	sc   *bufio.Scanner
	line int
	text string
}

func newLineScanner(r io.Reader) *lineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &lineScanner{sc: sc}
}

func (s *lineScanner) next() bool {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			thrower.Throw(pdf.Errorf(pdf.KindFileLoad, "line %d: %w", s.line+1, err))
		}
		return false
	}
	s.line++
	s.text = strings.TrimSpace(s.sc.Text())
	return true
}

func (s *lineScanner) fail(format string, args ...any) {
	thrower.Throw(pdf.Errorf(pdf.KindInvalidFormat, "line %d: "+format, append([]any{s.line}, args...)...))
}

// floats parses every field of the current line.
func (s *lineScanner) floats() []float64 {
	fields := strings.Fields(s.text)
	out := make([]float64, len(fields))
	for i, f := range fields {
		out[i] = s.parseFloat(f)
	}
	return out
}

// floatsInto parses the current line into dst, which must match its field count.
func (s *lineScanner) floatsInto(dst []float64) {
	fields := strings.Fields(s.text)
	if len(fields) != len(dst) {
		s.fail("expected %d values, got %d", len(dst), len(fields))
	}
	for i, f := range fields {
		dst[i] = s.parseFloat(f)
	}
}

func (s *lineScanner) ints() []int {
	fields := strings.Fields(s.text)
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			s.fail("bad integer %q", f)
		}
		out[i] = n
	}
	return out
}

func (s *lineScanner) parseFloat(f string) float64 {
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		// Fortran-style exponents appear in older grids.
		v, err = strconv.ParseFloat(strings.NewReplacer("D", "E", "d", "e").Replace(f), 64)
		if err != nil {
			s.fail("bad number %q", f)
		}
	}
	return v
}

// wordScanner yields whitespace-separated numbers regardless of line breaks.
type wordScanner struct {
	sc    *bufio.Scanner
	count int
}

func newWordScanner(r io.Reader) *wordScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	sc.Split(bufio.ScanWords)
	return &wordScanner{sc: sc}
}

// next parses the next number; ok is false at end of input.
func (w *wordScanner) next() (v float64, ok bool) {
	if !w.sc.Scan() {
		if err := w.sc.Err(); err != nil {
			thrower.Throw(pdf.Errorf(pdf.KindFileLoad, "token %d: %w", w.count+1, err))
		}
		return 0, false
	}
	w.count++
	v, err := strconv.ParseFloat(w.sc.Text(), 64)
	if err != nil {
		thrower.Throw(pdf.Errorf(pdf.KindInvalidFormat, "token %d: bad number %q", w.count, w.sc.Text()))
	}
	return v, true
}

// skipLines consumes n raw lines from r before word scanning starts.
func skipLines(br *bufio.Reader, n int) {
	for i := 0; i < n; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				thrower.Throw(pdf.Errorf(pdf.KindInvalidFormat, "file ends inside the %d-line header", n))
			}
			thrower.Throw(pdf.Errorf(pdf.KindFileLoad, "reading header: %w", err))
		}
	}
}
