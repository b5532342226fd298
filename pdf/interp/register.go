// register.go wires pdf/interp constructors into the pdf package's registration
// variable (NewInterpolatorFunc). This init() runs when any package imports
// pdf/interp, breaking the import cycle between pdf/ (interface owner) and
// pdf/interp/ (implementation). Test code in package pdf uses
// register_import_test.go for the blank import.
package interp

import "github.com/scientificLibs/PDFxTMD/pdf"

func init() {
	pdf.NewInterpolatorFunc = New
}

// New returns the interpolator for method m on a grid with the given arity.
// MethodDefault resolves to Bilinear or Trilinear. Pairing a method with the
// wrong arity fails with KindNotSupport; there is no fallback to another method.
func New(m pdf.Method, arity int) (pdf.Interpolator, error) {
	m = m.Resolve(arity)
	if m.Arity() != arity {
		return nil, pdf.Errorf(pdf.KindNotSupport, "%v interpolation needs %d axes, grid has %d", m, m.Arity(), arity)
	}
	switch m {
	case pdf.Bilinear:
		return Bilinear{}, nil
	case pdf.Bicubic:
		return Bicubic{}, nil
	case pdf.Trilinear:
		return Trilinear{}, nil
	}
	return nil, pdf.Errorf(pdf.KindNotSupport, "interpolation method %v", m)
}
