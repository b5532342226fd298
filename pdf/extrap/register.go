// register.go wires the pdf/extrap constructor into the pdf package's
// registration variable (NewExtrapolatorFunc). Importing pdf/extrap anywhere
// is enough for pdf.NewEvaluator to build extrapolators.
package extrap

import "github.com/scientificLibs/PDFxTMD/pdf"

func init() {
	pdf.NewExtrapolatorFunc = func(arity int, p pdf.BoundaryPolicy) (pdf.Extrapolator, error) {
		ex, err := New(arity, p)
		if err != nil {
			return nil, err
		}
		return ex, nil
	}
}
