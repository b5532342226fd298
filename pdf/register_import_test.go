package pdf_test

// Blank imports trigger the init() functions of pdf/interp and pdf/extrap,
// which register NewInterpolatorFunc and NewExtrapolatorFunc. Test files in
// package pdf can then build evaluators without importing them directly
// (which would create an import cycle).
import (
	_ "github.com/scientificLibs/PDFxTMD/pdf/extrap"
	_ "github.com/scientificLibs/PDFxTMD/pdf/interp"
)
