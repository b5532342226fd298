package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scientificLibs/PDFxTMD/pdf"
	"github.com/scientificLibs/PDFxTMD/pdf/factory"
	"github.com/scientificLibs/PDFxTMD/pdf/uncertainty"
)

var (
	confLevel  float64 // Requested confidence level in percent, negative keeps the set's
	percentile bool    // Median and quantiles for replica sets
)

// uncertaintyCmd combines every member of a set at one point
var uncertaintyCmd = &cobra.Command{
	Use:   "uncertainty",
	Short: "Compute the central value and uncertainty of a set at a point",
	Run: func(cmd *cobra.Command, args []string) {
		if setName == "" {
			logrus.Fatalf("Set name not provided.")
		}
		if err := runUncertainty(cmd.Context(), cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("uncertainty %s: %v", setName, err)
		}
	},
}

func runUncertainty(ctx context.Context, w io.Writer) error {
	opts, err := factoryOptions()
	if err != nil {
		return err
	}
	if tmd {
		return setUncertainty(ctx, w, factory.NewTMD(opts...))
	}
	return setUncertainty(ctx, w, factory.NewCollinear(opts...))
}

func setUncertainty[K pdf.Kind](ctx context.Context, w io.Writer, f *factory.Factory[K]) error {
	var opts []uncertainty.SetOption
	if percentile {
		opts = append(opts, uncertainty.WithPercentile())
	}
	s, err := uncertainty.NewSet(f, setName, opts...)
	if err != nil {
		return err
	}
	fl, err := pdf.ParseFlavor(flavorName)
	if err != nil {
		return err
	}
	r, err := s.Uncertainty(ctx, fl, confLevel, point()...)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "strategy  %s\n", s.Strategy().Name())
	fmt.Fprintf(w, "central   %.10e\n", r.Central)
	fmt.Fprintf(w, "err+      %.10e\n", r.ErrPlus)
	fmt.Fprintf(w, "err-      %.10e\n", r.ErrMinus)
	fmt.Fprintf(w, "errsymm   %.10e\n", r.ErrSymm)
	if r.Scale != 1 {
		fmt.Fprintf(w, "scale     %.6f\n", r.Scale)
	}
	if len(r.Parts) > 1 {
		fmt.Fprintf(w, "pdf       +%.4e -%.4e\n", r.ErrPlusPDF, r.ErrMinusPDF)
		fmt.Fprintf(w, "param     +%.4e -%.4e\n", r.ErrPlusPar, r.ErrMinusPar)
	}
	return nil
}

func init() {
	addQueryFlags(uncertaintyCmd)
	uncertaintyCmd.Flags().Float64Var(&confLevel, "cl", -1, "Confidence level in percent (default: the set's own)")
	uncertaintyCmd.Flags().BoolVar(&percentile, "percentile", false, "Use median and quantiles for replica sets")
}
