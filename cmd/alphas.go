package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scientificLibs/PDFxTMD/pdf/coupling"
	"github.com/scientificLibs/PDFxTMD/pdf/factory"
)

var q2Vals []float64 // Squared scales to evaluate αs at

// alphasCmd prints the interpolated strong coupling of a set
var alphasCmd = &cobra.Command{
	Use:   "alphas",
	Short: "Print αs(Q2) interpolated from a set's info file",
	Run: func(cmd *cobra.Command, args []string) {
		if setName == "" {
			logrus.Fatalf("Set name not provided.")
		}
		if err := runAlphaS(cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("alphas %s: %v", setName, err)
		}
	},
}

func runAlphaS(w io.Writer) error {
	in, err := factory.NewLocator(searchPaths...).Info(setName)
	if err != nil {
		return err
	}
	as, err := coupling.NewInterpolated(in)
	if err != nil {
		return err
	}
	for _, q2 := range q2Vals {
		v, err := as.AlphaSQ2(q2)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-12g %.8f\n", q2, v)
	}
	return nil
}

func init() {
	alphasCmd.Flags().StringVar(&setName, "set", "", "Set name")
	alphasCmd.Flags().Float64SliceVar(&q2Vals, "q2", []float64{8317.44}, "Comma-separated squared scales")
}
