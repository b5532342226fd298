package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scientificLibs/PDFxTMD/pdf"
	"github.com/scientificLibs/PDFxTMD/pdf/factory"
)

var allFlavors bool // Print every flavor of the grid

// evalCmd evaluates one member at one point
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate one member of a set at a point",
	Run: func(cmd *cobra.Command, args []string) {
		if setName == "" {
			logrus.Fatalf("Set name not provided.")
		}
		if err := runEval(cmd.Context(), cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("eval %s/%d: %v", setName, member, err)
		}
	},
}

func runEval(ctx context.Context, w io.Writer) error {
	opts, err := factoryOptions()
	if err != nil {
		return err
	}
	if tmd {
		return evalMember(ctx, w, factory.NewTMD(opts...))
	}
	return evalMember(ctx, w, factory.NewCollinear(opts...))
}

func evalMember[K pdf.Kind](ctx context.Context, w io.Writer, f *factory.Factory[K]) error {
	ev, err := f.Get(ctx, setName, member)
	if err != nil {
		return err
	}
	pt := point()
	if allFlavors {
		vals, err := ev.EvalAll(pt...)
		if err != nil {
			return err
		}
		for i, fl := range ev.Grid().Flavors() {
			fmt.Fprintf(w, "%-7s %.10e\n", fl, vals[i])
		}
		return nil
	}
	fl, err := pdf.ParseFlavor(flavorName)
	if err != nil {
		return err
	}
	v, err := ev.Eval(fl, pt...)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%.10e\n", v)
	return nil
}

func init() {
	addQueryFlags(evalCmd)
	evalCmd.Flags().IntVar(&member, "member", 0, "Member index")
	evalCmd.Flags().BoolVar(&allFlavors, "all", false, "Print every flavor of the set")
}
