package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scientificLibs/PDFxTMD/pdf"
	"github.com/scientificLibs/PDFxTMD/pdf/factory"
	"github.com/scientificLibs/PDFxTMD/pdf/info"
)

// gridCmd describes a set and the grid of one member
var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Describe a set and one member's grid",
	Run: func(cmd *cobra.Command, args []string) {
		if setName == "" {
			logrus.Fatalf("Set name not provided.")
		}
		if err := runGrid(cmd.Context(), cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("grid %s/%d: %v", setName, member, err)
		}
	},
}

func runGrid(ctx context.Context, w io.Writer) error {
	opts, err := factoryOptions()
	if err != nil {
		return err
	}
	// the info file decides the kind, not --tmd
	if in, err := factory.NewLocator(searchPaths...).Info(setName); err == nil && in.IsTMD() {
		return describe(ctx, w, factory.NewTMD(opts...))
	}
	return describe(ctx, w, factory.NewCollinear(opts...))
}

func describe[K pdf.Kind](ctx context.Context, w io.Writer, f *factory.Factory[K]) error {
	in, err := f.Info(setName)
	if err != nil {
		return err
	}
	ev, err := f.Get(ctx, setName, member)
	if err != nil {
		return err
	}
	writeInfo(w, in)

	g := ev.Grid()
	fmt.Fprintf(w, "member      %d\n", member)
	fmt.Fprintf(w, "method      %v\n", ev.Method())
	fmt.Fprintf(w, "policy      %v\n", ev.Policy())
	for i := 0; i < g.Arity(); i++ {
		a := g.Axis(i)
		lo, hi := a.Knots[0], a.Knots[len(a.Knots)-1]
		fmt.Fprintf(w, "axis %-6s %4d knots [%g, %g]\n", a.Name, len(a.Knots), lo, hi)
	}
	return nil
}

func writeInfo(w io.Writer, in *info.Info) {
	names := make([]string, 0, len(in.Flavors))
	for _, f := range in.FlavorList() {
		names = append(names, f.String())
	}
	fmt.Fprintf(w, "set         %s\n", in.Name)
	if in.SetDesc != "" {
		fmt.Fprintf(w, "description %s\n", in.SetDesc)
	}
	fmt.Fprintf(w, "format      %s\n", in.Format)
	fmt.Fprintf(w, "members     %d\n", in.NumMembers)
	if in.ErrorType != "" {
		fmt.Fprintf(w, "errors      %s (CL %g%%)\n", in.ErrorType, in.ConfLevel())
	}
	fmt.Fprintf(w, "flavors     %s\n", strings.Join(names, " "))
}

func init() {
	gridCmd.Flags().StringVar(&setName, "set", "", "Set name")
	gridCmd.Flags().IntVar(&member, "member", 0, "Member index")
	gridCmd.Flags().StringVar(&configPath, "config", "", "YAML evaluator config overriding the set's interpolator and extrapolator")
}
