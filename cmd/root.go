package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scientificLibs/PDFxTMD/pdf"
	"github.com/scientificLibs/PDFxTMD/pdf/factory"
)

var (
	// Global flags
	logLevel    string   // Log verbosity level
	searchPaths []string // Data directories searched before $PDFxTMD_PATH

	// Query flags shared by the subcommands
	setName    string  // Set name, the directory under a search path
	member     int     // Member index, 0 is the central member
	flavorName string  // Flavor name or PDG id
	xVal       float64 // Momentum fraction
	kt2Val     float64 // Transverse momentum squared (TMD only)
	mu2Val     float64 // Factorization scale squared
	tmd        bool    // Evaluate a three-axis TMD set
	configPath string  // Evaluator config bundle overriding the info file
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "pdfxtmd",
	Short: "Evaluate collinear PDF and TMD grids",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// point orders the query coordinates for the selected kind.
func point() []float64 {
	if tmd {
		return []float64{xVal, kt2Val, mu2Val}
	}
	return []float64{xVal, mu2Val}
}

// factoryOptions builds the factory options shared by every subcommand.
func factoryOptions() ([]factory.Option, error) {
	opts := []factory.Option{factory.WithPaths(searchPaths...)}
	if configPath != "" {
		b, err := pdf.LoadBundle(configPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, factory.WithBundle(b))
	}
	return opts, nil
}

// addQueryFlags registers the point and set selection flags on c.
func addQueryFlags(c *cobra.Command) {
	c.Flags().StringVar(&setName, "set", "", "Set name")
	c.Flags().StringVar(&flavorName, "flavor", "g", "Flavor name (g, u, ubar, ...) or PDG id")
	c.Flags().Float64Var(&xVal, "x", 0.1, "Momentum fraction x")
	c.Flags().Float64Var(&kt2Val, "kt2", 1, "Transverse momentum squared, TMD sets only")
	c.Flags().Float64Var(&mu2Val, "mu2", 100, "Factorization scale squared")
	c.Flags().BoolVar(&tmd, "tmd", false, "Treat the set as a TMD (x, kt2, mu2) set")
	c.Flags().StringVar(&configPath, "config", "", "YAML evaluator config overriding the set's interpolator and extrapolator")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringSliceVar(&searchPaths, "path", nil, "Comma-separated data directories searched before $"+factory.PathEnv)

	rootCmd.AddCommand(evalCmd, uncertaintyCmd, alphasCmd, gridCmd)
}
