// Package info decodes the per-set metadata document (<set>.info). The
// document is YAML with many optional keys; unknown keys are ignored.
package info

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scientificLibs/PDFxTMD/pdf"
)

// Known values of the Format key.
const (
	FormatLHAGrid     = "lhagrid1"
	FormatAllFlavor   = "allflavorUpdf"
	FormatTMDLHAGrid  = "tmdlib1"
	DefaultConfLevel  = 68.268949
	DefaultNumMembers = 1
)

// Info is the decoded metadata of one PDF or TMD set.
type Info struct {
	Name string `yaml:"-"`

	SetDesc     string `yaml:"SetDesc"`
	SetIndex    int    `yaml:"SetIndex"`
	Authors     string `yaml:"Authors"`
	Format      string `yaml:"Format"`
	DataVersion int    `yaml:"DataVersion"`
	NumMembers  int    `yaml:"NumMembers"`
	Flavors     []int  `yaml:"Flavors"`
	OrderQCD    *int   `yaml:"OrderQCD"`

	XMin  *float64 `yaml:"XMin"`
	XMax  *float64 `yaml:"XMax"`
	QMin  *float64 `yaml:"QMin"`
	QMax  *float64 `yaml:"QMax"`
	KtMin *float64 `yaml:"KtMin"`
	KtMax *float64 `yaml:"KtMax"`

	TMDScheme      string   `yaml:"TMDScheme"`
	ErrorType      string   `yaml:"ErrorType"`
	ErrorConfLevel *float64 `yaml:"ErrorConfLevel"`

	AlphaSQs    []float64 `yaml:"AlphaS_Qs"`
	AlphaSVals  []float64 `yaml:"AlphaS_Vals"`
	AlphaSMZ    *float64  `yaml:"AlphaS_MZ"`
	AlphaSType  string    `yaml:"AlphaS_Type"`
	AlphaSOrder *int      `yaml:"AlphaS_OrderQCD"`
	MZ          *float64  `yaml:"MZ"`

	// Implementation overrides. Empty means the kind default.
	Reader       string `yaml:"Reader"`
	Interpolator string `yaml:"Interpolator"`
	Extrapolator string `yaml:"Extrapolator"`
}

// Load reads and validates the info document at path. The set name is taken
// from the file name.
func Load(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pdf.Errorf(pdf.KindFileLoad, "reading info file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(data, name)
}

// Parse decodes and validates an info document.
func Parse(data []byte, name string) (*Info, error) {
	var in Info
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, pdf.Errorf(pdf.KindInvalidInfoFile, "parsing info for %q: %w", name, err)
	}
	in.Name = name
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

// Validate checks the required keys and their consistency.
func (in *Info) Validate() error {
	var problems []string
	if in.OrderQCD == nil {
		problems = append(problems, "OrderQCD is missing")
	}
	if in.NumMembers < 1 {
		problems = append(problems, fmt.Sprintf("NumMembers must be >= 1, got %d", in.NumMembers))
	}
	if len(in.Flavors) == 0 {
		problems = append(problems, "Flavors is missing")
	} else if _, err := pdf.ParseFlavors(in.Flavors); err != nil {
		problems = append(problems, err.Error())
	}
	problems = checkRange(problems, "X", in.XMin, in.XMax, true)
	problems = checkRange(problems, "Q", in.QMin, in.QMax, true)
	problems = checkRange(problems, "Kt", in.KtMin, in.KtMax, false)
	if in.XMax != nil && *in.XMax > 1 {
		problems = append(problems, fmt.Sprintf("XMax %g exceeds 1", *in.XMax))
	}
	if len(in.AlphaSQs) != len(in.AlphaSVals) {
		problems = append(problems, fmt.Sprintf("AlphaS_Qs has %d entries, AlphaS_Vals %d", len(in.AlphaSQs), len(in.AlphaSVals)))
	}
	if len(problems) > 0 {
		return pdf.Errorf(pdf.KindInvalidInfoFile, "%s: %s", in.Name, strings.Join(problems, "; "))
	}
	return nil
}

func checkRange(problems []string, name string, lo, hi *float64, required bool) []string {
	if lo == nil || hi == nil {
		if required || (lo == nil) != (hi == nil) {
			problems = append(problems, fmt.Sprintf("%sMin/%sMax missing", name, name))
		}
		return problems
	}
	if *lo <= 0 || *hi <= *lo {
		problems = append(problems, fmt.Sprintf("%sMin %g / %sMax %g must satisfy 0 < min < max", name, *lo, name, *hi))
	}
	return problems
}

// FlavorList returns the declared flavors.
func (in *Info) FlavorList() []pdf.Flavor {
	fs, _ := pdf.ParseFlavors(in.Flavors)
	return fs
}

// IsTMD reports whether the set describes a three-axis TMD grid.
func (in *Info) IsTMD() bool {
	return in.Format == FormatAllFlavor || in.Format == FormatTMDLHAGrid || in.TMDScheme != "" || in.KtMin != nil
}

// Arity is 3 for TMD sets and 2 otherwise.
func (in *Info) Arity() int {
	if in.IsTMD() {
		return 3
	}
	return 2
}

// ConfLevel returns the declared confidence level in percent. Replica sets
// without one report -1; other sets default to one sigma.
func (in *Info) ConfLevel() float64 {
	if in.ErrorConfLevel != nil {
		return *in.ErrorConfLevel
	}
	if strings.HasPrefix(strings.ToLower(in.ErrorType), "replicas") {
		return -1
	}
	return DefaultConfLevel
}

// Options turns the Interpolator/Extrapolator keys into evaluator options.
// Unset keys keep the kind defaults.
func (in *Info) Options() (pdf.Options, error) {
	arity := in.Arity()
	opts := pdf.DefaultOptions(arity)
	if name := implName(in.Interpolator); name != "" {
		m, err := pdf.ParseMethod(name)
		if err != nil {
			return pdf.Options{}, err
		}
		opts.Method = m.Resolve(arity)
	}
	if name := implName(in.Extrapolator); name != "" {
		p, err := pdf.ParsePolicy(name)
		if err != nil {
			return pdf.Options{}, err
		}
		opts.Policy = pdf.NewBoundaryPolicy(arity, p)
		if p == pdf.PolicyContinuation {
			// continuation has no law above x = 1
			opts.Policy = opts.Policy.With(pdf.AxisX, pdf.High, pdf.PolicyError)
		}
	}
	return opts, nil
}

// implName strips the kind prefix and suffix used by class-style names, so
// "CLHAPDFBicubicInterpolator" and "TZeroExtrapolator" become "bicubic" and "zero".
func implName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	low := strings.ToLower(s)
	for _, suf := range []string{"interpolator", "extrapolator"} {
		low = strings.TrimSuffix(low, suf)
	}
	for _, pre := range []string{"clhapdf", "cgsl", "c", "t"} {
		if rest := strings.TrimPrefix(low, pre); rest != low && isKnownImpl(rest) {
			return rest
		}
	}
	return low
}

func isKnownImpl(s string) bool {
	switch s {
	case "bilinear", "bicubic", "trilinear", "zero", "err", "error", "nearestpoint", "nearest", "continuation":
		return true
	}
	return false
}
