package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bundle is evaluator configuration loadable from YAML. Empty strings and
// nil edges mean "not set" and leave the kind defaults in place.
type Bundle struct {
	Method        string              `yaml:"method"`
	Extrapolation ExtrapolationConfig `yaml:"extrapolation"`
}

// ExtrapolationConfig holds the default policy and per-axis overrides.
type ExtrapolationConfig struct {
	Default string      `yaml:"default"`
	X       *EdgeConfig `yaml:"x"`
	Kt2     *EdgeConfig `yaml:"kt2"`
	Mu2     *EdgeConfig `yaml:"mu2"`
}

// EdgeConfig holds the policies for both ends of one axis.
type EdgeConfig struct {
	Low  string `yaml:"low"`
	High string `yaml:"high"`
}

// LoadBundle reads and strictly parses a YAML evaluator configuration file.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Errorf(KindFileLoad, "reading evaluator config: %w", err)
	}
	return ParseBundle(data)
}

// ParseBundle decodes YAML bytes, rejecting unknown fields.
func ParseBundle(data []byte) (*Bundle, error) {
	var b Bundle
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return nil, Errorf(KindInitialization, "parsing evaluator config: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks every name in the bundle against the same parsers Options
// uses, so aliases and case variants are accepted.
func (b *Bundle) Validate() error {
	if _, err := ParseMethod(b.Method); err != nil {
		return err
	}
	var problems []string
	check := func(where, name string) {
		if name == "" {
			return
		}
		if _, err := ParsePolicy(name); err != nil {
			problems = append(problems, fmt.Sprintf("%s: unknown policy %q", where, name))
		}
	}
	check("extrapolation.default", b.Extrapolation.Default)
	for name, e := range b.edges() {
		if e != nil {
			check("extrapolation."+name+".low", e.Low)
			check("extrapolation."+name+".high", e.High)
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return Errorf(KindPolicy, "%s", strings.Join(problems, "; "))
	}
	return nil
}

func (b *Bundle) edges() map[string]*EdgeConfig {
	return map[string]*EdgeConfig{"x": b.Extrapolation.X, "kt2": b.Extrapolation.Kt2, "mu2": b.Extrapolation.Mu2}
}

// Options converts the bundle into evaluator options for a grid arity.
// A kt2 override on a collinear grid is rejected.
func (b *Bundle) Options(arity int) (Options, error) {
	if err := b.Validate(); err != nil {
		return Options{}, err
	}
	m, err := ParseMethod(b.Method)
	if err != nil {
		return Options{}, err
	}
	opts := DefaultOptions(arity)
	if m != MethodDefault {
		opts.Method = m
	}
	if b.Extrapolation.Default != "" {
		p, _ := ParsePolicy(b.Extrapolation.Default)
		opts.Policy = NewBoundaryPolicy(arity, p)
	}
	axes := map[string]int{"x": AxisX, "mu2": AxisMu2(arity)}
	if arity == 3 {
		axes["kt2"] = AxisKt2
	} else if b.Extrapolation.Kt2 != nil {
		return Options{}, Errorf(KindPolicy, "kt2 extrapolation set for a %d-axis grid", arity)
	}
	for name, e := range b.edges() {
		if e == nil {
			continue
		}
		i := axes[name]
		if e.Low != "" {
			p, _ := ParsePolicy(e.Low)
			opts.Policy = opts.Policy.With(i, Low, p)
		}
		if e.High != "" {
			p, _ := ParsePolicy(e.High)
			opts.Policy = opts.Policy.With(i, High, p)
		}
	}
	return opts, nil
}
