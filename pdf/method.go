package pdf

import "strings"

// Method selects the in-range interpolation scheme.
type Method int

const (
	// MethodDefault picks Bilinear for two axes and Trilinear for three.
	MethodDefault Method = iota
	Bilinear
	Bicubic
	Trilinear
)

func (m Method) String() string {
	switch m {
	case Bilinear:
		return "bilinear"
	case Bicubic:
		return "bicubic"
	case Trilinear:
		return "trilinear"
	}
	return "default"
}

// Arity returns the number of axes the method works on, or 0 for MethodDefault.
func (m Method) Arity() int {
	switch m {
	case Bilinear, Bicubic:
		return 2
	case Trilinear:
		return 3
	}
	return 0
}

// Resolve replaces MethodDefault with the default for arity.
func (m Method) Resolve(arity int) Method {
	if m != MethodDefault {
		return m
	}
	if arity == 3 {
		return Trilinear
	}
	return Bilinear
}

// ParseMethod accepts method names case-insensitively, including the
// info-file spellings "Bilinear", "Bicubic", "Trilinear" and "" for default.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return MethodDefault, nil
	case "bilinear", "linear":
		return Bilinear, nil
	case "bicubic", "cubic", "logbicubic":
		return Bicubic, nil
	case "trilinear":
		return Trilinear, nil
	}
	return 0, Errorf(KindNotSupport, "unknown interpolation method %q", s)
}
