package coupling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scientificLibs/PDFxTMD/pdf"
	"github.com/scientificLibs/PDFxTMD/pdf/info"
)

// logLinear is exactly representable by the cubic Hermite fit in log q2.
func logLinear(c0, c1 float64) func(q float64) float64 {
	return func(q float64) float64 { return c0 + c1*math.Log(q*q) }
}

func tabulate(fn func(float64) float64, qs ...float64) []float64 {
	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = fn(q)
	}
	return out
}

func TestAlphaS_Knots(t *testing.T) {
	qs := []float64{1, 2, 4, 8}
	vals := []float64{0.4, 0.3, 0.25, 0.2}
	a, err := New(qs, vals)
	require.NoError(t, err)

	for i, q := range qs {
		got, err := a.AlphaSQ(q)
		require.NoError(t, err)
		assert.InDelta(t, vals[i], got, 1e-12, "q=%v", q)
	}
	lo, hi := a.Q2Range()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 64.0, hi)
}

func TestAlphaS_LogLinearIsExact(t *testing.T) {
	fn := logLinear(0.35, -0.02)
	qs := []float64{1, 1.5, 3, 5, 10}
	a, err := New(qs, tabulate(fn, qs...))
	require.NoError(t, err)

	for _, q := range []float64{1.2, 2, 4.4, 7.5, 9.99} {
		got, err := a.AlphaSQ(q)
		require.NoError(t, err)
		assert.InDelta(t, fn(q), got, 1e-12, "q=%v", q)
	}
}

func TestAlphaS_Thresholds(t *testing.T) {
	below, above := logLinear(0.4, -0.03), logLinear(0.38, -0.025)
	qs := []float64{1, 2, 4, 4, 8, 16}
	vals := append(tabulate(below, 1, 2, 4), tabulate(above, 4, 8, 16)...)
	a, err := New(qs, vals)
	require.NoError(t, err)
	require.Len(t, a.grids, 2)

	got, err := a.AlphaSQ(3)
	require.NoError(t, err)
	assert.InDelta(t, below(3), got, 1e-12)

	got, err = a.AlphaSQ(4)
	require.NoError(t, err)
	assert.InDelta(t, above(4), got, 1e-12, "the upper subgrid owns the threshold")

	got, err = a.AlphaSQ(6)
	require.NoError(t, err)
	assert.InDelta(t, above(6), got, 1e-12)
}

func TestAlphaS_BelowRangePowerLaw(t *testing.T) {
	a, err := New([]float64{1, 2, 4}, []float64{0.4, 0.3, 0.25})
	require.NoError(t, err)

	grad := math.Log10(0.3/0.4) / math.Log10(4)
	got, err := a.AlphaSQ2(0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.4*math.Pow(0.25, grad), got, 1e-12)
	assert.Greater(t, got, 0.4, "αs grows towards low scales")

	// continuous at the first knot
	got, err = a.AlphaSQ2(1 - 1e-12)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, got, 1e-9)
}

func TestAlphaS_AboveRangeFrozen(t *testing.T) {
	a, err := New([]float64{1, 2, 4}, []float64{0.4, 0.3, 0.25})
	require.NoError(t, err)
	for _, q := range []float64{4, 100, 1e6} {
		got, err := a.AlphaSQ(q)
		require.NoError(t, err)
		assert.Equal(t, 0.25, got)
	}
}

func TestAlphaS_InvalidQuery(t *testing.T) {
	a, err := New([]float64{1, 2}, []float64{0.4, 0.3})
	require.NoError(t, err)
	for _, q2 := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := a.AlphaSQ2(q2)
		assert.ErrorIs(t, err, pdf.ErrInvalidInput, "q2=%v", q2)
	}
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name string
		qs   []float64
		vals []float64
	}{
		{"empty", nil, nil},
		{"length mismatch", []float64{1, 2}, []float64{0.3}},
		{"single knot", []float64{1}, []float64{0.3}},
		{"non-positive", []float64{0, 2}, []float64{0.4, 0.3}},
		{"infinite", []float64{1, math.Inf(1)}, []float64{0.4, 0.3}},
		{"decreasing", []float64{2, 1}, []float64{0.3, 0.4}},
		{"lonely threshold knot", []float64{1, 2, 2}, []float64{0.4, 0.3, 0.31}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.qs, tt.vals)
			assert.ErrorIs(t, err, pdf.ErrInvalidInfoFile)
		})
	}
}

func TestNewInterpolated(t *testing.T) {
	in := &info.Info{AlphaSQs: []float64{1.3, 2, 10}, AlphaSVals: []float64{0.38, 0.30, 0.18}}
	a, err := NewInterpolated(in)
	require.NoError(t, err)
	got, err := a.AlphaSQ(2)
	require.NoError(t, err)
	assert.InDelta(t, 0.30, got, 1e-12)

	_, err = NewInterpolated(&info.Info{})
	assert.ErrorIs(t, err, pdf.ErrInvalidInfoFile)
}
