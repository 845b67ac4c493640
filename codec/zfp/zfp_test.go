package zfp

import (
	"testing"

	"github.com/hupe1980/cmem/codec"
	"github.com/hupe1980/cmem/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, c *Codec, src []float64) ([]float64, int) {
	t.Helper()

	dst := make([]byte, c.MaxSize(len(src)))
	n, err := c.Compress(dst, src)
	require.NoError(t, err)
	require.LessOrEqual(t, n, len(dst))

	out := make([]float64, len(src))
	require.NoError(t, c.Decompress(out, dst[:n]))
	return out, n
}

func TestZFP_Reversible(t *testing.T) {
	c, err := New(Config{Mode: ModeReversible})
	require.NoError(t, err)

	rng := testutil.NewRNG(1)
	cases := map[string][]float64{
		"special":  testutil.SpecialValues(),
		"gaussian": func() []float64 { v := make([]float64, 1000); rng.FillGaussian(v); return v }(),
		"smooth":   rng.Smooth(1024),
		"zeros":    make([]float64, 64),
		"partial":  {1.5, -2.25, 3.125},
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			out, _ := roundTrip(t, c, src)
			assert.True(t, testutil.BitsEqual(src, out))
		})
	}
}

func TestZFP_Rate(t *testing.T) {
	c, err := New(Config{Mode: ModeRate, Rate: 32})
	require.NoError(t, err)

	src := make([]float64, 1024)
	testutil.NewRNG(2).FillUniformRange(src, -1, 1)

	out, n := roundTrip(t, c, src)
	assert.Equal(t, 1024*32/8, n, "fixed-rate blocks occupy exactly rate bits per value")
	assert.Equal(t, c.MaxSize(len(src)), n)
	assert.Less(t, testutil.MaxAbsError(src, out), 1e-5)
}

func TestZFP_RateZeroBlockIsPadded(t *testing.T) {
	c, err := New(Config{Mode: ModeRate, Rate: 8})
	require.NoError(t, err)

	src := make([]float64, 16)
	out, n := roundTrip(t, c, src)
	assert.Equal(t, 16, n)
	assert.Equal(t, src, out)
}

func TestZFP_Accuracy(t *testing.T) {
	for _, tol := range []float64{1e-3, 1e-6, 1e-9} {
		c, err := New(Config{Mode: ModeAccuracy, Tolerance: tol})
		require.NoError(t, err)

		src := make([]float64, 1024)
		testutil.NewRNG(3).FillUniformRange(src, -1, 1)

		out, _ := roundTrip(t, c, src)
		assert.LessOrEqual(t, testutil.MaxAbsError(src, out), tol)
	}
}

func TestZFP_AccuracyDropsValuesBelowTolerance(t *testing.T) {
	c, err := New(Config{Mode: ModeAccuracy, Tolerance: 1})
	require.NoError(t, err)

	src := []float64{1e-9, -1e-9, 2e-9, 0}
	out, n := roundTrip(t, c, src)
	assert.Equal(t, 1, n)
	assert.Equal(t, []float64{0, 0, 0, 0}, out)
}

func TestZFP_Precision(t *testing.T) {
	c, err := New(Config{Mode: ModePrecision, Precision: 64})
	require.NoError(t, err)

	src := testutil.NewRNG(4).Smooth(512)
	out, _ := roundTrip(t, c, src)
	assert.Less(t, testutil.MaxAbsError(src, out), 1e-12)

	coarse, err := New(Config{Mode: ModePrecision, Precision: 16})
	require.NoError(t, err)
	_, nCoarse := roundTrip(t, coarse, src)
	_, nFine := roundTrip(t, c, src)
	assert.Less(t, nCoarse, nFine)
}

func TestZFP_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"rate too low", Config{Mode: ModeRate, Rate: 1}},
		{"rate too high", Config{Mode: ModeRate, Rate: 65}},
		{"precision zero", Config{Mode: ModePrecision, Precision: 0}},
		{"precision too high", Config{Mode: ModePrecision, Precision: 65}},
		{"tolerance zero", Config{Mode: ModeAccuracy, Tolerance: 0}},
		{"unknown mode", Config{Mode: Mode(42)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, codec.ErrInvalidConfig)

			var ce *codec.ConfigError
			assert.ErrorAs(t, err, &ce)
			assert.Equal(t, Name, ce.Codec)
		})
	}
}

func TestZFP_Errors(t *testing.T) {
	c, err := New(Config{Mode: ModeRate, Rate: 16})
	require.NoError(t, err)

	_, err = c.Compress(nil, []float64{1})
	assert.ErrorIs(t, err, codec.ErrNilBuffer)

	_, err = c.Compress(make([]byte, 1), make([]float64, 8))
	assert.ErrorIs(t, err, codec.ErrShortBuffer)

	src := make([]float64, 64)
	testutil.NewRNG(5).FillUniform(src)
	dst := make([]byte, c.MaxSize(len(src)))
	n, err := c.Compress(dst, src)
	require.NoError(t, err)

	err = c.Decompress(make([]float64, 64), dst[:n/2])
	assert.ErrorIs(t, err, codec.ErrCorrupt)

	err = c.Decompress(make([]float64, 4), nil)
	assert.ErrorIs(t, err, codec.ErrNilBuffer)
}

func TestMode_UnmarshalText(t *testing.T) {
	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("accuracy")))
	assert.Equal(t, ModeAccuracy, m)
	require.NoError(t, m.UnmarshalText([]byte("Reversible")))
	assert.Equal(t, ModeReversible, m)
	require.NoError(t, m.UnmarshalText([]byte("LOSSLESS")))
	assert.Equal(t, ModeReversible, m)
	require.NoError(t, m.UnmarshalText([]byte("Rate")))
	assert.Equal(t, ModeRate, m)

	for _, in := range []string{"bogus", "r", "R", "p", "a", ""} {
		assert.Error(t, m.UnmarshalText([]byte(in)), "mode %q", in)
		assert.Equal(t, ModeRate, m, "rejected input %q leaves the mode alone", in)
	}
	assert.Equal(t, "precision", ModePrecision.String())
}

func TestTransform_Reversible(t *testing.T) {
	p := [blockSize]int64{-7, 1 << 62, -1 << 63, 12345}
	orig := p
	revFwdLift(&p)
	revInvLift(&p)
	assert.Equal(t, orig, p)

	for _, v := range []int64{0, 1, -1, 1 << 40, -(1 << 61)} {
		assert.Equal(t, v, uint2int(int2uint(v)))
		assert.Equal(t, v, reinterpret(reinterpret(v)))
	}
}
