package cmem

import (
	"testing"

	"github.com/hupe1980/cmem/codec"
	"github.com/hupe1980/cmem/codec/zfp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfig_Env(t *testing.T) {
	t.Setenv("CMEM_CODEC", "zfp")
	t.Setenv("CMEM_VALUES_PER_BLOCK", "256")
	t.Setenv("CMEM_DOUBLE_BUFFERED", "false")
	t.Setenv("CMEM_DYNAMIC_SIZING", "false")
	t.Setenv("CMEM_MEMORY_LIMIT", "1048576")
	t.Setenv("CMEM_ZFP_MODE", "accuracy")
	t.Setenv("CMEM_ZFP_TOLERANCE", "1e-6")
	t.Setenv("CMEM_FPC_LEVEL", "8")

	cfg, err := ParseConfig()
	require.NoError(t, err)

	assert.Equal(t, CodecZFP, cfg.Codec)
	assert.Equal(t, 256, cfg.ValuesPerBlock)
	assert.False(t, cfg.DoubleBuffered)
	assert.False(t, cfg.DynamicSizing)
	assert.Equal(t, int64(1<<20), cfg.MemoryLimit)
	assert.Equal(t, zfp.ModeAccuracy, cfg.ZFP.Mode)
	assert.Equal(t, 1e-6, cfg.ZFP.Tolerance)
	assert.Equal(t, 8, cfg.FPC.Level)

	m, err := cfg.NewMemory(4)
	require.NoError(t, err)
	defer m.Close()
	assert.Equal(t, CodecZFP, m.Codec().Name())
	assert.False(t, m.Dynamic())
	assert.Equal(t, 4, m.NumBlocks())
	assert.Equal(t, 256, m.ValuesPerBlock())

	wb, err := cfg.NewWorkBuffer()
	require.NoError(t, err)
	assert.False(t, wb.DoubleBuffered())
	assert.Equal(t, 256, wb.ValuesPerBlock())
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
		codecErr         bool
	}{
		{"unknown codec", "CMEM_CODEC", "brotli", false},
		{"bad number", "CMEM_VALUES_PER_BLOCK", "many", false},
		{"zero block", "CMEM_VALUES_PER_BLOCK", "0", false},
		{"bad zfp mode", "CMEM_ZFP_MODE", "fast", false},
		{"abbreviated zfp mode", "CMEM_ZFP_MODE", "R", false},
		{"zfp rate out of range", "CMEM_ZFP_RATE", "100", true},
		{"negative limit", "CMEM_MEMORY_LIMIT", "-1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := ParseConfig()
			assert.ErrorIs(t, err, ErrInvalidConfig)
			if tt.codecErr {
				assert.ErrorIs(t, err, codec.ErrInvalidConfig)
			}
		})
	}
}

func TestParseConfig_ZFPLossless(t *testing.T) {
	for _, v := range []string{"reversible", "Reversible", "LOSSLESS"} {
		t.Setenv("CMEM_ZFP_MODE", v)
		cfg, err := ParseConfig()
		require.NoError(t, err, v)
		assert.Equal(t, zfp.ModeReversible, cfg.ZFP.Mode, v)
	}
}

func TestConfig_NewCodec(t *testing.T) {
	for _, name := range []string{CodecNone, CodecZFP, CodecFPZIP, CodecFPC, CodecLZ4, CodecZstd, CodecS2} {
		cfg := DefaultConfig()
		cfg.Codec = name

		c, err := cfg.NewCodec()
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
		assert.Positive(t, c.MaxSize(cfg.ValuesPerBlock))
	}
}

func TestConfig_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Disabled = true
	cfg.Codec = "ignored"

	require.NoError(t, cfg.Validate())
	_, err := cfg.NewMemory(1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
