package cmem

import (
	"fmt"
	"testing"

	"github.com/hupe1980/cmem/codec/fpc"
	"github.com/hupe1980/cmem/codec/raw"
	"github.com/hupe1980/cmem/codec/zfp"
	"github.com/hupe1980/cmem/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Locate(t *testing.T) {
	tests := []struct {
		idx    Index
		v      int
		block  int
		offset int
	}{
		{0, 4, 0, 0},
		{3, 4, 0, 3},
		{4, 4, 1, 0},
		{1023, 1024, 0, 1023},
		{1 << 40, 1024, 1 << 30, 0},
		{1<<40 + 5, 1024, 1 << 30, 5},
	}
	for _, tt := range tests {
		block, offset := tt.idx.Locate(tt.v)
		assert.Equal(t, tt.block, block, "block of %d", tt.idx)
		assert.Equal(t, tt.offset, offset, "offset of %d", tt.idx)
	}
}

func TestAccessor_RoundTripWithoutEviction(t *testing.T) {
	for _, double := range []bool{false, true} {
		m := newMemory(t, raw.New(), 4, 8)
		wb := newWorkBuffer(t, 8, double)

		for i := Index(8); i < 16; i++ {
			require.NoError(t, m.Set(wb, i, float64(i)*0.5))
		}
		for i := Index(8); i < 16; i++ {
			v, err := m.Get(wb, i)
			require.NoError(t, err)
			assert.Equal(t, float64(i)*0.5, v)
		}
		assert.False(t, m.Written(1), "values stay in the working buffer until eviction")
	}
}

func TestAccessor_SingleBufferScenario(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	c, err := fpc.New(fpc.Config{Level: 10})
	require.NoError(t, err)
	m := newMemory(t, c, 2, 4, WithMetricsCollector(metrics))
	wb := newWorkBuffer(t, 4, false)

	for i, v := range []float64{1, 2, 3, 4} {
		require.NoError(t, m.Set(wb, Index(i), v))
	}
	assert.Equal(t, int64(0), metrics.GetStats().SaveCount)

	for i, v := range []float64{5, 6, 7, 8} {
		require.NoError(t, m.Set(wb, Index(4+i), v))
	}
	st := metrics.GetStats()
	assert.Equal(t, int64(1), st.SaveCount, "block 0 is written back before block 1 is loaded")
	assert.Equal(t, int64(2), st.LoadCount)
	assert.True(t, m.Written(0))
	assert.Equal(t, 1, wb.Slot(0).Block())

	v, err := m.Get(wb, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	st = metrics.GetStats()
	assert.Equal(t, int64(3), st.LoadCount, "reading block 0 reloads it")
	assert.Equal(t, int64(2), st.SaveCount)
	assert.Equal(t, int64(2), st.ZeroFillCount)

	for i := Index(0); i < 8; i++ {
		v, err := m.Get(wb, i)
		require.NoError(t, err)
		assert.Equal(t, float64(i+1), v)
	}
}

func TestAccessor_LRU(t *testing.T) {
	const v = 4
	a, b, c := Index(0), Index(v), Index(2*v)

	setup := func(t *testing.T) (*Memory, *WorkBuffer, *BasicMetricsCollector) {
		metrics := &BasicMetricsCollector{}
		m := newMemory(t, raw.New(), 4, v, WithMetricsCollector(metrics))
		return m, newWorkBuffer(t, v, true), metrics
	}
	loads := func(mc *BasicMetricsCollector) int64 { return mc.GetStats().LoadCount }
	get := func(t *testing.T, m *Memory, wb *WorkBuffer, idx Index) {
		_, err := m.Get(wb, idx)
		require.NoError(t, err)
	}

	t.Run("repeat access does not reload", func(t *testing.T) {
		m, wb, mc := setup(t)
		get(t, m, wb, a)
		get(t, m, wb, a+1)
		get(t, m, wb, a)
		assert.Equal(t, int64(1), loads(mc))
		assert.Equal(t, int64(2), mc.GetStats().HitCount)
	})

	t.Run("A B A C keeps A resident", func(t *testing.T) {
		m, wb, mc := setup(t)
		for _, idx := range []Index{a, b, a, c} {
			get(t, m, wb, idx)
		}
		assert.Equal(t, int64(3), loads(mc))

		// C replaced B, the slot not used last.
		assert.NotNil(t, wb.Resident(0))
		assert.Nil(t, wb.Resident(1))
		assert.NotNil(t, wb.Resident(2))

		get(t, m, wb, a)
		assert.Equal(t, int64(3), loads(mc))

		get(t, m, wb, b)
		assert.Equal(t, int64(4), loads(mc))
	})

	t.Run("A B C A reloads A", func(t *testing.T) {
		m, wb, mc := setup(t)
		for _, idx := range []Index{a, b, c} {
			get(t, m, wb, idx)
		}
		assert.Equal(t, int64(3), loads(mc))
		assert.Nil(t, wb.Resident(0), "C evicted A")

		get(t, m, wb, a)
		assert.Equal(t, int64(4), loads(mc))
		assert.Equal(t, int64(2), mc.GetStats().SaveCount)
	})

	t.Run("straddling a boundary stays resident", func(t *testing.T) {
		m, wb, mc := setup(t)
		for range 10 {
			get(t, m, wb, b-1)
			get(t, m, wb, b)
		}
		assert.Equal(t, int64(2), loads(mc))
		assert.Equal(t, int64(0), mc.GetStats().SaveCount)
	})
}

func TestAccessor_Bounds(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	m := newMemory(t, raw.New(), 2, 4, WithMetricsCollector(metrics))
	wb := newWorkBuffer(t, 4, true)

	for _, idx := range []Index{8, 9, 1 << 50, -1, -100} {
		v, err := m.Get(wb, idx)
		assert.Zero(t, v)
		assert.ErrorIs(t, err, ErrOutOfRange)

		var ie *IndexError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, idx, ie.Index)

		assert.ErrorIs(t, m.Set(wb, idx, 1), ErrOutOfRange)
	}

	st := metrics.GetStats()
	assert.Equal(t, int64(10), st.OutOfRangeCount)
	assert.Equal(t, int64(0), st.LoadCount)
	assert.False(t, wb.Slot(0).InUse())
	assert.False(t, wb.Slot(1).InUse())

	// The last valid index still works.
	require.NoError(t, m.Set(wb, 7, 3))
	v, err := m.Get(wb, 7)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestAccessor_BlockIDBeyondInt32(t *testing.T) {
	m := newMemory(t, raw.New(), 2, 4)
	wb := newWorkBuffer(t, 4, false)

	// Block 1<<32 wraps to block 0 when truncated to 32 bits.
	for _, idx := range []Index{4 << 32, 4<<32 + 1, 4 << 33, 1<<63 - 1} {
		assert.False(t, m.inRange(idx), "index %d", idx)

		_, err := m.Get(wb, idx)
		var ie *IndexError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, idx, ie.Index)
	}
	assert.False(t, wb.Slot(0).InUse())

	assert.True(t, m.inRange(7))
	assert.False(t, m.inRange(8))
	assert.False(t, m.inRange(-1))
}

func TestAccessor_Contract(t *testing.T) {
	m := newMemory(t, raw.New(), 2, 4)

	_, err := m.Get(nil, 0)
	assert.ErrorIs(t, err, ErrContract)

	_, err = m.Get(newWorkBuffer(t, 8, false), 0)
	assert.ErrorIs(t, err, ErrContract)

	_, err = NewWorkBuffer(0, false)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAccessor_EvictionRoundTrip(t *testing.T) {
	const (
		nBlocks        = 8
		valuesPerBlock = 64
	)

	cfg := DefaultConfig()
	cases := []struct {
		codec     string
		tolerance float64
		setup     func(*Config)
	}{
		{codec: CodecNone},
		{codec: CodecFPC},
		{codec: CodecFPZIP},
		{codec: CodecLZ4},
		{codec: CodecZstd},
		{codec: CodecS2},
		{codec: CodecZFP, tolerance: 1e-5},
		{codec: CodecZFP, tolerance: 1e-6, setup: func(c *Config) {
			c.ZFP = zfp.Config{Mode: zfp.ModeAccuracy, Tolerance: 1e-6}
		}},
		{codec: CodecZFP, setup: func(c *Config) {
			c.ZFP = zfp.Config{Mode: zfp.ModeReversible}
		}},
	}

	for _, tc := range cases {
		for _, dynamic := range []bool{false, true} {
			for _, double := range []bool{false, true} {
				c := cfg
				c.Codec = tc.codec
				c.ValuesPerBlock = valuesPerBlock
				c.DynamicSizing = dynamic
				c.DoubleBuffered = double
				if tc.setup != nil {
					tc.setup(&c)
				}

				name := tc.codec
				if c.Codec == CodecZFP {
					name += "/" + c.ZFP.Mode.String()
				}
				name += fmt.Sprintf("/dynamic=%t/double=%t", dynamic, double)
				t.Run(name, func(t *testing.T) {
					m, err := c.NewMemory(nBlocks)
					require.NoError(t, err)
					defer m.Close()
					wb, err := c.NewWorkBuffer()
					require.NoError(t, err)

					want := make([]float64, nBlocks*valuesPerBlock)
					testutil.NewRNG(7).FillUniformRange(want, -1, 1)
					for i, v := range want {
						require.NoError(t, m.Set(wb, Index(i), v))
					}

					// Read back in reverse so that earlier blocks come back from at-rest storage.
					got := make([]float64, len(want))
					for i := len(want) - 1; i >= 0; i-- {
						v, err := m.Get(wb, Index(i))
						require.NoError(t, err)
						got[i] = v
					}

					if tc.tolerance == 0 {
						assert.True(t, testutil.BitsEqual(want, got))
					} else {
						assert.LessOrEqual(t, testutil.MaxAbsError(want, got), tc.tolerance)
					}
					assert.Equal(t, nBlocks, m.Stats().WrittenBlocks)
				})
			}
		}
	}
}
