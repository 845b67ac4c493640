package raw

import (
	"testing"

	"github.com/hupe1980/cmem/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaw_RoundTrip(t *testing.T) {
	c := New()
	src := []float64{1, -2.5, 3e300, 0}
	dst := make([]byte, c.MaxSize(len(src)))

	n, err := c.Compress(dst, src)
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	out := make([]float64, len(src))
	require.NoError(t, c.Decompress(out, dst[:n]))
	assert.Equal(t, src, out)
}

func TestRaw_Errors(t *testing.T) {
	c := New()

	_, err := c.Compress(nil, []float64{1})
	assert.ErrorIs(t, err, codec.ErrNilBuffer)

	_, err = c.Compress(make([]byte, 4), []float64{1})
	assert.ErrorIs(t, err, codec.ErrShortBuffer)

	err = c.Decompress(make([]float64, 2), make([]byte, 8))
	assert.ErrorIs(t, err, codec.ErrCorrupt)

	err = c.Decompress(make([]float64, 1), nil)
	assert.ErrorIs(t, err, codec.ErrNilBuffer)
}
