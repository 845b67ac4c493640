// Package raw implements the pass-through codec: values are stored as
// little-endian float64 bits without any transformation.
package raw

import (
	"github.com/hupe1980/cmem/codec"
)

// Name is the stable backend name.
const Name = "none"

// Codec is the no-op backend.
type Codec struct{}

var _ codec.Codec = Codec{}

// New returns the pass-through codec.
func New() Codec { return Codec{} }

// Name implements codec.Codec.
func (Codec) Name() string { return Name }

// MaxSize implements codec.Codec.
func (Codec) MaxSize(n int) int { return n * codec.BytesPerValue }

// Compress implements codec.Codec.
func (c Codec) Compress(dst []byte, src []float64) (int, error) {
	if err := codec.CheckCompress(dst, src); err != nil {
		return 0, err
	}
	need := c.MaxSize(len(src))
	if len(dst) < need {
		return 0, codec.Short(Name, need, len(dst))
	}
	return codec.PutFloats(dst, src), nil
}

// Decompress implements codec.Codec.
func (c Codec) Decompress(dst []float64, src []byte) error {
	if err := codec.CheckDecompress(dst, src); err != nil {
		return err
	}
	if len(src) != c.MaxSize(len(dst)) {
		return codec.Corrupt(Name, "size mismatch")
	}
	codec.Floats(dst, src)
	return nil
}
