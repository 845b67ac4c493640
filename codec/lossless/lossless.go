// Package lossless wraps general-purpose byte compressors (LZ4, Zstandard,
// S2) as block codecs.
//
// Values are serialized as little-endian float64 and, when Shuffle is set,
// byte-transposed so that equal-significance bytes of neighbouring values
// become adjacent. A one-byte header records whether the payload is
// compressed or stored verbatim; blocks that do not shrink are stored.
//
// A Codec keeps scratch buffers and must not be used concurrently.
package lossless

import (
	"fmt"
	"strings"

	"github.com/klauspost/compress/s2"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/cmem/codec"
	"github.com/hupe1980/cmem/internal/pool"
)

// Algorithm selects the byte compressor.
type Algorithm uint8

const (
	// LZ4 is fast block compression, good for hot data.
	LZ4 Algorithm = iota + 1
	// Zstd gives a better ratio at a higher CPU cost.
	Zstd
	// S2 is the Snappy-compatible extension from klauspost/compress.
	S2
)

func (a Algorithm) String() string {
	switch a {
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	case S2:
		return "s2"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "lz4":
		*a = LZ4
	case "zstd", "zstandard":
		*a = Zstd
	case "s2", "snappy":
		*a = S2
	default:
		return fmt.Errorf("unknown lossless algorithm %q", text)
	}
	return nil
}

const (
	headerStored     byte = 0
	headerCompressed byte = 1
)

// Config selects the algorithm and byte shuffling.
type Config struct {
	Algorithm Algorithm `env:"ALGORITHM" envDefault:"zstd"`
	Shuffle   bool      `env:"SHUFFLE"   envDefault:"true"`
}

// Validate rejects unknown algorithms.
func (c Config) Validate() error {
	switch c.Algorithm {
	case LZ4, Zstd, S2:
		return nil
	default:
		return &codec.ConfigError{Codec: "lossless", Field: "algorithm", Reason: c.Algorithm.String()}
	}
}

// Codec is the general-purpose lossless backend.
type Codec struct {
	cfg  Config
	raw  []byte
	work []byte
	lz   lz4.Compressor
}

var _ codec.Codec = (*Codec)(nil)

// New validates cfg and returns a codec.
func New(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Codec{cfg: cfg}, nil
}

// Name implements codec.Codec. It reports the algorithm name.
func (c *Codec) Name() string { return c.cfg.Algorithm.String() }

// Config returns the codec configuration.
func (c *Codec) Config() Config { return c.cfg }

// MaxSize implements codec.Codec. Blocks that do not compress are stored,
// so the bound is the raw size plus the header byte.
func (c *Codec) MaxSize(n int) int {
	return 1 + n*codec.BytesPerValue
}

// Compress implements codec.Codec.
func (c *Codec) Compress(dst []byte, src []float64) (int, error) {
	if err := codec.CheckCompress(dst, src); err != nil {
		return 0, err
	}
	rawLen := len(src) * codec.BytesPerValue
	if need := 1 + rawLen; len(dst) < need {
		return 0, codec.Short(c.Name(), need, len(dst))
	}

	c.raw = grow(c.raw, rawLen)
	codec.PutFloats(c.raw, src)
	if c.cfg.Shuffle {
		c.work = grow(c.work, rawLen)
		shuffle(c.work, c.raw)
		c.raw, c.work = c.work, c.raw
	}

	packed, err := c.compress(c.raw)
	if err != nil {
		return 0, fmt.Errorf("%s compress: %w", c.Name(), err)
	}

	if len(packed) == 0 || len(packed) >= rawLen {
		dst[0] = headerStored
		return 1 + copy(dst[1:], c.raw), nil
	}
	dst[0] = headerCompressed
	return 1 + copy(dst[1:], packed), nil
}

// Decompress implements codec.Codec.
func (c *Codec) Decompress(dst []float64, src []byte) error {
	if err := codec.CheckDecompress(dst, src); err != nil {
		return err
	}
	if len(src) == 0 {
		return codec.Corrupt(c.Name(), "empty block")
	}
	rawLen := len(dst) * codec.BytesPerValue

	var raw []byte
	switch src[0] {
	case headerStored:
		raw = src[1:]
	case headerCompressed:
		var err error
		if raw, err = c.decompress(src[1:], rawLen); err != nil {
			return fmt.Errorf("%w: %s: %w", codec.ErrCorrupt, c.Name(), err)
		}
	default:
		return codec.Corrupt(c.Name(), fmt.Sprintf("unknown header %d", src[0]))
	}
	if len(raw) != rawLen {
		return codec.Corrupt(c.Name(), "size mismatch")
	}

	if c.cfg.Shuffle {
		c.raw = grow(c.raw, rawLen)
		unshuffle(c.raw, raw)
		raw = c.raw
	}
	codec.Floats(dst, raw)
	return nil
}

func (c *Codec) compress(raw []byte) ([]byte, error) {
	switch c.cfg.Algorithm {
	case LZ4:
		c.work = grow(c.work, lz4.CompressBlockBound(len(raw)))
		n, err := c.lz.CompressBlock(raw, c.work)
		if err != nil {
			return nil, err
		}
		return c.work[:n], nil
	case Zstd:
		enc := pool.GetZstdEncoder()
		defer pool.PutZstdEncoder(enc)
		c.work = enc.EncodeAll(raw, c.work[:0])
		return c.work, nil
	default:
		c.work = grow(c.work, s2.MaxEncodedLen(len(raw)))
		c.work = s2.Encode(c.work, raw)
		return c.work, nil
	}
}

func (c *Codec) decompress(src []byte, rawLen int) ([]byte, error) {
	switch c.cfg.Algorithm {
	case LZ4:
		c.work = grow(c.work, rawLen)
		n, err := lz4.UncompressBlock(src, c.work)
		if err != nil {
			return nil, err
		}
		return c.work[:n], nil
	case Zstd:
		dec := pool.GetZstdDecoder()
		defer pool.PutZstdDecoder(dec)
		return dec.DecodeAll(src, c.work[:0])
	default:
		n, err := s2.DecodedLen(src)
		if err != nil {
			return nil, err
		}
		if n != rawLen {
			return nil, fmt.Errorf("decoded length %d, want %d", n, rawLen)
		}
		c.work = grow(c.work, rawLen)
		return s2.Decode(c.work, src)
	}
}

// grow returns b resized to n, reallocating only when capacity is short.
func grow(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}
