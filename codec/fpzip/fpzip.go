// Package fpzip implements a fixed-precision predictive codec in the spirit
// of fpzip.
//
// Each value is mapped to a monotone unsigned integer and truncated to
// Precision leading bits. A Lorenzo predictor (1-, 2- or 3-D, depending on
// the configured shape) estimates the value from already reconstructed
// neighbours; only the integer residual is stored. Residuals are zig-zag
// varint coded and entropy coded with Zstandard. With Precision 64 the
// codec is lossless.
//
// A Codec keeps scratch buffers and must not be used concurrently.
package fpzip

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/cmem/codec"
	"github.com/hupe1980/cmem/internal/pool"
)

// Name is the stable backend name.
const Name = "fpzip"

const (
	modeStored     byte = 0
	modeCompressed byte = 1

	signBit uint64 = 1 << 63
)

// Config holds the predictor parameters.
type Config struct {
	// Precision is the number of leading bits kept per value (1..64).
	Precision int `env:"PRECISION" envDefault:"64"`

	// Nx, Ny, Nz describe the block shape, fastest varying first.
	// Nx == 0 treats the block as one-dimensional.
	Nx int `env:"NX"`
	Ny int `env:"NY"`
	Nz int `env:"NZ"`
}

// Validate rejects out-of-range parameters.
func (c Config) Validate() error {
	if c.Precision < 1 || c.Precision > 64 {
		return &codec.ConfigError{Codec: Name, Field: "precision", Reason: "must be in [1, 64]"}
	}
	if c.Nx < 0 || c.Ny < 0 || c.Nz < 0 {
		return &codec.ConfigError{Codec: Name, Field: "shape", Reason: "dimensions must not be negative"}
	}
	if c.Nx == 0 && (c.Ny > 0 || c.Nz > 0) {
		return &codec.ConfigError{Codec: Name, Field: "shape", Reason: "nx is required when ny or nz is set"}
	}
	return nil
}

type shape struct {
	nx, ny, nz int
}

func (c Config) shape(n int) shape {
	if c.Nx == 0 {
		return shape{nx: max(n, 1), ny: 1, nz: 1}
	}
	return shape{nx: c.Nx, ny: max(c.Ny, 1), nz: max(c.Nz, 1)}
}

// Codec is the fpzip-style backend.
type Codec struct {
	cfg   Config
	shift uint
	stage []byte
	zbuf  []byte
}

var (
	_ codec.Codec        = (*Codec)(nil)
	_ codec.BlockChecker = (*Codec)(nil)
)

// New validates cfg and returns a codec.
func New(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Codec{
		cfg:   cfg,
		shift: uint(64 - cfg.Precision),
	}, nil
}

// Name implements codec.Codec.
func (c *Codec) Name() string { return Name }

// Config returns the codec configuration.
func (c *Codec) Config() Config { return c.cfg }

// CheckBlock implements codec.BlockChecker.
func (c *Codec) CheckBlock(n int) error {
	if c.cfg.Nx == 0 {
		return nil
	}
	s := c.cfg.shape(n)
	if s.nx*s.ny*s.nz != n {
		return &codec.ConfigError{
			Codec:  Name,
			Field:  "shape",
			Reason: fmt.Sprintf("%dx%dx%d does not cover %d values", s.nx, s.ny, s.nz, n),
		}
	}
	return nil
}

// MaxSize implements codec.Codec. Incompressible blocks fall back to the
// stored layout: one mode byte plus the truncated raw values.
func (c *Codec) MaxSize(n int) int {
	return 1 + n*codec.BytesPerValue
}

// Compress implements codec.Codec.
func (c *Codec) Compress(dst []byte, src []float64) (int, error) {
	if err := codec.CheckCompress(dst, src); err != nil {
		return 0, err
	}
	if err := c.CheckBlock(len(src)); err != nil {
		return 0, err
	}
	if need := c.MaxSize(len(src)); len(dst) < need {
		return 0, codec.Short(Name, need, len(dst))
	}

	s := c.cfg.shape(len(src))
	mask := ^uint64(0) << c.shift

	// Reconstructed values are written to the stored area of dst so that the
	// predictor sees exactly what the decoder will see.
	recon := dst[1:]
	c.stage = c.stage[:0]
	for i, v := range src {
		pm := forward(s.predictBytes(recon, i)) & mask
		am := forward(v) & mask
		r := int64(am-pm) >> c.shift
		c.stage = binary.AppendUvarint(c.stage, zigzag(r))
		binary.LittleEndian.PutUint64(recon[i*codec.BytesPerValue:], math.Float64bits(inverse(am)))
	}

	enc := pool.GetZstdEncoder()
	c.zbuf = enc.EncodeAll(c.stage, c.zbuf[:0])
	pool.PutZstdEncoder(enc)

	stored := 1 + len(src)*codec.BytesPerValue
	if 1+len(c.zbuf) >= stored {
		dst[0] = modeStored
		return stored, nil
	}
	dst[0] = modeCompressed
	return 1 + copy(dst[1:], c.zbuf), nil
}

// Decompress implements codec.Codec.
func (c *Codec) Decompress(dst []float64, src []byte) error {
	if err := codec.CheckDecompress(dst, src); err != nil {
		return err
	}
	if len(src) == 0 {
		return codec.Corrupt(Name, "empty block")
	}

	switch src[0] {
	case modeStored:
		if len(src) != 1+len(dst)*codec.BytesPerValue {
			return codec.Corrupt(Name, "stored size mismatch")
		}
		codec.Floats(dst, src[1:])
		return nil
	case modeCompressed:
	default:
		return codec.Corrupt(Name, fmt.Sprintf("unknown mode %d", src[0]))
	}

	dec := pool.GetZstdDecoder()
	stage, err := dec.DecodeAll(src[1:], c.stage[:0])
	pool.PutZstdDecoder(dec)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", codec.ErrCorrupt, Name, err)
	}
	c.stage = stage

	s := c.cfg.shape(len(dst))
	mask := ^uint64(0) << c.shift
	for i := range dst {
		u, k := binary.Uvarint(stage)
		if k <= 0 {
			return codec.Corrupt(Name, "residual stream truncated")
		}
		stage = stage[k:]

		pm := forward(s.predict(dst, i)) & mask
		dst[i] = inverse(pm + uint64(unzigzag(u))<<c.shift)
	}
	if len(stage) != 0 {
		return codec.Corrupt(Name, "trailing residuals")
	}
	return nil
}

// forward maps float bits to an unsigned integer whose order matches the
// numeric order of the values.
func forward(v float64) uint64 {
	b := math.Float64bits(v)
	if b&signBit != 0 {
		return ^b
	}
	return b | signBit
}

func inverse(m uint64) float64 {
	if m&signBit != 0 {
		return math.Float64frombits(m &^ signBit)
	}
	return math.Float64frombits(^m)
}

func zigzag(v int64) uint64 { return uint64(v<<1) ^ uint64(v>>63) }

func unzigzag(u uint64) int64 { return int64(u>>1) ^ -int64(u&1) }
