// Package zfp implements a one-dimensional zfp-style transform codec.
//
// Values are processed in blocks of four. Each block is converted to a
// common-exponent fixed-point representation, decorrelated with an
// orthogonal lifting transform, mapped to negabinary and emitted bit plane
// by bit plane with group-tested significance coding. The bit budget is
// bounded by one of four modes:
//
//   - rate: every block occupies exactly 4*Rate bits (random access friendly)
//   - precision: a fixed number of bit planes is kept
//   - accuracy: the absolute error stays within Tolerance
//   - reversible: lossless, using an integer-exact transform
//
// Lossy modes do not preserve Inf or NaN. Use reversible mode for data that
// may contain them.
package zfp

import (
	"math"
	"math/bits"

	"github.com/hupe1980/cmem/codec"
	"github.com/hupe1980/cmem/internal/bitstream"
)

// Name is the stable backend name.
const Name = "zfp"

const (
	blockSize = 4
	dims      = 1
	intPrec   = 64
	ebits     = 11
	ebias     = 1023
	minExp    = -1074
	minRate   = 4
	maxRate   = 64

	// exponent header + group tests + every bit plane of every value
	maxBlockBits = 1 + ebits + blockSize + blockSize*intPrec

	// reversible header: significance flag + 6-bit precision
	revHeaderBits = 7

	nbMask uint64 = 0xaaaaaaaaaaaaaaaa
)

// Codec is the zfp-style backend. It is stateless apart from its configuration.
type Codec struct {
	cfg Config
	p   params
}

var _ codec.Codec = (*Codec)(nil)

// New validates cfg and returns a codec.
func New(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Codec{cfg: cfg, p: cfg.params()}, nil
}

// Name implements codec.Codec.
func (c *Codec) Name() string { return Name }

// Config returns the codec configuration.
func (c *Codec) Config() Config { return c.cfg }

// MaxSize implements codec.Codec.
func (c *Codec) MaxSize(n int) int {
	blocks := (n + blockSize - 1) / blockSize
	return (blocks*c.p.maxBits + 7) / 8
}

// Compress implements codec.Codec.
func (c *Codec) Compress(dst []byte, src []float64) (int, error) {
	if err := codec.CheckCompress(dst, src); err != nil {
		return 0, err
	}
	if need := c.MaxSize(len(src)); len(dst) < need {
		return 0, codec.Short(Name, need, len(dst))
	}

	w := bitstream.NewWriter(dst)
	var blk [blockSize]float64
	for i := 0; i < len(src); i += blockSize {
		padBlock(&blk, copy(blk[:], src[i:]))
		if c.cfg.Mode == ModeReversible {
			c.encodeReversible(w, &blk)
		} else {
			c.encodeBlock(w, &blk)
		}
	}
	return w.Flush()
}

// Decompress implements codec.Codec.
func (c *Codec) Decompress(dst []float64, src []byte) error {
	if err := codec.CheckDecompress(dst, src); err != nil {
		return err
	}

	r := bitstream.NewReader(src)
	var blk [blockSize]float64
	for i := 0; i < len(dst); i += blockSize {
		if c.cfg.Mode == ModeReversible {
			c.decodeReversible(r, &blk)
		} else {
			c.decodeBlock(r, &blk)
		}
		copy(dst[i:], blk[:])
	}
	if r.Overrun() {
		return codec.Corrupt(Name, "stream truncated")
	}
	return nil
}

func (c *Codec) encodeBlock(w *bitstream.Writer, blk *[blockSize]float64) {
	emax := maxExponent(blk)
	maxPrec := c.p.precision(emax)

	e := 0
	if maxPrec > 0 {
		e = emax + ebias
	}

	used := 1
	if e > 0 {
		used += ebits
		w.WriteBits(uint64(2*e+1), used)

		var ib [blockSize]int64
		for i, v := range blk {
			ib[i] = int64(math.Ldexp(v, intPrec-2-emax))
		}
		fwdLift(&ib)

		var ub [blockSize]uint64
		for i, v := range ib {
			ub[i] = int2uint(v)
		}
		used += encodeInts(w, c.p.maxBits-used, intPrec, intPrec-maxPrec, &ub)
	} else {
		w.WriteBit(false)
	}

	if used < c.p.minBits {
		w.Pad(c.p.minBits - used)
	}
}

func (c *Codec) decodeBlock(r *bitstream.Reader, blk *[blockSize]float64) {
	used := 1
	if r.ReadBit() {
		used += ebits
		emax := int(r.ReadBits(ebits)) - ebias
		maxPrec := c.p.precision(emax)

		var ub [blockSize]uint64
		used += decodeInts(r, c.p.maxBits-used, intPrec, intPrec-maxPrec, &ub)

		var ib [blockSize]int64
		for i, v := range ub {
			ib[i] = uint2int(v)
		}
		invLift(&ib)

		for i, v := range ib {
			blk[i] = math.Ldexp(float64(v), emax-(intPrec-2))
		}
	} else {
		*blk = [blockSize]float64{}
	}

	if used < c.p.minBits {
		r.Skip(c.p.minBits - used)
	}
}

func (c *Codec) encodeReversible(w *bitstream.Writer, blk *[blockSize]float64) {
	var ib [blockSize]int64
	for i, v := range blk {
		ib[i] = reinterpret(int64(math.Float64bits(v)))
	}
	revFwdLift(&ib)

	var ub [blockSize]uint64
	var all uint64
	for i, v := range ib {
		ub[i] = int2uint(v)
		all |= ub[i]
	}

	prec := bits.Len64(all)
	if prec == 0 {
		w.WriteBit(false)
		return
	}
	w.WriteBits(uint64(2*(prec-1)+1), revHeaderBits)
	encodeInts(w, c.p.maxBits-revHeaderBits, prec, 0, &ub)
}

func (c *Codec) decodeReversible(r *bitstream.Reader, blk *[blockSize]float64) {
	var ub [blockSize]uint64
	if r.ReadBit() {
		prec := int(r.ReadBits(revHeaderBits-1)) + 1
		decodeInts(r, c.p.maxBits-revHeaderBits, prec, 0, &ub)
	}

	var ib [blockSize]int64
	for i, v := range ub {
		ib[i] = uint2int(v)
	}
	revInvLift(&ib)

	for i, v := range ib {
		blk[i] = math.Float64frombits(uint64(reinterpret(v)))
	}
}

func (p params) precision(emax int) int {
	return min(p.maxPrec, max(0, emax-p.minExp+2*(dims+1)))
}

// maxExponent returns the exponent of the largest magnitude in the block.
func maxExponent(blk *[blockSize]float64) int {
	var amax float64
	for _, v := range blk {
		amax = max(amax, math.Abs(v))
	}
	if amax > 0 {
		_, e := math.Frexp(amax)
		return e
	}
	return -ebias
}

// padBlock fills the tail of a partial block so that the transform sees
// smooth data.
func padBlock(blk *[blockSize]float64, n int) {
	switch n {
	case 0:
		blk[0] = 0
		fallthrough
	case 1:
		blk[1] = blk[0]
		fallthrough
	case 2:
		blk[2] = blk[1]
		fallthrough
	case 3:
		blk[3] = blk[0]
	}
}

// reinterpret maps float bits to a monotone two's complement integer. It is
// its own inverse.
func reinterpret(i int64) int64 {
	return i ^ ((i >> 63) & math.MaxInt64)
}

func int2uint(x int64) uint64 { return (uint64(x) + nbMask) ^ nbMask }

func uint2int(x uint64) int64 { return int64((x ^ nbMask) - nbMask) }
