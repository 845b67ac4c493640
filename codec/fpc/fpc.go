// Package fpc implements the FPC lossless floating-point compressor.
//
// Two hash-table predictors run side by side: a finite context method (FCM)
// that predicts the next value from recent values, and a differential FCM
// (DFCM) that predicts the next stride. Each value is XORed with the closer
// prediction and only the non-zero low bytes of the residual are stored,
// together with a 4-bit code (predictor selector + leading zero byte count).
//
// Block layout: [header bytes: ceil(n/2)] [residual bytes]. Each header byte
// carries the codes of two consecutive values, first value in the high nibble.
//
// Predictor tables are reset for every block so that blocks decode
// independently. A block of n values uses at most 8n table entries, so short
// blocks never pay for clearing a large configured table. A Codec owns its tables and must not be used concurrently.
package fpc

import (
	"fmt"

	"github.com/hupe1980/cmem/codec"
)

// Name is the stable backend name.
const Name = "fpc"

const (
	minLevel = 1
	maxLevel = 24

	selectDFCM = 0x8
)

// Config holds the predictor table size.
type Config struct {
	// Level is log2 of the number of entries in each predictor table.
	Level int `env:"LEVEL" envDefault:"16"`
}

// Validate rejects out-of-range parameters.
func (c Config) Validate() error {
	if c.Level < minLevel || c.Level > maxLevel {
		return &codec.ConfigError{Codec: Name, Field: "level", Reason: fmt.Sprintf("must be in [%d, %d]", minLevel, maxLevel)}
	}
	return nil
}

// Codec is the FPC backend.
type Codec struct {
	cfg  Config
	fcm  []uint64
	dfcm []uint64
}

var _ codec.Codec = (*Codec)(nil)

// New validates cfg and returns a codec.
func New(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Codec{cfg: cfg}, nil
}

// Name implements codec.Codec.
func (c *Codec) Name() string { return Name }

// Config returns the codec configuration.
func (c *Codec) Config() Config { return c.cfg }

// MaxSize implements codec.Codec.
func (c *Codec) MaxSize(n int) int {
	return headerLen(n) + n*codec.BytesPerValue
}

// Compress implements codec.Codec.
func (c *Codec) Compress(dst []byte, src []float64) (int, error) {
	if err := codec.CheckCompress(dst, src); err != nil {
		return 0, err
	}
	if need := c.MaxSize(len(src)); len(dst) < need {
		return 0, codec.Short(Name, need, len(dst))
	}

	p := c.reset(len(src))
	hdr := dst[:headerLen(len(src))]
	clear(hdr)
	pos := len(hdr)

	for i, v := range src {
		bits := floatBits(v)
		fcmPred, dfcmPred := p.predict()
		p.update(bits)

		resid := bits ^ fcmPred
		var code byte
		if alt := bits ^ dfcmPred; alt < resid {
			resid = alt
			code = selectDFCM
		}

		bcode, nbytes := encodeLen(resid)
		code |= bcode
		if i%2 == 0 {
			hdr[i/2] = code << 4
		} else {
			hdr[i/2] |= code
		}

		for k := 0; k < nbytes; k++ {
			dst[pos+k] = byte(resid >> (8 * uint(k)))
		}
		pos += nbytes
	}
	return pos, nil
}

// Decompress implements codec.Codec.
func (c *Codec) Decompress(dst []float64, src []byte) error {
	if err := codec.CheckDecompress(dst, src); err != nil {
		return err
	}
	hl := headerLen(len(dst))
	if len(src) < hl {
		return codec.Corrupt(Name, "header truncated")
	}

	p := c.reset(len(dst))
	hdr := src[:hl]
	pos := hl

	for i := range dst {
		code := hdr[i/2]
		if i%2 == 0 {
			code >>= 4
		}
		code &= 0xF

		nbytes := decodeLen(code &^ selectDFCM)
		if pos+nbytes > len(src) {
			return codec.Corrupt(Name, "residuals truncated")
		}
		var resid uint64
		for k := 0; k < nbytes; k++ {
			resid |= uint64(src[pos+k]) << (8 * uint(k))
		}
		pos += nbytes

		fcmPred, dfcmPred := p.predict()
		pred := fcmPred
		if code&selectDFCM != 0 {
			pred = dfcmPred
		}
		bits := resid ^ pred
		p.update(bits)
		dst[i] = floatFrom(bits)
	}
	if pos != len(src) {
		return codec.Corrupt(Name, "trailing bytes")
	}
	return nil
}

func headerLen(n int) int { return (n + 1) / 2 }

// encodeLen maps a residual to its 3-bit length code and the number of low
// bytes to store. Four leading zero bytes cannot be expressed and are
// stored as three.
func encodeLen(r uint64) (byte, int) {
	switch {
	case r>>56 != 0:
		return 0, 8
	case r>>48 != 0:
		return 1, 7
	case r>>40 != 0:
		return 2, 6
	case r>>24 != 0:
		return 3, 5
	case r>>16 != 0:
		return 4, 3
	case r>>8 != 0:
		return 5, 2
	case r != 0:
		return 6, 1
	default:
		return 7, 0
	}
}

func decodeLen(bcode byte) int {
	switch bcode {
	case 0, 1, 2, 3:
		return 8 - int(bcode)
	default:
		return 7 - int(bcode)
	}
}
