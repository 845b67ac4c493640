package zfp

import (
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/cmem/codec"
)

// Mode selects how the bit budget of a block is bounded.
type Mode uint8

const (
	// ModeRate stores every block in exactly Rate bits per value.
	ModeRate Mode = iota
	// ModePrecision keeps a fixed number of bit planes per block.
	ModePrecision
	// ModeAccuracy bounds the absolute error by Tolerance.
	ModeAccuracy
	// ModeReversible is lossless.
	ModeReversible
)

func (m Mode) String() string {
	switch m {
	case ModeRate:
		return "rate"
	case ModePrecision:
		return "precision"
	case ModeAccuracy:
		return "accuracy"
	case ModeReversible:
		return "reversible"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler. Names are matched
// case-insensitively; single-letter abbreviations are rejected since "r"
// could mean either rate or reversible.
func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "rate":
		*m = ModeRate
	case "precision":
		*m = ModePrecision
	case "accuracy":
		*m = ModeAccuracy
	case "reversible", "lossless":
		*m = ModeReversible
	default:
		return fmt.Errorf("unknown zfp mode %q", text)
	}
	return nil
}

// Config holds the zfp stream parameters.
//
// Only the field matching Mode is consulted.
type Config struct {
	Mode      Mode    `env:"MODE"      envDefault:"rate"`
	Rate      float64 `env:"RATE"      envDefault:"32"`
	Precision int     `env:"PRECISION" envDefault:"48"`
	Tolerance float64 `env:"TOLERANCE" envDefault:"1e-9"`
}

// Validate rejects out-of-range parameters.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeRate:
		if math.IsNaN(c.Rate) || c.Rate < minRate || c.Rate > maxRate {
			return &codec.ConfigError{Codec: Name, Field: "rate", Reason: fmt.Sprintf("must be in [%d, %d]", minRate, maxRate)}
		}
	case ModePrecision:
		if c.Precision < 1 || c.Precision > intPrec {
			return &codec.ConfigError{Codec: Name, Field: "precision", Reason: fmt.Sprintf("must be in [1, %d]", intPrec)}
		}
	case ModeAccuracy:
		if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 1) {
			return &codec.ConfigError{Codec: Name, Field: "tolerance", Reason: "must be positive and finite"}
		}
	case ModeReversible:
	default:
		return &codec.ConfigError{Codec: Name, Field: "mode", Reason: c.Mode.String()}
	}
	return nil
}

// params derives the per-block encoding limits.
type params struct {
	minBits int
	maxBits int
	maxPrec int
	minExp  int
}

func (c Config) params() params {
	p := params{
		maxBits: maxBlockBits,
		maxPrec: intPrec,
		minExp:  minExp,
	}
	switch c.Mode {
	case ModeRate:
		bits := int(math.Floor(blockSize*c.Rate + 0.5))
		p.minBits, p.maxBits = bits, bits
	case ModePrecision:
		p.maxPrec = c.Precision
	case ModeAccuracy:
		_, e := math.Frexp(c.Tolerance)
		p.minExp = e - 1
	}
	return p
}
