package cmem

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/hupe1980/cmem/codec"
	"github.com/hupe1980/cmem/codec/fpc"
	"github.com/hupe1980/cmem/codec/fpzip"
	"github.com/hupe1980/cmem/codec/lossless"
	"github.com/hupe1980/cmem/codec/raw"
	"github.com/hupe1980/cmem/codec/zfp"
)

// EnvPrefix prefixes every variable read by ParseConfig.
const EnvPrefix = "CMEM_"

// Codec names accepted by Config.Codec.
const (
	CodecNone  = raw.Name
	CodecZFP   = zfp.Name
	CodecFPZIP = fpzip.Name
	CodecFPC   = fpc.Name
	CodecLZ4   = "lz4"
	CodecZstd  = "zstd"
	CodecS2    = "s2"
)

// Config describes a cache and its codec. The zero value is not valid; use
// ParseConfig or DefaultConfig.
type Config struct {
	// Disabled bypasses compression entirely. Adapters then keep a plain array.
	Disabled bool `env:"DISABLED"`

	Codec          string `env:"CODEC"            envDefault:"zfp"`
	ValuesPerBlock int    `env:"VALUES_PER_BLOCK" envDefault:"1024"`
	DoubleBuffered bool   `env:"DOUBLE_BUFFERED"  envDefault:"true"`
	DynamicSizing  bool   `env:"DYNAMIC_SIZING"   envDefault:"true"`

	// MemoryLimit caps at-rest storage in bytes (0 = unlimited).
	MemoryLimit int64 `env:"MEMORY_LIMIT"`
	// DumpRateLimit caps dump throughput in bytes per second (0 = unlimited).
	DumpRateLimit int64 `env:"DUMP_RATE_LIMIT"`

	ZFP   zfp.Config   `envPrefix:"ZFP_"`
	FPZIP fpzip.Config `envPrefix:"FPZIP_"`
	FPC   fpc.Config   `envPrefix:"FPC_"`

	// Shuffle byte-transposes values before the lz4, zstd and s2 codecs.
	Shuffle bool `env:"SHUFFLE" envDefault:"true"`
}

// DefaultConfig returns the configuration ParseConfig yields with an empty
// environment.
func DefaultConfig() Config {
	return Config{
		Codec:          CodecZFP,
		ValuesPerBlock: 1024,
		DoubleBuffered: true,
		DynamicSizing:  true,
		ZFP:            zfp.Config{Mode: zfp.ModeRate, Rate: 32, Precision: 48, Tolerance: 1e-9},
		FPZIP:          fpzip.Config{Precision: 64},
		FPC:            fpc.Config{Level: 16},
		Shuffle:        true,
	}
}

// ParseConfig reads a Config from CMEM_* environment variables, e.g.
// CMEM_CODEC=zfp, CMEM_ZFP_MODE=accuracy, CMEM_ZFP_TOLERANCE=1e-6.
func ParseConfig() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix: EnvPrefix,
	})
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the geometry, the limits and the selected codec's settings.
func (c Config) Validate() error {
	if c.ValuesPerBlock <= 0 {
		return &ConfigError{Field: "values_per_block", Value: c.ValuesPerBlock, Reason: "must be positive"}
	}
	if c.MemoryLimit < 0 {
		return &ConfigError{Field: "memory_limit", Value: c.MemoryLimit, Reason: "must not be negative"}
	}
	if c.DumpRateLimit < 0 {
		return &ConfigError{Field: "dump_rate_limit", Value: c.DumpRateLimit, Reason: "must not be negative"}
	}
	if c.Disabled {
		return nil
	}
	_, err := c.NewCodec()
	return err
}

// NewCodec builds the codec selected by c.Codec.
func (c Config) NewCodec() (codec.Codec, error) {
	var (
		cd  codec.Codec
		err error
	)
	switch c.Codec {
	case CodecNone:
		cd = raw.New()
	case CodecZFP:
		cd, err = zfp.New(c.ZFP)
	case CodecFPZIP:
		cd, err = fpzip.New(c.FPZIP)
	case CodecFPC:
		cd, err = fpc.New(c.FPC)
	case CodecLZ4:
		cd, err = lossless.New(lossless.Config{Algorithm: lossless.LZ4, Shuffle: c.Shuffle})
	case CodecZstd:
		cd, err = lossless.New(lossless.Config{Algorithm: lossless.Zstd, Shuffle: c.Shuffle})
	case CodecS2:
		cd, err = lossless.New(lossless.Config{Algorithm: lossless.S2, Shuffle: c.Shuffle})
	default:
		return nil, &ConfigError{Field: "codec", Value: c.Codec, Reason: "unknown codec"}
	}
	if err != nil {
		return nil, &ConfigError{Field: "codec", Value: c.Codec, Reason: "backend rejected its settings", cause: err}
	}
	return cd, nil
}

// Options returns the Memory options c implies. extra options are applied
// after them.
func (c Config) Options(extra ...Option) []Option {
	return append([]Option{
		WithDynamicSizing(c.DynamicSizing),
		WithMemoryLimit(c.MemoryLimit),
		WithDumpRateLimit(c.DumpRateLimit),
	}, extra...)
}

// NewMemory validates c and creates a cache of nBlocks blocks with a fresh
// codec.
func (c Config) NewMemory(nBlocks int, optFns ...Option) (*Memory, error) {
	if c.Disabled {
		return nil, &ConfigError{Field: "disabled", Value: true, Reason: "compression is disabled"}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cd, err := c.NewCodec()
	if err != nil {
		return nil, err
	}
	return New(cd, nBlocks, c.ValuesPerBlock, c.Options(optFns...)...)
}

// NewWorkBuffer creates a working buffer handle matching c.
func (c Config) NewWorkBuffer() (*WorkBuffer, error) {
	return NewWorkBuffer(c.ValuesPerBlock, c.DoubleBuffered)
}
