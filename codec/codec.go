// Package codec defines the block compression contract shared by every backend.
//
// A Codec turns one logical block of float64 values into bytes and back.
// The cache controller only talks to this interface; the concrete backend
// (zfp, fpzip, fpc, lossless, raw) is chosen once when a cache is created.
//
// Implementations are NOT required to be safe for concurrent use. A codec is
// owned by exactly one cache controller, which serializes all calls.
package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrNilBuffer is returned when a required source or destination buffer is absent.
	// It signals a caller bug, never a runtime condition.
	ErrNilBuffer = errors.New("codec: nil buffer")

	// ErrShortBuffer is returned when the destination cannot hold the encoded block.
	ErrShortBuffer = errors.New("codec: short buffer")

	// ErrCorrupt is returned when compressed input cannot be decoded.
	ErrCorrupt = errors.New("codec: corrupt input")

	// ErrInvalidConfig is returned when a backend configuration is rejected.
	ErrInvalidConfig = errors.New("codec: invalid configuration")
)

// Codec compresses and decompresses one block of values.
type Codec interface {
	// Name returns the stable backend name (e.g. "zfp", "fpc").
	Name() string

	// MaxSize returns the worst-case compressed size in bytes for a block of n values.
	// It is a pure function of the configuration and n; Compress never exceeds it.
	MaxSize(n int) int

	// Compress encodes src into dst and returns the number of bytes written.
	// dst must be non-nil; its length is the available capacity.
	Compress(dst []byte, src []float64) (int, error)

	// Decompress decodes src into dst. len(dst) is the expected value count.
	Decompress(dst []float64, src []byte) error
}

// BlockChecker is implemented by codecs whose configuration constrains the
// number of values per block (e.g. a fixed multi-dimensional shape).
// Cache constructors call it before allocating anything.
type BlockChecker interface {
	CheckBlock(n int) error
}

// ConfigError describes a rejected backend configuration field.
//
// errors.Is(err, ErrInvalidConfig) reports true for every ConfigError.
type ConfigError struct {
	Codec  string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("codec %s: invalid %s: %s", e.Codec, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// CheckCompress validates the buffers handed to Compress.
func CheckCompress(dst []byte, src []float64) error {
	if dst == nil {
		return fmt.Errorf("%w: compress destination", ErrNilBuffer)
	}
	if src == nil {
		return fmt.Errorf("%w: compress source", ErrNilBuffer)
	}
	return nil
}

// CheckDecompress validates the buffers handed to Decompress.
func CheckDecompress(dst []float64, src []byte) error {
	if src == nil {
		return fmt.Errorf("%w: decompress source", ErrNilBuffer)
	}
	if dst == nil {
		return fmt.Errorf("%w: decompress destination", ErrNilBuffer)
	}
	return nil
}

// Short returns an ErrShortBuffer error annotated with the sizes involved.
func Short(name string, need, have int) error {
	return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrShortBuffer, name, need, have)
}

// Corrupt returns an ErrCorrupt error annotated with a reason.
func Corrupt(name, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrCorrupt, name, reason)
}
