// Package pool provides object pools for the codec hot path.
// Zstandard encoders and decoders are expensive to build, so they are
// reused through sync.Pool across blocks and codec instances.
package pool

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdEncoders sync.Pool
	zstdDecoders sync.Pool
)

// GetZstdEncoder retrieves an encoder from the pool or builds a new one.
// Encoders are configured for single-goroutine block encoding.
func GetZstdEncoder() *zstd.Encoder {
	if v := zstdEncoders.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	return enc
}

// PutZstdEncoder returns an encoder to the pool.
func PutZstdEncoder(enc *zstd.Encoder) {
	if enc == nil {
		return
	}
	zstdEncoders.Put(enc)
}

// GetZstdDecoder retrieves a decoder from the pool or builds a new one.
func GetZstdDecoder() *zstd.Decoder {
	if v := zstdDecoders.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

// PutZstdDecoder returns a decoder to the pool.
func PutZstdDecoder(dec *zstd.Decoder) {
	if dec == nil {
		return
	}
	zstdDecoders.Put(dec)
}
