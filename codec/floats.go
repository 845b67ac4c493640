package codec

import (
	"encoding/binary"
	"math"
)

// BytesPerValue is the raw width of one float64 element.
const BytesPerValue = 8

// PutFloats writes src as little-endian float64 bits into dst.
// dst must hold at least len(src)*BytesPerValue bytes.
func PutFloats(dst []byte, src []float64) int {
	for i, v := range src {
		binary.LittleEndian.PutUint64(dst[i*BytesPerValue:], math.Float64bits(v))
	}
	return len(src) * BytesPerValue
}

// Floats reads little-endian float64 bits from src into dst.
// src must hold at least len(dst)*BytesPerValue bytes.
func Floats(dst []float64, src []byte) {
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[i*BytesPerValue:]))
	}
}
