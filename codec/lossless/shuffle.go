package lossless

import "github.com/hupe1980/cmem/codec"

// shuffle transposes src, a sequence of 8-byte values, into byte planes:
// all first bytes, then all second bytes, and so on.
func shuffle(dst, src []byte) {
	n := len(src) / codec.BytesPerValue
	for i := 0; i < n; i++ {
		for b := 0; b < codec.BytesPerValue; b++ {
			dst[b*n+i] = src[i*codec.BytesPerValue+b]
		}
	}
}

func unshuffle(dst, src []byte) {
	n := len(src) / codec.BytesPerValue
	for i := 0; i < n; i++ {
		for b := 0; b < codec.BytesPerValue; b++ {
			dst[i*codec.BytesPerValue+b] = src[b*n+i]
		}
	}
}
