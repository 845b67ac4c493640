// Package bitstream provides LSB-first bit-level writing and reading over
// caller-owned byte slices.
//
// Bits are packed least-significant first: the first bit written becomes
// bit 0 of byte 0. The writer never grows its buffer; exceeding the
// destination capacity is reported by Writer.Err.
package bitstream
