package bitstream

import "errors"

// ErrOverflow is returned when a write exceeds the destination capacity.
var ErrOverflow = errors.New("bitstream: destination overflow")

// Writer packs bits into a fixed destination slice.
type Writer struct {
	buf  []byte
	pos  int
	acc  uint64
	n    uint // bits buffered in acc, always < 64
	bits int
	err  error
}

// NewWriter returns a Writer that writes into buf.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// WriteBit writes a single bit and returns it.
func (w *Writer) WriteBit(b bool) bool {
	var v uint64
	if b {
		v = 1
	}
	w.WriteBits(v, 1)
	return b
}

// WriteBits writes the low n bits of x (n <= 64) and returns x >> n.
func (w *Writer) WriteBits(x uint64, n int) uint64 {
	if n <= 0 {
		return x
	}
	v := x
	if n < 64 {
		v &= (uint64(1) << uint(n)) - 1
	}
	w.acc |= v << w.n
	free := 64 - w.n
	if uint(n) >= free {
		w.emit(w.acc)
		w.acc = v >> free
		w.n = uint(n) - free
	} else {
		w.n += uint(n)
	}
	w.bits += n
	if n >= 64 {
		return 0
	}
	return x >> uint(n)
}

// Pad writes n zero bits.
func (w *Writer) Pad(n int) {
	for n >= 64 {
		w.WriteBits(0, 64)
		n -= 64
	}
	w.WriteBits(0, n)
}

// Bits returns the number of bits written so far.
func (w *Writer) Bits() int { return w.bits }

// Err returns the first overflow error, if any.
func (w *Writer) Err() error { return w.err }

// Flush writes any buffered bits and returns the number of bytes used.
func (w *Writer) Flush() (int, error) {
	for w.n > 0 {
		w.put(byte(w.acc))
		w.acc >>= 8
		if w.n >= 8 {
			w.n -= 8
		} else {
			w.n = 0
		}
	}
	return w.pos, w.err
}

func (w *Writer) emit(word uint64) {
	for i := 0; i < 8; i++ {
		w.put(byte(word >> (8 * uint(i))))
	}
}

func (w *Writer) put(b byte) {
	if w.pos >= len(w.buf) {
		w.err = ErrOverflow
		return
	}
	w.buf[w.pos] = b
	w.pos++
}
