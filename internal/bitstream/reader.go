package bitstream

// Reader unpacks bits written by Writer.
//
// Reading past the end of the buffer yields zero bits and marks the
// reader as overrun.
type Reader struct {
	buf     []byte
	pos     int
	acc     uint64
	n       uint // bits left in acc, <= 8
	overrun bool
}

// NewReader returns a Reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() bool {
	return r.ReadBits(1) != 0
}

// ReadBits reads n bits (n <= 64), least significant first.
func (r *Reader) ReadBits(n int) uint64 {
	var v uint64
	var got uint
	for got < uint(n) {
		if r.n == 0 {
			r.refill()
		}
		take := min(uint(n)-got, r.n)
		v |= (r.acc & ((uint64(1) << take) - 1)) << got
		r.acc >>= take
		r.n -= take
		got += take
	}
	return v
}

// Skip discards n bits.
func (r *Reader) Skip(n int) {
	for n >= 64 {
		r.ReadBits(64)
		n -= 64
	}
	r.ReadBits(n)
}

// Overrun reports whether a read went past the end of the buffer.
func (r *Reader) Overrun() bool { return r.overrun }

func (r *Reader) refill() {
	r.n = 8
	if r.pos >= len(r.buf) {
		r.acc = 0
		r.overrun = true
		return
	}
	r.acc = uint64(r.buf[r.pos])
	r.pos++
}
