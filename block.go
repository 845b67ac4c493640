package cmem

// compressedBlock is the at-rest storage of one logical block.
//
// cap(data) is the reserved capacity and size the number of bytes in use.
// data is nil until storage is reserved: at construction in fixed mode, on
// the first save in dynamic mode.
type compressedBlock struct {
	nValues int
	size    int
	data    []byte
}

func (b *compressedBlock) capacity() int { return cap(b.data) }

func (b *compressedBlock) bytes() []byte { return b.data[:b.size] }

// reserve makes room for n bytes, reallocating only when growing past the
// current capacity. A shrinking block keeps its buffer.
func (b *compressedBlock) reserve(n int) {
	if b.data != nil && n <= cap(b.data) {
		b.data = b.data[:cap(b.data)]
		return
	}
	b.data = make([]byte, n)
}
