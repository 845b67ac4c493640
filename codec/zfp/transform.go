package zfp

import "github.com/hupe1980/cmem/internal/bitstream"

// fwdLift is the non-orthogonal decorrelating transform applied to a
// block of quantized values.
func fwdLift(p *[blockSize]int64) {
	x, y, z, w := p[0], p[1], p[2], p[3]

	x += w
	x >>= 1
	w -= x
	z += y
	z >>= 1
	y -= z
	x += z
	x >>= 1
	z -= x
	w += y
	w >>= 1
	y -= w
	w += y >> 1
	y -= w >> 1

	p[0], p[1], p[2], p[3] = x, y, z, w
}

// invLift inverts fwdLift up to the bits shifted out.
func invLift(p *[blockSize]int64) {
	x, y, z, w := p[0], p[1], p[2], p[3]

	y += w >> 1
	w -= y >> 1
	y += w
	w <<= 1
	w -= y
	z += x
	x <<= 1
	x -= z
	y += z
	z <<= 1
	z -= y
	w += x
	x <<= 1
	x -= w

	p[0], p[1], p[2], p[3] = x, y, z, w
}

// revFwdLift is the integer-exact forward difference transform used by the
// reversible mode. Wrapping arithmetic keeps it bijective.
func revFwdLift(p *[blockSize]int64) {
	x, y, z, w := p[0], p[1], p[2], p[3]

	w -= z
	z -= y
	y -= x
	w -= z
	z -= y
	w -= z

	p[0], p[1], p[2], p[3] = x, y, z, w
}

func revInvLift(p *[blockSize]int64) {
	x, y, z, w := p[0], p[1], p[2], p[3]

	w += z
	z += y
	w += z
	y += x
	z += y
	w += z

	p[0], p[1], p[2], p[3] = x, y, z, w
}

// encodeInts emits bit planes top-1 down to kmin of data using group
// testing, spending at most maxBits bits. It returns the bits written.
func encodeInts(w *bitstream.Writer, maxBits, top, kmin int, data *[blockSize]uint64) int {
	budget := maxBits
	n := 0
	for k := top; budget > 0 && k > kmin; {
		k--

		var x uint64
		for i := 0; i < blockSize; i++ {
			x += ((data[i] >> uint(k)) & 1) << uint(i)
		}

		// values already known to be significant are sent verbatim
		m := min(n, budget)
		budget -= m
		x = w.WriteBits(x, m)

		// unary run-length code the rest of the plane
		for n < blockSize && budget > 0 {
			budget--
			if !w.WriteBit(x != 0) {
				break
			}
			for n < blockSize-1 && budget > 0 {
				budget--
				if w.WriteBit(x&1 != 0) {
					break
				}
				x >>= 1
				n++
			}
			x >>= 1
			n++
		}
	}
	return maxBits - budget
}

// decodeInts mirrors encodeInts bit for bit.
func decodeInts(r *bitstream.Reader, maxBits, top, kmin int, data *[blockSize]uint64) int {
	*data = [blockSize]uint64{}

	budget := maxBits
	n := 0
	for k := top; budget > 0 && k > kmin; {
		k--

		m := min(n, budget)
		budget -= m
		x := r.ReadBits(m)

		for n < blockSize && budget > 0 {
			budget--
			if !r.ReadBit() {
				break
			}
			for n < blockSize-1 && budget > 0 {
				budget--
				if r.ReadBit() {
					break
				}
				n++
			}
			x += uint64(1) << uint(n)
			n++
		}

		for i := 0; x != 0; i, x = i+1, x>>1 {
			data[i] += (x & 1) << uint(k)
		}
	}
	return maxBits - budget
}
