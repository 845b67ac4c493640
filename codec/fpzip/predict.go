package fpzip

import (
	"encoding/binary"
	"math"

	"github.com/hupe1980/cmem/codec"
)

func (s shape) predict(f []float64, i int) float64 {
	return s.lorenzo(i, func(j int) float64 { return f[j] })
}

func (s shape) predictBytes(b []byte, i int) float64 {
	return s.lorenzo(i, func(j int) float64 {
		return math.Float64frombits(binary.LittleEndian.Uint64(b[j*codec.BytesPerValue:]))
	})
}

// lorenzo evaluates the Lorenzo predictor at flat position i. Neighbours
// outside the block contribute zero. Both encoder and decoder go through
// this function so the floating-point evaluation order is identical.
func (s shape) lorenzo(i int, at func(int) float64) float64 {
	x := i % s.nx
	y := (i / s.nx) % s.ny
	z := i / (s.nx * s.ny)
	sx, sy, sz := 1, s.nx, s.nx*s.ny

	var p float64
	if x > 0 {
		p += at(i - sx)
	}
	if y > 0 {
		p += at(i - sy)
	}
	if z > 0 {
		p += at(i - sz)
	}
	if x > 0 && y > 0 {
		p -= at(i - sx - sy)
	}
	if x > 0 && z > 0 {
		p -= at(i - sx - sz)
	}
	if y > 0 && z > 0 {
		p -= at(i - sy - sz)
	}
	if x > 0 && y > 0 && z > 0 {
		p += at(i - sx - sy - sz)
	}
	return p
}
