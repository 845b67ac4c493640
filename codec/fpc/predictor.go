package fpc

import (
	"math"
	"math/bits"
)

// predictor is the per-block FCM/DFCM state.
type predictor struct {
	fcm, dfcm         []uint64
	mask              uint64
	fcmHash, dfcmHash uint64
	last              uint64
}

// tableLevel is the table size used for a block of n values: the configured
// level, capped at between four and eight entries per value.
func (c *Codec) tableLevel(n int) int {
	return min(c.cfg.Level, bits.Len(uint(n))+2)
}

// reset prepares cleared tables sized for a block of n values. Encoder and
// decoder see the same n, so both pick the same size.
func (c *Codec) reset(n int) *predictor {
	size := 1 << c.tableLevel(n)
	if cap(c.fcm) < size {
		c.fcm = make([]uint64, size)
		c.dfcm = make([]uint64, size)
	}
	fcm, dfcm := c.fcm[:size], c.dfcm[:size]
	clear(fcm)
	clear(dfcm)
	return &predictor{fcm: fcm, dfcm: dfcm, mask: uint64(size - 1)}
}

func (p *predictor) predict() (fcm, dfcm uint64) {
	return p.fcm[p.fcmHash], p.dfcm[p.dfcmHash] + p.last
}

func (p *predictor) update(bits uint64) {
	p.fcm[p.fcmHash] = bits
	p.fcmHash = ((p.fcmHash << 6) ^ (bits >> 48)) & p.mask

	stride := bits - p.last
	p.dfcm[p.dfcmHash] = stride
	p.dfcmHash = ((p.dfcmHash << 2) ^ (stride >> 40)) & p.mask
	p.last = bits
}

func floatBits(v float64) uint64 { return math.Float64bits(v) }

func floatFrom(b uint64) float64 { return math.Float64frombits(b) }
