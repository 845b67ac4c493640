package cmem

import (
	"context"

	"github.com/hupe1980/cmem/codec"
	"github.com/hupe1980/cmem/internal/conv"
)

// Index is a flat index into the logical array.
type Index int64

// Locate splits i into its block and the offset inside that block. The
// block id is truncated to int; callers bounds-check i first.
func (i Index) Locate(valuesPerBlock int) (block, offset int) {
	v := Index(valuesPerBlock)
	b := i / v
	return int(b), int(i - b*v)
}

// Get returns the value at flat index idx, loading its block into wb if it
// is not resident.
//
// An index outside the cache returns 0 and an *IndexError; the cache and wb
// are left untouched.
func (m *Memory) Get(wb *WorkBuffer, idx Index) (float64, error) {
	b, off, err := m.resident(wb, idx)
	if err != nil {
		return 0, err
	}
	return b.data[off], nil
}

// Set stores v at flat index idx in the resident working buffer. The value
// reaches at-rest storage when its buffer is evicted, flushed or dumped.
func (m *Memory) Set(wb *WorkBuffer, idx Index, v float64) error {
	b, off, err := m.resident(wb, idx)
	if err != nil {
		return err
	}
	b.data[off] = v
	return nil
}

// resident makes the block holding idx resident in wb and returns the
// working buffer and the offset of idx inside it.
//
// A hit on either slot is used as is. On a miss the slot not used last is
// written back (every resident block is treated as dirty) and reloaded.
func (m *Memory) resident(wb *WorkBuffer, idx Index) (*DecompressedBlock, int, error) {
	if m.closed {
		return nil, 0, ErrClosed
	}
	if wb == nil {
		return nil, 0, contractErr("access", -1, codec.ErrNilBuffer)
	}
	if wb.valuesPerBlock != m.valuesPerBlock {
		return nil, 0, contractErr("access", -1, errGeometry)
	}

	if !m.inRange(idx) {
		return nil, 0, m.outOfRange(idx)
	}
	block, off := idx.Locate(m.valuesPerBlock)

	if i := wb.find(block); i >= 0 {
		m.metrics.RecordHit()
		wb.lru.Touch(i)
		return m.checkOffset(wb.slots[i], idx, block, off)
	}

	m.metrics.RecordMiss()
	i := wb.lru.Victim()
	s := wb.slots[i]
	if s.inUse {
		if err := m.Save(s); err != nil {
			return nil, 0, err
		}
	}
	if err := m.Load(block, s); err != nil {
		return nil, 0, err
	}
	wb.lru.Touch(i)
	return m.checkOffset(s, idx, block, off)
}

func (m *Memory) checkOffset(b *DecompressedBlock, idx Index, block, off int) (*DecompressedBlock, int, error) {
	if off < 0 || off >= b.nValues {
		return nil, 0, m.indexErr(&IndexError{Index: idx, Block: block, Offset: off})
	}
	return b, off, nil
}

// inRange compares in int64 so that a huge index cannot wrap to a valid
// block id where int is 32 bits.
func (m *Memory) inRange(idx Index) bool {
	return idx >= 0 && int64(idx)/int64(m.valuesPerBlock) < int64(m.nBlocks)
}

func (m *Memory) outOfRange(idx Index) error {
	v := int64(m.valuesPerBlock)
	block, err := conv.Int64ToInt(int64(idx) / v)
	if err != nil {
		block = -1
	}
	return m.indexErr(&IndexError{Index: idx, Block: block, Offset: int(int64(idx) % v)})
}

func (m *Memory) indexErr(err *IndexError) error {
	m.metrics.RecordOutOfRange()
	m.logger.LogOutOfRange(context.Background(), err)
	return err
}
