package cmem

import (
	"github.com/hupe1980/cmem/internal/mem"
	"github.com/hupe1980/cmem/internal/slot"
)

// DecompressedBlock is a working buffer: the raw values of at most one
// logical block, tagged with the block it mirrors.
type DecompressedBlock struct {
	nValues int
	block   int
	inUse   bool
	data    []float64
}

func newDecompressedBlock(capacity int) *DecompressedBlock {
	return &DecompressedBlock{data: mem.AllocAlignedFloat64(capacity)}
}

// Block returns the logical block the buffer mirrors. It is meaningful only
// while InUse reports true.
func (b *DecompressedBlock) Block() int { return b.block }

// InUse reports whether the buffer holds live data.
func (b *DecompressedBlock) InUse() bool { return b.inUse }

// Len returns the number of live values.
func (b *DecompressedBlock) Len() int { return b.nValues }

// Cap returns the capacity in values.
func (b *DecompressedBlock) Cap() int { return len(b.data) }

// Values returns the live values. The slice aliases the buffer and is valid
// until the next access through the owning WorkBuffer.
func (b *DecompressedBlock) Values() []float64 { return b.data[:b.nValues] }

func (b *DecompressedBlock) mirrors(block int) bool {
	return b.inUse && b.block == block
}

// WorkBuffer is the caller-facing handle over one or two working buffers.
// With two buffers (double buffering) accesses alternating between two
// neighbouring blocks do not trigger a write-back and reload each time.
//
// A WorkBuffer must be driven by a single goroutine and always be passed
// together with the same Memory.
type WorkBuffer struct {
	valuesPerBlock int
	slots          []*DecompressedBlock
	lru            slot.Policy
}

// NewWorkBuffer allocates the working buffers for blocks of valuesPerBlock
// values.
func NewWorkBuffer(valuesPerBlock int, doubleBuffered bool) (*WorkBuffer, error) {
	if valuesPerBlock <= 0 {
		return nil, &ConfigError{Field: "values_per_block", Value: valuesPerBlock, Reason: "must be positive"}
	}

	n := 1
	if doubleBuffered {
		n = 2
	}

	wb := &WorkBuffer{
		valuesPerBlock: valuesPerBlock,
		slots:          make([]*DecompressedBlock, n),
		lru:            slot.New(n),
	}
	for i := range wb.slots {
		wb.slots[i] = newDecompressedBlock(valuesPerBlock)
	}
	return wb, nil
}

// ValuesPerBlock returns the block size the buffers were sized for.
func (wb *WorkBuffer) ValuesPerBlock() int { return wb.valuesPerBlock }

// DoubleBuffered reports whether two working buffers are available.
func (wb *WorkBuffer) DoubleBuffered() bool { return len(wb.slots) == 2 }

// Len returns the number of working buffers.
func (wb *WorkBuffer) Len() int { return len(wb.slots) }

// Slot returns working buffer i.
func (wb *WorkBuffer) Slot(i int) *DecompressedBlock { return wb.slots[i] }

// Resident returns the working buffer mirroring block, or nil.
func (wb *WorkBuffer) Resident(block int) *DecompressedBlock {
	if i := wb.find(block); i >= 0 {
		return wb.slots[i]
	}
	return nil
}

func (wb *WorkBuffer) find(block int) int {
	for i, s := range wb.slots {
		if s.mirrors(block) {
			return i
		}
	}
	return -1
}
