package cmem

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/cmem/codec"
	"github.com/hupe1980/cmem/internal/conv"
	"github.com/hupe1980/cmem/internal/resource"
)

// Memory is the compressed block cache controller.
//
// It owns the codec and the at-rest storage of nBlocks logical blocks of
// valuesPerBlock values each. Block i covers flat indices
// [i*valuesPerBlock, (i+1)*valuesPerBlock).
//
// Memory is not safe for concurrent use. Every WorkBuffer driven against it
// must be used from the goroutine that owns the Memory.
type Memory struct {
	codec          codec.Codec
	nBlocks        int
	valuesPerBlock int
	maxBlockBytes  int
	dynamic        bool

	blocks  []compressedBlock
	scratch []byte // compression staging area
	written *roaring.Bitmap

	rc      *resource.Controller
	logger  *Logger
	metrics MetricsCollector
	closed  bool
}

// New creates a cache of nBlocks blocks of valuesPerBlock values bound to c.
//
// The worst-case block size is computed once and a staging buffer of that
// size is reserved. In fixed mode every block is also reserved at that size
// up front; with WithDynamicSizing blocks start empty. Invalid geometry,
// a codec that rejects the block size, or a reservation beyond the memory
// limit fail before anything is allocated.
func New(c codec.Codec, nBlocks, valuesPerBlock int, optFns ...Option) (*Memory, error) {
	if c == nil {
		return nil, &ConfigError{Field: "codec", Value: nil, Reason: "must not be nil"}
	}
	if nBlocks <= 0 || uint64(nBlocks) > math.MaxUint32 {
		return nil, &ConfigError{Field: "n_blocks", Value: nBlocks, Reason: fmt.Sprintf("must be in [1, %d]", uint32(math.MaxUint32))}
	}
	if valuesPerBlock <= 0 {
		return nil, &ConfigError{Field: "values_per_block", Value: valuesPerBlock, Reason: "must be positive"}
	}
	if _, err := conv.MulInt(nBlocks, valuesPerBlock); err != nil {
		return nil, &ConfigError{Field: "n_blocks", Value: nBlocks, Reason: "geometry overflows", cause: err}
	}
	if bc, ok := c.(codec.BlockChecker); ok {
		if err := bc.CheckBlock(valuesPerBlock); err != nil {
			return nil, &ConfigError{Field: "values_per_block", Value: valuesPerBlock, Reason: "rejected by codec", cause: err}
		}
	}

	o := applyOptions(optFns)

	maxBlockBytes := c.MaxSize(valuesPerBlock)
	if maxBlockBytes <= 0 {
		return nil, &ConfigError{Field: "codec", Value: c.Name(), Reason: "reports a non-positive block bound"}
	}

	reserve := maxBlockBytes
	if !o.dynamic {
		// Every block plus the staging buffer.
		total, err := conv.MulInt(nBlocks+1, maxBlockBytes)
		if err != nil {
			return nil, &ConfigError{Field: "n_blocks", Value: nBlocks, Reason: "reservation overflows", cause: err}
		}
		reserve = total
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		IOLimitBytesPerSec: o.dumpRateLimit,
	})
	if err := rc.AcquireMemory(int64(reserve)); err != nil {
		return nil, fmt.Errorf("%w: reserving %d bytes: %w", ErrMemoryLimit, reserve, err)
	}

	m := &Memory{
		codec:          c,
		nBlocks:        nBlocks,
		valuesPerBlock: valuesPerBlock,
		maxBlockBytes:  maxBlockBytes,
		dynamic:        o.dynamic,
		blocks:         make([]compressedBlock, nBlocks),
		written:        roaring.New(),
		rc:             rc,
		logger:         o.logger.WithCodec(c.Name()),
		metrics:        o.metricsCollector,
	}

	for i := range m.blocks {
		m.blocks[i].nValues = valuesPerBlock
	}
	m.scratch = make([]byte, maxBlockBytes)
	if !m.dynamic {
		// One backing array keeps the fixed reservation a single allocation.
		arena := make([]byte, nBlocks*maxBlockBytes)
		for i := range m.blocks {
			off := i * maxBlockBytes
			m.blocks[i].data = arena[off : off+maxBlockBytes : off+maxBlockBytes]
		}
	}

	m.logger.LogAllocate(context.Background(), nBlocks, valuesPerBlock, maxBlockBytes, m.dynamic)

	return m, nil
}

// Codec returns the bound codec.
func (m *Memory) Codec() codec.Codec { return m.codec }

// NumBlocks returns the number of logical blocks.
func (m *Memory) NumBlocks() int { return m.nBlocks }

// ValuesPerBlock returns the number of values per logical block.
func (m *Memory) ValuesPerBlock() int { return m.valuesPerBlock }

// Len returns the number of addressable values.
func (m *Memory) Len() int64 { return int64(m.nBlocks) * int64(m.valuesPerBlock) }

// MaxBlockBytes returns the codec's worst-case compressed block size.
func (m *Memory) MaxBlockBytes() int { return m.maxBlockBytes }

// Dynamic reports whether blocks are stored at their exact compressed size.
func (m *Memory) Dynamic() bool { return m.dynamic }

// Save writes the working buffer back to the at-rest storage of the block it
// mirrors and marks it not in use.
//
// Saving a buffer that is not in use is a no-op. On error neither the
// at-rest block nor the working buffer is modified.
func (m *Memory) Save(b *DecompressedBlock) error {
	if m.closed {
		return ErrClosed
	}
	if b == nil {
		return contractErr("save", -1, codec.ErrNilBuffer)
	}
	if !b.inUse {
		m.logger.Warn("save of a working buffer that is not in use")
		return nil
	}
	if b.block < 0 || b.block >= m.nBlocks || b.nValues != m.valuesPerBlock {
		return contractErr("save", b.block, errGeometry)
	}

	start := time.Now()
	size, err := m.save(b)
	d := time.Since(start)

	m.metrics.RecordSave(b.block, size, d, err)
	m.logger.LogSave(context.Background(), b.block, size, d, err)
	if err != nil {
		return err
	}

	m.written.Add(uint32(b.block))
	b.inUse = false
	return nil
}

func (m *Memory) save(b *DecompressedBlock) (int, error) {
	blk := &m.blocks[b.block]
	src := b.Values()

	// At-rest bytes change only after Compress succeeds.
	n, err := m.codec.Compress(m.scratch, src)
	if err != nil {
		return 0, contractErr("save", b.block, err)
	}
	if !m.dynamic {
		blk.size = copy(blk.data, m.scratch[:n])
		return n, nil
	}
	if grow := n - blk.capacity(); grow > 0 {
		if err := m.rc.AcquireMemory(int64(grow)); err != nil {
			return 0, fmt.Errorf("%w: block %d needs %d more bytes: %w", ErrMemoryLimit, b.block, grow, err)
		}
	}
	blk.reserve(n)
	blk.size = copy(blk.data, m.scratch[:n])
	return n, nil
}

// Load materializes block i in the working buffer b and marks it in use.
//
// A block that has never been saved reads as zeros. b must not be in use;
// callers write it back with Save first.
func (m *Memory) Load(i int, b *DecompressedBlock) error {
	if m.closed {
		return ErrClosed
	}
	if b == nil {
		return contractErr("load", i, codec.ErrNilBuffer)
	}
	if i < 0 || i >= m.nBlocks {
		return &IndexError{Index: Index(int64(i) * int64(m.valuesPerBlock)), Block: i}
	}
	if b.inUse {
		return contractErr("load", i, fmt.Errorf("%w: block %d", errBlockInUse, b.block))
	}
	if b.Cap() < m.valuesPerBlock {
		return contractErr("load", i, errGeometry)
	}

	start := time.Now()
	zeroFill, err := m.load(i, b.data[:m.valuesPerBlock])
	d := time.Since(start)

	m.metrics.RecordLoad(i, zeroFill, d, err)
	m.logger.LogLoad(context.Background(), i, zeroFill, d, err)
	if err != nil {
		return err
	}

	b.block = i
	b.nValues = m.valuesPerBlock
	b.inUse = true
	return nil
}

func (m *Memory) load(i int, dst []float64) (bool, error) {
	if !m.written.Contains(uint32(i)) {
		clear(dst)
		return true, nil
	}

	blk := &m.blocks[i]
	if blk.data == nil {
		return false, contractErr("load", i, errMissing)
	}
	if err := m.codec.Decompress(dst, blk.bytes()); err != nil {
		return false, contractErr("load", i, err)
	}
	return false, nil
}

// Flush writes back every working buffer of wb that is in use.
func (m *Memory) Flush(wb *WorkBuffer) error {
	if m.closed {
		return ErrClosed
	}
	if wb == nil {
		return contractErr("flush", -1, codec.ErrNilBuffer)
	}
	var errs []error
	for _, s := range wb.slots {
		if s.inUse {
			if err := m.Save(s); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// CompressedSize returns the number of bytes block i occupies at rest. It is
// 0 for a block that has never been saved.
func (m *Memory) CompressedSize(i int) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	if i < 0 || i >= m.nBlocks {
		return 0, &IndexError{Index: Index(int64(i) * int64(m.valuesPerBlock)), Block: i}
	}
	if !m.written.Contains(uint32(i)) {
		return 0, nil
	}
	return m.blocks[i].size, nil
}

// Written reports whether block i has been saved at least once.
func (m *Memory) Written(i int) bool {
	return i >= 0 && i < m.nBlocks && m.written.Contains(uint32(i))
}

// Stats is a snapshot of the cache's storage.
type Stats struct {
	Blocks         int
	ValuesPerBlock int
	MaxBlockBytes  int
	Dynamic        bool

	// WrittenBlocks is the number of blocks saved at least once.
	WrittenBlocks int
	// AtRestBytes is the sum of the compressed sizes of written blocks.
	AtRestBytes int64
	// ReservedBytes is the storage held by block buffers and the staging area.
	ReservedBytes int64
	// RawBytes is the uncompressed size of the written blocks.
	RawBytes int64
}

// CompressionRatio returns RawBytes / AtRestBytes, or 0 if nothing is stored.
func (s Stats) CompressionRatio() float64 {
	if s.AtRestBytes == 0 {
		return 0
	}
	return float64(s.RawBytes) / float64(s.AtRestBytes)
}

// Stats returns a snapshot of the storage counters.
func (m *Memory) Stats() Stats {
	s := Stats{
		Blocks:         m.nBlocks,
		ValuesPerBlock: m.valuesPerBlock,
		MaxBlockBytes:  m.maxBlockBytes,
		Dynamic:        m.dynamic,
		WrittenBlocks:  int(m.written.GetCardinality()),
		ReservedBytes:  m.rc.MemoryUsage(),
	}
	it := m.written.Iterator()
	for it.HasNext() {
		s.AtRestBytes += int64(m.blocks[it.Next()].size)
	}
	s.RawBytes = int64(s.WrittenBlocks) * int64(m.valuesPerBlock) * codec.BytesPerValue
	return s
}

// Close releases all at-rest storage. Working buffers are owned by their
// WorkBuffer and are not touched; unsaved values in them are discarded.
// Close is idempotent.
func (m *Memory) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.rc.ReleaseMemory(m.rc.MemoryUsage())
	m.blocks = nil
	m.scratch = nil
	m.written.Clear()
	return nil
}
