package cmem

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/cmem/codec"
	"github.com/hupe1980/cmem/internal/resource"
)

// Dump writes every logical value to w once, in flat index order, as raw
// little-endian float64 without a header.
//
// The resident buffers of wb are flushed first; each block is then loaded
// through wb and released again without a write-back. The dump is throttled
// by WithDumpRateLimit and stops between blocks when ctx is done.
func (m *Memory) Dump(ctx context.Context, w io.Writer, wb *WorkBuffer) error {
	if m.closed {
		return ErrClosed
	}
	if w == nil || wb == nil {
		return contractErr("dump", -1, codec.ErrNilBuffer)
	}
	if wb.valuesPerBlock != m.valuesPerBlock {
		return contractErr("dump", -1, errGeometry)
	}
	if err := m.Flush(wb); err != nil {
		return err
	}

	var written int64
	err := m.dump(ctx, resource.NewRateLimitedWriter(ctx, w, m.rc), wb, &written)
	m.logger.LogDump(ctx, m.nBlocks, written, err)
	return err
}

func (m *Memory) dump(ctx context.Context, w io.Writer, wb *WorkBuffer, written *int64) error {
	s := wb.slots[wb.lru.Victim()]
	buf := make([]byte, m.valuesPerBlock*codec.BytesPerValue)

	for i := 0; i < m.nBlocks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Load(i, s); err != nil {
			return err
		}
		n := codec.PutFloats(buf, s.Values())
		s.inUse = false

		k, err := w.Write(buf[:n])
		*written += int64(k)
		if err != nil {
			return fmt.Errorf("dump block %d: %w", i, err)
		}
	}
	return nil
}
