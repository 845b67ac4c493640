package statevec

import (
	"context"
	"io"

	"github.com/hupe1980/cmem"
	"github.com/hupe1980/cmem/codec"
	"github.com/hupe1980/cmem/internal/mem"
)

type compressed struct {
	mem *cmem.Memory
	wb  *cmem.WorkBuffer
}

func newCompressed(cfg cmem.Config, nBlocks int, opts []cmem.Option) (*compressed, error) {
	m, err := cfg.NewMemory(nBlocks, opts...)
	if err != nil {
		return nil, err
	}
	wb, err := cfg.NewWorkBuffer()
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return &compressed{mem: m, wb: wb}, nil
}

func (c *compressed) get(i int64) (float64, error) { return c.mem.Get(c.wb, cmem.Index(i)) }

func (c *compressed) set(i int64, v float64) error { return c.mem.Set(c.wb, cmem.Index(i), v) }

func (c *compressed) flush() error { return c.mem.Flush(c.wb) }

func (c *compressed) dump(ctx context.Context, w io.Writer) error { return c.mem.Dump(ctx, w, c.wb) }

func (c *compressed) stats() cmem.Stats { return c.mem.Stats() }

func (c *compressed) close() error { return c.mem.Close() }

// plain is the uncompressed component.
type plain struct {
	data   []float64
	closed bool
}

// dumpChunk is the number of values encoded per write.
const dumpChunk = 4096

func newPlain(n int) *plain {
	return &plain{data: mem.AllocAlignedFloat64(n)}
}

func (p *plain) get(i int64) (float64, error) {
	if p.closed {
		return 0, cmem.ErrClosed
	}
	return p.data[i], nil
}

func (p *plain) set(i int64, v float64) error {
	if p.closed {
		return cmem.ErrClosed
	}
	p.data[i] = v
	return nil
}

func (p *plain) flush() error {
	if p.closed {
		return cmem.ErrClosed
	}
	return nil
}

func (p *plain) dump(ctx context.Context, w io.Writer) error {
	if p.closed {
		return cmem.ErrClosed
	}
	buf := make([]byte, min(len(p.data), dumpChunk)*codec.BytesPerValue)
	for off := 0; off < len(p.data); off += dumpChunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := codec.PutFloats(buf, p.data[off:min(off+dumpChunk, len(p.data))])
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
	}
	return nil
}

func (p *plain) stats() cmem.Stats { return cmem.Stats{} }

func (p *plain) close() error {
	p.data = nil
	p.closed = true
	return nil
}
