// Package statevec backs the real and imaginary components of a numerical
// state vector with compressed memory.
//
// Each component is an independent (Memory, WorkBuffer) pair with its own
// codec instance. With compression disabled the components are plain
// arrays and every call indexes them directly.
//
// A StateVec must be driven by a single goroutine. Flush and Close work on
// both components concurrently, which is safe because the pairs share
// nothing.
package statevec

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cmem"
	"github.com/hupe1980/cmem/internal/conv"
)

// component is the flat array of one part (real or imaginary) of every amplitude.
type component interface {
	get(i int64) (float64, error)
	set(i int64, v float64) error
	flush() error
	dump(ctx context.Context, w io.Writer) error
	stats() cmem.Stats
	close() error
}

// StateVec holds numAmps complex amplitudes as two float64 components.
type StateVec struct {
	numAmps    int64
	compressed bool
	real       component
	imag       component
}

// New allocates a state vector of numAmps amplitudes configured by cfg.
//
// The block size is clamped to numAmps; numAmps must then be a multiple of
// it so that dumps contain exactly numAmps values per component. opts are
// applied to both caches after the options implied by cfg.
func New(numAmps int64, cfg cmem.Config, opts ...cmem.Option) (*StateVec, error) {
	if numAmps <= 0 {
		return nil, &cmem.ConfigError{Field: "num_amps", Value: numAmps, Reason: "must be positive"}
	}
	n, err := conv.Int64ToInt(numAmps)
	if err != nil {
		return nil, &cmem.ConfigError{Field: "num_amps", Value: numAmps, Reason: err.Error()}
	}

	if cfg.Disabled {
		return &StateVec{
			numAmps: numAmps,
			real:    newPlain(n),
			imag:    newPlain(n),
		}, nil
	}

	if int64(cfg.ValuesPerBlock) > numAmps {
		cfg.ValuesPerBlock = n
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if numAmps%int64(cfg.ValuesPerBlock) != 0 {
		return nil, &cmem.ConfigError{
			Field:  "values_per_block",
			Value:  cfg.ValuesPerBlock,
			Reason: fmt.Sprintf("does not divide %d amplitudes", numAmps),
		}
	}
	nBlocks, err := conv.Int64ToInt(conv.CeilDiv(numAmps, int64(cfg.ValuesPerBlock)))
	if err != nil {
		return nil, &cmem.ConfigError{Field: "num_amps", Value: numAmps, Reason: err.Error()}
	}

	re, err := newCompressed(cfg, nBlocks, opts)
	if err != nil {
		return nil, err
	}
	im, err := newCompressed(cfg, nBlocks, opts)
	if err != nil {
		_ = re.close()
		return nil, err
	}

	return &StateVec{
		numAmps:    numAmps,
		compressed: true,
		real:       re,
		imag:       im,
	}, nil
}

// NumAmps returns the number of amplitudes.
func (s *StateVec) NumAmps() int64 { return s.numAmps }

// Compressed reports whether the components are backed by compressed memory.
func (s *StateVec) Compressed() bool { return s.compressed }

// Real returns the real part of amplitude i.
func (s *StateVec) Real(i int64) (float64, error) {
	if err := s.check(i); err != nil {
		return 0, err
	}
	return s.real.get(i)
}

// Imag returns the imaginary part of amplitude i.
func (s *StateVec) Imag(i int64) (float64, error) {
	if err := s.check(i); err != nil {
		return 0, err
	}
	return s.imag.get(i)
}

// Amp returns amplitude i.
func (s *StateVec) Amp(i int64) (complex128, error) {
	re, err := s.Real(i)
	if err != nil {
		return 0, err
	}
	im, err := s.imag.get(i)
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}

// SetReal sets the real part of amplitude i.
func (s *StateVec) SetReal(i int64, v float64) error {
	if err := s.check(i); err != nil {
		return err
	}
	return s.real.set(i, v)
}

// SetImag sets the imaginary part of amplitude i.
func (s *StateVec) SetImag(i int64, v float64) error {
	if err := s.check(i); err != nil {
		return err
	}
	return s.imag.set(i, v)
}

// SetAmp sets amplitude i.
func (s *StateVec) SetAmp(i int64, v complex128) error {
	if err := s.SetReal(i, real(v)); err != nil {
		return err
	}
	return s.imag.set(i, imag(v))
}

// InitBlank sets every amplitude to zero.
func (s *StateVec) InitBlank() error {
	for i := range s.numAmps {
		if err := s.SetAmp(i, 0); err != nil {
			return err
		}
	}
	return nil
}

// InitClassical sets the state to the basis state idx: amplitude idx is 1
// and all others are 0.
func (s *StateVec) InitClassical(idx int64) error {
	if err := s.check(idx); err != nil {
		return err
	}
	if err := s.InitBlank(); err != nil {
		return err
	}
	return s.SetReal(idx, 1)
}

// Flush writes back the resident blocks of both components.
func (s *StateVec) Flush() error {
	var g errgroup.Group
	g.Go(s.real.flush)
	g.Go(s.imag.flush)
	return g.Wait()
}

// Dump writes all real parts followed by all imaginary parts to w as raw
// little-endian float64 values.
func (s *StateVec) Dump(ctx context.Context, w io.Writer) error {
	if err := s.real.dump(ctx, w); err != nil {
		return fmt.Errorf("dump real: %w", err)
	}
	if err := s.imag.dump(ctx, w); err != nil {
		return fmt.Errorf("dump imag: %w", err)
	}
	return nil
}

// Stats returns the storage statistics of the real and imaginary caches.
// Both are zero when compression is disabled.
func (s *StateVec) Stats() (re, im cmem.Stats) {
	return s.real.stats(), s.imag.stats()
}

// Close releases both components.
func (s *StateVec) Close() error {
	var g errgroup.Group
	g.Go(s.real.close)
	g.Go(s.imag.close)
	return g.Wait()
}

func (s *StateVec) check(i int64) error {
	if i < 0 || i >= s.numAmps {
		return &cmem.IndexError{Index: cmem.Index(i), Block: -1, Offset: -1}
	}
	return nil
}
