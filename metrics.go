package cmem

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting cache metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordLoad is called after each block load. zeroFill reports that the
	// block had never been written and was materialized as zeros.
	RecordLoad(block int, zeroFill bool, duration time.Duration, err error)

	// RecordSave is called after each write-back with the compressed size.
	RecordSave(block, bytes int, duration time.Duration, err error)

	// RecordHit is called when an access finds its block resident.
	RecordHit()

	// RecordMiss is called when an access has to load its block.
	RecordMiss()

	// RecordOutOfRange is called for every rejected access.
	RecordOutOfRange()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordSave(int, int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordHit()                                 {}
func (NoopMetricsCollector) RecordMiss()                                {}
func (NoopMetricsCollector) RecordOutOfRange()                          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount       atomic.Int64
	ZeroFillCount   atomic.Int64
	LoadErrors      atomic.Int64
	LoadTotalNanos  atomic.Int64
	SaveCount       atomic.Int64
	SaveErrors      atomic.Int64
	SaveTotalNanos  atomic.Int64
	SavedBytes      atomic.Int64
	HitCount        atomic.Int64
	MissCount       atomic.Int64
	OutOfRangeCount atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ int, zeroFill bool, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	if zeroFill {
		b.ZeroFillCount.Add(1)
	}
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(_ int, bytes int, duration time.Duration, err error) {
	b.SaveCount.Add(1)
	b.SaveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SavedBytes.Add(int64(bytes))
}

// RecordHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordHit() { b.HitCount.Add(1) }

// RecordMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMiss() { b.MissCount.Add(1) }

// RecordOutOfRange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOutOfRange() { b.OutOfRangeCount.Add(1) }

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:       b.LoadCount.Load(),
		ZeroFillCount:   b.ZeroFillCount.Load(),
		LoadErrors:      b.LoadErrors.Load(),
		LoadAvgNanos:    avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		SaveCount:       b.SaveCount.Load(),
		SaveErrors:      b.SaveErrors.Load(),
		SaveAvgNanos:    avg(b.SaveTotalNanos.Load(), b.SaveCount.Load()),
		SavedBytes:      b.SavedBytes.Load(),
		HitCount:        b.HitCount.Load(),
		MissCount:       b.MissCount.Load(),
		OutOfRangeCount: b.OutOfRangeCount.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount       int64
	ZeroFillCount   int64
	LoadErrors      int64
	LoadAvgNanos    int64
	SaveCount       int64
	SaveErrors      int64
	SaveAvgNanos    int64
	SavedBytes      int64
	HitCount        int64
	MissCount       int64
	OutOfRangeCount int64
}

// HitRate returns hits / (hits + misses), or 0 before the first access.
func (s BasicMetricsStats) HitRate() float64 {
	total := s.HitCount + s.MissCount
	if total == 0 {
		return 0
	}
	return float64(s.HitCount) / float64(total)
}
