package imu

import "github.com/banshee-data/jumpshot/internal/config"

// Default buffer sizing.
const (
	DefaultCapacity     = 3000
	DefaultCompactBlock = 1000
)

// Buffer is a bounded, append-only rolling store of samples. When the live
// window exceeds its capacity the oldest CompactBlock samples are dropped and
// the offset advances, so AbsoluteIndex(i) = Offset()+i stays stable for every
// sample across compactions and is never reused.
//
// A Buffer is owned by a single session and is not safe for concurrent use.
type Buffer struct {
	capacity     int
	compactBlock int

	samples []Sample
	mags    []float64
	offset  int64
}

// NewBuffer creates a Buffer. Non-positive arguments fall back to the defaults,
// and a compaction block larger than the capacity is clamped to it.
func NewBuffer(capacity, compactBlock int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if compactBlock <= 0 {
		compactBlock = DefaultCompactBlock
	}
	if compactBlock > capacity {
		compactBlock = capacity
	}
	return &Buffer{
		capacity:     capacity,
		compactBlock: compactBlock,
		samples:      make([]Sample, 0, capacity+1),
		mags:         make([]float64, 0, capacity+1),
	}
}

// NewBufferFromTuning sizes a Buffer from the tuning configuration.
func NewBufferFromTuning(cfg *config.TuningConfig) *Buffer {
	return NewBuffer(cfg.GetBufferCapacity(), cfg.GetBufferCompactBlock())
}

// Append adds a sample and returns its absolute index.
func (b *Buffer) Append(s Sample) int64 {
	b.samples = append(b.samples, s)
	b.mags = append(b.mags, s.AMag)
	abs := b.offset + int64(len(b.samples)-1)
	if len(b.samples) > b.capacity {
		b.compact()
	}
	return abs
}

// compact drops the oldest block into fresh backing arrays so that slices
// previously handed out by Samples and Mags are never overwritten.
func (b *Buffer) compact() {
	keep := len(b.samples) - b.compactBlock
	samples := make([]Sample, keep, b.capacity+1)
	copy(samples, b.samples[b.compactBlock:])
	mags := make([]float64, keep, b.capacity+1)
	copy(mags, b.mags[b.compactBlock:])
	b.samples = samples
	b.mags = mags
	b.offset += int64(b.compactBlock)
}

// Len returns the number of samples in the live window.
func (b *Buffer) Len() int { return len(b.samples) }

// Offset returns the absolute index of the oldest live sample.
func (b *Buffer) Offset() int64 { return b.offset }

// At returns the live sample at window index i.
func (b *Buffer) At(i int) Sample { return b.samples[i] }

// AbsoluteIndex translates a live-window index into a stable absolute index.
func (b *Buffer) AbsoluteIndex(i int) int64 { return b.offset + int64(i) }

// Samples returns the live window. Callers must treat it as read-only.
func (b *Buffer) Samples() []Sample { return b.samples[:len(b.samples):len(b.samples)] }

// Mags returns the acceleration magnitudes of the live window, index-aligned
// with Samples. Callers must treat it as read-only.
func (b *Buffer) Mags() []float64 { return b.mags[:len(b.mags):len(b.mags)] }

// Reset clears the buffer. Absolute indices continue from where they were so
// that indices are never reused within a Buffer's lifetime.
func (b *Buffer) Reset() {
	b.offset += int64(len(b.samples))
	b.samples = make([]Sample, 0, b.capacity+1)
	b.mags = make([]float64, 0, b.capacity+1)
}
