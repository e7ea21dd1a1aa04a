package calibration

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/jumpshot/internal/imu"
	"github.com/banshee-data/jumpshot/internal/monitoring"
	"github.com/banshee-data/jumpshot/internal/timeutil"
)

// Store persists encoded calibration sets under a caller-chosen key.
// LoadCalibration returns (nil, nil) when nothing is stored for key.
type Store interface {
	SaveCalibration(ctx context.Context, key string, data []byte) error
	LoadCalibration(ctx context.Context, key string) ([]byte, error)
}

// Calibrator builds calibration sets from labeled recordings.
type Calibrator struct {
	cfg   Config
	store Store
	clock timeutil.Clock
}

// NewCalibrator returns a Calibrator. store may be nil, in which case sets
// are returned but not persisted. A nil clock uses the wall clock.
func NewCalibrator(cfg Config, store Store, clock timeutil.Clock) *Calibrator {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Calibrator{cfg: cfg, store: store, clock: clock}
}

// Calibrate mines patterns from each labeled recording, profiles them and,
// when a store is configured, persists the resulting set under key.
// Activities with no recording or no mined patterns get no profile.
func (c *Calibrator) Calibrate(ctx context.Context, recordings map[Activity][]imu.Sample, key string) (*Set, error) {
	for a := range recordings {
		if !a.Valid() {
			return nil, fmt.Errorf("%w: unknown activity %q", ErrSchema, a)
		}
	}

	start := c.clock.Now()
	set := &Set{
		Version:       SchemaVersion,
		ID:            uuid.NewString(),
		CreatedAt:     start.UTC(),
		Profiles:      make(map[Activity]*Profile),
		PatternCounts: make(map[Activity]int),
	}

	for _, a := range Activities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, ok := recordings[a]
		if !ok {
			continue
		}
		patterns := ExtractPatterns(rec, c.cfg)
		set.PatternCounts[a] = len(patterns)
		vectors := make([]FeatureVector, len(patterns))
		for i, p := range patterns {
			vectors[i] = p.Features
		}
		if p := ComputeProfile(a, vectors); p != nil {
			set.Profiles[a] = p
		}
		monitoring.Logf("calibration: %s: %d samples, %d patterns", a, len(rec), len(patterns))
	}

	if !set.Usable() {
		monitoring.Logf("calibration: no shooting patterns found; detector will run uncalibrated")
	}

	if c.store != nil {
		data, err := Encode(set)
		if err != nil {
			return nil, fmt.Errorf("failed to encode calibration set: %w", err)
		}
		if err := c.store.SaveCalibration(ctx, key, data); err != nil {
			return nil, fmt.Errorf("failed to save calibration set %q: %w", key, err)
		}
	}
	monitoring.Logf("calibration: set %s for %q built in %s", set.ID, key, c.clock.Since(start))
	return set, nil
}

// Load fetches and decodes the set stored under key. Any failure, including
// absence, is logged and yields nil so the caller runs uncalibrated.
func Load(ctx context.Context, store Store, key string) *Set {
	if store == nil {
		return nil
	}
	data, err := store.LoadCalibration(ctx, key)
	if err != nil {
		monitoring.Logf("calibration: failed to load %q: %v", key, err)
		return nil
	}
	return DecodeOrNil(data)
}
