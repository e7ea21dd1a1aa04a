package calibration

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/jumpshot/internal/monitoring"
)

// SchemaVersion is the Set encoding version written by Encode.
const SchemaVersion = 1

// Activity labels a calibration recording.
type Activity string

// Calibration activities.
const (
	Walking   Activity = "walking"
	Running   Activity = "running"
	Dribbling Activity = "dribbling"
	Shooting  Activity = "shooting"
)

// Activities lists every calibration activity in processing order.
var Activities = []Activity{Walking, Running, Dribbling, Shooting}

// NoiseActivities are the activities whose shot-shaped motions are false positives.
var NoiseActivities = []Activity{Walking, Running, Dribbling}

// Valid reports whether a is a known activity.
func (a Activity) Valid() bool {
	for _, known := range Activities {
		if a == known {
			return true
		}
	}
	return false
}

// ErrSchema is wrapped by every Set validation failure.
var ErrSchema = errors.New("calibration set schema")

// Set bundles the four activity profiles. Once handed to a detector it is
// treated as a read-only snapshot; recalibration produces a new Set.
type Set struct {
	Version       int                   `json:"version"`
	ID            string                `json:"id"`
	CreatedAt     time.Time             `json:"created_at"`
	Profiles      map[Activity]*Profile `json:"profiles"`
	PatternCounts map[Activity]int      `json:"pattern_counts"`
}

// Profile returns the profile for a, or nil.
func (s *Set) Profile(a Activity) *Profile {
	if s == nil || s.Profiles == nil {
		return nil
	}
	return s.Profiles[a]
}

// Usable reports whether the set can classify: it needs a shooting profile.
func (s *Set) Usable() bool {
	p := s.Profile(Shooting)
	return p != nil && p.Count > 0 && len(p.Features) == NumFeatures
}

// Validate checks the set's structure.
func (s *Set) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil set", ErrSchema)
	}
	if s.Version != SchemaVersion {
		return fmt.Errorf("%w: version %d, want %d", ErrSchema, s.Version, SchemaVersion)
	}
	for a, p := range s.Profiles {
		if !a.Valid() {
			return fmt.Errorf("%w: unknown activity %q", ErrSchema, a)
		}
		if p == nil {
			continue
		}
		if p.Count <= 0 {
			return fmt.Errorf("%w: %s profile has count %d", ErrSchema, a, p.Count)
		}
		if len(p.Features) != NumFeatures {
			return fmt.Errorf("%w: %s profile has %d features, want %d", ErrSchema, a, len(p.Features), NumFeatures)
		}
		for i, fs := range p.Features {
			if fs.Name != featureNames[i] {
				return fmt.Errorf("%w: %s feature %d is %q, want %q", ErrSchema, a, i, fs.Name, featureNames[i])
			}
			if math.IsNaN(fs.Mean) || math.IsNaN(fs.Std) || fs.Std < 0 {
				return fmt.Errorf("%w: %s feature %s has invalid statistics", ErrSchema, a, fs.Name)
			}
		}
	}
	return nil
}

// Encode serialises the set for an external store.
func Encode(s *Set) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// Decode parses and validates an encoded set.
func Decode(data []byte) (*Set, error) {
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DecodeOrNil decodes data and treats absence or corruption as "no
// calibration": it logs the problem and returns nil instead of an error.
func DecodeOrNil(data []byte) *Set {
	if len(data) == 0 {
		return nil
	}
	s, err := Decode(data)
	if err != nil {
		monitoring.Logf("calibration: ignoring stored set: %v", err)
		return nil
	}
	return s
}
