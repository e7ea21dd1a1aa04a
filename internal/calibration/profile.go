package calibration

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FeatureStats summarises one feature across an activity's patterns.
type FeatureStats struct {
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Profile is the statistical fingerprint of one activity.
type Profile struct {
	Activity Activity       `json:"activity"`
	Count    int            `json:"count"`
	Features []FeatureStats `json:"features"`
}

// Stat returns the statistics for feature f.
func (p *Profile) Stat(f Feature) FeatureStats { return p.Features[f] }

// ComputeProfile builds a profile from an activity's feature vectors. It
// returns nil for empty input, meaning "no data for this activity".
// Features with identical values across all vectors get std 0 and that
// shared value as the mean.
func ComputeProfile(activity Activity, vectors []FeatureVector) *Profile {
	if len(vectors) == 0 {
		return nil
	}
	p := &Profile{
		Activity: activity,
		Count:    len(vectors),
		Features: make([]FeatureStats, NumFeatures),
	}
	column := make([]float64, len(vectors))
	for f := 0; f < NumFeatures; f++ {
		for i, v := range vectors {
			column[i] = v[f]
		}
		fs := FeatureStats{
			Name: featureNames[f],
			Min:  floats.Min(column),
			Max:  floats.Max(column),
		}
		if fs.Min == fs.Max {
			fs.Mean = fs.Min
		} else {
			fs.Mean, fs.Std = stat.PopMeanStdDev(column, nil)
		}
		p.Features[f] = fs
	}
	return p
}
