package calibration

import (
	"math"
)

// Classification reasons.
const (
	ReasonNoCalibration = "no_calibration"
	ReasonDipRatioNoise = "dip_ratio_matches_noise"
	ReasonNearShooting  = "nearest_shooting"
	ReasonNearNoise     = "nearest_noise"
)

// Result is the outcome of classifying one candidate.
type Result struct {
	IsShot     bool                 `json:"is_shot"`
	Confidence float64              `json:"confidence"`
	Reason     string               `json:"reason"`
	Nearest    Activity             `json:"nearest,omitempty"`
	Distances  map[Activity]float64 `json:"distances,omitempty"`
}

// Classify decides whether fv looks like a shot under set.
//
// A nil set, an empty set, or one without a shooting profile passes the
// candidate through. Otherwise stage 1 rejects candidates whose dipRatio is
// well above the shooting profile and typical of a noise activity, and
// stage 2 accepts only if the weighted distance to shooting is within
// Margin of the nearest noise profile.
func Classify(fv FeatureVector, set *Set, cfg Config) Result {
	if !set.Usable() {
		return Result{IsShot: true, Confidence: 0, Reason: ReasonNoCalibration}
	}
	shooting := set.Profile(Shooting)

	ratio := fv[FeatDipRatio]
	sr := shooting.Stat(FeatDipRatio)
	if ratio > sr.Mean+cfg.DipRatioStds*sr.Std {
		for _, a := range NoiseActivities {
			p := set.Profile(a)
			if p == nil || len(p.Features) != NumFeatures {
				continue
			}
			nr := p.Stat(FeatDipRatio)
			if math.Abs(ratio-nr.Mean) <= nr.Std {
				return Result{IsShot: false, Confidence: 0.9, Reason: ReasonDipRatioNoise, Nearest: a}
			}
		}
	}

	distances := map[Activity]float64{Shooting: Distance(fv, shooting, cfg)}
	nearestNoise := Activity("")
	minNoise := math.Inf(1)
	for _, a := range NoiseActivities {
		p := set.Profile(a)
		if p == nil || len(p.Features) != NumFeatures {
			continue
		}
		d := Distance(fv, p, cfg)
		distances[a] = d
		if d < minNoise {
			minNoise, nearestNoise = d, a
		}
	}

	dShoot := distances[Shooting]
	if nearestNoise == "" {
		// Nothing to compare against; accept on the shooting profile alone.
		return Result{IsShot: true, Confidence: 0.5, Reason: ReasonNearShooting, Nearest: Shooting, Distances: distances}
	}

	scale := math.Max(math.Max(dShoot, minNoise), 1e-9)
	if dShoot <= minNoise+cfg.Margin {
		return Result{
			IsShot:     true,
			Confidence: clamp01(0.5 + 0.5*(minNoise-dShoot)/scale),
			Reason:     ReasonNearShooting,
			Nearest:    Shooting,
			Distances:  distances,
		}
	}
	return Result{
		IsShot:     false,
		Confidence: clamp01(0.5 + 0.5*(dShoot-minNoise)/scale),
		Reason:     ReasonNearNoise,
		Nearest:    nearestNoise,
		Distances:  distances,
	}
}

// Distance is the weighted mean absolute z-score of fv against p. Each
// feature's std is floored so zero-variance profiles stay finite, and each
// z-score is capped at MaxFeatureZ.
func Distance(fv FeatureVector, p *Profile, cfg Config) float64 {
	var sum, wsum float64
	for f := 0; f < NumFeatures; f++ {
		w := cfg.Weights[f]
		if w <= 0 {
			continue
		}
		fs := p.Features[f]
		std := math.Max(fs.Std, math.Max(cfg.MinFeatureStd, cfg.RelFeatureStd*math.Abs(fs.Mean)))
		z := math.Abs(fv[f]-fs.Mean) / std
		if cfg.MaxFeatureZ > 0 && z > cfg.MaxFeatureZ {
			z = cfg.MaxFeatureZ
		}
		sum += w * z
		wsum += w
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
