package calibration

import (
	"github.com/banshee-data/jumpshot/internal/imu"
)

// Feature indexes a FeatureVector.
type Feature int

// Features in vector order.
const (
	FeatPeakMag Feature = iota
	FeatDipMag
	FeatRecoveryMag
	FeatRange
	FeatDipRatio
	FeatPeakToDipSamples
	FeatDipToRecSamples
	FeatTotalDuration
	FeatGyroMagAtPeak
	FeatGyroMagAtDip
	FeatMaxGyroInWindow
	FeatGyroDipToRec

	NumFeatures = iota
)

var featureNames = [NumFeatures]string{
	"peakMag",
	"dipMag",
	"recoveryMag",
	"range",
	"dipRatio",
	"peakToDipSamples",
	"dipToRecSamples",
	"totalDuration",
	"gyroMagAtPeak",
	"gyroMagAtDip",
	"maxGyroInWindow",
	"gyroDipToRec",
}

// String returns the feature's wire name.
func (f Feature) String() string {
	if f < 0 || int(f) >= NumFeatures {
		return "unknown"
	}
	return featureNames[f]
}

// FeatureNames returns the feature names in vector order.
func FeatureNames() []string {
	return append([]string(nil), featureNames[:]...)
}

// FeatureVector is the fixed-order numeric summary of one peak/dip/recovery
// triple.
type FeatureVector [NumFeatures]float64

// Get returns one feature.
func (fv FeatureVector) Get(f Feature) float64 { return fv[f] }

// Triple locates a candidate's phases within a sample slice.
type Triple struct {
	Peak int `json:"peak"`
	Dip  int `json:"dip"`
	Rec  int `json:"rec"`
}

// Valid reports whether the triple is ordered and inside a slice of length n.
func (t Triple) Valid(n int) bool {
	return t.Peak >= 0 && t.Peak < t.Dip && t.Dip < t.Rec && t.Rec < n
}

// ExtractFeatures summarises the triple tr within samples. baselineMean is
// the pre-peak resting magnitude used for dipRatio; a non-positive value
// yields a zero ratio. The boolean is false when tr does not fit samples.
//
// totalDuration is in milliseconds; gyroDipToRec is the mean gyro magnitude
// from dip to recovery inclusive.
func ExtractFeatures(samples []imu.Sample, tr Triple, baselineMean float64) (FeatureVector, bool) {
	var fv FeatureVector
	if !tr.Valid(len(samples)) {
		return fv, false
	}
	peak, dip, rec := samples[tr.Peak], samples[tr.Dip], samples[tr.Rec]

	fv[FeatPeakMag] = peak.AMag
	fv[FeatDipMag] = dip.AMag
	fv[FeatRecoveryMag] = rec.AMag
	fv[FeatRange] = peak.AMag - dip.AMag
	if baselineMean > 0 {
		fv[FeatDipRatio] = dip.AMag / baselineMean
	}
	fv[FeatPeakToDipSamples] = float64(tr.Dip - tr.Peak)
	fv[FeatDipToRecSamples] = float64(tr.Rec - tr.Dip)
	fv[FeatTotalDuration] = float64(rec.T - peak.T)
	fv[FeatGyroMagAtPeak] = peak.GyroMag()
	fv[FeatGyroMagAtDip] = dip.GyroMag()

	var maxGyro float64
	for _, s := range samples[tr.Peak : tr.Rec+1] {
		if g := s.GyroMag(); g > maxGyro {
			maxGyro = g
		}
	}
	fv[FeatMaxGyroInWindow] = maxGyro

	var sum float64
	for _, s := range samples[tr.Dip : tr.Rec+1] {
		sum += s.GyroMag()
	}
	fv[FeatGyroDipToRec] = sum / float64(tr.Rec-tr.Dip+1)

	return fv, true
}
