// Package testutil provides shared test utilities and fixtures.
//
// It centralises the synthetic accelerometer signals used across the
// detector, voter, calibrator and engine tests so the scenarios stay
// identical between packages.
package testutil

import (
	"math"
	"testing"

	"github.com/banshee-data/jumpshot/internal/imu"
)

// Gravity is the resting acceleration magnitude in m/s².
const Gravity = 9.8

// SampleIntervalMs is the spacing of generated samples (100 Hz).
const SampleIntervalMs = 10

// Shot describes a synthetic peak → dip → recovery shape.
type Shot struct {
	Peak      float64 // magnitude at the peak sample
	Dip       float64 // magnitude at the dip sample
	Recovery  float64 // magnitude at the recovery sample
	DipOffset int     // samples from peak to dip
	RecOffset int     // samples from dip to recovery
	Settle    int     // samples to ramp back to gravity after recovery
}

// JumpShot is the reference shot shape: peak 20, dip 2 twelve samples later,
// recovery 15 twenty samples after the dip.
var JumpShot = Shot{Peak: 20, Dip: 2, Recovery: 15, DipOffset: 12, RecOffset: 20, Settle: 10}

// Flat returns n samples alternating mean-std and mean+std, which for even n
// has exactly the requested mean and population std.
func Flat(n int, mean, std float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = mean - std
		} else {
			out[i] = mean + std
		}
	}
	return out
}

// Sine returns n samples of a sinusoid around mean with the given population
// std (amplitude std·√2) and period in samples.
func Sine(n int, mean, std float64, period int) []float64 {
	amp := std * math.Sqrt2
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + amp*math.Sin(2*math.Pi*float64(i)/float64(period))
	}
	return out
}

// InsertShot overwrites mags with the shot shape starting at peak, using
// linear ramps between the phases, and returns the dip and recovery indices.
// Samples past the end of mags are dropped.
func InsertShot(mags []float64, peak int, s Shot) (dip, rec int) {
	set := func(i int, v float64) {
		if i >= 0 && i < len(mags) {
			mags[i] = v
		}
	}
	set(peak, s.Peak)
	for k := 1; k <= s.DipOffset; k++ {
		set(peak+k, s.Peak+(s.Dip-s.Peak)*float64(k)/float64(s.DipOffset))
	}
	dip = peak + s.DipOffset
	for k := 1; k <= s.RecOffset; k++ {
		set(dip+k, s.Dip+(s.Recovery-s.Dip)*float64(k)/float64(s.RecOffset))
	}
	rec = dip + s.RecOffset
	for k := 1; k <= s.Settle; k++ {
		set(rec+k, s.Recovery+(Gravity-s.Recovery)*float64(k)/float64(s.Settle))
	}
	return dip, rec
}

// Samples converts magnitudes into IMU samples spaced SampleIntervalMs apart,
// with the magnitude on the z axis and a gyro magnitude that rises with the
// deviation from gravity.
func Samples(mags []float64) []imu.Sample {
	return SamplesFrom(mags, 0)
}

// SamplesFrom is Samples with timestamps starting at t0.
func SamplesFrom(mags []float64, t0 int64) []imu.Sample {
	out := make([]imu.Sample, len(mags))
	for i, m := range mags {
		g := math.Abs(m-Gravity) * 0.3
		out[i] = imu.NewSample(t0+int64(i*SampleIntervalMs), 0, 0, m, g, 0, 0)
	}
	return out
}

// ScenarioA is a quiet baseline (mean 9.8, std 0.2) with one jump shot whose
// peak sits at index peak.
func ScenarioA(n, peak int) []float64 {
	mags := Flat(n, Gravity, 0.2)
	InsertShot(mags, peak, JumpShot)
	return mags
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
