package imu

import "math"

// Sample is one IMU reading. T is a monotonic timestamp in milliseconds,
// acceleration is in m/s² and angular rate in rad/s. Samples are immutable
// once recorded.
type Sample struct {
	T      int64   `json:"t"`
	Ax     float64 `json:"ax"`
	Ay     float64 `json:"ay"`
	Az     float64 `json:"az"`
	AMag   float64 `json:"aMag"`
	Gx     float64 `json:"gx"`
	Gy     float64 `json:"gy"`
	Gz     float64 `json:"gz"`
	Moving bool    `json:"moving"`
}

// NewSample builds a Sample and derives AMag from the three acceleration axes.
func NewSample(t int64, ax, ay, az, gx, gy, gz float64) Sample {
	return Sample{
		T:    t,
		Ax:   ax,
		Ay:   ay,
		Az:   az,
		AMag: math.Sqrt(ax*ax + ay*ay + az*az),
		Gx:   gx,
		Gy:   gy,
		Gz:   gz,
	}
}

// GyroMag returns the magnitude of the angular rate vector.
func (s Sample) GyroMag() float64 {
	return math.Sqrt(s.Gx*s.Gx + s.Gy*s.Gy + s.Gz*s.Gz)
}

// Mags returns the acceleration magnitudes of samples as a new slice.
func Mags(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.AMag
	}
	return out
}
