// Package imu owns the timestamped accelerometer/gyroscope sample model
// consumed by the detection engine.
//
// Responsibilities: the immutable Sample value, the bounded rolling Buffer
// with absolute indices that survive compaction, and readers for recorded
// sessions (JSON array or CSV) used by batch re-analysis and calibration.
//
// Acquisition from device sensors is not handled here; samples are pushed
// in by the host in monotonic timestamp order.
package imu
