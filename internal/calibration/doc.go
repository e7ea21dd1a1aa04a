// Package calibration learns per-activity movement fingerprints from labeled
// recordings and uses them to classify live shot candidates.
//
// Responsibilities: the 12-dimensional feature vector extracted around a
// peak/dip/recovery triple, relaxed pattern mining over a recording, per
// activity profiles (mean, std, min, max per feature), the two-stage
// classifier, and the versioned Set that bundles the profiles.
//
// A Set is a configuration snapshot, not a trained model: recalibrating
// means running Calibrate again over fresh recordings. Persistence of the
// encoded Set is delegated to a Store supplied by the caller.
package calibration
