package monitoring

import "log"

// Logf is the package-level diagnostic logger used by the detection engine.
// It defaults to log.Printf but may be replaced by SetLogger so a host
// process can route engine diagnostics into its own logging, or mute them.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
