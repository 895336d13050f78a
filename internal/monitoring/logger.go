// Package monitoring holds the diagnostic logger and Prometheus metrics
// shared by the analysis pipeline and the web server.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// may be replaced by SetLogger, e.g. to mute pipeline chatter in tests.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Sessionf logs a line tagged with the analysis session it belongs to.
func Sessionf(sessionID, format string, v ...interface{}) {
	Logf("[session %s] "+format, append([]interface{}{sessionID}, v...)...)
}
