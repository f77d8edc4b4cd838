// Package logging constructs the process-wide zap logger, injected
// into every component that needs it rather than referenced through a
// package-level global.
package logging

import "go.uber.org/zap"

// New builds a production zap logger, or a development logger with
// human-friendly console output when dev is true.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
