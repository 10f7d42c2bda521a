//go:build debug
// +build debug

package annotateloops

import "go.uber.org/zap"

// loggerConfig logs at debug level in a human readable format.
func loggerConfig() zap.Config {
	return zap.NewDevelopmentConfig()
}
