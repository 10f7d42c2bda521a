//go:build !debug
// +build !debug

package annotateloops

import (
	"github.com/fatih/color"
	"go.uber.org/zap"
)

func loggerConfig() zap.Config {
	color.NoColor = true
	return zap.NewProductionConfig()
}
