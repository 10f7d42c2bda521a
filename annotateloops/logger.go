package annotateloops

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// Logger is a SugaredLogger tagged with the name of the pass.
type Logger struct {
	*zap.SugaredLogger
	module string
}

// Module returns the (coloured) tag prefixed to log messages of the pass.
func (l *Logger) Module() string {
	return l.module
}

func newLogger() *Logger {
	return newFileLogger()
}

// newFileLogger returns a logger writing to the default outputs and to files.
// If the logger cannot be built, for example because a file cannot be opened,
// the pass logs nothing.
func newFileLogger(files ...string) *Logger {
	cfg := loggerConfig()
	cfg.OutputPaths = append(cfg.OutputPaths, files...)
	l, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot create logger: %v\n", err)
		l = zap.NewNop()
	}
	return &Logger{SugaredLogger: l.Sugar(), module: color.BlueString("loops")}
}
