// Package logging builds the diagnostics logger used by validate_tagger.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to w. It logs warnings and above,
// or everything from debug up when verbose is set.
func New(w io.Writer, verbose bool) *zap.Logger {
	al := zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		al.SetLevel(zap.DebugLevel)
	}
	ec := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(zapcore.AddSync(w)), al)
	return zap.New(core)
}
