// Package logging wraps a *zap.Logger the way the teacher wraps shared
// infrastructure in internal/parallel: a small constructor, no
// package-level global. The logger is threaded through
// saturation.Environment instead (spec §9's "thread a single Environment
// handle ... do not keep it as module-level state"), grounded on
// theRebelliousNerd-codenerd/cmd/nerd/main.go's zap.NewProductionConfig
// plus an atomic level override.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-shaped logger at the given level. The only
// lines the module writes are the saturation loop's outcome transitions
// (REFUTATION/SATISFIABLE/TIMEOUT), at Info (spec §1.1); loop steps,
// index promotions and invariant violations are not logged.
func New(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// NewNop returns a logger that discards everything, for tests and for
// callers that have not opted into logging.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
