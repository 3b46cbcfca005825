package saturation

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gokando-lab/saturn/internal/logging"
	"github.com/gokando-lab/saturn/internal/metrics"
	"github.com/gokando-lab/saturn/pkg/term"
)

// Environment is the single handle a saturation run threads explicitly
// instead of keeping as module-level state (spec §9's design note,
// generalizing the teacher's implicit *Model/*SolverConfig/*SolverMonitor
// trio into one struct): the term signature and sharing table, the run's
// Options, a run id that WithLogger attaches to every log line so
// concurrent runs in one process can be told apart, a zap logger, and a
// private prometheus registry (metric samples carry no run-id label).
type Environment struct {
	RunID     uuid.UUID
	Signature *term.Signature
	Table     *term.SharingTable
	Options   Options
	Logger    *zap.Logger
	Metrics   *metrics.Registry
}

// NewEnvironment builds an Environment over a fresh signature and sharing
// table, with a no-op logger; callers needing real log output should
// follow with WithLogger.
func NewEnvironment(opts Options) *Environment {
	return &Environment{
		RunID:     uuid.New(),
		Signature: term.NewSignature(),
		Table:     term.NewSharingTable(),
		Options:   opts,
		Logger:    logging.NewNop(),
		Metrics:   metrics.New(),
	}
}

// WithLogger replaces the environment's logger with l tagged with the run
// id, and returns the environment, for call-site chaining.
func (e *Environment) WithLogger(l *zap.Logger) *Environment {
	e.Logger = l.With(zap.Stringer("run_id", e.RunID))
	return e
}
