package saturation

import (
	"time"

	"github.com/gokando-lab/saturn/pkg/index"
)

// Options is the run-configuration surface spec §6 exposes to a caller,
// generalizing the teacher's SolverConfig (pkg/minikanren/solver.go):
// every knob the saturation loop reads is gathered here instead of
// scattered across package-level variables.
type Options struct {
	// AgeRatio and WeightRatio drive clause.Passive's selection cycle
	// (spec §4.4 step 3, spec §6's age-weight-ratio option). Both must be
	// positive; clause.NewPassive enforces this.
	AgeRatio    int
	WeightRatio int

	// Selector is the literal-selection-function policy (spec §4.4 step
	// 4, spec §6's literal-selector enum).
	Selector LiteralSelector

	// NodePromotionThresholds configures every substitution tree's
	// child-collection representation promotion (spec §2.2/§6).
	NodePromotionThresholds index.Thresholds

	// UnificationWithAbstraction, when true, disables the occurs check
	// during unification (spec §6), trading soundness on cyclic inputs
	// for the performance most saturation provers accept in practice.
	UnificationWithAbstraction bool

	// Timeout bounds wall-clock time spent in Run; zero means no
	// deadline (spec §5/§6).
	Timeout time.Duration
}

// DefaultOptions returns spec §6's documented defaults.
func DefaultOptions() Options {
	return Options{
		AgeRatio:                   1,
		WeightRatio:                1,
		Selector:                   SelectAll,
		NodePromotionThresholds:    index.DefaultThresholds(),
		UnificationWithAbstraction: false,
		Timeout:                    0,
	}
}
