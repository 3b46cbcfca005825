// Package main is saturn's thin CLI driver: it reads clauses in the
// minimal internal syntax (pkg/syntax) from a file or stdin, wires a
// saturation.Engine with the flags decoded into saturation.Options, and
// prints the outcome. It is not a TPTP front end (core spec §1) — it
// exists only to exercise the engine end to end.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/gokando-lab/saturn/internal/logging"
	"github.com/gokando-lab/saturn/pkg/clause"
	"github.com/gokando-lab/saturn/pkg/saturation"
	"github.com/gokando-lab/saturn/pkg/syntax"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	flagAgeRatio    int
	flagWeightRatio int
	flagSelector    string
	flagTimeout     time.Duration
	flagVerbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn [file]",
	Short: "Run the saturn given-clause saturation loop over a clause set",
	Long: `saturn reads clauses in a minimal internal syntax (one clause per
line, '|'-separated literals, '~' for negation, '=' / '!=' for equality)
from a file, or from stdin when no file is given, and runs the
given-clause saturation loop to completion.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSaturate,
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVar(&flagAgeRatio, "age-ratio", 1, "Passive selection age weight")
	flags.IntVar(&flagWeightRatio, "weight-ratio", 1, "Passive selection weight weight")
	flags.StringVar(&flagSelector, "selector", "all", "literal selection policy: all|negative-first|max-weight|size-based")
	flags.DurationVar(&flagTimeout, "timeout", 0, "wall-clock deadline; 0 disables it")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "log at debug level")
}

func runSaturate(cmd *cobra.Command, args []string) error {
	in, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	selector, err := parseSelector(flagSelector)
	if err != nil {
		return err
	}

	opts := saturation.DefaultOptions()
	opts.AgeRatio = flagAgeRatio
	opts.WeightRatio = flagWeightRatio
	opts.Selector = selector
	opts.Timeout = flagTimeout

	env := saturation.NewEnvironment(opts)
	if flagVerbose {
		logger, err := logging.New(zapcore.DebugLevel)
		if err != nil {
			return err
		}
		env.WithLogger(logger)
	}
	eng := saturation.NewEngine(env)

	if err := loadClauses(env, eng, in); err != nil {
		return err
	}

	outcome, empty := eng.Run(cmd.Context())
	fmt.Fprintln(cmd.OutOrStdout(), outcome)
	if outcome == saturation.Refutation && empty != nil {
		printDerivation(cmd, eng, empty.ID())
	}
	return nil
}

func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(args[0])
}

func parseSelector(s string) (saturation.LiteralSelector, error) {
	switch s {
	case "all":
		return saturation.SelectAll, nil
	case "negative-first":
		return saturation.SelectNegativeFirst, nil
	case "max-weight":
		return saturation.SelectMaximalWeight, nil
	case "size-based":
		return saturation.SelectSizeBased, nil
	default:
		return 0, fmt.Errorf("saturn: unknown --selector %q", s)
	}
}

// loadClauses parses each non-blank line as a clause (spec §3's input
// type: a conjecture's negation is marked by a leading '?', everything
// else is an axiom).
func loadClauses(env *saturation.Environment, eng *saturation.Engine, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		trimmed := strings.TrimLeft(scanner.Text(), " \t")
		inputType := clause.Axiom
		if strings.HasPrefix(trimmed, "?") {
			inputType = clause.NegatedConjecture
			trimmed = trimmed[1:]
		}

		b := syntax.NewBuilder(env.Signature, env.Table)
		lits, err := b.ParseClause(trimmed)
		if err != nil {
			return err
		}
		if lits == nil {
			continue
		}
		eng.AddInput(lits, inputType)
	}
	return scanner.Err()
}

func printDerivation(cmd *cobra.Command, eng *saturation.Engine, emptyID uint64) {
	out := cmd.OutOrStdout()
	for _, id := range eng.Derivations().Ancestors(emptyID) {
		record, ok := eng.Derivations().Lookup(id)
		if !ok {
			continue
		}
		fmt.Fprintf(out, "  %d: %s %v\n", id, record.Rule, record.Parents)
	}
}
