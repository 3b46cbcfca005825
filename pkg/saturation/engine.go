// Package saturation drives the given-clause algorithm of spec §4.4,
// generalizing the teacher's Solver (pkg/minikanren/solver.go): Model +
// SolverConfig + SolverMonitor become Environment; the fixed-point
// propagate() loop over constraints becomes the Unprocessed-draining loop
// over calculus's generating and simplifying rules; SolverState's pooled,
// refcounted search nodes become clause.Clause's own refcounting plus
// derivation.Store's out-of-band DAG.
package saturation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gokando-lab/saturn/pkg/calculus"
	"github.com/gokando-lab/saturn/pkg/clause"
	"github.com/gokando-lab/saturn/pkg/derivation"
	"github.com/gokando-lab/saturn/pkg/index"
	"github.com/gokando-lab/saturn/pkg/term"
)

// Engine owns the three clause containers, the four index forests, and
// the derivation ledger for one saturation run. It is not safe for
// concurrent use: spec §5 commits the loop itself to a single goroutine,
// leaving parallelism (if any) to the given-clause selection and
// inference-rule evaluation a caller layers on top via Environment.
type Engine struct {
	env *Environment

	unprocessed *clause.UnprocessedQueue
	passive     *clause.PassiveQueue
	active      *clause.ActiveSet

	clauses map[uint64]*clause.Clause
	nextID  uint64

	derivations *derivation.Store

	ctx *calculus.Context

	generating  []calculus.GeneratingRule
	simplifying []calculus.SimplifyingRule

	deadline time.Time
}

// NewEngine wires a fresh Engine over env's signature, sharing table and
// options: empty containers, the four index forests sized by
// env.Options.NodePromotionThresholds, and the full spec §4.3 rule set.
func NewEngine(env *Environment) *Engine {
	e := &Engine{
		env:         env,
		unprocessed: clause.NewUnprocessed(),
		passive:     clause.NewPassive(env.Options.AgeRatio, env.Options.WeightRatio),
		active:      clause.NewActive(),
		clauses:     make(map[uint64]*clause.Clause),
		nextID:      1,
		derivations: derivation.NewStore(),
		generating: []calculus.GeneratingRule{
			calculus.BinaryResolution{},
			calculus.EqualityResolution{},
			calculus.EqualityFactoring{},
			calculus.Superposition{},
			calculus.URResolution{},
		},
		simplifying: []calculus.SimplifyingRule{
			calculus.TautologyDeletion{},
			calculus.SubsumptionResolution{},
			calculus.Demodulation{},
		},
	}
	e.ctx = &calculus.Context{
		Table:         env.Table,
		LiteralIndex:  index.NewIndex(env.Table, env.Options.NodePromotionThresholds),
		TermIndex:     index.NewIndex(env.Table, env.Options.NodePromotionThresholds),
		RewriteIndex:  index.NewIndex(env.Table, env.Options.NodePromotionThresholds),
		SimplifyIndex: index.NewIndex(env.Table, env.Options.NodePromotionThresholds),
		ClauseByID:    e.lookup,
		NextClauseID:  e.allocID,
		OccursCheck:   !env.Options.UnificationWithAbstraction,
	}
	return e
}

func (e *Engine) lookup(id uint64) (*clause.Clause, bool) {
	c, ok := e.clauses[id]
	return c, ok
}

func (e *Engine) allocID() uint64 {
	id := e.nextID
	e.nextID++
	return id
}

// AddInput registers an input clause (spec §4.4's initial state: "every
// input clause starts in Unprocessed") and records it as a derivation
// root with no parents.
func (e *Engine) AddInput(literals []*term.Literal, inputType clause.InputType) *clause.Clause {
	c := clause.New(e.allocID(), literals, 0, inputType)
	e.clauses[c.ID()] = c
	e.derivations.RecordInput(c.ID())
	e.unprocessed.Push(c)
	return c
}

// Derivations exposes the run's proof ledger, so a caller holding a
// Refutation outcome's empty clause can recover its full ancestor DAG via
// derivation.Store.Ancestors (spec §6's "empty clause with its full
// derivation").
func (e *Engine) Derivations() *derivation.Store { return e.derivations }

// Active exposes the run's Active set, the SATISFIABLE outcome's witness
// (spec §6).
func (e *Engine) Active() []*clause.Clause { return e.active.All() }

// Run drives the saturation loop to completion (spec §4.4), honoring ctx
// cancellation and env.Options.Timeout as the deadline checked once per
// Unprocessed-draining iteration (spec §5). It returns the terminal
// Outcome and, for Refutation, the empty clause found.
func (e *Engine) Run(ctx context.Context) (Outcome, *clause.Clause) {
	if e.env.Options.Timeout > 0 {
		e.deadline = time.Now().Add(e.env.Options.Timeout)
	}

	for {
		for {
			if e.deadlineExceeded(ctx) {
				e.env.Logger.Info("timeout")
				return Timeout, nil
			}

			c, ok := e.unprocessed.Pop()
			if !ok {
				break
			}

			if c.IsEmpty() {
				e.env.Logger.Info("refutation found", zap.Uint64("clause_id", c.ID()))
				return Refutation, c
			}

			kept, replacement := e.forwardSimplify(c)
			if !kept {
				c.SetStore(clause.None)
				if replacement != nil {
					e.unprocessed.Push(replacement)
				}
				continue
			}
			final := c
			if replacement != nil {
				// forwardSimplify reached a fixpoint at a different
				// clause than the one popped; the original is spent.
				c.SetStore(clause.None)
				final = replacement
			}
			if final.IsEmpty() {
				// Forward simplification reduced c to the empty clause:
				// send it back through Unprocessed so the check above
				// reports the refutation.
				e.unprocessed.Push(final)
				continue
			}

			e.indexSimplification(final)
			e.backwardSimplify(final)

			e.passive.Insert(final)
			e.env.Metrics.ContainerSize.WithLabelValues("passive").Set(float64(e.passive.Len()))
		}

		if e.passive.Len() == 0 {
			e.env.Logger.Info("saturated", zap.Int("active", e.active.Len()))
			return Satisfiable, nil
		}

		start := time.Now()
		given, _ := e.passive.Select()
		e.env.Metrics.SelectionLatency.Observe(time.Since(start).Seconds())
		e.env.Metrics.ContainerSize.WithLabelValues("passive").Set(float64(e.passive.Len()))

		Select(e.env.Options.Selector, given)

		e.active.Insert(given)
		e.env.Metrics.ContainerSize.WithLabelValues("active").Set(float64(e.active.Len()))
		e.indexGenerating(given)

		for _, rule := range e.generating {
			derived := rule.Apply(e.ctx, given)
			for _, d := range derived {
				e.clauses[d.Clause.ID()] = d.Clause
				parents := make([]*clause.Clause, 0, len(d.Parents))
				for _, id := range d.Parents {
					if p, ok := e.lookup(id); ok {
						parents = append(parents, p)
					}
				}
				e.derivations.Record(d.Clause.ID(), rule.Name(), parents)
				e.env.Metrics.ClausesGenerated.WithLabelValues(rule.Name()).Inc()
				e.unprocessed.Push(d.Clause)
			}
		}
	}
}

func (e *Engine) deadlineExceeded(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return !e.deadline.IsZero() && time.Now().After(e.deadline)
}

// forwardSimplify runs the simplifying rules against c, and again against
// each replacement a rule produces, until no rule applies (spec §4.4 step
// 2: "forward-simplify against the simplification container"). It returns
// kept=false if a rule discarded the clause outright, and otherwise the
// last replacement (nil if no rule applied). Each rule's redundant
// premises are retired via retireID; c's own store transition is left to
// the caller.
func (e *Engine) forwardSimplify(c *clause.Clause) (kept bool, replacement *clause.Clause) {
	cur := c
	changed := false

	for {
		progressed := false
		for _, rule := range e.simplifying {
			res := rule.Perform(e.ctx, cur)
			if res.Keep {
				continue
			}
			for _, id := range res.RedundantPremises {
				e.retireID(id)
			}
			if len(res.Replacements) == 0 {
				return false, nil
			}
			next := res.Replacements[0]
			e.clauses[next.ID()] = next
			e.recordSimplification(next, rule.Name(), cur, res.Premises)
			cur = next
			changed = true
			progressed = true
			break
		}
		if !progressed {
			break
		}
	}

	if !changed {
		return true, nil
	}
	return true, cur
}

// retireID removes a now-redundant clause from Active or Passive, and from
// the indices it was inserted into there, and marks it Reduced. A clause
// in any other store is left untouched.
func (e *Engine) retireID(id uint64) {
	c, ok := e.lookup(id)
	if !ok {
		return
	}
	switch c.Store() {
	case clause.Active:
		e.deindexGenerating(c)
		e.active.Remove(id)
	case clause.Passive:
		e.passive.Remove(id)
	default:
		return
	}
	e.deindexSimplification(c)
	c.SetStore(clause.Reduced)
}

// backwardSimplify checks every clause still live in Active, then Passive
// (the Otter-variant ordering SPEC_FULL.md names, grounded on
// original_source/Saturation/Otter.cpp), against the simplification
// container now holding given, retiring and replacing any that given
// makes redundant.
func (e *Engine) backwardSimplify(given *clause.Clause) {
	for _, c := range e.active.All() {
		if c.ID() == given.ID() {
			continue
		}
		e.trySimplify(c)
	}
	for _, c := range e.passive.All() {
		if c.ID() == given.ID() {
			continue
		}
		e.trySimplify(c)
	}
}

func (e *Engine) trySimplify(c *clause.Clause) {
	for _, rule := range e.simplifying {
		res := rule.Perform(e.ctx, c)
		if res.Keep {
			continue
		}
		for _, id := range res.RedundantPremises {
			e.retireID(id)
		}
		for _, r := range res.Replacements {
			e.clauses[r.ID()] = r
			e.recordSimplification(r, rule.Name(), c, res.Premises)
			e.unprocessed.Push(r)
		}
		return
	}
}

// recordSimplification records replacement's derivation as rule applied to
// parent plus any other clauses the rule consulted (calculus.Result's
// Premises — e.g. the unit clause SubsumptionResolution matched, or the
// rewrite rule Demodulation applied), so the derivation DAG names every
// clause that contributed, not just the one being simplified.
func (e *Engine) recordSimplification(replacement *clause.Clause, rule string, parent *clause.Clause, premiseIDs []uint64) {
	parents := []*clause.Clause{parent}
	for _, id := range premiseIDs {
		if p, ok := e.lookup(id); ok {
			parents = append(parents, p)
		}
	}
	e.derivations.Record(replacement.ID(), rule, parents)
}

// indexSimplification inserts c into the simplification container (spec
// §4.4 step 3): its literals by predicate, and — if c is a positive unit
// equality oriented lhs-heavier-or-equal — its left-hand side by functor
// into the rewrite index.
func (e *Engine) indexSimplification(c *clause.Clause) {
	for i, l := range c.Literals() {
		renamer := term.NewRenamer(e.env.Table, term.BankResult)
		index.InsertLiteral(e.ctx.SimplifyIndex, renamer, l, index.Entry{ClauseID: c.ID(), Literal: i})
	}
	if rewriteLHS, ok := orientedUnitEquality(c); ok {
		rr := term.NewRenamer(e.env.Table, term.BankResult)
		lhs := rr.Rename(rewriteLHS)
		e.ctx.RewriteIndex.Insert(index.TermRoot(lhs.Functor()), []*term.Term{lhs}, index.Entry{ClauseID: c.ID(), Literal: 0})
	}
}

func (e *Engine) deindexSimplification(c *clause.Clause) {
	for i, l := range c.Literals() {
		renamer := term.NewRenamer(e.env.Table, term.BankResult)
		index.DeleteLiteral(e.ctx.SimplifyIndex, renamer, l, index.Entry{ClauseID: c.ID(), Literal: i})
	}
	if rewriteLHS, ok := orientedUnitEquality(c); ok {
		rr := term.NewRenamer(e.env.Table, term.BankResult)
		lhs := rr.Rename(rewriteLHS)
		e.ctx.RewriteIndex.Delete(index.TermRoot(lhs.Functor()), []*term.Term{lhs}, index.Entry{ClauseID: c.ID(), Literal: 0})
	}
}

// orientedUnitEquality reports c's rewrite left-hand side if c is a
// single positive equality oriented lhs-heavier-or-equal, the same
// weight-based ordering approximation calculus.Superposition uses.
func orientedUnitEquality(c *clause.Clause) (*term.Term, bool) {
	if len(c.Literals()) != 1 {
		return nil, false
	}
	l := c.Literals()[0]
	if !l.IsEquality() || !l.Positive() {
		return nil, false
	}
	if l.Args()[0].Weight() < l.Args()[1].Weight() {
		return nil, false
	}
	return l.Args()[0], true
}

// indexGenerating inserts given (now Active) into the generating indices
// (spec §4.4 step 5): its literals by predicate, and every non-variable
// subterm of every literal by the subterm's own functor.
func (e *Engine) indexGenerating(c *clause.Clause) {
	for i, l := range c.Literals() {
		renamer := term.NewRenamer(e.env.Table, term.BankResult)
		index.InsertLiteral(e.ctx.LiteralIndex, renamer, l, index.Entry{ClauseID: c.ID(), Literal: i})

		for ord, u := range calculus.LiteralSubterms(l) {
			if u.IsVar() {
				continue
			}
			tr := term.NewRenamer(e.env.Table, term.BankResult)
			ru := tr.Rename(u)
			e.ctx.TermIndex.Insert(index.TermRoot(ru.Functor()), []*term.Term{ru}, index.Entry{ClauseID: c.ID(), Literal: i, Extra: ord})
		}
	}
}

func (e *Engine) deindexGenerating(c *clause.Clause) {
	for i, l := range c.Literals() {
		renamer := term.NewRenamer(e.env.Table, term.BankResult)
		index.DeleteLiteral(e.ctx.LiteralIndex, renamer, l, index.Entry{ClauseID: c.ID(), Literal: i})

		for ord, u := range calculus.LiteralSubterms(l) {
			if u.IsVar() {
				continue
			}
			tr := term.NewRenamer(e.env.Table, term.BankResult)
			ru := tr.Rename(u)
			e.ctx.TermIndex.Delete(index.TermRoot(ru.Functor()), []*term.Term{ru}, index.Entry{ClauseID: c.ID(), Literal: i, Extra: ord})
		}
	}
}
