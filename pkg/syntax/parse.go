// Package syntax implements the minimal internal clause literal syntax
// SPEC_FULL.md §3 allows cmd/saturn to accept: one clause per line,
// `|`-separated literals, `~` for negation, `=`/`!=` for equality, `%` line
// comments. It is not a TPTP front end (core spec §1 excludes parsing from
// the hard core) — just enough to drive the engine end to end from a plain
// text fixture or a CLI flag.
//
// Grammar (informal):
//
//	clause   := literal ('|' literal)*
//	literal  := '~'? atom | '~'? atom ('=' | '!=') term
//	atom     := IDENT ('(' term (',' term)* ')')?
//	term     := VAR | IDENT ('(' term (',' term)* ')')?
//
// IDENT starting with an uppercase letter or '_' is a VAR; any other IDENT
// is a functor or predicate name. The left-hand side of an equality is
// read with the atom rule, so it cannot be a bare variable: `X = a` is
// rejected. A leading '~' on an equality flips its polarity. No operator
// precedence, no quoting, no sorts — every term carries term.DefaultSort.
package syntax

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/gokando-lab/saturn/pkg/term"
)

// Builder interns functors/predicates and constructs terms against a
// shared table and signature, and remembers variable names within one
// clause so repeated occurrences share a single BankOrdinary variable.
type Builder struct {
	Sig   *term.Signature
	Table *term.SharingTable

	vars map[string]*term.Term
}

// NewBuilder wires a Builder over sig/table; callers share one sig/table
// per problem so constants and predicates intern consistently across
// clauses, and construct a fresh Builder per clause so variable names
// don't leak across clause boundaries.
func NewBuilder(sig *term.Signature, table *term.SharingTable) *Builder {
	return &Builder{Sig: sig, Table: table, vars: make(map[string]*term.Term)}
}

// ParseClause parses one line of the minimal clause syntax into a literal
// list, ready for clause.New. It returns an error wrapping the offending
// line on any malformed input (core spec §7 reserves panics for internal
// invariant violations, not for malformed user input).
func (b *Builder) ParseClause(line string) ([]*term.Literal, error) {
	line = stripComment(line)
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}
	p := &parser{toks: tokenize(line), b: b}
	lits, err := p.literals()
	if err != nil {
		return nil, errors.Wrapf(err, "syntax: parsing %q", line)
	}
	if !p.atEnd() {
		return nil, errors.Errorf("syntax: unexpected trailing input in %q", line)
	}
	return lits, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '%'); i >= 0 {
		return line[:i]
	}
	return line
}

type token struct {
	kind string // "ident", "punct", "eof"
	text string
}

func tokenize(line string) []token {
	var toks []token
	runes := []rune(line)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(' || r == ')' || r == ',' || r == '|':
			toks = append(toks, token{kind: "punct", text: string(r)})
			i++
		case r == '!':
			if i+1 < len(runes) && runes[i+1] == '=' {
				toks = append(toks, token{kind: "punct", text: "!="})
				i += 2
			} else {
				toks = append(toks, token{kind: "punct", text: "!"})
				i++
			}
		case r == '~' || r == '=':
			toks = append(toks, token{kind: "punct", text: string(r)})
			i++
		default:
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			if i == start {
				toks = append(toks, token{kind: "punct", text: string(r)})
				i++
				continue
			}
			toks = append(toks, token{kind: "ident", text: string(runes[start:i])})
		}
	}
	toks = append(toks, token{kind: "eof"})
	return toks
}

type parser struct {
	toks []token
	pos  int
	b    *Builder
}

func (p *parser) peek() token  { return p.toks[p.pos] }
func (p *parser) atEnd() bool  { return p.peek().kind == "eof" }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != "eof" {
		p.pos++
	}
	return t
}

func (p *parser) expect(text string) error {
	if p.peek().text != text {
		return errors.Errorf("expected %q, found %q", text, p.peek().text)
	}
	p.advance()
	return nil
}

func (p *parser) literals() ([]*term.Literal, error) {
	var out []*term.Literal
	for {
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		out = append(out, lit)
		if p.peek().text != "|" {
			break
		}
		p.advance()
	}
	return out, nil
}

func (p *parser) literal() (*term.Literal, error) {
	negated := false
	if p.peek().text == "~" {
		negated = true
		p.advance()
	}

	// The head is ambiguous until we've seen whether '=' or '!=' follows:
	// "f(X) = g(Y)" needs f/g interned as functors, "p(X)" needs p interned
	// as a predicate. Parse the shape first and decide afterward.
	name, args, err := p.applicationShape()
	if err != nil {
		return nil, err
	}

	switch p.peek().text {
	case "=":
		p.advance()
		lhs := p.b.functorTerm(name, args)
		rhs, err := p.term()
		if err != nil {
			return nil, err
		}
		return term.NewEquality(!negated, term.DefaultSort, lhs, rhs), nil
	case "!=":
		p.advance()
		lhs := p.b.functorTerm(name, args)
		rhs, err := p.term()
		if err != nil {
			return nil, err
		}
		return term.NewEquality(negated, term.DefaultSort, lhs, rhs), nil
	}

	pred := p.b.Sig.InternPredicate(name, len(args))
	return term.NewLiteral(pred, !negated, args...), nil
}

// applicationShape parses "IDENT ('(' term (',' term)* ')')?" without
// interning the head identifier as either a functor or a predicate —
// literal() decides which once it knows whether an equality follows.
func (p *parser) applicationShape() (string, []*term.Term, error) {
	tok := p.advance()
	if tok.kind != "ident" || isVarName(tok.text) {
		return "", nil, errors.Errorf("expected a predicate or functor name, found %q", tok.text)
	}
	args, err := p.argumentList()
	if err != nil {
		return "", nil, err
	}
	return tok.text, args, nil
}

func (p *parser) term() (*term.Term, error) {
	tok := p.advance()
	if tok.kind != "ident" {
		return nil, errors.Errorf("expected identifier, found %q", tok.text)
	}
	if isVarName(tok.text) {
		return p.b.variable(tok.text), nil
	}
	args, err := p.argumentList()
	if err != nil {
		return nil, err
	}
	return p.b.functorTerm(tok.text, args), nil
}

// argumentList parses an optional "'(' term (',' term)* ')'" suffix,
// returning nil args when no parenthesized argument list follows.
func (p *parser) argumentList() ([]*term.Term, error) {
	if p.peek().text != "(" {
		return nil, nil
	}
	p.advance()
	var args []*term.Term
	for {
		arg, err := p.term()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().text == "," {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func isVarName(s string) bool {
	r := []rune(s)[0]
	return r == '_' || unicode.IsUpper(r)
}

func (b *Builder) variable(name string) *term.Term {
	if v, ok := b.vars[name]; ok {
		return v
	}
	v := b.Table.FreshVar(term.BankOrdinary, term.DefaultSort)
	b.vars[name] = v
	return v
}

func (b *Builder) functorTerm(name string, args []*term.Term) *term.Term {
	fn := b.Sig.Intern(name, len(args), term.DefaultSort)
	if len(args) == 0 {
		return b.Table.Const(fn, term.DefaultSort)
	}
	return b.Table.Func(fn, term.DefaultSort, args...)
}

// String renders lits using sig, for diagnostics.
func String(sig *term.Signature, lits []*term.Literal) string {
	parts := make([]string, len(lits))
	for i, l := range lits {
		parts[i] = l.StringIn(sig)
	}
	return strings.Join(parts, " | ")
}
