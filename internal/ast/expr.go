package ast

import (
	"volt/internal/source"
)

// ExprKind enumerates the expression forms the checker types. The surface
// is deliberately small: scrutinees and arm bodies, not a full language.
type ExprKind uint8

const (
	// ExprLit represents a literal expression.
	ExprLit ExprKind = iota
	// ExprPath represents a (possibly qualified) name reference.
	ExprPath
	// ExprRef represents `&expr` / `&mut expr`.
	ExprRef
	// ExprOwn represents `own expr`.
	ExprOwn
	// ExprTuple represents `(a, b, ...)`.
	ExprTuple
	// ExprGroup represents a parenthesized expression.
	ExprGroup
	// ExprMatch represents a match expression (surface or desugared).
	ExprMatch
	// ExprBlock represents `{ stmts; tail }`.
	ExprBlock
)

// Expr represents an expression node in the AST.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// ExprLitKind enumerates literal token categories.
type ExprLitKind uint8

const (
	LitInt ExprLitKind = iota
	LitFloat
	LitChar
	LitByte
	LitString
	LitByteString
	LitBool
)

// ExprLitData holds literal expression details.
type ExprLitData struct {
	Kind  ExprLitKind
	Value source.StringID // сырое значение для sema
	Neg   bool            // leading minus folded into the literal
}

// PathSegment is one `::`-separated component of a path.
type PathSegment struct {
	Name source.StringID
	Span source.Span
}

type ExprPathData struct {
	Segments []PathSegment
}

type ExprRefData struct {
	Operand ExprID
	Mutable bool
}

type ExprOwnData struct {
	Operand ExprID
}

type ExprTupleData struct {
	Elements []ExprID
}

type ExprGroupData struct {
	Inner ExprID
}

// MatchSource distinguishes written matches from desugared conditions so
// the checker can suppress literal-pattern noise for `if`/`while`.
type MatchSource uint8

const (
	MatchNormal MatchSource = iota
	MatchIfDesugar
	MatchWhileDesugar
)

// Arm is one `pat => body` of a match.
type Arm struct {
	Pat  PatID
	Body ExprID
	Span source.Span
}

type ExprMatchData struct {
	Scrutinee ExprID
	Source    MatchSource
	Arms      []ArmID
}

type ExprBlockData struct {
	Stmts []StmtID
	// Tail is the trailing expression without a semicolon; NoExprID means
	// the block evaluates to unit.
	Tail ExprID
}

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena   *Arena[Expr]
	Lits    *Arena[ExprLitData]
	Paths   *Arena[ExprPathData]
	Refs    *Arena[ExprRefData]
	Owns    *Arena[ExprOwnData]
	Tuples  *Arena[ExprTupleData]
	Groups  *Arena[ExprGroupData]
	Matches *Arena[ExprMatchData]
	Blocks  *Arena[ExprBlockData]
	Arms    *Arena[Arm]
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using
// capHint as the initial capacity. If capHint is 0, 1<<8 is used.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:   NewArena[Expr](capHint),
		Lits:    NewArena[ExprLitData](capHint),
		Paths:   NewArena[ExprPathData](capHint),
		Refs:    NewArena[ExprRefData](capHint),
		Owns:    NewArena[ExprOwnData](capHint),
		Tuples:  NewArena[ExprTupleData](capHint),
		Groups:  NewArena[ExprGroupData](capHint),
		Matches: NewArena[ExprMatchData](capHint),
		Blocks:  NewArena[ExprBlockData](capHint),
		Arms:    NewArena[Arm](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// NewLit creates a literal expression.
func (e *Exprs) NewLit(span source.Span, kind ExprLitKind, value source.StringID, neg bool) ExprID {
	payload := e.Lits.Allocate(ExprLitData{Kind: kind, Value: value, Neg: neg})
	return e.new(ExprLit, span, PayloadID(payload))
}

// Lit returns the literal data for the given expression ID.
func (e *Exprs) Lit(id ExprID) (*ExprLitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLit {
		return nil, false
	}
	return e.Lits.Get(uint32(expr.Payload)), true
}

// NewPath creates a path expression.
func (e *Exprs) NewPath(span source.Span, segments []PathSegment) ExprID {
	payload := e.Paths.Allocate(ExprPathData{Segments: segments})
	return e.new(ExprPath, span, PayloadID(payload))
}

// Path returns the path data for the given expression ID.
func (e *Exprs) Path(id ExprID) (*ExprPathData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprPath {
		return nil, false
	}
	return e.Paths.Get(uint32(expr.Payload)), true
}

// NewRef creates a reference expression.
func (e *Exprs) NewRef(span source.Span, operand ExprID, mutable bool) ExprID {
	payload := e.Refs.Allocate(ExprRefData{Operand: operand, Mutable: mutable})
	return e.new(ExprRef, span, PayloadID(payload))
}

// Ref returns the reference data for the given expression ID.
func (e *Exprs) Ref(id ExprID) (*ExprRefData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprRef {
		return nil, false
	}
	return e.Refs.Get(uint32(expr.Payload)), true
}

// NewOwn creates an own expression.
func (e *Exprs) NewOwn(span source.Span, operand ExprID) ExprID {
	payload := e.Owns.Allocate(ExprOwnData{Operand: operand})
	return e.new(ExprOwn, span, PayloadID(payload))
}

// Own returns the own data for the given expression ID.
func (e *Exprs) Own(id ExprID) (*ExprOwnData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprOwn {
		return nil, false
	}
	return e.Owns.Get(uint32(expr.Payload)), true
}

// NewTuple creates a tuple expression.
func (e *Exprs) NewTuple(span source.Span, elements []ExprID) ExprID {
	payload := e.Tuples.Allocate(ExprTupleData{Elements: elements})
	return e.new(ExprTuple, span, PayloadID(payload))
}

// Tuple returns the tuple data for the given expression ID.
func (e *Exprs) Tuple(id ExprID) (*ExprTupleData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprTuple {
		return nil, false
	}
	return e.Tuples.Get(uint32(expr.Payload)), true
}

// NewGroup creates a grouped expression.
func (e *Exprs) NewGroup(span source.Span, inner ExprID) ExprID {
	payload := e.Groups.Allocate(ExprGroupData{Inner: inner})
	return e.new(ExprGroup, span, PayloadID(payload))
}

// Group returns the group data for the given expression ID.
func (e *Exprs) Group(id ExprID) (*ExprGroupData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprGroup {
		return nil, false
	}
	return e.Groups.Get(uint32(expr.Payload)), true
}

// NewArm allocates a match arm.
func (e *Exprs) NewArm(span source.Span, pat PatID, body ExprID) ArmID {
	return ArmID(e.Arms.Allocate(Arm{Pat: pat, Body: body, Span: span}))
}

// Arm returns the arm with the given ID.
func (e *Exprs) Arm(id ArmID) *Arm {
	return e.Arms.Get(uint32(id))
}

// NewMatch creates a match expression.
func (e *Exprs) NewMatch(span source.Span, scrutinee ExprID, src MatchSource, arms []ArmID) ExprID {
	payload := e.Matches.Allocate(ExprMatchData{Scrutinee: scrutinee, Source: src, Arms: arms})
	return e.new(ExprMatch, span, PayloadID(payload))
}

// Match returns the match data for the given expression ID.
func (e *Exprs) Match(id ExprID) (*ExprMatchData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprMatch {
		return nil, false
	}
	return e.Matches.Get(uint32(expr.Payload)), true
}

// NewBlock creates a block expression.
func (e *Exprs) NewBlock(span source.Span, stmts []StmtID, tail ExprID) ExprID {
	payload := e.Blocks.Allocate(ExprBlockData{Stmts: stmts, Tail: tail})
	return e.new(ExprBlock, span, PayloadID(payload))
}

// Block returns the block data for the given expression ID.
func (e *Exprs) Block(id ExprID) (*ExprBlockData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBlock {
		return nil, false
	}
	return e.Blocks.Get(uint32(expr.Payload)), true
}
