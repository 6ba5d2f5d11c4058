// Package core defines the Core AST: the smaller IR produced by the
// desugarer and consumed by the type checker (spec.md §3, "Core AST
// (post-desugar)"). Every node still carries the originating source
// location so type errors can point back at real source text, but the
// node set is deliberately smaller than ast.Expr/ast.Pattern — sugar
// forms have already been eliminated.
package core

import "github.com/mbcrawfo/vibefun/internal/token"

// Node is implemented by every Core AST node.
type Node interface {
	Location() token.Location
}

type Base struct {
	Loc token.Location
}

func (b Base) Location() token.Location { return b.Loc }

// NilName and ConsName are the reserved built-in list constructors
// (spec.md §3 invariants: "Core Cons/Nil constructors are reserved
// built-ins owned by the compiler, not redeclarable").
const (
	NilName  = "Nil"
	ConsName = "Cons"
)

// FreshPrefix is the prefix desugar-generated identifiers use; it is
// syntactically forbidden in source identifiers (the lexer never
// produces an Ident token starting with '$'), so no user name can ever
// collide with one (spec.md §4.3).
const FreshPrefix = "$"

// Expr is implemented by every Core expression node.
type Expr interface {
	Node
	coreExpr()
}

type ExprBase struct{ Base }

func (ExprBase) coreExpr() {}

type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitUnit
)

type Literal struct {
	ExprBase
	Kind LiteralKind
	Raw  string
}

type Var struct {
	ExprBase
	Name string
}

// Lambda is single-parameter: `(x, y) => e` desugars to nested
// single-parameter lambdas (spec.md §4.3).
type Lambda struct {
	ExprBase
	Param string
	Body  Expr
}

// Apply is single-argument: `f(a, b)` desugars to `(f a) b`.
type Apply struct {
	ExprBase
	Func Expr
	Arg  Expr

	// Nullary marks an Apply synthesized from a zero-argument surface
	// call `f()` (desugar/expr.go's desugarApply lowers it to `f` applied
	// to a Unit literal, since Core Apply is always single-argument).
	// Overload-arity resolution treats a Nullary node as contributing no
	// argument to the call's arity, so a truly zero-argument surface
	// call is still reported as such rather than as a one-argument call
	// against a synthesized Unit.
	Nullary bool
}

// Let is a single binding; Recursive marks a `let rec` group member
// (an expression-position `let rec` group, ast.LetRecIn, is desugared
// into nested single-binding Lets, each with Recursive set and Group
// populated with sibling names so the
// checker can bind the whole group at one level before inferring any
// member, per spec.md §4.4.3).
type Let struct {
	ExprBase
	Name      string
	Recursive bool
	Group     []string // other names bound in the same rec group, if any
	Value     Expr
	Body      Expr
}

type MatchArm struct {
	Base
	Pattern Pattern
	Body    Expr
}

// Match has no or-patterns and no guards: both are eliminated by the
// desugarer (or-patterns duplicate arms, guards lower to nested
// matches), per spec.md §3 and §4.3.
type Match struct {
	ExprBase
	Scrutinee Expr
	Arms      []MatchArm
}

type RecordFieldExpr struct {
	Base
	Name  string
	Value Expr
}

type RecordLiteral struct {
	ExprBase
	Fields []RecordFieldExpr
}

type Project struct {
	ExprBase
	Record Expr
	Field  string
}

// UpdateItem is either a named field overwrite or a spread source;
// order is preserved so "rightmost wins" can be implemented uniformly
// over fields and spreads (spec.md §4.3).
type UpdateItem struct {
	Base
	Field  string // "" if Spread != nil
	Value  Expr   // field value, if Field != ""
	Spread Expr   // spread source, if Field == ""
}

type RecordUpdate struct {
	ExprBase
	Base_ Expr
	Items []UpdateItem
}

// VariantConstruct builds a value of a variant type, e.g. `Some(x)`.
// List literals desugar to nested VariantConstruct of Cons/Nil.
type VariantConstruct struct {
	ExprBase
	Name string
	Args []Expr
}

type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpConcatString
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
)

type Binary struct {
	ExprBase
	Op    BinOp
	Left  Expr
	Right Expr
}

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
	OpDeref
)

type Unary struct {
	ExprBase
	Op      UnaryOp
	Operand Expr
}

// RefAssign is `r := v`; prefix `-`/`!` and `ref(e)` pass through as
// Unary/Apply respectively (spec.md §4.3: "reference ops ... are
// pass-through").
type RefAssign struct {
	ExprBase
	Ref   Expr
	Value Expr
}

type TypeAnnotation struct {
	ExprBase
	Value Expr
	Type  TypeExpr
}

// Unsafe preserves the boundary at which external calls become legal
// (spec.md §4.3, §4.4.4).
type Unsafe struct {
	ExprBase
	Body Expr
}

type While struct {
	ExprBase
	Cond Expr
	Body Expr
}

// Tuple survives desugaring structurally (spec.md §4.4.2: "Functions,
// applications, references, tuples: structural, by arity").
type Tuple struct {
	ExprBase
	Items []Expr
}
