// Package ast defines the Surface AST: the tree produced by the parser
// and consumed only by the desugarer (spec.md §3, "Surface AST"). Every
// node embeds a token.Location recording the token that triggered its
// construction, following the jsonnet ast.Node / NodeBase convention of
// carrying location data inline on every node rather than through a
// side table.
package ast

import "github.com/mbcrawfo/vibefun/internal/token"

// Node is implemented by every Surface AST node.
type Node interface {
	Location() token.Location
}

// Base is embedded by every concrete node to satisfy Node without
// repeating the accessor.
type Base struct {
	Loc token.Location
}

func (b Base) Location() token.Location { return b.Loc }

// Module is one source file: an ordered list of declarations, which
// include imports/exports/exports-by-re-export inline (spec.md §3).
type Module struct {
	Base
	File  string
	Decls []Decl
}

// Decl is implemented by every top-level declaration kind.
type Decl interface {
	Node
	declNode()
}

type DeclBase struct{ Base }

func (DeclBase) declNode() {}

// LetDecl is a single `let` binding, possibly `mut` for ref-cell
// semantics, with an optional type annotation.
type LetDecl struct {
	DeclBase
	Mut        bool
	Pattern    Pattern
	Annotation TypeExpr // nil if absent
	Value      Expr
	Exported   bool
}

// LetRecGroup is `let rec f = ... and g = ...`: one or more mutually
// recursive bindings sharing a single elevated binding scope.
type LetRecGroup struct {
	DeclBase
	Bindings []RecBinding
	Exported bool
}

type RecBinding struct {
	Base
	Name       string
	Annotation TypeExpr
	Value      Expr
}

// TypeDecl is `type Name<params> = Body`, optionally grouped with
// `and` into a mutually recursive TypeGroup (see TypeGroup below).
type TypeDecl struct {
	DeclBase
	Name     string
	Params   []string
	Body     TypeDeclBody
	Exported bool
}

// TypeGroup is one or more `type A = ... and B = ...` declarations bound
// simultaneously, per spec.md §4.2 disambiguation rule 6.
type TypeGroup struct {
	DeclBase
	Decls []*TypeDecl
}

// TypeDeclBody is implemented by the three shapes a type declaration's
// right-hand side may take.
type TypeDeclBody interface {
	typeDeclBody()
}

type AliasBody struct{ Type TypeExpr }
type VariantBody struct{ Constructors []VariantConstructor }
type RecordBody struct{ Fields []RecordTypeField }

func (AliasBody) typeDeclBody()   {}
func (VariantBody) typeDeclBody() {}
func (RecordBody) typeDeclBody()  {}

type VariantConstructor struct {
	Base
	Name string
	Args []TypeExpr
}

type RecordTypeField struct {
	Base
	Name string
	Type TypeExpr
}

// ExternalDecl imports a single JavaScript value with a Vibefun type
// annotation (spec.md §3, "external"). Source is the optional module
// specifier from a shared or per-item `from` clause.
type ExternalDecl struct {
	DeclBase
	Name     string
	Type     TypeExpr
	JSName   string
	Source   string // "" if absent
	Exported bool
}

// ExternalBlock shares one `from` clause across several externals; the
// desugarer explodes it into individual ExternalDecls (spec.md §4.3).
type ExternalBlock struct {
	DeclBase
	From  string
	Items []*ExternalDecl
}

// ImportKind distinguishes the several import flavors spec.md §3 lists.
type ImportKind int

const (
	ImportNamed ImportKind = iota
	ImportNamespace
	ImportSideEffectOnly
)

type ImportSpecifier struct {
	Base
	Name     string // imported name
	Alias    string // "" if no `as` clause
	TypeOnly bool   // `import type { ... }` or a type-only specifier in a mixed import
}

type ImportDecl struct {
	DeclBase
	Kind        ImportKind
	Specifiers  []ImportSpecifier // empty for namespace/side-effect-only
	NamespaceAs string            // set when Kind == ImportNamespace
	TypeOnly    bool              // the whole import is type-only
	Source      string
}

// ExportDecl re-exports bindings from another module, or marks local
// declarations exported when Source == "".
type ExportDecl struct {
	DeclBase
	Specifiers []ImportSpecifier
	Source     string
}
