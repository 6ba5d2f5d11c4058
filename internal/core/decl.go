package core

// Decl is implemented by every Core declaration kind. External blocks
// are exploded into individual externals by the desugarer, so there is
// no ExternalBlock here (spec.md §3).
type Decl interface {
	Node
	coreDecl()
}

type DeclBase struct{ Base }

func (DeclBase) coreDecl() {}

type LetDecl struct {
	DeclBase
	Name       string
	Mut        bool
	Annotation TypeExpr
	Value      Expr
	Exported   bool
}

type LetRecBinding struct {
	Base
	Name       string
	Annotation TypeExpr
	Value      Expr
}

type LetRecGroup struct {
	DeclBase
	Bindings []LetRecBinding
	Exported bool
}

type TypeDeclBody interface{ coreTypeDeclBody() }

type AliasBody struct{ Type TypeExpr }
type VariantBody struct{ Constructors []VariantConstructor }
type RecordBody struct{ Fields []RecordTypeField }

func (AliasBody) coreTypeDeclBody()   {}
func (VariantBody) coreTypeDeclBody() {}
func (RecordBody) coreTypeDeclBody()  {}

type VariantConstructor struct {
	Base
	Name string
	Args []TypeExpr
}

// TypeDecl represents one member of a (possibly mutually recursive)
// group of type declarations; Group lists every name bound alongside
// it so alias expansion can bind all names before expanding any body,
// per spec.md §9's open question on recursive aliases.
type TypeDecl struct {
	DeclBase
	Name     string
	Params   []string
	Body     TypeDeclBody
	Group    []string
	Exported bool
}

type ExternalDecl struct {
	DeclBase
	Name     string
	Type     TypeExpr
	JSName   string
	Source   string
	Exported bool
}

type ImportSpecifier struct {
	Base
	Name     string
	Alias    string
	TypeOnly bool
}

type ImportKind int

const (
	ImportNamed ImportKind = iota
	ImportNamespace
	ImportSideEffectOnly
)

type ImportDecl struct {
	DeclBase
	Kind        ImportKind
	Specifiers  []ImportSpecifier
	NamespaceAs string
	TypeOnly    bool
	Source      string
}

type ExportDecl struct {
	DeclBase
	Specifiers []ImportSpecifier
	Source     string
}

// Module is the desugared counterpart of ast.Module.
type Module struct {
	Base
	File  string
	Decls []Decl
}
