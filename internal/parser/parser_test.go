package parser

import (
	"testing"

	"github.com/mbcrawfo/vibefun/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, err := Parse(src, "<test>")
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return mod
}

func TestParse_SimpleLet(t *testing.T) {
	mod := mustParse(t, `let x = 1;`)
	if len(mod.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(mod.Decls))
	}
	let, ok := mod.Decls[0].(*ast.LetDecl)
	if !ok {
		t.Fatalf("expected *ast.LetDecl, got %T", mod.Decls[0])
	}
	lit, ok := let.Value.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt || lit.Raw != "1" {
		t.Fatalf("expected Literal(Int,1), got %#v", let.Value)
	}
}

func TestParse_MissingSemicolonBetweenDeclsFails(t *testing.T) {
	_, err := Parse("let x = 1\nlet y = 2;", "<test>")
	if err == nil {
		t.Fatal("expected a parse error: semicolons between declarations are required")
	}
}

func TestParse_TrailingSemicolonOptionalBeforeEOF(t *testing.T) {
	mod, err := Parse(`let x = 1`, "<test>")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(mod.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(mod.Decls))
	}
}

func TestParse_ArithmeticPrecedence(t *testing.T) {
	mod := mustParse(t, `let x = 1 + 2 * 3;`)
	let := mod.Decls[0].(*ast.LetDecl)
	bin, ok := let.Value.(*ast.Binary)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("expected top-level +, got %#v", let.Value)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != ast.OpMul {
		t.Fatalf("expected * nested under +, got %#v", bin.Right)
	}
}

func TestParse_PipeIsLeftAssociative(t *testing.T) {
	mod := mustParse(t, `let x = a |> f |> g;`)
	let := mod.Decls[0].(*ast.LetDecl)
	pipe, ok := let.Value.(*ast.Pipe)
	if !ok {
		t.Fatalf("expected top-level Pipe, got %#v", let.Value)
	}
	if _, ok := pipe.Left.(*ast.Pipe); !ok {
		t.Fatalf("expected (a |> f) |> g, got right-nested %#v", pipe)
	}
}

func TestParse_MultiParamLambda(t *testing.T) {
	mod := mustParse(t, `let f = (x, y) => x + y;`)
	let := mod.Decls[0].(*ast.LetDecl)
	lam, ok := let.Value.(*ast.Lambda)
	if !ok {
		t.Fatalf("expected Lambda, got %#v", let.Value)
	}
	if len(lam.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(lam.Params))
	}
}

func TestParse_MatchWithGuard(t *testing.T) {
	mod := mustParse(t, `
let describe = (x) => match x {
  n when n > 0 => "positive",
  _ => "other",
};
`)
	let := mod.Decls[0].(*ast.LetDecl)
	lam := let.Value.(*ast.Lambda)
	m, ok := lam.Body.(*ast.Match)
	if !ok {
		t.Fatalf("expected Match body, got %#v", lam.Body)
	}
	if len(m.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(m.Arms))
	}
	if m.Arms[0].Guard == nil {
		t.Fatal("expected a guard on the first arm")
	}
}

func TestParse_ImportTypeOnly(t *testing.T) {
	mod := mustParse(t, `import type { Foo } from "./mod";`)
	imp, ok := mod.Decls[0].(*ast.ImportDecl)
	if !ok {
		t.Fatalf("expected ImportDecl, got %#v", mod.Decls[0])
	}
	if !imp.TypeOnly {
		t.Fatal("expected TypeOnly=true for `import type { ... }`")
	}
	if len(imp.Specifiers) != 1 || imp.Specifiers[0].Name != "Foo" {
		t.Fatalf("unexpected specifiers %#v", imp.Specifiers)
	}
}

func TestParse_ImportMixedTypeOnlySpecifier(t *testing.T) {
	mod := mustParse(t, `import { type Foo, bar } from "./mod";`)
	imp := mod.Decls[0].(*ast.ImportDecl)
	if imp.TypeOnly {
		t.Fatal("the whole import is not type-only, only one specifier is")
	}
	if len(imp.Specifiers) != 2 {
		t.Fatalf("expected 2 specifiers, got %d", len(imp.Specifiers))
	}
	if !imp.Specifiers[0].TypeOnly || imp.Specifiers[0].Name != "Foo" {
		t.Fatalf("expected Foo to be type-only, got %#v", imp.Specifiers[0])
	}
	if imp.Specifiers[1].TypeOnly || imp.Specifiers[1].Name != "bar" {
		t.Fatalf("expected bar to be a value specifier, got %#v", imp.Specifiers[1])
	}
}

func TestParse_RecordUpdate(t *testing.T) {
	mod := mustParse(t, `let p2 = { ...p, x: 1 };`)
	let := mod.Decls[0].(*ast.LetDecl)
	upd, ok := let.Value.(*ast.RecordUpdate)
	if !ok {
		t.Fatalf("expected RecordUpdate, got %#v", let.Value)
	}
	if len(upd.Items) != 1 {
		t.Fatalf("expected 1 trailing field item, got %d", len(upd.Items))
	}
}

func TestParse_VariantTypeDecl(t *testing.T) {
	mod := mustParse(t, `type Option<a> = Some(a) | None;`)
	td, ok := mod.Decls[0].(*ast.TypeDecl)
	if !ok {
		t.Fatalf("expected TypeDecl, got %#v", mod.Decls[0])
	}
	vb, ok := td.Body.(ast.VariantBody)
	if !ok {
		t.Fatalf("expected VariantBody, got %#v", td.Body)
	}
	if len(vb.Constructors) != 2 {
		t.Fatalf("expected 2 constructors, got %d", len(vb.Constructors))
	}
}
