package desugar

import (
	"testing"

	"github.com/mbcrawfo/vibefun/internal/core"
	"github.com/mbcrawfo/vibefun/internal/parser"
)

func mustDesugar(t *testing.T, src string) *core.Module {
	t.Helper()
	surface, err := parser.Parse(src, "<test>")
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	mod, err := Desugar(surface)
	if err != nil {
		t.Fatalf("Desugar failed: %v", err)
	}
	return mod
}

func TestDesugar_LambdaCurries(t *testing.T) {
	mod := mustDesugar(t, `let f = (x, y) => x;`)
	let := mod.Decls[0].(*core.LetDecl)
	outer, ok := let.Value.(*core.Lambda)
	if !ok || outer.Param != "x" {
		t.Fatalf("expected outer Lambda(x), got %#v", let.Value)
	}
	inner, ok := outer.Body.(*core.Lambda)
	if !ok || inner.Param != "y" {
		t.Fatalf("expected nested Lambda(y), got %#v", outer.Body)
	}
}

func TestDesugar_ApplyCurries(t *testing.T) {
	mod := mustDesugar(t, `let r = f(1, 2);`)
	let := mod.Decls[0].(*core.LetDecl)
	outer, ok := let.Value.(*core.Apply)
	if !ok {
		t.Fatalf("expected outer Apply, got %#v", let.Value)
	}
	inner, ok := outer.Func.(*core.Apply)
	if !ok {
		t.Fatalf("expected f(1) applied to 2, got %#v", outer.Func)
	}
	if v, ok := inner.Func.(*core.Var); !ok || v.Name != "f" {
		t.Fatalf("expected innermost function to be Var(f), got %#v", inner.Func)
	}
}

func TestDesugar_MatchGuardLowersToNestedMatch(t *testing.T) {
	mod := mustDesugar(t, `
let describe = (x) => match x {
  n when n > 0 => 1,
  _ => 0,
};
`)
	let := mod.Decls[0].(*core.LetDecl)
	lam := let.Value.(*core.Lambda)
	bound, ok := lam.Body.(*core.Let)
	if !ok {
		t.Fatalf("expected the scrutinee to be bound by a Let, got %#v", lam.Body)
	}
	m, ok := bound.Body.(*core.Match)
	if !ok {
		t.Fatalf("expected Match, got %#v", bound.Body)
	}
	if len(m.Arms) != 2 {
		t.Fatalf("expected the guarded arm to still occupy one slot, got %d arms", len(m.Arms))
	}
	// The guarded arm's body must become a nested match/if discriminating
	// on the guard, not the bare literal `1` from the source.
	if _, ok := m.Arms[0].Body.(*core.Literal); ok {
		t.Fatal("expected the guard to lower into the arm body rather than vanish")
	}
}

func TestDesugar_LetRecGroupSharesGroupNames(t *testing.T) {
	mod := mustDesugar(t, `
let rec isEven = (n) => if n == 0 then true else isOdd(n - 1)
and isOdd = (n) => if n == 0 then false else isEven(n - 1);
`)
	if len(mod.Decls) == 0 {
		t.Fatal("expected at least one decl")
	}
	group, ok := mod.Decls[0].(*core.LetRecGroup)
	if !ok {
		t.Fatalf("expected a LetRecGroup, got %#v", mod.Decls[0])
	}
	if len(group.Bindings) != 2 || group.Bindings[0].Name != "isEven" || group.Bindings[1].Name != "isOdd" {
		t.Fatalf("expected the group to hold both rec-binding names, got %#v", group.Bindings)
	}
}

func TestDesugar_ListLiteralBecomesConsNil(t *testing.T) {
	mod := mustDesugar(t, `let xs = [1, 2];`)
	let := mod.Decls[0].(*core.LetDecl)
	outer, ok := let.Value.(*core.VariantConstruct)
	if !ok || outer.Name != core.ConsName {
		t.Fatalf("expected outer Cons, got %#v", let.Value)
	}
	if len(outer.Args) != 2 {
		t.Fatalf("expected Cons(head, tail), got %d args", len(outer.Args))
	}
	tail, ok := outer.Args[1].(*core.VariantConstruct)
	if !ok || tail.Name != core.ConsName {
		t.Fatalf("expected nested Cons for tail, got %#v", outer.Args[1])
	}
}

func TestDesugar_RecordSpreadPreservesOrder(t *testing.T) {
	mod := mustDesugar(t, `let p2 = { ...p, x: 1 };`)
	let := mod.Decls[0].(*core.LetDecl)
	upd, ok := let.Value.(*core.RecordUpdate)
	if !ok {
		t.Fatalf("expected RecordUpdate, got %#v", let.Value)
	}
	if len(upd.Items) != 1 || upd.Items[0].Field != "x" {
		t.Fatalf("expected one trailing field item `x`, got %#v", upd.Items)
	}
}
