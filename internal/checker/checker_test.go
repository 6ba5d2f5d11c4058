package checker

import (
	"testing"

	"github.com/mbcrawfo/vibefun/internal/desugar"
	"github.com/mbcrawfo/vibefun/internal/parser"
	"github.com/mbcrawfo/vibefun/internal/types"
)

func typeCheckSrc(t *testing.T, src string) *TypedModule {
	t.Helper()
	surface, err := parser.Parse(src, "<test>")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	mod, err := desugar.Desugar(surface)
	if err != nil {
		t.Fatalf("Desugar failed: %v", err)
	}
	tm, err := TypeCheck(mod, types.NewEnv())
	if err != nil {
		t.Fatalf("TypeCheck failed: %v", err)
	}
	return tm
}

func schemeOf(t *testing.T, tm *TypedModule, name string) string {
	t.Helper()
	sch, ok := tm.Schemes[name]
	if !ok {
		t.Fatalf("no scheme recorded for %q", name)
	}
	return sch.String()
}

func TestTypeCheck_LiteralLet(t *testing.T) {
	tm := typeCheckSrc(t, `let x = 1;`)
	if got := schemeOf(t, tm, "x"); got != "Int" {
		t.Fatalf("expected x : Int, got %s", got)
	}
}

func TestTypeCheck_IdentityIsGeneralized(t *testing.T) {
	tm := typeCheckSrc(t, `let id = (x) => x;`)
	sch := tm.Schemes["id"]
	if sch == nil {
		t.Fatal("no scheme for id")
	}
	if len(sch.Vars) == 0 {
		t.Fatalf("expected id to generalize to a polymorphic scheme, got %s", sch.String())
	}
}

func TestTypeCheck_ValueRestrictionRejectsGeneralizingApplication(t *testing.T) {
	// `twice((x) => x)` applied at the top level is not a syntactic value,
	// so the binding must stay monomorphic even though its inferred type
	// contains a free variable.
	tm := typeCheckSrc(t, `
let twice = (f) => (x) => f(f(x));
let g = twice((x) => x);
`)
	sch := tm.Schemes["g"]
	if sch == nil {
		t.Fatal("no scheme for g")
	}
	if len(sch.Vars) != 0 {
		t.Fatalf("expected g to stay monomorphic under the value restriction, got %s", sch.String())
	}
}

func TestTypeCheck_MismatchedBranchesFail(t *testing.T) {
	_, err := func() (tm *TypedModule, err error) {
		surface, perr := parser.Parse(`let x = if true then 1 else "no";`, "<test>")
		if perr != nil {
			t.Fatalf("Parse failed: %v", perr)
		}
		mod, derr := desugar.Desugar(surface)
		if derr != nil {
			t.Fatalf("Desugar failed: %v", derr)
		}
		return TypeCheck(mod, types.NewEnv())
	}()
	if err == nil {
		t.Fatal("expected a type error for mismatched if-branches")
	}
	if _, ok := err.(TypeError); !ok {
		t.Fatalf("expected TypeError, got %T", err)
	}
}

func TestTypeCheck_RecordProjection(t *testing.T) {
	tm := typeCheckSrc(t, `
let p = { x: 1, y: 2 };
let px = p.x;
`)
	if got := schemeOf(t, tm, "px"); got != "Int" {
		t.Fatalf("expected px : Int, got %s", got)
	}
}

func TestTypeCheck_VariantConstructorAndExhaustiveMatch(t *testing.T) {
	tm := typeCheckSrc(t, `
type Option<a> = Some(a) | None;

let unwrapOr = (default, opt) => match opt {
  Some(x) => x,
  None => default,
};
`)
	if len(tm.Warnings) != 0 {
		t.Fatalf("expected no exhaustiveness warnings, got %v", tm.Warnings)
	}
}

func TestTypeCheck_NonExhaustiveMatchWarns(t *testing.T) {
	tm := typeCheckSrc(t, `
type Option<a> = Some(a) | None;

let unwrap = (opt) => match opt {
  Some(x) => x,
};
`)
	if len(tm.Warnings) == 0 {
		t.Fatal("expected a non-exhaustive match warning")
	}
}

func TestTypeCheck_ExternalOverloadResolvedByArity(t *testing.T) {
	tm := typeCheckSrc(t, `
external log: (String) -> Unit = "log" from "console";
external log: (String) -> (String) -> Unit = "log" from "console";

let r = unsafe { log("hi") };
`)
	if got := schemeOf(t, tm, "r"); got != "Unit" {
		t.Fatalf("expected r : Unit, got %s", got)
	}
}

func TestTypeCheck_ExternalAmbiguousArityFails(t *testing.T) {
	surface, err := parser.Parse(`
external f: (String) -> Unit = "f" from "m";
external f: (String) -> Int = "f" from "m";

let r = unsafe { f("x") };
`, "<test>")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	mod, err := desugar.Desugar(surface)
	if err != nil {
		t.Fatalf("Desugar failed: %v", err)
	}
	_, err = TypeCheck(mod, types.NewEnv())
	if err == nil {
		t.Fatal("expected an ambiguous-overload error for two same-arity overloads")
	}
}
