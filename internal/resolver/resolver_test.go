package resolver

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/mbcrawfo/vibefun/internal/diagnostic"
)

func TestLoadProject_TypeChecksInDependencyOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFile), `{}`)
	writeFile(t, filepath.Join(root, "math.vf"), `
export let add = (x, y) => x + y;
`)
	writeFile(t, filepath.Join(root, "main.vf"), `
import { add } from "./math";

let result = add(1, 2);
`)

	proj, err := LoadProject(filepath.Join(root, "main.vf"), Options{})
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}

	mathAbs, _ := filepath.EvalSymlinks(filepath.Join(root, "math.vf"))
	mainAbs, _ := filepath.EvalSymlinks(filepath.Join(root, "main.vf"))

	pos := make(map[string]int, len(proj.Order))
	for i, p := range proj.Order {
		pos[p] = i
	}
	if !(pos[mathAbs] < pos[mainAbs]) {
		t.Fatalf("expected math before main in topo order, got %v", proj.Order)
	}

	mathMod, ok := proj.Cache.Get(mathAbs)
	if !ok || mathMod.Typed == nil {
		t.Fatal("expected math.vf to be type-checked")
	}
	if _, ok := mathMod.Typed.Schemes["add"]; !ok {
		t.Fatal("expected `add` to have a principal scheme")
	}

	mainMod, ok := proj.Cache.Get(mainAbs)
	if !ok || mainMod.Typed == nil {
		t.Fatal("expected main.vf to be type-checked")
	}
	if sch, ok := mainMod.Typed.Schemes["result"]; !ok || sch.Type.String() != "Int" {
		t.Fatalf("expected `result : Int`, got %v (ok=%v)", sch, ok)
	}

	for _, d := range proj.Diagnostics {
		if d.Severity == diagnostic.SeverityError {
			t.Fatalf("unexpected error diagnostic: %v", d)
		}
	}
}

func TestLoadProject_ModuleNotFoundIsFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.vf"), `import { x } from "./missing";`)

	_, err := LoadProject(filepath.Join(root, "main.vf"), Options{})
	if err == nil {
		t.Fatal("expected an error")
	}
	re, ok := err.(ResolveError)
	if !ok {
		t.Fatalf("expected ResolveError, got %T: %v", err, err)
	}
	if re.Diag.Code != diagnostic.CodeModuleNotFound {
		t.Fatalf("expected VF5000, got %s", re.Diag.Code)
	}
}

func TestLoadProject_SelfImportIsFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.vf"), `import { x } from "./main";`)

	_, err := LoadProject(filepath.Join(root, "main.vf"), Options{})
	if err == nil {
		t.Fatal("expected an error")
	}
	re, ok := err.(ResolveError)
	if !ok {
		t.Fatalf("expected ResolveError, got %T: %v", err, err)
	}
	if re.Diag.Code != diagnostic.CodeSelfImport {
		t.Fatalf("expected VF5004, got %s", re.Diag.Code)
	}
}

func TestLoadProject_ValueCycleWarnsButCompletes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.vf"), `
import { fromB } from "./b";
export let fromA = 1;
`)
	writeFile(t, filepath.Join(root, "b.vf"), `
import { fromA } from "./a";
export let fromB = 2;
`)

	proj, err := LoadProject(filepath.Join(root, "a.vf"), Options{})
	if err != nil {
		t.Fatalf("a real cycle is a warning, not a fatal error: %v", err)
	}

	var sawCycle bool
	for _, d := range proj.Diagnostics {
		if d.Code == diagnostic.CodeCircularDependency {
			sawCycle = true
			if !strings.Contains(d.Message, "->") {
				t.Fatalf("expected the cycle path in the message, got %q", d.Message)
			}
		}
	}
	if !sawCycle {
		t.Fatal("expected a VF5900 circular dependency warning")
	}
	if len(proj.Cycles) != 1 {
		t.Fatalf("expected exactly one reported cycle, got %d", len(proj.Cycles))
	}
}

func TestLoadProject_TypeOnlyCycleIsSilent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.vf"), `
import type { BType } from "./b";
export type AType = Int;
`)
	writeFile(t, filepath.Join(root, "b.vf"), `
import type { AType } from "./a";
export type BType = Int;
`)

	proj, err := LoadProject(filepath.Join(root, "a.vf"), Options{})
	if err != nil {
		t.Fatalf("type-only cycles must not fail the project: %v", err)
	}
	for _, d := range proj.Diagnostics {
		if d.Code == diagnostic.CodeCircularDependency {
			t.Fatalf("type-only cycle must be silent, got %v", d)
		}
	}
}
