package resolver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolve_RelativeFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.vf"), `export let id = (x) => x;`)
	writeFile(t, filepath.Join(root, "a.vf"), `import { id } from "./b";`)

	resolved, caseMismatch, err := Resolve("./b", root, &Config{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	if caseMismatch {
		t.Fatal("unexpected case mismatch")
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(root, "b.vf"))
	if resolved != want {
		t.Fatalf("got %q want %q", resolved, want)
	}
}

func TestResolve_DirectoryIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "index.vf"), `export let id = (x) => x;`)

	resolved, _, err := Resolve("./lib", root, &Config{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(root, "lib", "index.vf"))
	if resolved != want {
		t.Fatalf("got %q want %q", resolved, want)
	}
}

func TestResolve_NodeModules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node_modules", "leftpad", "index.vf"), `export let pad = (x) => x;`)
	importerDir := filepath.Join(root, "src", "nested")
	if err := os.MkdirAll(importerDir, 0o755); err != nil {
		t.Fatal(err)
	}

	resolved, _, err := Resolve("leftpad", importerDir, &Config{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(root, "node_modules", "leftpad", "index.vf"))
	if resolved != want {
		t.Fatalf("got %q want %q", resolved, want)
	}
}

func TestResolve_ModuleNotFound(t *testing.T) {
	root := t.TempDir()
	_, _, err := Resolve("./missing", root, &Config{Root: root})
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestResolve_CaseMismatchWarns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Util.vf"), `export let id = (x) => x;`)

	resolved, caseMismatch, err := Resolve("./util", root, &Config{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	if !caseMismatch {
		t.Fatal("expected a case mismatch warning")
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(root, "Util.vf"))
	if resolved != want {
		t.Fatalf("got %q want %q", resolved, want)
	}
}

func TestResolve_PathMappingBeforeNodeModules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node_modules", "lodash", "index.vf"), `export let real = (x) => x;`)
	writeFile(t, filepath.Join(root, "local", "lodash.vf"), `export let shim = (x) => x;`)
	cfg := &Config{Root: root, CompilerOptions: CompilerOptions{
		Paths: []PathMapping{{Pattern: "lodash", Targets: []string{"./local/lodash.vf"}}},
	}}

	resolved, _, err := Resolve("lodash", root, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(root, "local", "lodash.vf"))
	if resolved != want {
		t.Fatalf("got %q, want the path-mapped shim %q (not node_modules)", resolved, want)
	}
}

func TestMatchPattern_Wildcard(t *testing.T) {
	wc, ok := matchPattern("@/*", "@/foo/bar")
	if !ok || wc != "foo/bar" {
		t.Fatalf("got (%q, %v), want (\"foo/bar\", true)", wc, ok)
	}
	if _, ok := matchPattern("@/*", "other/foo"); ok {
		t.Fatal("expected no match")
	}
	if wc, ok := matchPattern("lodash", "lodash"); !ok || wc != "" {
		t.Fatalf("exact pattern should match with empty wildcard, got (%q, %v)", wc, ok)
	}
}
