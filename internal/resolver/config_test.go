package resolver

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverRoot_FindsVibefunJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFile), `{}`)
	sub := filepath.Join(root, "src", "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	got, hasConfig, err := DiscoverRoot(sub)
	if err != nil {
		t.Fatal(err)
	}
	if !hasConfig {
		t.Fatal("expected hasConfig=true")
	}
	if got != root {
		t.Fatalf("got root %q, want %q", got, root)
	}
}

func TestDiscoverRoot_FallsBackToPackageJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, PackageFile), `{}`)
	sub := filepath.Join(root, "src")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	got, hasConfig, err := DiscoverRoot(sub)
	if err != nil {
		t.Fatal(err)
	}
	if hasConfig {
		t.Fatal("expected hasConfig=false (package.json is not vibefun.json)")
	}
	if got != root {
		t.Fatalf("got root %q, want %q", got, root)
	}
}

func TestDiscoverRoot_PrefersVibefunJSONOverPackageJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, PackageFile), `{}`)
	inner := filepath.Join(root, "pkg")
	writeFile(t, filepath.Join(inner, ConfigFile), `{}`)

	got, hasConfig, err := DiscoverRoot(inner)
	if err != nil {
		t.Fatal(err)
	}
	if !hasConfig || got != inner {
		t.Fatalf("got (%q, %v), want (%q, true)", got, hasConfig, inner)
	}
}

func TestLoadConfig_PathMappingPrecedence(t *testing.T) {
	// spec.md §8 scenario 7: "With `"paths": { "lodash": ["./local/lodash.vf"] }`,
	// `import x from "lodash"` resolves to `./local/lodash.vf`, not
	// `node_modules/lodash`."
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFile), `{
		"compilerOptions": {
			"paths": { "lodash": ["./local/lodash.vf"] },
			"target": "es2020",
			"strict": true
		}
	}`)
	writeFile(t, filepath.Join(root, "local", "lodash.vf"), `export let id = (x) => x;`)

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.HasVibefunJSON {
		t.Fatal("expected HasVibefunJSON")
	}
	if len(cfg.CompilerOptions.Paths) != 1 {
		t.Fatalf("expected 1 path mapping, got %d", len(cfg.CompilerOptions.Paths))
	}
	if cfg.CompilerOptions.Paths[0].Pattern != "lodash" {
		t.Fatalf("unexpected pattern %q", cfg.CompilerOptions.Paths[0].Pattern)
	}
	if cfg.CompilerOptions.Extra["target"] != "es2020" {
		t.Fatalf("expected reserved key `target` to pass through inertly, got %v", cfg.CompilerOptions.Extra)
	}
	resolved, _, err := Resolve("lodash", root, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(root, "local", "lodash.vf"))
	if resolved != want {
		t.Fatalf("got %q, want the path-mapped %q", resolved, want)
	}
}

func TestLoadConfig_NoFilePresent(t *testing.T) {
	root := t.TempDir()
	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HasVibefunJSON {
		t.Fatal("expected HasVibefunJSON=false")
	}
	if len(cfg.CompilerOptions.Paths) != 0 {
		t.Fatal("expected no path mappings")
	}
}

func TestLoadConfig_WildcardPattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFile), `{
		"compilerOptions": { "paths": { "@/*": ["./src/*"] } }
	}`)
	writeFile(t, filepath.Join(root, "src", "utils.vf"), `export let id = (x) => x;`)

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	resolved, _, err := Resolve("@/utils", root, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(root, "src", "utils.vf"))
	if resolved != want {
		t.Fatalf("got %q, want %q", resolved, want)
	}
}
