package resolver

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/token"
)

// ConfigFile and PackageFile are the two project markers §4.5
// "Project-root discovery" recognizes, in lookup priority order.
const (
	ConfigFile  = "vibefun.json"
	PackageFile = "package.json"
)

// PathMapping is one `compilerOptions.paths` entry: an alias pattern
// (possibly carrying a single `*` wildcard) and its ordered candidate
// targets (spec.md §6: "try each target in order").
type PathMapping struct {
	Pattern string
	Targets []string
}

// CompilerOptions holds the recognized `compilerOptions` keys plus a
// passthrough bag for everything else, per spec.md §6: "Any other key
// ... must not cause failure." SPEC_FULL.md §6 additionally names
// `target` and `strict` as reserved-but-inert keys; they land in Extra
// alongside any other unrecognized key.
type CompilerOptions struct {
	Paths []PathMapping
	Extra map[string]any
}

// Config is the parsed project configuration, defaulted when no
// vibefun.json is present (spec.md §4.5 falls back to package.json as
// a project marker only — it carries no compiler options of its own).
type Config struct {
	Root            string
	HasVibefunJSON  bool
	CompilerOptions CompilerOptions
}

// DiscoverRoot walks upward from startDir looking first for
// vibefun.json, then for package.json, per spec.md §4.5: "starting
// from the entry file's directory, walk upward until a vibefun.json is
// found; if none, fall back to the nearest package.json; otherwise the
// filesystem root."
func DiscoverRoot(startDir string) (root string, hasVibefunJSON bool, err error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, err
	}

	dir := abs
	var packageJSONRoot string
	for {
		if fileExists(filepath.Join(dir, ConfigFile)) {
			return dir, true, nil
		}
		if packageJSONRoot == "" && fileExists(filepath.Join(dir, PackageFile)) {
			packageJSONRoot = dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if packageJSONRoot != "" {
		return packageJSONRoot, false, nil
	}
	return dir, false, nil // filesystem root, no marker found
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadConfig reads vibefun.json from root, if present, using koanf
// layered over a single file.Provider/json.Parser pair — the same
// combination the holomush-holomush example's dependency set carries
// for its own layered configuration (DESIGN.md notes the json parser
// substitution for holomush's yaml one, since vibefun.json is JSON).
// A project with no vibefun.json gets a zero-value Config — "any other
// key must not cause failure" extends to "no file at all must not
// cause failure" for a project identified only by package.json.
func LoadConfig(root string) (*Config, error) {
	cfg := &Config{Root: root}

	path := filepath.Join(root, ConfigFile)
	if !fileExists(path) {
		return cfg, nil
	}
	cfg.HasVibefunJSON = true

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return nil, ResolveError{Diag: diagnostic.Diagnostic{
			Code:     diagnostic.CodeInvalidConfig,
			Severity: diagnostic.SeverityError,
			Phase:    diagnostic.PhaseResolver,
			Message:  "cannot parse " + ConfigFile + ": " + err.Error(),
			Location: token.Location{File: path},
		}}
	}

	raw := k.Get("compilerOptions")
	options, ok := raw.(map[string]interface{})
	if !ok {
		return cfg, nil
	}

	extra := make(map[string]any, len(options))
	for key, val := range options {
		if key == "paths" {
			continue
		}
		extra[key] = val
	}
	cfg.CompilerOptions.Extra = extra

	rawPaths, ok := options["paths"].(map[string]interface{})
	if !ok {
		return cfg, nil
	}
	patterns := make([]string, 0, len(rawPaths))
	for pattern := range rawPaths {
		patterns = append(patterns, pattern)
	}
	// koanf (like encoding/json into map[string]interface{}) does not
	// preserve source key order; sort by descending pattern length so
	// matching prefers the most specific alias first, then
	// lexicographically for full determinism among equal lengths.
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i]) != len(patterns[j]) {
			return len(patterns[i]) > len(patterns[j])
		}
		return patterns[i] < patterns[j]
	})

	for _, pattern := range patterns {
		targets, err := toStringSlice(rawPaths[pattern])
		if err != nil {
			return nil, ResolveError{Diag: diagnostic.Diagnostic{
				Code:     diagnostic.CodeInvalidConfig,
				Severity: diagnostic.SeverityError,
				Phase:    diagnostic.PhaseResolver,
				Message:  "compilerOptions.paths[\"" + pattern + "\"] must be an array of strings",
				Location: token.Location{File: path},
			}}
		}
		cfg.CompilerOptions.Paths = append(cfg.CompilerOptions.Paths, PathMapping{
			Pattern: pattern,
			Targets: targets,
		})
	}

	return cfg, nil
}

func toStringSlice(v interface{}) ([]string, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, errNotArray
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errNotArray
		}
		out[i] = s
	}
	return out, nil
}

var errNotArray = errInvalidPaths("compilerOptions.paths target list must be an array of strings")

type errInvalidPaths string

func (e errInvalidPaths) Error() string { return string(e) }
