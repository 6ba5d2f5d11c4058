package resolver

import (
	"os"
	"path/filepath"
	"strings"
)

// SourceExt is the Vibefun source file extension (spec.md §6 "File
// conventions").
const SourceExt = ".vf"

// IndexBasename is the file a directory-form import resolves to when
// no extension is supplied (spec.md §4.5 step 4).
const IndexBasename = "index" + SourceExt

// Resolve implements the six-step algorithm of spec.md §4.5
// "Resolution algorithm": path mapping, then relative, then
// node_modules, each followed by file-vs-directory resolution,
// symlink-following, and a case-sensitivity check. importerDir is the
// importing file's canonical directory. Returns the resolved real
// path and whether a case-only mismatch was found (VF5901, a warning
// rather than a failure).
func Resolve(specifier, importerDir string, cfg *Config) (resolved string, caseMismatch bool, err error) {
	if cfg != nil {
		if candidate, ok, cerr := resolvePathMapping(specifier, cfg); ok {
			if cerr != nil {
				return "", false, cerr
			}
			return finishResolution(candidate)
		}
	}

	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		return finishResolution(filepath.Join(importerDir, specifier))
	}

	if base, ok := resolveNodeModules(specifier, importerDir); ok {
		return finishResolution(base)
	}

	return "", false, &notFoundError{specifier: specifier, importerDir: importerDir}
}

// resolvePathMapping consults `compilerOptions.paths` before any other
// resolution strategy (spec.md §6 "Precedence: paths is consulted
// before node_modules resolution"). Patterns were sorted by descending
// specificity when the Config was loaded, so the first match wins.
func resolvePathMapping(specifier string, cfg *Config) (candidate string, matched bool, err error) {
	for _, mapping := range cfg.CompilerOptions.Paths {
		wildcard, ok := matchPattern(mapping.Pattern, specifier)
		if !ok {
			continue
		}
		for _, target := range mapping.Targets {
			resolvedTarget := substituteWildcard(target, wildcard)
			base := resolvedTarget
			if !filepath.IsAbs(base) {
				base = filepath.Join(cfg.Root, resolvedTarget)
			}
			if path, ok := tryFileOrDir(base, strings.HasSuffix(resolvedTarget, "/")); ok {
				return path, true, nil
			}
		}
		// Matched a pattern but no target resolved to a real file: per
		// spec.md §4.5 this specifier was claimed by the mapping, so we
		// do not fall through to node_modules resolution for it.
		return "", true, &notFoundError{specifier: specifier, importerDir: cfg.Root}
	}
	return "", false, nil
}

// matchPattern matches specifier against a `paths` pattern carrying at
// most one `*` wildcard (spec.md §6: "`*` wildcard matches any path
// segment sequence"). ok is false when the pattern does not apply.
func matchPattern(pattern, specifier string) (wildcard string, ok bool) {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return "", pattern == specifier
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if !strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
		return "", false
	}
	if len(specifier) < len(prefix)+len(suffix) {
		return "", false
	}
	return specifier[len(prefix) : len(specifier)-len(suffix)], true
}

func substituteWildcard(target, wildcard string) string {
	if i := strings.IndexByte(target, '*'); i >= 0 {
		return target[:i] + wildcard + target[i+1:]
	}
	return target
}

// resolveNodeModules walks parent directories of importerDir looking
// for `node_modules/<specifier>` (spec.md §4.5 step 3).
func resolveNodeModules(specifier, importerDir string) (string, bool) {
	dir := importerDir
	for {
		candidate := filepath.Join(dir, "node_modules", specifier)
		if path, ok := tryFileOrDir(candidate, strings.HasSuffix(specifier, "/")); ok {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// tryFileOrDir applies spec.md §4.5 step 4 ("File-vs-directory") to
// one candidate base path, tolerating a case-only mismatch against the
// directory's actual entry the way the final case-sensitivity check
// (step 6) requires — performed here, inline, since that is the point
// at which we know which on-disk entry actually answered the
// candidate.
func tryFileOrDir(base string, forceDir bool) (string, bool) {
	if forceDir {
		if p, ok := statCaseInsensitive(filepath.Join(base, IndexBasename)); ok {
			return p, true
		}
		return "", false
	}

	if strings.HasSuffix(base, SourceExt) {
		if p, ok := statCaseInsensitive(base); ok {
			return p, true
		}
		return "", false
	}

	if p, ok := statCaseInsensitive(base + SourceExt); ok {
		return p, true
	}
	if p, ok := statCaseInsensitive(filepath.Join(base, IndexBasename)); ok {
		return p, true
	}
	return "", false
}

// statCaseInsensitive reports whether path exists, tolerating a
// case-only mismatch between the requested basename and the actual
// directory entry (so the resolver behaves the same on case-sensitive
// and case-insensitive filesystems — the mismatch is surfaced later by
// checkCase, not silently corrected here).
func statCaseInsensitive(path string) (string, bool) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, true
	}
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(e.Name(), name) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// finishResolution applies symlink resolution (step 5) and the
// case-sensitivity check (step 6) to an already-located candidate.
func finishResolution(candidate string) (string, bool, error) {
	real, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		real = candidate
	}

	mismatch := checkCase(real)
	return real, mismatch, nil
}

// checkCase compares path's basename against the on-disk entry's
// actual basename — a mismatch (case only) is reported as VF5901 by
// the caller but does not block resolution (spec.md §4.5 step 6).
func checkCase(path string) bool {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Name() == name {
			return false
		}
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name(), name) {
			return true
		}
	}
	return false
}

type notFoundError struct {
	specifier   string
	importerDir string
}

func (e *notFoundError) Error() string {
	return "module not found: " + e.specifier + " (from " + e.importerDir + ")"
}
