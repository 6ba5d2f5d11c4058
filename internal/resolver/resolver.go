package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/checker"
	"github.com/mbcrawfo/vibefun/internal/desugar"
	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/parser"
	"github.com/mbcrawfo/vibefun/internal/token"
	"github.com/mbcrawfo/vibefun/internal/types"
)

// Options configures LoadProject. Concurrency > 1 lets independent
// leaves of the dependency DAG be parsed and type-checked concurrently
// once the topological order is known (spec.md §5: "implementations
// are free to parallelize independent modules"); the zero value keeps
// the whole pipeline single-threaded, the spec's required minimum.
type Options struct {
	Concurrency int
}

// Project is the result of resolving and type-checking every module
// reachable from an entry file: the discovered root, loaded config,
// populated module graph, a reported topological order, any detected
// cycles, and every diagnostic collected along the way, in stable
// order (spec.md §5: "Diagnostic order is stable: all diagnostics from
// a module appear before any from a module that depends on it").
type Project struct {
	Root        string
	Config      *Config
	Cache       *Cache
	Order       []string
	Cycles      []Cycle
	Diagnostics []diagnostic.Diagnostic
}

// LoadProject discovers the project root from entryFile's directory,
// loads vibefun.json, parses every reachable module, builds the
// dependency graph, detects cycles, and type-checks every module in
// topological order. It is one of the five pure consumer entrypoints
// listed in spec.md §6 (there named `resolveAndLoad`).
func LoadProject(entryFile string, opts Options) (*Project, error) {
	entryAbs, err := filepath.Abs(entryFile)
	if err != nil {
		return nil, err
	}
	entryAbs, _ = filepath.EvalSymlinks(entryAbs)

	root, _, err := DiscoverRoot(filepath.Dir(entryAbs))
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		return nil, err
	}

	p := &Project{Root: root, Config: cfg, Cache: NewCache()}

	if err := p.discover(entryAbs); err != nil {
		return p, err
	}

	for _, cyc := range p.Cache.Cycles() {
		p.Cycles = append(p.Cycles, cyc)
		p.Diagnostics = append(p.Diagnostics, diagnostic.Diagnostic{
			Code:     diagnostic.CodeCircularDependency,
			Severity: diagnostic.SeverityWarning,
			Phase:    diagnostic.PhaseResolver,
			Message:  "circular dependency: " + strings.Join(cyc.Members, " -> ") + " -> " + cyc.Members[0],
		})
	}

	p.Order = p.Cache.TopoOrder()

	if err := p.typeCheckAll(opts); err != nil {
		return p, err
	}

	return p, nil
}

// discover parses entryAbs and, transitively, every module it imports,
// recording each as a Cache entry and each import as a graph edge. It
// fails fast on the first parse error, unresolved import (VF5000), or
// self-import (VF5004); case mismatches (VF5901) are recorded as
// warnings and do not stop discovery.
func (p *Project) discover(entryAbs string) error {
	visited := make(map[string]bool)

	var visit func(path string) error
	visit = func(path string) error {
		if visited[path] {
			return nil
		}
		visited[path] = true

		raw, err := os.ReadFile(path)
		if err != nil {
			return ResolveError{Diag: diagnostic.Diagnostic{
				Code:     diagnostic.CodeModuleNotFound,
				Severity: diagnostic.SeverityError,
				Phase:    diagnostic.PhaseResolver,
				Message:  fmt.Sprintf("cannot read %q: %v", path, err),
				Location: token.Location{File: path},
			}}
		}
		source := normalizeSource(string(raw))

		surfaceMod, err := parser.Parse(source, path)
		if err != nil {
			return err
		}

		p.Cache.Put(&Module{Path: path, Source: source, Surface: surfaceMod})

		dir := filepath.Dir(path)
		for _, decl := range surfaceMod.Decls {
			spec, kind, loc, ok := importEdge(decl)
			if !ok {
				continue
			}

			resolved, caseMismatch, err := Resolve(spec, dir, p.Config)
			if err != nil {
				return ResolveError{Diag: diagnostic.Diagnostic{
					Code:     diagnostic.CodeModuleNotFound,
					Severity: diagnostic.SeverityError,
					Phase:    diagnostic.PhaseResolver,
					Message:  fmt.Sprintf("cannot resolve %q: %v", spec, err),
					Location: loc,
				}}
			}

			if caseMismatch {
				p.Diagnostics = append(p.Diagnostics, diagnostic.Diagnostic{
					Code:     diagnostic.CodeCaseMismatch,
					Severity: diagnostic.SeverityWarning,
					Phase:    diagnostic.PhaseResolver,
					Message:  fmt.Sprintf("import specifier %q differs in case from its target", spec),
					Location: loc,
				})
			}

			if resolved == path {
				return ResolveError{Diag: diagnostic.Diagnostic{
					Code:     diagnostic.CodeSelfImport,
					Severity: diagnostic.SeverityError,
					Phase:    diagnostic.PhaseResolver,
					Message:  fmt.Sprintf("module %q imports itself", spec),
					Location: loc,
				}}
			}

			p.Cache.AddEdge(path, resolved, kind)
			if err := visit(resolved); err != nil {
				return err
			}
		}
		return nil
	}

	return visit(entryAbs)
}

// importEdge extracts the import/re-export specifier, its edge kind,
// and a location from one Surface declaration, or reports ok=false for
// declarations that are not edges at all.
func importEdge(decl ast.Decl) (specifier string, kind EdgeKind, loc token.Location, ok bool) {
	switch d := decl.(type) {
	case *ast.ImportDecl:
		if d.Source == "" {
			return "", 0, token.Location{}, false
		}
		return d.Source, importKind(d.TypeOnly, d.Specifiers), d.Location(), true
	case *ast.ExportDecl:
		if d.Source == "" {
			return "", 0, token.Location{}, false
		}
		return d.Source, importKind(false, d.Specifiers), d.Location(), true
	default:
		return "", 0, token.Location{}, false
	}
}

// importKind is EdgeTypeOnly only when the whole declaration is marked
// type-only, or every individual specifier is — a mixed import still
// carries a real runtime dependency (spec.md §3: import flavors include
// "mixed").
func importKind(wholeTypeOnly bool, specs []ast.ImportSpecifier) EdgeKind {
	if wholeTypeOnly {
		return EdgeTypeOnly
	}
	if len(specs) == 0 {
		return EdgeValue
	}
	for _, s := range specs {
		if !s.TypeOnly {
			return EdgeValue
		}
	}
	return EdgeTypeOnly
}

// normalizeSource strips a leading BOM and normalizes line endings to
// LF, per spec.md §6 "File conventions" — ordinarily the CLI driver's
// job, but the resolver is this core's only file-reading collaborator,
// so it is the natural place to apply both before a single source
// buffer ever reaches the lexer.
func normalizeSource(src string) string {
	src = strings.TrimPrefix(src, string(rune(0xFEFF)))
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	return src
}

// typeCheckAll desugars and type-checks every discovered module in
// topological order, threading each module's exported schemes into
// the modules that import it. Modules within the same cycle (spec.md
// §4.5's reported SCCs) are type-checked in the same batch, in
// insertion-stable order, without each other's bindings available,
// since Algorithm W has no principled account of mutually recursive
// modules — a scope boundary recorded in DESIGN.md.
func (p *Project) typeCheckAll(opts Options) error {
	sccOf, _ := p.Cache.sccIndex()

	levels := make(map[string]int, len(p.Order))
	for _, path := range p.Order {
		level := 0
		for dep, kind := range p.Cache.Dependencies(path) {
			if kind != EdgeValue || sccOf[dep] == sccOf[path] {
				continue
			}
			if levels[dep]+1 > level {
				level = levels[dep] + 1
			}
		}
		levels[path] = level
	}

	byLevel := make(map[int][]string)
	maxLevel := 0
	for _, path := range p.Order {
		l := levels[path]
		byLevel[l] = append(byLevel[l], path)
		if l > maxLevel {
			maxLevel = l
		}
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	for l := 0; l <= maxLevel; l++ {
		batch := byLevel[l]
		if len(batch) == 0 {
			continue
		}
		if err := p.typeCheckBatch(batch, concurrency); err != nil {
			return err
		}
	}
	return nil
}

// typeCheckBatch runs checkOne over a set of mutually independent
// modules, bounded by a small fixed-size worker pool when concurrency
// allows it — goroutines, a buffered semaphore channel, and a
// WaitGroup, the hand-written fan-out idiom SPEC_FULL.md §2 calls for
// in place of an errgroup-style dependency absent from the corpus.
func (p *Project) typeCheckBatch(batch []string, concurrency int) error {
	if concurrency <= 1 || len(batch) <= 1 {
		for _, path := range batch {
			if err := p.checkOne(path); err != nil {
				return err
			}
		}
		return nil
	}

	sem := make(chan struct{}, concurrency)
	errs := make([]error, len(batch))
	var wg sync.WaitGroup
	for i, path := range batch {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = p.checkOne(path)
		}(i, path)
	}
	wg.Wait()

	for i, path := range batch {
		if errs[i] != nil {
			return fmt.Errorf("%s: %w", path, errs[i])
		}
	}
	return nil
}

// checkOne desugars and type-checks a single module, building its
// initial environment from the already-typed schemes of every named
// import it resolves to a module that has already been checked
// (spec.md §5: "a module is checked only after all of its non-cyclic
// value dependencies are checked"). Namespace and side-effect-only
// imports contribute no value bindings here — a namespace object is a
// later codegen concern, out of scope per spec.md §1.
func (p *Project) checkOne(path string) error {
	mod, _ := p.Cache.Get(path)

	coreMod, err := desugar.Desugar(mod.Surface)
	if err != nil {
		return err
	}
	mod.Core = coreMod

	dir := filepath.Dir(path)
	sccOf, _ := p.Cache.sccIndex()
	env := types.NewEnv()
	for _, decl := range mod.Surface.Decls {
		imp, ok := decl.(*ast.ImportDecl)
		if !ok || imp.Source == "" || imp.Kind != ast.ImportNamed || imp.TypeOnly {
			continue
		}
		resolved, _, err := Resolve(imp.Source, dir, p.Config)
		if err != nil {
			continue // already reported fatally during discovery
		}
		depMod, ok := p.Cache.Get(resolved)
		if !ok || sccOf[resolved] == sccOf[path] || depMod.Typed == nil {
			continue // same-SCC dependency: intentionally unbound, see typeCheckAll.
		}
		for _, spec := range imp.Specifiers {
			if spec.TypeOnly {
				continue
			}
			scheme, ok := depMod.Typed.Schemes[spec.Name]
			if !ok {
				continue
			}
			name := spec.Name
			if spec.Alias != "" {
				name = spec.Alias
			}
			env = env.Extend(name, scheme)
		}
	}

	typed, err := checker.TypeCheck(coreMod, env)
	if err != nil {
		return err
	}
	mod.Typed = typed
	p.Diagnostics = append(p.Diagnostics, typed.Warnings...)
	return nil
}
