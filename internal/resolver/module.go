package resolver

import (
	"sync"

	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/checker"
	"github.com/mbcrawfo/vibefun/internal/core"
)

// Module is one project file's record through every pipeline stage,
// owned by the module graph "for the lifetime of a project compile"
// (spec.md §3 "Ownership and lifecycle"). Fields are filled in as the
// resolver drives the pipeline: Surface once parsed, Core once
// desugared, Typed once checked.
type Module struct {
	Path    string // canonicalized real path
	Source  string // normalized source text (BOM stripped, CRLF->LF)
	Surface *ast.Module
	Core    *core.Module
	Typed   *checker.TypedModule
}

// EdgeKind annotates a dependency edge as a runtime ("value") or
// compile-time-only ("type-only") dependency, per spec.md §4.5
// "Dependency graph": "edges are annotated value ... or type-only."
type EdgeKind int

const (
	EdgeValue EdgeKind = iota
	EdgeTypeOnly
)

func (k EdgeKind) String() string {
	if k == EdgeTypeOnly {
		return "type-only"
	}
	return "value"
}

// Cache is the module graph: a write-once-per-module, read-many map of
// canonical paths to records plus their dependency/dependent edges,
// guarded by a RWMutex so leaf modules can be loaded concurrently
// (spec.md §5). It is adapted from the teacher's
// ProbabilisticAdjacencyListGraph node/edge-map shape
// (graph.ProbabilisticAdjacencyListGraph's nodeMap/out/in fields)
// generalized from graph.NodeID/graph.Edge to canonical file paths and
// EdgeKind-annotated import edges.
type Cache struct {
	mu sync.RWMutex

	modules      map[string]*Module
	dependencies map[string]map[string]EdgeKind // importer -> imported -> kind
	dependents   map[string]map[string]EdgeKind // imported -> importer -> kind
	order        []string                       // insertion order, for determinism
}

func NewCache() *Cache {
	return &Cache{
		modules:      make(map[string]*Module),
		dependencies: make(map[string]map[string]EdgeKind),
		dependents:   make(map[string]map[string]EdgeKind),
	}
}

// Get returns the module previously stored under path, if any —
// "resolved paths are cached by canonicalized real path" (spec.md §9).
func (c *Cache) Get(path string) (*Module, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[path]
	return m, ok
}

// Put records m, or replaces an existing record at the same path in
// place (used when a later pipeline stage — desugar, typecheck — fills
// in more of the same Module). The first Put for a path fixes its
// position in insertion order.
func (c *Cache) Put(m *Module) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, seen := c.modules[m.Path]; !seen {
		c.order = append(c.order, m.Path)
		c.dependencies[m.Path] = make(map[string]EdgeKind)
	}
	c.modules[m.Path] = m
}

// AddEdge records that `from` imports `to` with the given kind. A
// value import upgrades a previously-recorded type-only import between
// the same pair of files, since re-exposing the same module as both a
// type and a value import is still, overall, a runtime dependency.
func (c *Cache) AddEdge(from, to string, kind EdgeKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dependencies[from] == nil {
		c.dependencies[from] = make(map[string]EdgeKind)
	}
	if existing, ok := c.dependencies[from][to]; !ok || (existing == EdgeTypeOnly && kind == EdgeValue) {
		c.dependencies[from][to] = kind
	}
	if c.dependents[to] == nil {
		c.dependents[to] = make(map[string]EdgeKind)
	}
	c.dependents[to][from] = c.dependencies[from][to]
}

// Dependencies returns the paths `from` depends on, each with its edge
// kind, in no particular order (callers needing determinism should
// consult Order for overall module placement).
func (c *Cache) Dependencies(from string) map[string]EdgeKind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]EdgeKind, len(c.dependencies[from]))
	for k, v := range c.dependencies[from] {
		out[k] = v
	}
	return out
}

// Order returns every module path in first-discovered order.
func (c *Cache) Order() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Modules returns every stored module record, unordered.
func (c *Cache) Modules() []*Module {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Module, 0, len(c.modules))
	for _, m := range c.modules {
		out = append(out, m)
	}
	return out
}
