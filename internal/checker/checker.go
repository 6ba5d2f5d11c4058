// Package checker implements the Hindley-Milner type checker over the
// Core AST: Algorithm W with let-polymorphism, the value restriction,
// record width subtyping, variant constructors, pattern exhaustiveness,
// and JavaScript-interop overload resolution, per spec.md §4.4 (the
// core of the system).
package checker

import (
	"fmt"

	"github.com/mbcrawfo/vibefun/internal/core"
	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/token"
	"github.com/mbcrawfo/vibefun/internal/types"
)

// TypeError is the typed error a fatal type-checking failure reports
// (spec.md §4.4.7: "Type errors are fatal for the module").
type TypeError struct {
	Diag diagnostic.Diagnostic
}

func (e TypeError) Error() string { return e.Diag.Error() }

// AsDiagnostic lets diagnostic.LogError attach oops context to a
// TypeError at a package boundary.
func (e TypeError) AsDiagnostic() diagnostic.Diagnostic { return e.Diag }

// TypedModule is the checker's successful output: the module plus a
// map from every top-level declaration's name to its principal scheme
// and the collected non-fatal warnings (spec.md §4.4 "Public contract").
type TypedModule struct {
	Module    *core.Module
	Env       *types.Env
	Schemes   map[string]*types.Scheme
	Exports   []string
	Warnings  []diagnostic.Diagnostic
}

// TypeCheck runs Algorithm W over coreModule starting from env0 (the
// caller's initial environment — primitives plus whatever the module
// resolver has already bound from this module's dependencies). It is
// one of the five pure consumer entrypoints listed in spec.md §6.
func TypeCheck(mod *core.Module, env0 *types.Env) (*TypedModule, error) {
	c := newChecker(env0)
	return c.checkModule(mod)
}

// checker is the per-call inference state (spec.md §4.4.1): it is
// created fresh for each TypeCheck call and discarded once the typed
// module is produced, per spec.md §3 "Ownership and lifecycle" ("lives
// only during a single call to the checker").
type checker struct {
	subst     *types.Subst
	env       *types.Env
	collector *diagnostic.Collector

	externals map[string][]overload
	variants  map[string]*variantInfo
	typeDecls map[string]*typeDeclInfo

	// typeConstructors maps a nominal type name to its constructors in
	// declaration order, the reverse index exhaustiveness checking needs
	// (variants is keyed by constructor name instead).
	typeConstructors map[string][]string

	unsafeDepth int

	// deferred holds exhaustiveness checks that hit an unresolved type
	// variable, re-attempted at the end of the module per SPEC_FULL.md
	// §4.4's "Deferred checks list" (a timing-only extension of §4.4.6:
	// "a later annotation elsewhere in the same module can still
	// resolve the scrutinee type").
	deferred []deferredExhaustiveness
}

type overload struct {
	Type  *types.Monotype
	Arity int
}

// variantInfo records one constructor's shape for both construction
// (schemes) and exhaustiveness (the sibling-constructor set).
type variantInfo struct {
	TypeName    string
	Params      []string
	ArgTypes    []core.TypeExpr
	Siblings    []string // every constructor of the same type, in declaration order
}

type typeDeclInfo struct {
	Params []string
	Body   core.TypeDeclBody
	Group  []string
}

type deferredExhaustiveness struct {
	loc      token.Location
	scrut    *types.Monotype
	patterns []core.Pattern
}

func newChecker(env0 *types.Env) *checker {
	c := &checker{
		subst:            types.NewSubst(),
		env:              env0,
		collector:        diagnostic.NewCollector(),
		externals:        make(map[string][]overload),
		variants:         make(map[string]*variantInfo),
		typeDecls:        make(map[string]*typeDeclInfo),
		typeConstructors: make(map[string][]string),
	}
	c.installBuiltins()
	return c
}

func (c *checker) errorf(loc token.Location, code diagnostic.Code, hint string, format string, args ...interface{}) error {
	return TypeError{Diag: diagnostic.Diagnostic{
		Code: code, Severity: diagnostic.SeverityError, Phase: diagnostic.PhaseTypeCheck,
		Message: fmt.Sprintf(format, args...), Location: loc, Hint: hint,
	}}
}

func (c *checker) warnf(loc token.Location, code diagnostic.Code, format string, args ...interface{}) {
	c.collector.Warn(diagnostic.Diagnostic{
		Code: code, Severity: diagnostic.SeverityWarning, Phase: diagnostic.PhaseTypeCheck,
		Message: fmt.Sprintf(format, args...), Location: loc,
	})
}

func (c *checker) checkModule(mod *core.Module) (*TypedModule, error) {
	// First pass: register every type declaration (and external overload
	// set) before inferring any expression, so forward references and
	// mutually recursive type groups resolve (spec.md §9 open question:
	// "implementations must bind all group names before expanding any
	// alias body").
	for _, decl := range mod.Decls {
		if err := c.preDeclare(decl); err != nil {
			return nil, err
		}
	}

	schemes := make(map[string]*types.Scheme)
	var exports []string
	for _, decl := range mod.Decls {
		names, exported, err := c.checkDecl(decl)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			if sch, ok := c.env.Lookup(n); ok {
				schemes[n] = sch
			}
		}
		if exported {
			exports = append(exports, names...)
		}
	}

	c.runDeferredExhaustiveness()

	return &TypedModule{
		Module:   mod,
		Env:      c.env,
		Schemes:  schemes,
		Exports:  exports,
		Warnings: c.collector.Warnings(),
	}, nil
}
