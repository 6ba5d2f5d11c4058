// Package desugar transforms a Surface AST (package ast) into the
// smaller Core AST (package core) that the type checker consumes,
// per spec.md §4.3. The transformation is pure: it never fails except
// on a malformed Surface AST, which spec.md treats as a parser bug
// rather than a user-facing error.
package desugar

import (
	"fmt"

	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/core"
	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/token"
)

// DesugarError is the typed error a malformed Surface AST reports
// (spec.md §4.3: "Fails only on malformed AST (taken as a parser
// bug)"); VF3001 is its only code.
type DesugarError struct {
	Message  string
	Location token.Location
}

func (e DesugarError) Error() string {
	return fmt.Sprintf("desugar error at %s: %v", e.Location, e.Message)
}

// AsDiagnostic reports a DesugarError under VF3001.
func (e DesugarError) AsDiagnostic() diagnostic.Diagnostic {
	return diagnostic.Diagnostic{Code: diagnostic.CodeInternalDesugarError, Severity: diagnostic.SeverityError,
		Phase: diagnostic.PhaseDesugar, Message: e.Message, Location: e.Location}
}

// Desugar lowers a whole Surface Module to a Core Module. It is one of
// the five pure consumer entrypoints listed in spec.md §6.
func Desugar(mod *ast.Module) (*core.Module, error) {
	d := &desugarer{ng: newNameGen()}
	return d.desugarModule(mod)
}

// desugarer is the per-call state struct for one Desugar invocation,
// following the "one state struct per pipeline stage" shape the
// ailang elaborator uses (internal/elaborate.Elaborator): nothing
// here survives past a single Desugar call.
type desugarer struct {
	ng *nameGen
}

// nameGen produces fresh identifiers reserved from the surface grammar
// (spec.md §4.3: "$-prefix is syntactically forbidden in source
// identifiers, so no collision is possible").
type nameGen struct {
	n int
}

func newNameGen() *nameGen { return &nameGen{} }

func (g *nameGen) fresh(prefix string) string {
	g.n++
	return fmt.Sprintf("%s%s%d", core.FreshPrefix, prefix, g.n)
}

func base(loc token.Location) core.Base { return core.Base{Loc: loc} }

func (d *desugarer) desugarModule(mod *ast.Module) (*core.Module, error) {
	out := &core.Module{Base: base(mod.Location()), File: mod.File}
	for _, decl := range mod.Decls {
		decls, err := d.desugarDecl(decl)
		if err != nil {
			return nil, err
		}
		out.Decls = append(out.Decls, decls...)
	}
	return out, nil
}
