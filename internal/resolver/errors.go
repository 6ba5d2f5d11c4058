// Package resolver implements project-root discovery, import-specifier
// resolution, dependency-graph construction, cycle detection, and
// topological ordering, per spec.md §4.5 ("Module Resolver").
package resolver

import (
	"github.com/mbcrawfo/vibefun/internal/diagnostic"
)

// ResolveError is the typed error a fatal resolution failure reports,
// following the "<Package>Error{Kind, Message}" idiom the rest of the
// pipeline uses (lexer.LexError, parser.ParseError, desugar.DesugarError,
// checker.TypeError) — here built directly around a diagnostic.Diagnostic
// since every resolver failure is already one-to-one with a VF5xxx code.
type ResolveError struct {
	Diag diagnostic.Diagnostic
}

func (e ResolveError) Error() string { return e.Diag.Error() }
func (e ResolveError) Unwrap() error { return e.Diag }

// AsDiagnostic lets diagnostic.LogError attach oops context to a
// ResolveError at a package boundary.
func (e ResolveError) AsDiagnostic() diagnostic.Diagnostic { return e.Diag }
