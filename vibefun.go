// Package vibefun is the module's root facade: it re-exports the five
// pure consumer entrypoints spec.md §6 names (Tokenize, Parse,
// Desugar, TypeCheck, ResolveAndLoad) as thin wrappers over internal/*,
// mirroring the teacher's pgraph.go facade, which re-exported
// internal/result types and wrapped internal/dsl.Parser behind a
// single importable package instead of requiring callers to reach into
// internal/ themselves.
package vibefun

import (
	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/checker"
	"github.com/mbcrawfo/vibefun/internal/core"
	"github.com/mbcrawfo/vibefun/internal/desugar"
	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/lexer"
	"github.com/mbcrawfo/vibefun/internal/parser"
	"github.com/mbcrawfo/vibefun/internal/resolver"
	"github.com/mbcrawfo/vibefun/internal/token"
	"github.com/mbcrawfo/vibefun/internal/types"
)

type (
	// Diagnostic is the compiler-wide error/warning shape (spec.md §6/§7).
	Diagnostic = diagnostic.Diagnostic
	Severity   = diagnostic.Severity
	Phase      = diagnostic.Phase
	Code       = diagnostic.Code

	Token    = token.Token
	Location = token.Location

	SurfaceModule = ast.Module
	CoreModule    = core.Module
	TypedModule   = checker.TypedModule
	Env           = types.Env

	// Project is the resolved, type-checked dependency graph of a whole
	// compile, the module resolver's top-level output (spec.md §4.5).
	Project = resolver.Project
	// ResolveOptions configures ResolveAndLoad's optional concurrency
	// (spec.md §5: "implementations are free to parallelize independent
	// modules").
	ResolveOptions = resolver.Options
)

// Tokenize converts UTF-8 source text into a token stream (spec.md
// §4.1). It is the first of the five pure consumer entrypoints.
func Tokenize(source, filename string) ([]Token, error) {
	return lexer.Tokenize(source, filename)
}

// Parse tokenizes and parses a single source file into a Surface
// Module (spec.md §4.2).
func Parse(source, filename string) (*SurfaceModule, error) {
	return parser.Parse(source, filename)
}

// Desugar lowers a Surface Module into a Core Module (spec.md §4.3).
func Desugar(mod *SurfaceModule) (*CoreModule, error) {
	return desugar.Desugar(mod)
}

// TypeCheck runs Algorithm W over a Core Module starting from env0
// (spec.md §4.4). Pass NewEnv() for a standalone, import-free module.
func TypeCheck(mod *CoreModule, env0 *Env) (*TypedModule, error) {
	return checker.TypeCheck(mod, env0)
}

// NewEnv returns an empty type environment, the starting point for a
// module with no resolved imports.
func NewEnv() *Env { return types.NewEnv() }

// LogError enriches any error returned by the five entrypoints above
// with oops structured context (VF-code, phase, location) when it
// carries a Diagnostic, for callers that want a slog-friendly error at
// their own boundary instead of a bare Error() string.
func LogError(err error) error { return diagnostic.LogError(err) }

// ResolveAndLoad discovers the project containing entryFile, resolves
// its import graph, detects cycles, and type-checks every reachable
// module in topological order (spec.md §4.5). It is the fifth pure
// consumer entrypoint.
func ResolveAndLoad(entryFile string, opts ResolveOptions) (*Project, error) {
	return resolver.LoadProject(entryFile, opts)
}
