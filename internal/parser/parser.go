// Package parser implements the recursive-descent, Pratt-precedence
// parser described in spec.md §4.2. It never recovers from a syntax
// error — the first one throws a ParseError (VF2xxx) with no attempt
// at resynchronization, mirroring the teacher's dsl.Parser.ParseLine,
// which fails the whole line on the first syntax problem rather than
// trying to salvage a partial AST.
package parser

import (
	"fmt"

	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/lexer"
	"github.com/mbcrawfo/vibefun/internal/token"
)

// ParseError is the typed error every syntactic failure reports.
type ParseError struct {
	Kind     string
	Message  string
	Location token.Location
	Hint     string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse error (%v) at %s: %v", e.Kind, e.Location, e.Message)
}

// AsDiagnostic maps Kind to its VF2xxx code, letting
// diagnostic.LogError attach oops context to a ParseError without the
// diagnostic package importing this one.
func (e ParseError) AsDiagnostic() diagnostic.Diagnostic {
	code := diagnostic.CodeUnexpectedToken
	switch e.Kind {
	case "MissingDelimiter":
		code = diagnostic.CodeExpectedSemicolon
	case "AmbiguousConstruct":
		code = diagnostic.CodeAmbiguousConstruct
	}
	return diagnostic.Diagnostic{
		Code: code, Severity: diagnostic.SeverityError, Phase: diagnostic.PhaseParser,
		Message: e.Message, Location: e.Location, Hint: e.Hint,
	}
}

// Parse tokenizes and parses a single source file into a Surface
// Module. It is one of the five pure consumer entrypoints listed in
// spec.md §6.
func Parse(source, filename string) (*ast.Module, error) {
	toks, err := lexer.Tokenize(source, filename)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks, filename)
}

// ParseTokens parses an already-lexed token stream; exposed separately
// so callers (and tests) that already have tokens don't pay to
// re-lex.
func ParseTokens(toks []token.Token, filename string) (*ast.Module, error) {
	p := &parser{toks: toks, filename: filename}
	return p.parseModule()
}

type parser struct {
	toks     []token.Token
	pos      int
	filename string

	// pendingGt counts virtual '>' tokens produced by splitting a lexed
	// '>>' when closing nested generic argument lists (spec.md §4.2
	// rule 3); closeAngleBracket consumes these before reading another
	// real token.
	pendingGt int
}

func (p *parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *parser) peekAt(off int) token.Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) at(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *parser) atKeyword(name string) bool {
	return p.cur().Kind == token.Keyword && p.cur().Value == name
}

func (p *parser) errHere(kind, msg, hint string) error {
	return ParseError{Kind: kind, Message: msg, Location: p.cur().Location, Hint: hint}
}

func (p *parser) expect(k token.Kind, what string) (token.Token, error) {
	if !p.at(k) {
		return token.Token{}, p.errHere("UnexpectedToken",
			fmt.Sprintf("expected %s, found %s", what, p.cur()), "")
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(name string) error {
	if !p.atKeyword(name) {
		return p.errHere("UnexpectedToken",
			fmt.Sprintf("expected keyword %q, found %s", name, p.cur()), "")
	}
	p.advance()
	return nil
}

func (p *parser) expectSemi() error {
	if !p.at(token.Semi) {
		return p.errHere("MissingDelimiter", "expected ';'", "every declaration and statement requires a trailing semicolon")
	}
	p.advance()
	return nil
}

// parseModule parses a whole file: declarations separated by required
// semicolons, with the trailing semicolon before EOF optional.
func (p *parser) parseModule() (*ast.Module, error) {
	start := p.cur().Location
	mod := &ast.Module{Base: ast.Base{Loc: start}, File: p.filename}

	for !p.at(token.EOF) {
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		mod.Decls = append(mod.Decls, decl)

		if p.at(token.EOF) {
			break
		}
		if err := p.expectSemi(); err != nil {
			return nil, err
		}
	}

	return mod, nil
}
