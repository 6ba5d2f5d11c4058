// Package lexer converts a UTF-8 Vibefun source buffer into a token
// stream, per spec.md §4.1. It never recovers from a lexical error: the
// first invalid character, unterminated string, bad number, or reserved
// word aborts tokenization with a LexError.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/token"
)

// LexError is the typed error every lexical failure reports. Kind
// classifies the failure the way the teacher's per-package
// "<Package>Error{Kind, Message}" errors do (e.g. graph.GraphError);
// Location and Hint feed directly into a diagnostic.Diagnostic.
type LexError struct {
	Kind     string
	Message  string
	Location token.Location
	Hint     string
}

func (e LexError) Error() string {
	return fmt.Sprintf("lex error (%v) at %s: %v", e.Kind, e.Location, e.Message)
}

// AsDiagnostic maps Kind to its VF1xxx code, letting
// diagnostic.LogError attach oops context to a LexError without the
// diagnostic package importing this one.
func (e LexError) AsDiagnostic() diagnostic.Diagnostic {
	code := diagnostic.CodeUnexpectedChar
	switch e.Kind {
	case "InvalidEscape":
		code = diagnostic.CodeInvalidEscape
	case "ReservedWord":
		code = diagnostic.CodeReservedWord
	case "InvalidUTF8":
		code = diagnostic.CodeInvalidUTF8
	case "UnterminatedString", "UnterminatedComment":
		code = diagnostic.CodeUnterminatedString
	case "InvalidNumber":
		code = diagnostic.CodeInvalidNumber
	}
	return diagnostic.Diagnostic{
		Code: code, Severity: diagnostic.SeverityError, Phase: diagnostic.PhaseLexer,
		Message: e.Message, Location: e.Location, Hint: e.Hint,
	}
}

// Tokenize runs the lexer over source, attributing every token's
// location to filename. It normalizes line endings to LF first, per
// spec.md §6 ("Line endings are normalized to LF before lexing"); BOM
// stripping is the driver's responsibility and is assumed already done.
func Tokenize(source, filename string) ([]token.Token, error) {
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	l := &lexer{
		src:      normalized,
		filename: filename,
		line:     1,
		column:   1,
	}
	return l.run()
}

type lexer struct {
	src      string
	filename string
	pos      int // byte offset into src
	line     int
	column   int
	tokens   []token.Token
}

func (l *lexer) run() ([]token.Token, error) {
	for {
		if err := l.skipTrivia(); err != nil {
			return nil, err
		}
		if l.pos >= len(l.src) {
			l.emit(token.EOF, "")
			break
		}

		start := l.here()
		r, size := l.peekRune()

		switch {
		case r == utf8.RuneError && size <= 1:
			return nil, l.errorAt(start, "InvalidUTF8", "invalid UTF-8 sequence", "")
		case isIdentStart(r):
			if err := l.lexIdentOrKeyword(start); err != nil {
				return nil, err
			}
		case unicode.IsDigit(r):
			if err := l.lexNumber(start); err != nil {
				return nil, err
			}
		case r == '\'' || r == '"':
			if err := l.lexString(start, r); err != nil {
				return nil, err
			}
		default:
			if err := l.lexOperator(start); err != nil {
				return nil, err
			}
		}
	}
	return l.tokens, nil
}

func (l *lexer) here() token.Location {
	return token.Location{File: l.filename, Line: l.line, Column: l.column, Offset: l.pos}
}

func (l *lexer) errorAt(loc token.Location, kind, msg, hint string) error {
	return LexError{Kind: kind, Message: msg, Location: loc, Hint: hint}
}

func (l *lexer) peekRune() (rune, int) {
	if l.pos >= len(l.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

func (l *lexer) peekRuneAt(off int) (rune, int) {
	if l.pos+off >= len(l.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos+off:])
}

func (l *lexer) advance() rune {
	r, size := l.peekRune()
	l.pos += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *lexer) emit(k token.Kind, value string) {
	// location of the *start* of the token is tracked by callers via
	// `start`; EOF is special-cased to use the current position.
	l.tokens = append(l.tokens, token.Token{Kind: k, Value: value, Location: l.here()})
}

func (l *lexer) emitAt(loc token.Location, k token.Kind, value string) {
	l.tokens = append(l.tokens, token.Token{Kind: k, Value: value, Location: loc})
}

func (l *lexer) skipTrivia() error {
	for {
		r, _ := l.peekRune()
		switch {
		case r == ' ' || r == '\t' || r == '\n':
			l.advance()
		case r == '/' && peekIs(l, 1, '/'):
			for {
				r, size := l.peekRune()
				if size == 0 || r == '\n' {
					break
				}
				l.advance()
			}
		case r == '/' && peekIs(l, 1, '*'):
			start := l.here()
			l.advance()
			l.advance()
			depth := 1
			for depth > 0 {
				r, size := l.peekRune()
				if size == 0 {
					return l.errorAt(start, "UnterminatedComment", "unterminated block comment", "close every /* with a matching */")
				}
				if r == '/' && peekIs(l, 1, '*') {
					l.advance()
					l.advance()
					depth++
					continue
				}
				if r == '*' && peekIs(l, 1, '/') {
					l.advance()
					l.advance()
					depth--
					continue
				}
				l.advance()
			}
		default:
			return nil
		}
	}
}

func peekIs(l *lexer, off int, want rune) bool {
	r, _ := l.peekRuneAt(off)
	return r == want
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Pc, r)
}

func (l *lexer) lexIdentOrKeyword(start token.Location) error {
	var b strings.Builder
	for {
		r, size := l.peekRune()
		if size == 0 || !isIdentContinue(r) {
			break
		}
		b.WriteRune(r)
		l.advance()
	}
	raw := b.String()
	normalized := norm.NFC.String(raw)

	if token.Reserved[normalized] {
		return l.errorAt(start, "ReservedWord", fmt.Sprintf("%q is reserved for future language features", normalized),
			"choose a different identifier")
	}
	if token.Keywords[normalized] {
		l.emitAt(start, token.Keyword, normalized)
		return nil
	}
	l.emitAt(start, token.Ident, normalized)
	return nil
}

func (l *lexer) lexNumber(start token.Location) error {
	var b strings.Builder
	isFloat := false

	for {
		r, size := l.peekRune()
		if size == 0 || !unicode.IsDigit(r) {
			break
		}
		b.WriteRune(r)
		l.advance()
	}

	// Float: a '.' digit pair only counts if followed by a digit;
	// `.5` and `5.` are both rejected per spec.md §4.1.
	if r, _ := l.peekRune(); r == '.' {
		if next, _ := l.peekRuneAt(1); unicode.IsDigit(next) {
			isFloat = true
			b.WriteRune('.')
			l.advance()
			for {
				r, size := l.peekRune()
				if size == 0 || !unicode.IsDigit(r) {
					break
				}
				b.WriteRune(r)
				l.advance()
			}
		}
	}

	if r, _ := l.peekRune(); r == 'e' || r == 'E' {
		save := l.pos
		saveLine, saveCol := l.line, l.column
		var eb strings.Builder
		eb.WriteRune(r)
		l.advance()
		if r, _ := l.peekRune(); r == '+' || r == '-' {
			eb.WriteRune(r)
			l.advance()
		}
		digits := 0
		for {
			r, size := l.peekRune()
			if size == 0 || !unicode.IsDigit(r) {
				break
			}
			eb.WriteRune(r)
			l.advance()
			digits++
		}
		if digits == 0 {
			// not a valid exponent; backtrack and leave 'e...' for the
			// next token (an identifier can't start right after a
			// number without whitespace in valid source, but we must
			// not silently swallow the 'e').
			l.pos, l.line, l.column = save, saveLine, saveCol
		} else {
			isFloat = true
			b.WriteString(eb.String())
		}
	}

	text := b.String()
	if isFloat {
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return l.errorAt(start, "InvalidNumber", fmt.Sprintf("invalid float literal %q", text), "")
		}
		l.emitAt(start, token.Float, text)
		return nil
	}

	if _, err := strconv.ParseInt(text, 10, 64); err != nil {
		// leading zeros are fine (decimal, never octal); overflow of
		// int64 is still reported as an invalid number rather than
		// silently wrapping.
		return l.errorAt(start, "InvalidNumber", fmt.Sprintf("invalid integer literal %q", text), "")
	}
	l.emitAt(start, token.Int, text)
	return nil
}

func (l *lexer) lexString(start token.Location, quote rune) error {
	triple := quote == '"' && peekIs(l, 1, '"') && (func() bool { r, _ := l.peekRuneAt(2); return r == '"' }())
	if triple {
		l.advance()
		l.advance()
		l.advance()
	} else {
		l.advance()
	}

	var b strings.Builder
	for {
		r, size := l.peekRune()
		if size == 0 {
			return l.errorAt(start, "UnterminatedString", "unterminated string literal", "add a closing quote")
		}

		if triple {
			if r == '"' && peekIs(l, 1, '"') && (func() bool { r, _ := l.peekRuneAt(2); return r == '"' }()) {
				l.advance()
				l.advance()
				l.advance()
				break
			}
		} else {
			if r == quote {
				l.advance()
				break
			}
			if r == '\n' {
				return l.errorAt(start, "UnterminatedString", "single-quoted strings cannot span multiple lines", "use a triple-quoted string for multi-line text")
			}
		}

		if r == '\\' {
			escStart := l.here()
			l.advance()
			decoded, err := l.lexEscape(escStart)
			if err != nil {
				return err
			}
			b.WriteString(decoded)
			continue
		}

		b.WriteRune(r)
		l.advance()
	}

	l.emitAt(start, token.String, norm.NFC.String(b.String()))
	return nil
}

func (l *lexer) lexEscape(escStart token.Location) (string, error) {
	r, size := l.peekRune()
	if size == 0 {
		return "", l.errorAt(escStart, "InvalidEscape", "unterminated escape sequence", "")
	}

	switch r {
	case 'n':
		l.advance()
		return "\n", nil
	case 'r':
		l.advance()
		return "\r", nil
	case 't':
		l.advance()
		return "\t", nil
	case '\\':
		l.advance()
		return "\\", nil
	case '"':
		l.advance()
		return "\"", nil
	case '\'':
		l.advance()
		return "'", nil
	case 'x':
		l.advance()
		return l.lexFixedHexEscape(escStart, 2)
	case 'u':
		l.advance()
		if r, _ := l.peekRune(); r == '{' {
			l.advance()
			var hex strings.Builder
			for {
				r, size := l.peekRune()
				if size == 0 {
					return "", l.errorAt(escStart, "InvalidEscape", "unterminated \\u{...} escape", "")
				}
				if r == '}' {
					l.advance()
					break
				}
				hex.WriteRune(r)
				l.advance()
			}
			return decodeHexRune(l, escStart, hex.String())
		}
		return l.lexFixedHexEscape(escStart, 4)
	default:
		return "", l.errorAt(escStart, "InvalidEscape", fmt.Sprintf("invalid escape sequence \\%c", r), "supported escapes are \\n \\r \\t \\\\ \\\" \\' \\xHH \\uHHHH \\u{H...H}")
	}
}

func (l *lexer) lexFixedHexEscape(escStart token.Location, n int) (string, error) {
	var hex strings.Builder
	for i := 0; i < n; i++ {
		r, size := l.peekRune()
		if size == 0 || !isHexDigit(r) {
			return "", l.errorAt(escStart, "InvalidEscape", fmt.Sprintf("expected %d hex digits", n), "")
		}
		hex.WriteRune(r)
		l.advance()
	}
	return decodeHexRune(l, escStart, hex.String())
}

func decodeHexRune(l *lexer, escStart token.Location, hex string) (string, error) {
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return "", l.errorAt(escStart, "InvalidEscape", fmt.Sprintf("invalid unicode escape \\u{%s}", hex), "")
	}
	return string(rune(v)), nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// lexOperator handles punctuation and operators with maximal munch:
// longer candidates are always tried before shorter ones.
func (l *lexer) lexOperator(start token.Location) error {
	three := l.peekN(3)
	two := l.peekN(2)
	one, _ := l.peekRune()

	switch three {
	case "...":
		l.advanceN(3)
		l.emitAt(start, token.DotDotDot, "...")
		return nil
	}

	switch two {
	case "==":
		l.advanceN(2)
		l.emitAt(start, token.EqEq, "==")
		return nil
	case "!=":
		l.advanceN(2)
		l.emitAt(start, token.BangEq, "!=")
		return nil
	case ":=":
		l.advanceN(2)
		l.emitAt(start, token.ColonEq, ":=")
		return nil
	case "::":
		l.advanceN(2)
		l.emitAt(start, token.ColonColon, "::")
		return nil
	case ">>":
		l.advanceN(2)
		l.emitAt(start, token.GtGt, ">>")
		return nil
	case "<<":
		l.advanceN(2)
		l.emitAt(start, token.LtLt, "<<")
		return nil
	case "&&":
		l.advanceN(2)
		l.emitAt(start, token.AmpAmp, "&&")
		return nil
	case "||":
		l.advanceN(2)
		l.emitAt(start, token.PipePipe, "||")
		return nil
	case "|>":
		l.advanceN(2)
		l.emitAt(start, token.PipeGt, "|>")
		return nil
	case "<=":
		l.advanceN(2)
		l.emitAt(start, token.LtEq, "<=")
		return nil
	case ">=":
		l.advanceN(2)
		l.emitAt(start, token.GtEq, ">=")
		return nil
	case "=>":
		l.advanceN(2)
		l.emitAt(start, token.Arrow, "=>")
		return nil
	case "->":
		l.advanceN(2)
		l.emitAt(start, token.ThinArrow, "->")
		return nil
	case "..":
		l.advanceN(2)
		l.emitAt(start, token.DotDot, "..")
		return nil
	}

	single := map[rune]token.Kind{
		'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash,
		'%': token.Percent, '&': token.Amp, '|': token.Pipe, '^': token.Caret,
		'!': token.Bang, '=': token.Eq, '<': token.Lt, '>': token.Gt,
		':': token.Colon, ';': token.Semi, ',': token.Comma, '.': token.Dot,
		'(': token.LParen, ')': token.RParen, '{': token.LBrace, '}': token.RBrace,
		'[': token.LBracket, ']': token.RBracket,
	}
	if k, ok := single[one]; ok {
		l.advance()
		l.emitAt(start, k, string(one))
		return nil
	}

	return l.errorAt(start, "UnexpectedChar", fmt.Sprintf("unexpected character %q", one), "")
}

func (l *lexer) peekN(n int) string {
	end := l.pos
	count := 0
	for count < n && end < len(l.src) {
		_, size := utf8.DecodeRuneInString(l.src[end:])
		end += size
		count++
	}
	if count < n {
		return ""
	}
	return l.src[l.pos:end]
}

func (l *lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}
