package lexer

import (
	"testing"

	"github.com/mbcrawfo/vibefun/internal/token"
)

func kinds(t *testing.T, toks []token.Token) []token.Kind {
	t.Helper()
	ks := make([]token.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestTokenize_ReservedWordFails(t *testing.T) {
	_, err := Tokenize("async", "<test>")
	if err == nil {
		t.Fatal("expected a lex error for reserved word")
	}
	lexErr, ok := err.(LexError)
	if !ok {
		t.Fatalf("expected LexError, got %T", err)
	}
	if lexErr.Kind != "ReservedWord" {
		t.Errorf("expected Kind=ReservedWord, got %v", lexErr.Kind)
	}
}

func TestTokenize_ActiveKeyword(t *testing.T) {
	toks, err := Tokenize("let", "<test>")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if toks[0].Kind != token.Keyword || toks[0].Value != "let" {
		t.Errorf("expected Keyword(let), got %v", toks[0])
	}
}

func TestTokenize_IdentifierNFC(t *testing.T) {
	// "é" as e + combining acute (NFD) should normalize to the
	// precomposed form (NFC) in the token value.
	nfd := "é"
	toks, err := Tokenize(nfd, "<test>")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if toks[0].Value != "é" {
		t.Errorf("expected NFC-normalized %q, got %q", "é", toks[0].Value)
	}
}

func TestTokenize_FloatRequiresBothSides(t *testing.T) {
	for _, src := range []string{".5", "5."} {
		toks, err := Tokenize(src, "<test>")
		if err != nil {
			t.Fatalf("Tokenize(%q) failed: %v", src, err)
		}
		if toks[0].Kind == token.Float {
			t.Errorf("Tokenize(%q) should not produce a single Float token, got %v", src, toks)
		}
	}
}

func TestTokenize_FloatWithExponent(t *testing.T) {
	toks, err := Tokenize("1.5e10", "<test>")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if toks[0].Kind != token.Float || toks[0].Value != "1.5e10" {
		t.Errorf("expected Float(1.5e10), got %v", toks[0])
	}
}

func TestTokenize_IntLeadingZeroIsDecimal(t *testing.T) {
	toks, err := Tokenize("007", "<test>")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if toks[0].Kind != token.Int || toks[0].Value != "007" {
		t.Errorf("expected Int(007), got %v", toks[0])
	}
}

func TestTokenize_MaximalMunch(t *testing.T) {
	toks, err := Tokenize("a >> b", "<test>")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	got := kinds(t, toks)
	want := []token.Kind{token.Ident, token.GtGt, token.Ident, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestTokenize_ColonEqBeforeColon(t *testing.T) {
	toks, err := Tokenize(":=", "<test>")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if toks[0].Kind != token.ColonEq {
		t.Errorf("expected ColonEq, got %v", toks[0].Kind)
	}
}

func TestTokenize_TripleQuotedString(t *testing.T) {
	toks, err := Tokenize(`"""hello
world"""`, "<test>")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if toks[0].Kind != token.String || toks[0].Value != "hello\nworld" {
		t.Errorf("unexpected token %v", toks[0])
	}
}

func TestTokenize_UnicodeEscapes(t *testing.T) {
	toks, err := Tokenize(`'\x41B\u{43}'`, "<test>")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if toks[0].Value != "ABC" {
		t.Errorf("expected %q, got %q", "ABC", toks[0].Value)
	}
}

func TestTokenize_InvalidEscapeFails(t *testing.T) {
	_, err := Tokenize(`'\q'`, "<test>")
	if err == nil {
		t.Fatal("expected error for invalid escape")
	}
}

func TestTokenize_UnterminatedStringFails(t *testing.T) {
	_, err := Tokenize(`'abc`, "<test>")
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestTokenize_NestedBlockComment(t *testing.T) {
	toks, err := Tokenize("/* outer /* inner */ still outer */ x", "<test>")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if toks[0].Kind != token.Ident || toks[0].Value != "x" {
		t.Errorf("expected comments fully skipped, got %v", toks)
	}
}

func TestTokenize_LineComment(t *testing.T) {
	toks, err := Tokenize("x // trailing comment\ny", "<test>")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if len(toks) != 3 || toks[0].Value != "x" || toks[1].Value != "y" {
		t.Errorf("unexpected tokens %v", toks)
	}
}
