// Package token defines the lexical tokens produced by the lexer and
// consumed by the parser, plus the source-location type threaded through
// every later stage of the pipeline.
package token

import "fmt"

// Location identifies a single point in a source file.
type Location struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Kind discriminates the lexical category of a Token.
type Kind int

const (
	Invalid Kind = iota
	EOF

	Int
	Float
	String
	Ident
	Keyword

	// Punctuation / operators. Each multi-character operator is its own
	// Kind; maximal munch is resolved entirely inside the lexer so the
	// parser never has to glue tokens back together (except for the >>
	// split described in spec.md §4.2 rule 3, handled in the parser).
	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	Percent    // %
	Amp        // &
	AmpAmp     // &&
	Pipe       // |
	PipePipe   // ||
	PipeGt     // |>
	Caret      // ^
	Bang       // !
	BangEq     // !=
	Eq         // =
	EqEq       // ==
	Lt         // <
	LtEq       // <=
	LtLt       // <<
	Gt         // >
	GtEq       // >=
	GtGt       // >>
	Colon      // :
	ColonEq    // :=
	Semi       // ;
	Comma      // ,
	Dot        // .
	DotDotDot  // ...
	DotDot     // ..
	Arrow      // =>
	ThinArrow  // ->
	ColonColon // ::
	LParen     // (
	RParen     // )
	LBrace     // {
	RBrace     // }
	LBracket   // [
	RBracket   // ]
)

// Keywords are "active" — they cannot be used as identifiers and the
// lexer emits a Keyword token for them. Reserved words are parsed but
// rejected with a dedicated lex error (spec.md §4.1).
var Keywords = map[string]bool{
	"let": true, "mut": true, "type": true, "if": true, "then": true,
	"else": true, "match": true, "when": true, "rec": true, "and": true,
	"import": true, "export": true, "external": true, "unsafe": true,
	"from": true, "as": true, "ref": true, "try": true, "catch": true,
	"while": true,
}

var Reserved = map[string]bool{
	"async": true, "await": true, "trait": true, "impl": true,
	"where": true, "do": true, "yield": true, "return": true,
}

// Token is one lexical unit. Value holds the literal's normalized text
// for Ident/String/Keyword, and the raw digit text for Int/Float (parsed
// lazily by the consumer that needs the numeric value).
type Token struct {
	Kind     Kind
	Value    string
	Location Location
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "<eof>"
	}
	return fmt.Sprintf("%s(%q)@%s", t.Kind.Name(), t.Value, t.Location)
}

func (k Kind) Name() string {
	switch k {
	case Invalid:
		return "Invalid"
	case EOF:
		return "EOF"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case String:
		return "String"
	case Ident:
		return "Ident"
	case Keyword:
		return "Keyword"
	default:
		if name, ok := punctNames[k]; ok {
			return name
		}
		return "Unknown"
	}
}

var punctNames = map[Kind]string{
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Amp: "&", AmpAmp: "&&", Pipe: "|", PipePipe: "||", PipeGt: "|>",
	Caret: "^", Bang: "!", BangEq: "!=", Eq: "=", EqEq: "==",
	Lt: "<", LtEq: "<=", LtLt: "<<", Gt: ">", GtEq: ">=", GtGt: ">>",
	Colon: ":", ColonEq: ":=", Semi: ";", Comma: ",", Dot: ".",
	DotDotDot: "...", DotDot: "..", Arrow: "=>", ThinArrow: "->",
	ColonColon: "::", LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	LBracket: "[", RBracket: "]",
}
