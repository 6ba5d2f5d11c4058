package parser

import (
	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/token"
)

// parsePattern parses a full pattern, including the `::` cons operator
// and `|` alternation, both lowest-precedence (spec.md §3).
func (p *parser) parsePattern() (ast.Pattern, error) {
	return p.parseOrPattern()
}

func (p *parser) parseOrPattern() (ast.Pattern, error) {
	start := p.cur().Location
	first, err := p.parseConsPattern()
	if err != nil {
		return nil, err
	}
	if !p.at(token.Pipe) {
		return first, nil
	}
	alts := []ast.Pattern{first}
	for p.at(token.Pipe) {
		p.advance()
		next, err := p.parseConsPattern()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	return &ast.OrPattern{PatternBase: patBase(start), Alternatives: alts}, nil
}

func (p *parser) parseConsPattern() (ast.Pattern, error) {
	start := p.cur().Location
	head, err := p.parsePrimaryPattern()
	if err != nil {
		return nil, err
	}
	if !p.at(token.ColonColon) {
		return head, nil
	}
	p.advance()
	tail, err := p.parseConsPattern() // right-associative
	if err != nil {
		return nil, err
	}
	return &ast.ConsPattern{PatternBase: patBase(start), Head: head, Tail: tail}, nil
}

func (p *parser) parsePrimaryPattern() (ast.Pattern, error) {
	start := p.cur().Location

	switch {
	case p.at(token.Ident) && p.cur().Value == "_":
		p.advance()
		return &ast.WildcardPattern{PatternBase: patBase(start)}, nil

	case p.at(token.Int), p.at(token.Float), p.at(token.String):
		return p.parseLiteralPattern()

	case p.at(token.Ident) && (p.cur().Value == "true" || p.cur().Value == "false"):
		raw := p.advance().Value
		return &ast.LiteralPattern{PatternBase: patBase(start), Kind: ast.LitBool, Raw: raw}, nil

	case p.at(token.Ident) && isUpperIdent(p.cur().Value):
		return p.parseVariantPattern()

	case p.at(token.Ident):
		name := p.advance().Value
		var annot ast.TypeExpr
		if p.at(token.Colon) {
			p.advance()
			a, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			annot = a
		}
		return &ast.VarPattern{PatternBase: patBase(start), Name: name, Annotation: annot}, nil

	case p.at(token.LParen):
		return p.parseTuplePattern()

	case p.at(token.LBrace):
		return p.parseRecordPattern()

	case p.at(token.LBracket):
		return p.parseListPattern()

	default:
		return nil, p.errHere("UnexpectedToken", "expected a pattern", "")
	}
}

func (p *parser) parseLiteralPattern() (ast.Pattern, error) {
	start := p.cur().Location
	tok := p.advance()
	var kind ast.LiteralKind
	switch tok.Kind {
	case token.Int:
		kind = ast.LitInt
	case token.Float:
		kind = ast.LitFloat
	case token.String:
		kind = ast.LitString
	}
	return &ast.LiteralPattern{PatternBase: patBase(start), Kind: kind, Raw: tok.Value}, nil
}

func (p *parser) parseVariantPattern() (ast.Pattern, error) {
	start := p.cur().Location
	name := p.advance().Value
	if !p.at(token.LParen) {
		return &ast.VariantPattern{PatternBase: patBase(start), Name: name}, nil
	}
	p.advance()
	var args []ast.Pattern
	for !p.at(token.RParen) {
		arg, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.VariantPattern{PatternBase: patBase(start), Name: name, Args: args}, nil
}

func (p *parser) parseTuplePattern() (ast.Pattern, error) {
	start := p.cur().Location
	p.advance() // '('
	if p.at(token.RParen) {
		p.advance()
		return &ast.TuplePattern{PatternBase: patBase(start)}, nil
	}
	first, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	if !p.at(token.Comma) {
		if _, err := p.expect(token.RParen, "')'"); err != nil {
			return nil, err
		}
		return first, nil // parenthesized single pattern, not a tuple
	}
	items := []ast.Pattern{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RParen) {
			break
		}
		next, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.TuplePattern{PatternBase: patBase(start), Items: items}, nil
}

func (p *parser) parseRecordPattern() (ast.Pattern, error) {
	start := p.cur().Location
	p.advance() // '{'
	var fields []ast.RecordFieldPattern
	for !p.at(token.RBrace) {
		fstart := p.cur().Location
		name, err := p.expect(token.Ident, "a field name")
		if err != nil {
			return nil, err
		}
		var sub ast.Pattern
		if p.at(token.Colon) {
			p.advance()
			sub, err = p.parsePattern()
			if err != nil {
				return nil, err
			}
		}
		fields = append(fields, ast.RecordFieldPattern{Base: ast.Base{Loc: fstart}, Name: name.Value, Pattern: sub})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return &ast.RecordPattern{PatternBase: patBase(start), Fields: fields}, nil
}

func (p *parser) parseListPattern() (ast.Pattern, error) {
	start := p.cur().Location
	p.advance() // '['
	var items []ast.Pattern
	var rest *string
	for !p.at(token.RBracket) {
		if p.at(token.DotDotDot) {
			p.advance()
			name, err := p.expect(token.Ident, "a rest-binding identifier")
			if err != nil {
				return nil, err
			}
			r := name.Value
			rest = &r
			break
		}
		item, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBracket, "']'"); err != nil {
		return nil, err
	}
	return &ast.ListPattern{PatternBase: patBase(start), Items: items, Rest: rest}, nil
}

func patBase(loc token.Location) ast.PatternBase {
	return ast.PatternBase{Base: ast.Base{Loc: loc}}
}
