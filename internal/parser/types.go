package parser

import (
	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/token"
)

// parseTypeExpr parses a type expression: constructor application binds
// tighter than the right-associative function arrow.
func (p *parser) parseTypeExpr() (ast.TypeExpr, error) {
	left, err := p.parseTypeApp()
	if err != nil {
		return nil, err
	}
	if p.at(token.ThinArrow) {
		p.advance()
		right, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		return &ast.FuncType{TypeExprBase: typeBase(left.Location()), Param: left, Result: right}, nil
	}
	return left, nil
}

// parseTypeApp parses `ref T` and generic constructor application
// `Name<T1, T2>`.
func (p *parser) parseTypeApp() (ast.TypeExpr, error) {
	start := p.cur().Location

	if p.atKeyword("ref") {
		p.advance()
		elem, err := p.parseTypePrimary()
		if err != nil {
			return nil, err
		}
		return &ast.RefTypeExpr{TypeExprBase: typeBase(start), Elem: elem}, nil
	}

	if p.at(token.Ident) && isUpperIdent(p.cur().Value) {
		return p.parseConstructorOrPrimitive()
	}

	return p.parseTypePrimary()
}

// parseConstructorOrPrimitive parses an uppercase type name, its
// optional `<T1, T2>` generic argument list, and recognizes the five
// primitive names.
func (p *parser) parseConstructorOrPrimitive() (ast.TypeExpr, error) {
	start := p.cur().Location
	name := p.advance().Value

	if !p.at(token.Lt) {
		if isPrimitiveTypeName(name) {
			return &ast.PrimitiveType{TypeExprBase: typeBase(start), Name: name}, nil
		}
		return &ast.ConstructorType{TypeExprBase: typeBase(start), Name: name}, nil
	}

	p.advance() // '<'
	var args []ast.TypeExpr
	for {
		arg, err := p.parseTypeExpr()
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
	if err := p.closeAngleBracket(); err != nil {
		return nil, err
	}
	return &ast.ConstructorType{TypeExprBase: typeBase(start), Name: name, Args: args}, nil
}

func isPrimitiveTypeName(name string) bool {
	switch name {
	case "Int", "Float", "String", "Bool", "Unit":
		return true
	}
	return false
}

// closeAngleBracket consumes one '>' closing a generic argument list,
// splitting a lexed '>>' into two '>' tokens when it closes a nested
// list (spec.md §4.2 rule 3): the outer '>' is left pending, consumed by
// the next closeAngleBracket call without reading another real token.
func (p *parser) closeAngleBracket() error {
	if p.pendingGt > 0 {
		p.pendingGt--
		return nil
	}
	if p.at(token.GtGt) {
		p.advance()
		p.pendingGt++
		return nil
	}
	if _, err := p.expect(token.Gt, "'>'"); err != nil {
		return err
	}
	return nil
}

func (p *parser) parseTypePrimary() (ast.TypeExpr, error) {
	start := p.cur().Location

	switch {
	case p.at(token.Ident) && isLowerTypeVar(p.cur().Value):
		name := p.advance().Value
		return &ast.TypeVarExpr{TypeExprBase: typeBase(start), Name: name}, nil

	case p.at(token.Ident) && isUpperIdent(p.cur().Value):
		return p.parseConstructorOrPrimitive()

	case p.at(token.LParen):
		p.advance()
		if p.at(token.RParen) {
			p.advance()
			return &ast.PrimitiveType{TypeExprBase: typeBase(start), Name: "Unit"}, nil
		}
		first, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if p.at(token.Comma) {
			items := []ast.TypeExpr{first}
			for p.at(token.Comma) {
				p.advance()
				next, err := p.parseTypeExpr()
				if err != nil {
					return nil, err
				}
				items = append(items, next)
			}
			if _, err := p.expect(token.RParen, "')'"); err != nil {
				return nil, err
			}
			return &ast.TupleTypeExpr{TypeExprBase: typeBase(start), Items: items}, nil
		}
		if _, err := p.expect(token.RParen, "')'"); err != nil {
			return nil, err
		}
		return first, nil

	case p.at(token.LBrace):
		fields, open, err := p.parseRecordTypeFields()
		if err != nil {
			return nil, err
		}
		return &ast.RecordTypeExpr{TypeExprBase: typeBase(start), Fields: fields, Open: open}, nil

	default:
		return nil, p.errHere("UnexpectedToken", "expected a type expression", "")
	}
}

func typeBase(loc token.Location) ast.TypeExprBase {
	return ast.TypeExprBase{Base: ast.Base{Loc: loc}}
}
