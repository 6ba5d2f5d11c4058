package parser

import (
	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/token"
)

func (p *parser) parseDecl() (ast.Decl, error) {
	exported := false
	if p.atKeyword("export") {
		exported = true
		p.advance()
		if p.at(token.LBrace) {
			return p.parseExportDecl(exported)
		}
	}

	switch {
	case p.atKeyword("let"):
		return p.parseLetOrLetRec(exported)
	case p.atKeyword("type"):
		return p.parseTypeDeclOrGroup(exported)
	case p.atKeyword("external"):
		return p.parseExternalOrBlock(exported)
	case p.atKeyword("import"):
		return p.parseImportDecl()
	default:
		return nil, p.errHere("UnexpectedToken", "expected a declaration (let, type, external, import, export)", "")
	}
}

func (p *parser) parseLetOrLetRec(exported bool) (ast.Decl, error) {
	start := p.cur().Location
	p.advance() // 'let'

	if p.atKeyword("rec") {
		p.advance()
		group, err := p.parseRecGroup()
		if err != nil {
			return nil, err
		}
		return &ast.LetRecGroup{DeclBase: ast.DeclBase{Base: ast.Base{Loc: start}}, Bindings: group, Exported: exported}, nil
	}

	mut := false
	if p.atKeyword("mut") {
		mut = true
		p.advance()
	}

	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}

	var annot ast.TypeExpr
	if p.at(token.Colon) {
		p.advance()
		annot, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.Eq, "'='"); err != nil {
		return nil, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ast.LetDecl{
		DeclBase:   ast.DeclBase{Base: ast.Base{Loc: start}},
		Mut:        mut,
		Pattern:    pat,
		Annotation: annot,
		Value:      value,
		Exported:   exported,
	}, nil
}

func (p *parser) parseRecGroup() ([]ast.RecBinding, error) {
	var bindings []ast.RecBinding
	for {
		b, err := p.parseRecBinding()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
		if p.atKeyword("and") {
			p.advance()
			continue
		}
		break
	}
	return bindings, nil
}

func (p *parser) parseRecBinding() (ast.RecBinding, error) {
	start := p.cur().Location
	name, err := p.expect(token.Ident, "an identifier")
	if err != nil {
		return ast.RecBinding{}, err
	}

	var annot ast.TypeExpr
	if p.at(token.Colon) {
		p.advance()
		annot, err = p.parseTypeExpr()
		if err != nil {
			return ast.RecBinding{}, err
		}
	}

	if _, err := p.expect(token.Eq, "'='"); err != nil {
		return ast.RecBinding{}, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return ast.RecBinding{}, err
	}

	return ast.RecBinding{Base: ast.Base{Loc: start}, Name: name.Value, Annotation: annot, Value: value}, nil
}

func (p *parser) parseTypeDeclOrGroup(exported bool) (ast.Decl, error) {
	start := p.cur().Location
	first, err := p.parseOneTypeDecl(exported)
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("and") {
		return first, nil
	}

	group := &ast.TypeGroup{DeclBase: ast.DeclBase{Base: ast.Base{Loc: start}}, Decls: []*ast.TypeDecl{first}}
	for p.atKeyword("and") {
		p.advance()
		// 'and' at declaration position after a type decl continues the
		// group without repeating the 'type' keyword (spec.md §4.2 rule 6).
		next, err := p.parseTypeDeclBodyAfterKeyword(exported)
		if err != nil {
			return nil, err
		}
		group.Decls = append(group.Decls, next)
	}
	return group, nil
}

func (p *parser) parseOneTypeDecl(exported bool) (*ast.TypeDecl, error) {
	p.advance() // 'type'
	return p.parseTypeDeclBodyAfterKeyword(exported)
}

func (p *parser) parseTypeDeclBodyAfterKeyword(exported bool) (*ast.TypeDecl, error) {
	start := p.cur().Location
	name, err := p.expect(token.Ident, "a type name")
	if err != nil {
		return nil, err
	}

	var params []string
	if p.at(token.Lt) {
		p.advance() // '<'
		for !p.at(token.Gt) {
			param, err := p.expect(token.Ident, "a type parameter")
			if err != nil {
				return nil, err
			}
			params = append(params, param.Value)
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.advance() // '>'
	}
	for p.at(token.Ident) && isLowerTypeVar(p.cur().Value) {
		params = append(params, p.advance().Value)
	}

	decl := &ast.TypeDecl{DeclBase: ast.DeclBase{Base: ast.Base{Loc: start}}, Name: name.Value, Params: params, Exported: exported}

	if !p.at(token.Eq) {
		// abstract/opaque declaration with no body is not in the
		// surface grammar; require '='.
		return nil, p.errHere("UnexpectedToken", "expected '=' after type name", "")
	}
	p.advance()

	body, err := p.parseTypeDeclBody()
	if err != nil {
		return nil, err
	}
	decl.Body = body
	return decl, nil
}

// isLowerTypeVar heuristically distinguishes a type-parameter name
// from the decl name that follows 'type': type parameters are
// lowercase identifiers appearing before '='.
func isLowerTypeVar(name string) bool {
	if name == "" {
		return false
	}
	r := rune(name[0])
	return r >= 'a' && r <= 'z'
}

func (p *parser) parseTypeDeclBody() (ast.TypeDeclBody, error) {
	switch {
	case p.at(token.LBrace):
		return p.parseRecordTypeBody()
	case p.at(token.Pipe) || (p.at(token.Ident) && isUpperIdent(p.cur().Value)):
		return p.parseVariantBody()
	default:
		t, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		return ast.AliasBody{Type: t}, nil
	}
}

func isUpperIdent(name string) bool {
	if name == "" {
		return false
	}
	r := rune(name[0])
	return r >= 'A' && r <= 'Z'
}

func (p *parser) parseVariantBody() (ast.TypeDeclBody, error) {
	var ctors []ast.VariantConstructor
	if p.at(token.Pipe) {
		p.advance()
	}
	for {
		start := p.cur().Location
		name, err := p.expect(token.Ident, "a constructor name")
		if err != nil {
			return nil, err
		}
		var args []ast.TypeExpr
		if p.at(token.LParen) {
			p.advance()
			for !p.at(token.RParen) {
				t, err := p.parseTypeExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, t)
				if p.at(token.Comma) {
					p.advance()
					continue
				}
				break
			}
			if _, err := p.expect(token.RParen, "')'"); err != nil {
				return nil, err
			}
		}
		ctors = append(ctors, ast.VariantConstructor{Base: ast.Base{Loc: start}, Name: name.Value, Args: args})

		if p.at(token.Pipe) {
			p.advance()
			continue
		}
		break
	}
	return ast.VariantBody{Constructors: ctors}, nil
}

func (p *parser) parseRecordTypeBody() (ast.TypeDeclBody, error) {
	fields, _, err := p.parseRecordTypeFields()
	if err != nil {
		return nil, err
	}
	return ast.RecordBody{Fields: fields}, nil
}

func (p *parser) parseRecordTypeFields() ([]ast.RecordTypeField, bool, error) {
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, false, err
	}
	var fields []ast.RecordTypeField
	open := false
	for !p.at(token.RBrace) {
		if p.at(token.DotDotDot) {
			p.advance()
			open = true
			break
		}
		start := p.cur().Location
		name, err := p.expect(token.Ident, "a field name")
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expect(token.Colon, "':'"); err != nil {
			return nil, false, err
		}
		t, err := p.parseTypeExpr()
		if err != nil {
			return nil, false, err
		}
		fields = append(fields, ast.RecordTypeField{Base: ast.Base{Loc: start}, Name: name.Value, Type: t})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, false, err
	}
	return fields, open, nil
}

func (p *parser) parseExternalOrBlock(exported bool) (ast.Decl, error) {
	start := p.cur().Location
	p.advance() // 'external'

	if p.at(token.LBrace) {
		p.advance()
		var items []*ast.ExternalDecl
		for !p.at(token.RBrace) {
			item, err := p.parseExternalItem(exported, "")
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if err := p.expectSemi(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RBrace, "'}'"); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("from"); err != nil {
			return nil, err
		}
		src, err := p.expect(token.String, "a module specifier string")
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			it.Source = src.Value
		}
		return &ast.ExternalBlock{DeclBase: ast.DeclBase{Base: ast.Base{Loc: start}}, From: src.Value, Items: items}, nil
	}

	decl, err := p.parseExternalItem(exported, "")
	if err != nil {
		return nil, err
	}
	if p.atKeyword("from") {
		p.advance()
		src, err := p.expect(token.String, "a module specifier string")
		if err != nil {
			return nil, err
		}
		decl.Source = src.Value
	}
	return decl, nil
}

func (p *parser) parseExternalItem(exported bool, source string) (*ast.ExternalDecl, error) {
	start := p.cur().Location
	name, err := p.expect(token.Ident, "an external name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon, "':'"); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Eq, "'='"); err != nil {
		return nil, err
	}
	jsName, err := p.expect(token.String, "the JavaScript name")
	if err != nil {
		return nil, err
	}
	return &ast.ExternalDecl{
		DeclBase: ast.DeclBase{Base: ast.Base{Loc: start}},
		Name:     name.Value,
		Type:     typ,
		JSName:   jsName.Value,
		Source:   source,
		Exported: exported,
	}, nil
}

func (p *parser) parseImportDecl() (ast.Decl, error) {
	start := p.cur().Location
	p.advance() // 'import'

	decl := &ast.ImportDecl{DeclBase: ast.DeclBase{Base: ast.Base{Loc: start}}}

	typeOnly := false
	if p.atKeyword("type") {
		typeOnly = true
		p.advance()
	}
	decl.TypeOnly = typeOnly

	switch {
	case p.at(token.Star):
		// namespace import: import * as ns from "mod"
		p.advance()
		if err := p.expectKeywordIdent("as"); err != nil {
			return nil, err
		}
		ns, err := p.expect(token.Ident, "a namespace alias")
		if err != nil {
			return nil, err
		}
		decl.Kind = ast.ImportNamespace
		decl.NamespaceAs = ns.Value

	case p.at(token.LBrace):
		p.advance()
		for !p.at(token.RBrace) {
			spec, err := p.parseImportSpecifier()
			if err != nil {
				return nil, err
			}
			decl.Specifiers = append(decl.Specifiers, spec)
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RBrace, "'}'"); err != nil {
			return nil, err
		}
		decl.Kind = ast.ImportNamed

	case p.at(token.String):
		// side-effect-only: import "mod";
		decl.Kind = ast.ImportSideEffectOnly
		src, err := p.expect(token.String, "a module specifier string")
		if err != nil {
			return nil, err
		}
		decl.Source = src.Value
		return decl, nil

	default:
		return nil, p.errHere("UnexpectedToken", "expected an import specifier list, '*', or a module string", "")
	}

	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	src, err := p.expect(token.String, "a module specifier string")
	if err != nil {
		return nil, err
	}
	decl.Source = src.Value
	return decl, nil
}

func (p *parser) expectKeywordIdent(name string) error {
	// 'as' is an active keyword per the lexer's keyword table.
	return p.expectKeyword(name)
}

func (p *parser) parseImportSpecifier() (ast.ImportSpecifier, error) {
	start := p.cur().Location
	typeOnly := false
	if p.atKeyword("type") && p.peekAt(1).Kind == token.Ident {
		typeOnly = true
		p.advance()
	}
	name, err := p.expect(token.Ident, "an identifier")
	if err != nil {
		return ast.ImportSpecifier{}, err
	}
	alias := ""
	if p.atKeyword("as") {
		p.advance()
		a, err := p.expect(token.Ident, "an alias identifier")
		if err != nil {
			return ast.ImportSpecifier{}, err
		}
		alias = a.Value
	}
	return ast.ImportSpecifier{Base: ast.Base{Loc: start}, Name: name.Value, Alias: alias, TypeOnly: typeOnly}, nil
}

func (p *parser) parseExportDecl(exported bool) (ast.Decl, error) {
	start := p.cur().Location
	p.advance() // '{'
	var specs []ast.ImportSpecifier
	for !p.at(token.RBrace) {
		spec, err := p.parseImportSpecifier()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, err
	}

	source := ""
	if p.atKeyword("from") {
		p.advance()
		src, err := p.expect(token.String, "a module specifier string")
		if err != nil {
			return nil, err
		}
		source = src.Value
	}
	return &ast.ExportDecl{DeclBase: ast.DeclBase{Base: ast.Base{Loc: start}}, Specifiers: specs, Source: source}, nil
}
