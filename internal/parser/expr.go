package parser

import (
	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/token"
)

// parseExpr parses a full expression at the lowest precedence level,
// `:=` (spec.md §4.2 precedence table level 0).
func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseRefAssign()
}

func (p *parser) parseRefAssign() (ast.Expr, error) {
	start := p.cur().Location
	left, err := p.parseCompose()
	if err != nil {
		return nil, err
	}
	if !p.at(token.ColonEq) {
		return left, nil
	}
	p.advance()
	value, err := p.parseRefAssign() // right-associative
	if err != nil {
		return nil, err
	}
	return &ast.RefAssign{ExprBase: exprBase(start), Ref: left, Value: value}, nil
}

// parseCompose handles `>>`/`<<` function composition, level 1 and
// right-associative: `f >> g >> h` is `f >> (g >> h)`.
func (p *parser) parseCompose() (ast.Expr, error) {
	start := p.cur().Location
	left, err := p.parsePipe()
	if err != nil {
		return nil, err
	}
	if !p.at(token.GtGt) && !p.at(token.LtLt) {
		return left, nil
	}
	dir := ast.ComposeForward
	if p.at(token.LtLt) {
		dir = ast.ComposeBackward
	}
	p.advance()
	right, err := p.parseCompose()
	if err != nil {
		return nil, err
	}
	return &ast.Compose{ExprBase: exprBase(start), Dir: dir, Left: left, Right: right}, nil
}

// parsePipe handles `|>`, level 2, left-associative.
func (p *parser) parsePipe() (ast.Expr, error) {
	start := p.cur().Location
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for p.at(token.PipeGt) {
		p.advance()
		right, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		left = &ast.Pipe{ExprBase: exprBase(start), Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseOr() (ast.Expr, error) {
	start := p.cur().Location
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.PipePipe) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{ExprBase: exprBase(start), Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	start := p.cur().Location
	left, err := p.parseCons()
	if err != nil {
		return nil, err
	}
	for p.at(token.AmpAmp) {
		p.advance()
		right, err := p.parseCons()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{ExprBase: exprBase(start), Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

// parseCons handles `::`, right-associative. The precedence table in
// spec.md §4.2 does not place `::`; it is slotted here, between logical
// `&&` and equality, so it binds looser than `==`: `x :: xs == ys`
// parses as `x :: (xs == ys)`.
func (p *parser) parseCons() (ast.Expr, error) {
	start := p.cur().Location
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	if !p.at(token.ColonColon) {
		return left, nil
	}
	p.advance()
	right, err := p.parseCons()
	if err != nil {
		return nil, err
	}
	return &ast.Binary{ExprBase: exprBase(start), Op: ast.OpCons, Left: left, Right: right}, nil
}

func (p *parser) parseEquality() (ast.Expr, error) {
	start := p.cur().Location
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.at(token.EqEq) || p.at(token.BangEq) {
		op := ast.OpEq
		if p.at(token.BangEq) {
			op = ast.OpNeq
		}
		p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{ExprBase: exprBase(start), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseRelational() (ast.Expr, error) {
	start := p.cur().Location
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.at(token.Lt) || p.at(token.LtEq) || p.at(token.Gt) || p.at(token.GtEq) {
		var op ast.BinOp
		switch p.cur().Kind {
		case token.Lt:
			op = ast.OpLt
		case token.LtEq:
			op = ast.OpLe
		case token.Gt:
			op = ast.OpGt
		case token.GtEq:
			op = ast.OpGe
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{ExprBase: exprBase(start), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	start := p.cur().Location
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(token.Plus) || p.at(token.Minus) || p.at(token.Amp) {
		var op ast.BinOp
		switch p.cur().Kind {
		case token.Plus:
			op = ast.OpAdd
		case token.Minus:
			op = ast.OpSub
		case token.Amp:
			op = ast.OpConcatString
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{ExprBase: exprBase(start), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	start := p.cur().Location
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(token.Star) || p.at(token.Slash) || p.at(token.Percent) {
		var op ast.BinOp
		switch p.cur().Kind {
		case token.Star:
			op = ast.OpMul
		case token.Slash:
			op = ast.OpDiv
		case token.Percent:
			op = ast.OpMod
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{ExprBase: exprBase(start), Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseUnary implements disambiguation rule 1: a leading `!` here is
// always logical-not; postfix `!` (deref) is recognized only inside
// parseCall, after a primary/field-access/call.
func (p *parser) parseUnary() (ast.Expr, error) {
	start := p.cur().Location
	switch {
	case p.at(token.Bang):
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{ExprBase: exprBase(start), Op: ast.OpNot, Operand: operand}, nil
	case p.at(token.Minus):
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{ExprBase: exprBase(start), Op: ast.OpNeg, Operand: operand}, nil
	default:
		return p.parseCall()
	}
}

// parseCall parses a primary expression followed by any chain of
// call/field-access/postfix-deref suffixes, highest precedence.
func (p *parser) parseCall() (ast.Expr, error) {
	start := p.cur().Location
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(token.LParen):
			p.advance()
			var args []ast.Expr
			for !p.at(token.RParen) {
				arg, err := p.parseExpr()
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
			e = &ast.Apply{ExprBase: exprBase(start), Func: e, Args: args}

		case p.at(token.Dot):
			p.advance()
			field, err := p.expect(token.Ident, "a field name")
			if err != nil {
				return nil, err
			}
			e = &ast.Project{ExprBase: exprBase(start), Record: e, Field: field.Value}

		case p.at(token.Bang):
			p.advance()
			e = &ast.Unary{ExprBase: exprBase(start), Op: ast.OpDeref, Operand: e}

		default:
			return e, nil
		}
	}
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	start := p.cur().Location

	switch {
	case p.at(token.Int):
		return &ast.Literal{ExprBase: exprBase(start), Kind: ast.LitInt, Raw: p.advance().Value}, nil

	case p.at(token.Float):
		return &ast.Literal{ExprBase: exprBase(start), Kind: ast.LitFloat, Raw: p.advance().Value}, nil

	case p.at(token.String):
		return &ast.Literal{ExprBase: exprBase(start), Kind: ast.LitString, Raw: p.advance().Value}, nil

	case p.at(token.Ident) && p.cur().Value == "true":
		p.advance()
		return &ast.Literal{ExprBase: exprBase(start), Kind: ast.LitBool, Raw: "true"}, nil

	case p.at(token.Ident) && p.cur().Value == "false":
		p.advance()
		return &ast.Literal{ExprBase: exprBase(start), Kind: ast.LitBool, Raw: "false"}, nil

	case p.at(token.Ident):
		return &ast.Var{ExprBase: exprBase(start), Name: p.advance().Value}, nil

	case p.atKeyword("if"):
		return p.parseIf()

	case p.atKeyword("match"):
		return p.parseMatch()

	case p.atKeyword("while"):
		return p.parseWhile()

	case p.atKeyword("unsafe"):
		return p.parseUnsafe()

	case p.atKeyword("ref"):
		return p.parseRefNew()

	case p.at(token.LParen):
		return p.parseParenExpr()

	case p.at(token.LBrace):
		return p.parseBraceExpr()

	case p.at(token.LBracket):
		return p.parseListExpr()

	default:
		return nil, p.errHere("UnexpectedToken", "expected an expression", "")
	}
}

func (p *parser) parseRefNew() (ast.Expr, error) {
	start := p.cur().Location
	p.advance() // 'ref'
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.Apply{ExprBase: exprBase(start), Func: &ast.Var{ExprBase: exprBase(start), Name: "ref"}, Args: []ast.Expr{value}}, nil
}

func (p *parser) parseIf() (ast.Expr, error) {
	start := p.cur().Location
	p.advance() // 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("then"); err != nil {
		return nil, err
	}
	thenE, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("else"); err != nil {
		return nil, err
	}
	elseE, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.If{ExprBase: exprBase(start), Cond: cond, Then: thenE, Else: elseE}, nil
}

func (p *parser) parseMatch() (ast.Expr, error) {
	start := p.cur().Location
	p.advance() // 'match'
	scrutinee, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	for !p.at(token.RBrace) {
		astart := p.cur().Location
		if p.at(token.Pipe) {
			p.advance()
		}
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		var guard ast.Expr
		if p.atKeyword("when") {
			p.advance()
			guard, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.Arrow, "'=>'"); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Base: ast.Base{Loc: astart}, Pattern: pat, Guard: guard, Body: body})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return &ast.Match{ExprBase: exprBase(start), Scrutinee: scrutinee, Arms: arms}, nil
}

func (p *parser) parseWhile() (ast.Expr, error) {
	start := p.cur().Location
	p.advance() // 'while'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBraceExpr()
	if err != nil {
		return nil, err
	}
	return &ast.While{ExprBase: exprBase(start), Cond: cond, Body: body}, nil
}

func (p *parser) parseUnsafe() (ast.Expr, error) {
	start := p.cur().Location
	p.advance() // 'unsafe'
	body, err := p.parseBraceExpr()
	if err != nil {
		return nil, err
	}
	return &ast.UnsafeBlock{ExprBase: exprBase(start), Body: body}, nil
}

// parseLetInExpr parses a `let`/`let mut` binding appearing directly in
// expression position (i.e. not as a block statement): its scope is
// whatever expression syntactically follows once a `;` separates them,
// which in practice always means it is nested inside parseBraceExpr's
// statement loop. Standalone top-level `let ... ;` with no following
// expression is handled by the declaration parser instead; reaching
// here means we are already inside a block and should delegate so the
// statement/result split stays in one place.
func (p *parser) parseLetInExpr() (ast.Expr, error) {
	start := p.cur().Location
	p.advance() // 'let'
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
	return &ast.LetIn{ExprBase: exprBase(start), Mut: mut, Pattern: pat, Annotation: annot, Value: value}, nil
}

// parseParenExpr implements disambiguation rule 4 (lambda vs
// parenthesized expression) and rule 5 (return-type depth tracking),
// plus tuples and the unit literal `()`.
func (p *parser) parseParenExpr() (ast.Expr, error) {
	start := p.cur().Location
	if p.isLambdaAhead() {
		return p.parseLambda()
	}

	p.advance() // '('
	if p.at(token.RParen) {
		p.advance()
		return &ast.Literal{ExprBase: exprBase(start), Kind: ast.LitUnit, Raw: "()"}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(token.Comma) {
		items := []ast.Expr{first}
		for p.at(token.Comma) {
			p.advance()
			next, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			items = append(items, next)
		}
		if _, err := p.expect(token.RParen, "')'"); err != nil {
			return nil, err
		}
		return &ast.Tuple{ExprBase: exprBase(start), Items: items}, nil
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	return first, nil
}

func (p *parser) parseLambda() (ast.Expr, error) {
	start := p.cur().Location
	p.advance() // '('
	var params []ast.Param
	for !p.at(token.RParen) {
		pstart := p.cur().Location
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
		params = append(params, ast.Param{Base: ast.Base{Loc: pstart}, Pattern: pat, Annotation: annot})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	var retType ast.TypeExpr
	if p.at(token.Colon) {
		p.advance()
		var err error
		retType, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Arrow, "'=>'"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{ExprBase: exprBase(start), Params: params, ReturnType: retType, Body: body}, nil
}

// isLambdaAhead scans from the current '(' across a balanced
// parenthesized prefix, optionally followed by a `:TypeExpr` return
// annotation (tracking `(`/`[`/`{` depth across the whole annotation,
// per rule 5), looking for a terminating `=>`. It does not mutate
// parser state.
func (p *parser) isLambdaAhead() bool {
	idx := p.pos
	depth := 0
	for {
		k := p.tokAt(idx).Kind
		if k == token.EOF {
			return false
		}
		if k == token.LParen || k == token.LBracket || k == token.LBrace {
			depth++
		}
		if k == token.RParen || k == token.RBracket || k == token.RBrace {
			depth--
			if depth == 0 {
				idx++
				break
			}
		}
		idx++
	}

	if p.tokAt(idx).Kind == token.Arrow {
		return true
	}
	if p.tokAt(idx).Kind != token.Colon {
		return false
	}
	idx++
	d := 0
	for {
		k := p.tokAt(idx).Kind
		if d == 0 && k == token.Arrow {
			return true
		}
		if d == 0 {
			switch k {
			case token.Semi, token.EOF, token.Comma, token.RParen, token.RBrace, token.RBracket:
				return false
			}
		}
		switch k {
		case token.LParen, token.LBracket, token.LBrace:
			d++
		case token.RParen, token.RBracket, token.RBrace:
			d--
			if d < 0 {
				return false
			}
		}
		idx++
	}
}

func (p *parser) tokAt(i int) token.Token {
	if i < 0 || i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

// parseBraceExpr implements disambiguation rule 2 (record vs block).
func (p *parser) parseBraceExpr() (ast.Expr, error) {
	start := p.cur().Location
	p.advance() // '{'

	if p.at(token.RBrace) {
		p.advance()
		return &ast.RecordLiteral{ExprBase: exprBase(start)}, nil
	}

	switch {
	case p.atKeyword("if"), p.atKeyword("match"), p.atKeyword("unsafe"),
		p.atKeyword("let"), p.atKeyword("while"):
		return p.parseBlockBody(start, nil)

	case p.at(token.DotDotDot):
		return p.parseRecordUpdateBody(start)

	case p.at(token.Ident) && (p.peekAt(1).Kind == token.Colon ||
		p.peekAt(1).Kind == token.Comma || p.peekAt(1).Kind == token.RBrace):
		return p.parseRecordLiteralBody(start)
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(token.RBrace) {
		p.advance()
		return &ast.Block{ExprBase: exprBase(start), Result: first}, nil
	}
	if p.at(token.Semi) {
		return p.parseBlockBody(start, first)
	}
	return nil, p.errHere("UnexpectedToken", "expected ';' or '}' after block expression", "")
}

// parseBlockBody continues parsing a block's statements. If firstExpr
// is non-nil, it was already parsed as an ordinary expression statement
// (the brace-vs-record lookahead consumed it before discovering a `;`
// followed); otherwise the next statement starts at the current token.
func (p *parser) parseBlockBody(start token.Location, firstExpr ast.Expr) (ast.Expr, error) {
	var stmts []ast.Stmt
	if firstExpr != nil {
		stmts = append(stmts, ast.Stmt{Base: ast.Base{Loc: firstExpr.Location()}, Expr: firstExpr})
		if err := p.expectSemi(); err != nil {
			return nil, err
		}
	}

	for {
		if p.at(token.RBrace) {
			p.advance()
			return &ast.Block{ExprBase: exprBase(start), Stmts: stmts}, nil
		}

		sstart := p.cur().Location
		if p.atKeyword("let") {
			letExpr, err := p.parseLetInExpr()
			if err != nil {
				return nil, err
			}
			l := letExpr.(*ast.LetIn)
			stmts = append(stmts, ast.Stmt{Base: ast.Base{Loc: sstart}, Let: l, Expr: l.Value})
			if err := p.expectSemi(); err != nil {
				return nil, err
			}
			continue
		}

		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(token.RBrace) {
			p.advance()
			return &ast.Block{ExprBase: exprBase(start), Stmts: stmts, Result: expr}, nil
		}
		if err := p.expectSemi(); err != nil {
			return nil, err
		}
		stmts = append(stmts, ast.Stmt{Base: ast.Base{Loc: sstart}, Expr: expr})
	}
}

func (p *parser) parseRecordLiteralBody(start token.Location) (ast.Expr, error) {
	var items []ast.RecordItem
	for !p.at(token.RBrace) {
		item, err := p.parseRecordItem()
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
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return &ast.RecordLiteral{ExprBase: exprBase(start), Items: items}, nil
}

func (p *parser) parseRecordUpdateBody(start token.Location) (ast.Expr, error) {
	p.advance() // '...'
	base, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var items []ast.RecordItem
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RBrace) {
			break
		}
		item, err := p.parseRecordItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return &ast.RecordUpdate{ExprBase: exprBase(start), Base_: base, Items: items}, nil
}

func (p *parser) parseRecordItem() (ast.RecordItem, error) {
	start := p.cur().Location
	if p.at(token.DotDotDot) {
		p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.RecordSpread{Base: ast.Base{Loc: start}, Value: value}, nil
	}
	name, err := p.expect(token.Ident, "a field name")
	if err != nil {
		return nil, err
	}
	if p.at(token.Colon) {
		p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.RecordField{Base: ast.Base{Loc: start}, Name: name.Value, Value: value}, nil
	}
	return ast.RecordField{Base: ast.Base{Loc: start}, Name: name.Value}, nil
}

func (p *parser) parseListExpr() (ast.Expr, error) {
	start := p.cur().Location
	p.advance() // '['
	var items []ast.ListItem
	for !p.at(token.RBracket) {
		istart := p.cur().Location
		spread := false
		if p.at(token.DotDotDot) {
			p.advance()
			spread = true
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, ast.ListItem{Base: ast.Base{Loc: istart}, Value: value, Spread: spread})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBracket, "']'"); err != nil {
		return nil, err
	}
	return &ast.ListLiteral{ExprBase: exprBase(start), Items: items}, nil
}

func exprBase(loc token.Location) ast.ExprBase {
	return ast.ExprBase{Base: ast.Base{Loc: loc}}
}
