package desugar

import (
	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/core"
)

func litKind(k ast.LiteralKind) core.LiteralKind { return core.LiteralKind(k) }

func (d *desugarer) desugarExpr(e ast.Expr) (core.Expr, error) {
	loc := e.Location()
	switch e := e.(type) {
	case *ast.Literal:
		return &core.Literal{ExprBase: core.ExprBase{Base: base(loc)}, Kind: litKind(e.Kind), Raw: e.Raw}, nil

	case *ast.Var:
		return &core.Var{ExprBase: core.ExprBase{Base: base(loc)}, Name: e.Name}, nil

	case *ast.LetIn:
		return d.desugarLetIn(e)

	case *ast.LetRecIn:
		return d.desugarLetRecIn(e)

	case *ast.Lambda:
		return d.desugarLambda(e)

	case *ast.Apply:
		return d.desugarApply(e)

	case *ast.Binary:
		return d.desugarBinary(e)

	case *ast.Unary:
		operand, err := d.desugarExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		op := map[ast.UnaryOp]core.UnaryOp{
			ast.OpNeg:   core.OpNeg,
			ast.OpNot:   core.OpNot,
			ast.OpDeref: core.OpDeref,
		}[e.Op]
		return &core.Unary{ExprBase: core.ExprBase{Base: base(loc)}, Op: op, Operand: operand}, nil

	case *ast.If:
		return d.desugarIf(e)

	case *ast.Match:
		return d.desugarMatch(e)

	case *ast.Block:
		return d.desugarBlock(e)

	case *ast.RecordLiteral:
		return d.desugarRecordLiteral(e)

	case *ast.Project:
		rec, err := d.desugarExpr(e.Record)
		if err != nil {
			return nil, err
		}
		return &core.Project{ExprBase: core.ExprBase{Base: base(loc)}, Record: rec, Field: e.Field}, nil

	case *ast.RecordUpdate:
		return d.desugarRecordUpdate(e)

	case *ast.ListLiteral:
		return d.desugarListLiteral(e)

	case *ast.Tuple:
		items := make([]core.Expr, len(e.Items))
		for i, it := range e.Items {
			ci, err := d.desugarExpr(it)
			if err != nil {
				return nil, err
			}
			items[i] = ci
		}
		return &core.Tuple{ExprBase: core.ExprBase{Base: base(loc)}, Items: items}, nil

	case *ast.Pipe:
		return d.desugarPipe(e)

	case *ast.Compose:
		return d.desugarCompose(e)

	case *ast.RefAssign:
		ref, err := d.desugarExpr(e.Ref)
		if err != nil {
			return nil, err
		}
		value, err := d.desugarExpr(e.Value)
		if err != nil {
			return nil, err
		}
		return &core.RefAssign{ExprBase: core.ExprBase{Base: base(loc)}, Ref: ref, Value: value}, nil

	case *ast.TypeAnnotation:
		value, err := d.desugarExpr(e.Value)
		if err != nil {
			return nil, err
		}
		ty, err := d.desugarTypeExpr(e.Type)
		if err != nil {
			return nil, err
		}
		return &core.TypeAnnotation{ExprBase: core.ExprBase{Base: base(loc)}, Value: value, Type: ty}, nil

	case *ast.UnsafeBlock:
		body, err := d.desugarExpr(e.Body)
		if err != nil {
			return nil, err
		}
		return &core.Unsafe{ExprBase: core.ExprBase{Base: base(loc)}, Body: body}, nil

	case *ast.While:
		cond, err := d.desugarExpr(e.Cond)
		if err != nil {
			return nil, err
		}
		body, err := d.desugarExpr(e.Body)
		if err != nil {
			return nil, err
		}
		return &core.While{ExprBase: core.ExprBase{Base: base(loc)}, Cond: cond, Body: body}, nil

	default:
		return nil, DesugarError{Message: "unknown expression node", Location: loc}
	}
}

// desugarLambda curries a multi-parameter Surface lambda into nested
// single-parameter Core lambdas: `(x, y) => e` -> `(x) => (y) => e`
// (spec.md §4.3). A parameter that is itself a pattern (not a bare
// variable) is lowered through bindParam into a fresh parameter plus a
// destructuring match around the body.
func (d *desugarer) desugarLambda(l *ast.Lambda) (core.Expr, error) {
	body, err := d.desugarExpr(l.Body)
	if err != nil {
		return nil, err
	}
	if len(l.Params) == 0 {
		// `() => e` takes a single Unit parameter.
		return &core.Lambda{
			ExprBase: core.ExprBase{Base: base(l.Location())},
			Param:    d.ng.fresh("unit"),
			Body:     body,
		}, nil
	}
	for i := len(l.Params) - 1; i >= 0; i-- {
		p := l.Params[i]
		param, wrap, err := d.bindParam(p.Pattern)
		if err != nil {
			return nil, err
		}
		body = wrap(body)
		body = &core.Lambda{ExprBase: core.ExprBase{Base: base(p.Location())}, Param: param, Body: body}
	}
	return body, nil
}

// bindParam returns the Core parameter name to bind directly, plus a
// wrapper that (for a non-variable pattern) injects the destructuring
// match around the lambda body before it is itself wrapped in the
// Lambda node.
func (d *desugarer) bindParam(p ast.Pattern) (string, func(core.Expr) core.Expr, error) {
	if v, ok := p.(*ast.VarPattern); ok {
		return v.Name, func(e core.Expr) core.Expr { return e }, nil
	}
	if _, ok := p.(*ast.WildcardPattern); ok {
		return d.ng.fresh("_"), func(e core.Expr) core.Expr { return e }, nil
	}
	tmp := d.ng.fresh("p")
	corePat, err := d.desugarPattern(p)
	if err != nil {
		return "", nil, err
	}
	loc := p.Location()
	return tmp, func(body core.Expr) core.Expr {
		scrutVar := &core.Var{ExprBase: core.ExprBase{Base: base(loc)}, Name: tmp}
		return &core.Match{
			ExprBase:  core.ExprBase{Base: base(loc)},
			Scrutinee: scrutVar,
			Arms:      []core.MatchArm{{Base: base(loc), Pattern: corePat, Body: body}},
		}
	}, nil
}

// desugarApply curries a multi-argument Surface call into nested
// single-argument Core applications: `f(a, b)` -> `(f a) b` (spec.md §4.3).
func (d *desugarer) desugarApply(a *ast.Apply) (core.Expr, error) {
	fn, err := d.desugarExpr(a.Func)
	if err != nil {
		return nil, err
	}
	result := fn
	for _, arg := range a.Args {
		carg, err := d.desugarExpr(arg)
		if err != nil {
			return nil, err
		}
		result = &core.Apply{ExprBase: core.ExprBase{Base: base(a.Location())}, Func: result, Arg: carg}
	}
	if len(a.Args) == 0 {
		// `f()` applies to a synthesized unit argument, since Core Apply
		// is always single-argument; Nullary records that this wasn't a
		// real surface argument so overload-arity resolution still sees
		// a zero-argument call (spec.md §4.4.5 / scenario: `fetch()`
		// against overloads of arity 1 and 2 must fail listing those
		// arities, not unify against a one-argument Unit overload).
		unit := &core.Literal{ExprBase: core.ExprBase{Base: base(a.Location())}, Kind: core.LitUnit}
		result = &core.Apply{ExprBase: core.ExprBase{Base: base(a.Location())}, Func: fn, Arg: unit, Nullary: true}
	}
	return result, nil
}

var binOpMap = map[ast.BinOp]core.BinOp{
	ast.OpAdd: core.OpAdd, ast.OpSub: core.OpSub, ast.OpMul: core.OpMul,
	ast.OpDiv: core.OpDiv, ast.OpMod: core.OpMod, ast.OpConcatString: core.OpConcatString,
	ast.OpEq: core.OpEq, ast.OpNeq: core.OpNeq, ast.OpLt: core.OpLt, ast.OpLe: core.OpLe,
	ast.OpGt: core.OpGt, ast.OpGe: core.OpGe, ast.OpAnd: core.OpAnd, ast.OpOr: core.OpOr,
	ast.OpBitAnd: core.OpBitAnd, ast.OpBitOr: core.OpBitOr, ast.OpBitXor: core.OpBitXor,
	ast.OpShl: core.OpShl, ast.OpShr: core.OpShr,
}

// desugarBinary passes ordinary operators through structurally; `::`
// lowers to a Cons variant construction (spec.md §4.3: "x :: xs -> Cons(x, xs)").
func (d *desugarer) desugarBinary(b *ast.Binary) (core.Expr, error) {
	left, err := d.desugarExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := d.desugarExpr(b.Right)
	if err != nil {
		return nil, err
	}
	loc := base(b.Location())
	if b.Op == ast.OpCons {
		return &core.VariantConstruct{ExprBase: core.ExprBase{Base: loc}, Name: core.ConsName, Args: []core.Expr{left, right}}, nil
	}
	op, ok := binOpMap[b.Op]
	if !ok {
		return nil, DesugarError{Message: "unknown binary operator", Location: b.Location()}
	}
	return &core.Binary{ExprBase: core.ExprBase{Base: loc}, Op: op, Left: left, Right: right}, nil
}

// desugarIf lowers `if c then a else b` to `match c { true => a, false => b }`
// per spec.md §4.3.
func (d *desugarer) desugarIf(i *ast.If) (core.Expr, error) {
	cond, err := d.desugarExpr(i.Cond)
	if err != nil {
		return nil, err
	}
	then, err := d.desugarExpr(i.Then)
	if err != nil {
		return nil, err
	}
	var els core.Expr
	if i.Else != nil {
		els, err = d.desugarExpr(i.Else)
		if err != nil {
			return nil, err
		}
	} else {
		els = &core.Literal{ExprBase: core.ExprBase{Base: base(i.Location())}, Kind: core.LitUnit}
	}
	loc := base(i.Location())
	trueLit := &core.LiteralPattern{PatternBase: core.PatternBase{Base: loc}, Kind: core.LitBool, Raw: "true"}
	falseLit := &core.LiteralPattern{PatternBase: core.PatternBase{Base: loc}, Kind: core.LitBool, Raw: "false"}
	return &core.Match{
		ExprBase:  core.ExprBase{Base: loc},
		Scrutinee: cond,
		Arms: []core.MatchArm{
			{Base: loc, Pattern: trueLit, Body: then},
			{Base: loc, Pattern: falseLit, Body: els},
		},
	}, nil
}

// desugarPipe lowers a left-associative `|>` chain: `a |> f` -> `f(a)`
// (spec.md §4.3).
func (d *desugarer) desugarPipe(p *ast.Pipe) (core.Expr, error) {
	left, err := d.desugarExpr(p.Left)
	if err != nil {
		return nil, err
	}
	fn, err := d.desugarExpr(p.Right)
	if err != nil {
		return nil, err
	}
	return &core.Apply{ExprBase: core.ExprBase{Base: base(p.Location())}, Func: fn, Arg: left}, nil
}

// desugarCompose lowers `f >> g` to `(x) => g(f(x))` and `f << g` to
// `(x) => f(g(x))`, each introducing one fresh variable (spec.md §4.3).
func (d *desugarer) desugarCompose(c *ast.Compose) (core.Expr, error) {
	left, err := d.desugarExpr(c.Left)
	if err != nil {
		return nil, err
	}
	right, err := d.desugarExpr(c.Right)
	if err != nil {
		return nil, err
	}
	loc := base(c.Location())
	x := d.ng.fresh("x")
	xVar := &core.Var{ExprBase: core.ExprBase{Base: loc}, Name: x}

	var inner, outer core.Expr
	if c.Dir == ast.ComposeForward {
		inner, outer = left, right // g(f(x))
	} else {
		inner, outer = right, left // f(g(x))
	}
	applyInner := &core.Apply{ExprBase: core.ExprBase{Base: loc}, Func: inner, Arg: xVar}
	applyOuter := &core.Apply{ExprBase: core.ExprBase{Base: loc}, Func: outer, Arg: applyInner}
	return &core.Lambda{ExprBase: core.ExprBase{Base: loc}, Param: x, Body: applyOuter}, nil
}

func (d *desugarer) desugarListLiteral(l *ast.ListLiteral) (core.Expr, error) {
	loc := base(l.Location())
	var tail core.Expr = &core.VariantConstruct{ExprBase: core.ExprBase{Base: loc}, Name: core.NilName}
	for i := len(l.Items) - 1; i >= 0; i-- {
		item := l.Items[i]
		val, err := d.desugarExpr(item.Value)
		if err != nil {
			return nil, err
		}
		itemLoc := base(item.Location())
		if item.Spread {
			// `[..., ...xs, ...]` concatenates via the runtime-provided
			// `concat` builtin (spec.md §4.3 table).
			concatFn := &core.Var{ExprBase: core.ExprBase{Base: itemLoc}, Name: "concat"}
			applyXs := &core.Apply{ExprBase: core.ExprBase{Base: itemLoc}, Func: concatFn, Arg: val}
			tail = &core.Apply{ExprBase: core.ExprBase{Base: itemLoc}, Func: applyXs, Arg: tail}
			continue
		}
		tail = &core.VariantConstruct{ExprBase: core.ExprBase{Base: itemLoc}, Name: core.ConsName, Args: []core.Expr{val, tail}}
	}
	return tail, nil
}

func (d *desugarer) desugarRecordLiteral(r *ast.RecordLiteral) (core.Expr, error) {
	loc := base(r.Location())
	var fields []core.RecordFieldExpr
	for _, item := range r.Items {
		switch it := item.(type) {
		case ast.RecordField:
			val := it.Value
			if val == nil {
				val = &ast.Var{ExprBase: ast.ExprBase{Base: ast.Base{Loc: it.Base.Loc}}, Name: it.Name}
			}
			cv, err := d.desugarExpr(val)
			if err != nil {
				return nil, err
			}
			fields = append(fields, core.RecordFieldExpr{Base: base(it.Base.Loc), Name: it.Name, Value: cv})
		case ast.RecordSpread:
			// A record literal containing any spread is rewritten as a
			// RecordUpdate by desugarRecordLiteralWithSpread, so the
			// checker's record-update rule handles it.
			return d.desugarRecordLiteralWithSpread(r)
		default:
			return nil, DesugarError{Message: "unknown record item", Location: loc}
		}
	}
	return &core.RecordLiteral{ExprBase: core.ExprBase{Base: loc}, Fields: fields}, nil
}

// desugarRecordLiteralWithSpread handles a record literal containing at
// least one `...e` spread by rewriting the whole literal as an update
// chain seeded from the first spread's source, preserving the ordered
// Field/Spread list so "rightmost wins" matches source order (spec.md
// §4.3: "the desugarer must preserve the ordered Field/Spread list").
func (d *desugarer) desugarRecordLiteralWithSpread(r *ast.RecordLiteral) (core.Expr, error) {
	loc := base(r.Location())
	firstSpread, rest := r.Items[0], r.Items[1:]
	spread, ok := firstSpread.(ast.RecordSpread)
	if !ok {
		// Fields appear before the first spread: build the literal part
		// first, then apply the remaining spreads/fields as an update.
		var head []ast.RecordItem
		var i int
		for i = 0; i < len(r.Items); i++ {
			if _, isSpread := r.Items[i].(ast.RecordSpread); isSpread {
				break
			}
			head = append(head, r.Items[i])
		}
		baseLit := &ast.RecordLiteral{ExprBase: ast.ExprBase{Base: ast.Base{Loc: r.Location()}}, Items: head}
		update := &ast.RecordUpdate{ExprBase: ast.ExprBase{Base: ast.Base{Loc: r.Location()}}, Base_: baseLit, Items: r.Items[i:]}
		return d.desugarRecordUpdate(update)
	}
	baseExpr, err := d.desugarExpr(spread.Value)
	if err != nil {
		return nil, err
	}
	items, err := d.desugarUpdateItems(rest)
	if err != nil {
		return nil, err
	}
	return &core.RecordUpdate{ExprBase: core.ExprBase{Base: loc}, Base_: baseExpr, Items: items}, nil
}

func (d *desugarer) desugarRecordUpdate(u *ast.RecordUpdate) (core.Expr, error) {
	base_, err := d.desugarExpr(u.Base_)
	if err != nil {
		return nil, err
	}
	items, err := d.desugarUpdateItems(u.Items)
	if err != nil {
		return nil, err
	}
	return &core.RecordUpdate{ExprBase: core.ExprBase{Base: base(u.Location())}, Base_: base_, Items: items}, nil
}

func (d *desugarer) desugarUpdateItems(items []ast.RecordItem) ([]core.UpdateItem, error) {
	var out []core.UpdateItem
	for _, item := range items {
		switch it := item.(type) {
		case ast.RecordField:
			val := it.Value
			if val == nil {
				val = &ast.Var{ExprBase: ast.ExprBase{Base: ast.Base{Loc: it.Base.Loc}}, Name: it.Name}
			}
			cv, err := d.desugarExpr(val)
			if err != nil {
				return nil, err
			}
			out = append(out, core.UpdateItem{Base: base(it.Base.Loc), Field: it.Name, Value: cv})
		case ast.RecordSpread:
			sv, err := d.desugarExpr(it.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, core.UpdateItem{Base: base(it.Base.Loc), Spread: sv})
		default:
			return nil, DesugarError{Message: "unknown record item"}
		}
	}
	return out, nil
}

// desugarBlock lowers `{ s1; s2; e }` to nested lets per spec.md §4.3;
// the empty block lowers to unit.
func (d *desugarer) desugarBlock(b *ast.Block) (core.Expr, error) {
	loc := base(b.Location())
	var result core.Expr
	if b.Result != nil {
		r, err := d.desugarExpr(b.Result)
		if err != nil {
			return nil, err
		}
		result = r
	} else {
		result = &core.Literal{ExprBase: core.ExprBase{Base: loc}, Kind: core.LitUnit}
	}

	for i := len(b.Stmts) - 1; i >= 0; i-- {
		stmt := b.Stmts[i]
		if stmt.Let != nil {
			wrapped, err := d.wrapLetBinding(stmt.Let.Mut, stmt.Let.Pattern, stmt.Let.Value, result)
			if err != nil {
				return nil, err
			}
			result = wrapped
			continue
		}
		value, err := d.desugarExpr(stmt.Expr)
		if err != nil {
			return nil, err
		}
		result = &core.Let{
			ExprBase: core.ExprBase{Base: base(stmt.Location())},
			Name:     d.ng.fresh("_"),
			Value:    value,
			Body:     result,
		}
	}
	return result, nil
}

// wrapLetBinding builds `let <destructured pattern> = value in body`,
// handling the Mut ref-cell wrap and non-variable patterns the same
// way desugarLetIn does.
func (d *desugarer) wrapLetBinding(mut bool, pat ast.Pattern, value ast.Expr, body core.Expr) (core.Expr, error) {
	cval, err := d.desugarExpr(value)
	if err != nil {
		return nil, err
	}
	if mut {
		cval = &core.Apply{
			ExprBase: core.ExprBase{Base: cval.Location()},
			Func:     &core.Var{ExprBase: core.ExprBase{Base: cval.Location()}, Name: "ref"},
			Arg:      cval,
		}
	}
	return d.bindPatternLet(pat, cval, body)
}

func (d *desugarer) desugarLetIn(l *ast.LetIn) (core.Expr, error) {
	body, err := d.desugarExpr(l.Body)
	if err != nil {
		return nil, err
	}
	return d.wrapLetBinding(l.Mut, l.Pattern, l.Value, body)
}

// bindPatternLet binds an (assumed irrefutable) pattern to a Core
// value, producing a single Let when the pattern is a bare variable or
// wildcard, or a temp-binding plus a destructuring match otherwise.
func (d *desugarer) bindPatternLet(pat ast.Pattern, value core.Expr, body core.Expr) (core.Expr, error) {
	loc := base(pat.Location())
	switch p := pat.(type) {
	case *ast.VarPattern:
		return &core.Let{ExprBase: core.ExprBase{Base: loc}, Name: p.Name, Value: value, Body: body}, nil
	case *ast.WildcardPattern:
		return &core.Let{ExprBase: core.ExprBase{Base: loc}, Name: d.ng.fresh("_"), Value: value, Body: body}, nil
	default:
		corePat, err := d.desugarPattern(pat)
		if err != nil {
			return nil, err
		}
		tmp := d.ng.fresh("t")
		scrutVar := &core.Var{ExprBase: core.ExprBase{Base: loc}, Name: tmp}
		match := &core.Match{
			ExprBase:  core.ExprBase{Base: loc},
			Scrutinee: scrutVar,
			Arms:      []core.MatchArm{{Base: loc, Pattern: corePat, Body: body}},
		}
		return &core.Let{ExprBase: core.ExprBase{Base: loc}, Name: tmp, Value: value, Body: match}, nil
	}
}

func (d *desugarer) desugarLetRecIn(l *ast.LetRecIn) (core.Expr, error) {
	body, err := d.desugarExpr(l.Body)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(l.Bindings))
	for i, b := range l.Bindings {
		names[i] = b.Name
	}
	for i := len(l.Bindings) - 1; i >= 0; i-- {
		b := l.Bindings[i]
		value, err := d.desugarExpr(b.Value)
		if err != nil {
			return nil, err
		}
		group := otherNames(names, b.Name)
		body = &core.Let{
			ExprBase:  core.ExprBase{Base: base(b.Location())},
			Name:      b.Name,
			Recursive: true,
			Group:     group,
			Value:     value,
			Body:      body,
		}
	}
	return body, nil
}

func otherNames(all []string, exclude string) []string {
	var out []string
	for _, n := range all {
		if n != exclude {
			out = append(out, n)
		}
	}
	return out
}
