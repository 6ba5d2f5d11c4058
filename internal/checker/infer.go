package checker

import (
	"github.com/mbcrawfo/vibefun/internal/core"
	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/types"
)

// inferExpr runs Algorithm W over one Core expression, returning its
// principal (possibly still-unresolved) monotype (spec.md §4.4.4). It
// mutates c.env only within the lexical extent of the sub-expression
// that introduces a binding (Lambda body, Let body, Match arm body),
// always restoring the saved environment before returning to its
// caller — Env.Extend never mutates in place, so saving is a pointer
// copy.
func (c *checker) inferExpr(e core.Expr) (*types.Monotype, error) {
	switch e := e.(type) {
	case *core.Literal:
		return literalType(e.Kind), nil

	case *core.Var:
		return c.inferVar(e)

	case *core.Lambda:
		return c.inferLambda(e)

	case *core.Apply:
		return c.inferApply(e)

	case *core.Let:
		return c.inferLet(e)

	case *core.Match:
		return c.inferMatch(e)

	case *core.RecordLiteral:
		return c.inferRecordLiteral(e)

	case *core.Project:
		return c.inferProject(e)

	case *core.RecordUpdate:
		return c.inferRecordUpdate(e)

	case *core.VariantConstruct:
		return c.inferVariantConstruct(e)

	case *core.Binary:
		return c.inferBinary(e)

	case *core.Unary:
		return c.inferUnary(e)

	case *core.RefAssign:
		return c.inferRefAssign(e)

	case *core.TypeAnnotation:
		return c.inferTypeAnnotation(e)

	case *core.Unsafe:
		c.unsafeDepth++
		t, err := c.inferExpr(e.Body)
		c.unsafeDepth--
		return t, err

	case *core.While:
		return c.inferWhile(e)

	case *core.Tuple:
		return c.inferTuple(e)

	default:
		return nil, c.errorf(e.Location(), diagnostic.CodeUndefinedName, "", "unknown expression form")
	}
}

func (c *checker) inferVar(e *core.Var) (*types.Monotype, error) {
	sch, ok := c.env.Lookup(e.Name)
	if !ok {
		return nil, c.errorf(e.Location(), diagnostic.CodeUndefinedName, "", "undefined name `%s`", e.Name)
	}
	return c.subst.Instantiate(sch), nil
}

func (c *checker) inferLambda(e *core.Lambda) (*types.Monotype, error) {
	paramTy := c.subst.FreshType()
	saved := c.env
	c.env = c.env.Extend(e.Param, types.Mono(paramTy))
	bodyTy, err := c.inferExpr(e.Body)
	c.env = saved
	if err != nil {
		return nil, err
	}
	return types.TFunc(paramTy, bodyTy), nil
}

// inferApply infers single-argument application. An application whose
// callee resolves (after unwrapping any curried spine) to an
// overloaded external is routed through resolveOverload instead of
// ordinary instantiation, since env.Lookup only ever returns the most
// recently declared external's scheme (spec.md §4.4.5).
func (c *checker) inferApply(e *core.Apply) (*types.Monotype, error) {
	if name, spine, ok := overloadSpine(e); ok && c.isOverloaded(name) {
		return c.inferOverloadedApply(e, name, spine)
	}

	funcTy, err := c.inferExpr(e.Func)
	if err != nil {
		return nil, err
	}
	argTy, err := c.inferExpr(e.Arg)
	if err != nil {
		return nil, err
	}
	resultTy := c.subst.FreshType()
	if err := c.subst.Unify(funcTy, types.TFunc(argTy, resultTy)); err != nil {
		return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "",
			"cannot apply value of type %s to argument of type %s", funcTy, argTy)
	}
	return resultTy, nil
}

// overloadSpine walks a curried Apply chain back to its head Var and
// the ordered list of argument expressions, e.g. `f(a)(b)` -> ("f",
// [a, b]). A Nullary node (desugar/expr.go's sugar for a zero-argument
// surface call `f()`) contributes nothing to the list, so a true
// zero-argument call reports argc 0 rather than argc 1 for the
// synthesized Unit.
func overloadSpine(e *core.Apply) (string, []core.Expr, bool) {
	var args []core.Expr
	var cur core.Expr = e
	for {
		app, ok := cur.(*core.Apply)
		if !ok {
			break
		}
		if !app.Nullary {
			args = append([]core.Expr{app.Arg}, args...)
		}
		cur = app.Func
	}
	v, ok := cur.(*core.Var)
	if !ok {
		return "", nil, false
	}
	return v.Name, args, true
}

func (c *checker) inferOverloadedApply(e *core.Apply, name string, args []core.Expr) (*types.Monotype, error) {
	fnTy, err := c.resolveOverload(name, len(args), e.Location())
	if err != nil {
		return nil, err
	}
	if c.unsafeDepth == 0 {
		return nil, c.errorf(e.Location(), diagnostic.CodeExternalOutsideUnsafe, "wrap the call in `unsafe { ... }`",
			"external `%s` may only be called inside an unsafe block", name)
	}
	for _, arg := range args {
		argTy, err := c.inferExpr(arg)
		if err != nil {
			return nil, err
		}
		fn := types.Prune(fnTy)
		if fn.Kind != types.KFunc {
			return nil, c.errorf(e.Location(), diagnostic.CodeArityMismatch, "", "too many arguments to `%s`", name)
		}
		if err := c.subst.Unify(fn.Param, argTy); err != nil {
			return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "",
				"argument to `%s` has type %s, expected %s", name, argTy, fn.Param)
		}
		fnTy = fn.Result
	}
	return fnTy, nil
}

func (c *checker) inferLet(e *core.Let) (*types.Monotype, error) {
	saved := c.env
	if e.Recursive {
		c.subst.EnterLevel()
		placeholder := c.subst.FreshType()
		c.env = c.env.Extend(e.Name, types.Mono(placeholder))
		for _, g := range e.Group {
			c.env = c.env.Extend(g, types.Mono(c.subst.FreshType()))
		}
		valTy, err := c.inferExpr(e.Value)
		if err != nil {
			c.env = saved
			return nil, err
		}
		if err := c.subst.Unify(placeholder, valTy); err != nil {
			c.env = saved
			return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "",
				"recursive binding `%s` does not match its uses", e.Name)
		}
		c.subst.ExitLevel()
		scheme := schemeFor(e.Value, valTy, c.subst.Level())
		c.env = saved.Extend(e.Name, scheme)
		bodyTy, err := c.inferExpr(e.Body)
		c.env = saved
		return bodyTy, err
	}

	c.subst.EnterLevel()
	valTy, err := c.inferExpr(e.Value)
	c.subst.ExitLevel()
	if err != nil {
		return nil, err
	}
	scheme := schemeFor(e.Value, valTy, c.subst.Level())
	c.env = saved.Extend(e.Name, scheme)
	bodyTy, err := c.inferExpr(e.Body)
	c.env = saved
	return bodyTy, err
}

// schemeFor applies the value restriction (spec.md §4.4.3): a
// syntactic value generalizes over every variable born inside the
// just-exited level; anything else keeps its inferred monotype as is.
func schemeFor(value core.Expr, ty *types.Monotype, level int) *types.Scheme {
	if isValue(value) {
		return types.Generalize(ty, level)
	}
	return types.Mono(ty)
}

func (c *checker) inferMatch(e *core.Match) (*types.Monotype, error) {
	scrutTy, err := c.inferExpr(e.Scrutinee)
	if err != nil {
		return nil, err
	}

	resultTy := c.subst.FreshType()
	pats := make([]core.Pattern, len(e.Arms))
	saved := c.env
	for i, arm := range e.Arms {
		c.env = saved
		if err := c.bindPattern(arm.Pattern, scrutTy); err != nil {
			return nil, err
		}
		armTy, err := c.inferExpr(arm.Body)
		if err != nil {
			return nil, err
		}
		if err := c.subst.Unify(resultTy, armTy); err != nil {
			return nil, c.errorf(arm.Body.Location(), diagnostic.CodeUnificationFailure, "",
				"match arm has type %s, expected %s", armTy, resultTy)
		}
		pats[i] = arm.Pattern
	}
	c.env = saved

	c.checkMatchExhaustive(e.Location(), scrutTy, pats)
	return resultTy, nil
}

func (c *checker) inferRecordLiteral(e *core.RecordLiteral) (*types.Monotype, error) {
	fields := make([]types.RecordField, len(e.Fields))
	for i, f := range e.Fields {
		ft, err := c.inferExpr(f.Value)
		if err != nil {
			return nil, err
		}
		fields[i] = types.RecordField{Name: f.Name, Type: ft}
	}
	return types.TRecord(fields, nil), nil
}

func (c *checker) inferProject(e *core.Project) (*types.Monotype, error) {
	recTy, err := c.inferExpr(e.Record)
	if err != nil {
		return nil, err
	}
	fieldTy := c.subst.FreshType()
	row := c.subst.Fresh()
	expected := types.TRecord([]types.RecordField{{Name: e.Field, Type: fieldTy}}, row)
	if err := c.subst.Unify(recTy, expected); err != nil {
		return nil, c.errorf(e.Location(), diagnostic.CodeUnknownField, "", "value has no field `%s`", e.Field)
	}
	return fieldTy, nil
}

// inferRecordUpdate threads the ordered Field/Spread item list,
// rightmost wins: each subsequent item's field type simply overwrites
// the running field map, matching the desugarer's evaluation order
// (spec.md §4.3, §4.4.2).
func (c *checker) inferRecordUpdate(e *core.RecordUpdate) (*types.Monotype, error) {
	baseTy, err := c.inferExpr(e.Base_)
	if err != nil {
		return nil, err
	}
	fieldOrder := []string{}
	fields := map[string]*types.Monotype{}
	addField := func(name string, t *types.Monotype) {
		if _, seen := fields[name]; !seen {
			fieldOrder = append(fieldOrder, name)
		}
		fields[name] = t
	}

	baseFields, baseRow := flattenMonotypeRecord(types.Prune(baseTy))
	for _, f := range baseFields {
		addField(f.Name, f.Type)
	}

	for _, item := range e.Items {
		if item.Spread != nil {
			spreadTy, err := c.inferExpr(item.Spread)
			if err != nil {
				return nil, err
			}
			sFields, _ := flattenMonotypeRecord(types.Prune(spreadTy))
			for _, f := range sFields {
				addField(f.Name, f.Type)
			}
			continue
		}
		vt, err := c.inferExpr(item.Value)
		if err != nil {
			return nil, err
		}
		addField(item.Field, vt)
	}

	out := make([]types.RecordField, len(fieldOrder))
	for i, name := range fieldOrder {
		out[i] = types.RecordField{Name: name, Type: fields[name]}
	}
	_ = baseRow
	return types.TRecord(out, nil), nil
}

// flattenMonotypeRecord is a best-effort field listing for a record
// monotype that may still carry an unresolved open row; an open row
// contributes no known fields of its own.
func flattenMonotypeRecord(t *types.Monotype) ([]types.RecordField, bool) {
	if t.Kind != types.KRecord {
		return nil, false
	}
	return t.Fields, t.Row != nil
}

func (c *checker) inferVariantConstruct(e *core.VariantConstruct) (*types.Monotype, error) {
	argTypes, result, err := c.instantiateConstructor(e.Name, e.Location())
	if err != nil {
		return nil, err
	}
	if len(e.Args) != len(argTypes) {
		return nil, c.errorf(e.Location(), diagnostic.CodeArityMismatch, "",
			"constructor `%s` expects %d argument(s), found %d", e.Name, len(argTypes), len(e.Args))
	}
	for i, arg := range e.Args {
		argTy, err := c.inferExpr(arg)
		if err != nil {
			return nil, err
		}
		if err := c.subst.Unify(argTy, argTypes[i]); err != nil {
			return nil, c.errorf(arg.Location(), diagnostic.CodeUnificationFailure, "",
				"argument %d to `%s` has type %s, expected %s", i+1, e.Name, argTy, argTypes[i])
		}
	}
	return result, nil
}

func (c *checker) inferBinary(e *core.Binary) (*types.Monotype, error) {
	leftTy, err := c.inferExpr(e.Left)
	if err != nil {
		return nil, err
	}
	rightTy, err := c.inferExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case core.OpAdd, core.OpSub, core.OpMul, core.OpDiv, core.OpMod:
		return c.inferNumericBinary(e, leftTy, rightTy)

	case core.OpConcatString:
		if err := c.subst.Unify(leftTy, types.TPrim(types.String)); err != nil {
			return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "", "`&` expects String operands")
		}
		if err := c.subst.Unify(rightTy, types.TPrim(types.String)); err != nil {
			return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "", "`&` expects String operands")
		}
		return types.TPrim(types.String), nil

	case core.OpEq, core.OpNeq:
		if err := c.subst.Unify(leftTy, rightTy); err != nil {
			return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "",
				"cannot compare %s with %s", leftTy, rightTy)
		}
		return types.TPrim(types.Bool), nil

	case core.OpLt, core.OpLe, core.OpGt, core.OpGe:
		if err := c.subst.Unify(leftTy, rightTy); err != nil {
			return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "",
				"cannot order %s with %s", leftTy, rightTy)
		}
		return types.TPrim(types.Bool), nil

	case core.OpAnd, core.OpOr:
		if err := c.subst.Unify(leftTy, types.TPrim(types.Bool)); err != nil {
			return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "", "boolean operator expects Bool operands")
		}
		if err := c.subst.Unify(rightTy, types.TPrim(types.Bool)); err != nil {
			return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "", "boolean operator expects Bool operands")
		}
		return types.TPrim(types.Bool), nil

	case core.OpBitAnd, core.OpBitOr, core.OpBitXor, core.OpShl, core.OpShr:
		if err := c.subst.Unify(leftTy, types.TPrim(types.Int)); err != nil {
			return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "", "bitwise operator expects Int operands")
		}
		if err := c.subst.Unify(rightTy, types.TPrim(types.Int)); err != nil {
			return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "", "bitwise operator expects Int operands")
		}
		return types.TPrim(types.Int), nil

	default:
		return nil, c.errorf(e.Location(), diagnostic.CodeUndefinedName, "", "unknown operator")
	}
}

// inferNumericBinary requires Int or Float on both sides without
// coercion (SPEC_FULL.md §4.4's "numeric operator resolution per
// operand types"; mixed Int/Float is a VF4002, not a silent
// widening — this language has no implicit numeric conversions).
func (c *checker) inferNumericBinary(e *core.Binary, leftTy, rightTy *types.Monotype) (*types.Monotype, error) {
	l, r := types.Prune(leftTy), types.Prune(rightTy)
	if l.Kind == types.KPrim && r.Kind == types.KPrim && l.Prim != r.Prim &&
		(l.Prim == types.Int || l.Prim == types.Float) && (r.Prim == types.Int || r.Prim == types.Float) {
		return nil, c.errorf(e.Location(), diagnostic.CodeMixedNumericOperand, "",
			"mixed Int/Float operands are not allowed without an explicit conversion")
	}
	if err := c.subst.Unify(leftTy, rightTy); err != nil {
		return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "",
			"arithmetic operator expects matching numeric operands, found %s and %s", leftTy, rightTy)
	}
	pruned := types.Prune(leftTy)
	if pruned.Kind == types.KVar {
		// Neither operand resolved a concrete numeric type yet; default
		// to Int the way an untyped integer literal would.
		if err := c.subst.Unify(leftTy, types.TPrim(types.Int)); err != nil {
			return nil, err
		}
		return types.TPrim(types.Int), nil
	}
	if pruned.Kind != types.KPrim || (pruned.Prim != types.Int && pruned.Prim != types.Float) {
		return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "",
			"arithmetic operator expects Int or Float operands, found %s", leftTy)
	}
	return leftTy, nil
}

func (c *checker) inferUnary(e *core.Unary) (*types.Monotype, error) {
	operandTy, err := c.inferExpr(e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case core.OpNeg:
		return operandTy, nil
	case core.OpNot:
		if err := c.subst.Unify(operandTy, types.TPrim(types.Bool)); err != nil {
			return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "", "`!` expects a Bool operand")
		}
		return types.TPrim(types.Bool), nil
	case core.OpDeref:
		elem := c.subst.FreshType()
		if err := c.subst.Unify(operandTy, types.TRef(elem)); err != nil {
			return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "", "`!` expects a reference")
		}
		return elem, nil
	default:
		return nil, c.errorf(e.Location(), diagnostic.CodeUndefinedName, "", "unknown unary operator")
	}
}

func (c *checker) inferRefAssign(e *core.RefAssign) (*types.Monotype, error) {
	refTy, err := c.inferExpr(e.Ref)
	if err != nil {
		return nil, err
	}
	valTy, err := c.inferExpr(e.Value)
	if err != nil {
		return nil, err
	}
	if err := c.subst.Unify(refTy, types.TRef(valTy)); err != nil {
		return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "", "cannot assign %s into %s", valTy, refTy)
	}
	return types.TPrim(types.Unit), nil
}

func (c *checker) inferTypeAnnotation(e *core.TypeAnnotation) (*types.Monotype, error) {
	valTy, err := c.inferExpr(e.Value)
	if err != nil {
		return nil, err
	}
	annTy, err := c.resolveTypeExpr(e.Type, map[string]*types.Var{})
	if err != nil {
		return nil, err
	}
	if err := c.subst.Unify(valTy, annTy); err != nil {
		return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "",
			"expression has type %s, annotation requires %s", valTy, annTy)
	}
	return annTy, nil
}

func (c *checker) inferWhile(e *core.While) (*types.Monotype, error) {
	condTy, err := c.inferExpr(e.Cond)
	if err != nil {
		return nil, err
	}
	if err := c.subst.Unify(condTy, types.TPrim(types.Bool)); err != nil {
		return nil, c.errorf(e.Location(), diagnostic.CodeUnificationFailure, "", "while condition must be Bool")
	}
	if _, err := c.inferExpr(e.Body); err != nil {
		return nil, err
	}
	return types.TPrim(types.Unit), nil
}

func (c *checker) inferTuple(e *core.Tuple) (*types.Monotype, error) {
	items := make([]*types.Monotype, len(e.Items))
	for i, it := range e.Items {
		t, err := c.inferExpr(it)
		if err != nil {
			return nil, err
		}
		items[i] = t
	}
	return types.TTuple(items...), nil
}
