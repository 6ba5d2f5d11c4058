package checker

import (
	"github.com/mbcrawfo/vibefun/internal/core"
	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/types"
)

// resolveTypeExpr turns a Core type expression (surface-level type
// syntax) into a checker Monotype. scope maps a lowercase type-variable
// name to the Var it was already assigned within this one annotation,
// so `(a) -> a` shares one variable rather than allocating two unrelated
// ones.
func (c *checker) resolveTypeExpr(t core.TypeExpr, scope map[string]*types.Var) (*types.Monotype, error) {
	switch t := t.(type) {
	case *core.PrimitiveType:
		return types.TPrim(t.Name), nil

	case *core.TypeVarExpr:
		v, ok := scope[t.Name]
		if !ok {
			v = c.subst.Fresh()
			scope[t.Name] = v
		}
		return types.TVar(v), nil

	case *core.ConstructorType:
		if info, ok := c.typeDecls[t.Name]; ok {
			return c.expandAlias(t, info, scope)
		}
		args := make([]*types.Monotype, len(t.Args))
		for i, a := range t.Args {
			at, err := c.resolveTypeExpr(a, scope)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		return types.TCon(t.Name, args...), nil

	case *core.FuncType:
		param, err := c.resolveTypeExpr(t.Param, scope)
		if err != nil {
			return nil, err
		}
		result, err := c.resolveTypeExpr(t.Result, scope)
		if err != nil {
			return nil, err
		}
		return types.TFunc(param, result), nil

	case *core.RecordTypeExpr:
		fields := make([]types.RecordField, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := c.resolveTypeExpr(f.Type, scope)
			if err != nil {
				return nil, err
			}
			fields[i] = types.RecordField{Name: f.Name, Type: ft}
		}
		var row *types.Var
		if t.Open {
			row = c.subst.Fresh()
		}
		return types.TRecord(fields, row), nil

	case *core.TupleTypeExpr:
		items := make([]*types.Monotype, len(t.Items))
		for i, it := range t.Items {
			it2, err := c.resolveTypeExpr(it, scope)
			if err != nil {
				return nil, err
			}
			items[i] = it2
		}
		return types.TTuple(items...), nil

	case *core.RefTypeExpr:
		elem, err := c.resolveTypeExpr(t.Elem, scope)
		if err != nil {
			return nil, err
		}
		return types.TRef(elem), nil

	default:
		return nil, c.errorf(t.Location(), diagnostic.CodeUndefinedName, "", "unknown type expression")
	}
}

// expandAlias resolves a ConstructorType that names a user type
// declaration, substituting its declared parameters. Variant and
// record bodies become opaque nominal constructor types (their
// constructors/fields are registered separately); only alias bodies
// expand transparently.
func (c *checker) expandAlias(t *core.ConstructorType, info *typeDeclInfo, scope map[string]*types.Var) (*types.Monotype, error) {
	args := make([]*types.Monotype, len(t.Args))
	for i, a := range t.Args {
		at, err := c.resolveTypeExpr(a, scope)
		if err != nil {
			return nil, err
		}
		args[i] = at
	}

	alias, ok := info.Body.(core.AliasBody)
	if !ok {
		return types.TCon(t.Name, args...), nil
	}

	paramScope := make(map[string]*types.Var, len(info.Params))
	for i, p := range info.Params {
		if i < len(args) {
			paramScope[p] = nil // placeholder, replaced below via direct substitution
		}
		_ = p
	}
	return c.substituteAliasBody(alias.Type, info.Params, args, scope)
}

// substituteAliasBody resolves an alias body's type expression,
// binding each of its declared parameters directly to the caller's
// argument monotypes rather than to fresh variables.
func (c *checker) substituteAliasBody(body core.TypeExpr, params []string, args []*types.Monotype, outerScope map[string]*types.Var) (*types.Monotype, error) {
	bound := make(map[string]*types.Monotype, len(params))
	for i, p := range params {
		if i < len(args) {
			bound[p] = args[i]
		}
	}
	return c.resolveWithBindings(body, bound, outerScope)
}

func (c *checker) resolveWithBindings(t core.TypeExpr, bound map[string]*types.Monotype, scope map[string]*types.Var) (*types.Monotype, error) {
	if tv, ok := t.(*core.TypeVarExpr); ok {
		if m, ok := bound[tv.Name]; ok {
			return m, nil
		}
	}
	switch t := t.(type) {
	case *core.FuncType:
		p, err := c.resolveWithBindings(t.Param, bound, scope)
		if err != nil {
			return nil, err
		}
		r, err := c.resolveWithBindings(t.Result, bound, scope)
		if err != nil {
			return nil, err
		}
		return types.TFunc(p, r), nil
	case *core.ConstructorType:
		args := make([]*types.Monotype, len(t.Args))
		for i, a := range t.Args {
			at, err := c.resolveWithBindings(a, bound, scope)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		if info, ok := c.typeDecls[t.Name]; ok {
			if alias, ok := info.Body.(core.AliasBody); ok {
				return c.substituteAliasBody(alias.Type, info.Params, args, scope)
			}
		}
		return types.TCon(t.Name, args...), nil
	case *core.RecordTypeExpr:
		fields := make([]types.RecordField, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := c.resolveWithBindings(f.Type, bound, scope)
			if err != nil {
				return nil, err
			}
			fields[i] = types.RecordField{Name: f.Name, Type: ft}
		}
		var row *types.Var
		if t.Open {
			row = c.subst.Fresh()
		}
		return types.TRecord(fields, row), nil
	case *core.TupleTypeExpr:
		items := make([]*types.Monotype, len(t.Items))
		for i, it := range t.Items {
			it2, err := c.resolveWithBindings(it, bound, scope)
			if err != nil {
				return nil, err
			}
			items[i] = it2
		}
		return types.TTuple(items...), nil
	case *core.RefTypeExpr:
		e, err := c.resolveWithBindings(t.Elem, bound, scope)
		if err != nil {
			return nil, err
		}
		return types.TRef(e), nil
	default:
		return c.resolveTypeExpr(t, scope)
	}
}
