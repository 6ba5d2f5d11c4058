package checker

import (
	"github.com/mbcrawfo/vibefun/internal/core"
	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/token"
	"github.com/mbcrawfo/vibefun/internal/types"
)

// instantiateConstructor returns a fresh-instantiated argument-type
// list and result type for the named variant constructor (spec.md
// §4.4.4). Nil/Cons are the two builtins (spec.md §3) and are handled
// directly since they have no TypeDecl of their own to consult.
func (c *checker) instantiateConstructor(name string, loc token.Location) ([]*types.Monotype, *types.Monotype, error) {
	switch name {
	case core.NilName:
		a := c.subst.Fresh()
		return nil, types.TList(types.TVar(a)), nil
	case core.ConsName:
		b := c.subst.Fresh()
		elem := types.TVar(b)
		return []*types.Monotype{elem, types.TList(elem)}, types.TList(elem), nil
	}

	info, ok := c.variants[name]
	if !ok {
		return nil, nil, c.errorf(loc, diagnostic.CodeUnknownConstructor, "", "unknown constructor `%s`", name)
	}

	scope := make(map[string]*types.Var, len(info.Params))
	typeArgs := make([]*types.Monotype, len(info.Params))
	for i, p := range info.Params {
		v := c.subst.Fresh()
		scope[p] = v
		typeArgs[i] = types.TVar(v)
	}
	argTypes := make([]*types.Monotype, len(info.ArgTypes))
	for i, at := range info.ArgTypes {
		rt, err := c.resolveTypeExpr(at, scope)
		if err != nil {
			return nil, nil, err
		}
		argTypes[i] = rt
	}
	return argTypes, types.TCon(info.TypeName, typeArgs...), nil
}

// bindPattern checks p against ty, extending c.env with every bound
// variable. Callers that need to roll back a failed or finished arm's
// bindings save c.env beforehand and restore it afterward — Env is a
// persistent structure, so the save is a cheap pointer copy (spec.md
// §4.4.4).
func (c *checker) bindPattern(p core.Pattern, ty *types.Monotype) error {
	switch p := p.(type) {
	case *core.WildcardPattern:
		return nil

	case *core.VarPattern:
		c.env = c.env.Extend(p.Name, types.Mono(ty))
		return nil

	case *core.LiteralPattern:
		return c.subst.Unify(ty, literalType(p.Kind))

	case *core.VariantPattern:
		argTypes, result, err := c.instantiateConstructor(p.Name, p.Location())
		if err != nil {
			return err
		}
		if err := c.subst.Unify(ty, result); err != nil {
			return err
		}
		if len(p.Args) != len(argTypes) {
			return c.errorf(p.Location(), diagnostic.CodeArityMismatch, "",
				"constructor `%s` expects %d argument(s), found %d", p.Name, len(argTypes), len(p.Args))
		}
		for i, sub := range p.Args {
			if err := c.bindPattern(sub, argTypes[i]); err != nil {
				return err
			}
		}
		return nil

	case *core.TuplePattern:
		items := make([]*types.Monotype, len(p.Items))
		for i := range p.Items {
			items[i] = c.subst.FreshType()
		}
		if err := c.subst.Unify(ty, types.TTuple(items...)); err != nil {
			return err
		}
		for i, sub := range p.Items {
			if err := c.bindPattern(sub, items[i]); err != nil {
				return err
			}
		}
		return nil

	case *core.RecordPattern:
		fields := make([]types.RecordField, len(p.Fields))
		fieldTypes := make([]*types.Monotype, len(p.Fields))
		for i, f := range p.Fields {
			ft := c.subst.FreshType()
			fieldTypes[i] = ft
			fields[i] = types.RecordField{Name: f.Name, Type: ft}
		}
		row := c.subst.Fresh()
		if err := c.subst.Unify(ty, types.TRecord(fields, row)); err != nil {
			return err
		}
		for i, f := range p.Fields {
			if err := c.bindPattern(f.Pattern, fieldTypes[i]); err != nil {
				return err
			}
		}
		return nil

	default:
		return c.errorf(p.Location(), diagnostic.CodeUndefinedName, "", "unknown pattern form")
	}
}

func literalType(k core.LiteralKind) *types.Monotype {
	switch k {
	case core.LitInt:
		return types.TPrim(types.Int)
	case core.LitFloat:
		return types.TPrim(types.Float)
	case core.LitString:
		return types.TPrim(types.String)
	case core.LitBool:
		return types.TPrim(types.Bool)
	default:
		return types.TPrim(types.Unit)
	}
}
