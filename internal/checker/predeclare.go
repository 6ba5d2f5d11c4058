package checker

import (
	"github.com/mbcrawfo/vibefun/internal/core"
	"github.com/mbcrawfo/vibefun/internal/types"
)

// preDeclare registers the shape of a type or external declaration
// before any expression is inferred, so later declarations (and
// earlier ones, within the same mutually recursive group) can refer to
// it. Value declarations (LetDecl/LetRecGroup) contribute nothing here
// — they are only visible once checkDecl has processed them, per
// spec.md §4.4.3's ordinary (non-recursive) let scoping.
func (c *checker) preDeclare(decl core.Decl) error {
	switch d := decl.(type) {
	case *core.TypeDecl:
		return c.preDeclareType(d)
	case *core.ExternalDecl:
		return c.preDeclareExternal(d)
	}
	return nil
}

func (c *checker) preDeclareType(d *core.TypeDecl) error {
	c.typeDecls[d.Name] = &typeDeclInfo{Params: d.Params, Body: d.Body, Group: d.Group}

	variant, ok := d.Body.(core.VariantBody)
	if !ok {
		return nil
	}
	siblings := make([]string, len(variant.Constructors))
	for i, ctor := range variant.Constructors {
		siblings[i] = ctor.Name
	}
	c.typeConstructors[d.Name] = siblings
	for _, ctor := range variant.Constructors {
		c.variants[ctor.Name] = &variantInfo{
			TypeName: d.Name,
			Params:   d.Params,
			ArgTypes: ctor.Args,
			Siblings: siblings,
		}
	}
	return nil
}

// preDeclareExternal resolves the external's declared JS-facing type
// and files it under its source name as one overload candidate; a
// later call site picks among same-named overloads by argument count
// (spec.md §4.4.5).
func (c *checker) preDeclareExternal(d *core.ExternalDecl) error {
	t, err := c.resolveTypeExpr(d.Type, map[string]*types.Var{})
	if err != nil {
		return err
	}
	c.externals[d.Name] = append(c.externals[d.Name], overload{Type: t, Arity: funcArity(t)})
	// An external's declared type is always closed — it came from a
	// standalone annotation, not from inference — so it generalizes at
	// level 0 regardless of the subst's current level.
	c.env = c.env.Extend(d.Name, types.Generalize(t, 0))
	return nil
}
