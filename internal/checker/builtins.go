package checker

import (
	"github.com/mbcrawfo/vibefun/internal/core"
	"github.com/mbcrawfo/vibefun/internal/types"
)

// installBuiltins seeds the environment with the primitives every
// module can use without an import: the list constructors (spec.md §3
// invariants: "Core Cons/Nil constructors are reserved built-ins") and
// the two runtime-provided helpers the desugarer emits calls to
// (`ref`, for `let mut` and the `ref(e)` expression form, and
// `concat`, for spread elements inside list literals — spec.md §4.3's
// desugaring table).
func (c *checker) installBuiltins() {
	a := c.subst.Fresh()
	listA := types.TList(types.TVar(a))

	nilScheme := &types.Scheme{Vars: []*types.Var{a}, Type: listA}
	c.env = c.env.Extend(core.NilName, nilScheme)

	b := c.subst.Fresh()
	listB := types.TList(types.TVar(b))
	consScheme := &types.Scheme{
		Vars: []*types.Var{b},
		Type: types.TFunc(types.TVar(b), types.TFunc(listB, listB)),
	}
	c.env = c.env.Extend(core.ConsName, consScheme)

	r := c.subst.Fresh()
	refScheme := &types.Scheme{Vars: []*types.Var{r}, Type: types.TFunc(types.TVar(r), types.TRef(types.TVar(r)))}
	c.env = c.env.Extend("ref", refScheme)

	e := c.subst.Fresh()
	listE := types.TList(types.TVar(e))
	concatScheme := &types.Scheme{
		Vars: []*types.Var{e},
		Type: types.TFunc(listE, types.TFunc(listE, listE)),
	}
	c.env = c.env.Extend("concat", concatScheme)

	c.variants[core.NilName] = &variantInfo{TypeName: "List", Siblings: []string{core.NilName, core.ConsName}}
	c.variants[core.ConsName] = &variantInfo{TypeName: "List", Siblings: []string{core.NilName, core.ConsName}}
	c.typeConstructors["List"] = []string{core.NilName, core.ConsName}
}
