package checker

import (
	"github.com/mbcrawfo/vibefun/internal/core"
	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/types"
)

// checkDecl infers (or, for declarations already handled in
// preDeclare, simply acknowledges) one top-level declaration, binding
// any names it introduces into c.env. It returns the names the
// declaration contributes to the module's export surface candidate
// list and whether the declaration itself marked them exported
// (spec.md §4.4, §4.5's module-level name table).
func (c *checker) checkDecl(decl core.Decl) ([]string, bool, error) {
	switch d := decl.(type) {
	case *core.LetDecl:
		return c.checkLetDecl(d)
	case *core.LetRecGroup:
		return c.checkLetRecGroup(d)
	case *core.TypeDecl:
		return []string{d.Name}, d.Exported, nil
	case *core.ExternalDecl:
		return []string{d.Name}, d.Exported, nil
	case *core.ImportDecl:
		return nil, false, nil
	case *core.ExportDecl:
		names := make([]string, len(d.Specifiers))
		for i, s := range d.Specifiers {
			name := s.Name
			if s.Alias != "" {
				name = s.Alias
			}
			names[i] = name
			if _, ok := c.env.Lookup(s.Name); !ok && d.Source == "" {
				return nil, false, c.errorf(d.Location(), diagnostic.CodeUndefinedName, "",
					"cannot export undefined name `%s`", s.Name)
			}
		}
		return names, true, nil
	default:
		return nil, false, c.errorf(decl.Location(), diagnostic.CodeUndefinedName, "", "unknown declaration form")
	}
}

func (c *checker) checkLetDecl(d *core.LetDecl) ([]string, bool, error) {
	c.subst.EnterLevel()
	valTy, err := c.inferExpr(d.Value)
	if err != nil {
		return nil, false, err
	}
	if d.Annotation != nil {
		annTy, err := c.resolveTypeExpr(d.Annotation, map[string]*types.Var{})
		if err != nil {
			return nil, false, err
		}
		if err := c.subst.Unify(valTy, annTy); err != nil {
			return nil, false, c.errorf(d.Location(), diagnostic.CodeUnificationFailure, "",
				"`%s` has type %s, annotation requires %s", d.Name, valTy, annTy)
		}
	}
	c.subst.ExitLevel()

	scheme := schemeFor(d.Value, valTy, c.subst.Level())
	c.env = c.env.Extend(d.Name, scheme)
	return []string{d.Name}, d.Exported, nil
}

// checkLetRecGroup binds every member's name to a placeholder before
// inferring any of their bodies, so mutual recursion within the group
// type-checks (spec.md §4.4.3's "let rec ... and ..." joint binding).
func (c *checker) checkLetRecGroup(d *core.LetRecGroup) ([]string, bool, error) {
	c.subst.EnterLevel()
	placeholders := make([]*types.Monotype, len(d.Bindings))
	for i, b := range d.Bindings {
		placeholders[i] = c.subst.FreshType()
		c.env = c.env.Extend(b.Name, types.Mono(placeholders[i]))
	}

	valTypes := make([]*types.Monotype, len(d.Bindings))
	for i, b := range d.Bindings {
		valTy, err := c.inferExpr(b.Value)
		if err != nil {
			return nil, false, err
		}
		if b.Annotation != nil {
			annTy, err := c.resolveTypeExpr(b.Annotation, map[string]*types.Var{})
			if err != nil {
				return nil, false, err
			}
			if err := c.subst.Unify(valTy, annTy); err != nil {
				return nil, false, c.errorf(b.Location(), diagnostic.CodeUnificationFailure, "",
					"`%s` has type %s, annotation requires %s", b.Name, valTy, annTy)
			}
		}
		if err := c.subst.Unify(placeholders[i], valTy); err != nil {
			return nil, false, c.errorf(b.Location(), diagnostic.CodeUnificationFailure, "",
				"recursive binding `%s` does not match its uses", b.Name)
		}
		valTypes[i] = valTy
	}
	c.subst.ExitLevel()

	names := make([]string, len(d.Bindings))
	for i, b := range d.Bindings {
		scheme := schemeFor(b.Value, valTypes[i], c.subst.Level())
		c.env = c.env.Extend(b.Name, scheme)
		names[i] = b.Name
	}
	return names, d.Exported, nil
}
