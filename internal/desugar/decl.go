package desugar

import (
	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/core"
)

// desugarDecl lowers one Surface declaration. It returns a slice
// because an ExternalBlock explodes into several externals, a
// TypeGroup explodes into one TypeDecl per member, and a pattern-headed
// LetDecl explodes into a temp binding plus one extraction per bound
// variable (spec.md §4.3, §3 "External blocks are exploded into
// individual externals"). A LetRecGroup stays one core.LetRecGroup
// holding one LetRecBinding per member.
func (d *desugarer) desugarDecl(decl ast.Decl) ([]core.Decl, error) {
	switch decl := decl.(type) {
	case *ast.LetDecl:
		return d.desugarLetDecl(decl)
	case *ast.LetRecGroup:
		return d.desugarLetRecGroup(decl)
	case *ast.TypeDecl:
		td, err := d.desugarTypeDecl(decl, nil)
		if err != nil {
			return nil, err
		}
		return []core.Decl{td}, nil
	case *ast.TypeGroup:
		return d.desugarTypeGroup(decl)
	case *ast.ExternalDecl:
		ed, err := d.desugarExternalDecl(decl, decl.Source)
		if err != nil {
			return nil, err
		}
		return []core.Decl{ed}, nil
	case *ast.ExternalBlock:
		var out []core.Decl
		for _, item := range decl.Items {
			ed, err := d.desugarExternalDecl(item, decl.From)
			if err != nil {
				return nil, err
			}
			out = append(out, ed)
		}
		return out, nil
	case *ast.ImportDecl:
		return []core.Decl{d.desugarImportDecl(decl)}, nil
	case *ast.ExportDecl:
		return []core.Decl{d.desugarExportDecl(decl)}, nil
	default:
		return nil, DesugarError{Message: "unknown declaration node", Location: decl.Location()}
	}
}

func (d *desugarer) desugarLetDecl(l *ast.LetDecl) ([]core.Decl, error) {
	value, err := d.desugarExpr(l.Value)
	if err != nil {
		return nil, err
	}
	if l.Mut {
		loc := value.Location()
		value = &core.Apply{
			ExprBase: core.ExprBase{Base: base(loc)},
			Func:     &core.Var{ExprBase: core.ExprBase{Base: base(loc)}, Name: "ref"},
			Arg:      value,
		}
	}

	switch pat := l.Pattern.(type) {
	case *ast.VarPattern:
		annot, err := d.desugarTypeExpr(l.Annotation)
		if err != nil {
			return nil, err
		}
		return []core.Decl{&core.LetDecl{
			DeclBase: core.DeclBase{Base: base(l.Location())}, Name: pat.Name, Mut: l.Mut,
			Annotation: annot, Value: value, Exported: l.Exported,
		}}, nil
	case *ast.WildcardPattern:
		return []core.Decl{&core.LetDecl{
			DeclBase: core.DeclBase{Base: base(l.Location())}, Name: d.ng.fresh("_"),
			Value: value, Exported: l.Exported,
		}}, nil
	default:
		corePat, err := d.desugarPattern(l.Pattern)
		if err != nil {
			return nil, err
		}
		tmp := d.ng.fresh("t")
		loc := base(l.Location())
		decls := []core.Decl{&core.LetDecl{DeclBase: core.DeclBase{Base: loc}, Name: tmp, Value: value}}
		scrutVar := &core.Var{ExprBase: core.ExprBase{Base: loc}, Name: tmp}
		for _, v := range patternVars(l.Pattern) {
			extract := &core.Match{
				ExprBase:  core.ExprBase{Base: loc},
				Scrutinee: scrutVar,
				Arms:      []core.MatchArm{{Base: loc, Pattern: corePat, Body: &core.Var{ExprBase: core.ExprBase{Base: loc}, Name: v}}},
			}
			decls = append(decls, &core.LetDecl{DeclBase: core.DeclBase{Base: loc}, Name: v, Value: extract, Exported: l.Exported})
		}
		return decls, nil
	}
}

func (d *desugarer) desugarLetRecGroup(g *ast.LetRecGroup) ([]core.Decl, error) {
	bindings := make([]core.LetRecBinding, len(g.Bindings))
	for i, b := range g.Bindings {
		value, err := d.desugarExpr(b.Value)
		if err != nil {
			return nil, err
		}
		annot, err := d.desugarTypeExpr(b.Annotation)
		if err != nil {
			return nil, err
		}
		bindings[i] = core.LetRecBinding{Base: base(b.Location()), Name: b.Name, Annotation: annot, Value: value}
	}
	return []core.Decl{&core.LetRecGroup{DeclBase: core.DeclBase{Base: base(g.Location())}, Bindings: bindings, Exported: g.Exported}}, nil
}

func (d *desugarer) desugarTypeDeclBody(body ast.TypeDeclBody) (core.TypeDeclBody, error) {
	switch b := body.(type) {
	case ast.AliasBody:
		t, err := d.desugarTypeExpr(b.Type)
		if err != nil {
			return nil, err
		}
		return core.AliasBody{Type: t}, nil
	case ast.VariantBody:
		ctors := make([]core.VariantConstructor, len(b.Constructors))
		for i, c := range b.Constructors {
			args := make([]core.TypeExpr, len(c.Args))
			for j, a := range c.Args {
				ca, err := d.desugarTypeExpr(a)
				if err != nil {
					return nil, err
				}
				args[j] = ca
			}
			ctors[i] = core.VariantConstructor{Base: base(c.Location()), Name: c.Name, Args: args}
		}
		return core.VariantBody{Constructors: ctors}, nil
	case ast.RecordBody:
		fields := make([]core.RecordTypeField, len(b.Fields))
		for i, f := range b.Fields {
			ft, err := d.desugarTypeExpr(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = core.RecordTypeField{Base: base(f.Location()), Name: f.Name, Type: ft}
		}
		return core.RecordBody{Fields: fields}, nil
	default:
		return nil, DesugarError{Message: "unknown type declaration body"}
	}
}

func (d *desugarer) desugarTypeDecl(t *ast.TypeDecl, group []string) (*core.TypeDecl, error) {
	body, err := d.desugarTypeDeclBody(t.Body)
	if err != nil {
		return nil, err
	}
	return &core.TypeDecl{
		DeclBase: core.DeclBase{Base: base(t.Location())}, Name: t.Name, Params: t.Params,
		Body: body, Group: group, Exported: t.Exported,
	}, nil
}

// desugarTypeGroup explodes `type A = ... and B = ...` into one
// core.TypeDecl per member, each carrying the full sibling-name list so
// the checker can bind all names before expanding any alias body
// (spec.md §9 open question: "implementations must bind all group
// names before expanding any alias body").
func (d *desugarer) desugarTypeGroup(g *ast.TypeGroup) ([]core.Decl, error) {
	group := make([]string, len(g.Decls))
	for i, td := range g.Decls {
		group[i] = td.Name
	}
	out := make([]core.Decl, len(g.Decls))
	for i, td := range g.Decls {
		cd, err := d.desugarTypeDecl(td, group)
		if err != nil {
			return nil, err
		}
		out[i] = cd
	}
	return out, nil
}

func (d *desugarer) desugarExternalDecl(e *ast.ExternalDecl, source string) (*core.ExternalDecl, error) {
	ty, err := d.desugarTypeExpr(e.Type)
	if err != nil {
		return nil, err
	}
	src := e.Source
	if src == "" {
		src = source
	}
	return &core.ExternalDecl{
		DeclBase: core.DeclBase{Base: base(e.Location())}, Name: e.Name, Type: ty,
		JSName: e.JSName, Source: src, Exported: e.Exported,
	}, nil
}

func desugarImportSpecifiers(specs []ast.ImportSpecifier) []core.ImportSpecifier {
	out := make([]core.ImportSpecifier, len(specs))
	for i, s := range specs {
		out[i] = core.ImportSpecifier{Base: base(s.Location()), Name: s.Name, Alias: s.Alias, TypeOnly: s.TypeOnly}
	}
	return out
}

func (d *desugarer) desugarImportDecl(i *ast.ImportDecl) core.Decl {
	return &core.ImportDecl{
		DeclBase: core.DeclBase{Base: base(i.Location())}, Kind: core.ImportKind(i.Kind),
		Specifiers: desugarImportSpecifiers(i.Specifiers), NamespaceAs: i.NamespaceAs,
		TypeOnly: i.TypeOnly, Source: i.Source,
	}
}

func (d *desugarer) desugarExportDecl(e *ast.ExportDecl) core.Decl {
	return &core.ExportDecl{
		DeclBase: core.DeclBase{Base: base(e.Location())}, Specifiers: desugarImportSpecifiers(e.Specifiers), Source: e.Source,
	}
}
