package desugar

import (
	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/core"
)

// desugarPattern lowers a single Surface pattern. Or-patterns are not
// accepted here: they only ever appear as a match arm's top-level
// pattern, and the caller (expandArms, in match.go) expands them into
// duplicate arms before any alternative reaches desugarPattern
// (spec.md §4.3: "or-pattern p1 | p2 => e -> duplicated arms").
func (d *desugarer) desugarPattern(p ast.Pattern) (core.Pattern, error) {
	loc := p.Location()
	switch p := p.(type) {
	case *ast.WildcardPattern:
		return &core.WildcardPattern{PatternBase: core.PatternBase{Base: base(loc)}}, nil

	case *ast.VarPattern:
		return &core.VarPattern{PatternBase: core.PatternBase{Base: base(loc)}, Name: p.Name}, nil

	case *ast.LiteralPattern:
		return &core.LiteralPattern{
			PatternBase: core.PatternBase{Base: base(loc)},
			Kind:        core.LiteralKind(p.Kind),
			Raw:         p.Raw,
		}, nil

	case *ast.VariantPattern:
		args := make([]core.Pattern, len(p.Args))
		for i, a := range p.Args {
			ca, err := d.desugarPattern(a)
			if err != nil {
				return nil, err
			}
			args[i] = ca
		}
		return &core.VariantPattern{PatternBase: core.PatternBase{Base: base(loc)}, Name: p.Name, Args: args}, nil

	case *ast.TuplePattern:
		items := make([]core.Pattern, len(p.Items))
		for i, it := range p.Items {
			ci, err := d.desugarPattern(it)
			if err != nil {
				return nil, err
			}
			items[i] = ci
		}
		return &core.TuplePattern{PatternBase: core.PatternBase{Base: base(loc)}, Items: items}, nil

	case *ast.RecordPattern:
		fields := make([]core.RecordFieldPatternItem, len(p.Fields))
		for i, f := range p.Fields {
			fp := f.Pattern
			if fp == nil {
				fp = &ast.VarPattern{PatternBase: ast.PatternBase{Base: ast.Base{Loc: f.Base.Loc}}, Name: f.Name}
			}
			cp, err := d.desugarPattern(fp)
			if err != nil {
				return nil, err
			}
			fields[i] = core.RecordFieldPatternItem{Base: base(f.Base.Loc), Name: f.Name, Pattern: cp}
		}
		return &core.RecordPattern{PatternBase: core.PatternBase{Base: base(loc)}, Fields: fields}, nil

	case *ast.ListPattern:
		return d.desugarListPattern(p)

	case *ast.ConsPattern:
		head, err := d.desugarPattern(p.Head)
		if err != nil {
			return nil, err
		}
		tail, err := d.desugarPattern(p.Tail)
		if err != nil {
			return nil, err
		}
		return &core.VariantPattern{
			PatternBase: core.PatternBase{Base: base(loc)},
			Name:        core.ConsName,
			Args:        []core.Pattern{head, tail},
		}, nil

	case *ast.GuardPattern:
		// A bare guard pattern outside a match arm has nowhere for its
		// condition to live in the Core AST (guards only lower at the
		// arm level, see match.go); reaching one here means the parser
		// attached a `when` clause somewhere other than a match arm.
		return nil, DesugarError{Message: "guard pattern outside match arm", Location: loc}

	case *ast.OrPattern:
		return nil, DesugarError{Message: "or-pattern outside match arm", Location: loc}

	default:
		return nil, DesugarError{Message: "unknown pattern node", Location: loc}
	}
}

// desugarListPattern lowers `[p1, p2, ...rest]` to nested Cons/Nil
// variant patterns (spec.md §4.3 table: "[p, ...r] (pattern) -> Cons(p, r)").
func (d *desugarer) desugarListPattern(lp *ast.ListPattern) (core.Pattern, error) {
	loc := lp.Location()
	var tail core.Pattern
	if lp.Rest != nil {
		tail = &core.VarPattern{PatternBase: core.PatternBase{Base: base(loc)}, Name: *lp.Rest}
	} else {
		tail = &core.VariantPattern{PatternBase: core.PatternBase{Base: base(loc)}, Name: core.NilName}
	}
	for i := len(lp.Items) - 1; i >= 0; i-- {
		item, err := d.desugarPattern(lp.Items[i])
		if err != nil {
			return nil, err
		}
		tail = &core.VariantPattern{
			PatternBase: core.PatternBase{Base: base(lp.Items[i].Location())},
			Name:        core.ConsName,
			Args:        []core.Pattern{item, tail},
		}
	}
	return tail, nil
}

// flattenOrPattern returns the alternatives of an or-pattern, or the
// single pattern itself when p is not an OrPattern — the uniform
// shape expandArms needs to duplicate arms (spec.md §4.3).
func flattenOrPattern(p ast.Pattern) []ast.Pattern {
	if or, ok := p.(*ast.OrPattern); ok {
		var out []ast.Pattern
		for _, alt := range or.Alternatives {
			out = append(out, flattenOrPattern(alt)...)
		}
		return out
	}
	return []ast.Pattern{p}
}

// patternVars collects the variable names an (irrefutable) pattern
// binds, in left-to-right occurrence order, used to destructure a
// pattern-headed let-binding into individual Core let declarations
// (decl.go's desugarLetDecl).
func patternVars(p ast.Pattern) []string {
	switch p := p.(type) {
	case *ast.VarPattern:
		return []string{p.Name}
	case *ast.WildcardPattern, *ast.LiteralPattern:
		return nil
	case *ast.VariantPattern:
		var out []string
		for _, a := range p.Args {
			out = append(out, patternVars(a)...)
		}
		return out
	case *ast.TuplePattern:
		var out []string
		for _, it := range p.Items {
			out = append(out, patternVars(it)...)
		}
		return out
	case *ast.RecordPattern:
		var out []string
		for _, f := range p.Fields {
			if f.Pattern == nil {
				out = append(out, f.Name)
				continue
			}
			out = append(out, patternVars(f.Pattern)...)
		}
		return out
	case *ast.ListPattern:
		var out []string
		for _, it := range p.Items {
			out = append(out, patternVars(it)...)
		}
		if p.Rest != nil {
			out = append(out, *p.Rest)
		}
		return out
	case *ast.ConsPattern:
		return append(patternVars(p.Head), patternVars(p.Tail)...)
	case *ast.GuardPattern:
		return patternVars(p.Inner)
	default:
		return nil
	}
}
