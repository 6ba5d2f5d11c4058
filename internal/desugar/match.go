package desugar

import (
	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/core"
)

// desugarMatch binds the scrutinee once to a fresh variable (so a
// guarded arm's continuation can re-inspect it without re-evaluating
// side effects) and expands arms via expandArms.
func (d *desugarer) desugarMatch(m *ast.Match) (core.Expr, error) {
	scrutinee, err := d.desugarExpr(m.Scrutinee)
	if err != nil {
		return nil, err
	}
	loc := base(m.Location())
	tmp := d.ng.fresh("m")
	scrutVar := &core.Var{ExprBase: core.ExprBase{Base: loc}, Name: tmp}
	arms, err := d.expandArms(m.Arms, scrutVar)
	if err != nil {
		return nil, err
	}
	matchExpr := &core.Match{ExprBase: core.ExprBase{Base: loc}, Scrutinee: scrutVar, Arms: arms}
	return &core.Let{ExprBase: core.ExprBase{Base: loc}, Name: tmp, Value: scrutinee, Body: matchExpr}, nil
}

// expandArms lowers a Surface arm list to a guard-free, or-pattern-free
// Core arm list (spec.md §4.3, §4.4.6). Or-patterns duplicate the arm
// (one Core arm per alternative); a guarded arm lowers to a nested
// match on the guard whose false branch re-matches the remaining
// arms. The remaining arms are also appended at this level, so a value
// that does not match the guarded pattern still reaches them.
func (d *desugarer) expandArms(arms []ast.MatchArm, scrutVar core.Expr) ([]core.MatchArm, error) {
	if len(arms) == 0 {
		return nil, nil
	}
	arm := arms[0]
	rest := arms[1:]

	pat, guard := arm.Pattern, arm.Guard
	if gp, ok := pat.(*ast.GuardPattern); ok && guard == nil {
		pat, guard = gp.Inner, gp.Condition
	}

	alts := flattenOrPattern(pat)
	body, err := d.desugarExpr(arm.Body)
	if err != nil {
		return nil, err
	}

	if guard == nil {
		var out []core.MatchArm
		for _, alt := range alts {
			corePat, err := d.desugarPattern(alt)
			if err != nil {
				return nil, err
			}
			out = append(out, core.MatchArm{Base: base(arm.Location()), Pattern: corePat, Body: body})
		}
		more, err := d.expandArms(rest, scrutVar)
		if err != nil {
			return nil, err
		}
		return append(out, more...), nil
	}

	// Guarded arm: lower to `match guard { true => body, false => <rest> }`
	// nested under each alternative's pattern, per spec.md §4.4.6
	// ("Guards are removed by desugaring to nested matches").
	guardCore, err := d.desugarExpr(guard)
	if err != nil {
		return nil, err
	}
	continuationArms, err := d.expandArms(rest, scrutVar)
	if err != nil {
		return nil, err
	}
	loc := base(arm.Location())
	continuation := &core.Match{ExprBase: core.ExprBase{Base: loc}, Scrutinee: scrutVar, Arms: continuationArms}
	guardMatch := &core.Match{
		ExprBase:  core.ExprBase{Base: loc},
		Scrutinee: guardCore,
		Arms: []core.MatchArm{
			{Base: loc, Pattern: &core.LiteralPattern{PatternBase: core.PatternBase{Base: loc}, Kind: core.LitBool, Raw: "true"}, Body: body},
			{Base: loc, Pattern: &core.LiteralPattern{PatternBase: core.PatternBase{Base: loc}, Kind: core.LitBool, Raw: "false"}, Body: continuation},
		},
	}

	var out []core.MatchArm
	for _, alt := range alts {
		corePat, err := d.desugarPattern(alt)
		if err != nil {
			return nil, err
		}
		out = append(out, core.MatchArm{Base: loc, Pattern: corePat, Body: guardMatch})
	}
	return append(out, continuationArms...), nil
}
