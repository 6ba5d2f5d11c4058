package desugar

import (
	"github.com/mbcrawfo/vibefun/internal/ast"
	"github.com/mbcrawfo/vibefun/internal/core"
)

// desugarTypeExpr lowers a Surface type expression. Type expressions
// carry no syntactic sugar (spec.md §4.3 lists none), so this is a
// structural walk into the Core type-expression node set.
func (d *desugarer) desugarTypeExpr(t ast.TypeExpr) (core.TypeExpr, error) {
	if t == nil {
		return nil, nil
	}
	loc := base(t.Location())
	switch t := t.(type) {
	case *ast.PrimitiveType:
		return &core.PrimitiveType{TypeExprBase: core.TypeExprBase{Base: loc}, Name: t.Name}, nil
	case *ast.TypeVarExpr:
		return &core.TypeVarExpr{TypeExprBase: core.TypeExprBase{Base: loc}, Name: t.Name}, nil
	case *ast.ConstructorType:
		args := make([]core.TypeExpr, len(t.Args))
		for i, a := range t.Args {
			ca, err := d.desugarTypeExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = ca
		}
		return &core.ConstructorType{TypeExprBase: core.TypeExprBase{Base: loc}, Name: t.Name, Args: args}, nil
	case *ast.FuncType:
		param, err := d.desugarTypeExpr(t.Param)
		if err != nil {
			return nil, err
		}
		result, err := d.desugarTypeExpr(t.Result)
		if err != nil {
			return nil, err
		}
		return &core.FuncType{TypeExprBase: core.TypeExprBase{Base: loc}, Param: param, Result: result}, nil
	case *ast.RecordTypeExpr:
		fields := make([]core.RecordTypeField, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := d.desugarTypeExpr(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = core.RecordTypeField{Base: base(f.Location()), Name: f.Name, Type: ft}
		}
		return &core.RecordTypeExpr{TypeExprBase: core.TypeExprBase{Base: loc}, Fields: fields, Open: t.Open}, nil
	case *ast.TupleTypeExpr:
		items := make([]core.TypeExpr, len(t.Items))
		for i, it := range t.Items {
			ci, err := d.desugarTypeExpr(it)
			if err != nil {
				return nil, err
			}
			items[i] = ci
		}
		return &core.TupleTypeExpr{TypeExprBase: core.TypeExprBase{Base: loc}, Items: items}, nil
	case *ast.RefTypeExpr:
		elem, err := d.desugarTypeExpr(t.Elem)
		if err != nil {
			return nil, err
		}
		return &core.RefTypeExpr{TypeExprBase: core.TypeExprBase{Base: loc}, Elem: elem}, nil
	default:
		return nil, DesugarError{Message: "unknown type expression node", Location: t.Location()}
	}
}
