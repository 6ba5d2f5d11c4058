package checker

import "github.com/mbcrawfo/vibefun/internal/core"

// isValue implements the value restriction (spec.md §4.4.3: "only
// syntactic values are generalized; everything else is monomorphic").
// A non-value let binding still type-checks — it simply receives a
// Mono scheme instead of a Generalize'd one, so its free variables
// stay tied to the level they were inferred at.
func isValue(e core.Expr) bool {
	switch e := e.(type) {
	case *core.Literal, *core.Var, *core.Lambda:
		return true
	case *core.VariantConstruct:
		for _, a := range e.Args {
			if !isValue(a) {
				return false
			}
		}
		return true
	case *core.Tuple:
		for _, it := range e.Items {
			if !isValue(it) {
				return false
			}
		}
		return true
	case *core.RecordLiteral:
		for _, f := range e.Fields {
			if !isValue(f.Value) {
				return false
			}
		}
		return true
	case *core.TypeAnnotation:
		return isValue(e.Value)
	default:
		return false
	}
}
