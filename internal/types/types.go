// Package types implements the checker's type domain: monotypes, type
// schemes, and the union-find substitution that unifies them, per
// spec.md §3 ("Types (checker domain)") and §9's Design Note mandate
// ("Union-find substitution must use path compression and union by
// rank; unification variables store a level alongside a parent
// reference").
package types

import (
	"fmt"
	"strings"
)

// Kind discriminates a Monotype's shape.
type Kind int

const (
	KVar Kind = iota
	KPrim
	KFunc
	KCon
	KRecord
	KTuple
	KRef
)

// Built-in primitive names.
const (
	Int    = "Int"
	Float  = "Float"
	String = "String"
	Bool   = "Bool"
	Unit   = "Unit"
)

// Var is a unification variable: a union-find node carrying a birth
// Level (spec.md §4.4.1's "levels trick") and, once bound, an Instance
// pointing at the monotype it stands for. Path compression happens in
// Prune; union-by-rank is irrelevant here because a Var's
// "parent" is always the single Instance link, not a rank-balanced
// tree — the standard simplification used by every ML-family
// HM-with-levels implementation (one parent pointer per variable).
type Var struct {
	ID       int
	Level    int
	Instance *Monotype // nil if unbound
	Name     string    // display name, assigned lazily by String()
}

// RecordField is one field of a record monotype, in declaration order
// (order matters for diagnostic rendering, not for unification).
type RecordField struct {
	Name string
	Type *Monotype
}

// Monotype is a first-order type, per spec.md §3: type variable,
// primitive, function, generic constructor application, record (with
// row variable for open rows), tuple, or reference cell.
type Monotype struct {
	Kind Kind

	Var *Var // KVar

	Prim string // KPrim

	Param, Result *Monotype // KFunc

	Name string      // KCon
	Args []*Monotype // KCon

	Fields []RecordField // KRecord, ordered
	Row    *Var          // KRecord; nil means closed

	Items []*Monotype // KTuple

	Elem *Monotype // KRef
}

func TVar(v *Var) *Monotype           { return &Monotype{Kind: KVar, Var: v} }
func TPrim(name string) *Monotype     { return &Monotype{Kind: KPrim, Prim: name} }
func TFunc(p, r *Monotype) *Monotype  { return &Monotype{Kind: KFunc, Param: p, Result: r} }
func TCon(name string, args ...*Monotype) *Monotype {
	return &Monotype{Kind: KCon, Name: name, Args: args}
}
func TTuple(items ...*Monotype) *Monotype { return &Monotype{Kind: KTuple, Items: items} }
func TRef(elem *Monotype) *Monotype       { return &Monotype{Kind: KRef, Elem: elem} }

// TRecord builds a record type; row is nil for a closed record.
func TRecord(fields []RecordField, row *Var) *Monotype {
	return &Monotype{Kind: KRecord, Fields: fields, Row: row}
}

// TList is sugar for the builtin `List a` constructor application.
func TList(elem *Monotype) *Monotype { return TCon("List", elem) }

// Scheme is a type scheme `forall a1..an. tau` (spec.md §3). Vars lists
// the quantified unification variables; Type is the body.
type Scheme struct {
	Vars []*Var
	Type *Monotype
}

// Mono wraps a monotype with no quantifiers — a monomorphic scheme,
// the value restriction's fallback (spec.md §4.4.3).
func Mono(t *Monotype) *Scheme { return &Scheme{Type: t} }

// String renders a monotype for diagnostics, per SPEC_FULL.md §4.4
// ("Principal-type pretty-printing ... renders row-polymorphic records
// as `{ x: Int, ...t3 }` and function types with right-associated
// arrows"), grounded on the teacher's result.PathResult.String()/
// formatPath convention of a dedicated renderer beside the data type.
func (t *Monotype) String() string {
	return t.render(false)
}

func (t *Monotype) render(paren bool) string {
	if t == nil {
		return "?"
	}
	switch t.Kind {
	case KVar:
		v := t.Var
		for v.Instance != nil {
			return v.Instance.render(paren)
		}
		return v.displayName()
	case KPrim:
		return t.Prim
	case KFunc:
		s := fmt.Sprintf("%s -> %s", t.Param.render(true), t.Result.render(false))
		if paren {
			return "(" + s + ")"
		}
		return s
	case KCon:
		if len(t.Args) == 0 {
			return t.Name
		}
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.render(true)
		}
		s := t.Name + " " + strings.Join(parts, " ")
		if paren {
			return "(" + s + ")"
		}
		return s
	case KRecord:
		var parts []string
		for _, f := range t.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Type.render(false)))
		}
		if t.Row != nil {
			row := t.Row
			for row.Instance != nil {
				// An instantiated row variable: merge into the rendered field list.
				inst := row.Instance
				if inst.Kind == KRecord {
					for _, f := range inst.Fields {
						parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Type.render(false)))
					}
					if inst.Row == nil {
						return "{ " + strings.Join(parts, ", ") + " }"
					}
					row = inst.Row
					continue
				}
				break
			}
			parts = append(parts, "..."+row.displayName())
		}
		if len(parts) == 0 {
			return "{}"
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case KTuple:
		parts := make([]string, len(t.Items))
		for i, it := range t.Items {
			parts[i] = it.render(false)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KRef:
		s := "ref " + t.Elem.render(true)
		if paren {
			return "(" + s + ")"
		}
		return s
	default:
		return "?"
	}
}

func (v *Var) displayName() string {
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("t%d", v.ID)
}

func (s *Scheme) String() string {
	if len(s.Vars) == 0 {
		return s.Type.String()
	}
	names := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		names[i] = v.displayName()
	}
	return "forall " + strings.Join(names, " ") + ". " + s.Type.String()
}
