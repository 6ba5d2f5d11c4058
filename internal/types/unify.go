package types

import "fmt"

// UnificationError reports two monotypes that could not be made equal
// (spec.md §4.4.2: "Failure produces a typed diagnostic with the two
// conflicting types in subst-normalized form").
type UnificationError struct {
	Left, Right *Monotype
}

func (e UnificationError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s", e.Left.String(), e.Right.String())
}

// OccursCheckError reports a variable that would have to contain
// itself (spec.md §4.4.2 unification wrinkles, standard HM occurs check).
type OccursCheckError struct {
	Var  *Var
	Type *Monotype
}

func (e OccursCheckError) Error() string {
	return fmt.Sprintf("occurs check failed: %s occurs in %s", (&Monotype{Kind: KVar, Var: e.Var}).String(), e.Type.String())
}

// MissingFieldError reports record fields required on one side of a
// unification that the other, closed side does not provide (spec.md
// §8 scenario 5: `f({ y: 2 })` fails with "missing field `x`").
type MissingFieldError struct {
	Fields []string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("missing field(s): %v", e.Fields)
}

// Unify makes a and b equal under s, width-unifying open records per
// spec.md §4.4.2. Two closed records must match exactly; an open row
// unified with a closed record closes the row to the closed side's
// fields; two open rows merge into one fresh row.
func (s *Subst) Unify(a, b *Monotype) error {
	a, b = Prune(a), Prune(b)

	if a.Kind == KVar && b.Kind == KVar && a.Var == b.Var {
		return nil
	}
	if a.Kind == KVar {
		return s.bindVar(a.Var, b)
	}
	if b.Kind == KVar {
		return s.bindVar(b.Var, a)
	}
	if a.Kind != b.Kind {
		return UnificationError{a, b}
	}

	switch a.Kind {
	case KPrim:
		if a.Prim != b.Prim {
			return UnificationError{a, b}
		}
		return nil

	case KFunc:
		if err := s.Unify(a.Param, b.Param); err != nil {
			return err
		}
		return s.Unify(a.Result, b.Result)

	case KCon:
		if a.Name != b.Name || len(a.Args) != len(b.Args) {
			return UnificationError{a, b}
		}
		for i := range a.Args {
			if err := s.Unify(a.Args[i], b.Args[i]); err != nil {
				return err
			}
		}
		return nil

	case KTuple:
		if len(a.Items) != len(b.Items) {
			return UnificationError{a, b}
		}
		for i := range a.Items {
			if err := s.Unify(a.Items[i], b.Items[i]); err != nil {
				return err
			}
		}
		return nil

	case KRef:
		return s.Unify(a.Elem, b.Elem)

	case KRecord:
		return s.unifyRecords(a, b)

	default:
		return UnificationError{a, b}
	}
}

func (s *Subst) bindVar(v *Var, t *Monotype) error {
	t = Prune(t)
	if t.Kind == KVar && t.Var == v {
		return nil
	}
	if occursVar(v, t) {
		return OccursCheckError{Var: v, Type: t}
	}
	adjustLevels(t, v.Level)
	v.Instance = t
	return nil
}

func occursVar(v *Var, t *Monotype) bool {
	t = Prune(t)
	switch t.Kind {
	case KVar:
		return t.Var == v
	case KFunc:
		return occursVar(v, t.Param) || occursVar(v, t.Result)
	case KCon:
		for _, a := range t.Args {
			if occursVar(v, a) {
				return true
			}
		}
		return false
	case KTuple:
		for _, it := range t.Items {
			if occursVar(v, it) {
				return true
			}
		}
		return false
	case KRef:
		return occursVar(v, t.Elem)
	case KRecord:
		for _, f := range t.Fields {
			if occursVar(v, f.Type) {
				return true
			}
		}
		if t.Row == nil {
			return false
		}
		row, rec := pruneRow(t.Row)
		if rec != nil {
			return occursVar(v, rec)
		}
		return row == v
	default:
		return false
	}
}

// adjustLevels lowers every free unbound variable inside t to at most
// maxLevel — the standard companion to binding a variable at level
// maxLevel, so nothing captured underneath it outlives its binder
// (spec.md §4.4.1 "levels trick").
func adjustLevels(t *Monotype, maxLevel int) {
	t = Prune(t)
	switch t.Kind {
	case KVar:
		if t.Var.Level > maxLevel {
			t.Var.Level = maxLevel
		}
	case KFunc:
		adjustLevels(t.Param, maxLevel)
		adjustLevels(t.Result, maxLevel)
	case KCon:
		for _, a := range t.Args {
			adjustLevels(a, maxLevel)
		}
	case KTuple:
		for _, it := range t.Items {
			adjustLevels(it, maxLevel)
		}
	case KRef:
		adjustLevels(t.Elem, maxLevel)
	case KRecord:
		for _, f := range t.Fields {
			adjustLevels(f.Type, maxLevel)
		}
		if t.Row != nil {
			row, rec := pruneRow(t.Row)
			if rec != nil {
				adjustLevels(rec, maxLevel)
			} else if row.Level > maxLevel {
				row.Level = maxLevel
			}
		}
	}
}

// flattenRecord walks a record's (possibly already-bound) row chain
// and returns its full field list plus the still-unbound row variable
// at the end of the chain, if any.
func flattenRecord(t *Monotype) ([]RecordField, *Var) {
	fields := append([]RecordField{}, t.Fields...)
	row := t.Row
	for row != nil {
		r, rec := pruneRow(row)
		if rec == nil {
			return fields, r
		}
		fields = append(fields, rec.Fields...)
		row = rec.Row
	}
	return fields, nil
}

func (s *Subst) unifyRecords(a, b *Monotype) error {
	aFields, aRow := flattenRecord(a)
	bFields, bRow := flattenRecord(b)

	aMap := make(map[string]*Monotype, len(aFields))
	for _, f := range aFields {
		aMap[f.Name] = f.Type
	}
	bMap := make(map[string]*Monotype, len(bFields))
	for _, f := range bFields {
		bMap[f.Name] = f.Type
	}

	var onlyA, onlyB []RecordField
	for _, f := range aFields {
		if bt, ok := bMap[f.Name]; ok {
			if err := s.Unify(f.Type, bt); err != nil {
				return err
			}
		} else {
			onlyA = append(onlyA, f)
		}
	}
	for _, f := range bFields {
		if _, ok := aMap[f.Name]; !ok {
			onlyB = append(onlyB, f)
		}
	}

	switch {
	case aRow == nil && bRow == nil:
		if len(onlyA) > 0 || len(onlyB) > 0 {
			return MissingFieldError{Fields: fieldNames(append(onlyA, onlyB...))}
		}
		return nil
	case aRow == nil && bRow != nil:
		if len(onlyB) > 0 {
			return MissingFieldError{Fields: fieldNames(onlyB)}
		}
		bRow.Instance = TRecord(onlyA, nil)
		return nil
	case aRow != nil && bRow == nil:
		if len(onlyA) > 0 {
			return MissingFieldError{Fields: fieldNames(onlyA)}
		}
		aRow.Instance = TRecord(onlyB, nil)
		return nil
	default:
		fresh := s.Fresh()
		aRow.Instance = TRecord(onlyB, fresh)
		bRow.Instance = TRecord(onlyA, fresh)
		return nil
	}
}

func fieldNames(fs []RecordField) []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}
