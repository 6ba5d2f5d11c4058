package types

// Generalize quantifies every free variable in t whose birth level
// exceeds level — the enclosing let's level at the point of binding —
// producing a type scheme (spec.md §4.4.3). Callers are responsible
// for the value restriction: Generalize itself has no notion of
// "is this a value," so a monomorphic binding is simply never passed
// through it (the checker calls Mono instead).
func Generalize(t *Monotype, level int) *Scheme {
	seen := map[*Var]bool{}
	var vars []*Var
	var walk func(*Monotype)
	walk = func(t *Monotype) {
		t = Prune(t)
		switch t.Kind {
		case KVar:
			if t.Var.Level > level && !seen[t.Var] {
				seen[t.Var] = true
				vars = append(vars, t.Var)
			}
		case KFunc:
			walk(t.Param)
			walk(t.Result)
		case KCon:
			for _, a := range t.Args {
				walk(a)
			}
		case KTuple:
			for _, it := range t.Items {
				walk(it)
			}
		case KRef:
			walk(t.Elem)
		case KRecord:
			for _, f := range t.Fields {
				walk(f.Type)
			}
			if t.Row != nil {
				row, rec := pruneRow(t.Row)
				if rec != nil {
					walk(rec)
				} else if row.Level > level && !seen[row] {
					seen[row] = true
					vars = append(vars, row)
				}
			}
		}
	}
	walk(t)
	return &Scheme{Vars: vars, Type: t}
}

// Instantiate replaces a scheme's quantifiers with fresh variables at
// the substitution's current level (spec.md §4.4.3).
func (s *Subst) Instantiate(sch *Scheme) *Monotype {
	if len(sch.Vars) == 0 {
		return sch.Type
	}
	mapping := make(map[*Var]*Monotype, len(sch.Vars))
	for _, v := range sch.Vars {
		mapping[v] = s.FreshType()
	}
	return instantiateType(sch.Type, mapping)
}

// instantiateType rebuilds t, replacing any variable present in
// mapping with its fresh instance; variables outside mapping (and
// non-variable leaves) are shared, not copied.
func instantiateType(t *Monotype, mapping map[*Var]*Monotype) *Monotype {
	t = Prune(t)
	switch t.Kind {
	case KVar:
		if nt, ok := mapping[t.Var]; ok {
			return nt
		}
		return t
	case KPrim:
		return t
	case KFunc:
		return TFunc(instantiateType(t.Param, mapping), instantiateType(t.Result, mapping))
	case KCon:
		args := make([]*Monotype, len(t.Args))
		for i, a := range t.Args {
			args[i] = instantiateType(a, mapping)
		}
		return &Monotype{Kind: KCon, Name: t.Name, Args: args}
	case KTuple:
		items := make([]*Monotype, len(t.Items))
		for i, it := range t.Items {
			items[i] = instantiateType(it, mapping)
		}
		return &Monotype{Kind: KTuple, Items: items}
	case KRef:
		return TRef(instantiateType(t.Elem, mapping))
	case KRecord:
		fields, row := flattenRecord(t)
		newFields := make([]RecordField, len(fields))
		for i, f := range fields {
			newFields[i] = RecordField{Name: f.Name, Type: instantiateType(f.Type, mapping)}
		}
		var newRow *Var
		if row != nil {
			if nt, ok := mapping[row]; ok {
				if nt.Kind == KVar {
					newRow = nt.Var
				} else {
					moreFields, moreRow := flattenRecord(nt)
					newFields = append(newFields, moreFields...)
					newRow = moreRow
				}
			} else {
				newRow = row
			}
		}
		return TRecord(newFields, newRow)
	default:
		return t
	}
}
