package checker

import (
	"fmt"

	"github.com/mbcrawfo/vibefun/internal/core"
	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/token"
	"github.com/mbcrawfo/vibefun/internal/types"
)

// A pattern matrix row is one match arm's leading pattern plus any
// patterns produced by specializing an earlier column — the standard
// Maranget usefulness-matrix representation (spec.md §4.4.6). Our
// match statement has a single scrutinee, but specializing a variant
// or tuple column replaces it with its sub-patterns, so the matrix
// can still grow columns mid-algorithm.
type patternRow = []core.Pattern

// checkMatchExhaustive runs the pattern-matrix algorithm for one
// Match's arm patterns, queuing the check for later if the scrutinee's
// type still contains an unresolved variable (SPEC_FULL.md §4.4:
// "Deferred checks list").
func (c *checker) checkMatchExhaustive(loc token.Location, scrutTy *types.Monotype, pats []core.Pattern) {
	matrix := make([]patternRow, len(pats))
	for i, p := range pats {
		matrix[i] = patternRow{p}
	}
	missing, ok, deferred := c.isExhaustive(matrix, []*types.Monotype{scrutTy})
	if deferred {
		c.deferred = append(c.deferred, deferredExhaustiveness{loc: loc, scrut: scrutTy, patterns: pats})
		return
	}
	if !ok {
		c.warnf(loc, diagnostic.CodeNonExhaustiveMatch, "non-exhaustive match: missing pattern `%s`", missing)
	}
	c.checkUnreachable(loc, pats, scrutTy)
}

// runDeferredExhaustiveness re-attempts every check that hit an
// unresolved scrutinee type while the module was still being checked;
// by module end, later declarations may have pinned it down.
func (c *checker) runDeferredExhaustiveness() {
	for _, d := range c.deferred {
		matrix := make([]patternRow, len(d.patterns))
		for i, p := range d.patterns {
			matrix[i] = patternRow{p}
		}
		missing, ok, deferred := c.isExhaustive(matrix, []*types.Monotype{d.scrut})
		if deferred {
			continue // still unresolved even at module end; nothing more to learn
		}
		if !ok {
			c.warnf(d.loc, diagnostic.CodeNonExhaustiveMatch, "non-exhaustive match: missing pattern `%s`", missing)
		}
	}
}

// checkUnreachable flags an arm whose pattern can never fire because
// every value it would match was already consumed by earlier arms
// (spec.md §4.4.6, VF4901). It runs the same specialization machinery
// in reverse: a pattern is reachable iff the matrix of rows *before* it
// does not already cover everything the pattern matches.
func (c *checker) checkUnreachable(loc token.Location, pats []core.Pattern, scrutTy *types.Monotype) {
	for i := range pats {
		if i == 0 {
			continue
		}
		prior := make([]patternRow, i)
		for j := 0; j < i; j++ {
			prior[j] = patternRow{pats[j]}
		}
		reachable := c.isUseful(prior, []*types.Monotype{scrutTy}, patternRow{pats[i]})
		if !reachable {
			c.warnf(pats[i].Location(), diagnostic.CodeUnreachableArm, "unreachable match arm")
		}
	}
}

// isUseful reports whether row would match some value not already
// matched by matrix — the dual computation to isExhaustive, reusing
// the same specialize/default helpers.
func (c *checker) isUseful(matrix []patternRow, colTypes []*types.Monotype, row patternRow) bool {
	if len(colTypes) == 0 {
		return true // row has matched all columns; it is useful iff it's reachable at all, which it is here
	}
	ty := types.Prune(colTypes[0])
	head := row[0]

	if isWildcardLike(head) {
		defMatrix := c.defaultMatrix(matrix)
		return c.isUseful(defMatrix, colTypes[1:], row[1:])
	}

	switch ty.Kind {
	case types.KCon, types.KPrim:
		name, arity, ok := c.ctorOf(head, ty)
		if !ok {
			return true
		}
		subMatrix := c.specialize(matrix, name, arity)
		newRow := append(append(patternRow{}, subArgsOf(head, arity)...), row[1:]...)
		subColTypes, err := c.subColumnTypes(ty, name, arity)
		if err != nil {
			return true
		}
		return c.isUseful(subMatrix, append(subColTypes, colTypes[1:]...), newRow)

	case types.KTuple:
		arity := len(ty.Items)
		subMatrix := c.specializeTuple(matrix, arity)
		newRow := append(append(patternRow{}, subArgsOf(head, arity)...), row[1:]...)
		return c.isUseful(subMatrix, append(append([]*types.Monotype{}, ty.Items...), colTypes[1:]...), newRow)

	default:
		// Records, refs, and infinite domains: treat the column as
		// irrefutable for reachability purposes (see isExhaustive).
		newMatrix := make([]patternRow, len(matrix))
		for i, r := range matrix {
			newMatrix[i] = r[1:]
		}
		return c.isUseful(newMatrix, colTypes[1:], row[1:])
	}
}

// isExhaustive reports whether matrix covers every value of the types
// in colTypes. missing is a human-readable witness when it does not.
// deferred is true when an unresolved type variable made the question
// currently unanswerable.
func (c *checker) isExhaustive(matrix []patternRow, colTypes []*types.Monotype) (missing string, ok bool, deferred bool) {
	if len(colTypes) == 0 {
		return "", len(matrix) > 0, false
	}
	ty := types.Prune(colTypes[0])

	switch {
	case ty.Kind == types.KVar:
		return "", true, true

	case ty.Kind == types.KPrim && ty.Prim == types.Unit:
		return c.dropColumn(matrix, colTypes)

	case ty.Kind == types.KPrim && ty.Prim == types.Bool:
		return c.checkSignature(matrix, colTypes, ty, []string{"true", "false"}, map[string]int{"true": 0, "false": 0})

	case ty.Kind == types.KCon:
		siblings, ok := c.typeConstructors[ty.Name]
		if !ok {
			return "", true, false // opaque/unregistered constructor type: nothing to enumerate
		}
		arities := make(map[string]int, len(siblings))
		for _, s := range siblings {
			arities[s] = c.constructorArity(s)
		}
		return c.checkSignature(matrix, colTypes, ty, siblings, arities)

	case ty.Kind == types.KTuple:
		subMatrix := c.specializeTuple(matrix, len(ty.Items))
		subColTypes := append(append([]*types.Monotype{}, ty.Items...), colTypes[1:]...)
		return c.isExhaustive(subMatrix, subColTypes)

	case ty.Kind == types.KRecord:
		return c.dropColumn(matrix, colTypes)

	default:
		// Int/Float/String/Ref: an infinite or opaque domain. Only a
		// catch-all row can make this column exhaustive.
		defMatrix := c.defaultMatrix(matrix)
		missing, ok, deferred = c.isExhaustive(defMatrix, colTypes[1:])
		if !ok && missing == "" {
			missing = "_"
		}
		return missing, ok, deferred
	}
}

func (c *checker) dropColumn(matrix []patternRow, colTypes []*types.Monotype) (string, bool, bool) {
	newMatrix := make([]patternRow, len(matrix))
	for i, r := range matrix {
		newMatrix[i] = r[1:]
	}
	return c.isExhaustive(newMatrix, colTypes[1:])
}

func (c *checker) checkSignature(matrix []patternRow, colTypes []*types.Monotype, ty *types.Monotype, siblings []string, arities map[string]int) (string, bool, bool) {
	used := map[string]bool{}
	for _, row := range matrix {
		if name, _, ok := c.ctorOf(row[0], ty); ok {
			used[name] = true
		}
	}

	complete := true
	for _, s := range siblings {
		if !used[s] {
			complete = false
			break
		}
	}

	if !complete {
		defMatrix := c.defaultMatrix(matrix)
		missing, ok, deferred := c.isExhaustive(defMatrix, colTypes[1:])
		if !ok && missing == "" {
			for _, s := range siblings {
				if !used[s] {
					missing = s
					break
				}
			}
		}
		return missing, ok, deferred
	}

	anyDeferred := false
	for _, name := range siblings {
		arity := arities[name]
		subMatrix := c.specialize(matrix, name, arity)
		subColTypes, err := c.subColumnTypes(ty, name, arity)
		if err != nil {
			continue
		}
		missing, ok, deferred := c.isExhaustive(subMatrix, append(subColTypes, colTypes[1:]...))
		if deferred {
			anyDeferred = true
			continue
		}
		if !ok {
			return fmt.Sprintf("%s(...)", name), false, false
		}
	}
	return "", true, anyDeferred
}

// specialize keeps rows whose head matches name (or is a wildcard),
// replacing the head column with name's sub-patterns (or arity-many
// wildcards for a wildcard row) — the S(c, P) operation of Maranget's
// algorithm.
func (c *checker) specialize(matrix []patternRow, name string, arity int) []patternRow {
	var out []patternRow
	for _, row := range matrix {
		head := row[0]
		if isWildcardLike(head) {
			out = append(out, append(wildcards(arity), row[1:]...))
			continue
		}
		if vp, ok := head.(*core.VariantPattern); ok && vp.Name == name {
			out = append(out, append(append(patternRow{}, vp.Args...), row[1:]...))
			continue
		}
		if lp, ok := head.(*core.LiteralPattern); ok && lp.Kind == core.LitBool && lp.Raw == name {
			out = append(out, row[1:])
		}
	}
	return out
}

func (c *checker) specializeTuple(matrix []patternRow, arity int) []patternRow {
	var out []patternRow
	for _, row := range matrix {
		head := row[0]
		if isWildcardLike(head) {
			out = append(out, append(wildcards(arity), row[1:]...))
			continue
		}
		if tp, ok := head.(*core.TuplePattern); ok {
			out = append(out, append(append(patternRow{}, tp.Items...), row[1:]...))
		}
	}
	return out
}

// defaultMatrix keeps only rows whose head is a wildcard/variable,
// dropping the head column — the D(P) operation.
func (c *checker) defaultMatrix(matrix []patternRow) []patternRow {
	var out []patternRow
	for _, row := range matrix {
		if isWildcardLike(row[0]) {
			out = append(out, row[1:])
		}
	}
	return out
}

func isWildcardLike(p core.Pattern) bool {
	switch p.(type) {
	case *core.WildcardPattern, *core.VarPattern:
		return true
	default:
		return false
	}
}

func wildcards(n int) patternRow {
	row := make(patternRow, n)
	for i := range row {
		row[i] = &core.WildcardPattern{}
	}
	return row
}

func subArgsOf(p core.Pattern, arity int) patternRow {
	switch p := p.(type) {
	case *core.VariantPattern:
		return p.Args
	case *core.TuplePattern:
		return p.Items
	default:
		return wildcards(arity)
	}
}

// ctorOf reports the constructor name a pattern's head denotes against
// ty, if any.
func (c *checker) ctorOf(p core.Pattern, ty *types.Monotype) (string, int, bool) {
	switch p := p.(type) {
	case *core.VariantPattern:
		return p.Name, len(p.Args), true
	case *core.LiteralPattern:
		if p.Kind == core.LitBool {
			return p.Raw, 0, true
		}
	}
	return "", 0, false
}

func (c *checker) constructorArity(name string) int {
	if name == core.NilName {
		return 0
	}
	if name == core.ConsName {
		return 2
	}
	if info, ok := c.variants[name]; ok {
		return len(info.ArgTypes)
	}
	return 0
}

// subColumnTypes resolves the argument types a specialization on name
// introduces, mirroring instantiateConstructor but against an already
// fixed (not freshly instantiated) scrutinee type ty, so the siblings'
// type-variable instantiations line up with ty's own arguments.
func (c *checker) subColumnTypes(ty *types.Monotype, name string, arity int) ([]*types.Monotype, error) {
	switch name {
	case core.NilName, core.ConsName:
		elem := ty.Args[0]
		if name == core.ConsName {
			return []*types.Monotype{elem, types.TList(elem)}, nil
		}
		return nil, nil
	}
	info, ok := c.variants[name]
	if !ok {
		return wildcardTypes(arity), nil
	}
	scope := make(map[string]*types.Var, len(info.Params))
	for i, p := range info.Params {
		if i < len(ty.Args) {
			if ty.Args[i].Kind == types.KVar {
				scope[p] = ty.Args[i].Var
			}
		}
	}
	argTypes := make([]*types.Monotype, len(info.ArgTypes))
	for i, at := range info.ArgTypes {
		rt, err := c.resolveTypeExpr(at, scope)
		if err != nil {
			return nil, err
		}
		argTypes[i] = rt
	}
	return argTypes, nil
}

func wildcardTypes(n int) []*types.Monotype {
	out := make([]*types.Monotype, n)
	for i := range out {
		out[i] = types.TPrim(types.Unit)
	}
	return out
}
