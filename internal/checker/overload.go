package checker

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mbcrawfo/vibefun/internal/diagnostic"
	"github.com/mbcrawfo/vibefun/internal/token"
	"github.com/mbcrawfo/vibefun/internal/types"
)

// funcArity counts the curried parameter chain of a function type —
// `a -> b -> c` has arity 2. A non-function type has arity 0.
func funcArity(t *types.Monotype) int {
	t = types.Prune(t)
	n := 0
	for t.Kind == types.KFunc {
		n++
		t = types.Prune(t.Result)
	}
	return n
}

// resolveOverload picks the external overload whose arity matches
// argc, per spec.md §4.4.5 ("overloaded externals are resolved
// structurally by call-site argument count, not by argument type").
// Zero matches reports CodeNoMatchingOverload; more than one (a
// malformed external block with two same-arity members) reports
// CodeAmbiguousOverload rather than silently picking the first.
func (c *checker) resolveOverload(name string, argc int, loc token.Location) (*types.Monotype, error) {
	candidates := c.externals[name]
	var matches []overload
	for _, o := range candidates {
		if o.Arity == argc {
			matches = append(matches, o)
		}
	}
	switch len(matches) {
	case 0:
		return nil, c.errorf(loc, diagnostic.CodeNoMatchingOverload, "",
			"no overload of external `%s` accepts %d argument(s); allowed arities: %s",
			name, argc, arityList(candidates))
	case 1:
		return c.subst.Instantiate(types.Generalize(matches[0].Type, 0)), nil
	default:
		return nil, c.errorf(loc, diagnostic.CodeAmbiguousOverload, "",
			"ambiguous external `%s`: %d overloads accept %d argument(s)", name, len(matches), argc)
	}
}

// arityList formats the distinct arities an external's overload set
// accepts, in ascending order, for use in the VF4060 diagnostic (spec.md
// §4.4.5: "a typed error lists the valid arities").
func arityList(candidates []overload) string {
	seen := make(map[int]bool, len(candidates))
	var arities []int
	for _, o := range candidates {
		if !seen[o.Arity] {
			seen[o.Arity] = true
			arities = append(arities, o.Arity)
		}
	}
	sort.Ints(arities)
	parts := make([]string, len(arities))
	for i, a := range arities {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, ", ")
}

// isOverloaded reports whether name was declared via one or more
// `external` blocks, so the checker can route application through
// resolveOverload instead of ordinary instantiation.
func (c *checker) isOverloaded(name string) bool {
	return len(c.externals[name]) > 0
}
