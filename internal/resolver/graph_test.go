package resolver

import "testing"

func TestCache_TopoOrder_DependencyBeforeDependent(t *testing.T) {
	c := NewCache()
	c.Put(&Module{Path: "a"})
	c.Put(&Module{Path: "b"})
	c.Put(&Module{Path: "c"})
	// a -> b -> c (a imports b, b imports c)
	c.AddEdge("a", "b", EdgeValue)
	c.AddEdge("b", "c", EdgeValue)

	order := c.TopoOrder()
	pos := make(map[string]int, len(order))
	for i, v := range order {
		pos[v] = i
	}
	if !(pos["c"] < pos["b"] && pos["b"] < pos["a"]) {
		t.Fatalf("expected order c, b, a; got %v", order)
	}
}

func TestCache_Cycles_DetectsRealCycle(t *testing.T) {
	// spec.md §8 scenario 8: a real cycle (A -> B -> A via a value edge).
	c := NewCache()
	c.Put(&Module{Path: "A"})
	c.Put(&Module{Path: "B"})
	c.AddEdge("A", "B", EdgeValue)
	c.AddEdge("B", "A", EdgeValue)

	cycles := c.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("expected exactly one cycle, got %d: %v", len(cycles), cycles)
	}
	if len(cycles[0].Members) != 2 {
		t.Fatalf("expected a 2-member cycle, got %v", cycles[0].Members)
	}
}

func TestCache_Cycles_TypeOnlyCycleIsSilent(t *testing.T) {
	// spec.md §8 scenario 8: "Files A and B each `import type` from the
	// other. No VF5900 is emitted."
	c := NewCache()
	c.Put(&Module{Path: "A"})
	c.Put(&Module{Path: "B"})
	c.AddEdge("A", "B", EdgeTypeOnly)
	c.AddEdge("B", "A", EdgeTypeOnly)

	if cycles := c.Cycles(); len(cycles) != 0 {
		t.Fatalf("expected no cycles for an all-type-only SCC, got %v", cycles)
	}
}

func TestCache_Cycles_SelfEdge(t *testing.T) {
	c := NewCache()
	c.Put(&Module{Path: "A"})
	c.AddEdge("A", "A", EdgeValue)

	cycles := c.Cycles()
	if len(cycles) != 1 || len(cycles[0].Members) != 1 {
		t.Fatalf("expected a 1-member self-cycle, got %v", cycles)
	}
}

func TestCache_TopoOrder_InsertionStableWithinSCC(t *testing.T) {
	c := NewCache()
	c.Put(&Module{Path: "A"})
	c.Put(&Module{Path: "B"})
	c.Put(&Module{Path: "C"})
	c.AddEdge("A", "B", EdgeValue)
	c.AddEdge("B", "A", EdgeValue)
	c.AddEdge("C", "A", EdgeValue)

	order := c.TopoOrder()
	pos := make(map[string]int, len(order))
	for i, v := range order {
		pos[v] = i
	}
	if !(pos["A"] < pos["B"]) {
		t.Fatalf("expected insertion order A before B within the cycle, got %v", order)
	}
	if !(pos["B"] < pos["C"]) {
		t.Fatalf("expected the A/B cycle before its dependent C, got %v", order)
	}
}
