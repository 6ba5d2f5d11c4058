package types

import "testing"

func TestUnify_PrimitivesMatch(t *testing.T) {
	s := NewSubst()
	if err := s.Unify(TPrim(Int), TPrim(Int)); err != nil {
		t.Fatalf("expected Int to unify with Int, got %v", err)
	}
}

func TestUnify_PrimitivesMismatchFails(t *testing.T) {
	s := NewSubst()
	err := s.Unify(TPrim(Int), TPrim(String))
	if err == nil {
		t.Fatal("expected Int/String to fail unification")
	}
	if _, ok := err.(UnificationError); !ok {
		t.Fatalf("expected UnificationError, got %T", err)
	}
}

func TestUnify_VariableBindsToConcreteType(t *testing.T) {
	s := NewSubst()
	v := s.FreshType()
	if err := s.Unify(v, TPrim(Int)); err != nil {
		t.Fatalf("unify failed: %v", err)
	}
	if got := Prune(v); got.Kind != KPrim || got.Prim != Int {
		t.Fatalf("expected v to prune to Int, got %s", got)
	}
}

func TestUnify_OccursCheckRejectsSelfReference(t *testing.T) {
	s := NewSubst()
	v := s.FreshType()
	listOfV := TList(v)
	err := s.Unify(v, listOfV)
	if err == nil {
		t.Fatal("expected an occurs-check failure")
	}
	if _, ok := err.(OccursCheckError); !ok {
		t.Fatalf("expected OccursCheckError, got %T", err)
	}
}

func TestUnify_ClosedRecordsRequireExactFields(t *testing.T) {
	s := NewSubst()
	a := TRecord([]RecordField{{Name: "x", Type: TPrim(Int)}}, nil)
	b := TRecord([]RecordField{{Name: "x", Type: TPrim(Int)}, {Name: "y", Type: TPrim(Int)}}, nil)
	if err := s.Unify(a, b); err == nil {
		t.Fatal("expected unification to fail: closed records with different field sets")
	}
}

func TestUnify_OpenRecordClosesToConcreteFields(t *testing.T) {
	s := NewSubst()
	row := s.Fresh()
	open := TRecord([]RecordField{{Name: "x", Type: TPrim(Int)}}, row)
	closed := TRecord([]RecordField{{Name: "x", Type: TPrim(Int)}, {Name: "y", Type: TPrim(Bool)}}, nil)
	if err := s.Unify(open, closed); err != nil {
		t.Fatalf("expected an open row to widen to the closed record's fields, got %v", err)
	}
}

func TestUnify_FunctionTypesUnifyArgAndResult(t *testing.T) {
	s := NewSubst()
	v1, v2 := s.FreshType(), s.FreshType()
	f1 := TFunc(v1, TPrim(Bool))
	f2 := TFunc(TPrim(Int), v2)
	if err := s.Unify(f1, f2); err != nil {
		t.Fatalf("unify failed: %v", err)
	}
	if got := Prune(v1); got.Kind != KPrim || got.Prim != Int {
		t.Fatalf("expected v1 to unify to Int, got %s", got)
	}
	if got := Prune(v2); got.Kind != KPrim || got.Prim != Bool {
		t.Fatalf("expected v2 to unify to Bool, got %s", got)
	}
}

func TestGeneralize_OnlyQuantifiesVarsAboveLevel(t *testing.T) {
	s := NewSubst()
	outer := s.Fresh() // level 1
	s.EnterLevel()
	inner := s.Fresh() // level 2
	ty := TFunc(TVar(outer), TVar(inner))
	sch := Generalize(ty, 1)
	if len(sch.Vars) != 1 || sch.Vars[0] != inner {
		t.Fatalf("expected only the level-2 variable to generalize, got %v", sch.Vars)
	}
}
