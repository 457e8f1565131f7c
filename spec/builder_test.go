package spec

import (
	"errors"
	"testing"

	sdkerrors "github.com/wippyai/contract-sdk/errors"
)

func addFn() FunctionEntry {
	return FunctionEntry{
		Name: "add",
		Params: []Param{
			{Name: "a", Type: PrimI32},
			{Name: "b", Type: PrimI32},
		},
		Return: PrimI32,
	}
}

func pointStruct() StructEntry {
	return StructEntry{
		Name: "Point",
		Fields: []Field{
			{Name: "x", Type: PrimU32},
			{Name: "y", Type: PrimU32},
		},
	}
}

func TestFinalizeValid(t *testing.T) {
	b := NewBuilder()
	b.Add(pointStruct())
	b.Add(addFn())
	b.Add(FunctionEntry{
		Name:   "origin",
		Return: Named{Name: "Point"},
	})

	s, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if got := len(s.Entries()); got != 3 {
		t.Errorf("expected 3 entries, got %d", got)
	}
	if _, ok := s.Lookup("Point"); !ok {
		t.Error("Point entry not found")
	}
	if got := len(s.Functions()); got != 2 {
		t.Errorf("expected 2 functions, got %d", got)
	}
}

func TestFinalizeUnresolvedReference(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{
			name: "param reference",
			entry: FunctionEntry{
				Name:   "f",
				Params: []Param{{Name: "p", Type: Named{Name: "Missing"}}},
				Return: PrimVoid,
			},
		},
		{
			name: "behind indirection",
			entry: FunctionEntry{
				Name:   "f",
				Return: Vec{Elem: Named{Name: "Missing"}},
			},
		},
		{
			name: "struct field",
			entry: StructEntry{
				Name:   "S",
				Fields: []Field{{Name: "inner", Type: Option{Elem: Named{Name: "Missing"}}}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder().Add(tt.entry).Finalize()
			var serr *sdkerrors.Error
			if !errors.As(err, &serr) || serr.Kind != sdkerrors.KindUnresolvedReference {
				t.Fatalf("expected unresolved_reference, got %v", err)
			}
		})
	}
}

func TestFinalizeReferenceToFunction(t *testing.T) {
	b := NewBuilder()
	b.Add(addFn())
	b.Add(FunctionEntry{Name: "g", Return: Named{Name: "add"}})
	_, err := b.Finalize()
	var serr *sdkerrors.Error
	if !errors.As(err, &serr) || serr.Kind != sdkerrors.KindUnresolvedReference {
		t.Fatalf("expected unresolved_reference for function target, got %v", err)
	}
}

func TestFinalizeDuplicateName(t *testing.T) {
	b := NewBuilder()
	b.Add(pointStruct())
	b.Add(EnumEntry{Name: "Point", Cases: []EnumCase{{Name: "A", Value: 0}}})
	_, err := b.Finalize()
	var serr *sdkerrors.Error
	if !errors.As(err, &serr) || serr.Kind != sdkerrors.KindDuplicateName {
		t.Fatalf("expected duplicate_name, got %v", err)
	}
}

func TestFinalizeSignatureConflict(t *testing.T) {
	other := addFn()
	other.Return = PrimU32

	b := NewBuilder()
	b.Add(addFn())
	b.Add(other)
	_, err := b.Finalize()
	var serr *sdkerrors.Error
	if !errors.As(err, &serr) || serr.Kind != sdkerrors.KindSignatureConflict {
		t.Fatalf("expected signature_conflict, got %v", err)
	}
}

func TestFinalizeIdenticalDuplicateCollapses(t *testing.T) {
	b := NewBuilder()
	b.Add(addFn())
	b.Add(addFn())
	s, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if got := len(s.Entries()); got != 1 {
		t.Errorf("expected duplicate to collapse to 1 entry, got %d", got)
	}
}

func TestFinalizeNormalizesVoidReturn(t *testing.T) {
	b := NewBuilder()
	b.Add(FunctionEntry{Name: "ping"})
	b.Add(FunctionEntry{Name: "ping", Return: PrimVoid})
	s, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	fns := s.Functions()
	if len(fns) != 1 {
		t.Fatalf("nil and void returns should collapse to 1 function, got %d", len(fns))
	}
	if !typeEqual(fns[0].Return, PrimVoid) {
		t.Errorf("Return = %v, want void", fns[0].Return)
	}
}

func TestFinalizeDuplicateCase(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{
			name: "union case name",
			entry: UnionEntry{Name: "Shape", Cases: []UnionCase{
				{Name: "dot"},
				{Name: "dot", Payload: PrimU32},
			}},
		},
		{
			name: "enum case name",
			entry: EnumEntry{Name: "Color", Cases: []EnumCase{
				{Name: "Red", Value: 0},
				{Name: "Red", Value: 1},
			}},
		},
		{
			name: "enum discriminant",
			entry: ErrorEnumEntry{Name: "Fault", Cases: []EnumCase{
				{Name: "A", Value: 3},
				{Name: "B", Value: 3},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder().Add(tt.entry).Finalize()
			var serr *sdkerrors.Error
			if !errors.As(err, &serr) || serr.Kind != sdkerrors.KindInvalidData {
				t.Fatalf("expected invalid_data, got %v", err)
			}
		})
	}
}

func TestFinalizeRecursiveType(t *testing.T) {
	t.Run("direct self-containment", func(t *testing.T) {
		b := NewBuilder()
		b.Add(StructEntry{
			Name:   "Node",
			Fields: []Field{{Name: "next", Type: Named{Name: "Node"}}},
		})
		_, err := b.Finalize()
		var serr *sdkerrors.Error
		if !errors.As(err, &serr) || serr.Kind != sdkerrors.KindRecursiveType {
			t.Fatalf("expected recursive_type, got %v", err)
		}
	})

	t.Run("mutual cycle", func(t *testing.T) {
		b := NewBuilder()
		b.Add(StructEntry{Name: "A", Fields: []Field{{Name: "b", Type: Named{Name: "B"}}}})
		b.Add(StructEntry{Name: "B", Fields: []Field{{Name: "a", Type: Named{Name: "A"}}}})
		_, err := b.Finalize()
		var serr *sdkerrors.Error
		if !errors.As(err, &serr) || serr.Kind != sdkerrors.KindRecursiveType {
			t.Fatalf("expected recursive_type, got %v", err)
		}
	})

	t.Run("cycle through result", func(t *testing.T) {
		b := NewBuilder()
		b.Add(UnionEntry{
			Name: "Tree",
			Cases: []UnionCase{
				{Name: "leaf"},
				{Name: "pair", Payload: Result{OK: Named{Name: "Tree"}, Err: PrimU32}},
			},
		})
		_, err := b.Finalize()
		var serr *sdkerrors.Error
		if !errors.As(err, &serr) || serr.Kind != sdkerrors.KindRecursiveType {
			t.Fatalf("expected recursive_type, got %v", err)
		}
	})

	t.Run("recursion through vec allowed", func(t *testing.T) {
		b := NewBuilder()
		b.Add(StructEntry{
			Name:   "Node",
			Fields: []Field{{Name: "children", Type: Vec{Elem: Named{Name: "Node"}}}},
		})
		if _, err := b.Finalize(); err != nil {
			t.Fatalf("indirect recursion should be allowed: %v", err)
		}
	})

	t.Run("recursion through option allowed", func(t *testing.T) {
		b := NewBuilder()
		b.Add(StructEntry{
			Name:   "Node",
			Fields: []Field{{Name: "next", Type: Option{Elem: Named{Name: "Node"}}}},
		})
		if _, err := b.Finalize(); err != nil {
			t.Fatalf("indirect recursion should be allowed: %v", err)
		}
	})
}

func TestStructuralEquality(t *testing.T) {
	s1, err := NewBuilder().Add(pointStruct()).Add(addFn()).Finalize()
	if err != nil {
		t.Fatal(err)
	}
	// Same entries, different declaration order.
	s2, err := NewBuilder().Add(addFn()).Add(pointStruct()).Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(s1, s2) {
		t.Error("specs with reordered entries should be structurally equal")
	}

	changed := pointStruct()
	changed.Fields[1].Type = PrimI32
	s3, err := NewBuilder().Add(changed).Add(addFn()).Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if Equal(s1, s3) {
		t.Error("specs with differing field types should not be equal")
	}
}

func TestSignatureString(t *testing.T) {
	got := Signature(addFn())
	want := "add(a: i32, b: i32) -> i32"
	if got != want {
		t.Errorf("Signature = %q, want %q", got, want)
	}

	got = Signature(FunctionEntry{Name: "init", Return: PrimVoid})
	if got != "init()" {
		t.Errorf("Signature = %q, want %q", got, "init()")
	}
}
