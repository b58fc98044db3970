package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Bool == NoTypeID || b.Int32 == NoTypeID || b.Object == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	if got := in.MustLookup(b.Uint16); got.Kind != KindUint || got.Width != Width16 {
		t.Fatalf("uint16 descriptor = %+v", got)
	}
	if in.Intern(MakeInt(Width32)) != b.Int32 {
		t.Fatalf("structural descriptors must be deduplicated")
	}
}

func TestNullableDoesNotNest(t *testing.T) {
	in := NewInterner()
	n := in.Nullable(in.Builtins().Int32)
	if in.Nullable(n) != n {
		t.Fatalf("T?? must collapse to T?")
	}
}

func TestUnwrapReportsLayers(t *testing.T) {
	in := NewInterner()
	i32 := in.Builtins().Int32
	id := in.Reference(in.Optional(in.Nullable(i32)))
	got, layers := in.Unwrap(id)
	if got != i32 {
		t.Fatalf("Unwrap = %s", Label(in, got))
	}
	if !layers.Has(LayerReference) || !layers.Has(LayerNullable) || !layers.Has(LayerOptional) {
		t.Fatalf("layers = %b", layers)
	}
	if in.StripModifiers(id) != in.Nullable(i32) {
		t.Fatalf("StripModifiers must keep the nullable layer")
	}
}

func TestHierarchyQueries(t *testing.T) {
	in := NewInterner()
	iface := in.RegisterNominal(KindInterface, NominalInfo{Name: "IShape"})
	base := in.RegisterNominal(KindClass, NominalInfo{Name: "Base", Interfaces: []TypeID{iface}})
	derived := in.RegisterNominal(KindClass, NominalInfo{Name: "Derived", Base: base, Sealed: true})
	other := in.RegisterNominal(KindClass, NominalInfo{Name: "Other"})

	if !in.IsSubclassOf(derived, base) || in.IsSubclassOf(base, derived) {
		t.Fatalf("subclass relation broken")
	}
	if !in.IsAssignableTo(derived, iface) {
		t.Fatalf("Derived must implement IShape through Base")
	}
	if !in.IsAssignableTo(derived, in.Builtins().Object) {
		t.Fatalf("classes are assignable to object")
	}
	if in.IsAssignableTo(other, base) {
		t.Fatalf("unrelated classes must not be assignable")
	}
	if !in.IsAssignableTo(in.Builtins().Null, base) {
		t.Fatalf("null is assignable to reference types")
	}
	if !in.IsSealed(derived) || in.IsSealed(base) {
		t.Fatalf("sealed flags not honoured")
	}
	if got := Label(in, in.Pointer(derived)); got != "Derived*" {
		t.Fatalf("label = %q", got)
	}
}

func TestSizeOf(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	st := in.RegisterNominal(KindStruct, NominalInfo{Name: "Pair", Size: 8})
	cases := []struct {
		id   TypeID
		want uint32
		ok   bool
	}{
		{b.Int8, 1, true},
		{b.Char, 2, true},
		{b.Float64, 8, true},
		{b.Decimal, 16, true},
		{st, 8, true},
		{in.Pointer(b.Void), 8, true},
		{b.Void, 0, false},
		{b.Object, 0, false},
	}
	for _, tc := range cases {
		got, ok := in.SizeOf(tc.id)
		if got != tc.want || ok != tc.ok {
			t.Errorf("SizeOf(%s) = %d, %v; want %d, %v", Label(in, tc.id), got, ok, tc.want, tc.ok)
		}
	}
}
