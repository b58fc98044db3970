package types

import "testing"

func TestUnifiedPrimitiveTypeTable(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cases := []struct {
		a, b TypeID
		want TypeID
		u    Unification
	}{
		{b.Int8, b.Int8, b.Int8, UnifyOK},
		{b.Int8, b.Int64, b.Int64, UnifyOK},
		{b.Uint8, b.Uint32, b.Uint32, UnifyOK},
		{b.Uint8, b.Int16, b.Int16, UnifyOK},
		{b.Int8, b.Uint8, b.Int16, UnifyOK},
		{b.Int32, b.Uint32, b.Int64, UnifyOK},
		{b.Int16, b.Uint32, b.Int64, UnifyOK},
		{b.Int64, b.Uint32, b.Int64, UnifyOK},
		{b.Int64, b.Float32, b.Float32, UnifyOK},
		{b.Float32, b.Float64, b.Float64, UnifyOK},
		{b.Uint64, b.Decimal, b.Decimal, UnifyOK},
		{b.Int64, b.Uint64, NoTypeID, UnifyAmbiguous},
		{b.Int8, b.Uint64, NoTypeID, UnifyAmbiguous},
		{b.Float64, b.Decimal, NoTypeID, UnifyNone},
		{b.Bool, b.Int32, NoTypeID, UnifyNone},
		{b.Char, b.Int32, NoTypeID, UnifyNone},
	}
	for _, tc := range cases {
		got, u := in.UnifiedPrimitiveType(tc.a, tc.b)
		if got != tc.want || u != tc.u {
			t.Errorf("Unified(%s, %s) = %s/%s; want %s/%s",
				Label(in, tc.a), Label(in, tc.b), Label(in, got), u, Label(in, tc.want), tc.u)
		}
	}
}

func TestUnifiedPrimitiveTypeSymmetric(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	all := []TypeID{b.Int8, b.Uint8, b.Int16, b.Uint16, b.Int32, b.Uint32, b.Int64, b.Uint64, b.Float32, b.Float64, b.Decimal}
	for _, x := range all {
		for _, y := range all {
			r1, u1 := in.UnifiedPrimitiveType(x, y)
			r2, u2 := in.UnifiedPrimitiveType(y, x)
			if r1 != r2 || u1 != u2 {
				t.Fatalf("asymmetric for %s, %s: %s/%s vs %s/%s",
					Label(in, x), Label(in, y), Label(in, r1), u1, Label(in, r2), u2)
			}
			if in.WidensTo(x, y) && r1 != y {
				t.Fatalf("%s widens to %s but unified to %s", Label(in, x), Label(in, y), Label(in, r1))
			}
		}
	}
}
