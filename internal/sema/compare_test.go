package sema

import (
	"testing"

	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/types"
)

func TestEqualityAgainstNullOnNullable(t *testing.T) {
	f := newFixture(t)
	n := f.local("n", f.types.Nullable(f.b.Int32))

	if got := f.mustFormat(f.binary(Context{}, hir.OpEq, n, f.null())); got != "(!:bool (has-value n))" {
		t.Fatalf("eq: %s", got)
	}
	if got := f.mustFormat(f.binary(Context{}, hir.OpNe, f.null(), n)); got != "(has-value n)" {
		t.Fatalf("ne: %s", got)
	}
	f.expectNoDiagnostics()
}

func TestEqualityNullableAgainstLiteralUsesTemporary(t *testing.T) {
	f := newFixture(t)
	n := f.local("n", f.types.Nullable(f.b.Int32))

	got := f.mustFormat(f.binary(Context{}, hir.OpEq, n, f.intLit(5)))
	want := "(let $1 n (&&:bool (==:bool (value-or-default:int32 $1) 5:int32) (has-value $1)))"
	if got != want {
		t.Fatalf("eq:\n got %s\nwant %s", got, want)
	}

	got = f.mustFormat(f.binary(Context{}, hir.OpNe, f.intLit(5), n))
	want = "(let $2 n (||:bool (!=:bool (value-or-default:int32 $2) 5:int32) (!:bool (has-value $2))))"
	if got != want {
		t.Fatalf("ne:\n got %s\nwant %s", got, want)
	}
}

func TestEqualityOnReferences(t *testing.T) {
	f := newFixture(t)
	base := f.class("Base", types.NoTypeID, false)
	derived := f.class("Derived", base, false)
	other := f.class("Other", types.NoTypeID, true)
	iface := f.types.RegisterNominal(types.KindInterface, types.NominalInfo{Name: "I"})

	got := f.mustFormat(f.binary(Context{}, hir.OpEq, f.local("d", derived), f.local("b", base)))
	if got != "(==:bool d b)" {
		t.Fatalf("related: %s", got)
	}
	got = f.mustFormat(f.binary(Context{}, hir.OpNe, f.local("o", other), f.local("i", iface)))
	if got != "(!=:bool o i)" {
		t.Fatalf("interface: %s", got)
	}
	got = f.mustFormat(f.binary(Context{}, hir.OpEq, f.local("o", f.b.Object), f.null()))
	if got != "(==:bool o null:object)" {
		t.Fatalf("null: %s", got)
	}

	res, err := f.binary(Context{}, hir.OpEq, f.local("o", other), f.local("b", base))
	f.expectCode(res, err, diag.SemaBadReferenceComparison)

	res, err = f.binary(Context{}, hir.OpLt, f.local("s", f.b.String), f.local("t", f.b.String))
	if CodeOf(err) != diag.SemaBadOperatorForTypes || res != nil {
		t.Fatalf("relational on strings must be rejected, got %v", err)
	}
}

func TestEqualityOnStructs(t *testing.T) {
	f := newFixture(t)
	plain := f.structType("P", 8)
	res, err := f.binary(Context{}, hir.OpEq, f.local("a", plain), f.local("b", plain))
	f.expectCode(res, err, diag.SemaBadOperatorForTypes)

	g := newFixture(t)
	s := g.structType("S", 8)
	info, _ := g.types.NominalInfo(s)
	info.Operators = append(info.Operators, types.OperatorDecl{Symbol: "==", Params: []types.TypeID{s, s}, Result: g.b.Bool})
	got := g.mustFormat(g.binary(Context{}, hir.OpEq, g.local("a", s), g.local("b", s)))
	if got != "(call S.==:bool a b)" {
		t.Fatalf("user operator: %s", got)
	}
}

func TestComparisonUnification(t *testing.T) {
	f := newFixture(t)
	got := f.mustFormat(f.binary(Context{}, hir.OpLt, f.local("b", f.b.Uint8), f.intLit(7)))
	if got != "(<:bool b 7:uint8)" {
		t.Fatalf("got %s", got)
	}
	got = f.mustFormat(f.binary(Context{}, hir.OpGe, f.local("c", f.b.Char), f.local("d", f.b.Char)))
	if got != "(>=:bool c d)" {
		t.Fatalf("char: %s", got)
	}
	f.expectNoDiagnostics()

	res, err := f.binary(Context{}, hir.OpEq, f.local("x", f.b.Int64), f.local("y", f.b.Uint64))
	f.expectCode(res, err, diag.SemaAmbiguousOperator)
}

func TestUselessLiteralComparison(t *testing.T) {
	f := newFixture(t)
	got := f.mustFormat(f.binary(Context{}, hir.OpLt, f.local("b", f.b.Uint8), f.intLit(300)))
	if got != "(<:bool (widen:int32 b) 300:int32)" {
		t.Fatalf("got %s", got)
	}
	f.expectWarning(diag.SemaUselessLiteralComparison)

	g := newFixture(t)
	g.mustFormat(g.binary(Context{}, hir.OpAdd, g.local("b", g.b.Uint8), g.intLit(300)))
	g.expectNoDiagnostics()
	// a comparison that fails to type reports only the failure
	h := newFixture(t)
	res, err := h.binary(Context{}, hir.OpEq, h.local("w", h.b.Uint64), h.intLit(-1))
	h.expectCode(res, err, diag.SemaAmbiguousOperator)
	if h.bag.Len() != 1 {
		t.Fatalf("diagnostics = %v", h.bag.Codes())
	}
}

func TestPointerComparisonNeedsUnsafe(t *testing.T) {
	f := newFixture(t)
	ptr := f.types.Pointer(f.b.Int32)
	res, err := f.binary(Context{}, hir.OpEq, f.local("p", ptr), f.local("q", ptr))
	f.expectCode(res, err, diag.SemaUnsafeNeeded)

	got := f.mustFormat(f.binary(Context{Unsafe: true}, hir.OpLt, f.local("p", ptr), f.local("q", ptr)))
	if got != "(<:bool p q)" {
		t.Fatalf("got %s", got)
	}
}
