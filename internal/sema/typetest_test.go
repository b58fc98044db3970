package sema

import (
	"testing"

	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/types"
)

func TestTypeTestFoldsWhenStaticallyKnown(t *testing.T) {
	f := newFixture(t)
	base := f.class("Base", types.NoTypeID, false)
	sealed := f.class("SealedDerived", base, true)
	unrelated := f.class("Unrelated", types.NoTypeID, true)

	got := f.mustFormat(f.binary(Context{}, hir.OpIs, f.local("x", sealed), f.typeRef(base)))
	if got != "true" {
		t.Fatalf("always: %s", got)
	}
	f.expectWarning(diag.SemaAlwaysOfType)

	got = f.mustFormat(f.binary(Context{}, hir.OpIs, f.local("u", unrelated), f.typeRef(base)))
	if got != "false" {
		t.Fatalf("never: %s", got)
	}
	f.expectWarning(diag.SemaNeverOfType)

	got = f.mustFormat(f.binary(Context{}, hir.OpAs, f.local("u", unrelated), f.typeRef(base)))
	if got != "null:Base" {
		t.Fatalf("never as: %s", got)
	}
}

func TestTypeTestAtRunTime(t *testing.T) {
	f := newFixture(t)
	base := f.class("Base", types.NoTypeID, false)
	sealed := f.class("SealedDerived", base, true)

	got := f.mustFormat(f.binary(Context{}, hir.OpIs, f.local("b", base), f.typeRef(sealed)))
	if got != "(is:bool b SealedDerived)" {
		t.Fatalf("is: %s", got)
	}
	got = f.mustFormat(f.binary(Context{}, hir.OpAs, f.local("o", f.b.Object), f.typeRef(base)))
	if got != "(as:Base o Base)" {
		t.Fatalf("as: %s", got)
	}
	got = f.mustFormat(f.binary(Context{}, hir.OpIs, f.local("n", f.types.Nullable(f.b.Int32)), f.typeRef(f.b.Int32)))
	if got != "(has-value n)" {
		t.Fatalf("nullable: %s", got)
	}
	f.expectNoDiagnostics()
}

func TestTypeTestRejections(t *testing.T) {
	f := newFixture(t)
	res, err := f.binary(Context{Unsafe: true}, hir.OpIs, f.local("p", f.types.Pointer(f.b.Int32)), f.typeRef(f.b.Object))
	f.expectCode(res, err, diag.SemaPointerInTypeTest)

	res, err = f.binary(Context{}, hir.OpAs, f.local("o", f.b.Object), f.typeRef(f.b.Int32))
	f.expectCode(res, err, diag.SemaReferenceRequiredForTypeTest)

	res, err = f.binary(Context{}, hir.OpIs, f.local("o", f.b.Object), f.local("x", f.b.Int32))
	f.expectCode(res, err, diag.SemaBadOperatorForTypes)
}

func TestTypeTestOnUnion(t *testing.T) {
	f := newFixture(t)
	u := f.types.RegisterUnion(types.UnionInfo{Name: "U", Members: []types.UnionMember{
		{Tag: "I", Type: f.b.Int32},
		{Tag: "S", Type: f.b.String},
	}})

	got := f.mustFormat(f.binary(Context{}, hir.OpIs, f.local("u", u), f.typeRef(f.b.Int32)))
	if got != "(tag-test I u)" {
		t.Fatalf("is: %s", got)
	}
	got = f.mustFormat(f.binary(Context{}, hir.OpAs, f.local("u", u), f.typeRef(f.b.String)))
	if want := "(let $1 u (if:string (tag-test S $1) (tag-payload S:string $1) null:string))"; got != want {
		t.Fatalf("as reference:\n got %s\nwant %s", got, want)
	}
	got = f.mustFormat(f.binary(Context{}, hir.OpAs, f.local("u", u), f.typeRef(f.types.Nullable(f.b.Int32))))
	if want := "(let $2 u (if:int32? (tag-test I $2) (wrap:int32? (tag-payload I:int32 $2)) null:int32?))"; got != want {
		t.Fatalf("as nullable:\n got %s\nwant %s", got, want)
	}
	f.expectNoDiagnostics()

	got = f.mustFormat(f.binary(Context{}, hir.OpIs, f.local("u", u), f.typeRef(f.b.Bool)))
	if got != "false" {
		t.Fatalf("non-member: %s", got)
	}
	f.expectWarning(diag.SemaNeverOfType)
}

func TestAsBoxesValueTypes(t *testing.T) {
	f := newFixture(t)
	got := f.mustFormat(f.binary(Context{}, hir.OpAs, f.local("x", f.b.Int32), f.typeRef(f.b.Object)))
	if got != "(box:object x)" {
		t.Fatalf("got %s", got)
	}
	f.expectWarning(diag.SemaAlwaysOfType)
}
