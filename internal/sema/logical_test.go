package sema

import (
	"testing"

	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

func TestShortCircuitOnBool(t *testing.T) {
	f := newFixture(t)
	nb := f.local("nb", f.types.Nullable(f.b.Bool))

	got := f.mustFormat(f.binary(Context{}, hir.OpLogicalAnd, f.local("a", f.b.Bool), f.local("b", f.b.Bool)))
	if got != "(&&:bool a b)" {
		t.Fatalf("bool: %s", got)
	}
	got = f.mustFormat(f.binary(Context{}, hir.OpLogicalOr, nb, f.local("a", f.b.Bool)))
	if got != "(||:bool (value-or-default:bool nb) a)" {
		t.Fatalf("nullable bool: %s", got)
	}
	got = f.mustFormat(f.binary(Context{}, hir.OpImplies, f.local("p", f.b.Bool), f.local("q", f.b.Bool)))
	if got != "(==>:bool p q)" {
		t.Fatalf("implies: %s", got)
	}

	res, err := f.binary(Context{}, hir.OpLogicalAnd, f.local("x", f.b.Int32), f.local("y", f.b.Int32))
	f.expectCode(res, err, diag.SemaBadOperatorForTypes)
}

func userBoolType(f *fixture, symbols ...string) types.TypeID {
	t := f.structType("T", 4)
	info, _ := f.types.NominalInfo(t)
	for _, sym := range symbols {
		decl := types.OperatorDecl{Symbol: sym, Decl: source.Span{Start: 10, End: 20}}
		switch sym {
		case "true", "false":
			decl.Params, decl.Result = []types.TypeID{t}, f.b.Bool
		default:
			decl.Params, decl.Result = []types.TypeID{t, t}, t
		}
		info.Operators = append(info.Operators, decl)
	}
	return t
}

func TestShortCircuitOnUserType(t *testing.T) {
	f := newFixture(t)
	ty := userBoolType(f, "&", "|", "true", "false")
	x, y := f.local("x", ty), f.local("y", ty)

	got := f.mustFormat(f.binary(Context{}, hir.OpLogicalAnd, x, y))
	want := "(let $1 x (if:T (call T.false:bool $1) $1 (call T.&:T $1 y)))"
	if got != want {
		t.Fatalf("and:\n got %s\nwant %s", got, want)
	}
	got = f.mustFormat(f.binary(Context{}, hir.OpLogicalOr, x, y))
	want = "(let $2 x (if:T (call T.true:bool $2) $2 (call T.|:T $2 y)))"
	if got != want {
		t.Fatalf("or:\n got %s\nwant %s", got, want)
	}
	f.expectNoDiagnostics()
}

func TestShortCircuitMissingTrueFalsePair(t *testing.T) {
	f := newFixture(t)
	ty := userBoolType(f, "&", "true")
	res, err := f.binary(Context{}, hir.OpLogicalAnd, f.local("x", ty), f.local("y", ty))
	f.expectCode(res, err, diag.SemaMissingTrueFalseOperatorPair)

	d := f.bag.Items()[0]
	if len(d.Notes) != 1 || d.Notes[0].Span.Start != 10 {
		t.Fatalf("expected a note at the existing declaration, got %+v", d.Notes)
	}
}

func TestShortCircuitMismatchedSignature(t *testing.T) {
	f := newFixture(t)
	ty := f.structType("T", 4)
	info, _ := f.types.NominalInfo(ty)
	info.Operators = append(info.Operators,
		types.OperatorDecl{Symbol: "&", Params: []types.TypeID{ty, ty}, Result: f.b.Bool},
		types.OperatorDecl{Symbol: "true", Params: []types.TypeID{ty}, Result: f.b.Bool},
		types.OperatorDecl{Symbol: "false", Params: []types.TypeID{ty}, Result: f.b.Bool},
	)
	res, err := f.binary(Context{}, hir.OpLogicalAnd, f.local("x", ty), f.local("y", ty))
	f.expectCode(res, err, diag.SemaMismatchedBoolOperatorSignature)

	g := newFixture(t)
	only := userBoolType(g, "true", "false")
	res, err = g.binary(Context{}, hir.OpLogicalOr, g.local("x", only), g.local("y", only))
	g.expectCode(res, err, diag.SemaBadOperatorForTypes)
}
