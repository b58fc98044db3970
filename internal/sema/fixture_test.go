package sema

import (
	"slices"
	"testing"

	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

type fixture struct {
	t       *testing.T
	types   *types.Interner
	b       types.Builtins
	bag     *diag.Bag
	checker *Checker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	in := types.NewInterner()
	bag := diag.NewBag(100)
	return &fixture{
		t:       t,
		types:   in,
		b:       in.Builtins(),
		bag:     bag,
		checker: New(Options{Types: in, Reporter: diag.BagReporter{Bag: bag}}),
	}
}

func (f *fixture) local(name string, ty types.TypeID) *hir.Expr {
	return hir.NewVarRef(name, hir.VarLocal, ty, source.Span{})
}

func (f *fixture) constant(name string, ty types.TypeID) *hir.Expr {
	return hir.NewVarRef(name, hir.VarConst, ty, source.Span{})
}

func (f *fixture) intLit(v int64) *hir.Expr {
	return hir.IntLiteral(v, f.b.Int32, source.Span{})
}

func (f *fixture) floatLit(v float64) *hir.Expr {
	return hir.NewLiteral(hir.LiteralData{Kind: hir.LitFloat, Float: v}, f.b.Float64, source.Span{})
}

func (f *fixture) null() *hir.Expr {
	return hir.NullLiteral(f.b.Null, source.Span{})
}

func (f *fixture) typeRef(ty types.TypeID) *hir.Expr {
	return hir.NewTypeRef(ty, source.Span{})
}

func (f *fixture) binary(ctx Context, op hir.BinaryOp, l, r *hir.Expr) (*hir.Expr, error) {
	f.t.Helper()
	return f.checker.Binary(ctx, op, l, r, source.Span{})
}

func (f *fixture) unary(ctx Context, op hir.UnaryOp, x *hir.Expr) (*hir.Expr, error) {
	f.t.Helper()
	return f.checker.Unary(ctx, op, x, source.Span{})
}

// mustFormat fails the test on error and returns the rendered tree.
func (f *fixture) mustFormat(res *hir.Expr, err error) string {
	f.t.Helper()
	if err != nil {
		f.t.Fatalf("unexpected error: %v (diagnostics %v)", err, f.bag.Codes())
	}
	if res == nil {
		f.t.Fatalf("nil result without error")
	}
	if hir.Aliased(res) {
		f.t.Fatalf("result tree reuses a node: %s", hir.Format(f.types, res))
	}
	return hir.Format(f.types, res)
}

// expectCode checks err carries code and that it was reported.
func (f *fixture) expectCode(res *hir.Expr, err error, code diag.Code) {
	f.t.Helper()
	if err == nil {
		f.t.Fatalf("expected %s, got %s", code.ID(), hir.Format(f.types, res))
	}
	if res != nil {
		f.t.Fatalf("error result must not carry a node")
	}
	if got := CodeOf(err); got != code {
		f.t.Fatalf("expected %s, got %v", code.ID(), err)
	}
	if !slices.Contains(f.bag.Codes(), code.ID()) {
		f.t.Fatalf("%s not reported, bag has %v", code.ID(), f.bag.Codes())
	}
}

func (f *fixture) expectNoDiagnostics() {
	f.t.Helper()
	if f.bag.Len() != 0 {
		f.t.Fatalf("expected no diagnostics, got %v", f.bag.Codes())
	}
}

func (f *fixture) expectWarning(code diag.Code) {
	f.t.Helper()
	for _, d := range f.bag.Items() {
		if d.Code == code && d.Severity == diag.SevWarning {
			return
		}
	}
	f.t.Fatalf("expected warning %s, got %v", code.ID(), f.bag.Codes())
}

func (f *fixture) class(name string, base types.TypeID, sealed bool) types.TypeID {
	return f.types.RegisterNominal(types.KindClass, types.NominalInfo{Name: name, Base: base, Sealed: sealed})
}

func (f *fixture) structType(name string, size uint32, ops ...types.OperatorDecl) types.TypeID {
	return f.types.RegisterNominal(types.KindStruct, types.NominalInfo{Name: name, Size: size, Operators: ops})
}

func (f *fixture) enum(name string) types.TypeID {
	return f.types.RegisterEnum(types.EnumInfo{Name: name, Members: []types.EnumMember{{Name: "A", Value: 1}, {Name: "B", Value: 2}}})
}
