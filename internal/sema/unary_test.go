package sema

import (
	"testing"

	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
)

func TestNegation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		ctx  Context
		x    *hir.Expr
		want string
	}{
		{"small unsigned promotes", Context{}, f.local("b", f.b.Uint8), "(-:int32 (widen:int32 b))"},
		{"uint32 promotes to int64", Context{}, f.local("u", f.b.Uint32), "(-:int64 (widen:int64 u))"},
		{"char promotes", Context{}, f.local("c", f.b.Char), "(-:int32 (widen:int32 c))"},
		{"literal folds", Context{}, f.intLit(5), "-5:int32"},
		{"int32 minimum", Context{}, hir.IntLiteral(2147483648, f.b.Uint32, source.Span{}), "-2147483648:int32"},
		{"int64 minimum", Context{}, hir.NewLiteral(hir.LiteralData{Kind: hir.LitUint, Uint: 1 << 63}, f.b.Uint64, source.Span{}), "-9223372036854775808:int64"},
		{"float literal", Context{}, f.floatLit(2.5), "-2.5:float64"},
		{"checked", Context{Checked: true}, f.local("x", f.b.Int32), "(checked-:int32 0:int32 x)"},
		{"checked float", Context{Checked: true}, f.local("d", f.b.Float64), "(-:float64 d)"},
		{"nullable", Context{}, f.local("n", f.types.Nullable(f.b.Int16)), "(-:int32? (lift widen:int32? n))"},
	}
	for _, tt := range tests {
		if got := f.mustFormat(f.unary(tt.ctx, hir.OpNeg, tt.x)); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
	f.expectNoDiagnostics()

	res, err := f.unary(Context{}, hir.OpNeg, f.local("w", f.b.Uint64))
	f.expectCode(res, err, diag.SemaBadUnaryOperator)
	res, err = f.unary(Context{}, hir.OpNeg, f.local("p", f.b.Bool))
	f.expectCode(res, err, diag.SemaBadUnaryOperator)

	g := newFixture(t)
	res, err = g.unary(Context{}, hir.OpNeg, hir.IntLiteral(5, g.b.Uint64, source.Span{}))
	g.expectCode(res, err, diag.SemaBadUnaryOperator)
	if g.bag.Len() != 1 {
		t.Fatalf("diagnostics = %v", g.bag.Codes())
	}
}

func TestLogicalAndBitwiseNot(t *testing.T) {
	f := newFixture(t)
	e := f.enum("E")
	tests := []struct {
		name string
		op   hir.UnaryOp
		x    *hir.Expr
		want string
	}{
		{"not literal", hir.OpNot, hir.BoolLiteral(true, f.b.Bool, source.Span{}), "false"},
		{"not bool", hir.OpNot, f.local("p", f.b.Bool), "(!:bool p)"},
		{"not nullable", hir.OpNot, f.local("n", f.types.Nullable(f.b.Bool)), "(!:bool? n)"},
		{"complement enum", hir.OpBitNot, f.local("e", e), "(~:E e)"},
		{"complement small", hir.OpBitNot, f.local("b", f.b.Uint8), "(~:int32 (widen:int32 b))"},
		{"complement uint64", hir.OpBitNot, f.local("w", f.b.Uint64), "(~:uint64 w)"},
	}
	for _, tt := range tests {
		if got := f.mustFormat(f.unary(Context{}, tt.op, tt.x)); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}

	res, err := f.unary(Context{}, hir.OpNot, f.local("x", f.b.Int32))
	f.expectCode(res, err, diag.SemaBadUnaryOperator)
	res, err = f.unary(Context{}, hir.OpBitNot, f.local("d", f.b.Float64))
	f.expectCode(res, err, diag.SemaBadUnaryOperator)
}

func TestIncrementDecrement(t *testing.T) {
	f := newFixture(t)
	x := f.local("x", f.b.Int32)
	if got := f.mustFormat(f.unary(Context{}, hir.OpPreInc, x)); got != "(++:int32 x)" {
		t.Fatalf("pre: %s", got)
	}
	if got := f.mustFormat(f.unary(Context{}, hir.OpPostDec, f.local("y", f.b.Int32))); got != "(post--:int32 y)" {
		t.Fatalf("post: %s", got)
	}
	if got := f.mustFormat(f.unary(Context{Checked: true}, hir.OpPreInc, f.local("z", f.b.Int64))); got != "(++ checked:int64 z)" {
		t.Fatalf("checked: %s", got)
	}
	field := hir.NewFieldAccess(f.local("o", f.b.Object), "count", false, f.b.Int32, source.Span{})
	if got := f.mustFormat(f.unary(Context{}, hir.OpPostInc, field)); got != "(post++:int32 o.count)" {
		t.Fatalf("field: %s", got)
	}
	f.expectNoDiagnostics()

	for _, tc := range []struct {
		name string
		x    *hir.Expr
	}{
		{"constant", f.constant("k", f.b.Int32)},
		{"literal", f.intLit(1)},
		{"readonly field", hir.NewFieldAccess(f.local("o", f.b.Object), "id", true, f.b.Int32, source.Span{})},
		{"sum", hir.NewBinary(hir.OpAdd, f.local("a", f.b.Int32), f.local("b", f.b.Int32), f.b.Int32, source.Span{})},
	} {
		res, err := f.unary(Context{}, hir.OpPreInc, tc.x)
		if res != nil || CodeOf(err) != diag.SemaNotAddressable {
			t.Errorf("%s: expected %s, got %v", tc.name, diag.SemaNotAddressable.ID(), err)
		}
	}

	res, err := f.unary(Context{}, hir.OpPreInc, f.local("s", f.b.String))
	f.expectCode(res, err, diag.SemaBadUnaryOperator)
	res, err = f.unary(Context{Unsafe: true}, hir.OpPreInc, f.local("v", f.types.Pointer(f.b.Void)))
	f.expectCode(res, err, diag.SemaVoidPointerArithmetic)
}

func TestPointerOperators(t *testing.T) {
	f := newFixture(t)
	res, err := f.unary(Context{}, hir.OpAddressOf, f.local("x", f.b.Int32))
	f.expectCode(res, err, diag.SemaUnsafeNeeded)

	unsafe := Context{Unsafe: true}
	if got := f.mustFormat(f.unary(unsafe, hir.OpAddressOf, f.local("x", f.b.Int32))); got != "(&:int32* x)" {
		t.Fatalf("address-of: %s", got)
	}
	s := f.structType("S", 16)
	if got := f.mustFormat(f.unary(unsafe, hir.OpDeref, f.local("p", f.types.Pointer(s)))); got != "(*:S p)" {
		t.Fatalf("deref: %s", got)
	}
	res, err = f.unary(unsafe, hir.OpAddressOf, f.intLit(5))
	f.expectCode(res, err, diag.SemaNotAddressable)
	res, err = f.unary(unsafe, hir.OpDeref, f.local("x", f.b.Int32))
	f.expectCode(res, err, diag.SemaBadUnaryOperator)
}

func TestTypeOperators(t *testing.T) {
	f := newFixture(t)
	s := f.structType("S", 16)
	tests := []struct {
		name string
		ctx  Context
		op   hir.UnaryOp
		x    *hir.Expr
		want string
	}{
		{"sizeof primitive", Context{}, hir.OpSizeOf, f.typeRef(f.b.Int64), "8:int32"},
		{"sizeof char", Context{}, hir.OpSizeOf, f.typeRef(f.b.Char), "2:int32"},
		{"sizeof struct", Context{Unsafe: true}, hir.OpSizeOf, f.typeRef(s), "(sizeof S)"},
		{"typeof", Context{}, hir.OpTypeOf, f.typeRef(f.b.Int32), "(typeof int32)"},
		{"default int", Context{}, hir.OpDefault, f.typeRef(f.b.Int64), "0:int64"},
		{"default bool", Context{}, hir.OpDefault, f.typeRef(f.b.Bool), "false"},
		{"default nullable", Context{}, hir.OpDefault, f.typeRef(f.types.Nullable(f.b.Int32)), "null:int32?"},
		{"default struct", Context{}, hir.OpDefault, f.typeRef(s), "(default S)"},
	}
	for _, tt := range tests {
		if got := f.mustFormat(f.unary(tt.ctx, tt.op, tt.x)); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
	f.expectNoDiagnostics()

	res, err := f.unary(Context{}, hir.OpSizeOf, f.typeRef(s))
	f.expectCode(res, err, diag.SemaUnsafeNeeded)
	res, err = f.unary(Context{}, hir.OpSizeOf, f.typeRef(f.b.String))
	f.expectCode(res, err, diag.SemaBadUnaryOperator)
}

func TestAssign(t *testing.T) {
	f := newFixture(t)
	got := f.mustFormat(f.checker.Assign(Context{}, f.local("x", f.b.Int64), f.intLit(5), source.Span{}))
	if got != "(=:int64 x 5:int64)" {
		t.Fatalf("got %s", got)
	}
	res, err := f.checker.Assign(Context{}, f.constant("k", f.b.Int64), f.intLit(5), source.Span{})
	f.expectCode(res, err, diag.SemaNotAddressable)
	res, err = f.checker.Assign(Context{}, f.local("b", f.b.Bool), f.intLit(5), source.Span{})
	f.expectCode(res, err, diag.SemaNoConversion)
}
