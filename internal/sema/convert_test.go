package sema

import (
	"testing"

	"opcheck/internal/diag"
	"opcheck/internal/hir"
)

func TestCastOperator(t *testing.T) {
	f := newFixture(t)
	e := f.enum("E")
	tests := []struct {
		name string
		ctx  Context
		x    *hir.Expr
		to   *hir.Expr
		want string
	}{
		{"narrowing", Context{}, f.local("l", f.b.Int64), f.typeRef(f.b.Int32), "(identity~:int32 (narrow:int32 l))"},
		{"checked narrowing", Context{Checked: true}, f.local("l", f.b.Int64), f.typeRef(f.b.Int32), "(identity~:int32 (narrow checked:int32 l))"},
		{"literal fits", Context{}, f.intLit(5), f.typeRef(f.b.Uint8), "(identity~:uint8 5:uint8)"},
		{"literal does not fit", Context{}, f.intLit(300), f.typeRef(f.b.Int8), "(identity~:int8 (narrow:int8 300:int32))"},
		{"enum to wider int", Context{}, f.local("e", e), f.typeRef(f.b.Int64), "(identity~:int64 (widen:int64 (enum->underlying~:int32 e)))"},
		{"int to enum", Context{}, f.local("i", f.b.Int32), f.typeRef(e), "(identity~:E (underlying->enum~:E i))"},
		{"widening", Context{}, f.local("s", f.b.Int16), f.typeRef(f.b.Float32), "(identity~:float32 (widen:float32 s))"},
	}
	for _, tt := range tests {
		if got := f.mustFormat(f.binary(tt.ctx, hir.OpCast, tt.x, tt.to)); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
	f.expectNoDiagnostics()

	res, err := f.binary(Context{}, hir.OpCast, f.local("p", f.b.Bool), f.typeRef(f.b.Int32))
	f.expectCode(res, err, diag.SemaNoConversion)
}

func TestBoxAndUnbox(t *testing.T) {
	f := newFixture(t)
	got := f.mustFormat(f.binary(Context{}, hir.OpBox, f.local("x", f.b.Int32), f.typeRef(f.b.Object)))
	if got != "(box:object x)" {
		t.Fatalf("box: %s", got)
	}
	got = f.mustFormat(f.binary(Context{}, hir.OpUnbox, f.local("o", f.b.Object), f.typeRef(f.b.Int32)))
	if got != "(unbox:int32 o)" {
		t.Fatalf("unbox: %s", got)
	}
	res, err := f.binary(Context{}, hir.OpBox, f.local("o", f.b.Object), f.typeRef(f.b.Object))
	f.expectCode(res, err, diag.SemaBadOperatorForTypes)
}

func TestRangeAndMaplet(t *testing.T) {
	f := newFixture(t)
	got := f.mustFormat(f.binary(Context{}, hir.OpRange, f.intLit(1), f.local("n", f.b.Int16)))
	if got != "(..:Range 1:int32 (widen:int32 n))" {
		t.Fatalf("range: %s", got)
	}
	e := f.enum("E")
	got = f.mustFormat(f.binary(Context{}, hir.OpRange, f.local("a", e), f.local("b", e)))
	if got != "(..:Range a b)" {
		t.Fatalf("enum range: %s", got)
	}
	got = f.mustFormat(f.binary(Context{}, hir.OpMaplet, f.intLit(1), f.local("s", f.b.String)))
	if got != "(=>:Maplet (box:object 1:int32) (upcast~:object s))" {
		t.Fatalf("maplet: %s", got)
	}
	f.expectNoDiagnostics()

	res, err := f.binary(Context{}, hir.OpRange, f.floatLit(1.5), f.intLit(2))
	f.expectCode(res, err, diag.SemaRangeOperandNotIntegral)
	res, err = f.binary(Context{}, hir.OpRange, f.local("l", f.b.Int64), f.intLit(2))
	f.expectCode(res, err, diag.SemaRangeOperandNotIntegral)
}
