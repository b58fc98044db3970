package hir

import (
	"bytes"
	"strings"
	"testing"

	"opcheck/internal/source"
	"opcheck/internal/types"
)

func TestFormatBinaryWithCoercion(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	x := NewVarRef("x", VarLocal, b.Int8, source.Span{})
	wide := NewCoerce(x, b.Int32, CoerceData{Conv: ConvWiden})
	five := IntLiteral(5, b.Int32, source.Span{})
	sum := NewBinary(OpAddChecked, wide, five, b.Int32, source.Span{})
	if got, want := Format(in, sum), "(checked+:int32 (widen:int32 x) 5:int32)"; got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}

func TestPrinterIndentsChildren(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	n := NewVarRef("n", VarLocal, in.Nullable(b.Int32), source.Span{})
	hv := NewHasValue(n, b.Bool, source.Span{})
	not := NewUnary(OpNot, hv, b.Bool, source.Span{})

	var buf bytes.Buffer
	NewPrinter(&buf, in).PrintExpr(not)
	want := "UnaryOp ! : bool\n  HasValue : bool\n    VarRef n : int32?\n"
	if buf.String() != want {
		t.Fatalf("unexpected dump:\n%s", buf.String())
	}
}

func TestAliasedDetectsSharedNodes(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	x := NewVarRef("x", VarLocal, b.Int32, source.Span{})
	shared := NewBinary(OpAdd, x, x, b.Int32, source.Span{})
	if !Aliased(shared) {
		t.Fatalf("expected aliasing to be detected")
	}
	y := NewVarRef("x", VarLocal, b.Int32, source.Span{})
	if Aliased(NewBinary(OpAdd, x, y, b.Int32, source.Span{})) {
		t.Fatalf("distinct nodes must not count as aliased")
	}
}

func TestBinaryOpBySymbol(t *testing.T) {
	for _, sym := range []string{"+", ">>>", "is", "<==>", "=>"} {
		op, ok := BinaryOpBySymbol(sym)
		if !ok || op.Symbol() != sym {
			t.Fatalf("BinaryOpBySymbol(%q) = %v, %v", sym, op, ok)
		}
	}
	if op, _ := BinaryOpBySymbol("+"); op != OpAdd {
		t.Fatalf("+ must map to the unchecked add")
	}
	if !strings.HasPrefix(OpMulChecked.String(), "checked") || OpMulChecked.Unchecked() != OpMul {
		t.Fatalf("checked variants broken")
	}
}
