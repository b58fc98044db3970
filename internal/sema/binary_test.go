package sema

import (
	"errors"
	"strings"
	"testing"

	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/trace"
)

func TestUnresolvedOperand(t *testing.T) {
	f := newFixture(t)
	res, err := f.binary(Context{}, hir.OpAdd, nil, f.intLit(1))
	if res != nil || !errors.Is(err, ErrOperandUnresolved) {
		t.Fatalf("binary: got %v, %v", res, err)
	}
	res, err = f.unary(Context{}, hir.OpNeg, nil)
	if res != nil || !errors.Is(err, ErrOperandUnresolved) {
		t.Fatalf("unary: got %v, %v", res, err)
	}
	res, err = f.checker.Assign(Context{}, f.local("x", f.b.Int32), nil, source.Span{})
	if res != nil || !errors.Is(err, ErrOperandUnresolved) {
		t.Fatalf("assign: got %v, %v", res, err)
	}
	f.expectNoDiagnostics()
}

func TestUnknownOperatorPanics(t *testing.T) {
	f := newFixture(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for an operator outside the closed set")
		}
	}()
	_, _ = f.binary(Context{}, hir.BinaryOp(250), f.intLit(1), f.intLit(2))
}

func TestCheckedInputNormalized(t *testing.T) {
	f := newFixture(t)
	got := f.mustFormat(f.binary(Context{}, hir.OpAddChecked, f.local("x", f.b.Int32), f.local("y", f.b.Int32)))
	if got != "(+:int32 x y)" {
		t.Fatalf("got %s", got)
	}
}

func TestResolutionIsDeterministic(t *testing.T) {
	render := func() string {
		f := newFixture(t)
		n := f.local("n", f.types.Nullable(f.b.Int32))
		res, err := f.binary(Context{Checked: true}, hir.OpEq, n, f.intLit(5))
		return f.mustFormat(res, err)
	}
	first := render()
	for range 5 {
		if got := render(); got != first {
			t.Fatalf("got %s, then %s", first, got)
		}
	}
}

func TestResolutionTraced(t *testing.T) {
	in := newFixture(t)
	ring := trace.NewRingTracer(16, trace.LevelDebug)
	c := New(Options{Types: in.types, Tracer: ring})
	x := in.local("x", in.b.Int32)
	if _, err := c.Binary(Context{}, hir.OpAdd, x, in.local("y", in.b.Int64), source.Span{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Binary(Context{}, hir.OpAdd, in.local("s", in.b.Bool), in.intLit(1), source.Span{}); err == nil {
		t.Fatalf("expected error")
	}
	events := ring.Snapshot()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Name != "sema.binary" || events[0].Detail != "+ -> int64" {
		t.Errorf("unexpected first event %+v", events[0])
	}
	if !strings.Contains(events[1].Detail, "error: SEM3001") {
		t.Errorf("unexpected second event %+v", events[1])
	}
}
