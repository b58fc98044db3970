package sema

import (
	"fmt"

	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/trace"
	"opcheck/internal/types"
)

// Options wires the checker to its collaborators.
type Options struct {
	Types    *types.Interner
	Reporter diag.Reporter
	Tracer   trace.Tracer
	// TraceParent is the span resolution events are attached to.
	TraceParent uint64
}

// Checker resolves operator expressions into typed nodes. A Checker is
// not safe for concurrent use; create one per goroutine together with
// its own type interner.
type Checker struct {
	types       *types.Interner
	builtins    types.Builtins
	reporter    diag.Reporter
	tracer      trace.Tracer
	traceParent uint64
	nextTemp    hir.TempID
}

// New creates a checker. A nil reporter drops diagnostics; a nil tracer
// disables tracing.
func New(opts Options) *Checker {
	if opts.Types == nil {
		panic("sema: Options.Types is required")
	}
	rep := opts.Reporter
	if rep == nil {
		rep = diag.NopReporter{}
	}
	tr := opts.Tracer
	if tr == nil {
		tr = trace.Nop
	}
	return &Checker{
		types:       opts.Types,
		builtins:    opts.Types.Builtins(),
		reporter:    rep,
		tracer:      tr,
		traceParent: opts.TraceParent,
	}
}

// Types exposes the interner the checker resolves against.
func (c *Checker) Types() *types.Interner {
	return c.types
}

func (c *Checker) newTemp() hir.TempID {
	c.nextTemp++
	return c.nextTemp
}

func (c *Checker) label(id types.TypeID) string {
	return types.Label(c.types, id)
}

// fail reports an error diagnostic and returns the matching OpError.
func (c *Checker) fail(code diag.Code, span source.Span, format string, args ...any) (*hir.Expr, error) {
	msg := fmt.Sprintf(format, args...)
	diag.ReportError(c.reporter, code, span, msg).Emit()
	return nil, &OpError{Code: code, Span: span, Msg: msg}
}

// failWithNote is fail plus one note pointing at a related location.
func (c *Checker) failWithNote(code diag.Code, span source.Span, note source.Span, noteMsg string, format string, args ...any) (*hir.Expr, error) {
	msg := fmt.Sprintf(format, args...)
	diag.ReportError(c.reporter, code, span, msg).WithNote(note, noteMsg).Emit()
	return nil, &OpError{Code: code, Span: span, Msg: msg}
}

func (c *Checker) warn(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportWarning(c.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

// badBinary is the generic rejection: operator not defined for the operand types.
func (c *Checker) badBinary(op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	return c.fail(diag.SemaBadOperatorForTypes, span,
		"operator '%s' cannot be applied to operands of type '%s' and '%s'",
		op.Symbol(), c.label(l.Type), c.label(r.Type))
}

func (c *Checker) ambiguousBinary(op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	return c.fail(diag.SemaAmbiguousOperator, span,
		"operator '%s' is ambiguous on operands of type '%s' and '%s'",
		op.Symbol(), c.label(l.Type), c.label(r.Type))
}

func (c *Checker) badUnary(op hir.UnaryOp, x *hir.Expr, span source.Span) (*hir.Expr, error) {
	return c.fail(diag.SemaBadUnaryOperator, span,
		"operator '%s' cannot be applied to operand of type '%s'",
		op.Symbol(), c.label(x.Type))
}

func (c *Checker) traceResolved(kind, sym string, res *hir.Expr, err error) {
	if !c.tracer.Enabled() {
		return
	}
	detail := sym
	switch {
	case err != nil:
		detail += " error: " + err.Error()
	case res != nil:
		detail += " -> " + c.label(res.Type)
	}
	trace.Point(c.tracer, trace.ScopeNode, kind, detail, c.traceParent)
}
