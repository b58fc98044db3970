package sema

import (
	"fmt"

	"opcheck/internal/hir"
	"opcheck/internal/source"
)

// Binary resolves op applied to left and right. Operands must already be
// typed; a nil operand means its own diagnostic was reported and the
// result is ErrOperandUnresolved. On success the returned node is new and
// typed; operand nodes are reused only as children of that one node.
// On failure the diagnostic has been reported and the error is an *OpError.
func (c *Checker) Binary(ctx Context, op hir.BinaryOp, left, right *hir.Expr, span source.Span) (*hir.Expr, error) {
	if left == nil || right == nil {
		return nil, ErrOperandUnresolved
	}
	res, err := c.dispatchBinary(ctx, op.Unchecked(), left, right, span)
	c.traceResolved("sema.binary", op.Symbol(), res, err)
	return res, err
}

func (c *Checker) dispatchBinary(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	switch op {
	case hir.OpAdd, hir.OpSub:
		return c.resolveAdditive(ctx, op, l, r, span)
	case hir.OpMul, hir.OpDiv, hir.OpRem:
		return c.resolveMultiplicative(ctx, op, l, r, span)
	case hir.OpAnd, hir.OpOr, hir.OpXor:
		return c.resolveBitwise(ctx, op, l, r, span)
	case hir.OpShl, hir.OpShr, hir.OpShrUn:
		return c.resolveShift(ctx, op, l, r, span)
	case hir.OpLt, hir.OpLe, hir.OpGt, hir.OpGe:
		return c.resolveRelational(ctx, op, l, r, span)
	case hir.OpEq, hir.OpNe:
		return c.resolveEquality(ctx, op, l, r, span)
	case hir.OpLogicalAnd, hir.OpLogicalOr:
		return c.resolveShortCircuit(ctx, op, l, r, span)
	case hir.OpImplies, hir.OpIff:
		return c.resolveConnective(ctx, op, l, r, span)
	case hir.OpIs, hir.OpAs:
		return c.resolveTypeTest(ctx, op, l, r, span)
	case hir.OpBox, hir.OpUnbox, hir.OpCast:
		return c.resolveConversion(ctx, op, l, r, span)
	case hir.OpRange:
		return c.resolveRange(ctx, op, l, r, span)
	case hir.OpMaplet:
		return c.resolveMaplet(ctx, op, l, r, span)
	default:
		panic(fmt.Sprintf("sema: unhandled binary operator %v", op))
	}
}
