package sema

import (
	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

func (c *Checker) resolveBitwise(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	if c.hasNominal(l, r) {
		if res, applied, err := c.userBinary(ctx, op, l, r, span); applied {
			return res, err
		}
		return c.badBinary(op, l, r, span)
	}
	l, r = c.enclosingToUnderlying(ctx, l), c.enclosingToUnderlying(ctx, r)

	in := c.types
	u, err := c.unifyOperands(ctx, op, c.promoteChar(ctx, l), c.promoteChar(ctx, r), span)
	if err != nil {
		return nil, err
	}
	switch in.Kind(u.common) {
	case types.KindBool, types.KindEnum:
		return hir.NewBinary(op, u.left, u.right, u.result, span), nil
	case types.KindInt, types.KindUint:
	default:
		return c.badBinary(op, l, r, span)
	}

	if !u.nullable {
		switch {
		case op == hir.OpAnd && (l.IsZeroLiteral() || r.IsZeroLiteral()):
			return hir.IntLiteral(0, u.common, span), nil
		case op != hir.OpAnd && r.IsZeroLiteral():
			return u.left, nil
		case op != hir.OpAnd && l.IsZeroLiteral():
			return u.right, nil
		}
	}

	if op == hir.OpOr {
		c.checkSignExtension(op, l, r, u.common, span)
	}
	return hir.NewBinary(op, u.left, u.right, u.result, span), nil
}

// checkSignExtension warns when '|' widens a signed operand: the sign bits
// of a negative value would set every high bit of the other operand.
// A literal triggers it only when negative.
func (c *Checker) checkSignExtension(op hir.BinaryOp, l, r *hir.Expr, common types.TypeID, span source.Span) {
	in := c.types
	for _, e := range [...]*hir.Expr{l, r} {
		base, _ := in.Unwrap(e.Type)
		if in.Kind(base) != types.KindInt || in.Width(base) >= in.Width(common) {
			continue
		}
		if lit, ok := e.Literal(); ok && !lit.IsNegative() {
			continue
		}
		c.warn(diag.SemaSignExtensionOnOr, span,
			"operator '%s' sign-extends an operand when combining '%s' and '%s'",
			op.Symbol(), c.label(l.Type), c.label(r.Type))
		return
	}
}
