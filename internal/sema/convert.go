package sema

import (
	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

// resolveConversion handles the explicit conversion operators; the right
// operand is the target type.
func (c *Checker) resolveConversion(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	if r.Kind != hir.ExprTypeRef {
		return c.badBinary(op, l, r, span)
	}
	target := r.Type

	switch op {
	case hir.OpCast:
		out, ok := c.ExplicitCoercion(ctx, l, target)
		if !ok {
			return c.fail(diag.SemaNoConversion, span,
				"operator '%s' cannot convert '%s' to '%s'",
				op.Symbol(), c.label(l.Type), c.label(r.Type))
		}
		return hir.NewCoerce(out, target, hir.CoerceData{Conv: hir.ConvIdentity, Transparent: true}), nil

	case hir.OpBox:
		value := c.stripped(l)
		if !c.boxable(value.Type, target) {
			return c.badBinary(op, l, r, span)
		}
		return hir.NewCoerce(value, target, hir.CoerceData{Conv: hir.ConvBox}), nil

	case hir.OpUnbox:
		value := c.stripped(l)
		if !c.unboxable(value.Type, target) {
			return c.badBinary(op, l, r, span)
		}
		return hir.NewCoerce(value, target, hir.CoerceData{Conv: hir.ConvUnbox}), nil
	}
	panic("sema: resolveConversion called with " + op.String())
}

func (c *Checker) resolveRange(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	rangeT := c.builtins.Range
	ls, rs := c.stripped(l), c.stripped(r)
	if in.Kind(ls.Type) == types.KindEnum && ls.Type == rs.Type {
		return hir.NewBinary(op, ls, rs, rangeT, span), nil
	}
	left, okL := c.LiteralCoercion(ctx, l, c.builtins.Int32)
	right, okR := c.LiteralCoercion(ctx, r, c.builtins.Int32)
	if !okL || !okR {
		return c.fail(diag.SemaRangeOperandNotIntegral, span,
			"operator '%s' needs operands convertible to int32, got '%s' and '%s'",
			op.Symbol(), c.label(l.Type), c.label(r.Type))
	}
	return hir.NewBinary(op, left, right, rangeT, span), nil
}

// resolveMaplet builds a key/value pair; both sides are stored as object.
func (c *Checker) resolveMaplet(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	obj := c.builtins.Object
	key, okK := c.ImplicitCoercion(ctx, l, obj)
	value, okV := c.ImplicitCoercion(ctx, r, obj)
	if !okK || !okV {
		return c.badBinary(op, l, r, span)
	}
	return hir.NewBinary(op, key, value, c.builtins.Maplet, span), nil
}
