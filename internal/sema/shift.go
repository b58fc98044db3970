package sema

import (
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

func (c *Checker) resolveShift(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	if c.hasNominal(l, r) {
		if res, applied, err := c.userBinary(ctx, op, l, r, span); applied {
			return res, err
		}
		return c.badBinary(op, l, r, span)
	}
	l = c.enclosingToUnderlying(ctx, l)

	in := c.types
	lb, ll := in.Unwrap(l.Type)
	_, rl := in.Unwrap(r.Type)

	countType := c.builtins.Int32
	if rl.Has(types.LayerNullable) {
		countType = in.Nullable(countType)
	}
	count, ok := c.LiteralCoercion(ctx, r, countType)
	if !ok {
		return c.badBinary(op, l, r, span)
	}

	promoted := lb
	if in.Kind(lb) == types.KindChar {
		promoted = c.builtins.Uint16
	}
	if !in.IsPrimitiveInteger(promoted) {
		return c.badBinary(op, l, r, span)
	}
	target, ok := c.shiftType(promoted)
	if !ok {
		return c.badBinary(op, l, r, span)
	}
	result := target
	if ll.Has(types.LayerNullable) || rl.Has(types.LayerNullable) {
		result = in.Nullable(target)
	}
	value, ok := c.LiteralCoercion(ctx, l, result)
	if !ok {
		return c.badBinary(op, l, r, span)
	}

	if op == hir.OpShr && (in.IsUnsigned(target) || in.Kind(lb) == types.KindChar) {
		op = hir.OpShrUn
	}
	return hir.NewBinary(op, value, count, result, span), nil
}

// shiftType picks the first of int32, uint32, int64, uint64 the left
// operand converts to.
func (c *Checker) shiftType(base types.TypeID) (types.TypeID, bool) {
	b := c.builtins
	for _, cand := range [...]types.TypeID{b.Int32, b.Uint32, b.Int64, b.Uint64} {
		if base == cand || c.types.WidensTo(base, cand) {
			return cand, true
		}
	}
	return types.NoTypeID, false
}
