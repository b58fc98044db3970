package sema

import (
	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

func (c *Checker) resolveAdditive(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	if c.hasNominal(l, r) {
		if res, applied, err := c.userBinary(ctx, op, l, r, span); applied {
			return res, err
		}
		return c.badBinary(op, l, r, span)
	}
	l, r = c.enclosingToUnderlying(ctx, l), c.enclosingToUnderlying(ctx, r)

	in := c.types
	lb, _ := in.Unwrap(l.Type)
	rb, _ := in.Unwrap(r.Type)
	if in.Kind(lb) == types.KindPointer || in.Kind(rb) == types.KindPointer {
		return c.resolvePointerArith(ctx, op, l, r, span)
	}
	if in.Kind(lb) == types.KindEnum || in.Kind(rb) == types.KindEnum {
		return c.resolveEnumArith(ctx, op, l, r, span)
	}

	u, err := c.unifyOperands(ctx, op, c.promoteChar(ctx, l), c.promoteChar(ctx, r), span)
	if err != nil {
		return nil, err
	}
	if !in.IsPrimitiveNumeric(u.common) {
		return c.badBinary(op, l, r, span)
	}
	return hir.NewBinary(c.arithOp(ctx, op, u.common), u.left, u.right, u.result, span), nil
}

func (c *Checker) resolveMultiplicative(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
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
	if !in.IsPrimitiveNumeric(u.common) {
		return c.badBinary(op, l, r, span)
	}
	integral := in.IsPrimitiveInteger(u.common)

	switch op {
	case hir.OpMul:
		// x * 0 is 0 for fixed-width integers; the other operand is dropped
		if integral && !u.nullable && (l.IsZeroLiteral() || r.IsZeroLiteral()) {
			return hir.IntLiteral(0, u.common, span), nil
		}
	case hir.OpDiv, hir.OpRem:
		if r.IsZeroLiteral() && !in.IsFloat(u.common) {
			return c.fail(diag.SemaDivisionByConstantZero, span,
				"operator '%s' divides by constant zero on operands of type '%s' and '%s'",
				op.Symbol(), c.label(l.Type), c.label(r.Type))
		}
	}
	return hir.NewBinary(c.arithOp(ctx, op, u.common), u.left, u.right, u.result, span), nil
}

// promoteChar converts a char (or char?) operand to uint16 (or uint16?),
// the primitive char is defined over for arithmetic.
func (c *Checker) promoteChar(ctx Context, e *hir.Expr) *hir.Expr {
	base, layers := c.types.Unwrap(e.Type)
	if c.types.Kind(base) != types.KindChar {
		return e
	}
	target := c.builtins.Uint16
	if layers.Has(types.LayerNullable) {
		target = c.types.Nullable(target)
	}
	if out, ok := c.ImplicitCoercion(ctx, e, target); ok {
		return out
	}
	return e
}

// arithOp selects the overflow-checked variant for integer results under
// a checked context.
func (c *Checker) arithOp(ctx Context, op hir.BinaryOp, common types.TypeID) hir.BinaryOp {
	if ctx.Checked && c.types.IsPrimitiveInteger(common) {
		return op.Checked()
	}
	return op
}

// resolveEnumArith implements enum arithmetic. The result type never
// depends on operand order or on which side is a literal:
//
//	E + int, int + E  -> E
//	E - int           -> E
//	E - E             -> underlying(E)
//	int - E, E + E    -> rejected
func (c *Checker) resolveEnumArith(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	l, r = c.stripped(l), c.stripped(r)
	lk, rk := in.Kind(l.Type), in.Kind(r.Type)
	if lk == types.KindNullable || rk == types.KindNullable {
		return c.badBinary(op, l, r, span)
	}

	if lk == types.KindEnum && rk == types.KindEnum {
		if op != hir.OpSub || l.Type != r.Type {
			return c.badBinary(op, l, r, span)
		}
		under := in.EnumUnderlying(l.Type)
		left := hir.NewCoerce(l, under, hir.CoerceData{Conv: hir.ConvEnumToUnderlying, Transparent: true})
		right := hir.NewCoerce(r, under, hir.CoerceData{Conv: hir.ConvEnumToUnderlying, Transparent: true})
		return hir.NewBinary(c.arithOp(ctx, op, under), left, right, under, span), nil
	}

	enumOnLeft := lk == types.KindEnum
	if op == hir.OpSub && !enumOnLeft {
		return c.badBinary(op, l, r, span)
	}
	enumExpr, other := l, r
	if !enumOnLeft {
		enumExpr, other = r, l
	}
	enumType := enumExpr.Type
	under := in.EnumUnderlying(enumType)
	offset, ok := c.LiteralCoercion(ctx, other, under)
	if !ok || (!in.IsPrimitiveInteger(other.Type) && !isLiteral(other)) {
		return c.badBinary(op, l, r, span)
	}
	base := hir.NewCoerce(enumExpr, under, hir.CoerceData{Conv: hir.ConvEnumToUnderlying, Transparent: true})
	left, right := base, offset
	if !enumOnLeft {
		left, right = offset, base
	}
	sum := hir.NewBinary(c.arithOp(ctx, op, under), left, right, under, span)
	return hir.NewCoerce(sum, enumType, hir.CoerceData{Conv: hir.ConvUnderlyingToEnum, Transparent: true}), nil
}

// resolvePointerArith scales integer offsets by the element size:
//
//	p + n, n + p, p - n  -> p (+|-) (n * sizeof(T)) : T*
//	p - q                -> (p - q) / sizeof(T)     : int64
func (c *Checker) resolvePointerArith(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	if !ctx.Unsafe {
		return c.fail(diag.SemaUnsafeNeeded, span,
			"operator '%s' on operands of type '%s' and '%s' requires an unsafe context",
			op.Symbol(), c.label(l.Type), c.label(r.Type))
	}
	l, r = c.stripped(l), c.stripped(r)
	lp := in.Kind(l.Type) == types.KindPointer
	rp := in.Kind(r.Type) == types.KindPointer
	int64T := c.builtins.Int64

	if lp && rp {
		if op != hir.OpSub || l.Type != r.Type {
			return c.badBinary(op, l, r, span)
		}
		size, err := c.elemSize(op, l, r, l.Type, span)
		if err != nil {
			return nil, err
		}
		left := hir.NewCoerce(l, int64T, hir.CoerceData{Conv: hir.ConvPointer})
		right := hir.NewCoerce(r, int64T, hir.CoerceData{Conv: hir.ConvPointer})
		diff := hir.NewBinary(hir.OpSub, left, right, int64T, span)
		if size == 1 {
			return diff, nil
		}
		return hir.NewBinary(hir.OpDiv, diff, hir.IntLiteral(int64(size), int64T, span), int64T, span), nil
	}

	if op == hir.OpSub && rp {
		return c.badBinary(op, l, r, span)
	}
	ptr, offset := l, r
	if rp {
		ptr, offset = r, l
	}
	if !in.IsPrimitiveInteger(offset.Type) {
		return c.badBinary(op, l, r, span)
	}
	size, err := c.elemSize(op, l, r, ptr.Type, span)
	if err != nil {
		return nil, err
	}
	scaled, ok := c.LiteralCoercion(ctx, offset, int64T)
	if !ok {
		scaled, ok = c.ExplicitCoercion(ctx, offset, int64T)
		if !ok {
			return c.badBinary(op, l, r, span)
		}
	}
	if size != 1 {
		scaled = hir.NewBinary(hir.OpMul, scaled, hir.IntLiteral(int64(size), int64T, offset.Span), int64T, offset.Span)
	}
	if rp {
		return hir.NewBinary(op, scaled, ptr, ptr.Type, span), nil
	}
	return hir.NewBinary(op, ptr, scaled, ptr.Type, span), nil
}

func (c *Checker) elemSize(op hir.BinaryOp, l, r *hir.Expr, ptr types.TypeID, span source.Span) (uint32, error) {
	elem := c.types.Elem(ptr)
	if elem == c.builtins.Void {
		_, err := c.fail(diag.SemaVoidPointerArithmetic, span,
			"operator '%s' cannot do arithmetic on void pointers (operands '%s' and '%s')",
			op.Symbol(), c.label(l.Type), c.label(r.Type))
		return 0, err
	}
	size, ok := c.types.SizeOf(elem)
	if !ok {
		_, err := c.badBinary(op, l, r, span)
		return 0, err
	}
	return size, nil
}
