package sema

import (
	"fmt"
	"math"

	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

// Unary resolves op applied to operand. Type operators (sizeof, typeof,
// default) take an ExprTypeRef operand. The contract matches Binary.
func (c *Checker) Unary(ctx Context, op hir.UnaryOp, operand *hir.Expr, span source.Span) (*hir.Expr, error) {
	if operand == nil {
		return nil, ErrOperandUnresolved
	}
	res, err := c.dispatchUnary(ctx, op, operand, span)
	c.traceResolved("sema.unary", op.Symbol(), res, err)
	return res, err
}

func (c *Checker) dispatchUnary(ctx Context, op hir.UnaryOp, x *hir.Expr, span source.Span) (*hir.Expr, error) {
	switch op {
	case hir.OpNeg, hir.OpPlus:
		return c.resolveSign(ctx, op, x, span)
	case hir.OpBitNot:
		return c.resolveBitNot(ctx, op, x, span)
	case hir.OpNot:
		return c.resolveNot(ctx, op, x, span)
	case hir.OpAddressOf:
		return c.resolveAddressOf(ctx, op, x, span)
	case hir.OpDeref:
		return c.resolveDeref(ctx, op, x, span)
	case hir.OpPreInc, hir.OpPreDec, hir.OpPostInc, hir.OpPostDec:
		return c.resolveIncDec(ctx, op, x, span)
	case hir.OpSizeOf:
		return c.resolveSizeOf(ctx, op, x, span)
	case hir.OpTypeOf:
		if x.Kind != hir.ExprTypeRef {
			return c.badUnary(op, x, span)
		}
		return hir.NewTypeOperand(hir.ExprTypeOf, x.Type, c.builtins.TypeHandle, span), nil
	case hir.OpDefault:
		return c.resolveDefault(op, x, span)
	default:
		panic(fmt.Sprintf("sema: unhandled unary operator %v", op))
	}
}

// signType is the type unary minus and plus compute in: small integers
// and char promote to int32, uint32 to int64.
func (c *Checker) signType(base types.TypeID) (types.TypeID, bool) {
	in := c.types
	b := c.builtins
	switch in.Kind(base) {
	case types.KindChar:
		return b.Int32, true
	case types.KindInt:
		if in.Width(base) < types.Width32 {
			return b.Int32, true
		}
		return base, true
	case types.KindUint:
		switch in.Width(base) {
		case types.Width8, types.Width16:
			return b.Int32, true
		case types.Width32:
			return b.Int64, true
		}
		return base, true
	case types.KindFloat, types.KindDecimal:
		return base, true
	}
	return types.NoTypeID, false
}

func (c *Checker) resolveSign(ctx Context, op hir.UnaryOp, x *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	if res, ok := c.userUnary(ctx, op, op.Symbol(), x, span); ok {
		return res, nil
	}
	base, layers := in.Unwrap(x.Type)
	nullable := layers.Has(types.LayerNullable)

	if op == hir.OpNeg && !nullable {
		if lit, ok := x.Literal(); ok {
			if res, ok := c.negateLiteral(lit, x.Type, span); ok {
				return res, nil
			}
			if lit.IsIntegral() {
				return c.badUnary(op, x, span)
			}
		}
	}

	target, ok := c.signType(base)
	if !ok {
		return c.badUnary(op, x, span)
	}
	if op == hir.OpNeg && base == c.builtins.Uint64 {
		return c.badUnary(op, x, span)
	}
	if nullable {
		target = in.Nullable(target)
	}
	value, ok := c.ImplicitCoercion(ctx, x, target)
	if !ok {
		return c.badUnary(op, x, span)
	}
	if op == hir.OpNeg && ctx.Checked && !nullable && in.IsPrimitiveInteger(target) {
		zero := hir.IntLiteral(0, target, span)
		return hir.NewBinary(hir.OpSubChecked, zero, value, target, span), nil
	}
	return hir.NewUnary(op, value, target, span), nil
}

// negateLiteral folds -lit. The literal 2147483648 negates to int32 and
// 9223372036854775808 to int64, the minimum values of those types.
func (c *Checker) negateLiteral(lit hir.LiteralData, ty types.TypeID, span source.Span) (*hir.Expr, bool) {
	b := c.builtins
	switch lit.Kind {
	case hir.LitFloat, hir.LitDecimal:
		lit.Float = -lit.Float
		return hir.NewLiteral(lit, ty, span), true
	case hir.LitInt, hir.LitUint:
	default:
		return nil, false
	}

	var v uint64
	if lit.Kind == hir.LitUint {
		v = lit.Uint
	} else if lit.Int >= 0 {
		v = uint64(lit.Int)
	} else {
		if lit.Int == math.MinInt64 {
			return nil, false
		}
		neg := hir.LiteralData{Kind: hir.LitInt, Int: -lit.Int}
		target, ok := c.signType(ty)
		if !ok {
			return nil, false
		}
		return hir.NewLiteral(neg, target, span), true
	}

	target, ok := c.signType(ty)
	if !ok {
		return nil, false
	}
	switch {
	case v == 1<<31 && (ty == b.Uint32 || ty == b.Int64):
		target = b.Int32
	case v == 1<<63 && ty == b.Uint64:
		return hir.NewLiteral(hir.LiteralData{Kind: hir.LitInt, Int: math.MinInt64}, b.Int64, span), true
	case ty == b.Uint64:
		return nil, false
	}
	if v > math.MaxInt64 {
		return nil, false
	}
	neg := hir.LiteralData{Kind: hir.LitInt, Int: -int64(v)}
	if !c.literalFits(neg, target) {
		return nil, false
	}
	return hir.NewLiteral(neg, target, span), true
}

func (c *Checker) resolveBitNot(ctx Context, op hir.UnaryOp, x *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	if res, ok := c.userUnary(ctx, op, op.Symbol(), x, span); ok {
		return res, nil
	}
	base, layers := in.Unwrap(x.Type)
	target := base
	switch in.Kind(base) {
	case types.KindEnum:
	case types.KindInt, types.KindUint, types.KindChar:
		if in.Kind(base) == types.KindChar || in.Width(base) < types.Width32 {
			target = c.builtins.Int32
		}
	default:
		return c.badUnary(op, x, span)
	}
	if layers.Has(types.LayerNullable) {
		target = in.Nullable(target)
	}
	value, ok := c.ImplicitCoercion(ctx, x, target)
	if !ok {
		return c.badUnary(op, x, span)
	}
	return hir.NewUnary(op, value, target, span), nil
}

func (c *Checker) resolveNot(ctx Context, op hir.UnaryOp, x *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	if res, ok := c.userUnary(ctx, op, op.Symbol(), x, span); ok {
		return res, nil
	}
	base, layers := in.Unwrap(x.Type)
	if base != c.builtins.Bool {
		return c.badUnary(op, x, span)
	}
	if lit, ok := x.Literal(); ok && lit.Kind == hir.LitBool {
		return hir.BoolLiteral(!lit.Bool, c.builtins.Bool, span), nil
	}
	value := c.stripped(x)
	target := c.builtins.Bool
	if layers.Has(types.LayerNullable) {
		target = in.Nullable(target)
	}
	return hir.NewUnary(op, value, target, span), nil
}

func (c *Checker) resolveAddressOf(ctx Context, op hir.UnaryOp, x *hir.Expr, span source.Span) (*hir.Expr, error) {
	if !ctx.Unsafe {
		return c.fail(diag.SemaUnsafeNeeded, span,
			"operator '%s' on operand of type '%s' requires an unsafe context",
			op.Symbol(), c.label(x.Type))
	}
	if err := c.checkAddressable(op.Symbol(), x, span); err != nil {
		return nil, err
	}
	elem := c.types.StripModifiers(x.Type)
	if !c.types.IsValueType(elem) {
		return c.badUnary(op, x, span)
	}
	return hir.NewUnary(op, x, c.types.Pointer(elem), span), nil
}

func (c *Checker) resolveDeref(ctx Context, op hir.UnaryOp, x *hir.Expr, span source.Span) (*hir.Expr, error) {
	if !ctx.Unsafe {
		return c.fail(diag.SemaUnsafeNeeded, span,
			"operator '%s' on operand of type '%s' requires an unsafe context",
			op.Symbol(), c.label(x.Type))
	}
	ptr := c.stripped(x)
	if c.types.Kind(ptr.Type) != types.KindPointer {
		return c.badUnary(op, x, span)
	}
	elem := c.types.Elem(ptr.Type)
	if elem == c.builtins.Void {
		return c.fail(diag.SemaVoidPointerArithmetic, span,
			"operator '%s' cannot dereference operand of type '%s'",
			op.Symbol(), c.label(x.Type))
	}
	return hir.NewUnary(op, ptr, elem, span), nil
}

func (c *Checker) resolveIncDec(ctx Context, op hir.UnaryOp, x *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	if err := c.checkAddressable(op.Symbol(), x, span); err != nil {
		return nil, err
	}
	ty := in.StripModifiers(x.Type)
	if res, ok := c.userUnary(ctx, op, op.Symbol(), x, span); ok {
		return res, nil
	}
	base, _ := in.Unwrap(ty)
	switch in.Kind(base) {
	case types.KindInt, types.KindUint, types.KindFloat, types.KindDecimal, types.KindChar, types.KindEnum:
	case types.KindPointer:
		if !ctx.Unsafe {
			return c.fail(diag.SemaUnsafeNeeded, span,
				"operator '%s' on operand of type '%s' requires an unsafe context",
				op.Symbol(), c.label(x.Type))
		}
		if in.Elem(base) == c.builtins.Void {
			return c.fail(diag.SemaVoidPointerArithmetic, span,
				"operator '%s' cannot do arithmetic on operand of type '%s'",
				op.Symbol(), c.label(x.Type))
		}
	default:
		return c.badUnary(op, x, span)
	}
	checked := ctx.Checked && (in.IsPrimitiveInteger(base) || in.Kind(base) == types.KindChar)
	return hir.NewIncDec(op, x, ty, checked, span), nil
}

func (c *Checker) resolveSizeOf(ctx Context, op hir.UnaryOp, x *hir.Expr, span source.Span) (*hir.Expr, error) {
	if x.Kind != hir.ExprTypeRef {
		return c.badUnary(op, x, span)
	}
	in := c.types
	int32T := c.builtins.Int32
	size, ok := in.SizeOf(x.Type)
	if !ok {
		return c.fail(diag.SemaBadUnaryOperator, span,
			"operator '%s' cannot take the size of managed type '%s'",
			op.Symbol(), c.label(x.Type))
	}
	if in.IsPrimitiveSized(x.Type) {
		return hir.IntLiteral(int64(size), int32T, span), nil
	}
	if !ctx.Unsafe {
		return c.fail(diag.SemaUnsafeNeeded, span,
			"operator '%s' on operand of type '%s' requires an unsafe context",
			op.Symbol(), c.label(x.Type))
	}
	return hir.NewTypeOperand(hir.ExprSizeOf, x.Type, int32T, span), nil
}

// resolveDefault folds default(T) to a literal where T has one.
func (c *Checker) resolveDefault(op hir.UnaryOp, x *hir.Expr, span source.Span) (*hir.Expr, error) {
	if x.Kind != hir.ExprTypeRef {
		return c.badUnary(op, x, span)
	}
	in := c.types
	t := x.Type
	switch in.Kind(t) {
	case types.KindInt, types.KindUint, types.KindEnum:
		return hir.IntLiteral(0, t, span), nil
	case types.KindFloat:
		return hir.NewLiteral(hir.LiteralData{Kind: hir.LitFloat}, t, span), nil
	case types.KindDecimal:
		return hir.NewLiteral(hir.LiteralData{Kind: hir.LitDecimal}, t, span), nil
	case types.KindBool:
		return hir.BoolLiteral(false, t, span), nil
	case types.KindChar:
		return hir.NewLiteral(hir.LiteralData{Kind: hir.LitChar}, t, span), nil
	case types.KindNullable, types.KindPointer, types.KindString, types.KindObject,
		types.KindClass, types.KindInterface:
		return hir.NullLiteral(t, span), nil
	case types.KindStruct, types.KindTypeParam, types.KindUnion:
		return hir.NewTypeOperand(hir.ExprDefault, t, t, span), nil
	}
	return c.badUnary(op, x, span)
}
