package sema

import (
	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

func (c *Checker) resolveRelational(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	if c.hasNominal(l, r) {
		if res, applied, err := c.userBinary(ctx, op, l, r, span); applied {
			return res, err
		}
		return c.badBinary(op, l, r, span)
	}
	in := c.types
	boolT := c.builtins.Bool
	if res, handled, err := c.comparePointers(ctx, op, l, r, span); handled {
		return res, err
	}

	u, err := c.unifyOperands(ctx, op, l, r, span)
	if err != nil {
		return nil, err
	}
	switch in.Kind(u.common) {
	case types.KindInt, types.KindUint, types.KindFloat, types.KindDecimal, types.KindChar, types.KindEnum:
		return hir.NewBinary(op, u.left, u.right, boolT, span), nil
	}
	return c.badBinary(op, l, r, span)
}

func (c *Checker) resolveEquality(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	boolT := c.builtins.Bool

	if l.IsNullLiteral() || r.IsNullLiteral() {
		return c.compareWithNull(ctx, op, l, r, span)
	}
	if res, handled := c.compareNullableLiteral(ctx, op, l, r, span); handled {
		return res, nil
	}
	if c.hasNominal(l, r) {
		if res, applied, err := c.userBinary(ctx, op, l, r, span); applied {
			return res, err
		}
	}
	if res, handled, err := c.comparePointers(ctx, op, l, r, span); handled {
		return res, err
	}

	ls, rs := c.stripped(l), c.stripped(r)
	if in.IsReferenceType(ls.Type) && in.IsReferenceType(rs.Type) {
		return c.compareReferences(op, ls, rs, span)
	}

	lb, _ := in.Unwrap(l.Type)
	rb, _ := in.Unwrap(r.Type)
	if !equatable(in.Kind(lb)) || !equatable(in.Kind(rb)) {
		return c.badBinary(op, l, r, span)
	}
	u, err := c.unifyOperands(ctx, op, l, r, span)
	if err != nil {
		return nil, err
	}
	return hir.NewBinary(op, u.left, u.right, boolT, span), nil
}

// equatable lists kinds with built-in value equality.
func equatable(k types.Kind) bool {
	switch k {
	case types.KindBool, types.KindChar, types.KindInt, types.KindUint,
		types.KindFloat, types.KindDecimal, types.KindEnum:
		return true
	}
	return false
}

// compareWithNull handles x == null and x != null.
//
//	n == null  -> !HasValue(n)     for nullable n
//	n != null  -> HasValue(n)
//	r == null  -> r == null        for references, pointers and type parameters
func (c *Checker) compareWithNull(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	boolT := c.builtins.Bool
	if l.IsNullLiteral() && r.IsNullLiteral() {
		return hir.NewBinary(op, l, r, boolT, span), nil
	}
	nullOnLeft := l.IsNullLiteral()
	value, null := l, r
	if nullOnLeft {
		value, null = r, l
	}
	value = c.stripped(value)
	switch k := in.Kind(value.Type); {
	case k == types.KindNullable:
		has := hir.NewHasValue(value, boolT, span)
		if op == hir.OpNe {
			return has, nil
		}
		return hir.NewUnary(hir.OpNot, has, boolT, span), nil
	case k == types.KindPointer && !ctx.Unsafe:
		return c.fail(diag.SemaUnsafeNeeded, span,
			"operator '%s' on operands of type '%s' and '%s' requires an unsafe context",
			op.Symbol(), c.label(l.Type), c.label(r.Type))
	case k == types.KindPointer, k == types.KindTypeParam, in.IsReferenceType(value.Type):
		typedNull := hir.Retyped(null, value.Type)
		if nullOnLeft {
			return hir.NewBinary(op, typedNull, value, boolT, span), nil
		}
		return hir.NewBinary(op, value, typedNull, boolT, span), nil
	}
	return c.badBinary(op, l, r, span)
}

// compareNullableLiteral rewrites n == lit (n nullable, lit a non-null
// literal of n's value type) so the nullable is evaluated once:
//
//	let $t = n in ValueOrDefault($t) == lit && HasValue($t)
//	let $t = n in ValueOrDefault($t) != lit || !HasValue($t)
func (c *Checker) compareNullableLiteral(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, bool) {
	in := c.types
	boolT := c.builtins.Bool
	n, lit := l, r
	if isLiteral(l) {
		n, lit = r, l
	}
	if !isLiteral(lit) || isLiteral(n) {
		return nil, false
	}
	n = c.stripped(n)
	if in.Kind(n.Type) != types.KindNullable {
		return nil, false
	}
	elem := in.Elem(n.Type)
	if !equatable(in.Kind(elem)) {
		return nil, false
	}
	value, ok := c.LiteralCoercion(ctx, lit, elem)
	if !ok {
		return nil, false
	}

	temp := c.newTemp()
	read := hir.NewValueOrDefault(hir.NewTempRef(temp, n.Type, n.Span), elem, n.Span)
	has := hir.NewHasValue(hir.NewTempRef(temp, n.Type, n.Span), boolT, span)
	var body *hir.Expr
	if op == hir.OpEq {
		cmp := hir.NewBinary(hir.OpEq, read, value, boolT, span)
		body = hir.NewBinary(hir.OpLogicalAnd, cmp, has, boolT, span)
	} else {
		cmp := hir.NewBinary(hir.OpNe, read, value, boolT, span)
		body = hir.NewBinary(hir.OpLogicalOr, cmp, hir.NewUnary(hir.OpNot, has, boolT, span), boolT, span)
	}
	return hir.NewLet(temp, n, body, span), true
}

// compareReferences implements reference equality: the operands must be
// related by assignability, or one of them must be an interface.
func (c *Checker) compareReferences(op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	lt, rt := l.Type, r.Type
	related := in.IsAssignableTo(lt, rt) || in.IsAssignableTo(rt, lt) ||
		in.Kind(lt) == types.KindInterface || in.Kind(rt) == types.KindInterface
	if !related {
		return c.fail(diag.SemaBadReferenceComparison, span,
			"operator '%s' compares unrelated reference types '%s' and '%s'",
			op.Symbol(), c.label(lt), c.label(rt))
	}
	return hir.NewBinary(op, l, r, c.builtins.Bool, span), nil
}

// comparePointers handles comparisons between pointers of one type, or
// against void*.
func (c *Checker) comparePointers(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, bool, error) {
	in := c.types
	ls, rs := c.stripped(l), c.stripped(r)
	lp := in.Kind(ls.Type) == types.KindPointer
	rp := in.Kind(rs.Type) == types.KindPointer
	if !lp && !rp {
		return nil, false, nil
	}
	if !ctx.Unsafe {
		res, err := c.fail(diag.SemaUnsafeNeeded, span,
			"operator '%s' on operands of type '%s' and '%s' requires an unsafe context",
			op.Symbol(), c.label(l.Type), c.label(r.Type))
		return res, true, err
	}
	if !lp || !rp {
		res, err := c.badBinary(op, l, r, span)
		return res, true, err
	}
	voidPtr := in.Pointer(c.builtins.Void)
	if ls.Type != rs.Type {
		var ok bool
		if ls, ok = c.ImplicitCoercion(ctx, ls, voidPtr); !ok {
			res, err := c.badBinary(op, l, r, span)
			return res, true, err
		}
		if rs, ok = c.ImplicitCoercion(ctx, rs, voidPtr); !ok {
			res, err := c.badBinary(op, l, r, span)
			return res, true, err
		}
	}
	return hir.NewBinary(op, ls, rs, c.builtins.Bool, span), true, nil
}
