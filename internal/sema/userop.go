package sema

import (
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

// hasNominal reports whether either operand's base type can declare
// operators.
func (c *Checker) hasNominal(l, r *hir.Expr) bool {
	lb, _ := c.types.Unwrap(l.Type)
	rb, _ := c.types.Unwrap(r.Type)
	return c.isNominal(lb) || c.isNominal(rb)
}

func (c *Checker) isNominal(id types.TypeID) bool {
	switch c.types.Kind(id) {
	case types.KindClass, types.KindStruct, types.KindInterface:
		return true
	}
	return false
}

// userBinary looks for a user-defined operator declared on either operand
// type whose parameters both operands convert to. applied is false when
// nothing matches.
func (c *Checker) userBinary(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (res *hir.Expr, applied bool, err error) {
	in := c.types
	lb, _ := in.Unwrap(l.Type)
	rb, _ := in.Unwrap(r.Type)
	owners := []types.TypeID{lb}
	if rb != lb {
		owners = append(owners, rb)
	}

	type match struct {
		owner       types.TypeID
		decl        types.OperatorDecl
		left, right *hir.Expr
	}
	var found []match
	for _, owner := range owners {
		for _, decl := range in.Operators(owner, op.Symbol(), 2) {
			left, okL := c.LiteralCoercion(ctx, l, decl.Params[0])
			right, okR := c.LiteralCoercion(ctx, r, decl.Params[1])
			if okL && okR {
				found = append(found, match{owner: owner, decl: decl, left: left, right: right})
			}
		}
	}
	switch len(found) {
	case 0:
		return nil, false, nil
	case 1:
		m := found[0]
		return hir.NewCall(m.owner, m.decl, []*hir.Expr{m.left, m.right}, m.decl.Result, span), true, nil
	default:
		_, err := c.ambiguousBinary(op, l, r, span)
		return nil, true, err
	}
}

// userUnary binds a unary operator declared on the operand type.
func (c *Checker) userUnary(ctx Context, op hir.UnaryOp, sym string, x *hir.Expr, span source.Span) (*hir.Expr, bool) {
	base, _ := c.types.Unwrap(x.Type)
	for _, decl := range c.types.Operators(base, sym, 1) {
		arg, ok := c.LiteralCoercion(ctx, x, decl.Params[0])
		if !ok {
			continue
		}
		return hir.NewUnaryMethod(op, arg, decl, decl.Result, span), true
	}
	return nil, false
}
