package sema

import (
	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

func (c *Checker) resolveShortCircuit(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	lb, _ := in.Unwrap(l.Type)
	rb, _ := in.Unwrap(r.Type)
	if lb == c.builtins.Bool && rb == c.builtins.Bool {
		return hir.NewBinary(op, c.boolOperand(ctx, l), c.boolOperand(ctx, r), c.builtins.Bool, span), nil
	}
	if !c.isNominal(lb) || in.Kind(lb) == types.KindInterface {
		return c.badBinary(op, l, r, span)
	}
	return c.userShortCircuit(ctx, op, c.stripped(l), r, span)
}

// boolOperand reads a bool operand; a nullable bool counts as false when
// it has no value.
func (c *Checker) boolOperand(ctx Context, e *hir.Expr) *hir.Expr {
	e = c.stripped(e)
	if c.types.Kind(e.Type) == types.KindNullable {
		return hir.NewValueOrDefault(e, c.builtins.Bool, e.Span)
	}
	return e
}

// userShortCircuit lowers x && y on a user type T through T's operator
// false and operator &, evaluating x once:
//
//	let $t = x in if T.false($t) then $t else T.&($t, y)
//
// x || y uses operator true and operator |.
func (c *Checker) userShortCircuit(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	owner := l.Type
	bitSym, testSym := "&", "false"
	if op == hir.OpLogicalOr {
		bitSym, testSym = "|", "true"
	}

	bitOps := in.Operators(owner, bitSym, 2)
	if len(bitOps) == 0 {
		return c.badBinary(op, l, r, span)
	}
	bitOp := bitOps[0]
	if bitOp.Params[0] != owner || bitOp.Params[1] != owner || bitOp.Result != owner {
		return c.failWithNote(diag.SemaMismatchedBoolOperatorSignature, span,
			bitOp.Decl, "operator declared here",
			"operator '%s' on '%s' and '%s' needs 'operator %s' declared as (%s, %s) -> %s",
			op.Symbol(), c.label(l.Type), c.label(r.Type), bitSym, c.label(owner), c.label(owner), c.label(owner))
	}

	trueOps := in.Operators(owner, "true", 1)
	falseOps := in.Operators(owner, "false", 1)
	if len(trueOps) == 0 || len(falseOps) == 0 {
		note := bitOp.Decl
		noteMsg := "operator '" + bitSym + "' declared here"
		switch {
		case len(trueOps) > 0:
			note, noteMsg = trueOps[0].Decl, "operator 'true' declared here without 'false'"
		case len(falseOps) > 0:
			note, noteMsg = falseOps[0].Decl, "operator 'false' declared here without 'true'"
		}
		return c.failWithNote(diag.SemaMissingTrueFalseOperatorPair, span, note, noteMsg,
			"operator '%s' on '%s' and '%s' needs both 'operator true' and 'operator false'",
			op.Symbol(), c.label(l.Type), c.label(r.Type))
	}
	test := falseOps[0]
	if testSym == "true" {
		test = trueOps[0]
	}
	for _, decl := range [...]types.OperatorDecl{trueOps[0], falseOps[0]} {
		if decl.Result != c.builtins.Bool || decl.Params[0] != owner {
			return c.failWithNote(diag.SemaMismatchedBoolOperatorSignature, span,
				decl.Decl, "operator declared here",
				"operator '%s' on '%s' and '%s' needs 'operator %s' declared as (%s) -> bool",
				op.Symbol(), c.label(l.Type), c.label(r.Type), decl.Symbol, c.label(owner))
		}
	}

	right, ok := c.LiteralCoercion(ctx, r, owner)
	if !ok {
		return c.badBinary(op, l, r, span)
	}

	temp := c.newTemp()
	ref := func() *hir.Expr { return hir.NewTempRef(temp, owner, l.Span) }
	cond := hir.NewCall(owner, test, []*hir.Expr{ref()}, c.builtins.Bool, span)
	combined := hir.NewCall(owner, bitOp, []*hir.Expr{ref(), right}, owner, span)
	body := hir.NewIf(cond, ref(), combined, owner, span)
	return hir.NewLet(temp, l, body, span), nil
}

// resolveConnective handles ==> and <==>, defined on bool only.
func (c *Checker) resolveConnective(ctx Context, op hir.BinaryOp, l, r *hir.Expr, span source.Span) (*hir.Expr, error) {
	in := c.types
	lb, _ := in.Unwrap(l.Type)
	rb, _ := in.Unwrap(r.Type)
	if lb != c.builtins.Bool || rb != c.builtins.Bool {
		return c.badBinary(op, l, r, span)
	}
	return hir.NewBinary(op, c.boolOperand(ctx, l), c.boolOperand(ctx, r), c.builtins.Bool, span), nil
}
