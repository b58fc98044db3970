package probe

import (
	"fmt"

	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/sema"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

// Lowerer turns parsed case expressions into typed trees, resolving
// every operator through the checker on the way up. A nil result means
// a diagnostic has been reported for the node or one of its operands.
type Lowerer struct {
	env      *Env
	checker  *sema.Checker
	reporter diag.Reporter
}

func NewLowerer(env *Env, checker *sema.Checker, reporter diag.Reporter) *Lowerer {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Lowerer{env: env, checker: checker, reporter: reporter}
}

func (l *Lowerer) errorf(code diag.Code, sp source.Span, format string, args ...any) *hir.Expr {
	diag.ReportError(l.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
	return nil
}

// Lower resolves n under ctx.
func (l *Lowerer) Lower(ctx sema.Context, n *Node) *hir.Expr {
	switch n.Kind {
	case NodeIdent:
		v, ok := l.env.Lookup(n.Name)
		if !ok {
			return l.errorf(diag.SynUnknownName, n.Span, "unknown name %q", n.Name)
		}
		return hir.NewVarRef(v.Name, v.Kind, v.Type, n.Span)

	case NodeLiteral:
		return l.literal(ctx, n)

	case NodeUnary:
		x := l.Lower(ctx, n.X)
		return l.result(l.checker.Unary(ctx, n.Unary, x, n.Span))

	case NodeTypeOp:
		ref := l.typeRef(n.Type)
		if ref == nil {
			return nil
		}
		return l.result(l.checker.Unary(ctx, n.Unary, ref, n.Span))

	case NodeBinary:
		x := l.Lower(ctx, n.X)
		var y *hir.Expr
		if n.Type != nil {
			y = l.typeRef(n.Type)
		} else {
			y = l.Lower(ctx, n.Y)
		}
		return l.result(l.checker.Binary(ctx, n.Binary, x, y, n.Span))

	case NodeCast:
		ref := l.typeRef(n.Type)
		x := l.Lower(ctx, n.X)
		if ref == nil {
			return nil
		}
		return l.result(l.checker.Binary(ctx, hir.OpCast, x, ref, n.Span))

	case NodeBox, NodeUnbox:
		var ref *hir.Expr
		if n.Type != nil {
			ref = l.typeRef(n.Type)
		} else {
			ref = hir.NewTypeRef(l.env.Types.Builtins().Object, n.Span)
		}
		x := l.Lower(ctx, n.X)
		if ref == nil {
			return nil
		}
		op := hir.OpBox
		if n.Kind == NodeUnbox {
			op = hir.OpUnbox
		}
		return l.result(l.checker.Binary(ctx, op, x, ref, n.Span))

	case NodeScope:
		switch n.Scope {
		case ScopeChecked:
			ctx = ctx.WithChecked(true)
		case ScopeUnchecked:
			ctx = ctx.WithChecked(false)
		case ScopeUnsafe:
			ctx = ctx.WithUnsafe(true)
		}
		return l.Lower(ctx, n.X)

	case NodeMember:
		return l.member(ctx, n)

	case NodeAssign:
		target := l.Lower(ctx, n.X)
		value := l.Lower(ctx, n.Y)
		return l.result(l.checker.Assign(ctx, target, value, n.Span))
	}
	panic(fmt.Sprintf("probe: unhandled node kind %d", n.Kind))
}

// result drops the error: its diagnostic has already been reported.
func (l *Lowerer) result(e *hir.Expr, err error) *hir.Expr {
	if err != nil {
		return nil
	}
	return e
}

func (l *Lowerer) typeRef(t *TypeExpr) *hir.Expr {
	id, err := l.env.ResolveType(t)
	if err != nil {
		return l.errorf(diag.SynUnknownType, t.Span, "%v", err)
	}
	return hir.NewTypeRef(id, t.Span)
}

// literal types an unsuffixed integer by value (int32, uint32, int64,
// uint64), an unsuffixed float as float64, and a suffixed literal by its
// suffix when the value fits.
func (l *Lowerer) literal(ctx sema.Context, n *Node) *hir.Expr {
	in := l.env.Types
	b := in.Builtins()
	lit := n.Lit
	switch lit.Kind {
	case hir.LitBool:
		return hir.BoolLiteral(lit.Bool, b.Bool, n.Span)
	case hir.LitNull:
		return hir.NullLiteral(b.Null, n.Span)
	case hir.LitChar:
		return hir.NewLiteral(lit, b.Char, n.Span)
	case hir.LitString:
		return hir.NewLiteral(lit, b.String, n.Span)
	}

	if lit.Kind == hir.LitFloat || lit.Kind == hir.LitDecimal {
		switch n.Suffix {
		case "", "float64":
			return hir.NewLiteral(lit, b.Float64, n.Span)
		case "float32":
			lit.Float = float64(float32(lit.Float))
			return hir.NewLiteral(lit, b.Float32, n.Span)
		default:
			lit.Kind = hir.LitDecimal
			return hir.NewLiteral(lit, b.Decimal, n.Span)
		}
	}

	natural := hir.NewLiteral(lit, sema.NaturalIntType(b, lit), n.Span)
	if n.Suffix == "" {
		return natural
	}
	target, _ := in.PrimitiveByName(n.Suffix)
	res, ok := l.checker.LiteralCoercion(ctx, natural, target)
	if !ok || res.Kind != hir.ExprLiteral {
		return l.errorf(diag.SynBadLiteral, n.Span, "literal does not fit in '%s'", n.Suffix)
	}
	return res
}

// member handles Enum.Member constants and field reads.
func (l *Lowerer) member(ctx sema.Context, n *Node) *hir.Expr {
	in := l.env.Types
	if n.X.Kind == NodeIdent {
		if _, isVar := l.env.Lookup(n.X.Name); !isVar {
			if id, ok := l.env.TypeByName(n.X.Name); ok && in.Kind(id) == types.KindEnum {
				m, ok := in.EnumMember(id, n.Name)
				if !ok {
					return l.errorf(diag.SynUnknownName, n.Span, "enum '%s' has no member %q", n.X.Name, n.Name)
				}
				return hir.IntLiteral(m.Value, id, n.Span)
			}
		}
	}
	obj := l.Lower(ctx, n.X)
	if obj == nil {
		return nil
	}
	owner, _ := in.Unwrap(obj.Type)
	f, ok := l.env.Field(owner, n.Name)
	if !ok {
		return l.errorf(diag.SynUnknownName, n.Span, "type '%s' has no field %q", types.Label(in, obj.Type), n.Name)
	}
	return hir.NewFieldAccess(obj, n.Name, f.Readonly, f.Type, n.Span)
}
