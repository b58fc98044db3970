package hir

import (
	"slices"

	"opcheck/internal/source"
	"opcheck/internal/types"
)

func NewLiteral(lit LiteralData, ty types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprLiteral, Type: ty, Span: span, Data: lit}
}

func IntLiteral(v int64, ty types.TypeID, span source.Span) *Expr {
	return NewLiteral(LiteralData{Kind: LitInt, Int: v}, ty, span)
}

func BoolLiteral(v bool, ty types.TypeID, span source.Span) *Expr {
	return NewLiteral(LiteralData{Kind: LitBool, Bool: v}, ty, span)
}

func NullLiteral(ty types.TypeID, span source.Span) *Expr {
	return NewLiteral(LiteralData{Kind: LitNull}, ty, span)
}

// Retyped returns a copy of literal e carrying type ty.
func Retyped(e *Expr, ty types.TypeID) *Expr {
	lit, _ := e.Literal()
	return NewLiteral(lit, ty, e.Span)
}

func NewVarRef(name string, kind VarKind, ty types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprVarRef, Type: ty, Span: span, Data: VarRefData{Name: name, Kind: kind}}
}

func NewFieldAccess(obj *Expr, field string, readonly bool, ty types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprFieldAccess, Type: ty, Span: span, Data: FieldAccessData{Object: obj, Field: field, Readonly: readonly}}
}

func NewTypeRef(target types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprTypeRef, Type: target, Span: span, Data: TypeRefData{Target: target}}
}

func NewUnary(op UnaryOp, operand *Expr, ty types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprUnaryOp, Type: ty, Span: span, Data: UnaryOpData{Op: op, Operand: operand}}
}

// NewUnaryMethod builds a unary node bound to a user-defined operator.
func NewUnaryMethod(op UnaryOp, operand *Expr, method types.OperatorDecl, ty types.TypeID, span source.Span) *Expr {
	m := method
	m.Params = slices.Clone(method.Params)
	return &Expr{Kind: ExprUnaryOp, Type: ty, Span: span, Data: UnaryOpData{Op: op, Operand: operand, Method: &m}}
}

func NewBinary(op BinaryOp, left, right *Expr, ty types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprBinaryOp, Type: ty, Span: span, Data: BinaryOpData{Op: op, Left: left, Right: right}}
}

// NewCoerce wraps value in a conversion to ty; data.Value is overwritten.
func NewCoerce(value *Expr, ty types.TypeID, data CoerceData) *Expr {
	data.Value = value
	return &Expr{Kind: ExprCoerce, Type: ty, Span: value.Span, Data: data}
}

func NewCall(owner types.TypeID, method types.OperatorDecl, args []*Expr, ty types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprCall, Type: ty, Span: span, Data: CallData{Owner: owner, Method: method, Args: args}}
}

func NewHasValue(value *Expr, boolTy types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprHasValue, Type: boolTy, Span: span, Data: HasValueData{Value: value}}
}

func NewValueOrDefault(value *Expr, ty types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprValueOrDefault, Type: ty, Span: span, Data: ValueOrDefaultData{Value: value}}
}

func NewTagTest(value *Expr, tag string, boolTy types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprTagTest, Type: boolTy, Span: span, Data: TagTestData{Value: value, Tag: tag}}
}

func NewTagPayload(value *Expr, tag string, ty types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprTagPayload, Type: ty, Span: span, Data: TagPayloadData{Value: value, Tag: tag}}
}

// NewTypeOperand builds an unfolded size-of, type-of or default node.
func NewTypeOperand(kind ExprKind, target, ty types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: kind, Type: ty, Span: span, Data: TypeOperandData{Target: target}}
}

func NewLet(temp TempID, init, body *Expr, span source.Span) *Expr {
	return &Expr{Kind: ExprLet, Type: body.Type, Span: span, Data: LetData{Temp: temp, Init: init, Body: body}}
}

func NewTempRef(temp TempID, ty types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprTempRef, Type: ty, Span: span, Data: TempRefData{Temp: temp}}
}

func NewIf(cond, then, els *Expr, ty types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprIf, Type: ty, Span: span, Data: IfData{Cond: cond, Then: then, Else: els}}
}

// NewIncDec builds an increment/decrement node.
func NewIncDec(op UnaryOp, operand *Expr, ty types.TypeID, checked bool, span source.Span) *Expr {
	return &Expr{Kind: ExprUnaryOp, Type: ty, Span: span, Data: UnaryOpData{Op: op, Operand: operand, Checked: checked}}
}

func NewAssign(target, value *Expr, span source.Span) *Expr {
	return &Expr{Kind: ExprAssign, Type: target.Type, Span: span, Data: AssignData{Target: target, Value: value}}
}
