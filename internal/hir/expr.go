package hir

import (
	"opcheck/internal/source"
	"opcheck/internal/types"
)

// ExprKind enumerates typed expression kinds.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprVarRef
	ExprFieldAccess
	// ExprTypeRef is a type used as an operand (is/as/cast/sizeof/...).
	ExprTypeRef
	ExprUnaryOp
	ExprBinaryOp
	// ExprCoerce is an inserted conversion wrapper.
	ExprCoerce
	// ExprCall is a synthesized call of a user-defined operator.
	ExprCall
	ExprHasValue
	ExprValueOrDefault
	ExprTagTest
	ExprTagPayload
	ExprSizeOf
	ExprTypeOf
	ExprDefault
	// ExprLet evaluates Init once into a temporary visible in Body.
	ExprLet
	ExprTempRef
	ExprIf
	// ExprAssign stores Value into the addressable Target.
	ExprAssign
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprVarRef:
		return "VarRef"
	case ExprFieldAccess:
		return "FieldAccess"
	case ExprTypeRef:
		return "TypeRef"
	case ExprUnaryOp:
		return "UnaryOp"
	case ExprBinaryOp:
		return "BinaryOp"
	case ExprCoerce:
		return "Coerce"
	case ExprCall:
		return "Call"
	case ExprHasValue:
		return "HasValue"
	case ExprValueOrDefault:
		return "ValueOrDefault"
	case ExprTagTest:
		return "TagTest"
	case ExprTagPayload:
		return "TagPayload"
	case ExprSizeOf:
		return "SizeOf"
	case ExprTypeOf:
		return "TypeOf"
	case ExprDefault:
		return "Default"
	case ExprLet:
		return "Let"
	case ExprTempRef:
		return "TempRef"
	case ExprIf:
		return "If"
	case ExprAssign:
		return "Assign"
	default:
		return "Unknown"
	}
}

// Expr is an immutable typed node. Nodes are shared read-only; every
// rewrite allocates a new node and a node is never placed in two tree
// positions (repeated uses go through ExprLet/ExprTempRef).
type Expr struct {
	Kind ExprKind
	Type types.TypeID
	Span source.Span
	Data ExprData
}

// ExprData is the kind-specific payload.
type ExprData interface {
	exprData()
}

// LiteralKind tags the compile-time value carried by a literal.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitUint
	LitFloat
	LitDecimal
	LitBool
	LitChar
	LitString
	LitNull
)

// LiteralData holds a compile-time value. Integers that fit int64 use
// Int; larger unsigned values use Uint. Decimal values are kept in Float.
// Enum constants are integer literals typed with the enum.
type LiteralData struct {
	Kind  LiteralKind
	Int   int64
	Uint  uint64
	Float float64
	Bool  bool
	Char  rune
	Str   string
}

func (LiteralData) exprData() {}

// IsZero reports numeric zero (integer, float or decimal).
func (l LiteralData) IsZero() bool {
	switch l.Kind {
	case LitInt:
		return l.Int == 0
	case LitUint:
		return l.Uint == 0
	case LitFloat, LitDecimal:
		return l.Float == 0
	}
	return false
}

// IsNegative reports a negative numeric value.
func (l LiteralData) IsNegative() bool {
	switch l.Kind {
	case LitInt:
		return l.Int < 0
	case LitFloat, LitDecimal:
		return l.Float < 0
	}
	return false
}

// IsIntegral reports integer literals.
func (l LiteralData) IsIntegral() bool {
	return l.Kind == LitInt || l.Kind == LitUint
}

// VarKind classifies a bound name for the addressability check.
type VarKind uint8

const (
	VarLocal VarKind = iota
	VarParam
	VarConst
	VarReadonly
)

// VarRefData references a name bound by the resolver.
type VarRefData struct {
	Name string
	Kind VarKind
}

func (VarRefData) exprData() {}

// FieldAccessData reads a field of Object.
type FieldAccessData struct {
	Object   *Expr
	Field    string
	Readonly bool
}

func (FieldAccessData) exprData() {}

// TypeRefData is a type operand.
type TypeRefData struct {
	Target types.TypeID
}

func (TypeRefData) exprData() {}

// UnaryOpData carries the operand and, for user overloads, the operator.
type UnaryOpData struct {
	Op      UnaryOp
	Operand *Expr
	Method  *types.OperatorDecl
	// Checked marks increment/decrement under an overflow-checked context.
	Checked bool
}

func (UnaryOpData) exprData() {}

// BinaryOpData carries both operands of a primitive binary operation.
type BinaryOpData struct {
	Op    BinaryOp
	Left  *Expr
	Right *Expr
}

func (BinaryOpData) exprData() {}

// ConvKind names the conversion performed by an ExprCoerce node.
type ConvKind uint8

const (
	ConvIdentity ConvKind = iota
	ConvWiden
	ConvNarrow
	ConvUpcast
	ConvDowncast
	ConvBox
	ConvUnbox
	ConvEnumToUnderlying
	ConvUnderlyingToEnum
	ConvWrapNullable
	ConvUnwrapNullable
	// ConvLift applies Lifted to the value inside a nullable.
	ConvLift
	ConvDeref
	ConvPointer
)

func (c ConvKind) String() string {
	switch c {
	case ConvIdentity:
		return "identity"
	case ConvWiden:
		return "widen"
	case ConvNarrow:
		return "narrow"
	case ConvUpcast:
		return "upcast"
	case ConvDowncast:
		return "downcast"
	case ConvBox:
		return "box"
	case ConvUnbox:
		return "unbox"
	case ConvEnumToUnderlying:
		return "enum->underlying"
	case ConvUnderlyingToEnum:
		return "underlying->enum"
	case ConvWrapNullable:
		return "wrap"
	case ConvUnwrapNullable:
		return "unwrap"
	case ConvLift:
		return "lift"
	case ConvDeref:
		return "deref"
	case ConvPointer:
		return "pointer"
	default:
		return "conv?"
	}
}

// CoerceData wraps Value in a conversion to the node type. Checked marks
// narrowing under an overflow-checked context; Transparent marks wrappers
// lowering may elide.
type CoerceData struct {
	Value       *Expr
	Conv        ConvKind
	Lifted      ConvKind
	Checked     bool
	Transparent bool
}

func (CoerceData) exprData() {}

// CallData invokes a user-defined operator declared on Owner.
type CallData struct {
	Owner  types.TypeID
	Method types.OperatorDecl
	Args   []*Expr
}

func (CallData) exprData() {}

// HasValueData tests whether a nullable is engaged.
type HasValueData struct {
	Value *Expr
}

func (HasValueData) exprData() {}

// ValueOrDefaultData reads a nullable's value, or the zero value.
type ValueOrDefaultData struct {
	Value *Expr
}

func (ValueOrDefaultData) exprData() {}

// TagTestData checks whether a union value holds Tag.
type TagTestData struct {
	Value *Expr
	Tag   string
}

func (TagTestData) exprData() {}

// TagPayloadData extracts the payload of Tag from a union value.
type TagPayloadData struct {
	Value *Expr
	Tag   string
}

func (TagPayloadData) exprData() {}

// TypeOperandData is shared by size-of, type-of and default nodes that
// could not be folded.
type TypeOperandData struct {
	Target types.TypeID
}

func (TypeOperandData) exprData() {}

// TempID names a temporary introduced by ExprLet.
type TempID uint32

type LetData struct {
	Temp TempID
	Init *Expr
	Body *Expr
}

func (LetData) exprData() {}

type TempRefData struct {
	Temp TempID
}

func (TempRefData) exprData() {}

type AssignData struct {
	Target *Expr
	Value  *Expr
}

func (AssignData) exprData() {}

type IfData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

func (IfData) exprData() {}

// Literal returns the literal payload when e is a literal.
func (e *Expr) Literal() (LiteralData, bool) {
	if e == nil || e.Kind != ExprLiteral {
		return LiteralData{}, false
	}
	lit, ok := e.Data.(LiteralData)
	return lit, ok
}

// IsNullLiteral reports the null literal.
func (e *Expr) IsNullLiteral() bool {
	lit, ok := e.Literal()
	return ok && lit.Kind == LitNull
}

// IsZeroLiteral reports numeric zero literals.
func (e *Expr) IsZeroLiteral() bool {
	lit, ok := e.Literal()
	return ok && lit.IsZero()
}
