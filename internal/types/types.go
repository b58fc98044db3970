package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindChar
	KindInt
	KindUint
	KindFloat
	KindDecimal
	KindString
	// KindObject is the universal reference supertype.
	KindObject
	// KindNull is the type of the null literal.
	KindNull
	KindEnum
	KindPointer
	KindReference
	KindNullable
	// KindOptional is a transparent modifier carried over from declarations.
	KindOptional
	KindClass
	KindInterface
	KindStruct
	KindTypeParam
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindNull:
		return "null"
	case KindEnum:
		return "enum"
	case KindPointer:
		return "pointer"
	case KindReference:
		return "reference"
	case KindNullable:
		return "nullable"
	case KindOptional:
		return "optional"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindStruct:
		return "struct"
	case KindTypeParam:
		return "typeparam"
	case KindUnion:
		return "union"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats in bits.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Type is a compact descriptor for any supported type. Nominal kinds keep
// their metadata in side tables indexed by Payload.
type Type struct {
	Kind    Kind
	Elem    TypeID // pointer/reference/nullable/optional element
	Width   Width  // numeric primitives
	Payload uint32 // side-table slot for nominal kinds
}

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakePointer describes T*.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}

// MakeReference describes ref T.
func MakeReference(elem TypeID) Type {
	return Type{Kind: KindReference, Elem: elem}
}

// MakeNullable describes T?.
func MakeNullable(elem TypeID) Type {
	return Type{Kind: KindNullable, Elem: elem}
}

// MakeOptional describes the optional modifier over T.
func MakeOptional(elem TypeID) Type {
	return Type{Kind: KindOptional, Elem: elem}
}
