package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Probe syntax
	SynInfo            Code = 2000
	SynUnexpectedToken Code = 2001
	SynUnclosedParen   Code = 2002
	SynBadLiteral      Code = 2003
	SynExpectType      Code = 2004
	SynUnknownName     Code = 2005
	SynUnknownType     Code = 2006
	SynBadDeclaration  Code = 2007

	// Operator resolution
	SemaInfo                            Code = 3000
	SemaBadOperatorForTypes             Code = 3001
	SemaBadUnaryOperator                Code = 3002
	SemaAmbiguousOperator               Code = 3003
	SemaDivisionByConstantZero          Code = 3004
	SemaUselessLiteralComparison        Code = 3005
	SemaSignExtensionOnOr               Code = 3006
	SemaNeverOfType                     Code = 3007
	SemaAlwaysOfType                    Code = 3008
	SemaPointerInTypeTest               Code = 3009
	SemaReferenceRequiredForTypeTest    Code = 3010
	SemaMissingTrueFalseOperatorPair    Code = 3011
	SemaMismatchedBoolOperatorSignature Code = 3012
	SemaBadReferenceComparison          Code = 3013
	SemaNoConversion                    Code = 3014
	SemaNotAddressable                  Code = 3015
	SemaUnsafeNeeded                    Code = 3016
	SemaVoidPointerArithmetic           Code = 3017
	SemaRangeOperandNotIntegral         Code = 3018

	// I/O
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002
	IODecodeError   Code = 4003

	// Probe expectations
	PrjInfo                Code = 5000
	PrjTypeMismatch        Code = 5001
	PrjDiagnosticsMismatch Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	SynInfo:            "Syntax information",
	SynUnexpectedToken: "Unexpected token",
	SynUnclosedParen:   "Unclosed parenthesis",
	SynBadLiteral:      "Malformed literal",
	SynExpectType:      "Expected a type",
	SynUnknownName:     "Unknown name",
	SynUnknownType:     "Unknown type",
	SynBadDeclaration:  "Invalid declaration",

	SemaInfo:                            "Semantic information",
	SemaBadOperatorForTypes:             "Operator cannot be applied to operands",
	SemaBadUnaryOperator:                "Operator cannot be applied to operand",
	SemaAmbiguousOperator:               "Ambiguous operator",
	SemaDivisionByConstantZero:          "Division by constant zero",
	SemaUselessLiteralComparison:        "Comparison to out-of-range constant",
	SemaSignExtensionOnOr:               "Bitwise or on sign-extended operand",
	SemaNeverOfType:                     "Expression is never of the given type",
	SemaAlwaysOfType:                    "Expression is always of the given type",
	SemaPointerInTypeTest:               "Pointer type in type test",
	SemaReferenceRequiredForTypeTest:    "as requires a reference or nullable type",
	SemaMissingTrueFalseOperatorPair:    "Missing true/false operator pair",
	SemaMismatchedBoolOperatorSignature: "Logical operator overload has wrong signature",
	SemaBadReferenceComparison:          "Invalid reference comparison",
	SemaNoConversion:                    "No conversion between types",
	SemaNotAddressable:                  "Operand is not addressable",
	SemaUnsafeNeeded:                    "Operation requires unsafe context",
	SemaVoidPointerArithmetic:           "Arithmetic on void pointer",
	SemaRangeOperandNotIntegral:         "Range operand must be integral",

	IOLoadFileError: "I/O load file error",
	IOCacheError:    "Cache error",
	IODecodeError:   "Probe document decode error",

	PrjInfo:                "Probe information",
	PrjTypeMismatch:        "Case result type mismatch",
	PrjDiagnosticsMismatch: "Case diagnostics mismatch",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCodeID maps a textual ID such as "SEM3004" back to its Code.
func ParseCodeID(id string) (Code, bool) {
	for c := range codeDescription {
		if c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
