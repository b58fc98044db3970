package types

import (
	"fmt"
	"strings"
)

// Label returns a user-facing name for a TypeID.
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if id == NoTypeID || typesIn == nil {
		return "?"
	}
	if depth > 8 {
		return "..."
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindVoid, KindBool, KindChar, KindDecimal, KindString, KindObject, KindNull:
		return tt.Kind.String()
	case KindInt:
		return fmt.Sprintf("int%d", tt.Width)
	case KindUint:
		return fmt.Sprintf("uint%d", tt.Width)
	case KindFloat:
		return fmt.Sprintf("float%d", tt.Width)
	case KindPointer:
		return labelDepth(typesIn, tt.Elem, depth+1) + "*"
	case KindReference:
		return "ref " + labelDepth(typesIn, tt.Elem, depth+1)
	case KindNullable:
		return labelDepth(typesIn, tt.Elem, depth+1) + "?"
	case KindOptional:
		return "opt " + labelDepth(typesIn, tt.Elem, depth+1)
	case KindClass, KindInterface, KindStruct:
		if info, ok := typesIn.NominalInfo(id); ok && info.Name != "" {
			return info.Name
		}
	case KindEnum:
		if info, ok := typesIn.EnumInfo(id); ok && info.Name != "" {
			return info.Name
		}
	case KindUnion:
		if info, ok := typesIn.UnionInfo(id); ok {
			if info.Name != "" {
				return info.Name
			}
			parts := make([]string, 0, len(info.Members))
			for _, m := range info.Members {
				parts = append(parts, m.Tag)
			}
			return strings.Join(parts, " | ")
		}
	case KindTypeParam:
		if info, ok := typesIn.TypeParamInfo(id); ok && info.Name != "" {
			return info.Name
		}
	}
	return tt.Kind.String()
}

// PrimitiveByName resolves the spelling of a built-in type.
func (in *Interner) PrimitiveByName(name string) (TypeID, bool) {
	b := in.builtins
	switch name {
	case "void":
		return b.Void, true
	case "bool":
		return b.Bool, true
	case "char":
		return b.Char, true
	case "int8", "sbyte":
		return b.Int8, true
	case "int16", "short":
		return b.Int16, true
	case "int32", "int":
		return b.Int32, true
	case "int64", "long":
		return b.Int64, true
	case "uint8", "byte":
		return b.Uint8, true
	case "uint16", "ushort":
		return b.Uint16, true
	case "uint32", "uint":
		return b.Uint32, true
	case "uint64", "ulong":
		return b.Uint64, true
	case "float32", "float":
		return b.Float32, true
	case "float64", "double":
		return b.Float64, true
	case "decimal":
		return b.Decimal, true
	case "string":
		return b.String, true
	case "object":
		return b.Object, true
	case "Type":
		return b.TypeHandle, true
	case "Range":
		return b.Range, true
	case "Maplet":
		return b.Maplet, true
	}
	return NoTypeID, false
}
