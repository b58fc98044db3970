//nolint:errcheck // Type assertions are checked by construction
package hir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"opcheck/internal/types"
)

// Printer dumps typed expression trees as indented text.
type Printer struct {
	w        io.Writer
	interner *types.Interner
	indent   int
}

// NewPrinter creates a new printer.
func NewPrinter(w io.Writer, interner *types.Interner) *Printer {
	return &Printer{w: w, interner: interner}
}

// PrintExpr writes e and its children, one node per line.
func (p *Printer) PrintExpr(e *Expr) {
	p.printIndent()
	if e == nil {
		p.printf("<nil>\n")
		return
	}
	p.printf("%s", e.Kind)
	if head := p.head(e); head != "" {
		p.printf(" %s", head)
	}
	p.printf(" : %s\n", p.typeStr(e.Type))
	p.indent++
	for _, child := range Children(e) {
		p.PrintExpr(child)
	}
	p.indent--
}

func (p *Printer) head(e *Expr) string {
	switch d := e.Data.(type) {
	case LiteralData:
		return literalText(d)
	case VarRefData:
		return d.Name
	case FieldAccessData:
		return "." + d.Field
	case UnaryOpData:
		if d.Method != nil {
			return d.Op.String() + " @user"
		}
		return d.Op.String()
	case BinaryOpData:
		return d.Op.String()
	case CoerceData:
		return coerceText(d)
	case CallData:
		return p.typeStr(d.Owner) + "." + d.Method.Symbol
	case TagTestData:
		return d.Tag
	case TagPayloadData:
		return d.Tag
	case TypeOperandData:
		return p.typeStr(d.Target)
	case LetData:
		return "$" + strconv.FormatUint(uint64(d.Temp), 10)
	case TempRefData:
		return "$" + strconv.FormatUint(uint64(d.Temp), 10)
	}
	return ""
}

func (p *Printer) printIndent() {
	for range p.indent {
		p.printf("  ")
	}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) typeStr(id types.TypeID) string {
	if p.interner == nil {
		return fmt.Sprintf("type#%d", id)
	}
	return types.Label(p.interner, id)
}

// Format renders e as a compact S-expression, e.g.
//
//	(+:uint8 b 5:uint8)
//	(widen:int64 x)
//	(let $1 n (&&:bool (==:bool (value-or-default:int32 $1) 5:int32) (has-value $1)))
func Format(in *types.Interner, e *Expr) string {
	var b strings.Builder
	formatExpr(&b, in, e)
	return b.String()
}

func formatExpr(b *strings.Builder, in *types.Interner, e *Expr) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	ty := types.Label(in, e.Type)
	switch d := e.Data.(type) {
	case LiteralData:
		b.WriteString(literalText(d))
		if d.Kind != LitBool && d.Kind != LitString && d.Kind != LitChar {
			b.WriteString(":" + ty)
		}
		return
	case VarRefData:
		b.WriteString(d.Name)
		return
	case TypeRefData:
		b.WriteString(ty)
		return
	case TempRefData:
		fmt.Fprintf(b, "$%d", d.Temp)
		return
	case FieldAccessData:
		formatExpr(b, in, d.Object)
		b.WriteString("." + d.Field)
		return
	}

	b.WriteByte('(')
	switch d := e.Data.(type) {
	case UnaryOpData:
		b.WriteString(d.Op.String())
		if d.Method != nil {
			b.WriteString("@user")
		}
		if d.Checked {
			b.WriteString(" checked")
		}
		b.WriteString(":" + ty)
	case BinaryOpData:
		b.WriteString(d.Op.String() + ":" + ty)
	case CoerceData:
		b.WriteString(coerceText(d) + ":" + ty)
	case CallData:
		fmt.Fprintf(b, "call %s.%s:%s", types.Label(in, d.Owner), d.Method.Symbol, ty)
	case HasValueData:
		b.WriteString("has-value")
	case ValueOrDefaultData:
		b.WriteString("value-or-default:" + ty)
	case TagTestData:
		b.WriteString("tag-test " + d.Tag)
	case TagPayloadData:
		b.WriteString("tag-payload " + d.Tag + ":" + ty)
	case TypeOperandData:
		fmt.Fprintf(b, "%s %s", strings.ToLower(e.Kind.String()), types.Label(in, d.Target))
	case LetData:
		fmt.Fprintf(b, "let $%d", d.Temp)
	case IfData:
		b.WriteString("if:" + ty)
	case AssignData:
		b.WriteString("=:" + ty)
	}
	for _, child := range Children(e) {
		b.WriteByte(' ')
		formatExpr(b, in, child)
	}
	b.WriteByte(')')
}

func coerceText(d CoerceData) string {
	s := d.Conv.String()
	if d.Conv == ConvLift {
		s += " " + d.Lifted.String()
	}
	if d.Checked {
		s += " checked"
	}
	if d.Transparent {
		s += "~"
	}
	return s
}

func literalText(d LiteralData) string {
	switch d.Kind {
	case LitInt:
		return strconv.FormatInt(d.Int, 10)
	case LitUint:
		return strconv.FormatUint(d.Uint, 10)
	case LitFloat:
		return strconv.FormatFloat(d.Float, 'g', -1, 64)
	case LitDecimal:
		return strconv.FormatFloat(d.Float, 'g', -1, 64) + "m"
	case LitBool:
		return strconv.FormatBool(d.Bool)
	case LitChar:
		return strconv.QuoteRune(d.Char)
	case LitString:
		return strconv.Quote(d.Str)
	case LitNull:
		return "null"
	}
	return "<literal>"
}
