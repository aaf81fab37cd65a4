package expr

import (
	"strconv"
	"strings"

	"github.com/pipe01/trellis/internal/value"
)

// String renders n back into expression syntax. Binary and conditional
// expressions are fully parenthesized so the structure is unambiguous.
func String(n Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

func write(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Literal:
		writeLiteral(b, n.Value)

	case *FieldAccess:
		if n.Base != nil {
			write(b, n.Base)
			b.WriteByte('.')
		}
		b.WriteString(strings.Join(n.Segments, "."))

	case *Index:
		write(b, n.Base)
		b.WriteByte('[')
		write(b, n.Index)
		b.WriteByte(']')

	case *MethodCall:
		write(b, n.Base)
		b.WriteByte('.')
		b.WriteString(n.Method)
		b.WriteByte('(')
		for i, arg := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			write(b, arg)
		}
		b.WriteByte(')')

	case *Unary:
		b.WriteString(n.Op.String())
		write(b, n.Operand)

	case *Binary:
		b.WriteByte('(')
		write(b, n.Left)
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		write(b, n.Right)
		b.WriteByte(')')

	case *Conditional:
		b.WriteByte('(')
		write(b, n.Cond)
		b.WriteString(" ? ")
		write(b, n.Then)
		b.WriteString(" : ")
		write(b, n.Else)
		b.WriteByte(')')

	default:
		b.WriteString("<invalid>")
	}
}

func writeLiteral(b *strings.Builder, v value.Value) {
	switch v := v.(type) {
	case value.String:
		b.WriteString(strconv.Quote(string(v)))

	case value.Float:
		s := value.FormatFloat(float64(v))
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		b.WriteString(s)

	case value.None, nil:
		b.WriteString("null")

	default:
		b.WriteString(value.Display(v))
	}
}
