package expr

import (
	"strings"
)

// precedence of an operator; atoms bind tightest.
func precedence(n *Node) int {
	if n.Kind == Constant && n.Value.Sign() < 0 {
		return 0
	}
	if n.Kind != Operator {
		return 4
	}
	switch n.Op {
	case Add, Sub:
		return 1
	case Mul, Mod:
		return 2
	case Div:
		// printed as a function call
		return 4
	case Pow:
		return 3
	}
	return 0
}

// String prints n in infix notation with the minimal parentheses.
// Division is printed as truncate(a/b) since it rounds toward zero.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch n.Kind {
	case Constant:
		sb.WriteString(n.Value.String())
	case Parameter:
		sb.WriteString(n.Name)
	case Function:
		sb.WriteString(n.Name)
		sb.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			c.write(sb)
		}
		sb.WriteByte(')')
	case Operator:
		if n.Op == Div {
			sb.WriteString("truncate(")
			n.writeOperands(sb, 2)
			sb.WriteByte(')')
			return
		}
		n.writeOperands(sb, precedence(n))
	}
}

func (n *Node) writeOperands(sb *strings.Builder, prec int) {
	for i, c := range n.Children {
		if i > 0 {
			sb.WriteByte(byte(n.Op))
		}
		cp := precedence(c)
		paren := cp < prec
		if cp == prec {
			switch {
			case n.Op == Pow:
				// right-associative: parenthesize a left operand
				paren = i == 0
			case i > 0 && !n.Op.commutative():
				paren = true
			}
		}
		// a negative constant needs parentheses after an operator
		if c.Kind == Constant && c.Value.Sign() < 0 && i == 0 && prec <= 1 {
			paren = false
		}
		if paren {
			sb.WriteByte('(')
		}
		c.write(sb)
		if paren {
			sb.WriteByte(')')
		}
	}
}
