package expr

// nonNegativeFunctions never return a negative value.
var nonNegativeFunctions = map[string]bool{
	"gcd": true,
}

// CanBeNegative reports whether n may evaluate to a negative value for some
// non-negative parameter values. It is conservative: false is a proof, true
// is not.
func CanBeNegative(n *Node) bool {
	switch n.Kind {
	case Constant:
		return n.Value.Sign() < 0
	case Parameter:
		return false
	case Function:
		switch {
		case nonNegativeFunctions[n.Name]:
			return false
		case n.Name == "max":
			for _, c := range n.Children {
				if !CanBeNegative(c) {
					return false
				}
			}
			return true
		case n.Name == "min":
			return anyCanBeNegative(n.Children)
		}
		return true
	}

	switch n.Op {
	case Add, Mul, Div:
		return anyCanBeNegative(n.Children)
	case Sub:
		// a-b with b a non-positive constant
		return len(n.Children) != 2 || CanBeNegative(n.Children[0]) ||
			n.Children[1].Kind != Constant || n.Children[1].Value.Sign() > 0
	case Pow:
		if len(n.Children) != 2 {
			return true
		}
		if e := n.Children[1]; e.Kind == Constant && !e.Value.IsOdd() {
			return false
		}
		return CanBeNegative(n.Children[0])
	case Mod:
		// the remainder takes the sign of the dividend
		return len(n.Children) == 0 || CanBeNegative(n.Children[0])
	}
	return true
}

func anyCanBeNegative(nodes []*Node) bool {
	for _, c := range nodes {
		if CanBeNegative(c) {
			return true
		}
	}
	return false
}
