package expr

import (
	"slices"

	"github.com/roach88/seqmin/internal/number"
)

// foldMaxBits bounds constants produced by folding powers.
const foldMaxBits = 1024

// Normalize rewrites n into canonical form in place and reports whether
// anything changed:
//   - nested + and * are flattened into one operator
//   - constant subtrees are folded
//   - identities (x+0, x*1, x^1, x-0, x/1) are removed and x*0 becomes 0
//   - operands of + and * are sorted by Compare
//
// Folding never produces an undefined value: 1/0 stays as written.
func Normalize(n *Node) bool {
	changed := false
	for normalizeOnce(n) {
		changed = true
	}
	return changed
}

func normalizeOnce(n *Node) bool {
	changed := false
	for _, c := range n.Children {
		changed = normalizeOnce(c) || changed
	}
	if n.Kind != Operator {
		return changed
	}
	if n.Op.commutative() {
		changed = flatten(n) || changed
		changed = foldCommutative(n) || changed
	} else if foldBinary(n) {
		return true
	}
	if n.Kind == Operator {
		changed = removeIdentities(n) || changed
	}
	if n.Kind == Operator && n.Op.commutative() && !slices.IsSortedFunc(n.Children, Compare) {
		slices.SortStableFunc(n.Children, Compare)
		changed = true
	}
	return changed
}

// flatten splices children that use the same associative operator.
func flatten(n *Node) bool {
	if !slices.ContainsFunc(n.Children, func(c *Node) bool { return c.Kind == Operator && c.Op == n.Op }) {
		return false
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == Operator && c.Op == n.Op {
			out = append(out, c.Children...)
		} else {
			out = append(out, c)
		}
	}
	n.Children = out
	return true
}

// foldCommutative combines all constant operands of + or * into one.
func foldCommutative(n *Node) bool {
	count := 0
	acc := number.Zero
	if n.Op == Mul {
		acc = number.One
	}
	var rest []*Node
	for _, c := range n.Children {
		if c.Kind != Constant {
			rest = append(rest, c)
			continue
		}
		count++
		if n.Op == Add {
			acc = number.Add(acc, c.Value)
		} else {
			acc = number.Mul(acc, c.Value)
		}
	}
	if count == 0 {
		return false
	}
	if len(rest) == 0 {
		*n = *ConstNum(acc)
		return true
	}
	if count == 1 && n.Children[0].Kind == Constant {
		return false
	}
	n.Children = append([]*Node{ConstNum(acc)}, rest...)
	return true
}

// foldBinary evaluates a non-commutative operator on two constants.
func foldBinary(n *Node) bool {
	if len(n.Children) != 2 || n.Children[0].Kind != Constant || n.Children[1].Kind != Constant {
		return false
	}
	v, ok := apply(n.Op, n.Children[0].Value, n.Children[1].Value)
	if !ok {
		return false
	}
	*n = *ConstNum(v)
	return true
}

func apply(op Op, a, b number.Number) (number.Number, bool) {
	var v number.Number
	switch op {
	case Add:
		v = number.Add(a, b)
	case Sub:
		v = number.Sub(a, b)
	case Mul:
		v = number.Mul(a, b)
	case Div:
		v = number.Div(a, b)
	case Mod:
		v = number.Mod(a, b)
	case Pow:
		r, err := number.Pow(a, b, foldMaxBits)
		if err != nil {
			return number.Number{}, false
		}
		v = r
	default:
		return number.Number{}, false
	}
	return v, !v.IsUndefined()
}

func removeIdentities(n *Node) bool {
	switch n.Op {
	case Add, Mul:
		identity := int64(0)
		if n.Op == Mul {
			identity = 1
			if slices.ContainsFunc(n.Children, func(c *Node) bool { return c.IsConstant(0) }) {
				*n = *Const(0)
				return true
			}
		}
		out := slices.DeleteFunc(slices.Clone(n.Children), func(c *Node) bool { return c.IsConstant(identity) })
		if len(out) == len(n.Children) {
			if len(out) == 1 {
				*n = *out[0]
				return true
			}
			return false
		}
		switch len(out) {
		case 0:
			*n = *Const(identity)
		case 1:
			*n = *out[0]
		default:
			n.Children = out
		}
		return true
	case Sub, Div:
		// x-0 and x/1
		identity := int64(0)
		if n.Op == Div {
			identity = 1
		}
		if len(n.Children) == 2 && n.Children[1].IsConstant(identity) {
			*n = *n.Children[0]
			return true
		}
	case Pow:
		if len(n.Children) == 2 && n.Children[1].IsConstant(1) {
			*n = *n.Children[0]
			return true
		}
	}
	return false
}
