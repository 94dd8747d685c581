package expr

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/roach88/seqmin/internal/number"
)

// Kind distinguishes expression nodes. The order of the constants is the
// order used by Compare.
type Kind uint8

const (
	Constant Kind = iota
	Parameter
	Function
	Operator
)

func (k Kind) String() string {
	switch k {
	case Constant:
		return "constant"
	case Parameter:
		return "parameter"
	case Function:
		return "function"
	case Operator:
		return "operator"
	}
	return "unknown"
}

// Op is an arithmetic operator.
type Op byte

const (
	Add Op = '+'
	Sub Op = '-'
	Mul Op = '*'
	Div Op = '/'
	Pow Op = '^'
	Mod Op = '%'
)

// commutative reports whether children of op may be reordered and flattened.
func (o Op) commutative() bool {
	return o == Add || o == Mul
}

// Node is an expression tree node.
//
//   - Constant uses Value
//   - Parameter uses Name
//   - Function uses Name and Children as arguments
//   - Operator uses Op and Children as operands (two or more for Add and
//     Mul, exactly two otherwise)
type Node struct {
	Kind     Kind
	Op       Op
	Name     string
	Value    number.Number
	Children []*Node
}

// Const creates a constant node.
func Const(v int64) *Node {
	return &Node{Kind: Constant, Value: number.FromInt64(v)}
}

// ConstNum creates a constant node from a Number.
func ConstNum(v number.Number) *Node {
	return &Node{Kind: Constant, Value: v}
}

// Param creates a parameter node.
func Param(name string) *Node {
	return &Node{Kind: Parameter, Name: name}
}

// Func creates a function application.
func Func(name string, args ...*Node) *Node {
	return &Node{Kind: Function, Name: name, Children: args}
}

// NewOp creates an operator node.
func NewOp(op Op, children ...*Node) *Node {
	return &Node{Kind: Operator, Op: op, Children: children}
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// IsConstant reports whether n is a constant equal to v.
func (n *Node) IsConstant(v int64) bool {
	return n.Kind == Constant && n.Value.Equal(number.FromInt64(v))
}

// Equal reports structural equality.
func (n *Node) Equal(o *Node) bool {
	return Compare(n, o) == 0
}

// Compare is the total order used to sort commutative operands: constants
// before parameters before functions before operators, then by value, name
// or operator, then by children.
func Compare(a, b *Node) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	switch a.Kind {
	case Constant:
		return a.Value.Cmp(b.Value)
	case Parameter:
		return cmp.Compare(a.Name, b.Name)
	case Function:
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
	case Operator:
		if c := cmp.Compare(a.Op, b.Op); c != 0 {
			return c
		}
	}
	return slices.CompareFunc(a.Children, b.Children, Compare)
}

// IsSimpleFunction reports whether n is a function applied to exactly one
// parameter, such as a(n).
func IsSimpleFunction(n *Node) bool {
	return n.Kind == Function && len(n.Children) == 1 && n.Children[0].Kind == Parameter
}

// CollectNames returns the sorted, distinct names of all nodes of the given
// kind in the tree.
func CollectNames(n *Node, kind Kind) []string {
	seen := map[string]bool{}
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Kind == kind && n.Name != "" {
			seen[n.Name] = true
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// FreshName returns a single-letter name (a, b, ..., z, then a1, b1, ...)
// that no parameter or function in any of the trees uses.
func FreshName(trees ...*Node) string {
	used := map[string]bool{}
	for _, t := range trees {
		for _, k := range []Kind{Parameter, Function} {
			for _, name := range CollectNames(t, k) {
				used[name] = true
			}
		}
	}
	for suffix := 0; ; suffix++ {
		for c := 'a'; c <= 'z'; c++ {
			name := string(c)
			if suffix > 0 {
				name += strconv.Itoa(suffix)
			}
			if !used[name] {
				return name
			}
		}
	}
}
