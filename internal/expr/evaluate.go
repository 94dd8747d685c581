package expr

import (
	"fmt"

	"github.com/roach88/seqmin/internal/number"
)

// Evaluate computes n with the given parameter values. Supported functions
// are gcd, min, max, binomial and truncate.
func Evaluate(n *Node, params map[string]number.Number) (number.Number, error) {
	switch n.Kind {
	case Constant:
		return n.Value, nil
	case Parameter:
		v, ok := params[n.Name]
		if !ok {
			return number.Number{}, fmt.Errorf("unbound parameter %q", n.Name)
		}
		return v, nil
	}

	args := make([]number.Number, len(n.Children))
	for i, c := range n.Children {
		v, err := Evaluate(c, params)
		if err != nil {
			return number.Number{}, err
		}
		args[i] = v
	}

	if n.Kind == Function {
		return callFunction(n.Name, args)
	}
	if len(args) == 0 {
		return number.Number{}, fmt.Errorf("operator %c without operands", n.Op)
	}
	acc := args[0]
	for _, a := range args[1:] {
		v, ok := apply(n.Op, acc, a)
		if !ok {
			return number.Number{}, fmt.Errorf("%s %c %s is undefined", acc, n.Op, a)
		}
		acc = v
	}
	return acc, nil
}

func callFunction(name string, args []number.Number) (number.Number, error) {
	switch {
	case name == "truncate" && len(args) == 1:
		return args[0], nil
	case name == "gcd" && len(args) == 2:
		return number.Gcd(args[0], args[1]), nil
	case name == "min" && len(args) == 2:
		return number.Min(args[0], args[1]), nil
	case name == "max" && len(args) == 2:
		return number.Max(args[0], args[1]), nil
	case name == "binomial" && len(args) == 2:
		return number.Binomial(args[0], args[1], foldMaxBits)
	}
	return number.Number{}, fmt.Errorf("unsupported function %s/%d", name, len(args))
}
