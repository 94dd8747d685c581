// Package number provides the arbitrary-precision integer values manipulated
// by seqmin programs.
//
// A Number is an immutable value type. The zero value is the integer 0.
// Besides ordinary integers a Number can be Undefined, the outcome of an
// operation such as division by zero. Undefined is distinct from zero and
// propagates through every arithmetic operation.
package number

import (
	"fmt"
	"math/big"
	"strings"
)

// DefaultMaxBits bounds the size of values produced by Pow and Binomial when
// the caller passes a non-positive limit.
const DefaultMaxBits = 4096

// Number is an arbitrary-precision signed integer or the Undefined marker.
// The wrapped big.Int is never mutated after construction.
type Number struct {
	v     *big.Int // nil means 0
	undef bool
}

var (
	// Zero is the integer 0.
	Zero = Number{}
	// One is the integer 1.
	One = FromInt64(1)
	// Undefined marks an erroneous result (e.g. division by zero).
	Undefined = Number{undef: true}
)

// FromInt64 creates a Number from an int64.
func FromInt64(n int64) Number {
	if n == 0 {
		return Number{}
	}
	return Number{v: big.NewInt(n)}
}

// FromBig creates a Number holding a copy of b.
func FromBig(b *big.Int) Number {
	if b == nil || b.Sign() == 0 {
		return Number{}
	}
	return Number{v: new(big.Int).Set(b)}
}

// wrap takes ownership of b without copying.
func wrap(b *big.Int) Number {
	if b.Sign() == 0 {
		return Number{}
	}
	return Number{v: b}
}

// Parse reads a decimal integer. "undef" parses as Undefined.
func Parse(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "undef" {
		return Undefined, nil
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Number{}, fmt.Errorf("invalid number %q", s)
	}
	return wrap(b), nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or with constant inputs.
func MustParse(s string) Number {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// IsUndefined reports whether n is the Undefined marker.
func (n Number) IsUndefined() bool {
	return n.undef
}

// IsZero reports whether n is the integer 0.
func (n Number) IsZero() bool {
	return !n.undef && n.v == nil
}

// Sign returns -1, 0 or +1. Undefined has sign 0.
func (n Number) Sign() int {
	if n.undef || n.v == nil {
		return 0
	}
	return n.v.Sign()
}

// IsOdd reports whether n is an odd integer.
func (n Number) IsOdd() bool {
	if n.undef || n.v == nil {
		return false
	}
	return n.v.Bit(0) == 1
}

// BitLen returns the bit length of |n|.
func (n Number) BitLen() int {
	if n.undef || n.v == nil {
		return 0
	}
	return n.v.BitLen()
}

// Int64 returns n as an int64 and whether the conversion is exact.
func (n Number) Int64() (int64, bool) {
	if n.undef {
		return 0, false
	}
	if n.v == nil {
		return 0, true
	}
	if !n.v.IsInt64() {
		return 0, false
	}
	return n.v.Int64(), true
}

// Big returns a copy of n as a big.Int. Undefined returns nil.
func (n Number) Big() *big.Int {
	if n.undef {
		return nil
	}
	if n.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(n.v)
}

// big returns the internal value for read-only use.
func (n Number) big() *big.Int {
	if n.v == nil {
		return zeroBig
	}
	return n.v
}

var zeroBig = new(big.Int)

// Cmp compares two numbers. Undefined orders after every integer and equal
// to itself.
func (n Number) Cmp(o Number) int {
	switch {
	case n.undef && o.undef:
		return 0
	case n.undef:
		return 1
	case o.undef:
		return -1
	}
	return n.big().Cmp(o.big())
}

// Equal reports whether n and o are the same value.
func (n Number) Equal(o Number) bool {
	return n.Cmp(o) == 0
}

// String returns the decimal form, or "undef".
func (n Number) String() string {
	if n.undef {
		return "undef"
	}
	return n.big().String()
}

// MarshalText implements encoding.TextMarshaler.
func (n Number) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Number) UnmarshalText(data []byte) error {
	v, err := Parse(string(data))
	if err != nil {
		return err
	}
	*n = v
	return nil
}
