package number

import (
	"errors"
	"math/big"
)

// ErrOverflow is returned when a result would exceed the configured bit limit.
var ErrOverflow = errors.New("number overflow")

// Add returns a+b.
func Add(a, b Number) Number {
	if a.undef || b.undef {
		return Undefined
	}
	return wrap(new(big.Int).Add(a.big(), b.big()))
}

// Sub returns a-b.
func Sub(a, b Number) Number {
	if a.undef || b.undef {
		return Undefined
	}
	return wrap(new(big.Int).Sub(a.big(), b.big()))
}

// Neg returns -a.
func Neg(a Number) Number {
	if a.undef {
		return Undefined
	}
	return wrap(new(big.Int).Neg(a.big()))
}

// Trn returns max(a-b, 0).
func Trn(a, b Number) Number {
	d := Sub(a, b)
	if d.Sign() < 0 {
		return Zero
	}
	return d
}

// Mul returns a*b.
func Mul(a, b Number) Number {
	if a.undef || b.undef {
		return Undefined
	}
	return wrap(new(big.Int).Mul(a.big(), b.big()))
}

// Div returns the truncated quotient a/b. Division by zero is Undefined.
func Div(a, b Number) Number {
	if a.undef || b.undef || b.IsZero() {
		return Undefined
	}
	return wrap(new(big.Int).Quo(a.big(), b.big()))
}

// Dif returns a/b if b divides a exactly, and a otherwise.
func Dif(a, b Number) Number {
	if a.undef || b.undef || b.IsZero() {
		return Undefined
	}
	q, r := new(big.Int).QuoRem(a.big(), b.big(), new(big.Int))
	if r.Sign() != 0 {
		return a
	}
	return wrap(q)
}

// Mod returns the truncated remainder of a/b, which has the sign of a.
func Mod(a, b Number) Number {
	if a.undef || b.undef || b.IsZero() {
		return Undefined
	}
	return wrap(new(big.Int).Rem(a.big(), b.big()))
}

// Gcd returns the non-negative greatest common divisor. Gcd(0, 0) is 0.
func Gcd(a, b Number) Number {
	if a.undef || b.undef {
		return Undefined
	}
	x := new(big.Int).Abs(a.big())
	y := new(big.Int).Abs(b.big())
	return wrap(new(big.Int).GCD(nil, nil, x, y))
}

// Cmp returns 1 if a equals b and 0 otherwise.
func Cmp(a, b Number) Number {
	if a.undef || b.undef {
		return Undefined
	}
	if a.Equal(b) {
		return One
	}
	return Zero
}

// Min returns the smaller of a and b.
func Min(a, b Number) Number {
	if a.undef || b.undef {
		return Undefined
	}
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Number) Number {
	if a.undef || b.undef {
		return Undefined
	}
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Pow returns a^b.
//
// 0^0 is 1, 0^b is Undefined for negative b, (-1)^b alternates sign and any
// other base with a negative exponent yields 0. Results larger than maxBits
// return ErrOverflow.
func Pow(a, b Number, maxBits int) (Number, error) {
	if a.undef || b.undef {
		return Undefined, nil
	}
	if maxBits <= 0 {
		maxBits = DefaultMaxBits
	}
	switch {
	case a.IsZero():
		switch b.Sign() {
		case 1:
			return Zero, nil
		case 0:
			return One, nil
		default:
			return Undefined, nil
		}
	case a.Equal(One):
		return One, nil
	case a.Equal(FromInt64(-1)):
		if b.IsOdd() {
			return a, nil
		}
		return One, nil
	case b.Sign() < 0:
		return Zero, nil
	}
	exp, ok := b.Int64()
	if !ok || exp > int64(maxBits) {
		return Number{}, ErrOverflow
	}
	// |a| >= 2, so the result has at least (bitlen-1)*exp+1 bits
	if int64(a.BitLen()-1)*exp >= int64(maxBits) {
		return Number{}, ErrOverflow
	}
	r := new(big.Int).Exp(a.big(), big.NewInt(exp), nil)
	if r.BitLen() > maxBits {
		return Number{}, ErrOverflow
	}
	return wrap(r), nil
}

// Binomial returns the binomial coefficient C(n, k), extended to negative
// arguments following Kronenburg's definition.
func Binomial(n, k Number, maxBits int) (Number, error) {
	if n.undef || k.undef {
		return Undefined, nil
	}
	if maxBits <= 0 {
		maxBits = DefaultMaxBits
	}
	nn := n.Big()
	kk := k.Big()
	negate := false
	if nn.Sign() < 0 {
		switch {
		case kk.Sign() >= 0:
			// C(n,k) = (-1)^k C(-n+k-1, k)
			negate = kk.Bit(0) == 1
			nn.Neg(nn).Add(nn, kk).Sub(nn, big.NewInt(1))
		case kk.Cmp(nn) <= 0:
			// C(n,k) = (-1)^(n-k) C(-k-1, n-k)
			d := new(big.Int).Sub(nn, kk)
			negate = d.Bit(0) == 1
			nn = new(big.Int).Neg(kk)
			nn.Sub(nn, big.NewInt(1))
			kk = d
		default:
			return Zero, nil
		}
	}
	if kk.Sign() < 0 || nn.Cmp(kk) < 0 {
		return Zero, nil
	}
	// use the smaller of k and n-k
	if rest := new(big.Int).Sub(nn, kk); rest.Cmp(kk) < 0 {
		kk = rest
	}
	if !kk.IsInt64() || kk.Int64() > int64(maxBits) {
		return Number{}, ErrOverflow
	}
	steps := kk.Int64()
	r := big.NewInt(1)
	f := new(big.Int)
	for i := int64(0); i < steps; i++ {
		f.Sub(nn, big.NewInt(i))
		r.Mul(r, f)
		r.Quo(r, big.NewInt(i+1))
		if r.BitLen() > maxBits {
			return Number{}, ErrOverflow
		}
	}
	if negate {
		r.Neg(r)
	}
	return wrap(r), nil
}
