package ir

import (
	"errors"
	"fmt"
)

// Assignment packs a single variable mutation into one byte:
//
//	bit 7    mode (1 = Diff, 0 = Absolute)
//	bit 6    sign (1 = negative)
//	bits 0-5 magnitude
//
// Diff means "increment the target by value", Absolute means "set the target
// to value". The value domain is exactly [-63, 63] and zero is always encoded
// with a positive sign.
type Assignment byte

const (
	assignDiffBit       = 0x80
	assignSignBit       = 0x40
	assignMagnitudeMask = 0x3f

	// MaxAssignmentMagnitude is the largest encodable |value|.
	MaxAssignmentMagnitude = assignMagnitudeMask
)

// ErrEncoding is matched (via errors.Is) by every EncodingError.
var ErrEncoding = errors.New("assignment value out of range")

// EncodingError reports a value that does not fit in an Assignment.
type EncodingError struct {
	Value int64
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%v: %d not in [-%d, %d]",
		ErrEncoding, e.Value, MaxAssignmentMagnitude, MaxAssignmentMagnitude)
}

func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}

// NewAssignment encodes a mode and value. Values outside [-63, 63] are
// rejected with an EncodingError rather than truncated.
func NewAssignment(isDiff bool, value int64) (Assignment, error) {
	if value < -MaxAssignmentMagnitude || value > MaxAssignmentMagnitude {
		return 0, &EncodingError{Value: value}
	}
	var a Assignment
	if isDiff {
		a |= assignDiffBit
	}
	if value < 0 {
		a |= assignSignBit
		value = -value
	}
	return a | Assignment(value), nil
}

// MustAssignment is like NewAssignment but panics on error.
// Use only in tests or when the value is known to be in range.
func MustAssignment(isDiff bool, value int64) Assignment {
	a, err := NewAssignment(isDiff, value)
	if err != nil {
		panic(err)
	}
	return a
}

// IsDiff reports whether the assignment increments rather than overwrites.
func (a Assignment) IsDiff() bool {
	return a&assignDiffBit != 0
}

// Value decodes the signed value.
func (a Assignment) Value() int64 {
	m := int64(a & assignMagnitudeMask)
	if a&assignSignBit != 0 {
		return -m
	}
	return m
}

// String renders the assignment as it appears after a cell in a stp
// operation: "+=3", "+=-2" or "=5".
func (a Assignment) String() string {
	if a.IsDiff() {
		return fmt.Sprintf("+=%d", a.Value())
	}
	return fmt.Sprintf("=%d", a.Value())
}
