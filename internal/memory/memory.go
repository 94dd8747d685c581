// Package memory implements the addressable store that programs operate on.
//
// Memory is semantically one infinite, zero-defaulted address space indexed by
// non-negative integers. Most programs touch only a few low cells (registers
// and loop counters), so the first FastSize cells live in a fixed array and
// every other address goes to a sparse map.
//
// Invariant: the sparse map never holds a zero value. Writing zero deletes
// the entry, which keeps Equal and ApproximateSize structural.
package memory

import (
	"math"

	"github.com/roach88/seqmin/internal/number"
)

// FastSize is the number of cells kept in the fixed array.
const FastSize = 16

// Memory maps addresses to numbers. The zero value is an empty memory.
// A Memory is not safe for concurrent use.
type Memory struct {
	fast   [FastSize]number.Number
	sparse map[int64]number.Number
}

// New creates an empty memory.
func New() *Memory {
	return &Memory{}
}

// Get returns the value at index, or zero if it was never set.
// Negative indexes read as zero.
func (m *Memory) Get(index int64) number.Number {
	if index >= 0 && index < FastSize {
		return m.fast[index]
	}
	if m.sparse == nil {
		return number.Zero
	}
	return m.sparse[index]
}

// Set overwrites the value at index.
func (m *Memory) Set(index int64, value number.Number) {
	if index >= 0 && index < FastSize {
		m.fast[index] = value
		return
	}
	if value.IsZero() {
		if m.sparse != nil {
			delete(m.sparse, index)
		}
		return
	}
	if m.sparse == nil {
		m.sparse = make(map[int64]number.Number)
	}
	m.sparse[index] = value
}

// Clear resets every cell to zero.
func (m *Memory) Clear() {
	m.fast = [FastSize]number.Number{}
	m.sparse = nil
}

// ClearRange resets length cells starting at start.
func (m *Memory) ClearRange(start, length int64) {
	if length <= 0 {
		return
	}
	end := rangeEnd(start, length)
	for i := max(start, 0); i < min(end, FastSize); i++ {
		m.fast[i] = number.Zero
	}
	if len(m.sparse) == 0 {
		return
	}
	// iterate whichever side is smaller
	if end-start < int64(len(m.sparse)) {
		for i := start; i < end; i++ {
			delete(m.sparse, i)
		}
		return
	}
	for k := range m.sparse {
		if k >= start && k < end {
			delete(m.sparse, k)
		}
	}
}

// Fragment returns a copy of length cells starting at start, re-indexed so
// that start becomes address 0.
func (m *Memory) Fragment(start, length int64) *Memory {
	frag := New()
	if length <= 0 {
		return frag
	}
	if length <= FastSize+int64(len(m.sparse)) {
		for i := int64(0); i < length; i++ {
			if v := m.Get(start + i); !v.IsZero() {
				frag.Set(i, v)
			}
		}
		return frag
	}
	// long fragment: only non-zero cells need copying
	end := rangeEnd(start, length)
	for i := int64(0); i < FastSize; i++ {
		if i >= start && i < end && !m.fast[i].IsZero() {
			frag.Set(i-start, m.fast[i])
		}
	}
	for k, v := range m.sparse {
		if k >= start && k < end {
			frag.Set(k-start, v)
		}
	}
	return frag
}

// rangeEnd returns start+length for a positive length, saturated at the
// largest address.
func rangeEnd(start, length int64) int64 {
	if start > 0 && length > math.MaxInt64-start {
		return math.MaxInt64
	}
	return start + length
}

// Clone returns an independent copy.
func (m *Memory) Clone() *Memory {
	c := &Memory{fast: m.fast}
	if len(m.sparse) > 0 {
		c.sparse = make(map[int64]number.Number, len(m.sparse))
		for k, v := range m.sparse {
			c.sparse[k] = v
		}
	}
	return c
}

// ApproximateSize is a cheap cost estimate: FastSize plus one per sparse
// entry. Search heuristics use it to bound memory growth.
func (m *Memory) ApproximateSize() int {
	return FastSize + len(m.sparse)
}

// IsLess compares the first length cells of m and other lexicographically.
// With checkNonNeg set, a negative cell in m disqualifies it and IsLess
// returns false. A non-positive length is never less.
func (m *Memory) IsLess(other *Memory, length int64, checkNonNeg bool) bool {
	if length <= 0 {
		return false
	}
	if length == 1 {
		lhs := m.Get(0)
		if checkNonNeg && lhs.Sign() < 0 {
			return false
		}
		return lhs.Cmp(other.Get(0)) < 0
	}
	for i := int64(0); i < length; i++ {
		lhs := m.Get(i)
		if checkNonNeg && lhs.Sign() < 0 {
			return false
		}
		switch c := lhs.Cmp(other.Get(i)); {
		case c < 0:
			if !checkNonNeg {
				return true
			}
			// remaining cells must still be non-negative
			for j := i + 1; j < length; j++ {
				if m.Get(j).Sign() < 0 {
					return false
				}
			}
			return true
		case c > 0:
			return false
		}
	}
	return false
}

// Equal reports structural equality over the whole address space.
func (m *Memory) Equal(other *Memory) bool {
	for i := range m.fast {
		if !m.fast[i].Equal(other.fast[i]) {
			return false
		}
	}
	if len(m.sparse) != len(other.sparse) {
		return false
	}
	for k, v := range m.sparse {
		ov, ok := other.sparse[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
