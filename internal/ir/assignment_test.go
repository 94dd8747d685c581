package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentRoundTrip(t *testing.T) {
	for _, isDiff := range []bool{false, true} {
		for v := int64(-MaxAssignmentMagnitude); v <= MaxAssignmentMagnitude; v++ {
			a, err := NewAssignment(isDiff, v)
			require.NoError(t, err, "mode=%v value=%d", isDiff, v)
			assert.Equal(t, isDiff, a.IsDiff(), "mode=%v value=%d", isDiff, v)
			assert.Equal(t, v, a.Value(), "mode=%v value=%d", isDiff, v)
		}
	}
}

func TestAssignmentZeroIsCanonical(t *testing.T) {
	a := MustAssignment(false, 0)
	assert.Equal(t, Assignment(0), a)

	d := MustAssignment(true, 0)
	assert.Equal(t, Assignment(0x80), d)
}

func TestAssignmentFitsOneByte(t *testing.T) {
	a := MustAssignment(true, -63)
	assert.Equal(t, Assignment(0xff), a)
}

func TestAssignmentOutOfRangeRejected(t *testing.T) {
	for _, v := range []int64{64, -64, 1000, -1 << 40} {
		_, err := NewAssignment(true, v)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEncoding), "value %d", v)

		var encErr *EncodingError
		require.True(t, errors.As(err, &encErr))
		assert.Equal(t, v, encErr.Value)
	}
}

func TestMustAssignmentPanics(t *testing.T) {
	assert.Panics(t, func() { MustAssignment(false, 64) })
}

func TestAssignmentString(t *testing.T) {
	assert.Equal(t, "+=5", MustAssignment(true, 5).String())
	assert.Equal(t, "+=-5", MustAssignment(true, -5).String())
	assert.Equal(t, "=-7", MustAssignment(false, -7).String())
}
