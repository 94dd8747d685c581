package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramIDDeterminism(t *testing.T) {
	id1, err := ProgramID(squares())
	require.NoError(t, err)
	id2, err := ProgramID(squares())
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "ProgramID must be deterministic")
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestProgramIDIgnoresComments(t *testing.T) {
	p := squares()
	p.Ops[0].Comment = "odd increment"
	assert.Equal(t, MustProgramID(squares()), MustProgramID(p))
	assert.Equal(t, "odd increment", p.Ops[0].Comment, "ProgramID must not mutate its input")
}

func TestProgramIDChangesWithContent(t *testing.T) {
	p := squares()
	p.Ops[0].Source = Const(3)
	assert.NotEqual(t, MustProgramID(squares()), MustProgramID(p))
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte(`{"ops":[]}`)
	assert.NotEqual(t, hashWithDomain(DomainProgram, data), hashWithDomain("other/v1", data))
}
