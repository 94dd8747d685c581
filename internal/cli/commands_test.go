package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squaresProgram = `mov $1,1
lpb $0
  sub $0,1
  add $2,$1
  add $1,2
lpe
mov $0,$2
`

func TestEvalCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "squares.asm", squaresProgram)

	out, err := execute(t, "", "eval", "--terms", "6", path)
	require.NoError(t, err)
	assert.Equal(t, "0,1,4,9,16,25\n", out)
}

func TestEvalCommandJSON(t *testing.T) {
	out, err := execute(t, "mul $0,2\n", "eval", "--format", "json", "-n", "3", "-")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   EvalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"0", "2", "4"}, resp.Data.Terms)
	assert.Equal(t, int64(3), resp.Data.Steps)
}

func TestEvalCommandFailure(t *testing.T) {
	out, err := execute(t, "div $0,0\n", "eval", "-")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")
	assert.Contains(t, out, "UNDEFINED_RESULT")
}

func TestEvalCommandParseError(t *testing.T) {
	_, err := execute(t, "mov $0,1\nfrob $0\n", "eval", "-")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "line 2")
}

func TestEvalCommandMissingFile(t *testing.T) {
	_, err := execute(t, "", "eval", "/nonexistent/prog.asm")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestOptimizeCommand(t *testing.T) {
	out, err := execute(t, "add $0,2\nadd $0,3\nmov $1,7\n", "optimize", "-")
	require.NoError(t, err)
	assert.Equal(t, "add $0,5\n", out)
}

func TestOptimizeCommandJSON(t *testing.T) {
	out, err := execute(t, "add $0,0\n", "optimize", "--format", "json", "-")
	require.NoError(t, err)

	var resp struct {
		Data ProgramResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Changed)
	assert.Equal(t, 1, resp.Data.SizeBefore)
	assert.Equal(t, 0, resp.Data.SizeAfter)
	assert.Equal(t, "", resp.Data.Program)
}

func TestMinimizeCommand(t *testing.T) {
	out, err := execute(t, squaresProgram, "minimize", "-")
	require.NoError(t, err)
	assert.Equal(t, "pow $0,2\n", out)

	out, err = execute(t, squaresProgram, "minimize", "--no-optimize", "-")
	require.NoError(t, err)
	assert.Equal(t, "pow $0,2\n", out)
}

func TestMinimizeCommandUnchanged(t *testing.T) {
	out, err := execute(t, "mul $0,3\nadd $0,1\n", "minimize", "--format", "json", "-")
	require.NoError(t, err)

	var resp struct {
		Data ProgramResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Changed)
	assert.Equal(t, "mul $0,3\nadd $0,1\n", resp.Data.Program)
}

func TestFormulaCommand(t *testing.T) {
	out, err := execute(t, "pow $0,2\n", "formula", "-")
	require.NoError(t, err)
	assert.Equal(t, "a(n) = n^2\n", out)

	out, err = execute(t, squaresProgram, "formula", "--minimize", "-")
	require.NoError(t, err)
	assert.Equal(t, "a(n) = n^2\n", out)
}

func TestFormulaCommandLoop(t *testing.T) {
	out, err := execute(t, squaresProgram, "formula", "-")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")
}
