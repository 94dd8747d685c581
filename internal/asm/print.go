package asm

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/seqmin/internal/ir"
)

// Format renders p as program text, one operation per line.
func Format(p *ir.Program) string {
	var sb strings.Builder
	writeProgram(&sb, p, 0)
	return sb.String()
}

// Write renders p to w.
func Write(w io.Writer, p *ir.Program) error {
	_, err := io.WriteString(w, Format(p))
	return err
}

// FormatOperation renders a single leaf operation or a loop header.
func FormatOperation(op ir.Operation) string {
	switch op.Type {
	case ir.OpNop:
		return "nop"
	case ir.OpStp:
		parts := make([]string, len(op.Steps))
		for i, s := range op.Steps {
			parts[i] = fmt.Sprintf("$%d%s", s.Cell, s.Assign)
		}
		return "stp " + strings.Join(parts, ",")
	case ir.OpLoop:
		if n := op.LoopLength(); n > 1 {
			return fmt.Sprintf("lpb %s,%d", op.Target, n)
		}
		return "lpb " + op.Target.String()
	default:
		return fmt.Sprintf("%s %s,%s", op.Type, op.Target, op.Source)
	}
}

func writeProgram(sb *strings.Builder, p *ir.Program, depth int) {
	if p == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	for _, op := range p.Ops {
		sb.WriteString(indent)
		sb.WriteString(FormatOperation(op))
		if op.Comment != "" {
			sb.WriteString(" ; ")
			sb.WriteString(op.Comment)
		}
		sb.WriteByte('\n')
		if op.IsLoop() {
			writeProgram(sb, op.Body, depth+1)
			sb.WriteString(indent)
			sb.WriteString("lpe\n")
		}
	}
}
