package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/seqmin/internal/ir"
	"github.com/roach88/seqmin/internal/number"
)

// ParseError reports malformed program text. Line and Column are 1-based.
type ParseError struct {
	Line    int
	Column  int
	Message string

	// Err is the underlying cause, if any (for example an ir.EncodingError).
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses program text.
func Parse(src string) (*ir.Program, error) {
	return ParseReader(strings.NewReader(src))
}

// MustParse is like Parse but panics on error.
// Use only in tests or for programs known to be valid.
func MustParse(src string) *ir.Program {
	p, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return p
}

// frame is an open loop waiting for its lpe.
type frame struct {
	op   ir.Operation
	line int
	col  int
	ops  []ir.Operation
}

// ParseReader parses program text from r.
func ParseReader(r io.Reader) (*ir.Program, error) {
	root := &frame{}
	stack := []*frame{root}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		l := newLexer(lineNo, sc.Text())
		if l.empty() {
			continue
		}
		top := stack[len(stack)-1]

		name, col := l.word()
		switch name {
		case "lpe":
			if err := l.end(); err != nil {
				return nil, err
			}
			if len(stack) == 1 {
				return nil, &ParseError{Line: lineNo, Column: col, Message: "lpe without matching lpb"}
			}
			stack = stack[:len(stack)-1]
			loop := top.op
			loop.Body = ir.NewProgram(top.ops...)
			parent := stack[len(stack)-1]
			parent.ops = append(parent.ops, loop)
			continue
		case "lpb":
			op, err := l.loop(col)
			if err != nil {
				return nil, err
			}
			op.Comment = l.comment
			stack = append(stack, &frame{op: op, line: lineNo, col: col})
			continue
		}

		t, ok := ir.ParseOpType(name)
		if !ok {
			return nil, l.errorf(col, "unknown operation %q", name)
		}
		op, err := l.operation(t)
		if err != nil {
			return nil, err
		}
		op.Comment = l.comment
		top.ops = append(top.ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	if len(stack) > 1 {
		open := stack[len(stack)-1]
		return nil, &ParseError{Line: open.line, Column: open.col, Message: "lpb without matching lpe"}
	}
	if root.ops == nil {
		return &ir.Program{}, nil
	}
	return ir.NewProgram(root.ops...), nil
}

// lexer scans one line. pos indexes into text, which has its comment removed.
type lexer struct {
	line    int
	text    string
	pos     int
	comment string
}

func newLexer(line int, raw string) *lexer {
	l := &lexer{line: line, text: raw}
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		l.text = raw[:i]
		l.comment = strings.TrimSpace(raw[i+1:])
	}
	return l
}

func (l *lexer) errorf(col int, format string, args ...any) *ParseError {
	return &ParseError{Line: l.line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.text) && (l.text[l.pos] == ' ' || l.text[l.pos] == '\t') {
		l.pos++
	}
}

func (l *lexer) empty() bool {
	return strings.TrimSpace(l.text) == ""
}

// word reads the mnemonic and its column.
func (l *lexer) word() (string, int) {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.text) && l.text[l.pos] != ' ' && l.text[l.pos] != '\t' {
		l.pos++
	}
	return l.text[start:l.pos], start + 1
}

// args splits the rest of the line on commas, keeping each argument's column.
func (l *lexer) args() ([]string, []int) {
	var args []string
	var cols []int
	rest := l.text[l.pos:]
	if strings.TrimSpace(rest) == "" {
		return nil, nil
	}
	offset := l.pos
	for _, part := range strings.Split(rest, ",") {
		lead := len(part) - len(strings.TrimLeft(part, " \t"))
		args = append(args, strings.TrimSpace(part))
		cols = append(cols, offset+lead+1)
		offset += len(part) + 1
	}
	l.pos = len(l.text)
	return args, cols
}

func (l *lexer) end() error {
	l.skipSpace()
	if l.pos < len(l.text) {
		return l.errorf(l.pos+1, "unexpected %q", strings.TrimSpace(l.text[l.pos:]))
	}
	return nil
}

func (l *lexer) loop(col int) (ir.Operation, error) {
	args, cols := l.args()
	if len(args) < 1 || len(args) > 2 {
		return ir.Operation{}, l.errorf(col, "lpb expects 1 or 2 arguments, got %d", len(args))
	}
	counter, err := l.operand(args[0], cols[0])
	if err != nil {
		return ir.Operation{}, err
	}
	if counter.Kind == ir.Constant {
		return ir.Operation{}, l.errorf(cols[0], "loop counter must be a memory reference")
	}
	length := int64(1)
	if len(args) == 2 {
		n, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || n < 1 {
			return ir.Operation{}, l.errorf(cols[1], "loop length must be a positive integer, got %q", args[1])
		}
		length = n
	}
	return ir.NewLoop(counter, length, nil), nil
}

func (l *lexer) operation(t ir.OpType) (ir.Operation, error) {
	col := l.pos + 1
	args, cols := l.args()
	switch t {
	case ir.OpNop:
		if len(args) != 0 {
			return ir.Operation{}, l.errorf(cols[0], "nop takes no arguments")
		}
		return ir.Operation{Type: ir.OpNop}, nil
	case ir.OpStp:
		if len(args) == 0 {
			return ir.Operation{}, l.errorf(col, "stp expects at least one entry")
		}
		entries := make([]ir.StepEntry, len(args))
		for i, a := range args {
			e, err := l.stepEntry(a, cols[i])
			if err != nil {
				return ir.Operation{}, err
			}
			entries[i] = e
		}
		return ir.NewStep(entries...), nil
	}

	if len(args) != 2 {
		return ir.Operation{}, l.errorf(col, "%s expects 2 arguments, got %d", t, len(args))
	}
	target, err := l.operand(args[0], cols[0])
	if err != nil {
		return ir.Operation{}, err
	}
	if target.Kind == ir.Constant {
		return ir.Operation{}, l.errorf(cols[0], "target must be a memory reference")
	}
	source, err := l.operand(args[1], cols[1])
	if err != nil {
		return ir.Operation{}, err
	}
	return ir.NewOp(t, target, source), nil
}

func (l *lexer) operand(s string, col int) (ir.Operand, error) {
	kind := ir.Constant
	digits := s
	switch {
	case strings.HasPrefix(s, "$$"):
		kind, digits = ir.Indirect, s[2:]
	case strings.HasPrefix(s, "$"):
		kind, digits = ir.Direct, s[1:]
	}
	if digits == "" {
		return ir.Operand{}, l.errorf(col, "missing operand")
	}
	v, err := number.Parse(digits)
	if err != nil || v.IsUndefined() {
		return ir.Operand{}, l.errorf(col, "invalid operand %q", s)
	}
	if kind != ir.Constant && v.Sign() < 0 {
		return ir.Operand{}, l.errorf(col, "negative memory address %q", s)
	}
	return ir.Operand{Kind: kind, Value: v}, nil
}

// stepEntry parses "$c+=v" or "$c=v".
func (l *lexer) stepEntry(s string, col int) (ir.StepEntry, error) {
	if !strings.HasPrefix(s, "$") || strings.HasPrefix(s, "$$") {
		return ir.StepEntry{}, l.errorf(col, "step entry must start with a direct cell, got %q", s)
	}
	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		return ir.StepEntry{}, l.errorf(col, "step entry missing '=' in %q", s)
	}
	cellText := s[1:eq]
	isDiff := strings.HasSuffix(cellText, "+")
	cellText = strings.TrimSuffix(cellText, "+")
	cell, err := strconv.ParseInt(strings.TrimSpace(cellText), 10, 64)
	if err != nil || cell < 0 {
		return ir.StepEntry{}, l.errorf(col, "invalid step cell in %q", s)
	}
	value, err := strconv.ParseInt(strings.TrimSpace(s[eq+1:]), 10, 64)
	if err != nil {
		return ir.StepEntry{}, l.errorf(col, "invalid step value in %q", s)
	}
	a, err := ir.NewAssignment(isDiff, value)
	if err != nil {
		pe := l.errorf(col, "%v", err)
		pe.Err = err
		return ir.StepEntry{}, pe
	}
	return ir.StepEntry{Cell: cell, Assign: a}, nil
}
