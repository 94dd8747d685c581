package ir

// Program is an ordered sequence of operations.
type Program struct {
	Ops []Operation
}

// NewProgram creates a program from operations. The program takes ownership
// of any loop bodies.
func NewProgram(ops ...Operation) *Program {
	return &Program{Ops: ops}
}

// Path addresses an operation inside nested loop bodies: Path{2, 0} is the
// first operation in the body of the third top-level operation.
type Path []int

// Clone returns a deep copy.
func (p *Program) Clone() *Program {
	if p == nil {
		return nil
	}
	c := &Program{}
	if p.Ops != nil {
		c.Ops = make([]Operation, len(p.Ops))
		for i, op := range p.Ops {
			c.Ops[i] = op.Clone()
		}
	}
	return c
}

// Equal reports structural equality, ignoring comments.
// A nil program equals an empty one.
func (p *Program) Equal(o *Program) bool {
	if p.Len() != o.Len() {
		return false
	}
	for i := range p.Ops {
		if !p.Ops[i].Equal(o.Ops[i]) {
			return false
		}
	}
	return true
}

// Len returns the number of top-level operations.
func (p *Program) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Ops)
}

// Size counts operations recursively. A loop counts once plus its body.
func (p *Program) Size() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, op := range p.Ops {
		n++
		if op.IsLoop() {
			n += op.Body.Size()
		}
	}
	return n
}

// HasIndirect reports whether any operation uses indirect addressing.
func (p *Program) HasIndirect() bool {
	found := false
	p.Walk(func(_ Path, op *Operation) bool {
		if op.UsesIndirect() {
			found = true
			return false
		}
		return true
	})
	return found
}

// HasLoops reports whether the program contains any loop.
func (p *Program) HasLoops() bool {
	for _, op := range p.Ops {
		if op.IsLoop() {
			return true
		}
	}
	return false
}

// Walk visits every operation depth-first in program order. A loop is visited
// before its body. Returning false from fn stops the walk.
func (p *Program) Walk(fn func(path Path, op *Operation) bool) {
	p.walk(nil, fn)
}

func (p *Program) walk(prefix Path, fn func(Path, *Operation) bool) bool {
	if p == nil {
		return true
	}
	for i := range p.Ops {
		path := append(append(Path(nil), prefix...), i)
		if !fn(path, &p.Ops[i]) {
			return false
		}
		if p.Ops[i].IsLoop() && !p.Ops[i].Body.walk(path, fn) {
			return false
		}
	}
	return true
}

// Paths returns the path of every operation in Walk order.
func (p *Program) Paths() []Path {
	var paths []Path
	p.Walk(func(path Path, _ *Operation) bool {
		paths = append(paths, path)
		return true
	})
	return paths
}

// container returns the program holding the operation at path and its index.
func (p *Program) container(path Path) (*Program, int) {
	if len(path) == 0 {
		return nil, -1
	}
	cur := p
	for _, i := range path[:len(path)-1] {
		if i < 0 || i >= cur.Len() || !cur.Ops[i].IsLoop() {
			return nil, -1
		}
		cur = cur.Ops[i].Body
	}
	last := path[len(path)-1]
	if last < 0 || last >= cur.Len() {
		return nil, -1
	}
	return cur, last
}

// At returns the operation at path, or nil if the path is invalid.
func (p *Program) At(path Path) *Operation {
	c, i := p.container(path)
	if c == nil {
		return nil
	}
	return &c.Ops[i]
}

// Replace substitutes the operation at path with ops (possibly none).
// It reports whether the path was valid.
func (p *Program) Replace(path Path, ops ...Operation) bool {
	c, i := p.container(path)
	if c == nil {
		return false
	}
	rest := append([]Operation(nil), c.Ops[i+1:]...)
	c.Ops = append(append(c.Ops[:i], ops...), rest...)
	return true
}

// Remove deletes the operation at path.
func (p *Program) Remove(path Path) bool {
	return p.Replace(path)
}

// StripComments removes all comments in place and returns p.
func (p *Program) StripComments() *Program {
	p.Walk(func(_ Path, op *Operation) bool {
		op.Comment = ""
		return true
	})
	return p
}
