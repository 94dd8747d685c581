// Package asm reads and writes the line-oriented text form of programs.
//
// One operation per line. A ';' starts a comment that runs to the end of the
// line and is attached to the operation on that line. Loops open with
// "lpb $c" or "lpb $c,k" and close with "lpe"; indentation is ignored on
// input and printed as two spaces per nesting level.
//
//	mov $1,1
//	lpb $0
//	  sub $0,1
//	  add $2,$1
//	  add $1,2
//	lpe
//	mov $0,$2
//
// Parsing is all or nothing: a malformed line yields a *ParseError carrying
// its location and no program.
package asm
