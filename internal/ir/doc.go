// Package ir provides the program intermediate representation for seqmin.
//
// A Program is an ordered list of Operations. An Operation is either a leaf
// step (an arithmetic instruction, a clear, or a packed list of Assignments)
// or a loop that exclusively owns a nested Program body. There are no jumps
// and no shared bodies, so a Program is a strict ownership tree.
//
// This package imports only internal/number. Every other internal package
// builds on ir; ir imports nothing else internal.
//
// Key design constraints:
//   - NO float types anywhere; constants are arbitrary-precision integers
//   - Programs are mutated in place by the optimizer and minimizer, so any
//     copy that must survive an edit is taken with Clone
//   - Equality is structural and ignores comments
package ir
