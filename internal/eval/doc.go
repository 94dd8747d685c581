// Package eval executes programs and computes the integer sequences they
// define.
//
// Term n of a program's sequence is computed by starting from a fresh memory
// (or a copy of a configured initial memory), storing n in $0, running the
// program and reading $0.
//
// Every executed operation and every loop iteration costs one step. A run is
// bounded per term (MaxCycles) and across all terms of one evaluation
// (MaxTotal), so a pathological program ends with a STEP_BUDGET_EXCEEDED
// error instead of hanging its caller. Values are bounded in size by MaxBits.
//
// LOOP SEMANTICS:
//
// "lpb $c,k" snapshots memory and the fragment [c, c+k) before each
// iteration. After the body runs, the loop repeats only if the new fragment
// is lexicographically smaller than the old one and non-negative. Otherwise
// memory is restored to the snapshot and execution continues after "lpe".
// The body therefore always runs at least once, and the final iteration is
// the one whose effect is discarded.
//
// An Interpreter and an Evaluator hold only read-only configuration. Each
// call owns the memory it runs on, so independent calls may run in parallel.
package eval
