// Package minimizer searches for smaller programs that compute the same
// sequence prefix.
//
// Minimization is a local shrink-and-verify search. Each round proposes
// candidate edits in a fixed order:
//  1. replace a top-level loop with a closed form (pow)
//  2. unwrap a loop, keeping its body
//  3. delete a single operation, last to first
//
// A candidate is accepted only if it is strictly smaller than the current
// program and evaluates to exactly the same terms over the requested window
// within the step budget. Every evaluation failure just rejects the
// candidate. Rounds repeat until nothing is accepted.
//
// Equivalence is only checked on the window: a minimized program may
// diverge from the original on later terms.
//
// A Minimizer keeps no state between calls and works on a private copy, so
// the caller's program is replaced only when an improvement was found.
package minimizer
