// Package expr models arithmetic expression trees over sequence indices.
//
// Expressions describe the closed form of a program or of a single memory
// cell as a function of the term index n. Normalize puts a tree into
// canonical form so that structurally different but trivially equal trees
// compare equal, and CanBeNegative answers the sign questions the minimizer
// asks before replacing a loop with a closed form.
package expr
